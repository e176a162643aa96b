package registryconfig

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/orhun/tql/internal/query"
	"github.com/orhun/tql/internal/value"
)

// Apply registers cfg's aliases and expr-lang-backed functions into reg,
// the declarative analog of spec.md §6's "custom functions... fn:
// (args, ctx) -> [Value]" extension point.
func Apply(cfg *Config, reg *query.Registry) error {
	for _, fd := range cfg.Functions {
		fn, err := compileFunction(fd)
		if err != nil {
			return fmt.Errorf("compiling function %q: %w", fd.Name, err)
		}
		reg.RegisterFunction(fd.Name, fn)
	}
	for alias, target := range cfg.Aliases {
		reg.RegisterAlias(alias, target)
	}
	return nil
}

// compileFunction turns one FunctionDecl into a query.Function whose body
// runs an expr-lang program against `current` (the input value's Go
// representation) and `args` (each call argument's text form).
func compileFunction(fd FunctionDecl) (*query.Function, error) {
	program, err := expr.Compile(fd.Expr, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	impl := func(args []value.Value, ctx *query.EvalContext) ([]value.Value, *query.Error) {
		current := args[0]
		callArgs := make([]any, 0, len(args)-1)
		for _, a := range args[1:] {
			callArgs = append(callArgs, a.ToText())
		}

		env := map[string]any{
			"current": current.ToJSON(),
			"args":    callArgs,
		}

		out, err := expr.Run(program, env)
		if err != nil {
			return nil, query.NewError(query.ErrTypeError, query.Span{}).WithHelp(err.Error())
		}
		return []value.Value{goValueToQueryValue(out)}, nil
	}

	return &query.Function{
		Fn:          impl,
		MinArity:    fd.Arity,
		MaxArity:    fd.Arity,
		Description: fd.Description,
		TakesInput:  true,
	}, nil
}

func goValueToQueryValue(v any) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Null()
	case bool:
		return value.Bool(t)
	case string:
		return value.String(t)
	case float64:
		return value.Number(t)
	case int:
		return value.Number(float64(t))
	case []any:
		out := make([]value.Value, len(t))
		for i, item := range t {
			out[i] = goValueToQueryValue(item)
		}
		return value.Array(out)
	default:
		return value.String(fmt.Sprintf("%v", t))
	}
}
