package registryconfig

import (
	"testing"

	"github.com/orhun/tql/internal/query"
	"github.com/orhun/tql/internal/value"
)

func TestApplyRegistersAliasesAndFunctions(t *testing.T) {
	cfg := &Config{
		Aliases: map[string]string{"h1s": "text"},
		Functions: []FunctionDecl{
			{Name: "double", Arity: 0, Expr: "current * 2"},
		},
	}
	reg := query.NewRegistryWithBuiltins()
	if err := Apply(cfg, reg); err != nil {
		t.Fatalf("Apply: %s", err)
	}
	if !reg.HasFunction("double") {
		t.Error("expected double to be registered")
	}
	if got, ok := reg.GetFunction("h1s"); !ok {
		t.Error("expected h1s alias to resolve to a function")
	} else if got == nil {
		t.Error("expected a non-nil function for the h1s alias")
	}
}

func TestCompileFunctionRejectsInvalidExpr(t *testing.T) {
	_, err := compileFunction(FunctionDecl{Name: "bad", Arity: 0, Expr: "current +++ 1"})
	if err == nil {
		t.Error("expected a compile error for malformed expr-lang syntax")
	}
}

func TestCompileFunctionEvaluatesAgainstCurrentAndArgs(t *testing.T) {
	fn, err := compileFunction(FunctionDecl{
		Name:  "greet",
		Arity: 1,
		Expr:  `"hello " + args[0]`,
	})
	if err != nil {
		t.Fatalf("compileFunction: %s", err)
	}
	out, qerr := fn.Fn([]value.Value{value.String("ignored"), value.String("world")}, nil)
	if qerr != nil {
		t.Fatalf("Fn: %s", qerr.Error())
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}
	if got := out[0].ToText(); got != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", got)
	}
}

func TestGoValueToQueryValueConvertsPrimitives(t *testing.T) {
	if v := goValueToQueryValue(nil); v.Kind() != value.KindNull {
		t.Errorf("expected Null, got %v", v.Kind())
	}
	if v := goValueToQueryValue(true); v.Kind() != value.KindBool {
		t.Errorf("expected Bool, got %v", v.Kind())
	}
	if v := goValueToQueryValue(3.5); v.Kind() != value.KindNumber {
		t.Errorf("expected Number, got %v", v.Kind())
	}
	if v := goValueToQueryValue([]any{1.0, "a"}); v.Kind() != value.KindArray {
		t.Errorf("expected Array, got %v", v.Kind())
	}
}
