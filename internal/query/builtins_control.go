package query

import "github.com/orhun/tql/internal/value"

// registerControlFunctions wires select/where/filter, any/all, not, null
// and debug (§4.8). any/all take an array (or a single value, treated as a
// one-element array) and evaluate their condition once per element; the
// evaluator intercepts both names before reaching the registry (see
// evalFunction's "any", "all" case), so fnAny/fnAll below are not called
// by query evaluation.
func registerControlFunctions(r *Registry) {
	r.RegisterFunction("select", &Function{Fn: fnSelect, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("any", &Function{Fn: fnAny, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("all", &Function{Fn: fnAll, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("not", &Function{Fn: fnNot, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("null", &Function{Fn: fnNull, MinArity: 0, MaxArity: 0, TakesInput: false})
	r.RegisterFunction("debug", &Function{Fn: fnDebug, MinArity: 0, MaxArity: 0, TakesInput: true})

	r.RegisterAlias("where", "select")
	r.RegisterAlias("filter", "select")
}

// select's second arg (the condition) is evaluated against `current`
// already by the generic call path in evalFunction, so this simply tests
// truthiness of whatever evalFunction computed.
func fnSelect(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	if args[1].IsTruthy() {
		return []value.Value{args[0]}, nil
	}
	return nil, nil
}

func fnAny(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.Bool(args[1].IsTruthy())}, nil
}

func fnAll(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.Bool(args[1].IsTruthy())}, nil
}

func fnNot(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.Bool(!args[0].IsTruthy())}, nil
}

func fnNull(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.Null()}, nil
}

func fnDebug(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	if ctx.Debug != nil {
		ctx.Debug(args[0].ToText())
	}
	return []value.Value{args[0]}, nil
}

// registerBuiltinFunctions wires every built-in function module into the
// registry, matching §4.8's full set.
func registerBuiltinFunctions(r *Registry) {
	registerCollectionFunctions(r)
	registerStringFunctions(r)
	registerContentFunctions(r)
	registerAggregationFunctions(r)
	registerControlFunctions(r)
}
