package query

import (
	"sort"
	"strings"

	"github.com/orhun/tql/internal/value"
)

// registerCollectionFunctions wires the collection built-ins of §4.8:
// count/length, first/last, reverse, sort, sort_by, unique, flatten,
// keys/values, empty, limit/skip/nth, any/all, min/max, add, group_by.
func registerCollectionFunctions(r *Registry) {
	r.RegisterFunction("count", &Function{Fn: fnCount, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("length", &Function{Fn: fnCount, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("first", &Function{Fn: fnFirst, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("last", &Function{Fn: fnLast, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("reverse", &Function{Fn: fnReverse, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("sort", &Function{Fn: fnSort, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("unique", &Function{Fn: fnUnique, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("flatten", &Function{Fn: fnFlatten, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("keys", &Function{Fn: fnKeys, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("values", &Function{Fn: fnValues, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("empty", &Function{Fn: fnEmpty, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("limit", &Function{Fn: fnLimit, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("skip", &Function{Fn: fnSkip, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("nth", &Function{Fn: fnNth, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("min", &Function{Fn: fnMin, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("max", &Function{Fn: fnMax, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("add", &Function{Fn: fnAdd, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("group_by", &Function{Fn: fnGroupBy, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("sort_by", &Function{Fn: fnSortBy, MinArity: 1, MaxArity: 1, TakesInput: true})

	r.RegisterAlias("len", "length")
	r.RegisterAlias("size", "length")
	r.RegisterAlias("head", "first")
	r.RegisterAlias("take", "limit")
	r.RegisterAlias("drop", "skip")
	r.RegisterAlias("group", "group_by")
}

// inputArray returns the elements args[0] should be treated as a sequence
// of: an Array value unwraps to its elements, anything else is a
// single-element sequence.
func inputArray(v value.Value) []value.Value {
	if arr, ok := v.AsArray(); ok {
		return arr
	}
	return []value.Value{v}
}

func fnCount(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	if n, ok := args[0].Len(); ok {
		return []value.Value{value.Number(float64(n))}, nil
	}
	return []value.Value{value.Number(1)}, nil
}

func fnFirst(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	items := inputArray(args[0])
	if len(items) == 0 {
		return nil, nil
	}
	return []value.Value{items[0]}, nil
}

func fnLast(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	items := inputArray(args[0])
	if len(items) == 0 {
		return nil, nil
	}
	return []value.Value{items[len(items)-1]}, nil
}

func fnReverse(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	items := inputArray(args[0])
	out := make([]value.Value, len(items))
	for i, v := range items {
		out[len(items)-1-i] = v
	}
	return []value.Value{value.Array(out)}, nil
}

func fnSort(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	items := append([]value.Value{}, inputArray(args[0])...)
	sort.SliceStable(items, func(i, j int) bool {
		return compareValues(OpLt, items[i], items[j]).IsTruthy()
	})
	return []value.Value{value.Array(items)}, nil
}

func fnUnique(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	items := inputArray(args[0])
	var out []value.Value
	seen := make(map[string]bool)
	for _, v := range items {
		key := v.ToText()
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return []value.Value{value.Array(out)}, nil
}

func fnFlatten(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	var out []value.Value
	for _, v := range inputArray(args[0]) {
		if arr, ok := v.AsArray(); ok {
			out = append(out, arr...)
		} else {
			out = append(out, v)
		}
	}
	return []value.Value{value.Array(out)}, nil
}

func fnKeys(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	obj, ok := args[0].AsObject()
	if !ok {
		obj, ok = args[0].FrontMatter()
	}
	if !ok {
		return []value.Value{value.Array(nil)}, nil
	}
	var out []value.Value
	for p := obj.Oldest(); p != nil; p = p.Next() {
		out = append(out, value.String(p.Key))
	}
	return []value.Value{value.Array(out)}, nil
}

func fnValues(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	obj, ok := args[0].AsObject()
	if !ok {
		obj, ok = args[0].FrontMatter()
	}
	if !ok {
		return []value.Value{value.Array(nil)}, nil
	}
	var out []value.Value
	for p := obj.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return []value.Value{value.Array(out)}, nil
}

func fnEmpty(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return nil, nil
}

func fnLimit(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	n, _ := args[1].AsNumber()
	items := inputArray(args[0])
	limit := int(n)
	if limit < 0 {
		limit = 0
	}
	if limit > len(items) {
		limit = len(items)
	}
	return []value.Value{value.Array(items[:limit])}, nil
}

func fnSkip(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	n, _ := args[1].AsNumber()
	items := inputArray(args[0])
	skip := int(n)
	if skip < 0 {
		skip = 0
	}
	if skip > len(items) {
		skip = len(items)
	}
	return []value.Value{value.Array(items[skip:])}, nil
}

func fnNth(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	n, _ := args[1].AsNumber()
	items := inputArray(args[0])
	i := int64(n)
	if i < 0 {
		i += int64(len(items))
	}
	if i < 0 || i >= int64(len(items)) {
		return nil, nil
	}
	return []value.Value{items[i]}, nil
}

func fnMin(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	items := inputArray(args[0])
	if len(items) == 0 {
		return nil, nil
	}
	best := items[0]
	for _, v := range items[1:] {
		if compareValues(OpLt, v, best).IsTruthy() {
			best = v
		}
	}
	return []value.Value{best}, nil
}

func fnMax(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	items := inputArray(args[0])
	if len(items) == 0 {
		return nil, nil
	}
	best := items[0]
	for _, v := range items[1:] {
		if compareValues(OpGt, v, best).IsTruthy() {
			best = v
		}
	}
	return []value.Value{best}, nil
}

func fnAdd(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	items := inputArray(args[0])
	if len(items) == 0 {
		return []value.Value{value.Null()}, nil
	}
	if n, ok := items[0].AsNumber(); ok {
		_ = n
		var sum float64
		for _, v := range items {
			f, ok := v.AsNumber()
			if !ok {
				return nil, newErr(ErrTypeError, Span{}, "").withTypes("number", v.Kind().String())
			}
			sum += f
		}
		return []value.Value{value.Number(sum)}, nil
	}
	var b strings.Builder
	for _, v := range items {
		b.WriteString(v.ToText())
	}
	return []value.Value{value.String(b.String())}, nil
}

// group_by and sort_by take their key argument as a raw expression
// evaluated once per input element, which the generic evaluate-args path
// below cannot express; the evaluator intercepts both names, and any alias
// of them such as `group`, before reaching the registry (see
// evalFunction's "group_by", "sort_by" case).
// These two entries exist only so `tql functions` can list and describe
// them.
func fnGroupBy(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return nil, newErr(ErrTypeError, Span{}, "").WithHelp("group_by is handled specially by the evaluator")
}

func fnSortBy(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return nil, newErr(ErrTypeError, Span{}, "").WithHelp("sort_by is handled specially by the evaluator")
}
