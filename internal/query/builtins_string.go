package query

import (
	"regexp"
	"strings"

	"github.com/orhun/tql/internal/mdmodel"
	"github.com/orhun/tql/internal/value"
)

// registerStringFunctions wires the string built-ins of §4.8: text,
// upper/lower, trim, split/join, replace, lines/words/chars, slugify,
// contains/startswith/endswith, matches, has, type.
func registerStringFunctions(r *Registry) {
	r.RegisterFunction("text", &Function{Fn: fnText, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("upper", &Function{Fn: fnUpper, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("lower", &Function{Fn: fnLower, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("trim", &Function{Fn: fnTrim, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("split", &Function{Fn: fnSplit, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("join", &Function{Fn: fnJoin, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("replace", &Function{Fn: fnReplace, MinArity: 2, MaxArity: 2, TakesInput: true})
	r.RegisterFunction("lines", &Function{Fn: fnLines, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("words", &Function{Fn: fnWords, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("chars", &Function{Fn: fnChars, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("slugify", &Function{Fn: fnSlugify, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("contains", &Function{Fn: fnContains, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("startswith", &Function{Fn: fnStartsWith, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("endswith", &Function{Fn: fnEndsWith, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("matches", &Function{Fn: fnMatches, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("has", &Function{Fn: fnHas, MinArity: 1, MaxArity: 1, TakesInput: true})
	r.RegisterFunction("type", &Function{Fn: fnType, MinArity: 0, MaxArity: 0, TakesInput: true})

	r.RegisterAlias("includes", "contains")
	r.RegisterAlias("starts_with", "startswith")
	r.RegisterAlias("ends_with", "endswith")
	r.RegisterAlias("ascii_downcase", "lower")
	r.RegisterAlias("ascii_upcase", "upper")
}

func fnText(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.String(args[0].ToText())}, nil
}

func fnUpper(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.String(strings.ToUpper(args[0].ToText()))}, nil
}

func fnLower(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.String(strings.ToLower(args[0].ToText()))}, nil
}

func fnTrim(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.String(strings.TrimSpace(args[0].ToText()))}, nil
}

func fnSplit(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	sep := args[1].ToText()
	parts := strings.Split(args[0].ToText(), sep)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.String(p)
	}
	return []value.Value{value.Array(out)}, nil
}

func fnJoin(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	sep := args[1].ToText()
	items := inputArray(args[0])
	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = v.ToText()
	}
	return []value.Value{value.String(strings.Join(parts, sep))}, nil
}

func fnReplace(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	from, to := args[1].ToText(), args[2].ToText()
	return []value.Value{value.String(strings.ReplaceAll(args[0].ToText(), from, to))}, nil
}

func fnLines(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	lines := strings.Split(args[0].ToText(), "\n")
	out := make([]value.Value, len(lines))
	for i, l := range lines {
		out[i] = value.String(l)
	}
	return []value.Value{value.Array(out)}, nil
}

func fnWords(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.Number(float64(mdmodel.WordCount(args[0].ToText())))}, nil
}

func fnChars(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	runes := []rune(args[0].ToText())
	out := make([]value.Value, len(runes))
	for i, r := range runes {
		out[i] = value.String(string(r))
	}
	return []value.Value{value.Array(out)}, nil
}

func fnSlugify(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.String(mdmodel.Slugify(args[0].ToText()))}, nil
}

func fnContains(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.Bool(strings.Contains(
		strings.ToLower(args[0].ToText()), strings.ToLower(args[1].ToText())))}, nil
}

func fnStartsWith(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.Bool(strings.HasPrefix(
		strings.ToLower(args[0].ToText()), strings.ToLower(args[1].ToText())))}, nil
}

func fnEndsWith(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.Bool(strings.HasSuffix(
		strings.ToLower(args[0].ToText()), strings.ToLower(args[1].ToText())))}, nil
}

func fnMatches(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	pattern := args[1].ToText()
	re, err := regexp.Compile(pattern)
	if err != nil {
		e := newErr(ErrInvalidRegex, Span{}, "")
		e.Pattern = pattern
		e.Help = err.Error()
		return nil, e
	}
	return []value.Value{value.Bool(re.MatchString(args[0].ToText()))}, nil
}

func fnHas(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	key := args[1].ToText()
	if obj, ok := args[0].AsObject(); ok {
		_, found := obj.Get(key)
		return []value.Value{value.Bool(found)}, nil
	}
	if fm, ok := args[0].FrontMatter(); ok {
		_, found := fm.Get(key)
		return []value.Value{value.Bool(found)}, nil
	}
	return []value.Value{value.Bool(false)}, nil
}

func fnType(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.String(args[0].Kind().String())}, nil
}
