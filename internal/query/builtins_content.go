package query

import "github.com/orhun/tql/internal/value"

// registerContentFunctions wires the per-element content accessors of
// §4.8: content, md/markdown, url/src/href, lang/language, plus a `blocks`
// built-in supplementing the content block parser (C2) into the query
// surface so it is exercised end to end, not just unit-tested.
func registerContentFunctions(r *Registry) {
	r.RegisterFunction("content", &Function{Fn: fnContent, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("md", &Function{Fn: fnMd, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("url", &Function{Fn: fnURL, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("lang", &Function{Fn: fnLang, MinArity: 0, MaxArity: 0, TakesInput: true})
	r.RegisterFunction("blocks", &Function{Fn: fnBlocks, MinArity: 0, MaxArity: 0, TakesInput: true})

	r.RegisterAlias("markdown", "md")
	r.RegisterAlias("src", "url")
	r.RegisterAlias("href", "url")
	r.RegisterAlias("language", "lang")
}

func fnContent(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{value.String(args[0].GetProperty("content").ToText())}, nil
}

func fnMd(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	if h, ok := args[0].Heading(); ok {
		return []value.Value{value.String(h.RawMD)}, nil
	}
	return []value.Value{value.String(args[0].ToText())}, nil
}

func fnURL(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{args[0].GetProperty("url")}, nil
}

func fnLang(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	return []value.Value{args[0].GetProperty("lang")}, nil
}

// fnBlocks parses the current value's text content into the typed Block
// sequence (C2) and returns each as a tagged object, letting queries like
// `.blockquote | blocks` inspect nested structure the flat element model
// doesn't expose directly.
func fnBlocks(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	content := args[0].GetProperty("content").ToText()
	if content == "" {
		content = args[0].ToText()
	}
	blocks, err := mdmodelParseBlocks(content)
	if err != nil {
		e := newErr(ErrTypeError, Span{}, "")
		e.Help = err.Error()
		return nil, e
	}
	out := make([]value.Value, len(blocks))
	for i, b := range blocks {
		out[i] = blockToValue(b)
	}
	return out, nil
}
