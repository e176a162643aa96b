package query

import (
	"sort"

	"github.com/orhun/tql/internal/mdmodel"
	"github.com/orhun/tql/internal/value"
)

// registerAggregationFunctions wires the document-wide, input-free
// built-ins of §4.8: stats, levels, langs, types. None take the current
// value as input; they summarize the whole document via ctx.
func registerAggregationFunctions(r *Registry) {
	r.RegisterFunction("stats", &Function{Fn: fnStats, MinArity: 0, MaxArity: 0, TakesInput: false})
	r.RegisterFunction("levels", &Function{Fn: fnLevels, MinArity: 0, MaxArity: 0, TakesInput: false})
	r.RegisterFunction("langs", &Function{Fn: fnLangs, MinArity: 0, MaxArity: 0, TakesInput: false})
	r.RegisterFunction("types", &Function{Fn: fnTypes, MinArity: 0, MaxArity: 0, TakesInput: false})
}

func fnStats(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	o := value.NewOrderedObject()
	o.Set("headings", value.Number(float64(len(ctx.Doc.Headings))))
	o.Set("code_blocks", value.Number(float64(len(ctx.Doc.CodeBlocks))))
	o.Set("links", value.Number(float64(len(ctx.Doc.Links))))
	o.Set("images", value.Number(float64(len(ctx.Doc.Images))))
	o.Set("tables", value.Number(float64(len(ctx.Doc.Tables))))
	o.Set("lists", value.Number(float64(len(ctx.Doc.Lists))))
	o.Set("words", value.Number(float64(mdmodel.WordCount(string(ctx.Doc.Source)))))
	return []value.Value{value.ObjectValue(o)}, nil
}

func fnLevels(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	seen := make(map[int]bool)
	var levels []int
	for _, h := range ctx.Doc.Headings {
		if !seen[h.Level] {
			seen[h.Level] = true
			levels = append(levels, h.Level)
		}
	}
	sort.Ints(levels)
	out := make([]value.Value, len(levels))
	for i, l := range levels {
		out[i] = value.Number(float64(l))
	}
	return []value.Value{value.Array(out)}, nil
}

func fnLangs(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	seen := make(map[string]bool)
	var langs []string
	for _, c := range ctx.Doc.CodeBlocks {
		if c.HasLang && c.Language != "" && !seen[c.Language] {
			seen[c.Language] = true
			langs = append(langs, c.Language)
		}
	}
	sort.Strings(langs)
	out := make([]value.Value, len(langs))
	for i, l := range langs {
		out[i] = value.String(l)
	}
	return []value.Value{value.Array(out)}, nil
}

func fnTypes(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) {
	seen := make(map[string]bool)
	var types []string
	for _, l := range ctx.Doc.Links {
		t := classifyLinkKind(l.URL).String()
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	sort.Strings(types)
	out := make([]value.Value, len(types))
	for i, t := range types {
		out[i] = value.String(t)
	}
	return []value.Value{value.Array(out)}, nil
}
