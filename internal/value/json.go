package value

import orderedmap "github.com/wk8/go-ordered-map/v2"

// toJSON converts a Value into a structure encoding/json can marshal while
// preserving Object/FrontMatter key order.
func (v Value) toJSON() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.toJSON()
		}
		return out
	case KindObject:
		return orderedMapToJSON(v.obj)
	case KindHeading:
		h := v.heading
		return orderedFields(
			field{"type", "heading"},
			field{"level", h.Level},
			field{"text", h.Text},
			field{"line", h.Line},
		)
	case KindCode:
		c := v.code
		var lang any
		if c.HasLang && c.Language != "" {
			lang = c.Language
		}
		return orderedFields(
			field{"type", "code"},
			field{"language", lang},
			field{"content", c.Content},
			field{"start_line", c.StartLine},
			field{"end_line", c.EndLine},
		)
	case KindLink:
		l := v.link
		return orderedFields(
			field{"type", "link"},
			field{"text", l.Text},
			field{"url", l.URL},
			field{"link_type", l.Kind.String()},
		)
	case KindImage:
		i := v.image
		var title any
		if i.HasTitle {
			title = i.Title
		}
		return orderedFields(
			field{"type", "image"},
			field{"alt", i.Alt},
			field{"src", i.Src},
			field{"title", title},
		)
	case KindTable:
		t := v.table
		return orderedFields(
			field{"type", "table"},
			field{"headers", t.Headers},
			field{"rows", t.Rows},
		)
	case KindList:
		l := v.list
		items := make([]any, len(l.Items))
		for i, it := range l.Items {
			var checked any
			if it.Checked != nil {
				checked = *it.Checked
			}
			items[i] = orderedFields(
				field{"content", it.Content},
				field{"checked", checked},
			)
		}
		return orderedFields(
			field{"type", "list"},
			field{"ordered", l.Ordered},
			field{"items", items},
		)
	case KindBlockquote:
		return orderedFields(
			field{"type", "blockquote"},
			field{"content", v.blockquote.Content},
		)
	case KindParagraph:
		return orderedFields(
			field{"type", "paragraph"},
			field{"content", v.paragraph.Content},
		)
	case KindDocument:
		d := v.document
		return orderedFields(
			field{"type", "document"},
			field{"heading_count", d.HeadingCount},
			field{"word_count", d.WordCount},
		)
	case KindFrontMatter:
		return orderedMapToJSON(v.frontmatter)
	default:
		return nil
	}
}

// ToJSON exposes toJSON for the output formatter package.
func (v Value) ToJSON() any { return v.toJSON() }

func orderedMapToJSON(o *Object) *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any]()
	if o == nil {
		return out
	}
	for pair := o.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value.toJSON())
	}
	return out
}

type field struct {
	key string
	val any
}

func orderedFields(fields ...field) *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any]()
	for _, f := range fields {
		out.Set(f.key, f.val)
	}
	return out
}
