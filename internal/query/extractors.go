package query

import (
	"fmt"
	"strings"

	"github.com/orhun/tql/internal/mdmodel"
	"github.com/orhun/tql/internal/value"
)

// registerBuiltinExtractors wires every document-global element kind named
// in §3/§4.1-4.2 into the registry, each respecting the active hierarchy
// scope (§4.7) so `.h2 > .code` only sees elements inside that subtree.
func registerBuiltinExtractors(r *Registry) {
	r.RegisterExtractor("h", extractHeadings)
	r.RegisterExtractor("code", extractCode)
	r.RegisterExtractor("link", extractLinks)
	r.RegisterExtractor("img", extractImages)
	r.RegisterExtractor("table", extractTables)
	r.RegisterExtractor("list", extractLists)
	r.RegisterExtractor("blockquote", extractBlockquotes)
	r.RegisterExtractor("para", extractParagraphs)
	r.RegisterExtractor("frontmatter", extractFrontMatter)
}

func extractHeadings(doc *mdmodel.Document, ctx *EvalContext) ([]value.Value, *Error) {
	var out []value.Value
	for _, h := range doc.Headings {
		if !ctx.allowsOffset(h.Offset, true, h.Level) {
			continue
		}
		out = append(out, value.HeadingValue(&value.Heading{
			Level:   h.Level,
			Text:    h.Text,
			Offset:  h.Offset,
			Line:    h.Line,
			Content: doc.SectionContent(h),
			RawMD:   h.RawMD,
			Slug:    h.Slug,
		}))
	}
	return out, nil
}

func extractCode(doc *mdmodel.Document, ctx *EvalContext) ([]value.Value, *Error) {
	var out []value.Value
	for _, c := range doc.CodeBlocks {
		if !ctx.allowsOffset(c.Offset, false, 0) {
			continue
		}
		out = append(out, value.CodeValue(&value.Code{
			Language:  c.Language,
			HasLang:   c.HasLang,
			Content:   c.Content,
			StartLine: c.StartLine,
			EndLine:   c.EndLine,
		}))
	}
	return out, nil
}

func extractLinks(doc *mdmodel.Document, ctx *EvalContext) ([]value.Value, *Error) {
	var out []value.Value
	for _, l := range doc.Links {
		if !ctx.allowsOffset(l.Offset, false, 0) {
			continue
		}
		out = append(out, value.LinkValue(&value.Link{
			Text:   l.Text,
			URL:    l.URL,
			Kind:   classifyLinkKind(l.URL),
			Offset: l.Offset,
		}))
	}
	return out, nil
}

// classifyLinkKind sorts a link URL into anchor (#...), external
// (http/https), wikilink ([[...]]) or relative (everything else).
func classifyLinkKind(url string) value.LinkKind {
	switch {
	case strings.HasPrefix(url, "#"):
		return value.LinkAnchor
	case strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://"):
		return value.LinkExternal
	case strings.HasPrefix(url, "[[") && strings.HasSuffix(url, "]]"):
		return value.LinkWikilink
	default:
		return value.LinkRelative
	}
}

func extractImages(doc *mdmodel.Document, ctx *EvalContext) ([]value.Value, *Error) {
	var out []value.Value
	for _, i := range doc.Images {
		if !ctx.allowsOffset(i.Offset, false, 0) {
			continue
		}
		out = append(out, value.ImageValue(&value.Image{
			Alt: i.Alt, Src: i.Src, Title: i.Title, HasTitle: i.Title != "",
		}))
	}
	return out, nil
}

func extractTables(doc *mdmodel.Document, ctx *EvalContext) ([]value.Value, *Error) {
	var out []value.Value
	for _, t := range doc.Tables {
		if !ctx.allowsOffset(t.Offset, false, 0) {
			continue
		}
		out = append(out, value.TableValue(&value.Table{
			Headers: t.Headers, Alignments: t.Alignments, Rows: t.Rows,
		}))
	}
	return out, nil
}

func extractLists(doc *mdmodel.Document, ctx *EvalContext) ([]value.Value, *Error) {
	var out []value.Value
	for _, l := range doc.Lists {
		if !ctx.allowsOffset(l.Offset, false, 0) {
			continue
		}
		items := make([]value.ListItem, len(l.Items))
		for i, it := range l.Items {
			items[i] = value.ListItem{Checked: it.Checked, Content: it.Content}
		}
		out = append(out, value.ListValue(&value.List{Ordered: l.Ordered, Items: items}))
	}
	return out, nil
}

// extractBlockquotes and extractParagraphs have no dedicated positional
// record in the document model (§4.1 only tracks code/link/image/table/list
// globally); both parse the whole document, or the active hierarchy scope,
// in one ParseBlocks pass on demand and keep only the top-level matches.
func extractBlockquotes(doc *mdmodel.Document, ctx *EvalContext) ([]value.Value, *Error) {
	blocks, err := sectionScopedBlocks(doc, ctx)
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, b := range blocks {
		if b.Kind == mdmodel.BlockBlockquote {
			out = append(out, value.BlockquoteValue(&value.Blockquote{Content: b.Content}))
		}
	}
	return out, nil
}

func extractParagraphs(doc *mdmodel.Document, ctx *EvalContext) ([]value.Value, *Error) {
	blocks, err := sectionScopedBlocks(doc, ctx)
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, b := range blocks {
		if b.Kind == mdmodel.BlockParagraph {
			out = append(out, value.ParagraphValue(&value.Paragraph{Content: b.Content}))
		}
	}
	return out, nil
}

// sectionScopedBlocks runs the content block parser (C2) over either the
// whole document or the active hierarchy scope's section text.
func sectionScopedBlocks(doc *mdmodel.Document, ctx *EvalContext) ([]mdmodel.Block, *Error) {
	src := string(doc.Source)
	if ctx.sc.active {
		start, end := ctx.sc.start, ctx.sc.end
		if start < 0 {
			start = 0
		}
		if end > len(src) {
			end = len(src)
		}
		src = src[start:end]
	}
	blocks, err := mdmodel.ParseBlocks(src)
	if err != nil {
		e := newErr(ErrTypeError, Span{}, "")
		e.Help = err.Error()
		return nil, e
	}
	return blocks, nil
}

func extractFrontMatter(doc *mdmodel.Document, ctx *EvalContext) ([]value.Value, *Error) {
	if doc.FrontMatter == nil {
		return nil, nil
	}
	o := value.NewOrderedObject()
	for k, v := range doc.FrontMatter.Data {
		o.Set(k, goValueToValue(v))
	}
	return []value.Value{value.FrontMatterValue(o)}, nil
}

func goValueToValue(v any) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Null()
	case bool:
		return value.Bool(t)
	case string:
		return value.String(t)
	case int:
		return value.Number(float64(t))
	case int64:
		return value.Number(float64(t))
	case float64:
		return value.Number(t)
	case []any:
		items := make([]value.Value, len(t))
		for i, el := range t {
			items[i] = goValueToValue(el)
		}
		return value.Array(items)
	case map[string]any:
		o := value.NewOrderedObject()
		for k, el := range t {
			o.Set(k, goValueToValue(el))
		}
		return value.ObjectValue(o)
	default:
		return value.String(fmt.Sprintf("%v", t))
	}
}
