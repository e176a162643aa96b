package query

import (
	"github.com/orhun/tql/internal/mdmodel"
	"github.com/orhun/tql/internal/value"
)

func mdmodelParseBlocks(content string) ([]mdmodel.Block, error) {
	return mdmodel.ParseBlocks(content)
}

// blockToValue renders a content Block (C2) as a tagged Object value so
// query results can carry nested block structure without a dedicated Value
// variant per block kind.
func blockToValue(b mdmodel.Block) value.Value {
	o := value.NewOrderedObject()
	switch b.Kind {
	case mdmodel.BlockParagraph:
		o.Set("type", value.String("paragraph"))
		o.Set("content", value.String(b.Content))
	case mdmodel.BlockCode:
		o.Set("type", value.String("code"))
		o.Set("lang", value.String(b.Language))
		o.Set("content", value.String(b.Content))
	case mdmodel.BlockList:
		o.Set("type", value.String("list"))
		o.Set("ordered", value.Bool(b.Ordered))
		items := make([]value.Value, len(b.Items))
		for i, it := range b.Items {
			io := value.NewOrderedObject()
			io.Set("content", value.String(it.Content))
			if it.Checked != nil {
				io.Set("checked", value.Bool(*it.Checked))
			} else {
				io.Set("checked", value.Null())
			}
			items[i] = value.ObjectValue(io)
		}
		o.Set("items", value.Array(items))
	case mdmodel.BlockBlockquote:
		o.Set("type", value.String("blockquote"))
		o.Set("content", value.String(b.Content))
	case mdmodel.BlockTable:
		o.Set("type", value.String("table"))
		headers := make([]value.Value, len(b.Headers))
		for i, h := range b.Headers {
			headers[i] = value.String(h)
		}
		o.Set("headers", value.Array(headers))
	case mdmodel.BlockImage:
		o.Set("type", value.String("image"))
		o.Set("alt", value.String(b.Alt))
		o.Set("src", value.String(b.Src))
	case mdmodel.BlockDetails:
		o.Set("type", value.String("details"))
		o.Set("summary", value.String(b.Summary))
		o.Set("content", value.String(b.Content))
	case mdmodel.BlockHorizontalRule:
		o.Set("type", value.String("hr"))
	}
	return value.ObjectValue(o)
}
