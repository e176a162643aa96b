// Package value implements the tagged runtime value used throughout the
// query engine: the result of lexing, parsing and evaluating a tql query
// is always a sequence of these values.
package value

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind discriminates the variant a Value currently holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindHeading
	KindCode
	KindLink
	KindImage
	KindTable
	KindList
	KindBlockquote
	KindParagraph
	KindDocument
	KindFrontMatter
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindHeading:
		return "heading"
	case KindCode:
		return "code"
	case KindLink:
		return "link"
	case KindImage:
		return "image"
	case KindTable:
		return "table"
	case KindList:
		return "list"
	case KindBlockquote:
		return "blockquote"
	case KindParagraph:
		return "paragraph"
	case KindDocument:
		return "document"
	case KindFrontMatter:
		return "frontmatter"
	default:
		return "unknown"
	}
}

// Object is the order-preserving string-keyed map backing Value's Object
// and FrontMatter variants.
type Object = orderedmap.OrderedMap[string, Value]

func NewOrderedObject() *Object { return orderedmap.New[string, Value]() }

// Heading is the element payload for KindHeading.
type Heading struct {
	Level   int
	Text    string
	Offset  int
	Line    int
	Content string
	RawMD   string
	Slug    string
}

// Code is the element payload for KindCode.
type Code struct {
	Language  string
	HasLang   bool
	Content   string
	StartLine int
	EndLine   int
}

// LinkKind classifies a link's destination.
type LinkKind int

const (
	LinkAnchor LinkKind = iota
	LinkExternal
	LinkRelative
	LinkWikilink
)

func (k LinkKind) String() string {
	switch k {
	case LinkAnchor:
		return "anchor"
	case LinkExternal:
		return "external"
	case LinkRelative:
		return "relative"
	case LinkWikilink:
		return "wikilink"
	default:
		return "external"
	}
}

// Link is the element payload for KindLink.
type Link struct {
	Text   string
	URL    string
	Kind   LinkKind
	Offset int
}

// Image is the element payload for KindImage.
type Image struct {
	Alt      string
	Src      string
	Title    string
	HasTitle bool
}

// Table is the element payload for KindTable.
type Table struct {
	Headers    []string
	Alignments []string
	Rows       [][]string
}

// ListItem is a single item of a List value.
type ListItem struct {
	Checked    *bool
	Content    string
	RawContent string
}

// List is the element payload for KindList.
type List struct {
	Ordered bool
	Items   []ListItem
}

// Blockquote is the element payload for KindBlockquote.
type Blockquote struct {
	Content string
}

// Paragraph is the element payload for KindParagraph.
type Paragraph struct {
	Content string
}

// Document is the element payload for KindDocument (a summary view of the
// whole parsed document, returned as the initial current value).
type Document struct {
	Content      string
	HeadingCount int
	WordCount    int
}

// Value is a tagged union over the runtime value space of the query
// language. The zero Value is Null.
type Value struct {
	kind Kind

	b   bool
	n   float64
	s   string
	arr []Value
	obj *Object

	heading     *Heading
	code        *Code
	link        *Link
	image       *Image
	table       *Table
	list        *List
	blockquote  *Blockquote
	paragraph   *Paragraph
	document    *Document
	frontmatter *Object
}

func Null() Value                { return Value{kind: KindNull} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Number(n float64) Value     { return Value{kind: KindNumber, n: n} }
func String(s string) Value      { return Value{kind: KindString, s: s} }
func Array(items []Value) Value  { return Value{kind: KindArray, arr: items} }
func ObjectValue(o *Object) Value { return Value{kind: KindObject, obj: o} }

func HeadingValue(h *Heading) Value         { return Value{kind: KindHeading, heading: h} }
func CodeValue(c *Code) Value               { return Value{kind: KindCode, code: c} }
func LinkValue(l *Link) Value               { return Value{kind: KindLink, link: l} }
func ImageValue(i *Image) Value             { return Value{kind: KindImage, image: i} }
func TableValue(t *Table) Value             { return Value{kind: KindTable, table: t} }
func ListValue(l *List) Value               { return Value{kind: KindList, list: l} }
func BlockquoteValue(b *Blockquote) Value   { return Value{kind: KindBlockquote, blockquote: b} }
func ParagraphValue(p *Paragraph) Value     { return Value{kind: KindParagraph, paragraph: p} }
func DocumentValue(d *Document) Value       { return Value{kind: KindDocument, document: d} }
func FrontMatterValue(o *Object) Value      { return Value{kind: KindFrontMatter, frontmatter: o} }

func (v Value) Kind() Kind { return v.kind }

// IsTruthy implements the language's truthiness rule: Null, false, 0, "",
// empty array and empty object are falsy; every element value is truthy
// unconditionally.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0
	case KindString:
		return v.s != ""
	case KindArray:
		return len(v.arr) > 0
	case KindObject:
		return v.obj != nil && v.obj.Len() > 0
	default:
		return true
	}
}

func (v Value) AsString() (string, bool) {
	if v.kind == KindString {
		return v.s, true
	}
	return "", false
}

func (v Value) AsNumber() (float64, bool) {
	if v.kind == KindNumber {
		return v.n, true
	}
	return 0, false
}

func (v Value) AsBool() (bool, bool) {
	if v.kind == KindBool {
		return v.b, true
	}
	return false, false
}

func (v Value) AsArray() ([]Value, bool) {
	if v.kind == KindArray {
		return v.arr, true
	}
	return nil, false
}

func (v Value) AsObject() (*Object, bool) {
	if v.kind == KindObject {
		return v.obj, true
	}
	return nil, false
}

func (v Value) Heading() (*Heading, bool)       { return v.heading, v.kind == KindHeading }
func (v Value) Code() (*Code, bool)             { return v.code, v.kind == KindCode }
func (v Value) Link() (*Link, bool)             { return v.link, v.kind == KindLink }
func (v Value) Image() (*Image, bool)           { return v.image, v.kind == KindImage }
func (v Value) Table() (*Table, bool)           { return v.table, v.kind == KindTable }
func (v Value) List() (*List, bool)             { return v.list, v.kind == KindList }
func (v Value) Blockquote() (*Blockquote, bool) { return v.blockquote, v.kind == KindBlockquote }
func (v Value) Paragraph() (*Paragraph, bool)   { return v.paragraph, v.kind == KindParagraph }
func (v Value) Document() (*Document, bool)     { return v.document, v.kind == KindDocument }
func (v Value) FrontMatter() (*Object, bool)    { return v.frontmatter, v.kind == KindFrontMatter }

// Len reports a length for variants where "length" is meaningful (Array,
// Object, String, List items, Table rows), mirroring the `count`/`length` built-in's scalar cases.
func (v Value) Len() (int, bool) {
	switch v.kind {
	case KindArray:
		return len(v.arr), true
	case KindObject:
		return v.obj.Len(), true
	case KindString:
		return len([]rune(v.s)), true
	case KindList:
		return len(v.list.Items), true
	case KindTable:
		return len(v.table.Rows), true
	default:
		return 0, false
	}
}

func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == ""
	case KindArray:
		return len(v.arr) == 0
	case KindObject:
		return v.obj == nil || v.obj.Len() == 0
	default:
		return false
	}
}

// GetProperty implements the polymorphic per-kind property dispatch table
// of §4.3. Unknown names, and any access on Null, return Null — never an
// error.
func (v Value) GetProperty(name string) Value {
	switch v.kind {
	case KindObject:
		if val, ok := v.obj.Get(name); ok {
			return val
		}
		return Null()
	case KindFrontMatter:
		if val, ok := v.frontmatter.Get(name); ok {
			return val
		}
		return Null()
	case KindHeading:
		h := v.heading
		switch name {
		case "level":
			return Number(float64(h.Level))
		case "text":
			return String(h.Text)
		case "offset":
			return Number(float64(h.Offset))
		case "line":
			return Number(float64(h.Line))
		case "content":
			return String(h.Content)
		case "md", "markdown":
			return String(h.RawMD)
		case "slug":
			return String(h.Slug)
		default:
			return Null()
		}
	case KindCode:
		c := v.code
		switch name {
		case "lang", "language":
			// Normalized per design decision: always Null when absent,
			// never distinguished from an unknown property.
			if !c.HasLang || c.Language == "" {
				return Null()
			}
			return String(c.Language)
		case "text", "content":
			return String(c.Content)
		case "start_line":
			return Number(float64(c.StartLine))
		case "end_line":
			return Number(float64(c.EndLine))
		case "lines":
			return Number(float64(strings.Count(c.Content, "\n") + 1))
		default:
			return Null()
		}
	case KindLink:
		l := v.link
		switch name {
		case "text":
			return String(l.Text)
		case "url":
			return String(l.URL)
		case "type":
			return String(l.Kind.String())
		case "offset":
			return Number(float64(l.Offset))
		default:
			return Null()
		}
	case KindImage:
		i := v.image
		switch name {
		case "alt", "text":
			return String(i.Alt)
		case "src", "url":
			return String(i.Src)
		case "title":
			if !i.HasTitle {
				return Null()
			}
			return String(i.Title)
		default:
			return Null()
		}
	case KindTable:
		t := v.table
		switch name {
		case "headers":
			out := make([]Value, len(t.Headers))
			for idx, h := range t.Headers {
				out[idx] = String(h)
			}
			return Array(out)
		case "rows":
			rows := make([]Value, len(t.Rows))
			for ri, row := range t.Rows {
				cells := make([]Value, len(row))
				for ci, c := range row {
					cells[ci] = String(c)
				}
				rows[ri] = Array(cells)
			}
			return Array(rows)
		case "cols", "columns":
			return Number(float64(len(t.Headers)))
		case "alignments":
			out := make([]Value, len(t.Alignments))
			for idx, a := range t.Alignments {
				out[idx] = String(a)
			}
			return Array(out)
		default:
			return Null()
		}
	case KindList:
		l := v.list
		switch name {
		case "ordered":
			return Bool(l.Ordered)
		case "items":
			out := make([]Value, len(l.Items))
			for idx, it := range l.Items {
				out[idx] = listItemValue(it)
			}
			return Array(out)
		case "length", "count":
			return Number(float64(len(l.Items)))
		default:
			return Null()
		}
	case KindBlockquote:
		switch name {
		case "content", "text":
			return String(v.blockquote.Content)
		default:
			return Null()
		}
	case KindParagraph:
		switch name {
		case "content", "text":
			return String(v.paragraph.Content)
		default:
			return Null()
		}
	case KindDocument:
		d := v.document
		switch name {
		case "content", "text":
			return String(d.Content)
		case "heading_count", "headings":
			return Number(float64(d.HeadingCount))
		case "word_count", "words":
			return Number(float64(d.WordCount))
		default:
			return Null()
		}
	default:
		return Null()
	}
}

func listItemValue(it ListItem) Value {
	o := NewOrderedObject()
	o.Set("content", String(it.Content))
	if it.Checked != nil {
		o.Set("checked", Bool(*it.Checked))
	} else {
		o.Set("checked", Null())
	}
	return ObjectValue(o)
}

// ToText renders a Value as a plain string, per §4.3.
func (v Value) ToText() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.n)
	case KindString:
		return v.s
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.ToText()
		}
		return strings.Join(parts, "\n")
	case KindObject:
		b, err := json.Marshal(v.toJSON())
		if err != nil {
			return ""
		}
		return string(b)
	case KindHeading:
		return v.heading.Text
	case KindCode:
		return v.code.Content
	case KindLink:
		return v.link.Text
	case KindImage:
		return v.image.Alt
	case KindTable:
		return fmt.Sprintf("Table(%dx%d)", len(v.table.Headers), len(v.table.Rows))
	case KindList:
		parts := make([]string, len(v.list.Items))
		for i, it := range v.list.Items {
			parts[i] = it.Content
		}
		return strings.Join(parts, "\n")
	case KindBlockquote:
		return v.blockquote.Content
	case KindParagraph:
		return v.paragraph.Content
	case KindDocument:
		return v.document.Content
	case KindFrontMatter:
		b, err := json.Marshal(v.toJSON())
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("%q", v.s)
	default:
		return v.ToText()
	}
}
