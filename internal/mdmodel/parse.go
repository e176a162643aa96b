package mdmodel

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Parser wraps the goldmark engine configured for tql's document model:
// GFM tables/strikethrough/task-lists for C2, auto heading IDs, and YAML
// front matter extraction.
type Parser struct {
	md goldmark.Markdown
}

// New builds a Parser with the CommonMark/GFM extension set the document
// and content-block models need.
func New() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.TaskList,
				meta.Meta,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// ParseFile reads and parses a markdown file.
func (p *Parser) ParseFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return p.Parse(path, content)
}

// Parse parses markdown source into a Document: the flat, offset-ordered
// heading list and its derived tree (C1), plus document-global positional
// records for code blocks/links/images/tables/lists that extractors
// consult (C7), and any YAML front matter.
func (p *Parser) Parse(path string, content []byte) (*Document, error) {
	reader := text.NewReader(content)
	ctx := parser.NewContext()
	root := p.md.Parser().Parse(reader, parser.WithContext(ctx))

	doc := &Document{Path: path, Source: content}

	if fm := meta.Get(ctx); fm != nil {
		doc.FrontMatter = &FrontMatter{Data: fm}
		if raw, err := frontMatterRaw(content); err == nil {
			doc.FrontMatter.Raw = raw
		}
	}

	headingIndex := 0

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			h := extractHeading(node, content, headingIndex)
			headingIndex++
			doc.Headings = append(doc.Headings, h)

		case *ast.FencedCodeBlock:
			doc.CodeBlocks = append(doc.CodeBlocks, extractCodeBlockPos(node, content))

		case *ast.CodeBlock:
			doc.CodeBlocks = append(doc.CodeBlocks, extractIndentedCodeBlockPos(node, content))

		case *ast.Link:
			doc.Links = append(doc.Links, extractLinkPos(node, content))

		case *ast.AutoLink:
			doc.Links = append(doc.Links, extractAutoLinkPos(node, content))

		case *ast.Image:
			doc.Images = append(doc.Images, extractImagePos(node, content))

		case *east.Table:
			doc.Tables = append(doc.Tables, extractTablePos(node, content))

		case *ast.List:
			doc.Lists = append(doc.Lists, extractListPos(node, content))
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking document AST: %w", err)
	}

	doc.Roots = BuildTree(doc.Headings)
	return doc, nil
}

func extractHeading(node *ast.Heading, content []byte, index int) *Heading {
	text := strings.TrimSpace(textOf(node, content))

	var offset int
	if node.Lines().Len() > 0 {
		offset = node.Lines().At(0).Start
	}
	for offset > 0 && content[offset-1] != '\n' {
		offset--
	}
	line, _ := calculateLineColumn(content, offset)

	lineEnd := bytes.IndexByte(content[offset:], '\n')
	var rawMD string
	if lineEnd >= 0 {
		rawMD = string(content[offset : offset+lineEnd])
	} else {
		rawMD = string(content[offset:])
	}

	return &Heading{
		Level:  node.Level,
		Text:   text,
		Offset: offset,
		Line:   line,
		RawMD:  strings.TrimRight(rawMD, "\r"),
		Slug:   Slugify(text),
	}
}

func textOf(n ast.Node, content []byte) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		writeInlineText(&buf, child, content)
	}
	return buf.String()
}

func writeInlineText(buf *bytes.Buffer, n ast.Node, content []byte) {
	switch t := n.(type) {
	case *ast.Text:
		buf.Write(t.Segment.Value(content))
		if t.SoftLineBreak() {
			buf.WriteByte(' ')
		}
	case *ast.String:
		buf.Write(t.Value)
	case *ast.CodeSpan:
		for c := t.FirstChild(); c != nil; c = c.NextSibling() {
			writeInlineText(buf, c, content)
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			writeInlineText(buf, c, content)
		}
	}
}

func extractCodeBlockPos(node *ast.FencedCodeBlock, content []byte) *CodeBlockPos {
	var lang string
	if node.Info != nil {
		info := string(node.Info.Segment.Value(content))
		if fields := strings.Fields(info); len(fields) > 0 {
			lang = fields[0]
		}
	}

	var body bytes.Buffer
	for i := 0; i < node.Lines().Len(); i++ {
		line := node.Lines().At(i)
		body.Write(line.Value(content))
	}

	startOffset := 0
	if node.Lines().Len() > 0 {
		startOffset = node.Lines().At(0).Start
	}
	startLine, _ := calculateLineColumn(content, startOffset)
	endLine := startLine
	if node.Lines().Len() > 0 {
		last := node.Lines().At(node.Lines().Len() - 1)
		endLine, _ = calculateLineColumn(content, last.Start)
	}

	return &CodeBlockPos{
		Language:  lang,
		HasLang:   lang != "",
		Content:   strings.TrimRight(body.String(), "\n"),
		StartLine: startLine,
		EndLine:   endLine,
		Offset:    startOffset,
	}
}

func extractIndentedCodeBlockPos(node *ast.CodeBlock, content []byte) *CodeBlockPos {
	var body bytes.Buffer
	for i := 0; i < node.Lines().Len(); i++ {
		line := node.Lines().At(i)
		body.Write(line.Value(content))
	}
	startOffset := 0
	if node.Lines().Len() > 0 {
		startOffset = node.Lines().At(0).Start
	}
	startLine, _ := calculateLineColumn(content, startOffset)
	endLine := startLine
	if node.Lines().Len() > 0 {
		last := node.Lines().At(node.Lines().Len() - 1)
		endLine, _ = calculateLineColumn(content, last.Start)
	}
	return &CodeBlockPos{
		HasLang:   false,
		Content:   strings.TrimRight(body.String(), "\n"),
		StartLine: startLine,
		EndLine:   endLine,
		Offset:    startOffset,
	}
}

func extractLinkPos(node *ast.Link, content []byte) *LinkPos {
	offset := firstOffset(node, content)
	return &LinkPos{
		Text:   textOf(node, content),
		URL:    string(node.Destination),
		Offset: offset,
	}
}

func extractAutoLinkPos(node *ast.AutoLink, content []byte) *LinkPos {
	url := string(node.URL(content))
	return &LinkPos{
		Text:   url,
		URL:    url,
		Offset: firstOffset(node, content),
	}
}

func extractImagePos(node *ast.Image, content []byte) *ImagePos {
	var title string
	hasTitle := len(node.Title) > 0
	if hasTitle {
		title = string(node.Title)
	}
	return &ImagePos{
		Alt:    textOf(node, content),
		Src:    string(node.Destination),
		Title:  title,
		Offset: firstOffset(node, content),
	}
}

func extractTablePos(node *east.Table, content []byte) *TablePos {
	tp := &TablePos{}
	for _, align := range node.Alignments {
		switch align {
		case east.AlignLeft:
			tp.Alignments = append(tp.Alignments, "left")
		case east.AlignRight:
			tp.Alignments = append(tp.Alignments, "right")
		case east.AlignCenter:
			tp.Alignments = append(tp.Alignments, "center")
		default:
			tp.Alignments = append(tp.Alignments, "none")
		}
	}

	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(textOf(cell, content)))
		}
		if row.Kind() == east.KindTableHeader {
			tp.Headers = cells
		} else {
			tp.Rows = append(tp.Rows, cells)
		}
	}

	if node.Lines().Len() > 0 {
		tp.Offset = node.Lines().At(0).Start
	}
	return tp
}

func extractListPos(node *ast.List, content []byte) *ListPos {
	lp := &ListPos{Ordered: node.IsOrdered()}
	for item := node.FirstChild(); item != nil; item = item.NextSibling() {
		listItem, ok := item.(*ast.ListItem)
		if !ok {
			continue
		}
		var checked *bool
		itemText := strings.TrimSpace(flattenListItemText(listItem, content, &checked))
		lp.Items = append(lp.Items, ListItemPos{Checked: checked, Content: itemText})
	}
	if node.Lines().Len() > 0 {
		lp.Offset = node.Lines().At(0).Start
	}
	return lp
}

func flattenListItemText(n ast.Node, content []byte, checked **bool) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if tb, ok := c.(*east.TaskCheckBox); ok {
			val := tb.IsChecked
			*checked = &val
			continue
		}
		if tb, ok := c.FirstChild().(*east.TaskCheckBox); ok && *checked == nil {
			val := tb.IsChecked
			*checked = &val
		}
		writeInlineText(&buf, c, content)
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
	}
	return buf.String()
}

func firstOffset(n ast.Node, content []byte) int {
	var offset int
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			offset = t.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return offset
}

// frontMatterRaw re-extracts the raw front matter block text (between the
// opening and closing "---" delimiters) for callers that want the literal
// YAML rather than the decoded map.
func frontMatterRaw(content []byte) (string, error) {
	s := string(content)
	if !strings.HasPrefix(s, "---\n") && !strings.HasPrefix(s, "---\r\n") {
		return "", fmt.Errorf("no front matter")
	}
	rest := strings.TrimPrefix(s, "---\r\n")
	rest = strings.TrimPrefix(rest, "---\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", fmt.Errorf("unterminated front matter")
	}
	return rest[:end], nil
}
