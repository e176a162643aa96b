package mdmodel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var blockParserMD = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.TaskList),
)

// ParseBlocks parses a section's raw content into the typed Block sequence
// of §4.2: paragraphs, code, lists (flattened, nested items indented two
// spaces per depth), blockquotes (recursively parsed), tables, details and
// horizontal rules. Images are not split out as blocks of their own: an
// image stays in the paragraph that contains it, as one of that
// paragraph's inline elements. Only fenced code becomes a code
// block; indented code is skipped. HTML <details> spans are pre-processed
// before the CommonMark parse and spliced back in afterwards, since
// CommonMark itself treats them as opaque raw HTML.
func ParseBlocks(content string) ([]Block, error) {
	prepassed, details := extractDetailsBlocks(content)

	source := []byte(prepassed)
	reader := text.NewReader(source)
	root := blockParserMD.Parser().Parse(reader)

	var blocks []Block
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		b, ok, err := convertBlock(n, source, details)
		if err != nil {
			return nil, err
		}
		if ok {
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}

func convertBlock(n ast.Node, source []byte, details map[string]Block) (Block, bool, error) {
	switch node := n.(type) {
	case *ast.Paragraph:
		text := strings.TrimSpace(textOf(node, source))
		if b, ok := details[text]; ok {
			return b, true, nil
		}
		return Block{
			Kind:    BlockParagraph,
			Content: text,
			Inline:  extractInline(node, source),
		}, true, nil

	case *ast.FencedCodeBlock:
		var lang string
		if node.Info != nil {
			if fields := strings.Fields(string(node.Info.Segment.Value(source))); len(fields) > 0 {
				lang = fields[0]
			}
		}
		var body bytes.Buffer
		for i := 0; i < node.Lines().Len(); i++ {
			body.Write(node.Lines().At(i).Value(source))
		}
		startLine, endLine := 0, 0
		if node.Lines().Len() > 0 {
			startLine, _ = calculateLineColumn(source, node.Lines().At(0).Start)
			endLine, _ = calculateLineColumn(source, node.Lines().At(node.Lines().Len()-1).Start)
		}
		return Block{
			Kind:      BlockCode,
			Language:  lang,
			Content:   strings.TrimRight(body.String(), "\n"),
			StartLine: startLine,
			EndLine:   endLine,
		}, true, nil

	case *ast.List:
		return convertList(node, source), true, nil

	case *ast.Blockquote:
		raw := strings.TrimSpace(textOf(node, source))
		inner, err := ParseBlocks(raw)
		if err != nil {
			return Block{}, false, err
		}
		return Block{Kind: BlockBlockquote, Content: raw, Blocks: inner}, true, nil

	case *east.Table:
		return convertTable(node, source), true, nil

	case *ast.Image:
		var title string
		if len(node.Title) > 0 {
			title = string(node.Title)
		}
		return Block{
			Kind:  BlockImage,
			Alt:   textOf(node, source),
			Src:   string(node.Destination),
			Title: title,
		}, true, nil

	case *ast.ThematicBreak:
		return Block{Kind: BlockHorizontalRule}, true, nil

	case *ast.HTMLBlock:
		return Block{}, false, nil

	default:
		return Block{}, false, nil
	}
}

// convertList flattens nested items into the parent item's content with
// two-space indentation per depth, preserving task-list checkboxes,
// matching §4.2's list flattening rule. Only depth-1 items are emitted as
// top-level BlockListItems.
func convertList(node *ast.List, source []byte) Block {
	b := Block{Kind: BlockList, Ordered: node.IsOrdered()}
	for item := node.FirstChild(); item != nil; item = item.NextSibling() {
		li, ok := item.(*ast.ListItem)
		if !ok {
			continue
		}
		b.Items = append(b.Items, flattenListItem(li, source, 0))
	}
	return b
}

func flattenListItem(li *ast.ListItem, source []byte, depth int) BlockListItem {
	var checked *bool
	var direct bytes.Buffer
	var nested strings.Builder

	for c := li.FirstChild(); c != nil; c = c.NextSibling() {
		switch child := c.(type) {
		case *ast.List:
			for inner := child.FirstChild(); inner != nil; inner = inner.NextSibling() {
				if innerLi, ok := inner.(*ast.ListItem); ok {
					nestedItem := flattenListItem(innerLi, source, depth+1)
					indent := strings.Repeat("  ", depth+1)
					checkbox := ""
					if nestedItem.Checked != nil {
						if *nestedItem.Checked {
							checkbox = "[x] "
						} else {
							checkbox = "[ ] "
						}
					}
					nested.WriteString("\n" + indent + checkbox + nestedItem.Content)
				}
			}
		default:
			for gc := c.FirstChild(); gc != nil; gc = gc.NextSibling() {
				if tb, ok := gc.(*east.TaskCheckBox); ok {
					val := tb.IsChecked
					checked = &val
					continue
				}
				writeInlineText(&direct, gc, source)
			}
			if tb, ok := c.(*east.TaskCheckBox); ok {
				val := tb.IsChecked
				checked = &val
			}
		}
	}

	content := strings.TrimSpace(direct.String()) + nested.String()
	return BlockListItem{Checked: checked, Content: content}
}

func convertTable(node *east.Table, source []byte) Block {
	b := Block{Kind: BlockTable}
	for _, align := range node.Alignments {
		switch align {
		case east.AlignLeft:
			b.Alignments = append(b.Alignments, "left")
		case east.AlignRight:
			b.Alignments = append(b.Alignments, "right")
		case east.AlignCenter:
			b.Alignments = append(b.Alignments, "center")
		default:
			b.Alignments = append(b.Alignments, "none")
		}
	}
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(textOf(cell, source)))
		}
		if row.Kind() == east.KindTableHeader {
			b.Headers = cells
		} else {
			b.Rows = append(b.Rows, cells)
		}
	}
	return b
}

func extractInline(n ast.Node, source []byte) []InlineElement {
	var out []InlineElement
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, convertInline(c, source))
	}
	return out
}

func convertInline(n ast.Node, source []byte) InlineElement {
	switch t := n.(type) {
	case *ast.Text:
		return InlineElement{Kind: InlineText, Text: string(t.Segment.Value(source))}
	case *ast.Emphasis:
		kind := InlineEmphasis
		if t.Level >= 2 {
			kind = InlineStrong
		}
		return InlineElement{Kind: kind, Text: textOf(t, source), Children: extractInline(t, source)}
	case *ast.CodeSpan:
		return InlineElement{Kind: InlineCode, Text: textOf(t, source)}
	case *ast.Link:
		var title string
		hasTitle := len(t.Title) > 0
		if hasTitle {
			title = string(t.Title)
		}
		return InlineElement{
			Kind: InlineLink, Text: textOf(t, source), URL: string(t.Destination),
			Title: title, HasTitle: hasTitle,
		}
	case *ast.Image:
		var title string
		hasTitle := len(t.Title) > 0
		if hasTitle {
			title = string(t.Title)
		}
		return InlineElement{Kind: InlineImage, Text: textOf(t, source), URL: string(t.Destination), Title: title, HasTitle: hasTitle}
	case *east.Strikethrough:
		return InlineElement{Kind: InlineStrikethrough, Text: textOf(t, source), Children: extractInline(t, source)}
	default:
		return InlineElement{Kind: InlineText, Text: textOf(n, source)}
	}
}

// extractDetailsBlocks performs the HTML <details> pre-pass described in
// §4.2: a linear cursor locates balanced <details>...</details> spans
// (recursing on nested details), extracts an optional <summary>, parses the
// remaining body into Blocks, and replaces the span with a unique
// placeholder paragraph the caller substitutes back after the CommonMark
// parse.
func extractDetailsBlocks(content string) (string, map[string]Block) {
	details := make(map[string]Block)
	var out strings.Builder
	n := 0

	rest := content
	for {
		idx := strings.Index(rest, "<details")
		if idx < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:idx])

		closeTag := strings.Index(rest[idx:], ">")
		if closeTag < 0 {
			out.WriteString(rest[idx:])
			break
		}
		bodyStart := idx + closeTag + 1

		end := findMatchingDetailsEnd(rest, bodyStart)
		if end < 0 {
			out.WriteString(rest[idx:])
			break
		}
		inner := rest[bodyStart:end]
		endTagLen := len("</details>")

		summary, body := extractSummary(inner)
		innerBlocks, err := ParseBlocks(body)
		if err != nil {
			innerBlocks = nil
		}

		placeholder := fmt.Sprintf("[DETAILS_BLOCK_%d]", n)
		details[placeholder] = Block{
			Kind:    BlockDetails,
			Summary: summary,
			Content: strings.TrimSpace(body),
			Blocks:  innerBlocks,
		}
		out.WriteString("\n\n" + placeholder + "\n\n")
		n++

		rest = rest[end+endTagLen:]
	}

	return out.String(), details
}

// findMatchingDetailsEnd returns the index of the "</details>" that closes
// the <details> opened at from, accounting for nested <details> elements.
func findMatchingDetailsEnd(s string, from int) int {
	depth := 1
	pos := from
	for depth > 0 {
		nextOpen := strings.Index(s[pos:], "<details")
		nextClose := strings.Index(s[pos:], "</details>")
		if nextClose < 0 {
			return -1
		}
		if nextOpen >= 0 && nextOpen < nextClose {
			depth++
			pos += nextOpen + len("<details")
			continue
		}
		depth--
		if depth == 0 {
			return pos + nextClose
		}
		pos += nextClose + len("</details>")
	}
	return -1
}

func extractSummary(inner string) (summary, body string) {
	start := strings.Index(inner, "<summary")
	if start < 0 {
		return "", inner
	}
	tagEnd := strings.Index(inner[start:], ">")
	if tagEnd < 0 {
		return "", inner
	}
	contentStart := start + tagEnd + 1
	end := strings.Index(inner[contentStart:], "</summary>")
	if end < 0 {
		return "", inner
	}
	summary = strings.TrimSpace(inner[contentStart : contentStart+end])
	rest := inner[:start] + inner[contentStart+end+len("</summary>"):]
	return summary, strings.TrimSpace(rest)
}
