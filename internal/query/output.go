package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/orhun/tql/internal/value"
)

// OutputFormat is one of the six result renderings §4.9 defines.
type OutputFormat int

const (
	FormatPlain OutputFormat = iota
	FormatJSON
	FormatJSONPretty
	FormatJSONLines
	FormatMarkdown
	FormatTree
)

// ParseOutputFormat resolves a CLI-facing format name to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "plain", "text":
		return FormatPlain, nil
	case "json":
		return FormatJSON, nil
	case "json-pretty", "jsonpretty":
		return FormatJSONPretty, nil
	case "jsonl", "jsonlines", "ndjson":
		return FormatJSONLines, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "tree":
		return FormatTree, nil
	default:
		return FormatPlain, fmt.Errorf("unknown output format: %s", s)
	}
}

// FormatOutput renders a result sequence per §4.9.
func FormatOutput(values []value.Value, format OutputFormat) string {
	switch format {
	case FormatPlain:
		return formatPlain(values)
	case FormatJSON:
		return formatJSON(values, false)
	case FormatJSONPretty:
		return formatJSON(values, true)
	case FormatJSONLines:
		return formatJSONLines(values)
	case FormatMarkdown:
		return formatMarkdown(values)
	case FormatTree:
		return formatTree(values)
	default:
		return formatPlain(values)
	}
}

func formatPlain(values []value.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatPlainValue(v)
	}
	return strings.Join(parts, "\n")
}

func formatPlainValue(v value.Value) string {
	switch v.Kind() {
	case value.KindHeading:
		h, _ := v.Heading()
		return strings.Repeat("#", h.Level) + " " + h.Text
	case value.KindCode:
		c, _ := v.Code()
		return fmt.Sprintf("```%s\n%s\n```", c.Language, c.Content)
	case value.KindLink:
		l, _ := v.Link()
		return fmt.Sprintf("[%s](%s)", l.Text, l.URL)
	case value.KindImage:
		i, _ := v.Image()
		return fmt.Sprintf("![%s](%s)", i.Alt, i.Src)
	case value.KindTable:
		t, _ := v.Table()
		var lines []string
		lines = append(lines, "| "+strings.Join(t.Headers, " | ")+" |")
		seps := make([]string, len(t.Headers))
		for i := range seps {
			seps[i] = "---"
		}
		lines = append(lines, "| "+strings.Join(seps, " | ")+" |")
		for _, row := range t.Rows {
			lines = append(lines, "| "+strings.Join(row, " | ")+" |")
		}
		return strings.Join(lines, "\n")
	case value.KindList:
		l, _ := v.List()
		lines := make([]string, len(l.Items))
		for i, item := range l.Items {
			prefix := "-"
			if l.Ordered {
				prefix = fmt.Sprintf("%d.", i+1)
			}
			checkbox := ""
			if item.Checked != nil {
				if *item.Checked {
					checkbox = "[x] "
				} else {
					checkbox = "[ ] "
				}
			}
			lines[i] = fmt.Sprintf("%s %s%s", prefix, checkbox, item.Content)
		}
		return strings.Join(lines, "\n")
	case value.KindBlockquote:
		b, _ := v.Blockquote()
		lines := strings.Split(b.Content, "\n")
		for i, l := range lines {
			lines[i] = "> " + l
		}
		return strings.Join(lines, "\n")
	case value.KindDocument:
		d, _ := v.Document()
		return fmt.Sprintf("Document: %d headings, %d words", d.HeadingCount, d.WordCount)
	case value.KindArray:
		arr, _ := v.AsArray()
		parts := make([]string, len(arr))
		for i, item := range arr {
			parts[i] = formatPlainValue(item)
		}
		return strings.Join(parts, "\n")
	case value.KindObject:
		obj, _ := v.AsObject()
		var lines []string
		for p := obj.Oldest(); p != nil; p = p.Next() {
			lines = append(lines, fmt.Sprintf("%s: %s", p.Key, formatPlainValue(p.Value)))
		}
		return strings.Join(lines, "\n")
	case value.KindFrontMatter:
		b, err := json.MarshalIndent(v.ToJSON(), "", "  ")
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return v.ToText()
	}
}

func formatJSON(values []value.Value, pretty bool) string {
	var out any
	if len(values) == 1 {
		out = values[0].ToJSON()
	} else {
		arr := make([]any, len(values))
		for i, v := range values {
			arr[i] = v.ToJSON()
		}
		out = arr
	}

	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(out, "", "  ")
	} else {
		b, err = json.Marshal(out)
	}
	if err != nil {
		return ""
	}
	return string(b)
}

func formatJSONLines(values []value.Value) string {
	lines := make([]string, len(values))
	for i, v := range values {
		b, err := json.Marshal(v.ToJSON())
		if err != nil {
			lines[i] = ""
			continue
		}
		lines[i] = string(b)
	}
	return strings.Join(lines, "\n")
}

func formatMarkdown(values []value.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatMarkdownValue(v)
	}
	return strings.Join(parts, "\n\n")
}

func formatMarkdownValue(v value.Value) string {
	switch v.Kind() {
	case value.KindHeading:
		h, _ := v.Heading()
		return h.RawMD
	case value.KindCode:
		c, _ := v.Code()
		return fmt.Sprintf("```%s\n%s\n```", c.Language, c.Content)
	default:
		return formatPlainValue(v)
	}
}

func formatTree(values []value.Value) string {
	var b strings.Builder
	for i, v := range values {
		formatTreeValue(v, "", i == len(values)-1, &b)
	}
	return b.String()
}

func formatTreeValue(v value.Value, prefix string, isLast bool, out *strings.Builder) {
	connector := "├─ "
	childPrefix := prefix + "│  "
	if isLast {
		connector = "└─ "
		childPrefix = prefix + "   "
	}

	switch v.Kind() {
	case value.KindHeading:
		h, _ := v.Heading()
		fmt.Fprintf(out, "%s%s%s %s\n", prefix, connector, strings.Repeat("#", h.Level), h.Text)

	case value.KindArray:
		arr, _ := v.AsArray()
		fmt.Fprintf(out, "%s%s[\n", prefix, connector)
		for i, item := range arr {
			formatTreeValue(item, childPrefix, i == len(arr)-1, out)
		}
		fmt.Fprintf(out, "%s]\n", childPrefix)

	case value.KindObject:
		obj, _ := v.AsObject()
		fmt.Fprintf(out, "%s%s{\n", prefix, connector)
		n := obj.Len()
		i := 0
		for p := obj.Oldest(); p != nil; p = p.Next() {
			fmt.Fprintf(out, "%s%s: ", childPrefix, p.Key)
			if p.Value.Kind() == value.KindObject || p.Value.Kind() == value.KindArray {
				out.WriteByte('\n')
				formatTreeValue(p.Value, childPrefix+"  ", i == n-1, out)
			} else {
				fmt.Fprintf(out, "%s\n", p.Value.ToText())
			}
			i++
		}
		fmt.Fprintf(out, "%s}\n", childPrefix)

	default:
		fmt.Fprintf(out, "%s%s%s\n", prefix, connector, v.ToText())
	}
}
