package mdmodel

import (
	"strings"
	"unicode"
)

// Slugify implements §4.2's slug transform: lowercase; keep alphanumeric;
// map whitespace and '-' to '-'; drop everything else; collapse runs of
// '-'; no leading/trailing '-'. Underscores are preserved, matching the
// GitHub-compatible convention this is grounded on.
//
// Slugify is idempotent: Slugify(Slugify(s)) == Slugify(s).
func Slugify(text string) string {
	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			b.WriteRune('-')
		case r == '_':
			b.WriteRune('_')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// calculateLineColumn walks content up to offset counting newlines; used to
// derive 1-based line numbers from the byte offsets C1 stores.
func calculateLineColumn(content []byte, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(content) {
		offset = len(content)
	}
	for i := 0; i < offset; i++ {
		if content[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
