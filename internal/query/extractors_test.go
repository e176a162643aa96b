package query

import (
	"testing"

	"github.com/orhun/tql/internal/value"
)

func TestExtractorsRespectDocumentStructure(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	if vals := runQuery(t, doc, ".code"); len(vals) != 1 {
		t.Errorf("expected 1 code block, got %d", len(vals))
	}
	if vals := runQuery(t, doc, ".link"); len(vals) != 1 {
		t.Errorf("expected 1 link, got %d", len(vals))
	}
	if vals := runQuery(t, doc, ".table"); len(vals) != 1 {
		t.Errorf("expected 1 table, got %d", len(vals))
	}
	if vals := runQuery(t, doc, ".list"); len(vals) != 1 {
		t.Errorf("expected 1 list, got %d", len(vals))
	}
	if vals := runQuery(t, doc, ".blockquote"); len(vals) != 1 {
		t.Errorf("expected 1 blockquote, got %d", len(vals))
	}
}

func TestLinkClassification(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	vals := runQuery(t, doc, ".link")
	l, ok := vals[0].Link()
	if !ok {
		t.Fatalf("expected a Link value, got %v", vals[0].Kind())
	}
	if l.Kind != value.LinkExternal {
		t.Errorf("expected LinkExternal for an https:// url, got %v", l.Kind)
	}
}

func TestListItemsCarryCheckedState(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	vals := runQuery(t, doc, ".list")
	items := vals[0].GetProperty("items")
	arr, ok := items.AsArray()
	if !ok || len(arr) != 3 {
		t.Fatalf("expected 3 list items, got %+v", items)
	}
	checkedStates := make([]value.Value, len(arr))
	for i, it := range arr {
		checkedStates[i] = it.GetProperty("checked")
	}
	if checkedStates[0].Kind() != value.KindNull {
		t.Errorf("expected the plain bullet to have no checked state, got %v", checkedStates[0])
	}
	if b, ok := checkedStates[1].AsBool(); !ok || !b {
		t.Errorf("expected the [x] item checked=true, got %v", checkedStates[1])
	}
	if b, ok := checkedStates[2].AsBool(); !ok || b {
		t.Errorf("expected the [ ] item checked=false, got %v", checkedStates[2])
	}
}

func TestFrontMatterExtraction(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	vals := runQuery(t, doc, ".frontmatter")
	if len(vals) != 1 || vals[0].Kind() != value.KindFrontMatter {
		t.Fatalf("expected 1 FrontMatter value, got %+v", vals)
	}
	if got := vals[0].GetProperty("title").ToText(); got != "Sample" {
		t.Errorf("expected title Sample, got %q", got)
	}
}

func TestHeadingsInFencedCodeBlocksAreExcluded(t *testing.T) {
	src := "# Real Heading\n\n```\n# Not A Heading\n```\n"
	doc := mustParse(t, src)
	vals := runQuery(t, doc, ".h | text")
	if len(vals) != 1 {
		t.Fatalf("expected 1 heading, got %d", len(vals))
	}
	if got := vals[0].ToText(); got != "Real Heading" {
		t.Errorf("expected only the real heading, got %q", got)
	}
}

func TestSlugifyIdempotence(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	vals := runQuery(t, doc, `.h1 | text | slugify`)
	once := vals[0].ToText()
	twice := runQuery(t, doc, `.h1 | text | slugify | slugify`)[0].ToText()
	if once != twice {
		t.Errorf("expected slugify to be idempotent, got %q then %q", once, twice)
	}
}
