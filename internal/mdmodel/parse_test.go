package mdmodel

import "testing"

func TestParseExtractsHeadingsInOrder(t *testing.T) {
	src := "# Top\n\n## Sub\n\ntext\n"
	doc, err := New().Parse("s.md", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if len(doc.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(doc.Headings))
	}
	if doc.Headings[0].Level != 1 || doc.Headings[0].Text != "Top" {
		t.Errorf("unexpected first heading: %+v", doc.Headings[0])
	}
	if doc.Headings[1].Level != 2 || doc.Headings[1].Text != "Sub" {
		t.Errorf("unexpected second heading: %+v", doc.Headings[1])
	}
	if doc.Headings[0].Slug != "top" {
		t.Errorf("expected slug 'top', got %q", doc.Headings[0].Slug)
	}
}

func TestParseFencedCodeBlockCapturesLanguage(t *testing.T) {
	src := "```go\nfmt.Println(1)\n```\n"
	doc, err := New().Parse("s.md", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if len(doc.CodeBlocks) != 1 {
		t.Fatalf("expected 1 code block, got %d", len(doc.CodeBlocks))
	}
	cb := doc.CodeBlocks[0]
	if cb.Language != "go" || !cb.HasLang {
		t.Errorf("expected language go, got %+v", cb)
	}
	if cb.Content != "fmt.Println(1)" {
		t.Errorf("unexpected content: %q", cb.Content)
	}
}

func TestParseIndentedCodeBlockHasNoLanguage(t *testing.T) {
	src := "    indented code\n"
	doc, err := New().Parse("s.md", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if len(doc.CodeBlocks) != 1 {
		t.Fatalf("expected 1 code block, got %d", len(doc.CodeBlocks))
	}
	if doc.CodeBlocks[0].HasLang {
		t.Error("expected an indented code block to have no language")
	}
}

func TestParseLinkAndImage(t *testing.T) {
	src := "[docs](https://example.com) and ![alt](pic.png \"title\")\n"
	doc, err := New().Parse("s.md", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if len(doc.Links) != 1 || doc.Links[0].URL != "https://example.com" {
		t.Fatalf("unexpected links: %+v", doc.Links)
	}
	if len(doc.Images) != 1 || doc.Images[0].Src != "pic.png" || doc.Images[0].Title != "title" {
		t.Fatalf("unexpected images: %+v", doc.Images)
	}
}

func TestParseAutoLink(t *testing.T) {
	src := "See <https://example.com/auto> for details.\n"
	doc, err := New().Parse("s.md", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if len(doc.Links) != 1 || doc.Links[0].URL != "https://example.com/auto" {
		t.Fatalf("unexpected autolink: %+v", doc.Links)
	}
}

func TestParseTable(t *testing.T) {
	src := "| a | b |\n| --- | --- |\n| 1 | 2 |\n"
	doc, err := New().Parse("s.md", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if len(doc.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(doc.Tables))
	}
	tb := doc.Tables[0]
	if len(tb.Headers) != 2 || tb.Headers[0] != "a" || tb.Headers[1] != "b" {
		t.Errorf("unexpected headers: %+v", tb.Headers)
	}
	if len(tb.Rows) != 1 || tb.Rows[0][0] != "1" || tb.Rows[0][1] != "2" {
		t.Errorf("unexpected rows: %+v", tb.Rows)
	}
}

func TestParseTaskListCheckedState(t *testing.T) {
	src := "- [x] done\n- [ ] todo\n- plain\n"
	doc, err := New().Parse("s.md", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if len(doc.Lists) != 1 || len(doc.Lists[0].Items) != 3 {
		t.Fatalf("unexpected lists: %+v", doc.Lists)
	}
	items := doc.Lists[0].Items
	if items[0].Checked == nil || !*items[0].Checked {
		t.Errorf("expected item 0 checked=true, got %+v", items[0])
	}
	if items[1].Checked == nil || *items[1].Checked {
		t.Errorf("expected item 1 checked=false, got %+v", items[1])
	}
	if items[2].Checked != nil {
		t.Errorf("expected item 2 to have no checked state, got %+v", items[2])
	}
}

func TestParseFrontMatter(t *testing.T) {
	src := "---\ntitle: Hello\n---\n\n# Body\n"
	doc, err := New().Parse("s.md", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if doc.FrontMatter == nil {
		t.Fatal("expected front matter to be present")
	}
	if doc.FrontMatter.Data["title"] != "Hello" {
		t.Errorf("expected title Hello, got %+v", doc.FrontMatter.Data)
	}
	if doc.FrontMatter.Raw == "" {
		t.Error("expected non-empty raw front matter")
	}
}

func TestParseWithoutFrontMatterLeavesItNil(t *testing.T) {
	doc, err := New().Parse("s.md", []byte("# Just a heading\n"))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if doc.FrontMatter != nil {
		t.Errorf("expected nil front matter, got %+v", doc.FrontMatter)
	}
}

func TestParseBuildsHeadingTree(t *testing.T) {
	src := "# A\n\n## B\n\n### C\n"
	doc, err := New().Parse("s.md", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if len(doc.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(doc.Roots))
	}
	if len(doc.Roots[0].Children) != 1 || len(doc.Roots[0].Children[0].Children) != 1 {
		t.Error("expected a single chain of nested headings")
	}
}
