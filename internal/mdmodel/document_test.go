package mdmodel

import "testing"

func makeHeadings(levels ...int) []*Heading {
	hs := make([]*Heading, len(levels))
	for i, lvl := range levels {
		hs[i] = &Heading{Level: lvl, Text: "h", Offset: i * 10}
	}
	return hs
}

func TestBuildTreeFlatSiblings(t *testing.T) {
	hs := makeHeadings(1, 1, 1)
	roots := BuildTree(hs)
	if len(roots) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(roots))
	}
}

func TestBuildTreeNestsDeeperLevels(t *testing.T) {
	hs := makeHeadings(1, 2, 3, 2)
	roots := BuildTree(hs)
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	root := roots[0]
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children under the level-1 root, got %d", len(root.Children))
	}
	if len(root.Children[0].Children) != 1 {
		t.Fatalf("expected the first level-2 child to have 1 level-3 child, got %d", len(root.Children[0].Children))
	}
	if root.Children[0].Children[0].Parent != root.Children[0] {
		t.Error("expected the level-3 node's parent to be the first level-2 node")
	}
}

func TestBuildTreePopsStackOnSameOrShallowerLevel(t *testing.T) {
	hs := makeHeadings(1, 2, 2)
	roots := BuildTree(hs)
	if len(roots) != 1 || len(roots[0].Children) != 2 {
		t.Fatalf("expected 1 root with 2 level-2 siblings, got %+v", roots)
	}
}

func TestExtractSectionStopsAtSameOrShallowerHeading(t *testing.T) {
	src := "# A\n\nalpha\n\n## B\n\nbeta\n\n# C\n\ngamma\n"
	doc, err := New().Parse("s.md", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	content, ok := doc.ExtractSection("A")
	if !ok {
		t.Fatal("expected section A to be found")
	}
	if content != "alpha\n\n## B\n\nbeta" {
		t.Errorf("unexpected section content: %q", content)
	}
}

func TestExtractSectionCaseInsensitive(t *testing.T) {
	src := "# Alpha\n\ntext\n"
	doc, err := New().Parse("s.md", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if _, ok := doc.ExtractSection("ALPHA"); !ok {
		t.Error("expected case-insensitive match")
	}
}

func TestExtractSectionNotFound(t *testing.T) {
	src := "# Alpha\n\ntext\n"
	doc, _ := New().Parse("s.md", []byte(src))
	if _, ok := doc.ExtractSection("Missing"); ok {
		t.Error("expected no match for a heading that does not exist")
	}
}

func TestWordCount(t *testing.T) {
	if n := WordCount("one two three"); n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
	if n := WordCount("  "); n != 0 {
		t.Errorf("expected 0 for blank text, got %d", n)
	}
}
