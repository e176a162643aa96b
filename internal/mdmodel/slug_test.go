package mdmodel

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Getting Started":    "getting-started",
		"  leading/trailing ": "leadingtrailing",
		"Hello, World!":       "hello-world",
		"snake_case_name":     "snake_case_name",
		"Multiple   Spaces":   "multiple-spaces",
		"---already-dashed--": "already-dashed",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSlugifyIsIdempotent(t *testing.T) {
	inputs := []string{"Getting Started!!", "a_b-c  D", ""}
	for _, in := range inputs {
		once := Slugify(in)
		twice := Slugify(once)
		if once != twice {
			t.Errorf("Slugify not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCalculateLineColumn(t *testing.T) {
	content := []byte("abc\ndef\nghi")
	line, col := calculateLineColumn(content, 0)
	if line != 1 || col != 1 {
		t.Errorf("offset 0: expected (1,1), got (%d,%d)", line, col)
	}
	line, col = calculateLineColumn(content, 4)
	if line != 2 || col != 1 {
		t.Errorf("offset 4: expected (2,1), got (%d,%d)", line, col)
	}
	line, col = calculateLineColumn(content, 9)
	if line != 3 {
		t.Errorf("offset 9: expected line 3, got %d", line)
	}
}
