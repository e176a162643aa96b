package query

import "testing"

func TestStringBuiltins(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	cases := []struct {
		query string
		want  string
	}{
		{`.h1 | text | upper`, "GETTING STARTED"},
		{`.h1 | text | lower`, "getting started"},
		{`.h1 | text | slugify`, "getting-started"},
		{`.h1 | text | contains("Start")`, "true"},
		{`.h1 | text | startswith("Getting")`, "true"},
		{`.h1 | text | endswith("Started")`, "true"},
	}
	for _, c := range cases {
		vals := runQuery(t, doc, c.query)
		if len(vals) != 1 {
			t.Fatalf("%s: expected 1 value, got %d", c.query, len(vals))
		}
		if got := vals[0].ToText(); got != c.want {
			t.Errorf("%s: expected %q, got %q", c.query, c.want, got)
		}
	}
}

func TestCollectionBuiltins(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	vals := runQuery(t, doc, "[.h2] | count")
	n, _ := vals[0].AsNumber()
	if int(n) != 3 {
		t.Errorf("expected count 3, got %v", n)
	}

	vals = runQuery(t, doc, "[.h2] | first | text")
	if got := vals[0].ToText(); got != "Features" {
		t.Errorf("expected Features, got %q", got)
	}

	vals = runQuery(t, doc, "[.h2] | last | text")
	if got := vals[0].ToText(); got != "Usage" {
		t.Errorf("expected Usage, got %q", got)
	}

	vals = runQuery(t, doc, "[.h2] | reverse | first | text")
	if got := vals[0].ToText(); got != "Usage" {
		t.Errorf("expected reverse-first Usage, got %q", got)
	}
}

func TestAliasesResolveToSameBehavior(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	a := runQuery(t, doc, "[.h2] | len")
	b := runQuery(t, doc, "[.h2] | count")
	if a[0].ToText() != b[0].ToText() {
		t.Errorf("expected len/count to agree, got %q vs %q", a[0].ToText(), b[0].ToText())
	}

	c := runQuery(t, doc, "[.h2] | head")
	d := runQuery(t, doc, "[.h2] | first")
	if c[0].ToText() != d[0].ToText() {
		t.Errorf("expected head/first to agree, got %q vs %q", c[0].ToText(), d[0].ToText())
	}
}

func TestContentBuiltins(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	vals := runQuery(t, doc, ".link | url")
	if len(vals) != 1 {
		t.Fatalf("expected 1 link, got %d", len(vals))
	}
	if got := vals[0].ToText(); got != "https://example.com/api" {
		t.Errorf("expected the API url, got %q", got)
	}

	vals = runQuery(t, doc, ".code | lang")
	if got := vals[0].ToText(); got != "bash" {
		t.Errorf("expected bash, got %q", got)
	}
}

func TestBlocksBuiltinExposesNestedStructure(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	vals := runQuery(t, doc, ".list | blocks")
	if len(vals) == 0 {
		t.Fatal("expected blocks to return at least one value")
	}
	for _, v := range vals {
		if v.GetProperty("type").Kind().String() != "string" {
			t.Errorf("expected each block to carry a type tag, got %+v", v)
		}
	}
}

func TestAggregationBuiltins(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	vals := runQuery(t, doc, "stats")
	if got := vals[0].GetProperty("headings"); !got.IsTruthy() {
		t.Errorf("expected a non-zero heading count in stats, got %+v", got)
	}

	vals = runQuery(t, doc, "levels")
	arr, _ := vals[0].AsArray()
	if len(arr) == 0 {
		t.Error("expected at least one distinct heading level")
	}

	vals = runQuery(t, doc, "langs")
	arr, _ = vals[0].AsArray()
	found := false
	for _, v := range arr {
		if v.ToText() == "bash" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected bash among langs, got %+v", arr)
	}
}
