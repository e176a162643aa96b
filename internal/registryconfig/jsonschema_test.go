package registryconfig

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateSchemaProducesValidJSON(t *testing.T) {
	b, err := GenerateSchema()
	if err != nil {
		t.Fatalf("GenerateSchema: %s", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("expected valid JSON schema, got error: %s", err)
	}
	if decoded["title"] != "tql registry config" {
		t.Errorf("expected title to be set, got %+v", decoded["title"])
	}
}

func TestGenerateSchemaMentionsAliasesAndFunctions(t *testing.T) {
	b, err := GenerateSchema()
	if err != nil {
		t.Fatalf("GenerateSchema: %s", err)
	}
	s := string(b)
	if !strings.Contains(s, "aliases") || !strings.Contains(s, "functions") {
		t.Errorf("expected schema to mention both config fields, got %s", s)
	}
}

func TestCapitalizeFirst(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"foo":     "Foo",
		"Foo":     "Foo",
		"foo bar": "Foo bar",
	}
	for in, want := range cases {
		if got := capitalizeFirst(in); got != want {
			t.Errorf("capitalizeFirst(%q) = %q, want %q", in, got, want)
		}
	}
}
