package query

import (
	"testing"

	"github.com/orhun/tql/internal/value"
)

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "ab", 1},
		{"abc", "abd", 1},
		{"abc", "xyz", 3},
		{"count", "conut", 2},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func noop(args []value.Value, ctx *EvalContext) ([]value.Value, *Error) { return nil, nil }

func TestRegistryFunctions(t *testing.T) {
	r := NewRegistry()
	r.RegisterFunction("test", &Function{Fn: noop, MinArity: 0, MaxArity: 0})

	if !r.HasFunction("test") {
		t.Error("expected has_function(test) to be true")
	}
	if r.HasFunction("nonexistent") {
		t.Error("expected has_function(nonexistent) to be false")
	}
}

func TestRegistryAliases(t *testing.T) {
	r := NewRegistry()
	r.RegisterFunction("count", &Function{Fn: noop, MinArity: 0, MaxArity: 0})
	r.RegisterAlias("length", "count")

	if !r.HasFunction("count") {
		t.Error("expected has_function(count)")
	}
	if !r.HasFunction("length") {
		t.Error("expected has_function(length) via alias")
	}
	if _, ok := r.GetFunction("length"); !ok {
		t.Error("expected get_function(length) to resolve through the alias")
	}
}

func TestSuggestFunction(t *testing.T) {
	r := NewRegistry()
	r.RegisterFunction("contains", &Function{Fn: noop, MinArity: 1, MaxArity: 1})
	r.RegisterFunction("count", &Function{Fn: noop, MinArity: 0, MaxArity: 0})
	r.RegisterFunction("startswith", &Function{Fn: noop, MinArity: 1, MaxArity: 1})

	suggestions := r.SuggestFunction("cont")
	has := func(name string) bool {
		for _, s := range suggestions {
			if s == name {
				return true
			}
		}
		return false
	}
	if !has("contains") {
		t.Errorf("expected suggestions %v to contain contains", suggestions)
	}
	if !has("count") {
		t.Errorf("expected suggestions %v to contain count", suggestions)
	}
}

func TestSuggestFunctionCapsAtThree(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"selecta", "selectb", "selectc", "selectd"} {
		r.RegisterFunction(n, &Function{Fn: noop, MinArity: 0, MaxArity: 0})
	}
	if got := len(r.SuggestFunction("select")); got > 3 {
		t.Errorf("expected at most 3 suggestions, got %d", got)
	}
}

func TestBuiltinRegistryHasCoreFunctions(t *testing.T) {
	r := NewRegistryWithBuiltins()
	for _, name := range []string{"length", "select", "text", "upper", "contains", "group_by", "sort_by", "blocks", "stats"} {
		if !r.HasFunction(name) {
			t.Errorf("expected builtin registry to have %q", name)
		}
	}
	for alias, target := range map[string]string{
		"len": "length", "where": "select", "includes": "contains",
		"head": "first", "take": "limit", "drop": "skip", "group": "group_by",
	} {
		fn, ok := r.GetFunction(alias)
		if !ok {
			t.Errorf("expected alias %q to resolve", alias)
			continue
		}
		targetFn, _ := r.GetFunction(target)
		if fn != targetFn {
			t.Errorf("expected alias %q to resolve to the same Function as %q", alias, target)
		}
	}
}
