package value

import "testing"

func TestTruthiness(t *testing.T) {
	falsy := []Value{
		Null(),
		Bool(false),
		Number(0),
		String(""),
		Array(nil),
		ObjectValue(NewOrderedObject()),
	}
	for _, v := range falsy {
		if v.IsTruthy() {
			t.Errorf("expected %v to be falsy", v)
		}
	}

	truthy := []Value{
		Bool(true),
		Number(1),
		Number(-1),
		String("x"),
		Array([]Value{Null()}),
		HeadingValue(&Heading{Level: 1, Text: ""}),
	}
	for _, v := range truthy {
		if !v.IsTruthy() {
			t.Errorf("expected %v to be truthy", v)
		}
	}
}

func TestGetPropertyUnknownIsNull(t *testing.T) {
	h := HeadingValue(&Heading{Level: 2, Text: "Intro"})
	if got := h.GetProperty("nope"); got.Kind() != KindNull {
		t.Errorf("expected Null for unknown property, got %v", got)
	}
	if got := Null().GetProperty("anything"); got.Kind() != KindNull {
		t.Errorf("expected Null property access on Null, got %v", got)
	}
}

func TestCodeLangAlwaysNullWhenAbsent(t *testing.T) {
	c := CodeValue(&Code{Content: "x"})
	if got := c.GetProperty("lang"); got.Kind() != KindNull {
		t.Errorf("expected Null for missing lang, got %v", got)
	}
	if got := c.GetProperty("language"); got.Kind() != KindNull {
		t.Errorf("expected Null for missing language, got %v", got)
	}
}

func TestToTextNumberFormatting(t *testing.T) {
	if got := Number(42).ToText(); got != "42" {
		t.Errorf("expected 42, got %q", got)
	}
	if got := Number(3.5).ToText(); got != "3.5" {
		t.Errorf("expected 3.5, got %q", got)
	}
}

func TestToTextArrayJoinsWithNewline(t *testing.T) {
	v := Array([]Value{String("a"), String("b")})
	if got := v.ToText(); got != "a\nb" {
		t.Errorf("expected \"a\\nb\", got %q", got)
	}
}

func TestToTextTableUsesDimensionSummary(t *testing.T) {
	v := TableValue(&Table{
		Headers: []string{"a", "b"},
		Rows:    [][]string{{"1", "2"}, {"3", "4"}, {"5", "6"}},
	})
	if got := v.ToText(); got != "Table(2x3)" {
		t.Errorf("expected \"Table(2x3)\", got %q", got)
	}
}
