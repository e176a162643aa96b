package query

import "testing"

func parseStr(t *testing.T, s string) *Query {
	t.Helper()
	q, err := ParseQuery(s)
	if err != nil {
		t.Fatalf("parse %q: %s", s, err.Error())
	}
	return q
}

func TestParseIdentity(t *testing.T) {
	q := parseStr(t, ".")
	if len(q.Expressions) != 1 {
		t.Fatalf("expected 1 expression, got %d", len(q.Expressions))
	}
	if got := q.Expressions[0].Stages[0].Kind; got != ExprIdentity {
		t.Errorf("expected ExprIdentity, got %v", got)
	}
}

func TestParseElementSelector(t *testing.T) {
	q := parseStr(t, ".h2")
	stage := q.Expressions[0].Stages[0]
	if stage.Kind != ExprElement {
		t.Fatalf("expected ExprElement, got %v", stage.Kind)
	}
	if stage.ElementKind.Tag != KindHeading || stage.ElementKind.Level != 2 {
		t.Errorf("expected heading level 2, got %+v", stage.ElementKind)
	}
}

func TestParseElementWithFilter(t *testing.T) {
	q := parseStr(t, ".h2[Features]")
	stage := q.Expressions[0].Stages[0]
	if stage.ElementKind.Tag != KindHeading || stage.ElementKind.Level != 2 {
		t.Fatalf("expected heading level 2, got %+v", stage.ElementKind)
	}
	if len(stage.Filters) != 1 {
		t.Errorf("expected 1 filter, got %d", len(stage.Filters))
	}
}

func TestParseElementWithIndex(t *testing.T) {
	q := parseStr(t, ".h2[0]")
	stage := q.Expressions[0].Stages[0]
	if stage.Index == nil || stage.Index.Kind != IndexSingle || stage.Index.Single != 0 {
		t.Fatalf("expected single index 0, got %+v", stage.Index)
	}
}

func TestParsePipe(t *testing.T) {
	q := parseStr(t, ".h2 | text")
	if got := len(q.Expressions[0].Stages); got != 2 {
		t.Errorf("expected 2 stages, got %d", got)
	}
}

func TestParseFunctionCall(t *testing.T) {
	q := parseStr(t, `select(contains("API"))`)
	stage := q.Expressions[0].Stages[0]
	if stage.Kind != ExprFunction {
		t.Fatalf("expected ExprFunction, got %v", stage.Kind)
	}
	if stage.Name != "select" {
		t.Errorf("expected name select, got %q", stage.Name)
	}
	if len(stage.Args) != 1 {
		t.Errorf("expected 1 arg, got %d", len(stage.Args))
	}
}

func TestParseHierarchy(t *testing.T) {
	q := parseStr(t, ".h1 > .h2")
	stage := q.Expressions[0].Stages[0]
	if stage.Kind != ExprHierarchy {
		t.Fatalf("expected ExprHierarchy, got %v", stage.Kind)
	}
	if !stage.Direct {
		t.Errorf("expected direct hierarchy for >")
	}
}

func TestParseDescendantHierarchy(t *testing.T) {
	q := parseStr(t, ".h1 >> .code")
	stage := q.Expressions[0].Stages[0]
	if stage.Kind != ExprHierarchy {
		t.Fatalf("expected ExprHierarchy, got %v", stage.Kind)
	}
	if stage.Direct {
		t.Errorf("expected descendant hierarchy for >>")
	}
}

func TestParseComparison(t *testing.T) {
	q := parseStr(t, ".level == 2")
	stage := q.Expressions[0].Stages[0]
	if stage.Kind != ExprBinary {
		t.Fatalf("expected ExprBinary, got %v", stage.Kind)
	}
	if stage.Op != OpEq {
		t.Errorf("expected OpEq, got %v", stage.Op)
	}
}

func TestParseGreaterThanNotConfusedWithHierarchy(t *testing.T) {
	q := parseStr(t, ".level > 2")
	stage := q.Expressions[0].Stages[0]
	if stage.Kind != ExprBinary || stage.Op != OpGt {
		t.Fatalf("expected comparison >, got kind=%v op=%v", stage.Kind, stage.Op)
	}
}

func TestParseCommaSeparatedExpressions(t *testing.T) {
	q := parseStr(t, ".h1, .h2")
	if len(q.Expressions) != 2 {
		t.Fatalf("expected 2 expressions, got %d", len(q.Expressions))
	}
}

func TestParseNegativeNumberLiteral(t *testing.T) {
	// The lexer folds the sign into the number token (matching the
	// original_source lexer), so this never reaches parseUnaryExpr - it
	// comes back as a plain number literal, not ExprUnary/OpNeg.
	q := parseStr(t, "-1")
	stage := q.Expressions[0].Stages[0]
	if stage.Kind != ExprLiteral || stage.Literal.Kind != LitNumber || stage.Literal.Num != -1 {
		t.Fatalf("expected literal -1, got kind=%v literal=%+v", stage.Kind, stage.Literal)
	}
}

func TestParseUnknownFunctionNameIsSyntacticallyValid(t *testing.T) {
	// Suggestion/arity checking happens at eval time (registry-backed), not
	// during parsing, so an unregistered name still parses as a Function node.
	q := parseStr(t, "selec(1)")
	stage := q.Expressions[0].Stages[0]
	if stage.Kind != ExprFunction || stage.Name != "selec" || len(stage.Args) != 1 {
		t.Fatalf("expected Function(selec, 1 arg), got %+v", stage)
	}
}
