package query

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorKind enumerates every lex/parse/eval failure mode §7 names.
type ErrorKind int

const (
	// Lex errors
	ErrUnexpectedChar ErrorKind = iota
	ErrUnterminatedString
	ErrUnterminatedRegex
	ErrInvalidEscape

	// Parse errors
	ErrUnexpectedToken
	ErrUnexpectedEOF
	ErrInvalidHeadingLevel
	ErrInvalidElementType
	ErrInvalidFilter
	ErrMissingColon
	ErrMissingClosingBracket
	ErrMissingClosingParen
	ErrMissingClosingBrace
	ErrMissingThen
	ErrMissingEnd

	// Eval errors
	ErrTypeError
	ErrPropertyNotFound
	ErrUnknownFunction
	ErrUnknownElement
	ErrInvalidArity
	ErrNoMatch
	ErrIndexOutOfBounds
	ErrInvalidRegex
	ErrDivisionByZero
)

// Error is the single rich error type the whole pipeline raises, carrying
// enough context to render an rustc-style caret diagnostic (§7).
type Error struct {
	Kind        ErrorKind
	Span        Span
	Source      string
	Suggestions []string
	Help        string
	Note        string

	// Structured payload, populated per-kind for programmatic inspection.
	Char     rune
	Expected string
	Found    string
	Name     string
	OnType   string
	Index    int64
	Length   int
	Pattern  string
}

func (e *Error) Error() string { return e.shortMessage() }

func newErr(kind ErrorKind, span Span, source string) *Error {
	return &Error{Kind: kind, Span: span, Source: source}
}

// NewError builds an Error for use outside the query package, such as
// registryconfig's expr-lang function adapter.
func NewError(kind ErrorKind, span Span) *Error {
	return newErr(kind, span, "")
}

func (e *Error) WithSuggestions(s []string) *Error { e.Suggestions = s; return e }
func (e *Error) WithHelp(h string) *Error           { e.Help = h; return e }
func (e *Error) WithNote(n string) *Error           { e.Note = n; return e }

// shortMessage renders the single-line message shown under the caret, and
// as the Display/Error() text.
func (e *Error) shortMessage() string {
	switch e.Kind {
	case ErrUnexpectedChar:
		return fmt.Sprintf("unexpected character %q", e.Char)
	case ErrUnterminatedString:
		return "unterminated string literal"
	case ErrUnterminatedRegex:
		return "unterminated regex literal"
	case ErrInvalidEscape:
		return fmt.Sprintf("invalid escape sequence \\%c", e.Char)
	case ErrUnexpectedToken:
		return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
	case ErrUnexpectedEOF:
		return fmt.Sprintf("unexpected end of input, expected %s", e.Expected)
	case ErrInvalidHeadingLevel:
		return fmt.Sprintf("invalid heading level %d (must be 1-6)", e.Index)
	case ErrInvalidElementType:
		return fmt.Sprintf("invalid element type %q", e.Name)
	case ErrInvalidFilter:
		return e.Help
	case ErrMissingColon:
		return "expected ':'"
	case ErrMissingClosingBracket:
		return "expected ']'"
	case ErrMissingClosingParen:
		return "expected ')'"
	case ErrMissingClosingBrace:
		return "expected '}'"
	case ErrMissingThen:
		return "expected 'then'"
	case ErrMissingEnd:
		return "expected 'end'"
	case ErrTypeError:
		return fmt.Sprintf("type error: expected %s, found %s", e.Expected, e.Found)
	case ErrPropertyNotFound:
		return fmt.Sprintf("property %q not found on %s", e.Name, e.OnType)
	case ErrUnknownFunction:
		return fmt.Sprintf("unknown function %q", e.Name)
	case ErrUnknownElement:
		return fmt.Sprintf("unknown element %q", e.Name)
	case ErrInvalidArity:
		return fmt.Sprintf("%s: expected %s arguments, found %d", e.Name, e.Expected, e.Index)
	case ErrNoMatch:
		return fmt.Sprintf("no match for %q (available: %s)", e.Name, e.Expected)
	case ErrIndexOutOfBounds:
		return fmt.Sprintf("index %d out of bounds (length %d)", e.Index, e.Length)
	case ErrInvalidRegex:
		return fmt.Sprintf("invalid regex %q: %s", e.Pattern, e.Help)
	case ErrDivisionByZero:
		return "division by zero"
	default:
		return "query error"
	}
}

// Format renders the rustc-style diagnostic: a caret-underlined span over
// the offending query source, followed by optional help/note lines.
func (e *Error) Format() string {
	var b strings.Builder
	errLabel := color.New(color.FgRed, color.Bold).Sprint("error")
	fmt.Fprintf(&b, "%s: %s\n", errLabel, e.shortMessage())
	b.WriteString("  --> query\n")
	b.WriteString("  |\n")

	line := e.Source
	start, end := e.Span.Start, e.Span.End
	if start < 0 {
		start = 0
	}
	if end > len(line) {
		end = len(line)
	}
	if end < start {
		end = start
	}
	fmt.Fprintf(&b, "1 | %s\n", line)

	width := end - start
	if width < 1 {
		width = 1
	}
	underline := color.New(color.FgRed).Sprint(strings.Repeat("^", width))
	fmt.Fprintf(&b, "  | %s%s\n", strings.Repeat(" ", start), underline)

	if len(e.Suggestions) > 0 {
		quoted := make([]string, len(e.Suggestions))
		for i, s := range e.Suggestions {
			quoted[i] = "'" + s + "'"
		}
		fmt.Fprintf(&b, "  = help: did you mean %s?\n", strings.Join(quoted, " or "))
	}
	if e.Help != "" && e.Kind != ErrInvalidFilter {
		fmt.Fprintf(&b, "  = help: %s\n", e.Help)
	}
	if e.Note != "" {
		fmt.Fprintf(&b, "  = note: %s\n", e.Note)
	}

	return b.String()
}
