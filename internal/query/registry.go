package query

import (
	"sort"
	"strings"

	"github.com/orhun/tql/internal/mdmodel"
	"github.com/orhun/tql/internal/value"
)

// FunctionImpl is a built-in or user-registered function body (§4.6).
type FunctionImpl func(args []value.Value, ctx *EvalContext) ([]value.Value, *Error)

// ExtractorFn produces every value of a document-global element kind.
type ExtractorFn func(doc *mdmodel.Document, ctx *EvalContext) ([]value.Value, *Error)

// Function bundles a callable with the metadata the evaluator needs to
// dispatch and arity-check a call.
type Function struct {
	Fn          FunctionImpl
	MinArity    int
	MaxArity    int
	Description string
	TakesInput  bool
}

func (f *Function) AcceptsArity(n int) bool { return n >= f.MinArity && n <= f.MaxArity }

// Registry holds the three extensibility maps §4.6 names: functions,
// extractors and aliases. Lookup resolves through aliases transparently.
type Registry struct {
	functions  map[string]*Function
	extractors map[string]ExtractorFn
	aliases    map[string]string
}

// NewRegistry returns an empty registry with no functions registered.
func NewRegistry() *Registry {
	return &Registry{
		functions:  make(map[string]*Function),
		extractors: make(map[string]ExtractorFn),
		aliases:    make(map[string]string),
	}
}

// NewRegistryWithBuiltins returns a registry pre-populated with every
// built-in function, extractor and alias (§4.8).
func NewRegistryWithBuiltins() *Registry {
	r := NewRegistry()
	registerBuiltinFunctions(r)
	registerBuiltinExtractors(r)
	return r
}

func (r *Registry) RegisterFunction(name string, fn *Function) { r.functions[name] = fn }
func (r *Registry) RegisterAlias(alias, target string)          { r.aliases[alias] = target }
func (r *Registry) RegisterExtractor(name string, fn ExtractorFn) { r.extractors[name] = fn }

// GetFunction resolves name directly, then through the alias table.
func (r *Registry) GetFunction(name string) (*Function, bool) {
	if f, ok := r.functions[name]; ok {
		return f, true
	}
	if target, ok := r.aliases[name]; ok {
		f, ok := r.functions[target]
		return f, ok
	}
	return nil, false
}

func (r *Registry) HasFunction(name string) bool {
	if _, ok := r.functions[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

func (r *Registry) GetExtractor(name string) (ExtractorFn, bool) {
	fn, ok := r.extractors[name]
	return fn, ok
}

func (r *Registry) FunctionNames() []string {
	names := make([]string, 0, len(r.functions))
	for n := range r.functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Aliases returns the alias→target map, for introspection (`tql functions`).
func (r *Registry) Aliases() map[string]string { return r.aliases }

// Description returns fn's description, or "" if unset/unknown.
func (r *Registry) Description(name string) string {
	fn, ok := r.GetFunction(name)
	if !ok {
		return ""
	}
	return fn.Description
}

// SuggestFunction returns up to three registered names plausible as typos
// of name, per §4.6: startswith, contains (either direction), or edit
// distance <= 2, sorted by distance.
func (r *Registry) SuggestFunction(name string) []string {
	lower := strings.ToLower(name)
	var candidates []string
	for n := range r.functions {
		nl := strings.ToLower(n)
		if strings.HasPrefix(nl, lower) || strings.HasPrefix(lower, nl) ||
			strings.Contains(nl, lower) || strings.Contains(lower, nl) ||
			levenshtein(nl, lower) <= 2 {
			candidates = append(candidates, n)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return levenshtein(strings.ToLower(candidates[i]), lower) < levenshtein(strings.ToLower(candidates[j]), lower)
	})
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	return candidates
}
