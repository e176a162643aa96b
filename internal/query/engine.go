// Package query implements tql, a jq-like query language for navigating
// and extracting markdown structure.
//
// The query system is pluggable: a Registry holds built-in and custom
// functions plus element extractors, and results can be rendered through
// any of the formats in output.go.
//
//	doc, _ := mdmodel.New().Parse("doc.md", source)
//	results, err := query.Execute(doc, ".h2 | text")
package query

import (
	"github.com/orhun/tql/internal/mdmodel"
	"github.com/orhun/tql/internal/value"
)

// Engine runs parsed queries against a single document using a registry
// of functions and extractors.
type Engine struct {
	doc *mdmodel.Document
	reg *Registry
}

// NewEngine builds an Engine with the default built-in registry.
func NewEngine(doc *mdmodel.Document) *Engine {
	return &Engine{doc: doc, reg: NewRegistryWithBuiltins()}
}

// NewEngineWithRegistry builds an Engine with a caller-supplied registry,
// letting custom functions and extractors be registered before use.
func NewEngineWithRegistry(doc *mdmodel.Document, reg *Registry) *Engine {
	return &Engine{doc: doc, reg: reg}
}

// Execute runs a parsed Query against the engine's document.
func (e *Engine) Execute(q *Query) ([]value.Value, *Error) {
	ctx := NewEvalContext(e.doc, e.reg)
	return Eval(q, ctx)
}

// Execute parses and runs a query string against doc in one step.
func Execute(doc *mdmodel.Document, queryStr string) ([]value.Value, *Error) {
	q, err := ParseQuery(queryStr)
	if err != nil {
		return nil, err
	}
	engine := NewEngine(doc)
	return engine.Execute(q)
}

// NewEngineFor is a convenience constructor mirroring the original's
// engine()/engine_with_registry() free functions.
func NewEngineFor(doc *mdmodel.Document, reg *Registry) *Engine {
	if reg == nil {
		return NewEngine(doc)
	}
	return NewEngineWithRegistry(doc, reg)
}
