package query

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/orhun/tql/internal/mdmodel"
	"github.com/orhun/tql/internal/value"
)

// scope narrows element extraction to a byte-offset subtree, used to
// implement the Hierarchy operator (§4.7): once a parent heading is
// located, child evaluation only sees elements inside its section.
type scope struct {
	active       bool
	start, end   int
	parentLevel  int
	direct       bool
}

// EvalContext bundles the document and registry an evaluation runs
// against, plus the active hierarchy scope (§4.7).
type EvalContext struct {
	Doc      *mdmodel.Document
	Registry *Registry
	Debug    func(string)

	sc scope
}

// NewEvalContext builds a context with no active hierarchy scope; debug()
// output goes to stderr.
func NewEvalContext(doc *mdmodel.Document, reg *Registry) *EvalContext {
	return &EvalContext{Doc: doc, Registry: reg, Debug: func(s string) { fmt.Fprintln(os.Stderr, s) }}
}

func (ctx *EvalContext) withScope(start, end, parentLevel int, direct bool) *EvalContext {
	child := *ctx
	child.sc = scope{active: true, start: start, end: end, parentLevel: parentLevel, direct: direct}
	return &child
}

// allowsOffset reports whether an element at offset (with level if it is a
// heading) is inside the active scope.
func (ctx *EvalContext) allowsOffset(offset int, isHeading bool, level int) bool {
	if !ctx.sc.active {
		return true
	}
	if offset < ctx.sc.start || offset >= ctx.sc.end {
		return false
	}
	if isHeading {
		if ctx.sc.direct {
			return level == ctx.sc.parentLevel+1
		}
		return level > ctx.sc.parentLevel
	}
	return true
}

// Eval runs a full Query (one or more comma-joined piped expressions)
// against the document's root Document value, per §4.7.
func Eval(q *Query, ctx *EvalContext) ([]value.Value, *Error) {
	root := documentValue(ctx.Doc)
	var out []value.Value
	for _, pe := range q.Expressions {
		vals, err := ctx.evalPiped(root, pe.Stages)
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	return out, nil
}

func documentValue(doc *mdmodel.Document) value.Value {
	content := string(doc.Source)
	return value.DocumentValue(&value.Document{
		Content:      content,
		HeadingCount: len(doc.Headings),
		WordCount:    mdmodel.WordCount(content),
	})
}

// evalPiped threads current through a sequence of pipeline stages: each
// stage's combined output sequence feeds the next stage, once per value.
func (ctx *EvalContext) evalPiped(current value.Value, stages []Expr) ([]value.Value, *Error) {
	seq := []value.Value{current}
	for _, stage := range stages {
		var next []value.Value
		for _, v := range seq {
			out, err := ctx.evalExpr(v, stage)
			if err != nil {
				return nil, err
			}
			next = append(next, out...)
		}
		seq = next
	}
	return seq, nil
}

func (ctx *EvalContext) evalExpr(current value.Value, e Expr) ([]value.Value, *Error) {
	switch e.Kind {
	case ExprIdentity:
		return []value.Value{current}, nil

	case ExprElement:
		return ctx.evalElement(e)

	case ExprProperty:
		return []value.Value{current.GetProperty(e.Name)}, nil

	case ExprHierarchy:
		return ctx.evalHierarchy(current, e)

	case ExprConditional:
		condVals, err := ctx.evalExpr(current, *e.Condition)
		if err != nil {
			return nil, err
		}
		anyTruthy := false
		for _, v := range condVals {
			if v.IsTruthy() {
				anyTruthy = true
				break
			}
		}
		if anyTruthy {
			return ctx.evalExpr(current, *e.ThenBranch)
		}
		if e.ElseBranch != nil {
			return ctx.evalExpr(current, *e.ElseBranch)
		}
		return nil, nil

	case ExprBinary:
		return ctx.evalBinary(current, e)

	case ExprUnary:
		return ctx.evalUnary(current, e)

	case ExprObject:
		return ctx.evalObject(current, e)

	case ExprArray:
		var flat []value.Value
		for _, el := range e.Elements {
			out, err := ctx.evalExpr(current, el)
			if err != nil {
				return nil, err
			}
			flat = append(flat, out...)
		}
		return []value.Value{value.Array(flat)}, nil

	case ExprGroup:
		return ctx.evalExpr(current, *e.Inner)

	case ExprLiteral:
		return []value.Value{literalValue(e.Literal)}, nil

	case ExprFunction:
		return ctx.evalFunction(current, e)

	default:
		return nil, newErr(ErrTypeError, e.Span, "").WithHelp("unrecognized expression")
	}
}

func literalValue(l Literal) value.Value {
	switch l.Kind {
	case LitString:
		return value.String(l.Str)
	case LitNumber:
		return value.Number(l.Num)
	case LitBool:
		return value.Bool(l.Bool)
	default:
		return value.Null()
	}
}

func (ctx *EvalContext) evalHierarchy(current value.Value, e Expr) ([]value.Value, *Error) {
	parentVals, err := ctx.evalExpr(current, *e.Parent)
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, pv := range parentVals {
		h, ok := pv.Heading()
		if !ok {
			continue
		}
		mdh := ctx.findHeadingByOffset(h.Offset)
		if mdh == nil {
			continue
		}
		start, end := ctx.sectionBounds(mdh)
		childCtx := ctx.withScope(start, end, mdh.Level, e.Direct)
		childVals, err := childCtx.evalExpr(pv, *e.Child)
		if err != nil {
			return nil, err
		}
		out = append(out, childVals...)
	}
	return out, nil
}

func (ctx *EvalContext) findHeadingByOffset(offset int) *mdmodel.Heading {
	for _, h := range ctx.Doc.Headings {
		if h.Offset == offset {
			return h
		}
	}
	return nil
}

func (ctx *EvalContext) sectionBounds(h *mdmodel.Heading) (start, end int) {
	idx := -1
	for i, candidate := range ctx.Doc.Headings {
		if candidate == h {
			idx = i
			break
		}
	}
	if idx < 0 {
		return h.Offset, h.Offset
	}
	start = h.Offset
	end = len(ctx.Doc.Source)
	for j := idx + 1; j < len(ctx.Doc.Headings); j++ {
		if ctx.Doc.Headings[j].Level <= h.Level {
			end = ctx.Doc.Headings[j].Offset
			break
		}
	}
	return start, end
}

func (ctx *EvalContext) evalObject(current value.Value, e Expr) ([]value.Value, *Error) {
	if len(e.Pairs) == 0 {
		return []value.Value{value.ObjectValue(value.NewOrderedObject())}, nil
	}
	results := []*value.Object{value.NewOrderedObject()}
	for _, pair := range e.Pairs {
		vals, err := ctx.evalExpr(current, pair.Value)
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			vals = []value.Value{value.Null()}
		}
		var next []*value.Object
		for _, base := range results {
			for _, v := range vals {
				clone := cloneObject(base)
				clone.Set(pair.Key, v)
				next = append(next, clone)
			}
		}
		results = next
	}
	out := make([]value.Value, len(results))
	for i, o := range results {
		out[i] = value.ObjectValue(o)
	}
	return out, nil
}

func cloneObject(o *value.Object) *value.Object {
	clone := value.NewOrderedObject()
	for p := o.Oldest(); p != nil; p = p.Next() {
		clone.Set(p.Key, p.Value)
	}
	return clone
}

func (ctx *EvalContext) evalUnary(current value.Value, e Expr) ([]value.Value, *Error) {
	inner, err := ctx.evalExpr(current, *e.Inner)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, 0, len(inner))
	for _, v := range inner {
		switch e.UnOp {
		case OpNot:
			out = append(out, value.Bool(!v.IsTruthy()))
		case OpNeg:
			n, ok := v.AsNumber()
			if !ok {
				return nil, newErr(ErrTypeError, e.Span, "").withTypes("number", v.Kind().String())
			}
			out = append(out, value.Number(-n))
		}
	}
	return out, nil
}

func (e *Error) withTypes(expected, found string) *Error {
	e.Expected, e.Found = expected, found
	return e
}

func (ctx *EvalContext) evalBinary(current value.Value, e Expr) ([]value.Value, *Error) {
	lhs, err := ctx.evalExpr(current, *e.Left)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case OpAlt:
		var truthy []value.Value
		for _, v := range lhs {
			if v.IsTruthy() {
				truthy = append(truthy, v)
			}
		}
		if len(truthy) > 0 {
			return truthy, nil
		}
		return ctx.evalExpr(current, *e.Right)

	case OpAnd:
		var out []value.Value
		for _, l := range lhs {
			if !l.IsTruthy() {
				out = append(out, value.Bool(false))
				continue
			}
			rhs, err := ctx.evalExpr(current, *e.Right)
			if err != nil {
				return nil, err
			}
			for _, r := range rhs {
				out = append(out, value.Bool(r.IsTruthy()))
			}
		}
		return out, nil

	case OpOr:
		var out []value.Value
		for _, l := range lhs {
			if l.IsTruthy() {
				out = append(out, value.Bool(true))
				continue
			}
			rhs, err := ctx.evalExpr(current, *e.Right)
			if err != nil {
				return nil, err
			}
			for _, r := range rhs {
				out = append(out, value.Bool(r.IsTruthy()))
			}
		}
		return out, nil
	}

	rhs, err := ctx.evalExpr(current, *e.Right)
	if err != nil {
		return nil, err
	}

	var out []value.Value
	for _, l := range lhs {
		for _, r := range rhs {
			v, evalErr := applyBinaryOp(e.Op, l, r, e.Span)
			if evalErr != nil {
				return nil, evalErr
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func applyBinaryOp(op BinaryOp, l, r value.Value, span Span) (value.Value, *Error) {
	switch op {
	case OpEq:
		return value.Bool(valuesEqual(l, r)), nil
	case OpNe:
		return value.Bool(!valuesEqual(l, r)), nil
	case OpLt, OpLe, OpGt, OpGe:
		return compareValues(op, l, r), nil
	case OpAdd:
		if ls, ok := l.AsString(); ok {
			if rs, ok := r.AsString(); ok {
				return value.String(ls + rs), nil
			}
		}
		ln, lok := l.AsNumber()
		rn, rok := r.AsNumber()
		if !lok || !rok {
			return value.Value{}, newErr(ErrTypeError, span, "").withTypes("number or string", l.Kind().String()+"/"+r.Kind().String())
		}
		return value.Number(ln + rn), nil
	case OpSub:
		ln, lok := l.AsNumber()
		rn, rok := r.AsNumber()
		if !lok || !rok {
			return value.Value{}, newErr(ErrTypeError, span, "").withTypes("number", l.Kind().String())
		}
		return value.Number(ln - rn), nil
	case OpMul:
		ln, lok := l.AsNumber()
		rn, rok := r.AsNumber()
		if !lok || !rok {
			return value.Value{}, newErr(ErrTypeError, span, "").withTypes("number", l.Kind().String())
		}
		return value.Number(ln * rn), nil
	case OpDiv:
		ln, lok := l.AsNumber()
		rn, rok := r.AsNumber()
		if !lok || !rok {
			return value.Value{}, newErr(ErrTypeError, span, "").withTypes("number", l.Kind().String())
		}
		if rn == 0 {
			return value.Value{}, newErr(ErrDivisionByZero, span, "")
		}
		return value.Number(ln / rn), nil
	case OpMod:
		ln, lok := l.AsNumber()
		rn, rok := r.AsNumber()
		if !lok || !rok {
			return value.Value{}, newErr(ErrTypeError, span, "").withTypes("number", l.Kind().String())
		}
		if rn == 0 {
			return value.Value{}, newErr(ErrDivisionByZero, span, "")
		}
		return value.Number(float64(int64(ln) % int64(rn))), nil
	default:
		return value.Value{}, newErr(ErrTypeError, span, "").WithHelp("unsupported operator")
	}
}

func valuesEqual(l, r value.Value) bool {
	if l.Kind() == r.Kind() {
		switch l.Kind() {
		case value.KindNull:
			return true
		case value.KindNumber:
			ln, _ := l.AsNumber()
			rn, _ := r.AsNumber()
			return ln == rn
		case value.KindString:
			ls, _ := l.AsString()
			rs, _ := r.AsString()
			return ls == rs
		case value.KindBool:
			lb, _ := l.AsBool()
			rb, _ := r.AsBool()
			return lb == rb
		}
	}
	return l.ToText() == r.ToText()
}

func compareValues(op BinaryOp, l, r value.Value) value.Value {
	var cmp int
	if ln, lok := l.AsNumber(); lok {
		if rn, rok := r.AsNumber(); rok {
			switch {
			case ln < rn:
				cmp = -1
			case ln > rn:
				cmp = 1
			}
			return boolFromCmp(op, cmp)
		}
	}
	ls, rs := l.ToText(), r.ToText()
	cmp = strings.Compare(ls, rs)
	return boolFromCmp(op, cmp)
}

func boolFromCmp(op BinaryOp, cmp int) value.Value {
	switch op {
	case OpLt:
		return value.Bool(cmp < 0)
	case OpLe:
		return value.Bool(cmp <= 0)
	case OpGt:
		return value.Bool(cmp > 0)
	case OpGe:
		return value.Bool(cmp >= 0)
	default:
		return value.Bool(false)
	}
}

// evalElement resolves a document-global element extractor, pre-narrows
// headings by level, applies filters in order and the index last (§4.7).
func (ctx *EvalContext) evalElement(e Expr) ([]value.Value, *Error) {
	key := tagKey(e.ElementKind.Tag)
	extractor, ok := ctx.Registry.GetExtractor(key)
	if !ok {
		err := newErr(ErrUnknownElement, e.Span, "")
		err.Name = e.ElementKind.AsString()
		return nil, err
	}
	elems, err := extractor(ctx.Doc, ctx)
	if err != nil {
		return nil, err
	}

	if e.ElementKind.Tag == KindHeading && e.ElementKind.Level > 0 {
		var narrowed []value.Value
		for _, v := range elems {
			if h, ok := v.Heading(); ok && h.Level == e.ElementKind.Level {
				narrowed = append(narrowed, v)
			}
		}
		elems = narrowed
	}

	for _, f := range e.Filters {
		elems, err = applyFilter(elems, f)
		if err != nil {
			return nil, err
		}
	}

	if e.Index != nil {
		elems = applyIndexOp(elems, e.Index)
	}

	return elems, nil
}

func tagKey(tag ElementKindTag) string {
	switch tag {
	case KindHeading:
		return "h"
	case KindCode:
		return "code"
	case KindLink:
		return "link"
	case KindImage:
		return "img"
	case KindTable:
		return "table"
	case KindList:
		return "list"
	case KindBlockquote:
		return "blockquote"
	case KindParagraph:
		return "para"
	case KindFrontMatter:
		return "frontmatter"
	default:
		return ""
	}
}

func applyFilter(elems []value.Value, f Filter) ([]value.Value, *Error) {
	switch f.Kind {
	case FilterText:
		var out []value.Value
		for _, v := range elems {
			text := strings.ToLower(v.GetProperty("text").ToText())
			pattern := strings.ToLower(f.Pattern)
			match := false
			if f.Exact {
				match = text == pattern
			} else {
				match = strings.Contains(text, pattern)
			}
			if match {
				out = append(out, v)
			}
		}
		return out, nil

	case FilterRegex:
		re, compileErr := regexp.Compile(f.Pattern)
		if compileErr != nil {
			e := newErr(ErrInvalidRegex, f.Span, "")
			e.Pattern = f.Pattern
			e.Help = compileErr.Error()
			return nil, e
		}
		var out []value.Value
		for _, v := range elems {
			if re.MatchString(v.GetProperty("text").ToText()) {
				out = append(out, v)
			}
		}
		return out, nil

	case FilterType:
		var out []value.Value
		for _, v := range elems {
			if v.GetProperty("type").ToText() == f.Pattern {
				out = append(out, v)
			}
		}
		return out, nil

	default:
		return elems, nil
	}
}

// applyIndexOp applies a bracket index/slice/iterate to a sequence,
// per §4.7: single index uses python-style negatives and is empty (not an
// error) out of bounds; slice clamps; iterate is the identity on the
// sequence (it already produces one output per element).
func applyIndexOp(seq []value.Value, idx *IndexOp) []value.Value {
	n := int64(len(seq))
	switch idx.Kind {
	case IndexSingle:
		i := idx.Single
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil
		}
		return []value.Value{seq[i]}

	case IndexSlice:
		start := int64(0)
		if idx.HasStart {
			start = idx.Start
			if start < 0 {
				start += n
			}
		}
		end := n
		if idx.HasEnd {
			end = idx.End
			if end < 0 {
				end += n
			}
		}
		if start < 0 {
			start = 0
		}
		if end > n {
			end = n
		}
		if start >= end {
			return nil
		}
		return append([]value.Value{}, seq[start:end]...)

	default: // IndexIterate
		return seq
	}
}

// indexInto generalizes bracket indexing to the _index synthetic call
// (postfix index on a non-Element expression): a singleton Array or String
// result is indexed into directly; anything else is indexed as a sequence,
// matching the Element-index semantics above.
func indexInto(values []value.Value, idx *IndexOp) []value.Value {
	if len(values) == 1 {
		switch values[0].Kind() {
		case value.KindArray:
			arr, _ := values[0].AsArray()
			return applyIndexOp(arr, idx)
		case value.KindString:
			s, _ := values[0].AsString()
			runes := []rune(s)
			elems := make([]value.Value, len(runes))
			for i, r := range runes {
				elems[i] = value.String(string(r))
			}
			res := applyIndexOp(elems, idx)
			if idx.Kind == IndexSlice {
				var b strings.Builder
				for _, r := range res {
					b.WriteString(r.ToText())
				}
				return []value.Value{value.String(b.String())}
			}
			return res
		}
	}
	return applyIndexOp(values, idx)
}

func exprToIndexOp(v value.Value) *IndexOp {
	switch v.Kind() {
	case value.KindNumber:
		n, _ := v.AsNumber()
		return &IndexOp{Kind: IndexSingle, Single: int64(n)}
	case value.KindArray:
		arr, _ := v.AsArray()
		op := &IndexOp{Kind: IndexSlice}
		if len(arr) > 0 && arr[0].Kind() == value.KindNumber {
			n, _ := arr[0].AsNumber()
			op.HasStart, op.Start = true, int64(n)
		}
		if len(arr) > 1 && arr[1].Kind() == value.KindNumber {
			n, _ := arr[1].AsNumber()
			op.HasEnd, op.End = true, int64(n)
		}
		return op
	default:
		return &IndexOp{Kind: IndexIterate}
	}
}

func sortByKeys(items, keys []value.Value) []value.Value {
	type pair struct {
		item, key value.Value
	}
	pairs := make([]pair, len(items))
	for i := range items {
		pairs[i] = pair{items[i], keys[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return compareValues(OpLt, pairs[i].key, pairs[j].key).IsTruthy()
	})
	out := make([]value.Value, len(pairs))
	for i, p := range pairs {
		out[i] = p.item
	}
	return []value.Value{value.Array(out)}
}

func groupByKeys(items, keys []value.Value) []value.Value {
	order := make([]string, 0)
	groups := make(map[string][]value.Value)
	for i, item := range items {
		k := keys[i].ToText()
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], item)
	}
	out := make([]value.Value, 0, len(order))
	for _, k := range order {
		out = append(out, value.Array(groups[k]))
	}
	return []value.Value{value.Array(out)}
}

func (ctx *EvalContext) evalFunction(current value.Value, e Expr) ([]value.Value, *Error) {
	name := e.Name
	if _, direct := ctx.Registry.functions[name]; !direct {
		if target, ok := ctx.Registry.aliases[name]; ok {
			name = target
		}
	}
	switch name {
	case "_pipe":
		return ctx.evalPiped(current, e.Args)

	case "_index":
		if len(e.Args) != 2 {
			return nil, newErr(ErrInvalidArity, e.Span, "")
		}
		targetVals, err := ctx.evalExpr(current, e.Args[0])
		if err != nil {
			return nil, err
		}
		idxVals, err := ctx.evalExpr(current, e.Args[1])
		if err != nil {
			return nil, err
		}
		if len(idxVals) == 0 {
			return nil, nil
		}
		idx := exprToIndexOp(idxVals[0])
		return indexInto(targetVals, idx), nil

	case "group_by", "sort_by":
		// The key expression must run once per element of the input array,
		// not once against the array as a whole, so it bypasses the generic
		// evaluate-args-against-current path every other function uses.
		if len(e.Args) != 1 {
			return nil, newErr(ErrInvalidArity, e.Span, "")
		}
		items := inputArray(current)
		keys := make([]value.Value, len(items))
		for i, item := range items {
			out, err := ctx.evalExpr(item, e.Args[0])
			if err != nil {
				return nil, err
			}
			if len(out) > 0 {
				keys[i] = out[0]
			} else {
				keys[i] = value.Null()
			}
		}
		if name == "sort_by" {
			return sortByKeys(items, keys), nil
		}
		return groupByKeys(items, keys), nil

	case "any", "all":
		// The condition runs once per element of the input array, like the
		// group_by/sort_by key above.
		if len(e.Args) != 1 {
			return nil, newErr(ErrInvalidArity, e.Span, "")
		}
		wantAll := name == "all"
		for _, item := range inputArray(current) {
			out, err := ctx.evalExpr(item, e.Args[0])
			if err != nil {
				return nil, err
			}
			if truthy := len(out) > 0 && out[0].IsTruthy(); truthy != wantAll {
				return []value.Value{value.Bool(!wantAll)}, nil
			}
		}
		return []value.Value{value.Bool(wantAll)}, nil
	}

	fn, ok := ctx.Registry.GetFunction(e.Name)
	if !ok {
		err := newErr(ErrUnknownFunction, e.Span, "")
		err.Name = e.Name
		suggestions := ctx.Registry.SuggestFunction(e.Name)
		if len(suggestions) > 0 {
			err = err.WithSuggestions(suggestions)
		}
		return nil, err
	}

	argVals := make([]value.Value, 0, len(e.Args))
	for _, arg := range e.Args {
		out, err := ctx.evalExpr(current, arg)
		if err != nil {
			return nil, err
		}
		if len(out) == 0 {
			argVals = append(argVals, value.Null())
		} else {
			argVals = append(argVals, out[0])
		}
	}

	if !fn.AcceptsArity(len(argVals)) {
		err := newErr(ErrInvalidArity, e.Span, "")
		err.Name = e.Name
		err.Expected = fmt.Sprintf("%d..%d", fn.MinArity, fn.MaxArity)
		err.Index = int64(len(argVals))
		return nil, err
	}

	callArgs := argVals
	if fn.TakesInput {
		callArgs = append([]value.Value{current}, argVals...)
	}

	return fn.Fn(callArgs, ctx)
}
