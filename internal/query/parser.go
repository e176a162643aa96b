package query

import "fmt"

// parser holds recursive-descent parsing state over a pre-lexed token
// stream, grounded on the original recursive-descent precedence-climbing
// design (§4.5).
type parser struct {
	tokens []Token
	pos    int
	source string
}

// ParseQuery lexes and parses a query string into a Query AST.
func ParseQuery(src string) (*Query, *Error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, source: src}
	return p.parseQuery()
}

func (p *parser) current() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) (Token, bool) {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[idx], true
}

func (p *parser) isAtEnd() bool { return p.current().TKind == TokEOF }

func (p *parser) advance() Token {
	cur := p.current()
	if !p.isAtEnd() {
		p.pos++
	}
	return cur
}

func (p *parser) check(kind TokenKind) bool { return p.current().TKind == kind }

func (p *parser) matches(kinds ...TokenKind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) expect(kind TokenKind) (Token, *Error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	err := newErr(ErrUnexpectedToken, p.current().Span, p.source)
	err.Expected = kind.Name()
	err.Found = p.current().TKind.Name()
	return Token{}, err
}

func (p *parser) unexpectedTokenErr(expected string) *Error {
	err := newErr(ErrUnexpectedToken, p.current().Span, p.source)
	err.Expected = expected
	err.Found = p.current().TKind.Name()
	return err
}

func (p *parser) parseQuery() (*Query, *Error) {
	first, err := p.parsePipedExpr()
	if err != nil {
		return nil, err
	}
	expressions := []PipedExpr{first}

	for p.matches(TokComma) {
		next, err := p.parsePipedExpr()
		if err != nil {
			return nil, err
		}
		expressions = append(expressions, next)
	}

	if !p.isAtEnd() {
		return nil, p.unexpectedTokenErr("end of query")
	}

	return &Query{Expressions: expressions}, nil
}

func (p *parser) parsePipedExpr() (PipedExpr, *Error) {
	first, err := p.parseHierarchyExpr()
	if err != nil {
		return PipedExpr{}, err
	}
	stages := []Expr{first}

	for p.matches(TokPipe) {
		next, err := p.parseHierarchyExpr()
		if err != nil {
			return PipedExpr{}, err
		}
		stages = append(stages, next)
	}

	return PipedExpr{Stages: stages}, nil
}

// pipedToExpr wraps a multi-stage PipedExpr as a synthetic "_pipe" function
// call so the evaluator's dispatch table stays uniform (§4.5/§9).
func pipedToExpr(pe PipedExpr) Expr {
	if len(pe.Stages) == 1 {
		return pe.Stages[0]
	}
	return Expr{Kind: ExprFunction, Name: "_pipe", Args: pe.Stages}
}

func (p *parser) parseHierarchyExpr() (Expr, *Error) {
	expr, err := p.parseOrExpr()
	if err != nil {
		return Expr{}, err
	}

	for {
		direct := false
		if p.matches(TokGtGt) {
			direct = false
		} else if p.matches(TokGt) {
			direct = true
		} else {
			break
		}

		startSpan := expr.Span
		child, err := p.parseOrExpr()
		if err != nil {
			return Expr{}, err
		}
		left, right := expr, child
		expr = Expr{
			Kind:   ExprHierarchy,
			Parent: &left,
			Child:  &right,
			Direct: direct,
			Span:   startSpan.Merge(child.Span),
		}
	}

	return expr, nil
}

func (p *parser) parseOrExpr() (Expr, *Error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return Expr{}, err
	}
	for p.matches(TokOr) {
		right, err := p.parseAndExpr()
		if err != nil {
			return Expr{}, err
		}
		left = binaryExpr(OpOr, left, right)
	}
	return left, nil
}

func (p *parser) parseAndExpr() (Expr, *Error) {
	left, err := p.parseEqualityExpr()
	if err != nil {
		return Expr{}, err
	}
	for p.matches(TokAnd) {
		right, err := p.parseEqualityExpr()
		if err != nil {
			return Expr{}, err
		}
		left = binaryExpr(OpAnd, left, right)
	}
	return left, nil
}

func (p *parser) parseEqualityExpr() (Expr, *Error) {
	left, err := p.parseComparisonExpr()
	if err != nil {
		return Expr{}, err
	}
	for {
		var op BinaryOp
		if p.matches(TokEq) {
			op = OpEq
		} else if p.matches(TokNe) {
			op = OpNe
		} else {
			break
		}
		right, err := p.parseComparisonExpr()
		if err != nil {
			return Expr{}, err
		}
		left = binaryExpr(op, left, right)
	}
	return left, nil
}

func (p *parser) parseComparisonExpr() (Expr, *Error) {
	left, err := p.parseAltExpr()
	if err != nil {
		return Expr{}, err
	}
	for {
		var op BinaryOp
		matched := false
		if p.matches(TokLt) {
			op, matched = OpLt, true
		} else if p.matches(TokLe) {
			op, matched = OpLe, true
		} else if p.check(TokGt) {
			// Don't consume '>' if it's really '>>' or a hierarchy-then-dot.
			next, hasNext := p.peekAt(1)
			if !(hasNext && (next.TKind == TokGt || next.TKind == TokDot)) {
				p.advance()
				op, matched = OpGt, true
			}
		} else if p.matches(TokGe) {
			op, matched = OpGe, true
		}
		if !matched {
			break
		}
		right, err := p.parseAltExpr()
		if err != nil {
			return Expr{}, err
		}
		left = binaryExpr(op, left, right)
	}
	return left, nil
}

func (p *parser) parseAltExpr() (Expr, *Error) {
	left, err := p.parseAdditiveExpr()
	if err != nil {
		return Expr{}, err
	}
	for p.matches(TokAlt) {
		right, err := p.parseAdditiveExpr()
		if err != nil {
			return Expr{}, err
		}
		left = binaryExpr(OpAlt, left, right)
	}
	return left, nil
}

func (p *parser) parseAdditiveExpr() (Expr, *Error) {
	left, err := p.parseMultiplicativeExpr()
	if err != nil {
		return Expr{}, err
	}
	for {
		var op BinaryOp
		if p.matches(TokPlus) {
			op = OpAdd
		} else if p.matches(TokMinus) {
			op = OpSub
		} else {
			break
		}
		right, err := p.parseMultiplicativeExpr()
		if err != nil {
			return Expr{}, err
		}
		left = binaryExpr(op, left, right)
	}
	return left, nil
}

func (p *parser) parseMultiplicativeExpr() (Expr, *Error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return Expr{}, err
	}
	for {
		var op BinaryOp
		if p.matches(TokStar) {
			op = OpMul
		} else if p.matches(TokSlash) {
			op = OpDiv
		} else if p.matches(TokPercent) {
			op = OpMod
		} else {
			break
		}
		right, err := p.parseUnaryExpr()
		if err != nil {
			return Expr{}, err
		}
		left = binaryExpr(op, left, right)
	}
	return left, nil
}

func (p *parser) parseUnaryExpr() (Expr, *Error) {
	startSpan := p.current().Span

	if p.matches(TokNot) {
		inner, err := p.parseUnaryExpr()
		if err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprUnary, UnOp: OpNot, Inner: &inner, Span: startSpan.Merge(inner.Span)}, nil
	}
	if p.matches(TokMinus) {
		inner, err := p.parseUnaryExpr()
		if err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprUnary, UnOp: OpNeg, Inner: &inner, Span: startSpan.Merge(inner.Span)}, nil
	}

	return p.parsePostfixExpr()
}

func (p *parser) parsePostfixExpr() (Expr, *Error) {
	expr, err := p.parsePrimaryExpr()
	if err != nil {
		return Expr{}, err
	}

	for {
		if p.matches(TokDot) {
			startSpan := expr.Span
			name, nameSpan, err := p.parseIdentifier()
			if err != nil {
				return Expr{}, err
			}
			prop := Expr{Kind: ExprProperty, Name: name, Span: startSpan.Merge(nameSpan)}
			if expr.Kind == ExprIdentity {
				// "." alone contributes nothing; ".foo" is just the property.
				expr = prop
			} else {
				// Chain onto whatever came before (e.g. ".h1.level"): evaluate
				// expr first, then read the property off each of its results.
				expr = Expr{
					Kind: ExprFunction,
					Name: "_pipe",
					Args: []Expr{expr, prop},
					Span: startSpan.Merge(nameSpan),
				}
			}
			continue
		}

		if p.check(TokLBracket) {
			idx, span, err := p.parseIndexOrFilter()
			if err != nil {
				return Expr{}, err
			}
			if expr.Kind == ExprElement {
				expr.Index = idx
				expr.Span = expr.Span.Merge(span)
				continue
			}
			startSpan := expr.Span
			expr = Expr{
				Kind: ExprFunction,
				Name: "_index",
				Args: []Expr{expr, indexOpToExpr(idx, span)},
				Span: startSpan.Merge(span),
			}
			continue
		}

		break
	}

	return expr, nil
}

func indexOpToExpr(idx *IndexOp, span Span) Expr {
	switch idx.Kind {
	case IndexSingle:
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitNumber, Num: float64(idx.Single)}, Span: span}
	case IndexSlice:
		startLit := Literal{Kind: LitNull}
		if idx.HasStart {
			startLit = Literal{Kind: LitNumber, Num: float64(idx.Start)}
		}
		endLit := Literal{Kind: LitNull}
		if idx.HasEnd {
			endLit = Literal{Kind: LitNumber, Num: float64(idx.End)}
		}
		return Expr{
			Kind: ExprArray,
			Elements: []Expr{
				{Kind: ExprLiteral, Literal: startLit, Span: span},
				{Kind: ExprLiteral, Literal: endLit, Span: span},
			},
			Span: span,
		}
	default: // IndexIterate
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitNull}, Span: span}
	}
}

func (p *parser) parsePrimaryExpr() (Expr, *Error) {
	span := p.current().Span

	if p.check(TokDot) {
		p.advance()

		if p.isAtEnd() || p.check(TokPipe) || p.check(TokComma) || p.check(TokGt) ||
			p.check(TokGtGt) || p.check(TokRParen) || p.check(TokRBracket) {
			return Expr{Kind: ExprIdentity, Span: NewSpan(span.Start, span.End+1)}, nil
		}

		if p.check(TokIdent) {
			name := p.current().Text
			nameSpan := p.current().Span
			p.advance()

			if kind, ok := ElementKindFromString(name); ok {
				var filters []Filter
				for p.check(TokLBracket) {
					f, idx, fspan, err := p.parseFilterOrIndex()
					if err != nil {
						return Expr{}, err
					}
					if idx != nil {
						return Expr{
							Kind: ExprElement, ElementKind: kind, Filters: filters, Index: idx,
							Span: span.Merge(fspan),
						}, nil
					}
					filters = append(filters, *f)
				}
				return Expr{Kind: ExprElement, ElementKind: kind, Filters: filters, Span: span.Merge(nameSpan)}, nil
			}

			return Expr{Kind: ExprProperty, Name: name, Span: span.Merge(nameSpan)}, nil
		}

		return Expr{}, p.unexpectedTokenErr("identifier")
	}

	if p.matches(TokLParen) {
		inner, err := p.parsePipedExpr()
		if err != nil {
			return Expr{}, err
		}
		endSpan := p.current().Span
		if _, err := p.expect(TokRParen); err != nil {
			return Expr{}, err
		}
		wrapped := pipedToExpr(inner)
		return Expr{Kind: ExprGroup, Inner: &wrapped, Span: span.Merge(endSpan)}, nil
	}

	if p.matches(TokLBrace) {
		return p.parseObjectLiteral(span)
	}

	if p.matches(TokLBracket) {
		return p.parseArrayLiteral(span)
	}

	if p.matches(TokIf) {
		return p.parseConditional(span)
	}

	if p.check(TokString) {
		s := p.current().Text
		p.advance()
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitString, Str: s}, Span: span}, nil
	}

	if p.check(TokNumber) {
		n := p.current().Num
		p.advance()
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitNumber, Num: n}, Span: span}, nil
	}

	if p.matches(TokTrue) {
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitBool, Bool: true}, Span: span}, nil
	}
	if p.matches(TokFalse) {
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitBool, Bool: false}, Span: span}, nil
	}
	if p.matches(TokNull) {
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitNull}, Span: span}, nil
	}

	if p.check(TokIdent) {
		name := p.current().Text
		nameSpan := p.current().Span
		p.advance()

		if p.matches(TokLParen) {
			args, err := p.parseFunctionArgs()
			if err != nil {
				return Expr{}, err
			}
			endSpan := p.current().Span
			if _, err := p.expect(TokRParen); err != nil {
				return Expr{}, err
			}
			return Expr{Kind: ExprFunction, Name: name, Args: args, Span: span.Merge(endSpan)}, nil
		}

		return Expr{Kind: ExprFunction, Name: name, Span: nameSpan}, nil
	}

	return Expr{}, p.unexpectedTokenErr("expression")
}

func (p *parser) parseIdentifier() (string, Span, *Error) {
	span := p.current().Span
	if p.check(TokIdent) {
		name := p.current().Text
		p.advance()
		return name, span, nil
	}
	return "", Span{}, p.unexpectedTokenErr("identifier")
}

// parseFilterOrIndex parses the content of a `[...]` bracket, per the
// IndexOrFilter disambiguation rules of §4.5.
func (p *parser) parseFilterOrIndex() (*Filter, *IndexOp, Span, *Error) {
	startSpan := p.current().Span
	if _, err := p.expect(TokLBracket); err != nil {
		return nil, nil, Span{}, err
	}

	if p.check(TokRBracket) {
		endSpan := p.current().Span
		p.advance()
		return nil, &IndexOp{Kind: IndexIterate}, startSpan.Merge(endSpan), nil
	}

	if p.check(TokNumber) {
		n := int64(p.current().Num)
		p.advance()

		if p.matches(TokColon) {
			var end int64
			hasEnd := false
			if p.check(TokNumber) {
				end = int64(p.current().Num)
				hasEnd = true
				p.advance()
			}
			endSpan := p.current().Span
			if _, err := p.expect(TokRBracket); err != nil {
				return nil, nil, Span{}, err
			}
			return nil, &IndexOp{Kind: IndexSlice, HasStart: true, Start: n, HasEnd: hasEnd, End: end},
				startSpan.Merge(endSpan), nil
		}

		endSpan := p.current().Span
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, nil, Span{}, err
		}
		return nil, &IndexOp{Kind: IndexSingle, Single: n}, startSpan.Merge(endSpan), nil
	}

	if p.matches(TokColon) {
		var end int64
		hasEnd := false
		if p.check(TokNumber) {
			end = int64(p.current().Num)
			hasEnd = true
			p.advance()
		}
		endSpan := p.current().Span
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, nil, Span{}, err
		}
		return nil, &IndexOp{Kind: IndexSlice, HasEnd: hasEnd, End: end}, startSpan.Merge(endSpan), nil
	}

	if p.matches(TokMinus) {
		if p.check(TokNumber) {
			n := int64(p.current().Num)
			p.advance()
			endSpan := p.current().Span
			if _, err := p.expect(TokRBracket); err != nil {
				return nil, nil, Span{}, err
			}
			return nil, &IndexOp{Kind: IndexSingle, Single: -n}, startSpan.Merge(endSpan), nil
		}
	}

	if p.check(TokString) {
		s := p.current().Text
		p.advance()
		endSpan := p.current().Span
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, nil, Span{}, err
		}
		fs := startSpan.Merge(endSpan)
		return &Filter{Kind: FilterText, Pattern: s, Exact: true, Span: fs}, nil, fs, nil
	}

	if p.check(TokIdent) {
		name := p.current().Text
		p.advance()
		endSpan := p.current().Span
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, nil, Span{}, err
		}
		fs := startSpan.Merge(endSpan)
		switch name {
		case "anchor", "external", "relative", "wikilink":
			return &Filter{Kind: FilterType, Pattern: name, Span: fs}, nil, fs, nil
		default:
			return &Filter{Kind: FilterText, Pattern: name, Exact: false, Span: fs}, nil, fs, nil
		}
	}

	e := newErr(ErrInvalidFilter, p.current().Span, p.source)
	e.Help = "expected filter pattern or index"
	return nil, nil, Span{}, e
}

// parseIndexOrFilter is used from postfix position (bracket applied
// to a non-Element expression), where only an index makes sense.
func (p *parser) parseIndexOrFilter() (*IndexOp, Span, *Error) {
	f, idx, span, err := p.parseFilterOrIndex()
	if err != nil {
		return nil, Span{}, err
	}
	if idx != nil {
		return idx, span, nil
	}
	e := newErr(ErrInvalidFilter, span, p.source)
	e.Help = fmt.Sprintf("expected index, got filter %q", f.Pattern)
	return nil, Span{}, e
}

func (p *parser) parseFunctionArgs() ([]Expr, *Error) {
	var args []Expr
	if !p.check(TokRParen) {
		first, err := p.parsePipedExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, pipedToExpr(first))
		for p.matches(TokComma) {
			next, err := p.parsePipedExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, pipedToExpr(next))
		}
	}
	return args, nil
}

func (p *parser) parseObjectLiteral(startSpan Span) (Expr, *Error) {
	var pairs []ObjectPair
	if !p.check(TokRBrace) {
		for {
			var key string
			if p.check(TokString) {
				key = p.current().Text
				p.advance()
			} else if p.check(TokIdent) {
				key = p.current().Text
				p.advance()
			} else {
				return Expr{}, p.unexpectedTokenErr("identifier or string")
			}

			if _, err := p.expect(TokColon); err != nil {
				return Expr{}, err
			}

			valPiped, err := p.parsePipedExpr()
			if err != nil {
				return Expr{}, err
			}
			pairs = append(pairs, ObjectPair{Key: key, Value: pipedToExpr(valPiped)})

			if !p.matches(TokComma) {
				break
			}
		}
	}

	endSpan := p.current().Span
	if _, err := p.expect(TokRBrace); err != nil {
		return Expr{}, err
	}
	return Expr{Kind: ExprObject, Pairs: pairs, Span: startSpan.Merge(endSpan)}, nil
}

func (p *parser) parseArrayLiteral(startSpan Span) (Expr, *Error) {
	var elements []Expr
	if !p.check(TokRBracket) {
		for {
			el, err := p.parsePipedExpr()
			if err != nil {
				return Expr{}, err
			}
			elements = append(elements, pipedToExpr(el))
			if !p.matches(TokComma) {
				break
			}
		}
	}
	endSpan := p.current().Span
	if _, err := p.expect(TokRBracket); err != nil {
		return Expr{}, err
	}
	return Expr{Kind: ExprArray, Elements: elements, Span: startSpan.Merge(endSpan)}, nil
}

func (p *parser) parseConditional(startSpan Span) (Expr, *Error) {
	condPiped, err := p.parsePipedExpr()
	if err != nil {
		return Expr{}, err
	}
	cond := pipedToExpr(condPiped)

	if !p.matches(TokThen) {
		return Expr{}, newErr(ErrMissingThen, p.current().Span, p.source)
	}

	thenPiped, err := p.parsePipedExpr()
	if err != nil {
		return Expr{}, err
	}
	thenBranch := pipedToExpr(thenPiped)

	var elseBranch *Expr
	if p.matches(TokElif) {
		elifSpan := p.current().Span
		elifExpr, err := p.parseConditional(elifSpan)
		if err != nil {
			return Expr{}, err
		}
		elseBranch = &elifExpr
	} else if p.matches(TokElse) {
		elsePiped, err := p.parsePipedExpr()
		if err != nil {
			return Expr{}, err
		}
		e := pipedToExpr(elsePiped)
		elseBranch = &e
	}

	endSpan := p.current().Span
	if !p.matches(TokEnd) {
		return Expr{}, newErr(ErrMissingEnd, p.current().Span, p.source)
	}

	return Expr{
		Kind: ExprConditional, Condition: &cond, ThenBranch: &thenBranch, ElseBranch: elseBranch,
		Span: startSpan.Merge(endSpan),
	}, nil
}

func binaryExpr(op BinaryOp, left, right Expr) Expr {
	l, r := left, right
	return Expr{Kind: ExprBinary, Op: op, Left: &l, Right: &r, Span: left.Span.Merge(right.Span)}
}
