package engine

// Expr is a parsed rule or formula ready for evaluation.
type Expr struct {
	root Node
	kind Kind
	src  string
}

// Parse lexes and parses src as the given expression kind.
// It returns an *invalidError when the candidate falls outside the
// token grammar and a *syntaxError (with position) when legal tokens
// are arranged incorrectly.
func Parse(src string, kind Kind) (*Expr, error) {
	toks, err := lex(src, kind)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks, kind: kind, src: src}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().typ != tokEOF {
		return nil, p.errHere()
	}
	return &Expr{root: root, kind: kind, src: src}, nil
}

// Fields returns the distinct field names referenced by the expression,
// in first-appearance order.
func (e *Expr) Fields() []string {
	seen := make(map[string]bool)
	var names []string
	walkFields(e.root, func(f *FieldRef) {
		if !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	})
	return names
}

// parser is a recursive-descent parser with Python-style precedence:
// or < and < not < comparison < additive < multiplicative < unary < power.
type parser struct {
	toks []token
	i    int
	kind Kind
	src  string
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.typ != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) errHere() error {
	return &syntaxError{kind: p.kind, pos: p.peek().pos, src: p.src}
}

func (p *parser) parseExpr() (Node, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokOr {
		op := p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinOp{pos: op.pos, Op: tokOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokAnd {
		op := p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinOp{pos: op.pos, Op: tokAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.peek().typ == tokNot {
		op := p.next()
		expr, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{pos: op.pos, Op: tokNot, Expr: expr}, nil
	}
	return p.parseComparison()
}

func isComparison(t tokenType) bool {
	switch t {
	case tokGT, tokLT, tokGE, tokLE, tokEQ, tokNE:
		return true
	}
	return false
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for isComparison(p.peek().typ) {
		op := p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinOp{pos: op.pos, Op: op.typ, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokPlus || p.peek().typ == tokMinus {
		op := p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinOp{pos: op.pos, Op: op.typ, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().typ {
		case tokStar, tokSlash, tokFloorDiv, tokPercent:
			op := p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &BinOp{pos: op.pos, Op: op.typ, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if p.peek().typ == tokMinus {
		op := p.next()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{pos: op.pos, Op: tokMinus, Expr: expr}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().typ == tokPower {
		op := p.next()
		// Right-associative: 2 ** 3 ** 2 == 2 ** (3 ** 2).
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &BinOp{pos: op.pos, Op: tokPower, Left: base, Right: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (Node, error) {
	switch t := p.peek(); t.typ {
	case tokNumber:
		p.next()
		return &NumberLit{pos: t.pos, Value: t.num}, nil
	case tokDate:
		p.next()
		return &DateLit{pos: t.pos, Value: t.date}, nil
	case tokField:
		p.next()
		return &FieldRef{pos: t.pos, Name: t.field, Index: t.index}, nil
	case tokFunc:
		return p.parseCall()
	case tokLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().typ != tokRParen {
			return nil, p.errHere()
		}
		p.next()
		return inner, nil
	default:
		return nil, p.errHere()
	}
}

func (p *parser) parseCall() (Node, error) {
	name := p.next()
	if p.peek().typ != tokLParen {
		return nil, p.errHere()
	}
	p.next()

	call := &FuncCall{pos: name.pos, Name: name.text}
	switch {
	case name.text == "today":
		// zero arguments
	case aggregateNames[name.text]:
		// exactly one bare field reference
		arg := p.peek()
		if arg.typ != tokField || arg.index != nil {
			return nil, p.errHere()
		}
		p.next()
		call.Args = []Node{&FieldRef{pos: arg.pos, Name: arg.field}}
	default:
		// sqrt, days: one full expression
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = []Node{arg}
	}

	if p.peek().typ != tokRParen {
		return nil, p.errHere()
	}
	p.next()
	return call, nil
}
