package formula

import (
	"fmt"

	formulaerrors "go-payroll/internal/formula/errors"

	"github.com/shopspring/decimal"
)

// parser is a recursive descent parser over:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("-" | "+") unary | primary
//	primary = number | ident | ident "(" [ expr { "," expr } ] ")" | "(" expr ")"
type parser struct {
	tokens []token
	pos    int
	depth  int
	idents map[string]struct{}
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", formulaerrors.ErrTooComplex, MaxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: t.text[0], l: left, r: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: t.text[0], l: left, r: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	t := p.peek()
	if t.kind == tokOp && (t.text == "-" || t.text == "+") {
		p.next()
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			return negNode{x: x}, nil
		}
		return x, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed number %q", formulaerrors.ErrSyntax, t.text)
		}
		return numberNode{v: v}, nil

	case tokIdent:
		if p.peek().kind != tokLParen {
			if _, isFn := functions[t.text]; isFn {
				return nil, fmt.Errorf("%w: %q must be called", formulaerrors.ErrSyntax, t.text)
			}
			p.idents[t.text] = struct{}{}
			return identNode{name: t.text}, nil
		}
		return p.parseCall(t)

	case tokLParen:
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: expected ')' at position %d", formulaerrors.ErrSyntax, closing.pos)
		}
		return x, nil

	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of formula", formulaerrors.ErrSyntax)
	}
	return nil, fmt.Errorf("%w: unexpected %q at position %d", formulaerrors.ErrSyntax, t.text, t.pos)
}

func (p *parser) parseCall(name token) (node, error) {
	arity, ok := functions[name.text]
	if !ok {
		return nil, fmt.Errorf("%w: %q", formulaerrors.ErrUnknownFunction, name.text)
	}
	p.next() // (
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if closing := p.next(); closing.kind != tokRParen {
		return nil, fmt.Errorf("%w: expected ')' at position %d", formulaerrors.ErrSyntax, closing.pos)
	}
	if len(args) != arity {
		return nil, fmt.Errorf("%w: %s takes %d argument(s), got %d", formulaerrors.ErrSyntax, name.text, arity, len(args))
	}
	return callNode{fn: name.text, args: args}, nil
}
