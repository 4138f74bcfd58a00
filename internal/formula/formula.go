// Package formula evaluates the restricted arithmetic language used by
// FORMULA salary components. Only decimal literals, identifiers, the four
// arithmetic operators, parentheses and the min, max and round functions are
// accepted.
package formula

import (
	"fmt"
	"sort"

	formulaerrors "go-payroll/internal/formula/errors"

	"github.com/shopspring/decimal"
)

const (
	MaxLength = 512
	MaxDepth  = 32
)

// Expr is a parsed formula. It is immutable and safe for concurrent Eval calls.
type Expr struct {
	src   string
	root  node
	names []string
}

// Parse compiles src. All syntax, length and nesting errors are reported here
// so a stored formula is known to be well formed.
func Parse(src string) (*Expr, error) {
	if len(src) > MaxLength {
		return nil, fmt.Errorf("%w: length %d exceeds %d", formulaerrors.ErrTooComplex, len(src), MaxLength)
	}
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 1 {
		return nil, fmt.Errorf("%w: empty formula", formulaerrors.ErrSyntax)
	}

	p := &parser{tokens: tokens, idents: map[string]struct{}{}}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at position %d", formulaerrors.ErrSyntax, t.text, t.pos)
	}

	names := make([]string, 0, len(p.idents))
	for name := range p.idents {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Expr{src: src, root: root, names: names}, nil
}

// Validate parses src and discards the result.
func Validate(src string) error {
	_, err := Parse(src)
	return err
}

func (e *Expr) String() string { return e.src }

// Identifiers returns the variable names referenced by the formula, sorted.
func (e *Expr) Identifiers() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Eval evaluates the formula against vars. A referenced name missing from
// vars is a formula error; dividing by zero is a calculation error.
func (e *Expr) Eval(vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	return e.root.eval(vars)
}

type node interface {
	eval(vars map[string]decimal.Decimal) (decimal.Decimal, error)
}

type numberNode struct{ v decimal.Decimal }

func (n numberNode) eval(map[string]decimal.Decimal) (decimal.Decimal, error) { return n.v, nil }

type identNode struct{ name string }

func (n identNode) eval(vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	v, ok := vars[n.name]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unknown identifier %q", formulaerrors.ErrUnknownIdentifier, n.name)
	}
	return v, nil
}

type negNode struct{ x node }

func (n negNode) eval(vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	v, err := n.x.eval(vars)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Neg(), nil
}

type binaryNode struct {
	op   byte
	l, r node
}

func (n binaryNode) eval(vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	l, err := n.l.eval(vars)
	if err != nil {
		return decimal.Zero, err
	}
	r, err := n.r.eval(vars)
	if err != nil {
		return decimal.Zero, err
	}
	switch n.op {
	case '+':
		return l.Add(r), nil
	case '-':
		return l.Sub(r), nil
	case '*':
		return l.Mul(r), nil
	case '/':
		if r.IsZero() {
			return decimal.Zero, formulaerrors.ErrDivisionByZero
		}
		return l.Div(r), nil
	}
	return decimal.Zero, fmt.Errorf("%w: operator %q", formulaerrors.ErrSyntax, n.op)
}

type callNode struct {
	fn   string
	args []node
}

// arity of each supported function.
var functions = map[string]int{
	"min":   2,
	"max":   2,
	"round": 1,
}

func (n callNode) eval(vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	vals := make([]decimal.Decimal, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(vars)
		if err != nil {
			return decimal.Zero, err
		}
		vals[i] = v
	}
	switch n.fn {
	case "min":
		return decimal.Min(vals[0], vals[1]), nil
	case "max":
		return decimal.Max(vals[0], vals[1]), nil
	case "round":
		return vals[0].Round(2), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", formulaerrors.ErrUnknownFunction, n.fn)
}

// Reserved reports whether name is a function name and so cannot be used as
// a variable or component code.
func Reserved(name string) bool {
	_, ok := functions[name]
	return ok
}
