package condition

import (
	"strconv"

	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// The condition grammar is closed: exactly one comparison between two
// arithmetic expressions over column references and numeric literals.
//
//	condition = arith cmpOp arith
//	arith     = term { ("+" | "-") term }
//	term      = unary { ("*" | "/") unary }
//	unary     = "-" unary | primary
//	primary   = NUMBER | IDENT | "(" arith ")"
type arithNode interface {
	eval(columns map[string][]float64, i int) float64
}

type numberNode struct {
	value float64
}

func (n *numberNode) eval(map[string][]float64, int) float64 {
	return n.value
}

type columnNode struct {
	name string
}

func (n *columnNode) eval(columns map[string][]float64, i int) float64 {
	return columns[n.name][i]
}

type binaryNode struct {
	op    tokenKind
	left  arithNode
	right arithNode
}

func (n *binaryNode) eval(columns map[string][]float64, i int) float64 {
	left := n.left.eval(columns, i)
	right := n.right.eval(columns, i)

	switch n.op {
	case tokenPlus:
		return left + right
	case tokenMinus:
		return left - right
	case tokenStar:
		return left * right
	default:
		// Division follows IEEE 754: a zero divisor yields Inf or NaN and the
		// surrounding comparison resolves it to false.
		return left / right
	}
}

type negateNode struct {
	operand arithNode
}

func (n *negateNode) eval(columns map[string][]float64, i int) float64 {
	return -n.operand.eval(columns, i)
}

// Condition is a parsed comparison expression ready for pointwise evaluation.
type Condition struct {
	op      tokenKind
	left    arithNode
	right   arithNode
	columns []string
}

// Columns returns the column names referenced by the expression.
func (c *Condition) Columns() []string {
	return c.columns
}

type parser struct {
	tokens  []token
	pos     int
	columns map[string]struct{}
}

// Parse parses a condition expression into a Condition. Malformed input
// returns an ExpressionSyntax error.
func Parse(expr string) (*Condition, error) {
	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}

	p := &parser{
		tokens:  tokens,
		pos:     0,
		columns: make(map[string]struct{}),
	}

	left, err := p.parseArith()
	if err != nil {
		return nil, err
	}

	opToken := p.peek()
	switch opToken.kind {
	case tokenLT, tokenGT, tokenLE, tokenGE, tokenEQ, tokenNE:
		p.next()
	default:
		return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
			"expected comparison operator at position %d", opToken.pos)
	}

	right, err := p.parseArith()
	if err != nil {
		return nil, err
	}

	if trailing := p.peek(); trailing.kind != tokenEOF {
		return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
			"unexpected token %q at position %d", trailing.text, trailing.pos)
	}

	columns := make([]string, 0, len(p.columns))
	for name := range p.columns {
		columns = append(columns, name)
	}

	return &Condition{
		op:      opToken.kind,
		left:    left,
		right:   right,
		columns: columns,
	}, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}

	return t
}

func (p *parser) parseArith() (arithNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		if op.kind != tokenPlus && op.kind != tokenMinus {
			return left, nil
		}

		p.next()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		left = &binaryNode{op: op.kind, left: left, right: right}
	}
}

func (p *parser) parseTerm() (arithNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		if op.kind != tokenStar && op.kind != tokenSlash {
			return left, nil
		}

		p.next()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &binaryNode{op: op.kind, left: left, right: right}
	}
}

func (p *parser) parseUnary() (arithNode, error) {
	if p.peek().kind == tokenMinus {
		p.next()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &negateNode{operand: operand}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (arithNode, error) {
	t := p.next()

	switch t.kind {
	case tokenNumber:
		value, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
				"malformed number %q at position %d", t.text, t.pos)
		}

		return &numberNode{value: value}, nil
	case tokenIdent:
		p.columns[t.text] = struct{}{}

		return &columnNode{name: t.text}, nil
	case tokenLParen:
		inner, err := p.parseArith()
		if err != nil {
			return nil, err
		}

		if closing := p.next(); closing.kind != tokenRParen {
			return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
				"missing closing parenthesis at position %d", closing.pos)
		}

		return inner, nil
	case tokenEOF:
		return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
			"unexpected end of expression at position %d", t.pos)
	default:
		return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
			"unexpected token %q at position %d", t.text, t.pos)
	}
}
