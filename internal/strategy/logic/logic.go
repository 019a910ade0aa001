// Package logic combines named boolean condition sequences with AND/OR/NOT.
// It is deliberately separated from the condition grammar: logic text can
// only reference pre-evaluated boolean sequences by name, never touch series
// columns or arithmetic.
package logic

import (
	"strings"

	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// The logic grammar, with precedence NOT > AND > OR:
//
//	orExpr  = andExpr { OR andExpr }
//	andExpr = notExpr { AND notExpr }
//	notExpr = NOT notExpr | primary
//	primary = IDENT | "(" orExpr ")"
//
// Keywords are case-insensitive; condition names resolve case-insensitively
// against the supplied mapping.
type boolNode interface {
	eval(conditions map[string][]bool, i int) bool
}

type nameNode struct {
	name string
}

func (n *nameNode) eval(conditions map[string][]bool, i int) bool {
	return conditions[n.name][i]
}

type andNode struct {
	left, right boolNode
}

func (n *andNode) eval(conditions map[string][]bool, i int) bool {
	return n.left.eval(conditions, i) && n.right.eval(conditions, i)
}

type orNode struct {
	left, right boolNode
}

func (n *orNode) eval(conditions map[string][]bool, i int) bool {
	return n.left.eval(conditions, i) || n.right.eval(conditions, i)
}

type notNode struct {
	operand boolNode
}

func (n *notNode) eval(conditions map[string][]bool, i int) bool {
	return !n.operand.eval(conditions, i)
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(input string) ([]token, error) {
	tokens := make([]token, 0, 8)
	i := 0

	for i < len(input) {
		c := input[i]

		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			start := i
			for i < len(input) && (input[i] == '_' ||
				(input[i] >= 'a' && input[i] <= 'z') ||
				(input[i] >= 'A' && input[i] <= 'Z') ||
				(input[i] >= '0' && input[i] <= '9')) {
				i++
			}

			text := input[start:i]

			switch strings.ToUpper(text) {
			case "AND":
				tokens = append(tokens, token{kind: tokenAnd, text: text, pos: start})
			case "OR":
				tokens = append(tokens, token{kind: tokenOr, text: text, pos: start})
			case "NOT":
				tokens = append(tokens, token{kind: tokenNot, text: text, pos: start})
			default:
				tokens = append(tokens, token{kind: tokenIdent, text: strings.ToUpper(text), pos: start})
			}
		default:
			return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
				"unexpected character %q at position %d in logic expression", string(c), i)
		}
	}

	tokens = append(tokens, token{kind: tokenEOF, text: "", pos: len(input)})

	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
	names  map[string]struct{}
}

// Expression is a parsed logic expression ready for evaluation against a
// condition mapping.
type Expression struct {
	root  boolNode
	names []string
}

// Names returns the condition names referenced by the expression.
func (e *Expression) Names() []string {
	return e.names
}

// Parse parses a logic expression. Malformed input returns an
// ExpressionSyntax error.
func Parse(expr string) (*Expression, error) {
	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}

	p := &parser{
		tokens: tokens,
		pos:    0,
		names:  make(map[string]struct{}),
	}

	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if trailing := p.peek(); trailing.kind != tokenEOF {
		return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
			"unexpected token %q at position %d in logic expression", trailing.text, trailing.pos)
	}

	names := make([]string, 0, len(p.names))
	for name := range p.names {
		names = append(names, name)
	}

	return &Expression{root: root, names: names}, nil
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

func (p *parser) parseOr() (boolNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tokenOr {
		p.next()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = &orNode{left: left, right: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (boolNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tokenAnd {
		p.next()

		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		left = &andNode{left: left, right: right}
	}

	return left, nil
}

func (p *parser) parseNot() (boolNode, error) {
	if p.peek().kind == tokenNot {
		p.next()

		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return &notNode{operand: operand}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (boolNode, error) {
	t := p.next()

	switch t.kind {
	case tokenIdent:
		p.names[t.text] = struct{}{}

		return &nameNode{name: t.text}, nil
	case tokenLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		if closing := p.next(); closing.kind != tokenRParen {
			return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
				"missing closing parenthesis at position %d in logic expression", closing.pos)
		}

		return inner, nil
	case tokenEOF:
		return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
			"unexpected end of logic expression at position %d", t.pos)
	default:
		return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
			"unexpected token %q at position %d in logic expression", t.text, t.pos)
	}
}

// Evaluate parses the logic expression and combines the named condition
// sequences into one boolean sequence. Every referenced name must exist in
// the mapping and all sequences must share the same length.
func Evaluate(conditions map[string][]bool, expr string) ([]bool, error) {
	parsed, err := Parse(expr)
	if err != nil {
		return nil, err
	}

	return parsed.Evaluate(conditions)
}

// Evaluate combines the named condition sequences into one boolean sequence.
func (e *Expression) Evaluate(conditions map[string][]bool) ([]bool, error) {
	normalized := make(map[string][]bool, len(conditions))
	for name, sequence := range conditions {
		normalized[strings.ToUpper(name)] = sequence
	}

	length := -1

	for _, name := range e.names {
		sequence, ok := normalized[name]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeUnknownCondition,
				"unknown condition %q in logic expression", name)
		}

		if length == -1 {
			length = len(sequence)
		} else if len(sequence) != length {
			return nil, errors.Newf(errors.ErrCodeSignalAlignment,
				"condition %q has length %d, expected %d", name, len(sequence), length)
		}
	}

	if length == -1 {
		length = 0
	}

	result := make([]bool, length)
	for i := range result {
		result[i] = e.root.eval(normalized, i)
	}

	return result, nil
}
