package condition

import (
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
	tokenLT
	tokenGT
	tokenLE
	tokenGE
	tokenEQ
	tokenNE
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// lex splits a condition expression into tokens. Anything outside the closed
// grammar (column references, numeric literals, arithmetic and comparison
// operators, parentheses) is rejected.
func lex(input string) ([]token, error) {
	tokens := make([]token, 0, 16)
	i := 0

	for i < len(input) {
		c := input[i]

		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '+':
			tokens = append(tokens, token{kind: tokenPlus, text: "+", pos: i})
			i++
		case c == '-':
			tokens = append(tokens, token{kind: tokenMinus, text: "-", pos: i})
			i++
		case c == '*':
			tokens = append(tokens, token{kind: tokenStar, text: "*", pos: i})
			i++
		case c == '/':
			tokens = append(tokens, token{kind: tokenSlash, text: "/", pos: i})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++
		case c == '<':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenLE, text: "<=", pos: i})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenLT, text: "<", pos: i})
				i++
			}
		case c == '>':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenGE, text: ">=", pos: i})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenGT, text: ">", pos: i})
				i++
			}
		case c == '=':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenEQ, text: "==", pos: i})
				i += 2
			} else {
				return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
					"unexpected character '=' at position %d, did you mean '=='", i)
			}
		case c == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenNE, text: "!=", pos: i})
				i += 2
			} else {
				return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
					"unexpected character '!' at position %d, did you mean '!='", i)
			}
		case isDigit(c) || c == '.':
			start := i
			sawDot := false

			for i < len(input) && (isDigit(input[i]) || input[i] == '.') {
				if input[i] == '.' {
					if sawDot {
						return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
							"malformed number at position %d", start)
					}

					sawDot = true
				}

				i++
			}

			text := input[start:i]
			if text == "." {
				return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
					"malformed number at position %d", start)
			}

			tokens = append(tokens, token{kind: tokenNumber, text: text, pos: start})
		case isIdentStart(c):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}

			tokens = append(tokens, token{kind: tokenIdent, text: input[start:i], pos: start})
		default:
			return nil, errors.Newf(errors.ErrCodeExpressionSyntax,
				"unexpected character %q at position %d", string(c), i)
		}
	}

	tokens = append(tokens, token{kind: tokenEOF, text: "", pos: len(input)})

	return tokens, nil
}
