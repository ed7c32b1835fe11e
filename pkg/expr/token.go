// Package expr implements the arithmetic expression language used by
// calculated report rows: tokenizer, recursive-descent parser, evaluator
// and dependency extraction over named variables and @N line references.
package expr

import "fmt"

// TokenKind identifies the lexical class of a token
type TokenKind int

// Token kinds produced by Tokenize
const (
	TokenNumber TokenKind = iota
	TokenIdent
	TokenOrderRef
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenLParen
	TokenRParen
)

// String returns a human-readable name for the token kind
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "number"
	case TokenIdent:
		return "identifier"
	case TokenOrderRef:
		return "ordered reference"
	case TokenPlus:
		return "'+'"
	case TokenMinus:
		return "'-'"
	case TokenStar:
		return "'*'"
	case TokenSlash:
		return "'/'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}

// Token is a single lexical token with its byte offset in the source text
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// Tokenize scans the expression source left to right and returns its tokens.
// Whitespace is skipped; any character outside the expression alphabet fails
// with a positioned syntax error.
func Tokenize(text string) ([]Token, error) {
	tokens := make([]Token, 0, len(text)/2+1)

	pos := 0
	for pos < len(text) {
		c := text[pos]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pos++

		case c >= '0' && c <= '9':
			start := pos
			pos = scanDigits(text, pos)
			if pos < len(text) && text[pos] == '.' {
				if pos+1 >= len(text) || !isDigit(text[pos+1]) {
					return nil, newSyntaxError(pos, "digit expected after decimal point")
				}
				pos = scanDigits(text, pos+1)
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Text: text[start:pos], Pos: start})

		case c == '@':
			start := pos
			pos++
			digitsEnd := scanDigits(text, pos)
			if digitsEnd == pos {
				return nil, newSyntaxError(start, "ordered reference '@' must be followed by digits")
			}
			pos = digitsEnd
			tokens = append(tokens, Token{Kind: TokenOrderRef, Text: text[start:pos], Pos: start})

		case isIdentStart(c):
			start := pos
			for pos < len(text) && isIdentPart(text[pos]) {
				pos++
			}
			tokens = append(tokens, Token{Kind: TokenIdent, Text: text[start:pos], Pos: start})

		case c == '+':
			tokens = append(tokens, Token{Kind: TokenPlus, Text: "+", Pos: pos})
			pos++
		case c == '-':
			tokens = append(tokens, Token{Kind: TokenMinus, Text: "-", Pos: pos})
			pos++
		case c == '*':
			tokens = append(tokens, Token{Kind: TokenStar, Text: "*", Pos: pos})
			pos++
		case c == '/':
			tokens = append(tokens, Token{Kind: TokenSlash, Text: "/", Pos: pos})
			pos++
		case c == '(':
			tokens = append(tokens, Token{Kind: TokenLParen, Text: "(", Pos: pos})
			pos++
		case c == ')':
			tokens = append(tokens, Token{Kind: TokenRParen, Text: ")", Pos: pos})
			pos++

		default:
			return nil, newSyntaxError(pos, fmt.Sprintf("unexpected character %q", string(c)))
		}
	}

	return tokens, nil
}

func scanDigits(text string, pos int) int {
	for pos < len(text) && isDigit(text[pos]) {
		pos++
	}
	return pos
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
