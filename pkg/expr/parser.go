package expr

import (
	"fmt"
	"strconv"
)

// Parse builds an AST from a token stream using recursive descent. Unary
// operators bind tighter than '*' and '/', which bind tighter than '+' and
// '-'; binary operators of equal precedence associate left. Tokens left over
// after a complete expression are a syntax error.
func Parse(tokens []Token) (Node, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyExpression
	}

	p := &parser{tokens: tokens}
	root, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		return nil, newSyntaxError(tok.Pos, fmt.Sprintf("unexpected %s %q after expression", tok.Kind, tok.Text))
	}

	return root, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.Kind != TokenPlus && tok.Kind != TokenMinus {
			break
		}
		p.pos++

		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: tok.Text[0], Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.Kind != TokenStar && tok.Kind != TokenSlash {
			break
		}
		p.pos++

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: tok.Text[0], Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.Kind == TokenPlus || tok.Kind == TokenMinus {
			p.pos++
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &UnaryNode{Op: tok.Text[0], Operand: operand}, nil
		}
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	if p.pos >= len(p.tokens) {
		return nil, newSyntaxError(p.endPos(), "unexpected end of expression")
	}

	tok := p.tokens[p.pos]
	switch tok.Kind {
	case TokenNumber:
		p.pos++
		value, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, newSyntaxError(tok.Pos, fmt.Sprintf("invalid number %q", tok.Text))
		}
		return &NumberNode{Value: value}, nil

	case TokenIdent:
		p.pos++
		return &VariableNode{Name: tok.Text}, nil

	case TokenOrderRef:
		p.pos++
		return &OrderRefNode{Ref: tok.Text}, nil

	case TokenLParen:
		p.pos++
		inner, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.tokens) || p.tokens[p.pos].Kind != TokenRParen {
			return nil, newSyntaxError(p.endPos(), fmt.Sprintf("expected ')' to close '(' at position %d", tok.Pos))
		}
		p.pos++
		return inner, nil

	default:
		return nil, newSyntaxError(tok.Pos, fmt.Sprintf("unexpected %s %q", tok.Kind, tok.Text))
	}
}

// endPos is the offset reported for errors at the end of the token stream
func (p *parser) endPos() int {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos].Pos
	}
	if len(p.tokens) > 0 {
		last := p.tokens[len(p.tokens)-1]
		return last.Pos + len(last.Text)
	}
	return 0
}
