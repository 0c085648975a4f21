package parser

import (
	"github.com/lookbusy1344/rvasm-go/isa"
)

// Parser turns a token stream into an AST, recognizing registers against
// whatever spec is loaded rather than hardcoding a register set: the same
// grammar serves any ISA description.
type Parser struct {
	lex      *Lexer
	spec     *isa.Spec
	filename string

	cur  Token
	peek Token
}

// NewParser primes a two-token lookahead over src and returns a Parser
// ready to call ParseProgram.
func NewParser(src, filename string, spec *isa.Spec) *Parser {
	p := &Parser{lex: NewLexer(src, filename), spec: spec, filename: filename}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) curIs(t TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t TokenType) bool { return p.peek.Type == t }

// ParseProgram parses the whole token stream into a Root node.
func (p *Parser) ParseProgram() (*Node, error) {
	root := &Node{Kind: NodeRoot, Pos: p.cur.Pos}

	p.skipNewlines()
	for !p.curIs(TokenEOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, stmt)

		if !p.curIs(TokenEOF) && !p.curIs(TokenNewline) {
			return nil, NewErrorExpected(p.cur.Pos, "unexpected token after statement", "newline or end of input")
		}
		p.skipNewlines()
	}
	return root, nil
}

func (p *Parser) skipNewlines() {
	for p.curIs(TokenNewline) {
		p.advance()
	}
}

func (p *Parser) parseStatement() (*Node, error) {
	if !p.curIs(TokenIdentifier) {
		return nil, NewErrorExpected(p.cur.Pos, "expected a label or instruction", "identifier")
	}
	if p.peekIs(TokenColon) {
		name := p.cur.Literal
		pos := p.cur.Pos
		p.advance() // identifier
		p.advance() // colon
		return &Node{Kind: NodeLabel, Name: name, Pos: pos}, nil
	}
	return p.parseInstruction()
}

func (p *Parser) parseInstruction() (*Node, error) {
	name := p.cur.Literal
	pos := p.cur.Pos
	p.advance()

	var args []*Node
	if !p.curIs(TokenNewline) && !p.curIs(TokenEOF) {
		for {
			arg, err := p.parseArgument()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.curIs(TokenComma) {
				break
			}
			p.advance()
		}
	}
	return &Node{Kind: NodeInstruction, Name: name, Children: args, Pos: pos}, nil
}

func (p *Parser) parseArgument() (*Node, error) {
	pos := p.cur.Pos
	expr, err := p.parseShiftExpr()
	if err != nil {
		return nil, err
	}
	return &Node{Kind: NodeArgument, Left: expr, Pos: pos}, nil
}

func (p *Parser) parseShiftExpr() (*Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var kind NodeKind
		switch p.cur.Type {
		case TokenShl:
			kind = NodeShl
		case TokenShr:
			kind = NodeShr
		case TokenAshr:
			kind = NodeAshr
		default:
			return left, nil
		}
		pos := p.cur.Pos
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = newBinary(kind, pos, left, right)
	}
}

func (p *Parser) parseAdditive() (*Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var kind NodeKind
		switch p.cur.Type {
		case TokenPlus:
			kind = NodePlus
		case TokenMinus:
			kind = NodeMinus
		default:
			return left, nil
		}
		pos := p.cur.Pos
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = newBinary(kind, pos, left, right)
	}
}

func (p *Parser) parseMultiplicative() (*Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var kind NodeKind
		switch p.cur.Type {
		case TokenStar:
			kind = NodeTimes
		case TokenSlash:
			kind = NodeDivide
		default:
			return left, nil
		}
		pos := p.cur.Pos
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = newBinary(kind, pos, left, right)
	}
}

func (p *Parser) parseUnary() (*Node, error) {
	if p.curIs(TokenMinus) {
		pos := p.cur.Pos
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return newNegation(pos, operand), nil
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() (*Node, error) {
	tok := p.cur
	switch tok.Type {
	case TokenIdentifier:
		p.advance()
		if idx, ok := p.spec.RegisterIndexByName(tok.Literal); ok {
			return &Node{Kind: NodeRegister, Reg: idx, Pos: tok.Pos}, nil
		}
		return &Node{Kind: NodeIdentifier, Name: tok.Literal, Pos: tok.Pos}, nil

	case TokenInteger:
		p.advance()
		v, err := parseIntegerLiteral(tok.Literal)
		if err != nil {
			return nil, NewError(tok.Pos, err.Error())
		}
		return newInteger(tok.Pos, v), nil

	case TokenChar:
		p.advance()
		var b byte
		if len(tok.Bytes) > 0 {
			b = tok.Bytes[0]
		}
		return newInteger(tok.Pos, uint64(b)), nil

	case TokenString:
		p.advance()
		return &Node{Kind: NodeStringLiteral, Bytes: tok.Bytes, Pos: tok.Pos}, nil

	case TokenDollar:
		p.advance()
		return &Node{Kind: NodePcValue, Pos: tok.Pos}, nil

	case TokenLParen:
		p.advance()
		inner, err := p.parseShiftExpr()
		if err != nil {
			return nil, err
		}
		if !p.curIs(TokenRParen) {
			return nil, NewErrorExpected(p.cur.Pos, "unclosed parenthesized expression", ")")
		}
		p.advance()
		return inner, nil

	default:
		return nil, NewErrorExpected(tok.Pos, "unexpected token in expression", "identifier, integer, char, string, $, or -")
	}
}
