// Package parser implements the recursive-descent parser with
// precedence-climbing expression parsing described in spec.md §4.2.
package parser

import (
	"strconv"

	"mechc/internal/ast"
	"mechc/internal/diagnostics"
	"mechc/internal/lexer"
	"mechc/internal/module"
	"mechc/internal/token"
)

// Parser turns a token stream into a Module (AST + block descriptors).
// Every parse routine that fails records the first error into the
// module's diagnostic collector and returns a nil sentinel; callers
// continue so that later errors in sibling constructs are also surfaced
// (§4.2, §4.10).
type Parser struct {
	lx  *lexer.Lexer
	mod *module.Module

	cur  token.Token
	peek token.Token
}

// New creates a Parser over src, populating a fresh Module named
// sourceName.
func New(sourceName, src string) *Parser {
	mod := module.New(sourceName, src)
	lx := lexer.New(src, mod.Diags)
	p := &Parser{lx: lx, mod: mod}
	p.next()
	p.next()
	return p
}

// Module returns the Module under construction (and its diagnostics).
func (p *Parser) Module() *module.Module { return p.mod }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lx.Parse()
}

func (p *Parser) loc() diagnostics.Location {
	return diagnostics.Location{Line: p.cur.Line, Column: p.cur.Column}
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) errorf(code diagnostics.Code, format string, args ...any) {
	p.mod.Diags.Errorf(code, p.loc(), format, args...)
}

// expect asserts the current token has type t, records an error and
// returns false if not, and otherwise advances past it.
func (p *Parser) expect(t token.Type, what string) bool {
	if !p.curIs(t) {
		p.errorf(diagnostics.ErrS001MissingToken, "expected %s, found %q", what, p.cur.Lexeme)
		return false
	}
	p.next()
	return true
}

// skipToBlockEnd recovers from a parse error by skipping tokens until a
// balanced closing brace (or EOF) is consumed, so sibling top-level
// blocks can still be parsed and their own errors reported.
func (p *Parser) skipToBlockEnd() {
	depth := 0
	for {
		switch p.cur.Type {
		case token.EOF:
			return
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 {
				p.next()
				return
			}
			depth--
		}
		p.next()
	}
}

// ---- expression parsing (precedence climbing) ------------------------

func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parseUnaryOrPrimary()
	if left == nil {
		return nil
	}
	for {
		opType := p.cur.Type
		prec := token.Precedence(opType)
		if prec == 0 || prec < minPrec {
			return left
		}
		if opType == token.ASSIGN {
			// Assignment is handled by parseAssignmentRHS at the
			// statement level; an '=' reaching here inside a
			// sub-expression is a grammar error (§4.2).
			p.errorf(diagnostics.ErrS006AssignInSubexpr, "assignment is not allowed inside a sub-expression")
			return nil
		}
		opTok := p.cur
		p.next()
		nextMin := prec + 1
		if token.RightAssociative(opType) {
			nextMin = prec
		}
		right := p.parseExpression(nextMin)
		if right == nil {
			return nil
		}
		left = ast.NewBinaryAt(ast.Location{Line: opTok.Line, Column: opTok.Column}, binOpFor(opType), left, right)
	}
}

func binOpFor(t token.Type) ast.BinaryOp {
	switch t {
	case token.PLUS:
		return ast.BinAdd
	case token.MINUS:
		return ast.BinSub
	case token.STAR:
		return ast.BinMul
	case token.SLASH:
		return ast.BinDiv
	case token.CARET:
		return ast.BinPow
	case token.LT:
		return ast.BinLT
	case token.LE:
		return ast.BinLE
	case token.GT:
		return ast.BinGT
	case token.GE:
		return ast.BinGE
	case token.EQ:
		return ast.BinEQ
	case token.NE:
		return ast.BinNE
	default:
		return ast.BinAdd
	}
}

func (p *Parser) parseUnaryOrPrimary() ast.Expression {
	switch p.cur.Type {
	case token.PLUS:
		p.next()
		return p.parseUnaryOrPrimary()
	case token.MINUS:
		t := p.cur
		p.next()
		operand := p.parseUnaryOrPrimary()
		if operand == nil {
			return nil
		}
		return ast.NewUnary(t, ast.UnaryNeg, operand)
	case token.EXP, token.LOG, token.SIN, token.COS:
		return p.parseFunctionLikeUnary()
	default:
		return p.parsePrimary()
	}
}

func unaryOpFor(t token.Type) ast.UnaryOp {
	switch t {
	case token.EXP:
		return ast.UnaryExp
	case token.LOG:
		return ast.UnaryLog
	case token.SIN:
		return ast.UnarySin
	case token.COS:
		return ast.UnaryCos
	default:
		return ast.UnaryNeg
	}
}

func (p *Parser) parseFunctionLikeUnary() ast.Expression {
	t := p.cur
	op := unaryOpFor(t.Type)
	p.next()
	if !p.expect(token.LPAREN, "'('") {
		return nil
	}
	arg := p.parseExpression(1)
	if arg == nil {
		return nil
	}
	if !p.expect(token.RPAREN, "')'") {
		return nil
	}
	return ast.NewUnary(t, op, arg)
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.cur.Type {
	case token.NUMBER:
		t := p.cur
		p.next()
		val, err := parseFloat(t.Literal)
		if err != nil {
			p.errorf(diagnostics.ErrL002BadNumber, "malformed number literal %q", t.Lexeme)
			return nil
		}
		return ast.NewNumber(t, val)
	case token.IDENT:
		t := p.cur
		p.next()
		if p.curIs(token.LPAREN) {
			return p.parseCallArgs(t)
		}
		return ast.NewIdentifier(t)
	case token.LPAREN:
		p.next()
		e := p.parseExpression(1)
		if e == nil {
			return nil
		}
		if !p.expect(token.RPAREN, "')'") {
			return nil
		}
		return e
	default:
		p.errorf(diagnostics.ErrS001MissingToken, "unexpected token %q in expression", p.cur.Lexeme)
		return nil
	}
}

func (p *Parser) parseCallArgs(name token.Token) ast.Expression {
	p.next() // consume '('
	call := ast.NewCall(name, name.Lexeme)
	if !p.curIs(token.RPAREN) {
		for {
			arg := p.parseExpression(1)
			if arg == nil {
				return nil
			}
			call.Args = append(call.Args, arg)
			if p.curIs(token.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	if !p.expect(token.RPAREN, "')' to close call arguments") {
		return nil
	}
	return call
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
