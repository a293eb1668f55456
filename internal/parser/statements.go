package parser

import (
	"mechc/internal/ast"
	"mechc/internal/diagnostics"
	"mechc/internal/token"
)

// parseBracedBlock parses `{ stmt... }`. nested controls whether LOCAL
// declarations are legal inside it (§4.2: only at block top level).
func (p *Parser) parseBracedBlock(nested bool) *ast.Block {
	if !p.curIs(token.LBRACE) {
		p.errorf(diagnostics.ErrS001MissingToken, "expected '{' to open block, found %q", p.cur.Lexeme)
		return nil
	}
	lbrace := p.cur
	p.next()
	block := ast.NewBlock(lbrace, nested)
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement(block)
		if stmt == nil {
			p.skipToStatementRecovery()
			continue
		}
		block.Body = append(block.Body, stmt)
	}
	p.expect(token.RBRACE, "'}' to close block")
	return block
}

// skipToStatementRecovery advances past the token that caused a parse
// failure so sibling statements in the same block can still be parsed.
func (p *Parser) skipToStatementRecovery() {
	if p.curIs(token.RBRACE) || p.curIs(token.EOF) {
		return
	}
	p.next()
}

func (p *Parser) parseStatement(block *ast.Block) ast.Statement {
	switch p.cur.Type {
	case token.LOCAL:
		return p.parseLocalDeclaration(block)
	case token.SOLVE:
		return p.parseSolveStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.INITIAL:
		return p.parseNestedInitialBlock()
	case token.IDENT:
		return p.parseExprStatement()
	default:
		p.errorf(diagnostics.ErrS001MissingToken, "unexpected token %q at start of statement", p.cur.Lexeme)
		return nil
	}
}

func (p *Parser) parseLocalDeclaration(block *ast.Block) ast.Statement {
	t := p.cur
	if block.IsNested {
		p.errorf(diagnostics.ErrS004LocalInNestedScope, "LOCAL declarations are only legal at block top level")
	}
	p.next()
	decl := ast.NewLocalDeclaration(t)
	if !p.curIs(token.IDENT) {
		p.errorf(diagnostics.ErrS001MissingToken, "expected identifier after LOCAL")
		return nil
	}
	decl.Names = append(decl.Names, p.cur.Lexeme)
	p.next()
	for p.curIs(token.COMMA) {
		p.next()
		if !p.curIs(token.IDENT) {
			p.errorf(diagnostics.ErrS001MissingToken, "expected identifier after ',' in LOCAL declaration")
			return nil
		}
		decl.Names = append(decl.Names, p.cur.Lexeme)
		p.next()
	}
	return decl
}

func (p *Parser) parseSolveStatement() ast.Statement {
	t := p.cur
	p.next()
	if !p.curIs(token.IDENT) {
		p.errorf(diagnostics.ErrS001MissingToken, "expected procedure name after SOLVE")
		return nil
	}
	target := p.cur.Lexeme
	p.next()
	if !p.expect(token.METHOD, "METHOD") {
		return nil
	}
	if !p.curIs(token.CNEXP) {
		p.errorf(diagnostics.ErrS003BadSolveMethod, "unsupported SOLVE method %q: only cnexp is supported", p.cur.Lexeme)
		return nil
	}
	p.next()
	stmt := ast.NewSolveStatement(t)
	stmt.Target = target
	stmt.Method = "cnexp"
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	t := p.cur
	p.next()
	if !p.expect(token.LPAREN, "'(' after if") {
		return nil
	}
	cond := p.parseExpression(1)
	if cond == nil {
		return nil
	}
	if !p.expect(token.RPAREN, "')' to close if condition") {
		return nil
	}
	thenBlock := p.parseBracedBlock(true)
	if thenBlock == nil {
		return nil
	}
	ifStmt := ast.NewIf(t)
	ifStmt.Cond = ast.NewConditionalAt(cond.Loc(), cond)
	ifStmt.Then = thenBlock
	if p.curIs(token.ELSE) {
		elseTok := p.cur
		p.next()
		if p.curIs(token.IF) {
			nested := p.parseIfStatement()
			if nested == nil {
				return nil
			}
			wrapper := ast.NewBlock(elseTok, true)
			wrapper.Body = []ast.Statement{nested}
			ifStmt.Else = wrapper
		} else {
			elseBlock := p.parseBracedBlock(true)
			if elseBlock == nil {
				return nil
			}
			ifStmt.Else = elseBlock
		}
	}
	return ifStmt
}

func (p *Parser) parseNestedInitialBlock() ast.Statement {
	t := p.cur
	p.next()
	body := p.parseBracedBlock(true)
	if body == nil {
		return nil
	}
	ib := ast.NewInitialBlock(t)
	ib.Body = body
	return ib
}

// parseExprStatement parses an assignment, a derivative equation, or a
// bare procedure-call statement, all of which start with an identifier
// (§4.2).
func (p *Parser) parseExprStatement() ast.Statement {
	t := p.cur

	if p.peek.Type == token.PRIME {
		p.next() // cur = PRIME
		p.next() // cur = token following the prime
		if !p.curIs(token.ASSIGN) {
			p.errorf(diagnostics.ErrS005DerivativeWithoutEq, "derivative statement must have the form x' = expression")
			return nil
		}
		p.next()
		rhs := p.parseExpression(1)
		if rhs == nil {
			return nil
		}
		lhs := ast.NewDerivative(t, t.Lexeme)
		assign := ast.NewAssignmentAt(lhs.Loc(), lhs, rhs)
		return ast.NewExpressionStatementAt(lhs.Loc(), assign)
	}

	primary := p.parsePrimary()
	if primary == nil {
		return nil
	}

	if p.curIs(token.ASSIGN) {
		eqTok := p.cur
		p.next()
		rhs := p.parseExpression(1)
		if rhs == nil {
			return nil
		}
		assign := ast.NewAssignmentAt(ast.Location{Line: eqTok.Line, Column: eqTok.Column}, primary, rhs)
		return ast.NewExpressionStatementAt(primary.Loc(), assign)
	}

	return ast.NewExpressionStatementAt(primary.Loc(), primary)
}
