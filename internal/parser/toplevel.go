package parser

import (
	"mechc/internal/ast"
	"mechc/internal/diagnostics"
	"mechc/internal/module"
	"mechc/internal/token"
)

// Parse runs the top-level dispatch loop (§4.2) until EOF, populating and
// returning the Module under construction. Every top-level subroutine
// that fails records a diagnostic and resynchronises at the next
// top-level keyword so sibling blocks are still parsed (§4.10).
func (p *Parser) Parse() *module.Module {
	for !p.curIs(token.EOF) {
		switch p.cur.Type {
		case token.TITLE:
			p.parseTitle()
		case token.NEURON:
			p.parseNeuronBlock()
		case token.STATE:
			p.parseStateBlock()
		case token.UNITS:
			p.parseUnitsBlock()
		case token.PARAMETER:
			p.parseParameterBlock()
		case token.ASSIGNED:
			p.parseAssignedBlock()
		case token.BREAKPOINT:
			p.parseBreakpointBlock()
		case token.INITIAL:
			p.parseTopLevelInitial()
		case token.DERIVATIVE:
			p.parseDerivativeBlock()
		case token.PROCEDURE:
			p.parseProcedureBlock()
		case token.FUNCTION:
			p.parseFunctionBlock()
		case token.NET_RECEIVE:
			p.parseNetReceiveBlock()
		default:
			p.errorf(diagnostics.ErrS002UnexpectedKeyword, "unexpected top-level token %q", p.cur.Lexeme)
			p.next()
		}
	}
	return p.mod
}

func isTopLevelKeyword(t token.Type) bool {
	switch t {
	case token.TITLE, token.NEURON, token.STATE, token.UNITS, token.PARAMETER,
		token.ASSIGNED, token.BREAKPOINT, token.INITIAL, token.DERIVATIVE,
		token.PROCEDURE, token.FUNCTION, token.NET_RECEIVE:
		return true
	}
	return false
}

// parseTitle reassembles the free-text TITLE header from the tokens
// between the TITLE keyword and the next top-level block.
func (p *Parser) parseTitle() {
	p.next()
	var parts []string
	for !isTopLevelKeyword(p.cur.Type) && !p.curIs(token.EOF) {
		parts = append(parts, p.cur.Lexeme)
		p.next()
	}
	p.mod.Title = joinSpace(parts)
}

// parseArgList parses a PROCEDURE/FUNCTION/NET_RECEIVE formal parameter
// list: `(a, b, c)`, possibly empty.
func (p *Parser) parseArgList() []*ast.Argument {
	if !p.expect(token.LPAREN, "'(' to open argument list") {
		return nil
	}
	var args []*ast.Argument
	if !p.curIs(token.RPAREN) {
		for {
			if !p.curIs(token.IDENT) {
				p.errorf(diagnostics.ErrS001MissingToken, "expected argument name")
				break
			}
			args = append(args, ast.NewArgument(p.cur))
			p.next()
			p.skipParenUnit()
			if p.curIs(token.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	p.expect(token.RPAREN, "')' to close argument list")
	return args
}

func (p *Parser) parseProcedureBlock() {
	t := p.cur
	p.next()
	if !p.curIs(token.IDENT) {
		p.errorf(diagnostics.ErrS001MissingToken, "expected procedure name after PROCEDURE")
		p.skipToBlockEnd()
		return
	}
	name := p.cur.Lexeme
	p.next()
	args := p.parseArgList()
	body := p.parseBracedBlock(false)
	if body == nil {
		return
	}
	proc := ast.NewProcedure(t, name, ast.ProcUser)
	proc.Args = args
	proc.Body = body
	if _, exists := p.mod.Procedures[name]; exists {
		p.mod.Diags.Errorf(diagnostics.ErrE005Duplicate, p.loc(), "duplicate PROCEDURE %q", name)
		return
	}
	p.mod.Procedures[name] = proc
	p.mod.ProcedureOrder = append(p.mod.ProcedureOrder, name)
}

func (p *Parser) parseFunctionBlock() {
	t := p.cur
	p.next()
	if !p.curIs(token.IDENT) {
		p.errorf(diagnostics.ErrS001MissingToken, "expected function name after FUNCTION")
		p.skipToBlockEnd()
		return
	}
	name := p.cur.Lexeme
	p.next()
	args := p.parseArgList()
	p.skipParenUnit() // optional return-value unit annotation
	body := p.parseBracedBlock(false)
	if body == nil {
		return
	}
	fn := ast.NewFunction(t, name)
	fn.Args = args
	fn.Body = body
	if _, exists := p.mod.Functions[name]; exists {
		p.mod.Diags.Errorf(diagnostics.ErrE005Duplicate, p.loc(), "duplicate FUNCTION %q", name)
		return
	}
	p.mod.Functions[name] = fn
	p.mod.FunctionOrder = append(p.mod.FunctionOrder, name)
}

func (p *Parser) parseTopLevelInitial() {
	t := p.cur
	p.next()
	body := p.parseBracedBlock(false)
	if body == nil {
		return
	}
	if p.mod.Initial != nil {
		p.mod.Diags.Errorf(diagnostics.ErrE005Duplicate, p.loc(), "duplicate top-level INITIAL block")
		return
	}
	proc := ast.NewProcedure(t, "initial", ast.ProcInitial)
	proc.Body = body
	p.mod.Initial = proc
}

func (p *Parser) parseDerivativeBlock() {
	t := p.cur
	p.next()
	if !p.curIs(token.IDENT) {
		p.errorf(diagnostics.ErrS001MissingToken, "expected name after DERIVATIVE")
		p.skipToBlockEnd()
		return
	}
	name := p.cur.Lexeme
	p.next()
	body := p.parseBracedBlock(false)
	if body == nil {
		return
	}
	proc := ast.NewProcedure(t, name, ast.ProcDerivative)
	proc.Body = body
	if _, exists := p.mod.Derivatives[name]; exists {
		p.mod.Diags.Errorf(diagnostics.ErrE005Duplicate, p.loc(), "duplicate DERIVATIVE block %q", name)
		return
	}
	p.mod.Derivatives[name] = proc
	p.mod.DerivativeOrder = append(p.mod.DerivativeOrder, name)
}

func (p *Parser) parseBreakpointBlock() {
	t := p.cur
	p.next()
	body := p.parseBracedBlock(false)
	if body == nil {
		return
	}
	if p.mod.Breakpoint != nil {
		p.mod.Diags.Errorf(diagnostics.ErrE005Duplicate, p.loc(), "duplicate BREAKPOINT block")
		return
	}
	proc := ast.NewProcedure(t, "breakpoint", ast.ProcBreakpoint)
	proc.Body = body
	p.mod.Breakpoint = proc
}

func (p *Parser) parseNetReceiveBlock() {
	t := p.cur
	p.next()
	args := p.parseArgList()
	body := p.parseBracedBlock(false)
	if body == nil {
		return
	}
	if p.mod.NetReceive != nil {
		p.mod.Diags.Errorf(diagnostics.ErrE005Duplicate, p.loc(), "duplicate NET_RECEIVE block")
		return
	}
	nr := ast.NewNetReceive(t)
	nr.Args = args
	nr.Body = body
	for _, stmt := range body.Body {
		if ib, ok := stmt.(*ast.InitialBlock); ok && nr.Initial == nil {
			nr.Initial = ib
		}
	}
	p.mod.NetReceive = nr
}
