package parser

import (
	"mechc/internal/ast"
	"mechc/internal/diagnostics"
	"mechc/internal/module"
	"mechc/internal/token"
)

// parseIdentList parses a comma-separated list of identifiers, as used by
// RANGE, GLOBAL, NONSPECIFIC_CURRENT, and the USEION READ/WRITE clauses.
func (p *Parser) parseIdentList() []string {
	var names []string
	for p.curIs(token.IDENT) {
		names = append(names, p.cur.Lexeme)
		p.next()
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	return names
}

// skipParenUnit discards an optional `(unit text)` annotation trailing a
// STATE/PARAMETER/ASSIGNED entry; unit aliasing has no effect on lowering
// semantics (§4.5 is silent on units beyond the UNITS block existing).
func (p *Parser) skipParenUnit() {
	if !p.curIs(token.LPAREN) {
		return
	}
	p.next()
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		p.next()
	}
	p.expect(token.RPAREN, "')' to close unit annotation")
}

func (p *Parser) parseNeuronBlock() {
	p.next()
	if !p.expect(token.LBRACE, "'{' to open NEURON block") {
		p.skipToBlockEnd()
		return
	}
	nb := &ast.NeuronBlock{}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		switch p.cur.Type {
		case token.THREADSAFE:
			nb.ThreadSafe = true
			p.next()
		case token.SUFFIX:
			p.next()
			if !p.curIs(token.IDENT) {
				p.errorf(diagnostics.ErrS001MissingToken, "expected mechanism name after SUFFIX")
				break
			}
			nb.SuffixName = p.cur.Lexeme
			p.next()
		case token.POINT_PROCESS:
			p.next()
			if !p.curIs(token.IDENT) {
				p.errorf(diagnostics.ErrS001MissingToken, "expected mechanism name after POINT_PROCESS")
				break
			}
			nb.SuffixName = p.cur.Lexeme
			nb.IsPointProcess = true
			p.next()
		case token.USEION:
			p.next()
			if !p.curIs(token.IDENT) {
				p.errorf(diagnostics.ErrS001MissingToken, "expected ion name after USEION")
				break
			}
			ionName := p.cur.Lexeme
			p.next()
			dep := ast.IonDep{Name: ionName, Kind: ast.IonKindForName(ionName)}
			for p.curIs(token.READ) || p.curIs(token.WRITE) {
				if p.curIs(token.READ) {
					p.next()
					dep.Read = append(dep.Read, p.parseIdentList()...)
				} else {
					p.next()
					dep.Write = append(dep.Write, p.parseIdentList()...)
				}
			}
			nb.Ions = append(nb.Ions, dep)
		case token.NONSPECIFIC_CURRENT:
			p.next()
			nb.NonspecificCurrents = append(nb.NonspecificCurrents, p.parseIdentList()...)
		case token.RANGE:
			p.next()
			nb.RangeNames = append(nb.RangeNames, p.parseIdentList()...)
		case token.GLOBAL:
			p.next()
			nb.GlobalNames = append(nb.GlobalNames, p.parseIdentList()...)
		default:
			p.errorf(diagnostics.ErrS002UnexpectedKeyword, "unexpected token %q in NEURON block", p.cur.Lexeme)
			p.next()
		}
	}
	p.expect(token.RBRACE, "'}' to close NEURON block")
	p.mod.Neuron = nb
	if nb.IsPointProcess {
		p.mod.Kind = module.PointProcess
	}
}

func (p *Parser) parseStateBlock() {
	p.next()
	if !p.expect(token.LBRACE, "'{' to open STATE block") {
		p.skipToBlockEnd()
		return
	}
	sb := &ast.StateBlock{}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if !p.curIs(token.IDENT) {
			p.errorf(diagnostics.ErrS001MissingToken, "expected identifier in STATE block")
			p.next()
			continue
		}
		sb.Names = append(sb.Names, p.cur.Lexeme)
		p.next()
		p.skipParenUnit()
	}
	p.expect(token.RBRACE, "'}' to close STATE block")
	p.mod.State = sb
}

// parseUnitsBlock keeps UNITS content only for round-tripping; unit
// aliasing has no effect on lowering semantics, so lines are reassembled
// from tokens rather than captured verbatim.
func (p *Parser) parseUnitsBlock() {
	p.next()
	if !p.expect(token.LBRACE, "'{' to open UNITS block") {
		p.skipToBlockEnd()
		return
	}
	ub := &ast.UnitsBlock{}
	var cur []string
	curLine := -1
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if curLine != p.cur.Line {
			if len(cur) > 0 {
				ub.RawLines = append(ub.RawLines, joinSpace(cur))
			}
			cur = nil
			curLine = p.cur.Line
		}
		cur = append(cur, p.cur.Lexeme)
		p.next()
	}
	if len(cur) > 0 {
		ub.RawLines = append(ub.RawLines, joinSpace(cur))
	}
	p.expect(token.RBRACE, "'}' to close UNITS block")
	p.mod.Units = ub
}

func joinSpace(parts []string) string {
	out := ""
	for i, s := range parts {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}

func (p *Parser) parseParameterBlock() {
	p.next()
	if !p.expect(token.LBRACE, "'{' to open PARAMETER block") {
		p.skipToBlockEnd()
		return
	}
	pb := &ast.ParameterBlock{}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if !p.curIs(token.IDENT) {
			p.errorf(diagnostics.ErrS001MissingToken, "expected identifier in PARAMETER block")
			p.next()
			continue
		}
		entry := ast.ParameterEntry{Name: p.cur.Lexeme}
		p.next()
		if p.curIs(token.ASSIGN) {
			p.next()
			neg := false
			if p.curIs(token.MINUS) {
				neg = true
				p.next()
			}
			if !p.curIs(token.NUMBER) {
				p.errorf(diagnostics.ErrS001MissingToken, "expected numeric default value")
			} else {
				val, err := parseFloat(p.cur.Literal)
				if err != nil {
					p.errorf(diagnostics.ErrL002BadNumber, "malformed number literal %q", p.cur.Lexeme)
				} else {
					if neg {
						val = -val
					}
					entry.Default = val
					entry.HasDefault = true
				}
				p.next()
			}
		}
		p.skipParenUnit()
		pb.Entries = append(pb.Entries, entry)
	}
	p.expect(token.RBRACE, "'}' to close PARAMETER block")
	p.mod.Parameter = pb
}

func (p *Parser) parseAssignedBlock() {
	p.next()
	if !p.expect(token.LBRACE, "'{' to open ASSIGNED block") {
		p.skipToBlockEnd()
		return
	}
	ab := &ast.AssignedBlock{}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if !p.curIs(token.IDENT) {
			p.errorf(diagnostics.ErrS001MissingToken, "expected identifier in ASSIGNED block")
			p.next()
			continue
		}
		ab.Entries = append(ab.Entries, ast.AssignedEntry{Name: p.cur.Lexeme})
		p.next()
		p.skipParenUnit()
	}
	p.expect(token.RBRACE, "'}' to close ASSIGNED block")
	p.mod.Assigned = ab
}
