// Package printer renders a fully-lowered Module to a human-readable
// debug form. It is deliberately not a code generator for any particular
// simulator backend: per spec.md §6, the compiler core's real output is
// the Module value itself (the global symbol table, the synthesised
// nrn_init/nrn_state/nrn_current API methods with their ordered I/O
// descriptor lists, the module Kind, and its ion dependencies) — a data
// contract, not a textual format. What lives here is the read-only AST
// walk a concrete backend printer would build on, plus a text rendering
// of that contract usable for -V tracing and golden-file tests.
package printer

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"mechc/internal/ast"
	"mechc/internal/module"
)

// exprPrinter implements ast.Visitor, the same narrow interface
// internal/passes uses for constant folding: one of the two passes
// spec.md §9 singles out for Visitor dispatch rather than a type switch.
// Each Visit method writes a textual rendering of n to buf and returns n
// unchanged, since Print only reads the tree.
type exprPrinter struct {
	buf *bytes.Buffer
}

func (p exprPrinter) VisitNumber(n *ast.Number) ast.Expression {
	if n.Spelling != "" {
		p.buf.WriteString(n.Spelling)
	} else {
		fmt.Fprintf(p.buf, "%g", n.Value)
	}
	return n
}

func (p exprPrinter) VisitIdentifier(n *ast.Identifier) ast.Expression {
	p.buf.WriteString(n.Name)
	return n
}

func (p exprPrinter) VisitDerivative(n *ast.Derivative) ast.Expression {
	p.buf.WriteString(n.Name)
	p.buf.WriteByte('\'')
	return n
}

func (p exprPrinter) VisitCall(n *ast.Call) ast.Expression {
	p.buf.WriteString(n.Name)
	p.buf.WriteByte('(')
	for i, a := range n.Args {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		ast.Walk(p, a)
	}
	p.buf.WriteByte(')')
	return n
}

func (p exprPrinter) VisitUnary(n *ast.Unary) ast.Expression {
	switch n.Op {
	case ast.UnaryNeg:
		p.buf.WriteByte('-')
		ast.Walk(p, n.Expr)
	default:
		p.buf.WriteString(n.Op.String())
		p.buf.WriteByte('(')
		ast.Walk(p, n.Expr)
		p.buf.WriteByte(')')
	}
	return n
}

func (p exprPrinter) VisitBinary(n *ast.Binary) ast.Expression {
	p.buf.WriteByte('(')
	ast.Walk(p, n.LHS)
	fmt.Fprintf(p.buf, " %s ", n.Op)
	ast.Walk(p, n.RHS)
	p.buf.WriteByte(')')
	return n
}

func (p exprPrinter) VisitAssignment(n *ast.Assignment) ast.Expression {
	ast.Walk(p, n.LHS)
	p.buf.WriteString(" = ")
	ast.Walk(p, n.RHS)
	return n
}

func (p exprPrinter) VisitConditional(n *ast.ConditionalExpression) ast.Expression {
	ast.Walk(p, n.Cond)
	return n
}

// printExpr renders e into buf using the Visitor walk.
func printExpr(buf *bytes.Buffer, e ast.Expression) {
	if e == nil {
		buf.WriteString("<nil>")
		return
	}
	ast.Walk(exprPrinter{buf: buf}, e)
}

// printStatement renders one statement, indented, to buf. Statements
// fall outside ast.Visitor's scope (If/Block/LocalDeclaration are not
// Expression), so this is a plain type switch, matching how every other
// statement-level pass in this compiler dispatches.
func printStatement(buf *bytes.Buffer, s ast.Statement, indent int) {
	writeIndent(buf, indent)
	switch st := s.(type) {
	case *ast.LocalDeclaration:
		fmt.Fprintf(buf, "LOCAL %s\n", joinNames(st.Names))
	case *ast.ExpressionStatement:
		printExpr(buf, st.Expr)
		buf.WriteByte('\n')
	case *ast.If:
		buf.WriteString("IF ")
		printExpr(buf, st.Cond)
		buf.WriteString(" {\n")
		printBlock(buf, st.Then, indent+1)
		writeIndent(buf, indent)
		if st.Else != nil {
			buf.WriteString("} ELSE {\n")
			printBlock(buf, st.Else, indent+1)
			writeIndent(buf, indent)
		}
		buf.WriteString("}\n")
	case *ast.InitialBlock:
		buf.WriteString("INITIAL {\n")
		printBlock(buf, st.Body, indent+1)
		writeIndent(buf, indent)
		buf.WriteString("}\n")
	case *ast.SolveStatement:
		fmt.Fprintf(buf, "SOLVE %s METHOD %s\n", st.Target, st.Method)
	default:
		fmt.Fprintf(buf, "<unknown statement %T>\n", s)
	}
}

// printBlock renders every statement in b, indented one level deeper
// than its surrounding construct.
func printBlock(buf *bytes.Buffer, b *ast.Block, indent int) {
	if b == nil {
		return
	}
	for _, s := range b.Body {
		printStatement(buf, s, indent)
	}
}

func writeIndent(buf *bytes.Buffer, n int) {
	for i := 0; i < n; i++ {
		buf.WriteString("    ")
	}
}

func joinNames(names []string) string {
	buf := &bytes.Buffer{}
	for i, n := range names {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(n)
	}
	return buf.String()
}

// symbolName renders a Symbol's name, or "<nil>" for an unresolved
// binding (which should never survive a successful lowering, but the
// debug printer must not panic on a partially-lowered Module passed to
// it under -V while diagnosing a lowering failure).
func symbolName(s ast.Symbol) string {
	if s == nil {
		return "<nil>"
	}
	return s.SymbolName()
}

func printIO(buf *bytes.Buffer, label string, bindings []ast.IOBinding, indent int) {
	if len(bindings) == 0 {
		return
	}
	writeIndent(buf, indent)
	fmt.Fprintf(buf, "%s:\n", label)
	for _, b := range bindings {
		writeIndent(buf, indent+1)
		fmt.Fprintf(buf, "%s %s %s\n", symbolName(b.Local), b.Direction, symbolName(b.External))
	}
}

func printAPIMethod(buf *bytes.Buffer, api *ast.APIMethod) {
	fmt.Fprintf(buf, "%s {\n", api.Name)
	printIO(buf, "inputs", api.Inputs, 1)
	printIO(buf, "outputs", api.Outputs, 1)
	buf.WriteString("    body:\n")
	printBlock(buf, api.Body, 2)
	buf.WriteString("}\n")
}

// Print renders mod's full compiled contract — title, kind, ion
// dependencies, global symbol names, and the three synthesised API
// methods in the fixed order §4.8 produces them — to w. It is meant for
// -V tracing (internal/traceutil) and golden-file comparisons in tests,
// not for regenerating compilable source.
func Print(mod *module.Module, w io.Writer) error {
	buf := &bytes.Buffer{}

	fmt.Fprintf(buf, "TITLE %q\n", mod.Title)
	fmt.Fprintf(buf, "KIND %s\n", mod.Kind)

	ions := mod.IonNames()
	if len(ions) > 0 {
		fmt.Fprintf(buf, "USEION %v\n", ions)
	}

	if mod.Globals != nil {
		names := append([]string(nil), mod.Globals.Names()...)
		sort.Strings(names)
		fmt.Fprintf(buf, "GLOBALS %v\n", names)
	}

	buf.WriteByte('\n')

	for _, name := range [...]string{"nrn_init", "nrn_state", "nrn_current"} {
		api, ok := mod.APIMethods[name]
		if !ok || api == nil {
			continue
		}
		printAPIMethod(buf, api)
		buf.WriteByte('\n')
	}

	_, err := w.Write(buf.Bytes())
	return err
}
