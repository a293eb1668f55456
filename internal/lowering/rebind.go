package lowering

import (
	"mechc/internal/ast"
	"mechc/internal/symtab"
)

// rebind re-runs scope resolution over a block lowering has freshly
// cloned or synthesised, so every Identifier/Derivative/Call ends up
// bound to a symbol in the APIMethod's own scope rather than whatever
// scope its source statement was resolved in originally. This mirrors
// semantic's own identifier resolution (including the first-reference
// indexed-variable aliasing rule), but without re-running the lvalue and
// arity diagnostics: the body it walks has already passed semantic
// analysis once, so those checks cannot newly fail here.
func rebindBlock(scope *symtab.Scope, b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Body {
		rebindStatement(scope, s)
	}
}

func rebindStatement(scope *symtab.Scope, s ast.Statement) {
	switch st := s.(type) {
	case *ast.LocalDeclaration:
		for _, name := range st.Names {
			_ = scope.AddLocal(ast.NewLocalVariable(name, nil))
		}
	case *ast.ExpressionStatement:
		rebindExpr(scope, st.Expr)
	case *ast.If:
		rebindExpr(scope, st.Cond)
		rebindBlock(scope, st.Then)
		rebindBlock(scope, st.Else)
	case *ast.InitialBlock:
		rebindBlock(scope, st.Body)
	}
}

func rebindExpr(scope *symtab.Scope, e ast.Expression) {
	if e == nil {
		return
	}
	e.SetScope(scope)
	switch n := e.(type) {
	case *ast.Identifier:
		rebindIdentifier(scope, n)
	case *ast.Derivative:
		if sym, ok := scope.Find(n.Name); ok {
			n.Symbol = sym
		}
	case *ast.Unary:
		rebindExpr(scope, n.Expr)
	case *ast.Binary:
		rebindExpr(scope, n.LHS)
		rebindExpr(scope, n.RHS)
	case *ast.Call:
		for _, a := range n.Args {
			rebindExpr(scope, a)
		}
		if sym, ok := scope.Find(n.Name); ok {
			n.Callee = sym
		}
	case *ast.Assignment:
		rebindLvalue(scope, n.LHS)
		rebindExpr(scope, n.RHS)
	case *ast.ConditionalExpression:
		rebindExpr(scope, n.Cond)
	}
}

func rebindLvalue(scope *symtab.Scope, lhs ast.Expression) {
	if lhs == nil {
		return
	}
	lhs.SetScope(scope)
	switch t := lhs.(type) {
	case *ast.Identifier:
		rebindIdentifier(scope, t)
	case *ast.Derivative:
		if sym, ok := scope.Find(t.Name); ok {
			t.Symbol = sym
		}
	}
}

// rebindIdentifier resolves n.Name in scope, aliasing a first reference
// to an IndexedVariable into a local of the same name (§4.4 step 4),
// exactly as semantic.resolveIdentifier does for a procedure body.
func rebindIdentifier(scope *symtab.Scope, n *ast.Identifier) {
	sym, ok := scope.Find(n.Name)
	if !ok {
		return
	}
	if iv, isIndexed := sym.(*ast.IndexedVariable); isIndexed {
		alias := ast.NewLocalVariable(n.Name, iv)
		_ = scope.AddLocal(alias)
		n.Symbol = alias
		return
	}
	n.Symbol = sym
}
