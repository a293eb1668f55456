package passes

import "mechc/internal/ast"

const maxInlineDepth = 8

// Inline replaces calls to single-statement FUNCTIONs of the form
// `name = expr` with a clone of expr, substituting actuals for formals,
// so the classifier can see through trivial helper functions. This is a
// feature the distilled spec doesn't model but the original front end
// carries (an inlining pass ahead of its ODE solver); it is bounded in
// depth and cycle-safe, leaving anything it can't safely reduce as a
// plain call.
func Inline(e ast.Expression) ast.Expression {
	return inline(e, map[string]bool{}, 0)
}

func inline(e ast.Expression, active map[string]bool, depth int) ast.Expression {
	switch n := e.(type) {
	case *ast.Unary:
		n.Expr = inline(n.Expr, active, depth)
		return n
	case *ast.Binary:
		n.LHS = inline(n.LHS, active, depth)
		n.RHS = inline(n.RHS, active, depth)
		return n
	case *ast.Assignment:
		n.RHS = inline(n.RHS, active, depth)
		return n
	case *ast.ConditionalExpression:
		n.Cond = inline(n.Cond, active, depth)
		return n
	case *ast.Call:
		for i, a := range n.Args {
			n.Args[i] = inline(a, active, depth)
		}
		return inlineCall(n, active, depth)
	default:
		return e
	}
}

func inlineCall(call *ast.Call, active map[string]bool, depth int) ast.Expression {
	if depth >= maxInlineDepth || active[call.Name] {
		return call
	}
	fn, ok := call.Callee.(*ast.Function)
	if !ok || fn.Body == nil || len(fn.Body.Body) != 1 || len(fn.Args) != len(call.Args) {
		return call
	}
	es, ok := fn.Body.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return call
	}
	asg, ok := es.Expr.(*ast.Assignment)
	if !ok {
		return call
	}
	ident, ok := asg.LHS.(*ast.Identifier)
	if !ok || ident.Name != fn.Name {
		return call
	}

	subst := make(map[string]ast.Expression, len(fn.Args))
	for i, arg := range fn.Args {
		subst[arg.Name] = call.Args[i]
	}
	body := substitute(ast.Clone(asg.RHS), subst)

	active[call.Name] = true
	result := inline(body, active, depth+1)
	delete(active, call.Name)
	return result
}

func substitute(e ast.Expression, subst map[string]ast.Expression) ast.Expression {
	switch n := e.(type) {
	case *ast.Identifier:
		if repl, ok := subst[n.Name]; ok {
			return ast.Clone(repl)
		}
		return n
	case *ast.Unary:
		n.Expr = substitute(n.Expr, subst)
		return n
	case *ast.Binary:
		n.LHS = substitute(n.LHS, subst)
		n.RHS = substitute(n.RHS, subst)
		return n
	case *ast.Call:
		for i, a := range n.Args {
			n.Args[i] = substitute(a, subst)
		}
		return n
	default:
		return e
	}
}
