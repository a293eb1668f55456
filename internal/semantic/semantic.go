package semantic

import (
	"mechc/internal/ast"
	"mechc/internal/diagnostics"
	"mechc/internal/module"
	"mechc/internal/symtab"
)

func locOf(n ast.Node) diagnostics.Location {
	l := n.Loc()
	return diagnostics.Location{Line: l.Line, Column: l.Column}
}

// ctx carries the scope and nesting state threaded through one
// procedure's body walk.
type ctx struct {
	mod          *module.Module
	scope        *symtab.Scope
	allowInitial bool
	initialCount *int
}

func (c *ctx) nested() *ctx {
	return &ctx{mod: c.mod, scope: c.scope, allowInitial: false, initialCount: c.initialCount}
}

// analyzeAll runs semantic() over every procedure, function, and the
// NET_RECEIVE block (§4.4), continuing past per-construct failures.
func analyzeAll(mod *module.Module) {
	for _, name := range mod.ProcedureOrder {
		analyzeProcedure(mod, mod.Procedures[name])
	}
	for _, name := range mod.FunctionOrder {
		analyzeFunction(mod, mod.Functions[name])
	}
	if mod.Initial != nil {
		analyzeProcedure(mod, mod.Initial)
	}
	for _, name := range mod.DerivativeOrder {
		analyzeProcedure(mod, mod.Derivatives[name])
	}
	if mod.Breakpoint != nil {
		analyzeProcedure(mod, mod.Breakpoint)
	}
	if mod.NetReceive != nil {
		analyzeNetReceive(mod, mod.NetReceive)
	}
}

func declareArgs(mod *module.Module, scope *symtab.Scope, args []*ast.Argument) {
	for _, arg := range args {
		lv := ast.NewLocalVariable(arg.Name, nil)
		if err := scope.AddLocal(lv); err != nil {
			mod.Diags.Errorf(diagnostics.ErrE005Duplicate, locOf(arg), "%s", err)
		}
	}
}

func analyzeProcedure(mod *module.Module, proc *ast.Procedure) {
	scope := symtab.NewScope(mod.Globals)
	proc.Scope = scope
	declareArgs(mod, scope, proc.Args)
	if proc.Body == nil {
		return
	}
	c := &ctx{mod: mod, scope: scope}
	walkBlock(c, proc.Body)
}

func analyzeFunction(mod *module.Module, fn *ast.Function) {
	scope := symtab.NewScope(mod.Globals)
	fn.Scope = scope
	declareArgs(mod, scope, fn.Args)
	// The function's own name is an implicit local the body assigns to
	// carry the return value (§4.4.5).
	ret := ast.NewLocalVariable(fn.Name, nil)
	_ = scope.AddLocal(ret)
	if fn.Body == nil {
		return
	}
	c := &ctx{mod: mod, scope: scope}
	walkBlock(c, fn.Body)

	if !lastStatementAssignsTo(fn.Body, fn.Name) {
		mod.Diags.Warnf(diagnostics.ErrW006FunctionSelfAssign, locOf(fn),
			"FUNCTION %q does not assign to its own name in its last statement", fn.Name)
	}
}

func lastStatementAssignsTo(body *ast.Block, name string) bool {
	if body == nil || len(body.Body) == 0 {
		return false
	}
	last := body.Body[len(body.Body)-1]
	es, ok := last.(*ast.ExpressionStatement)
	if !ok {
		return false
	}
	asg, ok := es.Expr.(*ast.Assignment)
	if !ok {
		return false
	}
	ident, ok := asg.LHS.(*ast.Identifier)
	return ok && ident.Name == name
}

func analyzeNetReceive(mod *module.Module, nr *ast.NetReceive) {
	scope := symtab.NewScope(mod.Globals)
	nr.Scope = scope
	declareArgs(mod, scope, nr.Args)
	if nr.Body == nil {
		return
	}
	count := 0
	c := &ctx{mod: mod, scope: scope, allowInitial: true, initialCount: &count}
	walkBlock(c, nr.Body)
}

func walkBlock(c *ctx, block *ast.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Body {
		walkStmt(c, stmt)
	}
}

func walkStmt(c *ctx, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.LocalDeclaration:
		for _, name := range s.Names {
			if c.scope.ShadowsIndexedVariable(name) {
				c.mod.Diags.Warnf(diagnostics.ErrW005NameCollision, locOf(s),
					"LOCAL %q shadows an indexed variable of the same name", name)
			}
			lv := ast.NewLocalVariable(name, nil)
			if err := c.scope.AddLocal(lv); err != nil {
				c.mod.Diags.Errorf(diagnostics.ErrE005Duplicate, locOf(s), "%s", err)
			}
		}
	case *ast.ExpressionStatement:
		resolveExpr(c, s.Expr)
	case *ast.If:
		resolveExpr(c, s.Cond)
		walkBlock(c.nested(), s.Then)
		walkBlock(c.nested(), s.Else)
	case *ast.SolveStatement:
		resolveSolve(c, s)
	case *ast.InitialBlock:
		if !c.allowInitial {
			c.mod.Diags.Errorf(diagnostics.ErrE008IllegalInitialNesting, locOf(s),
				"nested INITIAL block is only legal directly inside NET_RECEIVE")
		} else {
			*c.initialCount++
			if *c.initialCount > 1 {
				c.mod.Diags.Errorf(diagnostics.ErrE008IllegalInitialNesting, locOf(s),
					"NET_RECEIVE may contain at most one INITIAL block")
			}
		}
		walkBlock(c.nested(), s.Body)
	}
}

func resolveSolve(c *ctx, s *ast.SolveStatement) {
	sym, ok := c.scope.Find(s.Target)
	if !ok {
		c.mod.Diags.Errorf(diagnostics.ErrE001Undefined, locOf(s), "SOLVE target %q is not declared", s.Target)
		return
	}
	proc, ok := sym.(*ast.Procedure)
	if !ok || proc.Kind != ast.ProcDerivative {
		c.mod.Diags.Errorf(diagnostics.ErrE002NotCallable, locOf(s), "SOLVE target %q is not a DERIVATIVE block", s.Target)
		return
	}
	s.Proc = proc
}

func resolveExpr(c *ctx, e ast.Expression) {
	if e == nil {
		return
	}
	e.SetScope(c.scope)
	switch n := e.(type) {
	case *ast.Number:
		// nothing to resolve
	case *ast.Identifier:
		resolveIdentifier(c, n)
	case *ast.Derivative:
		resolveDerivativeRef(c, n)
	case *ast.Call:
		resolveCall(c, n)
	case *ast.Unary:
		resolveExpr(c, n.Expr)
	case *ast.Binary:
		resolveExpr(c, n.LHS)
		resolveExpr(c, n.RHS)
	case *ast.Assignment:
		resolveExpr(c, n.RHS)
		resolveLvalue(c, n.LHS)
	case *ast.ConditionalExpression:
		resolveExpr(c, n.Cond)
	}
}

// resolveIdentifier resolves n.Name and, on first reference to a
// module-scope IndexedVariable inside a procedure body, creates the
// aliasing LocalVariable described in §4.4 step 4. Subsequent references
// to the same name resolve directly to that local alias.
func resolveIdentifier(c *ctx, n *ast.Identifier) {
	sym, ok := c.scope.Find(n.Name)
	if !ok {
		c.mod.Diags.Errorf(diagnostics.ErrE001Undefined, locOf(n), "undeclared identifier %q", n.Name)
		return
	}
	if iv, isIndexed := sym.(*ast.IndexedVariable); isIndexed {
		alias := ast.NewLocalVariable(n.Name, iv)
		_ = c.scope.AddLocal(alias)
		n.Symbol = alias
		return
	}
	n.Symbol = sym
}

func resolveDerivativeRef(c *ctx, n *ast.Derivative) {
	sym, ok := c.scope.Find(n.Name)
	if !ok {
		c.mod.Diags.Errorf(diagnostics.ErrE001Undefined, locOf(n), "derivative of undeclared state %q", n.Name)
		return
	}
	if v, ok := sym.(*ast.Variable); !ok || !v.IsState {
		c.mod.Diags.Errorf(diagnostics.ErrE004NotLvalue, locOf(n), "derivative left-hand side %q is not a STATE variable", n.Name)
		return
	}
	n.Symbol = sym
}

func resolveLvalue(c *ctx, lhs ast.Expression) {
	if lhs == nil {
		return
	}
	lhs.SetScope(c.scope)
	switch t := lhs.(type) {
	case *ast.Identifier:
		resolveIdentifier(c, t)
		if t.Symbol != nil {
			checkWritable(c, t.Symbol, t)
		}
	case *ast.Derivative:
		resolveDerivativeRef(c, t)
	default:
		c.mod.Diags.Errorf(diagnostics.ErrE004NotLvalue, locOf(lhs), "left-hand side of assignment is not an lvalue")
	}
}

func checkWritable(c *ctx, sym ast.Symbol, node ast.Node) {
	switch s := sym.(type) {
	case *ast.Variable:
		if s.Access == ast.AccessRead {
			c.mod.Diags.Errorf(diagnostics.ErrE004NotLvalue, locOf(node), "cannot assign to read-only variable %q", s.Name)
		}
	case *ast.IndexedVariable:
		if s.Access == ast.AccessRead {
			c.mod.Diags.Errorf(diagnostics.ErrE004NotLvalue, locOf(node), "cannot assign to read-only variable %q", s.Name)
		}
	case *ast.LocalVariable:
		if s.External != nil {
			checkWritable(c, s.External, node)
		}
	}
}

func resolveCall(c *ctx, call *ast.Call) {
	for _, arg := range call.Args {
		resolveExpr(c, arg)
	}
	sym, ok := c.scope.Find(call.Name)
	if !ok {
		c.mod.Diags.Errorf(diagnostics.ErrE001Undefined, locOf(call), "call to undeclared name %q", call.Name)
		return
	}
	var expected int
	switch s := sym.(type) {
	case *ast.Procedure:
		expected = len(s.Args)
		call.Callee = s
	case *ast.Function:
		expected = len(s.Args)
		call.Callee = s
	default:
		c.mod.Diags.Errorf(diagnostics.ErrE002NotCallable, locOf(call), "%q is not callable", call.Name)
		return
	}
	if len(call.Args) != expected {
		c.mod.Diags.Errorf(diagnostics.ErrE003ArityMismatch, locOf(call),
			"call to %q expects %d argument(s), got %d", call.Name, expected, len(call.Args))
	}
}
