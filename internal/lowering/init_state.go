// Package lowering synthesises the three API methods a backend printer
// consumes — nrn_init, nrn_state, nrn_current — from a module that has
// already passed semantic analysis (spec.md §4.8). NET_RECEIVE is parsed
// and checked but, per the decided Open Question recorded in DESIGN.md,
// never lowered into a fourth API method: the distilled spec's event
// delivery story stops at "accepted and validated", and synthesising a
// host-callable entry point for it is out of scope.
//
// Lowering aborts on its first error (§4.10): a module that already
// carries a semantic error is never lowered, and a lowering failure
// (nonlinear ODE, nonlinear current, missing INITIAL/BREAKPOINT) is
// recorded as a diagnostic rather than a panic, leaving mod.APIMethods
// nil.
package lowering

import (
	"mechc/internal/ast"
	"mechc/internal/diagnostics"
	"mechc/internal/module"
	"mechc/internal/passes"
	"mechc/internal/symtab"
)

// Lower runs the full synthesis pipeline over mod, installing the result
// into mod.APIMethods on success. It is a no-op if mod already carries a
// semantic error.
func Lower(mod *module.Module) {
	if mod.Diags.HasErrors() {
		return
	}
	if !checkReservedNames(mod) {
		return
	}

	init := lowerInit(mod)
	if init == nil {
		return
	}
	state := lowerState(mod)
	if state == nil {
		return
	}
	current := lowerCurrent(mod)
	if current == nil {
		return
	}

	mod.APIMethods = map[string]*ast.APIMethod{
		"nrn_init":    init,
		"nrn_state":   state,
		"nrn_current": current,
	}
	mod.Globals.Replace(init)
	mod.Globals.Replace(state)
	mod.Globals.Replace(current)
}

// checkReservedNames enforces §3.7 invariant 3: a user PROCEDURE,
// FUNCTION, or variable may not already occupy one of the three
// synthesised API method names.
func checkReservedNames(mod *module.Module) bool {
	ok := true
	for _, name := range [...]string{"nrn_init", "nrn_state", "nrn_current"} {
		if _, exists := mod.Globals.Find(name); exists {
			mod.Diags.Fatalf(diagnostics.ErrW008ReservedNameCollision, diagnostics.Location{},
				"%q is a reserved name for a synthesised API method", name)
			ok = false
		}
	}
	return ok
}

// lowerInit synthesises nrn_init: a clone of the INITIAL body (its own
// LOCAL declarations stripped and re-declared against a fresh scope),
// plus a single input binding v ← vec_v.
func lowerInit(mod *module.Module) *ast.APIMethod {
	if mod.Initial == nil {
		mod.Diags.Fatalf(diagnostics.ErrW001MissingInitial, diagnostics.Location{},
			"module has no INITIAL block; nrn_init cannot be synthesised")
		return nil
	}

	scope := symtab.NewScope(mod.Globals)
	if mod.Initial.Body != nil {
		for _, s := range mod.Initial.Body.Body {
			if decl, ok := s.(*ast.LocalDeclaration); ok {
				for _, name := range decl.Names {
					_ = scope.AddLocal(ast.NewLocalVariable(name, nil))
				}
			}
		}
	}
	body := ast.FilterLocalDecls(mod.Initial.Body)
	rebindBlock(scope, body)

	api := ast.NewAPIMethod("nrn_init")
	api.Body = body
	api.Scope = scope
	bindIO(scope, api, ast.IOAssign, module.NameV, module.NameVecV, true)
	return api
}

// lowerState synthesises nrn_state from the DERIVATIVE block named by
// BREAKPOINT's SOLVE statement, replacing each state ODE x' = a*x + b
// with its closed-form cnexp update (§4.8 step 2).
func lowerState(mod *module.Module) *ast.APIMethod {
	scope := symtab.NewScope(mod.Globals)
	api := ast.NewAPIMethod("nrn_state")
	api.Scope = scope

	if mod.Breakpoint == nil {
		mod.Diags.Warnf(diagnostics.ErrW002MissingBreakpoint, diagnostics.Location{},
			"module has no BREAKPOINT block; nrn_state synthesised empty")
		api.Body = ast.NewBlockAt(ast.Location{}, false)
		bindIO(scope, api, ast.IOAssign, module.NameV, module.NameVecV, true)
		return api
	}

	solve := findSolveStatement(mod.Breakpoint.Body)
	if solve == nil {
		mod.Diags.Warnf(diagnostics.ErrW007MissingSolve, diagnostics.Location{},
			"BREAKPOINT has no SOLVE statement; nrn_state synthesised empty")
		api.Body = ast.NewBlockAt(ast.Location{}, false)
		bindIO(scope, api, ast.IOAssign, module.NameV, module.NameVecV, true)
		return api
	}

	deriv, ok := solve.Proc.(*ast.Procedure)
	if !ok || deriv.Body == nil {
		mod.Diags.Fatalf(diagnostics.ErrI001Internal, diagnostics.Location{},
			"SOLVE target %q did not resolve to a DERIVATIVE block", solve.Target)
		return nil
	}

	classifier := passes.NewClassifier()
	body := ast.NewBlockAt(ast.Location{}, false)
	for _, stmt := range deriv.Body.Body {
		ode, ok := asDerivativeAssignment(stmt)
		if !ok {
			body.Body = append(body.Body, ast.CloneStatement(stmt))
			continue
		}

		rhs := passes.Inline(ast.Clone(ode.rhs))
		result := classifier.Classify(rhs, ode.name)
		if result.Class != passes.Linear {
			mod.Diags.Fatalf(diagnostics.ErrW003NonlinearODE, locOf(stmt),
				"unable to integrate nonlinear state ODE for %q", ode.name)
			return nil
		}
		body.Body = append(body.Body, buildCnexp(ode.name, result.Coefficient, result.ConstantTerm)...)
	}

	api.Body = body
	rebindBlock(scope, body)
	bindIO(scope, api, ast.IOAssign, module.NameV, module.NameVecV, true)
	return api
}

type derivativeAssignment struct {
	name string
	rhs  ast.Expression
}

// asDerivativeAssignment reports whether stmt is `x' = expr` and, if so,
// extracts the state name and right-hand side.
func asDerivativeAssignment(stmt ast.Statement) (derivativeAssignment, bool) {
	es, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		return derivativeAssignment{}, false
	}
	asg, ok := es.Expr.(*ast.Assignment)
	if !ok {
		return derivativeAssignment{}, false
	}
	deriv, ok := asg.LHS.(*ast.Derivative)
	if !ok {
		return derivativeAssignment{}, false
	}
	return derivativeAssignment{name: deriv.Name, rhs: asg.RHS}, true
}

// buildCnexp synthesises the closed-form integration of a linear ODE
// x' = a*x + b over one timestep dt (§4.8 step 2):
//
//	LOCAL a_ ; LOCAL ba_
//	a_  = a
//	ba_ = b/a_
//	x   = -ba_ + (x+ba_)*exp(a_*dt)
func buildCnexp(state string, a, b float64) []ast.Statement {
	loc := ast.Location{}

	declA := ast.NewLocalDeclarationAt(loc, "a_")
	declBa := ast.NewLocalDeclarationAt(loc, "ba_")

	aAssign := ast.NewAssignmentAt(loc, ast.NewIdentifierAt(loc, "a_"), ast.NewNumberAt(loc, a))
	aStmt := ast.NewExpressionStatementAt(loc, aAssign)

	baRHS := ast.NewBinaryAt(loc, ast.BinDiv, ast.NewNumberAt(loc, b), ast.NewIdentifierAt(loc, "a_"))
	baAssign := ast.NewAssignmentAt(loc, ast.NewIdentifierAt(loc, "ba_"), baRHS)
	baStmt := ast.NewExpressionStatementAt(loc, baAssign)

	negBa := ast.NewUnaryAt(loc, ast.UnaryNeg, ast.NewIdentifierAt(loc, "ba_"))
	xPlusBa := ast.NewBinaryAt(loc, ast.BinAdd, ast.NewIdentifierAt(loc, state), ast.NewIdentifierAt(loc, "ba_"))
	expArg := ast.NewBinaryAt(loc, ast.BinMul, ast.NewIdentifierAt(loc, "a_"), ast.NewIdentifierAt(loc, module.NameDt))
	expCall := ast.NewUnaryAt(loc, ast.UnaryExp, expArg)
	updateRHS := ast.NewBinaryAt(loc, ast.BinAdd, negBa, ast.NewBinaryAt(loc, ast.BinMul, xPlusBa, expCall))
	updateAssign := ast.NewAssignmentAt(loc, ast.NewIdentifierAt(loc, state), updateRHS)
	updateStmt := ast.NewExpressionStatementAt(loc, updateAssign)

	return []ast.Statement{declA, declBa, aStmt, baStmt, updateStmt}
}

func findSolveStatement(b *ast.Block) *ast.SolveStatement {
	if b == nil {
		return nil
	}
	for _, s := range b.Body {
		if ss, ok := s.(*ast.SolveStatement); ok {
			return ss
		}
	}
	return nil
}

func locOf(n ast.Node) diagnostics.Location {
	l := n.Loc()
	return diagnostics.Location{Line: l.Line, Column: l.Column}
}

// bindIO resolves localName/externalName through scope and appends the
// resulting IOBinding to api's Inputs or Outputs.
func bindIO(scope *symtab.Scope, api *ast.APIMethod, dir ast.IODirection, localName, externalName string, isInput bool) {
	local, _ := scope.Find(localName)
	external, _ := scope.Find(externalName)
	binding := ast.IOBinding{Direction: dir, Local: local, External: external}
	if isInput {
		api.Inputs = append(api.Inputs, binding)
	} else {
		api.Outputs = append(api.Outputs, binding)
	}
}
