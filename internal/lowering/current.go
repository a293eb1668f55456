package lowering

import (
	"mechc/internal/ast"
	"mechc/internal/diagnostics"
	"mechc/internal/module"
	"mechc/internal/passes"
	"mechc/internal/symtab"
)

// lowerCurrent synthesises nrn_current from BREAKPOINT: every
// assignment to an ion or nonspecific-current variable gets its
// coefficient-of-v extracted and folded into two running accumulators,
// current_ and conductance_, which are then written back to vec_rhs and
// vec_d (§4.8 step 3).
func lowerCurrent(mod *module.Module) *ast.APIMethod {
	scope := symtab.NewScope(mod.Globals)
	api := ast.NewAPIMethod("nrn_current")
	api.Scope = scope

	body := ast.NewBlockAt(ast.Location{}, false)
	if mod.Breakpoint == nil {
		mod.Diags.Warnf(diagnostics.ErrW002MissingBreakpoint, diagnostics.Location{},
			"module has no BREAKPOINT block; nrn_current synthesised empty")
		api.Body = body
		bindIO(scope, api, ast.IOAssign, module.NameV, module.NameVecV, true)
		return api
	}

	classifier := passes.NewClassifier()
	var ionOutputs []string
	sawUpdate := false

	for _, stmt := range mod.Breakpoint.Body.Body {
		if _, isSolve := stmt.(*ast.SolveStatement); isSolve {
			continue
		}

		body.Body = append(body.Body, ast.CloneStatement(stmt))

		v, ok := ionUpdateVariable(stmt)
		if !ok {
			continue
		}

		es := stmt.(*ast.ExpressionStatement)
		asg := es.Expr.(*ast.Assignment)
		rhs := passes.Inline(ast.Clone(asg.RHS))
		result := classifier.Classify(rhs, module.NameV)
		if result.Class != passes.Linear {
			mod.Diags.Fatalf(diagnostics.ErrW004NonlinearCurrent, locOf(stmt),
				"current update for %q must be a linear function of v", v.Name)
			return nil
		}

		if !sawUpdate {
			body.Body = append(body.Body, localDeclCurrentConductance()...)
			sawUpdate = true
		}
		body.Body = append(body.Body, buildCurrentAccum(v.Name, result.Coefficient)...)

		if v.Ion != ast.IonNonspecific {
			ionOutputs = append(ionOutputs, v.Name)
		}
	}

	api.Body = body
	rebindBlock(scope, body)

	for _, name := range ionOutputs {
		bindIO(scope, api, ast.IOAddTo, name, "ion_"+name, false)
	}
	if sawUpdate {
		bindIO(scope, api, ast.IOSubFrom, "current_", module.NameVecRHS, false)
		bindIO(scope, api, ast.IOAddTo, "conductance_", module.NameVecD, false)
		bindReadableIonInputs(mod, scope, api)
	}
	bindIO(scope, api, ast.IOAssign, module.NameV, module.NameVecV, true)

	return api
}

// ionUpdateVariable reports whether stmt is an assignment whose
// already-resolved LHS identifier names an ion or nonspecific-current
// variable (semantic analysis, which ran before lowering, has already
// bound every Identifier.Symbol in this tree).
func ionUpdateVariable(stmt ast.Statement) (*ast.Variable, bool) {
	es, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		return nil, false
	}
	asg, ok := es.Expr.(*ast.Assignment)
	if !ok {
		return nil, false
	}
	ident, ok := asg.LHS.(*ast.Identifier)
	if !ok {
		return nil, false
	}
	v, ok := ident.Symbol.(*ast.Variable)
	if !ok || v.Ion == ast.IonNone {
		return nil, false
	}
	return v, true
}

func localDeclCurrentConductance() []ast.Statement {
	loc := ast.Location{}
	declCurrent := ast.NewLocalDeclarationAt(loc, "current_")
	declConductance := ast.NewLocalDeclarationAt(loc, "conductance_")
	return []ast.Statement{declCurrent, declConductance}
}

// buildCurrentAccum synthesises the running-total update for one ion
// current assignment (§4.8 step 3):
//
//	current_     = current_ + <ion>
//	conductance_ = conductance_ + <coeff>
func buildCurrentAccum(ionVar string, coeff float64) []ast.Statement {
	loc := ast.Location{}
	curRHS := ast.NewBinaryAt(loc, ast.BinAdd, ast.NewIdentifierAt(loc, "current_"), ast.NewIdentifierAt(loc, ionVar))
	curStmt := ast.NewExpressionStatementAt(loc, ast.NewAssignmentAt(loc, ast.NewIdentifierAt(loc, "current_"), curRHS))

	condRHS := ast.NewBinaryAt(loc, ast.BinAdd, ast.NewIdentifierAt(loc, "conductance_"), ast.NewNumberAt(loc, coeff))
	condStmt := ast.NewExpressionStatementAt(loc, ast.NewAssignmentAt(loc, ast.NewIdentifierAt(loc, "conductance_"), condRHS))

	return []ast.Statement{curStmt, condStmt}
}

// bindReadableIonInputs adds an input binding for every readable ion
// variable in the module, mirroring the original's "assume every input
// ion variable is used" conservatism: a printer cannot tell from
// nrn_current's body alone which ion reads the BREAKPOINT expression
// folded away via inlining, so every one the NEURON block declares
// READ is wired up regardless.
func bindReadableIonInputs(mod *module.Module, scope *symtab.Scope, api *ast.APIMethod) {
	if mod.Neuron == nil {
		return
	}
	for _, dep := range mod.Neuron.Ions {
		for _, name := range dep.Read {
			bindIO(scope, api, ast.IOAssign, name, "ion_"+name, true)
		}
	}
}
