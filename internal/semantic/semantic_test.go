package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechc/internal/ast"
	"mechc/internal/module"
	"mechc/internal/token"
)

func assignExprStmt(lhsName, rhsName string) *ast.ExpressionStatement {
	lhs := ast.NewIdentifierAt(ast.Location{}, lhsName)
	rhs := ast.NewIdentifierAt(ast.Location{}, rhsName)
	return ast.NewExpressionStatementAt(ast.Location{}, ast.NewAssignmentAt(ast.Location{}, lhs, rhs))
}

// TestPreloadCallablesMakesDerivativeResolvableBySolve is a focused
// regression test for the gap where DERIVATIVE/PROCEDURE/FUNCTION
// blocks were never inserted into module scope: a SOLVE statement could
// never resolve its target. It builds the module pieces by hand rather
// than going through the parser so the symtab wiring is isolated from
// parsing concerns.
func TestPreloadCallablesMakesDerivativeResolvableBySolve(t *testing.T) {
	mod := module.New("t.mod", "")
	mod.State = &ast.StateBlock{Names: []string{"m"}}

	deriv := ast.NewProcedure(token.Token{}, "states", ast.ProcDerivative)
	deriv.Body = ast.NewBlockAt(ast.Location{}, true)
	mod.Derivatives["states"] = deriv
	mod.DerivativeOrder = []string{"states"}

	mod.Breakpoint = ast.NewProcedure(token.Token{}, "breakpoint", ast.ProcUser)
	mod.Breakpoint.Body = ast.NewBlockAt(ast.Location{}, true)
	solve := ast.NewSolveStatement(token.Token{})
	solve.Target = "states"
	solve.Method = "cnexp"
	mod.Breakpoint.Body.Body = append(mod.Breakpoint.Body.Body, solve)

	Analyze(mod)

	require.False(t, mod.Diags.HasErrors(), "diagnostics: %v", mod.Diags.All())
	require.NotNil(t, solve.Proc)
	assert.Same(t, deriv, solve.Proc)
}

func TestResolveSolveRejectsUndeclaredTarget(t *testing.T) {
	mod := module.New("t.mod", "")
	mod.Breakpoint = ast.NewProcedure(token.Token{}, "breakpoint", ast.ProcUser)
	mod.Breakpoint.Body = ast.NewBlockAt(ast.Location{}, true)
	solve := ast.NewSolveStatement(token.Token{})
	solve.Target = "bogus"
	mod.Breakpoint.Body.Body = append(mod.Breakpoint.Body.Body, solve)

	Analyze(mod)
	assert.True(t, mod.Diags.HasErrors())
	assert.Nil(t, solve.Proc)
}

func TestResolveSolveRejectsNonDerivativeTarget(t *testing.T) {
	mod := module.New("t.mod", "")
	rates := ast.NewProcedure(token.Token{}, "rates", ast.ProcUser)
	rates.Body = ast.NewBlockAt(ast.Location{}, true)
	mod.Procedures["rates"] = rates
	mod.ProcedureOrder = []string{"rates"}

	mod.Breakpoint = ast.NewProcedure(token.Token{}, "breakpoint", ast.ProcUser)
	mod.Breakpoint.Body = ast.NewBlockAt(ast.Location{}, true)
	solve := ast.NewSolveStatement(token.Token{})
	solve.Target = "rates"
	mod.Breakpoint.Body.Body = append(mod.Breakpoint.Body.Body, solve)

	Analyze(mod)
	assert.True(t, mod.Diags.HasErrors())
}

// TestResolveCallFindsUserProcedureAcrossBodies confirms an ordinary
// call to a sibling PROCEDURE resolves its callee and checks arity,
// exercising the same preloadCallables registration as the SOLVE path.
func TestResolveCallFindsUserProcedureAcrossBodies(t *testing.T) {
	mod := module.New("t.mod", "")

	rates := ast.NewProcedure(token.Token{}, "rates", ast.ProcUser)
	rates.Args = []*ast.Argument{ast.NewArgument(token.Token{})}
	rates.Args[0].Name = "x"
	rates.Body = ast.NewBlockAt(ast.Location{}, true)
	mod.Procedures["rates"] = rates
	mod.ProcedureOrder = []string{"rates"}

	caller := ast.NewProcedure(token.Token{}, "caller", ast.ProcUser)
	call := ast.NewCall(token.Token{}, "rates")
	call.Args = []ast.Expression{ast.NewNumberAt(ast.Location{}, 1)}
	caller.Body = ast.NewBlockAt(ast.Location{}, true)
	caller.Body.Body = append(caller.Body.Body, ast.NewExpressionStatementAt(ast.Location{}, call))
	mod.Procedures["caller"] = caller
	mod.ProcedureOrder = append(mod.ProcedureOrder, "caller")

	Analyze(mod)

	require.False(t, mod.Diags.HasErrors(), "diagnostics: %v", mod.Diags.All())
	assert.Same(t, rates, call.Callee)
}

func TestResolveCallReportsArityMismatch(t *testing.T) {
	mod := module.New("t.mod", "")

	rates := ast.NewProcedure(token.Token{}, "rates", ast.ProcUser)
	rates.Args = []*ast.Argument{ast.NewArgument(token.Token{})}
	rates.Args[0].Name = "x"
	rates.Body = ast.NewBlockAt(ast.Location{}, true)
	mod.Procedures["rates"] = rates
	mod.ProcedureOrder = []string{"rates"}

	caller := ast.NewProcedure(token.Token{}, "caller", ast.ProcUser)
	call := ast.NewCall(token.Token{}, "rates")
	caller.Body = ast.NewBlockAt(ast.Location{}, true)
	caller.Body.Body = append(caller.Body.Body, ast.NewExpressionStatementAt(ast.Location{}, call))
	mod.Procedures["caller"] = caller
	mod.ProcedureOrder = append(mod.ProcedureOrder, "caller")

	Analyze(mod)
	assert.True(t, mod.Diags.HasErrors())
}

func TestResolveIdentifierAliasesIndexedVariableOnFirstReference(t *testing.T) {
	mod := module.New("t.mod", "")
	mod.Parameter = &ast.ParameterBlock{Entries: []ast.ParameterEntry{{Name: module.NameV}}}

	proc := ast.NewProcedure(token.Token{}, "current", ast.ProcUser)
	proc.Body = ast.NewBlockAt(ast.Location{}, true)
	proc.Body.Body = append(proc.Body.Body, assignExprStmt("x", module.NameV))
	mod.Procedures["current"] = proc
	mod.ProcedureOrder = []string{"current"}

	Analyze(mod)

	assign := proc.Body.Body[0].(*ast.ExpressionStatement).Expr.(*ast.Assignment)
	rhs := assign.RHS.(*ast.Identifier)
	_, isLocalAlias := rhs.Symbol.(*ast.LocalVariable)
	assert.True(t, isLocalAlias, "first reference to %s inside a procedure body should alias to a LocalVariable", module.NameV)
}

func TestCheckWritableRejectsReadOnlyParameter(t *testing.T) {
	mod := module.New("t.mod", "")
	mod.Parameter = &ast.ParameterBlock{Entries: []ast.ParameterEntry{{Name: "gl", HasDefault: true, Default: 0.001}}}

	proc := ast.NewProcedure(token.Token{}, "bad", ast.ProcUser)
	proc.Body = ast.NewBlockAt(ast.Location{}, true)
	asg := ast.NewAssignmentAt(ast.Location{}, ast.NewIdentifierAt(ast.Location{}, "gl"), ast.NewNumberAt(ast.Location{}, 2))
	proc.Body.Body = append(proc.Body.Body, ast.NewExpressionStatementAt(ast.Location{}, asg))
	mod.Procedures["bad"] = proc
	mod.ProcedureOrder = []string{"bad"}

	Analyze(mod)
	assert.True(t, mod.Diags.HasErrors())
}
