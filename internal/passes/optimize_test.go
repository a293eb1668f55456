package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechc/internal/ast"
	"mechc/internal/module"
	"mechc/internal/token"
)

func exprStmt(e ast.Expression) *ast.ExpressionStatement {
	return ast.NewExpressionStatementAt(ast.Location{}, e)
}

func TestOptimizeFoldsProcedureAndAPIMethodBodies(t *testing.T) {
	mod := module.New("t.mod", "")

	proc := ast.NewProcedure(token.Token{}, "rates", ast.ProcUser)
	proc.Body = ast.NewBlockAt(ast.Location{}, true)
	asg := ast.NewAssignmentAt(ast.Location{}, ident("minf"),
		ast.NewBinaryAt(ast.Location{}, ast.BinAdd, num(1), num(1)))
	proc.Body.Body = append(proc.Body.Body, exprStmt(asg))
	mod.Procedures["rates"] = proc
	mod.ProcedureOrder = []string{"rates"}

	api := ast.NewAPIMethod("nrn_state")
	api.Body = ast.NewBlockAt(ast.Location{}, true)
	apiAsg := ast.NewAssignmentAt(ast.Location{}, ident("m"),
		ast.NewBinaryAt(ast.Location{}, ast.BinMul, num(2), num(3)))
	api.Body.Body = append(api.Body.Body, exprStmt(apiAsg))
	mod.APIMethods = map[string]*ast.APIMethod{"nrn_state": api}

	Optimize(mod)

	foldedProc, ok := asg.RHS.(*ast.Number)
	require.True(t, ok)
	assert.Equal(t, 2.0, foldedProc.Value)

	foldedAPI, ok := apiAsg.RHS.(*ast.Number)
	require.True(t, ok)
	assert.Equal(t, 6.0, foldedAPI.Value)
}

func TestOptimizeGhostTagsOnlyForPointProcess(t *testing.T) {
	mod := module.New("t.mod", "")
	mod.Kind = module.Density

	local := &ast.LocalVariable{Name: "i", External: &ast.Variable{Name: "ina"}}
	api := ast.NewAPIMethod("nrn_current")
	api.Body = ast.NewBlockAt(ast.Location{}, true)
	api.Outputs = []ast.IOBinding{{Direction: ast.IOAssign, Local: local, External: local.External}}
	mod.APIMethods = map[string]*ast.APIMethod{"nrn_current": api}

	Optimize(mod)
	assert.False(t, local.External.(*ast.Variable).IsGhost, "density mechanisms must not be ghost-tagged")

	mod.Kind = module.PointProcess
	Optimize(mod)
	assert.True(t, local.External.(*ast.Variable).IsGhost)
}

func TestOptimizeHandlesNilAPIMethodsMap(t *testing.T) {
	mod := module.New("t.mod", "")
	assert.NotPanics(t, func() { Optimize(mod) })
}
