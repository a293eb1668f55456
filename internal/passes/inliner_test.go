package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechc/internal/ast"
	"mechc/internal/token"
)

// singleStatementFunction builds a single-statement FUNCTION
// `name(args) { name = body }`, the only shape Inline ever reduces.
func singleStatementFunction(name string, argNames []string, body ast.Expression) *ast.Function {
	fn := ast.NewFunction(token.Token{}, name)
	for _, a := range argNames {
		fn.Args = append(fn.Args, &ast.Argument{Name: a})
	}
	block := ast.NewBlockAt(ast.Location{}, true)
	block.Body = append(block.Body, ast.NewExpressionStatementAt(ast.Location{}, ast.NewAssignmentAt(
		ast.Location{}, ast.NewIdentifierAt(ast.Location{}, name), body,
	)))
	fn.Body = block
	return fn
}

func TestInlineSubstitutesFormalsWithActuals(t *testing.T) {
	// FUNCTION twice(z) { twice = z * 2 }
	fn := singleStatementFunction("twice", []string{"z"},
		ast.NewBinaryAt(ast.Location{}, ast.BinMul, ident("z"), num(2)))

	call := ast.NewCall(token.Token{}, "twice")
	call.Args = []ast.Expression{ident("x")}
	call.Callee = fn

	result := Inline(call)
	bin, ok := result.(*ast.Binary)
	require.True(t, ok)
	lhs, ok := bin.LHS.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "x", lhs.Name)
}

func TestInlineLeavesNonTrivialCallsAlone(t *testing.T) {
	call := ast.NewCall(token.Token{}, "unknown")
	call.Args = []ast.Expression{ident("x")}
	// Callee left nil: not inlinable.
	result := Inline(call)
	_, ok := result.(*ast.Call)
	assert.True(t, ok)
}

func TestInlineRecursesIntoNestedExpressions(t *testing.T) {
	fn := singleStatementFunction("half", []string{"z"},
		ast.NewBinaryAt(ast.Location{}, ast.BinDiv, ident("z"), num(2)))
	call := ast.NewCall(token.Token{}, "half")
	call.Args = []ast.Expression{num(10)}
	call.Callee = fn

	wrapped := ast.NewBinaryAt(ast.Location{}, ast.BinAdd, call, num(1))
	result := Inline(wrapped)
	bin, ok := result.(*ast.Binary)
	require.True(t, ok)
	_, stillCall := bin.LHS.(*ast.Call)
	assert.False(t, stillCall, "the inlinable nested call should have been replaced")
}

func TestInlineIsCycleSafe(t *testing.T) {
	// FUNCTION rec(z) { rec = rec(z) } -- self-referential, must not recurse forever.
	fn := singleStatementFunction("rec", []string{"z"}, nil)
	selfCall := ast.NewCall(token.Token{}, "rec")
	selfCall.Args = []ast.Expression{ident("z")}
	selfCall.Callee = fn
	fn.Body.Body[0].(*ast.ExpressionStatement).Expr.(*ast.Assignment).RHS = selfCall

	outerCall := ast.NewCall(token.Token{}, "rec")
	outerCall.Args = []ast.Expression{num(1)}
	outerCall.Callee = fn

	assert.NotPanics(t, func() { Inline(outerCall) })
}
