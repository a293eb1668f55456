package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mechc/internal/ast"
)

func ident(name string) *ast.Identifier { return ast.NewIdentifierAt(ast.Location{}, name) }

func TestClassifyConstant(t *testing.T) {
	c := NewClassifier()
	r := c.Classify(num(42), "x")
	assert.Equal(t, Constant, r.Class)
	assert.Equal(t, 42.0, r.ConstantTerm)
}

func TestClassifyTargetIsLinear(t *testing.T) {
	c := NewClassifier()
	r := c.Classify(ident("x"), "x")
	assert.Equal(t, Linear, r.Class)
	assert.Equal(t, 1.0, r.Coefficient)
}

func TestClassifyOtherIdentifierIsConstant(t *testing.T) {
	c := NewClassifier()
	r := c.Classify(ident("y"), "x")
	assert.Equal(t, Constant, r.Class)
}

func TestClassifyLinearCombination(t *testing.T) {
	// a*x + b, both a and b constant in x
	c := NewClassifier()
	expr := ast.NewBinaryAt(ast.Location{}, ast.BinAdd,
		ast.NewBinaryAt(ast.Location{}, ast.BinMul, ident("a"), ident("x")),
		ident("b"))
	r := c.Classify(expr, "x")
	assert.Equal(t, Linear, r.Class)
}

func TestClassifyProductOfTwoLinearTermsIsNonlinear(t *testing.T) {
	c := NewClassifier()
	expr := ast.NewBinaryAt(ast.Location{}, ast.BinMul, ident("x"), ident("x"))
	r := c.Classify(expr, "x")
	assert.Equal(t, Nonlinear, r.Class)
}

func TestClassifyTranscendentalOfTargetIsNonlinear(t *testing.T) {
	c := NewClassifier()
	expr := ast.NewUnaryAt(ast.Location{}, ast.UnaryExp, ident("x"))
	r := c.Classify(expr, "x")
	assert.Equal(t, Nonlinear, r.Class)
}

func TestClassifyTranscendentalOfConstantIsConstant(t *testing.T) {
	c := NewClassifier()
	expr := ast.NewUnaryAt(ast.Location{}, ast.UnaryExp, ident("y"))
	r := c.Classify(expr, "x")
	assert.Equal(t, Constant, r.Class)
}

func TestClassifyDivisionByTargetIsNonlinear(t *testing.T) {
	c := NewClassifier()
	expr := ast.NewBinaryAt(ast.Location{}, ast.BinDiv, num(1), ident("x"))
	r := c.Classify(expr, "x")
	assert.Equal(t, Nonlinear, r.Class)
}

func TestClassifyIsMemoized(t *testing.T) {
	c := NewClassifier()
	expr := ident("x")
	first := c.Classify(expr, "x")
	second := c.Classify(expr, "x")
	assert.Equal(t, first, second)
	assert.Len(t, c.cache, 1)
}

func TestClassifyRelationalIsConstantWhenBothSidesAre(t *testing.T) {
	c := NewClassifier()
	expr := ast.NewBinaryAt(ast.Location{}, ast.BinLT, num(1), num(2))
	r := c.Classify(expr, "x")
	assert.Equal(t, Constant, r.Class)
}
