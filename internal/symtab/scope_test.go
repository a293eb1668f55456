package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechc/internal/ast"
)

func TestGlobalInsertAndFind(t *testing.T) {
	g := NewGlobal()
	v := &ast.Variable{Name: "gnabar"}
	require.NoError(t, g.Insert(v))

	found, ok := g.Find("gnabar")
	require.True(t, ok)
	assert.Same(t, v, found)

	_, ok = g.Find("missing")
	assert.False(t, ok)
}

func TestGlobalInsertDuplicateFails(t *testing.T) {
	g := NewGlobal()
	require.NoError(t, g.Insert(&ast.Variable{Name: "m"}))
	err := g.Insert(&ast.Variable{Name: "m"})
	assert.Error(t, err)
}

func TestGlobalReplaceOverwritesUnconditionally(t *testing.T) {
	g := NewGlobal()
	require.NoError(t, g.Insert(&ast.Variable{Name: "nrn_init"}))
	replacement := &ast.APIMethod{Name: "nrn_init"}
	g.Replace(replacement)

	found, ok := g.Find("nrn_init")
	require.True(t, ok)
	assert.Same(t, ast.Symbol(replacement), found)
}

func TestGlobalNamesSorted(t *testing.T) {
	g := NewGlobal()
	require.NoError(t, g.Insert(&ast.Variable{Name: "zeta"}))
	require.NoError(t, g.Insert(&ast.Variable{Name: "alpha"}))
	require.NoError(t, g.Insert(&ast.Variable{Name: "mu"}))
	assert.Equal(t, []string{"alpha", "mu", "zeta"}, g.Names())
}

func TestScopeFindPrefersLocalOverGlobal(t *testing.T) {
	g := NewGlobal()
	globalVar := &ast.Variable{Name: "x"}
	require.NoError(t, g.Insert(globalVar))

	s := NewScope(g)
	localVar := &ast.LocalVariable{Name: "x"}
	require.NoError(t, s.AddLocal(localVar))

	found, ok := s.Find("x")
	require.True(t, ok)
	assert.Same(t, ast.Symbol(localVar), found)

	global, ok := s.FindGlobal("x")
	require.True(t, ok)
	assert.Same(t, ast.Symbol(globalVar), global)
}

func TestScopeAddLocalDuplicateFails(t *testing.T) {
	s := NewScope(NewGlobal())
	require.NoError(t, s.AddLocal(&ast.LocalVariable{Name: "i"}))
	err := s.AddLocal(&ast.LocalVariable{Name: "i"})
	assert.Error(t, err)
}

func TestScopeShadowsIndexedVariable(t *testing.T) {
	g := NewGlobal()
	require.NoError(t, g.Insert(&ast.IndexedVariable{Name: "v", ArrayName: "vec_v"}))
	require.NoError(t, g.Insert(&ast.Variable{Name: "gnabar"}))

	s := NewScope(g)
	assert.True(t, s.ShadowsIndexedVariable("v"))
	assert.False(t, s.ShadowsIndexedVariable("gnabar"))
	assert.False(t, s.ShadowsIndexedVariable("nonexistent"))
}

func TestScopeLocalNamesPreservesInsertionOrder(t *testing.T) {
	s := NewScope(NewGlobal())
	require.NoError(t, s.AddLocal(&ast.LocalVariable{Name: "b"}))
	require.NoError(t, s.AddLocal(&ast.LocalVariable{Name: "a"}))
	require.NoError(t, s.AddLocal(&ast.LocalVariable{Name: "c"}))
	assert.Equal(t, []string{"b", "a", "c"}, s.LocalNames())
}
