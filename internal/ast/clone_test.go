package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechc/internal/token"
)

func TestCloneDeepCopiesBinaryTree(t *testing.T) {
	orig := NewBinaryAt(Location{}, BinAdd, NewIdentifierAt(Location{}, "a"), NewNumberAt(Location{}, 1))
	clone := Clone(orig).(*Binary)

	require.NotSame(t, orig, clone)
	assert.NotSame(t, orig.LHS, clone.LHS)
	assert.NotSame(t, orig.RHS, clone.RHS)

	clone.LHS.(*Identifier).Name = "mutated"
	assert.Equal(t, "a", orig.LHS.(*Identifier).Name, "mutating the clone must not affect the original")
}

func TestCloneCallDeepCopiesArgs(t *testing.T) {
	orig := NewCall(token.Token{}, "f")
	orig.Args = []Expression{NewNumberAt(Location{}, 1), NewIdentifierAt(Location{}, "x")}

	clone := Clone(orig).(*Call)
	require.Len(t, clone.Args, 2)
	assert.NotSame(t, orig.Args[1], clone.Args[1])
}

func TestCloneNilIsNil(t *testing.T) {
	assert.Nil(t, Clone(nil))
}

func TestCloneStatementRecursesIntoIfBranches(t *testing.T) {
	then := NewBlockAt(Location{}, true)
	then.Body = append(then.Body, NewExpressionStatementAt(Location{}, NewIdentifierAt(Location{}, "x")))
	orig := &If{Cond: NewIdentifierAt(Location{}, "cond"), Then: then}

	cloned := CloneStatement(orig).(*If)
	require.NotSame(t, orig.Then, cloned.Then)
	clonedIdent := cloned.Then.Body[0].(*ExpressionStatement).Expr.(*Identifier)
	clonedIdent.Name = "mutated"
	origIdent := orig.Then.Body[0].(*ExpressionStatement).Expr.(*Identifier)
	assert.Equal(t, "x", origIdent.Name)
}

func TestFilterLocalDeclsDropsOnlyTopLevelLocals(t *testing.T) {
	b := NewBlockAt(Location{}, true)
	b.Body = append(b.Body,
		NewLocalDeclarationAt(Location{}, "tmp"),
		NewExpressionStatementAt(Location{}, NewIdentifierAt(Location{}, "x")),
	)

	filtered := FilterLocalDecls(b)
	require.Len(t, filtered.Body, 1)
	_, isExprStmt := filtered.Body[0].(*ExpressionStatement)
	assert.True(t, isExprStmt)

	// original block is untouched.
	assert.Len(t, b.Body, 2)
}

func TestFilterLocalDeclsNilBlock(t *testing.T) {
	assert.Nil(t, FilterLocalDecls(nil))
}
