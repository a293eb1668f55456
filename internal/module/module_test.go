package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechc/internal/ast"
)

func TestNewInitializesMapsAndCollector(t *testing.T) {
	mod := New("leak.mod", "TITLE leak\n")
	require.NotNil(t, mod.Procedures)
	require.NotNil(t, mod.Functions)
	require.NotNil(t, mod.Derivatives)
	require.NotNil(t, mod.Globals)
	require.NotNil(t, mod.Diags)
	assert.Equal(t, "leak.mod", mod.SourceName)
	assert.Equal(t, "TITLE leak\n", mod.Source)
}

func TestKindStringDistinguishesDensityAndPointProcess(t *testing.T) {
	assert.Equal(t, "density", Density.String())
	assert.Equal(t, "point_process", PointProcess.String())
}

func TestStatusReflectsCollectedDiagnostics(t *testing.T) {
	mod := New("t.mod", "")
	assert.Equal(t, mod.Diags.Status(), mod.Status())
}

func TestIonNamesNilWithoutNeuronBlock(t *testing.T) {
	mod := New("t.mod", "")
	assert.Nil(t, mod.IonNames())
}

func TestIonNamesReturnsDeclarationOrder(t *testing.T) {
	mod := New("t.mod", "")
	mod.Neuron = &ast.NeuronBlock{
		Ions: []ast.IonDep{{Name: "na"}, {Name: "k"}},
	}
	assert.Equal(t, []string{"na", "k"}, mod.IonNames())
}
