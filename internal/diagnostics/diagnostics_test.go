package diagnostics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorStatusEscalatesToWorstSeverity(t *testing.T) {
	c := NewCollector("m")
	assert.Equal(t, Happy, c.Status())

	c.Warnf(ErrW005NameCollision, Location{Line: 1}, "warn")
	assert.Equal(t, HasWarning, c.Status())

	c.Errorf(ErrE001Undefined, Location{Line: 2}, "err")
	assert.Equal(t, HasError, c.Status())
}

func TestCollectorHasErrorsIgnoresWarnings(t *testing.T) {
	c := NewCollector("m")
	c.Warnf(ErrW005NameCollision, Location{}, "warn")
	assert.False(t, c.HasErrors())

	c.Fatalf(ErrI001Internal, Location{}, "fatal")
	assert.True(t, c.HasErrors())
}

func TestCollectorAddFillsModuleNameWhenAbsent(t *testing.T) {
	c := NewCollector("leak.mod")
	c.Add(Diagnostic{Severity: Warning, Code: ErrW005NameCollision, Message: "x"})
	got := c.All()[0]
	assert.Equal(t, "leak.mod", got.Module)
}

func TestCollectorAllSortsByLocation(t *testing.T) {
	c := NewCollector("m")
	c.Errorf(ErrE001Undefined, Location{Line: 5, Column: 1}, "later")
	c.Errorf(ErrE001Undefined, Location{Line: 1, Column: 9}, "earlier")
	c.Errorf(ErrE001Undefined, Location{Line: 1, Column: 2}, "earliest")

	all := c.All()
	assert.Equal(t, "earliest", all[0].Message)
	assert.Equal(t, "earlier", all[1].Message)
	assert.Equal(t, "later", all[2].Message)
}

func TestDiagnosticStringIncludesCodeAndSeverity(t *testing.T) {
	d := Diagnostic{Severity: Error, Code: ErrE001Undefined, Location: Location{Line: 3, Column: 4}, Module: "m", Message: "boom"}
	s := d.String()
	assert.Contains(t, s, "E001")
	assert.Contains(t, s, "error")
	assert.Contains(t, s, "3:4")
	assert.Contains(t, s, "boom")
}

func TestRenderWritesOnePerLineWithoutColorWhenNotATerminal(t *testing.T) {
	c := NewCollector("m")
	c.Warnf(ErrW005NameCollision, Location{Line: 1, Column: 1}, "warn msg")

	var buf bytes.Buffer
	c.Render(&buf, ^uintptr(0), false, true)
	out := buf.String()
	assert.Contains(t, out, "warn msg")
	assert.NotContains(t, out, "\x1b[")
}

func TestStatusStringValues(t *testing.T) {
	assert.Equal(t, "happy", Happy.String())
	assert.Equal(t, "warning", HasWarning.String())
	assert.Equal(t, "error", HasError.String())
}
