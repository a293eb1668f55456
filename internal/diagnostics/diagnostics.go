// Package diagnostics models source locations and the error/warning
// records produced by every compiler pass, with optional colourised
// rendering to a terminal.
package diagnostics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// Location is a 1-based (line, column) source position.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Severity classifies a Diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

// Code is a short, stable identifier for a diagnostic kind, grouped by
// the pass that raises it: L (lexical), S (syntactic), E (semantic),
// W (lowering, plus the semantic warnings W005 and W006), I (internal).
type Code string

const (
	ErrL001UnexpectedChar Code = "L001"
	ErrL002BadNumber      Code = "L002"
	ErrL003BadLineEnding  Code = "L003"

	ErrS001MissingToken      Code = "S001"
	ErrS002UnexpectedKeyword Code = "S002"
	ErrS003BadSolveMethod    Code = "S003"
	ErrS004LocalInNestedScope Code = "S004"
	ErrS005DerivativeWithoutEq Code = "S005"
	ErrS006AssignInSubexpr   Code = "S006"

	ErrE001Undefined        Code = "E001"
	ErrE002NotCallable      Code = "E002"
	ErrE003ArityMismatch    Code = "E003"
	ErrE004NotLvalue        Code = "E004"
	ErrE005Duplicate        Code = "E005"
	ErrE006IonNotDeclared   Code = "E006"
	ErrE007BadNonspecific   Code = "E007"
	ErrE008IllegalInitialNesting Code = "E008"

	ErrW001MissingInitial    Code = "W001"
	ErrW002MissingBreakpoint Code = "W002"
	ErrW003NonlinearODE      Code = "W003"
	ErrW004NonlinearCurrent  Code = "W004"
	ErrW005NameCollision     Code = "W005"
	ErrW006FunctionSelfAssign Code = "W006"
	ErrW007MissingSolve      Code = "W007"
	ErrW008ReservedNameCollision Code = "W008"

	ErrI001Internal Code = "I001"
)

// Diagnostic is a single located compiler message.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Location Location
	Module   string
	Message  string
}

func (d Diagnostic) String() string {
	kind := "warning"
	switch d.Severity {
	case Error:
		kind = "error"
	case Fatal:
		kind = "fatal error"
	}
	mod := d.Module
	if mod == "" {
		mod = "<module>"
	}
	return fmt.Sprintf("%s:%s: %s [%s]: %s", mod, d.Location, kind, d.Code, d.Message)
}

// Status is the three-valued compile status described in §4.10.
type Status int

const (
	Happy Status = iota
	HasWarning
	HasError
)

func (s Status) String() string {
	switch s {
	case Happy:
		return "happy"
	case HasWarning:
		return "warning"
	default:
		return "error"
	}
}

// Collector accumulates diagnostics across passes. A Collector is created
// once per compilation and carries a UUID run identifier for that
// compile run; internal/traceutil and internal/cache do not record it.
type Collector struct {
	RunID       uuid.UUID
	ModuleName  string
	diagnostics []Diagnostic
}

// NewCollector creates a Collector for one compilation of the named
// module.
func NewCollector(moduleName string) *Collector {
	return &Collector{RunID: uuid.New(), ModuleName: moduleName}
}

// Add records a diagnostic, filling in the module name if absent.
func (c *Collector) Add(d Diagnostic) {
	if d.Module == "" {
		d.Module = c.ModuleName
	}
	c.diagnostics = append(c.diagnostics, d)
}

// Errorf records an Error-severity diagnostic.
func (c *Collector) Errorf(code Code, loc Location, format string, args ...any) {
	c.Add(Diagnostic{Severity: Error, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a Warning-severity diagnostic.
func (c *Collector) Warnf(code Code, loc Location, format string, args ...any) {
	c.Add(Diagnostic{Severity: Warning, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Fatalf records a Fatal-severity diagnostic. Lowering passes use this:
// per §4.10 lowering aborts on the first error.
func (c *Collector) Fatalf(code Code, loc Location, format string, args ...any) {
	c.Add(Diagnostic{Severity: Fatal, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any Error or Fatal diagnostic was recorded.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diagnostics {
		if d.Severity >= Error {
			return true
		}
	}
	return false
}

// Status computes the §4.10 three-valued status from recorded diagnostics.
func (c *Collector) Status() Status {
	status := Happy
	for _, d := range c.diagnostics {
		switch d.Severity {
		case Warning:
			if status == Happy {
				status = HasWarning
			}
		case Error, Fatal:
			status = HasError
		}
	}
	return status
}

// All returns diagnostics sorted by location (stable for equal locations).
func (c *Collector) All() []Diagnostic {
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Location.Line != out[j].Location.Line {
			return out[i].Location.Line < out[j].Location.Line
		}
		return out[i].Location.Column < out[j].Location.Column
	})
	return out
}

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorReset  = "\x1b[0m"
)

// Render writes every recorded diagnostic to w, one per line, colourised
// when w is a terminal (per go-isatty) and colour is not forced off.
func (c *Collector) Render(w io.Writer, fd uintptr, forceColor, forceNoColor bool) {
	useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) || forceColor) && !forceNoColor
	var b strings.Builder
	for _, d := range c.All() {
		line := d.String()
		if useColor {
			color := colorYellow
			if d.Severity >= Error {
				color = colorRed
			}
			line = color + line + colorReset
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	io.WriteString(w, b.String())
}
