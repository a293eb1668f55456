// Package module defines the Module data model (§3.5): the bundle of
// source, block descriptors, user procedures/functions, the global
// symbol table, and — after lowering — the synthesised API methods that
// together form the read-only contract a backend printer consumes.
package module

import (
	"mechc/internal/ast"
	"mechc/internal/diagnostics"
	"mechc/internal/symtab"
)

// Kind distinguishes a density mechanism (one instance per grid point)
// from a point process (instances may share a grid point).
type Kind int

const (
	Density Kind = iota
	PointProcess
)

func (k Kind) String() string {
	if k == PointProcess {
		return "point_process"
	}
	return "density"
}

// Module bundles everything the compiler core produces and everything a
// backend printer needs (§3.5, §6).
type Module struct {
	Source     string // the original source buffer
	SourceName string // filename, for diagnostics
	Title      string

	Neuron    *ast.NeuronBlock
	State     *ast.StateBlock
	Units     *ast.UnitsBlock
	Parameter *ast.ParameterBlock
	Assigned  *ast.AssignedBlock

	// User-declared procedures and functions, keyed by name; *Order
	// slices preserve declaration order for deterministic traversal.
	Procedures     map[string]*ast.Procedure
	ProcedureOrder []string
	Functions      map[string]*ast.Function
	FunctionOrder  []string

	// The three special blocks, each at most one per module (at most
	// one DERIVATIVE block per name; SOLVE refers to one by name).
	Initial         *ast.Procedure
	Derivatives     map[string]*ast.Procedure
	DerivativeOrder []string
	Breakpoint      *ast.Procedure
	NetReceive      *ast.NetReceive

	Globals *symtab.Global

	// APIMethods holds the synthesised nrn_init/nrn_state/nrn_current
	// procedures after a successful lowering pass (§4.8). Nil before
	// lowering runs.
	APIMethods map[string]*ast.APIMethod

	Kind Kind

	Diags *diagnostics.Collector
}

// New creates an empty Module ready for the parser to populate.
func New(sourceName, source string) *Module {
	return &Module{
		Source:      source,
		SourceName:  sourceName,
		Procedures:  make(map[string]*ast.Procedure),
		Functions:   make(map[string]*ast.Function),
		Derivatives: make(map[string]*ast.Procedure),
		Globals:     symtab.NewGlobal(),
		Diags:       diagnostics.NewCollector(sourceName),
	}
}

// Status reports the module's overall compile status (§4.10).
func (m *Module) Status() diagnostics.Status {
	return m.Diags.Status()
}

// IonNames returns the names of every ion dependency declared in the
// NEURON block, in declaration order.
func (m *Module) IonNames() []string {
	if m.Neuron == nil {
		return nil
	}
	names := make([]string, len(m.Neuron.Ions))
	for i, dep := range m.Neuron.Ions {
		names[i] = dep.Name
	}
	return names
}

// Reserved symbol-table names fixed by the host boundary (§4.5, §6).
const (
	NameT       = "t"
	NameDt      = "dt"
	NameV       = "v"
	NameG       = "g_"
	NameVecV    = "vec_v"
	NameVecRHS  = "vec_rhs"
	NameVecD    = "vec_d"
	NameCelsius = "celsius"
)
