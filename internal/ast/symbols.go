package ast

// Symbol is implemented by every entity that can live in a Scope:
// Variable, IndexedVariable, Procedure, Function, APIMethod,
// LocalVariable, and NetReceive (§3.2).
type Symbol interface {
	Node
	SymbolName() string
	symbolNode()
}

// Access enumerates whether a Variable is read, written, or both.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
	AccessReadWrite
)

// Visibility enumerates whether the host simulator can see/set a
// Variable.
type Visibility int

const (
	VisLocal Visibility = iota
	VisGlobal
)

// Linkage enumerates where a Variable's storage lives.
type Linkage int

const (
	LinkLocal Linkage = iota
	LinkExtern
)

// RangeKind enumerates whether a Variable has one value per mechanism
// instance or a single module-level value.
type RangeKind int

const (
	Scalar RangeKind = iota
	Range
)

// IonKind enumerates the ion-channel coupling of a Variable.
type IonKind int

const (
	IonNone IonKind = iota
	IonNonspecific
	IonCa
	IonNa
	IonK
)

func (k IonKind) String() string {
	switch k {
	case IonNonspecific:
		return "nonspecific"
	case IonCa:
		return "ca"
	case IonNa:
		return "na"
	case IonK:
		return "k"
	default:
		return "none"
	}
}

// IonKindForName maps a USEION ion name to its IonKind (§4.2).
func IonKindForName(name string) IonKind {
	switch name {
	case "na":
		return IonNa
	case "k":
		return IonK
	case "ca":
		return IonCa
	default:
		return IonNonspecific
	}
}

// VariableKind distinguishes how a Variable entered the symbol table,
// purely for diagnostics; it does not affect lowering semantics.
type VariableKind int

const (
	VarState VariableKind = iota
	VarParameter
	VarAssigned
	VarReserved
	VarIon
)

// Variable is a module-scope scalar or range variable carrying the five
// orthogonal attributes of §3.3, plus the is_state bit and an optional
// default value.
type Variable struct {
	base
	Name       string
	Access     Access
	Visibility Visibility
	Linkage    Linkage
	RangeKind  RangeKind
	Ion        IonKind
	IsState    bool
	HasDefault bool
	Default    float64
	Kind       VariableKind
	// IsGhost is set by the optimisation pass (§4.9) for point-process
	// local variables that appear in an API method's output list.
	IsGhost bool
}

func (v *Variable) symbolNode()        {}
func (v *Variable) SymbolName() string { return v.Name }

// IndexedVariable is a symbol bound to a host-provided flat index array
// (vec_v, vec_rhs, vec_d, ion_<name>, ...).
type IndexedVariable struct {
	base
	Name      string
	ArrayName string
	Access    Access
}

func (v *IndexedVariable) symbolNode()        {}
func (v *IndexedVariable) SymbolName() string { return v.Name }

// ProcedureKind identifies the origin block of a Procedure.
type ProcedureKind int

const (
	ProcUser ProcedureKind = iota
	ProcInitial
	ProcDerivative
	ProcBreakpoint
	ProcFunction
)

// Procedure is a user PROCEDURE, or the internal representation of an
// INITIAL/DERIVATIVE/BREAKPOINT block before lowering synthesises the
// API methods from it (§3.2, §4.8).
type Procedure struct {
	base
	Name  string
	Kind  ProcedureKind
	Args  []*Argument
	Body  *Block
	Scope ScopeRef // the procedure's own scope, set by semantic()
}

func (p *Procedure) symbolNode()        {}
func (p *Procedure) SymbolName() string { return p.Name }

// Function is a user FUNCTION; its body's last statement must assign to
// the function's own name (§4.4.5).
type Function struct {
	base
	Name string
	Args []*Argument
	Body *Block
	Scope ScopeRef
}

func (f *Function) symbolNode()        {}
func (f *Function) SymbolName() string { return f.Name }

// IODirection is the operator used when an APIMethod writes an output
// back to its external, indexed variable (§3.6).
type IODirection int

const (
	IOAssign IODirection = iota // =
	IOAddTo                     // +=
	IOSubFrom                   // -=
)

func (d IODirection) String() string {
	switch d {
	case IOAddTo:
		return "+="
	case IOSubFrom:
		return "-="
	default:
		return "="
	}
}

// IOBinding is one (local, external) pair in an APIMethod's input or
// output descriptor list (§3.6).
type IOBinding struct {
	Direction IODirection
	Local     Symbol
	External  Symbol
}

// APIMethod is a synthesised procedure carrying explicit input/output
// descriptors, the contract a backend printer consumes (§3.6).
type APIMethod struct {
	base
	Name    string
	Body    *Block
	Scope   ScopeRef
	Inputs  []IOBinding
	Outputs []IOBinding
}

func (a *APIMethod) symbolNode()        {}
func (a *APIMethod) SymbolName() string { return a.Name }

// LocalVariable is a procedure-local symbol: either a plain LOCAL
// declaration or an alias created the first time an indexed variable is
// referenced inside a procedure body (§4.4.4).
type LocalVariable struct {
	base
	Name     string
	External Symbol // non-nil when this is an alias for an IndexedVariable
}

func (l *LocalVariable) symbolNode()        {}
func (l *LocalVariable) SymbolName() string { return l.Name }

// NetReceive represents a NET_RECEIVE block. Per the decided Open
// Question (DESIGN.md), it is parsed and semantically checked but never
// lowered into a fourth APIMethod.
type NetReceive struct {
	base
	Name    string
	Args    []*Argument
	Body    *Block
	Scope   ScopeRef
	Initial *InitialBlock // at most one, per §4.4 invariant 6
}

func (n *NetReceive) symbolNode()        {}
func (n *NetReceive) SymbolName() string { return n.Name }
