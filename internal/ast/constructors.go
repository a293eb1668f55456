package ast

import (
	"strconv"

	"mechc/internal/token"
)

// The constructors below are used by the parser, which cannot set the
// unexported `base` field directly from another package.

func NewUnary(t token.Token, op UnaryOp, expr Expression) *Unary {
	return &Unary{base: base{Location: locOf(t)}, Op: op, Expr: expr}
}

func NewBinaryAt(loc Location, op BinaryOp, lhs, rhs Expression) *Binary {
	return &Binary{base: base{Location: loc}, Op: op, LHS: lhs, RHS: rhs}
}

func NewCall(t token.Token, name string) *Call {
	return &Call{base: base{Location: locOf(t)}, Name: name}
}

func NewAssignmentAt(loc Location, lhs, rhs Expression) *Assignment {
	return &Assignment{base: base{Location: loc}, LHS: lhs, RHS: rhs}
}

func NewConditionalAt(loc Location, cond Expression) *ConditionalExpression {
	return &ConditionalExpression{base: base{Location: loc}, Cond: cond}
}

func NewBlock(t token.Token, nested bool) *Block {
	return &Block{base: base{Location: locOf(t)}, IsNested: nested}
}

func NewIf(t token.Token) *If {
	return &If{base: base{Location: locOf(t)}}
}

func NewInitialBlock(t token.Token) *InitialBlock {
	return &InitialBlock{base: base{Location: locOf(t)}}
}

func NewSolveStatement(t token.Token) *SolveStatement {
	return &SolveStatement{base: base{Location: locOf(t)}}
}

func NewExpressionStatementAt(loc Location, e Expression) *ExpressionStatement {
	return &ExpressionStatement{base: base{Location: loc}, Expr: e}
}

func NewLocalDeclaration(t token.Token) *LocalDeclaration {
	return &LocalDeclaration{base: base{Location: locOf(t)}}
}

func NewArgument(t token.Token) *Argument {
	return &Argument{base: base{Location: locOf(t)}, Name: t.Lexeme}
}

func NewProcedure(t token.Token, name string, kind ProcedureKind) *Procedure {
	return &Procedure{base: base{Location: locOf(t)}, Name: name, Kind: kind}
}

func NewFunction(t token.Token, name string) *Function {
	return &Function{base: base{Location: locOf(t)}, Name: name}
}

func NewNetReceive(t token.Token) *NetReceive {
	return &NetReceive{base: base{Location: locOf(t)}, Name: "net_receive"}
}

func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func NewIndexedVariable(name, arrayName string, access Access) *IndexedVariable {
	return &IndexedVariable{Name: name, ArrayName: arrayName, Access: access}
}

func NewLocalVariable(name string, external Symbol) *LocalVariable {
	return &LocalVariable{Name: name, External: external}
}

func NewAPIMethod(name string) *APIMethod {
	return &APIMethod{Name: name}
}

// NewNumberAt synthesises a Number with no source token, used by the
// constant-folding pass to materialise a folded value in place of a
// constant subtree.
func NewNumberAt(loc Location, value float64) *Number {
	return &Number{base: base{Location: loc}, Value: value, Spelling: strconv.FormatFloat(value, 'g', -1, 64)}
}

// NewIdentifierAt synthesises an Identifier with no source token, used by
// lowering to build references to its own injected locals (a_, ba_,
// current_, conductance_) and to state/ion names it already knows by
// string.
func NewIdentifierAt(loc Location, name string) *Identifier {
	return &Identifier{base: base{Location: loc}, Name: name}
}

// NewUnaryAt synthesises a Unary with no source token.
func NewUnaryAt(loc Location, op UnaryOp, expr Expression) *Unary {
	return &Unary{base: base{Location: loc}, Op: op, Expr: expr}
}

// NewLocalDeclarationAt synthesises a LocalDeclaration with no source
// token, used by lowering to inject the a_/ba_ and current_/conductance_
// scratch locals it builds into nrn_state and nrn_current.
func NewLocalDeclarationAt(loc Location, names ...string) *LocalDeclaration {
	return &LocalDeclaration{base: base{Location: loc}, Names: names}
}

// NewBlockAt synthesises an empty Block with no source token, used by
// lowering to build the body of a synthesised APIMethod from scratch.
func NewBlockAt(loc Location, nested bool) *Block {
	return &Block{base: base{Location: loc}, IsNested: nested}
}
