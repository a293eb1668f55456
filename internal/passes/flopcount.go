package passes

import "mechc/internal/ast"

// FlopCount tallies arithmetic operations the way original_source's
// PerfVisitor does, per mechanism: a feature the distilled spec drops
// but that a complete implementation carries for trace output
// (internal/traceutil formats it with go-humanize).
type FlopCount struct {
	Add, Sub, Mul, Div, Pow int
	Transcendental          int // exp, log, sin, cos
}

// Total returns the flop count across every category.
func (f FlopCount) Total() int {
	return f.Add + f.Sub + f.Mul + f.Div + f.Pow + f.Transcendental
}

func (f *FlopCount) merge(other FlopCount) {
	f.Add += other.Add
	f.Sub += other.Sub
	f.Mul += other.Mul
	f.Div += other.Div
	f.Pow += other.Pow
	f.Transcendental += other.Transcendental
}

// CountFlops tallies the operators in e.
func CountFlops(e ast.Expression) FlopCount {
	var c FlopCount
	countInto(e, &c)
	return c
}

func countInto(e ast.Expression, c *FlopCount) {
	switch n := e.(type) {
	case *ast.Unary:
		countInto(n.Expr, c)
		switch n.Op {
		case ast.UnaryExp, ast.UnaryLog, ast.UnarySin, ast.UnaryCos:
			c.Transcendental++
		}
	case *ast.Binary:
		countInto(n.LHS, c)
		countInto(n.RHS, c)
		switch n.Op {
		case ast.BinAdd:
			c.Add++
		case ast.BinSub:
			c.Sub++
		case ast.BinMul:
			c.Mul++
		case ast.BinDiv:
			c.Div++
		case ast.BinPow:
			c.Pow++
		}
	case *ast.Call:
		for _, a := range n.Args {
			countInto(a, c)
		}
	case *ast.Assignment:
		countInto(n.RHS, c)
	case *ast.ConditionalExpression:
		countInto(n.Cond, c)
	}
}

// CountBlock tallies every expression reachable from b, including nested
// if/else and INITIAL bodies.
func CountBlock(b *ast.Block) FlopCount {
	var total FlopCount
	if b == nil {
		return total
	}
	for _, stmt := range b.Body {
		switch s := stmt.(type) {
		case *ast.ExpressionStatement:
			total.merge(CountFlops(s.Expr))
		case *ast.If:
			total.merge(CountFlops(s.Cond))
			total.merge(CountBlock(s.Then))
			total.merge(CountBlock(s.Else))
		case *ast.InitialBlock:
			total.merge(CountBlock(s.Body))
		}
	}
	return total
}
