package passes

import (
	"mechc/internal/ast"
	"mechc/internal/debugguard"
)

// Classification is the three-way verdict the expression-classifier
// visitor reaches about an expression's dependence on a distinguished
// symbol (§4.7).
type Classification int

const (
	Constant Classification = iota
	Linear
	Nonlinear
)

// ClassResult is the classifier's verdict plus, when linear, the
// simplified coefficient and constant term: expr ≈ Coefficient*x +
// ConstantTerm. Both fields are computed as plain float64 arithmetic as
// classification proceeds, so they are already in fully-reduced form by
// construction — no separate constant-folding step is needed on them.
type ClassResult struct {
	Class        Classification
	Coefficient  float64
	ConstantTerm float64
}

type classifyKey struct {
	expr   ast.Expression
	target string
}

// Classifier decides, for a distinguished symbol, whether an expression
// is constant, linear, or nonlinear in it, memoising results per
// (expression, target) pair (§4.7, §5 item 2).
type Classifier struct {
	cache map[classifyKey]ClassResult
	guard debugguard.Guard
}

// NewClassifier creates an empty Classifier.
func NewClassifier() *Classifier {
	return &Classifier{cache: make(map[classifyKey]ClassResult)}
}

// Classify classifies e with respect to the variable named target.
func (c *Classifier) Classify(e ast.Expression, target string) ClassResult {
	c.guard.Check()
	key := classifyKey{expr: e, target: target}
	if r, ok := c.cache[key]; ok {
		return r
	}
	r := c.classify(e, target)
	if r.Class == Constant {
		r.Coefficient = 0
	}
	c.cache[key] = r
	return r
}

func (c *Classifier) classify(e ast.Expression, target string) ClassResult {
	switch n := e.(type) {
	case *ast.Number:
		return ClassResult{Class: Constant, ConstantTerm: n.Value}
	case *ast.Identifier:
		if n.Name == target {
			return ClassResult{Class: Linear, Coefficient: 1}
		}
		return ClassResult{Class: Constant}
	case *ast.Unary:
		return c.classifyUnary(n, target)
	case *ast.Binary:
		return c.classifyBinary(n, target)
	case *ast.Call:
		// Calls are classified conservatively: constant only if none of
		// the arguments mention target. passes.Inline runs ahead of the
		// classifier to remove simple helper-function calls first.
		for _, a := range n.Args {
			if c.classify(a, target).Class != Constant {
				return ClassResult{Class: Nonlinear}
			}
		}
		return ClassResult{Class: Constant}
	default:
		return ClassResult{Class: Nonlinear}
	}
}

func (c *Classifier) classifyUnary(n *ast.Unary, target string) ClassResult {
	inner := c.classify(n.Expr, target)
	if n.Op == ast.UnaryNeg {
		switch inner.Class {
		case Constant:
			return ClassResult{Class: Constant, ConstantTerm: -inner.ConstantTerm}
		case Linear:
			return ClassResult{Class: Linear, Coefficient: -inner.Coefficient, ConstantTerm: -inner.ConstantTerm}
		default:
			return ClassResult{Class: Nonlinear}
		}
	}
	// exp/log/sin/cos
	if inner.Class == Constant {
		return ClassResult{Class: Constant}
	}
	return ClassResult{Class: Nonlinear}
}

func (c *Classifier) classifyBinary(n *ast.Binary, target string) ClassResult {
	l := c.classify(n.LHS, target)
	r := c.classify(n.RHS, target)

	if n.Op.IsRelational() {
		if l.Class != Constant || r.Class != Constant {
			return ClassResult{Class: Nonlinear}
		}
		return ClassResult{Class: Constant}
	}

	switch n.Op {
	case ast.BinAdd, ast.BinSub:
		if l.Class == Nonlinear || r.Class == Nonlinear {
			return ClassResult{Class: Nonlinear}
		}
		sign := 1.0
		if n.Op == ast.BinSub {
			sign = -1.0
		}
		class := Constant
		if l.Class == Linear || r.Class == Linear {
			class = Linear
		}
		return ClassResult{
			Class:        class,
			Coefficient:  l.Coefficient + sign*r.Coefficient,
			ConstantTerm: l.ConstantTerm + sign*r.ConstantTerm,
		}
	case ast.BinMul:
		if l.Class == Nonlinear || r.Class == Nonlinear {
			return ClassResult{Class: Nonlinear}
		}
		if l.Class == Linear && r.Class == Linear {
			return ClassResult{Class: Nonlinear}
		}
		if l.Class == Constant && r.Class == Constant {
			return ClassResult{Class: Constant, ConstantTerm: l.ConstantTerm * r.ConstantTerm}
		}
		if l.Class == Constant {
			return ClassResult{Class: Linear, Coefficient: l.ConstantTerm * r.Coefficient, ConstantTerm: l.ConstantTerm * r.ConstantTerm}
		}
		return ClassResult{Class: Linear, Coefficient: r.ConstantTerm * l.Coefficient, ConstantTerm: r.ConstantTerm * l.ConstantTerm}
	case ast.BinDiv:
		if r.Class != Constant || r.ConstantTerm == 0 || l.Class == Nonlinear {
			return ClassResult{Class: Nonlinear}
		}
		return ClassResult{
			Class:        l.Class,
			Coefficient:  l.Coefficient / r.ConstantTerm,
			ConstantTerm: l.ConstantTerm / r.ConstantTerm,
		}
	case ast.BinPow:
		if l.Class == Constant && r.Class == Constant {
			return ClassResult{Class: Constant}
		}
		return ClassResult{Class: Nonlinear}
	default:
		return ClassResult{Class: Nonlinear}
	}
}
