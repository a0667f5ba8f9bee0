package logic

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned by Evaluate when the expression contains an
// Unknown constant, which has no boolean denotation.
var ErrUnknownValue = errors.New("logic: cannot evaluate unknown value")

// Truth is a three-valued constant: expressions under construction may
// carry leaves whose truth is not yet decided.
type Truth int8

const (
	Unknown Truth = iota
	False
	True
)

// String returns the lowercase name of the truth value.
func (t Truth) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Term is an opaque predicate leaf. The logic engine treats terms as atoms:
// it never looks inside them, only compares, copies, and enumerates them.
type Term interface {
	// TermEqual reports structural equality with another term.
	TermEqual(Term) bool
	// CloneTerm returns a deep, independent copy of the term.
	CloneTerm() Term
	// String renders the term for diagnostics.
	String() string
}

// Expr is a boolean expression. The variant set is closed: Value, Not,
// And, Or, and Atom. And/Or carry at least one operand by construction.
type Expr interface {
	isLogicExpr()
	String() string
}

// Value is a truth constant.
type Value struct {
	Truth Truth
}

// Not negates its operand.
type Not struct {
	Operand Expr
}

// And is an n-ary conjunction with at least one operand.
type And struct {
	Operands []Expr
}

// Or is an n-ary disjunction with at least one operand.
type Or struct {
	Operands []Expr
}

// Atom wraps an opaque predicate leaf.
type Atom struct {
	Term Term
}

func (Value) isLogicExpr() {}
func (Not) isLogicExpr()   {}
func (And) isLogicExpr()   {}
func (Or) isLogicExpr()    {}
func (Atom) isLogicExpr()  {}

func (v Value) String() string { return v.Truth.String() }

func (n Not) String() string { return fmt.Sprintf("(not %s)", n.Operand) }

func (a And) String() string { return joinOperands(a.Operands, "and") }

func (o Or) String() string { return joinOperands(o.Operands, "or") }

func (a Atom) String() string { return a.Term.String() }

func joinOperands(operands []Expr, op string) string {
	parts := make([]string, len(operands))
	for i, e := range operands {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}

// TrueExpr returns the constant true expression.
func TrueExpr() Expr { return Value{Truth: True} }

// FalseExpr returns the constant false expression.
func FalseExpr() Expr { return Value{Truth: False} }

// NewAtom wraps a term as a leaf expression.
func NewAtom(term Term) Expr { return Atom{Term: term} }

// Negate returns the negation of an expression.
func Negate(e Expr) Expr {
	return Not{Operand: e}
}

// Conjoin builds the conjunction of one or more expressions.
// The signature enforces the non-empty invariant at compile time.
func Conjoin(first Expr, rest ...Expr) Expr {
	if len(rest) == 0 {
		return first
	}
	operands := make([]Expr, 0, len(rest)+1)
	operands = append(operands, first)
	operands = append(operands, rest...)
	return And{Operands: operands}
}

// Disjoin builds the disjunction of one or more expressions.
func Disjoin(first Expr, rest ...Expr) Expr {
	if len(rest) == 0 {
		return first
	}
	operands := make([]Expr, 0, len(rest)+1)
	operands = append(operands, first)
	operands = append(operands, rest...)
	return Or{Operands: operands}
}

// Implies builds the material implication a -> b as (not a) or b.
func Implies(a, b Expr) Expr {
	return Disjoin(Negate(a), b)
}

// Clone returns a deep, independent copy of an expression.
func Clone(e Expr) Expr {
	switch x := e.(type) {
	case Value:
		return x
	case Not:
		return Not{Operand: Clone(x.Operand)}
	case And:
		return And{Operands: cloneAll(x.Operands)}
	case Or:
		return Or{Operands: cloneAll(x.Operands)}
	case Atom:
		return Atom{Term: x.Term.CloneTerm()}
	}
	panic(fmt.Sprintf("logic: unknown expression variant %T", e))
}

func cloneAll(operands []Expr) []Expr {
	out := make([]Expr, len(operands))
	for i, e := range operands {
		out[i] = Clone(e)
	}
	return out
}

// Equal reports structural equality. Operand order is significant.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case Value:
		y, ok := b.(Value)
		return ok && x.Truth == y.Truth
	case Not:
		y, ok := b.(Not)
		return ok && Equal(x.Operand, y.Operand)
	case And:
		y, ok := b.(And)
		return ok && equalAll(x.Operands, y.Operands)
	case Or:
		y, ok := b.(Or)
		return ok && equalAll(x.Operands, y.Operands)
	case Atom:
		y, ok := b.(Atom)
		return ok && x.Term.TermEqual(y.Term)
	}
	return false
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Terms collects the atomic leaves of an expression in traversal order.
func Terms(e Expr) []Term {
	var out []Term
	collectTerms(e, &out)
	return out
}

func collectTerms(e Expr, out *[]Term) {
	switch x := e.(type) {
	case Not:
		collectTerms(x.Operand, out)
	case And:
		for _, op := range x.Operands {
			collectTerms(op, out)
		}
	case Or:
		for _, op := range x.Operands {
			collectTerms(op, out)
		}
	case Atom:
		*out = append(*out, x.Term)
	}
}

// MapTerms rebuilds the connective structure of an expression, replacing
// each leaf term with f(term). Returning the received term keeps that leaf.
func MapTerms(e Expr, f func(Term) Term) Expr {
	switch x := e.(type) {
	case Value:
		return x
	case Not:
		return Not{Operand: MapTerms(x.Operand, f)}
	case And:
		return And{Operands: mapAll(x.Operands, f)}
	case Or:
		return Or{Operands: mapAll(x.Operands, f)}
	case Atom:
		return Atom{Term: f(x.Term)}
	}
	panic(fmt.Sprintf("logic: unknown expression variant %T", e))
}

func mapAll(operands []Expr, f func(Term) Term) []Expr {
	out := make([]Expr, len(operands))
	for i, e := range operands {
		out[i] = MapTerms(e, f)
	}
	return out
}

// Evaluate computes the boolean denotation of an expression under an
// assignment of its leaves. Unknown constants cannot be evaluated.
func Evaluate(e Expr, env func(Term) (bool, error)) (bool, error) {
	switch x := e.(type) {
	case Value:
		switch x.Truth {
		case True:
			return true, nil
		case False:
			return false, nil
		default:
			return false, ErrUnknownValue
		}
	case Not:
		v, err := Evaluate(x.Operand, env)
		if err != nil {
			return false, err
		}
		return !v, nil
	case And:
		for _, op := range x.Operands {
			v, err := Evaluate(op, env)
			if err != nil {
				return false, err
			}
			if !v {
				return false, nil
			}
		}
		return true, nil
	case Or:
		for _, op := range x.Operands {
			v, err := Evaluate(op, env)
			if err != nil {
				return false, err
			}
			if v {
				return true, nil
			}
		}
		return false, nil
	case Atom:
		if env == nil {
			return false, fmt.Errorf("logic: no assignment for term %s", x.Term)
		}
		return env(x.Term)
	}
	return false, fmt.Errorf("logic: unknown expression variant %T", e)
}
