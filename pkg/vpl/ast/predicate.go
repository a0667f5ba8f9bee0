package ast

import (
	"fmt"
	"sort"

	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
	"vigil-hq/vigil/pkg/vpl/logic"
)

// Predicate is a boolean condition attached to an event: a logic expression
// whose leaves are comparisons and boolean function calls over bound
// aliases' fields and literals. A predicate owns its condition exclusively.
type Predicate struct {
	node
	Condition logic.Expr
}

// NewPredicate wraps a logic expression as a predicate.
func NewPredicate(condition logic.Expr) (*Predicate, error) {
	if condition == nil {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeMissingOperand,
			"predicate requires a condition")
	}
	return &Predicate{node: newNode(), Condition: condition}, nil
}

// VacuousTruth is the predicate that always holds: an event with this
// predicate matches unconditionally.
func VacuousTruth() *Predicate {
	return &Predicate{node: newNode(), Condition: logic.TrueExpr()}
}

// Contradiction is the predicate that never holds.
func Contradiction() *Predicate {
	return &Predicate{node: newNode(), Condition: logic.FalseExpr()}
}

// IsVacuous reports whether the predicate is a bare truth constant.
func (p *Predicate) IsVacuous() bool {
	_, ok := p.Condition.(logic.Value)
	return ok
}

// IsTrue reports whether the predicate is the constant true.
func (p *Predicate) IsTrue() bool {
	v, ok := p.Condition.(logic.Value)
	return ok && v.Truth == logic.True
}

// Negate returns a new predicate denoting the negation. A directly negated
// condition is unwrapped instead of double-wrapped.
func (p *Predicate) Negate() *Predicate {
	if not, ok := p.Condition.(logic.Not); ok {
		return &Predicate{node: newNode(), Condition: logic.Clone(not.Operand)}
	}
	return &Predicate{node: newNode(), Condition: logic.Negate(logic.Clone(p.Condition))}
}

// Join returns the conjunction of two predicates as a new predicate.
// Vacuous operands collapse: joining with truth is the identity, joining
// with contradiction is the contradiction.
func (p *Predicate) Join(other *Predicate) *Predicate {
	if other.IsVacuous() {
		if other.IsTrue() {
			return p.Clone().(*Predicate)
		}
		return Contradiction()
	}
	if p.IsVacuous() {
		if p.IsTrue() {
			return other.Clone().(*Predicate)
		}
		return Contradiction()
	}
	return &Predicate{
		node:      newNode(),
		Condition: logic.Conjoin(logic.Clone(p.Condition), logic.Clone(other.Condition)),
	}
}

// Simplified returns a new predicate with the condition simplified by the
// logic engine.
func (p *Predicate) Simplified() *Predicate {
	return &Predicate{node: newNode(), Condition: logic.Simplify(logic.Clone(p.Condition))}
}

// Terms returns the predicate's atomic leaves (comparisons and function
// calls) in traversal order.
func (p *Predicate) Terms() []logic.Term {
	return logic.Terms(p.Condition)
}

// ReferencedAliases returns the sorted set of alias names appearing in any
// field access of the predicate.
func (p *Predicate) ReferencedAliases() []string {
	seen := map[string]bool{}
	for _, term := range p.Terms() {
		n, ok := term.(Node)
		if !ok {
			continue
		}
		Inspect(n, func(child Node) bool {
			if fa, ok := child.(*FieldAccess); ok {
				seen[fa.Alias] = true
			}
			return true
		})
	}
	aliases := make([]string, 0, len(seen))
	for alias := range seen {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// References reports whether the predicate references the given alias.
func (p *Predicate) References(alias string) bool {
	for _, a := range p.ReferencedAliases() {
		if a == alias {
			return true
		}
	}
	return false
}

func (p *Predicate) Kind() NodeKind { return KindPredicate }

// Children returns the predicate's atomic leaves as nodes, in traversal
// order. The connective structure between them is owned by the logic
// engine and is not itself addressable as AST children.
func (p *Predicate) Children() []Node {
	terms := p.Terms()
	children := make([]Node, 0, len(terms))
	for _, term := range terms {
		if n, ok := term.(Node); ok {
			children = append(children, n)
		}
	}
	return children
}

func (p *Predicate) Clone() Node {
	return &Predicate{node: newNode(), Condition: logic.Clone(p.Condition)}
}

func (p *Predicate) Equals(other Node) bool {
	o, ok := other.(*Predicate)
	return ok && logic.Equal(p.Condition, o.Condition)
}

func (p *Predicate) ReplaceChild(old NodeID, repl Node) error {
	term, ok := repl.(logic.Term)
	if !ok {
		return fmt.Errorf("ast: predicate leaf replacement must be a comparison or function call, got %s", repl.Kind())
	}
	replaced := false
	p.Condition = logic.MapTerms(p.Condition, func(t logic.Term) logic.Term {
		if n, ok := t.(Node); ok && n.ID() == old {
			replaced = true
			return term
		}
		return t
	})
	if !replaced {
		return notAChild(p, old)
	}
	return nil
}

func (p *Predicate) String() string {
	return fmt.Sprintf("{ %s }", p.Condition)
}
