package ast

import (
	"fmt"
	"strconv"
	"strings"

	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
	"vigil-hq/vigil/pkg/vpl/logic"
)

// ValueKind is the coarse type of an expression: just enough structure to
// typecheck predicates without knowing the concrete message-field schema.
type ValueKind string

const (
	ValueBool   ValueKind = "boolean"
	ValueNumber ValueKind = "number"
	ValueString ValueKind = "string"
	// ValueAny marks expressions whose kind is only known once the
	// declaring event's field schema is available (field accesses, calls
	// to functions resolved during validation).
	ValueAny ValueKind = "any"
)

// Compatible reports whether two coarse kinds may be compared.
// ValueAny is compatible with everything.
func (k ValueKind) Compatible(other ValueKind) bool {
	if k == ValueAny || other == ValueAny {
		return true
	}
	return k == other
}

// Operand is an expression that may appear on either side of a comparison
// or as a function argument: a literal, a field access, or a nested
// function call.
type Operand interface {
	Node
	isOperand()
	// StaticKind returns the coarse kind derivable without external
	// schema or registry input. Field accesses and function calls
	// report ValueAny; the validator refines them.
	StaticKind() ValueKind
}

// Literal is a constant boolean, number, or string.
type Literal struct {
	node
	ValueKind ValueKind
	Value     any
}

// NewBoolLiteral creates a boolean literal.
func NewBoolLiteral(v bool) *Literal {
	return &Literal{node: newNode(), ValueKind: ValueBool, Value: v}
}

// NewNumberLiteral creates a numeric literal.
func NewNumberLiteral(v float64) *Literal {
	return &Literal{node: newNode(), ValueKind: ValueNumber, Value: v}
}

// NewStringLiteral creates a string literal.
func NewStringLiteral(v string) *Literal {
	return &Literal{node: newNode(), ValueKind: ValueString, Value: v}
}

func (l *Literal) isOperand() {}

func (l *Literal) Kind() NodeKind { return KindLiteral }

func (l *Literal) StaticKind() ValueKind { return l.ValueKind }

func (l *Literal) Children() []Node { return nil }

func (l *Literal) Clone() Node {
	return &Literal{node: newNode(), ValueKind: l.ValueKind, Value: l.Value}
}

func (l *Literal) Equals(other Node) bool {
	o, ok := other.(*Literal)
	return ok && l.ValueKind == o.ValueKind && l.Value == o.Value
}

func (l *Literal) ReplaceChild(old NodeID, repl Node) error {
	return notAChild(l, old)
}

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprintf("%v", l.Value)
}

// FieldAccess references a field of the message bound by an alias, as a
// dotted path: alias "m" with path ["position", "x"] renders as
// "m.position.x".
type FieldAccess struct {
	node
	Alias string
	Path  []string
}

// NewFieldAccess creates a field access. The alias must be non-empty; the
// path may be empty to reference the whole message.
func NewFieldAccess(alias string, path ...string) (*FieldAccess, error) {
	if alias == "" {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeEmptyName,
			"field access requires a non-empty alias")
	}
	for _, segment := range path {
		if segment == "" {
			return nil, vplErrors.NewConstructionError(vplErrors.CodeEmptyName,
				"field access %q has an empty path segment", alias)
		}
	}
	return &FieldAccess{node: newNode(), Alias: alias, Path: append([]string(nil), path...)}, nil
}

func (f *FieldAccess) isOperand() {}

func (f *FieldAccess) Kind() NodeKind { return KindFieldAccess }

func (f *FieldAccess) StaticKind() ValueKind { return ValueAny }

func (f *FieldAccess) Children() []Node { return nil }

func (f *FieldAccess) Clone() Node {
	return &FieldAccess{
		node:  newNode(),
		Alias: f.Alias,
		Path:  append([]string(nil), f.Path...),
	}
}

func (f *FieldAccess) Equals(other Node) bool {
	o, ok := other.(*FieldAccess)
	if !ok || f.Alias != o.Alias || len(f.Path) != len(o.Path) {
		return false
	}
	for i := range f.Path {
		if f.Path[i] != o.Path[i] {
			return false
		}
	}
	return true
}

func (f *FieldAccess) ReplaceChild(old NodeID, repl Node) error {
	return notAChild(f, old)
}

func (f *FieldAccess) String() string {
	if len(f.Path) == 0 {
		return f.Alias
	}
	return f.Alias + "." + strings.Join(f.Path, ".")
}

// FunctionCall applies a builtin function to ordered arguments. The name is
// not resolved against the registry here: construction is permissive so
// partial trees can be built incrementally, and unregistered names surface
// as validation diagnostics instead.
type FunctionCall struct {
	node
	Name string
	Args []Operand
}

// NewFunctionCall creates a function call node. The name must be non-empty.
func NewFunctionCall(name string, args ...Operand) (*FunctionCall, error) {
	if name == "" {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeEmptyName,
			"function call requires a non-empty name")
	}
	for i, arg := range args {
		if arg == nil {
			return nil, vplErrors.NewConstructionError(vplErrors.CodeMissingOperand,
				"function %q has a nil argument at position %d", name, i)
		}
	}
	return &FunctionCall{node: newNode(), Name: name, Args: append([]Operand(nil), args...)}, nil
}

func (c *FunctionCall) isOperand() {}

func (c *FunctionCall) Kind() NodeKind { return KindFunctionCall }

func (c *FunctionCall) StaticKind() ValueKind { return ValueAny }

func (c *FunctionCall) Children() []Node {
	children := make([]Node, len(c.Args))
	for i, arg := range c.Args {
		children[i] = arg
	}
	return children
}

func (c *FunctionCall) Clone() Node {
	args := make([]Operand, len(c.Args))
	for i, arg := range c.Args {
		args[i] = arg.Clone().(Operand)
	}
	return &FunctionCall{node: newNode(), Name: c.Name, Args: args}
}

func (c *FunctionCall) Equals(other Node) bool {
	o, ok := other.(*FunctionCall)
	if !ok || c.Name != o.Name || len(c.Args) != len(o.Args) {
		return false
	}
	for i := range c.Args {
		if !c.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

func (c *FunctionCall) ReplaceChild(old NodeID, repl Node) error {
	operand, ok := repl.(Operand)
	if !ok {
		return fmt.Errorf("ast: function argument replacement must be an operand, got %s", repl.Kind())
	}
	for i, arg := range c.Args {
		if arg.ID() == old {
			c.Args[i] = operand
			return nil
		}
	}
	return notAChild(c, old)
}

func (c *FunctionCall) String() string {
	parts := make([]string, len(c.Args))
	for i, arg := range c.Args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}

// TermEqual implements logic.Term so boolean function calls can serve as
// predicate leaves.
func (c *FunctionCall) TermEqual(other logic.Term) bool {
	o, ok := other.(*FunctionCall)
	return ok && c.Equals(o)
}

// CloneTerm implements logic.Term.
func (c *FunctionCall) CloneTerm() logic.Term {
	return c.Clone().(*FunctionCall)
}

// Operator is a comparison operator between two operands.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpLessThan     Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreaterThan  Operator = ">"
	OpGreaterEqual Operator = ">="
)

var validOperators = map[Operator]bool{
	OpEqual:        true,
	OpNotEqual:     true,
	OpLessThan:     true,
	OpLessEqual:    true,
	OpGreaterThan:  true,
	OpGreaterEqual: true,
}

// Ordered reports whether the operator requires numerically ordered operands.
func (op Operator) Ordered() bool {
	switch op {
	case OpLessThan, OpLessEqual, OpGreaterThan, OpGreaterEqual:
		return true
	}
	return false
}

// Comparison is a boolean-valued leaf comparing two operands. Coarse type
// compatibility between the sides is not enforced here: mismatches are
// deferred diagnostics, finalized during validation when the declaring
// event's schema is available.
type Comparison struct {
	node
	Op  Operator
	LHS Operand
	RHS Operand
}

// NewComparison creates a comparison leaf.
func NewComparison(op Operator, lhs, rhs Operand) (*Comparison, error) {
	if !validOperators[op] {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeInvalidOperator,
			"unknown comparison operator %q", string(op))
	}
	if lhs == nil || rhs == nil {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeMissingOperand,
			"comparison %q requires two operands", string(op))
	}
	return &Comparison{node: newNode(), Op: op, LHS: lhs, RHS: rhs}, nil
}

func (c *Comparison) Kind() NodeKind { return KindComparison }

func (c *Comparison) Children() []Node {
	return []Node{c.LHS, c.RHS}
}

func (c *Comparison) Clone() Node {
	return &Comparison{
		node: newNode(),
		Op:   c.Op,
		LHS:  c.LHS.Clone().(Operand),
		RHS:  c.RHS.Clone().(Operand),
	}
}

func (c *Comparison) Equals(other Node) bool {
	o, ok := other.(*Comparison)
	return ok && c.Op == o.Op && c.LHS.Equals(o.LHS) && c.RHS.Equals(o.RHS)
}

func (c *Comparison) ReplaceChild(old NodeID, repl Node) error {
	operand, ok := repl.(Operand)
	if !ok {
		return fmt.Errorf("ast: comparison operand replacement must be an operand, got %s", repl.Kind())
	}
	switch old {
	case c.LHS.ID():
		c.LHS = operand
	case c.RHS.ID():
		c.RHS = operand
	default:
		return notAChild(c, old)
	}
	return nil
}

func (c *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.LHS, c.Op, c.RHS)
}

// TermEqual implements logic.Term: comparisons are the primary predicate
// leaves.
func (c *Comparison) TermEqual(other logic.Term) bool {
	o, ok := other.(*Comparison)
	return ok && c.Equals(o)
}

// CloneTerm implements logic.Term.
func (c *Comparison) CloneTerm() logic.Term {
	return c.Clone().(*Comparison)
}
