package ast

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotAChild is returned by ReplaceChild when the identified node is not
// among the receiver's current children.
var ErrNotAChild = errors.New("ast: node is not a child")

// NodeID is the globally-unique identity of a node within a tree.
// Identity is independent of structure: a clone is structurally equal to
// its original but carries fresh identities throughout.
type NodeID string

func newNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// NodeKind tags the variant of an AST node.
type NodeKind string

const (
	KindLiteral          NodeKind = "literal"
	KindFieldAccess      NodeKind = "field_access"
	KindFunctionCall     NodeKind = "function_call"
	KindComparison       NodeKind = "comparison"
	KindPredicate        NodeKind = "predicate"
	KindAtomicEvent      NodeKind = "atomic_event"
	KindEventDisjunction NodeKind = "event_disjunction"
	KindScope            NodeKind = "scope"
	KindPattern          NodeKind = "pattern"
	KindProperty         NodeKind = "property"
	KindSpecification    NodeKind = "specification"
)

// Node is the capability shared by every AST node kind.
type Node interface {
	// ID returns the node's identity.
	ID() NodeID
	// Kind returns the node's variant tag.
	Kind() NodeKind
	// Children returns an ordered view of the immediate sub-nodes.
	// Callers must not mutate the returned slice.
	Children() []Node
	// Clone returns a deep, independent copy with fresh identities.
	// The copy is structurally equal to the original; mutating it never
	// affects the original.
	Clone() Node
	// Equals reports structural equality: same variant tag, same node
	// data, and recursively equal children. Identity plays no part.
	Equals(Node) bool
	// ReplaceChild swaps the child with the given identity for repl.
	// It fails with ErrNotAChild when old is not a current child.
	ReplaceChild(old NodeID, repl Node) error
	// String renders the node in VPL surface syntax for diagnostics.
	String() string
}

// node carries the identity shared by all concrete node types.
type node struct {
	id NodeID
}

func newNode() node {
	return node{id: newNodeID()}
}

func (n *node) ID() NodeID {
	return n.id
}

func notAChild(parent Node, old NodeID) error {
	return fmt.Errorf("%w: %s has no child %s", ErrNotAChild, parent.Kind(), old)
}

// Inspect walks the tree rooted at n in depth-first preorder, calling f for
// every node. If f returns false, the node's children are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil {
		return
	}
	if !f(n) {
		return
	}
	for _, child := range n.Children() {
		Inspect(child, f)
	}
}
