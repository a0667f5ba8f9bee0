// Package ast defines the abstract syntax tree of VPL, the Vigil Property
// Language: properties that relate observable events of a message-passing
// system through temporal patterns, bounded by scopes, and filtered by
// predicates over message fields.
//
// Every node carries a unique identity (ID) that is independent of its
// structure: cloning a tree yields a structurally equal tree with fresh
// identities throughout. Nodes are owned exclusively by their parent;
// composing a node into another transfers ownership, and sharing a node
// between two parents is a programming error.
//
// Construction functions enforce only local, intra-node invariants and
// return *errors.ConstructionError when one is broken. Anything requiring
// cross-tree context (alias binding, function resolution, type agreement)
// is deferred to the validator package, which accumulates diagnostics into
// a report instead of failing fast.
package ast
