// Package logic implements the pure boolean algebra shared by the VPL
// predicate and validation layers.
//
// Expressions form a closed tagged union: truth constants (three-valued,
// since trees under construction may carry undecided leaves), negation,
// n-ary conjunction and disjunction, and opaque atomic terms supplied by
// the caller through the Term interface.
//
// The engine is deliberately ignorant of what terms mean. Higher layers
// (package ast) plug comparisons and function calls in as terms; this
// package only simplifies, compares, copies, and evaluates the boolean
// structure around them.
//
// Simplify is the core operation: it is total, never changes the boolean
// denotation of an expression under any assignment of its leaves, and is
// idempotent. Both properties are exercised by randomized tests.
package logic
