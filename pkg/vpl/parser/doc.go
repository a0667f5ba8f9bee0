// Package parser reads VPL documents from YAML into AST specifications.
//
// A document declares a list of properties, each with an optional scope
// (after/until events) and a pattern (kind, trigger, behaviour, time
// bounds). Predicates are trees of all_of/any_of/not connectives over
// compare and call leaves; operands are dotted field references, literal
// values, or nested calls.
//
// The parser enforces the same local invariants the AST constructors do
// and accumulates every problem found in one pass. Cross-tree semantics
// (alias binding, function signatures) are left to the validator package.
package parser
