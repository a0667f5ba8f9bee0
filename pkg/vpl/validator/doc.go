// Package validator implements the multi-pass semantic validation of VPL
// property trees.
//
// Three passes run over each property, always to completion:
//
//  1. Structural: event disjunction channel uniqueness, alias uniqueness
//     across the property's events, function signature checks, and
//     comparison operand compatibility.
//  2. Binding: every field-access alias must resolve to an event in
//     scope for that predicate's position in the pattern.
//  3. Pattern sanity: pattern-specific rules, such as a triggered
//     pattern's behaviour referencing at least one trigger alias.
//
// Diagnostics accumulate into an errors.Report; nothing stops at the
// first failure, so one validation call reports everything wrong with the
// tree. Validation never mutates the tree, and validating the same tree
// twice yields an identical report.
package validator
