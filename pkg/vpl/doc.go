// Package vpl is the entry point for VPL, the Vigil Property Language:
// runtime-verifiable behavioral properties of message-passing systems.
//
// A VPL document declares properties such as "after an emergency stop
// request, the velocity command must drop to zero within two seconds".
// Each property combines a temporal pattern (absence, existence,
// response, requirement, prevention) with a scope bounding when the
// pattern is observed, events identified by channel, and predicates over
// the fields of matched messages.
//
// The subpackages split the pipeline:
//
//   - logic: the three-valued boolean expression engine predicates build on
//   - ast: the node types, ownership and identity model
//   - functions: the init-then-freeze registry of builtin functions
//   - errors: diagnostics, reports, and construction errors
//   - parser: YAML documents to AST specifications
//   - validator: multi-pass semantic validation producing reports
//
// This package ties them together for the common parse-then-validate
// flow.
package vpl
