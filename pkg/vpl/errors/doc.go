// Package errors provides the diagnostic types for VPL construction and
// validation.
//
// Two severities exist. Errors reject a property: structural impossibilities
// and unresolved semantic references. Warnings flag likely specification
// mistakes but still accept the property.
//
// Construction-time problems (malformed arity, empty names, illegal scope
// combinations) are fatal and immediate, returned as *ConstructionError.
// They indicate a bug in the upstream parser or builder, not a user mistake.
//
// Validation-time problems are accumulated in a Report so a single
// validation call surfaces every problem in the tree:
//
//	report := validator.New().Validate(prop)
//	if !report.Accepted() {
//	    for _, d := range report.Errors {
//	        fmt.Println(d)
//	    }
//	}
//
// Every diagnostic carries the offending node's identity and the subject
// name (alias, channel, or function) it is about, so a presentation layer
// can render actionable messages without re-walking the tree.
package errors
