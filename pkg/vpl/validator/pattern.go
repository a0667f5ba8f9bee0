package validator

import (
	"vigil-hq/vigil/pkg/vpl/ast"
	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
)

// PatternValidator checks pattern-specific sanity rules. These flag
// likely specification mistakes rather than structural impossibilities,
// so most diagnostics here are warnings and the property stays accepted.
type PatternValidator struct{}

// NewPatternValidator creates the pattern-sanity pass.
func NewPatternValidator() *PatternValidator {
	return &PatternValidator{}
}

// Validate appends pattern-sanity diagnostics for the property.
func (v *PatternValidator) Validate(property *ast.Property, report *vplErrors.Report) {
	pattern := property.Pattern
	if !pattern.PatternKind.Known() {
		report.AddError(vplErrors.CodeInvalidPattern, string(pattern.ID()), string(pattern.PatternKind),
			"unknown pattern kind %q", pattern.PatternKind)
		return
	}
	if !pattern.PatternKind.HasTrigger() {
		return
	}

	// A triggered pattern's behaviour predicate should depend on what the
	// trigger observed; a behaviour independent of the trigger is almost
	// always a mistake in the property, not an intentional design.
	triggerAliases := map[string]bool{}
	for _, alias := range pattern.Trigger.Aliases() {
		triggerAliases[alias] = true
	}
	for _, atomic := range pattern.Behaviour.AtomicEvents() {
		for _, alias := range atomic.Predicate.ReferencedAliases() {
			if triggerAliases[alias] {
				return
			}
		}
	}
	report.AddWarning(vplErrors.CodeSuspiciousUnboundResponse, string(pattern.ID()), string(pattern.PatternKind),
		"%s behaviour references no trigger alias; the response is independent of its trigger", pattern.PatternKind)
}
