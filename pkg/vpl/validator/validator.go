package validator

import (
	"vigil-hq/vigil/pkg/vpl/ast"
	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
	"vigil-hq/vigil/pkg/vpl/functions"
)

// Validator orchestrates the validation passes over one property at a
// time. Validation is deterministic and side-effect-free: the tree is
// only read, so independent properties may be validated concurrently.
type Validator struct {
	structural *StructuralValidator
	binding    *BindingValidator
	pattern    *PatternValidator
}

// New creates a validator resolving function calls against the given
// registry. A nil registry falls back to the process-wide default.
func New(registry *functions.Registry) *Validator {
	if registry == nil {
		registry = functions.Default()
	}
	return &Validator{
		structural: NewStructuralValidator(registry),
		binding:    NewBindingValidator(),
		pattern:    NewPatternValidator(),
	}
}

// Validate runs all passes on a property. Every pass runs to completion
// and accumulates diagnostics, so one call reports every problem found.
// A property with zero errors is accepted regardless of warning count.
func (v *Validator) Validate(property *ast.Property) *vplErrors.Report {
	report := vplErrors.NewReport()
	v.structural.Validate(property, report)
	v.binding.Validate(property, report)
	v.pattern.Validate(property, report)
	return report
}

// ValidateSpecification validates every property of a specification in
// order and merges the per-property reports.
func (v *Validator) ValidateSpecification(spec *ast.Specification) *vplErrors.Report {
	report := vplErrors.NewReport()
	for _, property := range spec.Properties {
		report.Merge(v.Validate(property))
	}
	return report
}
