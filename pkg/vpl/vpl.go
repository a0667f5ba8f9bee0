package vpl

import (
	"fmt"

	"vigil-hq/vigil/pkg/vpl/ast"
	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
	"vigil-hq/vigil/pkg/vpl/parser"
	"vigil-hq/vigil/pkg/vpl/validator"
)

// ParseAndValidate parses a VPL document and validates every property in
// it against the default function registry. The specification is returned
// together with the accumulated report; a non-nil error means the
// specification was rejected (parse failure or at least one validation
// error), but the report still carries every diagnostic found.
func ParseAndValidate(path string) (*ast.Specification, *vplErrors.Report, error) {
	spec, err := parser.NewParser().Parse(path)
	if err != nil {
		return nil, nil, err
	}
	return validateSpec(spec)
}

// ParseAndValidateBytes parses and validates a VPL document from memory.
func ParseAndValidateBytes(data []byte, source string) (*ast.Specification, *vplErrors.Report, error) {
	spec, err := parser.NewParser().ParseBytes(data, source)
	if err != nil {
		return nil, nil, err
	}
	return validateSpec(spec)
}

func validateSpec(spec *ast.Specification) (*ast.Specification, *vplErrors.Report, error) {
	report := validator.New(nil).ValidateSpecification(spec)
	if !report.Accepted() {
		return spec, report, fmt.Errorf("vpl: specification rejected with %d error(s)", len(report.Errors))
	}
	return spec, report, nil
}

// Parse parses a VPL document without validating it. Use this to inspect
// or transform the AST before validation.
func Parse(path string) (*ast.Specification, error) {
	return parser.NewParser().Parse(path)
}

// Validate validates one property against the default function registry.
func Validate(property *ast.Property) *vplErrors.Report {
	return validator.New(nil).Validate(property)
}
