package errors

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic as either a rejection or an advisory.
type Severity string

const (
	// SeverityError marks a diagnostic that rejects the property.
	SeverityError Severity = "error"
	// SeverityWarning marks a diagnostic that flags a likely mistake
	// without rejecting the property.
	SeverityWarning Severity = "warning"
)

// Code identifies the kind of problem a diagnostic reports.
type Code string

const (
	// Validation-time codes.
	CodeNonUniqueDisjunctChannel  Code = "NonUniqueDisjunctChannel"
	CodeDuplicateAlias            Code = "DuplicateAlias"
	CodeUnboundAlias              Code = "UnboundAlias"
	CodeUnknownFunction           Code = "UnknownFunction"
	CodeFunctionArityMismatch     Code = "FunctionArityMismatch"
	CodeFunctionArgTypeMismatch   Code = "FunctionArgTypeMismatch"
	CodeIncompatibleComparison    Code = "IncompatibleComparison"
	CodeSuspiciousUnboundResponse Code = "SuspiciousUnboundResponse"

	// Construction-time codes.
	CodeInvalidDisjunctionArity Code = "InvalidDisjunctionArity"
	CodeEmptyName               Code = "EmptyName"
	CodeInvalidOperator         Code = "InvalidOperator"
	CodeMissingOperand          Code = "MissingOperand"
	CodeInvalidScope            Code = "InvalidScope"
	CodeInvalidPattern          Code = "InvalidPattern"
)

// Diagnostic is a single problem found while validating a property tree.
// It carries enough context (node identity, subject name, argument position)
// for a caller-supplied presentation layer to render an actionable message.
type Diagnostic struct {
	Code     Code     // Kind of problem
	Severity Severity // error or warning
	Message  string   // Human-readable description
	Node     string   // Identity of the offending node ("" if none)
	Subject  string   // Alias, channel, or function name the diagnostic is about
	Position int      // Argument position for function diagnostics (-1 when n/a)

	// Suggestion holds an optional fix hint (e.g. a close builtin name).
	Suggestion string
}

// String formats the diagnostic for display.
func (d *Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s: %s", d.Severity, d.Code, d.Message))
	if d.Node != "" {
		sb.WriteString(fmt.Sprintf(" (node %s)", d.Node))
	}
	if d.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n  = suggestion: %s", d.Suggestion))
	}
	return sb.String()
}

// Report is the complete outcome of validating one property tree.
// All passes run to completion; nothing is dropped at the first failure.
type Report struct {
	Errors   []*Diagnostic
	Warnings []*Diagnostic
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends a diagnostic, routing it by severity.
func (r *Report) Add(d *Diagnostic) {
	if d.Severity == SeverityWarning {
		r.Warnings = append(r.Warnings, d)
		return
	}
	r.Errors = append(r.Errors, d)
}

// AddError creates and appends an error diagnostic.
func (r *Report) AddError(code Code, node, subject, format string, args ...any) {
	r.Add(&Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Node:     node,
		Subject:  subject,
		Position: -1,
	})
}

// AddWarning creates and appends a warning diagnostic.
func (r *Report) AddWarning(code Code, node, subject, format string, args ...any) {
	r.Add(&Diagnostic{
		Code:     code,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		Node:     node,
		Subject:  subject,
		Position: -1,
	})
}

// Accepted reports whether the property passed validation.
// Warnings do not reject a property.
func (r *Report) Accepted() bool {
	return len(r.Errors) == 0
}

// Count returns the total number of diagnostics.
func (r *Report) Count() int {
	return len(r.Errors) + len(r.Warnings)
}

// HasCode reports whether any diagnostic (error or warning) carries the code.
func (r *Report) HasCode(code Code) bool {
	for _, d := range r.Errors {
		if d.Code == code {
			return true
		}
	}
	for _, d := range r.Warnings {
		if d.Code == code {
			return true
		}
	}
	return false
}

// ByCode returns all diagnostics with the given code, errors first.
func (r *Report) ByCode(code Code) []*Diagnostic {
	var result []*Diagnostic
	for _, d := range r.Errors {
		if d.Code == code {
			result = append(result, d)
		}
	}
	for _, d := range r.Warnings {
		if d.Code == code {
			result = append(result, d)
		}
	}
	return result
}

// Merge appends all diagnostics from another report, preserving order.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// String formats the whole report for display.
func (r *Report) String() string {
	if r.Count() == 0 {
		return "accepted (no diagnostics)"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s), %d warning(s):\n", len(r.Errors), len(r.Warnings)))
	for _, d := range r.Errors {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	for _, d := range r.Warnings {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ConstructionError reports a local, intra-node invariant broken while
// building an AST node (malformed arity, empty names, illegal scope
// combinations). These indicate a programming or parsing bug upstream,
// so they fail immediately instead of being deferred to validation.
type ConstructionError struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construction error [%s]: %s", e.Code, e.Message)
}

// NewConstructionError creates a ConstructionError with a formatted message.
func NewConstructionError(code Code, format string, args ...any) *ConstructionError {
	return &ConstructionError{Code: code, Message: fmt.Sprintf(format, args...)}
}
