package validator

import (
	"fmt"
	"strconv"

	"vigil-hq/vigil/pkg/vpl/ast"
	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
	"vigil-hq/vigil/pkg/vpl/functions"
)

// StructuralValidator checks shape-level invariants that do not depend on
// alias resolution: disjunction channel uniqueness, alias uniqueness
// across the property, function signatures, and comparison operand
// compatibility. Construction already enforces most of these locally, but
// trees mutated through ReplaceChild are re-checked here.
type StructuralValidator struct {
	registry *functions.Registry
}

// NewStructuralValidator creates the structural pass over a registry.
func NewStructuralValidator(registry *functions.Registry) *StructuralValidator {
	return &StructuralValidator{registry: registry}
}

// Validate appends all structural diagnostics for the property.
func (v *StructuralValidator) Validate(property *ast.Property, report *vplErrors.Report) {
	v.checkDisjunctions(property, report)
	v.checkAliasUniqueness(property, report)
	for _, event := range property.Events() {
		for _, atomic := range event.AtomicEvents() {
			v.checkPredicate(atomic.Predicate, report)
		}
	}
}

func (v *StructuralValidator) checkDisjunctions(property *ast.Property, report *vplErrors.Report) {
	for _, event := range property.Events() {
		ast.Inspect(event, func(n ast.Node) bool {
			d, ok := n.(*ast.EventDisjunction)
			if !ok {
				return true
			}
			seen := map[string]bool{}
			for _, channel := range d.Channels() {
				if seen[channel] {
					report.AddError(vplErrors.CodeNonUniqueDisjunctChannel, string(d.ID()), channel,
						"channel %q appears in more than one disjunct", channel)
				}
				seen[channel] = true
			}
			// Nested disjunctions were covered by the flattened walk.
			return false
		})
	}
}

func (v *StructuralValidator) checkAliasUniqueness(property *ast.Property, report *vplErrors.Report) {
	seen := map[string]bool{}
	for _, event := range property.Events() {
		// Disjuncts of one event may bind the same alias on purpose: the
		// name refers to whichever disjunct fired. Only a name reused by a
		// different event of the property is a conflict.
		local := map[string]bool{}
		for _, atomic := range event.AtomicEvents() {
			if atomic.Alias == "" {
				continue
			}
			if seen[atomic.Alias] {
				report.AddError(vplErrors.CodeDuplicateAlias, string(atomic.ID()), atomic.Alias,
					"alias %q is bound by more than one event in the property", atomic.Alias)
				continue
			}
			local[atomic.Alias] = true
		}
		for alias := range local {
			seen[alias] = true
		}
	}
}

func (v *StructuralValidator) checkPredicate(predicate *ast.Predicate, report *vplErrors.Report) {
	for _, child := range predicate.Children() {
		ast.Inspect(child, func(n ast.Node) bool {
			switch x := n.(type) {
			case *ast.Comparison:
				v.checkComparison(x, report)
			case *ast.FunctionCall:
				v.checkCall(x, report)
			}
			return true
		})
	}
}

func (v *StructuralValidator) checkComparison(cmp *ast.Comparison, report *vplErrors.Report) {
	lhs := v.kindOf(cmp.LHS)
	rhs := v.kindOf(cmp.RHS)
	if !lhs.Compatible(rhs) {
		report.AddError(vplErrors.CodeIncompatibleComparison, string(cmp.ID()), string(cmp.Op),
			"cannot compare %s with %s in %s", lhs, rhs, cmp)
		return
	}
	if cmp.Op.Ordered() {
		for _, kind := range []ast.ValueKind{lhs, rhs} {
			if kind != ast.ValueAny && kind != ast.ValueNumber {
				report.AddError(vplErrors.CodeIncompatibleComparison, string(cmp.ID()), string(cmp.Op),
					"operator %s requires numeric operands, got %s in %s", cmp.Op, kind, cmp)
				return
			}
		}
	}
}

func (v *StructuralValidator) checkCall(call *ast.FunctionCall, report *vplErrors.Report) {
	sig, ok := v.registry.Lookup(call.Name)
	if !ok {
		report.Add(&vplErrors.Diagnostic{
			Code:       vplErrors.CodeUnknownFunction,
			Severity:   vplErrors.SeverityError,
			Message:    "unknown function " + call.Name,
			Node:       string(call.ID()),
			Subject:    call.Name,
			Position:   -1,
			Suggestion: vplErrors.SuggestName(call.Name, v.registry.Names()),
		})
		return
	}
	if !sig.AcceptsArity(len(call.Args)) {
		report.AddError(vplErrors.CodeFunctionArityMismatch, string(call.ID()), call.Name,
			"%s expects %s argument(s), got %d", call.Name, arityPhrase(sig), len(call.Args))
		return
	}
	for i, arg := range call.Args {
		want := sig.ParamKind(i)
		got := v.kindOf(arg)
		if !got.Compatible(want) {
			report.Add(&vplErrors.Diagnostic{
				Code:     vplErrors.CodeFunctionArgTypeMismatch,
				Severity: vplErrors.SeverityError,
				Message: "argument " + arg.String() + " of " + call.Name +
					" has kind " + string(got) + ", want " + string(want),
				Node:     string(call.ID()),
				Subject:  call.Name,
				Position: i,
			})
		}
	}
}

// kindOf refines an operand's coarse kind using the registry: a call to a
// known function has that function's result kind rather than ValueAny.
func (v *StructuralValidator) kindOf(op ast.Operand) ast.ValueKind {
	if call, ok := op.(*ast.FunctionCall); ok {
		if sig, found := v.registry.Lookup(call.Name); found {
			return sig.Result
		}
	}
	return op.StaticKind()
}

func arityPhrase(sig functions.Signature) string {
	if sig.Variadic {
		return fmt.Sprintf("at least %d", sig.MinArgs())
	}
	return strconv.Itoa(sig.MinArgs())
}
