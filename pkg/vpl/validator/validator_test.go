package validator

import (
	"reflect"
	"testing"

	"vigil-hq/vigil/pkg/vpl/ast"
	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
	"vigil-hq/vigil/pkg/vpl/functions"
	"vigil-hq/vigil/pkg/vpl/logic"
)

func event(t *testing.T, channel, alias string, predicate *ast.Predicate) *ast.AtomicEvent {
	t.Helper()
	e, err := ast.NewAtomicEvent(channel, alias, predicate)
	if err != nil {
		t.Fatalf("NewAtomicEvent(%q, %q): %v", channel, alias, err)
	}
	return e
}

func fieldPredicate(t *testing.T, alias string, path ...string) *ast.Predicate {
	t.Helper()
	fa, err := ast.NewFieldAccess(alias, path...)
	if err != nil {
		t.Fatalf("NewFieldAccess: %v", err)
	}
	cmp, err := ast.NewComparison(ast.OpGreaterThan, fa, ast.NewNumberLiteral(0))
	if err != nil {
		t.Fatalf("NewComparison: %v", err)
	}
	p, err := ast.NewPredicate(logic.NewAtom(cmp))
	if err != nil {
		t.Fatalf("NewPredicate: %v", err)
	}
	return p
}

func callPredicate(t *testing.T, name string, args ...ast.Operand) *ast.Predicate {
	t.Helper()
	call, err := ast.NewFunctionCall(name, args...)
	if err != nil {
		t.Fatalf("NewFunctionCall(%q): %v", name, err)
	}
	p, err := ast.NewPredicate(logic.NewAtom(call))
	if err != nil {
		t.Fatalf("NewPredicate: %v", err)
	}
	return p
}

func requirement(t *testing.T, behaviour, trigger ast.Event) *ast.Property {
	t.Helper()
	pattern, err := ast.NewRequirement(behaviour, trigger)
	if err != nil {
		t.Fatalf("NewRequirement: %v", err)
	}
	property, err := ast.NewProperty(ast.Globally(), pattern)
	if err != nil {
		t.Fatalf("NewProperty: %v", err)
	}
	return property
}

func TestValidate_AliasBinding(t *testing.T) {
	t.Run("unbound alias rejected", func(t *testing.T) {
		property := requirement(t,
			event(t, "b", "", fieldPredicate(t, "y", "value")),
			event(t, "a", "x", nil),
		)
		report := New(nil).Validate(property)
		if report.Accepted() {
			t.Fatal("property with unbound alias accepted")
		}
		diags := report.ByCode(vplErrors.CodeUnboundAlias)
		if len(diags) != 1 {
			t.Fatalf("UnboundAlias diagnostics = %d, want 1", len(diags))
		}
		if diags[0].Subject != "y" {
			t.Errorf("Subject = %q, want %q", diags[0].Subject, "y")
		}
	})
	t.Run("trigger alias visible to response", func(t *testing.T) {
		property := requirement(t,
			event(t, "b", "", fieldPredicate(t, "x", "value")),
			event(t, "a", "x", nil),
		)
		report := New(nil).Validate(property)
		if len(report.Errors) != 0 {
			t.Fatalf("unexpected errors:\n%s", report)
		}
	})
	t.Run("own alias always visible", func(t *testing.T) {
		pattern, err := ast.NewExistence(event(t, "b", "m", fieldPredicate(t, "m", "value")))
		if err != nil {
			t.Fatalf("NewExistence: %v", err)
		}
		property, err := ast.NewProperty(ast.Globally(), pattern)
		if err != nil {
			t.Fatalf("NewProperty: %v", err)
		}
		report := New(nil).Validate(property)
		if len(report.Errors) != 0 {
			t.Fatalf("unexpected errors:\n%s", report)
		}
	})
	t.Run("requirement trigger sees behaviour alias", func(t *testing.T) {
		// The behaviour precedes the trigger on the wire, so the trigger
		// predicate may constrain the behaviour's payload.
		property := requirement(t,
			event(t, "b", "y", nil),
			event(t, "a", "x", fieldPredicate(t, "y", "value")),
		)
		report := New(nil).Validate(property)
		if len(report.Errors) != 0 {
			t.Fatalf("unexpected errors:\n%s", report)
		}
	})
	t.Run("response behaviour not visible to trigger", func(t *testing.T) {
		pattern, err := ast.NewResponse(
			event(t, "a", "x", fieldPredicate(t, "y", "value")),
			event(t, "b", "y", nil),
		)
		if err != nil {
			t.Fatalf("NewResponse: %v", err)
		}
		property, err := ast.NewProperty(ast.Globally(), pattern)
		if err != nil {
			t.Fatalf("NewProperty: %v", err)
		}
		report := New(nil).Validate(property)
		if !report.HasCode(vplErrors.CodeUnboundAlias) {
			t.Error("response trigger reference to behaviour alias was not flagged")
		}
	})
	t.Run("terminator cannot see trigger aliases", func(t *testing.T) {
		scope, err := ast.Until(event(t, "stop", "", fieldPredicate(t, "x", "value")))
		if err != nil {
			t.Fatalf("Until: %v", err)
		}
		pattern, err := ast.NewResponse(event(t, "a", "x", nil), event(t, "b", "", nil))
		if err != nil {
			t.Fatalf("NewResponse: %v", err)
		}
		property, err := ast.NewProperty(scope, pattern)
		if err != nil {
			t.Fatalf("NewProperty: %v", err)
		}
		report := New(nil).Validate(property)
		if !report.HasCode(vplErrors.CodeUnboundAlias) {
			t.Error("terminator reference to trigger alias was not flagged")
		}
	})
	t.Run("activator alias visible everywhere", func(t *testing.T) {
		activator := event(t, "start", "s", nil)
		scope, err := ast.After(activator)
		if err != nil {
			t.Fatalf("After: %v", err)
		}
		pattern, err := ast.NewResponse(
			event(t, "a", "x", fieldPredicate(t, "s", "mode")),
			event(t, "b", "", fieldPredicate(t, "x", "value")),
		)
		if err != nil {
			t.Fatalf("NewResponse: %v", err)
		}
		property, err := ast.NewProperty(scope, pattern)
		if err != nil {
			t.Fatalf("NewProperty: %v", err)
		}
		report := New(nil).Validate(property)
		if len(report.Errors) != 0 {
			t.Fatalf("unexpected errors:\n%s", report)
		}
	})
}

func TestValidate_SuspiciousUnboundResponse(t *testing.T) {
	property := requirement(t,
		event(t, "b", "m", fieldPredicate(t, "m", "value")),
		event(t, "a", "x", nil),
	)
	report := New(nil).Validate(property)
	if !report.Accepted() {
		t.Fatalf("property rejected:\n%s", report)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("warnings = %d, want exactly 1", len(report.Warnings))
	}
	if report.Warnings[0].Code != vplErrors.CodeSuspiciousUnboundResponse {
		t.Errorf("warning code = %s, want %s", report.Warnings[0].Code, vplErrors.CodeSuspiciousUnboundResponse)
	}
}

func TestValidate_DuplicateAlias(t *testing.T) {
	property := requirement(t,
		event(t, "b", "x", nil),
		event(t, "a", "x", nil),
	)
	report := New(nil).Validate(property)
	diags := report.ByCode(vplErrors.CodeDuplicateAlias)
	if len(diags) != 1 {
		t.Fatalf("DuplicateAlias diagnostics = %d, want 1:\n%s", len(diags), report)
	}
	if diags[0].Subject != "x" {
		t.Errorf("Subject = %q, want %q", diags[0].Subject, "x")
	}
}

func TestValidate_DisjunctsMayShareAlias(t *testing.T) {
	// One name across the disjuncts means "whichever event fired"; only a
	// reuse by a different event of the property is a conflict.
	d, err := ast.NewEventDisjunction(
		event(t, "topic/x", "m", nil),
		event(t, "topic/y", "m", nil),
	)
	if err != nil {
		t.Fatalf("NewEventDisjunction: %v", err)
	}
	pattern, err := ast.NewResponse(d, event(t, "topic/ack", "", fieldPredicate(t, "m", "value")))
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	property, err := ast.NewProperty(ast.Globally(), pattern)
	if err != nil {
		t.Fatalf("NewProperty: %v", err)
	}

	report := New(nil).Validate(property)
	if report.HasCode(vplErrors.CodeDuplicateAlias) {
		t.Fatalf("shared disjunct alias flagged as duplicate:\n%s", report)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors:\n%s", report)
	}
}

func TestValidate_FunctionChecks(t *testing.T) {
	registry := functions.Builtins()
	if err := registry.Register(functions.Signature{
		Name:   "within",
		Params: []ast.ValueKind{ast.ValueNumber, ast.ValueNumber},
		Result: ast.ValueBool,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	registry.Freeze()

	trigger := event(t, "a", "x", nil)

	tests := []struct {
		name      string
		predicate *ast.Predicate
		wantCode  vplErrors.Code
		position  int
	}{
		{
			name:      "unknown function",
			predicate: callPredicate(t, "wthin", fieldAccess(t, "x", "value"), ast.NewNumberLiteral(1)),
			wantCode:  vplErrors.CodeUnknownFunction,
			position:  -1,
		},
		{
			name:      "arity mismatch",
			predicate: callPredicate(t, "within", ast.NewNumberLiteral(1)),
			wantCode:  vplErrors.CodeFunctionArityMismatch,
			position:  -1,
		},
		{
			name:      "argument type mismatch",
			predicate: callPredicate(t, "within", ast.NewNumberLiteral(1), ast.NewStringLiteral("far")),
			wantCode:  vplErrors.CodeFunctionArgTypeMismatch,
			position:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			property := requirement(t, event(t, "b", "", tt.predicate), trigger.Clone().(ast.Event))
			report := New(registry).Validate(property)
			diags := report.ByCode(tt.wantCode)
			if len(diags) != 1 {
				t.Fatalf("%s diagnostics = %d, want 1:\n%s", tt.wantCode, len(diags), report)
			}
			if diags[0].Position != tt.position {
				t.Errorf("Position = %d, want %d", diags[0].Position, tt.position)
			}
		})
	}

	t.Run("well-typed call passes", func(t *testing.T) {
		predicate := callPredicate(t, "within", fieldAccess(t, "x", "value"), ast.NewNumberLiteral(5))
		property := requirement(t, event(t, "b", "", predicate), trigger.Clone().(ast.Event))
		report := New(registry).Validate(property)
		if len(report.Errors) != 0 {
			t.Fatalf("unexpected errors:\n%s", report)
		}
	})
	t.Run("unknown function carries a suggestion", func(t *testing.T) {
		predicate := callPredicate(t, "wthin", ast.NewNumberLiteral(1), ast.NewNumberLiteral(2))
		property := requirement(t, event(t, "b", "", predicate), trigger.Clone().(ast.Event))
		report := New(registry).Validate(property)
		diags := report.ByCode(vplErrors.CodeUnknownFunction)
		if len(diags) != 1 {
			t.Fatalf("UnknownFunction diagnostics = %d, want 1", len(diags))
		}
		if diags[0].Suggestion != "within" {
			t.Errorf("Suggestion = %q, want %q", diags[0].Suggestion, "within")
		}
	})
}

func fieldAccess(t *testing.T, alias string, path ...string) *ast.FieldAccess {
	t.Helper()
	fa, err := ast.NewFieldAccess(alias, path...)
	if err != nil {
		t.Fatalf("NewFieldAccess: %v", err)
	}
	return fa
}

func TestValidate_IncompatibleComparison(t *testing.T) {
	cmp, err := ast.NewComparison(ast.OpEqual, ast.NewNumberLiteral(1), ast.NewStringLiteral("one"))
	if err != nil {
		t.Fatalf("NewComparison: %v", err)
	}
	predicate, err := ast.NewPredicate(logic.NewAtom(cmp))
	if err != nil {
		t.Fatalf("NewPredicate: %v", err)
	}
	pattern, err := ast.NewExistence(event(t, "b", "m", predicate))
	if err != nil {
		t.Fatalf("NewExistence: %v", err)
	}
	property, err := ast.NewProperty(ast.Globally(), pattern)
	if err != nil {
		t.Fatalf("NewProperty: %v", err)
	}

	report := New(nil).Validate(property)
	if !report.HasCode(vplErrors.CodeIncompatibleComparison) {
		t.Fatalf("number/string comparison not flagged:\n%s", report)
	}
}

func TestValidate_OrderedComparisonRequiresNumbers(t *testing.T) {
	cmp, err := ast.NewComparison(ast.OpLessThan, ast.NewStringLiteral("a"), ast.NewStringLiteral("b"))
	if err != nil {
		t.Fatalf("NewComparison: %v", err)
	}
	predicate, err := ast.NewPredicate(logic.NewAtom(cmp))
	if err != nil {
		t.Fatalf("NewPredicate: %v", err)
	}
	pattern, err := ast.NewExistence(event(t, "b", "m", predicate))
	if err != nil {
		t.Fatalf("NewExistence: %v", err)
	}
	property, err := ast.NewProperty(ast.Globally(), pattern)
	if err != nil {
		t.Fatalf("NewProperty: %v", err)
	}

	report := New(nil).Validate(property)
	if !report.HasCode(vplErrors.CodeIncompatibleComparison) {
		t.Fatalf("string ordering not flagged:\n%s", report)
	}
}

func TestValidate_MutatedDisjunctionRecheck(t *testing.T) {
	d, err := ast.NewEventDisjunction(
		event(t, "topic/x", "a", nil),
		event(t, "topic/y", "b", nil),
	)
	if err != nil {
		t.Fatalf("NewEventDisjunction: %v", err)
	}
	// ReplaceChild is permissive; sneak in a duplicate channel.
	if err := d.ReplaceChild(d.Events[1].ID(), event(t, "topic/x", "c", nil)); err != nil {
		t.Fatalf("ReplaceChild: %v", err)
	}
	pattern, err := ast.NewExistence(d)
	if err != nil {
		t.Fatalf("NewExistence: %v", err)
	}
	property, err := ast.NewProperty(ast.Globally(), pattern)
	if err != nil {
		t.Fatalf("NewProperty: %v", err)
	}

	report := New(nil).Validate(property)
	diags := report.ByCode(vplErrors.CodeNonUniqueDisjunctChannel)
	if len(diags) != 1 {
		t.Fatalf("NonUniqueDisjunctChannel diagnostics = %d, want 1:\n%s", len(diags), report)
	}
	if diags[0].Subject != "topic/x" {
		t.Errorf("Subject = %q, want %q", diags[0].Subject, "topic/x")
	}
}

func TestValidate_AccumulatesAcrossPasses(t *testing.T) {
	// One property carrying an unknown function, an unbound alias, and an
	// independent response: every pass must still contribute.
	behaviour := event(t, "b", "", callPredicate(t, "nope", fieldAccess(t, "ghost")))
	property := requirement(t, behaviour, event(t, "a", "x", nil))

	report := New(nil).Validate(property)
	for _, code := range []vplErrors.Code{
		vplErrors.CodeUnknownFunction,
		vplErrors.CodeUnboundAlias,
		vplErrors.CodeSuspiciousUnboundResponse,
	} {
		if !report.HasCode(code) {
			t.Errorf("missing %s:\n%s", code, report)
		}
	}
}

func TestValidate_Deterministic(t *testing.T) {
	behaviour := event(t, "b", "x", callPredicate(t, "nope", fieldAccess(t, "ghost")))
	property := requirement(t, behaviour, event(t, "a", "x", fieldPredicate(t, "other")))

	v := New(nil)
	first := v.Validate(property)
	second := v.Validate(property)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ between runs:\n%s\n---\n%s", first, second)
	}
}

func TestValidateSpecification(t *testing.T) {
	good := requirement(t,
		event(t, "b", "", fieldPredicate(t, "x", "value")),
		event(t, "a", "x", nil),
	)
	bad := requirement(t,
		event(t, "d", "", fieldPredicate(t, "ghost")),
		event(t, "c", "y", nil),
	)
	spec := ast.NewSpecification(good, bad)

	report := New(nil).ValidateSpecification(spec)
	if report.Accepted() {
		t.Fatal("specification with an invalid property accepted")
	}
	if !report.HasCode(vplErrors.CodeUnboundAlias) {
		t.Errorf("missing UnboundAlias from the bad property:\n%s", report)
	}
}
