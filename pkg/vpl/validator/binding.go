package validator

import (
	"vigil-hq/vigil/pkg/vpl/ast"
	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
)

// BindingValidator resolves every field-access alias against the events
// that bind it. Aliases flow through a property in observation order: the
// activator binds first, then the trigger (when the pattern has one), then
// the behaviour. Requirement is the exception: its behaviour is observed
// before the trigger that mandates it, so the two slots bind each other
// and both predicates see both alias sets. The terminator sees only
// activator aliases, since it can fire before the pattern's events. Each
// event's own predicate may always reference the aliases bound by that
// same event.
type BindingValidator struct{}

// NewBindingValidator creates the binding pass.
func NewBindingValidator() *BindingValidator {
	return &BindingValidator{}
}

// aliasTable is the non-owning name -> binding-event map computed per
// validation run. Nodes never hold back-references; this table is the only
// place binding is materialized.
type aliasTable map[string]ast.NodeID

func (t aliasTable) bind(event ast.Event) {
	for _, atomic := range event.AtomicEvents() {
		if atomic.Alias != "" {
			t[atomic.Alias] = atomic.ID()
		}
	}
}

// Validate appends an UnboundAlias diagnostic for every field access whose
// alias no in-scope event binds.
func (v *BindingValidator) Validate(property *ast.Property, report *vplErrors.Report) {
	available := aliasTable{}

	if activator := property.Scope.Activator; activator != nil {
		v.checkEvent(activator, available, report)
		available.bind(activator)
	}

	behaviour := property.Pattern.Behaviour
	switch trigger := property.Pattern.Trigger; {
	case trigger == nil:
		v.checkEvent(behaviour, available, report)
	case property.Pattern.PatternKind == ast.PatternRequirement:
		// The behaviour precedes the trigger on the wire, so each slot's
		// predicate may reference the other's aliases.
		available.bind(trigger)
		available.bind(behaviour)
		v.checkEvent(trigger, available, report)
		v.checkEvent(behaviour, available, report)
	default:
		v.checkEvent(trigger, available, report)
		available.bind(trigger)
		v.checkEvent(behaviour, available, report)
	}

	if terminator := property.Scope.Terminator; terminator != nil {
		// Rebuild the table from the activator alone: the terminator may
		// fire before the trigger or behaviour are ever observed.
		afterActivator := aliasTable{}
		if activator := property.Scope.Activator; activator != nil {
			afterActivator.bind(activator)
		}
		v.checkEvent(terminator, afterActivator, report)
	}
}

func (v *BindingValidator) checkEvent(event ast.Event, available aliasTable, report *vplErrors.Report) {
	for _, atomic := range event.AtomicEvents() {
		for _, alias := range atomic.ExternalReferences() {
			if _, bound := available[alias]; !bound {
				report.AddError(vplErrors.CodeUnboundAlias, string(atomic.ID()), alias,
					"alias %q is not bound by any event in scope on channel %s", alias, atomic.Channel)
			}
		}
	}
}
