package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"vigil-hq/vigil/pkg/vpl/ast"
	"vigil-hq/vigil/pkg/vpl/logic"
)

// builder constructs AST nodes from the intermediate YAML structures.
// Problems accumulate so one parse reports every malformed property
// instead of stopping at the first.
type builder struct {
	source string
	errs   []error
}

func newBuilder(source string) *builder {
	return &builder{source: source}
}

func (b *builder) errorf(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf("%s: %s", b.source, fmt.Sprintf(format, args...)))
}

func (b *builder) err() error {
	return errors.Join(b.errs...)
}

// buildSpecification transforms the document into an ast.Specification.
func (b *builder) buildSpecification(ys *yamlSpecification) (*ast.Specification, error) {
	properties := make([]*ast.Property, 0, len(ys.Properties))
	for i, yp := range ys.Properties {
		property := b.buildProperty(&yp, i)
		if property != nil {
			properties = append(properties, property)
		}
	}
	if err := b.err(); err != nil {
		return nil, err
	}
	return ast.NewSpecification(properties...), nil
}

func (b *builder) buildProperty(yp *yamlProperty, index int) *ast.Property {
	label := yp.ID
	if label == "" {
		label = fmt.Sprintf("property %d", index)
	}

	scope := b.buildScope(yp.Scope, label)
	pattern := b.buildPattern(&yp.Pattern, label)
	if scope == nil || pattern == nil {
		return nil
	}

	property, err := ast.NewProperty(scope, pattern)
	if err != nil {
		b.errorf("%s: %v", label, err)
		return nil
	}
	if yp.ID != "" {
		property.Metadata["id"] = yp.ID
	}
	if yp.Description != "" {
		property.Metadata["description"] = yp.Description
	}
	return property
}

func (b *builder) buildScope(ys *yamlScope, label string) *ast.Scope {
	if ys == nil || (ys.After == nil && ys.Until == nil) {
		return ast.Globally()
	}

	var activator, terminator ast.Event
	if ys.After != nil {
		activator = b.buildEvent(ys.After, label+" activator")
	}
	if ys.Until != nil {
		terminator = b.buildEvent(ys.Until, label+" terminator")
	}

	var (
		scope *ast.Scope
		err   error
	)
	switch {
	case ys.After != nil && ys.Until != nil:
		if activator == nil || terminator == nil {
			return nil
		}
		scope, err = ast.AfterUntil(activator, terminator)
	case ys.After != nil:
		if activator == nil {
			return nil
		}
		scope, err = ast.After(activator)
	default:
		if terminator == nil {
			return nil
		}
		scope, err = ast.Until(terminator)
	}
	if err != nil {
		b.errorf("%s: %v", label, err)
		return nil
	}
	return scope
}

func (b *builder) buildPattern(yp *yamlPattern, label string) *ast.Pattern {
	var behaviour, trigger ast.Event
	if yp.Behaviour != nil {
		behaviour = b.buildEvent(yp.Behaviour, label+" behaviour")
	} else {
		b.errorf("%s: pattern requires a behaviour event", label)
	}
	if yp.Trigger != nil {
		trigger = b.buildEvent(yp.Trigger, label+" trigger")
	}
	if behaviour == nil {
		return nil
	}

	var (
		pattern *ast.Pattern
		err     error
	)
	switch kind := ast.PatternKind(yp.Kind); kind {
	case ast.PatternAbsence:
		pattern, err = ast.NewAbsence(behaviour)
	case ast.PatternExistence:
		pattern, err = ast.NewExistence(behaviour)
	case ast.PatternResponse:
		pattern, err = ast.NewResponse(trigger, behaviour)
	case ast.PatternRequirement:
		pattern, err = ast.NewRequirement(behaviour, trigger)
	case ast.PatternPrevention:
		pattern, err = ast.NewPrevention(trigger, behaviour)
	default:
		b.errorf("%s: unknown pattern kind %q", label, yp.Kind)
		return nil
	}
	if err != nil {
		b.errorf("%s: %v", label, err)
		return nil
	}

	min := b.buildDuration(yp.MinTime, label+" min_time")
	max := b.buildDuration(yp.MaxTime, label+" max_time")
	if min != 0 || max != 0 {
		if pattern, err = pattern.WithTimeBound(min, max); err != nil {
			b.errorf("%s: %v", label, err)
			return nil
		}
	}
	return pattern
}

func (b *builder) buildDuration(raw, label string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		b.errorf("%s: invalid duration %q", label, raw)
		return 0
	}
	return d
}

func (b *builder) buildEvent(ye *yamlEvent, label string) ast.Event {
	if len(ye.AnyOf) > 0 {
		if ye.Channel != "" {
			b.errorf("%s: event sets both channel and any_of", label)
			return nil
		}
		events := make([]ast.Event, 0, len(ye.AnyOf))
		for i := range ye.AnyOf {
			event := b.buildEvent(&ye.AnyOf[i], fmt.Sprintf("%s disjunct %d", label, i))
			if event == nil {
				return nil
			}
			events = append(events, event)
		}
		disjunction, err := ast.NewEventDisjunction(events...)
		if err != nil {
			b.errorf("%s: %v", label, err)
			return nil
		}
		return disjunction
	}

	predicate := b.buildPredicate(ye.Predicate, label)
	event, err := ast.NewAtomicEvent(ye.Channel, ye.Alias, predicate)
	if err != nil {
		b.errorf("%s: %v", label, err)
		return nil
	}
	return event
}

func (b *builder) buildPredicate(yc *yamlCondition, label string) *ast.Predicate {
	if yc == nil {
		return nil // constructor substitutes the vacuous truth
	}
	condition := b.buildCondition(yc, label)
	if condition == nil {
		return nil
	}
	predicate, err := ast.NewPredicate(condition)
	if err != nil {
		b.errorf("%s: %v", label, err)
		return nil
	}
	return predicate
}

func (b *builder) buildCondition(yc *yamlCondition, label string) logic.Expr {
	set := 0
	for _, present := range []bool{
		len(yc.AllOf) > 0, len(yc.AnyOf) > 0, yc.Not != nil, yc.Compare != nil, yc.Call != nil,
	} {
		if present {
			set++
		}
	}
	if set != 1 {
		b.errorf("%s: condition must set exactly one of all_of, any_of, not, compare, call", label)
		return nil
	}

	switch {
	case len(yc.AllOf) > 0:
		operands := b.buildConditions(yc.AllOf, label)
		if operands == nil {
			return nil
		}
		return logic.Conjoin(operands[0], operands[1:]...)
	case len(yc.AnyOf) > 0:
		operands := b.buildConditions(yc.AnyOf, label)
		if operands == nil {
			return nil
		}
		return logic.Disjoin(operands[0], operands[1:]...)
	case yc.Not != nil:
		operand := b.buildCondition(yc.Not, label)
		if operand == nil {
			return nil
		}
		return logic.Negate(operand)
	case yc.Compare != nil:
		lhs := b.buildOperand(&yc.Compare.LHS, label)
		rhs := b.buildOperand(&yc.Compare.RHS, label)
		if lhs == nil || rhs == nil {
			return nil
		}
		cmp, err := ast.NewComparison(ast.Operator(yc.Compare.Op), lhs, rhs)
		if err != nil {
			b.errorf("%s: %v", label, err)
			return nil
		}
		return logic.NewAtom(cmp)
	default:
		call := b.buildCall(yc.Call, label)
		if call == nil {
			return nil
		}
		return logic.NewAtom(call)
	}
}

func (b *builder) buildConditions(ycs []yamlCondition, label string) []logic.Expr {
	operands := make([]logic.Expr, 0, len(ycs))
	for i := range ycs {
		operand := b.buildCondition(&ycs[i], label)
		if operand == nil {
			return nil
		}
		operands = append(operands, operand)
	}
	return operands
}

func (b *builder) buildCall(yc *yamlCall, label string) *ast.FunctionCall {
	args := make([]ast.Operand, 0, len(yc.Args))
	for i := range yc.Args {
		arg := b.buildOperand(&yc.Args[i], label)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}
	call, err := ast.NewFunctionCall(yc.Name, args...)
	if err != nil {
		b.errorf("%s: %v", label, err)
		return nil
	}
	return call
}

func (b *builder) buildOperand(yo *yamlOperand, label string) ast.Operand {
	set := 0
	for _, present := range []bool{yo.Field != "", yo.hasValue, yo.Call != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		b.errorf("%s: operand must set exactly one of field, value, call", label)
		return nil
	}

	switch {
	case yo.Field != "":
		segments := strings.Split(yo.Field, ".")
		fa, err := ast.NewFieldAccess(segments[0], segments[1:]...)
		if err != nil {
			b.errorf("%s: %v", label, err)
			return nil
		}
		return fa
	case yo.hasValue:
		return b.buildLiteral(yo.Value, label)
	default:
		call := b.buildCall(yo.Call, label)
		if call == nil {
			return nil
		}
		return call
	}
}

func (b *builder) buildLiteral(value any, label string) ast.Operand {
	switch v := value.(type) {
	case bool:
		return ast.NewBoolLiteral(v)
	case int:
		return ast.NewNumberLiteral(float64(v))
	case int64:
		return ast.NewNumberLiteral(float64(v))
	case float64:
		return ast.NewNumberLiteral(v)
	case string:
		return ast.NewStringLiteral(v)
	default:
		b.errorf("%s: unsupported literal %v (%T)", label, value, value)
		return nil
	}
}
