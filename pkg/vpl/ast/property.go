package ast

import (
	"fmt"
	"strings"
	"time"

	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
)

// ScopeKind selects how a property's observation window is bounded.
type ScopeKind string

const (
	ScopeGlobal     ScopeKind = "global"
	ScopeAfter      ScopeKind = "after"
	ScopeUntil      ScopeKind = "until"
	ScopeAfterUntil ScopeKind = "after_until"
)

// Scope bounds the window during which a property is observed: globally,
// after an activator event, until a terminator event, or between the two.
type Scope struct {
	node
	ScopeKind  ScopeKind
	Activator  Event // non-nil for after and after_until
	Terminator Event // non-nil for until and after_until
}

// Globally creates the unbounded scope.
func Globally() *Scope {
	return &Scope{node: newNode(), ScopeKind: ScopeGlobal}
}

// After creates a scope activated by an event.
func After(activator Event) (*Scope, error) {
	if activator == nil {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeInvalidScope,
			"after scope requires an activator event")
	}
	return &Scope{node: newNode(), ScopeKind: ScopeAfter, Activator: activator}, nil
}

// Until creates a scope terminated by an event.
func Until(terminator Event) (*Scope, error) {
	if terminator == nil {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeInvalidScope,
			"until scope requires a terminator event")
	}
	return &Scope{node: newNode(), ScopeKind: ScopeUntil, Terminator: terminator}, nil
}

// AfterUntil creates a scope bounded on both sides.
func AfterUntil(activator, terminator Event) (*Scope, error) {
	if activator == nil || terminator == nil {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeInvalidScope,
			"after-until scope requires both activator and terminator events")
	}
	return &Scope{
		node:       newNode(),
		ScopeKind:  ScopeAfterUntil,
		Activator:  activator,
		Terminator: terminator,
	}, nil
}

// IsGlobal reports whether the scope is unbounded.
func (s *Scope) IsGlobal() bool { return s.ScopeKind == ScopeGlobal }

func (s *Scope) Kind() NodeKind { return KindScope }

func (s *Scope) Children() []Node {
	var children []Node
	if s.Activator != nil {
		children = append(children, s.Activator)
	}
	if s.Terminator != nil {
		children = append(children, s.Terminator)
	}
	return children
}

func (s *Scope) Clone() Node {
	clone := &Scope{node: newNode(), ScopeKind: s.ScopeKind}
	if s.Activator != nil {
		clone.Activator = s.Activator.Clone().(Event)
	}
	if s.Terminator != nil {
		clone.Terminator = s.Terminator.Clone().(Event)
	}
	return clone
}

func (s *Scope) Equals(other Node) bool {
	o, ok := other.(*Scope)
	if !ok || s.ScopeKind != o.ScopeKind {
		return false
	}
	return eventsEqual(s.Activator, o.Activator) && eventsEqual(s.Terminator, o.Terminator)
}

func eventsEqual(a, b Event) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

func (s *Scope) ReplaceChild(old NodeID, repl Node) error {
	event, ok := repl.(Event)
	if !ok {
		return fmt.Errorf("ast: scope child must be an event, got %s", repl.Kind())
	}
	if s.Activator != nil && s.Activator.ID() == old {
		s.Activator = event
		return nil
	}
	if s.Terminator != nil && s.Terminator.ID() == old {
		s.Terminator = event
		return nil
	}
	return notAChild(s, old)
}

func (s *Scope) String() string {
	switch s.ScopeKind {
	case ScopeGlobal:
		return "globally"
	case ScopeAfter:
		return fmt.Sprintf("after %s", s.Activator)
	case ScopeUntil:
		return fmt.Sprintf("until %s", s.Terminator)
	case ScopeAfterUntil:
		return fmt.Sprintf("after %s until %s", s.Activator, s.Terminator)
	}
	return string(s.ScopeKind)
}

// PatternKind names a temporal pattern template.
type PatternKind string

const (
	PatternAbsence     PatternKind = "absence"
	PatternExistence   PatternKind = "existence"
	PatternResponse    PatternKind = "response"
	PatternRequirement PatternKind = "requirement"
	PatternPrevention  PatternKind = "prevention"
)

// patternSpec describes the structural shape of a pattern kind. The
// catalog is data so that the validator stays generic over patterns.
// For every triggered pattern the trigger's aliases bind first and are
// visible to the behaviour's predicate.
type patternSpec struct {
	hasTrigger bool
	safety     bool
}

var patternCatalog = map[PatternKind]patternSpec{
	PatternAbsence:     {hasTrigger: false, safety: true},
	PatternExistence:   {hasTrigger: false, safety: false},
	PatternResponse:    {hasTrigger: true, safety: false},
	PatternRequirement: {hasTrigger: true, safety: true},
	PatternPrevention:  {hasTrigger: true, safety: true},
}

// Known reports whether the kind is in the pattern catalog.
func (k PatternKind) Known() bool {
	_, ok := patternCatalog[k]
	return ok
}

// HasTrigger reports whether the pattern kind takes a trigger event.
func (k PatternKind) HasTrigger() bool {
	return patternCatalog[k].hasTrigger
}

// IsSafety reports whether the pattern kind expresses a safety property
// (something bad never happens).
func (k PatternKind) IsSafety() bool {
	return patternCatalog[k].safety
}

// IsLiveness reports whether the pattern kind expresses a liveness
// property (something good eventually happens).
func (k PatternKind) IsLiveness() bool {
	return k.Known() && !patternCatalog[k].safety
}

// Pattern instantiates a temporal template with concrete events.
// Absence and existence observe a behaviour alone; response, requirement,
// and prevention relate a behaviour to a trigger. Time bounds constrain
// how long after the trigger the behaviour is observed (zero means
// unbounded).
type Pattern struct {
	node
	PatternKind PatternKind
	Behaviour   Event
	Trigger     Event // nil for absence and existence
	MinTime     time.Duration
	MaxTime     time.Duration
}

// NewAbsence creates a pattern forbidding the behaviour within scope.
func NewAbsence(behaviour Event) (*Pattern, error) {
	return newSinglePattern(PatternAbsence, behaviour)
}

// NewExistence creates a pattern demanding the behaviour occur in scope.
func NewExistence(behaviour Event) (*Pattern, error) {
	return newSinglePattern(PatternExistence, behaviour)
}

// NewResponse creates a pattern demanding the behaviour follow the trigger.
func NewResponse(trigger, behaviour Event) (*Pattern, error) {
	return newTriggeredPattern(PatternResponse, trigger, behaviour)
}

// NewRequirement creates a pattern demanding the behaviour be preceded by
// the trigger.
func NewRequirement(behaviour, trigger Event) (*Pattern, error) {
	return newTriggeredPattern(PatternRequirement, trigger, behaviour)
}

// NewPrevention creates a pattern forbidding the behaviour after the
// trigger.
func NewPrevention(trigger, forbidden Event) (*Pattern, error) {
	return newTriggeredPattern(PatternPrevention, trigger, forbidden)
}

func newSinglePattern(kind PatternKind, behaviour Event) (*Pattern, error) {
	if behaviour == nil {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeInvalidPattern,
			"%s pattern requires a behaviour event", kind)
	}
	return &Pattern{node: newNode(), PatternKind: kind, Behaviour: behaviour}, nil
}

func newTriggeredPattern(kind PatternKind, trigger, behaviour Event) (*Pattern, error) {
	if behaviour == nil {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeInvalidPattern,
			"%s pattern requires a behaviour event", kind)
	}
	if trigger == nil {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeInvalidPattern,
			"%s pattern requires a trigger event", kind)
	}
	return &Pattern{node: newNode(), PatternKind: kind, Behaviour: behaviour, Trigger: trigger}, nil
}

// WithTimeBound constrains the pattern to the [min, max] window.
func (p *Pattern) WithTimeBound(min, max time.Duration) (*Pattern, error) {
	if min < 0 || max < 0 || (max > 0 && min > max) {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeInvalidPattern,
			"invalid time bound [%s, %s]", min, max)
	}
	p.MinTime = min
	p.MaxTime = max
	return p, nil
}

// HasMaxTime reports whether the pattern carries an upper time bound.
func (p *Pattern) HasMaxTime() bool { return p.MaxTime > 0 }

// IsSafety reports whether the pattern expresses a safety property.
func (p *Pattern) IsSafety() bool { return p.PatternKind.IsSafety() }

// IsLiveness reports whether the pattern expresses a liveness property.
func (p *Pattern) IsLiveness() bool { return p.PatternKind.IsLiveness() }

func (p *Pattern) Kind() NodeKind { return KindPattern }

func (p *Pattern) Children() []Node {
	if p.Trigger == nil {
		return []Node{p.Behaviour}
	}
	return []Node{p.Trigger, p.Behaviour}
}

func (p *Pattern) Clone() Node {
	clone := &Pattern{
		node:        newNode(),
		PatternKind: p.PatternKind,
		Behaviour:   p.Behaviour.Clone().(Event),
		MinTime:     p.MinTime,
		MaxTime:     p.MaxTime,
	}
	if p.Trigger != nil {
		clone.Trigger = p.Trigger.Clone().(Event)
	}
	return clone
}

func (p *Pattern) Equals(other Node) bool {
	o, ok := other.(*Pattern)
	if !ok || p.PatternKind != o.PatternKind {
		return false
	}
	if p.MinTime != o.MinTime || p.MaxTime != o.MaxTime {
		return false
	}
	return p.Behaviour.Equals(o.Behaviour) && eventsEqual(p.Trigger, o.Trigger)
}

func (p *Pattern) ReplaceChild(old NodeID, repl Node) error {
	event, ok := repl.(Event)
	if !ok {
		return fmt.Errorf("ast: pattern child must be an event, got %s", repl.Kind())
	}
	if p.Trigger != nil && p.Trigger.ID() == old {
		p.Trigger = event
		return nil
	}
	if p.Behaviour.ID() == old {
		p.Behaviour = event
		return nil
	}
	return notAChild(p, old)
}

func (p *Pattern) String() string {
	bound := ""
	if p.HasMaxTime() {
		bound = fmt.Sprintf(" within %s", p.MaxTime)
	}
	switch p.PatternKind {
	case PatternExistence:
		return fmt.Sprintf("some %s%s", p.Behaviour, bound)
	case PatternAbsence:
		return fmt.Sprintf("no %s%s", p.Behaviour, bound)
	case PatternResponse:
		return fmt.Sprintf("%s causes %s%s", p.Trigger, p.Behaviour, bound)
	case PatternRequirement:
		return fmt.Sprintf("%s requires %s%s", p.Behaviour, p.Trigger, bound)
	case PatternPrevention:
		return fmt.Sprintf("%s forbids %s%s", p.Trigger, p.Behaviour, bound)
	}
	return string(p.PatternKind)
}

// Property is a top-level requirement specification: a pattern observed
// within a scope. A property owns all of its events and predicates
// exclusively; composing a node into a property transfers ownership.
type Property struct {
	node
	Scope    *Scope
	Pattern  *Pattern
	Metadata map[string]string
}

// NewProperty composes a scope and a pattern into a property.
func NewProperty(scope *Scope, pattern *Pattern) (*Property, error) {
	if scope == nil || pattern == nil {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeInvalidPattern,
			"property requires both a scope and a pattern")
	}
	return &Property{node: newNode(), Scope: scope, Pattern: pattern, Metadata: map[string]string{}}, nil
}

// UID returns the property's external identifier from metadata, or "".
func (p *Property) UID() string { return p.Metadata["id"] }

// Events yields the property's events in source order: activator,
// behaviour, trigger, terminator. Nil slots are skipped.
func (p *Property) Events() []Event {
	var events []Event
	if p.Scope.Activator != nil {
		events = append(events, p.Scope.Activator)
	}
	events = append(events, p.Pattern.Behaviour)
	if p.Pattern.Trigger != nil {
		events = append(events, p.Pattern.Trigger)
	}
	if p.Scope.Terminator != nil {
		events = append(events, p.Scope.Terminator)
	}
	return events
}

// IsSafety reports whether the property expresses a safety property.
func (p *Property) IsSafety() bool { return p.Pattern.IsSafety() }

// IsLiveness reports whether the property expresses a liveness property.
func (p *Property) IsLiveness() bool { return p.Pattern.IsLiveness() }

func (p *Property) Kind() NodeKind { return KindProperty }

func (p *Property) Children() []Node {
	return []Node{p.Scope, p.Pattern}
}

func (p *Property) Clone() Node {
	meta := make(map[string]string, len(p.Metadata))
	for k, v := range p.Metadata {
		meta[k] = v
	}
	return &Property{
		node:     newNode(),
		Scope:    p.Scope.Clone().(*Scope),
		Pattern:  p.Pattern.Clone().(*Pattern),
		Metadata: meta,
	}
}

func (p *Property) Equals(other Node) bool {
	o, ok := other.(*Property)
	return ok && p.Scope.Equals(o.Scope) && p.Pattern.Equals(o.Pattern)
}

func (p *Property) ReplaceChild(old NodeID, repl Node) error {
	switch old {
	case p.Scope.ID():
		s, ok := repl.(*Scope)
		if !ok {
			return fmt.Errorf("ast: property scope replacement must be a scope, got %s", repl.Kind())
		}
		p.Scope = s
	case p.Pattern.ID():
		pat, ok := repl.(*Pattern)
		if !ok {
			return fmt.Errorf("ast: property pattern replacement must be a pattern, got %s", repl.Kind())
		}
		p.Pattern = pat
	default:
		return notAChild(p, old)
	}
	return nil
}

func (p *Property) String() string {
	return fmt.Sprintf("%s: %s", p.Scope, p.Pattern)
}

// Specification is an ordered collection of properties, the root of a VPL
// document. Properties are validated independently of each other.
type Specification struct {
	node
	Properties []*Property
}

// NewSpecification creates a specification over the given properties.
func NewSpecification(properties ...*Property) *Specification {
	return &Specification{node: newNode(), Properties: append([]*Property(nil), properties...)}
}

func (s *Specification) Kind() NodeKind { return KindSpecification }

func (s *Specification) Children() []Node {
	children := make([]Node, len(s.Properties))
	for i, prop := range s.Properties {
		children[i] = prop
	}
	return children
}

func (s *Specification) Clone() Node {
	properties := make([]*Property, len(s.Properties))
	for i, prop := range s.Properties {
		properties[i] = prop.Clone().(*Property)
	}
	return &Specification{node: newNode(), Properties: properties}
}

func (s *Specification) Equals(other Node) bool {
	o, ok := other.(*Specification)
	if !ok || len(s.Properties) != len(o.Properties) {
		return false
	}
	for i := range s.Properties {
		if !s.Properties[i].Equals(o.Properties[i]) {
			return false
		}
	}
	return true
}

func (s *Specification) ReplaceChild(old NodeID, repl Node) error {
	prop, ok := repl.(*Property)
	if !ok {
		return fmt.Errorf("ast: specification child must be a property, got %s", repl.Kind())
	}
	for i, p := range s.Properties {
		if p.ID() == old {
			s.Properties[i] = prop
			return nil
		}
	}
	return notAChild(s, old)
}

func (s *Specification) String() string {
	parts := make([]string, len(s.Properties))
	for i, prop := range s.Properties {
		parts[i] = prop.String()
	}
	return strings.Join(parts, "\n")
}
