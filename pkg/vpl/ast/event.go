package ast

import (
	"fmt"
	"strings"

	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
)

// Event is an observable occurrence: either an atomic event (a message on
// a channel, optionally matching a predicate) or a disjunction of events.
type Event interface {
	Node
	isEvent()
	// Aliases returns the alias names bound by the event, in order.
	// Events that bind nothing contribute nothing.
	Aliases() []string
	// Channels returns the channel identifiers of all transitively
	// contained atomic events, flattened, in order.
	Channels() []string
	// AtomicEvents returns all transitively contained atomic events,
	// flattened, in order.
	AtomicEvents() []*AtomicEvent
}

// AtomicEvent is the smallest observable unit: a message on a named
// channel, optionally filtered by a predicate, optionally binding an alias
// that downstream predicates use to reference the matched message.
type AtomicEvent struct {
	node
	Channel   string
	Alias     string
	Predicate *Predicate
}

// NewAtomicEvent creates an atomic event. The channel must be non-empty;
// the alias may be empty for an event that binds nothing; a nil predicate
// defaults to the vacuous truth.
func NewAtomicEvent(channel, alias string, predicate *Predicate) (*AtomicEvent, error) {
	if channel == "" {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeEmptyName,
			"atomic event requires a non-empty channel identifier")
	}
	if predicate == nil {
		predicate = VacuousTruth()
	}
	return &AtomicEvent{node: newNode(), Channel: channel, Alias: alias, Predicate: predicate}, nil
}

func (e *AtomicEvent) isEvent() {}

func (e *AtomicEvent) Kind() NodeKind { return KindAtomicEvent }

func (e *AtomicEvent) Aliases() []string {
	if e.Alias == "" {
		return nil
	}
	return []string{e.Alias}
}

func (e *AtomicEvent) Channels() []string {
	return []string{e.Channel}
}

func (e *AtomicEvent) AtomicEvents() []*AtomicEvent {
	return []*AtomicEvent{e}
}

// ExternalReferences returns the sorted alias names the event's predicate
// references, excluding the event's own binding.
func (e *AtomicEvent) ExternalReferences() []string {
	var refs []string
	for _, alias := range e.Predicate.ReferencedAliases() {
		if alias != e.Alias {
			refs = append(refs, alias)
		}
	}
	return refs
}

func (e *AtomicEvent) Children() []Node {
	return []Node{e.Predicate}
}

func (e *AtomicEvent) Clone() Node {
	return &AtomicEvent{
		node:      newNode(),
		Channel:   e.Channel,
		Alias:     e.Alias,
		Predicate: e.Predicate.Clone().(*Predicate),
	}
}

func (e *AtomicEvent) Equals(other Node) bool {
	o, ok := other.(*AtomicEvent)
	return ok && e.Channel == o.Channel && e.Alias == o.Alias && e.Predicate.Equals(o.Predicate)
}

func (e *AtomicEvent) ReplaceChild(old NodeID, repl Node) error {
	if e.Predicate.ID() != old {
		return notAChild(e, old)
	}
	p, ok := repl.(*Predicate)
	if !ok {
		return fmt.Errorf("ast: atomic event child must be a predicate, got %s", repl.Kind())
	}
	e.Predicate = p
	return nil
}

func (e *AtomicEvent) String() string {
	alias := ""
	if e.Alias != "" {
		alias = " as " + e.Alias
	}
	if e.Predicate.IsTrue() {
		return e.Channel + alias
	}
	return fmt.Sprintf("%s%s %s", e.Channel, alias, e.Predicate)
}

// EventDisjunction is a logical OR over two or more events. Every
// transitively contained atomic event must listen on a distinct channel,
// so the runtime can tell from the channel alone which disjunct fired.
type EventDisjunction struct {
	node
	Events []Event
}

// NewEventDisjunction creates a disjunction over the given events.
// Fewer than two events is an arity error; a duplicate channel among the
// transitively contained atomic events is a uniqueness error.
func NewEventDisjunction(events ...Event) (*EventDisjunction, error) {
	if len(events) < 2 {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeInvalidDisjunctionArity,
			"event disjunction requires at least 2 events, got %d", len(events))
	}
	for i, event := range events {
		if event == nil {
			return nil, vplErrors.NewConstructionError(vplErrors.CodeMissingOperand,
				"event disjunction has a nil event at position %d", i)
		}
	}
	d := &EventDisjunction{node: newNode(), Events: append([]Event(nil), events...)}
	if dup := d.duplicateChannel(); dup != "" {
		return nil, vplErrors.NewConstructionError(vplErrors.CodeNonUniqueDisjunctChannel,
			"channel %q appears multiple times in an event disjunction", dup)
	}
	return d, nil
}

// duplicateChannel returns the first channel bound by more than one
// transitively contained atomic event, or "" if all channels are distinct.
func (d *EventDisjunction) duplicateChannel() string {
	seen := map[string]bool{}
	for _, channel := range d.Channels() {
		if seen[channel] {
			return channel
		}
		seen[channel] = true
	}
	return ""
}

func (d *EventDisjunction) isEvent() {}

func (d *EventDisjunction) Kind() NodeKind { return KindEventDisjunction }

func (d *EventDisjunction) Aliases() []string {
	var aliases []string
	for _, event := range d.Events {
		aliases = append(aliases, event.Aliases()...)
	}
	return aliases
}

func (d *EventDisjunction) Channels() []string {
	var channels []string
	for _, event := range d.Events {
		channels = append(channels, event.Channels()...)
	}
	return channels
}

func (d *EventDisjunction) AtomicEvents() []*AtomicEvent {
	var atomic []*AtomicEvent
	for _, event := range d.Events {
		atomic = append(atomic, event.AtomicEvents()...)
	}
	return atomic
}

func (d *EventDisjunction) Children() []Node {
	children := make([]Node, len(d.Events))
	for i, event := range d.Events {
		children[i] = event
	}
	return children
}

func (d *EventDisjunction) Clone() Node {
	events := make([]Event, len(d.Events))
	for i, event := range d.Events {
		events[i] = event.Clone().(Event)
	}
	return &EventDisjunction{node: newNode(), Events: events}
}

func (d *EventDisjunction) Equals(other Node) bool {
	o, ok := other.(*EventDisjunction)
	if !ok || len(d.Events) != len(o.Events) {
		return false
	}
	for i := range d.Events {
		if !d.Events[i].Equals(o.Events[i]) {
			return false
		}
	}
	return true
}

// ReplaceChild swaps a disjunct. The channel-uniqueness invariant is not
// re-enforced here; mutated trees are re-checked by the validator.
func (d *EventDisjunction) ReplaceChild(old NodeID, repl Node) error {
	event, ok := repl.(Event)
	if !ok {
		return fmt.Errorf("ast: disjunction child must be an event, got %s", repl.Kind())
	}
	for i, e := range d.Events {
		if e.ID() == old {
			d.Events[i] = event
			return nil
		}
	}
	return notAChild(d, old)
}

func (d *EventDisjunction) String() string {
	parts := make([]string, len(d.Events))
	for i, event := range d.Events {
		parts[i] = event.String()
	}
	return "(" + strings.Join(parts, " or ") + ")"
}
