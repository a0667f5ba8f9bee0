package ast

import (
	"reflect"
	"testing"
	"time"

	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
)

func mustResponse(t *testing.T, trigger, behaviour Event) *Pattern {
	t.Helper()
	p, err := NewResponse(trigger, behaviour)
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	return p
}

func TestScopeConstruction(t *testing.T) {
	activator := mustAtomicEvent(t, "topic/start", "s", nil)
	terminator := mustAtomicEvent(t, "topic/stop", "", nil)

	t.Run("globally", func(t *testing.T) {
		s := Globally()
		if !s.IsGlobal() || s.Activator != nil || s.Terminator != nil {
			t.Error("Globally() is not the unbounded scope")
		}
	})
	t.Run("after", func(t *testing.T) {
		s, err := After(activator)
		if err != nil {
			t.Fatalf("After: %v", err)
		}
		if s.ScopeKind != ScopeAfter || s.Activator == nil || s.Terminator != nil {
			t.Errorf("unexpected scope shape: %s", s)
		}
	})
	t.Run("after-until", func(t *testing.T) {
		s, err := AfterUntil(activator, terminator)
		if err != nil {
			t.Fatalf("AfterUntil: %v", err)
		}
		if len(s.Children()) != 2 {
			t.Errorf("Children() = %d nodes, want 2", len(s.Children()))
		}
	})
	t.Run("missing events rejected", func(t *testing.T) {
		for name, err := range map[string]error{
			"after nil":       func() error { _, err := After(nil); return err }(),
			"until nil":       func() error { _, err := Until(nil); return err }(),
			"after-until nil": func() error { _, err := AfterUntil(activator, nil); return err }(),
		} {
			if err == nil {
				t.Fatalf("%s: expected error, got nil", name)
			}
			if code := constructionCode(t, err); code != vplErrors.CodeInvalidScope {
				t.Errorf("%s: code = %s, want %s", name, code, vplErrors.CodeInvalidScope)
			}
		}
	})
}

func TestPatternConstruction(t *testing.T) {
	behaviour := mustAtomicEvent(t, "topic/b", "b", nil)
	trigger := mustAtomicEvent(t, "topic/t", "t", nil)

	t.Run("single-event kinds reject nil behaviour", func(t *testing.T) {
		if _, err := NewAbsence(nil); err == nil {
			t.Error("NewAbsence(nil) accepted")
		}
		if _, err := NewExistence(nil); err == nil {
			t.Error("NewExistence(nil) accepted")
		}
	})
	t.Run("triggered kinds reject nil events", func(t *testing.T) {
		if _, err := NewResponse(nil, behaviour); err == nil {
			t.Error("NewResponse with nil trigger accepted")
		}
		if _, err := NewRequirement(behaviour, nil); err == nil {
			t.Error("NewRequirement with nil trigger accepted")
		}
		if _, err := NewPrevention(trigger, nil); err == nil {
			t.Error("NewPrevention with nil behaviour accepted")
		}
	})
	t.Run("time bounds", func(t *testing.T) {
		p := mustResponse(t, trigger, behaviour)
		if _, err := p.WithTimeBound(2*time.Second, time.Second); err == nil {
			t.Error("inverted bound accepted")
		}
		if _, err := p.WithTimeBound(0, 5*time.Second); err != nil {
			t.Fatalf("WithTimeBound: %v", err)
		}
		if !p.HasMaxTime() {
			t.Error("HasMaxTime() = false after setting an upper bound")
		}
	})
}

func TestPatternKindClassification(t *testing.T) {
	tests := []struct {
		kind       PatternKind
		safety     bool
		hasTrigger bool
	}{
		{PatternAbsence, true, false},
		{PatternExistence, false, false},
		{PatternResponse, false, true},
		{PatternRequirement, true, true},
		{PatternPrevention, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if !tt.kind.Known() {
				t.Fatal("kind not in catalog")
			}
			if tt.kind.IsSafety() != tt.safety {
				t.Errorf("IsSafety() = %v, want %v", tt.kind.IsSafety(), tt.safety)
			}
			if tt.kind.IsLiveness() == tt.safety {
				t.Error("IsLiveness() should complement IsSafety() for known kinds")
			}
			if tt.kind.HasTrigger() != tt.hasTrigger {
				t.Errorf("HasTrigger() = %v, want %v", tt.kind.HasTrigger(), tt.hasTrigger)
			}
		})
	}
	if PatternKind("invariant").Known() {
		t.Error("unknown kind reported as known")
	}
}

func TestProperty_EventsOrder(t *testing.T) {
	activator := mustAtomicEvent(t, "topic/start", "s", nil)
	terminator := mustAtomicEvent(t, "topic/stop", "", nil)
	trigger := mustAtomicEvent(t, "topic/t", "t", nil)
	behaviour := mustAtomicEvent(t, "topic/b", "b", nil)

	scope, err := AfterUntil(activator, terminator)
	if err != nil {
		t.Fatalf("AfterUntil: %v", err)
	}
	prop, err := NewProperty(scope, mustResponse(t, trigger, behaviour))
	if err != nil {
		t.Fatalf("NewProperty: %v", err)
	}

	var channels []string
	for _, e := range prop.Events() {
		channels = append(channels, e.Channels()...)
	}
	want := []string{"topic/start", "topic/b", "topic/t", "topic/stop"}
	if !reflect.DeepEqual(channels, want) {
		t.Errorf("event channels = %v, want %v", channels, want)
	}
}

func TestProperty_CloneIsolation(t *testing.T) {
	trigger := mustAtomicEvent(t, "topic/t", "t", nil)
	behaviour := mustAtomicEvent(t, "topic/b", "b", predicateOn(t, "t"))
	prop, err := NewProperty(Globally(), mustResponse(t, trigger, behaviour))
	if err != nil {
		t.Fatalf("NewProperty: %v", err)
	}
	prop.Metadata["id"] = "p1"

	dup := prop.Clone().(*Property)
	if !prop.Equals(dup) {
		t.Fatal("clone is not structurally equal")
	}
	if prop.ID() == dup.ID() {
		t.Error("clone shares identity")
	}
	dup.Metadata["id"] = "p2"
	if prop.UID() != "p1" {
		t.Error("mutating clone metadata changed the original")
	}

	repl := mustAtomicEvent(t, "topic/z", "z", nil)
	if err := dup.Pattern.ReplaceChild(dup.Pattern.Behaviour.ID(), repl); err != nil {
		t.Fatalf("ReplaceChild: %v", err)
	}
	if prop.Equals(dup) {
		t.Error("mutating the clone changed the original")
	}
}

func TestSpecification(t *testing.T) {
	p1, err := NewProperty(Globally(), mustResponse(t,
		mustAtomicEvent(t, "topic/t", "t", nil),
		mustAtomicEvent(t, "topic/b", "", nil)))
	if err != nil {
		t.Fatalf("NewProperty: %v", err)
	}
	p2 := p1.Clone().(*Property)

	spec := NewSpecification(p1, p2)
	if len(spec.Children()) != 2 {
		t.Fatalf("Children() = %d nodes, want 2", len(spec.Children()))
	}
	if !spec.Equals(spec.Clone()) {
		t.Error("clone is not structurally equal")
	}

	p3 := p1.Clone().(*Property)
	if err := spec.ReplaceChild(p2.ID(), p3); err != nil {
		t.Fatalf("ReplaceChild: %v", err)
	}
	if spec.Properties[1] != p3 {
		t.Error("ReplaceChild did not swap the property")
	}
}
