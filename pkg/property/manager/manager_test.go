package manager

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"vigil-hq/vigil/pkg/audit"
	"vigil-hq/vigil/pkg/telemetry/metrics"
)

func newTestManager(t *testing.T, source string) *DefaultManager {
	t.Helper()
	config := DefaultConfig()
	config.Source = source
	config.DebounceInterval = 20 * time.Millisecond

	m, err := New(config, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestManager_New(t *testing.T) {
	if _, err := New(nil, nil, nil, nil); err == nil {
		t.Error("nil config accepted")
	}
	if _, err := New(DefaultConfig(), nil, nil, nil); err == nil {
		t.Error("config without source accepted")
	}
}

func TestManager_Load(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "spec.yaml", validDoc)

	m := newTestManager(t, dir)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := len(m.Properties()); got != 1 {
		t.Fatalf("Properties() = %d, want 1", got)
	}
	if _, ok := m.Property("ack-requests"); !ok {
		t.Error("Property(ack-requests) not found")
	}
	if m.Version() == "" {
		t.Error("empty version after load")
	}
	if m.LastResult() == nil {
		t.Error("LastResult() is nil after a successful load")
	}
}

func TestManager_FailedReloadKeepsLastGoodSet(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "spec.yaml", validDoc)

	m := newTestManager(t, dir)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	version := m.Version()

	writeDoc(t, dir, "spec.yaml", invalidDoc)
	_ = path
	if err := m.Reload(); err == nil {
		t.Fatal("reload of an invalid document succeeded")
	}

	if got := len(m.Properties()); got != 1 {
		t.Errorf("Properties() = %d after failed reload, want the previous 1", got)
	}
	if m.Version() != version {
		t.Error("failed reload changed the registered version")
	}
}

func TestManager_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "spec.yaml", validDoc)

	m := newTestManager(t, dir)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	version := m.Version()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	time.Sleep(50 * time.Millisecond)
	writeDoc(t, dir, "extra.yaml", warningDoc)

	deadline := time.After(2 * time.Second)
	for m.Version() == version {
		select {
		case <-deadline:
			t.Fatal("watch never picked up the new document")
		case <-time.After(20 * time.Millisecond):
		}
	}
	if got := len(m.Properties()); got != 2 {
		t.Errorf("Properties() = %d after reload, want 2", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestManager_WatchRejectsBadSchedule(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "spec.yaml", validDoc)

	config := DefaultConfig()
	config.Source = dir
	config.RescanSchedule = "not a schedule"

	m, err := New(config, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Watch(context.Background()); err == nil {
		t.Fatal("invalid rescan schedule accepted")
	}
}

func TestManager_ScheduledRescan(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "spec.yaml", validDoc)

	config := DefaultConfig()
	config.Source = dir
	config.DebounceInterval = 20 * time.Millisecond
	config.RescanSchedule = "@every 100ms"

	m, err := New(config, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	// A rescan picks up documents written without touching watched
	// paths' events, eventually changing the version.
	time.Sleep(50 * time.Millisecond)
	version := m.Version()
	writeDoc(t, dir, "later.yaml", warningDoc)

	deadline := time.After(3 * time.Second)
	for m.Version() == version {
		select {
		case <-deadline:
			t.Fatal("scheduled rescan never ran")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	<-done
	m.Close()
}

func TestManager_MetricsWiring(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "spec.yaml", validDoc)
	writeDoc(t, dir, "warn.yaml", warningDoc)

	config := DefaultConfig()
	config.Source = dir

	collector := metrics.NewCollector(nil, nil)
	m, err := New(config, nil, collector, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	// The gauge mirrors the registry; both documents were accepted.
	if got := len(m.Properties()); got != 2 {
		t.Fatalf("Properties() = %d, want 2", got)
	}
}

func TestManager_AuditTrail(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "spec.yaml", validDoc)
	writeDoc(t, dir, "warn.yaml", warningDoc)

	m := newTestManager(t, dir)
	store := audit.NewMemoryStore()
	m.SetAuditStore(store)

	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	records, err := store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Recent = %d records, want one per property", len(records))
	}
	for _, record := range records {
		if !record.Accepted {
			t.Errorf("record %s not accepted", record.PropertyID)
		}
		if record.SetVersion != m.Version() {
			t.Errorf("record %s version = %q, want %q", record.PropertyID, record.SetVersion, m.Version())
		}
	}
}

func TestManager_ConcurrentReaders(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "spec.yaml", validDoc)

	m := newTestManager(t, dir)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var stop atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		for !stop.Load() {
			m.Properties()
			m.Version()
			m.Property("ack-requests")
		}
	}()

	for i := 0; i < 10; i++ {
		if err := m.Reload(); err != nil {
			t.Fatalf("Reload: %v", err)
		}
	}
	stop.Store(true)
	<-done
}
