package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/diskwatch/internal/diskutil"
	"github.com/vertextoedge/diskwatch/internal/domain"
)

// mockStore implements port.Store for testing
type mockStore struct {
	mu          sync.Mutex
	saved       []*domain.Snapshot
	saveErr     error
	pruneCalled int
	pruneCount  int64
	pruneErr    error
}

func (m *mockStore) SaveSnapshot(snap *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *snap
	m.saved = append(m.saved, &copied)
	snap.ID = int64(len(m.saved))
	return nil
}

func (m *mockStore) LatestSnapshots() ([]*domain.Snapshot, error) { return nil, nil }

func (m *mockStore) History(name string, limit int) ([]*domain.Snapshot, error) {
	return nil, nil
}

func (m *mockStore) PruneOlderThan(cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneCalled++
	return m.pruneCount, m.pruneErr
}

func (m *mockStore) Ping() error  { return nil }
func (m *mockStore) Close() error { return nil }

func (m *mockStore) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func (m *mockStore) lastSaved() *domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

func writeTestFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("failed to write test file %s: %v", path, err)
	}
}

func TestService_New(t *testing.T) {
	logger := zap.NewNop()
	store := &mockStore{}

	// Test with nil config (should use defaults)
	s := New(nil, nil, store, logger)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.config.SampleInterval != time.Minute {
		t.Errorf("SampleInterval = %v, want %v", s.config.SampleInterval, time.Minute)
	}
	if s.config.MaxDiskUsagePct != 90 {
		t.Errorf("MaxDiskUsagePct = %v, want 90", s.config.MaxDiskUsagePct)
	}

	// Test with custom config
	cfg := &Config{
		SampleInterval:  10 * time.Second,
		Debounce:        time.Second,
		MaxDiskUsagePct: 75,
		CleanupInterval: 30 * time.Minute,
		Retention:       24 * time.Hour,
		PruneInterval:   10 * time.Minute,
	}
	s = New(cfg, nil, store, logger)
	if s.config.SampleInterval != 10*time.Second {
		t.Errorf("SampleInterval = %v, want %v", s.config.SampleInterval, 10*time.Second)
	}
	if s.config.MaxDiskUsagePct != 75 {
		t.Errorf("MaxDiskUsagePct = %v, want 75", s.config.MaxDiskUsagePct)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SampleInterval != time.Minute {
		t.Errorf("SampleInterval = %v, want %v", cfg.SampleInterval, time.Minute)
	}
	if cfg.Debounce != 2*time.Second {
		t.Errorf("Debounce = %v, want %v", cfg.Debounce, 2*time.Second)
	}
	if cfg.MaxDiskUsagePct != 90 {
		t.Errorf("MaxDiskUsagePct = %v, want 90", cfg.MaxDiskUsagePct)
	}
	if cfg.Retention != 168*time.Hour {
		t.Errorf("Retention = %v, want %v", cfg.Retention, 168*time.Hour)
	}
}

func TestService_StartStop(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "data.bin"), 5)

	logger := zap.NewNop()
	store := &mockStore{}
	cfg := &Config{
		SampleInterval:  20 * time.Millisecond,
		Debounce:        time.Second,
		MaxDiskUsagePct: 90,
		CleanupInterval: time.Hour,
		Retention:       time.Hour,
		PruneInterval:   time.Hour,
	}
	s := New(cfg, []Path{{Name: "downloads", Path: dir}}, store, logger)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	// Wait for the initial sample plus at least one tick
	time.Sleep(100 * time.Millisecond)

	cancel()
	s.Stop()

	select {
	case <-done:
		// Success
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after Stop()")
	}

	if store.savedCount() < 2 {
		t.Errorf("saved %d snapshots, want at least 2", store.savedCount())
	}

	snap := store.lastSaved()
	if snap.Name != "downloads" || snap.Path != dir {
		t.Errorf("snapshot identifies %s/%s, want downloads/%s", snap.Name, snap.Path, dir)
	}
	if snap.DirSizeBytes != 5 {
		t.Errorf("DirSizeBytes = %d, want 5", snap.DirSizeBytes)
	}
	if snap.AvailableBytes <= 0 {
		t.Errorf("AvailableBytes = %d, want > 0", snap.AvailableBytes)
	}
	if snap.SampledAt.IsZero() {
		t.Error("SampledAt is zero")
	}
}

func TestService_DoubleStart(t *testing.T) {
	logger := zap.NewNop()
	store := &mockStore{}
	s := New(nil, []Path{{Name: "downloads", Path: t.TempDir()}}, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		s.Start(ctx)
	}()
	time.Sleep(10 * time.Millisecond)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err == nil {
			t.Error("second Start() returned nil, want error")
		}
	case <-time.After(time.Second):
		t.Fatal("second Start() did not return")
	}
}

func TestService_SampleNow(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "data.bin"), 42)

	logger := zap.NewNop()
	store := &mockStore{}
	s := New(nil, []Path{{Name: "downloads", Path: dir}}, store, logger)

	s.SampleNow("downloads")
	if store.savedCount() != 1 {
		t.Fatalf("saved %d snapshots, want 1", store.savedCount())
	}
	if got := store.lastSaved().DirSizeBytes; got != 42 {
		t.Errorf("DirSizeBytes = %d, want 42", got)
	}

	// Unknown names are ignored
	s.SampleNow("nope")
	if store.savedCount() != 1 {
		t.Errorf("saved %d snapshots after unknown name, want still 1", store.savedCount())
	}
}

func TestService_OnChangeDebounced(t *testing.T) {
	dir := t.TempDir()

	logger := zap.NewNop()
	store := &mockStore{}
	cfg := &Config{Debounce: 30 * time.Millisecond}
	s := New(cfg, []Path{{Name: "downloads", Path: dir}}, store, logger)

	var mu sync.Mutex
	var got []domain.Snapshot
	s.OnChange(func(snap domain.Snapshot) {
		mu.Lock()
		got = append(got, snap)
		mu.Unlock()
	})

	// A burst of samples collapses into one trailing notification.
	s.SampleNow("downloads")
	s.SampleNow("downloads")
	s.SampleNow("downloads")

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("got %d notifications, want 1", len(got))
	}
	if got[0].Name != "downloads" {
		t.Errorf("notification for %q, want downloads", got[0].Name)
	}

	// The store still received every sample.
	if store.savedCount() != 3 {
		t.Errorf("saved %d snapshots, want 3", store.savedCount())
	}
}

func TestService_PruneLoop(t *testing.T) {
	logger := zap.NewNop()
	store := &mockStore{pruneCount: 2}
	cfg := &Config{
		SampleInterval:  time.Hour, // Long interval so only the initial sample runs
		Debounce:        time.Second,
		MaxDiskUsagePct: 90,
		CleanupInterval: time.Hour,
		Retention:       time.Hour,
		PruneInterval:   10 * time.Millisecond,
	}
	s := New(cfg, []Path{{Name: "downloads", Path: t.TempDir()}}, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		s.Start(ctx)
	}()

	time.Sleep(60 * time.Millisecond)

	cancel()
	s.Stop()

	store.mu.Lock()
	called := store.pruneCalled
	store.mu.Unlock()

	if called == 0 {
		t.Error("PruneOlderThan was not called")
	}
}

func TestService_CleanupLoop(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)

	stale := filepath.Join(dir, "leftover.part")
	writeTestFile(t, stale, 10)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}

	logger := zap.NewNop()
	store := &mockStore{}
	cfg := &Config{
		SampleInterval:  time.Hour,
		Debounce:        time.Second,
		MaxDiskUsagePct: 90,
		CleanupInterval: 10 * time.Millisecond,
		Retention:       time.Hour,
		PruneInterval:   time.Hour,
	}
	paths := []Path{{
		Name:           "downloads",
		Path:           dir,
		CleanupEnabled: true,
		StaleSuffixes:  []string{".part"},
		StaleMaxAge:    time.Hour,
	}}
	s := New(cfg, paths, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		s.Start(ctx)
	}()

	time.Sleep(60 * time.Millisecond)

	cancel()
	s.Stop()

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file still exists, want removed by cleanup loop")
	}
}

func TestService_CheckSpace(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "existing.bin"), 600)

	logger := zap.NewNop()
	store := &mockStore{}

	t.Run("unknown path", func(t *testing.T) {
		s := New(nil, []Path{{Name: "downloads", Path: dir}}, store, logger)
		_, err := s.CheckSpace("nope", 100)
		if !errors.Is(err, domain.ErrUnknownPath) {
			t.Errorf("CheckSpace() error = %v, want ErrUnknownPath", err)
		}
	})

	t.Run("negative file size", func(t *testing.T) {
		s := New(nil, []Path{{Name: "downloads", Path: dir}}, store, logger)
		_, err := s.CheckSpace("downloads", -1)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("CheckSpace() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("limited by budget", func(t *testing.T) {
		cfg := &Config{MaxDiskUsagePct: 100}
		s := New(cfg, []Path{{Name: "downloads", Path: dir, MaxSizeBytes: 1000}}, store, logger)

		result, err := s.CheckSpace("downloads", 500)
		if err != nil {
			t.Fatalf("CheckSpace() error = %v", err)
		}
		if result.HasSpace {
			t.Error("HasSpace = true, want false")
		}
		if !result.LimitedByBudget {
			t.Error("LimitedByBudget = false, want true")
		}
		if result.DirSizeBytes != 600 {
			t.Errorf("DirSizeBytes = %d, want 600", result.DirSizeBytes)
		}
	})

	t.Run("fits within budget", func(t *testing.T) {
		cfg := &Config{MaxDiskUsagePct: 100}
		s := New(cfg, []Path{{Name: "downloads", Path: dir, MaxSizeBytes: 10000}}, store, logger)

		result, err := s.CheckSpace("downloads", 100)
		if err != nil {
			t.Fatalf("CheckSpace() error = %v", err)
		}
		if !result.HasSpace {
			t.Errorf("HasSpace = false, want true (result: %+v)", result)
		}
		if result.AvailableBytes <= 0 {
			t.Errorf("AvailableBytes = %d, want > 0", result.AvailableBytes)
		}
	})

	t.Run("unlimited budget", func(t *testing.T) {
		cfg := &Config{MaxDiskUsagePct: 100}
		s := New(cfg, []Path{{Name: "downloads", Path: dir}}, store, logger)

		result, err := s.CheckSpace("downloads", 100)
		if err != nil {
			t.Fatalf("CheckSpace() error = %v", err)
		}
		if !result.HasSpace {
			t.Errorf("HasSpace = false, want true (result: %+v)", result)
		}
	})

	t.Run("limited by disk usage", func(t *testing.T) {
		usage, err := diskutil.Usage(dir)
		if err != nil {
			t.Fatalf("Usage() error = %v", err)
		}

		cfg := &Config{MaxDiskUsagePct: 100}
		s := New(cfg, []Path{{Name: "downloads", Path: dir}}, store, logger)

		// Asking for more than the filesystem has left always projects
		// past the ceiling.
		fileSize := int64(usage.Free) + 1<<30
		result, err := s.CheckSpace("downloads", fileSize)
		if err != nil {
			t.Fatalf("CheckSpace() error = %v", err)
		}
		if result.HasSpace {
			t.Error("HasSpace = true, want false")
		}
		if !result.LimitedByDiskUsage {
			t.Error("LimitedByDiskUsage = false, want true")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "gone")
		s := New(nil, []Path{{Name: "downloads", Path: missing}}, store, logger)

		if _, err := s.CheckSpace("downloads", 100); err == nil {
			t.Error("CheckSpace() error = nil, want error for missing path")
		}
	})
}

func TestService_Tracked(t *testing.T) {
	store := &mockStore{}
	paths := []Path{
		{Name: "downloads", Path: "/var/downloads"},
		{Name: "staging", Path: "/var/staging"},
	}
	s := New(nil, paths, store, zap.NewNop())

	got := s.Tracked()
	if len(got) != 2 || got[0] != "downloads" || got[1] != "staging" {
		t.Errorf("Tracked() = %v, want [downloads staging]", got)
	}
}
