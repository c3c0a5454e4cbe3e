package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/vertextoedge/diskwatch/internal/diskutil"
	"github.com/vertextoedge/diskwatch/internal/port"
)

// Path describes one directory tree to watch
type Path struct {
	Name string
	Path string
}

// Config contains watcher service configuration
type Config struct {
	// Debounce is the quiet period after filesystem events before the
	// tracked path is resampled
	Debounce time.Duration
}

// DefaultConfig returns default watcher configuration
func DefaultConfig() *Config {
	return &Config{
		Debounce: 2 * time.Second,
	}
}

// Service watches tracked directory trees for changes and asks the sampler
// to remeasure a tree once its event burst has settled
type Service struct {
	config  *Config
	paths   []Path
	sampler port.Sampler
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new watcher Service
func New(cfg *Config, paths []Path, sampler port.Sampler, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = 2 * time.Second
	}

	return &Service{
		config:  cfg,
		paths:   paths,
		sampler: sampler,
		logger:  logger,
	}
}

// Start starts the watcher service
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("watcher service already running")
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.Stop()
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer w.Close()

	watched := 0
	for _, p := range s.paths {
		if err := s.addTree(w, p.Path); err != nil {
			s.logger.Warn("failed to watch path",
				zap.String("name", p.Name),
				zap.String("path", p.Path),
				zap.Error(err))
			continue
		}
		watched++
	}

	debouncers := make(map[string]*diskutil.Debouncer[string], len(s.paths))
	for _, p := range s.paths {
		debouncers[p.Name] = diskutil.NewDebouncer(s.config.Debounce, s.sampler.SampleNow)
	}

	s.logger.Info("watcher service started",
		zap.Int("paths", watched),
		zap.Duration("debounce", s.config.Debounce))

	s.wg.Add(1)
	go s.eventLoop(ctx, w, debouncers)

	<-ctx.Done()
	s.wg.Wait()

	for _, d := range debouncers {
		d.Stop()
	}
	s.logger.Info("watcher service stopped")
	return nil
}

// Stop stops the watcher service
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
}

// eventLoop dispatches filesystem events into per-path debouncers
func (s *Service) eventLoop(ctx context.Context, w *fsnotify.Watcher, debouncers map[string]*diskutil.Debouncer[string]) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// New directories must be registered before events inside
			// them can be seen.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
					if err := s.addTree(w, event.Name); err != nil {
						s.logger.Warn("failed to watch new directory",
							zap.String("path", event.Name),
							zap.Error(err))
					}
				}
			}

			name, ok := s.rootFor(event.Name)
			if !ok {
				continue
			}
			if d := debouncers[name]; d != nil {
				d.Call(name)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("filesystem watcher error", zap.Error(err))
		}
	}
}

// addTree registers root and every directory below it with the watcher
func (s *Service) addTree(w *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn("skipping unwatchable entry",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			s.logger.Warn("failed to add watch",
				zap.String("path", path),
				zap.Error(err))
		}
		return nil
	})
}

// rootFor maps an event path to the tracked path containing it. Nested
// roots resolve to the most specific one.
func (s *Service) rootFor(path string) (string, bool) {
	bestName := ""
	bestLen := -1
	for _, p := range s.paths {
		if path != p.Path && !strings.HasPrefix(path, p.Path+string(filepath.Separator)) {
			continue
		}
		if len(p.Path) > bestLen {
			bestName = p.Name
			bestLen = len(p.Path)
		}
	}
	return bestName, bestLen >= 0
}
