package monitor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/diskwatch/internal/diskutil"
	"github.com/vertextoedge/diskwatch/internal/domain"
	"github.com/vertextoedge/diskwatch/internal/metrics"
	"github.com/vertextoedge/diskwatch/internal/port"
)

// Path describes one directory tracked by the monitor
type Path struct {
	// Name identifies the path in snapshots, metrics and the HTTP API
	Name string

	// Path is the directory to measure
	Path string

	// MaxSizeBytes is the directory size budget, 0 for unlimited
	MaxSizeBytes int64

	// CleanupEnabled turns on stale file cleanup for this path
	CleanupEnabled bool

	// StaleSuffixes are the file name suffixes cleanup removes
	StaleSuffixes []string

	// StaleMaxAge is how old a stale file must be before removal
	StaleMaxAge time.Duration
}

// Config contains monitor service configuration
type Config struct {
	// SampleInterval is how often tracked paths are measured
	SampleInterval time.Duration

	// Debounce is the quiet period for change notifications
	Debounce time.Duration

	// MaxDiskUsagePct is the disk usage ceiling for space checks
	MaxDiskUsagePct float64

	// CleanupInterval is how often stale file cleanup runs
	CleanupInterval time.Duration

	// Retention is how long snapshots are kept
	Retention time.Duration

	// PruneInterval is how often old snapshots are pruned
	PruneInterval time.Duration
}

// DefaultConfig returns default monitor configuration
func DefaultConfig() *Config {
	return &Config{
		SampleInterval:  time.Minute,
		Debounce:        2 * time.Second,
		MaxDiskUsagePct: 90,
		CleanupInterval: time.Hour,
		Retention:       168 * time.Hour,
		PruneInterval:   time.Hour,
	}
}

// Service periodically measures tracked paths, records the snapshots and
// answers space availability checks
type Service struct {
	config *Config
	paths  []Path
	byName map[string]*Path
	store  port.Store
	logger *zap.Logger

	onChange  func(domain.Snapshot)
	notifiers map[string]*diskutil.Debouncer[domain.Snapshot]

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Ensure Service implements port.SpaceChecker and port.Sampler
var (
	_ port.SpaceChecker = (*Service)(nil)
	_ port.Sampler      = (*Service)(nil)
)

// New creates a new monitor Service
func New(cfg *Config, paths []Path, store port.Store, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.SampleInterval == 0 {
		cfg.SampleInterval = time.Minute
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = 2 * time.Second
	}
	if cfg.MaxDiskUsagePct == 0 {
		cfg.MaxDiskUsagePct = 90
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.Retention == 0 {
		cfg.Retention = 168 * time.Hour
	}
	if cfg.PruneInterval == 0 {
		cfg.PruneInterval = time.Hour
	}

	s := &Service{
		config: cfg,
		paths:  paths,
		byName: make(map[string]*Path, len(paths)),
		store:  store,
		logger: logger,
	}
	for i := range s.paths {
		s.byName[s.paths[i].Name] = &s.paths[i]
	}

	return s
}

// OnChange registers a callback that receives a snapshot whenever a tracked
// path has been resampled. Deliveries are debounced per path: a burst of
// samples collapses into one trailing notification carrying the most recent
// snapshot. Must be called before Start.
func (s *Service) OnChange(fn func(domain.Snapshot)) {
	s.onChange = fn
	if fn == nil {
		s.notifiers = nil
		return
	}

	s.notifiers = make(map[string]*diskutil.Debouncer[domain.Snapshot], len(s.paths))
	for _, p := range s.paths {
		s.notifiers[p.Name] = diskutil.NewDebouncer(s.config.Debounce, fn)
	}
}

// Start starts the monitor service
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("monitor service already running")
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("monitor service started",
		zap.Int("paths", len(s.paths)),
		zap.Duration("sample_interval", s.config.SampleInterval),
		zap.Duration("debounce", s.config.Debounce))

	s.wg.Add(1)
	go s.monitorLoop(ctx)

	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("monitor service stopped")
	return nil
}

// Stop stops the monitor service
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	for _, n := range s.notifiers {
		n.Stop()
	}
	s.running = false
}

// monitorLoop handles periodic sampling, pruning and cleanup
func (s *Service) monitorLoop(ctx context.Context) {
	defer s.wg.Done()

	// Take a first measurement right away so the store and metrics are
	// populated before the first tick.
	s.sampleAll()

	sampleTicker := time.NewTicker(s.config.SampleInterval)
	defer sampleTicker.Stop()

	pruneTicker := time.NewTicker(s.config.PruneInterval)
	defer pruneTicker.Stop()

	cleanupTicker := time.NewTicker(s.config.CleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sampleTicker.C:
			s.sampleAll()
		case <-pruneTicker.C:
			s.pruneSnapshots()
		case <-cleanupTicker.C:
			s.cleanPaths()
		}
	}
}

// SampleNow measures the named path immediately. Unknown names are ignored.
func (s *Service) SampleNow(name string) {
	p, ok := s.byName[name]
	if !ok {
		s.logger.Debug("sample requested for unknown path", zap.String("name", name))
		return
	}
	s.samplePath(p)
}

// sampleAll measures every tracked path
func (s *Service) sampleAll() {
	for i := range s.paths {
		s.samplePath(&s.paths[i])
	}
}

// samplePath measures one path, records the snapshot and notifies the
// change observer
func (s *Service) samplePath(p *Path) {
	snap := domain.Snapshot{
		Name:           p.Name,
		Path:           p.Path,
		AvailableBytes: diskutil.AvailableSpace(p.Path),
		DirSizeBytes:   diskutil.DirectorySize(p.Path),
		SampledAt:      time.Now().UTC(),
	}

	metrics.SamplesTotal.Inc()
	metrics.DirectorySizeBytes.WithLabelValues(p.Name).Set(float64(snap.DirSizeBytes))
	if snap.SpaceKnown() {
		metrics.AvailableBytes.WithLabelValues(p.Name).Set(float64(snap.AvailableBytes))
	} else {
		metrics.SampleErrorsTotal.WithLabelValues(p.Name).Inc()
	}

	if err := s.store.SaveSnapshot(&snap); err != nil {
		s.logger.Warn("failed to save snapshot",
			zap.String("name", p.Name),
			zap.Error(err))
	}

	s.logger.Debug("sampled path",
		zap.String("name", p.Name),
		zap.Int64("available_bytes", snap.AvailableBytes),
		zap.Int64("dir_size_bytes", snap.DirSizeBytes))

	if n := s.notifiers[p.Name]; n != nil {
		n.Call(snap)
	}
}

// pruneSnapshots removes history older than the retention period
func (s *Service) pruneSnapshots() {
	cutoff := time.Now().UTC().Add(-s.config.Retention)
	pruned, err := s.store.PruneOlderThan(cutoff)
	if err != nil {
		s.logger.Error("failed to prune snapshots", zap.Error(err))
		return
	}
	if pruned > 0 {
		metrics.SnapshotsPrunedTotal.Add(float64(pruned))
		s.logger.Info("pruned old snapshots", zap.Int64("count", pruned))
	}
}

// cleanPaths removes stale partial files and empty directories from tracked
// paths that have cleanup enabled
func (s *Service) cleanPaths() {
	for i := range s.paths {
		p := &s.paths[i]
		if !p.CleanupEnabled {
			continue
		}

		files, err := diskutil.CleanStaleFiles(p.Path, p.StaleSuffixes, p.StaleMaxAge)
		if err != nil {
			s.logger.Error("failed to clean stale files",
				zap.String("name", p.Name),
				zap.Error(err))
		} else if files > 0 {
			metrics.StaleFilesRemovedTotal.WithLabelValues(p.Name).Add(float64(files))
			s.logger.Info("cleaned stale files",
				zap.String("name", p.Name),
				zap.Int("count", files))
		}

		dirs, err := diskutil.CleanEmptyDirs(p.Path)
		if err != nil {
			s.logger.Error("failed to clean empty dirs",
				zap.String("name", p.Name),
				zap.Error(err))
		} else if dirs > 0 {
			s.logger.Info("cleaned empty dirs",
				zap.String("name", p.Name),
				zap.Int("count", dirs))
		}
	}
}

// CheckSpace checks if there's enough room for a file of the given size in
// the named path. The decision order is the path's size budget first, then
// the current disk usage ceiling, then the usage the new file would project.
func (s *Service) CheckSpace(name string, fileSize int64) (*domain.SpaceCheckResult, error) {
	if fileSize < 0 {
		return nil, fmt.Errorf("%w: negative file size %d", domain.ErrInvalidInput, fileSize)
	}

	p, ok := s.byName[name]
	if !ok {
		return nil, domain.ErrUnknownPath
	}

	result := &domain.SpaceCheckResult{
		FileSizeBytes:   fileSize,
		MaxSizeBytes:    p.MaxSizeBytes,
		MaxDiskUsagePct: s.config.MaxDiskUsagePct,
	}

	// Check directory size budget
	dirSize := diskutil.DirectorySize(p.Path)
	result.DirSizeBytes = dirSize

	if p.MaxSizeBytes > 0 && dirSize+fileSize > p.MaxSizeBytes {
		result.LimitedByBudget = true
		return result, nil
	}

	// Check disk usage limit
	usage, err := diskutil.Usage(p.Path)
	if err != nil {
		return nil, err
	}
	result.DiskUsedPct = usage.UsedPct
	if usage.Free > math.MaxInt64 {
		result.AvailableBytes = math.MaxInt64
	} else {
		result.AvailableBytes = int64(usage.Free)
	}

	if usage.UsedPct >= s.config.MaxDiskUsagePct {
		result.LimitedByDiskUsage = true
		return result, nil
	}

	// Check if adding this file would exceed the disk limit
	newUsedPct := float64(usage.Used+uint64(fileSize)) / float64(usage.Total) * 100
	if newUsedPct >= s.config.MaxDiskUsagePct {
		result.LimitedByDiskUsage = true
		return result, nil
	}

	result.HasSpace = true
	return result, nil
}

// Tracked returns the names of all tracked paths in configuration order
func (s *Service) Tracked() []string {
	names := make([]string, len(s.paths))
	for i, p := range s.paths {
		names[i] = p.Name
	}
	return names
}
