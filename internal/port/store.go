package port

import (
	"time"

	"github.com/vertextoedge/diskwatch/internal/domain"
)

// Store defines the interface for snapshot persistence operations
type Store interface {
	// SaveSnapshot persists a snapshot and assigns its ID
	SaveSnapshot(snap *domain.Snapshot) error

	// LatestSnapshots returns the most recent snapshot for every tracked
	// path that has at least one recorded measurement
	LatestSnapshots() ([]*domain.Snapshot, error)

	// History returns up to limit snapshots for the named path, newest first
	History(name string, limit int) ([]*domain.Snapshot, error)

	// PruneOlderThan removes snapshots sampled before the cutoff and
	// returns the number of rows removed
	PruneOlderThan(cutoff time.Time) (int64, error)

	// Ping checks database connectivity
	Ping() error

	// Close closes the database connection
	Close() error
}
