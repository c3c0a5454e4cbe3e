package port

import (
	"github.com/vertextoedge/diskwatch/internal/domain"
)

// SpaceChecker answers whether a file of a given size would fit into a
// tracked path without breaking its size budget or the disk usage limit.
type SpaceChecker interface {
	// CheckSpace checks if there's enough room for a file of the given
	// size in the named path and returns detailed information about
	// space availability. Returns domain.ErrUnknownPath for names that
	// are not tracked.
	CheckSpace(name string, fileSize int64) (*domain.SpaceCheckResult, error)
}
