package domain

import "time"

// Snapshot is one measurement of a tracked path: how much disk space the
// filesystem holding it has left and how many bytes the directory tree
// itself occupies. AvailableBytes is -1 when the space query failed at
// sampling time.
type Snapshot struct {
	ID             int64
	Name           string
	Path           string
	AvailableBytes int64
	DirSizeBytes   int64
	SampledAt      time.Time
}

// SpaceKnown reports whether the space query succeeded for this snapshot.
func (s *Snapshot) SpaceKnown() bool {
	return s.AvailableBytes >= 0
}
