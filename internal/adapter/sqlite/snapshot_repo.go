package sqlite

import (
	"time"

	"github.com/vertextoedge/diskwatch/internal/domain"
)

// SaveSnapshot persists a snapshot and assigns its ID
func (s *Store) SaveSnapshot(snap *domain.Snapshot) error {
	query := `
		INSERT INTO snapshots (name, path, available_bytes, dir_size_bytes, sampled_at)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := s.db.Exec(query,
		snap.Name, snap.Path, snap.AvailableBytes, snap.DirSizeBytes, snap.SampledAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	snap.ID = id

	return nil
}

// LatestSnapshots returns the most recent snapshot for every tracked path
// that has at least one recorded measurement
func (s *Store) LatestSnapshots() ([]*domain.Snapshot, error) {
	query := `
		SELECT id, name, path, available_bytes, dir_size_bytes, sampled_at
		FROM snapshots
		WHERE id IN (SELECT MAX(id) FROM snapshots GROUP BY name)
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*domain.Snapshot
	for rows.Next() {
		snap := &domain.Snapshot{}
		if err := rows.Scan(
			&snap.ID, &snap.Name, &snap.Path,
			&snap.AvailableBytes, &snap.DirSizeBytes, &snap.SampledAt,
		); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// History returns up to limit snapshots for the named path, newest first
func (s *Store) History(name string, limit int) ([]*domain.Snapshot, error) {
	query := `
		SELECT id, name, path, available_bytes, dir_size_bytes, sampled_at
		FROM snapshots
		WHERE name = ?
		ORDER BY sampled_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*domain.Snapshot
	for rows.Next() {
		snap := &domain.Snapshot{}
		if err := rows.Scan(
			&snap.ID, &snap.Name, &snap.Path,
			&snap.AvailableBytes, &snap.DirSizeBytes, &snap.SampledAt,
		); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// PruneOlderThan removes snapshots sampled before the cutoff and returns
// the number of rows removed
func (s *Store) PruneOlderThan(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM snapshots WHERE sampled_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
