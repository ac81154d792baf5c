package interfaces

import "active-etf-analyzer/internal/types"

// SnapshotStore persists the daily consensus table and serves the
// previous trading day's table back as the diff baseline.
type SnapshotStore interface {
	// Load returns the snapshot for the previous non-weekend calendar day
	// relative to date. ok is false when no usable snapshot exists; that
	// is a normal first-run condition, not an error.
	Load(date string) (rows []types.ConsensusRow, ok bool, err error)

	// Save writes the consensus table under the date key, replacing any
	// existing snapshot for that date.
	Save(rows []types.ConsensusRow, date string) (path string, err error)
}
