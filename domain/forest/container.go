package forest

import (
	"gobart/domain/core"
)

// SnapshotContainer is the append-only history of retained forests, one
// entry per kept MCMC iteration. Entries are immutable copies: the active
// forest keeps mutating after an append without affecting stored snapshots.
// Single-writer: only the MCMC driver appends.
type SnapshotContainer struct {
	id        core.SnapshotID
	snapshots []*Forest
}

// NewSnapshotContainer creates an empty container
func NewSnapshotContainer() *SnapshotContainer {
	return &SnapshotContainer{id: core.SnapshotID(core.NewID())}
}

// ID returns the container identifier
func (c *SnapshotContainer) ID() core.SnapshotID { return c.id }

// Append stores an immutable copy of the forest
func (c *SnapshotContainer) Append(f *Forest) {
	c.snapshots = append(c.snapshots, f.Clone())
}

// Len returns the number of retained forests
func (c *SnapshotContainer) Len() int { return len(c.snapshots) }

// Snapshot returns the i-th retained forest
func (c *SnapshotContainer) Snapshot(i int) *Forest { return c.snapshots[i] }

// PredictMatrix routes each row through every retained forest, returning a
// len(rows) x Len() matrix of per-snapshot predictions.
func (c *SnapshotContainer) PredictMatrix(rows [][]float64) ([][]float64, error) {
	if len(c.snapshots) == 0 {
		return nil, core.ErrNotSampled
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(c.snapshots))
		for s, f := range c.snapshots {
			out[i][s] = f.Predict(row)
		}
	}
	return out, nil
}
