package store

import (
	"time"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// #region session-record
// SessionRecord is one run of the frame loop.
type SessionRecord struct {
	ID         string
	Kind       string
	ConfigJSON string
	StartedAt  time.Time
}
// #endregion session-record

// #region snapshot-record
// SnapshotRecord is a sampled frame: the affect vector plus the budget
// and timing that produced it.
type SnapshotRecord struct {
	SessionID     string
	Tick          uint64
	State         affect.State
	Intensity     float64
	Dominant      string
	QualityLevel  float64
	ParticleCount int
	FPS           float64
	FrameFPS      []float64 // measured FPS of every tick since the previous snapshot, this one last
	CreatedAt     time.Time
}
// #endregion snapshot-record

// #region event-record
// EventRecord is a single row in the events table.
type EventRecord struct {
	SessionID string
	Tick      uint64
	Kind      string // "analysis_merge" | "analysis_reject" | "distribution_fallback" | "budget_change" | "kind_change"
	Detail    string
	CreatedAt time.Time
}
// #endregion event-record
