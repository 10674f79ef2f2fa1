package store

import (
	"log"
	"sync/atomic"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
)

// #region recorder
// Recorder is a render sink that persists every Nth frame and every event
// of a session. Each snapshot also carries the measured FPS of every tick
// since the previous one, so a sparse recording still replays exactly. Write failures are logged and counted, never returned, so
// a full disk does not stop the field.
type Recorder struct {
	store     *Store
	sessionID string
	every     uint64
	lastTick  uint64
	pending   []float64 // FPS of ticks not yet covered by a snapshot

	snapshots atomic.Uint64
	events    atomic.Uint64
	failures  atomic.Uint64
}

// NewRecorder records into sessionID. every < 1 records every frame.
func NewRecorder(store *Store, sessionID string, every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{store: store, sessionID: sessionID, every: uint64(every)}
}

// SessionID returns the session this recorder writes to.
func (r *Recorder) SessionID() string { return r.sessionID }

// Render persists out's events and, on sampled ticks, a snapshot.
func (r *Recorder) Render(out orchestrator.FrameOutput) error {
	for _, ev := range out.Events {
		err := r.store.LogEvent(EventRecord{
			SessionID: r.sessionID,
			Tick:      out.Tick,
			Kind:      string(ev.Kind),
			Detail:    ev.Detail,
		})
		if err != nil {
			r.fail(out.Tick, err)
			continue
		}
		r.events.Add(1)
	}

	// A tick that does not advance means the session was reset.
	if out.Tick <= r.lastTick {
		r.pending = r.pending[:0]
	}
	r.lastTick = out.Tick
	r.pending = append(r.pending, out.Summary.FPS)

	if out.Tick%r.every != 0 && out.Tick != 1 {
		return nil
	}
	frameFPS := make([]float64, len(r.pending))
	copy(frameFPS, r.pending)
	r.pending = r.pending[:0]
	err := r.store.RecordSnapshot(SnapshotRecord{
		SessionID:     r.sessionID,
		Tick:          out.Tick,
		State:         out.State,
		Intensity:     out.Summary.Intensity,
		Dominant:      out.Summary.Dominant.String(),
		QualityLevel:  out.Summary.QualityLevel,
		ParticleCount: out.Summary.ParticleCount,
		FPS:           out.Summary.FPS,
		FrameFPS:      frameFPS,
	})
	if err != nil {
		r.fail(out.Tick, err)
		return nil
	}
	r.snapshots.Add(1)
	return nil
}

// Counts reports rows written and failed writes.
func (r *Recorder) Counts() (snapshots, events, failures uint64) {
	return r.snapshots.Load(), r.events.Load(), r.failures.Load()
}

func (r *Recorder) fail(tick uint64, err error) {
	// Log the first failure and then every hundredth to keep the log readable.
	if n := r.failures.Add(1); n == 1 || n%100 == 0 {
		log.Printf("[STORE] tick %d: %v (failures=%d)", tick, err, n)
	}
}
// #endregion recorder
