package replay

import (
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/store"
)

// #region session-replay

// Session is a recorded run reduced to what Replay needs.
type Session struct {
	ID        string
	Config    orchestrator.Config
	Snapshots []store.SnapshotRecord
}

// LoadSession reads a session's config and all of its snapshots. A
// session stored without config replays with the defaults.
func LoadSession(st *store.Store, sessionID string) (*Session, error) {
	rec, err := st.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	cfg := orchestrator.DefaultConfig()
	if rec.ConfigJSON != "" {
		if err := json.Unmarshal([]byte(rec.ConfigJSON), &cfg); err != nil {
			return nil, fmt.Errorf("parse session config: %w", err)
		}
	}
	snaps, err := st.ListSnapshots(sessionID, -1)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("session %s has no snapshots", sessionID)
	}
	return &Session{ID: rec.ID, Config: cfg, Snapshots: snaps}, nil
}

// Frames rebuilds the frame-time profile of the session. The budget only
// depends on frame timing, so the pointer stays centred. Each snapshot's
// recorded per-tick FPS fills the ticks since the previous snapshot; a
// snapshot without them reuses its own FPS for the whole gap. Repeated
// ticks, left by a mid-run reset, keep their first snapshot.
func (s *Session) Frames() []Frame {
	frames, _ := s.profile()
	return frames
}

// Expectations pins the budget recorded at each snapshot whose timing
// profile, and every one before it, was rebuilt exactly. Budgets after an
// approximated gap are not checked.
func (s *Session) Expectations() []Expectation {
	_, exact := s.profile()
	var out []Expectation
	for _, snap := range exact {
		out = append(out, Expectation{
			Tick:           snap.Tick,
			ParticleCount:  snap.ParticleCount,
			QualityLevel:   snap.QualityLevel,
			EffectsEnabled: snap.QualityLevel > s.Config.Governor.EffectsThreshold,
		})
	}
	return out
}

// Approximated reports whether any gap had to be filled without recorded
// per-tick timings.
func (s *Session) Approximated() bool {
	_, exact := s.profile()
	n := 0
	var tick uint64
	for _, snap := range s.Snapshots {
		if snap.Tick > tick {
			tick = snap.Tick
			n++
		}
	}
	return len(exact) < n
}

// profile returns the rebuilt frames and the snapshots covered by an
// exact profile.
func (s *Session) profile() ([]Frame, []store.SnapshotRecord) {
	var frames []Frame
	var exact []store.SnapshotRecord
	var elapsed float64
	var tick uint64
	inexact := false
	for _, snap := range s.Snapshots {
		if snap.Tick <= tick {
			continue
		}
		gap := snap.Tick - tick
		recorded := uint64(len(snap.FrameFPS)) == gap
		for i := uint64(0); i < gap; i++ {
			fps := snap.FPS
			if recorded {
				fps = snap.FrameFPS[i]
			}
			ms := frameTimeFor(fps, s.Config.Governor.TargetFPS)
			elapsed += ms
			frames = append(frames, Frame{
				Input:       orchestrator.InputSample{PointerX: 0.5, PointerY: 0.5, SessionElapsedMs: elapsed},
				FrameTimeMs: ms,
			})
		}
		tick = snap.Tick
		if !recorded && gap > 1 {
			inexact = true
		}
		if !inexact {
			exact = append(exact, snap)
		}
	}
	return frames, exact
}

// Fixture converts the session into a replay fixture. Expectations are
// taken from a replay of the rebuilt profile, every Nth tick, so the
// fixture always passes against the code that exported it.
func (s *Session) Fixture(every int) (*Fixture, error) {
	frames := s.Frames()
	results, err := Replay(s.Config, frames)
	if err != nil {
		return nil, err
	}
	g := s.Config.Governor
	f := &Fixture{
		Description: fmt.Sprintf("exported from session %s", s.ID),
		Config: FixtureConfig{
			Kind:             string(s.Config.Kind),
			AutoKind:         s.Config.AutoKind,
			Seed:             s.Config.Seed,
			TargetFPS:        g.TargetFPS,
			MinParticles:     g.MinParticles,
			MaxParticles:     g.MaxParticles,
			InitialParticles: g.InitialParticles,
			HiddenSize:       s.Config.Predictor.HiddenSize,
			Window:           s.Config.Predictor.Window,
		},
	}
	for _, fr := range frames {
		f.Frames = append(f.Frames, FixtureFrame{
			PointerX:    fr.Input.PointerX,
			PointerY:    fr.Input.PointerY,
			ElapsedMs:   fr.Input.SessionElapsedMs,
			FrameTimeMs: fr.FrameTimeMs,
		})
	}
	for _, e := range Capture(results, every) {
		f.Expected = append(f.Expected, FromExpectation(e))
	}
	return f, nil
}

// frameTimeFor inverts the FPS estimate. A missing reading replays as a
// frame on target.
func frameTimeFor(fps, target float64) float64 {
	if !(fps > 0) {
		fps = target
	}
	return 1000 / fps
}

// #endregion session-replay
