package replay

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/eval"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/governor"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
)

// #region types
// Frame is one recorded tick of input for replay.
type Frame struct {
	Input       orchestrator.InputSample
	FrameTimeMs float64
	Inject      affect.Partial // applied before the tick; nil for none
}

// ReplayResult captures the outcome of replaying one frame.
type ReplayResult struct {
	Tick       uint64
	Budget     governor.RenderBudget
	Kind       distribution.Kind
	State      affect.State
	Predicted  affect.State
	Positions  int
	Events     []orchestrator.Event
	EvalResult eval.EvalResult
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalTicks    int
	EvalFailures  int
	Merges        int
	Rejects       int
	Fallbacks     int
	BudgetChanges int
	MinParticles  int
	MaxParticles  int
	FinalBudget   governor.RenderBudget
	FinalState    affect.State
}

// Expectation pins the budget at one tick.
type Expectation struct {
	Tick           uint64
	ParticleCount  int
	QualityLevel   float64
	EffectsEnabled bool
}

// Mismatch is one expectation that did not hold.
type Mismatch struct {
	Tick  uint64
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("tick %d %s: want %s, got %s", m.Tick, m.Field, m.Want, m.Got)
}

// qualityTolerance absorbs float formatting in hand-written fixtures.
const qualityTolerance = 1e-6

// #endregion types

// #region replay
// Replay runs frames through a fresh orchestrator and validates every
// output with the eval harness. It is deterministic for a given config.
func Replay(config orchestrator.Config, frames []Frame) ([]ReplayResult, error) {
	orch, err := orchestrator.NewOrchestrator(config, nil)
	if err != nil {
		return nil, fmt.Errorf("new orchestrator: %w", err)
	}
	harness := eval.NewEvalHarness(eval.ConfigForGovernor(config.Governor))

	results := make([]ReplayResult, 0, len(frames))
	for _, f := range frames {
		if len(f.Inject) > 0 {
			orch.Inject(f.Inject)
		}
		out := orch.Tick(f.Input, f.FrameTimeMs)
		ev := harness.Run(eval.Frame{
			Positions: out.Positions,
			State:     out.State,
			Predicted: out.Predicted,
			Budget:    out.Budget,
		})
		results = append(results, ReplayResult{
			Tick:       out.Tick,
			Budget:     out.Budget,
			Kind:       out.Summary.Kind,
			State:      out.State,
			Predicted:  out.Predicted,
			Positions:  len(out.Positions),
			Events:     out.Events,
			EvalResult: ev,
		})
	}
	return results, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{TotalTicks: len(results)}
	for i, r := range results {
		if !r.EvalResult.Passed {
			s.EvalFailures++
		}
		for _, ev := range r.Events {
			switch ev.Kind {
			case orchestrator.EventMerge:
				s.Merges++
			case orchestrator.EventReject:
				s.Rejects++
			case orchestrator.EventFallback:
				s.Fallbacks++
			case orchestrator.EventBudget:
				s.BudgetChanges++
			}
		}
		if i == 0 || r.Positions < s.MinParticles {
			s.MinParticles = r.Positions
		}
		if r.Positions > s.MaxParticles {
			s.MaxParticles = r.Positions
		}
	}
	if n := len(results); n > 0 {
		s.FinalBudget = results[n-1].Budget
		s.FinalState = results[n-1].State
	}
	return s
}

// Check compares results against expectations. An expectation naming a
// tick that was never replayed is itself a mismatch.
func Check(results []ReplayResult, expected []Expectation) []Mismatch {
	byTick := make(map[uint64]ReplayResult, len(results))
	for _, r := range results {
		byTick[r.Tick] = r
	}

	var out []Mismatch
	for _, e := range expected {
		r, ok := byTick[e.Tick]
		if !ok {
			out = append(out, Mismatch{Tick: e.Tick, Field: "tick", Want: "present", Got: "missing"})
			continue
		}
		if r.Budget.ParticleCount != e.ParticleCount {
			out = append(out, Mismatch{Tick: e.Tick, Field: "particle_count",
				Want: fmt.Sprint(e.ParticleCount), Got: fmt.Sprint(r.Budget.ParticleCount)})
		}
		if math.Abs(r.Budget.QualityLevel-e.QualityLevel) > qualityTolerance {
			out = append(out, Mismatch{Tick: e.Tick, Field: "quality_level",
				Want: fmt.Sprintf("%.6f", e.QualityLevel), Got: fmt.Sprintf("%.6f", r.Budget.QualityLevel)})
		}
		if r.Budget.EffectsEnabled != e.EffectsEnabled {
			out = append(out, Mismatch{Tick: e.Tick, Field: "effects_enabled",
				Want: fmt.Sprint(e.EffectsEnabled), Got: fmt.Sprint(r.Budget.EffectsEnabled)})
		}
	}
	return out
}

// Capture turns results into expectations, every Nth tick plus the last.
func Capture(results []ReplayResult, every int) []Expectation {
	if every < 1 {
		every = 1
	}
	var out []Expectation
	for i, r := range results {
		if (i+1)%every != 0 && i != len(results)-1 {
			continue
		}
		out = append(out, Expectation{
			Tick:           r.Tick,
			ParticleCount:  r.Budget.ParticleCount,
			QualityLevel:   r.Budget.QualityLevel,
			EffectsEnabled: r.Budget.EffectsEnabled,
		})
	}
	return out
}

// #endregion replay
