package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/governor"
)

// #region eval-harness
// EvalHarness runs lightweight validation over one produced frame.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Frame is the subset of a frame the harness inspects.
type Frame struct {
	Positions []distribution.Position
	State     affect.State
	Predicted affect.State
	Budget    governor.RenderBudget
}

// Run checks the frame invariants: particle count matches the budget,
// indices are unique and in range, coordinates are finite and bounded,
// affect channels are in [0,1], and the budget respects its clamps.
func (h *EvalHarness) Run(f Frame) EvalResult {
	var metrics []EvalMetric
	var failReasons []string

	check := func(name string, value float64, pass bool, reason string) {
		metrics = append(metrics, EvalMetric{Name: name, Value: value, Pass: pass})
		if !pass {
			failReasons = append(failReasons, reason)
		}
	}

	// 1. Position count matches the governed budget
	n := len(f.Positions)
	check("position_count", float64(n), n == f.Budget.ParticleCount,
		fmt.Sprintf("position count %d != budget %d", n, f.Budget.ParticleCount))

	// 2. Index uniqueness and range
	seen := make([]bool, n)
	badIndex := 0
	for _, p := range f.Positions {
		if p.Index < 0 || p.Index >= n || seen[p.Index] {
			badIndex++
			continue
		}
		seen[p.Index] = true
	}
	check("index_violations", float64(badIndex), badIndex == 0,
		fmt.Sprintf("%d duplicate or out-of-range indices", badIndex))

	// 3. Finite, bounded coordinates
	nonFinite := 0
	var extent float64
	for _, p := range f.Positions {
		for _, v := range [3]float64{p.X, p.Y, p.Z} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				nonFinite++
				continue
			}
			extent = math.Max(extent, math.Abs(v))
		}
	}
	check("non_finite_coords", float64(nonFinite), nonFinite == 0,
		fmt.Sprintf("%d non-finite coordinates", nonFinite))
	check("max_extent", extent, extent <= h.config.MaxExtent,
		fmt.Sprintf("extent %.4f exceeds %.4f", extent, h.config.MaxExtent))

	// 4. Affect channels in range, intensity consistent
	for _, s := range []struct {
		name  string
		state affect.State
	}{{"state", f.State}, {"predicted", f.Predicted}} {
		worst := channelViolation(s.state)
		check(s.name+"_channel_violation", worst, worst == 0,
			fmt.Sprintf("%s channel outside [0,1] by %.4f", s.name, worst))
	}

	// 5. Budget clamps
	b := f.Budget
	check("quality_level", b.QualityLevel, b.QualityLevel >= h.config.MinQuality-1e-9 && b.QualityLevel <= 1,
		fmt.Sprintf("quality %.4f outside [%.2f, 1]", b.QualityLevel, h.config.MinQuality))
	check("particle_budget", float64(b.ParticleCount), b.ParticleCount >= h.config.MinParticles && b.ParticleCount <= h.config.MaxParticles,
		fmt.Sprintf("particle budget %d outside [%d, %d]", b.ParticleCount, h.config.MinParticles, h.config.MaxParticles))
	check("visual_complexity", b.VisualComplexity, b.VisualComplexity >= h.config.MinComplexity-1e-9 && b.VisualComplexity <= 1,
		fmt.Sprintf("complexity %.4f outside [%.2f, 1]", b.VisualComplexity, h.config.MinComplexity))
	effectsOK := b.EffectsEnabled == (b.QualityLevel > h.config.EffectsAbove)
	check("effects_consistent", boolValue(b.EffectsEnabled), effectsOK,
		fmt.Sprintf("effects=%v inconsistent with quality %.4f", b.EffectsEnabled, b.QualityLevel))

	reason := "all checks passed"
	passed := len(failReasons) == 0
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
// channelViolation returns how far the worst channel sits outside [0,1].
func channelViolation(s affect.State) float64 {
	var worst float64
	for _, v := range s.Channels() {
		switch {
		case math.IsNaN(v):
			return math.Inf(1)
		case v < 0:
			worst = math.Max(worst, -v)
		case v > 1:
			worst = math.Max(worst, v-1)
		}
	}
	return worst
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
