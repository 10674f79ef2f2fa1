package governor

import "math"

// #region governor
// Governor is the closed-loop frame-rate controller. It exclusively owns the
// RenderBudget; other components read it through Observe or Budget.
// Not safe for concurrent use: it is driven from the frame loop only.
type Governor struct {
	config Config
	budget RenderBudget
	last   Adjustment
	stats  Stats
}

// NewGovernor creates a governor at the initial budget (quality 1, initial count).
func NewGovernor(config Config) *Governor {
	g := &Governor{config: config}
	g.Reset()
	return g
}

// Reset restores the initial budget and clears stats.
func (g *Governor) Reset() {
	g.budget = RenderBudget{
		QualityLevel:     1,
		ParticleCount:    g.config.InitialParticles,
		VisualComplexity: 1,
	}
	g.budget.EffectsEnabled = g.effects(g.budget.QualityLevel)
	g.last = AdjustHold
	g.stats = Stats{}
}

// Budget returns the current budget without observing a sample.
func (g *Governor) Budget() RenderBudget {
	return g.budget
}

// Last returns what the most recent Observe did.
func (g *Governor) Last() Adjustment {
	return g.last
}

// Stats returns observation counters.
func (g *Governor) Stats() Stats {
	return g.stats
}

// Config returns the active configuration.
func (g *Governor) Config() Config {
	return g.config
}

// #endregion governor

// #region observe
// Observe feeds one FPS measurement and returns the updated budget.
// Below LowFPS the budget degrades, above HighFPS it recovers, inside the
// dead-band it is left alone. Non-finite samples are ignored.
func (g *Governor) Observe(measuredFPS float64) RenderBudget {
	g.stats.Observations++

	switch {
	case math.IsNaN(measuredFPS) || math.IsInf(measuredFPS, 0):
		g.last = AdjustIgnore
		g.stats.Ignored++
	case measuredFPS < g.config.LowFPS:
		g.degrade()
		g.last = AdjustDegrade
		g.stats.Degrades++
	case measuredFPS > g.config.HighFPS:
		g.recover()
		g.last = AdjustRecover
		g.stats.Recovers++
	default:
		g.last = AdjustHold
		g.stats.Holds++
	}

	return g.budget
}

func (g *Governor) degrade() {
	c := g.config
	b := &g.budget
	b.QualityLevel = quantize(math.Max(c.MinQuality, b.QualityLevel-c.QualityDownStep))
	b.ParticleCount = clampInt(int(math.Floor(float64(b.ParticleCount)*c.CountDownRatio)), c.MinParticles, c.MaxParticles)
	b.VisualComplexity = quantize(math.Max(c.MinComplexity, b.VisualComplexity*c.ComplexityDownRatio))
	b.EffectsEnabled = g.effects(b.QualityLevel)
}

func (g *Governor) recover() {
	c := g.config
	b := &g.budget
	b.QualityLevel = quantize(math.Min(1, b.QualityLevel+c.QualityUpStep))
	b.ParticleCount = clampInt(int(math.Ceil(float64(b.ParticleCount)*c.CountUpRatio)), c.MinParticles, c.MaxParticles)
	b.VisualComplexity = quantize(math.Min(1, b.VisualComplexity*c.ComplexityUpRatio))
	b.EffectsEnabled = g.effects(b.QualityLevel)
}

// #endregion observe

// #region helpers
func (g *Governor) effects(quality float64) bool {
	return quality > g.config.EffectsThreshold
}

// quantize rounds to 1e-6 so repeated decimal steps land exactly on their
// nominal values (0.5 rather than 0.5000000000000001).
func quantize(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion helpers
