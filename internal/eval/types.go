package eval

import "github.com/danielpatrickdp/affect-field/go-controller/internal/governor"

// #region eval-config
// EvalConfig holds thresholds for per-frame validation.
type EvalConfig struct {
	MaxExtent float64 // reject if any |coordinate| exceeds this

	MinParticles  int
	MaxParticles  int
	MinQuality    float64
	MinComplexity float64
	EffectsAbove  float64 // effects must be on iff quality > this
}

// DefaultEvalConfig returns bounds matching the default governor.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxExtent:     16,
		MinParticles:  500,
		MaxParticles:  3000,
		MinQuality:    0.3,
		MinComplexity: 0.3,
		EffectsAbove:  0.5,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of frame validation.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result

// ConfigForGovernor derives the budget bounds from a governor config.
func ConfigForGovernor(g governor.Config) EvalConfig {
	c := DefaultEvalConfig()
	c.MinParticles = g.MinParticles
	c.MaxParticles = g.MaxParticles
	c.MinQuality = g.MinQuality
	c.MinComplexity = g.MinComplexity
	c.EffectsAbove = g.EffectsThreshold
	return c
}
