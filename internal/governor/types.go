package governor

import (
	"errors"
	"fmt"
	"math"
)

// #region render-budget
// RenderBudget is the governor-owned set of limits consumed by the
// distribution engine and the render sink.
type RenderBudget struct {
	QualityLevel     float64 // [MinQuality, 1]
	ParticleCount    int     // [MinParticles, MaxParticles]
	VisualComplexity float64 // [MinComplexity, 1]
	EffectsEnabled   bool    // QualityLevel > EffectsThreshold
}

// #endregion render-budget

// #region adjustment
// Adjustment records what the last Observe call did.
type Adjustment string

const (
	AdjustHold    Adjustment = "hold"
	AdjustDegrade Adjustment = "degrade"
	AdjustRecover Adjustment = "recover"
	AdjustIgnore  Adjustment = "ignore" // non-finite FPS sample
)

// Stats counts Observe outcomes since construction or Reset.
type Stats struct {
	Observations uint64
	Degrades     uint64
	Recovers     uint64
	Holds        uint64
	Ignored      uint64
}

// #endregion adjustment

// #region config
// Config holds the governor thresholds and step sizes.
type Config struct {
	TargetFPS float64
	LowFPS    float64 // below: degrade
	HighFPS   float64 // above: recover; [LowFPS, HighFPS] is the dead-band

	MinParticles     int
	MaxParticles     int
	InitialParticles int

	MinQuality       float64
	MinComplexity    float64
	EffectsThreshold float64

	QualityDownStep     float64
	QualityUpStep       float64
	CountDownRatio      float64
	CountUpRatio        float64
	ComplexityDownRatio float64
	ComplexityUpRatio   float64
}

// DefaultConfig returns the 60 FPS defaults: degrade below 45, recover above
// 55, cut faster than it recovers.
func DefaultConfig() Config {
	return Config{
		TargetFPS:           60,
		LowFPS:              45,
		HighFPS:             55,
		MinParticles:        500,
		MaxParticles:        3000,
		InitialParticles:    2000,
		MinQuality:          0.3,
		MinComplexity:       0.3,
		EffectsThreshold:    0.5,
		QualityDownStep:     0.1,
		QualityUpStep:       0.05,
		CountDownRatio:      0.9,
		CountUpRatio:        1.05,
		ComplexityDownRatio: 0.9,
		ComplexityUpRatio:   1.05,
	}
}

// ConfigForTarget scales the dead-band to a different target frame rate,
// keeping the 45/55-at-60 proportions.
func ConfigForTarget(targetFPS float64) Config {
	cfg := DefaultConfig()
	if targetFPS > 0 && !math.IsInf(targetFPS, 0) {
		cfg.TargetFPS = targetFPS
		cfg.LowFPS = targetFPS * 0.75
		cfg.HighFPS = targetFPS * 55 / 60
	}
	return cfg
}

// Validate checks the config for internally consistent bounds.
func (c Config) Validate() error {
	var errs []error
	if !(c.TargetFPS > 0) {
		errs = append(errs, fmt.Errorf("target fps must be positive, got %v", c.TargetFPS))
	}
	if !(c.LowFPS > 0) || !(c.HighFPS >= c.LowFPS) {
		errs = append(errs, fmt.Errorf("fps dead-band [%v, %v] is invalid", c.LowFPS, c.HighFPS))
	}
	if c.MinParticles <= 0 || c.MaxParticles < c.MinParticles {
		errs = append(errs, fmt.Errorf("particle bounds [%d, %d] are invalid", c.MinParticles, c.MaxParticles))
	}
	if c.InitialParticles < c.MinParticles || c.InitialParticles > c.MaxParticles {
		errs = append(errs, fmt.Errorf("initial particles %d outside [%d, %d]", c.InitialParticles, c.MinParticles, c.MaxParticles))
	}
	if !(c.MinQuality > 0 && c.MinQuality <= 1) || !(c.MinComplexity > 0 && c.MinComplexity <= 1) {
		errs = append(errs, errors.New("quality and complexity floors must be in (0, 1]"))
	}
	if !(c.QualityDownStep > 0) || !(c.QualityUpStep > 0) {
		errs = append(errs, errors.New("quality steps must be positive"))
	}
	if !(c.CountDownRatio > 0 && c.CountDownRatio < 1) || !(c.ComplexityDownRatio > 0 && c.ComplexityDownRatio < 1) {
		errs = append(errs, errors.New("down ratios must be in (0, 1)"))
	}
	if !(c.CountUpRatio > 1 && c.CountUpRatio <= 1.1) || !(c.ComplexityUpRatio > 1 && c.ComplexityUpRatio <= 1.1) {
		errs = append(errs, errors.New("up ratios must be in (1, 1.1]"))
	}
	return errors.Join(errs...)
}

// #endregion config
