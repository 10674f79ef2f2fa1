package update

import "github.com/danielpatrickdp/affect-field/go-controller/internal/affect"

// #region input
// Input is one clamped input sample in normalised viewport coordinates.
type Input struct {
	X          float64 // [0,1], left to right
	Y          float64 // [0,1], top to bottom
	ElapsedSec float64 // session time, >= 0
}

// #endregion input

// #region decision
// Decision records what the update function decided.
type Decision struct {
	Action string // "commit" | "no_op"
	Reason string
}

// #endregion decision

// #region metrics
// Metrics captures per-tick telemetry from an update.
type Metrics struct {
	DeltaNorm float64 // L2 norm of (new - old)
	DecayNorm float64 // L2 norm of the baseline pull applied this tick
	Clamped   bool    // true when the raw delta exceeded MaxDeltaNorm
}

// #endregion metrics

// #region update-config
// UpdateConfig holds smoothing and decay parameters for the per-tick update.
type UpdateConfig struct {
	Smoothing      float64 // per-tick blend toward the input target (0,1]
	DecayRate      float64 // per-tick pull toward baseline
	MaxDeltaNorm   float64 // L2 clamp on the per-tick change
	VelocityAlpha  float64 // EMA factor for the smoothed derivative
	ElapsedTauSec  float64 // time constant of the saturating elapsed-time curve
	DriftPeriodSec float64 // period of the slow sinusoid
	DriftAmplitude float64 // amplitude of the slow sinusoid
}

// DefaultUpdateConfig returns defaults tuned for a 60 FPS loop.
func DefaultUpdateConfig() UpdateConfig {
	return UpdateConfig{
		Smoothing:      0.08,
		DecayRate:      0.002,
		MaxDeltaNorm:   0.05,
		VelocityAlpha:  0.2,
		ElapsedTauSec:  120,
		DriftPeriodSec: 30,
		DriftAmplitude: 0.05,
	}
}

// #endregion update-config

// #region update-result
// UpdateResult bundles everything returned by Update().
type UpdateResult struct {
	NewState affect.State
	Velocity [affect.NumChannels]float64
	Target   affect.State
	Decision Decision
	Metrics  Metrics
}

// #endregion update-result
