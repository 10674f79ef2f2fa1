package update

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// #region update-function
// Update is a pure function that computes the next state from the current
// state, one input sample and the previous smoothed derivative.
// Smoothed blend toward the input target, pull toward baseline, L2-bounded delta.
func Update(old affect.State, in Input, velocity [affect.NumChannels]float64, config UpdateConfig) UpdateResult {
	in = ClampInput(in)
	target := Target(in, config)

	cur := old.Channels()
	tgt := target.Channels()
	base := affect.Baseline().Channels()

	var delta [affect.NumChannels]float64
	var decaySumSq float64
	for i := range delta {
		// 1. Smoothing pass
		delta[i] = config.Smoothing * (tgt[i] - cur[i])

		// 2. Decay pass toward the resting baseline
		if config.DecayRate > 0 {
			pull := config.DecayRate * (base[i] - cur[i])
			delta[i] += pull
			decaySumSq += pull * pull
		}
	}

	// 3. Bound the per-tick change
	clamped := false
	if norm := l2(delta[:]); config.MaxDeltaNorm > 0 && norm > config.MaxDeltaNorm {
		scale := config.MaxDeltaNorm / norm
		for i := range delta {
			delta[i] *= scale
		}
		clamped = true
	}

	var next [affect.NumChannels]float64
	for i := range next {
		next[i] = cur[i] + delta[i]
	}
	newState := affect.New(next)

	// 4. Smoothed derivative of the actual (post-clamp) change
	applied := newState.Sub(old)
	var vel [affect.NumChannels]float64
	a := config.VelocityAlpha
	for i := range vel {
		vel[i] = a*applied[i] + (1-a)*velocity[i]
		if math.IsNaN(vel[i]) || math.IsInf(vel[i], 0) {
			vel[i] = 0
		}
	}

	deltaNorm := l2(applied[:])
	decision := Decision{Action: "no_op", Reason: "no state change"}
	if deltaNorm > 0 {
		decision = Decision{
			Action: "commit",
			Reason: fmt.Sprintf("delta norm: %.6f, dominant: %s", deltaNorm, newState.Dominant()),
		}
	}

	return UpdateResult{
		NewState: newState,
		Velocity: vel,
		Target:   target,
		Decision: decision,
		Metrics: Metrics{
			DeltaNorm: deltaNorm,
			DecayNorm: math.Sqrt(decaySumSq),
			Clamped:   clamped,
		},
	}
}

// #endregion update-function

// #region target
// Target maps an input sample to the state the field drifts toward. Every
// channel is a continuous function of the pointer, elapsed time and a slow
// sinusoid, so neighbouring samples give neighbouring targets.
func Target(in Input, config UpdateConfig) affect.State {
	in = ClampInput(in)

	sx := smoothstep(in.X)
	sy := smoothstep(1 - in.Y) // up is positive
	e := 0.0
	if config.ElapsedTauSec > 0 {
		e = 1 - math.Exp(-in.ElapsedSec/config.ElapsedTauSec)
	}
	w := 0.0
	if config.DriftPeriodSec > 0 {
		w = config.DriftAmplitude * math.Sin(2*math.Pi*in.ElapsedSec/config.DriftPeriodSec)
	}
	dx, dy := in.X-0.5, in.Y-0.5
	centre := smoothstep(math.Sqrt(dx*dx+dy*dy) / math.Sqrt2 * 2) // 0 at centre, 1 at corners

	var t [affect.NumChannels]float64
	t[affect.Joy] = 0.25 + 0.55*sy + w
	t[affect.Curiosity] = 0.25 + 0.55*sx
	t[affect.Wonder] = 0.30 + 0.35*e + 0.20*sx*sy
	t[affect.Serenity] = 0.75 - 0.50*centre - w
	t[affect.Longing] = 0.15 + 0.45*e*(1-sy)
	t[affect.Tension] = 0.10 + 0.55*centre*centre + 0.5*w
	t[affect.Awe] = 0.20 + 0.50*e*sy
	return affect.New(t)
}

// ClampInput forces pointer coordinates into [0,1] and elapsed time to a
// finite non-negative value. NaN coordinates land at the centre.
func ClampInput(in Input) Input {
	in.X = clampUnit(in.X)
	in.Y = clampUnit(in.Y)
	if math.IsNaN(in.ElapsedSec) || math.IsInf(in.ElapsedSec, 0) || in.ElapsedSec < 0 {
		in.ElapsedSec = 0
	}
	return in
}

// #endregion target

// #region helpers
func smoothstep(x float64) float64 {
	x = clampUnit(x)
	return x * x * (3 - 2*x)
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0.5
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func l2(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// #endregion helpers
