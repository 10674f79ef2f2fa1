package gate

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// #region gate
// Gate decides whether an analysis payload may be merged into the
// authoritative state, and with what weight.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate checks hard vetoes first, then sizes the merge weight so that one
// payload cannot move the state further than MaxMergeDelta.
func (g *Gate) Evaluate(current affect.State, payload affect.Partial) GateDecision {
	var vetoes []VetoSignal

	// 1. Empty payload
	if len(payload) == 0 {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoEmpty,
			Reason: "payload has no channels",
		})
	}

	lo, hi := -g.config.RangeTolerance, 1+g.config.RangeTolerance
	for ch, v := range payload {
		// 2. Channel outside the canonical set
		if !ch.Valid() {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoUnknown,
				Reason: fmt.Sprintf("channel index %d is not a known affect", int(ch)),
			})
			continue
		}
		// 3. Non-finite values
		if math.IsNaN(v) || math.IsInf(v, 0) {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoNonFinite,
				Reason: fmt.Sprintf("%s is not finite", ch),
			})
			continue
		}
		// 4. Values on a different scale
		if v < lo || v > hi {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoRange,
				Reason: fmt.Sprintf("%s value %.4f outside [%.2f, %.2f]", ch, v, lo, hi),
			})
		}
	}

	// If any hard vetoes, reject immediately
	if len(vetoes) > 0 {
		return GateDecision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}

	deltaNorm := partialDelta(current, payload)
	weight := g.config.BaseWeight
	if deltaNorm > 0 && weight*deltaNorm > g.config.MaxMergeDelta {
		weight = g.config.MaxMergeDelta / deltaNorm
	}
	soft := computeSoftScore(payload, deltaNorm)

	if deltaNorm == 0 || weight < g.config.MinWeight {
		return GateDecision{
			Action:    "no_op",
			Reason:    "payload matches current state",
			SoftScore: soft,
			DeltaNorm: deltaNorm,
		}
	}

	return GateDecision{
		Action:    "commit",
		Reason:    fmt.Sprintf("passed gate: weight=%.4f soft_score=%.4f", weight, soft),
		Weight:    weight,
		SoftScore: soft,
		DeltaNorm: deltaNorm,
	}
}

// #endregion gate

// #region helpers
// partialDelta computes the L2 norm of payload - current over the channels
// present in the payload, with payload values clamped to [0,1].
func partialDelta(current affect.State, payload affect.Partial) float64 {
	var sum float64
	for ch, v := range payload {
		d := math.Min(1, math.Max(0, v)) - current.Get(ch)
		sum += d * d
	}
	return math.Sqrt(sum)
}

// computeSoftScore produces a 0-1 composite from channel coverage and
// closeness to the current state. Logged, never blocking.
func computeSoftScore(payload affect.Partial, deltaNorm float64) float64 {
	coverage := float64(len(payload)) / float64(affect.NumChannels)
	if coverage > 1 {
		coverage = 1
	}
	closeness := 1 - deltaNorm/math.Sqrt(float64(affect.NumChannels))
	if closeness < 0 {
		closeness = 0
	}
	return 0.4*coverage + 0.6*closeness
}

// #endregion helpers
