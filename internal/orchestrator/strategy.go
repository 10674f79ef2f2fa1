package orchestrator

import (
	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
)

// #region default-mapping

// defaultMapping maps the dominant affect to the layout that reads best for it.
var defaultMapping = map[affect.Channel]distribution.Kind{
	affect.Joy:       distribution.KindOrbital,
	affect.Curiosity: distribution.KindNoiseGrid,
	affect.Wonder:    distribution.KindFibonacci,
	affect.Serenity:  distribution.KindToroidal,
	affect.Longing:   distribution.KindToroidal,
	affect.Tension:   distribution.KindGaussian,
	affect.Awe:       distribution.KindFibonacci,
}

// KindFor returns the mapped layout for a dominant affect.
func KindFor(ch affect.Channel) distribution.Kind {
	if k, ok := defaultMapping[ch]; ok {
		return k
	}
	return distribution.KindFibonacci
}

// #endregion

// #region selector

// KindSelector follows the dominant affect with a dwell time, so a dominant
// channel that flickers between two values does not flip the layout.
type KindSelector struct {
	dwell     int
	current   distribution.Kind
	candidate affect.Channel
	held      int
}

// NewKindSelector starts on initial. dwellTicks < 1 switches immediately.
func NewKindSelector(initial distribution.Kind, dwellTicks int) *KindSelector {
	if dwellTicks < 1 {
		dwellTicks = 1
	}
	return &KindSelector{dwell: dwellTicks, current: initial, candidate: -1}
}

// #endregion

// #region select

// Select observes this tick's dominant affect and returns the layout to use
// and whether it changed.
func (s *KindSelector) Select(dominant affect.Channel) (distribution.Kind, bool) {
	if dominant != s.candidate {
		s.candidate = dominant
		s.held = 0
	}
	s.held++

	want := KindFor(dominant)
	if want == s.current || s.held < s.dwell {
		return s.current, false
	}
	s.current = want
	return s.current, true
}

// Current returns the active layout.
func (s *KindSelector) Current() distribution.Kind {
	return s.current
}

// Reset forces the selector onto kind and forgets the candidate.
func (s *KindSelector) Reset(kind distribution.Kind) {
	s.current = kind
	s.candidate = -1
	s.held = 0
}

// #endregion
