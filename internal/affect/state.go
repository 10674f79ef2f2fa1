package affect

import "math"

// #region state
// State is the per-frame emotional state vector. It is a value type: every
// operation returns a new State and every channel stays within [0,1].
type State struct {
	channels [NumChannels]float64
}

// New builds a State, clamping each channel to [0,1].
// Non-finite values are replaced with NeutralValue.
func New(values [NumChannels]float64) State {
	var s State
	for i, v := range values {
		s.channels[i] = clampChannel(v)
	}
	return s
}

// Neutral returns the state with every channel at NeutralValue.
func Neutral() State {
	var s State
	for i := range s.channels {
		s.channels[i] = NeutralValue
	}
	return s
}

// Baseline returns the default session-start state.
func Baseline() State {
	return New(baseline)
}

// Uniform returns a state with every channel set to v (clamped).
func Uniform(v float64) State {
	var vals [NumChannels]float64
	for i := range vals {
		vals[i] = v
	}
	return New(vals)
}

// #endregion state

// #region accessors
// Get returns one channel value. Invalid channels read as 0.
func (s State) Get(ch Channel) float64 {
	if !ch.Valid() {
		return 0
	}
	return s.channels[ch]
}

// Channels returns a copy of the channel vector.
func (s State) Channels() [NumChannels]float64 {
	return s.channels
}

// Intensity is the weighted aggregate of all channels, recomputed on every call.
func (s State) Intensity() float64 {
	var sum float64
	for i, v := range s.channels {
		sum += intensityWeights[i] * v
	}
	return clamp01(sum)
}

// Dominant returns the channel with the largest value. Ties resolve to the
// channel declared first.
func (s State) Dominant() Channel {
	best := Channel(0)
	for i := 1; i < NumChannels; i++ {
		if s.channels[i] > s.channels[best] {
			best = Channel(i)
		}
	}
	return best
}

// #endregion accessors

// #region ops
// With returns a copy with one channel replaced.
func (s State) With(ch Channel, v float64) State {
	if !ch.Valid() {
		return s
	}
	s.channels[ch] = clampChannel(v)
	return s
}

// Lerp blends toward target by t in [0,1].
func (s State) Lerp(target State, t float64) State {
	t = clamp01(t)
	var out State
	for i := range s.channels {
		out.channels[i] = clampChannel(s.channels[i] + (target.channels[i]-s.channels[i])*t)
	}
	return out
}

// Merge blends the channels present in p toward their payload values by weight.
// Channels absent from p and non-finite payload values are left untouched.
func (s State) Merge(p Partial, weight float64) State {
	weight = clamp01(weight)
	out := s
	for ch, v := range p {
		if !ch.Valid() || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		cur := out.channels[ch]
		out.channels[ch] = clampChannel(cur + (clamp01(v)-cur)*weight)
	}
	return out
}

// Sub returns the element-wise difference s - o.
func (s State) Sub(o State) [NumChannels]float64 {
	var d [NumChannels]float64
	for i := range d {
		d[i] = s.channels[i] - o.channels[i]
	}
	return d
}

// Distance is the L2 norm of s - o.
func (s State) Distance(o State) float64 {
	var sum float64
	for _, d := range s.Sub(o) {
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Equal reports exact channel equality.
func (s State) Equal(o State) bool {
	return s.channels == o.channels
}

// #endregion ops

// #region helpers
func clampChannel(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NeutralValue
	}
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
