package predictor

import (
	"math"
	"math/rand/v2"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// #region predictor
// Predictor is a single fixed-weight LSTM cell used as a smoothing and
// extrapolation filter over the recent affect history. Weights are drawn
// once at construction and never trained.
// Not safe for concurrent use.
type Predictor struct {
	config Config

	forget layer // sigmoid
	input  layer // sigmoid
	cell   layer // tanh (candidate)
	output layer // sigmoid
	proj   layer // hidden -> channels, sigmoid

	hidden []float64
	state  []float64

	history []affect.State // ring buffer, len == Window
	head    int            // next write slot
	size    int

	// scratch buffers reused by step
	z, f, i, g, o []float64
}

// New builds a predictor. Invalid sizes are raised to 1 so construction
// never fails; callers validate Config up front.
func New(config Config) *Predictor {
	if config.HiddenSize < 1 {
		config.HiddenSize = 1
	}
	if config.Window < 1 {
		config.Window = 1
	}
	if !(config.WeightScale > 0) {
		config.WeightScale = 1
	}

	h := config.HiddenSize
	fanIn := InputSize + h
	p := &Predictor{
		config:  config,
		forget:  newLayer(h, fanIn),
		input:   newLayer(h, fanIn),
		cell:    newLayer(h, fanIn),
		output:  newLayer(h, fanIn),
		proj:    newLayer(InputSize, h),
		hidden:  make([]float64, h),
		state:   make([]float64, h),
		history: make([]affect.State, config.Window),
		z:       make([]float64, fanIn),
		f:       make([]float64, h),
		i:       make([]float64, h),
		g:       make([]float64, h),
		o:       make([]float64, h),
	}

	rng := rand.New(rand.NewPCG(uint64(config.Seed), 0x5eedf1e1d))
	gateLimit := config.WeightScale / math.Sqrt(float64(fanIn))
	for _, l := range []layer{p.forget, p.input, p.cell, p.output} {
		fill(rng, l.W, gateLimit)
	}
	fill(rng, p.proj.W, config.WeightScale/math.Sqrt(float64(h)))

	// bias the forget gate open so the cell starts out remembering
	for k := range p.forget.B {
		p.forget.B[k] = 1
	}
	return p
}

// #endregion predictor

// #region history
// Push appends a sample, evicting the oldest once the window is full.
func (p *Predictor) Push(s affect.State) {
	p.history[p.head] = s
	p.head = (p.head + 1) % len(p.history)
	if p.size < len(p.history) {
		p.size++
	}
}

// Len returns the number of buffered samples.
func (p *Predictor) Len() int { return p.size }

// Cap returns the history capacity.
func (p *Predictor) Cap() int { return len(p.history) }

// History returns buffered samples, oldest first.
func (p *Predictor) History() []affect.State {
	out := make([]affect.State, p.size)
	start := (p.head - p.size + len(p.history)) % len(p.history)
	for k := 0; k < p.size; k++ {
		out[k] = p.history[(start+k)%len(p.history)]
	}
	return out
}

func (p *Predictor) latest() affect.State {
	return p.history[(p.head-1+len(p.history))%len(p.history)]
}

// Reset clears history and recurrent state. Weights are kept.
func (p *Predictor) Reset() {
	for k := range p.history {
		p.history[k] = affect.State{}
	}
	p.head, p.size = 0, 0
	zero(p.hidden)
	zero(p.state)
}

// #endregion history

// #region predict
// Predict runs one forward step of the cell on the most recent sample and
// commits the new hidden and cell state. With no history it returns the
// neutral state without touching the recurrence.
func (p *Predictor) Predict() affect.State {
	if p.size == 0 {
		return affect.Neutral()
	}
	x := p.latest().Channels()
	y := p.step(x[:], p.hidden, p.state)
	return affect.New(y)
}

// Forecast rolls the cell forward steps times, feeding each output back as
// the next input. It works on copies and leaves the predictor unchanged.
func (p *Predictor) Forecast(steps int) []affect.State {
	if steps <= 0 {
		return nil
	}
	out := make([]affect.State, steps)
	if p.size == 0 {
		for k := range out {
			out[k] = affect.Neutral()
		}
		return out
	}

	h := append([]float64(nil), p.hidden...)
	c := append([]float64(nil), p.state...)
	x := p.latest().Channels()
	for k := 0; k < steps; k++ {
		y := p.step(x[:], h, c)
		out[k] = affect.New(y)
		x = y
	}
	return out
}

// step computes one LSTM update in place on h and c and returns the
// projected output:
//
//	z  = [x ; h]
//	f  = sigmoid(Wf z + bf)    i = sigmoid(Wi z + bi)
//	g  = tanh(Wc z + bc)       o = sigmoid(Wo z + bo)
//	c' = f*c + i*g             h' = o*tanh(c')
//	y  = sigmoid(Wy h' + by)
func (p *Predictor) step(x, h, c []float64) [InputSize]float64 {
	copy(p.z, x)
	copy(p.z[InputSize:], h)

	p.forget.apply(p.f, p.z)
	p.input.apply(p.i, p.z)
	p.cell.apply(p.g, p.z)
	p.output.apply(p.o, p.z)

	for k := range h {
		f := sigmoid(p.f[k])
		in := sigmoid(p.i[k])
		g := math.Tanh(p.g[k])
		o := sigmoid(p.o[k])
		c[k] = f*c[k] + in*g
		h[k] = o * math.Tanh(c[k])
	}

	var raw [InputSize]float64
	p.proj.apply(raw[:], h)
	for k := range raw {
		raw[k] = sigmoid(raw[k])
	}
	return raw
}

// #endregion predict

// #region trend
// Trend returns the least-squares slope of each channel over the history,
// in channel units per sample. Fewer than two samples give zero slopes.
func (p *Predictor) Trend() [InputSize]float64 {
	var slope [InputSize]float64
	hist := p.History()
	n := float64(len(hist))
	if len(hist) < 2 {
		return slope
	}
	meanT := (n - 1) / 2
	var varT float64
	for k := range hist {
		d := float64(k) - meanT
		varT += d * d
	}
	for ch := 0; ch < InputSize; ch++ {
		var mean float64
		for _, s := range hist {
			mean += s.Get(affect.Channel(ch))
		}
		mean /= n
		var cov float64
		for k, s := range hist {
			cov += (float64(k) - meanT) * (s.Get(affect.Channel(ch)) - mean)
		}
		slope[ch] = cov / varT
	}
	return slope
}

// #endregion trend

// #region accessors
// Hidden returns a copy of the hidden vector.
func (p *Predictor) Hidden() []float64 { return append([]float64(nil), p.hidden...) }

// Cell returns a copy of the cell-state vector.
func (p *Predictor) Cell() []float64 { return append([]float64(nil), p.state...) }

// Config returns the effective configuration.
func (p *Predictor) Config() Config { return p.config }

// #endregion accessors

// #region helpers
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func fill(rng *rand.Rand, w [][]float64, limit float64) {
	for _, row := range w {
		for j := range row {
			row[j] = (rng.Float64()*2 - 1) * limit
		}
	}
}

func zero(v []float64) {
	for k := range v {
		v[k] = 0
	}
}

// #endregion helpers
