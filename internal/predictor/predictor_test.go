package predictor

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

func TestPredict_EmptyHistoryIsNeutral(t *testing.T) {
	p := New(DefaultConfig())
	got := p.Predict()
	if !got.Equal(affect.Neutral()) {
		t.Fatalf("expected neutral state, got %v", got.Channels())
	}
	for _, v := range p.Hidden() {
		if v != 0 {
			t.Fatal("empty predict must not advance the recurrence")
		}
	}
}

func TestPush_EvictsOldestFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window = 3
	p := New(cfg)
	for i := 0; i < 5; i++ {
		p.Push(affect.Uniform(float64(i) / 10))
	}
	if p.Len() != 3 || p.Cap() != 3 {
		t.Fatalf("expected len=cap=3, got len=%d cap=%d", p.Len(), p.Cap())
	}
	hist := p.History()
	for k, want := range []float64{0.2, 0.3, 0.4} {
		if got := hist[k].Get(affect.Joy); math.Abs(got-want) > 1e-12 {
			t.Fatalf("history[%d]: expected %.1f, got %f", k, want, got)
		}
	}
}

func TestPredict_OutputInUnitRange(t *testing.T) {
	p := New(DefaultConfig())
	inputs := []affect.State{affect.Uniform(0), affect.Uniform(1), affect.Baseline()}
	for i := 0; i < 200; i++ {
		p.Push(inputs[i%len(inputs)])
		out := p.Predict()
		for _, v := range out.Channels() {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("step %d: channel %f outside [0,1]", i, v)
			}
		}
		if in := out.Intensity(); in < 0 || in > 1 {
			t.Fatalf("step %d: intensity %f outside [0,1]", i, in)
		}
	}
}

func TestPredict_DeterministicForSeed(t *testing.T) {
	a := New(DefaultConfig())
	b := New(DefaultConfig())
	for i := 0; i < 30; i++ {
		s := affect.Uniform(0.5 + 0.4*math.Sin(float64(i)/3))
		a.Push(s)
		b.Push(s)
		if !a.Predict().Equal(b.Predict()) {
			t.Fatalf("step %d: same seed diverged", i)
		}
	}

	cfg := DefaultConfig()
	cfg.Seed = 99
	c := New(cfg)
	c.Push(affect.Baseline())
	d := New(DefaultConfig())
	d.Push(affect.Baseline())
	if c.Predict().Equal(d.Predict()) {
		t.Fatal("different seeds should give different weights")
	}
}

func TestStep_MatchesGateEquations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HiddenSize = 3
	p := New(cfg)
	x := affect.Baseline()
	p.Push(x)

	// independent forward pass over the same weights
	in := x.Channels()
	h := make([]float64, 3)
	c := make([]float64, 3)
	z := append(in[:], h...)
	dot := func(l layer, row int, v []float64) float64 {
		s := l.B[row]
		for j, w := range l.W[row] {
			s += w * v[j]
		}
		return s
	}
	for k := 0; k < 3; k++ {
		f := sigmoid(dot(p.forget, k, z))
		i := sigmoid(dot(p.input, k, z))
		g := math.Tanh(dot(p.cell, k, z))
		o := sigmoid(dot(p.output, k, z))
		c[k] = f*c[k] + i*g
		h[k] = o * math.Tanh(c[k])
	}

	got := p.Predict()
	for ch := 0; ch < InputSize; ch++ {
		want := sigmoid(dot(p.proj, ch, h))
		if d := math.Abs(got.Get(affect.Channel(ch)) - want); d > 1e-12 {
			t.Fatalf("channel %d: expected %f, got %f", ch, want, got.Get(affect.Channel(ch)))
		}
	}
	for k, v := range p.Hidden() {
		if math.Abs(v-h[k]) > 1e-12 {
			t.Fatalf("hidden[%d] not committed: expected %f, got %f", k, h[k], v)
		}
	}
}

func TestNew_ForgetBiasIsOne(t *testing.T) {
	p := New(DefaultConfig())
	for k, b := range p.forget.B {
		if b != 1 {
			t.Fatalf("forget bias[%d] = %f, want 1", k, b)
		}
	}
	limit := 1 / math.Sqrt(float64(InputSize+16))
	for _, row := range p.input.W {
		for _, w := range row {
			if math.Abs(w) > limit {
				t.Fatalf("weight %f outside +-%f", w, limit)
			}
		}
	}
}

func TestForecast_DoesNotMutate(t *testing.T) {
	p := New(DefaultConfig())
	for i := 0; i < 5; i++ {
		p.Push(affect.Baseline())
		p.Predict()
	}
	hidden := p.Hidden()
	cell := p.Cell()

	out := p.Forecast(4)
	if len(out) != 4 {
		t.Fatalf("expected 4 forecast states, got %d", len(out))
	}
	for k, v := range p.Hidden() {
		if v != hidden[k] || p.Cell()[k] != cell[k] {
			t.Fatal("forecast mutated recurrent state")
		}
	}
	if p.Len() != 5 {
		t.Fatalf("forecast changed history length to %d", p.Len())
	}
	if p.Forecast(0) != nil {
		t.Fatal("zero-step forecast should be nil")
	}
}

func TestForecast_EmptyIsNeutral(t *testing.T) {
	out := New(DefaultConfig()).Forecast(2)
	for _, s := range out {
		if !s.Equal(affect.Neutral()) {
			t.Fatal("expected neutral forecast with no history")
		}
	}
}

func TestTrend(t *testing.T) {
	p := New(DefaultConfig())
	if p.Trend() != ([InputSize]float64{}) {
		t.Fatal("empty history should have zero trend")
	}
	for i := 0; i < 5; i++ {
		p.Push(affect.Uniform(0.1 * float64(i)))
	}
	for ch, s := range p.Trend() {
		if math.Abs(s-0.1) > 1e-9 {
			t.Fatalf("channel %d: expected slope 0.1, got %f", ch, s)
		}
	}
}

func TestReset_ClearsStateKeepsWeights(t *testing.T) {
	p := New(DefaultConfig())
	p.Push(affect.Baseline())
	first := p.Predict()
	p.Predict()
	p.Reset()
	if p.Len() != 0 || !p.Predict().Equal(affect.Neutral()) {
		t.Fatal("reset should empty the history")
	}
	p.Push(affect.Baseline())
	if !p.Predict().Equal(first) {
		t.Fatal("after reset the same input should reproduce the first prediction")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	for _, cfg := range []Config{
		{HiddenSize: 0, Window: 20, WeightScale: 1},
		{HiddenSize: 16, Window: 0, WeightScale: 1},
		{HiddenSize: 16, Window: 20, WeightScale: 0},
	} {
		if cfg.Validate() == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}
