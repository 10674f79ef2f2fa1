package eval

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/governor"
)

func makeFrame(kind distribution.Kind) Frame {
	g := governor.NewGovernor(governor.DefaultConfig())
	b := g.Budget()
	e := distribution.NewEngine(distribution.DefaultRegistry())
	res := e.Generate(kind, b.ParticleCount, distribution.Params{State: affect.Baseline(), Seed: 7})
	return Frame{
		Positions: res.Positions,
		State:     affect.Baseline(),
		Predicted: affect.Neutral(),
		Budget:    b,
	}
}

func TestEvalPassesOnGeneratedFrames(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	for _, kind := range distribution.Kinds() {
		result := h.Run(makeFrame(kind))
		if !result.Passed {
			t.Fatalf("%s: expected pass, got fail: %s", kind, result.Reason)
		}
		if len(result.Metrics) == 0 {
			t.Fatal("expected metrics")
		}
	}
}

func TestEvalFailsOnCountMismatch(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	f := makeFrame(distribution.KindFibonacci)
	f.Positions = f.Positions[:len(f.Positions)-1]

	result := h.Run(f)

	if result.Passed {
		t.Fatal("expected fail on short buffer")
	}
}

func TestEvalFailsOnDuplicateIndex(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	f := makeFrame(distribution.KindFibonacci)
	f.Positions[1].Index = 0

	if h.Run(f).Passed {
		t.Fatal("expected fail on duplicate index")
	}
}

func TestEvalFailsOnNonFiniteCoordinate(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	f := makeFrame(distribution.KindToroidal)
	f.Positions[10].Y = math.NaN()

	result := h.Run(f)
	if result.Passed {
		t.Fatal("expected fail on NaN coordinate")
	}
	for _, m := range result.Metrics {
		if m.Name == "non_finite_coords" && (m.Pass || m.Value != 1) {
			t.Fatalf("expected one non-finite coordinate, got %+v", m)
		}
	}
}

func TestEvalFailsOnInconsistentEffects(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	f := makeFrame(distribution.KindOrbital)
	f.Budget.QualityLevel = 0.5
	f.Budget.EffectsEnabled = true

	if h.Run(f).Passed {
		t.Fatal("effects at quality 0.5 should fail")
	}
}

func TestEvalFailsOnBudgetOutOfBounds(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	f := makeFrame(distribution.KindGaussian)
	f.Budget.VisualComplexity = 0.1

	result := h.Run(f)
	if result.Passed {
		t.Fatal("expected fail on complexity below floor")
	}
}

func TestEvalMultipleFailuresReason(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	f := makeFrame(distribution.KindNoiseGrid)
	f.Positions = nil
	f.Budget.QualityLevel = 2

	result := h.Run(f)
	if result.Passed {
		t.Fatal("expected fail")
	}
	if result.Reason == "" || result.Reason == "all checks passed" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestConfigForGovernor(t *testing.T) {
	gc := governor.DefaultConfig()
	gc.MinParticles = 1000
	c := ConfigForGovernor(gc)
	if c.MinParticles != 1000 || c.MaxParticles != gc.MaxParticles || c.EffectsAbove != gc.EffectsThreshold {
		t.Fatalf("unexpected derived config %+v", c)
	}
}
