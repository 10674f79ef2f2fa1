package governor

import (
	"math"
	"testing"
)

func TestNewGovernor_Defaults(t *testing.T) {
	g := NewGovernor(DefaultConfig())
	b := g.Budget()
	if b.QualityLevel != 1 || b.ParticleCount != 2000 || b.VisualComplexity != 1 || !b.EffectsEnabled {
		t.Fatalf("unexpected initial budget %+v", b)
	}
}

func TestObserve_DeadBandIsIdempotent(t *testing.T) {
	for _, fps := range []float64{45, 47.5, 50, 55} {
		g := NewGovernor(DefaultConfig())
		g.Observe(30) // move off the ceiling so both directions are reachable
		before := g.Budget()
		for i := 0; i < 50; i++ {
			g.Observe(fps)
		}
		if g.Budget() != before {
			t.Fatalf("fps %.1f: budget drifted from %+v to %+v", fps, before, g.Budget())
		}
		if g.Last() != AdjustHold {
			t.Fatalf("fps %.1f: expected hold, got %s", fps, g.Last())
		}
	}
}

func TestObserve_SustainedLowFPSConvergesToFloor(t *testing.T) {
	cfg := DefaultConfig()
	g := NewGovernor(cfg)
	prev := g.Budget().QualityLevel
	for i := 0; i < 40; i++ {
		b := g.Observe(30)
		if b.QualityLevel > prev {
			t.Fatalf("step %d: quality rose under load (%f -> %f)", i, prev, b.QualityLevel)
		}
		if b.QualityLevel < cfg.MinQuality {
			t.Fatalf("step %d: quality %f undershot floor", i, b.QualityLevel)
		}
		if b.ParticleCount < cfg.MinParticles || b.VisualComplexity < cfg.MinComplexity {
			t.Fatalf("step %d: budget below floor %+v", i, b)
		}
		prev = b.QualityLevel
	}
	b := g.Budget()
	if b.QualityLevel != cfg.MinQuality {
		t.Fatalf("expected quality at floor %.2f, got %f", cfg.MinQuality, b.QualityLevel)
	}
	if b.ParticleCount != cfg.MinParticles {
		t.Fatalf("expected count at floor %d, got %d", cfg.MinParticles, b.ParticleCount)
	}
	if b.EffectsEnabled {
		t.Fatal("effects should be disabled at the floor")
	}
}

func TestObserve_SustainedHighFPSRecoversWithoutOvershoot(t *testing.T) {
	cfg := DefaultConfig()
	g := NewGovernor(cfg)
	for i := 0; i < 40; i++ {
		g.Observe(30)
	}
	prev := g.Budget().QualityLevel
	for i := 0; i < 60; i++ {
		b := g.Observe(60)
		if b.QualityLevel < prev {
			t.Fatalf("step %d: quality fell while recovering", i)
		}
		if b.QualityLevel > 1 || b.VisualComplexity > 1 || b.ParticleCount > cfg.MaxParticles {
			t.Fatalf("step %d: overshoot %+v", i, b)
		}
		prev = b.QualityLevel
	}
	b := g.Budget()
	if b.QualityLevel != 1 {
		t.Fatalf("expected full quality after recovery, got %f", b.QualityLevel)
	}
	if b.ParticleCount != cfg.MaxParticles {
		t.Fatalf("expected count to reach ceiling %d, got %d", cfg.MaxParticles, b.ParticleCount)
	}
	if !b.EffectsEnabled {
		t.Fatal("effects should be back on at full quality")
	}
}

func TestObserve_FiveSlowFramesFromDefaults(t *testing.T) {
	cfg := DefaultConfig()
	g := NewGovernor(cfg)
	var b RenderBudget
	for _, fps := range []float64{30, 30, 30, 30, 30} {
		b = g.Observe(fps)
	}
	limit := math.Max(2000*math.Pow(0.9, 5), float64(cfg.MinParticles))
	if float64(b.ParticleCount) > limit {
		t.Fatalf("expected count <= %.2f, got %d", limit, b.ParticleCount)
	}
	if b.QualityLevel > 0.5+1e-9 {
		t.Fatalf("expected quality <= 0.5 after five cuts, got %f", b.QualityLevel)
	}
	if b.EffectsEnabled {
		t.Fatalf("effects must be off once quality <= 0.5 (quality=%f)", b.QualityLevel)
	}
}

func TestObserve_EffectsTrackQualityThreshold(t *testing.T) {
	g := NewGovernor(DefaultConfig())
	for i := 0; i < 4; i++ {
		g.Observe(10)
	}
	if b := g.Budget(); b.QualityLevel != 0.6 || !b.EffectsEnabled {
		t.Fatalf("after 4 cuts expected quality 0.6 with effects on, got %+v", b)
	}
	g.Observe(10)
	if b := g.Budget(); b.QualityLevel != 0.5 || b.EffectsEnabled {
		t.Fatalf("after 5 cuts expected quality 0.5 with effects off, got %+v", b)
	}
}

func TestObserve_BoundedStepSize(t *testing.T) {
	g := NewGovernor(DefaultConfig())
	for i := 0; i < 100; i++ {
		before := g.Budget()
		fps := 30.0
		if i%3 == 0 {
			fps = 70
		}
		after := g.Observe(fps)
		if d := math.Abs(float64(after.ParticleCount - before.ParticleCount)); d > 0.1*float64(before.ParticleCount)+1 {
			t.Fatalf("step %d: particle jump %v exceeds 10%% of %d", i, d, before.ParticleCount)
		}
		if d := math.Abs(after.VisualComplexity - before.VisualComplexity); d > 0.1*before.VisualComplexity+1e-6 {
			t.Fatalf("step %d: complexity jump %v exceeds 10%%", i, d)
		}
	}
}

// Quality moves in fixed absolute steps, not a share of its value, so
// the last step to the floor (0.4 to 0.3) is a 25% drop.
func TestObserve_QualityStepsAreAbsolute(t *testing.T) {
	g := NewGovernor(DefaultConfig())
	want := []float64{0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.3}
	for i, q := range want {
		before := g.Budget().QualityLevel
		after := g.Observe(30).QualityLevel
		if after != q {
			t.Fatalf("degrade %d: expected quality %v, got %v", i, q, after)
		}
		if d := before - after; d > DefaultConfig().QualityDownStep+1e-9 {
			t.Fatalf("degrade %d: quality dropped %v, more than one step", i, d)
		}
	}

	for i := 0; i < 20; i++ {
		before := g.Budget().QualityLevel
		after := g.Observe(70).QualityLevel
		if d := after - before; d < 0 || d > DefaultConfig().QualityUpStep+1e-9 {
			t.Fatalf("recover %d: quality moved %v", i, d)
		}
	}
	if g.Budget().QualityLevel != 1 {
		t.Fatalf("expected full quality after recovery, got %v", g.Budget().QualityLevel)
	}
}

func TestObserve_NonFiniteIgnored(t *testing.T) {
	g := NewGovernor(DefaultConfig())
	before := g.Budget()
	g.Observe(math.NaN())
	g.Observe(math.Inf(1))
	if g.Budget() != before {
		t.Fatal("non-finite samples must not change the budget")
	}
	if g.Stats().Ignored != 2 || g.Last() != AdjustIgnore {
		t.Fatalf("expected 2 ignored samples, got %+v", g.Stats())
	}
}

func TestStatsAndReset(t *testing.T) {
	g := NewGovernor(DefaultConfig())
	g.Observe(20)
	g.Observe(50)
	g.Observe(90)
	s := g.Stats()
	if s.Observations != 3 || s.Degrades != 1 || s.Holds != 1 || s.Recovers != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
	g.Reset()
	if g.Stats() != (Stats{}) || g.Budget().QualityLevel != 1 {
		t.Fatal("reset should restore defaults")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	bad := DefaultConfig()
	bad.LowFPS = 60
	bad.HighFPS = 50
	bad.InitialParticles = 10
	bad.CountUpRatio = 2
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestConfigForTarget(t *testing.T) {
	cfg := ConfigForTarget(120)
	if cfg.LowFPS != 90 || cfg.HighFPS != 110 {
		t.Fatalf("expected dead-band [90,110], got [%v,%v]", cfg.LowFPS, cfg.HighFPS)
	}
	if ConfigForTarget(0).TargetFPS != 60 {
		t.Fatal("non-positive target should keep defaults")
	}
}
