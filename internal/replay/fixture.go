package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/governor"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string            `json:"description"`
	Config      FixtureConfig     `json:"config"`
	Frames      []FixtureFrame    `json:"frames"`
	Expected    []FixtureExpected `json:"expected"`
}

// FixtureConfig overrides orchestrator defaults. Zero values keep the default.
type FixtureConfig struct {
	Kind             string  `json:"kind,omitempty"`
	AutoKind         bool    `json:"auto_kind,omitempty"`
	Seed             uint64  `json:"seed,omitempty"`
	TargetFPS        float64 `json:"target_fps,omitempty"`
	MinParticles     int     `json:"min_particles,omitempty"`
	MaxParticles     int     `json:"max_particles,omitempty"`
	InitialParticles int     `json:"initial_particles,omitempty"`
	HiddenSize       int     `json:"hidden_size,omitempty"`
	Window           int     `json:"window,omitempty"`
}

// FixtureFrame is one tick of recorded input.
type FixtureFrame struct {
	PointerX    float64            `json:"pointer_x"`
	PointerY    float64            `json:"pointer_y"`
	ElapsedMs   float64            `json:"elapsed_ms"`
	FrameTimeMs float64            `json:"frame_time_ms"`
	Inject      map[string]float64 `json:"inject,omitempty"`
}

// FixtureExpected pins the governed budget at one tick.
type FixtureExpected struct {
	Tick           uint64  `json:"tick"`
	ParticleCount  int     `json:"particle_count"`
	QualityLevel   float64 `json:"quality_level"`
	EffectsEnabled bool    `json:"effects_enabled"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToOrchestratorConfig applies the overrides to the default config.
func (fc *FixtureConfig) ToOrchestratorConfig() orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	if fc.Kind != "" {
		cfg.Kind = distribution.Kind(fc.Kind)
	}
	cfg.AutoKind = fc.AutoKind
	if fc.Seed != 0 {
		cfg.Seed = fc.Seed
	}
	if fc.TargetFPS > 0 {
		cfg.Governor = governor.ConfigForTarget(fc.TargetFPS)
	}
	if fc.MinParticles > 0 {
		cfg.Governor.MinParticles = fc.MinParticles
	}
	if fc.MaxParticles > 0 {
		cfg.Governor.MaxParticles = fc.MaxParticles
	}
	if fc.InitialParticles > 0 {
		cfg.Governor.InitialParticles = fc.InitialParticles
	}
	if fc.HiddenSize > 0 {
		cfg.Predictor.HiddenSize = fc.HiddenSize
	}
	if fc.Window > 0 {
		cfg.Predictor.Window = fc.Window
	}
	return cfg
}

// ToFrame converts a fixture frame. Unknown channel names in inject are
// returned as an error so a typo cannot silently drop a merge.
func (ff *FixtureFrame) ToFrame() (Frame, error) {
	f := Frame{
		Input: orchestrator.InputSample{
			PointerX:         ff.PointerX,
			PointerY:         ff.PointerY,
			SessionElapsedMs: ff.ElapsedMs,
		},
		FrameTimeMs: ff.FrameTimeMs,
	}
	if len(ff.Inject) > 0 {
		p, unknown := affect.PartialFromNames(ff.Inject)
		if len(unknown) > 0 {
			return Frame{}, fmt.Errorf("unknown channels %v", unknown)
		}
		f.Inject = p
	}
	return f, nil
}

// ToExpectation converts a fixture expectation.
func (fe *FixtureExpected) ToExpectation() Expectation {
	return Expectation{
		Tick:           fe.Tick,
		ParticleCount:  fe.ParticleCount,
		QualityLevel:   fe.QualityLevel,
		EffectsEnabled: fe.EffectsEnabled,
	}
}

// FromExpectation is the inverse of ToExpectation.
func FromExpectation(e Expectation) FixtureExpected {
	return FixtureExpected{
		Tick:           e.Tick,
		ParticleCount:  e.ParticleCount,
		QualityLevel:   e.QualityLevel,
		EffectsEnabled: e.EffectsEnabled,
	}
}

// Run converts the whole fixture, replays it and checks expectations.
func (f *Fixture) Run() ([]ReplayResult, []Mismatch, error) {
	frames := make([]Frame, len(f.Frames))
	for i := range f.Frames {
		fr, err := f.Frames[i].ToFrame()
		if err != nil {
			return nil, nil, fmt.Errorf("frame %d: %w", i, err)
		}
		frames[i] = fr
	}
	results, err := Replay(f.Config.ToOrchestratorConfig(), frames)
	if err != nil {
		return nil, nil, err
	}
	expected := make([]Expectation, len(f.Expected))
	for i := range f.Expected {
		expected[i] = f.Expected[i].ToExpectation()
	}
	return results, Check(results, expected), nil
}

// #endregion fixture-loader
