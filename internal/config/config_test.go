package config

import (
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/governor"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
)

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestDefault_MatchesComponentDefaults(t *testing.T) {
	cfg := Default()
	if cfg.GovernorConfig() != governor.DefaultConfig() {
		t.Fatalf("governor config drifted from defaults: %+v", cfg.GovernorConfig())
	}
	o := cfg.OrchestratorConfig()
	want := orchestrator.DefaultConfig()
	if o.Kind != want.Kind || o.Seed != want.Seed || o.Predictor != want.Predictor || o.Governor != want.Governor {
		t.Fatalf("orchestrator config drifted from defaults: %+v", o)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("AFFECT_KIND", string(distribution.KindToroidal))
	t.Setenv("AFFECT_AUTO_KIND", "true")
	t.Setenv("AFFECT_TARGET_FPS", "30")
	t.Setenv("AFFECT_MAX_PARTICLES", "2500")
	t.Setenv("AFFECT_ANALYZE_INTERVAL", "250ms")
	t.Setenv("AFFECT_HIDDEN_SIZE", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Kind != string(distribution.KindToroidal) || !cfg.AutoKind {
		t.Fatalf("kind settings not loaded: %+v", cfg)
	}
	g := cfg.GovernorConfig()
	if g.TargetFPS != 30 || g.LowFPS != 22.5 || g.MaxParticles != 2500 {
		t.Fatalf("governor not scaled to target: %+v", g)
	}
	if cfg.AnalyzeInterval != 250*time.Millisecond {
		t.Fatalf("duration not parsed: %v", cfg.AnalyzeInterval)
	}
	if cfg.PredictorConfig().HiddenSize != 8 {
		t.Fatal("hidden size not applied")
	}
	if cfg.LoopConfig().TargetFPS != 30 {
		t.Fatal("loop target not applied")
	}
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("AFFECT_TARGET_FPS", "fast")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected wrapped parse error, got %v", err)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	t.Setenv("AFFECT_MIN_PARTICLES", "4000")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for min > max")
	}
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	t.Setenv("AFFECT_ANALYZER", AnalyzerOpenAI)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AFFECT_OPENAI_MODEL", "gpt-test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	o := cfg.OpenAIConfig()
	if o.APIKey != "sk-test" || o.Model != "gpt-test" {
		t.Fatalf("unexpected openai config: %+v", o)
	}
}

func TestValidate_Analyzer(t *testing.T) {
	cfg := Default()
	cfg.Analyzer = "telepathy"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown analyzer error")
	}
	cfg.Analyzer = AnalyzerOpenAI
	cfg.OpenAIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing key error")
	}
	cfg.Analyzer = AnalyzerGRPC
	cfg.AnalyzerAddr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing address error")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.DwellTicks = 0
	cfg.InjectBuffer = 0
	cfg.AnalyzeTimeout = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"dwell", "inject", "timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error should mention %q: %v", want, err)
		}
	}
}

func TestSamplerConfig(t *testing.T) {
	cfg := Default()
	cfg.AnalyzeInterval = 2 * time.Second
	s := cfg.SamplerConfig()
	if s.Interval != 2*time.Second || s.Timeout != cfg.AnalyzeTimeout {
		t.Fatalf("unexpected sampler config: %+v", s)
	}
}
