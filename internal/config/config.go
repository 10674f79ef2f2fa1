package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/analysis"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/governor"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/predictor"
)

// EnvPrefix is prepended to every variable name below.
const EnvPrefix = "AFFECT_"

// Analyzer backends.
const (
	AnalyzerNone    = "none"
	AnalyzerLexicon = "lexicon"
	AnalyzerOpenAI  = "openai"
	AnalyzerGRPC    = "grpc"
)

// #region config
// Config is every tunable of the field binaries. It is read once at
// startup; there is no live reconfiguration.
type Config struct {
	// Frame loop
	Kind         string  `env:"KIND"`
	AutoKind     bool    `env:"AUTO_KIND"`
	DwellTicks   int     `env:"DWELL_TICKS"`
	Seed         uint64  `env:"SEED"`
	InjectBuffer int     `env:"INJECT_BUFFER"`
	CacheStep    float64 `env:"CACHE_STEP"`

	// Governor
	TargetFPS        float64 `env:"TARGET_FPS"`
	MinParticles     int     `env:"MIN_PARTICLES"`
	MaxParticles     int     `env:"MAX_PARTICLES"`
	InitialParticles int     `env:"INITIAL_PARTICLES"`

	// Predictor
	HiddenSize    int     `env:"HIDDEN_SIZE"`
	Window        int     `env:"WINDOW"`
	PredictorSeed int64   `env:"PREDICTOR_SEED"`
	WeightScale   float64 `env:"WEIGHT_SCALE"`

	// Analysis
	Analyzer        string        `env:"ANALYZER"`
	AnalyzerAddr    string        `env:"ANALYZER_ADDR"`
	OpenAIKey       string        `env:"OPENAI_API_KEY"`
	OpenAIModel     string        `env:"OPENAI_MODEL"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	AnalyzeInterval time.Duration `env:"ANALYZE_INTERVAL"`
	AnalyzeTimeout  time.Duration `env:"ANALYZE_TIMEOUT"`

	// Persistence
	DBPath      string `env:"DB_PATH"`
	RecordEvery int    `env:"RECORD_EVERY"`

	// Ambient
	LogPath      string  `env:"LOG_PATH"`
	Audio        bool    `env:"AUDIO"`
	Volume       float64 `env:"VOLUME"`
	OTelEndpoint string  `env:"OTEL_ENDPOINT"`
	ServiceName  string  `env:"SERVICE_NAME"`
	GRPCListen   string  `env:"GRPC_LISTEN"`
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	g := governor.DefaultConfig()
	p := predictor.DefaultConfig()
	o := orchestrator.DefaultConfig()
	s := analysis.DefaultSamplerConfig()
	return Config{
		Kind:             string(o.Kind),
		DwellTicks:       o.DwellTicks,
		Seed:             o.Seed,
		InjectBuffer:     o.InjectBuffer,
		CacheStep:        o.CacheStep,
		TargetFPS:        g.TargetFPS,
		MinParticles:     g.MinParticles,
		MaxParticles:     g.MaxParticles,
		InitialParticles: g.InitialParticles,
		HiddenSize:       p.HiddenSize,
		Window:           p.Window,
		PredictorSeed:    p.Seed,
		WeightScale:      p.WeightScale,
		Analyzer:         AnalyzerLexicon,
		AnalyzerAddr:     "localhost:50071",
		OpenAIModel:      analysis.DefaultOpenAIConfig().Model,
		AnalyzeInterval:  s.Interval,
		AnalyzeTimeout:   s.Timeout,
		DBPath:           "affect_field.db",
		RecordEvery:      30,
		LogPath:          "affect_field.log",
		Audio:            true,
		ServiceName:      "affect-field",
		GRPCListen:       ":50071",
	}
}

// Load starts from Default and applies AFFECT_* variables. OPENAI_API_KEY
// is honoured when AFFECT_OPENAI_API_KEY is unset.
func Load() (Config, error) {
	cfg := Default()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.OpenAIKey == "" {
		cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// #endregion config

// #region validate
// Validate checks every sub-config and the cross-field rules.
func (c Config) Validate() error {
	var errs []error
	if err := c.GovernorConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("governor: %w", err))
	}
	if err := c.PredictorConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("predictor: %w", err))
	}
	if c.Kind == "" {
		errs = append(errs, errors.New("kind is empty"))
	}
	if c.DwellTicks < 1 {
		errs = append(errs, fmt.Errorf("dwell ticks must be >= 1, got %d", c.DwellTicks))
	}
	if c.InjectBuffer < 1 {
		errs = append(errs, fmt.Errorf("inject buffer must be >= 1, got %d", c.InjectBuffer))
	}
	if c.CacheStep < 0 {
		errs = append(errs, fmt.Errorf("cache step must be >= 0, got %v", c.CacheStep))
	}
	switch c.Analyzer {
	case AnalyzerNone, AnalyzerLexicon:
	case AnalyzerOpenAI:
		if c.OpenAIKey == "" {
			errs = append(errs, errors.New("openai analyzer needs an api key"))
		}
	case AnalyzerGRPC:
		if c.AnalyzerAddr == "" {
			errs = append(errs, errors.New("grpc analyzer needs an address"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown analyzer %q", c.Analyzer))
	}
	if c.AnalyzeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("analyze timeout must be positive, got %v", c.AnalyzeTimeout))
	}
	if c.AnalyzeInterval < 0 {
		errs = append(errs, fmt.Errorf("analyze interval must be >= 0, got %v", c.AnalyzeInterval))
	}
	if c.RecordEvery < 0 {
		errs = append(errs, fmt.Errorf("record every must be >= 0, got %d", c.RecordEvery))
	}
	return errors.Join(errs...)
}

// #endregion validate

// #region converters
// GovernorConfig scales the dead-band to TargetFPS and applies the
// particle bounds.
func (c Config) GovernorConfig() governor.Config {
	g := governor.ConfigForTarget(c.TargetFPS)
	g.TargetFPS = c.TargetFPS
	g.MinParticles = c.MinParticles
	g.MaxParticles = c.MaxParticles
	g.InitialParticles = c.InitialParticles
	return g
}

// PredictorConfig returns the LSTM settings.
func (c Config) PredictorConfig() predictor.Config {
	return predictor.Config{
		HiddenSize:  c.HiddenSize,
		Window:      c.Window,
		Seed:        c.PredictorSeed,
		WeightScale: c.WeightScale,
	}
}

// OrchestratorConfig assembles the frame loop config.
func (c Config) OrchestratorConfig() orchestrator.Config {
	o := orchestrator.DefaultConfig()
	o.Kind = distribution.Kind(c.Kind)
	o.AutoKind = c.AutoKind
	o.DwellTicks = c.DwellTicks
	o.Seed = c.Seed
	o.InjectBuffer = c.InjectBuffer
	o.CacheStep = c.CacheStep
	o.Governor = c.GovernorConfig()
	o.Predictor = c.PredictorConfig()
	return o
}

// SamplerConfig returns the analysis cadence.
func (c Config) SamplerConfig() analysis.SamplerConfig {
	return analysis.SamplerConfig{Interval: c.AnalyzeInterval, Timeout: c.AnalyzeTimeout}
}

// OpenAIConfig returns the hosted analyzer settings.
func (c Config) OpenAIConfig() analysis.OpenAIConfig {
	o := analysis.DefaultOpenAIConfig()
	o.APIKey = c.OpenAIKey
	o.BaseURL = c.OpenAIBaseURL
	if c.OpenAIModel != "" {
		o.Model = c.OpenAIModel
	}
	return o
}

// LoopConfig returns the ticker settings.
func (c Config) LoopConfig() orchestrator.LoopConfig {
	return orchestrator.LoopConfig{TargetFPS: c.TargetFPS}
}

// #endregion converters
