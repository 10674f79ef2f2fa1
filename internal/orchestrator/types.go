package orchestrator

// #region imports
import (
	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/gate"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/governor"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/predictor"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/update"
)

// #endregion

// #region input

// InputSample is one raw reading from the input source. Pointer coordinates
// are in viewport units and may lie outside it; Tick clamps them.
type InputSample struct {
	PointerX         float64
	PointerY         float64
	SessionElapsedMs float64
}

// Viewport is the pointer coordinate space. A zero dimension means the
// pointer axis is already normalised to [0,1].
type Viewport struct {
	Width  float64
	Height float64
}

// #endregion

// #region output

// ScalarSummary is the compact per-frame description handed to sinks.
type ScalarSummary struct {
	Intensity        float64
	Dominant         affect.Channel
	QualityLevel     float64
	EffectsEnabled   bool
	ParticleCount    int
	VisualComplexity float64
	Kind             distribution.Kind
	FPS              float64
	Drift            float64 // L2 distance between predicted and current state
	Anticipation     float64 // predicted minus current intensity
}

// AudioCue is the audio sink contract: two scalars in [0,1].
type AudioCue struct {
	Intensity     float64
	FrequencyHint float64
}

// EventKind classifies a state transition worth recording.
type EventKind string

const (
	EventMerge    EventKind = "analysis_merge"
	EventReject   EventKind = "analysis_reject"
	EventFallback EventKind = "distribution_fallback"
	EventBudget   EventKind = "budget_change"
	EventKindSet  EventKind = "kind_change"
)

// Event is a transition that happened during a tick. Sinks may persist them;
// the orchestrator itself only logs.
type Event struct {
	Kind   EventKind
	Detail string
}

// FrameOutput is everything one tick produces. Positions may be shared with
// the distribution cache: sinks must treat them as read-only.
type FrameOutput struct {
	Tick      uint64
	Positions []distribution.Position
	Summary   ScalarSummary
	Audio     AudioCue
	State     affect.State
	Predicted affect.State
	Budget    governor.RenderBudget
	Events    []Event
}

// #endregion

// #region config

// Config wires every tunable of the frame loop. It is read once at
// construction; there is no live reconfiguration.
type Config struct {
	Viewport     Viewport
	Kind         distribution.Kind
	AutoKind     bool // follow the dominant affect with KindSelector
	DwellTicks   int  // ticks a new dominant affect must persist before AutoKind switches
	Seed         uint64
	InjectBuffer int     // pending analysis payloads kept before the oldest is dropped
	CacheStep    float64 // distribution cache quantisation; 0 disables the cache

	Update    update.UpdateConfig
	Gate      gate.GateConfig
	Governor  governor.Config
	Predictor predictor.Config
}

// DefaultConfig returns the 60 FPS defaults with a normalised viewport.
func DefaultConfig() Config {
	return Config{
		Kind:         distribution.KindFibonacci,
		DwellTicks:   90,
		Seed:         1,
		InjectBuffer: 8,
		CacheStep:    1e-4,
		Update:       update.DefaultUpdateConfig(),
		Gate:         gate.DefaultGateConfig(),
		Governor:     governor.DefaultConfig(),
		Predictor:    predictor.DefaultConfig(),
	}
}

// #endregion
