package orchestrator

// #region imports
import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/gate"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/governor"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/predictor"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/update"
)

// #endregion

// #region orchestrator-struct

// Orchestrator is the per-frame coordinator. It exclusively owns the
// authoritative affect state; the governor, predictor and engine own
// their own state and are only reached through their methods.
//
// Tick, State, Velocity, Budget and Reset belong to the frame goroutine.
// Inject, SetKind and Kind may be called from any goroutine.
type Orchestrator struct {
	config Config

	engine    *distribution.Engine
	cache     *distribution.Cache // nil when disabled
	governor  *governor.Governor
	predictor *predictor.Predictor
	gate      *gate.Gate
	selector  *KindSelector // nil unless AutoKind

	state    affect.State
	velocity [affect.NumChannels]float64
	tick     uint64

	lastAdjust  governor.Adjustment
	lastEffects bool
	warned      map[distribution.Kind]bool // fallbacks already logged

	inbox   chan affect.Partial
	dropped atomic.Uint64

	kindMu     sync.Mutex
	kind       distribution.Kind
	kindForced bool
}

// #endregion

// #region constructor

// NewOrchestrator creates a fully wired orchestrator over the given engine.
// A nil engine uses the default registry.
func NewOrchestrator(config Config, engine *distribution.Engine) (*Orchestrator, error) {
	if err := config.Governor.Validate(); err != nil {
		return nil, fmt.Errorf("governor config: %w", err)
	}
	if err := config.Predictor.Validate(); err != nil {
		return nil, fmt.Errorf("predictor config: %w", err)
	}
	if engine == nil {
		engine = distribution.NewEngine(distribution.DefaultRegistry())
	}
	if config.InjectBuffer < 1 {
		config.InjectBuffer = 1
	}
	if config.Kind == "" {
		config.Kind = distribution.KindFibonacci
	}

	o := &Orchestrator{
		config:    config,
		engine:    engine,
		governor:  governor.NewGovernor(config.Governor),
		predictor: predictor.New(config.Predictor),
		gate:      gate.NewGate(config.Gate),
		warned:    make(map[distribution.Kind]bool),
		inbox:     make(chan affect.Partial, config.InjectBuffer),
		kind:      config.Kind,
	}
	if config.CacheStep > 0 {
		o.cache = distribution.NewCache(engine, config.CacheStep)
	}
	if config.AutoKind {
		o.selector = NewKindSelector(config.Kind, config.DwellTicks)
	}
	o.resetSession()
	return o, nil
}

// #endregion

// #region tick

// Tick runs one frame: merge pending analysis, update affect from input,
// feed the predictor, let the governor react to the previous frame time,
// then generate positions under the new budget. The order is fixed.
func (o *Orchestrator) Tick(input InputSample, measuredFrameTimeMs float64) FrameOutput {
	o.tick++
	var events []Event

	// 1. Affect: pending merges first, then the input-driven update
	events = o.drain(events)
	in := o.normalize(input)
	res := update.Update(o.state, in, o.velocity, o.config.Update)
	o.state = res.NewState
	o.velocity = res.Velocity

	// 2. Predictor: modulates secondary parameters only
	o.predictor.Push(o.state)
	predicted := o.predictor.Predict()
	anticipation := clampSigned(predicted.Intensity() - o.state.Intensity())
	drift := predicted.Distance(o.state)

	// 3. Governor reacts to the previous frame's timing
	fps := FPSFromFrameTime(measuredFrameTimeMs)
	budget := o.governor.Observe(fps)
	events = o.noteBudget(budget, events)

	// 4. Distribution under the governed budget
	kind, forced := o.takeKind()
	switch {
	case o.selector == nil:
	case forced:
		// A forced kind holds for its own tick; dwell counting starts next tick.
		o.selector.Reset(kind)
	default:
		k, changed := o.selector.Select(o.state.Dominant())
		if changed {
			o.setKind(k)
			log.Printf("[FRAME] tick=%d auto kind → %s (dominant=%s)", o.tick, k, o.state.Dominant())
			events = append(events, Event{Kind: EventKindSet, Detail: string(k)})
		}
		kind = k
	}
	params := distribution.Params{
		State:        o.state,
		TimeSec:      in.ElapsedSec,
		Complexity:   budget.VisualComplexity,
		Anticipation: anticipation,
		Seed:         o.config.Seed,
	}
	var gen distribution.Result
	if o.cache != nil {
		gen = o.cache.Generate(kind, budget.ParticleCount, params)
	} else {
		gen = o.engine.Generate(kind, budget.ParticleCount, params)
	}
	if gen.Fallback != nil && !o.warned[gen.Fallback.Requested] {
		o.warned[gen.Fallback.Requested] = true
		log.Printf("[DIST] WARNING: %s, using %s", gen.Fallback.Reason, gen.Kind)
		events = append(events, Event{Kind: EventFallback, Detail: gen.Fallback.Reason})
	}

	// 5. Emit
	return FrameOutput{
		Tick:      o.tick,
		Positions: gen.Positions,
		Summary: ScalarSummary{
			Intensity:        o.state.Intensity(),
			Dominant:         o.state.Dominant(),
			QualityLevel:     budget.QualityLevel,
			EffectsEnabled:   budget.EffectsEnabled,
			ParticleCount:    len(gen.Positions),
			VisualComplexity: budget.VisualComplexity,
			Kind:             gen.Kind,
			FPS:              fps,
			Drift:            drift,
			Anticipation:     anticipation,
		},
		Audio:     audioCue(o.state, in.X),
		State:     o.state,
		Predicted: predicted,
		Budget:    budget,
		Events:    events,
	}
}

// FPSFromFrameTime converts a frame time to an instantaneous FPS estimate.
// Frame times below 1ms, and non-finite ones, are treated as 1ms.
func FPSFromFrameTime(ms float64) float64 {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms < 1 {
		ms = 1
	}
	return 1000 / ms
}

// #endregion

// #region inject

// Inject queues an analysis payload for the next tick. It never blocks:
// when the buffer is full the oldest pending payload is dropped.
func (o *Orchestrator) Inject(p affect.Partial) {
	cp := make(affect.Partial, len(p))
	for ch, v := range p {
		cp[ch] = v
	}
	for {
		select {
		case o.inbox <- cp:
			return
		default:
		}
		select {
		case <-o.inbox:
			o.dropped.Add(1)
		default:
		}
	}
}

// Dropped returns how many payloads were discarded because the buffer was full.
func (o *Orchestrator) Dropped() uint64 {
	return o.dropped.Load()
}

// drain merges every pending payload that passes the gate.
func (o *Orchestrator) drain(events []Event) []Event {
	for {
		select {
		case p := <-o.inbox:
			d := o.gate.Evaluate(o.state, p)
			switch d.Action {
			case "commit":
				o.state = o.state.Merge(p, d.Weight)
				log.Printf("[FRAME] tick=%d merged analysis: channels=%v %s", o.tick, p.Names(), d.Reason)
				events = append(events, Event{Kind: EventMerge, Detail: d.Reason})
			case "reject":
				log.Printf("[ANALYSIS] tick=%d payload rejected: %s", o.tick, d.Reason)
				events = append(events, Event{Kind: EventReject, Detail: d.Reason})
			}
		default:
			return events
		}
	}
}

// #endregion

// #region kind

// SetKind selects the layout for subsequent ticks. Unknown kinds are
// accepted and resolved by the engine's fallback. With AutoKind the
// selector restarts from kind on the next tick.
func (o *Orchestrator) SetKind(kind distribution.Kind) {
	o.kindMu.Lock()
	o.kind = kind
	o.kindForced = true
	o.kindMu.Unlock()
}

func (o *Orchestrator) setKind(kind distribution.Kind) {
	o.kindMu.Lock()
	o.kind = kind
	o.kindMu.Unlock()
}

// takeKind returns the kind and whether it was set through SetKind since
// the last tick.
func (o *Orchestrator) takeKind() (distribution.Kind, bool) {
	o.kindMu.Lock()
	defer o.kindMu.Unlock()
	forced := o.kindForced
	o.kindForced = false
	return o.kind, forced
}

// Kind returns the selected layout.
func (o *Orchestrator) Kind() distribution.Kind {
	o.kindMu.Lock()
	defer o.kindMu.Unlock()
	return o.kind
}

// SetAutoKind turns dominant-affect layout selection on or off. Unlike
// SetKind it is not safe to call concurrently with Tick; call it from the
// loop goroutine, for example inside a RenderSink.
func (o *Orchestrator) SetAutoKind(on bool) {
	o.config.AutoKind = on
	if !on {
		o.selector = nil
		return
	}
	if o.selector == nil {
		o.selector = NewKindSelector(o.Kind(), o.config.DwellTicks)
	}
}

// #endregion

// #region accessors

// State returns the authoritative affect state.
func (o *Orchestrator) State() affect.State { return o.state }

// Velocity returns the smoothed per-tick derivative of the state.
func (o *Orchestrator) Velocity() [affect.NumChannels]float64 { return o.velocity }

// Budget returns the current render budget.
func (o *Orchestrator) Budget() governor.RenderBudget { return o.governor.Budget() }

// GovernorStats returns the governor's observation counters.
func (o *Orchestrator) GovernorStats() governor.Stats { return o.governor.Stats() }

// Forecast extrapolates the affect state without advancing the predictor.
func (o *Orchestrator) Forecast(steps int) []affect.State { return o.predictor.Forecast(steps) }

// Config returns the construction config.
func (o *Orchestrator) Config() Config { return o.config }

// #endregion

// #region reset

// Reset starts a new session: baseline state, empty predictor history,
// default budget, tick counter at zero. Pending payloads are discarded and
// the selected kind is kept.
func (o *Orchestrator) Reset() {
	o.resetSession()
	log.Printf("[FRAME] session reset")
}

func (o *Orchestrator) resetSession() {
	o.state = affect.Baseline()
	o.velocity = [affect.NumChannels]float64{}
	o.tick = 0
	o.predictor.Reset()
	o.governor.Reset()
	if o.cache != nil {
		o.cache.Invalidate()
	}
pending:
	for {
		select {
		case <-o.inbox:
		default:
			break pending
		}
	}
	o.lastAdjust = governor.AdjustHold
	o.lastEffects = o.governor.Budget().EffectsEnabled
	if o.selector != nil {
		o.selector.Reset(o.Kind())
	}
}

// #endregion

// #region helpers

// normalize maps a raw input sample into the update's [0,1] space.
func (o *Orchestrator) normalize(s InputSample) update.Input {
	x, y := s.PointerX, s.PointerY
	if w := o.config.Viewport.Width; w > 0 {
		x /= w
	}
	if h := o.config.Viewport.Height; h > 0 {
		y /= h
	}
	return update.ClampInput(update.Input{X: x, Y: y, ElapsedSec: s.SessionElapsedMs / 1000})
}

// noteBudget logs governor direction changes and effect toggles, never
// steady-state frames.
func (o *Orchestrator) noteBudget(b governor.RenderBudget, events []Event) []Event {
	adj := o.governor.Last()
	if adj == governor.AdjustIgnore {
		return events
	}
	if adj != o.lastAdjust || b.EffectsEnabled != o.lastEffects {
		detail := fmt.Sprintf("%s quality=%.2f particles=%d complexity=%.2f effects=%v",
			adj, b.QualityLevel, b.ParticleCount, b.VisualComplexity, b.EffectsEnabled)
		log.Printf("[GOV] tick=%d %s", o.tick, detail)
		events = append(events, Event{Kind: EventBudget, Detail: detail})
	}
	o.lastAdjust = adj
	o.lastEffects = b.EffectsEnabled
	return events
}

// audioCue derives the audio scalars. The frequency hint mixes pointer x
// with a fixed channel blend so it stays continuous.
func audioCue(s affect.State, x float64) AudioCue {
	mix := 0.4*s.Get(affect.Joy) + 0.3*s.Get(affect.Curiosity) + 0.3*s.Get(affect.Tension)
	hint := 0.6*x + 0.4*mix
	return AudioCue{
		Intensity:     math.Min(1, math.Max(0, s.Intensity())),
		FrequencyHint: math.Min(1, math.Max(0, hint)),
	}
}

func clampSigned(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(-1, v))
}

// #endregion
