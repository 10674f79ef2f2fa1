package orchestrator

// #region imports
import (
	"context"
	"fmt"
	"log"
	"time"
)

// #endregion

// #region sinks

// RenderSink draws or records a frame. It must tolerate the position count
// changing between frames. An error stops the loop.
type RenderSink interface {
	Render(out FrameOutput) error
}

// AudioSink receives the audio scalars once per frame. It must not block.
type AudioSink interface {
	Play(cue AudioCue)
}

// InputSource supplies the latest pointer reading. Elapsed time is filled
// in by the loop.
type InputSource interface {
	Pointer() (x, y float64)
}

// RenderFunc adapts a function to RenderSink.
type RenderFunc func(out FrameOutput) error

// Render calls f(out).
func (f RenderFunc) Render(out FrameOutput) error { return f(out) }

// #endregion

// #region loop

// LoopConfig controls the frame pacing.
type LoopConfig struct {
	TargetFPS float64
	MaxTicks  uint64 // 0 = run until the context is cancelled
}

// Loop drives Tick at the target rate from a single goroutine, so ticks
// never overlap.
type Loop struct {
	orch   *Orchestrator
	input  InputSource
	audio  AudioSink
	render []RenderSink
	config LoopConfig
	now    func() time.Time
}

// NewLoop wires an orchestrator to its collaborators. input and audio may
// be nil.
func NewLoop(orch *Orchestrator, config LoopConfig, input InputSource, audio AudioSink, render ...RenderSink) *Loop {
	if config.TargetFPS <= 0 {
		config.TargetFPS = 60
	}
	return &Loop{
		orch:   orch,
		input:  input,
		audio:  audio,
		render: render,
		config: config,
		now:    time.Now,
	}
}

// Run ticks until ctx is cancelled or MaxTicks is reached. The frame time
// fed to each tick is the wall time since the previous tick started.
func (l *Loop) Run(ctx context.Context) error {
	period := time.Duration(float64(time.Second) / l.config.TargetFPS)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	start := l.now()
	last := start
	frameMs := float64(period) / float64(time.Millisecond)
	var ticks uint64

	log.Printf("[FRAME] loop started: target=%.0f fps period=%s", l.config.TargetFPS, period)
	for {
		if ctx.Err() != nil {
			log.Printf("[FRAME] loop stopped after %d ticks", ticks)
			return nil
		}
		now := l.now()
		if ticks > 0 {
			frameMs = float64(now.Sub(last)) / float64(time.Millisecond)
		}
		last = now

		sample := InputSample{SessionElapsedMs: float64(now.Sub(start)) / float64(time.Millisecond)}
		if l.input != nil {
			sample.PointerX, sample.PointerY = l.input.Pointer()
		}

		out := l.orch.Tick(sample, frameMs)
		if l.audio != nil {
			l.audio.Play(out.Audio)
		}
		for _, r := range l.render {
			if err := r.Render(out); err != nil {
				return fmt.Errorf("render tick %d: %w", out.Tick, err)
			}
		}

		ticks++
		if l.config.MaxTicks > 0 && ticks >= l.config.MaxTicks {
			log.Printf("[FRAME] loop finished after %d ticks", ticks)
			return nil
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
}

// #endregion
