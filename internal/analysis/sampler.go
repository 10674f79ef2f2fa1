package analysis

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// Injector receives analyzer output. *orchestrator.Orchestrator satisfies it.
type Injector interface {
	Inject(p affect.Partial)
}

// SamplerConfig bounds how often and how long the analyzer runs.
type SamplerConfig struct {
	Interval time.Duration // minimum gap between analyzer calls
	Timeout  time.Duration // per-call deadline
}

// DefaultSamplerConfig returns a one-second cadence with a five-second cap.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		Interval: time.Second,
		Timeout:  5 * time.Second,
	}
}

// SamplerStats counts sampler outcomes.
type SamplerStats struct {
	Submitted int
	Analyzed  int
	Injected  int
	Empty     int
	Failed    int
}

// Sampler runs an Analyzer off the frame loop. Submit never blocks; only
// the most recent text is analyzed, older unsent text is superseded.
type Sampler struct {
	analyzer Analyzer
	injector Injector
	cfg      SamplerConfig

	mu      sync.Mutex
	pending string
	has     bool
	stats   SamplerStats

	wake chan struct{}
}

// NewSampler wires analyzer output into injector.
func NewSampler(analyzer Analyzer, injector Injector, cfg SamplerConfig) *Sampler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSamplerConfig().Timeout
	}
	if cfg.Interval < 0 {
		cfg.Interval = 0
	}
	return &Sampler{
		analyzer: analyzer,
		injector: injector,
		cfg:      cfg,
		wake:     make(chan struct{}, 1),
	}
}

// Submit queues text for analysis, replacing anything not yet picked up.
// Blank text is ignored.
func (s *Sampler) Submit(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	s.mu.Lock()
	s.pending = text
	s.has = true
	s.stats.Submitted++
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Stats returns a snapshot of the counters.
func (s *Sampler) Stats() SamplerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Run processes submissions until ctx is cancelled. It returns nil on
// cancellation.
func (s *Sampler) Run(ctx context.Context) error {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		}

		if !last.IsZero() && s.cfg.Interval > 0 {
			if wait := s.cfg.Interval - time.Since(last); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil
				case <-timer.C:
				}
			}
		}

		text, ok := s.take()
		if !ok {
			continue
		}
		last = time.Now()
		s.analyze(ctx, text)
	}
}

func (s *Sampler) take() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has {
		return "", false
	}
	text := s.pending
	s.pending = ""
	s.has = false
	return text, true
}

func (s *Sampler) analyze(ctx context.Context, text string) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	p, err := s.analyzer.Analyze(callCtx, text)

	s.mu.Lock()
	s.stats.Analyzed++
	switch {
	case err != nil:
		s.stats.Failed++
	case len(p) == 0:
		s.stats.Empty++
	default:
		s.stats.Injected++
	}
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return
		}
		log.Printf("[ANALYZE] failed: %v", err)
		return
	}
	if len(p) == 0 {
		return
	}
	log.Printf("[ANALYZE] inject %v", p.Names())
	s.injector.Inject(p)
}
