package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/analysis"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/audio"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/config"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/render"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/store"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/telemetry"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// The terminal belongs to the renderer, so logs go to a file.
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	summary, err := run(cfg)
	if err != nil {
		log.Printf("[FIELD] fatal: %v", err)
		fmt.Fprintf(os.Stderr, "field: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(summary)
}

// #endregion main

// #region run
func run(cfg config.Config) (string, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return "", fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Printf("[OTEL] shutdown: %v", err)
		}
	}()

	orchCfg := cfg.OrchestratorConfig()
	orch, err := orchestrator.NewOrchestrator(orchCfg, nil)
	if err != nil {
		return "", err
	}

	var recorder *store.Recorder
	if cfg.DBPath != "" {
		st, err := store.NewStore(cfg.DBPath)
		if err != nil {
			return "", fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		sess, err := st.StartSession(string(orchCfg.Kind), orchCfg)
		if err != nil {
			return "", err
		}
		recorder = store.NewRecorder(st, sess.ID, cfg.RecordEvery)
		log.Printf("[FIELD] session %s recording to %s", sess.ID, cfg.DBPath)
	}

	analyzer, closeAnalyzer, err := newAnalyzer(cfg)
	if err != nil {
		return "", err
	}
	defer closeAnalyzer()
	var sampler *analysis.Sampler
	if analyzer != nil {
		sampler = analysis.NewSampler(analyzer, orch, cfg.SamplerConfig())
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return "", fmt.Errorf("new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return "", fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	finalized := false
	fini := func() {
		if !finalized {
			finalized = true
			screen.Fini()
		}
	}
	defer fini()

	renderer := render.NewTerminalRenderer(screen, render.DefaultConfig())

	var sink orchestrator.AudioSink
	if cfg.Audio {
		player := audio.NewPlayer(cfg.Volume)
		if err := player.Init(); err != nil {
			log.Printf("[AUDIO] disabled: %v", err)
		} else {
			defer player.Close()
			sink = player
		}
	}

	ctl := newControls(orch, 16)
	sinks := []orchestrator.RenderSink{ctl, renderer}
	if recorder != nil {
		sinks = append(sinks, recorder)
	}
	loop := orchestrator.NewLoop(orch, cfg.LoopConfig(), renderer, sink, sinks...)

	var wg sync.WaitGroup
	if sampler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sampler.Run(ctx)
		}()
	}
	go pollEvents(screen, renderer, ctl, sampler, stop)

	log.Printf("[FIELD] started: kind=%s auto=%v analyzer=%s audio=%v", orchCfg.Kind, orchCfg.AutoKind, cfg.Analyzer, sink != nil)
	runErr := loop.Run(ctx)
	stop()
	wg.Wait()
	fini()

	b := orch.Budget()
	summary := fmt.Sprintf("observed=%d particles=%d quality=%.2f dropped=%d",
		orch.GovernorStats().Observations, b.ParticleCount, b.QualityLevel, orch.Dropped())
	if recorder != nil {
		snaps, events, failures := recorder.Counts()
		summary += fmt.Sprintf(" session=%s snapshots=%d events=%d store_failures=%d",
			recorder.SessionID(), snaps, events, failures)
	}
	if sampler != nil {
		st := sampler.Stats()
		summary += fmt.Sprintf(" analyzed=%d injected=%d analysis_failures=%d", st.Analyzed, st.Injected, st.Failed)
	}
	log.Printf("[FIELD] stopped: %s", summary)
	return summary, runErr
}

// #endregion run

// #region analyzer
func newAnalyzer(cfg config.Config) (analysis.Analyzer, func(), error) {
	noop := func() {}
	switch cfg.Analyzer {
	case config.AnalyzerNone:
		return nil, noop, nil
	case config.AnalyzerOpenAI:
		a, err := analysis.NewOpenAIAnalyzer(cfg.OpenAIConfig())
		if err != nil {
			return nil, noop, err
		}
		return a, noop, nil
	case config.AnalyzerGRPC:
		a, err := analysis.NewGRPCAnalyzer(cfg.AnalyzerAddr)
		if err != nil {
			return nil, noop, err
		}
		return a, func() { _ = a.Close() }, nil
	default:
		return analysis.NewLexiconAnalyzer(nil), noop, nil
	}
}

// #endregion analyzer

// #region events
// pollEvents runs until the screen is finalized.
func pollEvents(screen tcell.Screen, r *render.TerminalRenderer, ctl *controls, sampler *analysis.Sampler, quit func()) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		a := r.HandleEvent(ev)
		switch a.Kind {
		case render.ActionNone:
		case render.ActionQuit:
			quit()
		case render.ActionSubmit:
			if sampler == nil {
				r.SetMessage("analysis is disabled")
				continue
			}
			sampler.Submit(a.Text)
			r.SetMessage("analyzing: " + a.Text)
		default:
			if !ctl.Push(a) {
				r.SetMessage("busy, try again")
			}
		}
	}
}

// #endregion events
