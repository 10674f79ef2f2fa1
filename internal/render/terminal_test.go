package render

import (
	"math"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
)

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func rowText(screen tcell.Screen, y, w int) string {
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func countGlyphs(screen tcell.Screen, w, h int) int {
	n := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := screen.GetContent(x, y)
			if r != ' ' && r != 0 {
				n++
			}
		}
	}
	return n
}

func frame(positions []distribution.Position) orchestrator.FrameOutput {
	return orchestrator.FrameOutput{
		Tick:      1,
		Positions: positions,
		Summary: orchestrator.ScalarSummary{
			Kind:          distribution.KindFibonacci,
			Dominant:      affect.Joy,
			Intensity:     0.5,
			ParticleCount: len(positions),
			QualityLevel:  1,
			FPS:           60,
		},
	}
}

func TestProject_CentreAndBounds(t *testing.T) {
	x, y, depth, ok := Project(distribution.Position{}, 0, 80, 24, 4)
	if !ok || x != 40 || y != 12 {
		t.Fatalf("origin should land at centre, got (%d,%d) ok=%v", x, y, ok)
	}
	if math.Abs(depth-0.5) > 1e-12 {
		t.Fatalf("origin depth should be 0.5, got %v", depth)
	}
	if _, _, _, ok := Project(distribution.Position{X: 100}, 0, 80, 24, 4); ok {
		t.Fatal("far position should be off-screen")
	}
	if _, _, _, ok := Project(distribution.Position{X: math.NaN()}, 0, 80, 24, 4); ok {
		t.Fatal("NaN should not project")
	}
	if _, _, _, ok := Project(distribution.Position{}, 0, 0, 24, 4); ok {
		t.Fatal("zero-width screen should not project")
	}
}

func TestProject_RotationSwapsAxes(t *testing.T) {
	p := distribution.Position{Z: 2}
	_, _, near, _ := Project(p, 0, 80, 24, 4)
	if near <= 0.5 {
		t.Fatalf("positive z should be near, got depth %v", near)
	}
	x, _, depth, ok := Project(p, math.Pi/2, 80, 24, 4)
	if !ok || x <= 40 || math.Abs(depth-0.5) > 1e-9 {
		t.Fatalf("quarter turn should move z onto x: x=%d depth=%v", x, depth)
	}
}

func TestRender_DrawsParticlesAndStatus(t *testing.T) {
	screen := newSimScreen(t, 80, 24)
	r := NewTerminalRenderer(screen, DefaultConfig())

	engine := distribution.NewEngine(distribution.DefaultRegistry())
	res := engine.Generate(distribution.KindFibonacci, 200, distribution.Params{State: affect.Neutral()})
	if err := r.Render(frame(res.Positions)); err != nil {
		t.Fatalf("render: %v", err)
	}

	if n := countGlyphs(screen, 80, 22); n == 0 {
		t.Fatal("expected particles on screen")
	}
	status := rowText(screen, 22, 80)
	if !strings.Contains(status, string(distribution.KindFibonacci)) || !strings.Contains(status, "joy") {
		t.Fatalf("status line missing summary: %q", status)
	}
	if !strings.Contains(rowText(screen, 23, 80), "quit") {
		t.Fatal("help line missing")
	}
}

func TestRender_ToleratesChangingCounts(t *testing.T) {
	screen := newSimScreen(t, 60, 20)
	r := NewTerminalRenderer(screen, DefaultConfig())
	engine := distribution.NewEngine(distribution.DefaultRegistry())

	for _, n := range []int{500, 0, 50, 3000} {
		res := engine.Generate(distribution.KindGaussian, n, distribution.Params{State: affect.Neutral()})
		if err := r.Render(frame(res.Positions)); err != nil {
			t.Fatalf("render %d: %v", n, err)
		}
	}
	if err := r.Render(frame(nil)); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if n := countGlyphs(screen, 60, 18); n != 0 {
		t.Fatalf("empty frame should clear the field, found %d glyphs", n)
	}
}

func TestRender_DominantColour(t *testing.T) {
	screen := newSimScreen(t, 40, 12)
	r := NewTerminalRenderer(screen, Config{Extent: 4})
	out := frame([]distribution.Position{{Index: 0, Z: 4}})
	out.Summary.Dominant = affect.Tension
	if err := r.Render(out); err != nil {
		t.Fatalf("render: %v", err)
	}
	x, y, _, _ := Project(out.Positions[0], 0, 40, 12, 4)
	glyph, _, style, _ := screen.GetContent(x, y)
	if glyph != '@' {
		t.Fatalf("nearest depth should draw '@', got %q", glyph)
	}
	fg, _, _ := style.Decompose()
	if fg != ColorFor(affect.Tension) {
		t.Fatalf("expected tension colour at full depth, got %v", fg)
	}
}

func TestColorFor_Unknown(t *testing.T) {
	if ColorFor(affect.Channel(42)) != tcell.ColorWhite {
		t.Fatal("unknown channel should be white")
	}
}
