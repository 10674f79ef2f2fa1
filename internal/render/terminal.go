package render

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
)

// #region config

// Config controls projection and chrome.
type Config struct {
	Extent          float64 // world half-width mapped to the shorter screen axis
	RotationPerTick float64 // radians of y-rotation per frame
	StatusLine      bool
}

// DefaultConfig fits the built-in layouts with a slow spin.
func DefaultConfig() Config {
	return Config{
		Extent:          4.5,
		RotationPerTick: 0.004,
		StatusLine:      true,
	}
}

// #endregion config

// #region palette

// depthGlyphs runs from far to near.
var depthGlyphs = []rune{'.', '·', '+', '*', 'o', '@'}

var palette = map[affect.Channel]tcell.Color{
	affect.Joy:       tcell.NewRGBColor(255, 200, 60),
	affect.Curiosity: tcell.NewRGBColor(80, 220, 160),
	affect.Wonder:    tcell.NewRGBColor(150, 120, 255),
	affect.Serenity:  tcell.NewRGBColor(90, 170, 255),
	affect.Longing:   tcell.NewRGBColor(200, 120, 180),
	affect.Tension:   tcell.NewRGBColor(255, 70, 60),
	affect.Awe:       tcell.NewRGBColor(230, 230, 255),
}

// ColorFor returns the base colour of the dominant channel.
func ColorFor(ch affect.Channel) tcell.Color {
	if c, ok := palette[ch]; ok {
		return c
	}
	return tcell.ColorWhite
}

// shade scales c toward black by factor f in [0,1].
func shade(c tcell.Color, f float64) tcell.Color {
	r, g, b := c.RGB()
	f = math.Max(0.15, math.Min(1, f))
	return tcell.NewRGBColor(int32(float64(r)*f), int32(float64(g)*f), int32(float64(b)*f))
}

// #endregion palette

// #region renderer

// TerminalRenderer draws frames onto a tcell screen and tracks the mouse
// pointer and the command line. Render runs on the frame loop goroutine;
// HandleEvent runs on the event goroutine.
type TerminalRenderer struct {
	screen tcell.Screen
	cfg    Config

	mu       sync.Mutex
	pointerX float64
	pointerY float64
	editing  bool
	line     []rune
	message  string
}

// NewTerminalRenderer wraps an initialised screen.
func NewTerminalRenderer(screen tcell.Screen, cfg Config) *TerminalRenderer {
	if cfg.Extent <= 0 {
		cfg.Extent = DefaultConfig().Extent
	}
	return &TerminalRenderer{
		screen:   screen,
		cfg:      cfg,
		pointerX: 0.5,
		pointerY: 0.5,
	}
}

// Pointer returns the last mouse position normalised to [0,1].
func (r *TerminalRenderer) Pointer() (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pointerX, r.pointerY
}

// SetMessage shows text on the status line until replaced.
func (r *TerminalRenderer) SetMessage(msg string) {
	r.mu.Lock()
	r.message = msg
	r.mu.Unlock()
}

// Render draws one frame. When particles share a cell the nearest wins.
func (r *TerminalRenderer) Render(out orchestrator.FrameOutput) error {
	w, h := r.screen.Size()
	if w <= 0 || h <= 0 {
		return nil
	}
	fieldH := h
	if r.cfg.StatusLine && h > 2 {
		fieldH = h - 2
	}

	r.screen.Clear()
	base := ColorFor(out.Summary.Dominant)
	angle := float64(out.Tick) * r.cfg.RotationPerTick

	cells := make(map[[2]int]float64, len(out.Positions))
	for _, p := range out.Positions {
		x, y, depth, ok := Project(p, angle, w, fieldH, r.cfg.Extent)
		if !ok {
			continue
		}
		key := [2]int{x, y}
		if d, seen := cells[key]; seen && d >= depth {
			continue
		}
		cells[key] = depth
	}
	for key, depth := range cells {
		glyph := depthGlyphs[glyphIndex(depth)]
		style := tcell.StyleDefault.Foreground(shade(base, 0.35+0.65*depth))
		if out.Summary.EffectsEnabled && depth > 0.85 {
			style = style.Bold(true)
		}
		r.screen.SetContent(key[0], key[1], glyph, nil, style)
	}

	if r.cfg.StatusLine && h > 2 {
		r.drawStatus(out, w, h)
	}
	r.screen.Show()
	return nil
}

// Project maps a world position to a cell after rotating by angle around
// the y axis. depth is 0 far and 1 near; ok is false off-screen or for
// non-finite input.
func Project(p distribution.Position, angle float64, w, h int, extent float64) (x, y int, depth float64, ok bool) {
	if math.IsNaN(p.X+p.Y+p.Z) || math.IsInf(p.X+p.Y+p.Z, 0) || w <= 0 || h <= 0 || extent <= 0 {
		return 0, 0, 0, false
	}
	sin, cos := math.Sincos(angle)
	rx := p.X*cos + p.Z*sin
	rz := -p.X*sin + p.Z*cos

	// Cells are roughly twice as tall as wide, so rows get half the scale.
	scale := math.Min(float64(w)/2, float64(h)) / extent
	fx := float64(w)/2 + rx*scale
	fy := float64(h)/2 - p.Y*scale*0.5
	x, y = int(math.Floor(fx)), int(math.Floor(fy))
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0, 0, 0, false
	}
	depth = 0.5 + 0.5*math.Max(-1, math.Min(1, rz/extent))
	return x, y, depth, true
}

func glyphIndex(depth float64) int {
	i := int(depth * float64(len(depthGlyphs)))
	if i < 0 {
		return 0
	}
	if i >= len(depthGlyphs) {
		return len(depthGlyphs) - 1
	}
	return i
}

func (r *TerminalRenderer) drawStatus(out orchestrator.FrameOutput, w, h int) {
	s := out.Summary
	effects := "off"
	if s.EffectsEnabled {
		effects = "on"
	}
	status := fmt.Sprintf(" %s | %-9s i=%.2f | %s | n=%d q=%.2f fx=%s | %.0f fps | drift=%.3f",
		s.Kind, s.Dominant, s.Intensity, strings.Repeat("#", int(math.Round(s.Intensity*10))),
		s.ParticleCount, s.QualityLevel, effects, s.FPS, s.Drift)
	barStyle := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(ColorFor(s.Dominant))
	drawText(r.screen, 0, h-2, w, status, barStyle)

	r.mu.Lock()
	var bottom string
	switch {
	case r.editing:
		bottom = ":" + string(r.line)
	case r.message != "":
		bottom = r.message
	default:
		bottom = " move the mouse · ':' to type a feeling · 1-5 layout · a auto · r reset · q quit"
	}
	r.mu.Unlock()
	drawText(r.screen, 0, h-1, w, bottom, tcell.StyleDefault.Foreground(tcell.ColorGray))
}

// drawText writes s from (x,y), padding or truncating to width.
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	col := x
	for _, ch := range s {
		if col >= x+width {
			return
		}
		screen.SetContent(col, y, ch, nil, style)
		col++
	}
	for ; col < x+width; col++ {
		screen.SetContent(col, y, ' ', nil, style)
	}
}

// #endregion renderer
