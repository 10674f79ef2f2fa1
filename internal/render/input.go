package render

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
)

// ActionKind is what an input event asks the application to do.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionQuit
	ActionReset
	ActionSetKind
	ActionAutoKind
	ActionSubmit
)

// Action is the result of HandleEvent.
type Action struct {
	Kind   ActionKind
	Layout distribution.Kind // for ActionSetKind
	Text   string            // for ActionSubmit
}

// HandleEvent updates pointer and command-line state from a tcell event
// and reports the resulting action. Typing ':' opens the command line;
// Enter submits it, Escape abandons it.
func (r *TerminalRenderer) HandleEvent(ev tcell.Event) Action {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		x, y := ev.Position()
		w, h := r.screen.Size()
		r.mu.Lock()
		if w > 1 {
			r.pointerX = clamp01(float64(x) / float64(w-1))
		}
		if h > 1 {
			r.pointerY = clamp01(float64(y) / float64(h-1))
		}
		r.mu.Unlock()
		return Action{}

	case *tcell.EventResize:
		r.screen.Sync()
		return Action{}

	case *tcell.EventKey:
		return r.handleKey(ev)
	}
	return Action{}
}

func (r *TerminalRenderer) handleKey(ev *tcell.EventKey) Action {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ev.Key() == tcell.KeyCtrlC {
		return Action{Kind: ActionQuit}
	}

	if r.editing {
		switch ev.Key() {
		case tcell.KeyEscape:
			r.editing = false
			r.line = r.line[:0]
		case tcell.KeyEnter:
			text := strings.TrimSpace(string(r.line))
			r.editing = false
			r.line = r.line[:0]
			if text != "" {
				return Action{Kind: ActionSubmit, Text: text}
			}
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(r.line) > 0 {
				r.line = r.line[:len(r.line)-1]
			}
		case tcell.KeyRune:
			r.line = append(r.line, ev.Rune())
		}
		return Action{}
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		return Action{Kind: ActionQuit}
	case tcell.KeyRune:
	default:
		return Action{}
	}

	switch ch := ev.Rune(); {
	case ch == 'q':
		return Action{Kind: ActionQuit}
	case ch == ':':
		r.editing = true
		r.line = r.line[:0]
		r.message = ""
	case ch == 'r':
		return Action{Kind: ActionReset}
	case ch == 'a':
		return Action{Kind: ActionAutoKind}
	case ch >= '1' && ch <= '9':
		kinds := distribution.Kinds()
		if i := int(ch - '1'); i < len(kinds) {
			return Action{Kind: ActionSetKind, Layout: kinds[i]}
		}
	}
	return Action{}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
