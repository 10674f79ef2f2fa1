package render

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
)

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHandleEvent_MouseUpdatesPointer(t *testing.T) {
	screen := newSimScreen(t, 81, 21)
	r := NewTerminalRenderer(screen, DefaultConfig())

	if x, y := r.Pointer(); x != 0.5 || y != 0.5 {
		t.Fatalf("pointer should start centred, got %v,%v", x, y)
	}
	r.HandleEvent(tcell.NewEventMouse(80, 0, tcell.ButtonNone, tcell.ModNone))
	if x, y := r.Pointer(); x != 1 || y != 0 {
		t.Fatalf("expected 1,0 got %v,%v", x, y)
	}
	r.HandleEvent(tcell.NewEventMouse(20, 10, tcell.ButtonNone, tcell.ModNone))
	if x, y := r.Pointer(); x != 0.25 || y != 0.5 {
		t.Fatalf("expected 0.25,0.5 got %v,%v", x, y)
	}
}

func TestHandleEvent_Keys(t *testing.T) {
	r := NewTerminalRenderer(newSimScreen(t, 40, 10), DefaultConfig())

	if a := r.HandleEvent(key('q')); a.Kind != ActionQuit {
		t.Fatalf("q should quit, got %v", a.Kind)
	}
	if a := r.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)); a.Kind != ActionQuit {
		t.Fatal("ctrl-c should quit")
	}
	if a := r.HandleEvent(key('r')); a.Kind != ActionReset {
		t.Fatal("r should reset")
	}
	if a := r.HandleEvent(key('a')); a.Kind != ActionAutoKind {
		t.Fatal("a should enable auto layout")
	}
	a := r.HandleEvent(key('2'))
	if a.Kind != ActionSetKind || a.Layout != distribution.Kinds()[1] {
		t.Fatalf("2 should select the second layout, got %+v", a)
	}
	if a := r.HandleEvent(key('9')); a.Kind != ActionNone {
		t.Fatal("out-of-range digit should be ignored")
	}
}

func TestHandleEvent_CommandLine(t *testing.T) {
	r := NewTerminalRenderer(newSimScreen(t, 40, 10), DefaultConfig())

	r.HandleEvent(key(':'))
	for _, ch := range "joyx" {
		if a := r.HandleEvent(key(ch)); a.Kind != ActionNone {
			t.Fatalf("typing should not trigger actions, got %v", a.Kind)
		}
	}
	r.HandleEvent(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	a := r.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if a.Kind != ActionSubmit || a.Text != "joy" {
		t.Fatalf("expected submit of %q, got %+v", "joy", a)
	}

	// q after submit is a command again.
	if a := r.HandleEvent(key('q')); a.Kind != ActionQuit {
		t.Fatal("command line should close after enter")
	}

	r.HandleEvent(key(':'))
	r.HandleEvent(key('q'))
	if a := r.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)); a.Kind != ActionNone {
		t.Fatal("escape while editing should only close the line")
	}
	if a := r.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)); a.Kind != ActionNone {
		t.Fatal("enter outside the command line does nothing")
	}
}
