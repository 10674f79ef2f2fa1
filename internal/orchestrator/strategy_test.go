package orchestrator

import (
	"testing"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/distribution"
)

func TestKindFor_CoversEveryChannel(t *testing.T) {
	engine := distribution.NewEngine(distribution.DefaultRegistry())
	for _, ch := range affect.Channels() {
		if k := KindFor(ch); !engine.Supports(k) {
			t.Fatalf("%s maps to unsupported kind %s", ch, k)
		}
	}
	if KindFor(affect.Channel(99)) != distribution.KindFibonacci {
		t.Fatal("unknown channel should map to fibonacci")
	}
}

func TestKindSelector_WaitsForDwell(t *testing.T) {
	s := NewKindSelector(distribution.KindFibonacci, 3)
	for i := 0; i < 2; i++ {
		if k, changed := s.Select(affect.Tension); changed || k != distribution.KindFibonacci {
			t.Fatalf("tick %d: switched before dwell elapsed", i)
		}
	}
	k, changed := s.Select(affect.Tension)
	if !changed || k != distribution.KindGaussian {
		t.Fatalf("expected switch to gaussian on third tick, got %s changed=%v", k, changed)
	}
	if _, changed := s.Select(affect.Tension); changed {
		t.Fatal("should report a change only once")
	}
}

func TestKindSelector_FlickerDoesNotSwitch(t *testing.T) {
	s := NewKindSelector(distribution.KindFibonacci, 3)
	for i := 0; i < 20; i++ {
		ch := affect.Joy
		if i%2 == 1 {
			ch = affect.Tension
		}
		if _, changed := s.Select(ch); changed {
			t.Fatalf("tick %d: flickering dominant switched the layout", i)
		}
	}
	if s.Current() != distribution.KindFibonacci {
		t.Fatalf("expected fibonacci, got %s", s.Current())
	}
}

func TestKindSelector_Reset(t *testing.T) {
	s := NewKindSelector(distribution.KindFibonacci, 2)
	s.Select(affect.Joy)
	s.Reset(distribution.KindToroidal)
	if k, changed := s.Select(affect.Joy); changed || k != distribution.KindToroidal {
		t.Fatalf("reset should restart the dwell count, got %s changed=%v", k, changed)
	}
	if k, _ := s.Select(affect.Joy); k != distribution.KindOrbital {
		t.Fatalf("expected orbital after dwell, got %s", k)
	}
}
