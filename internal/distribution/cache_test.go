package distribution

import (
	"reflect"
	"testing"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

func TestCache_HitOnEquivalentRequest(t *testing.T) {
	c := NewCache(NewEngine(DefaultRegistry()), 1e-3)
	p := halfParams()

	first := c.Generate(KindOrbital, 120, p)
	p.State = p.State.With(affect.Joy, 0.50001) // below quantisation step
	second := c.Generate(KindOrbital, 120, p)

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit / 1 miss, got %d / %d", hits, misses)
	}
	if !reflect.DeepEqual(first.Positions, second.Positions) {
		t.Fatal("cache hit should return the previous buffer")
	}
}

func TestCache_MissOnCountOrKindChange(t *testing.T) {
	c := NewCache(NewEngine(DefaultRegistry()), 0)
	p := halfParams()

	c.Generate(KindOrbital, 120, p)
	res := c.Generate(KindOrbital, 121, p)
	if len(res.Positions) != 121 {
		t.Fatalf("expected 121 positions after count change, got %d", len(res.Positions))
	}
	c.Generate(KindToroidal, 121, p)

	hits, misses := c.Stats()
	if hits != 0 || misses != 3 {
		t.Fatalf("expected 0 hits / 3 misses, got %d / %d", hits, misses)
	}
}

func TestCache_MatchesEngineOutput(t *testing.T) {
	e := NewEngine(DefaultRegistry())
	c := NewCache(e, 1e-3)
	p := halfParams()
	if !reflect.DeepEqual(c.Generate(KindNoiseGrid, 64, p), e.Generate(KindNoiseGrid, 64, p)) {
		t.Fatal("cached result should equal a direct engine call")
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := NewCache(NewEngine(DefaultRegistry()), 1e-3)
	p := halfParams()
	c.Generate(KindFibonacci, 10, p)
	c.Invalidate()
	c.Generate(KindFibonacci, 10, p)
	if hits, misses := c.Stats(); hits != 0 || misses != 2 {
		t.Fatalf("expected a miss after invalidate, got %d hits / %d misses", hits, misses)
	}
}
