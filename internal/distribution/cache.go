package distribution

import (
	"math"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// #region cache
// Cache reuses the previous buffer when a request is unchanged within the
// quantisation step. Returned slices are shared: callers must not mutate them.
// Not safe for concurrent use.
type Cache struct {
	engine *Engine
	step   float64

	valid bool
	key   cacheKey
	last  Result

	hits   uint64
	misses uint64
}

type cacheKey struct {
	kind     Kind
	count    int
	channels [affect.NumChannels]int64
	time     int64
	cplx     int64
	antic    int64
	seed     uint64
}

// NewCache wraps engine. step is the quantisation applied to float params
// (e.g. 1e-3); values <= 0 use 1e-3.
func NewCache(engine *Engine, step float64) *Cache {
	if step <= 0 {
		step = 1e-3
	}
	return &Cache{engine: engine, step: step}
}

// Generate returns the cached result for an equivalent request, otherwise
// delegates to the engine.
func (c *Cache) Generate(kind Kind, count int, p Params) Result {
	key := c.keyFor(kind, count, p)
	if c.valid && key == c.key {
		c.hits++
		return c.last
	}
	c.misses++
	res := c.engine.Generate(kind, count, p)
	c.key = key
	c.last = res
	c.valid = true
	return res
}

// Invalidate drops the cached buffer.
func (c *Cache) Invalidate() {
	c.valid = false
	c.last = Result{}
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}

// #endregion cache

// #region key
func (c *Cache) keyFor(kind Kind, count int, p Params) cacheKey {
	k := cacheKey{
		kind:  kind,
		count: count,
		time:  c.quantize(p.TimeSec),
		cplx:  c.quantize(p.Complexity),
		antic: c.quantize(p.Anticipation),
		seed:  p.Seed,
	}
	for i, v := range p.State.Channels() {
		k.channels[i] = c.quantize(v)
	}
	return k
}

func (c *Cache) quantize(v float64) int64 {
	return int64(math.Round(finiteOr(v, 0) / c.step))
}

// #endregion key
