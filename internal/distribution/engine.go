package distribution

import (
	"fmt"
	"math"
)

// #region engine
// Engine generates particle layouts from an immutable kind registry.
// It holds no per-call state; Generate is safe to call from any goroutine.
type Engine struct {
	registry Registry
	fallback Algorithm
}

// NewEngine copies reg so later changes by the caller do not leak in.
// A nil or empty registry still serves the fibonacci fallback.
func NewEngine(reg Registry) *Engine {
	copied := make(Registry, len(reg))
	for k, alg := range reg {
		copied[k] = alg
	}
	fb := copied[KindFibonacci]
	if fb == nil {
		fb = FibonacciSpiral
	}
	return &Engine{registry: copied, fallback: fb}
}

// Kinds reports the registered kinds with a non-nil algorithm.
func (e *Engine) Kinds() []Kind {
	var out []Kind
	for _, k := range Kinds() {
		if e.registry[k] != nil {
			out = append(out, k)
		}
	}
	for k, alg := range e.registry {
		if alg != nil && !isBuiltin(k) {
			out = append(out, k)
		}
	}
	return out
}

// Supports reports whether kind has a registered algorithm.
func (e *Engine) Supports(kind Kind) bool {
	return e.registry[kind] != nil
}

// #endregion engine

// #region generate
// Generate produces exactly count positions (none when count <= 0).
// Unknown kinds or kinds registered without an algorithm fall back to the
// fibonacci spiral; the Result carries the warning.
func (e *Engine) Generate(kind Kind, count int, p Params) Result {
	alg, ok := e.registry[kind]
	res := Result{Kind: kind}
	switch {
	case !ok:
		alg = e.fallback
		res.Kind = KindFibonacci
		res.Fallback = &Fallback{Requested: kind, Reason: fmt.Sprintf("unknown distribution kind %q", kind)}
	case alg == nil:
		alg = e.fallback
		res.Kind = KindFibonacci
		res.Fallback = &Fallback{Requested: kind, Reason: fmt.Sprintf("no algorithm registered for %q", kind)}
	}

	if count <= 0 {
		res.Positions = []Position{}
		return res
	}

	positions := make([]Position, count)
	for i := 0; i < count; i++ {
		pos := alg(i, count, p)
		positions[i] = Position{
			Index: i,
			X:     finiteOr(pos.X, 0),
			Y:     finiteOr(pos.Y, 0),
			Z:     finiteOr(pos.Z, 0),
		}
	}
	res.Positions = positions
	return res
}

// #endregion generate

// #region count
// NormalizeCount converts a float particle budget to a slot count.
// Negative, NaN and infinite values become 0.
func NormalizeCount(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

// #endregion count

// #region helpers
func isBuiltin(k Kind) bool {
	for _, b := range Kinds() {
		if b == k {
			return true
		}
	}
	return false
}

// #endregion helpers
