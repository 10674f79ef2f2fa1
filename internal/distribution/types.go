package distribution

import "github.com/danielpatrickdp/affect-field/go-controller/internal/affect"

// #region kind
// Kind names a spatial layout algorithm.
type Kind string

const (
	KindFibonacci Kind = "fibonacci-spiral"
	KindGaussian  Kind = "gaussian-cloud"
	KindToroidal  Kind = "toroidal"
	KindNoiseGrid Kind = "noise-grid"
	KindOrbital   Kind = "orbital-shells"
)

// Kinds lists the built-in layouts in a stable order.
func Kinds() []Kind {
	return []Kind{KindFibonacci, KindGaussian, KindToroidal, KindNoiseGrid, KindOrbital}
}

// #endregion kind

// #region position
// Position is one particle slot. Index is unique within a generation call.
type Position struct {
	Index   int
	X, Y, Z float64
}

// #endregion position

// #region params
// Params carries everything an algorithm may read. Generation is a pure
// function of (kind, count, Params); time only enters through TimeSec.
type Params struct {
	State        affect.State
	TimeSec      float64 // session time driving slow rotation/undulation
	Complexity   float64 // governor visual complexity in [0.3,1]; 0 is treated as 1
	Anticipation float64 // predicted minus current intensity, in [-1,1]
	Seed         uint64  // noise seed; fixed per session
}

// complexity returns the effective complexity multiplier.
func (p Params) complexity() float64 {
	if p.Complexity <= 0 || p.Complexity > 1 {
		return 1
	}
	return p.Complexity
}

// #endregion params

// #region algorithm
// Algorithm maps a slot index to a position. It must be total over
// 0 <= index < count and must not retain state between calls.
type Algorithm func(index, count int, p Params) Position

// Registry maps kind identifiers to algorithms.
type Registry map[Kind]Algorithm

// DefaultRegistry returns the five built-in layouts.
func DefaultRegistry() Registry {
	return Registry{
		KindFibonacci: FibonacciSpiral,
		KindGaussian:  GaussianCloud,
		KindToroidal:  Toroidal,
		KindNoiseGrid: NoiseGrid,
		KindOrbital:   OrbitalShells,
	}
}

// #endregion algorithm

// #region result
// Fallback reports that the requested kind could not be served and the
// fibonacci spiral was used instead. It is a warning, never an error.
type Fallback struct {
	Requested Kind
	Reason    string
}

// Result is the output of one Generate call.
type Result struct {
	Kind      Kind // kind actually used
	Positions []Position
	Fallback  *Fallback // nil when the requested kind was served
}

// #endregion result
