package predictor

import (
	"fmt"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// InputSize is fixed to the affect channel count; the output has the same shape.
const InputSize = affect.NumChannels

// #region config
// Config sizes the recurrent cell and its history window.
type Config struct {
	HiddenSize  int     // length of hidden and cell vectors
	Window      int     // history capacity (FIFO)
	Seed        int64   // weight initialisation seed
	WeightScale float64 // uniform init range is +-WeightScale/sqrt(fan-in)
}

// DefaultConfig returns a 16-unit cell over a 20-sample window.
func DefaultConfig() Config {
	return Config{
		HiddenSize:  16,
		Window:      20,
		Seed:        1,
		WeightScale: 1.0,
	}
}

// Validate rejects sizes the cell cannot be built with.
func (c Config) Validate() error {
	if c.HiddenSize < 1 || c.HiddenSize > 1024 {
		return fmt.Errorf("predictor hidden size %d outside [1, 1024]", c.HiddenSize)
	}
	if c.Window < 1 || c.Window > 10000 {
		return fmt.Errorf("predictor window %d outside [1, 10000]", c.Window)
	}
	if !(c.WeightScale > 0) {
		return fmt.Errorf("predictor weight scale must be positive, got %v", c.WeightScale)
	}
	return nil
}

// #endregion config

// #region layer
// layer is a dense affine map: out = W*in + b.
type layer struct {
	W [][]float64 // [out][in]
	B []float64   // [out]
}

func newLayer(out, in int) layer {
	w := make([][]float64, out)
	for i := range w {
		w[i] = make([]float64, in)
	}
	return layer{W: w, B: make([]float64, out)}
}

// apply writes W*in + b into dst (len(dst) == len(W)).
func (l layer) apply(dst, in []float64) {
	for i, row := range l.W {
		sum := l.B[i]
		for j, w := range row {
			sum += w * in[j]
		}
		dst[i] = sum
	}
}

// #endregion layer
