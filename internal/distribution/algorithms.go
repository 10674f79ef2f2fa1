package distribution

import (
	"math"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// goldenAngle is pi * (3 - sqrt(5)).
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// invPhi is 1/phi, used for low-discrepancy sequences.
var invPhi = (math.Sqrt(5) - 1) / 2

// Every perturbation below is a smooth function of the channel values and
// time. None branch on Dominant(), so adjacent frames with similar state
// produce adjacent layouts.

// #region fibonacci
// FibonacciSpiral places points on a golden-angle sphere. Wonder makes the
// shell breathe, curiosity spins it, intensity adds surface noise.
func FibonacciSpiral(index, count int, p Params) Position {
	s := p.State
	n := float64(count)
	i := float64(index)

	y := 1 - 2*(i+0.5)/n
	r := math.Sqrt(math.Max(0, 1-y*y))
	spin := p.TimeSec * (0.05 + 0.35*s.Get(affect.Curiosity))
	theta := goldenAngle*i + spin

	radius := 1.0 + 0.12*s.Get(affect.Wonder)*math.Sin(0.07*i+p.TimeSec) + 0.1*p.Anticipation
	amp := 0.04 * s.Intensity() * p.complexity()
	radius += amp * hashNoise(index, p.Seed, 1)

	x := math.Cos(theta) * r * radius
	z := math.Sin(theta) * r * radius
	return Position{X: x, Y: y * radius, Z: z}
}

// #endregion fibonacci

// #region gaussian
// GaussianCloud scatters points in an anisotropic normal cloud. Intensity
// widens it, tension stretches it vertically, serenity flattens it.
func GaussianCloud(index, count int, p Params) Position {
	s := p.State
	gx, gy, gz := gaussian3(index, p.Seed)

	sigma := 0.35 + 0.35*s.Intensity() + 0.05*p.Anticipation
	sx := sigma * (1 + 0.2*s.Get(affect.Serenity))
	sy := sigma * (1 + 0.6*s.Get(affect.Tension) - 0.3*s.Get(affect.Serenity))
	sz := sx

	// slow drift so the cloud reads as alive
	drift := 0.05 * p.complexity() * math.Sin(p.TimeSec*0.5+float64(index)*0.013)

	x, z := rotateY(gx*sx, gz*sz, p.TimeSec*0.1*s.Get(affect.Curiosity))
	return Position{X: x + drift, Y: gy * sy, Z: z - drift}
}

// #endregion gaussian

// #region toroidal
// Toroidal wraps points around a torus. Longing thickens the tube, serenity
// slows its rotation, awe widens the ring.
func Toroidal(index, count int, p Params) Position {
	s := p.State
	i := float64(index)
	n := float64(count)

	major := 1.0 + 0.3*s.Get(affect.Awe) + 0.05*p.Anticipation
	minor := 0.2 + 0.25*s.Get(affect.Longing)

	u := 2 * math.Pi * math.Mod(i*invPhi, 1)
	v := 2*math.Pi*i/n*7 + p.TimeSec*(0.6-0.4*s.Get(affect.Serenity))

	wobble := 0.03 * s.Intensity() * p.complexity() * hashNoise(index, p.Seed, 3)
	rr := minor + wobble

	x := (major + rr*math.Cos(v)) * math.Cos(u)
	y := rr * math.Sin(v)
	z := (major + rr*math.Cos(v)) * math.Sin(u)
	x, z = rotateY(x, z, p.TimeSec*0.15)
	return Position{X: x, Y: y, Z: z}
}

// #endregion toroidal

// #region noise-grid
// NoiseGrid lays points on a cubic lattice displaced by hash noise. Intensity
// and complexity scale the displacement, wonder adds a travelling wave.
func NoiseGrid(index, count int, p Params) Position {
	s := p.State
	side := int(math.Ceil(math.Cbrt(float64(count))))
	if side < 1 {
		side = 1
	}
	gx := index % side
	gy := (index / side) % side
	gz := index / (side * side)

	cell := 2.0 / float64(side)
	x := -1 + cell*(float64(gx)+0.5)
	y := -1 + cell*(float64(gy)+0.5)
	z := -1 + cell*(float64(gz)+0.5)

	amp := 0.45 * cell * (0.3 + s.Intensity()) * p.complexity()
	x += amp * hashNoise(index, p.Seed, 4)
	y += amp * hashNoise(index, p.Seed, 5)
	z += amp * hashNoise(index, p.Seed, 6)

	y += 0.08 * s.Get(affect.Wonder) * math.Sin(p.TimeSec+x*3)
	scale := 1 + 0.1*p.Anticipation
	return Position{X: x * scale, Y: y * scale, Z: z * scale}
}

// #endregion noise-grid

// #region orbital
const orbitalShells = 4

// OrbitalShells distributes points over four inclined rings. Awe spreads the
// rings apart, tension tilts them, joy speeds the orbits.
func OrbitalShells(index, count int, p Params) Position {
	s := p.State
	shell := index % orbitalShells
	k := float64(index / orbitalShells)
	perShell := math.Ceil(float64(count) / orbitalShells)

	radius := 0.45 + float64(shell)*0.3*(1+0.4*s.Get(affect.Awe)) + 0.05*p.Anticipation
	speed := (0.2 + 0.6*s.Get(affect.Joy)) / (1 + float64(shell))
	angle := 2*math.Pi*k/perShell + p.TimeSec*speed
	incline := (float64(shell) - 1.5) * (0.35 + 0.3*s.Get(affect.Tension))

	jitter := 0.04 * s.Intensity() * p.complexity()
	rr := radius + jitter*hashNoise(index, p.Seed, 7)

	x := rr * math.Cos(angle)
	z := rr * math.Sin(angle)
	y := z * math.Sin(incline)
	z = z * math.Cos(incline)
	y += jitter * hashNoise(index, p.Seed, 8)
	return Position{X: x, Y: y, Z: z}
}

// #endregion orbital
