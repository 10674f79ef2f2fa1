package distribution

import "math"

// #region hash
// mix64 is the splitmix64 finalizer. Used instead of a shared *rand.Rand so
// every slot's noise depends only on (index, seed, salt).
func mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// unit returns a deterministic value in [0,1).
func unit(index int, seed, salt uint64) float64 {
	h := mix64(uint64(index)*0x632be59bd9b4e019 ^ mix64(seed^salt))
	return float64(h>>11) / (1 << 53)
}

// hashNoise returns a deterministic value in [-1,1).
func hashNoise(index int, seed, salt uint64) float64 {
	return unit(index, seed, salt)*2 - 1
}

// #endregion hash

// #region gaussian
// gaussian3 draws three standard normals for a slot via Box-Muller.
func gaussian3(index int, seed uint64) (float64, float64, float64) {
	u1 := 1 - unit(index, seed, 11) // (0,1]
	u2 := unit(index, seed, 12)
	u3 := 1 - unit(index, seed, 13)
	u4 := unit(index, seed, 14)
	r1 := math.Sqrt(-2 * math.Log(u1))
	r2 := math.Sqrt(-2 * math.Log(u3))
	return r1 * math.Cos(2*math.Pi*u2), r1 * math.Sin(2*math.Pi*u2), r2 * math.Cos(2*math.Pi*u4)
}

// #endregion gaussian

// #region helpers
func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// rotateY rotates (x,z) about the Y axis.
func rotateY(x, z, angle float64) (float64, float64) {
	s, c := math.Sincos(angle)
	return x*c - z*s, x*s + z*c
}

// #endregion helpers
