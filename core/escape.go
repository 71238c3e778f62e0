package core

import (
	"math"
)

var ln2 = math.Log(2)

// Escape performs the iteration z -> z*z + c from z = 0 and returns the
// smoothed iteration count mu in [0, maxIterations]. Points whose orbit
// stays inside |z| < 2 for maxIterations steps are in the set and get
// exactly maxIterations.
//
// The fractional correction n + 1 - log(log|z|)/log 2 is only applied when
// |z| > e, otherwise the integer count n is kept. Saved grids depend on this.
func Escape(c complex128, maxIterations int) float64 {
	cr, ci := real(c), imag(c)
	var zr, zi, zr2, zi2 float64
	for n := 1; n <= maxIterations; n++ {
		zi = 2*zr*zi + ci
		zr = zr2 - zi2 + cr
		zr2, zi2 = zr*zr, zi*zi
		if zr2+zi2 >= 4 {
			return smooth(n, math.Sqrt(zr2+zi2), maxIterations)
		}
	}
	return float64(maxIterations)
}

// smooth gives the fractional count for an orbit that escaped on step n
// with modulus mod.
func smooth(n int, mod float64, maxIterations int) float64 {
	mu := float64(n)
	if mod > math.E {
		mu = mu + 1 - math.Log(math.Log(mod))/ln2
	}
	if mu > float64(maxIterations) {
		mu = float64(maxIterations)
	}
	if mu < 0 {
		mu = 0
	}
	return mu
}
