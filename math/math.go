// Package math contains additions to the math packages: the pixel to
// complex plane mapping and a permutation helper used to deal work out.
package math

import (
	"math/rand"
)

// RandPermutation is Knuth's algorithm for producing
// a random permutation on symbols 0 .. n-1 drawn from rnd
func RandPermutation(n int, rnd *rand.Rand) []int {
	// start with the identity
	v := make([]int, n)
	for i := range v {
		v[i] = i
	}
	// perform random swaps
	for i := 0; i < n-1; i++ {
		j := rnd.Intn(n-i) + i // now i <= j <= n-1
		v[i], v[j] = v[j], v[i]
	}
	return v
}

// Transformation returns a function that converts a pixel (pr,pd)
// with right and down coordinates from the TL corner into the Cartesian
// coordinates of that pixel's centre. (cx, cy) sits in the middle of the
// image and each pixel is a square of side pixelSize, with the usual
// orientation: re grows to the right, im grows upwards.
func Transformation(cx, cy, pixelSize float64, width, height int) func(pr, pd int) (float64, float64) {
	if pixelSize <= 0 || width <= 0 || height <= 0 {
		panic("not allowed non-positive values there!")
	}
	return func(pr, pd int) (float64, float64) {
		if !(0 <= pr && pr < width) {
			panic("pixel horizontal coordinate is out of bounds!")
		}
		if !(0 <= pd && pd < height) {
			panic("pixel vertical coordinate is out of bounds!")
		}
		re := cx + float64(2*pr+1-width)/2*pixelSize
		im := cy + float64(height-1-2*pd)/2*pixelSize
		return re, im
	}
}
