// Package core computes Mandelbrot iteration grids.
//
// A Grid holds one smoothed iteration count per pixel for the View it is
// paired with. The work of filling a grid is split amongst goroutines by a
// Scheduler; each goroutine is handed a Strip, a set of grid rows nobody else
// can reach, so the workers never share cells and only a completion barrier
// is needed.
//
// A Session owns a grid and serialises the operations a viewer asks for:
// pan (shift the grid and patch the exposed strips), zoom, new maximum
// iterations, resize, load and save.
package core

import (
	"errors"
)

var (
	// ErrValidation flags a request rejected before any computation
	// (non-positive sizes, iterations or zoom factors, bad regions).
	ErrValidation = errors.New("invalid request")
	// ErrFormat flags a malformed or truncated grid or palette file.
	ErrFormat = errors.New("malformed data")
	// ErrIncomplete flags a grid still holding cells that were never
	// (re)computed, e.g. after a cancelled batch.
	ErrIncomplete = errors.New("grid not fully computed")
)

// Point is a pixel
type Point struct {
	Right int // right from TL corner (0,0)
	Down  int // down from ""
}
