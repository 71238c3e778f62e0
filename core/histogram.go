package core

import (
	"math"
)

// Histogram counts the pixels of a grid by the iteration on which they
// diverged. Counts[b] is the number of cells with floor(mu)-1 == b and
// Bins[b] = b+1 is the iteration it stands for.
type Histogram struct {
	Bins              []int
	Counts            []uint64
	LowestNonEmptyBin int
}

// NewHistogram bins every cell of g. Values below 1 fall in the first bin,
// so the counts always add up to the number of pixels.
func NewHistogram(g *Grid) (Histogram, error) {
	max := g.View.MaxIterations
	h := Histogram{
		Bins:   make([]int, max),
		Counts: make([]uint64, max),
	}
	for i := range h.Bins {
		h.Bins[i] = i + 1
	}
	for _, mu := range g.cells {
		if mu != mu {
			return Histogram{}, ErrIncomplete
		}
		b := int(math.Floor(mu)) - 1
		if b < 0 {
			b = 0
		}
		if b >= max {
			b = max - 1
		}
		h.Counts[b]++
	}

	// lowest non-zero bin, used by black rendering to stretch the range
	for i, n := range h.Counts {
		if n > 0 {
			h.LowestNonEmptyBin = i
			break
		}
	}
	return h, nil
}

// Total is the number of cells counted.
func (h Histogram) Total() uint64 {
	var t uint64
	for _, n := range h.Counts {
		t += n
	}
	return t
}

// WithoutMax drops the last bin, which holds the points inside the set and
// usually swamps everything else.
func (h Histogram) WithoutMax() Histogram {
	if len(h.Counts) == 0 {
		return h
	}
	n := len(h.Counts) - 1
	return Histogram{
		Bins:              h.Bins[:n:n],
		Counts:            h.Counts[:n:n],
		LowestNonEmptyBin: h.LowestNonEmptyBin,
	}
}
