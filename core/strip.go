package core

import (
	"context"
)

// Strip is the part of a grid handed to one worker: a set of whole grid rows
// cut to the columns of the region being computed. The row slices are capped
// at the region's right edge and no two strips of a batch share a row, so a
// worker can only ever write its own cells.
type Strip struct {
	view  View
	colLo int
	index []int       // grid row of each entry in rows
	rows  [][]float64 // rows[i][j] is pixel (index[i], colLo+j)
}

// Len is the number of cells in the strip.
func (s *Strip) Len() int {
	n := 0
	for _, row := range s.rows {
		n += len(row)
	}
	return n
}

// fill computes every cell of the strip, checking ctx before each row.
func (s *Strip) fill(ctx context.Context) error {
	px2c := s.view.PixelToComplex()
	for i, row := range s.rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := Point{Down: s.index[i]}
		for j := range row {
			p.Right = s.colLo + j
			row[j] = Escape(px2c(p), s.view.MaxIterations)
		}
	}
	return nil
}
