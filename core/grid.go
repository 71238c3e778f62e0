package core

import (
	"math"
)

// unset marks a cell that has not been computed for the current view.
var unset = math.NaN()

// Grid is the matrix of smoothed iteration counts for View, row 0 at the
// top. Cells never computed for the current view hold NaN.
type Grid struct {
	View View

	cells []float64   // Height*Width, row-major
	rows  [][]float64 // rows[r] aliases cells[r*Width:(r+1)*Width]
}

// NewGrid allocates a grid for v with every cell unset.
func NewGrid(v View) (*Grid, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	g := &Grid{View: v}
	g.alloc()
	return g, nil
}

func (g *Grid) alloc() {
	w, h := g.View.Width, g.View.Height
	g.cells = make([]float64, w*h)
	g.rows = make([][]float64, h)
	for r := range g.rows {
		g.rows[r] = g.cells[r*w : (r+1)*w : (r+1)*w]
	}
	g.invalidate(g.View.Full())
}

// At returns the value of pixel (row, col).
func (g *Grid) At(row, col int) float64 {
	return g.rows[row][col]
}

// Values returns a copy of the cells, row-major.
func (g *Grid) Values() []float64 {
	out := make([]float64, len(g.cells))
	copy(out, g.cells)
	return out
}

// Complete reports whether every cell holds a computed value.
func (g *Grid) Complete() bool {
	for _, mu := range g.cells {
		if mu != mu { // NaN
			return false
		}
	}
	return true
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := &Grid{View: g.View}
	c.alloc()
	copy(c.cells, g.cells)
	return c
}

// invalidate marks every cell of r as not computed.
func (g *Grid) invalidate(r Region) {
	for row := r.RowLo; row < r.RowHi; row++ {
		cells := g.rows[row][r.ColLo:r.ColHi]
		for i := range cells {
			cells[i] = unset
		}
	}
}

// shift moves the computed cells so that the new pixel (r, c) takes the
// value of the old pixel (r+v, c+h), and returns the regions left without
// a source. The exposed columns are returned over the full height and the
// exposed rows only over the remaining columns: the two are disjoint and
// together cover every cell that needs computing, the corner exactly once.
// The exposed cells are invalidated.
func (g *Grid) shift(h, v int) []Region {
	w, ht := g.View.Width, g.View.Height
	if abs(h) >= w || abs(v) >= ht {
		g.invalidate(g.View.Full())
		return []Region{g.View.Full()}
	}

	var exposed []Region

	// columns, row by row; copy handles the overlap
	colLo, colHi := 0, w
	switch {
	case h > 0: // centre moved right, columns move left
		for _, row := range g.rows {
			copy(row, row[h:])
		}
		exposed = append(exposed, Region{0, ht, w - h, w})
		colHi = w - h
	case h < 0: // centre moved left, columns move right
		for _, row := range g.rows {
			copy(row[-h:], row[:w+h])
		}
		exposed = append(exposed, Region{0, ht, 0, -h})
		colLo = -h
	}

	// rows; walk in the direction that never reads an overwritten row
	switch {
	case v > 0: // centre moved down, rows move up
		for r := 0; r < ht-v; r++ {
			copy(g.rows[r], g.rows[r+v])
		}
		exposed = append(exposed, Region{ht - v, ht, colLo, colHi})
	case v < 0: // centre moved up, rows move down
		for r := ht - 1; r >= -v; r-- {
			copy(g.rows[r], g.rows[r+v])
		}
		exposed = append(exposed, Region{0, -v, colLo, colHi})
	}

	for _, r := range exposed {
		g.invalidate(r)
	}
	return exposed
}

// strips hands out the rows of r as n disjoint strips, dealing rows in the
// given order (a permutation of 0..rows-1, or nil for top to bottom).
func (g *Grid) strips(r Region, n int, order []int) []*Strip {
	nrows := r.RowHi - r.RowLo
	if n > nrows {
		n = nrows
	}
	if n < 1 {
		n = 1
	}
	strips := make([]*Strip, n)
	for i := range strips {
		strips[i] = &Strip{colLo: r.ColLo, view: g.View}
	}
	for k := 0; k < nrows; k++ {
		idx := k
		if order != nil {
			idx = order[k]
		}
		row := r.RowLo + idx
		s := strips[k%n]
		s.index = append(s.index, row)
		s.rows = append(s.rows, g.rows[row][r.ColLo:r.ColHi:r.ColHi])
	}
	return strips
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
