package core

import (
	"fmt"

	"github.com/mikecv/chaos/math"
)

// View is the rectangle of the complex plane mapped onto the pixel grid.
type View struct {
	CentreReal    float64 `json:"centreReal"`
	CentreImag    float64 `json:"centreImag"`
	PixelSize     float64 `json:"pixelSize"` // side of one pixel in the plane
	Scale         float64 `json:"scale"`     // product of all zoom factors applied
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	MaxIterations int     `json:"maxIterations"`
}

// Validate reports whether v can be computed.
func (v View) Validate() error {
	if v.Width < 1 || v.Height < 1 {
		return fmt.Errorf("%w: image size %dx%d", ErrValidation, v.Width, v.Height)
	}
	if v.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations %d", ErrValidation, v.MaxIterations)
	}
	if !(v.PixelSize > 0) {
		return fmt.Errorf("%w: pixel size %v", ErrValidation, v.PixelSize)
	}
	return nil
}

// Centre is the pixel which sits on (CentreReal, CentreImag) for odd sizes,
// and the one right/below of it for even sizes.
func (v View) Centre() Point {
	return Point{Right: v.Width / 2, Down: v.Height / 2}
}

// PixelToComplex returns the converter from pixels to points of the plane
// for this view.
func (v View) PixelToComplex() func(p Point) complex128 {
	px2s := math.Transformation(v.CentreReal, v.CentreImag, v.PixelSize, v.Width, v.Height)
	return func(p Point) complex128 {
		re, im := px2s(p.Right, p.Down)
		return complex(re, im)
	}
}

// Region is the pixel rectangle [RowLo,RowHi) x [ColLo,ColHi).
type Region struct {
	RowLo, RowHi int
	ColLo, ColHi int
}

// Full is the region covering the whole view.
func (v View) Full() Region {
	return Region{0, v.Height, 0, v.Width}
}

// Cells is the number of pixels in r.
func (r Region) Cells() int {
	return (r.RowHi - r.RowLo) * (r.ColHi - r.ColLo)
}

func (r Region) String() string {
	return fmt.Sprintf("rows [%d,%d) cols [%d,%d)", r.RowLo, r.RowHi, r.ColLo, r.ColHi)
}

// within checks r is a non-empty region inside a width x height image.
func (r Region) within(width, height int) error {
	if r.RowLo >= r.RowHi || r.ColLo >= r.ColHi {
		return fmt.Errorf("%w: empty region %v", ErrValidation, r)
	}
	if r.RowLo < 0 || r.ColLo < 0 || r.RowHi > height || r.ColHi > width {
		return fmt.Errorf("%w: region %v outside %dx%d image", ErrValidation, r, width, height)
	}
	return nil
}
