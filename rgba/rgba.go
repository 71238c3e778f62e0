// Package rgba turns iteration counts into colours.
//
// A Palette is an ordered list of colour boundaries; consecutive boundaries
// with increasing iteration limits define linear gradients. Black mode
// ignores the palette and stretches a grey ramp over the grid's histogram.
package rgba

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Boundary pins a colour to an iteration count.
type Boundary struct {
	Limit int   `json:"itLimit"`
	Red   uint8 `json:"colRed"`
	Green uint8 `json:"colGreen"`
	Blue  uint8 `json:"colBlue"`
}

// RGBA is the opaque colour of b.
func (b Boundary) RGBA() color.RGBA {
	return color.RGBA{b.Red, b.Green, b.Blue, 255}
}

// Colorful converts b's colour for blending.
func (b Boundary) Colorful() colorful.Color {
	c, _ := colorful.MakeColor(b.RGBA())
	return c
}

// Hex is b's colour as #rrggbb.
func (b Boundary) Hex() string {
	return b.Colorful().Hex()
}

// NewBoundary makes a boundary from a #rrggbb colour.
func NewBoundary(limit int, hex string) (Boundary, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Boundary{}, fmt.Errorf("boundary %d: %v", limit, err)
	}
	r, g, b := c.RGB255()
	return Boundary{Limit: limit, Red: r, Green: g, Blue: b}, nil
}

// Palette is the ordered set of colour boundaries. Order matters: only the
// leading run of strictly increasing limits is used for colouring, the rest
// is kept but inert.
type Palette struct {
	Boundaries []Boundary `json:"colBoundaries"`
}

// Usable returns the leading boundaries whose limits strictly increase.
func (p Palette) Usable() []Boundary {
	for i := 1; i < len(p.Boundaries); i++ {
		if p.Boundaries[i].Limit <= p.Boundaries[i-1].Limit {
			return p.Boundaries[:i]
		}
	}
	return p.Boundaries
}

// Colour maps the iteration count mu onto the palette. Counts up to the
// first limit take the first colour, counts past the last usable limit the
// last one; in between each channel is interpolated linearly in the band
// lo.Limit < mu <= hi.Limit and floored.
func (p Palette) Colour(mu float64) color.RGBA {
	u := p.Usable()
	if len(u) == 0 {
		return color.RGBA{0, 0, 0, 255}
	}
	if mu <= float64(u[0].Limit) {
		return u[0].RGBA()
	}
	for i := 0; i+1 < len(u); i++ {
		lo, hi := u[i], u[i+1]
		if mu > float64(lo.Limit) && mu <= float64(hi.Limit) {
			return inRange(mu, lo, hi)
		}
	}
	return u[len(u)-1].RGBA()
}

// inRange interpolates between the colours of lo and hi.
func inRange(mu float64, lo, hi Boundary) color.RGBA {
	ratio := (mu - float64(lo.Limit)) / float64(hi.Limit-lo.Limit)
	channel := func(a, b uint8) uint8 {
		if a == b {
			return a
		}
		return uint8(math.Floor(float64(a) + (float64(b)-float64(a))*ratio))
	}
	return color.RGBA{
		channel(lo.Red, hi.Red),
		channel(lo.Green, hi.Green),
		channel(lo.Blue, hi.Blue),
		255,
	}
}

// Grey is the black mode colour: the part of [low, max] covered by mu as a
// grey level. low is normally the histogram's lowest non-empty bin, which
// keeps the escape counts that never occur out of the ramp.
func Grey(mu float64, low, max int) color.RGBA {
	var level float64
	if max > low {
		level = math.Floor((mu - float64(low)) / float64(max-low) * 255)
	}
	if level < 0 || level != level {
		level = 0
	}
	if level > 255 {
		level = 255
	}
	y := uint8(level)
	return color.RGBA{y, y, y, 255}
}

// DefaultPalette is the starting palette: blues darkening to black for the
// points inside the set, with a grey band near the limit.
func DefaultPalette(maxIterations int) Palette {
	return Palette{Boundaries: []Boundary{
		{1, 0, 0, 200},
		{int(math.Floor(float64(maxIterations)*0.20)) - 1, 0, 0, 50},
		{int(math.Floor(float64(maxIterations) * 0.80)), 150, 150, 150},
		{maxIterations, 0, 0, 0},
	}}
}
