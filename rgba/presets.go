package rgba

import (
	"fmt"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// keypoints of the named palettes, low iterations first
var presets = map[string][]string{
	"spectral": {"#9e0142", "#d53e4f", "#f46d43", "#fdae61", "#fee090", "#ffffbf", "#e6f598", "#abdda4", "#66c2a5", "#3288bd", "#5e4fa2"},
	"fire":     {"#000000", "#5c0000", "#b22222", "#ff4500", "#ffa500", "#ffd700", "#ffffe0"},
	"ocean":    {"#000814", "#001d3d", "#003566", "#0077b6", "#48cae4", "#caf0f8"},
	"retro":    {"#00040f", "#032628", "#073e1e", "#185508", "#5f6e0f", "#845019", "#9b3022", "#b4922f", "#94ca3d", "#4fd551", "#66ffb3", "#82c9e5", "#9da3eb", "#d7b5f3", "#fdd6f6", "#fff0f2"},
}

// Presets lists the names accepted by Preset.
func Presets() []string {
	names := []string{"default"}
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}

// Preset builds the named palette for maxIterations, spreading its
// keypoints evenly from 1 to maxIterations. Midpoints blended in HCL space
// are added between keypoints so the linear bands follow a perceptual
// gradient. With fewer iterations than boundaries the limits stop
// increasing and the tail of the palette is inert.
func Preset(name string, maxIterations int) (Palette, error) {
	if name == "default" {
		return DefaultPalette(maxIterations), nil
	}
	hexes, ok := presets[name]
	if !ok {
		return Palette{}, fmt.Errorf("no palette %q", name)
	}

	var cols []colorful.Color
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return Palette{}, err
		}
		if i > 0 {
			cols = append(cols, cols[len(cols)-1].BlendHcl(c, 0.5).Clamped())
		}
		cols = append(cols, c)
	}

	n := len(cols)
	p := Palette{Boundaries: make([]Boundary, n)}
	for i, c := range cols {
		limit := 1
		if n > 1 {
			limit = 1 + i*(maxIterations-1)/(n-1)
		}
		r, g, b := c.RGB255()
		p.Boundaries[i] = Boundary{Limit: limit, Red: r, Green: g, Blue: b}
	}
	return p, nil
}
