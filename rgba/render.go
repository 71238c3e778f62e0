package rgba

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"github.com/nfnt/resize"

	"github.com/mikecv/chaos/core"
)

// Render colours every pixel of g, with the palette or, in black mode, with
// a grey ramp starting at the lowest non-empty histogram bin. The grid must
// be fully computed.
func Render(g *core.Grid, p Palette, black bool) (*image.RGBA, error) {
	if !g.Complete() {
		return nil, core.ErrIncomplete
	}
	v := g.View
	img := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))

	low := 0
	if black {
		h, err := core.NewHistogram(g)
		if err != nil {
			return nil, err
		}
		low = h.LowestNonEmptyBin
	}
	for down := 0; down < v.Height; down++ {
		for right := 0; right < v.Width; right++ {
			mu := g.At(down, right)
			if black {
				img.SetRGBA(right, down, Grey(mu, low, v.MaxIterations))
			} else {
				img.SetRGBA(right, down, p.Colour(mu))
			}
		}
	}
	return img, nil
}

// Downscale reduces img to width x height, averaging supersampled renders.
func Downscale(img image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
}

// Encoded returns the byte slice of image after conversion to PNG then Base64 encoding
func Encoded(img image.Image) ([]byte, error) {
	// generate PNG
	bufIn := new(bytes.Buffer)
	if err := png.Encode(bufIn, img); err != nil {
		return nil, err
	}

	// convert to Base64
	bufOut := new(bytes.Buffer)
	encoder := base64.NewEncoder(base64.StdEncoding, bufOut)
	if _, err := encoder.Write(bufIn.Bytes()); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}

	return bufOut.Bytes(), nil
}
