package core

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// MaxGridCells bounds the size of a grid read from a file.
const MaxGridCells = 1 << 26

// gridHeader is the fixed part of a grid file, little-endian.
type gridHeader struct {
	Width, Height, MaxIterations             int32
	CentreReal, CentreImag, PixelSize, Scale float32
}

// WriteGrid writes g in the binary grid format: the header followed by
// Height*Width float32 iteration counts, row 0 first.
func WriteGrid(w io.Writer, g *Grid) error {
	if !g.Complete() {
		return ErrIncomplete
	}
	v := g.View
	bw := bufio.NewWriter(w)
	hdr := gridHeader{
		Width:         int32(v.Width),
		Height:        int32(v.Height),
		MaxIterations: int32(v.MaxIterations),
		CentreReal:    float32(v.CentreReal),
		CentreImag:    float32(v.CentreImag),
		PixelSize:     float32(v.PixelSize),
		Scale:         float32(v.Scale),
	}
	if err := binary.Write(bw, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	buf := make([]float32, v.Width)
	for _, row := range g.rows {
		for c, mu := range row {
			buf[c] = float32(mu)
		}
		if err := binary.Write(bw, binary.LittleEndian, buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadGrid reads a grid written by WriteGrid. Any short or inconsistent
// input gives an error wrapping ErrFormat.
func ReadGrid(r io.Reader) (*Grid, error) {
	br := bufio.NewReader(r)
	var hdr gridHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, formatError("header", err)
	}
	v := View{
		CentreReal:    float64(hdr.CentreReal),
		CentreImag:    float64(hdr.CentreImag),
		PixelSize:     float64(hdr.PixelSize),
		Scale:         float64(hdr.Scale),
		Width:         int(hdr.Width),
		Height:        int(hdr.Height),
		MaxIterations: int(hdr.MaxIterations),
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if int64(v.Width)*int64(v.Height) > MaxGridCells {
		return nil, fmt.Errorf("%w: %dx%d grid too large", ErrFormat, v.Width, v.Height)
	}

	g := &Grid{View: v}
	g.alloc()
	buf := make([]float32, v.Width)
	for r, row := range g.rows {
		if err := binary.Read(br, binary.LittleEndian, buf); err != nil {
			return nil, formatError(fmt.Sprintf("row %d", r), err)
		}
		for c, mu := range buf {
			if !(mu >= 0 && mu <= float32(v.MaxIterations)) { // also NaN
				return nil, fmt.Errorf("%w: value %v at row %d col %d not in [0, %d]", ErrFormat, mu, r, c, v.MaxIterations)
			}
			row[c] = float64(mu)
		}
	}
	return g, nil
}

func formatError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s", ErrFormat, what)
	}
	return fmt.Errorf("%w: reading %s: %v", ErrFormat, what, err)
}

// SaveGridFile writes g to path, zstd compressed if path ends in ".zst".
func SaveGridFile(path string, g *Grid) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if !strings.HasSuffix(path, ".zst") {
		return WriteGrid(f, g)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if err := WriteGrid(enc, g); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// LoadGridFile reads a grid saved by SaveGridFile.
func LoadGridFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if !strings.HasSuffix(path, ".zst") {
		return ReadGrid(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer dec.Close()
	return ReadGrid(dec)
}
