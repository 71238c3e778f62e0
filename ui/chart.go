package ui

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/mikecv/chaos/core"
)

// ChartOptions select how the divergence histogram is drawn.
type ChartOptions struct {
	IncludeMax bool // keep the bin of the points that never escaped
	Log        bool // plot log10(1+count)
	Line       bool // join the counts, otherwise a bar per group of bins
	Width      int
	Height     int
}

// HistogramChart draws h as a PNG.
func HistogramChart(w io.Writer, h core.Histogram, o ChartOptions) error {
	if !o.IncludeMax {
		h = h.WithoutMax()
	}
	if len(h.Bins) == 0 {
		return fmt.Errorf("%w: no bins to plot", core.ErrValidation)
	}

	if !o.Line {
		return histogramBars(w, h, o)
	}

	xs := make([]float64, len(h.Bins))
	ys := make([]float64, len(h.Counts))
	maxY := 0.0
	for i := range h.Bins {
		xs[i] = float64(h.Bins[i])
		ys[i] = float64(h.Counts[i])
		if o.Log {
			ys[i] = math.Log10(1 + ys[i])
		}
		maxY = math.Max(maxY, ys[i])
	}
	if maxY == 0 {
		maxY = 1
	}

	st := chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 1}
	ch := chart.Chart{
		Title:      "Divergence histogram",
		Width:      o.Width,
		Height:     o.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "iterations",
			Range: &chart.ContinuousRange{Min: 0, Max: xs[len(xs)-1] + 1},
		},
		YAxis: chart.YAxis{
			Name:  yName(o),
			Range: &chart.ContinuousRange{Min: 0, Max: maxY},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "counts", XValues: xs, YValues: ys, Style: st},
		},
	}
	return ch.Render(chart.PNG, w)
}

// maxBars is the most bars drawn; beyond that adjacent bins share a bar.
const maxBars = 64

func yName(o ChartOptions) string {
	if o.Log {
		return "log10(1+pixels)"
	}
	return "pixels"
}

// histogramBars draws h as a bar chart, summing adjacent bins so at most
// maxBars bars are drawn.
func histogramBars(w io.Writer, h core.Histogram, o ChartOptions) error {
	per := (len(h.Bins) + maxBars - 1) / maxBars
	n := (len(h.Bins) + per - 1) / per

	bars := make([]chart.Value, n)
	maxY := 0.0
	for i := range bars {
		var sum uint64
		for _, c := range h.Counts[i*per : min((i+1)*per, len(h.Counts))] {
			sum += c
		}
		y := float64(sum)
		if o.Log {
			y = math.Log10(1 + y)
		}
		bars[i].Value = y
		if i%max(1, n/8) == 0 {
			bars[i].Label = strconv.Itoa(h.Bins[i*per])
		}
		maxY = math.Max(maxY, y)
	}
	if maxY == 0 {
		maxY = 1
	}

	width := o.Width
	if width <= 0 {
		width = chart.DefaultChartWidth
	}
	barWidth := max(1, (width-80)/(2*n))
	bc := chart.BarChart{
		Title:      "Divergence histogram",
		Width:      o.Width,
		Height:     o.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		YAxis: chart.YAxis{
			Name:  yName(o),
			Range: &chart.ContinuousRange{Min: 0, Max: maxY},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}

// flag reads a boolean query value, keeping def if it is absent.
func flag(r *http.Request, key string, def bool) (bool, error) {
	val := r.Form.Get(key)
	if val == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def, fmt.Errorf("%w: %s: %v", core.ErrValidation, key, err)
	}
	return b, nil
}

// serveHistogram draws the histogram of the current grid; the max, log and
// line query values override the configured chart options.
func (s *Server) serveHistogram(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	o := s.Options().Chart
	var err error
	if o.IncludeMax, err = flag(r, "max", o.IncludeMax); err != nil {
		s.fail(w, err)
		return
	}
	if o.Log, err = flag(r, "log", o.Log); err != nil {
		s.fail(w, err)
		return
	}
	if o.Line, err = flag(r, "line", o.Line); err != nil {
		s.fail(w, err)
		return
	}

	h, err := s.Session.Histogram()
	if err != nil {
		s.fail(w, err)
		return
	}
	var buf bytes.Buffer
	if err := HistogramChart(&buf, h, o); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}
