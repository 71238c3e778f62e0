// Package ui is the user interface part: an http server which applies the
// browser's requests to a session and sends back the rendered frames.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mikecv/chaos/core"
	"github.com/mikecv/chaos/html"
	"github.com/mikecv/chaos/rgba"
)

// zoom factors of the in and out requests
const (
	ZoomIn  = 2.0
	ZoomOut = 0.5
)

// Options are the viewer settings which can be changed from the page.
type Options struct {
	MaxZoom float64 // largest accepted zoom factor
	Black   bool    // render in black mode rather than with the palette
	Chart   ChartOptions
}

// Server serves one session to the browser.
type Server struct {
	Session  *core.Session
	Palettes *rgba.PaletteStore
	Logger   *log.Logger // nil means log.Default()

	mu   sync.Mutex
	opts Options
}

// New returns a server for sess coloured with the palettes of ps.
func New(sess *core.Session, ps *rgba.PaletteStore, opts Options) *Server {
	return &Server{Session: sess, Palettes: ps, opts: opts}
}

func (s *Server) logf(format string, args ...interface{}) {
	l := s.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

// Options returns the current viewer settings.
func (s *Server) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

func (s *Server) setBlack(black bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Black = black
}

// Handler returns the routes of the viewer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	// the /image uri is for calling for frames from the js
	mux.HandleFunc("/image/", s.serveImage)
	mux.HandleFunc("/banner", s.serveBanner)
	mux.HandleFunc("/histogram.png", s.serveHistogram)
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

// ListenAndServe runs the viewer on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logf("viewer listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	return ctx.Err()
}

// Banner writes the details of the last build at the top of the page.
func (s *Server) Banner() string {
	v := s.Session.View()
	sx := strconv.FormatFloat(v.CentreReal, 'f', -1, 64)
	sy := strconv.FormatFloat(v.CentreImag, 'f', -1, 64)
	sp := strconv.FormatFloat(v.PixelSize, 'g', -1, 64)
	si := strconv.Itoa(v.MaxIterations)
	sc := strconv.FormatFloat(v.Scale, 'g', -1, 64)
	se := s.Session.Elapsed().Round(time.Millisecond).String()
	// the leading '_' below is a signal to the client that this is not an image
	return "_" + sx + "_" + sy + "_" + sp + "_" + si + "_" + sc + "_" + se
}

// command is one request of the browser.
type command struct {
	Op     string  `json:"op"` // pan, recentre, zoom, iterations, mode or recalc
	H      int     `json:"h"`
	V      int     `json:"v"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Factor float64 `json:"factor"`
	N      int     `json:"n"`
	Black  bool    `json:"black"`
}

// check validates cmds in order against the view they would be applied to,
// so a request is rejected before any of its commands changes the session.
func (s *Server) check(cmds []command) error {
	v := s.Session.View()
	max := s.Options().MaxZoom
	for _, c := range cmds {
		switch c.Op {
		case "pan", "mode", "recalc":
		case "recentre":
			if c.X < 0 || c.X >= v.Width || c.Y < 0 || c.Y >= v.Height {
				return fmt.Errorf("%w: pixel (%d, %d) outside %dx%d image", core.ErrValidation, c.X, c.Y, v.Width, v.Height)
			}
		case "zoom":
			if !(c.Factor > 0) || (max > 0 && c.Factor > max) {
				return fmt.Errorf("%w: zoom factor %v not in (0, %v]", core.ErrValidation, c.Factor, max)
			}
			ps, sc := v.PixelSize/c.Factor, v.Scale*c.Factor
			if !(ps > 0) || math.IsInf(ps, 0) || math.IsInf(sc, 0) {
				return fmt.Errorf("%w: zoom %v takes pixel size %v to %v", core.ErrValidation, c.Factor, v.PixelSize, ps)
			}
			v.PixelSize, v.Scale = ps, sc
		case "iterations":
			if c.N < 1 {
				return fmt.Errorf("%w: max iterations %d", core.ErrValidation, c.N)
			}
		default:
			return fmt.Errorf("%w: unknown request %q", core.ErrValidation, c.Op)
		}
	}
	return nil
}

func (s *Server) apply(ctx context.Context, c command) error {
	if err := s.check([]command{c}); err != nil {
		return err
	}
	switch c.Op {
	case "pan":
		return s.Session.Pan(ctx, c.H, c.V)
	case "recentre":
		return s.Session.Recentre(ctx, core.Point{Right: c.X, Down: c.Y})
	case "zoom":
		return s.Session.Zoom(ctx, c.Factor)
	case "iterations":
		return s.Session.SetMaxIterations(ctx, c.N)
	case "mode":
		s.setBlack(c.Black)
		return nil
	case "recalc":
		return s.Session.Recompute(ctx)
	}
	return nil
}

// frame renders the session's grid, computing it first if a cancelled
// request left it incomplete.
func (s *Server) frame(ctx context.Context) ([]byte, error) {
	var out []byte
	render := func(g *core.Grid) error {
		img, err := rgba.Render(g, s.Palettes.Palette(), s.Options().Black)
		if err != nil {
			return err
		}
		out, err = rgba.Encoded(img)
		return err
	}
	err := s.Session.Read(render)
	if errors.Is(err, core.ErrIncomplete) {
		if err := s.Session.Recompute(ctx); err != nil {
			return nil, err
		}
		err = s.Session.Read(render)
	}
	return out, err
}

// status maps a request error to its http status code.
func status(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, core.ErrIncomplete):
		// superseded by a later request
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logf("request failed: %v", err)
	http.Error(w, err.Error(), status(err))
}

//================================ private =======================================

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html.UI))
}

// return a Mandelbrot image
func (s *Server) serveImage(w http.ResponseWriter, r *http.Request) {
	cmds, err := getImageReq(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.check(cmds); err != nil {
		s.fail(w, err)
		return
	}
	for _, c := range cmds {
		if err := s.apply(r.Context(), c); err != nil {
			s.fail(w, err)
			return
		}
	}
	b, err := s.frame(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write(b) // base64
}

func (s *Server) serveBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(s.Banner()))
}

// getImageReq turns the query of an image request into commands, applied
// in a fixed order: iterations, mode, centre then zoom.
func getImageReq(r *http.Request) ([]command, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	var cmds []command
	if val := r.Form.Get("num"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("%w: num: %v", core.ErrValidation, err)
		}
		cmds = append(cmds, command{Op: "iterations", N: n})
	}
	if val := r.Form.Get("black"); val != "" {
		black, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("%w: black: %v", core.ErrValidation, err)
		}
		cmds = append(cmds, command{Op: "mode", Black: black})
	}
	if val := r.Form.Get("newpt"); val != "" { // centre data: pr|pd
		w := strings.Split(val, "|")
		if len(w) != 2 {
			return nil, fmt.Errorf("%w: newpt %q", core.ErrValidation, val)
		}
		pr, err1 := strconv.Atoi(w[0])
		pd, err2 := strconv.Atoi(w[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: newpt %q", core.ErrValidation, val)
		}
		cmds = append(cmds, command{Op: "recentre", X: pr, Y: pd})
	}
	if val := r.Form.Get("zoom"); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: zoom: %v", core.ErrValidation, err)
		}
		cmds = append(cmds, command{Op: "zoom", Factor: f})
	}
	if r.Form.Has("in") {
		cmds = append(cmds, command{Op: "zoom", Factor: ZoomIn})
	}
	if r.Form.Has("out") {
		cmds = append(cmds, command{Op: "zoom", Factor: ZoomOut})
	}
	return cmds, nil
}
