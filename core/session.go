package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"time"
)

// Session owns one grid and applies the viewer's requests to it one at a
// time. A request arriving while a batch is being computed cancels that
// batch; its viewport change still stands, and the grid it leaves
// incomplete is computed in full by the next request.
type Session struct {
	Logger *log.Logger // nil means log.Default()
	Debug  bool

	sched *Scheduler

	mu      sync.Mutex // held for every change of grid or view
	grid    *Grid
	elapsed time.Duration

	cmu    sync.Mutex
	gen    uint64
	cancel context.CancelFunc // of the latest request
}

// NewSession allocates an uncomputed grid for v. Call Recompute to fill it.
func NewSession(v View, sched *Scheduler) (*Session, error) {
	g, err := NewGrid(v)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		sched = NewScheduler(0)
	}
	return &Session{sched: sched, grid: g}, nil
}

func (s *Session) logf(format string, args ...interface{}) {
	l := s.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

func (s *Session) debugf(format string, args ...interface{}) {
	if s.Debug {
		s.logf("debug: "+format, args...)
	}
}

// preempt cancels whatever request came before and registers cancel as the
// current one. The returned func deregisters it.
func (s *Session) preempt(cancel context.CancelFunc) func() {
	s.cmu.Lock()
	defer s.cmu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	return func() {
		s.cmu.Lock()
		defer s.cmu.Unlock()
		if s.gen == gen {
			s.cancel = nil
		}
	}
}

// run applies change to the grid and computes the regions it returns.
// change must validate before it mutates anything.
func (s *Session) run(ctx context.Context, op string, change func(g *Grid) ([]Region, error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.preempt(cancel)()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	regions, err := change(s.grid)
	if err != nil {
		return err
	}
	if len(regions) == 0 {
		return nil
	}
	cells := 0
	for _, r := range regions {
		s.debugf("%s: computing %v", op, r)
		cells += r.Cells()
	}
	err = s.sched.Compute(ctx, s.grid, regions...)
	s.elapsed = time.Since(start)
	if err != nil {
		s.logf("%s: stopped after %v: %v", op, s.elapsed, err)
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logf("%s: %d cells computed in %v", op, cells, s.elapsed)
	return nil
}

// full invalidates and returns the whole grid.
func full(g *Grid) []Region {
	g.invalidate(g.View.Full())
	return []Region{g.View.Full()}
}

// Recompute computes the whole grid for the current view.
func (s *Session) Recompute(ctx context.Context) error {
	return s.run(ctx, "recompute", func(g *Grid) ([]Region, error) {
		return full(g), nil
	})
}

// Reset replaces the view, reallocating the grid if the size changed, and
// computes it.
func (s *Session) Reset(ctx context.Context, v View) error {
	if err := v.Validate(); err != nil {
		return err
	}
	return s.run(ctx, "reset", func(g *Grid) ([]Region, error) {
		resized := v.Width != g.View.Width || v.Height != g.View.Height
		g.View = v
		if resized {
			g.alloc()
		}
		return full(g), nil
	})
}

// Pan moves the centre by h pixels to the right and v pixels down, keeping
// the cells still on screen and computing only the exposed strips.
func (s *Session) Pan(ctx context.Context, h, v int) error {
	return s.run(ctx, fmt.Sprintf("pan (%d, %d)", h, v), func(g *Grid) ([]Region, error) {
		complete := g.Complete()
		g.View.CentreReal += float64(h) * g.View.PixelSize
		// image rows grow downwards, the imaginary axis upwards
		g.View.CentreImag -= float64(v) * g.View.PixelSize
		if !complete {
			return full(g), nil
		}
		if h == 0 && v == 0 {
			return nil, nil
		}
		return g.shift(h, v), nil
	})
}

// Recentre pans so that pixel p becomes the centre of the image.
func (s *Session) Recentre(ctx context.Context, p Point) error {
	v := s.View()
	if p.Right < 0 || p.Right >= v.Width || p.Down < 0 || p.Down >= v.Height {
		return fmt.Errorf("%w: pixel %v outside %dx%d image", ErrValidation, p, v.Width, v.Height)
	}
	c := v.Centre()
	return s.Pan(ctx, p.Right-c.Right, p.Down-c.Down)
}

// Zoom divides the pixel size by factor and recomputes the whole grid.
func (s *Session) Zoom(ctx context.Context, factor float64) error {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: zoom factor %v", ErrValidation, factor)
	}
	return s.run(ctx, fmt.Sprintf("zoom %v", factor), func(g *Grid) ([]Region, error) {
		ps, sc := g.View.PixelSize/factor, g.View.Scale*factor
		if !(ps > 0) || math.IsInf(ps, 0) || math.IsInf(sc, 0) {
			return nil, fmt.Errorf("%w: zoom %v takes pixel size %v to %v", ErrValidation, factor, g.View.PixelSize, ps)
		}
		g.View.PixelSize, g.View.Scale = ps, sc
		return full(g), nil
	})
}

// SetMaxIterations changes the iteration limit and recomputes the grid.
func (s *Session) SetMaxIterations(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: max iterations %d", ErrValidation, n)
	}
	return s.run(ctx, fmt.Sprintf("iterations %d", n), func(g *Grid) ([]Region, error) {
		g.View.MaxIterations = n
		return full(g), nil
	})
}

// Resize reallocates the grid at width x height around the same centre.
func (s *Session) Resize(ctx context.Context, width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: image size %dx%d", ErrValidation, width, height)
	}
	return s.run(ctx, fmt.Sprintf("resize %dx%d", width, height), func(g *Grid) ([]Region, error) {
		g.View.Width, g.View.Height = width, height
		g.alloc()
		return full(g), nil
	})
}

// LoadFrom replaces the grid with one read from r. On error the session is
// left as it was.
func (s *Session) LoadFrom(r io.Reader) error {
	g, err := ReadGrid(r)
	if err != nil {
		return err
	}
	s.replace(g)
	return nil
}

// Load replaces the grid with the one saved at path.
func (s *Session) Load(path string) error {
	start := time.Now()
	g, err := LoadGridFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	s.replace(g)
	s.logf("loaded %s (%dx%d, %d iterations) in %v", path, g.View.Width, g.View.Height, g.View.MaxIterations, time.Since(start))
	return nil
}

func (s *Session) replace(g *Grid) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer s.preempt(cancel)()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid = g
	s.elapsed = 0
}

// Save writes the grid to path.
func (s *Session) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := SaveGridFile(path, s.grid); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	s.logf("saved %s", path)
	return nil
}

// View returns the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.View
}

// Elapsed is the time the last computation took.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Histogram bins the current grid.
func (s *Session) Histogram() (Histogram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewHistogram(s.grid)
}

// Read calls fn with the grid while no request can change it. fn must not
// keep the grid after it returns.
func (s *Session) Read(fn func(g *Grid) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.grid)
}
