package rgba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mikecv/chaos/core"
)

// ReadPalette decodes a palette file:
//
//	{"colBoundaries": [{"itLimit": 1, "colRed": 0, "colGreen": 0, "colBlue": 200}, ...]}
func ReadPalette(r io.Reader) (Palette, error) {
	var file struct {
		Boundaries *[]Boundary `json:"colBoundaries"`
	}
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return Palette{}, fmt.Errorf("%w: palette: %v", core.ErrFormat, err)
	}
	if file.Boundaries == nil {
		return Palette{}, fmt.Errorf("%w: palette has no colBoundaries", core.ErrFormat)
	}
	return Palette{Boundaries: *file.Boundaries}, nil
}

// WritePalette encodes p, boundaries in order.
func WritePalette(w io.Writer, p Palette) error {
	if p.Boundaries == nil {
		p.Boundaries = []Boundary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(p)
}

// LoadPaletteFile reads the palette saved at path.
func LoadPaletteFile(path string) (Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return Palette{}, err
	}
	defer f.Close()
	return ReadPalette(f)
}

// SavePaletteFile writes p to path.
func SavePaletteFile(path string, p Palette) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WritePalette(f, p)
}

// PaletteStore holds the palette in use by a viewer.
type PaletteStore struct {
	Logger *log.Logger // nil means log.Default()

	mu sync.RWMutex
	p  Palette
}

// NewPaletteStore starts with p.
func NewPaletteStore(p Palette) *PaletteStore {
	return &PaletteStore{p: p}
}

func (s *PaletteStore) logf(format string, args ...interface{}) {
	l := s.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

// Palette returns a copy of the current palette.
func (s *PaletteStore) Palette() Palette {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Palette{Boundaries: append([]Boundary(nil), s.p.Boundaries...)}
}

// Set replaces the current palette.
func (s *PaletteStore) Set(p Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

// Reload replaces the palette with the one at path. A file that cannot be
// read or parsed is reported and the current palette kept.
func (s *PaletteStore) Reload(path string) error {
	p, err := LoadPaletteFile(path)
	if err != nil {
		s.logf("failed to load colour palette file %s, keeping current palette: %v", path, err)
		return err
	}
	s.Set(p)
	s.logf("loaded colour palette file %s (%d boundaries, %d usable)", path, len(p.Boundaries), len(p.Usable()))
	return nil
}

// Save writes the current palette to path.
func (s *PaletteStore) Save(path string) error {
	if err := SavePaletteFile(path, s.Palette()); err != nil {
		return err
	}
	s.logf("saved colour palette file %s", path)
	return nil
}

// Watch reloads the palette whenever the file at path is written, until ctx
// is done. The directory is watched so editors that replace the file are
// followed too.
func (s *PaletteStore) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				s.logf("colour palette file changed, reloading...")
				s.Reload(path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logf("palette watcher error: %v", err)
		}
	}
}
