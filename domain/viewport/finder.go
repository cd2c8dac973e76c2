package viewport

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// Finder is a measurement rectangle in image coordinates. The two corners
// keep the order they were dragged in.
type Finder struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Empty reports whether the finder has zero width or height.
func (f Finder) Empty() bool { return f.X0 == f.X1 || f.Y0 == f.Y1 }

// Bounds returns the normalized rectangle.
func (f Finder) Bounds() image.Rectangle {
	return image.Rect(f.X0, f.Y0, f.X1, f.Y1)
}

// Width in image pixels.
func (f Finder) Width() int { return f.Bounds().Dx() }

// Height in image pixels.
func (f Finder) Height() int { return f.Bounds().Dy() }

// Contains reports whether (x, y) lies inside the finder, edges included.
func (f Finder) Contains(x, y int) bool {
	b := f.Bounds()
	return x >= b.Min.X && x <= b.Max.X && y >= b.Min.Y && y <= b.Max.Y
}

// FinderSet keeps committed finders in creation order.
type FinderSet struct {
	items []Finder
}

// Add appends f. Empty finders are rejected.
func (s *FinderSet) Add(f Finder) bool {
	if f.Empty() {
		return false
	}
	s.items = append(s.items, f)
	return true
}

// RemoveAt deletes the most recently added finder containing (x, y).
func (s *FinderSet) RemoveAt(x, y int) (Finder, bool) {
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Contains(x, y) {
			f := s.items[i]
			s.items = append(s.items[:i], s.items[i+1:]...)
			return f, true
		}
	}
	return Finder{}, false
}

// All returns a copy of the finders, oldest first.
func (s *FinderSet) All() []Finder {
	return append([]Finder(nil), s.items...)
}

func (s *FinderSet) Len() int { return len(s.items) }

func (s *FinderSet) Clear() { s.items = nil }

// Save writes the finders as JSON.
func (s *FinderSet) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.All(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load replaces the set with finders read from path. A missing file leaves
// the set empty without error; empty entries are skipped.
func (s *FinderSet) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.Clear()
			return nil
		}
		return err
	}
	var items []Finder
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode finders %s: %w", path, err)
	}
	s.Clear()
	for _, f := range items {
		s.Add(f)
	}
	return nil
}
