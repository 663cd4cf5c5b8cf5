package scene

import (
	"fmt"
	"log/slog"
	"sync"

	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/render/lighting"
	"chosenoffset.com/fogofwar/internal/vision"
	"chosenoffset.com/fogofwar/internal/world/occluder"
)

// Store is the live state of one map. Edits replace slices rather than
// writing into them, so a Snapshot stays unchanged while a frame reads it.
type Store struct {
	mu        sync.RWMutex
	width     int
	height    int
	occluders []occluder.Occluder
	doors     []int // Indexes of doors in occluders
	tokens    []lighting.Token
	grid      lighting.Grid
	lights    *lighting.Manager
	opts      Options
}

// Options tune how a scene turns into lights.
type Options struct {
	TokenVisionRadius float64 // Token light reach in pixels, 0 for unbounded
	DefaultGridFeet   float64 // Feet per square for scenes that leave it unset
	DefaultGridPixels float64 // Pixels per square for scenes that leave it unset
}

// NewStore creates a store from a loaded scene.
func NewStore(state *State, opts Options) *Store {
	s := &Store{lights: lighting.NewManager(opts.TokenVisionRadius), opts: opts}
	s.Replace(state)
	return s
}

// Replace swaps in a new scene, keeping the store options.
func (s *Store) Replace(state *State) {
	occluders, skipped := occluder.FromOverlays(state.Overlays)
	for _, sk := range skipped {
		vision.Logger().Debug("skipping overlay", slog.Int("index", sk.Index), slog.String("type", string(sk.Kind)), slog.Any("err", sk.Err))
	}

	var doors []int
	for i, o := range occluders {
		if o.Kind() == occluder.KindDoor {
			doors = append(doors, i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.width, s.height = state.ImageWidth, state.ImageHeight
	s.occluders = occluders
	s.doors = doors
	s.tokens = state.Tokens()
	s.grid = state.Grid()
	if s.grid.Feet == 0 {
		s.grid.Feet = s.opts.DefaultGridFeet
	}
	if s.grid.Pixels == 0 {
		s.grid.Pixels = s.opts.DefaultGridPixels
	}
	s.lights.ClearLights()
	for _, l := range state.Lights {
		s.lights.SetLight(l.ID, shadows.Point{X: l.X, Y: l.Y})
	}
}

// Snapshot implements vision.Source.
func (s *Store) Snapshot() vision.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return vision.Snapshot{
		Width:      s.width,
		Height:     s.height,
		Occluders:  s.occluders,
		Lights:     s.lights.GetAllLights(s.tokens),
		Darkvision: lighting.Darkvision(s.tokens, s.grid),
	}
}

// Size returns the image size.
func (s *Store) Size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// SetLight adds or moves a DM light.
func (s *Store) SetLight(id string, pos shadows.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights.SetLight(id, pos)
}

// RemoveLight removes a DM light.
func (s *Store) RemoveLight(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights.RemoveLight(id)
}

// Lights returns every light of the current frame, DM lights first.
func (s *Store) Lights() []lighting.LightSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lights.GetAllLights(s.tokens)
}

// MoveToken moves a placed token. Returns false for unknown tokens.
func (s *Store) MoveToken(id string, pos shadows.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tokens {
		if t.ID != id {
			continue
		}
		tokens := append([]lighting.Token(nil), s.tokens...)
		tokens[i].Position = pos
		s.tokens = tokens
		return true
	}
	return false
}

// Tokens returns the placed tokens joined with their characters.
func (s *Store) Tokens() []lighting.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// Doors returns the doors in overlay order.
func (s *Store) Doors() []occluder.Door {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doors := make([]occluder.Door, len(s.doors))
	for i, idx := range s.doors {
		doors[i] = s.occluders[idx].(occluder.Door)
	}
	return doors
}

// SetDoorOpen opens or closes the n-th door.
func (s *Store) SetDoorOpen(n int, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 || n >= len(s.doors) {
		return fmt.Errorf("door %d out of range (have %d)", n, len(s.doors))
	}
	idx := s.doors[n]
	door := s.occluders[idx].(occluder.Door)
	door.Open = open

	occluders := append([]occluder.Occluder(nil), s.occluders...)
	occluders[idx] = door
	s.occluders = occluders
	return nil
}

// NearestDoor returns the door whose midpoint is closest to p, if it lies
// within maxDistance.
func (s *Store) NearestDoor(p shadows.Point, maxDistance float64) (int, bool) {
	best, bestDist := -1, maxDistance
	for i, d := range s.Doors() {
		mid := shadows.Point{X: (d.A.X + d.B.X) / 2, Y: (d.A.Y + d.B.Y) / 2}
		if dist := shadows.Distance(p, mid); dist <= bestDist {
			best, bestDist = i, dist
		}
	}
	return best, best >= 0
}
