// Package occluder models the line-blocking map features a light can be
// stopped by and flattens them into the segment set the visibility builder
// consumes.
package occluder

import (
	"errors"
	"fmt"

	"chosenoffset.com/fogofwar/internal/core/shadows"
)

// Kind names an occluder variant. The values match the overlay "type" field.
type Kind string

const (
	KindWall        Kind = "wall"
	KindDoor        Kind = "door"
	KindSmartObject Kind = "smart_object"
	KindBoundary    Kind = "boundary"
)

var (
	// ErrTooFewPoints is returned by Validate when a shape cannot form a segment or ring.
	ErrTooFewPoints = errors.New("too few points")
	// ErrNonFinite is returned by Validate when a coordinate is NaN or infinite.
	ErrNonFinite = errors.New("non-finite coordinate")
)

// Occluder is anything that can block a light ray.
type Occluder interface {
	Kind() Kind
	// Validate reports why the occluder cannot take part in a frame.
	Validate() error
	// Segments returns the blocking edges. Zero-length edges are never returned.
	Segments() []shadows.Segment
}

// Wall is an open polyline that blocks light from both sides.
type Wall struct {
	Points []shadows.Point
}

func (w Wall) Kind() Kind { return KindWall }

func (w Wall) Validate() error {
	return validatePoints(w.Points, 2)
}

func (w Wall) Segments() []shadows.Segment {
	return shadows.Chain(w.Points, shadows.KindWall, -1, false)
}

// Door is a single segment that only blocks while closed.
type Door struct {
	A, B shadows.Point
	Open bool
}

func (d Door) Kind() Kind { return KindDoor }

func (d Door) Validate() error {
	return validatePoints([]shadows.Point{d.A, d.B}, 2)
}

func (d Door) Segments() []shadows.Segment {
	if d.Open {
		return nil
	}
	return shadows.Chain([]shadows.Point{d.A, d.B}, shadows.KindDoor, -1, false)
}

// SmartObject is a closed polygon (a table, a pillar, a rock) that shadows
// what lies behind it but never blocks a light standing inside it.
type SmartObject struct {
	Polygon []shadows.Point
}

func (s SmartObject) Kind() Kind { return KindSmartObject }

func (s SmartObject) Validate() error {
	if err := validatePoints(s.Polygon, 3); err != nil {
		return err
	}
	if shadows.SignedArea(s.Polygon) == 0 {
		return fmt.Errorf("degenerate polygon: %w", ErrTooFewPoints)
	}
	return nil
}

// Ring returns the polygon with positive shoelace area in image coordinates.
func (s SmartObject) Ring() []shadows.Point {
	return shadows.NormalizeWinding(s.Polygon)
}

// Segments returns the edges of the normalized ring, wrap edge included. The
// Polygon index is left at -1; Build assigns it.
func (s SmartObject) Segments() []shadows.Segment {
	return shadows.Chain(s.Ring(), shadows.KindSmartObjectEdge, -1, true)
}

// Boundary is the image rectangle. Every frame has exactly one.
type Boundary struct {
	Width, Height float64
}

func (b Boundary) Kind() Kind { return KindBoundary }

func (b Boundary) Validate() error {
	if !(b.Width > 0 && b.Height > 0) || !shadows.IsFinite(shadows.Point{X: b.Width, Y: b.Height}) {
		return fmt.Errorf("invalid boundary %vx%v", b.Width, b.Height)
	}
	return nil
}

func (b Boundary) Segments() []shadows.Segment {
	return shadows.BoundarySegments(shadows.Rect{Width: b.Width, Height: b.Height})
}

func validatePoints(points []shadows.Point, minimum int) error {
	if len(points) < minimum {
		return fmt.Errorf("need %d points, have %d: %w", minimum, len(points), ErrTooFewPoints)
	}
	for _, p := range points {
		if !shadows.IsFinite(p) {
			return fmt.Errorf("point %v: %w", p, ErrNonFinite)
		}
	}
	return nil
}
