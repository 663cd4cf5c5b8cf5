package shadows

// Point represents a 2D point in image pixel space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SegmentKind tells which kind of occluder a segment was taken from
type SegmentKind int

const (
	KindWall SegmentKind = iota
	KindDoor
	KindSmartObjectEdge
	KindBoundary
)

// String returns the overlay name of the kind.
func (k SegmentKind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindDoor:
		return "door"
	case KindSmartObjectEdge:
		return "smart_object"
	case KindBoundary:
		return "boundary"
	default:
		return "unknown"
	}
}

// Segment represents an occluding line segment that can cast shadows
type Segment struct {
	A, B    Point
	Kind    SegmentKind
	Polygon int // Index into Occlusion.Polygons for smart object edges, -1 otherwise
}

// Rect is the image rectangle the scene lives in
type Rect struct {
	Width, Height float64
}

// Diagonal returns the length of the rectangle's diagonal.
func (r Rect) Diagonal() float64 {
	return Distance(Point{}, Point{r.Width, r.Height})
}

// Inside reports whether p lies strictly within the rectangle, off its edges.
func (r Rect) Inside(p Point) bool {
	return p.X > 0 && p.X < r.Width && p.Y > 0 && p.Y < r.Height
}

// Occlusion is everything a light can be blocked by during one frame.
// Polygons hold smart object rings with positive winding (see NormalizeWinding).
type Occlusion struct {
	Segments []Segment
	Polygons [][]Point
	Bounds   Rect
}
