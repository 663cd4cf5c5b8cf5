package shadows

import "math"

// Sub returns a - b.
func Sub(a, b Point) Point {
	return Point{a.X - b.X, a.Y - b.Y}
}

// Dot returns the dot product of a and b.
func Dot(a, b Point) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Cross returns the z component of the cross product of a and b.
func Cross(a, b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Distance calculates the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func IsFinite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// PointInPolygon tests if a point is inside a polygon using ray casting algorithm
func PointInPolygon(point Point, polygon []Point) bool {
	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y

		if ((yi > point.Y) != (yj > point.Y)) &&
			(point.X < (xj-xi)*(point.Y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}

	return inside
}

// SignedArea returns the shoelace area of a ring. In image coordinates (y down)
// a ring that runs clockwise on screen has a positive area.
func SignedArea(ring []Point) float64 {
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum / 2
}

// NormalizeWinding returns a copy of ring with positive signed area, so that
// OutwardNormal points away from the interior for every edge.
func NormalizeWinding(ring []Point) []Point {
	out := make([]Point, len(ring))
	copy(out, ring)
	if SignedArea(out) < 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// OutwardNormal returns the (unnormalized) normal of the edge a->b that points
// out of a positively wound ring.
func OutwardNormal(a, b Point) Point {
	return Point{b.Y - a.Y, a.X - b.X}
}
