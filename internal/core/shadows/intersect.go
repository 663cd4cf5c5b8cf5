package shadows

import "math"

const (
	// parallelTolerance is relative to |ray| * |segment|.
	parallelTolerance = 1e-12
	// endpointTolerance widens the segment parameter range so that a ray
	// aimed exactly at a vertex still registers after rounding.
	endpointTolerance = 1e-9
)

// Hit is the nearest accepted intersection of a ray.
type Hit struct {
	Point    Point
	T        float64 // Ray parameter in (0, 1]
	Distance float64 // Euclidean distance from the ray origin
	Segment  int     // Index of the segment that was hit
}

// closer orders hits by ray parameter, then by segment index, so equal
// distances resolve to the same segment no matter how they were found.
func (h Hit) closer(other Hit) bool {
	if h.T != other.T {
		return h.T < other.T
	}
	return h.Segment < other.Segment
}

// IntersectRay intersects the ray origin->end with a segment.
// Ray: P = origin + t*(end-origin), t in (0, 1]
// Segment: Q = seg.A + u*(seg.B-seg.A), u in [0, 1]
// Returns the intersection point, the ray parameter t and whether they meet.
func IntersectRay(origin, end Point, seg Segment) (Point, float64, bool) {
	r := Sub(end, origin)
	s := Sub(seg.B, seg.A)

	denominator := Cross(r, s)
	if math.Abs(denominator) <= parallelTolerance*math.Hypot(r.X, r.Y)*math.Hypot(s.X, s.Y) {
		// Ray and segment are parallel
		return Point{}, 0, false
	}

	diff := Sub(seg.A, origin)
	t := Cross(diff, s) / denominator
	u := Cross(diff, r) / denominator

	if t <= 0 || t > 1 {
		return Point{}, 0, false
	}
	if u < -endpointTolerance || u > 1+endpointTolerance {
		return Point{}, 0, false
	}

	return Point{X: origin.X + t*r.X, Y: origin.Y + t*r.Y}, t, true
}

// Caster finds the nearest segment hit along a ray. Implementations must
// return identical hits for identical input, so that a spatial index can
// replace the brute force scan without changing any polygon.
type Caster interface {
	// Cast returns the nearest hit on the ray origin->end. Hits for which
	// ignore returns true are skipped. ignore may be nil.
	Cast(origin, end Point, ignore func(segment int, hit Point) bool) (Hit, bool)
}

// BruteForce tests every segment for every ray.
type BruteForce struct {
	Segments []Segment
}

// NewBruteForce creates a caster scanning the given segments.
func NewBruteForce(segments []Segment) *BruteForce {
	return &BruteForce{Segments: segments}
}

// Cast implements Caster.
func (b *BruteForce) Cast(origin, end Point, ignore func(int, Point) bool) (Hit, bool) {
	var best Hit
	found := false
	for i, seg := range b.Segments {
		hit, ok := testSegment(origin, end, seg, i, ignore)
		if !ok {
			continue
		}
		if !found || hit.closer(best) {
			best = hit
			found = true
		}
	}
	if found {
		best.Distance = best.T * Distance(origin, end)
	}
	return best, found
}

func testSegment(origin, end Point, seg Segment, index int, ignore func(int, Point) bool) (Hit, bool) {
	point, t, ok := IntersectRay(origin, end, seg)
	if !ok {
		return Hit{}, false
	}
	if ignore != nil && ignore(index, point) {
		return Hit{}, false
	}
	return Hit{Point: point, T: t, Segment: index}, true
}
