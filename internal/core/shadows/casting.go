package shadows

import (
	"math"
	"sort"
)

// DefaultEpsilon is the angular offset in radians of the extra rays cast on
// either side of every vertex.
const DefaultEpsilon = 0.0001

// DefaultRayLengthFactor scales the canvas diagonal into the ray length.
const DefaultRayLengthFactor = 2.0

// collinearTolerance is the largest sine between two consecutive polygon
// edges that Simplify still treats as a straight run.
const collinearTolerance = 1e-9

// Options tune a single ComputeVisibilityPolygon call.
type Options struct {
	// Epsilon is the angular offset of the side rays. Zero selects DefaultEpsilon.
	Epsilon float64
	// RayLength is the length of every cast ray. Zero selects
	// DefaultRayLengthFactor times the diagonal of the occlusion bounds.
	RayLength float64
	// Caster answers the nearest-hit queries. Nil selects a BruteForce scan
	// over the occlusion segments.
	Caster Caster
}

// ComputeVisibilityPolygon calculates what a light at viewerPos can see.
// Returns the visible area as an implicitly closed polygon ordered by angle
// (everything outside is in shadow).
func ComputeVisibilityPolygon(viewerPos Point, occ Occlusion, opts Options) []Point {
	epsilon := opts.Epsilon
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	rayLength := opts.RayLength
	if rayLength <= 0 {
		rayLength = DefaultRayLengthFactor * occ.Bounds.Diagonal()
	}
	caster := opts.Caster
	if caster == nil {
		caster = NewBruteForce(occ.Segments)
	}

	// Smart objects never block a light they enclose
	enclosing := make([]bool, len(occ.Polygons))
	for i, poly := range occ.Polygons {
		enclosing[i] = PointInPolygon(viewerPos, poly)
	}
	ignore := func(index int, hit Point) bool {
		seg := occ.Segments[index]
		if seg.Kind != KindSmartObjectEdge || seg.Polygon < 0 || seg.Polygon >= len(enclosing) {
			return false
		}
		if enclosing[seg.Polygon] {
			return true
		}
		// Back faces seen from outside do not occlude
		return Dot(Sub(hit, viewerPos), OutwardNormal(seg.A, seg.B)) > 0
	}

	// A light on or beyond the boundary has rays leaving the image without a
	// hit; those see nothing and collapse onto the light itself
	inside := occ.Bounds.Inside(viewerPos)

	angles := sweepAngles(viewerPos, collectVertices(occ.Segments), epsilon)

	visiblePoints := make([]Point, 0, len(angles))
	for _, angle := range angles {
		end := Point{
			X: viewerPos.X + math.Cos(angle)*rayLength,
			Y: viewerPos.Y + math.Sin(angle)*rayLength,
		}
		hit, ok := caster.Cast(viewerPos, end, ignore)
		switch {
		case ok:
			visiblePoints = append(visiblePoints, hit.Point)
		case inside:
			// Only reachable without a boundary; stop at the ray's end
			visiblePoints = append(visiblePoints, end)
		default:
			visiblePoints = append(visiblePoints, viewerPos)
		}
	}

	return Simplify(visiblePoints)
}

// collectVertices extracts all unique endpoint vertices from segments
func collectVertices(segments []Segment) []Point {
	seen := make(map[Point]bool, len(segments)*2)
	vertices := make([]Point, 0, len(segments)*2)
	for _, seg := range segments {
		for _, p := range [2]Point{seg.A, seg.B} {
			if !seen[p] {
				seen[p] = true
				vertices = append(vertices, p)
			}
		}
	}
	return vertices
}

// sweepAngles returns the sorted, de-duplicated ray angles in [0, 2π) aimed at
// every vertex and epsilon to either side of it.
func sweepAngles(viewerPos Point, vertices []Point, epsilon float64) []float64 {
	seen := make(map[float64]bool, len(vertices)*3)
	angles := make([]float64, 0, len(vertices)*3)
	for _, vertex := range vertices {
		angle := math.Atan2(vertex.Y-viewerPos.Y, vertex.X-viewerPos.X)
		for _, a := range [3]float64{angle - epsilon, angle, angle + epsilon} {
			normalized := math.Mod(a, 2.0*math.Pi)
			if normalized < 0 {
				normalized += 2.0 * math.Pi
			}
			if !seen[normalized] {
				seen[normalized] = true
				angles = append(angles, normalized)
			}
		}
	}
	sort.Float64s(angles)
	return angles
}

// Simplify drops repeated points and the interior points of straight runs
// from an implicitly closed polygon. The covered area is unchanged.
func Simplify(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && samePoint(out[len(out)-1], p) {
			continue
		}
		for len(out) >= 2 && straight(out[len(out)-2], out[len(out)-1], p) {
			out = out[:len(out)-1]
		}
		out = append(out, p)
	}

	// Close the ring: the seam between the last and first point
	for len(out) >= 3 {
		n := len(out)
		switch {
		case samePoint(out[n-1], out[0]):
			out = out[:n-1]
		case straight(out[n-2], out[n-1], out[0]):
			out = out[:n-1]
		case straight(out[n-1], out[0], out[1]):
			out = out[1:]
		default:
			return out
		}
	}
	return out
}

func samePoint(a, b Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

// straight reports whether b lies on a straight run from a to c.
func straight(a, b, c Point) bool {
	ab := Sub(b, a)
	bc := Sub(c, b)
	if Dot(ab, bc) <= 0 {
		return false
	}
	return math.Abs(Cross(ab, bc)) <= collinearTolerance*math.Hypot(ab.X, ab.Y)*math.Hypot(bc.X, bc.Y)
}
