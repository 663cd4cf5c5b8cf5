package occluder

import "chosenoffset.com/fogofwar/internal/core/shadows"

// Skipped describes an occluder left out of a frame.
type Skipped struct {
	Index int
	Kind  Kind
	Err   error
}

// Build flattens occluders into the segment set for an image of the given
// size. Invalid occluders are left out and reported, the frame still builds.
// The image boundary is always appended last, so it loses every tie against
// a real occluder at the same distance.
func Build(width, height float64, occluders []Occluder) (shadows.Occlusion, []Skipped) {
	occ := shadows.Occlusion{Bounds: shadows.Rect{Width: width, Height: height}}
	var skipped []Skipped

	for i, o := range occluders {
		if err := o.Validate(); err != nil {
			skipped = append(skipped, Skipped{Index: i, Kind: o.Kind(), Err: err})
			continue
		}

		switch v := o.(type) {
		case SmartObject:
			occ.Segments = appendPolygon(&occ, v)
		case *SmartObject:
			occ.Segments = appendPolygon(&occ, *v)
		case Boundary, *Boundary:
			// Built from width and height below
		default:
			occ.Segments = append(occ.Segments, o.Segments()...)
		}
	}

	occ.Segments = append(occ.Segments, shadows.BoundarySegments(occ.Bounds)...)
	return occ, skipped
}

func appendPolygon(occ *shadows.Occlusion, s SmartObject) []shadows.Segment {
	index := len(occ.Polygons)
	ring := s.Ring()
	occ.Polygons = append(occ.Polygons, ring)
	return append(occ.Segments, shadows.Chain(ring, shadows.KindSmartObjectEdge, index, true)...)
}
