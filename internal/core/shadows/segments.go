package shadows

// Chain builds one segment per consecutive pair of points, plus the wrap edge
// from the last point back to the first when closed is set. Zero-length
// segments are dropped so every segment has a direction.
func Chain(points []Point, kind SegmentKind, polygon int, closed bool) []Segment {
	if len(points) < 2 {
		return nil
	}

	segments := make([]Segment, 0, len(points))
	add := func(a, b Point) {
		if a == b {
			return
		}
		segments = append(segments, Segment{A: a, B: b, Kind: kind, Polygon: polygon})
	}

	for i := 0; i < len(points)-1; i++ {
		add(points[i], points[i+1])
	}
	if closed && len(points) > 2 {
		add(points[len(points)-1], points[0])
	}

	return segments
}

// BoundarySegments returns the four edges of the image rectangle, running
// clockwise on screen from the top-left corner.
func BoundarySegments(bounds Rect) []Segment {
	corners := []Point{
		{0, 0},
		{bounds.Width, 0},
		{bounds.Width, bounds.Height},
		{0, bounds.Height},
	}
	return Chain(corners, KindBoundary, -1, true)
}
