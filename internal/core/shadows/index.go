package shadows

import "math"

// DefaultCellSize is the bucket edge length of a Grid in pixels.
const DefaultCellSize = 64.0

// cellPadding inflates segment bounding boxes so hits on a cell border are
// found from either side.
const cellPadding = 1e-6

// Grid buckets segments into uniform cells and walks a ray through the cells
// it crosses, nearest first. Safe for concurrent Cast calls once built.
type Grid struct {
	segments   []Segment
	minX, minY float64
	maxX, maxY float64
	cellSize   float64
	cols, rows int
	cells      [][]int32
}

// NewGrid buckets segments into cells of cellSize pixels.
// A non-positive cellSize selects DefaultCellSize.
func NewGrid(segments []Segment, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	g := &Grid{segments: segments, cellSize: cellSize}
	if len(segments) == 0 {
		return g
	}

	g.minX, g.minY = math.Inf(1), math.Inf(1)
	g.maxX, g.maxY = math.Inf(-1), math.Inf(-1)
	for _, seg := range segments {
		g.minX = math.Min(g.minX, math.Min(seg.A.X, seg.B.X))
		g.minY = math.Min(g.minY, math.Min(seg.A.Y, seg.B.Y))
		g.maxX = math.Max(g.maxX, math.Max(seg.A.X, seg.B.X))
		g.maxY = math.Max(g.maxY, math.Max(seg.A.Y, seg.B.Y))
	}
	g.minX -= cellPadding
	g.minY -= cellPadding
	g.maxX += cellPadding
	g.maxY += cellPadding

	g.cols = max(1, int(math.Ceil((g.maxX-g.minX)/cellSize)))
	g.rows = max(1, int(math.Ceil((g.maxY-g.minY)/cellSize)))
	g.cells = make([][]int32, g.cols*g.rows)

	for i, seg := range segments {
		x0, y0 := g.cellOf(math.Min(seg.A.X, seg.B.X)-cellPadding, math.Min(seg.A.Y, seg.B.Y)-cellPadding)
		x1, y1 := g.cellOf(math.Max(seg.A.X, seg.B.X)+cellPadding, math.Max(seg.A.Y, seg.B.Y)+cellPadding)
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				idx := cy*g.cols + cx
				g.cells[idx] = append(g.cells[idx], int32(i))
			}
		}
	}
	return g
}

// cellOf returns the clamped cell coordinates containing (x, y).
func (g *Grid) cellOf(x, y float64) (int, int) {
	cx := int(math.Floor((x - g.minX) / g.cellSize))
	cy := int(math.Floor((y - g.minY) / g.cellSize))
	return clampInt(cx, 0, g.cols-1), clampInt(cy, 0, g.rows-1)
}

// Cast implements Caster using an Amanatides-Woo traversal of the cells.
func (g *Grid) Cast(origin, end Point, ignore func(int, Point) bool) (Hit, bool) {
	if len(g.cells) == 0 {
		return Hit{}, false
	}

	r := Sub(end, origin)
	tEnter, tExit, ok := g.clip(origin, r)
	if !ok {
		return Hit{}, false
	}

	start := Point{origin.X + tEnter*r.X, origin.Y + tEnter*r.Y}
	cx, cy := g.cellOf(start.X, start.Y)

	stepX, tMaxX, tDeltaX := g.axisStep(origin.X, r.X, g.minX, cx)
	stepY, tMaxY, tDeltaY := g.axisStep(origin.Y, r.Y, g.minY, cy)

	var best Hit
	found := false
	for {
		for _, si := range g.cells[cy*g.cols+cx] {
			hit, ok := testSegment(origin, end, g.segments[si], int(si), ignore)
			if !ok {
				continue
			}
			if !found || hit.closer(best) {
				best = hit
				found = true
			}
		}

		cellExit := math.Min(tMaxX, tMaxY)
		// A hit exactly on the exit border may tie with a segment in the
		// next cell, so only stop on a strictly nearer hit.
		if found && best.T < cellExit {
			break
		}
		if cellExit >= tExit {
			break
		}

		if tMaxX < tMaxY {
			cx += stepX
			tMaxX += tDeltaX
		} else {
			cy += stepY
			tMaxY += tDeltaY
		}
		if cx < 0 || cx >= g.cols || cy < 0 || cy >= g.rows {
			break
		}
	}

	if found {
		best.Distance = best.T * Distance(origin, end)
	}
	return best, found
}

// clip intersects the ray parameter range [0, 1] with the grid box.
func (g *Grid) clip(origin, r Point) (float64, float64, bool) {
	tEnter, tExit := 0.0, 1.0
	for _, axis := range [2]struct{ o, d, lo, hi float64 }{
		{origin.X, r.X, g.minX, g.maxX},
		{origin.Y, r.Y, g.minY, g.maxY},
	} {
		if axis.d == 0 {
			if axis.o < axis.lo || axis.o > axis.hi {
				return 0, 0, false
			}
			continue
		}
		t0 := (axis.lo - axis.o) / axis.d
		t1 := (axis.hi - axis.o) / axis.d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tEnter = math.Max(tEnter, t0)
		tExit = math.Min(tExit, t1)
	}
	return tEnter, tExit, tEnter <= tExit
}

// axisStep returns the DDA step direction, the ray parameter of the first
// cell border crossed and the parameter distance between borders.
func (g *Grid) axisStep(origin, d, lo float64, cell int) (int, float64, float64) {
	switch {
	case d > 0:
		border := lo + float64(cell+1)*g.cellSize
		return 1, (border - origin) / d, g.cellSize / d
	case d < 0:
		border := lo + float64(cell)*g.cellSize
		return -1, (border - origin) / d, -g.cellSize / d
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
