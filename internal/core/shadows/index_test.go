package shadows

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func randomScene(rng *rand.Rand, walls int) Occlusion {
	bounds := Rect{Width: 1200, Height: 800}
	var segments []Segment
	for i := 0; i < walls; i++ {
		a := Point{rng.Float64() * bounds.Width, rng.Float64() * bounds.Height}
		b := Point{a.X + (rng.Float64()-0.5)*300, a.Y + (rng.Float64()-0.5)*300}
		segments = append(segments, Chain([]Point{a, b}, KindWall, -1, false)...)
	}

	ring := NormalizeWinding([]Point{{900, 100}, {1000, 150}, {980, 300}, {870, 260}})
	segments = append(segments, Chain(ring, KindSmartObjectEdge, 0, true)...)
	segments = append(segments, BoundarySegments(bounds)...)

	return Occlusion{Segments: segments, Polygons: [][]Point{ring}, Bounds: bounds}
}

func TestGridMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for scene := 0; scene < 5; scene++ {
		occ := randomScene(rng, 40)
		grid := NewGrid(occ.Segments, 50)

		for light := 0; light < 10; light++ {
			pos := Point{rng.Float64() * occ.Bounds.Width, rng.Float64() * occ.Bounds.Height}

			brute := ComputeVisibilityPolygon(pos, occ, Options{})
			indexed := ComputeVisibilityPolygon(pos, occ, Options{Caster: grid})

			if !reflect.DeepEqual(brute, indexed) {
				t.Fatalf("Scene %d light %v: expected grid polygon to match brute force\nbrute: %v\ngrid:  %v",
					scene, pos, brute, indexed)
			}
		}
	}
}

func TestGridCastMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	occ := randomScene(rng, 60)
	brute := NewBruteForce(occ.Segments)

	for _, cellSize := range []float64{16, 64, 500} {
		grid := NewGrid(occ.Segments, cellSize)
		for i := 0; i < 500; i++ {
			origin := Point{rng.Float64() * 1200, rng.Float64() * 800}
			end := Point{rng.Float64()*3000 - 900, rng.Float64()*3000 - 1100}

			want, wantOK := brute.Cast(origin, end, nil)
			got, gotOK := grid.Cast(origin, end, nil)
			if wantOK != gotOK || want != got {
				t.Fatalf("Cell %v ray %v->%v: expected %+v (%v), got %+v (%v)",
					cellSize, origin, end, want, wantOK, got, gotOK)
			}
		}
	}
}

func TestGridRayFromOutside(t *testing.T) {
	segments := Chain([]Point{{100, 0}, {100, 100}}, KindWall, -1, false)
	grid := NewGrid(segments, 10)

	hit, ok := grid.Cast(Point{-50, 50}, Point{300, 50}, nil)
	if !ok {
		t.Fatal("Expected a ray starting outside the grid to reach the wall")
	}
	if math.Abs(hit.Point.X-100) > 1e-9 || math.Abs(hit.Point.Y-50) > 1e-9 {
		t.Errorf("Expected hit at (100, 50), got %v", hit.Point)
	}

	if _, ok := grid.Cast(Point{-50, 500}, Point{300, 500}, nil); ok {
		t.Error("Expected a ray passing beside the grid to miss")
	}
}

func TestEmptyGrid(t *testing.T) {
	grid := NewGrid(nil, 0)
	if _, ok := grid.Cast(Point{0, 0}, Point{10, 10}, nil); ok {
		t.Error("Expected no hit on an empty grid")
	}
}
