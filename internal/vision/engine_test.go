package vision

import (
	"bytes"
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/render/lighting"
	"chosenoffset.com/fogofwar/internal/world/occluder"
)

func pt(x, y float64) shadows.Point { return shadows.Point{X: x, Y: y} }

func dmLight(id string, x, y float64) lighting.LightSource {
	return lighting.LightSource{ID: id, Position: pt(x, y), Kind: lighting.KindDM}
}

func testScene() Snapshot {
	return Snapshot{
		Width:  400,
		Height: 300,
		Occluders: []occluder.Occluder{
			occluder.Wall{Points: []shadows.Point{pt(100, 0), pt(100, 120)}},
			occluder.Wall{Points: []shadows.Point{pt(100, 180), pt(100, 300)}},
			occluder.Door{A: pt(100, 120), B: pt(100, 180)},
			occluder.Wall{Points: []shadows.Point{pt(250, 60), pt(330, 60), pt(330, 140)}},
			occluder.SmartObject{Polygon: []shadows.Point{pt(180, 200), pt(220, 200), pt(220, 240), pt(180, 240)}},
		},
		Lights: []lighting.LightSource{
			dmLight("west", 40, 150),
			dmLight("east", 300, 220),
			dmLight("north", 200, 30),
		},
	}
}

// distToSegment returns the distance from p to the segment a-b.
func distToSegment(p, a, b shadows.Point) float64 {
	ab := shadows.Sub(b, a)
	l2 := shadows.Dot(ab, ab)
	if l2 == 0 {
		return shadows.Distance(p, a)
	}
	t := math.Max(0, math.Min(1, shadows.Dot(shadows.Sub(p, a), ab)/l2))
	return shadows.Distance(p, pt(a.X+t*ab.X, a.Y+t*ab.Y))
}

// nearEdge reports whether p is too close to a polygon edge for its pixel
// coverage to be decided by the centre alone.
func nearEdge(p shadows.Point, polygons [][]shadows.Point) bool {
	for _, poly := range polygons {
		for i := range poly {
			if distToSegment(p, poly[i], poly[(i+1)%len(poly)]) < 1.5 {
				return true
			}
		}
	}
	return false
}

func TestUnionLaw(t *testing.T) {
	snap := testScene()
	frame, err := NewEngine(Options{}).Compute(context.Background(), snap)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(frame.Polygons) != 3 {
		t.Fatalf("Expected 3 polygons, got %d", len(frame.Polygons))
	}

	checked := 0
	for y := 0; y < snap.Height; y += 7 {
		for x := 0; x < snap.Width; x += 7 {
			p := pt(float64(x)+0.5, float64(y)+0.5)
			if nearEdge(p, frame.Polygons) {
				continue
			}
			want := false
			for _, poly := range frame.Polygons {
				if shadows.PointInPolygon(p, poly) {
					want = true
					break
				}
			}
			if got := frame.Mask.Revealed(x, y); got != want {
				t.Fatalf("Pixel (%d, %d): expected revealed=%v, got %v", x, y, want, got)
			}
			checked++
		}
	}
	if checked < 1000 {
		t.Errorf("Expected at least 1000 decided samples, got %d", checked)
	}
}

func TestDarkvisionLaw(t *testing.T) {
	snap := testScene()
	disc := lighting.DarkvisionToken{ID: "elf", Position: pt(60, 150), Radius: 120}
	snap.Darkvision = []lighting.DarkvisionToken{disc}

	frame, err := NewEngine(Options{}).Compute(context.Background(), snap)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	for y := 0; y < snap.Height; y += 5 {
		for x := 0; x < snap.Width; x += 5 {
			p := pt(float64(x)+0.5, float64(y)+0.5)
			d := shadows.Distance(p, disc.Position)
			if nearEdge(p, frame.Polygons) || math.Abs(d-disc.Radius) < 1.5 {
				continue
			}
			lit := false
			for _, poly := range frame.Polygons {
				if shadows.PointInPolygon(p, poly) {
					lit = true
					break
				}
			}
			want := lit && d < disc.Radius
			if got := frame.Mask.Revealed(x, y); got != want {
				t.Fatalf("Pixel (%d, %d): expected revealed=%v (lit=%v, distance %.1f), got %v", x, y, want, lit, d, got)
			}
		}
	}
}

func TestWallScenario(t *testing.T) {
	snap := Snapshot{
		Width:     1000,
		Height:    1000,
		Occluders: []occluder.Occluder{occluder.Wall{Points: []shadows.Point{pt(500, 0), pt(500, 1000)}}},
		Lights:    []lighting.LightSource{dmLight("torch", 250, 500)},
	}
	frame, err := NewEngine(Options{}).Compute(context.Background(), snap)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if !frame.Mask.Revealed(100, 100) || !frame.Mask.Revealed(100, 900) {
		t.Error("Expected (100, 100) and (100, 900) to be revealed")
	}
	if !frame.Mask.Hidden(900, 500) {
		t.Error("Expected (900, 500) to be hidden")
	}
	for y := 0; y < 1000; y += 9 {
		for x := 501; x < 1000; x += 9 {
			if frame.Mask.At(x, y) != 0xff {
				t.Fatalf("Expected (%d, %d) beyond the wall fully hidden, got alpha %d", x, y, frame.Mask.At(x, y))
			}
		}
	}
}

func TestLightsOnTheImageEdge(t *testing.T) {
	square := occluder.SmartObject{Polygon: []shadows.Point{pt(400, 400), pt(600, 400), pt(600, 600), pt(400, 600)}}
	wall := occluder.Wall{Points: []shadows.Point{pt(500, 0), pt(500, 1000)}}

	tests := []struct {
		name     string
		occluder occluder.Occluder
		light    shadows.Point
		revealed [][2]int
		hidden   [][2]int
	}{
		{"smart object from a corner", square, pt(0, 0), [][2]int{{900, 100}}, [][2]int{{500, 500}, {900, 900}}},
		{"wall from the top-left corner", wall, pt(0, 0), [][2]int{{100, 900}}, [][2]int{{900, 500}, {700, 100}}},
		{"wall from the bottom-right corner", wall, pt(1000, 1000), [][2]int{{900, 100}}, [][2]int{{100, 500}, {300, 900}}},
		{"light outside the image", square, pt(1500, 200), nil, [][2]int{{500, 500}, {100, 500}, {990, 200}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{
				Width:     1000,
				Height:    1000,
				Occluders: []occluder.Occluder{tt.occluder},
				Lights:    []lighting.LightSource{dmLight("torch", tt.light.X, tt.light.Y)},
			}
			frame, err := NewEngine(Options{}).Compute(context.Background(), snap)
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			for _, p := range tt.revealed {
				if !frame.Mask.Revealed(p[0], p[1]) {
					t.Errorf("Expected (%d, %d) to be revealed", p[0], p[1])
				}
			}
			for _, p := range tt.hidden {
				if !frame.Mask.Hidden(p[0], p[1]) {
					t.Errorf("Expected (%d, %d) to be hidden, got alpha %d", p[0], p[1], frame.Mask.At(p[0], p[1]))
				}
			}
		})
	}
}

func TestDarkvisionRadiusScenario(t *testing.T) {
	tokens := []lighting.Token{{ID: "a", Position: pt(200, 200), Vision: true, VisionFeet: 60}}
	grid := lighting.Grid{Visible: true, Feet: 5, Pixels: 50}

	snap := Snapshot{
		Width:      1000,
		Height:     1000,
		Lights:     lighting.NewManager(0).GetAllLights(tokens),
		Darkvision: lighting.Darkvision(tokens, grid),
	}
	if len(snap.Darkvision) != 1 || snap.Darkvision[0].Radius != 600 {
		t.Fatalf("Expected one 600 px darkvision disc, got %+v", snap.Darkvision)
	}

	frame, err := NewEngine(Options{}).Compute(context.Background(), snap)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !frame.Mask.Revealed(790, 200) || !frame.Mask.Revealed(200, 790) {
		t.Error("Expected pixels just inside 600 px to be revealed")
	}
	if !frame.Mask.Hidden(810, 200) || !frame.Mask.Hidden(700, 700) {
		t.Error("Expected pixels beyond 600 px to be hidden")
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	snap := testScene()
	for i := 0; i < 5; i++ {
		snap.Lights = append(snap.Lights, dmLight("extra", 20+float64(i)*70, 280))
	}

	seq, err := NewEngine(Options{}).Compute(context.Background(), snap)
	if err != nil {
		t.Fatalf("Sequential compute failed: %v", err)
	}
	par, err := NewEngine(Options{Workers: 4}).Compute(context.Background(), snap)
	if err != nil {
		t.Fatalf("Parallel compute failed: %v", err)
	}

	if !reflect.DeepEqual(seq.Polygons, par.Polygons) {
		t.Error("Expected identical polygons from parallel builds")
	}
	if !bytes.Equal(seq.Mask.Alpha.Pix, par.Mask.Alpha.Pix) {
		t.Error("Expected identical masks from parallel builds")
	}
}

func TestGridIndexMatchesBruteForce(t *testing.T) {
	snap := testScene()

	brute, err := NewEngine(Options{Index: IndexBruteForce}).Compute(context.Background(), snap)
	if err != nil {
		t.Fatalf("Brute force compute failed: %v", err)
	}
	grid, err := NewEngine(Options{Index: IndexGrid, CellSize: 32}).Compute(context.Background(), snap)
	if err != nil {
		t.Fatalf("Grid compute failed: %v", err)
	}
	if !reflect.DeepEqual(brute.Polygons, grid.Polygons) {
		t.Error("Expected the grid index to produce the brute force polygons")
	}
}

func TestComputeSkipsBadInput(t *testing.T) {
	snap := testScene()
	snap.Lights = append(snap.Lights, dmLight("broken", math.NaN(), 10))
	snap.Occluders = append(snap.Occluders, occluder.Wall{Points: []shadows.Point{pt(1, 1)}})

	frame, err := NewEngine(Options{}).Compute(context.Background(), snap)
	if err != nil {
		t.Fatalf("Expected bad entities to be skipped, got error %v", err)
	}
	if len(frame.Lights) != 3 || len(frame.Polygons) != 3 {
		t.Errorf("Expected 3 usable lights, got %d lights and %d polygons", len(frame.Lights), len(frame.Polygons))
	}
}

func TestComputeErrors(t *testing.T) {
	engine := NewEngine(Options{})

	if _, err := engine.Compute(context.Background(), Snapshot{Width: 0, Height: 10}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Compute(ctx, testScene()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestComputeResizes(t *testing.T) {
	engine := NewEngine(Options{})
	snap := testScene()
	if _, err := engine.Compute(context.Background(), snap); err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	snap.Width, snap.Height = 120, 80
	snap.Occluders = nil
	snap.Lights = []lighting.LightSource{dmLight("only", 60, 40)}
	frame, err := engine.Compute(context.Background(), snap)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if w, h := frame.Mask.Size(); w != 120 || h != 80 {
		t.Errorf("Expected a 120x80 mask, got %dx%d", w, h)
	}
	if !frame.Mask.Revealed(5, 5) || !frame.Mask.Revealed(115, 75) {
		t.Error("Expected an unobstructed light to reveal the whole image")
	}
}
