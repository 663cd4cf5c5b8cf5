package main

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/render/lighting"
	"chosenoffset.com/fogofwar/internal/scene"
	"chosenoffset.com/fogofwar/internal/vision"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in   string
		want shadows.Point
		ok   bool
	}{
		{"10,20", shadows.Point{X: 10, Y: 20}, true},
		{" 1.5 , -2 ", shadows.Point{X: 1.5, Y: -2}, true},
		{"10", shadows.Point{}, false},
		{"a,b", shadows.Point{}, false},
	}
	for _, tt := range tests {
		got, err := parsePoint(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("parsePoint(%q): expected ok=%v, got err %v", tt.in, tt.ok, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePoint(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestWalk(t *testing.T) {
	points := walk(shadows.Point{X: 0, Y: 0}, shadows.Point{X: 100, Y: 50}, 3)
	want := []shadows.Point{{X: 0, Y: 0}, {X: 50, Y: 25}, {X: 100, Y: 50}}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("Expected point %d to be %v, got %v", i, want[i], points[i])
		}
	}
}

func TestNumbered(t *testing.T) {
	if got := numbered("out/fog.png", 7); got != "out/fog-007.png" {
		t.Errorf("Expected out/fog-007.png, got %s", got)
	}
}

func TestFitMap(t *testing.T) {
	blank := fitMap(nil, 40, 30)
	if blank.Bounds().Dx() != 40 || blank.Bounds().Dy() != 30 {
		t.Fatalf("Expected a 40x30 canvas, got %v", blank.Bounds())
	}

	src := image.NewRGBA(image.Rect(0, 0, 20, 15))
	scaled := fitMap(src, 40, 30)
	if scaled.Bounds().Dx() != 40 {
		t.Errorf("Expected the map scaled to 40 wide, got %v", scaled.Bounds())
	}
	if same := fitMap(src, 20, 15); same != image.Image(src) {
		t.Error("Expected a map of the right size to be used as is")
	}
}

func testStore(t *testing.T) *scene.Store {
	t.Helper()
	state, err := scene.Parse([]byte(`{
		"imageWidth": 200, "imageHeight": 100,
		"overlays": [
			{"type": "wall", "points": [{"x": 100, "y": 0}, {"x": 100, "y": 40}]},
			{"type": "door", "points": [{"x": 100, "y": 40}, {"x": 100, "y": 60}]},
			{"type": "wall", "points": [{"x": 100, "y": 60}, {"x": 100, "y": 100}]}
		]
	}`))
	if err != nil {
		t.Fatalf("Failed to parse scene: %v", err)
	}
	return scene.NewStore(state, scene.Options{})
}

func TestCaptureFollowsPath(t *testing.T) {
	store := testStore(t)
	engine := vision.NewEngine(vision.Options{})
	path := walk(shadows.Point{X: 20, Y: 50}, shadows.Point{X: 80, Y: 50}, 3)

	var got []shadows.Point
	err := capture(engine, store, path, len(path), nil, func(n int, frame *vision.Frame) error {
		for _, l := range frame.Lights {
			if l.ID == probeID {
				got = append(got, l.Position)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if len(got) != len(path) {
		t.Fatalf("Expected %d frames, got %d", len(path), len(got))
	}
	for i := range path {
		if got[i] != path[i] {
			t.Errorf("Expected frame %d lit from %v, got %v", i, path[i], got[i])
		}
	}
}

func TestWriteFrame(t *testing.T) {
	store := testStore(t)
	store.SetLight(probeID, shadows.Point{X: 50, Y: 50})
	frame, err := vision.NewEngine(vision.Options{}).Compute(t.Context(), store.Snapshot())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(frame.Lights) != 1 || frame.Lights[0].Kind != lighting.KindDM {
		t.Fatalf("Expected the probe light, got %+v", frame.Lights)
	}

	out := filepath.Join(t.TempDir(), "fog.png")
	if err := writeFrame(out, nil, store, frame, overlayStyle{Fog: color.Black, Outlines: true}); err != nil {
		t.Fatalf("writeFrame failed: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("Expected %s to exist: %v", out, err)
	}
	if info.Size() == 0 {
		t.Error("Expected a non-empty PNG")
	}
}
