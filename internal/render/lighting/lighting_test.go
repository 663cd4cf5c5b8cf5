package lighting

import (
	"encoding/json"
	"math"
	"testing"

	"chosenoffset.com/fogofwar/internal/core/shadows"
)

func TestVisionRadius(t *testing.T) {
	tests := []struct {
		name                   string
		feet, gridFeet, pixels float64
		want                   float64
	}{
		{"sixty feet on default grid", 60, 5, 50, 600},
		{"defaults when unset", 60, 0, 0, 600},
		{"ten foot squares", 60, 10, 70, 420},
		{"no range", 0, 5, 50, 0},
		{"negative grid", 60, -5, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VisionRadius(tt.feet, tt.gridFeet, tt.pixels); got != tt.want {
				t.Errorf("Expected radius %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseVisionFeet(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`60`, 60},
		{`"60"`, 60},
		{`"60 ft"`, 60},
		{`"  30"`, 30},
		{`60.9`, 60},
		{`"darkvision"`, 0},
		{`""`, 0},
		{`null`, 0},
		{`true`, 0},
		{`"-10"`, -10},
		{`"99999999999999999999"`, math.MaxInt32},
		{`"-99999999999999999999 ft"`, -math.MaxInt32},
		{`1e20`, math.MaxInt32},
	}

	for _, tt := range tests {
		var v any
		if err := json.Unmarshal([]byte(tt.raw), &v); err != nil {
			t.Fatalf("Failed to decode %s: %v", tt.raw, err)
		}
		if got := ParseVisionFeet(v); got != tt.want {
			t.Errorf("ParseVisionFeet(%s): expected %d, got %d", tt.raw, tt.want, got)
		}
	}
}

func TestDarkvision(t *testing.T) {
	tokens := []Token{
		{ID: "a", Position: shadows.Point{X: 200, Y: 200}, Vision: true, VisionFeet: 60},
		{ID: "b", Position: shadows.Point{X: 10, Y: 10}, Vision: false, VisionFeet: 60},
		{ID: "c", Position: shadows.Point{X: 20, Y: 20}, Vision: true, VisionFeet: 0},
	}

	discs := Darkvision(tokens, Grid{Visible: true, Feet: 5, Pixels: 50})
	if len(discs) != 1 {
		t.Fatalf("Expected 1 darkvision disc, got %d", len(discs))
	}
	if discs[0].ID != "a" || discs[0].Radius != 600 {
		t.Errorf("Expected token a with radius 600, got %+v", discs[0])
	}

	if discs := Darkvision(tokens, Grid{Visible: false, Feet: 5, Pixels: 50}); discs != nil {
		t.Errorf("Expected no darkvision while the grid is hidden, got %v", discs)
	}
}

func TestManagerLights(t *testing.T) {
	m := NewManager(300)
	m.SetLight("torch", shadows.Point{X: 1, Y: 2})
	m.SetLight("lantern", shadows.Point{X: 3, Y: 4})
	m.SetLight("torch", shadows.Point{X: 5, Y: 6})

	tokens := []Token{
		{ID: "hero", Position: shadows.Point{X: 7, Y: 8}, Vision: true},
		{ID: "blind", Position: shadows.Point{X: 9, Y: 9}},
	}
	lights := m.GetAllLights(tokens)
	if len(lights) != 3 {
		t.Fatalf("Expected 3 lights, got %d", len(lights))
	}
	if lights[0].ID != "torch" || lights[0].Position != (shadows.Point{X: 5, Y: 6}) {
		t.Errorf("Expected moved torch first, got %+v", lights[0])
	}
	if lights[0].Bounded() {
		t.Error("Expected DM lights to be unbounded")
	}
	if lights[2].Kind != KindToken || lights[2].MaxRadius != 300 {
		t.Errorf("Expected bounded token light, got %+v", lights[2])
	}

	m.RemoveLight("torch")
	m.RemoveLight("missing")
	if _, ok := m.Light("torch"); ok {
		t.Error("Expected torch to be removed")
	}
	if l, ok := m.Light("lantern"); !ok || l.Position != (shadows.Point{X: 3, Y: 4}) {
		t.Errorf("Expected lantern to survive removal, got %+v (ok=%v)", l, ok)
	}

	m.ClearLights()
	if got := len(m.GetAllLights(nil)); got != 0 {
		t.Errorf("Expected no lights after clearing, got %d", got)
	}
}
