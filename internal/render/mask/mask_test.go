package mask

import (
	"image/color"
	"math"
	"testing"

	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/render/lighting"
)

func square(x0, y0, x1, y1 float64) []shadows.Point {
	return []shadows.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestNewMaskIsOpaque(t *testing.T) {
	m := New(40, 30)
	if w, h := m.Size(); w != 40 || h != 30 {
		t.Fatalf("Expected 40x30, got %dx%d", w, h)
	}
	if !m.IsOpaque() {
		t.Error("Expected a new mask to be fully hidden")
	}
	if !m.Hidden(-1, 5) || !m.Hidden(40, 5) {
		t.Error("Expected pixels outside the mask to read as hidden")
	}
}

func TestSubtractUnboundedPolygon(t *testing.T) {
	r := NewRenderer(100, 100)
	m := r.NewMask()
	r.Subtract(m, square(10, 10, 50, 50), lighting.LightSource{Position: shadows.Point{X: 30, Y: 30}})

	if m.At(30, 30) > 1 {
		t.Errorf("Expected inside pixel revealed, got %d", m.At(30, 30))
	}
	if !m.Hidden(70, 70) {
		t.Errorf("Expected outside pixel hidden, got %d", m.At(70, 70))
	}
	if !m.Hidden(5, 30) {
		t.Errorf("Expected pixel left of the square hidden, got %d", m.At(5, 30))
	}
}

func TestSubtractIgnoresDegeneratePolygon(t *testing.T) {
	r := NewRenderer(20, 20)
	m := r.NewMask()
	r.Subtract(m, []shadows.Point{{X: 1, Y: 1}, {X: 5, Y: 5}}, lighting.LightSource{})
	if !m.IsOpaque() {
		t.Error("Expected a two-point polygon to reveal nothing")
	}
}

func TestSubtractBoundedLight(t *testing.T) {
	r := NewRenderer(200, 200)
	m := r.NewMask()
	light := lighting.LightSource{Position: shadows.Point{X: 100, Y: 100}, MaxRadius: 40, Kind: lighting.KindToken}
	r.Subtract(m, square(0, 0, 200, 200), light)

	if !m.Revealed(100, 100) || !m.Revealed(100, 135) || !m.Revealed(70, 100) {
		t.Error("Expected pixels within the radius to be revealed")
	}
	if !m.Hidden(100, 150) || !m.Hidden(10, 10) || !m.Hidden(135, 135) {
		t.Error("Expected pixels beyond the radius to stay hidden")
	}
}

func TestSubtractIsUnion(t *testing.T) {
	r := NewRenderer(100, 100)
	m := r.NewMask()
	r.Subtract(m, square(0, 0, 40, 100), lighting.LightSource{})
	r.Subtract(m, square(60, 0, 100, 100), lighting.LightSource{})

	for _, x := range []int{10, 30, 70, 90} {
		if !m.Revealed(x, 50) {
			t.Errorf("Expected (%d, 50) revealed by one of the lights", x)
		}
	}
	if !m.Hidden(50, 50) {
		t.Error("Expected the gap between the lights to stay hidden")
	}
}

func TestIntersectDarkvision(t *testing.T) {
	r := NewRenderer(200, 200)
	m := r.NewMask()
	r.Subtract(m, square(0, 0, 200, 200), lighting.LightSource{})

	r.Intersect(m, []lighting.DarkvisionToken{
		{ID: "a", Position: shadows.Point{X: 50, Y: 50}, Radius: 30},
		{ID: "b", Position: shadows.Point{X: 150, Y: 150}, Radius: 30},
	})

	if !m.Revealed(50, 50) || !m.Revealed(150, 150) {
		t.Error("Expected disc centres to stay revealed")
	}
	if !m.Hidden(100, 100) || !m.Hidden(50, 150) {
		t.Error("Expected lit pixels outside every disc to become hidden")
	}
}

func TestIntersectNeverRevealsUnlit(t *testing.T) {
	r := NewRenderer(100, 100)
	m := r.NewMask()
	r.Subtract(m, square(0, 0, 30, 100), lighting.LightSource{})
	r.Intersect(m, []lighting.DarkvisionToken{{Position: shadows.Point{X: 50, Y: 50}, Radius: 45}})

	if !m.Revealed(20, 50) {
		t.Error("Expected a lit pixel inside the disc to stay revealed")
	}
	if !m.Hidden(60, 50) {
		t.Error("Expected an unlit pixel inside the disc to stay hidden")
	}
}

func TestIntersectWithoutDiscs(t *testing.T) {
	r := NewRenderer(50, 50)
	m := r.NewMask()
	r.Subtract(m, square(0, 0, 50, 50), lighting.LightSource{})
	before := m.Clone()

	r.Intersect(m, nil)
	for i := range m.Alpha.Pix {
		if m.Alpha.Pix[i] != before.Alpha.Pix[i] {
			t.Fatal("Expected the mask unmodified without darkvision discs")
		}
	}
}

func TestDarkvisionDiscRadius(t *testing.T) {
	radius := lighting.VisionRadius(60, 5, 50)
	if radius != 600 {
		t.Fatalf("Expected radius 600, got %v", radius)
	}

	r := NewRenderer(1000, 1000)
	m := r.NewMask()
	r.Subtract(m, square(0, 0, 1000, 1000), lighting.LightSource{})
	r.Intersect(m, []lighting.DarkvisionToken{{Position: shadows.Point{X: 200, Y: 200}, Radius: radius}})

	for _, tc := range []struct {
		x, y     int
		revealed bool
	}{
		{200, 200, true},
		{790, 200, true},
		{200, 790, true},
		{810, 200, false},
		{200, 810, false},
		{650, 650, false},
		{600, 600, true},
	} {
		if m.Revealed(tc.x, tc.y) != tc.revealed {
			d := math.Hypot(float64(tc.x)+0.5-200, float64(tc.y)+0.5-200)
			t.Errorf("Pixel (%d, %d) at distance %.1f: expected revealed=%v", tc.x, tc.y, d, tc.revealed)
		}
	}
}

func TestOverlayColours(t *testing.T) {
	r := NewRenderer(20, 20)
	m := r.NewMask()
	r.Subtract(m, square(0, 0, 10, 20), lighting.LightSource{})

	fog := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	img := m.NRGBA(fog)
	if got := img.NRGBAAt(5, 5); got.A > 1 {
		t.Errorf("Expected transparent revealed pixel, got %v", got)
	}
	if got := img.NRGBAAt(15, 5); got != fog {
		t.Errorf("Expected fog %v on hidden pixel, got %v", fog, got)
	}

	rgba := m.RGBA(fog)
	if got := rgba.RGBAAt(15, 5); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("Expected opaque fog, got %v", got)
	}
}

func TestMul8(t *testing.T) {
	tests := []struct{ a, b, want uint8 }{
		{255, 255, 255},
		{255, 0, 0},
		{0, 255, 0},
		{128, 255, 128},
		{255, 128, 128},
	}
	for _, tt := range tests {
		if got := mul8(tt.a, tt.b); got != tt.want {
			t.Errorf("mul8(%d, %d): expected %d, got %d", tt.a, tt.b, tt.want, got)
		}
	}
}
