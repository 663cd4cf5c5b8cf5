package game

import (
	"chosenoffset.com/fogofwar/internal/core/shadows"
)

// Camera maps image pixels onto the screen.
type Camera struct {
	X, Y float64 // Image position shown at the top-left corner of the view
	Zoom float64 // Screen pixels per image pixel
}

// ToImage converts a screen position into image coordinates.
func (c Camera) ToImage(sx, sy int) shadows.Point {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return shadows.Point{X: float64(sx)/zoom + c.X, Y: float64(sy)/zoom + c.Y}
}

// ToScreen converts an image position into screen coordinates.
func (c Camera) ToScreen(p shadows.Point) (float32, float32) {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return float32((p.X - c.X) * zoom), float32((p.Y - c.Y) * zoom)
}

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}
