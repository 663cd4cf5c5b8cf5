package vision

import (
	"image"

	"chosenoffset.com/fogofwar/internal/render/mask"
)

// Memory remembers every pixel revealed since the last Reset. Remembered
// pixels that fall back into fog are drawn at a lighter alpha instead of
// fully hidden. It never feeds back into visibility.
type Memory struct {
	alpha uint8
	seen  *image.Alpha // Strongest reveal so far, 255 = fully seen
}

// NewMemory creates an explored-area memory. alpha is the fog alpha used
// for remembered pixels.
func NewMemory(alpha uint8) *Memory {
	return &Memory{alpha: alpha}
}

// Apply records the mask's reveal and lightens remembered fog in place.
func (m *Memory) Apply(mk *mask.Mask) {
	if m.seen == nil || m.seen.Rect != mk.Bounds() {
		m.seen = image.NewAlpha(mk.Bounds())
	}

	pix := mk.Alpha.Pix
	for i, a := range pix {
		reveal := mask.Opaque - a
		if reveal > m.seen.Pix[i] {
			m.seen.Pix[i] = reveal
		}
		// Fog over a fully seen pixel drops to alpha
		remembered := mask.Opaque - uint8((uint32(m.seen.Pix[i])*uint32(mask.Opaque-m.alpha)+127)/255)
		if remembered < a {
			pix[i] = remembered
		}
	}
}

// Seen reports whether the pixel was ever at least half revealed.
func (m *Memory) Seen(x, y int) bool {
	if m.seen == nil || !image.Pt(x, y).In(m.seen.Rect) {
		return false
	}
	return m.seen.AlphaAt(x, y).A >= 0x80
}

// Reset forgets everything.
func (m *Memory) Reset() {
	m.seen = nil
}
