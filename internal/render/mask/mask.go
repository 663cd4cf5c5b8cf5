// Package mask rasterizes visibility polygons into a fog overlay.
//
// A Mask holds one alpha value per image pixel: 255 is fully hidden, 0 fully
// revealed. Lights subtract their polygons from an opaque mask, so the
// revealed area is the union of all lights. Darkvision then intersects the
// reveal with a set of discs.
package mask

import (
	"image"
	"image/color"
	"image/draw"
)

// Opaque is the alpha of a fully hidden pixel.
const Opaque = 0xff

// Mask is a fog coverage map sized to the map image.
type Mask struct {
	Alpha *image.Alpha
}

// New returns a fully hidden mask.
func New(width, height int) *Mask {
	m := &Mask{Alpha: image.NewAlpha(image.Rect(0, 0, width, height))}
	m.Fill(Opaque)
	return m
}

// Fill sets every pixel to alpha a.
func (m *Mask) Fill(a uint8) {
	for i := range m.Alpha.Pix {
		m.Alpha.Pix[i] = a
	}
}

// Bounds returns the mask rectangle.
func (m *Mask) Bounds() image.Rectangle {
	return m.Alpha.Rect
}

// Size returns the mask width and height in pixels.
func (m *Mask) Size() (int, int) {
	return m.Alpha.Rect.Dx(), m.Alpha.Rect.Dy()
}

// At returns the fog alpha of a pixel. Pixels outside the mask are hidden.
func (m *Mask) At(x, y int) uint8 {
	if !image.Pt(x, y).In(m.Alpha.Rect) {
		return Opaque
	}
	return m.Alpha.Pix[m.Alpha.PixOffset(x, y)]
}

// Hidden reports whether the pixel's centre lies in fog.
func (m *Mask) Hidden(x, y int) bool {
	return m.At(x, y) >= 0x80
}

// Revealed reports whether the pixel's centre is visible.
func (m *Mask) Revealed(x, y int) bool {
	return !m.Hidden(x, y)
}

// IsOpaque reports whether every pixel is fully hidden.
func (m *Mask) IsOpaque() bool {
	for _, a := range m.Alpha.Pix {
		if a != Opaque {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	c := &Mask{Alpha: image.NewAlpha(m.Alpha.Rect)}
	copy(c.Alpha.Pix, m.Alpha.Pix)
	return c
}

// Overlay paints the fog colour through the mask onto dst, replacing what
// was there: transparent where revealed, fog where hidden.
func (m *Mask) Overlay(dst draw.Image, fog color.Color) {
	draw.DrawMask(dst, m.Alpha.Rect, image.NewUniform(fog), image.Point{}, m.Alpha, m.Alpha.Rect.Min, draw.Src)
}

// NRGBA returns the mask as a fog overlay image for standard alpha compositing.
func (m *Mask) NRGBA(fog color.Color) *image.NRGBA {
	img := image.NewNRGBA(m.Alpha.Rect)
	m.Overlay(img, fog)
	return img
}

// RGBA returns the mask as a premultiplied fog overlay, the layout GPU
// textures expect.
func (m *Mask) RGBA(fog color.Color) *image.RGBA {
	img := image.NewRGBA(m.Alpha.Rect)
	m.Overlay(img, fog)
	return img
}
