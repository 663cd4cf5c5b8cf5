package main

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/render/mask"
)

// view maps a scene onto a grid of terminal cells. Each cell shows two
// image rows with a half-block glyph.
type view struct {
	cols, rows    int // Cells used for the map
	width, height int // Scene size in pixels
	background    *image.RGBA
	fog           color.NRGBA
}

func newView(base image.Image, sceneWidth, sceneHeight, cols, rows int, fog color.NRGBA) *view {
	v := &view{cols: max(cols, 1), rows: max(rows, 1), width: sceneWidth, height: sceneHeight, fog: fog}
	v.background = image.NewRGBA(image.Rect(0, 0, v.cols, v.rows*2))
	if base == nil {
		xdraw.Draw(v.background, v.background.Bounds(), image.NewUniform(color.RGBA{90, 90, 90, 255}), image.Point{}, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(v.background, v.background.Bounds(), base, base.Bounds(), xdraw.Src, nil)
	}
	return v
}

// toImage returns the scene position at the centre of a cell.
func (v *view) toImage(col, row int) shadows.Point {
	return shadows.Point{
		X: (float64(col) + 0.5) * float64(v.width) / float64(v.cols),
		Y: (float64(row) + 0.5) * float64(v.height) / float64(v.rows),
	}
}

// toCell returns the cell showing a scene position.
func (v *view) toCell(p shadows.Point) (int, int) {
	col := int(p.X * float64(v.cols) / float64(v.width))
	row := int(p.Y * float64(v.rows) / float64(v.height))
	return min(max(col, 0), v.cols-1), min(max(row, 0), v.rows-1)
}

// compose shrinks the mask to the cell grid and paints it over the map.
// A nil mask leaves the map uncovered.
func (v *view) compose(m *mask.Mask) *image.RGBA {
	out := image.NewRGBA(v.background.Rect)
	copy(out.Pix, v.background.Pix)
	if m == nil {
		return out
	}

	alpha := image.NewAlpha(out.Rect)
	xdraw.ApproxBiLinear.Scale(alpha, alpha.Rect, m.Alpha, m.Alpha.Rect, xdraw.Src, nil)

	for i, a := range alpha.Pix {
		px := out.Pix[i*4 : i*4+4]
		fa := uint32(a) * uint32(v.fog.A) / 255
		px[0] = blend(px[0], v.fog.R, fa)
		px[1] = blend(px[1], v.fog.G, fa)
		px[2] = blend(px[2], v.fog.B, fa)
	}
	return out
}

func blend(dst, src uint8, a uint32) uint8 {
	return uint8((uint32(dst)*(255-a) + uint32(src)*a + 127) / 255)
}
