package mask

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"

	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/render/lighting"
)

// kappa places cubic control points so four arcs approximate a circle.
const kappa = 0.5522847498

// Renderer rasterizes polygons and discs into masks of one size. It keeps
// scratch buffers between calls and is not safe for concurrent use.
type Renderer struct {
	width, height int
	rast          *vector.Rasterizer
	coverage      *image.Alpha
	clip          *image.Alpha
}

// NewRenderer creates a renderer for width x height masks.
func NewRenderer(width, height int) *Renderer {
	bounds := image.Rect(0, 0, width, height)
	return &Renderer{
		width:    width,
		height:   height,
		rast:     vector.NewRasterizer(width, height),
		coverage: image.NewAlpha(bounds),
		clip:     image.NewAlpha(bounds),
	}
}

// Size returns the mask dimensions the renderer draws.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// NewMask returns a fully hidden mask of the renderer's size.
func (r *Renderer) NewMask() *Mask {
	return New(r.width, r.height)
}

// Subtract clears the light's visible polygon out of the mask. A bounded
// light only clears the part of the polygon within its radius.
func (r *Renderer) Subtract(m *Mask, polygon []shadows.Point, light lighting.LightSource) {
	if len(polygon) < 3 {
		return
	}

	r.rast.Reset(r.width, r.height)
	r.rast.DrawOp = draw.Src
	addPolygon(r.rast, polygon)
	r.rast.Draw(r.coverage, r.coverage.Rect, image.Opaque, image.Point{})

	if light.Bounded() {
		r.rast.Reset(r.width, r.height)
		r.rast.DrawOp = draw.Src
		addDisc(r.rast, light.Position, light.MaxRadius)
		r.rast.Draw(r.clip, r.clip.Rect, image.Opaque, image.Point{})

		for i, c := range r.clip.Pix {
			r.coverage.Pix[i] = min(r.coverage.Pix[i], c)
		}
	}

	// Destination-out: fog *= 1 - coverage
	pix := m.Alpha.Pix
	for i, c := range r.coverage.Pix {
		if c == 0 {
			continue
		}
		pix[i] = mul8(pix[i], Opaque-c)
	}
}

// Intersect keeps the reveal only inside the union of the darkvision discs.
// With no discs the mask is left unmodified.
func (r *Renderer) Intersect(m *Mask, discs []lighting.DarkvisionToken) {
	if len(discs) == 0 {
		return
	}

	for i := range r.clip.Pix {
		r.clip.Pix[i] = 0
	}
	for _, d := range discs {
		r.rast.Reset(r.width, r.height)
		r.rast.DrawOp = draw.Over
		addDisc(r.rast, d.Position, d.Radius)
		r.rast.Draw(r.clip, r.clip.Rect, image.Opaque, image.Point{})
	}

	// Source-in: reveal *= disc coverage
	pix := m.Alpha.Pix
	for i, c := range r.clip.Pix {
		if c == Opaque {
			continue
		}
		pix[i] = Opaque - mul8(Opaque-pix[i], c)
	}
}

// Render builds the full frame mask: one subtraction per light, then the
// darkvision intersection.
func (r *Renderer) Render(polygons [][]shadows.Point, lights []lighting.LightSource, discs []lighting.DarkvisionToken) *Mask {
	m := r.NewMask()
	for i, poly := range polygons {
		if i >= len(lights) {
			break
		}
		r.Subtract(m, poly, lights[i])
	}
	r.Intersect(m, discs)
	return m
}

// mul8 returns a*b/255 rounded to nearest.
func mul8(a, b uint8) uint8 {
	v := uint32(a)*uint32(b) + 0x80
	return uint8((v + v>>8) >> 8)
}

func addPolygon(z *vector.Rasterizer, polygon []shadows.Point) {
	z.MoveTo(float32(polygon[0].X), float32(polygon[0].Y))
	for _, p := range polygon[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
}

func addDisc(z *vector.Rasterizer, center shadows.Point, radius float64) {
	cx, cy := float32(center.X), float32(center.Y)
	rr := float32(radius)
	k := float32(kappa) * rr

	z.MoveTo(cx+rr, cy)
	z.CubeTo(cx+rr, cy+k, cx+k, cy+rr, cx, cy+rr)
	z.CubeTo(cx-k, cy+rr, cx-rr, cy+k, cx-rr, cy)
	z.CubeTo(cx-rr, cy-k, cx-k, cy-rr, cx, cy-rr)
	z.CubeTo(cx+k, cy-rr, cx+rr, cy-k, cx+rr, cy)
	z.ClosePath()
}
