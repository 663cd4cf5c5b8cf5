package game

import (
	"image"
	"image/color"

	"chosenoffset.com/fogofwar/internal/render"
)

func init() {
	render.NewGeoM = func() render.GeoM { return &fakeGeoM{sx: 1, sy: 1} }
}

type fakeRenderer struct {
	lines   int
	circles int
	texts   []string
}

func (r *fakeRenderer) NewImage(width, height int) render.Image {
	return &fakeImage{w: width, h: height}
}

func (r *fakeRenderer) NewImageFromImage(src image.Image) render.Image {
	b := src.Bounds()
	return &fakeImage{w: b.Dx(), h: b.Dy()}
}

func (r *fakeRenderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color) {
	r.circles++
}

func (r *fakeRenderer) StrokeCircle(dst render.Image, x, y, radius float32, strokeWidth float32, clr color.Color) {
	r.circles++
}

func (r *fakeRenderer) StrokeLine(dst render.Image, x0, y0, x1, y1 float32, strokeWidth float32, clr color.Color) {
	r.lines++
}

func (r *fakeRenderer) DrawText(dst render.Image, text string, x, y int, clr color.Color, scale float64) {
	r.texts = append(r.texts, text)
}

func (r *fakeRenderer) MeasureText(text string, scale float64) (int, int) {
	return len(text) * 6, 16
}

type fakeImage struct {
	w, h     int
	pixels   []byte
	draws    []render.Image
	disposed bool
}

func (i *fakeImage) Bounds() image.Rectangle { return image.Rect(0, 0, i.w, i.h) }
func (i *fakeImage) Size() (int, int)        { return i.w, i.h }
func (i *fakeImage) Fill(clr color.Color)    {}
func (i *fakeImage) Clear()                  { i.draws = nil }
func (i *fakeImage) WritePixels(pix []byte)  { i.pixels = append([]byte(nil), pix...) }
func (i *fakeImage) Dispose()                { i.disposed = true }
func (i *fakeImage) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	i.draws = append(i.draws, src)
}

type fakeGeoM struct {
	tx, ty, sx, sy float64
}

func (g *fakeGeoM) Translate(tx, ty float64) { g.tx += tx; g.ty += ty }
func (g *fakeGeoM) Scale(sx, sy float64)     { g.sx *= sx; g.sy *= sy }
func (g *fakeGeoM) Reset()                   { *g = fakeGeoM{sx: 1, sy: 1} }

// fakeInput reports each queued press for a single Update.
type fakeInput struct {
	keys    map[render.Key]bool
	buttons map[render.MouseButton]bool
	x, y    int
}

func newFakeInput() *fakeInput {
	return &fakeInput{keys: map[render.Key]bool{}, buttons: map[render.MouseButton]bool{}}
}

func (in *fakeInput) press(k render.Key) { in.keys[k] = true }

func (in *fakeInput) click(b render.MouseButton, x, y int) {
	in.buttons[b] = true
	in.x, in.y = x, y
}

func (in *fakeInput) release() {
	in.keys = map[render.Key]bool{}
	in.buttons = map[render.MouseButton]bool{}
}

func (in *fakeInput) IsKeyPressed(k render.Key) bool                     { return in.keys[k] }
func (in *fakeInput) IsKeyJustPressed(k render.Key) bool                 { return in.keys[k] }
func (in *fakeInput) GetCursorPosition() (int, int)                      { return in.x, in.y }
func (in *fakeInput) IsMouseButtonPressed(b render.MouseButton) bool     { return in.buttons[b] }
func (in *fakeInput) IsMouseButtonJustPressed(b render.MouseButton) bool { return in.buttons[b] }
