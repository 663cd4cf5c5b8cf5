package main

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"chosenoffset.com/fogofwar/internal/render/lighting"
	"chosenoffset.com/fogofwar/internal/scene"
	"chosenoffset.com/fogofwar/internal/vision"
)

// overlayStyle controls what is painted over the map.
type overlayStyle struct {
	Fog      color.Color
	Outlines bool
}

// fitMap returns the map image scaled to the scene size, or a grey canvas
// when there is no map.
func fitMap(base image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if base == nil {
		xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{90, 90, 90, 255}), image.Point{}, xdraw.Src)
		return dst
	}
	if base.Bounds().Dx() == width && base.Bounds().Dy() == height {
		return base
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), base, base.Bounds(), xdraw.Src, nil)
	return dst
}

// writeFrame paints the fog of frame over the map and saves a PNG.
func writeFrame(path string, base image.Image, store *scene.Store, frame *vision.Frame, look overlayStyle) error {
	width, height := frame.Mask.Size()
	dc := gg.NewContextForImage(fitMap(base, width, height))
	defer dc.Close()

	dc.DrawImage(gg.ImageBufFromImage(frame.Mask.NRGBA(look.Fog)), 0, 0)

	if look.Outlines {
		if err := strokeOutlines(dc, store, frame); err != nil {
			return err
		}
	}

	for _, light := range frame.Lights {
		if light.Kind == lighting.KindToken {
			dc.SetRGB(0.47, 0.78, 1)
		} else {
			dc.SetRGB(1, 0.94, 0.78)
		}
		dc.DrawCircle(light.Position.X, light.Position.Y, 6)
		if err := dc.Fill(); err != nil {
			return err
		}
	}

	return dc.SavePNG(path)
}

func strokeOutlines(dc *gg.Context, store *scene.Store, frame *vision.Frame) error {
	dc.SetLineWidth(2)
	dc.SetRGBA(1, 0.86, 0.31, 0.9)
	for _, poly := range frame.Polygons {
		if len(poly) < 3 {
			continue
		}
		dc.MoveTo(poly[0].X, poly[0].Y)
		for _, p := range poly[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		if err := dc.Stroke(); err != nil {
			return err
		}
	}

	dc.SetLineWidth(4)
	for _, door := range store.Doors() {
		if door.Open {
			dc.SetRGB(0.3, 0.85, 0.3)
		} else {
			dc.SetRGB(0.9, 0.25, 0.25)
		}
		dc.MoveTo(door.A.X, door.A.Y)
		dc.LineTo(door.B.X, door.B.Y)
		if err := dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}
