package game

import (
	"fmt"
	"image/color"

	"chosenoffset.com/fogofwar/internal/render"
	"chosenoffset.com/fogofwar/internal/render/lighting"
	"chosenoffset.com/fogofwar/internal/vision"
)

var (
	backgroundColor = color.RGBA{20, 20, 30, 255}
	blankMapColor   = color.RGBA{90, 90, 90, 255}
	polygonColor    = color.RGBA{255, 220, 80, 255}
	dmLightColor    = color.RGBA{255, 240, 200, 255}
	tokenLightColor = color.RGBA{120, 200, 255, 255}
	rangeColor      = color.RGBA{255, 255, 255, 96}
	statusColor     = color.RGBA{200, 200, 200, 255}
	tokenColor      = color.RGBA{230, 230, 230, 255}
	carriedColor    = color.RGBA{100, 255, 100, 255}
)

// Draw renders the map, the fog and the markers to the screen.
func (g *Game) Draw(screen render.Image) {
	frame, changed := g.takeFrame()
	if changed {
		g.uploadFog(frame)
	}

	screen.Fill(backgroundColor)
	g.drawMap(screen)

	if g.ShowFog && frame != nil && g.FogImg != nil {
		screen.DrawImage(g.FogImg, g.mapOptions())
	}
	if g.ShowPolygons && frame != nil {
		g.drawPolygons(screen, frame)
	}
	g.drawTokens(screen)
	g.drawLights(screen)
	g.drawUI(screen)
}

// uploadFog copies a frame's mask into the fog texture, or drops the
// texture when the overlay was cleared.
func (g *Game) uploadFog(frame *vision.Frame) {
	if frame == nil || frame.Mask == nil {
		if g.FogImg != nil {
			g.FogImg.Dispose()
			g.FogImg = nil
		}
		return
	}

	w, h := frame.Mask.Size()
	if g.FogImg == nil || needsResize(g.FogImg, w, h) {
		if g.FogImg != nil {
			g.FogImg.Dispose()
		}
		g.FogImg = g.Renderer.NewImage(w, h)
	}
	g.FogImg.WritePixels(frame.Mask.RGBA(g.fogColor).Pix)
}

func needsResize(img render.Image, w, h int) bool {
	bounds := img.Bounds()
	return bounds.Dx() != w || bounds.Dy() != h
}

// mapOptions places an image-sized texture under the camera.
func (g *Game) mapOptions() *render.DrawImageOptions {
	opts := &render.DrawImageOptions{}
	opts.GeoM = render.NewGeoM()
	opts.GeoM.Translate(-g.Camera.X, -g.Camera.Y)
	opts.GeoM.Scale(g.zoom(), g.zoom())
	return opts
}

func (g *Game) drawMap(screen render.Image) {
	if g.MapImg == nil {
		w, h := g.Store.Size()
		if w <= 0 || h <= 0 {
			return
		}
		g.MapImg = g.Renderer.NewImage(w, h)
		g.MapImg.Fill(blankMapColor)
	}
	screen.DrawImage(g.MapImg, g.mapOptions())
}

func (g *Game) drawPolygons(screen render.Image, frame *vision.Frame) {
	for _, poly := range frame.Polygons {
		for i := range poly {
			x0, y0 := g.Camera.ToScreen(poly[i])
			x1, y1 := g.Camera.ToScreen(poly[(i+1)%len(poly)])
			g.Renderer.StrokeLine(screen, x0, y0, x1, y1, 1, polygonColor)
		}
	}
}

func (g *Game) drawLights(screen render.Image) {
	for _, light := range g.Store.Lights() {
		x, y := g.Camera.ToScreen(light.Position)
		clr := dmLightColor
		if light.Kind == lighting.KindToken {
			clr = tokenLightColor
		}
		g.Renderer.FillCircle(screen, x, y, 6, clr)
		if light.Bounded() && g.ShowPolygons {
			g.Renderer.StrokeCircle(screen, x, y, float32(light.MaxRadius*g.zoom()), 1, rangeColor)
		}
	}
}

func (g *Game) drawTokens(screen render.Image) {
	for _, t := range g.Store.Tokens() {
		x, y := g.Camera.ToScreen(t.Position)
		clr := tokenColor
		if t.ID == g.Carrying {
			clr = carriedColor
		}
		g.Renderer.StrokeCircle(screen, x, y, 10, 2, clr)
	}
}

func (g *Game) drawUI(screen render.Image) {
	state := "stopped"
	if g.Running() {
		state = "running"
	}
	status := fmt.Sprintf("%s  fog: %s  memory: %v", g.Name, state, g.memoryOn)
	g.Renderer.DrawText(screen, status, 10, 10, statusColor, 1.0)

	// Draw on-screen messages
	y := 50.0
	for _, msg := range g.Messages {
		alpha := uint8(255 * (msg.TimeLeft / msg.MaxTime))
		g.Renderer.DrawText(screen, msg.Text, 20, int(y), color.RGBA{255, 255, 255, alpha}, 1.0)
		y += 20
	}

	if !g.Running() {
		banner := "Fog stopped - press Space"
		w, _ := g.Renderer.MeasureText(banner, 1.5)
		g.Renderer.DrawText(screen, banner, (g.ScreenWidth-w)/2, g.ScreenHeight/2, statusColor, 1.5)
	}

	help := "Click: light  Right-click: door  Middle-click: move token  Space: start/stop  F: fog  P: outlines  M: memory  L: remove light  Tab: menu"
	g.Renderer.DrawText(screen, help, 10, g.ScreenHeight-24, statusColor, 1.0)
}
