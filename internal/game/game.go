package game

import (
	"image/color"
	"log"
	"sync"

	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/render"
	"chosenoffset.com/fogofwar/internal/scene"
	"chosenoffset.com/fogofwar/internal/vision"
)

// ProbeLightID names the DM light placed with the mouse.
const ProbeLightID = "probe"

const (
	panSpeed          = 12.0 // Screen pixels per tick
	doorPickDistance  = 24.0 // Screen pixels
	tokenPickDistance = 16.0 // Screen pixels
	messageDuration   = 3.0
)

// ViewConfig holds what a map view needs besides its scene.
type ViewConfig struct {
	Renderer     render.Renderer
	Input        render.InputManager
	MapImage     render.Image // May be nil
	FogColor     color.Color
	Memory       bool
	MemoryAlpha  uint8
	ScreenWidth  int
	ScreenHeight int
}

// Game is the view of one map. It implements vision.Sink: the driver hands
// it frames from its own goroutine and Draw picks up the latest one.
type Game struct {
	Name         string
	ScreenWidth  int
	ScreenHeight int
	Camera       Camera
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Store        *scene.Store
	MapImg       render.Image
	FogImg       render.Image

	engine      *vision.Engine
	sched       vision.Scheduler
	driver      *vision.Driver
	fogColor    color.Color
	memoryAlpha uint8
	memoryOn    bool

	mu      sync.Mutex
	pending *vision.Frame
	dirty   bool
	frame   *vision.Frame // Last frame taken by Draw

	// UI state
	ShowFog      bool
	ShowPolygons bool
	Messages     []Message
	Carrying     string // Token picked up with the middle button
}

// NewGame creates a stopped view of store. Frames are computed with engine
// on ticks from sched.
func NewGame(name string, store *scene.Store, engine *vision.Engine, sched vision.Scheduler, cfg ViewConfig) *Game {
	g := &Game{
		Name:         name,
		ScreenWidth:  cfg.ScreenWidth,
		ScreenHeight: cfg.ScreenHeight,
		Renderer:     cfg.Renderer,
		InputMgr:     cfg.Input,
		Store:        store,
		MapImg:       cfg.MapImage,
		engine:       engine,
		sched:        sched,
		fogColor:     cfg.FogColor,
		memoryAlpha:  cfg.MemoryAlpha,
		memoryOn:     cfg.Memory,
		ShowFog:      true,
	}
	if g.fogColor == nil {
		g.fogColor = color.Black
	}
	g.driver = g.newDriver()
	g.FitToScreen()
	return g
}

func (g *Game) newDriver() *vision.Driver {
	var opts []vision.DriverOption
	if g.memoryOn {
		opts = append(opts, vision.WithMemory(vision.NewMemory(g.memoryAlpha)))
	}
	return vision.NewDriver(g.engine, g.Store, g, g.sched, opts...)
}

// Driver returns the animation driver of this view.
func (g *Game) Driver() *vision.Driver {
	return g.driver
}

// Present implements vision.Sink.
func (g *Game) Present(frame *vision.Frame) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = frame
	g.dirty = true
}

// Clear implements vision.Sink.
func (g *Game) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
	g.dirty = true
}

// takeFrame returns the newest frame and whether it changed since the last call.
func (g *Game) takeFrame() (*vision.Frame, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.dirty {
		return g.frame, false
	}
	g.frame = g.pending
	g.pending = nil
	g.dirty = false
	return g.frame, true
}

// Start begins animating the fog.
func (g *Game) Start() {
	g.driver.Start()
}

// Stop halts the fog and removes the overlay.
func (g *Game) Stop() {
	g.driver.Stop()
}

// Running reports whether the fog is animating.
func (g *Game) Running() bool {
	return g.driver.State() == vision.Running
}

// SetMemory switches explored-area memory on or off. The driver is
// replaced, so any remembered area is forgotten.
func (g *Game) SetMemory(on bool) {
	if on == g.memoryOn {
		return
	}
	running := g.Running()
	g.driver.Stop()
	g.memoryOn = on
	g.driver = g.newDriver()
	if running {
		g.driver.Start()
	}
}

// MemoryEnabled reports whether explored areas are remembered.
func (g *Game) MemoryEnabled() bool {
	return g.memoryOn
}

// FitToScreen zooms so the whole map is visible.
func (g *Game) FitToScreen() {
	w, h := g.Store.Size()
	g.Camera = Camera{Zoom: 1}
	if w <= 0 || h <= 0 || g.ScreenWidth <= 0 || g.ScreenHeight <= 0 {
		return
	}
	zx := float64(g.ScreenWidth) / float64(w)
	zy := float64(g.ScreenHeight) / float64(h)
	g.Camera.Zoom = min(zx, zy)
}

// Update handles view input.
func (g *Game) Update() error {
	// Delta time for timers (assuming 60 FPS)
	dt := 1.0 / 60.0
	g.updateMessages(dt)

	if g.InputMgr.IsKeyJustPressed(render.KeySpace) {
		if g.Running() {
			g.Stop()
			g.ShowMessage("Fog stopped")
		} else {
			g.Start()
			g.ShowMessage("Fog running")
		}
	}

	if g.InputMgr.IsKeyJustPressed(render.KeyF) {
		g.ShowFog = !g.ShowFog
	}
	if g.InputMgr.IsKeyJustPressed(render.KeyP) {
		g.ShowPolygons = !g.ShowPolygons
	}
	if g.InputMgr.IsKeyJustPressed(render.KeyM) {
		g.SetMemory(!g.memoryOn)
		if g.memoryOn {
			g.ShowMessage("Explored memory on")
		} else {
			g.ShowMessage("Explored memory off")
		}
	}
	if g.InputMgr.IsKeyJustPressed(render.KeyL) {
		g.Store.RemoveLight(ProbeLightID)
		g.ShowMessage("Probe light removed")
	}

	mx, my := g.InputMgr.GetCursorPosition()
	if g.InputMgr.IsMouseButtonJustPressed(render.MouseButtonLeft) {
		g.Store.SetLight(ProbeLightID, g.Camera.ToImage(mx, my))
	}
	if g.InputMgr.IsMouseButtonJustPressed(render.MouseButtonRight) {
		g.toggleDoorAt(g.Camera.ToImage(mx, my))
	}
	if g.InputMgr.IsMouseButtonJustPressed(render.MouseButtonMiddle) {
		g.carryToken(g.Camera.ToImage(mx, my))
	}

	g.updateCamera()
	return nil
}

func (g *Game) toggleDoorAt(p shadows.Point) {
	n, ok := g.Store.NearestDoor(p, doorPickDistance/g.zoom())
	if !ok {
		return
	}
	doors := g.Store.Doors()
	open := !doors[n].Open
	if err := g.Store.SetDoorOpen(n, open); err != nil {
		log.Printf("Failed to toggle door %d: %v", n, err)
		return
	}
	if open {
		g.ShowMessage("Door opened")
	} else {
		g.ShowMessage("Door closed")
	}
}

// carryToken picks up the token nearest p, or drops the carried one at p.
func (g *Game) carryToken(p shadows.Point) {
	if g.Carrying != "" {
		if g.Store.MoveToken(g.Carrying, p) {
			g.ShowMessage("Token " + g.Carrying + " moved")
		}
		g.Carrying = ""
		return
	}

	best, bestDist := "", tokenPickDistance/g.zoom()
	for _, t := range g.Store.Tokens() {
		if d := shadows.Distance(p, t.Position); d <= bestDist {
			best, bestDist = t.ID, d
		}
	}
	if best != "" {
		g.Carrying = best
		g.ShowMessage("Carrying token " + best)
	}
}

func (g *Game) zoom() float64 {
	if g.Camera.Zoom <= 0 {
		return 1
	}
	return g.Camera.Zoom
}

// updateCamera pans with the arrow keys and keeps the map on screen.
func (g *Game) updateCamera() {
	step := panSpeed / g.zoom()
	if g.InputMgr.IsKeyPressed(render.KeyLeft) || g.InputMgr.IsKeyPressed(render.KeyA) {
		g.Camera.X -= step
	}
	if g.InputMgr.IsKeyPressed(render.KeyRight) || g.InputMgr.IsKeyPressed(render.KeyD) {
		g.Camera.X += step
	}
	if g.InputMgr.IsKeyPressed(render.KeyUp) || g.InputMgr.IsKeyPressed(render.KeyW) {
		g.Camera.Y -= step
	}
	if g.InputMgr.IsKeyPressed(render.KeyDown) || g.InputMgr.IsKeyPressed(render.KeyS) {
		g.Camera.Y += step
	}

	// Clamp camera to map bounds
	w, h := g.Store.Size()
	maxX := float64(w) - float64(g.ScreenWidth)/g.zoom()
	maxY := float64(h) - float64(g.ScreenHeight)/g.zoom()
	g.Camera.X = clamp(g.Camera.X, 0, max(maxX, 0))
	g.Camera.Y = clamp(g.Camera.Y, 0, max(maxY, 0))
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

// Layout returns the view's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ScreenWidth, g.ScreenHeight
}

// Resize updates the screen size, refitting the map.
func (g *Game) Resize(width, height int) {
	if width == g.ScreenWidth && height == g.ScreenHeight {
		return
	}
	g.ScreenWidth = width
	g.ScreenHeight = height
	g.FitToScreen()
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: messageDuration,
		MaxTime:  messageDuration,
	})
	log.Printf("Message: %s", text)
}

// Dispose stops the driver and releases images.
func (g *Game) Dispose() {
	g.driver.Stop()
	if g.FogImg != nil {
		g.FogImg.Dispose()
		g.FogImg = nil
	}
	if g.MapImg != nil {
		g.MapImg.Dispose()
		g.MapImg = nil
	}
}
