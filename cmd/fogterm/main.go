// Command fogterm previews a scene's fog in the terminal.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"chosenoffset.com/fogofwar/internal/config"
	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/render/mask"
	"chosenoffset.com/fogofwar/internal/scene"
	"chosenoffset.com/fogofwar/internal/vision"
)

const probeID = "probe"

// termSink keeps the newest frame and wakes the event loop.
type termSink struct {
	screen tcell.Screen

	mu    sync.Mutex
	frame *vision.Frame
}

func (s *termSink) Present(frame *vision.Frame) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
	s.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (s *termSink) Clear() {
	s.mu.Lock()
	s.frame = nil
	s.mu.Unlock()
	s.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (s *termSink) latest() *vision.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

type app struct {
	screen tcell.Screen
	store  *scene.Store
	driver *vision.Driver
	sink   *termSink
	base   image.Image
	cfg    *config.Config
	name   string

	view  *view
	probe shadows.Point
}

func main() {
	sceneDir := flag.String("scene", "", "scene directory holding scene.json")
	configPath := flag.String("config", "fogofwar.json", "viewer configuration file")
	flag.Parse()

	if *sceneDir == "" {
		fmt.Fprintln(os.Stderr, "usage: fogterm -scene DIR")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	entry, err := scene.OpenEntry(*sceneDir)
	if err != nil {
		log.Fatalf("Failed to open scene: %v", err)
	}
	state, err := scene.Load(entry.ScenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}

	var base image.Image
	if path := entry.ResolveImage(state); path != "" {
		if base, err = scene.LoadImage(path); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("Failed to open terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("Failed to init terminal: %v", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	a := &app{
		screen: screen,
		store:  scene.NewStore(state, cfg.StoreOptions()),
		sink:   &termSink{screen: screen},
		base:   base,
		cfg:    cfg,
		name:   entry.Name,
	}
	a.probe = shadows.Point{X: float64(state.ImageWidth) / 2, Y: float64(state.ImageHeight) / 2}
	a.store.SetLight(probeID, a.probe)

	var opts []vision.DriverOption
	if cfg.Fog.Memory {
		opts = append(opts, vision.WithMemory(vision.NewMemory(uint8(cfg.Fog.MemoryAlpha))))
	}
	interval := time.Second / time.Duration(max(cfg.Display.TPS, 1))
	a.driver = vision.NewDriver(vision.NewEngine(cfg.EngineOptions()), a.store, a.sink, vision.NewTickerScheduler(interval), opts...)

	a.resize()
	a.driver.Start()
	defer a.driver.Stop()

	a.run()
}

func (a *app) run() {
	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for ev := range eventChan {
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if !a.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			a.handleMouse(ev)
		case *tcell.EventResize:
			a.resize()
			a.screen.Sync()
		}
		a.draw()
	}
}

// resize rebuilds the cell grid, keeping the bottom row for status.
func (a *app) resize() {
	cols, rows := a.screen.Size()
	w, h := a.store.Size()
	a.view = newView(a.base, w, h, cols, rows-1, a.cfg.FogColor())
}

func (a *app) handleKey(ev *tcell.EventKey) bool {
	// One cell per key press
	stepX := float64(a.view.width) / float64(a.view.cols)
	stepY := float64(a.view.height) / float64(a.view.rows)

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		a.moveProbe(0, -stepY)
	case tcell.KeyDown:
		a.moveProbe(0, stepY)
	case tcell.KeyLeft:
		a.moveProbe(-stepX, 0)
	case tcell.KeyRight:
		a.moveProbe(stepX, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'k':
			a.moveProbe(0, -stepY)
		case 'j':
			a.moveProbe(0, stepY)
		case 'h':
			a.moveProbe(-stepX, 0)
		case 'l':
			a.moveProbe(stepX, 0)
		case ' ':
			if a.driver.State() == vision.Running {
				a.driver.Stop()
			} else {
				a.driver.Start()
			}
		case 'd':
			a.toggleDoor()
		}
	}
	return true
}

// handleMouse moves the probe light to a clicked cell.
func (a *app) handleMouse(ev *tcell.EventMouse) {
	if ev.Buttons()&tcell.Button1 == 0 {
		return
	}
	col, row := ev.Position()
	if row >= a.view.rows {
		return
	}
	a.probe = a.view.toImage(col, row)
	a.store.SetLight(probeID, a.probe)
}

func (a *app) moveProbe(dx, dy float64) {
	w, h := a.store.Size()
	a.probe.X = min(max(a.probe.X+dx, 0), float64(w))
	a.probe.Y = min(max(a.probe.Y+dy, 0), float64(h))
	a.store.SetLight(probeID, a.probe)
}

// toggleDoor opens or closes the door nearest the probe light.
func (a *app) toggleDoor() {
	reach := 3 * float64(a.view.width) / float64(a.view.cols)
	n, ok := a.store.NearestDoor(a.probe, reach)
	if !ok {
		return
	}
	doors := a.store.Doors()
	if err := a.store.SetDoorOpen(n, !doors[n].Open); err != nil {
		log.Printf("Failed to toggle door %d: %v", n, err)
	}
}

func (a *app) draw() {
	var m *mask.Mask
	frame := a.sink.latest()
	if frame != nil {
		m = frame.Mask
	}
	img := a.view.compose(m)

	for row := 0; row < a.view.rows; row++ {
		for col := 0; col < a.view.cols; col++ {
			top := img.RGBAAt(col, row*2)
			bottom := img.RGBAAt(col, row*2+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			a.screen.SetContent(col, row, '▀', nil, style)
		}
	}

	px, py := a.view.toCell(a.probe)
	a.screen.SetContent(px, py, '@', nil, tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorBlack))

	state := "stopped"
	if a.driver.State() == vision.Running {
		state = "running"
	}
	status := fmt.Sprintf(" %s  fog: %s  probe: %.0f,%.0f  arrows/hjkl/click move  d door  space start/stop  q quit", a.name, state, a.probe.X, a.probe.Y)
	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	cols, _ := a.screen.Size()
	for i := 0; i < cols; i++ {
		r := ' '
		if i < len(status) {
			r = rune(status[i])
		}
		a.screen.SetContent(i, a.view.rows, r, nil, statusStyle)
	}

	a.screen.Show()
}
