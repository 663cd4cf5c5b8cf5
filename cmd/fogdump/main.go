// Command fogdump renders the fog of a scene to PNG files without a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"chosenoffset.com/fogofwar/internal/config"
	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/scene"
	"chosenoffset.com/fogofwar/internal/vision"
)

const probeID = "probe"

type pointList []shadows.Point

func (p *pointList) String() string {
	parts := make([]string, len(*p))
	for i, pt := range *p {
		parts[i] = fmt.Sprintf("%g,%g", pt.X, pt.Y)
	}
	return strings.Join(parts, " ")
}

func (p *pointList) Set(s string) error {
	pt, err := parsePoint(s)
	if err != nil {
		return err
	}
	*p = append(*p, pt)
	return nil
}

// parsePoint reads "x,y" in image pixels.
func parsePoint(s string) (shadows.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return shadows.Point{}, fmt.Errorf("point %q is not x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return shadows.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return shadows.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return shadows.Point{X: x, Y: y}, nil
}

func main() {
	var lights pointList
	sceneDir := flag.String("scene", "", "scene directory holding scene.json")
	configPath := flag.String("config", "fogofwar.json", "viewer configuration file")
	out := flag.String("out", "fog.png", "output PNG; numbered when more than one frame is written")
	outlines := flag.Bool("polygons", false, "draw visibility polygon outlines")
	to := flag.String("to", "", "move the first -light towards x,y over the frames")
	frames := flag.Int("frames", 1, "number of frames to capture from the running driver")
	verbose := flag.Bool("v", false, "log vision engine events")
	flag.Var(&lights, "light", "add a DM light at x,y (repeatable)")
	flag.Parse()

	if *sceneDir == "" {
		fmt.Fprintln(os.Stderr, "usage: fogdump -scene DIR [-light x,y]... [-to x,y -frames N] [-out fog.png]")
		os.Exit(2)
	}
	if *verbose {
		vision.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
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

	store := scene.NewStore(state, cfg.StoreOptions())
	for i, p := range lights {
		id := fmt.Sprintf("light-%d", i)
		if i == 0 {
			id = probeID
		}
		store.SetLight(id, p)
	}

	engine := vision.NewEngine(cfg.EngineOptions())
	look := overlayStyle{Fog: cfg.FogColor(), Outlines: *outlines}

	if *frames <= 1 {
		frame, err := engine.Compute(context.Background(), store.Snapshot())
		if err != nil {
			log.Fatalf("Failed to compute fog: %v", err)
		}
		if err := writeFrame(*out, base, store, frame, look); err != nil {
			log.Fatalf("Failed to write %s: %v", *out, err)
		}
		log.Printf("Wrote %s (%d lights)", *out, len(frame.Lights))
		return
	}

	var path []shadows.Point
	if *to != "" {
		if len(lights) == 0 {
			log.Fatal("-to needs a -light to move")
		}
		end, err := parsePoint(*to)
		if err != nil {
			log.Fatal(err)
		}
		path = walk(lights[0], end, *frames)
	}

	var memory *vision.Memory
	if cfg.Fog.Memory {
		memory = vision.NewMemory(uint8(cfg.Fog.MemoryAlpha))
	}
	if err := capture(engine, store, path, *frames, memory, func(n int, frame *vision.Frame) error {
		name := numbered(*out, n)
		if err := writeFrame(name, base, store, frame, look); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("Wrote %s", name)
		return nil
	}); err != nil {
		log.Fatal(err)
	}
}

// walk returns n evenly spaced points from a to b inclusive.
func walk(a, b shadows.Point, n int) []shadows.Point {
	points := make([]shadows.Point, n)
	for i := range points {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		points[i] = shadows.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
	}
	return points
}

// numbered turns fog.png into fog-003.png.
func numbered(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%03d%s", strings.TrimSuffix(path, ext), n, ext)
}

// frameSink hands presented frames to the capture loop, keeping only the newest.
type frameSink struct {
	frames chan *vision.Frame
}

func (s *frameSink) Present(frame *vision.Frame) {
	select {
	case <-s.frames:
	default:
	}
	s.frames <- frame
}

func (s *frameSink) Clear() {}

// capture runs a driver on a ticker and hands n frames to save. When path
// is set, the probe light is moved to path[i] before frame i is taken.
func capture(engine *vision.Engine, store *scene.Store, path []shadows.Point, n int, memory *vision.Memory, save func(int, *vision.Frame) error) error {
	sink := &frameSink{frames: make(chan *vision.Frame, 1)}
	var opts []vision.DriverOption
	if memory != nil {
		opts = append(opts, vision.WithMemory(memory))
	}
	driver := vision.NewDriver(engine, store, sink, vision.NewTickerScheduler(vision.DefaultTickInterval), opts...)
	driver.Start()
	defer driver.Stop()

	for i := 0; i < n; i++ {
		var want *shadows.Point
		if i < len(path) {
			store.SetLight(probeID, path[i])
			want = &path[i]
		}

		frame, err := nextFrame(sink.frames, want, 5*time.Second)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := save(i, frame); err != nil {
			return err
		}
	}
	return nil
}

// nextFrame waits for a frame, skipping frames computed before the probe
// light reached want.
func nextFrame(frames <-chan *vision.Frame, want *shadows.Point, timeout time.Duration) (*vision.Frame, error) {
	deadline := time.After(timeout)
	for {
		select {
		case frame := <-frames:
			if want == nil || probeAt(frame, *want) {
				return frame, nil
			}
		case <-deadline:
			return nil, fmt.Errorf("no frame within %v", timeout)
		}
	}
}

func probeAt(frame *vision.Frame, p shadows.Point) bool {
	for _, l := range frame.Lights {
		if l.ID == probeID {
			return l.Position == p
		}
	}
	return false
}
