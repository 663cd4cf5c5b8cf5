// Package vision turns a scene snapshot into a fog mask and keeps that mask
// current while a map is on screen.
package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/render/lighting"
	"chosenoffset.com/fogofwar/internal/render/mask"
	"chosenoffset.com/fogofwar/internal/world/occluder"
)

// ErrInvalidSize is returned for snapshots without a positive image size.
var ErrInvalidSize = errors.New("invalid image size")

// Segment index kinds accepted in Options.Index
const (
	IndexBruteForce = "brute"
	IndexGrid       = "grid"
)

// Snapshot is the immutable input of one frame.
type Snapshot struct {
	Width, Height int
	Occluders     []occluder.Occluder
	Lights        []lighting.LightSource
	Darkvision    []lighting.DarkvisionToken
}

// Frame is the output of one computation.
type Frame struct {
	// Lights that took part, in order. Lights with non-finite positions are
	// left out.
	Lights []lighting.LightSource
	// Polygons holds the visibility polygon of each entry in Lights.
	Polygons [][]shadows.Point
	Mask     *mask.Mask
}

// Options configure an Engine.
type Options struct {
	Epsilon         float64 // Angular offset of side rays, 0 for the default
	RayLengthFactor float64 // Ray length as a multiple of the image diagonal, 0 for the default
	Index           string  // IndexBruteForce or IndexGrid
	CellSize        float64 // Grid cell size in pixels, 0 for the default
	Workers         int     // Concurrent polygon builds, <= 1 for sequential
}

// Engine computes frames. Compute calls are serialized; the mask renderer's
// scratch buffers are kept between frames of the same size.
type Engine struct {
	opts Options

	mu       sync.Mutex
	renderer *mask.Renderer
}

// NewEngine creates an engine.
func NewEngine(opts Options) *Engine {
	if opts.RayLengthFactor < shadows.DefaultRayLengthFactor {
		opts.RayLengthFactor = shadows.DefaultRayLengthFactor
	}
	if opts.Index == "" {
		opts.Index = IndexBruteForce
	}
	return &Engine{opts: opts}
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Compute builds one visibility polygon per light, subtracts each from an
// opaque mask and intersects the result with the darkvision discs.
func (e *Engine) Compute(ctx context.Context, snap Snapshot) (*Frame, error) {
	if snap.Width <= 0 || snap.Height <= 0 {
		return nil, fmt.Errorf("snapshot %dx%d: %w", snap.Width, snap.Height, ErrInvalidSize)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	log := Logger()

	occ, skipped := occluder.Build(float64(snap.Width), float64(snap.Height), snap.Occluders)
	for _, s := range skipped {
		log.Debug("skipping occluder", slog.Int("index", s.Index), slog.String("kind", string(s.Kind)), slog.Any("err", s.Err))
	}

	lights := make([]lighting.LightSource, 0, len(snap.Lights))
	for _, l := range snap.Lights {
		if !shadows.IsFinite(l.Position) {
			log.Debug("skipping light", slog.String("id", l.ID), slog.Any("position", l.Position))
			continue
		}
		lights = append(lights, l)
	}

	polygons, err := e.buildPolygons(ctx, occ, lights)
	if err != nil {
		return nil, err
	}

	if e.renderer == nil {
		e.renderer = mask.NewRenderer(snap.Width, snap.Height)
	} else if w, h := e.renderer.Size(); w != snap.Width || h != snap.Height {
		e.renderer = mask.NewRenderer(snap.Width, snap.Height)
	}
	m := e.renderer.Render(polygons, lights, snap.Darkvision)

	log.Debug("frame computed",
		slog.Int("lights", len(lights)),
		slog.Int("segments", len(occ.Segments)),
		slog.Duration("elapsed", time.Since(start)))

	return &Frame{Lights: lights, Polygons: polygons, Mask: m}, nil
}

func (e *Engine) buildPolygons(ctx context.Context, occ shadows.Occlusion, lights []lighting.LightSource) ([][]shadows.Point, error) {
	opts := shadows.Options{
		Epsilon:   e.opts.Epsilon,
		RayLength: e.opts.RayLengthFactor * occ.Bounds.Diagonal(),
		Caster:    e.caster(occ),
	}

	polygons := make([][]shadows.Point, len(lights))

	if e.opts.Workers <= 1 || len(lights) < 2 {
		for i, l := range lights {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			polygons[i] = shadows.ComputeVisibilityPolygon(l.Position, occ, opts)
		}
		return polygons, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, l := range lights {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			polygons[i] = shadows.ComputeVisibilityPolygon(l.Position, occ, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return polygons, nil
}

func (e *Engine) caster(occ shadows.Occlusion) shadows.Caster {
	if e.opts.Index == IndexGrid {
		cell := e.opts.CellSize
		if cell <= 0 {
			cell = shadows.DefaultCellSize
		}
		return shadows.NewGrid(occ.Segments, cell)
	}
	return shadows.NewBruteForce(occ.Segments)
}
