package placeholders

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/gogpu/gg"

	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/scene"
	"chosenoffset.com/fogofwar/internal/world/occluder"
)

// TileSize is one grid square in pixels
const TileSize = 50

// MapFile is the name of the generated map image
const MapFile = "map.png"

// ColorPalette defines colors for the placeholder map (dungeon theme)
var ColorPalette = struct {
	FloorStone1 color.RGBA
	FloorStone2 color.RGBA
	WallStone   color.RGBA
	Door        color.RGBA
	Pillar      color.RGBA
	Grid        color.RGBA
}{
	FloorStone1: color.RGBA{70, 65, 60, 255},    // Dark stone gray
	FloorStone2: color.RGBA{60, 55, 50, 255},    // Darker stone
	WallStone:   color.RGBA{130, 125, 115, 255}, // Lighter stone for walls
	Door:        color.RGBA{140, 100, 60, 255},  // Wood brown
	Pillar:      color.RGBA{110, 100, 90, 255},  // Brick
	Grid:        color.RGBA{0, 0, 0, 60},
}

func pt(x, y float64) shadows.Point { return shadows.Point{X: x, Y: y} }

// Keep returns a two-room demo scene, 20x14 squares: a hall and a
// side chamber joined by a door, with a pillar in the hall and two
// tokens with darkvision.
func Keep() *scene.State {
	w, h := 20.0*TileSize, 14.0*TileSize
	wall := 12.0 * TileSize

	return &scene.State{
		ImageWidth:  int(w),
		ImageHeight: int(h),
		MapImage:    MapFile,
		Overlays: []occluder.Overlay{
			// Outer walls, inset one square
			{Type: string(occluder.KindWall), Points: []shadows.Point{
				pt(TileSize, TileSize), pt(w-TileSize, TileSize), pt(w-TileSize, h-TileSize), pt(TileSize, h-TileSize), pt(TileSize, TileSize),
			}},
			// Dividing wall with a door gap
			{Type: string(occluder.KindWall), Points: []shadows.Point{pt(wall, TileSize), pt(wall, 6*TileSize)}},
			{Type: string(occluder.KindDoor), Points: []shadows.Point{pt(wall, 6*TileSize), pt(wall, 8*TileSize)}},
			{Type: string(occluder.KindWall), Points: []shadows.Point{pt(wall, 8*TileSize), pt(wall, h-TileSize)}},
			// Pillar
			{Type: string(occluder.KindSmartObject), Polygon: []shadows.Point{
				pt(5*TileSize, 5*TileSize), pt(7*TileSize, 5*TileSize), pt(7*TileSize, 7*TileSize), pt(5*TileSize, 7*TileSize),
			}},
			// Label overlays are not occluders
			{Type: "text", Points: []shadows.Point{pt(3*TileSize, 2*TileSize)}},
		},
		GridData: &scene.GridData{Visible: true, Sqft: 5, Scale: TileSize},
		InitiativeTokens: []scene.InitiativeToken{
			{UniqueID: "rogue", X: 3 * TileSize, Y: 10 * TileSize},
			{UniqueID: "dwarf", X: 9 * TileSize, Y: 3 * TileSize},
			{UniqueID: "goblin", X: 16 * TileSize, Y: 7 * TileSize},
		},
		ActiveInitiative: []scene.Character{
			{UniqueID: "rogue", Name: "Rogue", Vision: true, SheetData: &scene.SheetData{VisionFt: 60}},
			{UniqueID: "dwarf", Name: "Dwarf", Vision: true, SheetData: &scene.SheetData{VisionFt: "30 ft"}},
			{UniqueID: "goblin", Name: "Goblin"},
		},
		Lights: []scene.Light{{ID: "brazier", X: 3 * TileSize, Y: 3 * TileSize}},
	}
}

// DrawMap paints a placeholder map for state: checkered floor tiles with
// the scene's walls, doors and smart objects drawn on top.
func DrawMap(state *scene.State) *gg.Context {
	dc := gg.NewContext(state.ImageWidth, state.ImageHeight)

	cols := (state.ImageWidth + TileSize - 1) / TileSize
	rows := (state.ImageHeight + TileSize - 1) / TileSize
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			col := ColorPalette.FloorStone1
			if (x+y)%2 == 1 {
				col = ColorPalette.FloorStone2
			}
			dc.SetColor(col)
			dc.DrawRectangle(float64(x*TileSize), float64(y*TileSize), TileSize, TileSize)
			_ = dc.Fill()
		}
	}

	if state.GridData != nil && state.GridData.Visible {
		dc.SetColor(ColorPalette.Grid)
		dc.SetLineWidth(1)
		for x := 0; x <= cols; x++ {
			dc.MoveTo(float64(x*TileSize), 0)
			dc.LineTo(float64(x*TileSize), float64(state.ImageHeight))
		}
		for y := 0; y <= rows; y++ {
			dc.MoveTo(0, float64(y*TileSize))
			dc.LineTo(float64(state.ImageWidth), float64(y*TileSize))
		}
		_ = dc.Stroke()
	}

	for _, o := range state.Overlays {
		switch occluder.Kind(o.Type) {
		case occluder.KindWall:
			strokePath(dc, o.Points, ColorPalette.WallStone, 8)
		case occluder.KindDoor:
			strokePath(dc, o.Points, ColorPalette.Door, 6)
		case occluder.KindSmartObject:
			if len(o.Polygon) < 3 {
				continue
			}
			dc.SetColor(Darken(ColorPalette.Pillar, 0.9))
			dc.MoveTo(o.Polygon[0].X, o.Polygon[0].Y)
			for _, p := range o.Polygon[1:] {
				dc.LineTo(p.X, p.Y)
			}
			dc.ClosePath()
			_ = dc.Fill()
		}
	}

	return dc
}

func strokePath(dc *gg.Context, points []shadows.Point, col color.RGBA, width float64) {
	if len(points) < 2 {
		return
	}
	dc.SetColor(col)
	dc.SetLineWidth(width)
	dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	_ = dc.Stroke()
}

// Generate writes a scene folder: scene.json and its placeholder map.
func Generate(dir string, state *scene.State) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, scene.SceneFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write scene: %w", err)
	}

	if state.MapImage == "" {
		return nil
	}
	dc := DrawMap(state)
	defer dc.Close()
	if err := dc.SavePNG(filepath.Join(dir, state.MapImage)); err != nil {
		return fmt.Errorf("failed to write map: %w", err)
	}
	return nil
}

// Darken returns a darker version of a color
func Darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}
