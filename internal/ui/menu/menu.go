package menu

import (
	"fmt"
	"image/color"

	"chosenoffset.com/fogofwar/internal/render"
	"chosenoffset.com/fogofwar/internal/scene"
)

// ViewState represents what the viewer is currently showing.
type ViewState int

const (
	StateMainMenu ViewState = iota
	StateViewing
)

// Layout of the scene list
const (
	listX       = 50
	listY       = 100
	entryHeight = 30
	entryWidth  = 400
)

// MainMenu lists the scenes found in the data directory.
type MainMenu struct {
	scenes       []scene.Entry
	selected     int
	renderer     render.Renderer
	input        render.InputManager
	screenWidth  int
	screenHeight int
}

// NewMainMenu creates a new main menu.
func NewMainMenu(scenes []scene.Entry, r render.Renderer, input render.InputManager, width, height int) *MainMenu {
	return &MainMenu{
		scenes:       scenes,
		renderer:     r,
		input:        input,
		screenWidth:  width,
		screenHeight: height,
	}
}

// SetSize updates the menu layout after a window resize.
func (m *MainMenu) SetSize(width, height int) {
	m.screenWidth = width
	m.screenHeight = height
}

// Selected returns the index of the highlighted scene.
func (m *MainMenu) Selected() int {
	return m.selected
}

// Update updates the menu state based on user input.
// Returns true and the chosen entry once a scene is opened.
func (m *MainMenu) Update() (bool, scene.Entry) {
	if len(m.scenes) == 0 {
		return false, scene.Entry{}
	}

	if m.input.IsMouseButtonJustPressed(render.MouseButtonLeft) {
		mouseX, mouseY := m.input.GetCursorPosition()
		for i := range m.scenes {
			r := rect{x: listX, y: listY + i*entryHeight, w: entryWidth, h: entryHeight - 5}
			if pointInRect(mouseX, mouseY, r) {
				// Clicking the highlighted entry opens it
				if i == m.selected {
					return true, m.scenes[i]
				}
				m.selected = i
				break
			}
		}
	}

	if m.input.IsKeyJustPressed(render.KeyUp) || m.input.IsKeyJustPressed(render.KeyW) {
		m.selected = (m.selected - 1 + len(m.scenes)) % len(m.scenes)
	}
	if m.input.IsKeyJustPressed(render.KeyDown) || m.input.IsKeyJustPressed(render.KeyS) {
		m.selected = (m.selected + 1) % len(m.scenes)
	}
	if m.input.IsKeyJustPressed(render.KeyEnter) || m.input.IsKeyJustPressed(render.KeySpace) {
		return true, m.scenes[m.selected]
	}

	return false, scene.Entry{}
}

// Draw renders the menu to the screen.
func (m *MainMenu) Draw(screen render.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})

	titleColor := color.RGBA{255, 255, 255, 255}
	m.renderer.DrawText(screen, "FOG OF WAR", listX, 30, titleColor, 3.0)
	m.renderer.DrawText(screen, "Select a Scene", listX, 70, titleColor, 1.5)

	if len(m.scenes) == 0 {
		noScenesColor := color.RGBA{255, 100, 100, 255}
		m.renderer.DrawText(screen, "No scenes found in data directory!", listX, 120, noScenesColor, 1.2)
		m.renderer.DrawText(screen, "Add a folder holding scene.json to the data folder.", listX, 145, noScenesColor, 1.0)
		return
	}

	for i, entry := range m.scenes {
		y := listY + i*entryHeight
		itemColor := color.RGBA{180, 180, 180, 255}
		if i == m.selected {
			itemColor = color.RGBA{255, 255, 100, 255}
			m.renderer.DrawText(screen, ">", listX-20, y, itemColor, 1.2)
		}

		label := entry.Name
		if entry.ImagePath == "" {
			label = fmt.Sprintf("%s (no map image)", entry.Name)
		}
		m.renderer.DrawText(screen, label, listX, y, itemColor, 1.2)
	}

	instructionY := m.screenHeight - 60
	instructionColor := color.RGBA{150, 150, 150, 255}
	m.renderer.DrawText(screen, "Up/Down to choose, Enter or click again to open.", 20, instructionY, instructionColor, 1.0)
	m.renderer.DrawText(screen, "Tab returns here from a map; open maps keep running.", 20, instructionY+20, instructionColor, 1.0)
}

type rect struct {
	x, y, w, h int
}

func pointInRect(px, py int, r rect) bool {
	return px >= r.x && px <= r.x+r.w && py >= r.y && py <= r.y+r.h
}
