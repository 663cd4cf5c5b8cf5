package game

import (
	"fmt"
	"log"

	"chosenoffset.com/fogofwar/internal/config"
	"chosenoffset.com/fogofwar/internal/render"
	"chosenoffset.com/fogofwar/internal/scene"
	"chosenoffset.com/fogofwar/internal/ui/menu"
	"chosenoffset.com/fogofwar/internal/vision"
)

// Manager handles the overall viewer state: the scene menu and any number
// of open map views. Every view keeps its own driver; all drivers tick on
// one frame scheduler pumped from Update.
type Manager struct {
	ScreenWidth  int
	ScreenHeight int
	State        menu.ViewState
	MainMenu     *menu.MainMenu
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Config       *config.Config
	Scheduler    *vision.FrameScheduler

	views  map[string]*Game // Keyed by scene directory
	active *Game
}

// NewManager creates a new view manager.
func NewManager(r render.Renderer, input render.InputManager, cfg *config.Config, width, height int) *Manager {
	return &Manager{
		ScreenWidth:  width,
		ScreenHeight: height,
		State:        menu.StateMainMenu,
		Renderer:     r,
		InputMgr:     input,
		Config:       cfg,
		Scheduler:    vision.NewFrameScheduler(),
		views:        make(map[string]*Game),
	}
}

// SetMainMenu sets the main menu.
func (m *Manager) SetMainMenu(mainMenu *menu.MainMenu) {
	m.MainMenu = mainMenu
}

// Active returns the map view on screen, or nil while in the menu.
func (m *Manager) Active() *Game {
	if m.State != menu.StateViewing {
		return nil
	}
	return m.active
}

// View returns the open view of a scene directory.
func (m *Manager) View(dir string) (*Game, bool) {
	g, ok := m.views[dir]
	return g, ok
}

// Update runs due driver ticks, then handles input for the current state.
func (m *Manager) Update() error {
	m.Scheduler.Pump()

	switch m.State {
	case menu.StateMainMenu:
		if m.MainMenu == nil {
			return nil
		}
		if selected, entry := m.MainMenu.Update(); selected {
			if err := m.Open(entry); err != nil {
				log.Printf("Failed to open scene %s: %v", entry.Name, err)
			}
		}
	case menu.StateViewing:
		if m.active == nil {
			m.State = menu.StateMainMenu
			return nil
		}
		// Tab leaves the view running in the background
		if m.InputMgr.IsKeyJustPressed(render.KeyTab) {
			m.State = menu.StateMainMenu
			return nil
		}
		if m.InputMgr.IsKeyJustPressed(render.KeyEscape) {
			m.Close(m.active)
			return nil
		}
		return m.active.Update()
	}
	return nil
}

// Open shows a scene, loading it on first use. A newly loaded view starts
// running straight away.
func (m *Manager) Open(entry scene.Entry) error {
	if g, ok := m.views[entry.Dir]; ok {
		m.active = g
		m.State = menu.StateViewing
		return nil
	}

	g, err := m.LoadScene(entry)
	if err != nil {
		return err
	}
	m.views[entry.Dir] = g
	m.active = g
	m.State = menu.StateViewing
	g.Start()
	return nil
}

// LoadScene builds a stopped view of a scene entry.
func (m *Manager) LoadScene(entry scene.Entry) (*Game, error) {
	log.Printf("Loading scene: %s", entry.ScenePath)
	state, err := scene.Load(entry.ScenePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}

	var mapImg render.Image
	if path := entry.ResolveImage(state); path != "" {
		img, err := scene.LoadImage(path)
		if err != nil {
			log.Printf("Warning: %v", err)
		} else {
			mapImg = m.Renderer.NewImageFromImage(img)
		}
	}

	store := scene.NewStore(state, m.Config.StoreOptions())
	engine := vision.NewEngine(m.Config.EngineOptions())
	g := NewGame(entry.Name, store, engine, m.Scheduler, ViewConfig{
		Renderer:     m.Renderer,
		Input:        m.InputMgr,
		MapImage:     mapImg,
		FogColor:     m.Config.FogColor(),
		Memory:       m.Config.Fog.Memory,
		MemoryAlpha:  uint8(m.Config.Fog.MemoryAlpha),
		ScreenWidth:  m.ScreenWidth,
		ScreenHeight: m.ScreenHeight,
	})

	log.Printf("Loaded scene %s (%dx%d, %d overlays)", entry.Name, state.ImageWidth, state.ImageHeight, len(state.Overlays))
	return g, nil
}

// Close stops a view and forgets it.
func (m *Manager) Close(g *Game) {
	for dir, v := range m.views {
		if v == g {
			delete(m.views, dir)
		}
	}
	g.Dispose()
	if m.active == g {
		m.active = nil
		m.State = menu.StateMainMenu
	}
}

// Shutdown stops every view.
func (m *Manager) Shutdown() {
	for _, g := range m.views {
		g.Dispose()
	}
	m.views = make(map[string]*Game)
	m.active = nil
	m.State = menu.StateMainMenu
}

// Draw draws the current state.
func (m *Manager) Draw(screen render.Image) {
	switch m.State {
	case menu.StateMainMenu:
		if m.MainMenu != nil {
			m.MainMenu.Draw(screen)
		}
	case menu.StateViewing:
		if m.active != nil {
			m.active.Draw(screen)
		}
	}
}

// Layout handles window resize.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != m.ScreenWidth || outsideHeight != m.ScreenHeight {
		m.ScreenWidth = outsideWidth
		m.ScreenHeight = outsideHeight
		if m.MainMenu != nil {
			m.MainMenu.SetSize(outsideWidth, outsideHeight)
		}
		for _, g := range m.views {
			g.Resize(outsideWidth, outsideHeight)
		}
	}
	return outsideWidth, outsideHeight
}
