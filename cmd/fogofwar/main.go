package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"chosenoffset.com/fogofwar/internal/config"
	"chosenoffset.com/fogofwar/internal/game"
	ebitenrender "chosenoffset.com/fogofwar/internal/render/ebiten"
	"chosenoffset.com/fogofwar/internal/scene"
	"chosenoffset.com/fogofwar/internal/ui/menu"
	"chosenoffset.com/fogofwar/internal/vision"
)

func main() {
	dataPath := flag.String("data", "data", "directory holding one folder per scene")
	configPath := flag.String("config", "fogofwar.json", "viewer configuration file")
	verbose := flag.Bool("v", false, "log vision engine events")
	flag.Parse()

	if *verbose {
		vision.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	screenWidth := cfg.Display.WindowWidth
	screenHeight := cfg.Display.WindowHeight

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	log.Printf("Scanning %s for scenes...", *dataPath)
	scenes, err := scene.ScanDirectory(*dataPath)
	if err != nil {
		log.Fatalf("Failed to scan data directory: %v", err)
	}
	log.Printf("Found %d scenes", len(scenes))

	mainMenu := menu.NewMainMenu(scenes, renderer, inputMgr, screenWidth, screenHeight)

	manager := game.NewManager(renderer, inputMgr, cfg, screenWidth, screenHeight)
	manager.SetMainMenu(mainMenu)
	defer manager.Shutdown()

	// Set up the window
	engine.SetWindowSize(screenWidth, screenHeight)
	engine.SetWindowTitle(cfg.Display.Title)
	engine.SetWindowResizable(true)
	engine.SetTPS(cfg.Display.TPS)

	log.Println("Starting viewer...")
	if err := engine.RunGame(manager); err != nil {
		log.Fatal(err)
	}
}
