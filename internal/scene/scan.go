package scene

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"
)

// SceneFile is the file name that marks a scene directory.
const SceneFile = "scene.json"

// Entry represents a discoverable scene in the data directory
type Entry struct {
	Name      string // Display name (directory name)
	Dir       string // Directory path
	ScenePath string // Path of scene.json
	ImagePath string // Map image, empty when the scene has none
}

// ScanDirectory scans the data directory for scenes.
// Returns one Entry for each directory holding a scene file.
func ScanDirectory(dataPath string) ([]Entry, error) {
	entries, err := os.ReadDir(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var scenes []Entry
	for _, entry := range entries {
		dirName := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(dirName, ".") {
			continue
		}

		found, err := OpenEntry(filepath.Join(dataPath, dirName))
		if err != nil {
			// Skip directories without a readable scene
			continue
		}
		scenes = append(scenes, found)
	}

	return scenes, nil
}

// OpenEntry describes a single scene directory.
func OpenEntry(dir string) (Entry, error) {
	scenePath := filepath.Join(dir, SceneFile)
	if _, err := os.Stat(scenePath); err != nil {
		return Entry{}, err
	}

	imagePath, err := findMapImage(dir)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Name:      filepath.Base(dir),
		Dir:       dir,
		ScenePath: scenePath,
		ImagePath: imagePath,
	}, nil
}

// ResolveImage returns the map image path of a loaded scene: its mapImage
// field when set, the scanned image otherwise.
func (e Entry) ResolveImage(state *State) string {
	if state != nil && state.MapImage != "" {
		return filepath.Join(e.Dir, state.MapImage)
	}
	return e.ImagePath
}

// findMapImage returns the first image file in a scene directory
func findMapImage(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg", ".webp":
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", nil
}

// LoadImage decodes a map image (PNG, JPEG or WebP).
func LoadImage(path string) (image.Image, error) {
	buf, err := gg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load map image %s: %w", path, err)
	}
	return buf.ToStdImage(), nil
}
