// Package scene holds the map state shared with the vision engine: image
// size, drawn overlays, grid data, initiative tokens and DM lights.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/render/lighting"
	"chosenoffset.com/fogofwar/internal/world/occluder"
)

// ErrInvalidDimensions is returned for scenes without a positive image size.
var ErrInvalidDimensions = errors.New("invalid image dimensions")

// GridData describes the map grid
type GridData struct {
	Visible bool    `json:"visible"`
	Sqft    float64 `json:"sqft"`  // Feet per square
	Scale   float64 `json:"scale"` // Pixels per square
}

// InitiativeToken is a token placed on the map
type InitiativeToken struct {
	UniqueID string  `json:"uniqueId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// SheetData holds the character sheet fields the engine reads
type SheetData struct {
	VisionFt any `json:"vision_ft"` // Number or string
}

// Character is an entry of the active initiative list
type Character struct {
	UniqueID  string     `json:"uniqueId"`
	Name      string     `json:"name,omitempty"`
	Vision    bool       `json:"vision"`
	SheetData *SheetData `json:"sheetData,omitempty"`
}

// Light is a DM light
type Light struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// State is the JSON scene file
type State struct {
	ImageWidth       int                `json:"imageWidth"`
	ImageHeight      int                `json:"imageHeight"`
	MapImage         string             `json:"mapImage,omitempty"` // Relative to the scene file
	Overlays         []occluder.Overlay `json:"overlays"`
	GridData         *GridData          `json:"gridData,omitempty"`
	InitiativeTokens []InitiativeToken  `json:"initiativeTokens"`
	ActiveInitiative []Character        `json:"activeInitiative"`
	Lights           []Light            `json:"lights,omitempty"`
}

// Load reads and validates a scene file
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file %s: %w", path, err)
	}

	state, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene file %s: %w", path, err)
	}
	return state, nil
}

// Parse decodes and validates scene JSON
func Parse(data []byte) (*State, error) {
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return &state, nil
}

// Validate checks the parts of the scene the engine cannot work without.
// Malformed overlays and tokens are not errors; they are skipped per frame.
func (s *State) Validate() error {
	if s.ImageWidth <= 0 || s.ImageHeight <= 0 {
		return fmt.Errorf("%dx%d: %w", s.ImageWidth, s.ImageHeight, ErrInvalidDimensions)
	}
	return nil
}

// Tokens joins each placed token with its character. Tokens without a
// character in the initiative list have no vision.
func (s *State) Tokens() []lighting.Token {
	characters := make(map[string]*Character, len(s.ActiveInitiative))
	for i := range s.ActiveInitiative {
		c := &s.ActiveInitiative[i]
		if _, dup := characters[c.UniqueID]; !dup {
			characters[c.UniqueID] = c
		}
	}

	tokens := make([]lighting.Token, 0, len(s.InitiativeTokens))
	for _, t := range s.InitiativeTokens {
		token := lighting.Token{ID: t.UniqueID, Position: shadows.Point{X: t.X, Y: t.Y}}
		if c, ok := characters[t.UniqueID]; ok {
			token.Vision = c.Vision
			if c.SheetData != nil {
				token.VisionFeet = lighting.ParseVisionFeet(c.SheetData.VisionFt)
			}
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// Grid returns the grid settings. A scene without grid data has a hidden grid.
func (s *State) Grid() lighting.Grid {
	if s.GridData == nil {
		return lighting.Grid{}
	}
	return lighting.Grid{Visible: s.GridData.Visible, Feet: s.GridData.Sqft, Pixels: s.GridData.Scale}
}
