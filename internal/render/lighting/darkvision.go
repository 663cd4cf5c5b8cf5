package lighting

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"chosenoffset.com/fogofwar/internal/core/shadows"
)

// Map grid defaults used when the grid data leaves them unset
const (
	DefaultGridFeet   = 5.0  // Feet per grid square
	DefaultGridPixels = 50.0 // Pixels per grid square
)

// Grid describes the map's square grid
type Grid struct {
	Visible bool
	Feet    float64 // Feet per square
	Pixels  float64 // Pixels per square
}

// DarkvisionToken is a disc of sight around a token, independent of light
type DarkvisionToken struct {
	ID       string
	Position shadows.Point
	Radius   float64 // In pixels
}

// VisionRadius converts a vision range in feet to pixels. Zero feet or
// pixels per square fall back to the defaults.
func VisionRadius(visionFeet, gridFeet, gridPixels float64) float64 {
	if gridFeet == 0 {
		gridFeet = DefaultGridFeet
	}
	if gridPixels == 0 {
		gridPixels = DefaultGridPixels
	}
	if visionFeet <= 0 || gridFeet <= 0 {
		return 0
	}
	return visionFeet / gridFeet * gridPixels
}

// Darkvision returns a disc for each token with vision and a positive range.
// Nothing is returned while the grid is hidden, which leaves the lit mask
// unmodified.
func Darkvision(tokens []Token, grid Grid) []DarkvisionToken {
	if !grid.Visible {
		return nil
	}

	var discs []DarkvisionToken
	for _, token := range tokens {
		if !token.Vision || token.VisionFeet <= 0 {
			continue
		}
		radius := VisionRadius(float64(token.VisionFeet), grid.Feet, grid.Pixels)
		if radius <= 0 || math.IsInf(radius, 0) || math.IsNaN(radius) {
			continue
		}
		discs = append(discs, DarkvisionToken{ID: token.ID, Position: token.Position, Radius: radius})
	}
	return discs
}

// ParseVisionFeet reads a character sheet's vision range. The value may be
// a JSON number or a string; strings keep their leading integer ("60 ft" is
// 60) and anything unreadable is 0.
func ParseVisionFeet(v any) int {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) {
			return 0
		}
		return clampFeet(math.Trunc(val))
	case int:
		return val
	case string:
		return leadingInt(val)
	default:
		return 0
	}
}

func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return clampFeet(n)
}

// clampFeet keeps huge ranges huge instead of letting them overflow.
func clampFeet(v float64) int {
	return int(math.Max(-math.MaxInt32, math.Min(math.MaxInt32, v)))
}
