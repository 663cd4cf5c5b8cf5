package lighting

import "chosenoffset.com/fogofwar/internal/core/shadows"

// Kind tells where a light comes from
type Kind int

const (
	// KindDM is a free light placed by the DM. Unbounded in range, still wall-occluded.
	KindDM Kind = iota
	// KindToken is the sight of a token whose character has vision.
	KindToken
)

func (k Kind) String() string {
	if k == KindToken {
		return "token"
	}
	return "dm"
}

// LightSource represents a single point light on the map
type LightSource struct {
	ID        string
	Position  shadows.Point // Image position (in pixels)
	MaxRadius float64       // Reach in pixels, 0 for unbounded
	Kind      Kind
}

// Bounded reports whether the light stops at MaxRadius.
func (l LightSource) Bounded() bool {
	return l.MaxRadius > 0
}

// Token is a placed initiative token joined with its character's vision data
type Token struct {
	ID         string
	Position   shadows.Point
	Vision     bool // Character has the vision capability
	VisionFeet int  // Darkvision range in feet
}

// Manager handles all light sources on a map
type Manager struct {
	dmLights    []*LightSource
	dmIndex     map[string]int // Keyed by light ID
	tokenRadius float64
}

// NewManager creates a lighting manager. Token lights reach tokenRadius
// pixels; zero leaves them unbounded.
func NewManager(tokenRadius float64) *Manager {
	if tokenRadius < 0 {
		tokenRadius = 0
	}
	return &Manager{
		dmIndex:     make(map[string]int),
		tokenRadius: tokenRadius,
	}
}

// TokenRadius returns the reach of token lights in pixels.
func (m *Manager) TokenRadius() float64 {
	return m.tokenRadius
}

// SetLight adds a DM light or moves the one with the same ID.
func (m *Manager) SetLight(id string, pos shadows.Point) {
	if i, ok := m.dmIndex[id]; ok {
		m.dmLights[i].Position = pos
		return
	}
	m.dmIndex[id] = len(m.dmLights)
	m.dmLights = append(m.dmLights, &LightSource{ID: id, Position: pos, Kind: KindDM})
}

// RemoveLight removes a DM light. Unknown IDs are ignored.
func (m *Manager) RemoveLight(id string) {
	i, ok := m.dmIndex[id]
	if !ok {
		return
	}
	m.dmLights = append(m.dmLights[:i], m.dmLights[i+1:]...)
	delete(m.dmIndex, id)
	for j := i; j < len(m.dmLights); j++ {
		m.dmIndex[m.dmLights[j].ID] = j
	}
}

// Light returns the DM light with the given ID.
func (m *Manager) Light(id string) (LightSource, bool) {
	i, ok := m.dmIndex[id]
	if !ok {
		return LightSource{}, false
	}
	return *m.dmLights[i], true
}

// ClearLights removes all DM lights (called when loading a new map)
func (m *Manager) ClearLights() {
	m.dmLights = nil
	m.dmIndex = make(map[string]int)
}

// GetAllLights returns the DM lights in insertion order followed by one
// light per token with vision, in token order.
func (m *Manager) GetAllLights(tokens []Token) []LightSource {
	lights := make([]LightSource, 0, len(m.dmLights)+len(tokens))

	for _, light := range m.dmLights {
		lights = append(lights, *light)
	}

	for _, token := range tokens {
		if !token.Vision {
			continue
		}
		lights = append(lights, LightSource{
			ID:        token.ID,
			Position:  token.Position,
			MaxRadius: m.tokenRadius,
			Kind:      KindToken,
		})
	}

	return lights
}
