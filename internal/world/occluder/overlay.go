package occluder

import (
	"fmt"

	"chosenoffset.com/fogofwar/internal/core/shadows"
)

// Overlay is the JSON form of a drawn map feature.
type Overlay struct {
	Type    string          `json:"type"`
	Points  []shadows.Point `json:"points,omitempty"`
	Polygon []shadows.Point `json:"polygon,omitempty"`
	IsOpen  bool            `json:"isOpen,omitempty"`
}

// Occluder converts the overlay into its occluder variant. Overlays of other
// types (notes, grid markers) are not occluders.
func (o Overlay) Occluder() (Occluder, error) {
	switch Kind(o.Type) {
	case KindWall:
		return Wall{Points: o.Points}, nil
	case KindDoor:
		if len(o.Points) < 2 {
			return nil, fmt.Errorf("door needs 2 points, have %d: %w", len(o.Points), ErrTooFewPoints)
		}
		return Door{A: o.Points[0], B: o.Points[1], Open: o.IsOpen}, nil
	case KindSmartObject:
		return SmartObject{Polygon: o.Polygon}, nil
	default:
		return nil, fmt.Errorf("unknown overlay type %q", o.Type)
	}
}

// FromOverlays converts every overlay it can. The rest are reported as
// skipped with their overlay index.
func FromOverlays(overlays []Overlay) ([]Occluder, []Skipped) {
	occluders := make([]Occluder, 0, len(overlays))
	var skipped []Skipped
	for i, o := range overlays {
		occ, err := o.Occluder()
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, Kind: Kind(o.Type), Err: err})
			continue
		}
		occluders = append(occluders, occ)
	}
	return occluders, skipped
}
