package timing

import (
	"fmt"

	"phasewin/domain/core"
)

// PhaseWindow represents one scored interval: a closed range of ages
// centred on a hypothesized stage boundary.
type PhaseWindow struct {
	Index     int     `json:"index"` // 1-based position in the sequence
	Centre    float64 `json:"centre"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	HalfWidth float64 `json:"half_width"`
}

// Contains reports whether age falls inside the closed interval [Lower, Upper].
func (w PhaseWindow) Contains(age float64) bool {
	return w.Lower <= age && age <= w.Upper
}

// Build zips equal-length centre and half-width sequences into phase windows,
// indexed 1..K in input order. Windows are not required to be disjoint or
// sorted by centre; downstream scoring resolves overlap by first-match order.
func Build(centres, halfWidths []float64) ([]PhaseWindow, error) {
	if len(centres) != len(halfWidths) {
		return nil, fmt.Errorf("%w: %d centres, %d half-widths",
			core.ErrLengthMismatch, len(centres), len(halfWidths))
	}
	windows := make([]PhaseWindow, len(centres))
	for i, c := range centres {
		h := halfWidths[i]
		if h < 0 {
			return nil, core.NewValidationError("half_width", "must be non-negative")
		}
		windows[i] = PhaseWindow{
			Index:     i + 1,
			Centre:    c,
			Lower:     c - h,
			Upper:     c + h,
			HalfWidth: h,
		}
	}
	return windows, nil
}
