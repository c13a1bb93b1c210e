package navigation

import (
	"math"

	"github.com/samirrijal/campusnav/internal/pkg/geospatial"
)

// WrongWayTolerance is the largest heading error, in radians, still counted as facing the next leg.
const WrongWayTolerance = math.Pi / 2

// DefaultWrongWaySamples is how many consecutive out-of-tolerance samples raise the wrong-way flag.
const DefaultWrongWaySamples = 3

// WrongWayMonitor debounces live heading samples so a single noisy compass reading
// does not flag the walker as facing the wrong way. It is not safe for concurrent use;
// callers keep one per session and feed it under the session's serialisation.
type WrongWayMonitor struct {
	samples int
	streak  int
}

// NewWrongWayMonitor returns a monitor that trips after samples consecutive misses.
// Values below 1 fall back to DefaultWrongWaySamples.
func NewWrongWayMonitor(samples int) *WrongWayMonitor {
	if samples < 1 {
		samples = DefaultWrongWaySamples
	}
	return &WrongWayMonitor{samples: samples}
}

// Observe records one heading sample against the required bearing (both radians)
// and reports whether the walker is now considered to be facing the wrong way.
func (m *WrongWayMonitor) Observe(required, heading float64) bool {
	if math.Abs(geospatial.NormalizeAngle(required-heading)) > WrongWayTolerance {
		m.streak++
	} else {
		m.streak = 0
	}
	return m.streak >= m.samples
}

// Reset clears the streak, e.g. after the route or the cursor changes.
func (m *WrongWayMonitor) Reset() {
	m.streak = 0
}
