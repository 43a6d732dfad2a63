package ui

import (
	"math"

	"skyportal/pkg/adsb"
)

// DefaultTouchThresholdPx is the hit radius used when the configuration
// does not override it.
const DefaultTouchThresholdPx = 30

// HitIndex caches the rendered pixel position of every plotted aircraft so
// touch presses can be resolved to the nearest one. It is cleared and
// rebuilt on every redraw: a stale index pointing at a previous frame's
// layout is worse than an empty one. Positions here are only for
// hit-testing, never for kinematic truth.
type HitIndex struct {
	entries []hitEntry
}

type hitEntry struct {
	x, y     int
	aircraft adsb.AircraftState
}

// Reset drops every registered position. Call at the top of each redraw.
func (ix *HitIndex) Reset() {
	ix.entries = ix.entries[:0]
}

// Register records the pixel position of one plotted (non-culled) aircraft.
func (ix *HitIndex) Register(x, y int, aircraft adsb.AircraftState) {
	ix.entries = append(ix.entries, hitEntry{x: x, y: y, aircraft: aircraft})
}

// Len reports the number of registered positions.
func (ix *HitIndex) Len() int {
	return len(ix.entries)
}

// Closest returns the registered aircraft nearest to the touch point, if
// its Euclidean distance is within thresholdPx. An empty index is a miss,
// never an error. When two aircraft are exactly equidistant the winner is
// arbitrary (accepted non-determinism, not worth a tie-break rule).
func (ix *HitIndex) Closest(touchX, touchY, thresholdPx int) (adsb.AircraftState, bool) {
	best := -1
	bestDist := math.Inf(1)

	for i, e := range ix.entries {
		dx := float64(e.x - touchX)
		dy := float64(e.y - touchY)
		dist := math.Hypot(dx, dy)
		if dist < bestDist {
			best = i
			bestDist = dist
		}
	}

	if best < 0 || bestDist > float64(thresholdPx) {
		return adsb.AircraftState{}, false
	}
	return ix.entries[best].aircraft, true
}
