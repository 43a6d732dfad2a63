package ui

// TouchFilter debounces a polled touch surface into edge-triggered press
// events. It is a two-state machine (released <-> pressed) fed with raw
// samples: a press event is emitted only on the released-to-pressed
// transition, and every further sample is swallowed until the finger lifts.
//
// The raw surface is polled far faster than a human press, so without this
// a single tap would register dozens of hits.
type TouchFilter struct {
	pressed bool
}

// Sample feeds one raw poll result into the filter. down reports whether
// the surface currently senses contact at (x, y); the returned press is
// true exactly once per physical tap, with the tap's coordinates.
func (f *TouchFilter) Sample(x, y int, down bool) (px, py int, press bool) {
	if !down {
		f.pressed = false
		return 0, 0, false
	}

	if f.pressed {
		return 0, 0, false
	}

	f.pressed = true
	return x, y, true
}

// Reset returns the filter to the released state, discarding any held
// press. Useful when the display suspends input during a redraw.
func (f *TouchFilter) Reset() {
	f.pressed = false
}
