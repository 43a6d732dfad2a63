package ui

import (
	"testing"

	"skyportal/pkg/adsb"
)

func mkAircraft(icao string) adsb.AircraftState {
	return adsb.AircraftState{ICAO: icao}
}

// TestClosest tests nearest-neighbor touch resolution.
func TestClosest(t *testing.T) {
	t.Run("Empty index is a miss", func(t *testing.T) {
		var ix HitIndex

		if _, ok := ix.Closest(50, 50, DefaultTouchThresholdPx); ok {
			t.Error("Expected miss on empty index")
		}
	})

	t.Run("Hit within threshold", func(t *testing.T) {
		var ix HitIndex
		ix.Register(100, 100, mkAircraft("a1"))

		// 10px away, threshold 30.
		ac, ok := ix.Closest(110, 100, 30)
		if !ok {
			t.Fatal("Expected hit within threshold")
		}
		if ac.ICAO != "a1" {
			t.Errorf("Expected a1, got %s", ac.ICAO)
		}
	})

	t.Run("Miss beyond threshold", func(t *testing.T) {
		var ix HitIndex
		ix.Register(100, 100, mkAircraft("a1"))

		// Same 10px distance, threshold 5.
		if _, ok := ix.Closest(110, 100, 5); ok {
			t.Error("Expected miss beyond threshold")
		}
	})

	t.Run("Nearest of several wins", func(t *testing.T) {
		var ix HitIndex
		ix.Register(10, 10, mkAircraft("far"))
		ix.Register(52, 48, mkAircraft("near"))
		ix.Register(90, 90, mkAircraft("farther"))

		ac, ok := ix.Closest(50, 50, 30)
		if !ok {
			t.Fatal("Expected hit")
		}
		if ac.ICAO != "near" {
			t.Errorf("Expected near, got %s", ac.ICAO)
		}
	})

	t.Run("Exact threshold distance still hits", func(t *testing.T) {
		var ix HitIndex
		ix.Register(100, 100, mkAircraft("a1"))

		if _, ok := ix.Closest(130, 100, 30); !ok {
			t.Error("Expected hit at exactly threshold distance")
		}
	})

	t.Run("Reset empties the index", func(t *testing.T) {
		var ix HitIndex
		ix.Register(100, 100, mkAircraft("a1"))
		ix.Reset()

		if ix.Len() != 0 {
			t.Errorf("Expected empty index after reset, got %d entries", ix.Len())
		}
		if _, ok := ix.Closest(100, 100, 30); ok {
			t.Error("Expected miss after reset")
		}
	})
}

// TestTouchFilter tests press debouncing.
func TestTouchFilter(t *testing.T) {
	t.Run("Press fires once per contact", func(t *testing.T) {
		var f TouchFilter

		x, y, press := f.Sample(40, 20, true)
		if !press {
			t.Fatal("Expected press on first contact sample")
		}
		if x != 40 || y != 20 {
			t.Errorf("Expected press at (40,20), got (%d,%d)", x, y)
		}

		// Held contact stays swallowed.
		for i := 0; i < 5; i++ {
			if _, _, press := f.Sample(41, 21, true); press {
				t.Fatal("Expected held contact swallowed")
			}
		}
	})

	t.Run("Lift re-arms the filter", func(t *testing.T) {
		var f TouchFilter

		f.Sample(40, 20, true)
		f.Sample(0, 0, false)

		if _, _, press := f.Sample(60, 30, true); !press {
			t.Error("Expected new press after lift")
		}
	})

	t.Run("Reset discards a held press", func(t *testing.T) {
		var f TouchFilter

		f.Sample(40, 20, true)
		f.Reset()

		if _, _, press := f.Sample(40, 20, true); !press {
			t.Error("Expected press after reset")
		}
	})
}
