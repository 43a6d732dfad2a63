package geo

import (
	"math"
	"testing"
)

// TestBuildBoundingBox tests grid derivation from a center point.
func TestBuildBoundingBox(t *testing.T) {
	t.Run("Box brackets the center", func(t *testing.T) {
		box, err := BuildBoundingBox(42.41, -71.17, 15, 4.0/3.0)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if box.LatMin >= box.LatMax {
			t.Errorf("Expected lat_min < lat_max, got %f >= %f", box.LatMin, box.LatMax)
		}
		if box.LonMin >= box.LonMax {
			t.Errorf("Expected lon_min < lon_max, got %f >= %f", box.LonMin, box.LonMax)
		}
		if !box.Contains(42.41, -71.17) {
			t.Error("Expected box to contain its center")
		}

		// Center should sit midway between the bounds.
		midLat := (box.LatMin + box.LatMax) / 2
		midLon := (box.LonMin + box.LonMax) / 2
		if math.Abs(midLat-42.41) > 1e-9 {
			t.Errorf("Expected center latitude 42.41, got %f", midLat)
		}
		if math.Abs(midLon-(-71.17)) > 1e-9 {
			t.Errorf("Expected center longitude -71.17, got %f", midLon)
		}
	})

	t.Run("Longitude widens toward the poles", func(t *testing.T) {
		equator, err := BuildBoundingBox(0, 0, 15, 1.0)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		northern, err := BuildBoundingBox(60, 0, 15, 1.0)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if northern.LonMax-northern.LonMin <= equator.LonMax-equator.LonMin {
			t.Error("Expected wider longitude span at 60N than at the equator")
		}
		// Latitude span is independent of where the box sits.
		if math.Abs((northern.LatMax-northern.LatMin)-(equator.LatMax-equator.LatMin)) > 1e-9 {
			t.Error("Expected identical latitude spans")
		}
	})

	t.Run("Aspect ratio scales longitude only", func(t *testing.T) {
		square, err := BuildBoundingBox(42.41, -71.17, 15, 1.0)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		wide, err := BuildBoundingBox(42.41, -71.17, 15, 2.0)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		squareSpan := square.LonMax - square.LonMin
		wideSpan := wide.LonMax - wide.LonMin
		if math.Abs(wideSpan-2*squareSpan) > 1e-9 {
			t.Errorf("Expected doubled longitude span, got %f vs %f", wideSpan, squareSpan)
		}
		if wide.LatMin != square.LatMin || wide.LatMax != square.LatMax {
			t.Error("Expected latitude bounds unchanged by aspect ratio")
		}
	})

	t.Run("Degenerate input is rejected", func(t *testing.T) {
		if _, err := BuildBoundingBox(42.41, -71.17, 0, 1.0); err == nil {
			t.Error("Expected error for zero width")
		}
		if _, err := BuildBoundingBox(42.41, -71.17, -5, 1.0); err == nil {
			t.Error("Expected error for negative width")
		}
		if _, err := BuildBoundingBox(42.41, -71.17, 15, 0); err == nil {
			t.Error("Expected error for zero aspect ratio")
		}
	})
}

// TestProject tests the screen projection.
func TestProject(t *testing.T) {
	box, err := BuildBoundingBox(42.41, -71.17, 15, 1.0)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	const screenW, screenH = 96, 36

	t.Run("Center projects near mid-screen", func(t *testing.T) {
		x, y := Project(42.41, -71.17, box, screenW, screenH)

		if x < screenW/2-1 || x > screenW/2+1 {
			t.Errorf("Expected x near %d, got %d", screenW/2, x)
		}
		if y < screenH/2-1 || y > screenH/2+1 {
			t.Errorf("Expected y near %d, got %d", screenH/2, y)
		}
	})

	t.Run("Corners project to frame corners", func(t *testing.T) {
		x, y := Project(box.LatMax, box.LonMin, box, screenW, screenH)
		if x != 0 || y != 0 {
			t.Errorf("Expected top-left (0,0), got (%d,%d)", x, y)
		}

		x, y = Project(box.LatMin, box.LonMax, box, screenW, screenH)
		if x != screenW || y != screenH {
			t.Errorf("Expected bottom-right (%d,%d), got (%d,%d)", screenW, screenH, x, y)
		}
	})

	t.Run("North is up", func(t *testing.T) {
		_, yNorth := Project(42.45, -71.17, box, screenW, screenH)
		_, ySouth := Project(42.37, -71.17, box, screenW, screenH)

		if yNorth >= ySouth {
			t.Errorf("Expected northern point above southern, got y=%d vs y=%d", yNorth, ySouth)
		}
	})

	t.Run("East is right", func(t *testing.T) {
		xWest, _ := Project(42.41, -71.25, box, screenW, screenH)
		xEast, _ := Project(42.41, -71.09, box, screenW, screenH)

		if xEast <= xWest {
			t.Errorf("Expected eastern point right of western, got x=%d vs x=%d", xEast, xWest)
		}
	})

	t.Run("Outside point projects outside frame", func(t *testing.T) {
		x, y := Project(box.LatMax+1.0, box.LonMin-1.0, box, screenW, screenH)

		if InFrame(x, y, screenW, screenH, 1) {
			t.Errorf("Expected (%d,%d) outside frame", x, y)
		}
	})
}

// TestInFrame tests edge culling with the icon margin.
func TestInFrame(t *testing.T) {
	tests := []struct {
		name   string
		x, y   int
		margin int
		want   bool
	}{
		{"Inside", 48, 18, 1, true},
		{"On edge", 0, 0, 1, true},
		{"Just past edge within margin", -1, 36, 1, true},
		{"Past margin", -2, 18, 1, false},
		{"Below frame past margin", 48, 40, 1, false},
		{"No margin rejects edge overhang", -1, 18, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InFrame(tt.x, tt.y, 96, 36, tt.margin); got != tt.want {
				t.Errorf("InFrame(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}
