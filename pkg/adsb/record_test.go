package adsb

import (
	"math"
	"testing"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

// approxEq compares floats with a small tolerance for unit conversions.
func approxEq(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

// TestStateFromKeyed tests normalization of ADSB.lol keyed records.
func TestStateFromKeyed(t *testing.T) {
	t.Run("Full record converts units", func(t *testing.T) {
		rec := map[string]any{
			"hex":       "a1b2c3",
			"flight":    "DAL100  ",
			"lat":       42.5,
			"lon":       -71.2,
			"alt_baro":  10000.0,
			"alt_geom":  10200.0,
			"gs":        100.0,
			"track":     275.0,
			"baro_rate": -64.0,
			"category":  "A3",
		}

		state, err := StateFromKeyed(rec)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if state.ICAO != "a1b2c3" {
			t.Errorf("Expected ICAO a1b2c3, got %s", state.ICAO)
		}
		if state.Callsign == nil || *state.Callsign != "DAL100" {
			t.Errorf("Expected trimmed callsign DAL100, got %v", state.Callsign)
		}
		// 100 kts -> 51.44 m/s
		if state.GroundSpeedMPS == nil || !approxEq(*state.GroundSpeedMPS, 51.44) {
			t.Errorf("Expected ground speed 51.44 m/s, got %v", state.GroundSpeedMPS)
		}
		// 10000 ft -> 3048 m
		if state.BaroAltitudeM == nil || !approxEq(*state.BaroAltitudeM, 3048.0) {
			t.Errorf("Expected baro altitude 3048 m, got %v", state.BaroAltitudeM)
		}
		if state.GeoAltitudeM == nil || !approxEq(*state.GeoAltitudeM, 10200*0.3048) {
			t.Errorf("Expected geo altitude %f m, got %v", 10200*0.3048, state.GeoAltitudeM)
		}
		if state.VerticalRateMPS == nil || !approxEq(*state.VerticalRateMPS, -64*0.3048) {
			t.Errorf("Expected vertical rate %f m/s, got %v", -64*0.3048, state.VerticalRateMPS)
		}
		if state.Category != CategoryLarge {
			t.Errorf("Expected category large, got %v", state.Category)
		}
		if state.OnGround {
			t.Error("Expected airborne aircraft")
		}
	})

	t.Run("Ground sentinel sets OnGround", func(t *testing.T) {
		rec := map[string]any{
			"hex":      "a1b2c3",
			"alt_baro": "ground",
		}

		state, err := StateFromKeyed(rec)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if !state.OnGround {
			t.Error("Expected OnGround for ground sentinel")
		}
		if state.BaroAltitudeM != nil {
			t.Errorf("Expected no baro altitude, got %v", *state.BaroAltitudeM)
		}
	})

	t.Run("Callsign falls back to registration", func(t *testing.T) {
		rec := map[string]any{
			"hex": "a1b2c3",
			"r":   "N12345",
		}

		state, err := StateFromKeyed(rec)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if state.Callsign == nil || *state.Callsign != "N12345" {
			t.Errorf("Expected callsign N12345 from registration, got %v", state.Callsign)
		}
	})

	t.Run("Whitespace-only callsign is absent", func(t *testing.T) {
		rec := map[string]any{
			"hex":    "a1b2c3",
			"flight": "        ",
		}

		state, err := StateFromKeyed(rec)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if state.Callsign != nil {
			t.Errorf("Expected absent callsign, got %q", *state.Callsign)
		}
	})

	t.Run("Track falls back to true heading", func(t *testing.T) {
		rec := map[string]any{
			"hex":          "a1b2c3",
			"true_heading": 135.0,
		}

		state, err := StateFromKeyed(rec)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if state.Track == nil || *state.Track != 135.0 {
			t.Errorf("Expected track 135 from true_heading, got %v", state.Track)
		}
	})

	t.Run("Unknown category yields no info", func(t *testing.T) {
		rec := map[string]any{
			"hex":      "a1b2c3",
			"category": "D7",
		}

		state, err := StateFromKeyed(rec)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if state.Category != CategoryNoInfo {
			t.Errorf("Expected no-info category for unknown code, got %v", state.Category)
		}
	})

	t.Run("Missing hex is malformed", func(t *testing.T) {
		rec := map[string]any{
			"lat": 42.5,
			"lon": -71.2,
		}

		if _, err := StateFromKeyed(rec); err == nil {
			t.Fatal("Expected error for record without hex")
		}
	})
}

// TestStateFromOpenSky tests normalization of OpenSky positional vectors.
func TestStateFromOpenSky(t *testing.T) {
	t.Run("Full vector parses without conversion", func(t *testing.T) {
		vector := []any{
			"4b1814",   // 0 icao
			"SWR123  ", // 1 callsign
			"Germany",  // 2 origin country
			1700000000.0, 1700000000.0,
			-71.1,  // 5 longitude
			42.4,   // 6 latitude
			3048.0, // 7 baro altitude, meters
			false,  // 8 on ground
			51.44,  // 9 velocity, m/s
			275.0,  // 10 track
			-2.3,   // 11 vertical rate
			nil,    // 12 sensors
			3100.0, // 13 geo altitude
			nil, nil, false,
			6.0, // 17 category
		}

		state, err := StateFromOpenSky(vector)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if state.ICAO != "4b1814" {
			t.Errorf("Expected ICAO 4b1814, got %s", state.ICAO)
		}
		if state.Callsign == nil || *state.Callsign != "SWR123" {
			t.Errorf("Expected trimmed callsign SWR123, got %v", state.Callsign)
		}
		if state.Lat == nil || *state.Lat != 42.4 {
			t.Errorf("Expected latitude 42.4, got %v", state.Lat)
		}
		if state.Lon == nil || *state.Lon != -71.1 {
			t.Errorf("Expected longitude -71.1, got %v", state.Lon)
		}
		// Already m/s; no conversion.
		if state.GroundSpeedMPS == nil || *state.GroundSpeedMPS != 51.44 {
			t.Errorf("Expected velocity 51.44, got %v", state.GroundSpeedMPS)
		}
		if state.BaroAltitudeM == nil || *state.BaroAltitudeM != 3048.0 {
			t.Errorf("Expected baro altitude 3048, got %v", state.BaroAltitudeM)
		}
		if state.Category != CategoryHeavy {
			t.Errorf("Expected heavy category, got %v", state.Category)
		}
	})

	t.Run("Short vector without category", func(t *testing.T) {
		vector := []any{
			"abc123", nil, nil, nil, nil,
			-71.1, 42.4, nil, true, nil, nil, nil, nil, nil,
		}

		state, err := StateFromOpenSky(vector)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if !state.OnGround {
			t.Error("Expected on-ground flag")
		}
		if state.Category != CategoryNoInfo {
			t.Errorf("Expected no-info category, got %v", state.Category)
		}
	})

	t.Run("Truncated vector is malformed", func(t *testing.T) {
		vector := []any{"abc123", nil, nil}

		if _, err := StateFromOpenSky(vector); err == nil {
			t.Fatal("Expected error for truncated vector")
		}
	})

	t.Run("Non-string ICAO is malformed", func(t *testing.T) {
		vector := []any{
			12345.0, nil, nil, nil, nil,
			-71.1, 42.4, nil, false, nil, nil, nil, nil, nil,
		}

		if _, err := StateFromOpenSky(vector); err == nil {
			t.Fatal("Expected error for numeric ICAO slot")
		}
	})
}

// TestPlottable tests the minimum-data check for map placement.
func TestPlottable(t *testing.T) {
	tests := []struct {
		name  string
		state AircraftState
		want  bool
	}{
		{
			name: "Position and track present",
			state: AircraftState{
				ICAO: "a", Lat: floatPtr(42.0), Lon: floatPtr(-71.0), Track: floatPtr(90.0),
			},
			want: true,
		},
		{
			name:  "Missing position",
			state: AircraftState{ICAO: "a", Track: floatPtr(90.0)},
			want:  false,
		},
		{
			name:  "Missing track",
			state: AircraftState{ICAO: "a", Lat: floatPtr(42.0), Lon: floatPtr(-71.0)},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Plottable(); got != tt.want {
				t.Errorf("Plottable() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestCategoryFromEmitter tests the emitter-code mapping.
func TestCategoryFromEmitter(t *testing.T) {
	tests := []struct {
		code string
		want Category
	}{
		{"A1", CategoryLight},
		{"A5", CategoryHeavy},
		{"A7", CategoryRotorcraft},
		{"B1", CategoryGlider},
		{"C2", CategorySurfaceService},
		{"", CategoryNoInfo},
		{"Z9", CategoryNoInfo},
	}

	for _, tt := range tests {
		if got := CategoryFromEmitter(tt.code); got != tt.want {
			t.Errorf("CategoryFromEmitter(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
