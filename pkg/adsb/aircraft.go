package adsb

import "fmt"

// AircraftState is the normalized last-known kinematic state of one aircraft.
// All upstream sources (OpenSky, ADSB.lol, proxy) normalize into this one
// shape; a full set of states is rebuilt from scratch on every refresh cycle.
//
// Optional fields use pointers: nil means the upstream record did not carry
// the value. Position data is WGS84.
type AircraftState struct {
	// ICAO is the upstream aircraft identifier, usually the 24-bit ICAO hex
	// address (e.g. "a12345"), occasionally a registration. Unique key.
	ICAO string

	// Callsign is the flight number or registration, whitespace-trimmed.
	// nil when the upstream reported nothing (or only whitespace).
	Callsign *string

	// Lat/Lon in decimal degrees.
	Lat *float64
	Lon *float64

	// Track is the ground track in degrees true (0-360).
	Track *float64

	// GroundSpeedMPS is ground speed in meters per second, non-negative.
	GroundSpeedMPS *float64

	// OnGround reports whether the aircraft is on the surface.
	OnGround bool

	// BaroAltitudeM is barometric altitude in meters MSL.
	BaroAltitudeM *float64

	// GeoAltitudeM is geometric (GPS) altitude in meters MSL.
	GeoAltitudeM *float64

	// VerticalRateMPS is climb rate in meters per second, negative when
	// descending.
	VerticalRateMPS *float64

	// Category is the unified aircraft category, see category.go.
	Category Category
}

// Plottable reports whether the state carries enough data to place an icon
// on the map: latitude, longitude, and track must all be present. On-ground
// aircraft may still be plottable; filtering those is display policy.
func (a AircraftState) Plottable() bool {
	return a.Lat != nil && a.Lon != nil && a.Track != nil
}

// Label returns the callsign when known, otherwise the ICAO identifier.
func (a AircraftState) Label() string {
	if a.Callsign != nil {
		return *a.Callsign
	}
	return a.ICAO
}

// String renders a one-line summary suitable for log output.
func (a AircraftState) String() string {
	var pos string
	if a.Plottable() {
		pos = fmt.Sprintf("(%.3f, %.3f), %d deg", *a.Lat, *a.Lon, int(*a.Track))
	} else {
		pos = "no track information"
	}

	if a.GeoAltitudeM != nil {
		pos = fmt.Sprintf("%s @ %dm MSL", pos, int(*a.GeoAltitudeM))
	}

	return fmt.Sprintf("%s: %s", a.Label(), pos)
}
