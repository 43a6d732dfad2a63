package adsb

import (
	"fmt"
	"strings"
)

// Unit conversions applied during normalization. OpenSky reports metric
// units natively; ADSB.lol reports feet and knots.
const (
	feetToMeters  = 0.3048
	knotsToMPS    = 0.5144
	groundMarker  = "ground" // altitude sentinel for surface aircraft
	openSkyFields = 14       // positional fields required through geo altitude
)

// OpenSky state vector positions, per the OpenSky REST documentation.
const (
	osICAO         = 0
	osCallsign     = 1
	osLongitude    = 5
	osLatitude     = 6
	osBaroAltitude = 7
	osOnGround     = 8
	osVelocity     = 9
	osTrack        = 10
	osVerticalRate = 11
	osGeoAltitude  = 13
	osCategory     = 17
)

// StateFromOpenSky builds an AircraftState from one OpenSky positional state
// vector. OpenSky already reports meters and m/s, so no unit conversion is
// applied. Vectors too short to carry position data, or with a non-string
// ICAO, are malformed.
func StateFromOpenSky(vector []any) (AircraftState, error) {
	if len(vector) < openSkyFields {
		return AircraftState{}, fmt.Errorf("state vector has %d fields, want at least %d", len(vector), openSkyFields)
	}

	icao, ok := vector[osICAO].(string)
	if !ok || icao == "" {
		return AircraftState{}, fmt.Errorf("state vector has no ICAO identifier")
	}

	state := AircraftState{
		ICAO:            icao,
		Callsign:        optCallsign(optString(vector[osCallsign])),
		Lat:             optFloat(vector[osLatitude]),
		Lon:             optFloat(vector[osLongitude]),
		Track:           optFloat(vector[osTrack]),
		GroundSpeedMPS:  optFloat(vector[osVelocity]),
		GeoAltitudeM:    optFloat(vector[osGeoAltitude]),
		VerticalRateMPS: optFloat(vector[osVerticalRate]),
	}

	if og, ok := vector[osOnGround].(bool); ok {
		state.OnGround = og
	}

	// The altitude slot normally carries meters or null, but guard for the
	// surface sentinel the keyed sources use.
	if s, ok := vector[osBaroAltitude].(string); ok && s == groundMarker {
		state.OnGround = true
	} else {
		state.BaroAltitudeM = optFloat(vector[osBaroAltitude])
	}

	if len(vector) > osCategory {
		if c := optFloat(vector[osCategory]); c != nil {
			state.Category = CategoryFromCode(int(*c))
		}
	}

	return state, nil
}

// StateFromKeyed builds an AircraftState from one keyed-object record as
// served by ADSB.lol (and the proxy, which re-serves the same shape). Field
// semantics follow the readsb JSON documentation:
//
//   - alt_baro is feet, or the string "ground" for surface aircraft
//   - a missing flight callsign falls back to the r registration field
//   - ground aircraft often transmit true_heading instead of track
//   - gs is knots, alt_geom feet, baro_rate ft/s
func StateFromKeyed(rec map[string]any) (AircraftState, error) {
	icao, ok := rec["hex"].(string)
	if !ok || icao == "" {
		return AircraftState{}, fmt.Errorf("record has no hex identifier")
	}

	state := AircraftState{
		ICAO: icao,
		Lat:  optFloat(rec["lat"]),
		Lon:  optFloat(rec["lon"]),
	}

	if s, ok := rec["alt_baro"].(string); ok && s == groundMarker {
		state.OnGround = true
	} else {
		state.BaroAltitudeM = scaleOpt(optFloat(rec["alt_baro"]), feetToMeters)
	}

	callsign := optString(rec["flight"])
	if callsign == nil {
		callsign = optString(rec["r"])
	}
	state.Callsign = optCallsign(callsign)

	state.Track = optFloat(rec["track"])
	if state.Track == nil {
		state.Track = optFloat(rec["true_heading"])
	}

	state.GroundSpeedMPS = scaleOpt(optFloat(rec["gs"]), knotsToMPS)
	state.GeoAltitudeM = scaleOpt(optFloat(rec["alt_geom"]), feetToMeters)
	state.VerticalRateMPS = scaleOpt(optFloat(rec["baro_rate"]), feetToMeters)

	if code, ok := rec["category"].(string); ok {
		state.Category = CategoryFromEmitter(code)
	}

	return state, nil
}

// optFloat extracts an optional numeric field from decoded JSON.
func optFloat(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	default:
		return nil
	}
}

// optString extracts an optional string field from decoded JSON.
func optString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// optCallsign trims a raw callsign and collapses whitespace-only values to
// absent. Upstream callsigns are fixed-width and padded.
func optCallsign(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// scaleOpt multiplies an optional value by a unit-conversion factor.
func scaleOpt(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * factor
	return &scaled
}
