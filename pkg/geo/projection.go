package geo

import (
	"fmt"
	"math"
)

// earthRadiusKM is the equatorial radius used for the angular-distance
// conversion.
const earthRadiusKM = 6378.1

const milesToKM = 1.6

// BoundingBox is the lat/lon rectangle visible on screen. It is derived
// once from configuration and stays fixed for the session's geographic
// frame; it is only rebuilt when configuration changes (e.g. a screen
// rotation changes the aspect ratio).
type BoundingBox struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// BuildBoundingBox calculates the corners of a rectangular grid centered at
// the given point. widthMiles is the great-circle half-width of the grid;
// the longitude delta is cosine-corrected for the shrinking length of a
// degree of longitude away from the equator, then scaled by the display's
// aspect ratio so the box matches the screen's pixel proportions.
//
// Degenerate input (non-positive width or aspect ratio) is a configuration
// error, never a zero-area or inverted box.
func BuildBoundingBox(centerLat, centerLon, widthMiles, aspectRatio float64) (BoundingBox, error) {
	if widthMiles <= 0 {
		return BoundingBox{}, fmt.Errorf("grid width must be positive, got %g miles", widthMiles)
	}
	if aspectRatio <= 0 {
		return BoundingBox{}, fmt.Errorf("screen aspect ratio must be positive, got %g", aspectRatio)
	}

	centerLatRad := degToRad(centerLat)
	centerLonRad := degToRad(centerLon)

	angDist := widthMiles * milesToKM / earthRadiusKM
	dLat := angDist
	dLon := math.Asin(math.Sin(angDist)/math.Cos(centerLatRad)) * aspectRatio

	return BoundingBox{
		LatMin: radToDeg(centerLatRad - dLat),
		LatMax: radToDeg(centerLatRad + dLat),
		LonMin: radToDeg(centerLonRad - dLon),
		LonMax: radToDeg(centerLonRad + dLon),
	}, nil
}

// Contains reports whether the point lies within the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// Project maps a lat/lon position onto integer pixel coordinates within a
// screenW x screenH frame covering the bounding box. X is a linear map of
// longitude; Y uses the Web-Mercator vertical transform so increasing
// latitude moves the point up the screen.
//
// Points outside the box are not rejected: they project outside
// [0,screenW] x [0,screenH] and culling is the caller's job (see InFrame).
func Project(lat, lon float64, box BoundingBox, screenW, screenH int) (x, y int) {
	x = mapRange(lon, box.LonMin, box.LonMax, 0, float64(screenW))

	mercLat := mercator(lat)
	mercMax := mercator(box.LatMax)
	mercMin := mercator(box.LatMin)
	y = mapRange(mercLat, mercMax, mercMin, 0, float64(screenH))

	return x, y
}

// InFrame reports whether a projected point should be drawn. A margin of
// one icon width is allowed beyond each screen edge so an icon whose anchor
// sits just off-screen still renders its visible sliver.
func InFrame(x, y, screenW, screenH, margin int) bool {
	return x >= -margin && x <= screenW+margin &&
		y >= -margin && y <= screenH+margin
}

// mercator is the Web-Mercator vertical transform ln(tan(pi/4 + lat/2)).
func mercator(latDeg float64) float64 {
	return math.Log(math.Tan(math.Pi/4 + degToRad(latDeg)/2))
}

// mapRange normalizes value from [inMin, inMax] to [outMin, outMax],
// truncated to an integer pixel.
func mapRange(value, inMin, inMax, outMin, outMax float64) int {
	return int(outMin + (value-inMin)/(inMax-inMin)*(outMax-outMin))
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }
