package adsb

// Category classifies an aircraft type (light, heavy, rotorcraft, ...) in a
// single vocabulary shared by every upstream source, so icon selection does
// not depend on which API produced the data.
//
// The values mirror OpenSky's numeric category codes; ADSB.lol's
// alphanumeric emitter codes (A0-C5) are mapped onto them.
type Category int

const (
	CategoryNoInfo Category = iota
	CategoryNoCategoryInfo
	CategoryLight
	CategorySmall
	CategoryLarge
	CategoryHighVortexLarge
	CategoryHeavy
	CategoryHighPerformance
	CategoryRotorcraft
	CategoryGlider
	CategoryLighterThanAir
	CategoryParachutist
	CategoryUltralight
	CategoryReserved
	CategoryUAV
	CategorySpace
	CategorySurfaceEmergency
	CategorySurfaceService
	CategoryPointObstacle
	CategoryClusterObstacle
	CategoryLineObstacle
)

// categoryNames indexes display names by Category value.
var categoryNames = [...]string{
	"no info",
	"no category info",
	"light",
	"small",
	"large",
	"high vortex large",
	"heavy",
	"high performance",
	"rotorcraft",
	"glider",
	"lighter than air",
	"parachutist",
	"ultralight",
	"reserved",
	"UAV",
	"space",
	"surface emergency",
	"surface service",
	"point obstacle",
	"cluster obstacle",
	"line obstacle",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "no info"
	}
	return categoryNames[c]
}

// emitterCategories maps ADSB.lol emitter category codes onto the unified
// vocabulary. OpenSky was supported first, so its numbering is the target.
var emitterCategories = map[string]Category{
	"A0": CategoryNoCategoryInfo,
	"A1": CategoryLight,
	"A2": CategorySmall,
	"A3": CategoryLarge,
	"A4": CategoryHighVortexLarge,
	"A5": CategoryHeavy,
	"A6": CategoryHighPerformance,
	"A7": CategoryRotorcraft,
	"B0": CategoryNoCategoryInfo,
	"B1": CategoryGlider,
	"B2": CategoryLighterThanAir,
	"B3": CategoryParachutist,
	"B4": CategoryUltralight,
	"B5": CategoryReserved,
	"B6": CategoryUAV,
	"B7": CategorySpace,
	"C0": CategoryNoCategoryInfo,
	"C1": CategorySurfaceEmergency,
	"C2": CategorySurfaceService,
	"C3": CategoryPointObstacle,
	"C4": CategoryClusterObstacle,
	"C5": CategoryLineObstacle,
}

// CategoryFromEmitter converts an ADSB.lol emitter code (e.g. "A3") to the
// unified Category. Unknown or empty codes yield CategoryNoInfo; this lookup
// never fails.
func CategoryFromEmitter(code string) Category {
	if c, ok := emitterCategories[code]; ok {
		return c
	}
	return CategoryNoInfo
}

// CategoryFromCode converts an OpenSky numeric category code. Codes outside
// the known range yield CategoryNoInfo.
func CategoryFromCode(code int) Category {
	if code < 0 || code >= len(categoryNames) {
		return CategoryNoInfo
	}
	return Category(code)
}
