package coord

import (
	"math"
	"strings"
)

// Bounds is an inclusive lng/lat rectangle used for validation.
type Bounds struct {
	MinLng, MaxLng float64
	MinLat, MaxLat float64
}

// Predefined validation bounds.
var (
	// WorldBounds accepts any plausible geographic coordinate.
	WorldBounds = Bounds{MinLng: -180, MaxLng: 180, MinLat: -90, MaxLat: 90}
	// ChinaBounds is the generous rectangle used for bus data, which is
	// mainland-only.
	ChinaBounds = Bounds{MinLng: 70, MaxLng: 140, MinLat: 15, MaxLat: 55}
)

// Contains reports whether the coordinate lies within the bounds.
func (b Bounds) Contains(lng, lat float64) bool {
	return lng >= b.MinLng && lng <= b.MaxLng && lat >= b.MinLat && lat <= b.MaxLat
}

// Validate checks a coordinate against the bounds and rejects NaN/Inf values.
// It returns the coordinate unchanged so callers can chain corrections.
func Validate(lng, lat float64, b Bounds) (float64, float64, bool) {
	if math.IsNaN(lng) || math.IsNaN(lat) || math.IsInf(lng, 0) || math.IsInf(lat, 0) {
		return 0, 0, false
	}
	if !b.Contains(lng, lat) {
		return 0, 0, false
	}
	return lng, lat, true
}

// IsTaiwan reports whether a Chinese city/province name refers to Taiwan.
func IsTaiwan(cityCN string) bool {
	return strings.Contains(cityCN, "台湾")
}

// FixTaiwan corrects station coordinates collected for Taiwan Province.
// Upstream data for Taiwan was double-converted (the AMap response is
// already WGS84 there, but the GCJ02 inverse was applied anyway), so the
// correction re-applies the forward conversion. Non-Taiwan coordinates are
// returned unchanged.
func FixTaiwan(lng, lat float64, cityCN string) (float64, float64) {
	if !IsTaiwan(cityCN) {
		return lng, lat
	}
	return WGS84ToGCJ02(lng, lat)
}
