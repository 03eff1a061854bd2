package coord

import (
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		lng    float64
		lat    float64
		bounds Bounds
		wantOK bool
	}{
		{name: "BeijingInChinaBounds", lng: 116.4, lat: 39.9, bounds: ChinaBounds, wantOK: true},
		{name: "LondonOutsideChinaBounds", lng: -0.13, lat: 51.5, bounds: ChinaBounds, wantOK: false},
		{name: "LondonInWorldBounds", lng: -0.13, lat: 51.5, bounds: WorldBounds, wantOK: true},
		{name: "NaNRejected", lng: math.NaN(), lat: 39.9, bounds: WorldBounds, wantOK: false},
		{name: "InfRejected", lng: 116.4, lat: math.Inf(1), bounds: WorldBounds, wantOK: false},
		{name: "OutOfRangeLat", lng: 116.4, lat: 95, bounds: WorldBounds, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lng, lat, ok := Validate(tt.lng, tt.lat, tt.bounds)
			if ok != tt.wantOK {
				t.Fatalf("Validate() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (lng != tt.lng || lat != tt.lat) {
				t.Errorf("Validate() changed the coordinate: (%v, %v)", lng, lat)
			}
		})
	}
}

func TestIsTaiwan(t *testing.T) {
	if !IsTaiwan("台湾省") {
		t.Error("expected 台湾省 to be recognized as Taiwan")
	}
	if IsTaiwan("北京") {
		t.Error("北京 must not be recognized as Taiwan")
	}
	if IsTaiwan("") {
		t.Error("empty name must not be recognized as Taiwan")
	}
}

func TestFixTaiwan(t *testing.T) {
	// Taipei Main Station area.
	lng, lat := 121.5170, 25.0478

	fLng, fLat := FixTaiwan(lng, lat, "台湾省")
	if fLng == lng && fLat == lat {
		t.Error("Taiwan coordinates should be shifted by the correction")
	}

	// The correction applies the GCJ02 forward offset: a few hundred meters.
	if math.Abs(fLng-lng) > 0.02 || math.Abs(fLat-lat) > 0.02 {
		t.Errorf("correction implausibly large: (%v, %v)", fLng-lng, fLat-lat)
	}

	// Other provinces pass through untouched.
	uLng, uLat := FixTaiwan(lng, lat, "广东")
	if uLng != lng || uLat != lat {
		t.Error("non-Taiwan coordinates must pass through unchanged")
	}
}
