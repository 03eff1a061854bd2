package coord

import (
	"math"
	"testing"
)

// Reference point in central Beijing (WGS84).
const (
	beijingLng = 116.359824
	beijingLat = 39.94762
)

func TestOutOfChina(t *testing.T) {
	tests := []struct {
		name string
		lng  float64
		lat  float64
		want bool
	}{
		{name: "Beijing", lng: beijingLng, lat: beijingLat, want: false},
		{name: "Taipei", lng: 121.5654, lat: 25.0330, want: false},
		{name: "London", lng: -0.1278, lat: 51.5074, want: true},
		{name: "Tokyo", lng: 139.6917, lat: 35.6895, want: true},
		{name: "NullIsland", lng: 0, lat: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutOfChina(tt.lng, tt.lat); got != tt.want {
				t.Errorf("OutOfChina(%v, %v) = %v, want %v", tt.lng, tt.lat, got, tt.want)
			}
		})
	}
}

func TestWGS84ToGCJ02_OffsetMagnitude(t *testing.T) {
	lng, lat := WGS84ToGCJ02(beijingLng, beijingLat)

	// The GCJ02 offset in mainland China is a few hundred meters,
	// i.e. roughly 0.002 to 0.01 degrees.
	dLng := math.Abs(lng - beijingLng)
	dLat := math.Abs(lat - beijingLat)

	if dLng < 0.001 || dLng > 0.02 {
		t.Errorf("longitude offset %v outside plausible GCJ02 range", dLng)
	}
	if dLat < 0.001 || dLat > 0.02 {
		t.Errorf("latitude offset %v outside plausible GCJ02 range", dLat)
	}
}

func TestWGS84ToGCJ02_IdentityOutsideChina(t *testing.T) {
	lng, lat := WGS84ToGCJ02(-0.1278, 51.5074)
	if lng != -0.1278 || lat != 51.5074 {
		t.Errorf("conversion outside China must be identity, got (%v, %v)", lng, lat)
	}

	lng, lat = GCJ02ToWGS84(139.6917, 35.6895)
	if lng != 139.6917 || lat != 35.6895 {
		t.Errorf("inverse outside China must be identity, got (%v, %v)", lng, lat)
	}
}

func TestRoundTrip_WGS84_GCJ02(t *testing.T) {
	points := []Point{
		{Lng: beijingLng, Lat: beijingLat},
		{Lng: 121.4737, Lat: 31.2304}, // Shanghai
		{Lng: 113.2644, Lat: 23.1291}, // Guangzhou
		{Lng: 104.0665, Lat: 30.5723}, // Chengdu
		{Lng: 87.6168, Lat: 43.8256},  // Urumqi
	}

	for _, p := range points {
		gLng, gLat := WGS84ToGCJ02(p.Lng, p.Lat)
		wLng, wLat := GCJ02ToWGS84(gLng, gLat)

		// The single-step inverse leaves a sub-meter residual (~1e-5 deg).
		if math.Abs(wLng-p.Lng) > 1e-4 || math.Abs(wLat-p.Lat) > 1e-4 {
			t.Errorf("round trip for (%v, %v) drifted to (%v, %v)", p.Lng, p.Lat, wLng, wLat)
		}
	}
}

func TestRoundTrip_GCJ02_BD09(t *testing.T) {
	gLng, gLat := WGS84ToGCJ02(beijingLng, beijingLat)

	bLng, bLat := GCJ02ToBD09(gLng, gLat)
	rLng, rLat := BD09ToGCJ02(bLng, bLat)

	if math.Abs(rLng-gLng) > 1e-5 || math.Abs(rLat-gLat) > 1e-5 {
		t.Errorf("BD09 round trip drifted: (%v, %v) -> (%v, %v)", gLng, gLat, rLng, rLat)
	}

	// BD09 shifts roughly 0.006 degrees from GCJ02.
	if math.Abs(bLng-gLng) < 0.004 || math.Abs(bLat-gLat) < 0.004 {
		t.Errorf("BD09 offset implausibly small: dLng=%v dLat=%v", bLng-gLng, bLat-gLat)
	}
}

func TestChainedConversions(t *testing.T) {
	bLng, bLat := WGS84ToBD09(beijingLng, beijingLat)
	wLng, wLat := BD09ToWGS84(bLng, bLat)

	if math.Abs(wLng-beijingLng) > 1e-4 || math.Abs(wLat-beijingLat) > 1e-4 {
		t.Errorf("WGS84->BD09->WGS84 drifted to (%v, %v)", wLng, wLat)
	}
}
