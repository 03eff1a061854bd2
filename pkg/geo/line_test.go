package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

// A roughly west-to-east line through central Beijing, ~2.5km long.
var testLine = orb.LineString{
	{116.350, 39.940},
	{116.360, 39.940},
	{116.370, 39.941},
	{116.380, 39.941},
}

func TestLengthM(t *testing.T) {
	got := LengthM(testLine)
	// 0.03 degrees of longitude at ~40N is roughly 2.5km.
	if got < 2000 || got > 3000 {
		t.Errorf("LengthM() = %v, want roughly 2500", got)
	}

	if LengthM(orb.LineString{{116, 39}, {116, 39}}) != 0 {
		t.Error("zero-length line must measure 0")
	}
}

func TestProject(t *testing.T) {
	// A point slightly north of the first segment midpoint.
	p := orb.Point{116.355, 39.9405}

	along, closest := Project(testLine, p)

	// Closest point should be on the first segment at lat 39.940.
	if math.Abs(closest[1]-39.940) > 1e-9 {
		t.Errorf("closest lat = %v, want 39.940", closest[1])
	}
	if math.Abs(closest[0]-116.355) > 1e-6 {
		t.Errorf("closest lng = %v, want 116.355", closest[0])
	}

	// Along-line distance should be about half the first segment (~425m).
	if along < 300 || along > 600 {
		t.Errorf("along = %v, want roughly 425", along)
	}
}

func TestProject_Ordering(t *testing.T) {
	// Stops placed along the line must project in increasing order.
	stops := []orb.Point{
		{116.351, 39.9401},
		{116.362, 39.9402},
		{116.375, 39.9412},
	}

	prev := -1.0
	for i, s := range stops {
		along, _ := Project(testLine, s)
		if along <= prev {
			t.Fatalf("stop %d projected at %v, not after %v", i, along, prev)
		}
		prev = along
	}
}

func TestSubstring(t *testing.T) {
	total := LengthM(testLine)

	sub := Substring(testLine, total*0.25, total*0.75)
	if len(sub) < 2 {
		t.Fatalf("substring has %d points, want >= 2", len(sub))
	}

	subLen := LengthM(sub)
	want := total * 0.5
	if math.Abs(subLen-want) > total*0.05 {
		t.Errorf("substring length = %v, want about %v", subLen, want)
	}

	// Inverted arguments are swapped, not an error.
	swapped := Substring(testLine, total*0.75, total*0.25)
	if math.Abs(LengthM(swapped)-subLen) > 1 {
		t.Error("swapped arguments must yield the same substring")
	}
}

func TestInterpolate_Clamping(t *testing.T) {
	start := Interpolate(testLine, -5)
	if start != testLine[0] {
		t.Errorf("negative distance must clamp to start, got %v", start)
	}

	end := Interpolate(testLine, 1e9)
	if end != testLine[len(testLine)-1] {
		t.Errorf("overlong distance must clamp to end, got %v", end)
	}
}

func TestCentroid(t *testing.T) {
	c := Centroid([]Point{
		{Lat: 39.0, Lon: 116.0},
		{Lat: 41.0, Lon: 118.0},
	})
	if c.Lat != 40.0 || c.Lon != 117.0 {
		t.Errorf("Centroid() = %+v, want {40 117}", c)
	}

	if (Centroid(nil) != Point{}) {
		t.Error("empty centroid must be zero value")
	}
}

func TestRoundKM(t *testing.T) {
	if got := RoundKM(1234.4); got != 1.234 {
		t.Errorf("RoundKM(1234.4) = %v, want 1.234", got)
	}
	if got := RoundKM(999.6); got != 1.0 {
		t.Errorf("RoundKM(999.6) = %v, want 1.0", got)
	}
}
