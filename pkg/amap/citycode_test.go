package amap

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCityCodeCSV(t *testing.T) string {
	t.Helper()
	csv := "中文名,adcode,citycode\n" +
		"北京市,110000,010\n" +
		"东城区,110101,010\n" +
		"上海市,310000,021\n" +
		"广西壮族自治区,450000,\\N\n" +
		"南宁市,450100,771\n"

	path := filepath.Join(t.TempDir(), "citycodes.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCityCodes(t *testing.T) {
	cc, err := LoadCityCodes(writeCityCodeCSV(t))
	if err != nil {
		t.Fatalf("LoadCityCodes() failed: %v", err)
	}

	// First entry wins; 东城区 must not shadow 北京.
	if got := cc.NameByCode("010"); got != "北京" {
		t.Errorf("NameByCode(010) = %q, want 北京", got)
	}
	if got := cc.NameByCode("021"); got != "上海" {
		t.Errorf("NameByCode(021) = %q, want 上海", got)
	}
}

func TestNameByCode_Alternates(t *testing.T) {
	cc, err := LoadCityCodes(writeCityCodeCSV(t))
	if err != nil {
		t.Fatal(err)
	}

	// Leading zero dropped by the API.
	if got := cc.NameByCode("10"); got != "北京" {
		t.Errorf("NameByCode(10) = %q, want 北京", got)
	}
	// Leading zero added.
	if got := cc.NameByCode("0771"); got != "南宁" {
		t.Errorf("NameByCode(0771) = %q, want 南宁", got)
	}
	// Unknown code yields a placeholder.
	if got := cc.NameByCode("9999"); got != "City9999" {
		t.Errorf("NameByCode(9999) = %q, want City9999", got)
	}
	if got := cc.NameByCode(""); got != "Unknown City" {
		t.Errorf("NameByCode('') = %q", got)
	}
}

func TestCleanRegionName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"北京市", "北京"},
		{"广西壮族自治区", "广西"},
		{"新疆维吾尔自治区", "新疆"},
		{"香港特别行政区", "香港"},
		{"  ", ""},
		{"nan", ""},
	}

	for _, tt := range tests {
		if got := CleanRegionName(tt.in); got != tt.want {
			t.Errorf("CleanRegionName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
