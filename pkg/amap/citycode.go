package amap

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"transitatlas/pkg/pinyin"
)

// CityCodes maps AMap city codes to cleaned Chinese city names, loaded
// from the published adcode/citycode table.
type CityCodes struct {
	byCode map[string]string
}

type cityCodeRow struct {
	NameCN   string `csv:"中文名"`
	AdCode   string `csv:"adcode"`
	CityCode string `csv:"citycode"`
}

// specialRegions maps autonomous regions and SARs to their common short
// names. Plain suffix stripping mangles these (广西壮族自治区 -> 广西壮族).
var specialRegions = map[string]string{
	"香港特别行政区":  "香港",
	"澳门特别行政区":  "澳门",
	"内蒙古自治区":   "内蒙古",
	"广西壮族自治区":  "广西",
	"西藏自治区":    "西藏",
	"宁夏回族自治区":  "宁夏",
	"新疆维吾尔自治区": "新疆",
}

// LoadCityCodes reads the AMap adcode/citycode CSV.
func LoadCityCodes(path string) (*CityCodes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read city code table: %w", err)
	}

	var rows []cityCodeRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse city code table: %w", err)
	}

	cc := &CityCodes{byCode: make(map[string]string, len(rows))}
	for _, row := range rows {
		code := strings.TrimSpace(row.CityCode)
		if code == "" || code == "\\N" || code == "nan" || code == "None" {
			continue
		}
		name := CleanRegionName(row.NameCN)
		if name == "" {
			continue
		}
		// First entry wins: the table lists the prefecture before its districts.
		if _, exists := cc.byCode[code]; !exists {
			cc.byCode[code] = name
		}
	}

	slog.Info("city code table loaded", "entries", len(cc.byCode))
	return cc, nil
}

// NameByCode resolves a city code to its Chinese name. Codes with and
// without a leading zero are tried, matching how the API sometimes drops
// it. Unknown codes yield a synthetic "City<code>" placeholder.
func (c *CityCodes) NameByCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown City"
	}

	if name, ok := c.byCode[code]; ok {
		return name
	}

	var alternates []string
	if strings.HasPrefix(code, "0") {
		alternates = append(alternates, strings.TrimLeft(code, "0"))
	} else if len(code) <= 3 {
		alternates = append(alternates, "0"+code)
	}

	for _, alt := range alternates {
		if name, ok := c.byCode[alt]; ok {
			slog.Debug("alternative city code mapping", "code", code, "alt", alt, "city", name)
			return name
		}
	}

	slog.Warn("city code not found in mapping", "code", code)
	return "City" + code
}

// Len returns the number of mapped codes.
func (c *CityCodes) Len() int { return len(c.byCode) }

// CleanRegionName strips administrative suffixes and repairs special
// region names: 北京市 -> 北京, 广西壮族自治区 -> 广西.
func CleanRegionName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "nan" {
		return ""
	}

	for prefix, short := range specialRegions {
		if strings.HasPrefix(name, prefix) {
			return short
		}
	}
	return pinyin.CleanCityName(name)
}
