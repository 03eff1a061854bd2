package amap

import (
	"regexp"
	"strings"
)

// AllowedMetroTypes are the provider type labels accepted as rail transit.
var AllowedMetroTypes = []string{"地铁", "轻轨", "有轨电车", "无轨电车", "磁悬浮列车"}

// IsMetroType reports whether the provider type label is rail transit.
func IsMetroType(t string) bool {
	for _, allowed := range AllowedMetroTypes {
		if t == allowed {
			return true
		}
	}
	return false
}

// MetroKeywords returns the search keyword candidates for a metro line,
// most specific first. The linename API often misses bare line names, so
// each candidate is tried until one matches.
func MetroKeywords(city, line string) []string {
	return []string{
		city + "地铁" + line,
		"地铁" + line,
		city + line,
		line,
	}
}

var tLineNum = regexp.MustCompile(`T(\d+)`)

// IsLineMatch reports whether a line name returned by the API corresponds
// to the line that was searched for.
func IsLineMatch(search, api string) bool {
	searchLower := strings.ToLower(search)
	apiLower := strings.ToLower(api)

	// Direct containment
	if strings.Contains(apiLower, searchLower) {
		return true
	}

	// Match without the 号线 suffix
	if stripped := strings.ReplaceAll(searchLower, "号线", ""); stripped != "" &&
		strings.Contains(apiLower, stripped) {
		return true
	}

	// Any multi-char part of the search term
	for _, part := range strings.Fields(searchLower) {
		if len([]rune(part)) > 1 && strings.Contains(apiLower, part) {
			return true
		}
	}

	// Tram lines named T1, T2, ... match on the number
	searchT := tLineNum.FindStringSubmatch(strings.ToUpper(search))
	apiT := tLineNum.FindStringSubmatch(strings.ToUpper(api))
	if searchT != nil && apiT != nil && searchT[1] == apiT[1] {
		return true
	}

	return false
}
