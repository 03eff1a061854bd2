// Package pinyin romanizes Chinese names. It backs the translation
// fallback and the per-city folder naming.
package pinyin

import (
	"strings"
	"unicode"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// adminSuffixes are stripped from administrative names before romanization,
// longest first so 自治区 wins over 区.
var adminSuffixes = []string{
	"特别行政区",
	"自治区",
	"自治州",
	"自治县",
	"地区",
	"新区",
	"林区",
	"市",
	"盟",
	"省",
}

// folderSanitizer drops characters that are invalid in folder names.
var invalidFolderChars = `<>:"/\|?*`

// Romanize converts a Chinese string to space-separated Title Case pinyin.
// Non-Chinese runes (digits, latin letters) are passed through, so mixed
// names like "1号线" become "1 Hao Xian".
func Romanize(s string) string {
	args := gopinyin.NewArgs()

	var words []string
	var latin strings.Builder

	flushLatin := func() {
		if latin.Len() > 0 {
			words = append(words, latin.String())
			latin.Reset()
		}
	}

	for _, r := range s {
		py := gopinyin.SinglePinyin(r, args)
		if len(py) == 0 {
			if unicode.IsSpace(r) {
				flushLatin()
				continue
			}
			latin.WriteRune(r)
			continue
		}
		flushLatin()
		words = append(words, py[0])
	}
	flushLatin()

	return TitleCase(strings.Join(words, " "))
}

// CleanCityName strips the administrative suffix from a Chinese city or
// region name: 北京市 -> 北京, 内蒙古自治区 -> 内蒙古.
func CleanCityName(name string) string {
	for _, suffix := range adminSuffixes {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// CityEN returns the English folder name for a Chinese city: suffix
// stripped, romanized, Title Case.
func CityEN(nameCN string) string {
	return Romanize(CleanCityName(nameCN))
}

// CitySlug returns the lowercase joined romanization used in site URLs:
// 北京市 -> "beijing". Pure-ASCII input is just lowercased.
func CitySlug(nameCN string) string {
	name := CleanCityName(nameCN)

	ascii := true
	for _, r := range name {
		if r > unicode.MaxASCII {
			ascii = false
			break
		}
	}
	if ascii {
		return strings.ToLower(strings.Join(strings.Fields(name), ""))
	}
	return strings.ToLower(strings.ReplaceAll(Romanize(name), " ", ""))
}

// TitleCase uppercases the first letter of each space-separated word and
// lowercases the rest.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		for j, r := range runes {
			if unicode.IsLetter(r) {
				runes[j] = unicode.ToUpper(r)
				break
			}
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// SanitizeFolder removes characters that are invalid in directory names
// and trims surrounding whitespace and dots.
func SanitizeFolder(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(invalidFolderChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), " .")
}
