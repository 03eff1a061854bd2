package pinyin

import "testing"

func TestRomanize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "City", in: "北京", want: "Bei Jing"},
		{name: "MixedDigits", in: "1号线", want: "1 Hao Xian"},
		{name: "LatinPassthrough", in: "BRT快线", want: "Brt Kuai Xian"},
		{name: "Empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Romanize(tt.in); got != tt.want {
				t.Errorf("Romanize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanCityName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"北京市", "北京"},
		{"内蒙古自治区", "内蒙古"},
		{"延边朝鲜族自治州", "延边朝鲜族"},
		{"香港特别行政区", "香港"},
		{"阿拉善盟", "阿拉善"},
		{"上海", "上海"},
		// Single-char suffix-only strings stay intact.
		{"市", "市"},
	}

	for _, tt := range tests {
		if got := CleanCityName(tt.in); got != tt.want {
			t.Errorf("CleanCityName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCityEN(t *testing.T) {
	if got := CityEN("北京市"); got != "Bei Jing" {
		t.Errorf("CityEN(北京市) = %q, want 'Bei Jing'", got)
	}
}

func TestCitySlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"北京市", "beijing"},
		{"石家庄市", "shijiazhuang"},
		{"Hong Kong", "hongkong"},
		{"上海", "shanghai"},
	}

	for _, tt := range tests {
		if got := CitySlug(tt.in); got != tt.want {
			t.Errorf("CitySlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bei jing", "Bei Jing"},
		{"SHANG hai", "Shang Hai"},
		{"1 hao xian", "1 Hao Xian"},
		{"  spaced   out ", "Spaced Out"},
	}

	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFolder(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`Xi'an`, `Xi'an`},
		{`A<B>C:D"E/F\G|H?I*J`, "ABCDEFGHIJ"},
		{" Bei Jing. ", "Bei Jing"},
	}

	for _, tt := range tests {
		if got := SanitizeFolder(tt.in); got != tt.want {
			t.Errorf("SanitizeFolder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
