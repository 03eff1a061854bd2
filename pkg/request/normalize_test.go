package request

import "testing"

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{"restapi.amap.com", "amap"},
		{"webapi.amap.com", "amap"},
		{"beijing.8684.cn", "8684"},
		{"dt.8684.cn", "8684"},
		{"8684.cn", "8684"},
		{"api.map.baidu.com", "baidu"},
		{"api.cognitive.microsofttranslator.com", "azure"},
		{"other.com", "other.com"},
	}

	for _, tt := range tests {
		got := normalizeProvider(tt.host)
		if got != tt.expected {
			t.Errorf("normalizeProvider(%q) = %q; want %q", tt.host, got, tt.expected)
		}
	}
}

func TestBrowserUserAgent(t *testing.T) {
	ua := BrowserUserAgent()
	if ua == "" {
		t.Fatal("BrowserUserAgent() returned empty string")
	}
	if ua == defaultUserAgent {
		t.Error("browser UA must differ from the default API UA")
	}
}
