package amap

import "testing"

func TestIsMetroType(t *testing.T) {
	for _, typ := range []string{"地铁", "轻轨", "有轨电车", "无轨电车", "磁悬浮列车"} {
		if !IsMetroType(typ) {
			t.Errorf("%s should be a metro type", typ)
		}
	}
	for _, typ := range []string{"普通公交", "快速公交", ""} {
		if IsMetroType(typ) {
			t.Errorf("%s should not be a metro type", typ)
		}
	}
}

func TestMetroKeywords(t *testing.T) {
	kws := MetroKeywords("北京", "1号线")
	want := []string{"北京地铁1号线", "地铁1号线", "北京1号线", "1号线"}

	if len(kws) != len(want) {
		t.Fatalf("got %d keywords, want %d", len(kws), len(want))
	}
	for i := range want {
		if kws[i] != want[i] {
			t.Errorf("keyword[%d] = %q, want %q", i, kws[i], want[i])
		}
	}
}

func TestIsLineMatch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		api    string
		want   bool
	}{
		{name: "DirectContainment", search: "1号线", api: "地铁1号线(环球度假区--古城)", want: true},
		{name: "SuffixStripped", search: "八通线号线", api: "八通线(土桥--四惠)", want: true},
		{name: "TramNumber", search: "有轨电车T1线", api: "T1线(广兰路--灵岩山)", want: true},
		{name: "TramNumberMismatch", search: "T1线", api: "T2线(某站--某站)", want: false},
		{name: "NoMatch", search: "5号线", api: "机场线(东直门--T3航站楼)", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLineMatch(tt.search, tt.api); got != tt.want {
				t.Errorf("IsLineMatch(%q, %q) = %v, want %v", tt.search, tt.api, got, tt.want)
			}
		})
	}
}
