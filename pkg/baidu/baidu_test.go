package baidu

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"transitatlas/pkg/cache"
	"transitatlas/pkg/db"
	"transitatlas/pkg/request"
	"transitatlas/pkg/tracker"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	svr := httptest.NewServer(handler)
	t.Cleanup(svr.Close)

	d, err := db.Init(filepath.Join(t.TempDir(), "baidu_test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })

	c := New(request.New(cache.NewSQLiteCache(d), tracker.New()), "test-ak")
	c.baseURL = svr.URL
	return c
}

func TestGeocode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ak"); got != "test-ak" {
			t.Errorf("ak = %q", got)
		}
		if got := r.URL.Query().Get("ret_coordtype"); got != "gcj02ll" {
			t.Errorf("ret_coordtype = %q, want gcj02ll", got)
		}
		w.Write([]byte(`{"status":0,"result":{"location":{"lng":116.403963,"lat":39.915119}}}`))
	}))

	lng, lat, err := c.Geocode(context.Background(), "天安门", "北京")
	if err != nil {
		t.Fatalf("Geocode() failed: %v", err)
	}
	if math.Abs(lng-116.403963) > 1e-9 || math.Abs(lat-39.915119) > 1e-9 {
		t.Errorf("got %v, %v", lng, lat)
	}
}

func TestGeocode_APIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":240,"msg":"APP 服务被禁用"}`))
	}))

	if _, _, err := c.Geocode(context.Background(), "天安门", ""); err == nil {
		t.Fatal("expected error for non-zero status")
	}
}
