package lines8684

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"transitatlas/pkg/cache"
	"transitatlas/pkg/db"
	"transitatlas/pkg/request"
	"transitatlas/pkg/tracker"
)

const busIndexHTML = `<html><body>
<div class="tooltip-body cc-content-tooltip">
  <div class="tooltip-inner">
    <a href="/list1">1开头</a>
    <a href="/list2">2开头</a>
  </div>
</div>
</body></html>`

const busPageHTML = `<html><body>
<div class="list clearfix">
  <a href="/x_1lu">1路</a>
  <a href="/x_10lu">10路</a>
  <a href="/x_y1lu">夜1路</a>
</div>
</body></html>`

const metroHTML = `<html><body>
<ul class="ib-mn rl-mn ib-box">
  <li><a class="line-a" href="/bj/line1">1号线</a></li>
  <li><a class="line-a" href="/bj/line2">2号线</a><font color="red">未开通</font></li>
  <li><a class="line-a" href="/bj/apm">APM线</a></li>
  <li><a href="/bj/notice">乘车公告</a></li>
</ul>
</body></html>`

func newTestScraper(t *testing.T, handler http.Handler) (*Scraper, *httptest.Server) {
	t.Helper()
	svr := httptest.NewServer(handler)
	t.Cleanup(svr.Close)

	d, err := db.Init(filepath.Join(t.TempDir(), "scrape_test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })

	s := New(request.New(cache.NewSQLiteCache(d), tracker.New()))
	s.busBaseURL = svr.URL + "/%s"
	s.metroBaseURL = svr.URL + "/dt/%s"
	return s, svr
}

func TestBusRoutes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/beijing/list1", func(w http.ResponseWriter, r *http.Request) {
		// Index page is also the first route page in the real layout;
		// here the index carries the tooltip nav only.
		if _, err := w.Write([]byte(busIndexHTML)); err != nil {
			t.Logf("write failed: %v", err)
		}
	})
	mux.HandleFunc("/beijing/list2", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(busPageHTML)); err != nil {
			t.Logf("write failed: %v", err)
		}
	})

	s, _ := newTestScraper(t, mux)

	// Page /list1 has no route list div and fails; /list2 provides routes.
	routes, err := s.BusRoutes(context.Background(), "beijing")
	if err != nil {
		t.Fatalf("BusRoutes() failed: %v", err)
	}

	want := []string{"1路", "10路", "夜1路"}
	if len(routes) != len(want) {
		t.Fatalf("got %d routes %v, want %d", len(routes), routes, len(want))
	}
	for i := range want {
		if routes[i] != want[i] {
			t.Errorf("route[%d] = %q, want %q", i, routes[i], want[i])
		}
	}
}

func TestBusRoutes_StructureChanged(t *testing.T) {
	s, _ := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`<html><body>nothing here</body></html>`)); err != nil {
			t.Logf("write failed: %v", err)
		}
	}))

	if _, err := s.BusRoutes(context.Background(), "beijing"); err == nil {
		t.Fatal("expected error for changed page structure")
	}
}

func TestMetroLines(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dt/bj", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(metroHTML)); err != nil {
			t.Logf("write failed: %v", err)
		}
	})

	s, _ := newTestScraper(t, mux)

	lines, err := s.MetroLines(context.Background(), "bj")
	if err != nil {
		t.Fatalf("MetroLines() failed: %v", err)
	}

	// 2号线 is unopened, 乘车公告 is not a line.
	want := []string{"1号线", "APM线"}
	if len(lines) != len(want) {
		t.Fatalf("got lines %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestIsMetroLineName(t *testing.T) {
	for _, name := range []string{"1号线", "APM线", "有轨电车T1", "大环"} {
		if !isMetroLineName(name) {
			t.Errorf("%q should be recognized as a metro line", name)
		}
	}
	if isMetroLineName("乘车公告") {
		t.Error("乘车公告 must not be recognized as a metro line")
	}
}
