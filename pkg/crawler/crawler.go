// Package crawler drives route collection: it scrapes per-city route
// inventories from 8684.cn, resolves each route against the AMap
// linename API, fills in English names and writes the per-city CSV
// layout that the downstream stages consume.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"transitatlas/pkg/amap"
	"transitatlas/pkg/config"
	"transitatlas/pkg/db"
	"transitatlas/pkg/lines8684"
	"transitatlas/pkg/model"
	"transitatlas/pkg/pinyin"
	"transitatlas/pkg/tracker"
	"transitatlas/pkg/translate"
)

// Crawler collects one mode (bus or metro) for a list of cities.
type Crawler struct {
	amap    *amap.Client
	scraper *lines8684.Scraper
	trans   *translate.Translator
	db      *db.DB
	track   *tracker.Tracker
	cfg     config.CrawlerConfig
	writer  *Writer
}

// New creates a Crawler.
func New(client *amap.Client, scraper *lines8684.Scraper, trans *translate.Translator,
	d *db.DB, track *tracker.Tracker, cfg config.CrawlerConfig) *Crawler {
	return &Crawler{
		amap:    client,
		scraper: scraper,
		trans:   trans,
		db:      d,
		track:   track,
		cfg:     cfg,
		writer:  NewWriter(cfg.OutputDir, cfg.Mode),
	}
}

// Stats summarizes one crawl run.
type Stats struct {
	Cities       int
	Routes       int
	FailedCities int
}

// Run crawls every configured city and records the session in sqlite.
func (c *Crawler) Run(ctx context.Context) (Stats, error) {
	mode := model.TransitMode(c.cfg.Mode)
	if mode != model.ModeBus && mode != model.ModeMetro {
		return Stats{}, fmt.Errorf("unknown crawl mode %q", c.cfg.Mode)
	}

	cities, err := LoadCities(c.cfg.CityFile)
	if err != nil {
		return Stats{}, err
	}

	session := uuid.NewString()
	if err := c.db.StartSession(ctx, session, c.cfg.Mode); err != nil {
		return Stats{}, err
	}
	slog.Info("crawl started", "session", session, "mode", c.cfg.Mode, "cities", len(cities))

	// An interrupted incremental run resumes after the last city it
	// finished; the position is cleared once a run completes.
	start := 0
	if c.cfg.Incremental {
		last, err := c.db.GetState(ctx, positionKey(c.cfg.Mode))
		if err != nil {
			slog.Warn("failed to read crawl position", "error", err)
		} else if last != "" {
			start = resumeIndex(cities, last)
			if start > 0 {
				slog.Info("resuming interrupted crawl", "after", last, "skipped_cities", start)
			}
		}
	}

	var stats Stats
	for _, city := range cities[start:] {
		if ctx.Err() != nil {
			break
		}
		n, err := c.crawlCity(ctx, session, city)
		if err != nil {
			slog.Error("city failed", "city", city.NameCN, "error", err)
			stats.FailedCities++
			continue
		}
		stats.Cities++
		stats.Routes += n
		if err := c.db.SetState(ctx, positionKey(c.cfg.Mode), city.NameCN); err != nil {
			slog.Warn("failed to record crawl position", "city", city.NameCN, "error", err)
		}
	}

	if ctx.Err() == nil {
		if err := c.db.SetState(context.Background(), positionKey(c.cfg.Mode), ""); err != nil {
			slog.Warn("failed to clear crawl position", "error", err)
		}
	}
	if err := c.db.FinishSession(ctx, session, stats.Cities, stats.Routes); err != nil {
		slog.Warn("failed to close crawl session", "session", session, "error", err)
	}
	c.track.LogSummary()
	slog.Info("crawl finished", "session", session,
		"cities", stats.Cities, "routes", stats.Routes, "failed_cities", stats.FailedCities)
	return stats, ctx.Err()
}

// positionKey names the persisted crawl position for one mode.
func positionKey(mode string) string {
	return "last_city:" + mode
}

// resumeIndex returns where to restart after an interrupted run: the
// index following the last completed city, or 0 when that city is no
// longer in the list.
func resumeIndex(cities []model.City, last string) int {
	if last == "" {
		return 0
	}
	for i, c := range cities {
		if c.NameCN == last {
			return i + 1
		}
	}
	return 0
}

func (c *Crawler) crawlCity(ctx context.Context, session string, city model.City) (int, error) {
	slog.Info("crawling city", "city", city.NameCN, "slug", city.Slug, "mode", c.cfg.Mode)

	var routes []model.Route
	var err error
	if model.TransitMode(c.cfg.Mode) == model.ModeMetro {
		routes, err = c.metroRoutes(ctx, city)
	} else {
		routes, err = c.busRoutes(ctx, city)
	}
	if err != nil {
		return 0, err
	}
	if len(routes) == 0 {
		slog.Warn("no new routes collected", "city", city.NameCN)
		return 0, nil
	}

	c.translateRoutes(ctx, routes)

	stations := MergeStops(collectStops(routes), float64(c.cfg.MergeRadius))
	if err := c.writer.WriteCity(routes, stations); err != nil {
		return 0, err
	}

	for i := range routes {
		r := &routes[i]
		if err := c.db.MarkRouteCrawled(ctx, r.ID, r.CityCode, c.cfg.Mode, r.NameCN, session); err != nil {
			slog.Warn("failed to record route", "route", r.NameCN, "error", err)
		}
	}
	return len(routes), nil
}

// busRoutes resolves every scraped route name against the API. Results
// that are rail transit are left for a metro run.
func (c *Crawler) busRoutes(ctx context.Context, city model.City) ([]model.Route, error) {
	names, err := c.scraper.BusRoutes(ctx, city.Slug)
	if err != nil {
		return nil, err
	}

	filter := c.newRouteFilter()
	var routes []model.Route
	for _, name := range names {
		if ctx.Err() != nil {
			return routes, ctx.Err()
		}

		found, err := c.amap.SearchRoutes(ctx, city.NameCN, name)
		if err != nil {
			slog.Warn("route query failed", "city", city.NameCN, "route", name, "error", err)
			c.pause(ctx)
			continue
		}

		for i := range found {
			r := &found[i]
			if !strings.Contains(r.NameCN, strings.TrimSpace(name)) {
				continue
			}
			if amap.IsMetroType(r.Type) {
				continue
			}
			if filter.admit(ctx, r) {
				routes = append(routes, *r)
			}
		}
		c.pause(ctx)
	}
	return routes, nil
}

// metroRoutes resolves every operational line. The linename API is
// erratic for rail, so keyword candidates are tried from most to least
// specific until one produces a matching line.
func (c *Crawler) metroRoutes(ctx context.Context, city model.City) ([]model.Route, error) {
	lines, err := c.scraper.MetroLines(ctx, city.Slug)
	if err != nil {
		return nil, err
	}

	cityShort := pinyin.CleanCityName(city.NameCN)
	filter := c.newRouteFilter()
	var routes []model.Route
	for _, line := range lines {
		if ctx.Err() != nil {
			return routes, ctx.Err()
		}

		var matched []model.Route
		for _, keyword := range amap.MetroKeywords(cityShort, line) {
			found, err := c.amap.SearchRoutes(ctx, city.NameCN, keyword)
			if err != nil {
				slog.Debug("metro query failed", "city", city.NameCN, "keyword", keyword, "error", err)
				c.pause(ctx)
				continue
			}
			for i := range found {
				r := &found[i]
				if amap.IsMetroType(r.Type) && amap.IsLineMatch(line, r.NameCN) {
					matched = append(matched, *r)
				}
			}
			if len(matched) > 0 {
				break
			}
			c.pause(ctx)
		}

		if len(matched) == 0 {
			slog.Warn("metro line not found", "city", city.NameCN, "line", line)
			continue
		}
		for i := range matched {
			if filter.admit(ctx, &matched[i]) {
				routes = append(routes, matched[i])
			}
		}
		c.pause(ctx)
	}
	return routes, nil
}

// routeFilter deduplicates results and, on incremental runs, drops
// routes recorded by an earlier session. The crawl history is loaded
// lazily because the city code is only known from the first API result.
type routeFilter struct {
	c     *Crawler
	known map[string]bool
	seen  map[string]bool
}

func (c *Crawler) newRouteFilter() *routeFilter {
	return &routeFilter{c: c, seen: make(map[string]bool)}
}

func (f *routeFilter) admit(ctx context.Context, r *model.Route) bool {
	if r.ID == "" || f.seen[r.ID] {
		return false
	}
	if f.c.cfg.Incremental {
		if f.known == nil {
			ids, err := f.c.db.CrawledRouteIDs(ctx, r.CityCode, f.c.cfg.Mode)
			if err != nil {
				slog.Warn("failed to load crawl history", "city_code", r.CityCode, "error", err)
				ids = map[string]bool{}
			}
			f.known = ids
		}
		if f.known[r.ID] {
			f.seen[r.ID] = true
			return false
		}
	}
	f.seen[r.ID] = true
	return true
}

// translateRoutes fills the English name fields of the routes and their
// stops in one batch, and assigns the stable stop identifiers.
func (c *Crawler) translateRoutes(ctx context.Context, routes []model.Route) {
	var texts []string
	for i := range routes {
		r := &routes[i]
		texts = append(texts, r.NameCN, r.CompanyCN, r.StartStopCN, r.EndStopCN)
		for j := range r.Stops {
			texts = append(texts, r.Stops[j].NameCN)
		}
	}
	names := c.trans.TranslateBatch(ctx, texts)

	for i := range routes {
		r := &routes[i]
		r.NameEN = names[r.NameCN]
		r.CompanyEN = names[r.CompanyCN]
		r.StartStopEN = names[r.StartStopCN]
		r.EndStopEN = names[r.EndStopCN]
		r.CityEN = pinyin.CityEN(r.CityCN)

		for j := range r.Stops {
			s := &r.Stops[j]
			s.NameEN = names[s.NameCN]
			s.RouteEN = r.NameEN
			s.CityEN = r.CityEN
			s.UniqueID = StopID(s.NameCN, s.Lng, s.Lat)
		}
	}
}

func collectStops(routes []model.Route) []model.Stop {
	var stops []model.Stop
	for i := range routes {
		stops = append(stops, routes[i].Stops...)
	}
	return stops
}

// pause sleeps between API lookups so a long crawl stays polite.
func (c *Crawler) pause(ctx context.Context) {
	if c.cfg.Pause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(c.cfg.Pause)):
	}
}
