// Package lines8684 scrapes route inventories from 8684.cn: per-city bus
// route names and operational metro lines. These inventories drive the
// keyword queries against the AMap API.
package lines8684

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"transitatlas/pkg/request"
)

// metroLineKeywords identify rail lines among arbitrary link texts.
var metroLineKeywords = []string{
	"号线", "地铁", "轨道", "城际", "有轨电车", "无轨电车", "轻轨", "APM", "线", "环",
}

// Scraper fetches route lists from 8684.cn.
type Scraper struct {
	http *request.Client

	busBaseURL   string // format string with one %s for the city slug
	metroBaseURL string // format string with one %s for the city slug
}

// New creates a Scraper.
func New(http *request.Client) *Scraper {
	return &Scraper{
		http:         http,
		busBaseURL:   "https://%s.8684.cn",
		metroBaseURL: "https://dt.8684.cn/%s",
	}
}

func (s *Scraper) headers() map[string]string {
	return map[string]string{
		"User-Agent":      request.BrowserUserAgent(),
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
	}
}

// BusRoutes returns all bus route names listed for a city slug.
// The index page links one sub-page per route-name prefix; each sub-page
// lists the routes themselves.
func (s *Scraper) BusRoutes(ctx context.Context, citySlug string) ([]string, error) {
	base := fmt.Sprintf(s.busBaseURL, citySlug)

	body, err := s.http.GetWithHeaders(ctx, base+"/list1", s.headers(),
		"8684:bus:index:"+citySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch route index for %s: %w", citySlug, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse route index for %s: %w", citySlug, err)
	}

	var pages []string
	doc.Find("div.tooltip-body.cc-content-tooltip div.tooltip-inner a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			pages = append(pages, href)
		}
	})
	if len(pages) == 0 {
		return nil, fmt.Errorf("route index structure changed for %s", citySlug)
	}

	slog.Info("route index pages found", "city", citySlug, "pages", len(pages))

	var routes []string
	failed := 0
	for _, page := range pages {
		names, err := s.busPage(ctx, base, citySlug, page)
		if err != nil {
			slog.Warn("route page failed", "city", citySlug, "page", page, "error", err)
			failed++
			continue
		}
		routes = append(routes, names...)
	}

	slog.Info("bus routes scraped", "city", citySlug, "routes", len(routes), "failed_pages", failed)
	return routes, nil
}

func (s *Scraper) busPage(ctx context.Context, base, citySlug, page string) ([]string, error) {
	body, err := s.http.GetWithHeaders(ctx, base+page, s.headers(),
		"8684:bus:"+citySlug+":"+page)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var names []string
	doc.Find("div.list.clearfix a").Each(func(_ int, a *goquery.Selection) {
		if text := strings.TrimSpace(a.Text()); text != "" {
			names = append(names, text)
		}
	})
	if names == nil {
		return nil, fmt.Errorf("page structure changed")
	}
	return names, nil
}

// MetroLines returns the operational metro lines for a city slug.
// Lines marked 未开通 (not yet opened) are skipped.
func (s *Scraper) MetroLines(ctx context.Context, citySlug string) ([]string, error) {
	u := fmt.Sprintf(s.metroBaseURL, citySlug)

	body, err := s.http.GetWithHeaders(ctx, u, s.headers(), "8684:metro:"+citySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metro page for %s: %w", citySlug, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse metro page for %s: %w", citySlug, err)
	}

	container := doc.Find("ul.ib-mn.rl-mn.ib-box")
	if container.Length() == 0 {
		// Layout drifts; try looser selectors before giving up.
		for _, sel := range []string{"ul.ib-mn", "div.ib-mn"} {
			container = doc.Find(sel)
			if container.Length() > 0 {
				break
			}
		}
	}
	if container.Length() == 0 {
		return nil, fmt.Errorf("metro page structure changed for %s", citySlug)
	}

	var lines []string
	skipped := 0
	container.First().Find("li").Each(func(_ int, li *goquery.Selection) {
		link := li.Find("a.line-a").First()
		if link.Length() == 0 {
			link = li.Find("a").First()
		}
		name := strings.TrimSpace(link.Text())
		if name == "" || !isMetroLineName(name) {
			return
		}

		if strings.Contains(li.Find("font[color=red]").Text(), "未开通") {
			slog.Debug("skipping unopened line", "city", citySlug, "line", name)
			skipped++
			return
		}
		lines = append(lines, name)
	})

	slog.Info("metro lines scraped", "city", citySlug, "operational", len(lines), "unopened", skipped)
	return lines, nil
}

func isMetroLineName(name string) bool {
	for _, kw := range metroLineKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
