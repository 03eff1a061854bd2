// Package amap queries the AMap (高德) v3 bus/linename web service and
// normalizes its responses into WGS84 route records.
package amap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"transitatlas/pkg/coord"
	"transitatlas/pkg/logging"
	"transitatlas/pkg/model"
	"transitatlas/pkg/request"
)

const linenameURL = "https://restapi.amap.com/v3/bus/linename"

// Client queries the AMap web service.
type Client struct {
	http       *request.Client
	key        string
	codes      *CityCodes
	baseURL    string
	geocodeURL string
}

// New creates a Client. codes may be nil; city names then fall back to
// the raw city code.
func New(http *request.Client, key string, codes *CityCodes) *Client {
	return &Client{http: http, key: key, codes: codes, baseURL: linenameURL, geocodeURL: geocodeURL}
}

// flexString tolerates the API's habit of returning [] instead of ""
// for absent string fields, and numbers for numeric ones.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	switch {
	case len(data) == 0:
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case data[0] == '[', data[0] == '{':
		*f = ""
	case string(data) == "null":
		*f = ""
	default:
		*f = flexString(data)
	}
	return nil
}

func (f flexString) String() string { return string(f) }

type linenameResponse struct {
	Status   flexString `json:"status"`
	Info     flexString `json:"info"`
	Buslines []busline  `json:"buslines"`
}

type busline struct {
	ID         flexString `json:"id"`
	Name       flexString `json:"name"`
	Type       flexString `json:"type"`
	CityCode   flexString `json:"citycode"`
	Company    flexString `json:"company"`
	Polyline   flexString `json:"polyline"`
	StartStop  flexString `json:"start_stop"`
	EndStop    flexString `json:"end_stop"`
	Distance   flexString `json:"distance"`
	StartTime  flexString `json:"start_time"`
	EndTime    flexString `json:"end_time"`
	TimeDesc   flexString `json:"timedesc"`
	Loop       flexString `json:"loop"`
	Status     flexString `json:"status"`
	BasicPrice flexString `json:"basic_price"`
	TotalPrice flexString `json:"total_price"`
	Busstops   []busstop  `json:"busstops"`
}

type busstop struct {
	Name     flexString `json:"name"`
	ID       flexString `json:"id"`
	Location flexString `json:"location"`
	Sequence flexString `json:"sequence"`
}

// SearchRoutes queries linename for a keyword within a city and returns
// all matching routes with WGS84 geometry.
func (c *Client) SearchRoutes(ctx context.Context, city, keyword string) ([]model.Route, error) {
	q := url.Values{}
	q.Set("s", "rsv3")
	q.Set("extensions", "all")
	q.Set("key", c.key)
	q.Set("output", "json")
	q.Set("city", city)
	q.Set("offset", "0")
	q.Set("keywords", keyword)
	q.Set("platform", "JS")

	u := c.baseURL + "?" + q.Encode()
	cacheKey := fmt.Sprintf("amap:linename:%s:%s", city, keyword)
	logging.TraceDefault("linename query", "city", city, "keyword", keyword)

	headers := map[string]string{
		"Accept":  "application/json, text/javascript, */*; q=0.01",
		"Referer": "https://lbs.amap.com/",
	}

	body, err := c.http.GetWithHeaders(ctx, u, headers, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("linename request failed: %w", err)
	}

	var resp linenameResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("linename decode failed: %w", err)
	}

	if resp.Status.String() != "1" {
		return nil, fmt.Errorf("linename api error: %s", resp.Info)
	}

	routes := make([]model.Route, 0, len(resp.Buslines))
	for i := range resp.Buslines {
		routes = append(routes, c.toRoute(&resp.Buslines[i]))
	}
	return routes, nil
}

// toRoute converts a raw busline to the domain model, converting all
// coordinates from GCJ02 to WGS84.
func (c *Client) toRoute(b *busline) model.Route {
	cityCode := b.CityCode.String()
	cityCN := cityCode
	if c.codes != nil {
		cityCN = c.codes.NameByCode(cityCode)
	}

	r := model.Route{
		NameCN:      b.Name.String(),
		ID:          b.ID.String(),
		CityCode:    cityCode,
		CityCN:      cityCN,
		Type:        b.Type.String(),
		CompanyCN:   b.Company.String(),
		StartStopCN: b.StartStop.String(),
		EndStopCN:   b.EndStop.String(),
		DistanceKM:  parseFloat(b.Distance.String()),
		StartTime:   b.StartTime.String(),
		EndTime:     b.EndTime.String(),
		TimeDesc:    b.TimeDesc.String(),
		Loop:        b.Loop.String(),
		Status:      b.Status.String(),
		BasicPrice:  b.BasicPrice.String(),
		TotalPrice:  b.TotalPrice.String(),
		Geometry:    ParsePolyline(b.Polyline.String()),
	}

	for i, s := range b.Busstops {
		lng, lat, ok := parseLocation(s.Location.String())
		if !ok {
			slog.Warn("stop without location", "route", r.NameCN, "stop", s.Name)
			continue
		}
		wLng, wLat := coord.GCJ02ToWGS84(lng, lat)

		seq := int(parseFloat(s.Sequence.String()))
		if seq == 0 {
			seq = i + 1
		}

		r.Stops = append(r.Stops, model.Stop{
			NameCN:   s.Name.String(),
			ID:       s.ID.String(),
			UniqueID: s.ID.String(),
			Lng:      wLng,
			Lat:      wLat,
			Sequence: seq,
			RouteCN:  r.NameCN,
			RouteID:  r.ID,
			CityCode: cityCode,
			CityCN:   cityCN,
		})
	}

	return r
}

// ParsePolyline decodes AMap's "lng,lat;lng,lat" polyline format and
// converts each vertex from GCJ02 to WGS84. Malformed pairs are skipped.
func ParsePolyline(polyline string) []model.Coordinate {
	if polyline == "" {
		return nil
	}

	pairs := strings.Split(polyline, ";")
	coords := make([]model.Coordinate, 0, len(pairs))
	for _, pair := range pairs {
		if !strings.Contains(pair, ",") {
			continue
		}
		lng, lat, ok := parseLocation(pair)
		if !ok {
			continue
		}
		wLng, wLat := coord.GCJ02ToWGS84(lng, lat)
		coords = append(coords, model.Coordinate{Lng: wLng, Lat: wLat})
	}
	return coords
}

func parseLocation(loc string) (float64, float64, bool) {
	parts := strings.SplitN(loc, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lng, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lng, lat, true
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
