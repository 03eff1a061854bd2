// Package baidu queries the Baidu Maps geocoding v3 API. Results are
// requested in GCJ02 (ret_coordtype=gcj02ll) so they line up with the
// AMap geocoder without going through the lossy BD09 inverse.
package baidu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"transitatlas/pkg/request"
)

const geocodeURL = "https://api.map.baidu.com/geocoding/v3/"

// Client queries the Baidu web service.
type Client struct {
	http    *request.Client
	key     string
	baseURL string
}

// New creates a Client.
func New(http *request.Client, key string) *Client {
	return &Client{http: http, key: key, baseURL: geocodeURL}
}

type geocodeResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
	Result struct {
		Location struct {
			Lng float64 `json:"lng"`
			Lat float64 `json:"lat"`
		} `json:"location"`
	} `json:"result"`
}

// Geocode resolves a Chinese address to GCJ02 coordinates.
func (c *Client) Geocode(ctx context.Context, address, city string) (lng, lat float64, err error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("output", "json")
	q.Set("ret_coordtype", "gcj02ll")
	q.Set("ak", c.key)
	if city != "" {
		q.Set("city", city)
	}

	u := c.baseURL + "?" + q.Encode()
	cacheKey := fmt.Sprintf("baidu:geocode:%s:%s", city, address)

	body, err := c.http.Get(ctx, u, cacheKey)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request failed: %w", err)
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, 0, fmt.Errorf("geocode decode failed: %w", err)
	}
	if resp.Status != 0 {
		return 0, 0, fmt.Errorf("geocode api error %d: %s", resp.Status, resp.Msg)
	}
	return resp.Result.Location.Lng, resp.Result.Location.Lat, nil
}
