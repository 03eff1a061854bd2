package amap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

const geocodeURL = "https://restapi.amap.com/v3/geocode/geo"

type geocodeResponse struct {
	Status   flexString `json:"status"`
	Info     flexString `json:"info"`
	Geocodes []struct {
		Location flexString `json:"location"`
	} `json:"geocodes"`
}

// Geocode resolves a Chinese address to GCJ02 coordinates. An optional
// city narrows the search.
func (c *Client) Geocode(ctx context.Context, address, city string) (lng, lat float64, err error) {
	q := url.Values{}
	q.Set("key", c.key)
	q.Set("output", "json")
	q.Set("address", address)
	if city != "" {
		q.Set("city", city)
	}

	u := c.geocodeURL + "?" + q.Encode()
	cacheKey := fmt.Sprintf("amap:geocode:%s:%s", city, address)

	body, err := c.http.Get(ctx, u, cacheKey)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request failed: %w", err)
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, 0, fmt.Errorf("geocode decode failed: %w", err)
	}
	if resp.Status.String() != "1" {
		return 0, 0, fmt.Errorf("geocode api error: %s", resp.Info)
	}
	if len(resp.Geocodes) == 0 {
		return 0, 0, fmt.Errorf("no geocode result for %q", address)
	}

	lng, lat, ok := parseLocation(resp.Geocodes[0].Location.String())
	if !ok {
		return 0, 0, fmt.Errorf("malformed geocode location %q", resp.Geocodes[0].Location)
	}
	return lng, lat, nil
}
