// Package model holds the shared domain types of the transit atlas:
// routes, stops and the derived segment/aggregate records.
package model

// TransitMode distinguishes the two collected networks.
type TransitMode string

const (
	ModeBus   TransitMode = "bus"
	ModeMetro TransitMode = "metro"
)

// Route represents a single collected transit line in one direction.
type Route struct {
	NameCN string `json:"route_name_cn" csv:"route_name_cn"`
	NameEN string `json:"route_name_en" csv:"route_name_en"`
	ID     string `json:"route_id" csv:"route_id"`

	CityCode string `json:"city_code" csv:"city_code"`
	CityCN   string `json:"city_name_cn" csv:"city_name_cn"`
	CityEN   string `json:"city_name_en" csv:"city_name_en"`

	// Type is the provider's Chinese type label, e.g. 普通公交 or 地铁.
	Type string `json:"route_type" csv:"route_type"`

	CompanyCN   string `json:"company_cn" csv:"company_cn"`
	CompanyEN   string `json:"company_en" csv:"company_en"`
	StartStopCN string `json:"start_stop_cn" csv:"start_stop_cn"`
	StartStopEN string `json:"start_stop_en" csv:"start_stop_en"`
	EndStopCN   string `json:"end_stop_cn" csv:"end_stop_cn"`
	EndStopEN   string `json:"end_stop_en" csv:"end_stop_en"`

	// DistanceKM is the provider-reported line length.
	DistanceKM float64 `json:"distance" csv:"distance"`

	// Operational metadata, kept as provider strings (often empty).
	StartTime  string `json:"start_time" csv:"start_time"`
	EndTime    string `json:"end_time" csv:"end_time"`
	TimeDesc   string `json:"timedesc" csv:"timedesc"`
	Loop       string `json:"loop" csv:"loop"`
	Status     string `json:"status" csv:"status"`
	BasicPrice string `json:"basic_price" csv:"basic_price"`
	TotalPrice string `json:"total_price" csv:"total_price"`

	// Geometry is the polyline in WGS84, ordered along the route.
	Geometry []Coordinate `json:"coordinates" csv:"-"`
	Stops    []Stop       `json:"stops" csv:"-"`
}

// Coordinate is a WGS84 lng/lat pair.
type Coordinate struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Stop represents a stop or station on a route.
type Stop struct {
	NameCN   string  `json:"name" csv:"name_cn"`
	NameEN   string  `json:"name_en" csv:"name_en"`
	ID       string  `json:"id" csv:"stop_id"`
	UniqueID string  `json:"stop_unique_id" csv:"stop_unique_id"`
	Lng      float64 `json:"lng" csv:"longitude"`
	Lat      float64 `json:"lat" csv:"latitude"`
	Sequence int     `json:"sequence" csv:"sequence"`

	RouteCN  string `json:"route_cn,omitempty" csv:"route_cn"`
	RouteEN  string `json:"route_en,omitempty" csv:"route_en"`
	RouteID  string `json:"route_id,omitempty" csv:"route_id"`
	CityCode string `json:"city_code,omitempty" csv:"city_code"`
	CityCN   string `json:"city_cn,omitempty" csv:"city_cn"`
	CityEN   string `json:"city_en,omitempty" csv:"city_en"`
}

// Segment is the piece of a route between two consecutive stops.
type Segment struct {
	StartNameCN string `json:"s_stop_cn"`
	StartNameEN string `json:"s_stop_en"`
	StartStopID string `json:"s_stopid"`
	EndNameCN   string `json:"e_stop_cn"`
	EndNameEN   string `json:"e_stop_en"`
	EndStopID   string `json:"e_stopid"`

	// DistanceKM is the along-line distance, 3 decimal places.
	DistanceKM float64 `json:"distance"`
	// Routes counts how many routes share this stop pair after aggregation.
	Routes int `json:"num"`

	CityCN string `json:"city_cn"`
	CityEN string `json:"city_en"`

	Geometry []Coordinate `json:"geometry"`
}

// UniqueStop is a deduplicated stop with usage statistics.
type UniqueStop struct {
	NameCN string  `json:"stop_cn"`
	NameEN string  `json:"stop_en"`
	ID     string  `json:"stop_id"`
	Routes int     `json:"num"`
	CityCN string  `json:"city_cn"`
	CityEN string  `json:"city_en"`
	Lng    float64 `json:"lng"`
	Lat    float64 `json:"lat"`
}

// City describes one entry of the configured city list. Slug is the
// subdomain used by the route-inventory site, e.g. "beijing".
type City struct {
	Slug   string `json:"city_simple" csv:"city_simple"`
	NameCN string `json:"city_cn" csv:"city_cn"`
}

// DisplayName returns the best available route name.
// Priority: NameEN > NameCN > ID.
func (r *Route) DisplayName() string {
	if r.NameEN != "" {
		return r.NameEN
	}
	if r.NameCN != "" {
		return r.NameCN
	}
	return r.ID
}
