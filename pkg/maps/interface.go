package maps

import "context"

type MapsProvider interface {
	Geocode(ctx context.Context, address string) (*GeocodeResponse, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error)
	GetRouteEstimate(ctx context.Context, request *RouteRequest) (*RouteEstimate, error)
}

type GeocodeResponse struct {
	Results []GeocodeResult `json:"results"`
}

type GeocodeResult struct {
	PlaceID     string   `json:"place_id"`
	Address     string   `json:"formatted_address"`
	Coordinates Location `json:"geometry"`
	Types       []string `json:"types"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type RouteRequest struct {
	Origin      Location   `json:"origin"`
	Destination Location   `json:"destination"`
	Waypoints   []Location `json:"waypoints,omitempty"`
}

// RouteEstimate is the road-network distance and travel time for a route.
type RouteEstimate struct {
	DistanceKM      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
	Polyline        string  `json:"polyline,omitempty"`
}
