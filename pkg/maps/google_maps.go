package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

type GoogleMapsProvider struct {
	client *maps.Client
}

func NewGoogleMapsProvider(apiKey string) (*GoogleMapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleMapsProvider{
		client: client,
	}, nil
}

func (g *GoogleMapsProvider) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	req := &maps.GeocodingRequest{
		Address: address,
	}

	resp, err := g.client.Geocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}

	return &GeocodeResponse{Results: convertGeocodeResults(resp)}, nil
}

func (g *GoogleMapsProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error) {
	req := &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	}

	resp, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding failed: %w", err)
	}

	return &GeocodeResponse{Results: convertGeocodeResults(resp)}, nil
}

func (g *GoogleMapsProvider) GetRouteEstimate(ctx context.Context, request *RouteRequest) (*RouteEstimate, error) {
	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", request.Origin.Latitude, request.Origin.Longitude),
		Destination: fmt.Sprintf("%f,%f", request.Destination.Latitude, request.Destination.Longitude),
		Mode:        maps.TravelModeDriving,
	}

	if len(request.Waypoints) > 0 {
		waypoints := make([]string, len(request.Waypoints))
		for i, wp := range request.Waypoints {
			waypoints[i] = fmt.Sprintf("%f,%f", wp.Latitude, wp.Longitude)
		}
		req.Waypoints = waypoints
	}

	resp, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}

	if len(resp) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	// Sum over legs so waypoint routes are covered.
	var meters int
	var seconds float64
	for _, leg := range resp[0].Legs {
		meters += leg.Distance.Meters
		seconds += leg.Duration.Seconds()
	}

	return &RouteEstimate{
		DistanceKM:      float64(meters) / 1000.0,
		DurationMinutes: int(seconds / 60),
		Polyline:        resp[0].OverviewPolyline.Points,
	}, nil
}

func convertGeocodeResults(resp []maps.GeocodingResult) []GeocodeResult {
	results := make([]GeocodeResult, len(resp))
	for i, result := range resp {
		results[i] = GeocodeResult{
			PlaceID: result.PlaceID,
			Address: result.FormattedAddress,
			Coordinates: Location{
				Latitude:  result.Geometry.Location.Lat,
				Longitude: result.Geometry.Location.Lng,
			},
			Types: result.Types,
		}
	}
	return results
}
