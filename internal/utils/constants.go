package utils

import "time"

const (
	AppName    = "RideLink"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Geospatial
	EarthRadiusKM       = 6371.0
	DefaultSearchRadius = 10.0 // kilometers
	MaxSearchRadius     = 50.0 // kilometers
	DefaultSearchLimit  = 20

	// Ride dispatch
	DispatchWindow = 30 * time.Minute
	MaxStops       = 5

	// Negotiation
	DefaultNegotiationWindow = 5 * time.Minute

	// Response statuses
	StatusSuccess = "success"
	StatusError   = "error"
)
