package models

import (
	"time"
)

// Location is a GeoJSON point so pickup locations can carry a 2dsphere index.
// Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address" bson:"address"`
	Timestamp   time.Time `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
}

func NewLocation(lat, lng float64, address string) Location {
	return Location{
		Type:        "Point",
		Coordinates: []float64{lng, lat},
		Address:     address,
	}
}

func (l Location) Latitude() float64 {
	if len(l.Coordinates) >= 2 {
		return l.Coordinates[1]
	}
	return 0
}

func (l Location) Longitude() float64 {
	if len(l.Coordinates) >= 1 {
		return l.Coordinates[0]
	}
	return 0
}

func (l Location) Valid() bool {
	if len(l.Coordinates) != 2 {
		return false
	}
	lat, lng := l.Latitude(), l.Longitude()
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
