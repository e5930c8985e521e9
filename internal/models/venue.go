package models

import "github.com/jengzang/venue-risk-backend-go/internal/spatial"

// Venue is read-only reference data shared by every analysis component.
// Nil coordinates mean the venue has not been geolocated.
type Venue struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Capacity  int      `json:"capacity,omitempty"`
}

// Location returns the venue coordinates and whether they are present
func (v Venue) Location() (spatial.Point, bool) {
	if v.Latitude == nil || v.Longitude == nil {
		return spatial.Point{}, false
	}
	return spatial.Point{Lat: *v.Latitude, Lon: *v.Longitude}, true
}
