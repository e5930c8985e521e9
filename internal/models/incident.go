package models

import (
	"time"

	"github.com/jengzang/venue-risk-backend-go/internal/spatial"
)

// Category classifies an incident record
type Category string

const (
	CategoryDrugSeizure       Category = "drug-seizure"
	CategoryMigrationIncident Category = "migration-incident"
)

// Categories lists every known category in name order
var Categories = []Category{CategoryDrugSeizure, CategoryMigrationIncident}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryDrugSeizure, CategoryMigrationIncident:
		return true
	}
	return false
}

// IncidentPoint is a validated, geolocated incident. Immutable once loaded.
type IncidentPoint struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
	Severity  float64   `json:"severity"` // seizure quantity or casualty count
	Source    string    `json:"source,omitempty"`
}

// Location returns the incident coordinates
func (p IncidentPoint) Location() spatial.Point {
	return spatial.Point{Lat: p.Latitude, Lon: p.Longitude}
}

// RawIncident is an incident record as handed over by the storage/ETL layer,
// before validation. Timestamp is kept as text so unparsable values can be
// reported per record.
type RawIncident struct {
	ID        string   `json:"id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp string   `json:"timestamp"`
	Category  string   `json:"category"`
	Severity  float64  `json:"severity"`
	Source    string   `json:"source,omitempty"`
}

// NearbyIncident is an incident annotated with its distance and initial
// bearing (degrees clockwise from north) as seen from a venue
type NearbyIncident struct {
	IncidentPoint
	DistanceKm float64 `json:"distance_km"`
	BearingDeg float64 `json:"bearing_deg"`
}

// IncidentList is one page of incidents. Total counts every match before
// the limit was applied.
type IncidentList struct {
	Incidents []IncidentPoint `json:"incidents"`
	Count     int             `json:"count"`
	Total     int             `json:"total"`
}
