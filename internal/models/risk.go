package models

// RiskBand is the qualitative label derived from a risk score
type RiskBand string

const (
	BandLow      RiskBand = "Low"
	BandModerate RiskBand = "Moderate"
	BandHigh     RiskBand = "High"
	BandSevere   RiskBand = "Severe"
)

// RiskAssessment is derived per (venue, radius) pair and never mutated
type RiskAssessment struct {
	VenueID           string   `json:"venue_id"`
	VenueName         string   `json:"venue_name"`
	RadiusKm          float64  `json:"radius_km"`
	SeizureCount      int      `json:"seizure_count"`
	IncidentCount     int      `json:"incident_count"`
	TotalCasualties   float64  `json:"total_casualties"`
	TrendFactor       float64  `json:"trend_factor"`
	ClosestIncidentKm *float64 `json:"closest_incident_km"`
	Score             float64  `json:"score"` // 0-100
	Band              RiskBand `json:"band"`
}
