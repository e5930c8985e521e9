package models

// RiskFilter holds query parameters for venue risk endpoints
type RiskFilter struct {
	RadiusKm float64 `form:"radiusKm"`
	Start    string  `form:"start"` // RFC3339 or YYYY-MM-DD
	End      string  `form:"end"`
}

// NearbyFilter holds query parameters for the nearby incidents endpoint
type NearbyFilter struct {
	RadiusKm float64 `form:"radiusKm"`
	Limit    int     `form:"limit"`
}

// IncidentFilter holds query parameters for the incident listing. The box
// is optional but needs all four edges when given; minLon > maxLon selects a
// box across the antimeridian.
type IncidentFilter struct {
	MinLat   *float64 `form:"minLat"`
	MinLon   *float64 `form:"minLon"`
	MaxLat   *float64 `form:"maxLat"`
	MaxLon   *float64 `form:"maxLon"`
	Start    string   `form:"start"`
	End      string   `form:"end"`
	Category []string `form:"category"`
	Limit    int      `form:"limit"` // 0 = service default
}

// HotspotFilter holds query parameters for hotspot detection
type HotspotFilter struct {
	Category   []string `form:"category"`
	CellSizeKm float64  `form:"cellSizeKm"`
	BudgetMs   int      `form:"budgetMs"` // 0 = configured default
}

// HeatmapFilter holds query parameters for the heatmap endpoint
type HeatmapFilter struct {
	CellSizeKm float64 `form:"cellSizeKm"`
}

// TrendFilter holds query parameters for temporal trends
type TrendFilter struct {
	Start    string   `form:"start"`
	End      string   `form:"end"`
	Width    string   `form:"width"` // daily, monthly, yearly
	Category []string `form:"category"`
}

// LoadRequest is the body of an in-memory load pushed by the ETL layer
type LoadRequest struct {
	Incidents []RawIncident `json:"incidents"`
	Venues    []Venue       `json:"venues"`
}
