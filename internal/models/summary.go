package models

// CategoryTotals aggregates one incident category
type CategoryTotals struct {
	Count       int     `json:"count"`
	SeveritySum float64 `json:"severity_sum"`
}

// Summary is the overview report of the active snapshot
type Summary struct {
	SnapshotID      string                      `json:"snapshot_id"`
	Version         int64                       `json:"version"`
	TotalVenues     int                         `json:"total_venues"`
	TotalIncidents  int                         `json:"total_incidents"`
	ByCategory      map[Category]CategoryTotals `json:"by_category"`
	TotalCasualties float64                     `json:"total_casualties"`
	DateRange       *TimeRange                  `json:"date_range"`
	Hotspots        []HotspotCluster            `json:"hotspots"`
	BandCounts      map[RiskBand]int            `json:"band_counts"`
	HighRiskVenues  []RiskAssessment            `json:"high_risk_venues"`
}
