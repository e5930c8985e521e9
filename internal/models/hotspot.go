package models

import "github.com/jengzang/venue-risk-backend-go/internal/spatial"

// HotspotCluster is a connected region of above-threshold grid cells.
// Recomputed on every detection run; it has no identity across runs.
type HotspotCluster struct {
	Centroid         spatial.Point `json:"centroid"`
	PointCount       int           `json:"point_count"`
	BoundingRadiusKm float64       `json:"bounding_radius_km"`
	DominantCategory Category      `json:"dominant_category"`
	CellCount        int           `json:"cell_count"`
	TotalSeverity    float64       `json:"total_severity"`
	PointIDs         []string      `json:"point_ids,omitempty"`
}

// HotspotResult wraps a detection run. Partial is set when the time budget
// ran out before every hot component was merged.
type HotspotResult struct {
	Clusters   []HotspotCluster `json:"clusters"`
	CellSizeKm float64          `json:"cell_size_km"`
	Threshold  float64          `json:"threshold"`
	HotCells   int              `json:"hot_cells"`
	Partial    bool             `json:"partial"`
}
