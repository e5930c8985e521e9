package models

// HeatmapPoint represents a single non-empty cell of the heatmap
type HeatmapPoint struct {
	CellID      string  `json:"cell_id"`
	Lat         float64 `json:"lat"`       // Cell center latitude
	Lng         float64 `json:"lng"`       // Cell center longitude
	Intensity   float64 `json:"intensity"` // Normalized 0-1
	Count       int     `json:"count"`
	SeveritySum float64 `json:"severity_sum"`
}

// Heatmap is the grid aggregation handed to renderers. Cells maps cell id
// to point count; Points carries the same cells with geometry, hottest first.
type Heatmap struct {
	CellSizeKm float64        `json:"cell_size_km"`
	StepLatDeg float64        `json:"step_lat_deg"`
	StepLonDeg float64        `json:"step_lon_deg"`
	Rows       int            `json:"rows"`
	Cols       int            `json:"cols"`
	Cells      map[string]int `json:"cells"`
	Points     []HeatmapPoint `json:"points"`
	MaxValue   int            `json:"max_value"`
	MinValue   int            `json:"min_value"`
	Total      int            `json:"total"`
}
