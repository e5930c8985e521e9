package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/venue-risk-backend-go/internal/analysis"
	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/spatial"
)

const dateLayout = "2006-01-02"

// DefaultIncidentLimit caps an incident listing when the request sets no limit
const DefaultIncidentLimit = 1000

// AnalysisService resolves request defaults and runs each request against a
// single snapshot.
type AnalysisService struct {
	engine          *analysis.Engine
	defaultRadiusKm float64
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(engine *analysis.Engine, defaultRadiusKm float64) *AnalysisService {
	return &AnalysisService{engine: engine, defaultRadiusKm: defaultRadiusKm}
}

// SnapshotInfo describes the snapshot currently being served
type SnapshotInfo struct {
	ID        string            `json:"id"`
	Version   int64             `json:"version"`
	LoadedAt  time.Time         `json:"loaded_at"`
	Incidents int               `json:"incidents"`
	Venues    int               `json:"venues"`
	Span      *models.TimeRange `json:"span"`
}

// Snapshot describes the active snapshot
func (s *AnalysisService) Snapshot() SnapshotInfo {
	snap := s.engine.Snapshot()
	info := SnapshotInfo{
		ID:        snap.ID,
		Version:   snap.Version,
		LoadedAt:  snap.LoadedAt,
		Incidents: snap.IncidentCount(),
		Venues:    len(snap.Venues()),
	}
	if span, ok := snap.Span(); ok {
		info.Span = &span
	}
	return info
}

// ListVenues returns the loaded venues
func (s *AnalysisService) ListVenues() []models.Venue {
	return s.engine.Snapshot().Venues()
}

// VenueRisk assesses one loaded venue
func (s *AnalysisService) VenueRisk(ctx context.Context, id string, filter models.RiskFilter) (models.RiskAssessment, error) {
	snap := s.engine.Snapshot()
	rng, err := resolveRange(snap, filter.Start, filter.End)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	return snap.AssessVenueByID(ctx, id, s.radius(filter.RadiusKm), rng)
}

// RankVenues assesses every loaded venue with coordinates as one batch
func (s *AnalysisService) RankVenues(ctx context.Context, filter models.RiskFilter) ([]models.RiskAssessment, error) {
	snap := s.engine.Snapshot()
	rng, err := resolveRange(snap, filter.Start, filter.End)
	if err != nil {
		return nil, err
	}

	located := make([]models.Venue, 0)
	for _, v := range snap.Venues() {
		if _, ok := v.Location(); ok {
			located = append(located, v)
		}
	}
	return snap.AssessAllVenues(ctx, located, s.radius(filter.RadiusKm), rng)
}

// NearbyIncidents lists incidents around a loaded venue
func (s *AnalysisService) NearbyIncidents(id string, filter models.NearbyFilter) ([]models.NearbyIncident, error) {
	return s.engine.Snapshot().NearbyIncidents(id, s.radius(filter.RadiusKm), filter.Limit)
}

// Incidents lists loaded incidents by bounding box, time range and category
func (s *AnalysisService) Incidents(filter models.IncidentFilter) (models.IncidentList, error) {
	if filter.Limit < 0 {
		return models.IncidentList{}, fmt.Errorf("%w: limit must not be negative", models.ErrInvalidInput)
	}
	limit := filter.Limit
	if limit == 0 {
		limit = DefaultIncidentLimit
	}

	box, err := boundingBox(filter)
	if err != nil {
		return models.IncidentList{}, err
	}
	snap := s.engine.Snapshot()
	rng, err := resolveRange(snap, filter.Start, filter.End)
	if err != nil {
		return models.IncidentList{}, err
	}
	return snap.Incidents(box, rng, parseCategories(filter.Category), limit)
}

// Hotspots runs hotspot detection. A per-request budget can only shorten
// the configured one.
func (s *AnalysisService) Hotspots(ctx context.Context, filter models.HotspotFilter) (models.HotspotResult, error) {
	if filter.BudgetMs < 0 {
		return models.HotspotResult{}, fmt.Errorf("%w: budget must not be negative", models.ErrInvalidInput)
	}
	if filter.BudgetMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(filter.BudgetMs)*time.Millisecond)
		defer cancel()
	}
	return s.engine.DetectHotspots(ctx, parseCategories(filter.Category), filter.CellSizeKm)
}

// Heatmap aggregates incidents per grid cell
func (s *AnalysisService) Heatmap(filter models.HeatmapFilter) (models.Heatmap, error) {
	return s.engine.HeatmapGrid(filter.CellSizeKm)
}

// Trends buckets incidents over time. Width defaults to the configured
// bucket width.
func (s *AnalysisService) Trends(filter models.TrendFilter) (models.TrendSeries, error) {
	snap := s.engine.Snapshot()
	rng, err := resolveRange(snap, filter.Start, filter.End)
	if err != nil {
		return models.TrendSeries{}, err
	}

	width := s.engine.Config().TrendWidth
	if filter.Width != "" {
		width, err = models.ParseBucketWidth(strings.ToLower(filter.Width))
		if err != nil {
			return models.TrendSeries{}, err
		}
	}
	return snap.TemporalTrend(rng, width, parseCategories(filter.Category))
}

// Summary builds the overview report
func (s *AnalysisService) Summary(ctx context.Context, filter models.RiskFilter) (models.Summary, error) {
	snap := s.engine.Snapshot()
	var rng models.TimeRange
	if filter.Start != "" || filter.End != "" {
		var err error
		if rng, err = resolveRange(snap, filter.Start, filter.End); err != nil {
			return models.Summary{}, err
		}
	}
	return snap.Summary(ctx, s.radius(filter.RadiusKm), rng)
}

func (s *AnalysisService) radius(r float64) float64 {
	if r == 0 {
		return s.defaultRadiusKm
	}
	return r
}

// resolveRange parses optional bounds. Missing bounds fall back to the span
// of the loaded incidents, or to the load day when there are none.
func resolveRange(snap *analysis.Snapshot, start, end string) (models.TimeRange, error) {
	fallback, ok := snap.Span()
	if !ok {
		day := snap.LoadedAt.UTC().Truncate(24 * time.Hour)
		fallback = models.TimeRange{Start: day, End: day}
	}

	rng := fallback
	if start != "" {
		t, err := models.ParseTime(start)
		if err != nil {
			return models.TimeRange{}, fmt.Errorf("%w: start: %v", models.ErrInvalidInput, err)
		}
		rng.Start = t
	}
	if end != "" {
		t, err := models.ParseTime(end)
		if err != nil {
			return models.TimeRange{}, fmt.Errorf("%w: end: %v", models.ErrInvalidInput, err)
		}
		if len(strings.TrimSpace(end)) == len(dateLayout) {
			// a plain end date covers that whole day
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		rng.End = t
	}
	return rng, rng.Validate()
}

// boundingBox returns nil when no edge is set and rejects partial boxes
func boundingBox(f models.IncidentFilter) (*spatial.BoundingBox, error) {
	edges := []*float64{f.MinLat, f.MinLon, f.MaxLat, f.MaxLon}
	set := 0
	for _, e := range edges {
		if e != nil {
			set++
		}
	}
	switch set {
	case 0:
		return nil, nil
	case len(edges):
		return &spatial.BoundingBox{MinLat: *f.MinLat, MinLon: *f.MinLon, MaxLat: *f.MaxLat, MaxLon: *f.MaxLon}, nil
	}
	return nil, fmt.Errorf("%w: bounding box needs minLat, minLon, maxLat and maxLon", models.ErrInvalidInput)
}

func parseCategories(raw []string) []models.Category {
	var out []models.Category
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, models.Category(strings.ToLower(part)))
			}
		}
	}
	return out
}
