package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jengzang/venue-risk-backend-go/internal/analysis/hotspot"
	"github.com/jengzang/venue-risk-backend-go/internal/analysis/risk"
	"github.com/jengzang/venue-risk-backend-go/internal/analysis/temporal"
	"github.com/jengzang/venue-risk-backend-go/internal/index"
	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/spatial"
)

// SummaryHotspots caps the clusters listed in a summary report
const SummaryHotspots = 5

// Snapshot is one immutable, versioned view of the loaded data. Every
// method is read-only and safe for concurrent use.
type Snapshot struct {
	ID       string
	Version  int64
	LoadedAt time.Time

	index     *index.Index
	venues    []models.Venue
	venueByID map[string]int
	span      *models.TimeRange
	cfg       Config
	scorer    *risk.Scorer
}

func newSnapshot(id string, version int64, loadedAt time.Time, points []models.IncidentPoint, venues []models.Venue, cfg Config, scorer *risk.Scorer) *Snapshot {
	s := &Snapshot{
		ID:        id,
		Version:   version,
		LoadedAt:  loadedAt,
		index:     index.New(points, cfg.CellSizeKm),
		venues:    make([]models.Venue, len(venues)),
		venueByID: make(map[string]int, len(venues)),
		cfg:       cfg,
		scorer:    scorer,
	}
	for i, v := range venues {
		s.venues[i] = copyVenue(v)
		s.venueByID[v.ID] = i
	}

	if len(points) > 0 {
		span := models.TimeRange{Start: points[0].Timestamp, End: points[0].Timestamp}
		for _, p := range points[1:] {
			if p.Timestamp.Before(span.Start) {
				span.Start = p.Timestamp
			}
			if p.Timestamp.After(span.End) {
				span.End = p.Timestamp
			}
		}
		s.span = &span
	}
	return s
}

// Venues returns a copy of the loaded venues in load order
func (s *Snapshot) Venues() []models.Venue {
	out := make([]models.Venue, len(s.venues))
	for i, v := range s.venues {
		out[i] = copyVenue(v)
	}
	return out
}

// Venue looks a loaded venue up by id
func (s *Snapshot) Venue(id string) (models.Venue, bool) {
	i, ok := s.venueByID[id]
	if !ok {
		return models.Venue{}, false
	}
	return copyVenue(s.venues[i]), true
}

// Span returns the earliest and latest incident timestamps; false when the
// snapshot holds no incidents.
func (s *Snapshot) Span() (models.TimeRange, bool) {
	if s.span == nil {
		return models.TimeRange{}, false
	}
	return *s.span, true
}

// IncidentCount returns the number of loaded incidents
func (s *Snapshot) IncidentCount() int {
	return s.index.Len()
}

// NearbyIncidents lists the incidents within radiusKm of a loaded venue,
// closest first. limit <= 0 returns all of them.
func (s *Snapshot) NearbyIncidents(venueID string, radiusKm float64, limit int) ([]models.NearbyIncident, error) {
	v, err := s.lookup(venueID)
	if err != nil {
		return nil, err
	}
	loc, err := venueLocation(v, radiusKm)
	if err != nil {
		return nil, err
	}
	return s.index.Nearby(loc, radiusKm, limit), nil
}

// Incidents lists the incidents inside box (everywhere when nil) whose
// timestamp falls in rng and whose category is selected (all when empty),
// newest first with ties by id. limit <= 0 returns every match.
func (s *Snapshot) Incidents(box *spatial.BoundingBox, rng models.TimeRange, categories []models.Category, limit int) (models.IncidentList, error) {
	if err := rng.Validate(); err != nil {
		return models.IncidentList{}, err
	}
	keep, err := categoryFilter(categories)
	if err != nil {
		return models.IncidentList{}, err
	}

	var candidates []models.IncidentPoint
	if box != nil {
		if !box.Valid() {
			return models.IncidentList{}, fmt.Errorf("%w: invalid bounding box %+v", models.ErrInvalidInput, *box)
		}
		candidates = s.index.BoundingBoxQuery(*box)
	} else {
		candidates = s.index.Points()
	}

	out := make([]models.IncidentPoint, 0)
	for _, p := range candidates {
		if rng.Contains(p.Timestamp) && (keep == nil || keep(p)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})

	list := models.IncidentList{Total: len(out)}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	list.Incidents = out
	list.Count = len(out)
	return list, nil
}

// AssessVenue scores a single venue. In a batch of one every nonzero metric
// normalises to 1, see risk.Scorer.
func (s *Snapshot) AssessVenue(ctx context.Context, venue models.Venue, radiusKm float64, rng models.TimeRange) (models.RiskAssessment, error) {
	if err := rng.Validate(); err != nil {
		return models.RiskAssessment{}, err
	}
	in, err := s.metrics(ctx, venue, radiusKm, rng)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	out, err := s.scorer.Score([]risk.Input{in})
	if err != nil {
		return models.RiskAssessment{}, err
	}
	return out[0], nil
}

// AssessVenueByID scores a loaded venue
func (s *Snapshot) AssessVenueByID(ctx context.Context, id string, radiusKm float64, rng models.TimeRange) (models.RiskAssessment, error) {
	v, err := s.lookup(id)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	return s.AssessVenue(ctx, v, radiusKm, rng)
}

// AssessAllVenues scores venues as one batch, so scores are relative to
// each other, and returns them ranked by score. A nil slice assesses every
// loaded venue. Any venue without coordinates fails the whole call.
func (s *Snapshot) AssessAllVenues(ctx context.Context, venues []models.Venue, radiusKm float64, rng models.TimeRange) ([]models.RiskAssessment, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if venues == nil {
		venues = s.venues
	}
	for _, v := range venues {
		if _, err := venueLocation(v, radiusKm); err != nil {
			return nil, err
		}
	}

	inputs := make([]risk.Input, len(venues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, v := range venues {
		i, v := i, v
		g.Go(func() error {
			in, err := s.metrics(gctx, v, radiusKm, rng)
			if err != nil {
				return err
			}
			inputs[i] = in
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out, err := s.scorer.Score(inputs)
	if err != nil {
		return nil, err
	}
	risk.Rank(out)
	return out, nil
}

// metrics gathers the raw risk inputs of one venue from the incidents within
// radiusKm whose timestamp falls inside rng.
func (s *Snapshot) metrics(ctx context.Context, v models.Venue, radiusKm float64, rng models.TimeRange) (risk.Input, error) {
	if err := ctx.Err(); err != nil {
		return risk.Input{}, err
	}
	loc, err := venueLocation(v, radiusKm)
	if err != nil {
		return risk.Input{}, err
	}

	in := risk.Input{Venue: v, RadiusKm: radiusKm}
	inRange := make([]models.IncidentPoint, 0)
	for _, n := range s.index.Nearby(loc, radiusKm, 0) {
		if !rng.Contains(n.Timestamp) {
			continue
		}
		if in.ClosestIncidentKm == nil {
			d := n.DistanceKm
			in.ClosestIncidentKm = &d
		}
		switch n.Category {
		case models.CategoryDrugSeizure:
			in.SeizureCount++
		case models.CategoryMigrationIncident:
			in.IncidentCount++
			in.TotalCasualties += n.Severity
		}
		inRange = append(inRange, n.IncidentPoint)
	}

	buckets, err := temporal.Aggregate(inRange, rng, s.cfg.TrendWidth)
	if err != nil {
		return risk.Input{}, err
	}
	in.TrendFactor = temporal.TrendFactor(buckets)
	return in, nil
}

// DetectHotspots finds dense regions among the incidents of the given
// categories (all when empty). cellSizeKm 0 uses the configured size. The
// configured time budget bounds the run; on expiry the clusters found so
// far come back with Partial set.
func (s *Snapshot) DetectHotspots(ctx context.Context, categories []models.Category, cellSizeKm float64) (models.HotspotResult, error) {
	cellSizeKm, err := s.cellSize(cellSizeKm)
	if err != nil {
		return models.HotspotResult{}, err
	}
	keep, err := categoryFilter(categories)
	if err != nil {
		return models.HotspotResult{}, err
	}

	if s.cfg.HotspotBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.HotspotBudget)
		defer cancel()
	}

	return hotspot.Detect(ctx, s.index.Filter(keep), hotspot.Options{
		CellSizeKm: cellSizeKm,
		Sigma:      s.cfg.HotspotSigma,
	}), nil
}

// HeatmapGrid counts incidents per grid cell. Intensity is the cell count
// relative to the busiest cell. The load-time index is reused when the cell
// size matches the configured one.
func (s *Snapshot) HeatmapGrid(cellSizeKm float64) (models.Heatmap, error) {
	cellSizeKm, err := s.cellSize(cellSizeKm)
	if err != nil {
		return models.Heatmap{}, err
	}

	ix := s.index
	if ix.Grid().CellSizeKm != cellSizeKm {
		ix = index.New(s.index.Points(), cellSizeKm)
	}
	grid := ix.Grid()
	totals := ix.CellTotals()

	hm := models.Heatmap{
		CellSizeKm: grid.CellSizeKm,
		Cells:      make(map[string]int, len(totals)),
		Points:     make([]models.HeatmapPoint, 0, len(totals)),
	}
	hm.StepLatDeg, hm.StepLonDeg = grid.StepDegrees()
	hm.Rows, hm.Cols = grid.Dimensions()
	for c, t := range totals {
		n := t.Count
		hm.Cells[c.String()] = n
		hm.Total += n
		if n > hm.MaxValue {
			hm.MaxValue = n
		}
		if hm.MinValue == 0 || n < hm.MinValue {
			hm.MinValue = n
		}
	}
	for c, t := range totals {
		center := grid.Center(c)
		hm.Points = append(hm.Points, models.HeatmapPoint{
			CellID:      c.String(),
			Lat:         center.Lat,
			Lng:         center.Lon,
			Intensity:   float64(t.Count) / float64(hm.MaxValue),
			Count:       t.Count,
			SeveritySum: t.Severity,
		})
	}
	sort.Slice(hm.Points, func(i, j int) bool {
		if hm.Points[i].Count != hm.Points[j].Count {
			return hm.Points[i].Count > hm.Points[j].Count
		}
		return hm.Points[i].CellID < hm.Points[j].CellID
	})
	return hm, nil
}

// TemporalTrend buckets the incidents of the given categories (all when
// empty) over rng.
func (s *Snapshot) TemporalTrend(rng models.TimeRange, width models.BucketWidth, categories []models.Category) (models.TrendSeries, error) {
	keep, err := categoryFilter(categories)
	if err != nil {
		return models.TrendSeries{}, err
	}
	buckets, err := temporal.Aggregate(s.index.Filter(keep), rng, width)
	if err != nil {
		return models.TrendSeries{}, err
	}
	return models.TrendSeries{
		Range:       rng,
		Width:       width,
		Buckets:     buckets,
		Total:       temporal.Total(buckets),
		TrendFactor: temporal.TrendFactor(buckets),
	}, nil
}

// Summary reports snapshot totals, the largest hotspots and the risk band
// distribution of every geolocated venue. A zero rng covers the loaded span.
func (s *Snapshot) Summary(ctx context.Context, radiusKm float64, rng models.TimeRange) (models.Summary, error) {
	sum := models.Summary{
		SnapshotID:     s.ID,
		Version:        s.Version,
		TotalVenues:    len(s.venues),
		TotalIncidents: s.index.Len(),
		ByCategory:     make(map[models.Category]models.CategoryTotals, len(models.Categories)),
		Hotspots:       make([]models.HotspotCluster, 0),
		BandCounts:     make(map[models.RiskBand]int),
		HighRiskVenues: make([]models.RiskAssessment, 0),
	}

	for _, p := range s.index.Filter(nil) {
		t := sum.ByCategory[p.Category]
		t.Count++
		t.SeveritySum += p.Severity
		sum.ByCategory[p.Category] = t
		if p.Category == models.CategoryMigrationIncident {
			sum.TotalCasualties += p.Severity
		}
	}
	if span, ok := s.Span(); ok {
		sum.DateRange = &span
	}

	hs, err := s.DetectHotspots(ctx, nil, 0)
	if err != nil {
		return models.Summary{}, err
	}
	sum.Hotspots = hs.Clusters
	if len(sum.Hotspots) > SummaryHotspots {
		sum.Hotspots = sum.Hotspots[:SummaryHotspots]
	}

	if rng == (models.TimeRange{}) {
		if sum.DateRange == nil {
			return sum, nil
		}
		rng = *sum.DateRange
	}

	located := make([]models.Venue, 0, len(s.venues))
	for _, v := range s.venues {
		if _, ok := v.Location(); ok {
			located = append(located, v)
		}
	}
	assessments, err := s.AssessAllVenues(ctx, located, radiusKm, rng)
	if err != nil {
		return models.Summary{}, err
	}
	for _, a := range assessments {
		sum.BandCounts[a.Band]++
		if a.Band == models.BandHigh || a.Band == models.BandSevere {
			sum.HighRiskVenues = append(sum.HighRiskVenues, a)
		}
	}
	return sum, nil
}

func (s *Snapshot) lookup(id string) (models.Venue, error) {
	v, ok := s.Venue(id)
	if !ok {
		return models.Venue{}, fmt.Errorf("%w: %w %q", models.ErrInvalidInput, models.ErrVenueNotFound, id)
	}
	return v, nil
}

func (s *Snapshot) cellSize(km float64) (float64, error) {
	switch {
	case km == 0:
		return s.cfg.CellSizeKm, nil
	case math.IsNaN(km) || math.IsInf(km, 0) || km < index.MinCellSizeKm:
		return 0, fmt.Errorf("%w: cell size must be a finite value of at least %v km, got %v", models.ErrInvalidInput, index.MinCellSizeKm, km)
	}
	return km, nil
}

func venueLocation(v models.Venue, radiusKm float64) (spatial.Point, error) {
	if radiusKm <= 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return spatial.Point{}, fmt.Errorf("%w: radius must be positive, got %v", models.ErrInvalidInput, radiusKm)
	}
	loc, ok := v.Location()
	if !ok {
		return spatial.Point{}, fmt.Errorf("%w: venue %q has no coordinates", models.ErrInvalidInput, v.ID)
	}
	if !loc.Valid() {
		return spatial.Point{}, fmt.Errorf("%w: venue %q coordinates out of range", models.ErrInvalidInput, v.ID)
	}
	return loc, nil
}

// categoryFilter returns nil (keep everything) for an empty selection
func categoryFilter(categories []models.Category) (func(models.IncidentPoint) bool, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	want := make(map[models.Category]bool, len(categories))
	for _, c := range categories {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", models.ErrInvalidInput, c)
		}
		want[c] = true
	}
	return func(p models.IncidentPoint) bool { return want[p.Category] }, nil
}
