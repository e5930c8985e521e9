// Package analysis is the single entry point for loading incident data and
// running every venue risk operation against an immutable snapshot.
package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/jengzang/venue-risk-backend-go/internal/analysis/hotspot"
	"github.com/jengzang/venue-risk-backend-go/internal/analysis/risk"
	"github.com/jengzang/venue-risk-backend-go/internal/index"
	"github.com/jengzang/venue-risk-backend-go/internal/models"
)

// Config tunes the engine. Zero values fall back to the defaults.
type Config struct {
	CellSizeKm    float64
	HotspotSigma  float64
	HotspotBudget time.Duration // 0 = unbounded
	TrendWidth    models.BucketWidth
	Weights       risk.Weights
	Workers       int
}

// DefaultConfig returns the stock engine configuration
func DefaultConfig() Config {
	return Config{
		CellSizeKm:    index.DefaultCellSizeKm,
		HotspotSigma:  hotspot.DefaultSigma,
		HotspotBudget: 5 * time.Second,
		TrendWidth:    models.BucketMonthly,
		Weights:       risk.DefaultWeights(),
		Workers:       4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CellSizeKm <= 0 {
		c.CellSizeKm = d.CellSizeKm
	}
	if c.HotspotSigma <= 0 {
		c.HotspotSigma = d.HotspotSigma
	}
	if c.HotspotBudget < 0 {
		c.HotspotBudget = 0
	}
	if c.TrendWidth == "" {
		c.TrendWidth = d.TrendWidth
	}
	if c.Weights == (risk.Weights{}) {
		c.Weights = d.Weights
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// Engine owns the current snapshot. Load builds a complete replacement and
// swaps it in; queries grab the pointer once and never take a lock.
type Engine struct {
	cfg    Config
	scorer *risk.Scorer

	loadMu  sync.Mutex
	version int64
	current atomic.Pointer[Snapshot]
}

// NewEngine creates an engine holding an empty version 0 snapshot
func NewEngine(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	if cfg.CellSizeKm < index.MinCellSizeKm || math.IsInf(cfg.CellSizeKm, 0) || math.IsNaN(cfg.CellSizeKm) {
		return nil, fmt.Errorf("failed to configure engine: %w: cell size %v km", models.ErrInvalidInput, cfg.CellSizeKm)
	}
	if _, err := models.ParseBucketWidth(string(cfg.TrendWidth)); err != nil {
		return nil, fmt.Errorf("failed to configure engine: %w", err)
	}
	scorer, err := risk.NewScorer(cfg.Weights)
	if err != nil {
		return nil, fmt.Errorf("failed to configure engine: %w", err)
	}

	e := &Engine{cfg: cfg, scorer: scorer}
	e.current.Store(newSnapshot(uuid.NewString(), 0, time.Now().UTC(), nil, nil, cfg, scorer))
	return e, nil
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Snapshot returns the snapshot currently serving queries
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Load validates every record, builds a new snapshot from the accepted ones
// and swaps it in. Rejected records never abort the load; they are counted
// in the report. The first record with a given id wins.
func (e *Engine) Load(incidents []models.RawIncident, venues []models.Venue) models.LoadReport {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	start := time.Now()
	report := models.LoadReport{RejectedByReason: make(map[string]int)}

	points := make([]models.IncidentPoint, 0, len(incidents))
	seen := make(map[string]bool, len(incidents))
	for _, raw := range incidents {
		p, rejected := validateIncident(raw)
		if rejected == nil && seen[p.ID] {
			rejected = &models.DataIntegrityError{RecordID: p.ID, Kind: "incident", Detail: "id already loaded", Err: models.ErrDuplicateID}
		}
		if rejected != nil {
			report.Record(rejected)
			continue
		}
		seen[p.ID] = true
		points = append(points, p)
	}

	accepted := make([]models.Venue, 0, len(venues))
	seenVenue := make(map[string]bool, len(venues))
	for _, raw := range venues {
		v, rejected := validateVenue(raw)
		if rejected == nil && seenVenue[v.ID] {
			rejected = &models.DataIntegrityError{RecordID: v.ID, Kind: "venue", Detail: "id already loaded", Err: models.ErrDuplicateID}
		}
		if rejected != nil {
			report.Record(rejected)
			continue
		}
		seenVenue[v.ID] = true
		accepted = append(accepted, v)
	}

	e.version++
	snap := newSnapshot(uuid.NewString(), e.version, time.Now().UTC(), points, accepted, e.cfg, e.scorer)
	e.current.Store(snap)

	report.SnapshotID = snap.ID
	report.Version = snap.Version
	report.LoadedAt = snap.LoadedAt
	report.IncidentsAccepted = len(points)
	report.VenuesAccepted = len(accepted)

	log.WithFields(log.Fields{
		"snapshot":           snap.ID,
		"version":            snap.Version,
		"incidents_accepted": report.IncidentsAccepted,
		"incidents_rejected": report.IncidentsRejected,
		"venues_accepted":    report.VenuesAccepted,
		"venues_rejected":    report.VenuesRejected,
		"duration":           time.Since(start),
	}).Info("engine.load")

	if len(report.RejectedByReason) > 0 {
		reasons := make([]string, 0, len(report.RejectedByReason))
		for r := range report.RejectedByReason {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			log.WithFields(log.Fields{
				"snapshot": snap.ID,
				"reason":   r,
				"count":    report.RejectedByReason[r],
			}).Warn("engine.load.rejected")
		}
	}

	return report
}

// AssessVenue scores one venue on the current snapshot
func (e *Engine) AssessVenue(ctx context.Context, venue models.Venue, radiusKm float64, rng models.TimeRange) (models.RiskAssessment, error) {
	return e.Snapshot().AssessVenue(ctx, venue, radiusKm, rng)
}

// AssessVenueByID scores a loaded venue on the current snapshot
func (e *Engine) AssessVenueByID(ctx context.Context, id string, radiusKm float64, rng models.TimeRange) (models.RiskAssessment, error) {
	return e.Snapshot().AssessVenueByID(ctx, id, radiusKm, rng)
}

// AssessAllVenues scores venues as one batch on the current snapshot
func (e *Engine) AssessAllVenues(ctx context.Context, venues []models.Venue, radiusKm float64, rng models.TimeRange) ([]models.RiskAssessment, error) {
	return e.Snapshot().AssessAllVenues(ctx, venues, radiusKm, rng)
}

// DetectHotspots runs hotspot detection on the current snapshot
func (e *Engine) DetectHotspots(ctx context.Context, categories []models.Category, cellSizeKm float64) (models.HotspotResult, error) {
	return e.Snapshot().DetectHotspots(ctx, categories, cellSizeKm)
}

// HeatmapGrid aggregates the current snapshot per grid cell
func (e *Engine) HeatmapGrid(cellSizeKm float64) (models.Heatmap, error) {
	return e.Snapshot().HeatmapGrid(cellSizeKm)
}

// TemporalTrend buckets the current snapshot over time
func (e *Engine) TemporalTrend(rng models.TimeRange, width models.BucketWidth, categories []models.Category) (models.TrendSeries, error) {
	return e.Snapshot().TemporalTrend(rng, width, categories)
}
