package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/jengzang/venue-risk-backend-go/internal/analysis"
	"github.com/jengzang/venue-risk-backend-go/internal/models"
)

// IncidentStore is the persistence side of incident records
type IncidentStore interface {
	List(ctx context.Context) ([]models.RawIncident, error)
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, incidents []models.RawIncident) error
}

// VenueStore is the persistence side of venue records
type VenueStore interface {
	List(ctx context.Context) ([]models.Venue, error)
	Save(ctx context.Context, venues []models.Venue) error
}

// RefreshService moves records from storage into the analysis engine
type RefreshService struct {
	engine    *analysis.Engine
	incidents IncidentStore
	venues    VenueStore

	mu   sync.Mutex
	last *models.LoadReport
}

// NewRefreshService creates a new refresh service
func NewRefreshService(engine *analysis.Engine, incidents IncidentStore, venues VenueStore) *RefreshService {
	return &RefreshService{engine: engine, incidents: incidents, venues: venues}
}

// Refresh reads every stored record and swaps in a new snapshot. A storage
// failure leaves the current snapshot in place.
func (s *RefreshService) Refresh(ctx context.Context) (models.LoadReport, error) {
	incidents, err := s.incidents.List(ctx)
	if err != nil {
		return models.LoadReport{}, fmt.Errorf("failed to read incidents: %w", err)
	}
	venues, err := s.venues.List(ctx)
	if err != nil {
		return models.LoadReport{}, fmt.Errorf("failed to read venues: %w", err)
	}

	report := s.engine.Load(incidents, venues)
	s.remember(report)
	return report, nil
}

// Ingest loads records handed over directly. With persist set they are
// written to storage first and the snapshot is rebuilt from storage, so it
// also covers previously stored records.
func (s *RefreshService) Ingest(ctx context.Context, req models.LoadRequest, persist bool) (models.LoadReport, error) {
	if !persist {
		report := s.engine.Load(req.Incidents, req.Venues)
		s.remember(report)
		return report, nil
	}

	if err := s.incidents.Save(ctx, req.Incidents); err != nil {
		return models.LoadReport{}, err
	}
	if err := s.venues.Save(ctx, req.Venues); err != nil {
		return models.LoadReport{}, err
	}
	return s.Refresh(ctx)
}

// StoredIncidents returns the number of incident rows in storage, which
// may differ from the snapshot when rows were rejected or written since the
// last refresh.
func (s *RefreshService) StoredIncidents(ctx context.Context) (int, error) {
	n, err := s.incidents.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count stored incidents: %w", err)
	}
	return n, nil
}

// LastReport returns the report of the most recent load, if any
func (s *RefreshService) LastReport() (models.LoadReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return models.LoadReport{}, false
	}
	return *s.last, true
}

func (s *RefreshService) remember(report models.LoadReport) {
	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()
}

// Run refreshes every interval until ctx is done. Failed refreshes are
// logged and retried on the next tick.
func (s *RefreshService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				log.WithError(err).Error("refresh.failed")
			}
		}
	}
}
