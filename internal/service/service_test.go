package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/venue-risk-backend-go/internal/analysis"
	"github.com/jengzang/venue-risk-backend-go/internal/models"
)

func fptr(f float64) *float64 { return &f }

type memIncidents struct {
	rows []models.RawIncident
	err  error
}

func (m *memIncidents) List(context.Context) ([]models.RawIncident, error) { return m.rows, m.err }
func (m *memIncidents) Count(context.Context) (int, error)                  { return len(m.rows), m.err }
func (m *memIncidents) Save(_ context.Context, rows []models.RawIncident) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, rows...)
	return nil
}

type memVenues struct {
	rows []models.Venue
	err  error
}

func (m *memVenues) List(context.Context) ([]models.Venue, error) { return m.rows, m.err }
func (m *memVenues) Save(_ context.Context, rows []models.Venue) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, rows...)
	return nil
}

func fixture() ([]models.RawIncident, []models.Venue) {
	incidents := []models.RawIncident{
		{ID: "a", Latitude: fptr(40.81), Longitude: fptr(-74.07), Timestamp: "2024-01-10", Category: "drug-seizure", Severity: 12},
		{ID: "b", Latitude: fptr(40.82), Longitude: fptr(-74.08), Timestamp: "2024-03-05", Category: "migration-incident", Severity: 3},
		{ID: "bad", Latitude: fptr(140), Longitude: fptr(0), Timestamp: "2024-03-05", Category: "drug-seizure"},
	}
	venues := []models.Venue{
		{ID: "metlife", Name: "MetLife Stadium", Latitude: fptr(40.8128), Longitude: fptr(-74.0742)},
		{ID: "tbd", Name: "Not geocoded"},
	}
	return incidents, venues
}

func newEngine(t *testing.T) *analysis.Engine {
	t.Helper()
	e, err := analysis.NewEngine(analysis.DefaultConfig())
	require.NoError(t, err)
	return e
}

func TestRefreshLoadsFromStores(t *testing.T) {
	incidents, venues := fixture()
	engine := newEngine(t)
	svc := NewRefreshService(engine, &memIncidents{rows: incidents}, &memVenues{rows: venues})

	_, ok := svc.LastReport()
	assert.False(t, ok)

	report, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.IncidentsAccepted)
	assert.Equal(t, 1, report.IncidentsRejected)
	assert.Equal(t, 2, report.VenuesAccepted)
	assert.Equal(t, report.SnapshotID, engine.Snapshot().ID)

	last, ok := svc.LastReport()
	require.True(t, ok)
	assert.Equal(t, report.Version, last.Version)
}

func TestRefreshKeepsSnapshotOnStorageError(t *testing.T) {
	engine := newEngine(t)
	before := engine.Snapshot()
	svc := NewRefreshService(engine, &memIncidents{err: errors.New("disk gone")}, &memVenues{})

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read incidents")
	assert.Same(t, before, engine.Snapshot())

	_, err = svc.StoredIncidents(context.Background())
	assert.ErrorContains(t, err, "failed to count stored incidents")
}

func TestIngestPersistRebuildsFromStorage(t *testing.T) {
	incidents, venues := fixture()
	store := &memIncidents{rows: incidents[:1]}
	engine := newEngine(t)
	svc := NewRefreshService(engine, store, &memVenues{})

	report, err := svc.Ingest(context.Background(), models.LoadRequest{Incidents: incidents[1:2], Venues: venues}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.IncidentsAccepted, "stored and pushed records are both loaded")
	assert.Len(t, store.rows, 2)

	stored, err := svc.StoredIncidents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	report, err = svc.Ingest(context.Background(), models.LoadRequest{Incidents: incidents[1:2]}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.IncidentsAccepted)
	assert.Len(t, store.rows, 2, "in-memory loads do not touch storage")
}

func TestRunStopsWithContext(t *testing.T) {
	incidents, venues := fixture()
	engine := newEngine(t)
	svc := NewRefreshService(engine, &memIncidents{rows: incidents}, &memVenues{rows: venues})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return engine.Snapshot().Version > 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func loadedService(t *testing.T) *AnalysisService {
	t.Helper()
	incidents, venues := fixture()
	engine := newEngine(t)
	engine.Load(incidents, venues)
	return NewAnalysisService(engine, 10)
}

func TestVenueRiskDefaults(t *testing.T) {
	svc := loadedService(t)

	a, err := svc.VenueRisk(context.Background(), "metlife", models.RiskFilter{})
	require.NoError(t, err)
	assert.Equal(t, 10.0, a.RadiusKm)
	assert.Equal(t, 1, a.SeizureCount)
	assert.Equal(t, 1, a.IncidentCount)

	a, err = svc.VenueRisk(context.Background(), "metlife", models.RiskFilter{Start: "2024-03-01", End: "2024-03-05"})
	require.NoError(t, err)
	assert.Zero(t, a.SeizureCount)
	assert.Equal(t, 1, a.IncidentCount, "date-only end covers the whole day")

	_, err = svc.VenueRisk(context.Background(), "metlife", models.RiskFilter{Start: "last week"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.VenueRisk(context.Background(), "tbd", models.RiskFilter{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRankVenuesSkipsUngeocoded(t *testing.T) {
	svc := loadedService(t)

	ranked, err := svc.RankVenues(context.Background(), models.RiskFilter{RadiusKm: 5})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "metlife", ranked[0].VenueID)
}

func TestIncidentsFilters(t *testing.T) {
	svc := loadedService(t)

	list, err := svc.Incidents(models.IncidentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Incidents, 2)
	assert.Equal(t, "b", list.Incidents[0].ID)

	list, err = svc.Incidents(models.IncidentFilter{
		MinLat: fptr(40.8), MinLon: fptr(-74.075), MaxLat: fptr(40.815), MaxLon: fptr(-74.0),
	})
	require.NoError(t, err)
	require.Len(t, list.Incidents, 1)
	assert.Equal(t, "a", list.Incidents[0].ID)

	list, err = svc.Incidents(models.IncidentFilter{End: "2024-01-10"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total, "date-only end covers the whole day")

	_, err = svc.Incidents(models.IncidentFilter{MinLat: fptr(40)})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.Incidents(models.IncidentFilter{Limit: -1})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestTrendsAndHotspots(t *testing.T) {
	svc := loadedService(t)

	series, err := svc.Trends(models.TrendFilter{Category: []string{"Drug-Seizure, migration-incident"}})
	require.NoError(t, err)
	assert.Equal(t, models.BucketMonthly, series.Width)
	assert.Len(t, series.Buckets, 3)
	assert.Equal(t, 2, series.Total)

	_, err = svc.Trends(models.TrendFilter{Width: "weekly"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	result, err := svc.Hotspots(context.Background(), models.HotspotFilter{BudgetMs: 1000})
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.CellSizeKm)

	_, err = svc.Hotspots(context.Background(), models.HotspotFilter{BudgetMs: -1})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSnapshotInfo(t *testing.T) {
	svc := loadedService(t)
	info := svc.Snapshot()
	assert.Equal(t, int64(1), info.Version)
	assert.Equal(t, 2, info.Incidents)
	assert.Equal(t, 2, info.Venues)
	require.NotNil(t, info.Span)
	assert.Len(t, svc.ListVenues(), 2)
}

func TestEmptySnapshotFallsBackToLoadDay(t *testing.T) {
	svc := NewAnalysisService(newEngine(t), 10)

	series, err := svc.Trends(models.TrendFilter{})
	require.NoError(t, err)
	assert.Len(t, series.Buckets, 1)
	assert.Zero(t, series.Total)
}
