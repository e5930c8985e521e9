package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/venue-risk-backend-go/internal/database"
	"github.com/jengzang/venue-risk-backend-go/internal/models"
)

func fptr(f float64) *float64 { return &f }

func TestRepositoriesRoundTrip(t *testing.T) {
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "risk.db")})
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	incidents := NewIncidentRepository(db)
	venues := NewVenueRepository(db)

	rawIncidents := []models.RawIncident{
		{ID: "i2", Timestamp: "2024-02-01", Category: "migration-incident", Severity: 4},
		{ID: "i1", Latitude: fptr(31.76), Longitude: fptr(-106.48), Timestamp: "2024-01-01T12:00:00Z", Category: "drug-seizure", Severity: 120.5, Source: "cbp"},
	}
	require.NoError(t, incidents.Save(ctx, rawIncidents))

	got, err := incidents.List(ctx)
	require.NoError(t, err)
	want := []models.RawIncident{rawIncidents[1], rawIncidents[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("incidents mismatch (-want +got):\n%s", diff)
	}

	// upsert replaces by id
	rawIncidents[0].Latitude = fptr(25.9)
	rawIncidents[0].Longitude = fptr(-97.5)
	require.NoError(t, incidents.Save(ctx, rawIncidents[:1]))
	n, err := incidents.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	got, err = incidents.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, got[1].Latitude)
	assert.Equal(t, 25.9, *got[1].Latitude)

	stadium := models.Venue{ID: "v1", Name: "Sun Bowl", City: "El Paso", Country: "US", Latitude: fptr(31.77), Longitude: fptr(-106.51), Capacity: 51500}
	unplaced := models.Venue{ID: "v2", Name: "TBD"}
	require.NoError(t, venues.Save(ctx, []models.Venue{unplaced, stadium}))

	gotVenues, err := venues.List(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]models.Venue{stadium, unplaced}, gotVenues); diff != "" {
		t.Errorf("venues mismatch (-want +got):\n%s", diff)
	}
}

func TestIncidentListQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, latitude, longitude").WillReturnError(errors.New("disk I/O error"))

	_, err = NewIncidentRepository(db).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query incidents")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncidentListNullCoordinates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "latitude", "longitude", "occurred_at", "category", "severity", "source"}).
		AddRow("i1", nil, nil, "2024-01-01", "drug-seizure", 1.0, "").
		AddRow("i2", 10.5, 20.5, "2024-01-02", "migration-incident", 2.0, "un")
	mock.ExpectQuery("SELECT id, latitude, longitude").WillReturnRows(rows)

	got, err := NewIncidentRepository(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Latitude)
	assert.Nil(t, got[0].Longitude)
	require.NotNil(t, got[1].Latitude)
	assert.Equal(t, 10.5, *got[1].Latitude)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncidentListScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "latitude", "longitude", "occurred_at", "category", "severity", "source"}).
		AddRow("i1", "north", nil, "2024-01-01", "drug-seizure", 1.0, "")
	mock.ExpectQuery("SELECT id, latitude, longitude").WillReturnRows(rows)

	_, err = NewIncidentRepository(db).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scan incident")
}

func TestVenueSaveRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO venues")
	prep.ExpectExec().WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err = NewVenueRepository(db).Save(context.Background(), []models.Venue{{ID: "v1", Name: "Venue"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to save venue "v1"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncidentCountError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("locked"))

	_, err = NewIncidentRepository(db).Count(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
