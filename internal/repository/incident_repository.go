package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/venue-risk-backend-go/internal/database"
	"github.com/jengzang/venue-risk-backend-go/internal/models"
)

// IncidentRepository reads and writes raw incident rows. Rows are returned
// unvalidated; the analysis engine rejects bad records at load time.
type IncidentRepository struct {
	db *sql.DB
}

// NewIncidentRepository creates a new incident repository
func NewIncidentRepository(db *sql.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// List returns every stored incident ordered by id
func (r *IncidentRepository) List(ctx context.Context) ([]models.RawIncident, error) {
	query := `SELECT id, latitude, longitude, occurred_at, category, severity, source
		FROM incidents ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]models.RawIncident, 0)
	for rows.Next() {
		var inc models.RawIncident
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&inc.ID, &lat, &lon, &inc.Timestamp, &inc.Category, &inc.Severity, &inc.Source); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		inc.Latitude = nullableFloat(lat)
		inc.Longitude = nullableFloat(lon)
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incidents: %w", err)
	}

	return incidents, nil
}

// Count returns the number of stored incidents
func (r *IncidentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM incidents").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count incidents: %w", err)
	}
	return n, nil
}

// Save upserts incidents by id in a single transaction
func (r *IncidentRepository) Save(ctx context.Context, incidents []models.RawIncident) error {
	query := `INSERT INTO incidents (id, latitude, longitude, occurred_at, category, severity, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			occurred_at = excluded.occurred_at,
			category = excluded.category,
			severity = excluded.severity,
			source = excluded.source`

	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare incident insert: %w", err)
		}
		defer stmt.Close()

		for _, inc := range incidents {
			if _, err := stmt.ExecContext(ctx, inc.ID, sqlFloat(inc.Latitude), sqlFloat(inc.Longitude),
				inc.Timestamp, inc.Category, inc.Severity, inc.Source); err != nil {
				return fmt.Errorf("failed to save incident %q: %w", inc.ID, err)
			}
		}
		return nil
	})
}
