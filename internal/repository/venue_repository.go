package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/venue-risk-backend-go/internal/database"
	"github.com/jengzang/venue-risk-backend-go/internal/models"
)

// VenueRepository reads and writes venue reference data
type VenueRepository struct {
	db *sql.DB
}

// NewVenueRepository creates a new venue repository
func NewVenueRepository(db *sql.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// List returns every stored venue ordered by id. Missing coordinates come
// back as nil.
func (r *VenueRepository) List(ctx context.Context) ([]models.Venue, error) {
	query := `SELECT id, name, city, country, latitude, longitude, capacity
		FROM venues ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer rows.Close()

	venues := make([]models.Venue, 0)
	for rows.Next() {
		var v models.Venue
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&v.ID, &v.Name, &v.City, &v.Country, &lat, &lon, &v.Capacity); err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		v.Latitude = nullableFloat(lat)
		v.Longitude = nullableFloat(lon)
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate venues: %w", err)
	}

	return venues, nil
}

// Save upserts venues by id in a single transaction
func (r *VenueRepository) Save(ctx context.Context, venues []models.Venue) error {
	query := `INSERT INTO venues (id, name, city, country, latitude, longitude, capacity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			city = excluded.city,
			country = excluded.country,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			capacity = excluded.capacity`

	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare venue insert: %w", err)
		}
		defer stmt.Close()

		for _, v := range venues {
			if _, err := stmt.ExecContext(ctx, v.ID, v.Name, v.City, v.Country,
				sqlFloat(v.Latitude), sqlFloat(v.Longitude), v.Capacity); err != nil {
				return fmt.Errorf("failed to save venue %q: %w", v.ID, err)
			}
		}
		return nil
	})
}

func nullableFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}

func sqlFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
