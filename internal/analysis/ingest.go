package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/spatial"
)

// validateIncident turns a raw record into an IncidentPoint. Out-of-range
// coordinates are rejected, never clamped.
func validateIncident(raw models.RawIncident) (models.IncidentPoint, *models.DataIntegrityError) {
	reject := func(err error, detail string) (models.IncidentPoint, *models.DataIntegrityError) {
		return models.IncidentPoint{}, &models.DataIntegrityError{RecordID: raw.ID, Kind: "incident", Detail: detail, Err: err}
	}

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return reject(models.ErrMissingID, "empty id")
	}
	if raw.Latitude == nil || raw.Longitude == nil {
		return reject(models.ErrInvalidCoordinate, "coordinates missing")
	}
	loc := spatial.Point{Lat: *raw.Latitude, Lon: *raw.Longitude}
	if !loc.Valid() {
		return reject(models.ErrInvalidCoordinate, fmt.Sprintf("lat=%v lon=%v", loc.Lat, loc.Lon))
	}

	ts, err := models.ParseTime(raw.Timestamp)
	if err != nil {
		return reject(models.ErrInvalidTimestamp, err.Error())
	}

	category := models.Category(strings.ToLower(strings.TrimSpace(raw.Category)))
	if !category.Valid() {
		return reject(models.ErrInvalidCategory, fmt.Sprintf("category=%q", raw.Category))
	}

	if raw.Severity < 0 || math.IsNaN(raw.Severity) || math.IsInf(raw.Severity, 0) {
		return reject(models.ErrInvalidSeverity, fmt.Sprintf("severity=%v", raw.Severity))
	}

	return models.IncidentPoint{
		ID:        id,
		Latitude:  loc.Lat,
		Longitude: loc.Lon,
		Timestamp: ts,
		Category:  category,
		Severity:  raw.Severity,
		Source:    raw.Source,
	}, nil
}

// validateVenue accepts venues without coordinates; they load but cannot be
// assessed. Half-specified or out-of-range coordinates are rejected.
func validateVenue(v models.Venue) (models.Venue, *models.DataIntegrityError) {
	reject := func(err error, detail string) (models.Venue, *models.DataIntegrityError) {
		return models.Venue{}, &models.DataIntegrityError{RecordID: v.ID, Kind: "venue", Detail: detail, Err: err}
	}

	v.ID = strings.TrimSpace(v.ID)
	if v.ID == "" {
		return reject(models.ErrMissingID, "empty id")
	}
	if (v.Latitude == nil) != (v.Longitude == nil) {
		return reject(models.ErrInvalidCoordinate, "only one coordinate set")
	}
	if loc, ok := v.Location(); ok && !loc.Valid() {
		return reject(models.ErrInvalidCoordinate, fmt.Sprintf("lat=%v lon=%v", loc.Lat, loc.Lon))
	}
	return copyVenue(v), nil
}

// copyVenue detaches the coordinate pointers from the caller's copy
func copyVenue(v models.Venue) models.Venue {
	if v.Latitude != nil {
		lat := *v.Latitude
		v.Latitude = &lat
	}
	if v.Longitude != nil {
		lon := *v.Longitude
		v.Longitude = &lon
	}
	return v
}
