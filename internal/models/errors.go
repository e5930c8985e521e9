package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks caller mistakes: non-positive radius, malformed
	// time range, unknown venue id, venue without coordinates.
	ErrInvalidInput = errors.New("invalid input")

	// ErrVenueNotFound accompanies ErrInvalidInput for unknown venue ids
	ErrVenueNotFound = errors.New("venue not found")

	ErrMissingID         = errors.New("missing id")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidTimestamp  = errors.New("unparsable timestamp")
	ErrInvalidCategory   = errors.New("unknown category")
	ErrInvalidSeverity   = errors.New("invalid severity")
	ErrDuplicateID       = errors.New("duplicate id")
)

// DataIntegrityError describes a single record rejected at ingestion
type DataIntegrityError struct {
	RecordID string
	Kind     string // "incident" or "venue"
	Detail   string
	Err      error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("%s %q rejected: %v (%s)", e.Kind, e.RecordID, e.Err, e.Detail)
}

func (e *DataIntegrityError) Unwrap() error {
	return e.Err
}
