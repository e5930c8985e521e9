package models

import "time"

// MaxRejectionSamples caps the rejected records echoed back in a load report
const MaxRejectionSamples = 10

// Rejection is a reported sample of a rejected record
type Rejection struct {
	RecordID string `json:"record_id"`
	Kind     string `json:"kind"`
	Reason   string `json:"reason"`
}

// LoadReport summarises one load operation
type LoadReport struct {
	SnapshotID        string         `json:"snapshot_id"`
	Version           int64          `json:"version"`
	LoadedAt          time.Time      `json:"loaded_at"`
	IncidentsAccepted int            `json:"incidents_accepted"`
	IncidentsRejected int            `json:"incidents_rejected"`
	VenuesAccepted    int            `json:"venues_accepted"`
	VenuesRejected    int            `json:"venues_rejected"`
	RejectedByReason  map[string]int `json:"rejected_by_reason"`
	Samples           []Rejection    `json:"samples,omitempty"`
}

// Record tallies a rejection and keeps it as a sample while there is room
func (r *LoadReport) Record(err *DataIntegrityError) {
	if r.RejectedByReason == nil {
		r.RejectedByReason = make(map[string]int)
	}
	reason := err.Err.Error()
	r.RejectedByReason[reason]++

	switch err.Kind {
	case "venue":
		r.VenuesRejected++
	default:
		r.IncidentsRejected++
	}

	if len(r.Samples) < MaxRejectionSamples {
		r.Samples = append(r.Samples, Rejection{
			RecordID: err.RecordID,
			Kind:     err.Kind,
			Reason:   err.Error(),
		})
	}
}
