// Package risk turns per-venue proximity metrics into comparable 0-100
// scores. Scores are relative: every term is min-max normalised across the
// batch being compared.
package risk

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/stats"
)

// Weights of the four score terms
type Weights struct {
	Seizure  float64 `json:"seizure"`
	Incident float64 `json:"incident"`
	Casualty float64 `json:"casualty"`
	Trend    float64 `json:"trend"`
}

// DefaultWeights returns the stock weighting, which sums to 1
func DefaultWeights() Weights {
	return Weights{Seizure: 0.25, Incident: 0.30, Casualty: 0.30, Trend: 0.15}
}

// Validate rejects negative or non-finite weights and an all-zero set
func (w Weights) Validate() error {
	all := []float64{w.Seizure, w.Incident, w.Casualty, w.Trend}
	var sum float64
	for _, v := range all {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weights must be finite and non-negative, got %+v", models.ErrInvalidInput, w)
		}
		sum += v
	}
	if sum == 0 {
		return fmt.Errorf("%w: at least one weight must be positive", models.ErrInvalidInput)
	}
	return nil
}

// ParseWeights reads "seizure,incident,casualty,trend"
func ParseWeights(s string) (Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Weights{}, fmt.Errorf("%w: expected 4 comma separated weights, got %q", models.ErrInvalidInput, s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Weights{}, fmt.Errorf("%w: weight %q: %v", models.ErrInvalidInput, p, err)
		}
		vals[i] = v
	}
	w := Weights{Seizure: vals[0], Incident: vals[1], Casualty: vals[2], Trend: vals[3]}
	return w, w.Validate()
}

// Input carries the raw metrics of one venue
type Input struct {
	Venue             models.Venue
	RadiusKm          float64
	SeizureCount      int
	IncidentCount     int
	TotalCasualties   float64
	TrendFactor       float64
	ClosestIncidentKm *float64
}

// Scorer computes weighted risk scores
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with validated weights
func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

// Weights returns the scorer's weights
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score assesses a batch of venues; results keep the input order.
//
//	score = 100 * clamp(w1*n(seizures) + w2*n(incidents) + w3*n(casualties)
//	                    + w4*clamp(trend-1, -1, 1), 0, 1)
//
// n() is min-max scaling across the batch. In a batch of one (or when every
// venue shares the same value) n() is 1 for a nonzero value and 0 for zero,
// so an isolated venue with any nearby activity scores on that term.
func (s *Scorer) Score(inputs []Input) ([]models.RiskAssessment, error) {
	for _, in := range inputs {
		if err := validate(in); err != nil {
			return nil, err
		}
	}

	seizures := make([]float64, len(inputs))
	incidents := make([]float64, len(inputs))
	casualties := make([]float64, len(inputs))
	for i, in := range inputs {
		seizures[i] = float64(in.SeizureCount)
		incidents[i] = float64(in.IncidentCount)
		casualties[i] = in.TotalCasualties
	}
	sMin, sMax := stats.MinMax(seizures)
	iMin, iMax := stats.MinMax(incidents)
	cMin, cMax := stats.MinMax(casualties)

	out := make([]models.RiskAssessment, len(inputs))
	for i, in := range inputs {
		raw := s.weights.Seizure*stats.MinMaxNormalize(seizures[i], sMin, sMax) +
			s.weights.Incident*stats.MinMaxNormalize(incidents[i], iMin, iMax) +
			s.weights.Casualty*stats.MinMaxNormalize(casualties[i], cMin, cMax) +
			s.weights.Trend*stats.Clamp(in.TrendFactor-1, -1, 1)
		score := 100 * stats.Clamp(raw, 0, 1)

		out[i] = models.RiskAssessment{
			VenueID:           in.Venue.ID,
			VenueName:         in.Venue.Name,
			RadiusKm:          in.RadiusKm,
			SeizureCount:      in.SeizureCount,
			IncidentCount:     in.IncidentCount,
			TotalCasualties:   in.TotalCasualties,
			TrendFactor:       in.TrendFactor,
			ClosestIncidentKm: in.ClosestIncidentKm,
			Score:             score,
			Band:              BandFor(score),
		}
	}
	return out, nil
}

func validate(in Input) error {
	if in.RadiusKm <= 0 || math.IsNaN(in.RadiusKm) {
		return fmt.Errorf("%w: radius must be positive, got %v", models.ErrInvalidInput, in.RadiusKm)
	}
	if _, ok := in.Venue.Location(); !ok {
		return fmt.Errorf("%w: venue %q has no coordinates", models.ErrInvalidInput, in.Venue.ID)
	}
	return nil
}

// BandFor maps a score to its band; lower bounds are inclusive
func BandFor(score float64) models.RiskBand {
	switch {
	case score < 25:
		return models.BandLow
	case score < 50:
		return models.BandModerate
	case score < 75:
		return models.BandHigh
	default:
		return models.BandSevere
	}
}

// Rank orders assessments by descending score, then venue name, then id
func Rank(assessments []models.RiskAssessment) {
	sort.SliceStable(assessments, func(i, j int) bool {
		a, b := assessments[i], assessments[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.VenueName != b.VenueName {
			return a.VenueName < b.VenueName
		}
		return a.VenueID < b.VenueID
	})
}
