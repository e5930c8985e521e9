package models

import (
	"fmt"
	"time"
)

// BucketWidth selects the calendar unit of a trend series
type BucketWidth string

const (
	BucketDaily   BucketWidth = "daily"
	BucketMonthly BucketWidth = "monthly"
	BucketYearly  BucketWidth = "yearly"
)

// ParseBucketWidth validates a caller supplied bucket width
func ParseBucketWidth(s string) (BucketWidth, error) {
	switch w := BucketWidth(s); w {
	case BucketDaily, BucketMonthly, BucketYearly:
		return w, nil
	}
	return "", fmt.Errorf("%w: unknown bucket width %q", ErrInvalidInput, s)
}

// TimeRange is an inclusive [Start, End] interval
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate rejects zero or inverted ranges
func (r TimeRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: time range needs both start and end", ErrInvalidInput)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: time range end %s before start %s",
			ErrInvalidInput, r.End.Format(time.RFC3339), r.Start.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t falls inside the range, both ends inclusive
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// TrendBucket is one window of a trend series. PeriodEnd is exclusive.
type TrendBucket struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Count       int       `json:"count"`
	SeveritySum float64   `json:"severity_sum"`
}

// TrendSeries is the response shape of a temporal trend query
type TrendSeries struct {
	Range       TimeRange     `json:"range"`
	Width       BucketWidth   `json:"width"`
	Buckets     []TrendBucket `json:"buckets"`
	Total       int           `json:"total"`
	TrendFactor float64       `json:"trend_factor"`
}
