// Package temporal buckets incidents into calendar windows and derives
// trend factors from the resulting series.
package temporal

import (
	"fmt"
	"time"

	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/stats"
)

// MaxBuckets bounds the length of a single series
const MaxBuckets = 50000

// SurgeTrendFactor is reported when the earliest third of a window holds no
// incidents but the most recent third does. It is the point at which the
// risk scorer's trend term saturates.
const SurgeTrendFactor = 2.0

// truncate returns the start of the calendar bucket containing t (UTC)
func truncate(t time.Time, width models.BucketWidth) time.Time {
	t = t.UTC()
	switch width {
	case models.BucketDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case models.BucketMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
}

func next(start time.Time, width models.BucketWidth) time.Time {
	switch width {
	case models.BucketDaily:
		return start.AddDate(0, 0, 1)
	case models.BucketMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(1, 0, 0)
	}
}

// Windows returns the empty, contiguous bucket sequence covering rng
func Windows(rng models.TimeRange, width models.BucketWidth) ([]models.TrendBucket, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if _, err := models.ParseBucketWidth(string(width)); err != nil {
		return nil, err
	}

	var buckets []models.TrendBucket
	end := rng.End.UTC()
	for start := truncate(rng.Start, width); !start.After(end); start = next(start, width) {
		if len(buckets) == MaxBuckets {
			return nil, fmt.Errorf("%w: range needs more than %d %s buckets", models.ErrInvalidInput, MaxBuckets, width)
		}
		buckets = append(buckets, models.TrendBucket{
			PeriodStart: start,
			PeriodEnd:   next(start, width),
		})
	}
	return buckets, nil
}

// Aggregate counts points and sums their severity per bucket over the
// inclusive range. Buckets with no points are kept with a zero count.
func Aggregate(points []models.IncidentPoint, rng models.TimeRange, width models.BucketWidth) ([]models.TrendBucket, error) {
	buckets, err := Windows(rng, width)
	if err != nil {
		return nil, err
	}

	first := buckets[0].PeriodStart
	for _, p := range points {
		if !rng.Contains(p.Timestamp) {
			continue
		}
		i := bucketIndex(first, p.Timestamp.UTC(), width)
		if i < 0 || i >= len(buckets) {
			continue
		}
		buckets[i].Count++
		buckets[i].SeveritySum += p.Severity
	}
	return buckets, nil
}

// bucketIndex computes the offset of t's bucket from first without walking
// the series.
func bucketIndex(first, t time.Time, width models.BucketWidth) int {
	switch width {
	case models.BucketDaily:
		return int(truncate(t, width).Sub(first).Hours() / 24)
	case models.BucketMonthly:
		return (t.Year()-first.Year())*12 + int(t.Month()) - int(first.Month())
	default:
		return t.Year() - first.Year()
	}
}

// TrendFactor compares the mean count of the most recent third of the
// series with the mean of the earliest third. Values above 1 mean a
// worsening trend. Series shorter than three buckets are neutral (1).
func TrendFactor(buckets []models.TrendBucket) float64 {
	third := len(buckets) / 3
	if third == 0 {
		return 1
	}

	early := make([]float64, third)
	recent := make([]float64, third)
	for i := 0; i < third; i++ {
		early[i] = float64(buckets[i].Count)
		recent[i] = float64(buckets[len(buckets)-third+i].Count)
	}

	earlyMean := stats.Mean(early)
	recentMean := stats.Mean(recent)
	switch {
	case earlyMean == 0 && recentMean == 0:
		return 1
	case earlyMean == 0:
		return SurgeTrendFactor
	}
	return recentMean / earlyMean
}

// Total sums bucket counts
func Total(buckets []models.TrendBucket) int {
	var n int
	for _, b := range buckets {
		n += b.Count
	}
	return n
}
