package risk

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/venue-risk-backend-go/internal/models"
)

func venue(id, name string) models.Venue {
	lat, lon := 40.8128, -74.0742
	return models.Venue{ID: id, Name: name, Latitude: &lat, Longitude: &lon}
}

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultWeights())
	require.NoError(t, err)
	return s
}

func TestBandBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  models.RiskBand
	}{
		{0, models.BandLow},
		{24.999, models.BandLow},
		{25, models.BandModerate},
		{49.999, models.BandModerate},
		{50, models.BandHigh},
		{74.999, models.BandHigh},
		{75, models.BandSevere},
		{100, models.BandSevere},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BandFor(tc.score), "score %v", tc.score)
	}
}

func TestScoreNormalisesAcrossBatch(t *testing.T) {
	s := newScorer(t)
	out, err := s.Score([]Input{
		{Venue: venue("a", "Alpha"), RadiusKm: 50, SeizureCount: 10, IncidentCount: 100, TotalCasualties: 40, TrendFactor: 1},
		{Venue: venue("b", "Bravo"), RadiusKm: 50, SeizureCount: 0, IncidentCount: 10, TotalCasualties: 40, TrendFactor: 1},
		{Venue: venue("c", "Charlie"), RadiusKm: 50, SeizureCount: 5, IncidentCount: 55, TotalCasualties: 40, TrendFactor: 1},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)

	// casualties are equal and nonzero, so each venue gets the full casualty term
	assert.InDelta(t, 100*(0.25+0.30+0.30), out[0].Score, 1e-9)
	assert.InDelta(t, 100*0.30, out[1].Score, 1e-9)
	assert.InDelta(t, 100*(0.125+0.15+0.30), out[2].Score, 1e-9)
	assert.Equal(t, models.BandSevere, out[0].Band)
	assert.Equal(t, models.BandModerate, out[1].Band)
	assert.Equal(t, models.BandHigh, out[2].Band)
}

func TestScoreSingleVenueDegenerates(t *testing.T) {
	s := newScorer(t)

	out, err := s.Score([]Input{{Venue: venue("a", "Alpha"), RadiusKm: 10, SeizureCount: 3, TrendFactor: 1}})
	require.NoError(t, err)
	assert.InDelta(t, 25, out[0].Score, 1e-9)
	assert.Equal(t, models.BandModerate, out[0].Band, "score of exactly 25 is Moderate")

	out, err = s.Score([]Input{{Venue: venue("a", "Alpha"), RadiusKm: 10, TrendFactor: 1}})
	require.NoError(t, err)
	assert.Zero(t, out[0].Score)
	assert.Equal(t, models.BandLow, out[0].Band)
}

func TestScoreTrendTerm(t *testing.T) {
	s := newScorer(t)
	out, err := s.Score([]Input{
		{Venue: venue("up", "Up"), RadiusKm: 10, IncidentCount: 1, TrendFactor: 5},
		{Venue: venue("down", "Down"), RadiusKm: 10, IncidentCount: 1, TrendFactor: 0},
	})
	require.NoError(t, err)
	assert.InDelta(t, 100*(0.30+0.15), out[0].Score, 1e-9)
	assert.InDelta(t, 100*(0.30-0.15), out[1].Score, 1e-9)

	// negative trend never pushes below zero
	out, err = s.Score([]Input{{Venue: venue("q", "Quiet"), RadiusKm: 10, TrendFactor: 0}})
	require.NoError(t, err)
	assert.Zero(t, out[0].Score)
}

func TestScoreAlwaysWithinBounds(t *testing.T) {
	s, err := NewScorer(Weights{Seizure: 1, Incident: 1, Casualty: 1, Trend: 1})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	inputs := make([]Input, 40)
	for i := range inputs {
		inputs[i] = Input{
			Venue:           venue(fmt.Sprint(i), fmt.Sprint("v", i)),
			RadiusKm:        25,
			SeizureCount:    rng.Intn(50),
			IncidentCount:   rng.Intn(500),
			TotalCasualties: rng.Float64() * 100,
			TrendFactor:     rng.Float64() * 4,
		}
	}
	out, err := s.Score(inputs)
	require.NoError(t, err)
	for _, a := range out {
		assert.GreaterOrEqual(t, a.Score, 0.0)
		assert.LessOrEqual(t, a.Score, 100.0)
	}
}

func TestScoreRejectsInvalidInput(t *testing.T) {
	s := newScorer(t)

	_, err := s.Score([]Input{{Venue: venue("a", "A"), RadiusKm: 0}})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = s.Score([]Input{{Venue: models.Venue{ID: "nowhere", Name: "Nowhere"}, RadiusKm: 10}})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRankOrdersByScoreThenName(t *testing.T) {
	list := []models.RiskAssessment{
		{VenueID: "1", VenueName: "Zulu", Score: 40},
		{VenueID: "2", VenueName: "Alpha", Score: 40},
		{VenueID: "3", VenueName: "Mike", Score: 90},
	}
	Rank(list)
	assert.Equal(t, []string{"3", "2", "1"}, []string{list[0].VenueID, list[1].VenueID, list[2].VenueID})
}

func TestWeights(t *testing.T) {
	w, err := ParseWeights("0.25, 0.30,0.30,0.15")
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), w)

	_, err = ParseWeights("1,2,3")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = ParseWeights("1,2,x,4")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = ParseWeights("0.5,-0.1,0.3,0.3")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = NewScorer(Weights{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
