package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanStdDev(t *testing.T) {
	mean, sd := MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5, mean, 1e-12)
	assert.InDelta(t, 2, sd, 1e-12)

	mean, sd = MeanStdDev([]float64{3})
	assert.Equal(t, 3.0, mean)
	assert.Zero(t, sd)

	mean, sd = MeanStdDev(nil)
	assert.Zero(t, mean)
	assert.Zero(t, sd)
}

func TestMinMaxNormalize(t *testing.T) {
	assert.Equal(t, 0.0, MinMaxNormalize(10, 10, 110))
	assert.Equal(t, 1.0, MinMaxNormalize(110, 10, 110))
	assert.InDelta(t, 0.5, MinMaxNormalize(60, 10, 110), 1e-12)

	// single-value batches
	assert.Equal(t, 1.0, MinMaxNormalize(7, 7, 7))
	assert.Equal(t, 0.0, MinMaxNormalize(0, 0, 0))
}

func TestSumMeanMinMax(t *testing.T) {
	values := []float64{4, -1, 9}
	assert.Equal(t, 12.0, Sum(values))
	assert.Equal(t, 4.0, Mean(values))
	min, max := MinMax(values)
	assert.Equal(t, -1.0, min)
	assert.Equal(t, 9.0, max)

	assert.Zero(t, Sum(nil))
	assert.Zero(t, Mean(nil))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(3, -1, 1))
	assert.Equal(t, -1.0, Clamp(-3, -1, 1))
	assert.Equal(t, 0.25, Clamp(0.25, 0, 1))
	assert.Equal(t, 0.0, Clamp(math.Inf(-1), 0, 1))
}
