package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheus/client_metrics_core/labels"
)

func TestHistogramBucketsMonotonicAndConsistent(t *testing.T) {
	h := NewHistogram(HistogramOpts{Name: "h", Buckets: []float64{1, 2, 5}})
	h.Observe(0.5)
	h.Observe(1.5)
	h.Observe(10)

	dp := h.dataPoint()
	require.Len(t, dp.Buckets, 4) // 1, 2, 5, +Inf

	var prev uint64
	for _, b := range dp.Buckets {
		assert.GreaterOrEqual(t, b.Count, prev)
		prev = b.Count
	}
	assert.Equal(t, dp.Count, dp.Buckets[len(dp.Buckets)-1].Count)
	assert.True(t, math.IsInf(dp.Buckets[len(dp.Buckets)-1].UpperBound, 1))
}

func TestHistogramCountEqualsObservations(t *testing.T) {
	h := NewHistogram(HistogramOpts{Name: "h", Buckets: DefBuckets})
	for i := 0; i < 50; i++ {
		h.Observe(float64(i) * 0.01)
	}
	assert.EqualValues(t, 50, h.dataPoint().Count)
}

func TestHistogramSumAccumulates(t *testing.T) {
	h := NewHistogram(HistogramOpts{Name: "h", Buckets: []float64{1, 2}})
	h.Observe(0.1)
	h.Observe(0.2)
	assert.InDelta(t, 0.3, h.dataPoint().Sum, 1e-9)
}

func TestLinearAndExponentialBuckets(t *testing.T) {
	lin := LinearBuckets(1, 2, 3)
	assert.Equal(t, []float64{1, 3, 5}, lin)

	exp := ExponentialBuckets(1, 2, 4)
	assert.Equal(t, []float64{1, 2, 4, 8}, exp)
}

func TestExponentialBucketsPanicsOnInvalidArgs(t *testing.T) {
	assert.Panics(t, func() { ExponentialBuckets(0, 2, 3) })
	assert.Panics(t, func() { ExponentialBuckets(1, 1, 3) })
}

func TestSortedBoundsDeduplicates(t *testing.T) {
	got, err := sortedBounds([]float64{5, 1, 1, 2, 2, 2, 5})
	require.NoError(t, err)
	require.Len(t, got, 4) // 1, 2, 5, +Inf
	assert.Equal(t, []float64{1, 2, 5}, got[:3])
	assert.True(t, math.IsInf(got[3], 1))
}

func TestSortedBoundsDoesNotDoubleAppendInf(t *testing.T) {
	got, err := sortedBounds([]float64{1, 2, math.Inf(1)})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, math.Inf(1)}, got)
}

func TestSortedBoundsRejectsNaN(t *testing.T) {
	_, err := sortedBounds([]float64{1, math.NaN(), 2})
	assert.Error(t, err)
}

func TestNewHistogramPanicsOnNaNBound(t *testing.T) {
	assert.Panics(t, func() {
		NewHistogram(HistogramOpts{Name: "h", Buckets: []float64{1, math.NaN()}})
	})
}

func TestNewHistogramDeduplicatesDuplicateBuckets(t *testing.T) {
	h := NewHistogram(HistogramOpts{Name: "h", Buckets: []float64{1, 1, 2, 2}})
	dp := h.dataPoint()
	require.Len(t, dp.Buckets, 3) // 1, 2, +Inf
}

func TestNewHistogramPanicsOnReservedLeLabel(t *testing.T) {
	assert.Panics(t, func() {
		NewHistogram(HistogramOpts{Name: "h", ConstLabels: labels.Of("le", "1")})
	})
}

func TestNewHistogramVecPanicsOnReservedLeVariableLabel(t *testing.T) {
	assert.Panics(t, func() {
		NewHistogramVec(HistogramOpts{Name: "h"}, []string{"le"})
	})
}
