package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prometheus/client_metrics_core/internal/testhelper"
	"github.com/prometheus/client_metrics_core/labels"
)

func TestSummaryCountSumCoherence(t *testing.T) {
	s := NewSummary(SummaryOpts{Name: "s"})
	values := []float64{0.1, 0.2, 0.3, 0.4}
	var want float64
	for _, v := range values {
		s.Observe(v)
		want += v
	}

	dp := s.dataPoint()
	assert.EqualValues(t, len(values), dp.Count)
	assert.InDelta(t, want, dp.Sum, 1e-9)
}

func TestSummaryWithNoObjectivesHasNoQuantiles(t *testing.T) {
	s := NewSummary(SummaryOpts{Name: "latency_seconds"})
	s.Observe(0.4)
	s.Observe(0.4)
	s.Observe(0.4)

	dp := s.dataPoint()
	assert.EqualValues(t, 3, dp.Count)
	assert.InDelta(t, 1.2, dp.Sum, 1e-9)
	assert.Empty(t, dp.Quantiles)
}

func TestSummaryWithObjectivesReportsQuantiles(t *testing.T) {
	s := NewSummary(SummaryOpts{
		Name:       "s",
		Objectives: []Objective{{Quantile: 0.5, Error: 0.01}},
	})
	for i := 1; i <= 100; i++ {
		s.Observe(float64(i))
	}
	dp := s.dataPoint()
	assert.Len(t, dp.Quantiles, 1)
	assert.InDelta(t, 50, dp.Quantiles[0].Value, 10, testhelper.Dump(dp.Quantiles))
}

func TestNewSummaryPanicsOnNegativeMaxAge(t *testing.T) {
	assert.Panics(t, func() {
		NewSummary(SummaryOpts{Name: "s", MaxAge: -time.Second})
	})
}

func TestNewSummaryPanicsOnNegativeAgeBuckets(t *testing.T) {
	assert.Panics(t, func() {
		NewSummary(SummaryOpts{Name: "s", AgeBuckets: -1})
	})
}

func TestNewSummaryPanicsOnOutOfRangeQuantile(t *testing.T) {
	assert.Panics(t, func() {
		NewSummary(SummaryOpts{Name: "s", Objectives: []Objective{{Quantile: 1.5, Error: 0.01}}})
	})
}

func TestNewSummaryZeroMaxAgeAndAgeBucketsUseDefaults(t *testing.T) {
	s := NewSummary(SummaryOpts{Name: "s", Objectives: []Objective{{Quantile: 0.5, Error: 0.01}}})
	s.Observe(1)
	assert.NotPanics(t, func() { s.dataPoint() })
}

func TestNewSummaryPanicsOnReservedQuantileLabel(t *testing.T) {
	assert.Panics(t, func() {
		NewSummary(SummaryOpts{Name: "s", ConstLabels: labels.Of("quantile", "0.5")})
	})
}

func TestNewSummaryVecPanicsOnReservedQuantileVariableLabel(t *testing.T) {
	assert.Panics(t, func() {
		NewSummaryVec(SummaryOpts{Name: "s"}, []string{"quantile"})
	})
}
