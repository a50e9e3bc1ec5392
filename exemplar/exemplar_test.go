package exemplar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheus/client_metrics_core/labels"
)

func TestValidateRejectsOversizedLabels(t *testing.T) {
	e := Exemplar{Labels: labels.Of("trace_id", strings.Repeat("a", 200))}
	assert.ErrorIs(t, e.Validate(), ErrLabelsTooLarge)
}

func TestValidateAcceptsWithinBudget(t *testing.T) {
	e := Exemplar{Labels: labels.Of("trace_id", "abcde")}
	require.NoError(t, e.Validate())
}

func TestDefaultSamplerRespectsRetention(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	sampler := DefaultSampler(time.Second, clock)

	prev := Exemplar{Labels: labels.Of("trace_id", "1"), Timestamp: now}
	assert.Nil(t, sampler(1.0, 0, 1, prev))

	now = now.Add(2 * time.Second)
	got := sampler(1.0, 0, 1, prev)
	require.NotNil(t, got)
	assert.Equal(t, 1.0, got.Value)
}

func TestInjectAlwaysProducesExemplar(t *testing.T) {
	e := Inject(labels.Of("trace_id", "1"), 5, time.Unix(1, 0))
	assert.Equal(t, 5.0, e.Value)
	assert.True(t, e.HasTimestamp())
}
