package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheus/client_metrics_core/model"
)

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", NewCounter(CounterOpts{Name: "a"})))
	err := r.Register("a", NewCounter(CounterOpts{Name: "a"}))
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRegistryMustRegisterUsesFamilyName(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewCounter(CounterOpts{Name: "requests"}))
	assert.True(t, r.Unregister("requests"))
}

func TestRegistryScrapeOrdersByFamilyName(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewCounter(CounterOpts{Name: "zeta"}))
	r.MustRegister(NewCounter(CounterOpts{Name: "alpha"}))
	r.MustRegister(NewGauge(GaugeOpts{Name: "mid"}))

	snaps, failures := r.Scrape()
	require.Empty(t, failures)
	require.Len(t, snaps, 3)
	assert.Equal(t, "alpha", model.Name(snaps[0]))
	assert.Equal(t, "mid", model.Name(snaps[1]))
	assert.Equal(t, "zeta", model.Name(snaps[2]))
}

type panickyCollector struct{}

func (panickyCollector) Collect(out *[]model.MetricSnapshot) { panic(errors.New("boom")) }

func TestRegistryScrapeRecoversFromPanickingCollector(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("bad", panickyCollector{}))
	r.MustRegister(NewCounter(CounterOpts{Name: "good"}))

	snaps, failures := r.Scrape()
	require.Len(t, snaps, 1)
	require.Len(t, failures, 1)

	var cfe *CollectorFailedError
	require.ErrorAs(t, failures[0], &cfe)
	assert.Equal(t, "bad", cfe.Name)
}

func TestRegistryUnregisterReportsPresence(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Unregister("missing"))
	require.NoError(t, r.Register("present", NewCounter(CounterOpts{Name: "present"})))
	assert.True(t, r.Unregister("present"))
	assert.False(t, r.Unregister("present"))
}
