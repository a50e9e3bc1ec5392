package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGaugeSetAddSub(t *testing.T) {
	g := NewGauge(GaugeOpts{Name: "g"})
	g.Set(5)
	g.Add(2)
	g.Sub(1)
	assert.Equal(t, 6.0, g.get())
}

func TestGaugeIncDec(t *testing.T) {
	g := NewGauge(GaugeOpts{Name: "g"})
	g.Inc()
	g.Inc()
	g.Dec()
	assert.Equal(t, 1.0, g.get())
}

func TestGaugeVecIndependentSeries(t *testing.T) {
	gv := NewGaugeVec(GaugeOpts{Name: "g"}, []string{"shard"})
	gv.WithLabelValues("a").Set(1)
	gv.WithLabelValues("b").Set(2)
	assert.Equal(t, 1.0, gv.WithLabelValues("a").get())
	assert.Equal(t, 2.0, gv.WithLabelValues("b").get())
}
