// Copyright 2014 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_metrics_core/exemplar"
	"github.com/prometheus/client_metrics_core/labels"
	"github.com/prometheus/client_metrics_core/model"
)

// GaugeOpts bundles the options for creating a Gauge.
type GaugeOpts struct {
	Name        string
	Help        string
	Unit        model.Unit
	ConstLabels labels.Labels
	Sampler     exemplar.Sampler

	now func() time.Time
}

// gauge is a single atomic float64 value, per §4.3. Unlike Counter it
// has no split int/frac accumulator since gauges move in both
// directions and Set dominates the hot path rather than Inc.
type gauge struct {
	valBits  uint64
	labels   labels.Labels
	exemplar atomic.Pointer[exemplar.Exemplar]
	sampler  exemplar.Sampler
	now      func() time.Time
}

// Set assigns v directly.
func (g *gauge) Set(v float64) { atomic.StoreUint64(&g.valBits, math.Float64bits(v)) }

// Add adds v (possibly negative) to the gauge.
func (g *gauge) Add(v float64) {
	for {
		old := atomic.LoadUint64(&g.valBits)
		next := math.Float64bits(math.Float64frombits(old) + v)
		if atomic.CompareAndSwapUint64(&g.valBits, old, next) {
			return
		}
	}
}

// Sub subtracts v.
func (g *gauge) Sub(v float64) { g.Add(-v) }

// Inc increments the gauge by 1.
func (g *gauge) Inc() { g.Add(1) }

// Dec decrements the gauge by 1.
func (g *gauge) Dec() { g.Add(-1) }

// SetToCurrentTime sets the gauge to the number of seconds since the
// Unix epoch, the conventional use for a "last success" gauge.
func (g *gauge) SetToCurrentTime() { g.Set(float64(g.now().UnixNano()) / 1e9) }

// SetWithExemplar sets v and unconditionally replaces the exemplar.
func (g *gauge) SetWithExemplar(v float64, lbls labels.Labels) {
	g.Set(v)
	e := exemplar.Inject(lbls, v, g.now())
	g.exemplar.Store(&e)
}

func (g *gauge) get() float64 { return math.Float64frombits(atomic.LoadUint64(&g.valBits)) }

func (g *gauge) dataPoint() model.GaugeDataPoint {
	return model.GaugeDataPoint{Labels: g.labels, Value: g.get(), Exemplar: g.exemplar.Load()}
}

// Gauge is the public handle for a single gauge series.
type Gauge struct {
	*gauge
	desc *Desc
}

// NewGauge constructs a standalone Gauge collector.
func NewGauge(opts GaugeOpts) *Gauge {
	if opts.now == nil {
		opts.now = time.Now
	}
	desc := NewDesc(model.TypeGauge, opts.Name, opts.Help, opts.Unit, opts.ConstLabels, nil)
	g := &gauge{labels: opts.ConstLabels, sampler: opts.Sampler, now: opts.now}
	return &Gauge{gauge: g, desc: desc}
}

var _ Collector = (*Gauge)(nil)

// Collect implements Collector.
func (g *Gauge) Collect(out *[]model.MetricSnapshot) {
	*out = append(*out, model.GaugeSnapshot{
		Metadata: g.desc.Metadata(),
		Points:   []model.GaugeDataPoint{g.dataPoint()},
	})
}

// GaugeVec bundles a family of Gauges differing only in variable label
// values.
type GaugeVec struct {
	desc *Desc
	v    *vec[gauge]
	now  func() time.Time
}

// NewGaugeVec constructs a GaugeVec partitioned by variableLabels.
func NewGaugeVec(opts GaugeOpts, variableLabels []string) *GaugeVec {
	if opts.now == nil {
		opts.now = time.Now
	}
	desc := NewDesc(model.TypeGauge, opts.Name, opts.Help, opts.Unit, opts.ConstLabels, variableLabels)
	if err := desc.Err(); err != nil {
		panic(err)
	}
	newElem := func(l labels.Labels) *gauge {
		return &gauge{labels: l, sampler: opts.Sampler, now: opts.now}
	}
	return &GaugeVec{desc: desc, v: newVec(desc, newElem), now: opts.now}
}

// WithLabelValues returns the Gauge for lvs, creating it on first access.
func (gv *GaugeVec) WithLabelValues(lvs ...string) *Gauge {
	e, err := gv.v.getOrCreate(lvs...)
	if err != nil {
		panic(err)
	}
	return &Gauge{gauge: e, desc: gv.desc}
}

// With returns the Gauge for the given label map.
func (gv *GaugeVec) With(l labels.Labels) *Gauge {
	e, err := gv.v.getOrCreateWith(l)
	if err != nil {
		panic(err)
	}
	return &Gauge{gauge: e, desc: gv.desc}
}

// CurryWith returns a GaugeVec pre-curried with l.
func (gv *GaugeVec) CurryWith(l labels.Labels) (*GaugeVec, error) {
	nv, err := gv.v.curryWith(l)
	if err != nil {
		return nil, err
	}
	return &GaugeVec{desc: gv.desc, v: nv, now: gv.now}, nil
}

// Reset deletes every series in the vector.
func (gv *GaugeVec) Reset() { gv.v.reset() }

var _ Collector = (*GaugeVec)(nil)

// Collect implements Collector.
func (gv *GaugeVec) Collect(out *[]model.MetricSnapshot) {
	snap := model.GaugeSnapshot{Metadata: gv.desc.Metadata()}
	gv.v.forEach(func(_ labels.Labels, g *gauge) {
		snap.Points = append(snap.Points, g.dataPoint())
	})
	*out = append(*out, snap)
}
