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
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_metrics_core/exemplar"
	"github.com/prometheus/client_metrics_core/labels"
	"github.com/prometheus/client_metrics_core/model"
)

// ErrNegativeDelta is the value Add panics with when a Counter is asked
// to move backward.
var ErrNegativeDelta = errors.New("metrics: counter cannot decrease in value")

// CounterOpts bundles the options for creating a Counter. Name is
// mandatory; the others may be left at their zero value.
type CounterOpts struct {
	Name        string
	Help        string
	Unit        model.Unit
	ConstLabels labels.Labels

	// Sampler, if set, enables AddWithExemplar-style sampling through
	// Sample instead of always-overwrite semantics.
	Sampler exemplar.Sampler

	now func() time.Time
}

// Counter is a value that only ever increases between scrapes, tracked
// with the same split integer/fractional atomic accumulator the teacher
// uses: Inc and whole-number Add calls hit a lock-free uint64, and only
// fractional Add calls pay for a CAS loop on a separate float64 bit
// pattern (§4.2).
type counter struct {
	valInt  uint64
	valBits uint64

	labels     labels.Labels
	createdMs  int64
	exemplar   atomic.Pointer[exemplar.Exemplar]
	sampler    exemplar.Sampler
	now        func() time.Time
}

func newCounterElem(opts CounterOpts, now func() time.Time) func(labels.Labels) *counter {
	return func(l labels.Labels) *counter {
		return &counter{
			labels:    l,
			createdMs: now().UnixMilli(),
			sampler:   opts.Sampler,
			now:       now,
		}
	}
}

// Add adds v to the counter. It panics with ErrNegativeDelta if v < 0.
func (c *counter) Add(v float64) {
	if v < 0 {
		panic(ErrNegativeDelta)
	}
	ival := uint64(v)
	if float64(ival) == v {
		atomic.AddUint64(&c.valInt, ival)
		return
	}
	for {
		old := atomic.LoadUint64(&c.valBits)
		next := math.Float64bits(math.Float64frombits(old) + v)
		if atomic.CompareAndSwapUint64(&c.valBits, old, next) {
			return
		}
	}
}

// Inc increments the counter by 1.
func (c *counter) Inc() { atomic.AddUint64(&c.valInt, 1) }

// AddWithExemplar adds v and unconditionally replaces the stored
// exemplar, bypassing any Sampler (§4.6).
func (c *counter) AddWithExemplar(v float64, lbls labels.Labels) {
	c.Add(v)
	e := exemplar.Inject(lbls, v, c.now())
	c.exemplar.Store(&e)
}

// Sample runs the counter's Sampler (if any) against v and the current
// exemplar, replacing it if the sampler returns non-nil.
func (c *counter) Sample(v float64) {
	if c.sampler == nil {
		return
	}
	var prev exemplar.Exemplar
	if p := c.exemplar.Load(); p != nil {
		prev = *p
	}
	if next := c.sampler(v, math.Inf(-1), math.Inf(1), prev); next != nil {
		c.exemplar.Store(next)
	}
}

func (c *counter) get() float64 {
	ival := atomic.LoadUint64(&c.valInt)
	fval := math.Float64frombits(atomic.LoadUint64(&c.valBits))
	return fval + float64(ival)
}

func (c *counter) dataPoint() model.CounterDataPoint {
	return model.CounterDataPoint{
		Labels:                 c.labels,
		Value:                  c.get(),
		CreatedTimestampMillis: c.createdMs,
		Exemplar:               c.exemplar.Load(),
	}
}

// Counter is the public handle for a single counter series.
type Counter struct {
	*counter
	desc *Desc
}

// NewCounter constructs a standalone Counter collector.
func NewCounter(opts CounterOpts) *Counter {
	if opts.now == nil {
		opts.now = time.Now
	}
	desc := NewDesc(model.TypeCounter, opts.Name, opts.Help, opts.Unit, opts.ConstLabels, nil)
	c := newCounterElem(opts, opts.now)(opts.ConstLabels)
	return &Counter{counter: c, desc: desc}
}

var _ Collector = (*Counter)(nil)

// Collect implements Collector.
func (c *Counter) Collect(out *[]model.MetricSnapshot) {
	*out = append(*out, model.CounterSnapshot{
		Metadata: c.desc.Metadata(),
		Points:   []model.CounterDataPoint{c.dataPoint()},
	})
}

// CounterVec bundles a family of Counters differing only in their
// variable label values.
type CounterVec struct {
	desc *Desc
	v    *vec[counter]
	now  func() time.Time
}

// NewCounterVec constructs a CounterVec partitioned by variableLabels.
func NewCounterVec(opts CounterOpts, variableLabels []string) *CounterVec {
	if opts.now == nil {
		opts.now = time.Now
	}
	desc := NewDesc(model.TypeCounter, opts.Name, opts.Help, opts.Unit, opts.ConstLabels, variableLabels)
	if err := desc.Err(); err != nil {
		panic(err)
	}
	newElem := func(l labels.Labels) *counter {
		return &counter{labels: l, createdMs: opts.now().UnixMilli(), sampler: opts.Sampler, now: opts.now}
	}
	return &CounterVec{desc: desc, v: newVec(desc, newElem), now: opts.now}
}

// WithLabelValues returns the Counter for lvs, creating it on first
// access.
func (cv *CounterVec) WithLabelValues(lvs ...string) *Counter {
	e, err := cv.v.getOrCreate(lvs...)
	if err != nil {
		panic(err)
	}
	return &Counter{counter: e}
}

// With returns the Counter for the given label map.
func (cv *CounterVec) With(l labels.Labels) *Counter {
	e, err := cv.v.getOrCreateWith(l)
	if err != nil {
		panic(err)
	}
	return &Counter{counter: e}
}

// CurryWith returns a CounterVec pre-curried with l.
func (cv *CounterVec) CurryWith(l labels.Labels) (*CounterVec, error) {
	nv, err := cv.v.curryWith(l)
	if err != nil {
		return nil, err
	}
	return &CounterVec{desc: cv.desc, v: nv, now: cv.now}, nil
}

// Reset deletes every series in the vector.
func (cv *CounterVec) Reset() { cv.v.reset() }

var _ Collector = (*CounterVec)(nil)

// Collect implements Collector.
func (cv *CounterVec) Collect(out *[]model.MetricSnapshot) {
	snap := model.CounterSnapshot{Metadata: cv.desc.Metadata()}
	cv.v.forEach(func(_ labels.Labels, c *counter) {
		snap.Points = append(snap.Points, c.dataPoint())
	})
	*out = append(*out, snap)
}
