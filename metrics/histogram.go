// Copyright 2015 The Prometheus Authors
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
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_metrics_core/exemplar"
	"github.com/prometheus/client_metrics_core/labels"
	"github.com/prometheus/client_metrics_core/model"
)

// DefBuckets are the default histogram buckets, matching the teacher's
// DefBuckets, suitable for measuring request durations in seconds.
var DefBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1.0, 2.5, 5.0, 7.5, 10.0}

// LinearBuckets creates count buckets, each width wide, starting at
// start, mirroring the teacher's LinearBuckets.
func LinearBuckets(start, width float64, count int) []float64 {
	buckets := make([]float64, count)
	for i := range buckets {
		buckets[i] = start
		start += width
	}
	return buckets
}

// ExponentialBuckets creates count buckets, where the lowest bucket is
// start and each following bucket is factor times the previous one,
// mirroring the teacher's ExponentialBuckets.
func ExponentialBuckets(start, factor float64, count int) []float64 {
	if start <= 0 || factor <= 1 || count < 1 {
		panic("metrics: ExponentialBuckets needs start > 0, factor > 1, count >= 1")
	}
	buckets := make([]float64, count)
	for i := range buckets {
		buckets[i] = start
		start *= factor
	}
	return buckets
}

// HistogramOpts bundles the options for creating a Histogram.
type HistogramOpts struct {
	Name        string
	Help        string
	Unit        model.Unit
	ConstLabels labels.Labels
	Buckets     []float64 // ascending, +Inf implied; defaults to DefBuckets
	IsGauge     bool      // selects the gauge-histogram variant (§4.5)
	Sampler     exemplar.Sampler

	now func() time.Time
}

// histBucket tracks one fixed upper bound's cumulative count and, if a
// Sampler is set, its exemplar.
type histBucket struct {
	upperBound float64
	count      uint64 // accessed only while mu is held
	exemplar   *exemplar.Exemplar
}

// histogram accumulates observations into fixed cumulative buckets
// (§4.5). A single mutex guards every field: this trades away the
// teacher's lock-free hot/cold double-buffer scheme for a much simpler
// implementation that still keeps bucket counts, the +Inf total, and
// the running sum mutually consistent at every instant, which is the
// invariant §4.5 actually requires.
type histogram struct {
	mu      sync.Mutex
	labels  labels.Labels
	buckets []histBucket // ascending upperBound, last is +Inf
	count   uint64
	sum     float64

	createdMs int64
	isGauge   bool
	sampler   exemplar.Sampler
	now       func() time.Time
}

// newHistogramElem builds the per-series constructor for one instrument.
// bounds is already deduplicated, sorted ascending, and +Inf-terminated
// by sortedBounds; each entry becomes exactly one bucket.
func newHistogramElem(opts HistogramOpts, bounds []float64) func(labels.Labels) *histogram {
	return func(l labels.Labels) *histogram {
		buckets := make([]histBucket, len(bounds))
		for i, b := range bounds {
			buckets[i] = histBucket{upperBound: b}
		}
		return &histogram{
			labels:    l,
			buckets:   buckets,
			createdMs: opts.now().UnixMilli(),
			isGauge:   opts.IsGauge,
			sampler:   opts.Sampler,
			now:       opts.now,
		}
	}
}

// sortedBounds sanitises caller-supplied bucket bounds per §4.5: it
// rejects NaN outright (sort.Float64s' ordering with NaN is
// unspecified), then sorts ascending, deduplicates, and appends +Inf
// only if the bounds don't already end in it.
func sortedBounds(b []float64) ([]float64, error) {
	out := append([]float64(nil), b...)
	for _, v := range out {
		if math.IsNaN(v) {
			return nil, errors.New("metrics: histogram bucket bound is NaN")
		}
	}
	sort.Float64s(out)

	deduped := out[:0]
	for i, v := range out {
		if i == 0 || v != deduped[len(deduped)-1] {
			deduped = append(deduped, v)
		}
	}
	if len(deduped) == 0 || deduped[len(deduped)-1] != math.Inf(1) {
		deduped = append(deduped, math.Inf(1))
	}
	return deduped, nil
}

// Observe records v.
func (h *histogram) Observe(v float64) { h.observe(v, nil, false) }

// ObserveWithExemplar records v and unconditionally overwrites the
// exemplar of the bucket v lands in, bypassing any Sampler (§4.6).
func (h *histogram) ObserveWithExemplar(v float64, lbls labels.Labels) { h.observe(v, &lbls, true) }

func (h *histogram) observe(v float64, exLabels *labels.Labels, force bool) {
	idx := sort.SearchFloat64s(h.bucketBounds(), v)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.sum += v
	h.count++
	for i := idx; i < len(h.buckets); i++ {
		h.buckets[i].count++
	}
	if force && exLabels != nil {
		e := exemplar.Inject(*exLabels, v, h.now())
		h.buckets[idx].exemplar = &e
		return
	}
	if h.sampler != nil {
		lower, upper := h.bucketRange(idx)
		var prev exemplar.Exemplar
		if h.buckets[idx].exemplar != nil {
			prev = *h.buckets[idx].exemplar
		}
		if next := h.sampler(v, lower, upper, prev); next != nil {
			h.buckets[idx].exemplar = next
		}
	}
}

func (h *histogram) bucketBounds() []float64 {
	bounds := make([]float64, len(h.buckets))
	for i, b := range h.buckets {
		bounds[i] = b.upperBound
	}
	return bounds
}

func (h *histogram) bucketRange(idx int) (lower, upper float64) {
	upper = h.buckets[idx].upperBound
	if idx == 0 {
		lower = math.Inf(-1)
		return
	}
	lower = h.buckets[idx-1].upperBound
	return
}

func (h *histogram) dataPoint() model.HistogramDataPoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	buckets := make([]model.Bucket, len(h.buckets))
	for i, b := range h.buckets {
		buckets[i] = model.Bucket{UpperBound: b.upperBound, Count: b.count, Exemplar: b.exemplar}
	}
	return model.HistogramDataPoint{
		Labels:                 h.labels,
		Count:                  h.count,
		Sum:                    h.sum,
		Buckets:                buckets,
		CreatedTimestampMillis: h.createdMs,
	}
}

// Histogram is the public handle for a single histogram series.
type Histogram struct {
	*histogram
	desc *Desc
}

// NewHistogram constructs a standalone Histogram collector.
func NewHistogram(opts HistogramOpts) *Histogram {
	if opts.now == nil {
		opts.now = time.Now
	}
	if opts.Buckets == nil {
		opts.Buckets = DefBuckets
	}
	bounds, err := sortedBounds(opts.Buckets)
	if err != nil {
		panic(err)
	}
	typ := model.TypeHistogram
	if opts.IsGauge {
		typ = model.TypeGaugeHistogram
	}
	desc := NewDesc(typ, opts.Name, opts.Help, opts.Unit, opts.ConstLabels, nil)
	if err := desc.Err(); err != nil {
		panic(err)
	}
	h := newHistogramElem(opts, bounds)(opts.ConstLabels)
	return &Histogram{histogram: h, desc: desc}
}

var _ Collector = (*Histogram)(nil)

// Collect implements Collector.
func (h *Histogram) Collect(out *[]model.MetricSnapshot) {
	*out = append(*out, model.HistogramSnapshot{
		Metadata: h.desc.Metadata(),
		Points:   []model.HistogramDataPoint{h.dataPoint()},
	})
}

// HistogramVec bundles a family of Histograms differing only in
// variable label values.
type HistogramVec struct {
	desc *Desc
	v    *vec[histogram]
}

// NewHistogramVec constructs a HistogramVec partitioned by variableLabels.
func NewHistogramVec(opts HistogramOpts, variableLabels []string) *HistogramVec {
	if opts.now == nil {
		opts.now = time.Now
	}
	if opts.Buckets == nil {
		opts.Buckets = DefBuckets
	}
	bounds, err := sortedBounds(opts.Buckets)
	if err != nil {
		panic(err)
	}
	typ := model.TypeHistogram
	if opts.IsGauge {
		typ = model.TypeGaugeHistogram
	}
	desc := NewDesc(typ, opts.Name, opts.Help, opts.Unit, opts.ConstLabels, variableLabels)
	if err := desc.Err(); err != nil {
		panic(err)
	}
	newElem := newHistogramElem(opts, bounds)
	return &HistogramVec{desc: desc, v: newVec(desc, newElem)}
}

// WithLabelValues returns the Histogram for lvs, creating it on first
// access.
func (hv *HistogramVec) WithLabelValues(lvs ...string) *Histogram {
	e, err := hv.v.getOrCreate(lvs...)
	if err != nil {
		panic(err)
	}
	return &Histogram{histogram: e, desc: hv.desc}
}

// With returns the Histogram for the given label map.
func (hv *HistogramVec) With(l labels.Labels) *Histogram {
	e, err := hv.v.getOrCreateWith(l)
	if err != nil {
		panic(err)
	}
	return &Histogram{histogram: e, desc: hv.desc}
}

// Reset deletes every series in the vector.
func (hv *HistogramVec) Reset() { hv.v.reset() }

var _ Collector = (*HistogramVec)(nil)

// Collect implements Collector.
func (hv *HistogramVec) Collect(out *[]model.MetricSnapshot) {
	snap := model.HistogramSnapshot{Metadata: hv.desc.Metadata()}
	hv.v.forEach(func(_ labels.Labels, h *histogram) {
		snap.Points = append(snap.Points, h.dataPoint())
	})
	*out = append(*out, snap)
}

