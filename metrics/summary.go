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
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_metrics_core/internal/obsbuffer"
	"github.com/prometheus/client_metrics_core/internal/quantile"
	"github.com/prometheus/client_metrics_core/labels"
	"github.com/prometheus/client_metrics_core/model"
)

// DefMaxAge and DefAgeBuckets are the teacher's defaults for the sliding
// observation window backing the quantile estimator (§4.4).
const (
	DefMaxAge     = 10 * time.Minute
	DefAgeBuckets = 5
)

// Objective is a single (ϕ, ε) quantile target.
type Objective struct {
	Quantile float64
	Error    float64
}

// SummaryOpts bundles the options for creating a Summary. An empty
// Objectives list produces a summary that exposes only _count and _sum,
// never quantile-labelled series, mirroring §4.4's "zero quantiles" mode.
type SummaryOpts struct {
	Name        string
	Help        string
	Unit        model.Unit
	ConstLabels labels.Labels
	Objectives  []Objective
	MaxAge      time.Duration
	AgeBuckets  int

	now func() time.Time
}

type summary struct {
	labels    labels.Labels
	createdMs int64

	count uint64
	sum   uint64 // float64 bits, CAS-updated

	estimator *quantile.Rotating // nil when no objectives configured
	targets   []Objective

	buf *obsbuffer.Buffer[float64]
}

func newSummaryElem(opts SummaryOpts) func(labels.Labels) *summary {
	return func(l labels.Labels) *summary {
		s := &summary{
			labels:    l,
			createdMs: opts.now().UnixMilli(),
			targets:   opts.Objectives,
			buf:       obsbuffer.New[float64](),
		}
		if len(opts.Objectives) > 0 {
			targets := make([]quantile.Target, len(opts.Objectives))
			for i, o := range opts.Objectives {
				targets[i] = quantile.Target{Quantile: o.Quantile, Error: o.Error}
			}
			s.estimator = quantile.NewRotating(targets, opts.MaxAge, opts.AgeBuckets, opts.now)
		}
		return s
	}
}

// Observe records v.
func (s *summary) Observe(v float64) {
	s.buf.Append(v, s.apply)
}

func (s *summary) apply(v float64) {
	atomic.AddUint64(&s.count, 1)
	for {
		old := atomic.LoadUint64(&s.sum)
		next := math.Float64bits(math.Float64frombits(old) + v)
		if atomic.CompareAndSwapUint64(&s.sum, old, next) {
			break
		}
	}
	if s.estimator != nil {
		s.estimator.Insert(v)
	}
}

func (s *summary) dataPoint() model.SummaryDataPoint {
	var quantiles []model.Quantile
	var count uint64
	var sum float64
	s.buf.Run(func() {
		count = atomic.LoadUint64(&s.count)
		sum = math.Float64frombits(atomic.LoadUint64(&s.sum))
		if s.estimator != nil {
			quantiles = make([]model.Quantile, len(s.targets))
			for i, t := range s.targets {
				quantiles[i] = model.Quantile{Quantile: t.Quantile, Value: s.estimator.Query(t.Quantile)}
			}
			sort.Slice(quantiles, func(i, j int) bool { return quantiles[i].Quantile < quantiles[j].Quantile })
		}
	}, s.apply)

	return model.SummaryDataPoint{
		Labels:                 s.labels,
		Count:                  count,
		Sum:                    sum,
		Quantiles:              quantiles,
		CreatedTimestampMillis: s.createdMs,
	}
}

// Summary is the public handle for a single summary series.
type Summary struct {
	*summary
	desc *Desc
}

// NewSummary constructs a standalone Summary collector.
func NewSummary(opts SummaryOpts) *Summary {
	opts, err := fillSummaryDefaults(opts)
	if err != nil {
		panic(err)
	}
	desc := NewDesc(model.TypeSummary, opts.Name, opts.Help, opts.Unit, opts.ConstLabels, nil)
	if err := desc.Err(); err != nil {
		panic(err)
	}
	s := newSummaryElem(opts)(opts.ConstLabels)
	return &Summary{summary: s, desc: desc}
}

// fillSummaryDefaults applies DefMaxAge/DefAgeBuckets when the caller
// left MaxAge/AgeBuckets unset (the Go zero value), and rejects the
// rest of §6.4's build-time-rejected configurations: an explicitly
// negative MaxAge or AgeBuckets, and any Objective.Quantile outside
// [0,1].
func fillSummaryDefaults(opts SummaryOpts) (SummaryOpts, error) {
	if opts.now == nil {
		opts.now = time.Now
	}
	switch {
	case opts.MaxAge < 0:
		return opts, fmt.Errorf("metrics: MaxAge must be positive, got %s", opts.MaxAge)
	case opts.MaxAge == 0:
		opts.MaxAge = DefMaxAge
	}
	switch {
	case opts.AgeBuckets < 0:
		return opts, fmt.Errorf("metrics: AgeBuckets must be positive, got %d", opts.AgeBuckets)
	case opts.AgeBuckets == 0:
		opts.AgeBuckets = DefAgeBuckets
	}
	for _, o := range opts.Objectives {
		if o.Quantile < 0 || o.Quantile > 1 {
			return opts, fmt.Errorf("metrics: Quantile %v outside [0,1]", o.Quantile)
		}
	}
	return opts, nil
}

var _ Collector = (*Summary)(nil)

// Collect implements Collector.
func (s *Summary) Collect(out *[]model.MetricSnapshot) {
	*out = append(*out, model.SummarySnapshot{
		Metadata: s.desc.Metadata(),
		Points:   []model.SummaryDataPoint{s.dataPoint()},
	})
}

// SummaryVec bundles a family of Summaries differing only in variable
// label values.
type SummaryVec struct {
	desc *Desc
	v    *vec[summary]
}

// NewSummaryVec constructs a SummaryVec partitioned by variableLabels.
func NewSummaryVec(opts SummaryOpts, variableLabels []string) *SummaryVec {
	opts, err := fillSummaryDefaults(opts)
	if err != nil {
		panic(err)
	}
	desc := NewDesc(model.TypeSummary, opts.Name, opts.Help, opts.Unit, opts.ConstLabels, variableLabels)
	if err := desc.Err(); err != nil {
		panic(err)
	}
	return &SummaryVec{desc: desc, v: newVec(desc, newSummaryElem(opts))}
}

// WithLabelValues returns the Summary for lvs, creating it on first access.
func (sv *SummaryVec) WithLabelValues(lvs ...string) *Summary {
	e, err := sv.v.getOrCreate(lvs...)
	if err != nil {
		panic(err)
	}
	return &Summary{summary: e, desc: sv.desc}
}

// With returns the Summary for the given label map.
func (sv *SummaryVec) With(l labels.Labels) *Summary {
	e, err := sv.v.getOrCreateWith(l)
	if err != nil {
		panic(err)
	}
	return &Summary{summary: e, desc: sv.desc}
}

// Reset deletes every series in the vector.
func (sv *SummaryVec) Reset() { sv.v.reset() }

var _ Collector = (*SummaryVec)(nil)

// Collect implements Collector.
func (sv *SummaryVec) Collect(out *[]model.MetricSnapshot) {
	snap := model.SummarySnapshot{Metadata: sv.desc.Metadata()}
	sv.v.forEach(func(_ labels.Labels, s *summary) {
		snap.Points = append(snap.Points, s.dataPoint())
	})
	*out = append(*out, snap)
}
