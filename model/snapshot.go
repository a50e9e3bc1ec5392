package model

import (
	"time"

	"github.com/prometheus/client_metrics_core/exemplar"
	"github.com/prometheus/client_metrics_core/labels"
)

// CounterDataPoint is one label-set's worth of counter state at scrape
// time (§4.2).
type CounterDataPoint struct {
	Labels              labels.Labels
	Value               float64
	CreatedTimestampMillis int64 // 0 means absent
	Exemplar            *exemplar.Exemplar
}

// CounterSnapshot is a full counter family scrape result.
type CounterSnapshot struct {
	Metadata Metadata
	Points   []CounterDataPoint
}

// GaugeDataPoint is one label-set's worth of gauge state.
type GaugeDataPoint struct {
	Labels   labels.Labels
	Value    float64
	Exemplar *exemplar.Exemplar
}

// GaugeSnapshot is a full gauge family scrape result.
type GaugeSnapshot struct {
	Metadata Metadata
	Points   []GaugeDataPoint
}

// Quantile is a single resolved ϕ-quantile value (§4.4).
type Quantile struct {
	Quantile float64
	Value    float64
}

// SummaryDataPoint is one label-set's worth of summary state.
type SummaryDataPoint struct {
	Labels                 labels.Labels
	Count                  uint64
	Sum                    float64
	Quantiles              []Quantile
	CreatedTimestampMillis int64
}

// SummarySnapshot is a full summary family scrape result.
type SummarySnapshot struct {
	Metadata Metadata
	Points   []SummaryDataPoint
}

// Bucket is a single cumulative histogram bucket (§4.5): Count is the
// number of observations <= UpperBound.
type Bucket struct {
	UpperBound float64
	Count      uint64
	Exemplar   *exemplar.Exemplar
}

// HistogramDataPoint is one label-set's worth of histogram state. The
// gauge-histogram variant (§4.5) is selected by the snapshot's metadata
// Type being TypeGaugeHistogram: in OpenMetrics its total fields then
// render as "_gcount"/"_gsum" instead of "_count"/"_sum".
type HistogramDataPoint struct {
	Labels                 labels.Labels
	Count                  uint64
	Sum                    float64
	Buckets                []Bucket // ascending UpperBound, always including +Inf
	CreatedTimestampMillis int64
}

// HistogramSnapshot is a full histogram (or gauge-histogram) family
// scrape result.
type HistogramSnapshot struct {
	Metadata Metadata
	Points   []HistogramDataPoint
}

// InfoDataPoint carries a constant-value-1.0 info series's labels.
type InfoDataPoint struct {
	Labels labels.Labels
}

// InfoSnapshot is a full info family scrape result.
type InfoSnapshot struct {
	Metadata Metadata
	Points   []InfoDataPoint
}

// State is a single named boolean flag within a StateSet series.
type State struct {
	Name    string
	Enabled bool
}

// StateSetDataPoint carries one label-set's set of named boolean states.
// Per §3's state-label convention, the state name doubles as an
// additional label equal to the metric name when rendered.
type StateSetDataPoint struct {
	Labels labels.Labels
	States []State
}

// StateSetSnapshot is a full stateset family scrape result.
type StateSetSnapshot struct {
	Metadata Metadata
	Points   []StateSetDataPoint
}

// UnknownDataPoint is a single untyped value.
type UnknownDataPoint struct {
	Labels labels.Labels
	Value  float64
}

// UnknownSnapshot is a full unknown-type family scrape result.
type UnknownSnapshot struct {
	Metadata Metadata
	Points   []UnknownDataPoint
}

// MetricSnapshot is the common interface implemented by every *Snapshot
// type above, letting a Collector return a heterogeneous slice and a
// Registry scrape sort/render them uniformly (§4.8).
type MetricSnapshot interface {
	metadata() Metadata
}

func (s CounterSnapshot) metadata() Metadata   { return s.Metadata }
func (s GaugeSnapshot) metadata() Metadata     { return s.Metadata }
func (s SummarySnapshot) metadata() Metadata   { return s.Metadata }
func (s HistogramSnapshot) metadata() Metadata { return s.Metadata }
func (s InfoSnapshot) metadata() Metadata      { return s.Metadata }
func (s StateSetSnapshot) metadata() Metadata  { return s.Metadata }
func (s UnknownSnapshot) metadata() Metadata   { return s.Metadata }

// Name returns the snapshot's metric name, used by the registry to sort
// scrape output by family name (§4.8).
func Name(s MetricSnapshot) string { return s.metadata().Name }

// MetricSnapshots is a scrape result: every family a Registry collected.
// Registry.Scrape returns it sorted by family name.
type MetricSnapshots []MetricSnapshot

// ScrapeTimestamp names the wall-clock time of a scrape. The registry
// does not attach one; the writers take the scrape time as a
// millisecond argument instead.
type ScrapeTimestamp = time.Time
