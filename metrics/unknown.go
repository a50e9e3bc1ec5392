package metrics

import (
	"math"
	"sync/atomic"

	"github.com/prometheus/client_metrics_core/labels"
	"github.com/prometheus/client_metrics_core/model"
)

// UnknownOpts bundles the options for creating an Unknown metric, used
// when the type of an imported value genuinely cannot be classified
// (§3, the OpenMetrics "unknown" type).
type UnknownOpts struct {
	Name        string
	Help        string
	Unit        model.Unit
	ConstLabels labels.Labels
}

type unknown struct {
	labels  labels.Labels
	valBits uint64
}

// Set assigns v.
func (u *unknown) Set(v float64) { atomic.StoreUint64(&u.valBits, math.Float64bits(v)) }

func (u *unknown) get() float64 { return math.Float64frombits(atomic.LoadUint64(&u.valBits)) }

// Unknown is the public handle for a single unknown-type series.
type Unknown struct {
	*unknown
	desc *Desc
}

// NewUnknown constructs an Unknown collector.
func NewUnknown(opts UnknownOpts) *Unknown {
	desc := NewDesc(model.TypeUnknown, opts.Name, opts.Help, opts.Unit, opts.ConstLabels, nil)
	return &Unknown{unknown: &unknown{labels: opts.ConstLabels}, desc: desc}
}

var _ Collector = (*Unknown)(nil)

// Collect implements Collector.
func (u *Unknown) Collect(out *[]model.MetricSnapshot) {
	*out = append(*out, model.UnknownSnapshot{
		Metadata: u.desc.Metadata(),
		Points:   []model.UnknownDataPoint{{Labels: u.labels, Value: u.get()}},
	})
}
