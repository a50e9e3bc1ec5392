package metrics

import (
	"github.com/prometheus/client_metrics_core/labels"
	"github.com/prometheus/client_metrics_core/model"
)

// InfoOpts bundles the options for creating an Info metric. Info has no
// numeric value of its own; its constant value is always 1.0 and its
// labels carry the information being exposed (§3, build_info-style
// metrics).
type InfoOpts struct {
	Name        string
	Help        string
	ConstLabels labels.Labels
}

// Info exposes a single constant-1.0 series whose labels are the
// payload.
type Info struct {
	desc   *Desc
	labels labels.Labels
}

// NewInfo constructs an Info collector.
func NewInfo(opts InfoOpts) *Info {
	desc := NewDesc(model.TypeInfo, opts.Name, opts.Help, "", opts.ConstLabels, nil)
	return &Info{desc: desc, labels: opts.ConstLabels}
}

var _ Collector = (*Info)(nil)

// Collect implements Collector.
func (i *Info) Collect(out *[]model.MetricSnapshot) {
	*out = append(*out, model.InfoSnapshot{
		Metadata: i.desc.Metadata(),
		Points:   []model.InfoDataPoint{{Labels: i.labels}},
	})
}

// InfoVec bundles a family of Info series differing only in variable
// label values.
type InfoVec struct {
	desc *Desc
	v    *vec[struct{ labels labels.Labels }]
}

// NewInfoVec constructs an InfoVec partitioned by variableLabels.
func NewInfoVec(opts InfoOpts, variableLabels []string) *InfoVec {
	desc := NewDesc(model.TypeInfo, opts.Name, opts.Help, "", opts.ConstLabels, variableLabels)
	if err := desc.Err(); err != nil {
		panic(err)
	}
	newElem := func(l labels.Labels) *struct{ labels labels.Labels } {
		return &struct{ labels labels.Labels }{labels: l}
	}
	return &InfoVec{desc: desc, v: newVec(desc, newElem)}
}

// WithLabelValues ensures a series exists for lvs.
func (iv *InfoVec) WithLabelValues(lvs ...string) {
	if _, err := iv.v.getOrCreate(lvs...); err != nil {
		panic(err)
	}
}

var _ Collector = (*InfoVec)(nil)

// Collect implements Collector.
func (iv *InfoVec) Collect(out *[]model.MetricSnapshot) {
	snap := model.InfoSnapshot{Metadata: iv.desc.Metadata()}
	iv.v.forEach(func(l labels.Labels, _ *struct{ labels labels.Labels }) {
		snap.Points = append(snap.Points, model.InfoDataPoint{Labels: l})
	})
	*out = append(*out, snap)
}
