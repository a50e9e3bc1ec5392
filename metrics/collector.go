package metrics

import "github.com/prometheus/client_metrics_core/model"

// Collector is implemented by every instrument and by composite
// collectors that bundle several instruments under one registration
// (§4.8). Collect is called at scrape time; a Collector must append a
// model.MetricSnapshot for every family it owns.
type Collector interface {
	Collect(out *[]model.MetricSnapshot)
}

// CollectorFunc adapts a plain function to a Collector, mirroring the
// teacher's collectorfunc.go.
type CollectorFunc func(out *[]model.MetricSnapshot)

// Collect calls f.
func (f CollectorFunc) Collect(out *[]model.MetricSnapshot) { f(out) }
