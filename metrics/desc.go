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
	"fmt"

	"github.com/prometheus/client_metrics_core/labels"
	"github.com/prometheus/client_metrics_core/model"
)

// ErrReservedLabelName is returned when a const or variable label
// collides with a label name the writer appends itself for that
// metric kind (§3.2): "le" on histograms, "quantile" on summaries.
var ErrReservedLabelName = errors.New("metrics: reserved label name")

// Desc is the family-level descriptor shared by every series created
// from one instrument: its metadata plus the names of the labels that
// vary per series. It is built once at instrument-construction time and
// validated then, not on every observation, mirroring the teacher's
// desc.go NewDesc.
type Desc struct {
	metadata       model.Metadata
	constLabels    labels.Labels
	variableLabels []string

	err error
}

// NewDesc validates name and unit, checks constLabels and variableLabels
// against the kind's reserved label, and returns a Desc. variableLabels lists the names of the per-series labels that
// callers of WithLabelValues will supply; they are validated for shape
// (legal label name) but their values are not known yet.
func NewDesc(metricType model.MetricType, name, help string, unit model.Unit, constLabels labels.Labels, variableLabels []string) *Desc {
	d := &Desc{
		metadata: model.Metadata{Name: name, Help: help, Unit: unit, Type: metricType},
	}
	if err := model.ValidateBaseName(name); err != nil {
		d.err = err
		return d
	}
	if err := unit.Validate(); err != nil {
		d.err = err
		return d
	}
	for _, ln := range variableLabels {
		if !labels.ValidName(ln) {
			d.err = fmt.Errorf("%w: %q", labels.ErrInvalidName, ln)
			return d
		}
	}
	if reserved, ok := reservedLabelFor(metricType); ok {
		if _, present := constLabels.Get(reserved); present {
			d.err = fmt.Errorf("%w: %q on a %s", ErrReservedLabelName, reserved, metricType)
			return d
		}
		for _, ln := range variableLabels {
			if ln == reserved {
				d.err = fmt.Errorf("%w: %q on a %s", ErrReservedLabelName, reserved, metricType)
				return d
			}
		}
	}
	d.constLabels = constLabels
	d.variableLabels = append([]string(nil), variableLabels...)
	return d
}

// reservedLabelFor names the label a writer appends itself for a given
// metric kind, which callers may therefore never supply as a const or
// variable label.
func reservedLabelFor(t model.MetricType) (string, bool) {
	switch t {
	case model.TypeHistogram, model.TypeGaugeHistogram:
		return "le", true
	case model.TypeSummary:
		return "quantile", true
	default:
		return "", false
	}
}

// Err returns the error recorded at construction time, if any. Callers
// that build a Desc directly (rather than through a *Vec constructor)
// must check this before using the Desc.
func (d *Desc) Err() error { return d.err }

// Metadata returns the family metadata.
func (d *Desc) Metadata() model.Metadata { return d.metadata }

// VariableLabels returns the variable label names, in the fixed order
// WithLabelValues expects them.
func (d *Desc) VariableLabels() []string { return d.variableLabels }

// MakeLabels merges d's const labels with lvs assigned to the variable
// label names in order, validating arity.
func (d *Desc) MakeLabels(lvs ...string) (labels.Labels, error) {
	if len(lvs) != len(d.variableLabels) {
		return labels.Labels{}, fmt.Errorf("metrics: %s: expected %d label values, got %d", d.metadata.Name, len(d.variableLabels), len(lvs))
	}
	pairs := make([]labels.Label, 0, len(lvs))
	for i, name := range d.variableLabels {
		pairs = append(pairs, labels.Label{Name: name, Value: lvs[i]})
	}
	variable, err := labels.New(pairs...)
	if err != nil {
		return labels.Labels{}, err
	}
	return labels.Merge(d.constLabels, variable)
}
