// Package model defines the immutable metric metadata and per-instrument
// snapshot types produced by a collector scrape (§3.1, §4.*). These are
// plain data: no mutex, no atomics, safe to pass to an exposition writer
// from any goroutine.
package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var metricNameRE = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

// ErrInvalidName reports a metric or unit name that fails validation.
var ErrInvalidName = errors.New("invalid metric name")

// reservedSuffixes lists the suffixes a base metric name must not end
// with, since the exposition writers append them themselves (§3.1).
var reservedSuffixes = []string{"_total", "_created", "_bucket", "_count", "_sum", "_info", "_gcount", "_gsum"}

// ValidName reports whether name is a legal metric name.
func ValidName(name string) bool {
	return metricNameRE.MatchString(name)
}

// ValidateBaseName checks a user-supplied base metric name: it must be a
// ValidName and must not already carry one of the suffixes the writers
// append (§3.1's reserved-suffix rule).
func ValidateBaseName(name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, suf := range reservedSuffixes {
		if strings.HasSuffix(name, suf) {
			return fmt.Errorf("%w: %q ends with reserved suffix %q", ErrInvalidName, name, suf)
		}
	}
	return nil
}

// Unit is an optional OpenMetrics unit annotation (e.g. "seconds",
// "bytes"). The empty Unit means "no unit".
type Unit string

// Validate checks only that u, if non-empty, is a legal unit token. A
// base name that does not end in "_<unit>" is not rejected anywhere;
// Metadata.FullName appends the suffix to the exposed name instead.
func (u Unit) Validate() error {
	if u == "" {
		return nil
	}
	if !metricNameRE.MatchString(string(u)) {
		return fmt.Errorf("%w: unit %q", ErrInvalidName, string(u))
	}
	return nil
}

// MetricType identifies the OpenMetrics metric type (§6.2).
type MetricType string

const (
	TypeCounter       MetricType = "counter"
	TypeGauge         MetricType = "gauge"
	TypeSummary       MetricType = "summary"
	TypeHistogram     MetricType = "histogram"
	TypeGaugeHistogram MetricType = "gaugehistogram"
	TypeInfo          MetricType = "info"
	TypeStateSet      MetricType = "stateset"
	TypeUnknown       MetricType = "unknown"
)

// Metadata is the family-level metadata shared by every data point in a
// MetricSnapshot: name, help text, optional unit, and type.
type Metadata struct {
	Name string
	Help string
	Unit Unit
	Type MetricType
}

// FullName returns the name the writer emits for the "# TYPE" line,
// which is the base name plus "_<unit>" when a unit is set and the base
// name does not already carry it.
func (m Metadata) FullName() string {
	if m.Unit == "" {
		return m.Name
	}
	suffix := "_" + string(m.Unit)
	if strings.HasSuffix(m.Name, suffix) {
		return m.Name
	}
	return m.Name + suffix
}
