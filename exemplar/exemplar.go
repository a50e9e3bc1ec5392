// Package exemplar implements the exemplar value and sampling policy of
// §4.6: a trace-correlated sample point attached to a counter, gauge, or
// histogram bucket, with a pluggable sampler function deciding whether a
// new observation replaces the stored exemplar.
package exemplar

import (
	"errors"
	"time"

	"github.com/prometheus/client_metrics_core/labels"
)

// MaxLabelBytes is the OpenMetrics limit on the combined UTF-8 byte
// length of an exemplar's label set (§3.4).
const MaxLabelBytes = 128

// ErrLabelsTooLarge reports an exemplar whose labels exceed MaxLabelBytes.
var ErrLabelsTooLarge = errors.New("exemplar: labels exceed 128 byte budget")

// Exemplar is a single sampled observation correlated to trace context.
type Exemplar struct {
	Labels    labels.Labels
	Value     float64
	Timestamp time.Time // zero value means "no timestamp"
}

// Validate checks the label-byte budget.
func (e Exemplar) Validate() error {
	if e.Labels.TotalByteLen() > MaxLabelBytes {
		return ErrLabelsTooLarge
	}
	return nil
}

// HasTimestamp reports whether e carries an explicit timestamp.
func (e Exemplar) HasTimestamp() bool { return !e.Timestamp.IsZero() }

// Sampler decides whether a newly observed value should replace the
// previous exemplar for its bucket. lowerBoundExclusive and
// upperBoundInclusive bound the bucket the value landed in (for a
// Counter or Gauge there is a single unbounded bucket, so both bounds
// are +/-Inf). previous is the exemplar currently stored for that
// bucket, or the zero Exemplar if none. A nil *Exemplar return means
// "keep the previous exemplar, do not sample this observation."
type Sampler func(value, lowerBoundExclusive, upperBoundInclusive float64, previous Exemplar) *Exemplar

// DefaultSampler returns a Sampler that replaces the stored exemplar
// whenever minRetention has elapsed since it was last replaced,
// mirroring the default behavior described in §4.6: exemplars are
// refreshed no more often than minRetention so that scrapes see a
// changing but not constantly-thrashing sample.
func DefaultSampler(minRetention time.Duration, now func() time.Time) Sampler {
	if now == nil {
		now = time.Now
	}
	return func(value, _, _ float64, previous Exemplar) *Exemplar {
		if previous.Labels.Len() == 0 && previous.Timestamp.IsZero() {
			// No prior exemplar: nothing to compare retention against,
			// but an empty Exemplar carries no labels to attach, so the
			// caller is expected to supply one via Inject instead. The
			// default sampler alone never manufactures labels.
			return nil
		}
		if now().Sub(previous.Timestamp) < minRetention {
			return nil
		}
		e := Exemplar{Labels: previous.Labels, Value: value, Timestamp: now()}
		return &e
	}
}

// Inject builds the Exemplar to pass as the "new" candidate for a
// direct observeWithExemplar call (§4.6), which bypasses the Sampler
// entirely and always overwrites the stored exemplar for the bucket the
// value lands in.
func Inject(lbls labels.Labels, value float64, ts time.Time) Exemplar {
	return Exemplar{Labels: lbls, Value: value, Timestamp: ts}
}
