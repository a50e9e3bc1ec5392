// Package quantile implements the CKMS-style streaming ϕ-quantile
// estimator (§4.4) and the ageBuckets-rotating sliding window built on
// top of it. It wraps github.com/beorn7/perks/quantile, the same
// streaming-quantile dependency declared by the teacher's go.mod, the
// way the original Java implementation wraps its own CKMS package
// (see original_source Summary.java's TimeWindowQuantiles).
package quantile

import (
	"sync"
	"time"

	"github.com/beorn7/perks/quantile"
)

// Target is a single (ϕ, ε) objective: the ϕ-quantile will be reported
// accurate to within ε.
type Target struct {
	Quantile float64
	Error    float64
}

// Estimator is a single CKMS instance tracking a fixed set of targets.
// Insert is safe to call concurrently with Query; both are serialised
// through a single mutex, matching §5's note that "the CKMS estimator
// uses an internal mutex held only during insert/merge."
type Estimator struct {
	mu      sync.Mutex
	stream  *quantile.Stream
	targets []Target
}

// New constructs an Estimator for the given targets. A nil/empty target
// list is accepted; no quantile is then held to an error bound, and
// Query returns 0 only while nothing has been inserted.
func New(targets []Target) *Estimator {
	m := make(map[float64]float64, len(targets))
	for _, t := range targets {
		m[t.Quantile] = t.Error
	}
	return &Estimator{
		stream:  quantile.NewTargeted(m),
		targets: append([]Target(nil), targets...),
	}
}

// Insert records one observation.
func (e *Estimator) Insert(v float64) {
	e.mu.Lock()
	e.stream.Insert(v)
	e.mu.Unlock()
}

// Query returns the current ϕ-quantile estimate.
func (e *Estimator) Query(phi float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stream.Query(phi)
}

// Reset clears all recorded observations, used when a window bucket
// rotates out.
func (e *Estimator) Reset() {
	e.mu.Lock()
	e.stream.Reset()
	e.mu.Unlock()
}

// Rotating holds ageBuckets Estimator instances over a maxAge window and
// rotates the oldest one out as time passes, per §4.4: "the oldest
// bucket is reset and becomes the new head; multiple overdue rotations
// collapse to resetting all buckets when the gap exceeds the full
// window."
type Rotating struct {
	mu sync.Mutex

	targets    []Target
	maxAge     time.Duration
	rotateEach time.Duration

	buckets    []*Estimator
	head       int
	lastRotate time.Time

	now func() time.Time
}

// NewRotating constructs a Rotating estimator. maxAge and ageBuckets
// must both be positive (enforced by the caller per §6.4).
func NewRotating(targets []Target, maxAge time.Duration, ageBuckets int, now func() time.Time) *Rotating {
	if now == nil {
		now = time.Now
	}
	buckets := make([]*Estimator, ageBuckets)
	for i := range buckets {
		buckets[i] = New(targets)
	}
	return &Rotating{
		targets:    append([]Target(nil), targets...),
		maxAge:     maxAge,
		rotateEach: maxAge / time.Duration(ageBuckets),
		buckets:    buckets,
		lastRotate: now(),
		now:        now,
	}
}

// Insert records an observation into every live bucket, rotating first
// if enough time has elapsed. All live buckets receive every insert, per
// §4.4: "a query merges them (by picking any bucket — they all hold the
// same inserts modulo rotation state)."
func (r *Rotating) Insert(v float64) {
	r.mu.Lock()
	r.rotateIfDue()
	for _, b := range r.buckets {
		b.Insert(v)
	}
	r.mu.Unlock()
}

// Query returns the ϕ-quantile estimate from the bucket reset longest
// ago (the one after the head), which covers up to the full maxAge
// window, rotating first if due.
func (r *Rotating) Query(phi float64) float64 {
	r.mu.Lock()
	r.rotateIfDue()
	oldest := r.buckets[(r.head+1)%len(r.buckets)]
	r.mu.Unlock()
	return oldest.Query(phi)
}

func (r *Rotating) rotateIfDue() {
	elapsed := r.now().Sub(r.lastRotate)
	if elapsed < r.rotateEach {
		return
	}
	n := len(r.buckets)
	rotations := int(elapsed / r.rotateEach)
	if rotations >= n {
		// Gap exceeds the full window: every bucket is equally stale.
		for _, b := range r.buckets {
			b.Reset()
		}
		r.head = 0
		r.lastRotate = r.now()
		return
	}
	for i := 0; i < rotations; i++ {
		r.head = (r.head + 1) % n
		r.buckets[r.head].Reset()
	}
	r.lastRotate = r.lastRotate.Add(time.Duration(rotations) * r.rotateEach)
}
