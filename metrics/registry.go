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
	"sort"
	"sync"

	"github.com/prometheus/client_metrics_core/model"
)

// ErrDuplicateName reports a Register call whose collector's family name
// collides with an already-registered one (§7, DuplicateName).
var ErrDuplicateName = fmt.Errorf("metrics: duplicate metric name")

// CollectorFailedError wraps a panic recovered from a Collector during
// Scrape (§7, CollectorFailed). Scrape never fails outright because one
// collector misbehaves; it records the failure and continues.
type CollectorFailedError struct {
	Name string
	Err  error
}

func (e *CollectorFailedError) Error() string {
	return fmt.Sprintf("metrics: collector %q failed: %v", e.Name, e.Err)
}

func (e *CollectorFailedError) Unwrap() error { return e.Err }

// Registry holds a set of name-unique Collectors and produces a scrape
// snapshot on demand, mirroring the shape of the teacher's ancient
// registry.go signatureContainers registry generalized to the
// model.MetricSnapshot data model instead of protobuf dto.Metric.
type Registry struct {
	mu         sync.Mutex
	collectors map[string]Collector
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[string]Collector)}
}

// namer is implemented by collectors that know their own family name up
// front (every instrument type in this package does, via its Desc).
type namer interface {
	familyName() string
}

func (c *Counter) familyName() string      { return c.desc.metadata.Name }
func (c *CounterVec) familyName() string   { return c.desc.metadata.Name }
func (g *Gauge) familyName() string        { return g.desc.metadata.Name }
func (g *GaugeVec) familyName() string     { return g.desc.metadata.Name }
func (h *Histogram) familyName() string    { return h.desc.metadata.Name }
func (h *HistogramVec) familyName() string { return h.desc.metadata.Name }
func (s *Summary) familyName() string      { return s.desc.metadata.Name }
func (s *SummaryVec) familyName() string   { return s.desc.metadata.Name }
func (i *Info) familyName() string         { return i.desc.metadata.Name }
func (i *InfoVec) familyName() string      { return i.desc.metadata.Name }
func (s *StateSet) familyName() string     { return s.desc.metadata.Name }
func (u *Unknown) familyName() string      { return u.desc.metadata.Name }

// Register adds c under name. It returns ErrDuplicateName if name is
// already registered.
func (r *Registry) Register(name string, c Collector) error {
	if err := model.ValidateBaseName(name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collectors[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.collectors[name] = c
	return nil
}

// MustRegister is Register, but panics on error. It also infers name
// from c when c implements namer, matching the common case of
// registering an instrument built with a Desc that already carries its
// own name.
func (r *Registry) MustRegister(c Collector) {
	n, ok := c.(namer)
	if !ok {
		panic("metrics: MustRegister requires a Collector with a known family name; use Register(name, c) instead")
	}
	if err := r.Register(n.familyName(), c); err != nil {
		panic(err)
	}
}

// Unregister removes name, reporting whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collectors[name]; !ok {
		return false
	}
	delete(r.collectors, name)
	return true
}

// Scrape collects every registered collector's snapshots, sorted by
// family name (§4.8). A collector that panics during Collect is
// recorded as a CollectorFailedError in failures and skipped; Scrape
// itself never panics or returns an error for that reason alone.
func (r *Registry) Scrape() (snaps model.MetricSnapshots, failures []error) {
	r.mu.Lock()
	names := make([]string, 0, len(r.collectors))
	collectors := make(map[string]Collector, len(r.collectors))
	for name, c := range r.collectors {
		names = append(names, name)
		collectors[name] = c
	}
	r.mu.Unlock()

	sort.Strings(names)
	for _, name := range names {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					failures = append(failures, &CollectorFailedError{Name: name, Err: err})
				}
			}()
			var out []model.MetricSnapshot
			collectors[name].Collect(&out)
			snaps = append(snaps, out...)
		}()
	}

	sort.SliceStable(snaps, func(i, j int) bool { return model.Name(snaps[i]) < model.Name(snaps[j]) })
	return snaps, failures
}

// DefaultRegistry is the process-wide registry used by the package-level
// Register/MustRegister/Unregister convenience functions, mirroring the
// teacher's package-level DefaultRegisterer.
var DefaultRegistry = NewRegistry()

// Register registers c with DefaultRegistry.
func Register(name string, c Collector) error { return DefaultRegistry.Register(name, c) }

// MustRegister registers c with DefaultRegistry, panicking on error.
func MustRegister(c Collector) { DefaultRegistry.MustRegister(c) }

// Unregister removes name from DefaultRegistry.
func Unregister(name string) bool { return DefaultRegistry.Unregister(name) }
