package metrics

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_metrics_core/labels"
	"github.com/prometheus/client_metrics_core/model"
)

// StateSetOpts bundles the options for creating a StateSet. States lists
// the boolean flag names; at most one of them is conventionally true at
// a time, but StateSet does not enforce that (§3's state-label
// convention leaves mutual exclusivity to the caller).
type StateSetOpts struct {
	Name        string
	Help        string
	ConstLabels labels.Labels
	States      []string
}

type stateSet struct {
	labels labels.Labels
	names  []string
	mu     sync.Mutex
	bits   atomic.Uint64 // one bit per name, valid for up to 64 states
}

func newStateSetElem(opts StateSetOpts) func(labels.Labels) *stateSet {
	names := append([]string(nil), opts.States...)
	sort.Strings(names)
	return func(l labels.Labels) *stateSet {
		return &stateSet{labels: l, names: names}
	}
}

// SetState sets the named state to enabled/disabled. It panics if name
// is not one of the states the StateSet was constructed with.
func (s *stateSet) SetState(name string, enabled bool) {
	idx := sort.SearchStrings(s.names, name)
	if idx >= len(s.names) || s.names[idx] != name {
		panic("metrics: unknown state " + name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		old := s.bits.Load()
		next := old
		if enabled {
			next |= 1 << uint(idx)
		} else {
			next &^= 1 << uint(idx)
		}
		if s.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

func (s *stateSet) dataPoint() model.StateSetDataPoint {
	bits := s.bits.Load()
	states := make([]model.State, len(s.names))
	for i, n := range s.names {
		states[i] = model.State{Name: n, Enabled: bits&(1<<uint(i)) != 0}
	}
	return model.StateSetDataPoint{Labels: s.labels, States: states}
}

// StateSet is the public handle for a single stateset series.
type StateSet struct {
	*stateSet
	desc *Desc
}

// NewStateSet constructs a standalone StateSet collector.
func NewStateSet(opts StateSetOpts) *StateSet {
	desc := NewDesc(model.TypeStateSet, opts.Name, opts.Help, "", opts.ConstLabels, nil)
	return &StateSet{stateSet: newStateSetElem(opts)(opts.ConstLabels), desc: desc}
}

var _ Collector = (*StateSet)(nil)

// Collect implements Collector.
func (s *StateSet) Collect(out *[]model.MetricSnapshot) {
	*out = append(*out, model.StateSetSnapshot{
		Metadata: s.desc.Metadata(),
		Points:   []model.StateSetDataPoint{s.dataPoint()},
	})
}
