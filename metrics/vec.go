package metrics

import (
	"sync"

	"github.com/prometheus/client_metrics_core/labels"
)

// vec is the shared map-of-label-combinations machinery behind every
// *Vec instrument type (CounterVec, GaugeVec, ...), generalizing the
// teacher's vec.go MetricVec to a generic element type instead of a
// reflection-based Metric interface.
type vec[T any] struct {
	desc    *Desc
	newElem func(labels.Labels) *T

	mu    sync.RWMutex
	elems map[uint64]*vecEntry[T]

	curried labels.Labels
}

type vecEntry[T any] struct {
	labels labels.Labels
	elem   *T
}

func newVec[T any](desc *Desc, newElem func(labels.Labels) *T) *vec[T] {
	return &vec[T]{
		desc:    desc,
		newElem: newElem,
		elems:   make(map[uint64]*vecEntry[T]),
	}
}

// getOrCreate returns the element for lvs, creating it on first access,
// mirroring the teacher's getOrCreateMetricWithLabelValues.
func (v *vec[T]) getOrCreate(lvs ...string) (*T, error) {
	full, err := v.fullLabels(lvs...)
	if err != nil {
		return nil, err
	}
	return v.getOrCreateLabels(full), nil
}

func (v *vec[T]) getOrCreateWith(l labels.Labels) (*T, error) {
	full, err := v.mergeCurried(l)
	if err != nil {
		return nil, err
	}
	return v.getOrCreateLabels(full), nil
}

func (v *vec[T]) fullLabels(lvs ...string) (labels.Labels, error) {
	if v.curried.Len() == 0 {
		return v.desc.MakeLabels(lvs...)
	}
	// Curried vecs expect lvs only for the remaining (uncurried)
	// variable labels, in the order they appear in Desc minus the
	// curried names.
	names := v.remainingNames()
	if len(lvs) != len(names) {
		return labels.Labels{}, errArity(v.desc.metadata.Name, len(names), len(lvs))
	}
	pairs := make([]labels.Label, len(lvs))
	for i, n := range names {
		pairs[i] = labels.Label{Name: n, Value: lvs[i]}
	}
	remaining, err := labels.New(pairs...)
	if err != nil {
		return labels.Labels{}, err
	}
	combined, err := labels.Merge(v.curried, remaining)
	if err != nil {
		return labels.Labels{}, err
	}
	return labels.Merge(v.desc.constLabels, combined)
}

func (v *vec[T]) mergeCurried(l labels.Labels) (labels.Labels, error) {
	if v.curried.Len() == 0 {
		combined, err := labels.Merge(v.desc.constLabels, l)
		return combined, err
	}
	combined, err := labels.Merge(v.curried, l)
	if err != nil {
		return labels.Labels{}, err
	}
	return labels.Merge(v.desc.constLabels, combined)
}

func (v *vec[T]) remainingNames() []string {
	curriedNames := map[string]bool{}
	v.curried.Range(func(l labels.Label) { curriedNames[l.Name] = true })
	out := make([]string, 0, len(v.desc.variableLabels))
	for _, n := range v.desc.variableLabels {
		if !curriedNames[n] {
			out = append(out, n)
		}
	}
	return out
}

func (v *vec[T]) getOrCreateLabels(full labels.Labels) *T {
	h := full.Hash()
	v.mu.RLock()
	e, ok := v.elems[h]
	v.mu.RUnlock()
	if ok {
		return e.elem
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if e, ok := v.elems[h]; ok {
		return e.elem
	}
	elem := v.newElem(full)
	v.elems[h] = &vecEntry[T]{labels: full, elem: elem}
	return elem
}

// curryWith returns a new vec sharing the same backing map but with
// additional labels pre-set, mirroring the teacher's CurryWith.
func (v *vec[T]) curryWith(l labels.Labels) (*vec[T], error) {
	combined, err := labels.Merge(v.curried, l)
	if err != nil {
		return nil, err
	}
	return &vec[T]{
		desc:    v.desc,
		newElem: v.newElem,
		elems:   v.elems,
		mu:      sync.RWMutex{},
		curried: combined,
	}, nil
}

// reset deletes every element, mirroring the teacher's Reset.
func (v *vec[T]) reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.elems = make(map[uint64]*vecEntry[T])
}

// forEach calls fn for every (labels, element) pair currently held.
func (v *vec[T]) forEach(fn func(labels.Labels, *T)) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, e := range v.elems {
		fn(e.labels, e.elem)
	}
}

func errArity(name string, want, got int) error {
	return &arityError{name: name, want: want, got: got}
}

type arityError struct {
	name     string
	want, got int
}

func (e *arityError) Error() string {
	return "metrics: " + e.name + ": wrong number of label values"
}
