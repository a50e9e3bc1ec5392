// Package labels implements the label-set model of §3.2: an ordered,
// sorted-ascending, unique-name sequence of (name, value) pairs with a
// cached hash suitable as a concurrent map key on the observation hot
// path.
package labels

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var labelNameRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const reservedPrefix = "__"

// ErrInvalidName reports a label name that fails validation.
var ErrInvalidName = errors.New("invalid label name")

// ValidName reports whether name is a legal, non-reserved label name.
func ValidName(name string) bool {
	return labelNameRE.MatchString(name) && !strings.HasPrefix(name, reservedPrefix)
}

// Label is a single name/value pair.
type Label struct {
	Name  string
	Value string
}

// Labels is an immutable, name-sorted, unique-name sequence of Label
// pairs. The zero value is the empty label set. Labels must be built
// through New or a Builder; both validate names and enforce uniqueness.
type Labels struct {
	pairs []Label
	hash  uint64
}

// New validates and sorts the given pairs into a Labels value. It
// returns ErrInvalidName wrapped with the offending name if any name is
// invalid, and an error if any name is duplicated.
func New(pairs ...Label) (Labels, error) {
	cp := append(make([]Label, 0, len(pairs)), pairs...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Name < cp[j].Name })
	for i, p := range cp {
		if !ValidName(p.Name) {
			return Labels{}, fmt.Errorf("%w: %q", ErrInvalidName, p.Name)
		}
		if i > 0 && cp[i-1].Name == p.Name {
			return Labels{}, fmt.Errorf("duplicate label name %q", p.Name)
		}
	}
	return Labels{pairs: cp, hash: hashPairs(cp)}, nil
}

// MustNew is New, but panics on error. Intended for call sites building
// labels from compile-time-known names (builders, constant label maps).
func MustNew(pairs ...Label) Labels {
	l, err := New(pairs...)
	if err != nil {
		panic(err)
	}
	return l
}

// FromMap builds a Labels value from a name->value map. Map iteration
// order does not matter; the result is always sorted by name.
func FromMap(m map[string]string) (Labels, error) {
	pairs := make([]Label, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, Label{Name: k, Value: v})
	}
	return New(pairs...)
}

// Len returns the number of label pairs.
func (l Labels) Len() int { return len(l.pairs) }

// Get returns the value for name and whether it was present.
func (l Labels) Get(name string) (string, bool) {
	i := sort.Search(len(l.pairs), func(i int) bool { return l.pairs[i].Name >= name })
	if i < len(l.pairs) && l.pairs[i].Name == name {
		return l.pairs[i].Value, true
	}
	return "", false
}

// Range calls fn for every label pair in sorted order.
func (l Labels) Range(fn func(Label)) {
	for _, p := range l.pairs {
		fn(p)
	}
}

// Names returns the sorted label names.
func (l Labels) Names() []string {
	names := make([]string, len(l.pairs))
	for i, p := range l.pairs {
		names[i] = p.Name
	}
	return names
}

// Hash returns the cached xxhash digest of the label set, stable across
// calls and safe to use as a map key alongside the value tuple. Two
// structurally equal Labels values always hash equal.
func (l Labels) Hash() uint64 { return l.hash }

// Equal reports structural equality.
func (l Labels) Equal(o Labels) bool {
	if l.hash != o.hash || len(l.pairs) != len(o.pairs) {
		return false
	}
	for i := range l.pairs {
		if l.pairs[i] != o.pairs[i] {
			return false
		}
	}
	return true
}

// Merge returns a new Labels combining l and o. It is an error if the
// two sets share a name. Used to combine constant labels with per-series
// variable labels (mirrors the teacher's Desc const+variable label
// merge in NewDesc).
func Merge(l, o Labels) (Labels, error) {
	combined := append(append([]Label{}, l.pairs...), o.pairs...)
	return New(combined...)
}

// TotalByteLen returns the summed UTF-8 byte length of every label name
// and value (separators and quotes not counted), used by the exemplar package to
// enforce the OpenMetrics 128-byte exemplar label budget (§3.4).
func (l Labels) TotalByteLen() int {
	n := 0
	for _, p := range l.pairs {
		n += len(p.Name) + len(p.Value)
	}
	return n
}

func hashPairs(pairs []Label) uint64 {
	if len(pairs) == 0 {
		// Same as the zero Labels value, so every empty set hashes equal.
		return 0
	}
	d := xxhash.New()
	for _, p := range pairs {
		_, _ = d.WriteString(p.Name)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(p.Value)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// Builder incrementally assembles a Labels value, mirroring the Java
// model's Labels.newBuilder().addLabel(...).build() fluent style used
// throughout the original writer test fixtures.
type Builder struct {
	pairs []Label
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Add appends a name/value pair. It does not validate immediately;
// validation happens in Build.
func (b *Builder) Add(name, value string) *Builder {
	b.pairs = append(b.pairs, Label{Name: name, Value: value})
	return b
}

// Build validates and finalises the label set.
func (b *Builder) Build() (Labels, error) {
	return New(b.pairs...)
}

// MustBuild is Build, but panics on error.
func (b *Builder) MustBuild() Labels {
	return MustNew(b.pairs...)
}

// Of is a convenience constructor for a single name/value pair, mirroring
// the Java Labels.of(name, value) helper used throughout the fixtures.
func Of(name, value string) Labels {
	return MustNew(Label{Name: name, Value: value})
}
