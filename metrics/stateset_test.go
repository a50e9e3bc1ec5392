package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateSetReportsStatesSortedByName(t *testing.T) {
	s := NewStateSet(StateSetOpts{Name: "feature", States: []string{"beta", "alpha", "gamma"}})
	s.SetState("alpha", true)

	dp := s.dataPoint()
	names := make([]string, len(dp.States))
	for i, st := range dp.States {
		names[i] = st.Name
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)
	assert.True(t, dp.States[0].Enabled)
	assert.False(t, dp.States[1].Enabled)
}

func TestStateSetSetStateTogglesIndependently(t *testing.T) {
	s := NewStateSet(StateSetOpts{Name: "feature", States: []string{"a", "b"}})
	s.SetState("a", true)
	s.SetState("b", true)
	s.SetState("a", false)

	dp := s.dataPoint()
	got := map[string]bool{}
	for _, st := range dp.States {
		got[st.Name] = st.Enabled
	}
	assert.False(t, got["a"])
	assert.True(t, got["b"])
}

func TestStateSetUnknownStatePanics(t *testing.T) {
	s := NewStateSet(StateSetOpts{Name: "feature", States: []string{"a"}})
	assert.Panics(t, func() { s.SetState("z", true) })
}
