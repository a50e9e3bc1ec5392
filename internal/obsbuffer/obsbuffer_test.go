package obsbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendAppliesDirectlyWhenNotArmed(t *testing.T) {
	b := New[int]()
	var sum int
	b.Append(1, func(v int) { sum += v })
	b.Append(2, func(v int) { sum += v })
	assert.Equal(t, 3, sum)
}

func TestRunReplaysQueuedAppendsMadeDuringSnapshot(t *testing.T) {
	b := New[int]()
	var applied []int
	apply := func(v int) { applied = append(applied, v) }

	b.Run(func() {
		b.Append(99, apply)
		assert.Empty(t, applied, "append while armed must queue, not apply immediately")
	}, apply)

	assert.Equal(t, []int{99}, applied)
}

func TestRunDrainsPendingViaReplayFn(t *testing.T) {
	b := New[int]()

	b.mu.Lock()
	b.pending = []int{5, 6}
	b.armed = true
	b.mu.Unlock()

	var replayed []int
	b.Run(func() {}, func(v int) { replayed = append(replayed, v) })

	assert.Equal(t, []int{5, 6}, replayed)
	assert.False(t, b.armed)
}
