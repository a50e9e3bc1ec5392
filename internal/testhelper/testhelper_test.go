package testhelper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDumpIncludesFieldNames(t *testing.T) {
	type point struct{ X, Y int }
	out := Dump(point{X: 1, Y: 2})
	assert.True(t, strings.Contains(out, "X: (int) 1"))
	assert.True(t, strings.Contains(out, "Y: (int) 2"))
}
