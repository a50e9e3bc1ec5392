// Package testhelper holds small diagnostic helpers shared by this
// module's test files, in the spirit of the teacher's own %#v-heavy
// test failure messages.
package testhelper

import "github.com/davecgh/go-spew/spew"

// Dump pretty-prints v for inclusion in a test failure message, so a
// mismatching snapshot or data point is readable instead of a single
// %+v line.
func Dump(v any) string {
	return spew.Sdump(v)
}
