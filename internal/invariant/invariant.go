// Package invariant provides contract assertions for the Veltrano pipeline,
// grounded on the teacher's core/invariant package: assertions document
// programming-error contracts (a violated invariant means a bug in this
// repo, not bad user input) and panic rather than returning an error.
package invariant

import "fmt"

// Invariant panics with a formatted message if condition is false. Use it
// for internal consistency checks, such as "bump propagation reached a
// fixpoint" or "every checked call has a resolved signature in the side
// table".
func Invariant(condition bool, format string, args ...any) {
	if !condition {
		panic("invariant violation: " + fmt.Sprintf(format, args...))
	}
}

// NotNil panics if value is nil. Used at stage boundaries where a nil
// pointer would otherwise surface as a confusing downstream nil-deref.
func NotNil(value any, name string) {
	if value == nil {
		panic(fmt.Sprintf("invariant violation: %s must not be nil", name))
	}
}
