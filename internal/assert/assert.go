// Package assert holds runtime tripwires for programming errors.
// A failed assertion means a component was wired incorrectly (a nil dependency,
// an impossible config value reaching a constructor) and the process should crash
// instead of limping along with a broken recorder.
package assert

import (
	"fmt"
	"reflect"
)

// OK panics when cond is false.
func OK(cond bool, format string, args ...any) {
	if !cond {
		panic(failedMsgf(format, args...))
	}
}

// NonNil panics when v is nil, including typed nil pointers stored in an interface.
func NonNil(v any, format string, args ...any) {
	if isNil(v) {
		panic(failedMsgf(format, args...))
	}
}

// NonZero panics when v is the zero value of its type.
func NonZero[T comparable](v T, format string, args ...any) {
	var zero T
	if v == zero {
		panic(failedMsgf(format, args...))
	}
}

func isNil(i any) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	}
	return false
}

func failedMsgf(format string, args ...any) string {
	return fmt.Sprintln("assertion failed:", fmt.Sprintf(format, args...))
}
