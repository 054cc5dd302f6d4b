// Package measurement defines the values exchanged between a monitor and the
// recorder, and their comma-delimited log encoding.
package measurement

import "fmt"

// Measurement is an ordered (key, value) pair of integers.
// The key is usually a timestamp but nothing enforces that, and keys are not unique.
type Measurement struct {
	Key   int64
	Value int64
}

// M is shorthand for Measurement{Key: key, Value: value}.
func M(key, value int64) Measurement {
	return Measurement{Key: key, Value: value}
}

func (m Measurement) String() string {
	return fmt.Sprintf("(%d,%d)", m.Key, m.Value)
}

// Batch is an ordered group of measurements submitted in a single request.
// Order inside a batch is the order in which records reach the log.
type Batch []Measurement
