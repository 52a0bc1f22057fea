// Package merge implements the hold-last-value join of two timestamped streams.
package merge

import "time"

// Side tells which stream advanced at a joined timestamp.
type Side uint8

const (
	Left Side = 1 << iota
	Right
	Both = Left | Right
)

// Sample is a value observed at a point in time.
type Sample[V any] struct {
	At    time.Time
	Value V
}

// Join walks the union of the timestamps of left and right in ascending order,
// holding the latest value of each side. From the first timestamp at which
// both sides have been observed, combine is called once per timestamp with the
// side(s) that advanced there and the latest value of each side.
//
// Both inputs must be sorted ascending with unique timestamps. combine is
// called in timestamp order, so it may keep running state.
func Join[L, R, O any](left []Sample[L], right []Sample[R], combine func(at time.Time, advanced Side, l L, r R) O) []Sample[O] {
	var (
		out          []Sample[O]
		lastL        L
		lastR        R
		seenL, seenR bool
		i, j         int
	)
	for i < len(left) || j < len(right) {
		var at time.Time
		var advanced Side
		switch {
		case j >= len(right) || (i < len(left) && left[i].At.Before(right[j].At)):
			at, advanced = left[i].At, Left
		case i >= len(left) || right[j].At.Before(left[i].At):
			at, advanced = right[j].At, Right
		default:
			at, advanced = left[i].At, Both
		}

		if advanced&Left != 0 {
			lastL, seenL = left[i].Value, true
			i++
		}
		if advanced&Right != 0 {
			lastR, seenR = right[j].Value, true
			j++
		}

		if seenL && seenR {
			out = append(out, Sample[O]{At: at, Value: combine(at, advanced, lastL, lastR)})
		}
	}
	return out
}
