// Package series holds the ordered record sequence every analyzer replays.
package series

import (
	"slices"
	"time"
)

// Timed is implemented by every record that can be ordered by time.
type Timed interface {
	Timestamp() time.Time
}

// Series collects records in file order and hands them back sorted by time.
type Series[T Timed] struct {
	items []T
}

// New creates a series with room for n records.
func New[T Timed](n int) *Series[T] {
	return &Series[T]{items: make([]T, 0, n)}
}

// Append adds a record in file order.
func (s *Series[T]) Append(item T) {
	s.items = append(s.items, item)
}

// Len returns the number of appended records.
func (s *Series[T]) Len() int {
	return len(s.items)
}

// Ordered returns every record sorted by ascending timestamp. Records sharing a
// timestamp keep their file order.
func (s *Series[T]) Ordered() []T {
	out := slices.Clone(s.items)
	slices.SortStableFunc(out, func(a, b T) int {
		return a.Timestamp().Compare(b.Timestamp())
	})
	return out
}

// Unique returns the records sorted by ascending timestamp with one record per
// timestamp: the last occurrence in file order wins.
func (s *Series[T]) Unique() []T {
	ordered := s.Ordered()
	out := ordered[:0]
	for i, item := range ordered {
		if i+1 < len(ordered) && ordered[i+1].Timestamp().Equal(item.Timestamp()) {
			continue
		}
		out = append(out, item)
	}
	return out
}
