// Package prioq provides a stable priority-ordered list.
//
// Lower priority values come first. Entries sharing a priority keep their
// insertion order, which makes iteration deterministic.
package prioq

import (
	"iter"
	"slices"
)

// DefaultPriority is used when a caller has no opinion on ordering.
const DefaultPriority = 10

type entry[T any] struct {
	value    T
	priority int
	seq      uint64
}

// Queue is a stable priority-ordered list. The zero value is ready to use.
// Queue is not safe for concurrent mutation.
type Queue[T any] struct {
	entries []entry[T]
	next    uint64
}

// Add inserts v at the given priority, after any existing entries with the
// same priority.
func (q *Queue[T]) Add(v T, priority int) {
	e := entry[T]{value: v, priority: priority, seq: q.next}
	q.next++
	i, _ := slices.BinarySearchFunc(q.entries, e, compare[T])
	q.entries = slices.Insert(q.entries, i, e)
}

// Merge adds every entry of other, keeping its priorities. Entries from
// other land after existing entries of equal priority.
func (q *Queue[T]) Merge(other *Queue[T]) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		q.Add(e.value, e.priority)
	}
}

// RemoveFunc drops every entry for which del returns true.
func (q *Queue[T]) RemoveFunc(del func(T) bool) {
	q.entries = slices.DeleteFunc(q.entries, func(e entry[T]) bool { return del(e.value) })
}

// Len returns the number of entries.
func (q *Queue[T]) Len() int { return len(q.entries) }

// Items returns the values in order.
func (q *Queue[T]) Items() []T {
	out := make([]T, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.value
	}
	return out
}

// All iterates over (priority, value) pairs in order.
func (q *Queue[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for _, e := range q.entries {
			if !yield(e.priority, e.value) {
				return
			}
		}
	}
}

// Clone returns an independent copy.
func (q *Queue[T]) Clone() *Queue[T] {
	return &Queue[T]{entries: slices.Clone(q.entries), next: q.next}
}

func compare[T any](a, b entry[T]) int {
	if a.priority != b.priority {
		if a.priority < b.priority {
			return -1
		}
		return 1
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	}
	return 0
}
