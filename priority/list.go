// Package priority provides the ordered registry backing every dispatch
// list in the routing engine. Entries are ordered by ascending priority
// with insertion order breaking ties, which is what makes dispatch
// deterministic: two listeners at the same priority always fire in the
// order they registered.
package priority

import "sort"

// List is an ordered collection of values keyed by a signed priority.
// Lower priorities iterate first; equal priorities iterate in insertion
// order. The zero value is ready to use.
//
// List is not safe for concurrent use; callers synchronize externally.
type List[T any] struct {
	entries []entry[T]
	nextSeq uint64
}

type entry[T any] struct {
	priority int
	seq      uint64
	value    T
}

// Insert adds a value at the given priority and returns a sequence id
// that identifies the entry for later removal. Sequence ids are never
// reused within a List.
func (l *List[T]) Insert(priority int, value T) uint64 {
	l.nextSeq++
	e := entry[T]{priority: priority, seq: l.nextSeq, value: value}

	// Binary search for the insertion point: first entry ordering
	// strictly after e. Equal priorities keep insertion order because
	// e's seq is greater than every existing seq.
	idx := sort.Search(len(l.entries), func(i int) bool {
		if l.entries[i].priority != priority {
			return l.entries[i].priority > priority
		}
		return l.entries[i].seq > e.seq
	})

	l.entries = append(l.entries, entry[T]{})
	copy(l.entries[idx+1:], l.entries[idx:])
	l.entries[idx] = e
	return e.seq
}

// Remove deletes the entry with the given sequence id.
// Returns false if no such entry exists (already removed).
func (l *List[T]) Remove(seq uint64) bool {
	for i := range l.entries {
		if l.entries[i].seq == seq {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of live entries.
func (l *List[T]) Len() int {
	return len(l.entries)
}

// Each calls fn for every value in priority order without allocating.
// Iteration stops early if fn returns false. The list must not be
// mutated during iteration; dispatch paths iterate a Snapshot instead.
func (l *List[T]) Each(fn func(value T) bool) {
	for i := range l.entries {
		if !fn(l.entries[i].value) {
			return
		}
	}
}

// Snapshot returns a copy of the values in priority order. The copy is
// immune to registrations and removals performed while it is walked,
// which is what keeps an in-flight dispatch stable under re-entrant
// mutation.
func (l *List[T]) Snapshot() []T {
	if len(l.entries) == 0 {
		return nil
	}
	out := make([]T, len(l.entries))
	for i := range l.entries {
		out[i] = l.entries[i].value
	}
	return out
}

// Clear removes every entry. Sequence ids continue from where they
// left off so stale ids can never alias a new entry.
func (l *List[T]) Clear() {
	l.entries = nil
}
