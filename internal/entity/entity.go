// Package entity tracks engine entity identifiers across mutating operations.
//
// The modeling engine never reports which entities an operation created, so
// membership is inferred by comparing a snapshot taken before the operation
// with the live set taken after it.
package entity

import (
	"fmt"
	"sort"
)

// Set is a set of entity identifiers
type Set map[int]struct{}

// NewSet creates a set from a list of identifiers
func NewSet(ids []int) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		if id < 0 {
			panic(fmt.Sprintf("entity: invalid identifier %d", id))
		}
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set
func (s Set) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the identifiers in ascending order
func (s Set) Sorted() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Snapshot is an immutable set of identifiers captured at one point in session time
type Snapshot struct {
	set Set
}

// Take captures a snapshot of the given identifiers
func Take(ids []int) Snapshot {
	return Snapshot{set: NewSet(ids)}
}

// Len returns the number of identifiers in the snapshot
func (s Snapshot) Len() int {
	return len(s.set)
}

// Contains reports whether id was present when the snapshot was taken
func (s Snapshot) Contains(id int) bool {
	return s.set.Contains(id)
}

// IDs returns the snapshot contents in ascending order
func (s Snapshot) IDs() []int {
	return s.set.Sorted()
}

// Diff returns the symmetric difference between a snapshot and the live set.
//
// For import and unite this is exactly the set of created entities, because
// those operations never reuse an identifier they removed in the same step.
func Diff(before Snapshot, after []int) []int {
	live := NewSet(after)
	out := make(Set)
	for id := range live {
		if !before.Contains(id) {
			out[id] = struct{}{}
		}
	}
	for id := range before.set {
		if !live.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out.Sorted()
}
