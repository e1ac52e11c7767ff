package core

import (
	"sort"
	"strings"
)

// SortCanonical orders movements by type (canonical declaration order),
// then last name, then first name, case-insensitively. This is the
// order of the dashboard and of notification emails.
func SortCanonical(movements []Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		a, b := movements[i], movements[j]
		if a.Type != b.Type {
			return a.Type.Order() < b.Type.Order()
		}
		ln1, ln2 := strings.ToLower(a.LastName), strings.ToLower(b.LastName)
		if ln1 != ln2 {
			return ln1 < ln2
		}
		return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
	})
}

// GroupByType buckets movements by type. Every type is present in the
// result, with an empty (non-nil) slice when the month has none.
func GroupByType(movements []Movement) map[MovementType][]Movement {
	grouped := make(map[MovementType][]Movement, len(movementTypes))
	for _, t := range movementTypes {
		grouped[t] = []Movement{}
	}
	for _, m := range movements {
		grouped[m.Type] = append(grouped[m.Type], m)
	}
	return grouped
}

// FillTypeCounts returns per-type counts with all four types present,
// zero-filled where raw has no entry.
func FillTypeCounts(raw map[MovementType]int) map[MovementType]int {
	counts := make(map[MovementType]int, len(movementTypes))
	for _, t := range movementTypes {
		counts[t] = 0
	}
	for t, n := range raw {
		if t.IsValid() {
			counts[t] = n
		}
	}
	return counts
}

// CountByType derives zero-filled per-type counts from a movement list.
func CountByType(movements []Movement) map[MovementType]int {
	counts := FillTypeCounts(nil)
	for _, m := range movements {
		counts[m.Type]++
	}
	return counts
}
