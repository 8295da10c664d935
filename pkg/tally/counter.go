package tally

import "slices"

// Entry is one ranked {value, count} pair of a tally.
type Entry struct {
	Value Value `json:"value" yaml:"value"`
	Count int   `json:"count" yaml:"count"`
}

// Count ranks the distinct values by occurrence count, highest first.
// Values with equal counts keep the order of their first occurrence.
// Counts always sum to len(values); an empty input yields an empty, non-nil slice.
func Count(values []Value) []Entry {
	entries := make([]Entry, 0)
	index := make(map[Value]int, len(values))

	for _, v := range values {
		pos, ok := index[v]
		if !ok {
			index[v] = len(entries)
			entries = append(entries, Entry{Value: v, Count: 1})

			continue
		}

		entries[pos].Count++
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Count - a.Count
	})

	return entries
}

// Expand turns ranked entries back into the multiset they summarize:
// each entry contributes Count repetitions of its Value, in ranked order.
func Expand(entries []Entry) []Value {
	out := make([]Value, 0, Total(entries))

	for _, e := range entries {
		for range e.Count {
			out = append(out, e.Value)
		}
	}

	return out
}

// Total returns the sum of counts.
func Total(entries []Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Count
	}

	return total
}
