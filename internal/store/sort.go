package store

import "sort"

// sortNewestFirst orders records by CreatedAt descending, keeping the
// relative order of equal timestamps.
func sortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
