// Package schedule computes daily run times from a list of check hours.
package schedule

import (
	"sort"
	"time"
)

// NextRun returns the next top-of-hour run time strictly after now,
// taken from hours (0-23, any order). If every hour today has passed,
// it rolls over to the earliest hour tomorrow. An empty hours list
// yields midnight tomorrow.
func NextRun(now time.Time, hours []int) time.Time {
	sorted := append([]int(nil), hours...)
	sort.Ints(sorted)

	for _, h := range sorted {
		if now.Hour() < h {
			return time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
		}
	}

	first := 0
	if len(sorted) > 0 {
		first = sorted[0]
	}
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), first, 0, 0, 0, now.Location())
}
