package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRun(t *testing.T) {
	loc := time.UTC
	hours := []int{8, 12, 20}

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"before first hour",
			time.Date(2024, 6, 2, 5, 30, 0, 0, loc),
			time.Date(2024, 6, 2, 8, 0, 0, 0, loc),
		},
		{
			"between hours",
			time.Date(2024, 6, 2, 9, 15, 0, 0, loc),
			time.Date(2024, 6, 2, 12, 0, 0, 0, loc),
		},
		{
			"exactly on an hour rolls to the next",
			time.Date(2024, 6, 2, 12, 0, 0, 0, loc),
			time.Date(2024, 6, 2, 20, 0, 0, 0, loc),
		},
		{
			"after last hour rolls to tomorrow",
			time.Date(2024, 6, 2, 22, 45, 0, 0, loc),
			time.Date(2024, 6, 3, 8, 0, 0, 0, loc),
		},
		{
			"month rollover",
			time.Date(2024, 6, 30, 21, 0, 0, 0, loc),
			time.Date(2024, 7, 1, 8, 0, 0, 0, loc),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextRun(tc.now, hours))
		})
	}
}

func TestNextRun_UnsortedHours(t *testing.T) {
	now := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	got := NextRun(now, []int{20, 8, 12})
	assert.Equal(t, time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC), got)
}

func TestNextRun_EmptyHours(t *testing.T) {
	now := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	got := NextRun(now, nil)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), got)
}
