// utils/aggregate.go
package utils

import (
	"sort"
	"time"
)

// Leaderboard sizes used by the dashboards.
const (
	IndividualLeaderboardSize = 10
	TeamLeaderboardSize       = 5
)

// Group is one bucket of a GroupSum.
type Group struct {
	Key   string  `json:"key"`
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// FilterByPeriod keeps the records whose date falls inside p.
func FilterByPeriod[T any](records []T, dateOf func(T) time.Time, p Period) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if p.Contains(dateOf(r)) {
			out = append(out, r)
		}
	}
	return out
}

// Sum adds up value over records.
func Sum[T any](records []T, value func(T) float64) float64 {
	var total float64
	for _, r := range records {
		total += value(r)
	}
	return total
}

// Mean returns the average of value over records, or 0 for no records.
func Mean[T any](records []T, value func(T) float64) float64 {
	if len(records) == 0 {
		return 0
	}
	return Sum(records, value) / float64(len(records))
}

// GroupSum sums value per key. Groups come back in the order their key was
// first seen.
func GroupSum[T any](records []T, key func(T) string, value func(T) float64) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Value += value(r)
		groups[i].Count++
	}
	return groups
}

// TopN ranks groups by value, highest first, keeping input order for ties,
// and truncates the result to n. The input slice is not modified.
func TopN(groups []Group, n int) []Group {
	ranked := make([]Group, len(groups))
	copy(ranked, groups)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
