package status

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-daystatus/internal/status/entity"
)

// DaysPerYear is the denominator of CompletionRate.
const DaysPerYear = 365

// Summary holds the dashboard statistics over a merged status map.
type Summary struct {
	TotalTracked   int     `json:"totalTracked"`
	ActiveCount    int     `json:"activeCount"`
	CompletionRate float64 `json:"completionRate"`
	StreakDays     int     `json:"streakDays"`
}

// Summarize computes statistics for data.
func Summarize(data map[string]string) Summary {
	s := Summary{TotalTracked: len(data)}
	for _, v := range data {
		if v == entity.LabelAvailable {
			s.ActiveCount++
		}
	}
	s.CompletionRate = math.Round(float64(s.TotalTracked)/DaysPerYear*100*10) / 10
	s.StreakDays = longestStreak(data)
	return s
}

type datedStatus struct {
	key    string
	day    time.Time
	status string
}

// longestStreak returns the longest run of equal non-empty statuses when
// entries are ordered by date. Keys that do not parse are ignored.
func longestStreak(data map[string]string) int {
	entries := make([]datedStatus, 0, len(data))
	for k, v := range data {
		day, ok := ParseDateKey(k)
		if !ok {
			continue
		}
		entries = append(entries, datedStatus{key: k, day: day, status: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].day.Equal(entries[j].day) {
			return entries[i].key < entries[j].key
		}
		return entries[i].day.Before(entries[j].day)
	})

	best, cur := 0, 0
	last := ""
	for _, e := range entries {
		if e.status != "" && e.status == last {
			cur++
			continue
		}
		best = max(best, cur)
		cur = 0
		if e.status != "" {
			cur = 1
		}
		last = e.status
	}
	return max(best, cur)
}

// ParseDateKey reads a "{year}-{month0to11}-{day}" key. Out of range months
// and days roll over the way time.Date normalizes them.
func ParseDateKey(key string) (time.Time, bool) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		n[i] = v
	}
	return time.Date(n[0], time.Month(n[1]+1), n[2], 0, 0, 0, 0, time.UTC), true
}
