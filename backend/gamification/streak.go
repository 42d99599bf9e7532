package gamification

import (
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

type StreakInfo struct {
	CurrentStreak   int     `json:"current_streak"`
	LongestStreak   int     `json:"longest_streak"`
	TotalActiveDays int     `json:"total_active_days"`
	IsActiveToday   bool    `json:"is_active_today"`
	LastActiveDate  string  `json:"last_active_date,omitempty"`
	WeekActivity    [7]bool `json:"week_activity"` // [0] is six days ago, [6] is today
}

// StreakMessage picks the copy shown next to the streak counter.
func StreakMessage(streak int) string {
	switch {
	case streak <= 0:
		return "Study today to start a streak!"
	case streak >= 7:
		return "Amazing! Keep up the pace"
	default:
		return "Well done, keep it going!"
	}
}

// ActiveDays collapses activity timestamps into sorted, distinct calendar
// days (YYYY-MM-DD) in loc.
func ActiveDays(times []time.Time, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	seen := make(map[string]struct{}, len(times))
	days := make([]string, 0, len(times))
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		key := t.In(loc).Format(dayLayout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, key)
	}
	sort.Strings(days)
	return days
}

// LongestStreak is the longest run of consecutive days in a sorted day list.
func LongestStreak(days []string) int {
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		prev, err1 := time.Parse(dayLayout, days[i-1])
		curr, err2 := time.Parse(dayLayout, days[i])
		if err1 == nil && err2 == nil && prev.AddDate(0, 0, 1).Equal(curr) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// ComputeStreak derives the streak figures from activity timestamps as seen
// at now. The current streak keeps counting from yesterday when the learner
// has not been active yet today.
func ComputeStreak(times []time.Time, now time.Time) StreakInfo {
	loc := now.Location()
	days := ActiveDays(times, loc)
	if len(days) == 0 {
		return StreakInfo{}
	}

	set := make(map[string]struct{}, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	active := func(t time.Time) bool {
		_, ok := set[t.Format(dayLayout)]
		return ok
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	yesterday := today.AddDate(0, 0, -1)

	info := StreakInfo{
		LongestStreak:   LongestStreak(days),
		TotalActiveDays: len(days),
		IsActiveToday:   active(today),
		LastActiveDate:  days[len(days)-1],
	}

	if info.IsActiveToday || active(yesterday) {
		cursor := yesterday
		if info.IsActiveToday {
			cursor = today
		}
		for active(cursor) {
			info.CurrentStreak++
			cursor = cursor.AddDate(0, 0, -1)
		}
	}

	for i := 0; i < 7; i++ {
		info.WeekActivity[i] = active(today.AddDate(0, 0, i-6))
	}
	return info
}
