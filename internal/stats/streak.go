package stats

import (
	"sort"
	"time"

	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/utils"
)

// Streak returns the number of consecutive achieved days ending today.
//
// An unmarked today does not break a run that reaches yesterday; the walk then
// counts from yesterday. That grace applies to today only. The walk never goes
// past the earliest day stored in the record.
func Streak(record models.Record, now time.Time) int {
	return StreakWithLimit(record, now, 0)
}

// StreakWithLimit is Streak with an upper bound on the number of days counted.
// A maxDays of zero or less leaves only the record bound.
func StreakWithLimit(record models.Record, now time.Time, maxDays int) int {
	first, ok := earliest(record)
	if !ok {
		return 0
	}

	cursor := utils.CivilDate(now)
	if !done(record, cursor) {
		cursor = cursor.AddDate(0, 0, -1)
		if !done(record, cursor) {
			return 0
		}
	}

	streak := 0
	for !cursor.Before(first) && done(record, cursor) {
		streak++
		if maxDays > 0 && streak >= maxDays {
			break
		}
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak returns the longest run of consecutive achieved days anywhere
// in the record.
func LongestStreak(record models.Record) int {
	days := make([]time.Time, 0, len(record))
	for k, level := range record {
		if !level.Done() {
			continue
		}
		t, err := models.ParseDay(k)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
