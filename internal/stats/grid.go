package stats

import (
	"time"

	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/utils"
)

// Day is one cell of a month calendar
type Day struct {
	Date     time.Time
	Level    models.Level
	InMonth  bool
	IsToday  bool
	InFuture bool
}

// MonthGrid lays out the month as whole weeks starting on weekStart, padding
// with days of the adjacent months.
func MonthGrid(record models.Record, month Month, now time.Time, weekStart time.Weekday) [][]Day {
	first := month.First()
	last := first.AddDate(0, 1, -1)
	today := utils.CivilDate(now)

	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	trail := (int(weekStart) + 6 - int(last.Weekday()) + 7) % 7
	start := first.AddDate(0, 0, -lead)
	end := last.AddDate(0, 0, trail)

	var weeks [][]Day
	var week []Day
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		week = append(week, Day{
			Date:     d,
			Level:    record.Get(key(d)),
			InMonth:  d.Month() == month.Month && d.Year() == month.Year,
			IsToday:  d.Equal(today),
			InFuture: d.After(today),
		})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = nil
		}
	}
	return weeks
}
