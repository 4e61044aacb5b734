package stats

import (
	"github.com/julianstephens/habitgrid/internal/models"
)

// MonthlyCount returns how many days of the month have a level above rest.
// Keys are compared by their calendar fields; unparseable keys are ignored.
func MonthlyCount(record models.Record, month Month) int {
	count := 0
	for k, level := range record {
		if !level.Done() {
			continue
		}
		t, err := models.ParseDay(k)
		if err != nil {
			continue
		}
		if t.Year() == month.Year && t.Month() == month.Month {
			count++
		}
	}
	return count
}
