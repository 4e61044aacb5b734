package stats

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/models"
)

func key(day time.Time) string {
	return day.Format(constants.DateFormat)
}

func done(record models.Record, day time.Time) bool {
	return record.Get(key(day)).Done()
}

// earliest returns the first parseable day in the record
func earliest(record models.Record) (time.Time, bool) {
	var first time.Time
	found := false
	for k := range record {
		t, err := time.Parse(constants.DateFormat, k)
		if err != nil {
			continue
		}
		if !found || t.Before(first) {
			first = t
			found = true
		}
	}
	return first, found
}

// Month identifies a calendar month without a day component
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM string
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(constants.MonthFormat, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", s, err)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// First returns the first day of the month
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month
func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

// Prev returns the preceding month
func (m Month) Prev() Month {
	return MonthOf(m.First().AddDate(0, -1, 0))
}
