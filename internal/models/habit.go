package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitgrid/internal/constants"
)

// Level is a day's achievement grade for a habit
type Level int

const (
	LevelRest Level = iota
	LevelLow
	LevelMid
	LevelHigh

	LevelMax = LevelHigh
)

// Valid reports whether l is one of 0..3
func (l Level) Valid() bool {
	return l >= LevelRest && l <= LevelMax
}

// Done reports whether the level counts as an achievement
func (l Level) Done() bool {
	return l > LevelRest
}

// Record maps a YYYY-MM-DD day to the level marked for it.
// A missing key and an explicit LevelRest are equivalent.
type Record map[string]Level

// Get returns the level stored for day, LevelRest when absent
func (r Record) Get(day string) Level {
	return r[day]
}

// At returns the level stored for the calendar date of t
func (r Record) At(t time.Time) Level {
	return r[t.Format(constants.DateFormat)]
}

// Clone returns a copy that shares no state with r
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Habit represents a practice tracked per day on a four-level scale
type Habit struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Levels [3]string `json:"levels"`
	Record Record    `json:"data"`
	Color  string    `json:"color"`
}

// Clone returns a deep copy of the habit
func (h Habit) Clone() Habit {
	h.Record = h.Record.Clone()
	return h
}

// LevelLabel returns the display label for a level
func (h Habit) LevelLabel(l Level) string {
	if l == LevelRest {
		return "rest"
	}
	if !l.Valid() {
		return fmt.Sprintf("level %d", int(l))
	}
	return h.Levels[l-1]
}

// ActiveHabit returns the habit with the given id, falling back to the first
// habit in the collection when id is empty or unknown.
func ActiveHabit(habits []Habit, id string) (Habit, bool) {
	if len(habits) == 0 {
		return Habit{}, false
	}
	for _, h := range habits {
		if h.ID == id {
			return h, true
		}
	}
	return habits[0], true
}

// ParseDay validates a YYYY-MM-DD record key
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", day, err)
	}
	return t, nil
}
