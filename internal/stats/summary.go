package stats

import (
	"sync"
	"time"

	"github.com/julianstephens/habitgrid/internal/models"
)

// Summary collects the derived numbers shown for one habit
type Summary struct {
	HabitID       string `json:"habit_id"`
	Name          string `json:"name"`
	Month         string `json:"month"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	MonthlyCount  int    `json:"monthly_count"`
}

// Summarize computes the summary of a single habit
func Summarize(habit models.Habit, now time.Time, month Month) Summary {
	return Summary{
		HabitID:       habit.ID,
		Name:          habit.Name,
		Month:         month.String(),
		CurrentStreak: Streak(habit.Record, now),
		LongestStreak: LongestStreak(habit.Record),
		MonthlyCount:  MonthlyCount(habit.Record, month),
	}
}

// SummarizeAll computes every habit's summary concurrently. Results keep the
// order of habits.
func SummarizeAll(habits []models.Habit, now time.Time, month Month) []Summary {
	out := make([]Summary, len(habits))

	var wg sync.WaitGroup
	for i, h := range habits {
		wg.Add(1)
		go func(i int, h models.Habit) {
			defer wg.Done()
			out[i] = Summarize(h, now, month)
		}(i, h)
	}
	wg.Wait()

	return out
}
