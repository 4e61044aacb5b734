package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/models"
)

// ResolveHabit finds a habit by id or, failing that, by case-insensitive
// name. An empty ref selects the first habit.
func (c *Context) ResolveHabit(ref string) (models.Habit, error) {
	list := c.Store.List()
	if ref == "" {
		if h, ok := models.ActiveHabit(list, ""); ok {
			return h, nil
		}
		return models.Habit{}, fmt.Errorf("%w: no habits yet, add one with 'habitgrid add'", habits.ErrNotFound)
	}

	for _, h := range list {
		if h.ID == ref {
			return h, nil
		}
	}

	var matches []models.Habit
	for _, h := range list {
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("%w: %s", habits.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("%d habits are named %q, use the id instead", len(matches), ref)
	}
}

// ParseLevels splits a comma separated list of exactly three non-empty labels
func ParseLevels(labels []string) ([3]string, error) {
	var out [3]string
	if len(labels) != 3 {
		return out, fmt.Errorf("%w: expected 3 level labels, got %d", habits.ErrInvalidHabit, len(labels))
	}
	for i, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			return out, fmt.Errorf("%w: level %d label cannot be empty", habits.ErrInvalidHabit, i+1)
		}
		out[i] = l
	}
	return out, nil
}
