package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/habitgrid/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMissingHabitID     ConflictType = "missing_habit_id"
	ConflictDuplicateHabitID   ConflictType = "duplicate_habit_id"
	ConflictEmptyName          ConflictType = "empty_name"
	ConflictEmptyLevelLabel    ConflictType = "empty_level_label"
	ConflictInvalidDate        ConflictType = "invalid_date"
	ConflictInvalidLevel       ConflictType = "invalid_level"
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
)

// Conflict is one problem found in a habit collection
type Conflict struct {
	Type        ConflictType
	Description string
	HabitIDs    []string
	Day         string // YYYY-MM-DD key (if applicable)
}

// Blocking reports whether the conflict breaks a collection invariant.
// Duplicate names are allowed but confusing.
func (c Conflict) Blocking() bool {
	return c.Type != ConflictDuplicateHabitName
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// HasBlocking returns true if any conflict breaks an invariant
func (vr *ValidationResult) HasBlocking() bool {
	for _, c := range vr.Conflicts {
		if c.Blocking() {
			return true
		}
	}
	return false
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks habit collections against the collection invariants
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabits checks ids, names, level labels and record entries.
// Conflicts are reported in collection order, record entries by day.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	seenID := make(map[string]bool, len(habits))
	nameIDs := make(map[string][]string)
	var names []string

	for i, h := range habits {
		label := h.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}

		switch {
		case h.ID == "":
			result.add(ConflictMissingHabitID, fmt.Sprintf("Habit %q has no id", label), nil, "")
		case seenID[h.ID]:
			result.add(ConflictDuplicateHabitID, fmt.Sprintf("Duplicate habit id: %s (habit %q)", h.ID, label), []string{h.ID}, "")
		}
		seenID[h.ID] = true

		if strings.TrimSpace(h.Name) == "" {
			result.add(ConflictEmptyName, fmt.Sprintf("Habit %s has an empty name", idOrIndex(h.ID, i)), []string{h.ID}, "")
		} else {
			key := strings.ToLower(strings.TrimSpace(h.Name))
			if _, ok := nameIDs[key]; !ok {
				names = append(names, key)
			}
			nameIDs[key] = append(nameIDs[key], h.ID)
		}

		for n, l := range h.Levels {
			if strings.TrimSpace(l) == "" {
				result.add(ConflictEmptyLevelLabel, fmt.Sprintf("Habit %q has no label for level %d", label, n+1), []string{h.ID}, "")
			}
		}

		days := make([]string, 0, len(h.Record))
		for day := range h.Record {
			days = append(days, day)
		}
		sort.Strings(days)
		for _, day := range days {
			if _, err := models.ParseDay(day); err != nil {
				result.add(ConflictInvalidDate, fmt.Sprintf("Habit %q has an invalid record date: %q", label, day), []string{h.ID}, day)
				continue
			}
			if level := h.Record[day]; !level.Valid() {
				result.add(ConflictInvalidLevel, fmt.Sprintf("Habit %q has level %d on %s (expected 0-3)", label, int(level), day), []string{h.ID}, day)
			}
		}
	}

	for _, name := range names {
		if ids := nameIDs[name]; len(ids) > 1 {
			result.add(ConflictDuplicateHabitName, fmt.Sprintf("Duplicate habit name: %q (IDs: %v)", name, ids), ids, "")
		}
	}

	return result
}

func (vr *ValidationResult) add(t ConflictType, desc string, ids []string, day string) {
	vr.Conflicts = append(vr.Conflicts, Conflict{Type: t, Description: desc, HabitIDs: ids, Day: day})
}

func idOrIndex(id string, i int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("#%d", i+1)
}
