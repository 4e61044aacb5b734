package models

// Settings holds preferences persisted next to the habits
type Settings struct {
	DefaultColors []string `json:"defaultColors"`
}

// Clone returns a copy of the settings
func (s Settings) Clone() Settings {
	s.DefaultColors = append([]string(nil), s.DefaultColors...)
	return s
}

// Document is the whole persisted unit. It is written in full on every change.
type Document struct {
	Habits   []Habit  `json:"habits"`
	Settings Settings `json:"settings"`
}

// Clone returns a deep copy of the document
func (d Document) Clone() Document {
	out := Document{
		Habits:   make([]Habit, len(d.Habits)),
		Settings: d.Settings.Clone(),
	}
	for i, h := range d.Habits {
		out.Habits[i] = h.Clone()
	}
	return out
}

// Palette is offered when suggesting a color for a new habit
var Palette = []string{
	"#3b82f6", "#10b981", "#f59e0b", "#ef4444",
	"#8b5cf6", "#ec4899", "#06b6d4", "#84cc16",
}

// SuggestColor picks a palette color for the n-th habit
func SuggestColor(n int) string {
	if n < 0 {
		n = -n
	}
	return Palette[n%len(Palette)]
}

// SuggestColor picks from the configured colors, falling back to Palette
// when none are configured
func (s Settings) SuggestColor(n int) string {
	if len(s.DefaultColors) == 0 {
		return SuggestColor(n)
	}
	if n < 0 {
		n = -n
	}
	return s.DefaultColors[n%len(s.DefaultColors)]
}

// ValidColor reports whether c is a #rrggbb hex color
func ValidColor(c string) bool {
	if len(c) != 7 || c[0] != '#' {
		return false
	}
	for _, r := range c[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// DefaultSettings returns the settings installed on first run
func DefaultSettings() Settings {
	return Settings{
		DefaultColors: []string{"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899"},
	}
}

// DefaultHabits returns the example habits installed on first run
func DefaultHabits() []Habit {
	return []Habit{
		{ID: "1", Name: "Study", Levels: [3]string{"10 min", "1 hr", "3 hr"}, Record: Record{}, Color: "#3b82f6"},
		{ID: "2", Name: "Exercise", Levels: [3]string{"Stretching", "30 min", "1 hr"}, Record: Record{}, Color: "#10b981"},
		{ID: "3", Name: "Reading", Levels: [3]string{"5 pages", "20 pages", "1 hr"}, Record: Record{}, Color: "#f59e0b"},
	}
}

// DefaultDocument returns a fresh copy of the first-run document
func DefaultDocument() Document {
	return Document{
		Habits:   DefaultHabits(),
		Settings: DefaultSettings(),
	}
}
