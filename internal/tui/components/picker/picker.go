// Package picker chooses the level recorded for one day of a habit.
package picker

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// ChosenMsg carries the level picked for a day
type ChosenMsg struct {
	HabitID string
	Day     string
	Level   models.Level
}

// ClosedMsg reports that the picker was dismissed without a choice
type ClosedMsg struct{}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Close  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "choose"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

type Model struct {
	habit   models.Habit
	day     time.Time
	current models.Level
	cursor  models.Level
	keys    KeyMap
}

// New opens the picker on the level already recorded for day
func New(habit models.Habit, day time.Time) Model {
	current := habit.Record.At(day)
	return Model{
		habit:   habit,
		day:     day,
		current: current,
		cursor:  current,
		keys:    DefaultKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > models.LevelRest {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < models.LevelMax {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Choose):
		return m, m.choose(m.cursor)
	case key.Matches(keyMsg, m.keys.Close):
		return m, func() tea.Msg { return ClosedMsg{} }
	default:
		// digits pick a level directly
		if s := keyMsg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '3' {
			return m, m.choose(models.Level(s[0] - '0'))
		}
	}
	return m, nil
}

func (m Model) choose(level models.Level) tea.Cmd {
	msg := ChosenMsg{
		HabitID: m.habit.ID,
		Day:     m.day.Format(constants.DateFormat),
		Level:   level,
	}
	return func() tea.Msg { return msg }
}

// Cursor returns the highlighted level
func (m Model) Cursor() models.Level {
	return m.cursor
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.day.Format("Mon, Jan 2")) + "\n")
	b.WriteString(subtitleStyle.Render("Record "+m.habit.Name) + "\n\n")

	for l := models.LevelRest; l <= models.LevelMax; l++ {
		pointer := "  "
		if l == m.cursor {
			pointer = "> "
		}
		mark := ""
		if l == m.current {
			mark = " ✓"
		}
		fmt.Fprintf(&b, "%s[%d] %s%s\n", pointer, int(l), m.habit.LevelLabel(l), mark)
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
