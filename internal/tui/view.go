package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/stats"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateGrid:
		content = docStyle.Render(m.viewGrid())
	case StateHabits:
		content = docStyle.Render(m.habitList.View())
	case StatePicker:
		content = m.place(m.picker.View())
	case StateAddHabit:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
	return ui
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Grid", "Habits"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	if m.validationWarning != "" {
		tabs = append(tabs, warningStyle.Render(" "+m.validationWarning))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// viewHabitTabs lists the habits with the active one highlighted
func (m Model) viewHabitTabs() string {
	var tabs []string
	for _, h := range m.habits {
		if h.ID == m.activeID {
			tabs = append(tabs, lipgloss.NewStyle().
				Foreground(lipgloss.Color(h.Color)).
				Bold(true).
				Underline(true).
				Padding(0, 1).
				Render(h.Name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(h.Name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewGrid() string {
	h, ok := m.activeHabit()
	if !ok {
		return "No habits yet.\nPress tab and 'a' to add one."
	}

	var b strings.Builder
	b.WriteString(m.viewHabitTabs() + "\n\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", m.month.Month, m.month.Year)) + "\n")

	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(m.weekStart) + i) % 7)
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" %s ", wd.String()[:2])))
	}
	b.WriteString("\n")

	now := m.now()
	for _, week := range stats.MonthGrid(h.Record, m.month, now, m.weekStart) {
		for _, d := range week {
			b.WriteString(m.renderDay(h, d))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nStreak: %d days   This month: %d days\n",
		stats.Streak(h.Record, now), stats.MonthlyCount(h.Record, m.month))
	fmt.Fprintf(&b, "%s %s: %s",
		mutedStyle.Render("Selected"),
		m.cursor.Format("Jan 2"),
		h.LevelLabel(h.Record.At(m.cursor)))
	return b.String()
}

// renderDay draws one cell, filled with the habit color by level
func (m Model) renderDay(h models.Habit, d stats.Day) string {
	text := fmt.Sprintf("%2d", d.Date.Day())
	style := lipgloss.NewStyle()

	switch {
	case !d.InMonth:
		style = style.Foreground(lipgloss.Color("237"))
	case d.InFuture:
		style = style.Foreground(lipgloss.Color("240"))
	case d.Level.Done():
		style = style.Background(lipgloss.Color(h.Color)).Foreground(lipgloss.Color("0"))
		if d.Level == models.LevelLow {
			style = style.Faint(true)
		}
		if d.Level == models.LevelHigh {
			style = style.Bold(true)
		}
	}
	if d.IsToday {
		style = style.Underline(true)
	}

	if d.Date.Equal(m.cursor) {
		return "[" + style.Render(text) + "]"
	}
	return " " + style.Render(text) + " "
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsError {
		return dangerStyle.Render(m.status)
	}
	return mutedStyle.Render(m.status)
}

func (m Model) viewConfirmDelete() string {
	name := "this habit"
	records := 0
	if h, ok := m.deleteTarget(); ok {
		name = fmt.Sprintf("%q", h.Name)
		records = len(h.Record)
	}
	return m.place(lipgloss.JoinVertical(lipgloss.Center,
		dangerStyle.Render(fmt.Sprintf("Delete %s and its %d recorded days?", name, records)),
		"",
		"[y] Yes",
		"[n] No",
	))
}

func (m Model) place(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height-4, lipgloss.Center, lipgloss.Center, s)
}
