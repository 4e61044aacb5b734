package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/stats"
	"github.com/julianstephens/habitgrid/internal/tui/components/habitlist"
	"github.com/julianstephens/habitgrid/internal/tui/components/picker"
	"github.com/julianstephens/habitgrid/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.habitList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case StoreChangedMsg:
		m.refresh()
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.status, m.statusIsError = msg.notice, false
		}
		m.refresh()
		return m, nil

	case picker.ChosenMsg:
		m.state = StateGrid
		return m, m.setLevel(msg)

	case picker.ClosedMsg:
		m.state = StateGrid
		return m, nil

	case habitlist.SelectHabitMsg:
		m.activeID = msg.ID
		m.state = StateGrid
		return m, nil

	case habitlist.AddHabitMsg:
		cmd := m.openAddForm()
		return m, cmd

	case habitlist.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.state = StateConfirmDelete
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateForm(msg)
	case StatePicker:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Tab):
		m.state = (m.state + 1) % tabCount
		return m, nil
	case key.Matches(keyMsg, m.keys.ShiftTab):
		m.state = (m.state - 1 + tabCount) % tabCount
		return m, nil
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.state == StateHabits {
		var cmd tea.Cmd
		m.habitList, cmd = m.habitList.Update(msg)
		return m, cmd
	}
	return m.updateGrid(keyMsg)
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(m.cursor.AddDate(0, 0, -1))
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(m.cursor.AddDate(0, 0, 1))
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(m.cursor.AddDate(0, 0, -7))
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.cursor.AddDate(0, 0, 7))
	case key.Matches(msg, m.keys.PrevMonth):
		m.month = m.month.Prev()
		m.cursor = m.month.First()
	case key.Matches(msg, m.keys.NextMonth):
		m.month = m.month.Next()
		m.cursor = m.month.First()
	case key.Matches(msg, m.keys.Today):
		m.moveCursor(utils.CivilDate(m.now()))
	case key.Matches(msg, m.keys.PrevHabit):
		m.cycleHabit(-1)
	case key.Matches(msg, m.keys.NextHabit):
		m.cycleHabit(1)
	case key.Matches(msg, m.keys.Enter):
		h, ok := m.activeHabit()
		if !ok {
			m.setError(errors.New("no habits yet, press tab and 'a' to add one"))
			return m, nil
		}
		if m.cursor.After(utils.CivilDate(m.now())) {
			m.setError(errors.New("future days cannot be recorded"))
			return m, nil
		}
		m.picker = picker.New(h, m.cursor)
		m.state = StatePicker
		m.status = ""
	}
	return m, nil
}

// moveCursor selects day, following it into another month if needed
func (m *Model) moveCursor(day time.Time) {
	m.cursor = day
	m.month = stats.MonthOf(day)
}

func (m *Model) cycleHabit(step int) {
	if len(m.habits) == 0 {
		return
	}
	idx := 0
	for i, h := range m.habits {
		if h.ID == m.activeID {
			idx = i
			break
		}
	}
	idx = (idx + step + len(m.habits)) % len(m.habits)
	m.activeID = m.habits[idx].ID
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusIsError = true
}

func (m Model) setLevel(msg picker.ChosenMsg) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		if err := store.SetLevel(ctx, msg.HabitID, msg.Day, msg.Level); err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{notice: fmt.Sprintf("Recorded %s", msg.Day)}
	}
}

func (m *Model) openAddForm() tea.Cmd {
	m.habitForm = &HabitFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.habitForm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Levels").
				Description("Three comma separated labels, lowest first").
				Value(&m.habitForm.Levels).
				Validate(func(s string) error {
					_, err := cli.ParseLevels(strings.Split(s, ","))
					return err
				}),
			huh.NewInput().
				Title("Color").
				Description("Optional #rrggbb").
				Placeholder(m.store.Settings().SuggestColor(len(m.habits))).
				Value(&m.habitForm.Color).
				Validate(func(s string) error {
					if s = strings.TrimSpace(s); s != "" && !models.ValidColor(s) {
						return errors.New("use the #rrggbb format")
					}
					return nil
				}),
		),
	)
	m.state = StateAddHabit
	return m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.state = StateHabits
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = StateHabits
		return m, tea.Batch(cmd, m.createHabit(*m.habitForm))
	case huh.StateAborted:
		m.state = StateHabits
	}
	return m, cmd
}

func (m Model) createHabit(f HabitFormModel) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		levels, err := cli.ParseLevels(strings.Split(f.Levels, ","))
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		h, err := store.Create(ctx, f.Name, levels, strings.TrimSpace(f.Color))
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{notice: fmt.Sprintf("Added %s", h.Name)}
	}
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		id := m.habitToDeleteID
		m.habitToDeleteID = ""
		m.state = StateHabits
		ctx, store := m.ctx, m.store
		return m, func() tea.Msg {
			if err := store.Delete(ctx, id); err != nil {
				return mutationDoneMsg{err: err}
			}
			return mutationDoneMsg{notice: "Habit deleted"}
		}
	case key.Matches(keyMsg, m.keys.Cancel):
		m.habitToDeleteID = ""
		m.state = StateHabits
	}
	return m, nil
}

// deleteTarget returns the habit awaiting delete confirmation
func (m Model) deleteTarget() (models.Habit, bool) {
	for _, h := range m.habits {
		if h.ID == m.habitToDeleteID {
			return h, true
		}
	}
	return models.Habit{}, false
}
