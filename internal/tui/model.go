// Package tui is the interactive month grid: one tab per habit view, a
// picker for recording a day and a habit list for adding and deleting.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/stats"
	"github.com/julianstephens/habitgrid/internal/tui/components/habitlist"
	"github.com/julianstephens/habitgrid/internal/tui/components/picker"
	"github.com/julianstephens/habitgrid/internal/utils"
	"github.com/julianstephens/habitgrid/internal/validation"
)

type SessionState int

const (
	StateGrid SessionState = iota
	StateHabits
	StatePicker
	StateAddHabit
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab
const tabCount = 2

type HabitFormModel struct {
	Name   string
	Levels string
	Color  string
}

// StoreChangedMsg is sent whenever the store commits a change
type StoreChangedMsg struct{}

type mutationDoneMsg struct {
	notice string
	err    error
}

type Model struct {
	ctx             context.Context
	store           *habits.Store
	now             func() time.Time
	state           SessionState
	keys            KeyMap
	help            help.Model
	habitList       habitlist.Model
	picker          picker.Model
	form            *huh.Form
	habitForm       *HabitFormModel
	habits          []models.Habit
	activeID        string
	month           stats.Month
	cursor          time.Time
	weekStart       time.Weekday
	habitToDeleteID string
	status          string
	statusIsError   bool
	// validationWarning summarizes conflicts in the loaded habits
	validationWarning string
	quitting          bool
	width             int
	height            int
}

func NewModel(ctx context.Context, store *habits.Store, now func() time.Time) Model {
	today := utils.CivilDate(now())
	m := Model{
		ctx:       ctx,
		store:     store,
		now:       now,
		state:     StateGrid,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		habitList: habitlist.New(nil, 0, 0),
		month:     stats.MonthOf(today),
		cursor:    today,
		weekStart: time.Sunday,
	}
	m.refresh()
	return m
}

// refresh re-reads the store and keeps the active habit when it still exists
func (m *Model) refresh() {
	m.habits = m.store.List()
	if h, ok := models.ActiveHabit(m.habits, m.activeID); ok {
		m.activeID = h.ID
	} else {
		m.activeID = ""
	}

	now := m.now()
	current := stats.MonthOf(now)
	items := make([]habitlist.Item, len(m.habits))
	for i, h := range m.habits {
		items[i] = habitlist.Item{
			Habit:      h,
			Streak:     stats.Streak(h.Record, now),
			MonthCount: stats.MonthlyCount(h.Record, current),
		}
	}
	m.habitList.SetItems(items)
	m.updateValidationStatus()
}

func (m *Model) updateValidationStatus() {
	result := validation.New().ValidateHabits(m.habits)
	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s)", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

func (m Model) activeHabit() (models.Habit, bool) {
	return models.ActiveHabit(m.habits, m.activeID)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateGrid {
		keys = append(keys, m.keys.Enter, m.keys.PrevMonth, m.keys.NextMonth, m.keys.NextHabit)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Today}

	var actions []key.Binding
	if m.state == StateGrid {
		actions = []key.Binding{m.keys.Enter, m.keys.PrevMonth, m.keys.NextMonth, m.keys.PrevHabit, m.keys.NextHabit}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Run starts the grid and blocks until the user quits. Changes committed
// by other writers of the same store are picked up as they happen.
func Run(ctx context.Context, store *habits.Store, loc *time.Location) error {
	now := func() time.Time { return time.Now().In(loc) }
	p := tea.NewProgram(NewModel(ctx, store, now), tea.WithAltScreen(), tea.WithContext(ctx))

	// subscribers run while the store holds its write lock
	unsubscribe := store.Subscribe(func() {
		go p.Send(StoreChangedMsg{})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}
