package picker

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitgrid/internal/models"
)

func testHabit() models.Habit {
	return models.Habit{
		ID:     "1",
		Name:   "Study",
		Levels: [3]string{"10 min", "1 hr", "3 hr"},
		Record: models.Record{"2024-07-10": models.LevelLow},
		Color:  "#3b82f6",
	}
}

func TestPickerStartsOnCurrentLevel(t *testing.T) {
	m := New(testHabit(), time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC))
	if m.Cursor() != models.LevelLow {
		t.Errorf("Cursor() = %d, want %d", m.Cursor(), models.LevelLow)
	}

	view := m.View()
	for _, label := range []string{"rest", "10 min", "1 hr", "3 hr", "Record Study"} {
		if !strings.Contains(view, label) {
			t.Errorf("view missing %q:\n%s", label, view)
		}
	}
}

func TestPickerNavigationAndChoice(t *testing.T) {
	m := New(testHabit(), time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC))
	if m.Cursor() != models.LevelRest {
		t.Fatalf("absent day should start on rest, got %d", m.Cursor())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	if m.Cursor() != models.LevelRest {
		t.Errorf("cursor moved above rest: %d", m.Cursor())
	}

	for i := 0; i < 5; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.Cursor() != models.LevelMax {
		t.Errorf("cursor moved past the highest level: %d", m.Cursor())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should produce a command")
	}
	got, ok := cmd().(ChosenMsg)
	if !ok {
		t.Fatalf("expected ChosenMsg, got %T", cmd())
	}
	want := ChosenMsg{HabitID: "1", Day: "2024-07-09", Level: models.LevelHigh}
	if got != want {
		t.Errorf("ChosenMsg = %+v, want %+v", got, want)
	}
}

func TestPickerDigitShortcut(t *testing.T) {
	m := New(testHabit(), time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("0")})
	if cmd == nil {
		t.Fatal("digit should produce a command")
	}
	if got := cmd().(ChosenMsg); got.Level != models.LevelRest {
		t.Errorf("Level = %d, want rest", got.Level)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")})
	if cmd != nil {
		t.Error("out of range digit should be ignored")
	}
}

func TestPickerClose(t *testing.T) {
	m := New(testHabit(), time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should produce a command")
	}
	if _, ok := cmd().(ClosedMsg); !ok {
		t.Errorf("expected ClosedMsg, got %T", cmd())
	}
}
