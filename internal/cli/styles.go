package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitgrid/internal/models"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	TodayStyle = lipgloss.NewStyle().
			Underline(true).
			Bold(true)
)

// Swatch renders a colored block for a habit color
func Swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}

// LevelCell renders a level with the habit color, fading lower levels
func LevelCell(level models.Level, color string) string {
	switch level {
	case models.LevelLow:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Faint(true).Render("░░")
	case models.LevelMid:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("▒▒")
	case models.LevelHigh:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render("██")
	}
	return MutedStyle.Render("··")
}

// Check renders a passing diagnostic line
func Check(name string) string {
	return fmt.Sprintf("%s %s: OK", SuccessStyle.Render("✓"), name)
}

// Fail renders a failing diagnostic line
func Fail(name string, err error) string {
	return fmt.Sprintf("%s %s: FAIL\n   Error: %v", ErrorStyle.Render("✗"), name, err)
}

// Warning renders a diagnostic line that does not fail the run
func Warning(name string, err error) string {
	return fmt.Sprintf("%s %s: WARNING\n   %v", WarnStyle.Render("⚠"), name, err)
}
