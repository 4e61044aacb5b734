package reports

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/stats"
)

func resolveMonth(ctx *cli.Context, month string) (stats.Month, error) {
	if month == "" {
		return stats.MonthOf(ctx.Today()), nil
	}
	return stats.ParseMonth(month)
}

type StatsCmd struct {
	Month string `help:"Month to count (YYYY-MM, default: current month)."`
	JSON  bool   `help:"Print the summaries as JSON."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	month, err := resolveMonth(ctx, c.Month)
	if err != nil {
		return err
	}

	summaries := stats.SummarizeAll(ctx.Store.List(), ctx.Today(), month)
	out := ctx.Stdout()

	if c.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(out, "No habits found.")
		return nil
	}

	fmt.Fprintln(out, cli.TitleStyle.Render("Statistics for "+month.String()))
	fmt.Fprintf(out, "%-20s %8s %8s %8s\n", "Habit", "Streak", "Longest", "Month")
	fmt.Fprintln(out, strings.Repeat("-", 47))
	for _, s := range summaries {
		fmt.Fprintf(out, "%-20s %8d %8d %8d\n", truncate(s.Name, 20), s.CurrentStreak, s.LongestStreak, s.MonthlyCount)
	}
	return nil
}

type CalendarCmd struct {
	Habit  string `arg:"" optional:"" help:"Habit id or name (default: first habit)."`
	Month  string `help:"Month to show (YYYY-MM, default: current month)."`
	Monday bool   `help:"Start weeks on Monday."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	month, err := resolveMonth(ctx, c.Month)
	if err != nil {
		return err
	}

	weekStart := time.Sunday
	if c.Monday {
		weekStart = time.Monday
	}

	now := ctx.Today()
	fmt.Fprint(ctx.Stdout(), RenderCalendar(h, month, now, weekStart))
	return nil
}

// RenderCalendar draws one month of a habit as a week grid followed by the
// streak, the month count and the level legend.
func RenderCalendar(h models.Habit, month stats.Month, now time.Time, weekStart time.Weekday) string {
	var b strings.Builder

	title := fmt.Sprintf("%s %d · %s", month.Month, month.Year, h.Name)
	b.WriteString(cli.TitleStyle.Render(title) + "\n")

	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(weekStart) + i) % 7)
		b.WriteString(cli.MutedStyle.Render(wd.String()[:2]) + " ")
	}
	b.WriteString("\n")

	for _, week := range stats.MonthGrid(h.Record, month, now, weekStart) {
		for _, d := range week {
			var cell string
			switch {
			case !d.InMonth:
				cell = "  "
			case d.InFuture:
				cell = cli.MutedStyle.Render(fmt.Sprintf("%2d", d.Date.Day()))
			default:
				cell = cli.LevelCell(d.Level, h.Color)
			}
			if d.IsToday {
				cell = cli.TodayStyle.Render(cell)
			}
			b.WriteString(cell + " ")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nStreak: %d days   This month: %d days\n",
		stats.Streak(h.Record, now), stats.MonthlyCount(h.Record, month))

	legend := []string{cli.LevelCell(models.LevelRest, h.Color) + " rest"}
	for l := models.LevelLow; l <= models.LevelMax; l++ {
		legend = append(legend, cli.LevelCell(l, h.Color)+" "+h.LevelLabel(l))
	}
	b.WriteString(cli.MutedStyle.Render("Levels: ") + strings.Join(legend, "  ") + "\n")

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
