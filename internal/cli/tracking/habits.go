package tracking

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/stats"
	"github.com/julianstephens/habitgrid/internal/utils"
)

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()
	list := ctx.Store.List()
	if len(list) == 0 {
		fmt.Fprintln(out, "No habits found.")
		return nil
	}

	now := ctx.Today()
	today := now.Format(constants.DateFormat)
	fmt.Fprintln(out, cli.TitleStyle.Render("Habits"))
	for _, h := range list {
		level := h.Record.Get(today)
		fmt.Fprintf(out, "%s %-20s %s  today: %-12s streak: %d\n",
			cli.Swatch(h.Color),
			h.Name,
			cli.MutedStyle.Render(h.ID),
			h.LevelLabel(level),
			stats.Streak(h.Record, now),
		)
	}
	return nil
}

type AddCmd struct {
	Name   string   `arg:"" help:"Habit name."`
	Levels []string `help:"Three comma separated level labels, lowest first." required:"" sep:","`
	Color  string   `help:"Display color (#rrggbb). Defaults to the next palette color."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	levels, err := cli.ParseLevels(c.Levels)
	if err != nil {
		return err
	}

	h, err := ctx.Store.Create(ctx.Ctx(), c.Name, levels, c.Color)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout(), "%s Added habit: %s (%s)\n", cli.SuccessStyle.Render("✓"), h.Name, h.ID)
	return nil
}

type EditCmd struct {
	Habit  string   `arg:"" help:"Habit id or name."`
	Name   string   `help:"New name."`
	Levels []string `help:"Three comma separated level labels." sep:","`
	Color  string   `help:"New display color."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	var u habits.HabitUpdate
	if c.Name != "" {
		u.Name = &c.Name
	}
	if len(c.Levels) > 0 {
		levels, err := cli.ParseLevels(c.Levels)
		if err != nil {
			return err
		}
		u.Levels = &levels
	}
	if c.Color != "" {
		u.Color = &c.Color
	}
	if u.Name == nil && u.Levels == nil && u.Color == nil {
		return fmt.Errorf("nothing to change, pass --name, --levels or --color")
	}

	if err := ctx.Store.Update(ctx.Ctx(), h.ID, u); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout(), "%s Updated habit: %s\n", cli.SuccessStyle.Render("✓"), h.ID)
	return nil
}

type DeleteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		if !ctx.Interactive {
			return fmt.Errorf("refusing to delete %q without confirmation, pass --yes", h.Name)
		}
		confirmed := false
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete %q and its %d recorded days?", h.Name, len(h.Record))).
					Affirmative("Delete").
					Negative("Cancel").
					Value(&confirmed),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("confirmation form error: %w", err)
		}
		if !confirmed {
			fmt.Fprintln(ctx.Stdout(), "Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.Delete(ctx.Ctx(), h.ID); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout(), "%s Deleted habit: %s\n", cli.SuccessStyle.Render("✓"), h.Name)
	return nil
}

type MarkCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Level int    `arg:"" help:"Level 0 (rest) to 3."`
	Date  string `help:"Day to record: YYYY-MM-DD, today or yesterday." default:"today"`
}

func (c *MarkCmd) Run(ctx *cli.Context) error {
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	today := ctx.Today()
	day, err := utils.ResolveDay(c.Date, today)
	if err != nil {
		return fmt.Errorf("%w: %v", habits.ErrInvalidDate, err)
	}
	date, err := models.ParseDay(day)
	if err != nil {
		return fmt.Errorf("%w: %v", habits.ErrInvalidDate, err)
	}
	if date.After(utils.CivilDate(today)) {
		return fmt.Errorf("%w: %s is in the future", habits.ErrInvalidDate, day)
	}

	level := models.Level(c.Level)
	if err := ctx.Store.SetLevel(ctx.Ctx(), h.ID, day, level); err != nil {
		return err
	}

	label := h.LevelLabel(level)
	if strings.TrimSpace(label) == "" {
		label = fmt.Sprintf("level %d", c.Level)
	}
	fmt.Fprintf(ctx.Stdout(), "%s %s on %s: %s\n", cli.SuccessStyle.Render("✓"), h.Name, day, label)
	return nil
}
