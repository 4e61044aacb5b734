package settings

import (
	"fmt"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/models"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Colors []string `help:"Colors offered to new habits, in order (#rrggbb)." sep:","`
	Reset  bool     `help:"Restore the default settings."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()
	settings := ctx.Store.Settings()

	if c.List {
		fmt.Fprintln(out, "Current Settings:")
		fmt.Fprintln(out, "  Default Colors:")
		for i, color := range settings.DefaultColors {
			fmt.Fprintf(out, "    %d. %s %s\n", i+1, cli.Swatch(color), color)
		}
		if len(settings.DefaultColors) == 0 {
			fmt.Fprintln(out, cli.MutedStyle.Render("    none, the built-in palette is used"))
		}
		return nil
	}

	updated := false
	if c.Reset {
		settings = models.DefaultSettings()
		updated = true
	}
	if len(c.Colors) > 0 {
		settings.DefaultColors = c.Colors
		updated = true
	}

	if updated {
		if err := ctx.Store.UpdateSettings(ctx.Ctx(), settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Fprintln(out, "Settings updated successfully.")
	} else {
		fmt.Fprintln(out, "No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
