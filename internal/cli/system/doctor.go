package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/storage"
	"github.com/julianstephens/habitgrid/internal/utils"
	"github.com/julianstephens/habitgrid/internal/validation"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()
	fmt.Fprintln(out, "Running diagnostics...")
	fmt.Fprintln(out)

	hasError := false
	fail := func(name string, err error) {
		fmt.Fprintln(out, cli.Fail(name, err))
		hasError = true
	}

	doc, err := checkStoreReachable(ctx)
	reachable := err == nil
	if err != nil {
		fail("Store reachable", err)
	} else {
		fmt.Fprintln(out, cli.Check("Store reachable"))
	}

	if checker, ok := ctx.Adapter.(storage.SchemaChecker); ok {
		if err := checker.CheckSchema(ctx.Ctx()); err != nil {
			fail("Schema version", err)
		} else {
			fmt.Fprintln(out, cli.Check("Schema version"))
		}
	}

	if reachable && doc != nil {
		result := validation.New().ValidateHabits(doc.Habits)
		switch {
		case result.HasBlocking():
			fail("Habit integrity", errors.New(result.FormatReport()))
		case result.HasConflicts():
			fmt.Fprintln(out, cli.Warning("Habit integrity", errors.New(result.FormatReport())))
		default:
			fmt.Fprintln(out, cli.Check("Habit integrity"))
		}
	} else if reachable {
		fmt.Fprintln(out, cli.Warning("Habit integrity", errors.New("no habit document yet, defaults are installed on first change")))
	} else {
		fmt.Fprintln(out, cli.MutedStyle.Render("⊘ Habit integrity: SKIPPED (store not reachable)"))
	}

	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Fprintln(out, cli.Warning("Backups present", err))
	} else {
		fmt.Fprintln(out, cli.Check("Backups present"))
	}

	if err := checkClockTimezone(ctx); err != nil {
		fail("Clock/timezone", err)
	} else {
		fmt.Fprintln(out, cli.Check("Clock/timezone"))
	}

	fmt.Fprintln(out)
	if hasError {
		return errors.New("diagnostics found problems")
	}
	fmt.Fprintln(out, cli.SuccessStyle.Render("All checks passed."))
	return nil
}

// checkStoreReachable reads the raw document, bypassing the store's
// load-time repairs so that doctor sees what is actually persisted
func checkStoreReachable(ctx *cli.Context) (*models.Document, error) {
	exists, err := ctx.Adapter.Exists(ctx.Ctx(), constants.DocumentName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	data, err := ctx.Adapter.Read(ctx.Ctx(), constants.DocumentName)
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("habit document is not valid JSON: %w", err)
	}
	return &doc, nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, ok := ctx.BackupManager()
	if !ok {
		return errors.New("store is remote, backups are managed by the database")
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider creating one with 'habitgrid backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	if tz := ctx.Config.Timezone; tz != "" {
		if _, err := utils.NowInTimezone(tz); err != nil {
			return err
		}
	}
	now := ctx.Today()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

// ValidateCmd reports invariant violations in the persisted document
type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	doc, err := checkStoreReachable(ctx)
	if err != nil {
		return err
	}
	out := ctx.Stdout()
	if doc == nil {
		fmt.Fprintln(out, "No habit document found.")
		return nil
	}

	result := validation.New().ValidateHabits(doc.Habits)
	fmt.Fprint(out, result.FormatReport())
	if !result.HasConflicts() {
		fmt.Fprintln(out)
	}
	if result.HasBlocking() {
		return errors.New("validation failed")
	}
	return nil
}
