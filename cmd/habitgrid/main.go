package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/cli/backups"
	"github.com/julianstephens/habitgrid/internal/cli/reports"
	"github.com/julianstephens/habitgrid/internal/cli/settings"
	"github.com/julianstephens/habitgrid/internal/cli/system"
	"github.com/julianstephens/habitgrid/internal/cli/tracking"
	"github.com/julianstephens/habitgrid/internal/config"
	"github.com/julianstephens/habitgrid/internal/constants"
	apperrors "github.com/julianstephens/habitgrid/internal/errors"
	"github.com/julianstephens/habitgrid/internal/events"
	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/storage"
	"github.com/julianstephens/habitgrid/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Directory for logs and, by default, the habit document." type:"string" default:"~/.config/habitgrid" env:"HABITGRID_CONFIG"`
	Store    string `help:"Where habits are kept: a directory, a .db file, 'postgres' (keyring or HABITGRID_DB_CONNECTION) or a PostgreSQL URL without a password." env:"HABITGRID_STORE"`
	Timezone string `help:"Timezone used to decide which day is today." default:"Local" env:"HABITGRID_TIMEZONE"`
	Debug    bool   `help:"Log to stderr at debug level."`

	LogFormat string `help:"Log file format: text, json or logfmt." default:"text" env:"HABITGRID_LOG_FORMAT"`

	AMQPURL      string `name:"amqp-url" help:"Publish change messages to this AMQP broker." env:"HABITGRID_AMQP_URL"`
	AMQPExchange string `name:"amqp-exchange" help:"Exchange for change messages." default:"habitgrid"`
	AMQPQueue    string `name:"amqp-queue" help:"Queue bound to the exchange for change messages." default:"habitgrid.changes"`

	List     tracking.ListCmd     `cmd:"" help:"List habits." default:"1"`
	Add      tracking.AddCmd      `cmd:"" help:"Add a habit."`
	Edit     tracking.EditCmd     `cmd:"" help:"Rename a habit or change its levels and color."`
	Delete   tracking.DeleteCmd   `cmd:"" help:"Delete a habit and its record."`
	Mark     tracking.MarkCmd     `cmd:"" help:"Set the level of a habit for a day."`
	Stats    reports.StatsCmd     `cmd:"" help:"Show streaks and monthly counts."`
	Calendar reports.CalendarCmd  `cmd:"" help:"Show a month grid for a habit."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd   `cmd:"" help:"Check the stored habits for inconsistencies."`
	Tui      system.TuiCmd        `cmd:"" help:"Open the interactive month grid."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Show the schema version of a database store."`
	Settings settings.SettingsCmd `cmd:"" help:"View or change settings."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups of local habit data."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	os.Exit(run())
}

// run executes the selected command and returns the process exit code. Every
// deferred close has run by the time it returns, so queued change messages
// are flushed even when the command fails.
func run() int {
	_ = config.LoadEnv()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Track daily habits on a four-level scale"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Config{
		ConfigDir: CLI.Config,
		Store:     CLI.Store,
		Timezone:  CLI.Timezone,
		Debug:     CLI.Debug,
		LogFormat: CLI.LogFormat,
		AMQP: config.AMQP{
			URL:      CLI.AMQPURL,
			Exchange: CLI.AMQPExchange,
			Queue:    CLI.AMQPQueue,
		},
	}.Resolve()
	if err != nil {
		return apperrors.Report(os.Stderr, err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir, Format: cfg.LogFormat}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	tz, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return apperrors.Report(os.Stderr, err)
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Base:        baseCtx,
		Config:      cfg,
		TZ:          tz,
		Interactive: isTerminal(os.Stdin),
	}

	// keyring commands configure the store, so they run without one
	if !strings.HasPrefix(ctx.Command(), "keyring") {
		adapter, err := storage.Open(baseCtx, cfg.Store)
		if err != nil {
			return apperrors.Report(os.Stderr, err)
		}
		store := habits.New(adapter)
		defer store.Close()

		if err := store.Load(baseCtx); err != nil {
			return apperrors.Report(os.Stderr, err)
		}
		logger.Debug("Store loaded", "location", adapter.Location(), "habits", len(store.List()))

		if cfg.AMQP.Enabled() {
			pub, err := events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
			if err != nil {
				logger.Warn("Change publishing disabled", "error", err)
			} else {
				defer pub.Close()
				unsubscribe := store.Subscribe(pub.Subscriber(store))
				defer unsubscribe()
			}
		}

		appCtx.Store = store
		appCtx.Adapter = adapter
	}

	if err := ctx.Run(appCtx); err != nil {
		return apperrors.Report(os.Stderr, err)
	}
	return apperrors.ExitOK
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
