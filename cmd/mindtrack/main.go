package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/mindtrack/internal/apperr"
	"github.com/julianstephens/mindtrack/internal/cli"
	"github.com/julianstephens/mindtrack/internal/cli/backups"
	"github.com/julianstephens/mindtrack/internal/cli/checkins"
	"github.com/julianstephens/mindtrack/internal/cli/system"
	"github.com/julianstephens/mindtrack/internal/cli/tasks"
	"github.com/julianstephens/mindtrack/internal/commands"
	"github.com/julianstephens/mindtrack/internal/config"
	"github.com/julianstephens/mindtrack/internal/constants"
	"github.com/julianstephens/mindtrack/internal/logger"
	"github.com/julianstephens/mindtrack/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path. Defaults to mindtrack.yaml in the working directory." type:"path"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize mindtrack storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Manage database migrations."`
	Checkin struct {
		Record checkins.CheckinRecordCmd `cmd:"" help:"Record today's (or a past day's) check-in."`
		Get    checkins.CheckinGetCmd    `cmd:"" help:"Show a check-in." default:"withargs"`
		List   checkins.CheckinListCmd   `cmd:"" help:"List check-ins."`
		Delete checkins.CheckinDeleteCmd `cmd:"" help:"Delete a check-in and its micro-tasks."`
	} `cmd:"" help:"Manage daily check-ins."`
	Task struct {
		Add    tasks.TaskAddCmd    `cmd:"" help:"Add a micro-task."`
		List   tasks.TaskListCmd   `cmd:"" help:"List micro-tasks." default:"1"`
		Done   tasks.TaskDoneCmd   `cmd:"" help:"Mark a micro-task completed."`
		Delete tasks.TaskDeleteCmd `cmd:"" help:"Delete a micro-task."`
	} `cmd:"" help:"Manage micro-tasks."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a backup of the journal." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore the journal from a backup."`
	} `cmd:"" help:"Manage journal backups."`
	Purge  system.PurgeCmd  `cmd:"" help:"Permanently remove deleted rows."`
	Invoke system.InvokeCmd `cmd:"" help:"Run a shell command with JSON arguments on stdin."`
	Conf   system.ConfigCmd `cmd:"" name:"config" help:"Inspect configuration."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Local-first mood journal with daily check-ins and micro-tasks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, apperr.Format(err))
		os.Exit(1)
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, DataDir: cfg.DataDir}); err != nil {
		fmt.Fprintln(os.Stderr, apperr.Formatf("failed to initialize logger: %v", err))
		os.Exit(1)
	}
	if err := apperr.SetLocale(cfg.Locale); err != nil {
		logger.Warn("Falling back to default locale", "locale", cfg.Locale, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := sqlite.NewStore(cfg.DatabasePath(), sqlite.Options{
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
	})

	// Migration commands manage the schema themselves; everything else
	// auto-creates and upgrades the store on startup. Init and backup
	// commands open the file themselves.
	command := kctx.Command()
	switch {
	case strings.HasPrefix(command, "migrate"):
		err = store.Open(ctx)
	case strings.HasPrefix(command, "init"), strings.HasPrefix(command, "backup"):
	default:
		err = store.Init(ctx)
	}
	if err != nil {
		stop()
		if strings.HasPrefix(command, "invoke") {
			// The shell only reads stdout, so report the failure as a result
			logger.Error("Failed to open storage", "error", err)
			_ = commands.WriteFailure(os.Stdout, apperr.Database(err))
			os.Exit(1)
		}
		apperr.Fatal(fmt.Errorf("failed to open storage: %w", err))
	}
	defer store.Close()

	appCtx := cli.NewContext(ctx, cfg, store, os.Stdin, os.Stdout)
	if err := kctx.Run(appCtx); err != nil {
		store.Close()
		stop()
		apperr.Fatal(err)
	}
}
