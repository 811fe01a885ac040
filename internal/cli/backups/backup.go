package backups

import (
	"fmt"

	"github.com/julianstephens/mindtrack/internal/backup"
	"github.com/julianstephens/mindtrack/internal/cli"
	"github.com/julianstephens/mindtrack/internal/logger"
)

func manager(ctx *cli.Context) *backup.Manager {
	return backup.NewManager(ctx.Store.GetConfigPath(), ctx.Config.BackupKeep)
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	info, err := manager(ctx).Create(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Fprintf(ctx.Out, "Backup created: %s\n", info.Name())
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr := manager(ctx)
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Fprintln(ctx.Out, "No backups found.")
		fmt.Fprintf(ctx.Out, "Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	fmt.Fprintf(ctx.Out, "Available backups (%d total, keeping most recent %d):\n\n", len(backups), mgr.Keep())
	for _, b := range backups {
		fmt.Fprintf(ctx.Out, "  %s  %s  (%.1f KB)\n",
			b.Timestamp.Format("2006-01-02 15:04:05"), b.Name(), float64(b.Size)/1024.0)
	}
	fmt.Fprintf(ctx.Out, "\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	File string `arg:"" help:"Path or file name of the backup to restore."`
	Yes  bool   `short:"y" help:"Confirm replacing the current journal."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr := manager(ctx)
	path, err := mgr.Resolve(c.File)
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Fprintf(ctx.Out, "Restoring %s would replace the current journal.\n", path)
		fmt.Fprintln(ctx.Out, "Stop other mindtrack processes, then re-run with --yes.")
		return nil
	}

	if err := ctx.Store.Close(); err != nil {
		logger.Warn("Failed to close database before restore", "error", err)
	}

	previous, err := mgr.Restore(ctx.Ctx, path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if previous != nil {
		fmt.Fprintf(ctx.Out, "Saved current journal as: %s\n", previous.Name())
	}

	// Older snapshots are brought up to the current schema.
	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return fmt.Errorf("restored journal could not be opened: %w", err)
	}
	fmt.Fprintf(ctx.Out, "Restored journal from: %s\n", path)
	return nil
}
