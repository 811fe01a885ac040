package system

import (
	"fmt"

	"github.com/julianstephens/mindtrack/internal/cli"
	"github.com/julianstephens/mindtrack/internal/utils"
)

type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" help:"Apply pending migrations." default:"1"`
	Down   MigrateDownCmd   `cmd:"" help:"Revert applied migrations."`
	Status MigrateStatusCmd `cmd:"" help:"Show migration status."`
}

type MigrateUpCmd struct{}

func (c *MigrateUpCmd) Run(ctx *cli.Context) error {
	runner := ctx.Store.Migrator()

	count, err := runner.ApplyMigrations(ctx.Ctx, func(msg string) {
		fmt.Fprintln(ctx.Out, msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(ctx.Out, "No migrations needed")
	} else {
		fmt.Fprintf(ctx.Out, "Successfully applied %d migration(s)\n", count)
	}

	return nil
}

type MigrateDownCmd struct {
	Steps int `help:"Number of migrations to revert (0 reverts all)." default:"1"`
}

func (c *MigrateDownCmd) Run(ctx *cli.Context) error {
	count, err := ctx.Store.Migrator().Rollback(ctx.Ctx, c.Steps, func(msg string) {
		fmt.Fprintln(ctx.Out, msg)
	})
	if err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	fmt.Fprintf(ctx.Out, "Reverted %d migration(s)\n", count)
	return nil
}

type MigrateStatusCmd struct{}

func (c *MigrateStatusCmd) Run(ctx *cli.Context) error {
	statuses, err := ctx.Store.Migrator().Status(ctx.Ctx)
	if err != nil {
		return err
	}

	if len(statuses) == 0 {
		fmt.Fprintln(ctx.Out, "No migration files found")
		return nil
	}

	for _, s := range statuses {
		applied := "pending"
		if s.AppliedAt != nil {
			applied = "applied " + utils.FormatTimestamp(*s.AppliedAt)
		}
		fmt.Fprintf(ctx.Out, "%03d  %-28s %s\n", s.Version, s.Name, applied)
	}
	return nil
}
