package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/mindtrack/internal/cli"
)

type PurgeCmd struct {
	Yes bool `help:"Confirm permanent removal of soft-deleted rows."`
}

func (c *PurgeCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		return errors.New("purge permanently removes deleted check-ins and tasks; rerun with --yes to confirm")
	}

	purged, err := ctx.Checkins.PurgeDeleted(ctx.Ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "Purged %d check-in(s) and %d micro-task(s)\n", purged.Checkins, purged.MicroTasks)
	return nil
}
