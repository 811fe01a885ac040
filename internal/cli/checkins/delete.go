package checkins

import (
	"fmt"

	"github.com/julianstephens/mindtrack/internal/cli"
)

type CheckinDeleteCmd struct {
	ID string `arg:"" help:"Check-in ID to delete."`
}

func (c *CheckinDeleteCmd) Run(ctx *cli.Context) error {
	result, err := ctx.Checkins.DeleteCheckin(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "Deleted check-in %s and %d micro-task(s)\n", result.CheckinID, result.MicroTasks)
	return nil
}
