package checkins

import (
	"fmt"

	"github.com/julianstephens/mindtrack/internal/cli"
	"github.com/julianstephens/mindtrack/internal/models"
	"github.com/julianstephens/mindtrack/internal/utils"
)

type CheckinGetCmd struct {
	Date string `arg:"" optional:"" help:"Date (YYYY-MM-DD). Defaults to today (UTC)."`
	ID   string `help:"Look up by check-in ID instead of date."`
}

func (c *CheckinGetCmd) Run(ctx *cli.Context) error {
	var resp *models.CheckinResponse
	var err error

	if c.ID != "" {
		resp, err = ctx.Checkins.GetCheckin(ctx.Ctx, c.ID)
	} else {
		date := c.Date
		if date == "" {
			date = utils.FormatDate(ctx.App.Now())
		}
		resp, err = ctx.Checkins.GetCheckinByDate(ctx.Ctx, date)
		if err == nil && resp == nil {
			fmt.Fprintf(ctx.Out, "No check-in recorded for %s\n", date)
			return nil
		}
	}
	if err != nil {
		return err
	}

	cli.PrintCheckin(ctx.Out, resp)

	tasks, err := ctx.Tasks.ListMicroTasks(ctx.Ctx, resp.ExternalID)
	if err != nil {
		return err
	}
	for i := range tasks {
		cli.PrintMicroTask(ctx.Out, &tasks[i])
	}
	return nil
}
