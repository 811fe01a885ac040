package checkins

import (
	"fmt"

	"github.com/julianstephens/mindtrack/internal/cli"
)

type CheckinListCmd struct {
	From string `help:"First date to include (YYYY-MM-DD)."`
	To   string `help:"Last date to include (YYYY-MM-DD)."`
}

func (c *CheckinListCmd) Run(ctx *cli.Context) error {
	checkins, err := ctx.Checkins.ListCheckins(ctx.Ctx, c.From, c.To)
	if err != nil {
		return err
	}

	if len(checkins) == 0 {
		fmt.Fprintln(ctx.Out, "No check-ins found.")
		return nil
	}

	for i := range checkins {
		cli.PrintCheckin(ctx.Out, &checkins[i])
	}
	return nil
}
