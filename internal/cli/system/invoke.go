package system

import (
	"fmt"
	"strings"

	"github.com/julianstephens/mindtrack/internal/cli"
)

// InvokeCmd is the shell-facing entry point. It reads JSON arguments from
// stdin and always writes a JSON result to stdout, even on failure.
type InvokeCmd struct {
	Command string `arg:"" optional:"" help:"Command name, e.g. record_daily_checkin."`
	List    bool   `help:"List available commands."`
}

func (c *InvokeCmd) Run(ctx *cli.Context) error {
	if c.List || c.Command == "" {
		fmt.Fprintln(ctx.Out, strings.Join(ctx.Commands.Names(), "\n"))
		return nil
	}
	return ctx.Commands.Serve(ctx.Ctx, c.Command, ctx.Stdin, ctx.Out)
}
