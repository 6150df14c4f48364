// Copyright (c) 2026 BVK Chaitanya

package alert

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/bvk/pacwatch/api"
	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/subcmds/cmdutil"
	"github.com/dustin/go-humanize"
)

type List struct {
	cmdutil.ClientFlags
}

func (c *List) Synopsis() string {
	return "Prints spending alerts"
}

func (c *List) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}
	resp, err := cmdutil.Post[api.AlertListResponse](ctx, &c.ClientFlags, api.AlertListPath, &api.AlertListRequest{})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cli.Stdout(ctx), 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "UID\tPAC\tCANDIDATE\tACTION\tTHRESHOLD\tCURRENT\tFIRED\t\n")
	for _, a := range resp.Alerts {
		fired := "-"
		if !a.FiredTime.IsZero() {
			fired = fmt.Sprintf("%s at $%s", a.FiredTime.Format("2006-01-02"), humanize.Comma(a.FiredTotal.Truncate(0).IntPart()))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t$%s\t$%s\t%s\t\n", a.UID, orDash(a.PACName), orDash(a.Candidate), orDash(a.Direction), humanize.Comma(a.Threshold.Truncate(0).IntPart()), humanize.Comma(a.LastTotal.Truncate(0).IntPart()), fired)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
