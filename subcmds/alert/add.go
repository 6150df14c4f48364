// Copyright (c) 2026 BVK Chaitanya

// Package alert implements subcommands to manage spending alerts on the
// daemon.
package alert

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/pacwatch/api"
	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/subcmds/cmdutil"
	"github.com/shopspring/decimal"
)

type Add struct {
	cmdutil.ClientFlags

	candidate string
	pacName   string
	direction string
	threshold float64
}

func (c *Add) Synopsis() string {
	return "Adds a spending alert"
}

func (c *Add) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("add", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.candidate, "candidate", "", "candidate name substring to watch (case-insensitive)")
	fset.StringVar(&c.pacName, "pac", "", "exact PAC name to watch")
	fset.StringVar(&c.direction, "direction", "", `limit the watch to "Supports" or "Opposes" spending`)
	fset.Float64Var(&c.threshold, "threshold", 0, "dollar amount that fires the alert")
	return fset, cli.CmdFunc(c.run)
}

func (c *Add) CommandHelp() string {
	return `

Command "add" creates a spending alert on the daemon. The alert fires once
when the matching cumulative spending inside the daemon's report window
crosses the threshold, and the notification is delivered through the
configured messengers (Telegram and/or Pushover).

One of --candidate or --pac is required. For example:

  $ pacwatch alert add --candidate="smith" --direction=Opposes --threshold=100000

`
}

func (c *Add) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}
	req := &api.AlertAddRequest{
		Candidate: c.candidate,
		PACName:   c.pacName,
		Direction: c.direction,
		Threshold: decimal.NewFromFloat(c.threshold),
	}
	resp, err := cmdutil.Post[api.AlertAddResponse](ctx, &c.ClientFlags, api.AlertAddPath, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.Stdout(ctx), "%s\n", resp.UID)
	return nil
}
