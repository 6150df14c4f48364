// Copyright (c) 2026 BVK Chaitanya

package records

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/subcmds/cmdutil"
	"github.com/bvk/pacwatch/timerange"
	"github.com/bvk/pacwatch/tracker"
	"github.com/bvkgo/kv"
	"github.com/dustin/go-humanize"
)

type Summary struct {
	cmdutil.DBFlags

	window string
}

func (c *Summary) Synopsis() string {
	return "Summarizes spending per PAC and race in a report window"
}

func (c *Summary) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("summary", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.window, "window", "30d", "trailing report window (eg: 7d, week, month, all)")
	return fset, cli.CmdFunc(c.run)
}

func (c *Summary) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}
	window, err := timerange.ParseWindow(c.window, time.UTC)
	if err != nil {
		return fmt.Errorf("could not parse window %q: %w", c.window, err)
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	var summaries []*tracker.Summary
	load := func(ctx context.Context, r kv.Reader) error {
		summaries, err = tracker.Summarize(ctx, r, window)
		return err
	}
	if err := kv.WithReader(ctx, db, load); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.Stdout(ctx), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "PAC\tACTION\tCANDIDATE\tRACE\tROWS\tTOTAL\t\n")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s (%s)\t%d\t$%s\t\n",
			s.PACName, expend.Verb(s.Direction), s.Candidate, s.District, s.Party,
			s.NumRows, humanize.Comma(s.Amount.Truncate(0).IntPart()))
	}
	return tw.Flush()
}
