// Copyright (c) 2026 BVK Chaitanya

// Package records implements subcommands to inspect the expenditure ledger.
package records

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/gobs"
	"github.com/bvk/pacwatch/subcmds/cmdutil"
	"github.com/bvk/pacwatch/timerange"
	"github.com/bvk/pacwatch/tracker"
	"github.com/bvkgo/kv"
	"github.com/dustin/go-humanize"
)

type List struct {
	cmdutil.DBFlags

	window string
}

func (c *List) Synopsis() string {
	return "Lists tracked expenditure records in a report window"
}

func (c *List) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.window, "window", "30d", "trailing report window (eg: 7d, week, month, all)")
	return fset, cli.CmdFunc(c.run)
}

func (c *List) run(ctx context.Context, args []string) error {
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

	var rows []*gobs.Expenditure
	load := func(ctx context.Context, r kv.Reader) error {
		rows, err = tracker.Rows(ctx, r, window)
		return err
	}
	if err := kv.WithReader(ctx, db, load); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.Stdout(ctx), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "DATE\tPAC\tACTION\tCANDIDATE\tRACE\tAMOUNT\tPOSTED\t\n")
	for _, v := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s (%s)\t$%s\t%s\t\n",
			v.ReportDate.Format("2006-01-02"), v.PACName, expend.Verb(v.Direction),
			v.Candidate, v.District, v.Party,
			humanize.Comma(v.Amount.Truncate(0).IntPart()), postedColumn(v))
	}
	return tw.Flush()
}

func postedColumn(v *gobs.Expenditure) string {
	if !v.SkipTime.IsZero() {
		return "skipped: " + v.SkipReason
	}
	if len(v.PostTimes) == 0 {
		return "-"
	}
	channels := make([]string, 0, len(v.PostTimes))
	for name := range v.PostTimes {
		channels = append(channels, name)
	}
	sort.Strings(channels)
	return strings.Join(channels, ",")
}
