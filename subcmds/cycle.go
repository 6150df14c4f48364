// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/pacwatch/api"
	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/subcmds/cmdutil"
)

type Cycle struct {
	cmdutil.ClientFlags
}

func (c *Cycle) Synopsis() string {
	return "Asks the daemon to run a fetch-and-publish cycle now"
}

func (c *Cycle) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("cycle", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Cycle) CommandHelp() string {
	return `

Command "cycle" triggers an immediate fetch-and-publish cycle on the running
daemon and prints the cycle summary. The daemon waits for the cycle to finish
before responding, so a cycle with a large backlog of posts can exceed the
default -http-timeout; raise the timeout in that case.

`
}

func (c *Cycle) run(ctx context.Context, args []string) error {
	resp, err := cmdutil.Post[api.CycleResponse](ctx, &c.ClientFlags, api.CyclePath, &api.CycleRequest{})
	if err != nil {
		return err
	}
	if rs := resp.Cycle; rs != nil {
		fmt.Fprintf(cli.Stdout(ctx), "Cycle %d: fetched %d, new %d, posted %d, failed %d, skipped %d, pruned %d\n",
			rs.CycleID, rs.NumFetched, rs.NumNew, rs.NumPosted, rs.NumFailed, rs.NumSkipped, rs.NumPruned)
		if len(rs.LastError) != 0 {
			fmt.Fprintf(cli.Stdout(ctx), "Cycle error: %s\n", rs.LastError)
		}
	}
	return nil
}
