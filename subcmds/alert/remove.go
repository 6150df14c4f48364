// Copyright (c) 2026 BVK Chaitanya

package alert

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/pacwatch/api"
	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/subcmds/cmdutil"
)

type Remove struct {
	cmdutil.ClientFlags
}

func (c *Remove) Synopsis() string {
	return "Removes a spending alert"
}

func (c *Remove) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("remove", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Remove) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (alert uid) argument")
	}
	req := &api.AlertRemoveRequest{
		UID: args[0],
	}
	if _, err := cmdutil.Post[api.AlertRemoveResponse](ctx, &c.ClientFlags, api.AlertRemovePath, req); err != nil {
		return err
	}
	return nil
}
