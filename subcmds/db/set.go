// Copyright (c) 2023 BVK Chaitanya

package db

import (
	"bytes"
	"context"
	"encoding/hex"
	"flag"
	"fmt"

	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/subcmds/cmdutil"
	"github.com/bvkgo/kv"
)

type Set struct {
	cmdutil.DBFlags
}

func (c *Set) Run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("needs two (key, hex-value) arguments")
	}
	value, err := hex.DecodeString(args[1])
	if err != nil {
		return fmt.Errorf("could not decode value argument as hex: %w", err)
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	set := func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Set(ctx, args[0], bytes.NewReader(value))
	}
	return kv.WithReadWriter(ctx, db, set)
}

func (c *Set) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("set", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.Run)
}

func (c *Set) CommandHelp() string {
	return `

Command "set" updates the value for a key. The value argument must be
hex-encoded bytes in the same form printed by the "get" command. Values are
gob-encoded objects, so hand-edited values should come from a "get" of a
well-formed entry.

`
}

func (c *Set) Synopsis() string {
	return "Updates the value for a key in the database"
}
