// Copyright (c) 2023 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/subcmds"
	"github.com/bvk/pacwatch/subcmds/alert"
	"github.com/bvk/pacwatch/subcmds/db"
	"github.com/bvk/pacwatch/subcmds/records"
	"github.com/bvk/pacwatch/subcmds/setup"
)

func main() {
	recordsCmds := []cli.Command{
		new(records.List),
		new(records.Summary),
	}

	alertCmds := []cli.Command{
		new(alert.Add),
		new(alert.List),
		new(alert.Remove),
	}

	setupCmds := []cli.Command{
		new(setup.OpenSecrets),
		new(setup.Twitter),
		new(setup.Telegram),
		new(setup.Discord),
		new(setup.PushOver),
	}

	dbCmds := []cli.Command{
		new(db.Get),
		new(db.Set),
		new(db.Edit),
		new(db.Delete),
		new(db.List),
		new(db.Backup),
		new(db.Restore),
	}

	cmds := []cli.Command{
		new(subcmds.Run),
		new(subcmds.Once),
		new(subcmds.Status),
		new(subcmds.Cycle),
		new(subcmds.Fetch),
		cli.CommandGroup("records", "Inspect tracked expenditure records", recordsCmds...),
		cli.CommandGroup("alert", "Manage spending alerts", alertCmds...),
		cli.CommandGroup("setup", "Configure service credentials", setupCmds...),
		cli.CommandGroup("db", "View/update database directly", dbCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
