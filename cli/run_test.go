// Copyright (c) 2023 BVK Chaitanya

package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"testing"
)

type TestCmd struct {
	name  string
	flags *flag.FlagSet
	args  []string
}

func newTestCmd(name string) *TestCmd {
	return &TestCmd{
		name:  name,
		flags: flag.NewFlagSet(name, flag.ContinueOnError),
	}
}

func (t *TestCmd) Command() (*flag.FlagSet, CmdFunc) {
	return t.flags, CmdFunc(func(_ context.Context, args []string) error {
		log.Println("running", t.name, "with args", args)
		t.args = args
		return nil
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	run := newTestCmd("run")
	background := run.flags.Bool("background", false, "set to run in background")

	recordsList := newTestCmd("list")
	window := recordsList.flags.String("window", "30d", "reporting window")
	recordsSummary := newTestCmd("summary")
	recordsSummary.flags.String("window", "30d", "reporting window")
	records := CommandGroup("records", "View tracked expenditures", recordsList, recordsSummary)

	alertAdd := newTestCmd("add")
	alertAdd.flags.String("candidate", "", "candidate name substring")
	alertList := newTestCmd("list")
	alertRemove := newTestCmd("remove")
	alert := CommandGroup("alert", "Manage spending alerts", alertAdd, alertList, alertRemove)

	dbGet := newTestCmd("get")
	dbList := newTestCmd("list")
	dbDelete := newTestCmd("delete")
	dbBackup := newTestCmd("backup")
	dbRestore := newTestCmd("restore")
	db := CommandGroup("db", "View/update database directly", dbGet, dbList, dbDelete, dbBackup, dbRestore)

	cmds := []Command{run, records, alert, db}

	{
		args := []string{"db", "list", "db-list-argument"}
		if err := Run(ctx, cmds, args); err != nil {
			t.Fatal(err)
		}
		if len(dbList.args) != 1 || dbList.args[0] != "db-list-argument" {
			t.Fatalf("want `db-list-argument`, got %v", dbList.args)
		}
	}

	{
		args := []string{"run", "-background", "run-argument"}
		if err := Run(ctx, cmds, args); err != nil {
			t.Fatal(err)
		}
		if len(run.args) != 1 || run.args[0] != "run-argument" {
			t.Fatalf("want `run-argument`, got %v", run.args)
		}
		if *background == false {
			t.Fatalf("want true, got false")
		}
	}

	{
		args := []string{"records", "list", "-window=7d", "list-argument"}
		if err := Run(ctx, cmds, args); err != nil {
			t.Fatal(err)
		}
		if len(recordsList.args) != 1 || recordsList.args[0] != "list-argument" {
			t.Fatalf("want `list-argument`, got %v", recordsList.args)
		}
		if *window != "7d" {
			t.Fatalf("want `7d`, got %q", *window)
		}
	}
}

func TestStdout(t *testing.T) {
	ctx := context.Background()

	var sb strings.Builder
	fmt.Fprintf(Stdout(WithStdout(ctx, &sb)), "captured")
	if sb.String() != "captured" {
		t.Fatalf("want `captured`, got %q", sb.String())
	}
}
