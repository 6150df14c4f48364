// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/server"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Once struct {
	dryRun bool

	windowDays   int
	minAmount    float64
	postInterval time.Duration

	secretsPath string
	dataDir     string
}

func (c *Once) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("once", flag.ContinueOnError)
	fset.BoolVar(&c.dryRun, "dry-run", false, "when true, composes bulletins without posting or saving")
	fset.IntVar(&c.windowDays, "window-days", 30, "trailing window for cumulative spending totals")
	fset.Float64Var(&c.minAmount, "min-amount", 0, "minimum bulletin amount in dollars")
	fset.DurationVar(&c.postInterval, "post-interval", 5*time.Second, "minimum delay between posts on a channel")
	fset.StringVar(&c.secretsPath, "secrets-file", "", "path to credentials file")
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	return fset, cli.CmdFunc(c.run)
}

func (c *Once) Synopsis() string {
	return "Runs a single fetch-and-publish cycle without the daemon"
}

func (c *Once) CommandHelp() string {
	return `

Command "once" runs one fetch-and-publish cycle in the foreground and exits.
It opens the same datastore as the daemon, so it cannot run while the daemon
is running; use the "cycle" command against a running daemon instead.

With --dry-run the cycle fetches the feed and composes bulletins, but posts
nothing and leaves the datastore untouched. This is useful to preview what a
real cycle would publish.

`
}

func (c *Once) run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(c.dataDir) == 0 {
		c.dataDir = filepath.Join(os.Getenv("HOME"), ".pacwatch")
	}
	if err := os.MkdirAll(c.dataDir, 0700); err != nil {
		return fmt.Errorf("could not create data directory %q: %w", c.dataDir, err)
	}
	dataDir, err := filepath.Abs(c.dataDir)
	if err != nil {
		return fmt.Errorf("could not determine data-dir %q absolute path: %w", c.dataDir, err)
	}

	if err := godotenv.Load(filepath.Join(dataDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not load the env file: %w", err)
	}

	if len(c.secretsPath) == 0 {
		c.secretsPath = filepath.Join(dataDir, "secrets.json")
	}
	secrets, err := server.SecretsFromFile(c.secretsPath)
	if err != nil {
		return err
	}

	bopts := badger.DefaultOptions(dataDir)
	bdb, err := badger.Open(bopts)
	if err != nil {
		return fmt.Errorf("could not open the database: %w", err)
	}
	defer bdb.Close()
	db := kvbadger.New(bdb, isGoodKey)

	wopts := &server.Options{
		WindowDays:   c.windowDays,
		MinAmount:    decimal.NewFromFloat(c.minAmount),
		PostInterval: c.postInterval,
		DryRun:       c.dryRun,
	}
	watcher, err := server.New(secrets, db, wopts)
	if err != nil {
		return err
	}
	defer watcher.Close()

	rs, err := watcher.RunCycle(ctx)
	if rs != nil {
		w := cli.Stdout(ctx)
		fmt.Fprintf(w, "Cycle %d: fetched %d, new %d, posted %d, failed %d, skipped %d, pruned %d\n",
			rs.CycleID, rs.NumFetched, rs.NumNew, rs.NumPosted, rs.NumFailed, rs.NumSkipped, rs.NumPruned)
		if len(rs.LastError) != 0 {
			fmt.Fprintf(w, "Cycle error: %s\n", rs.LastError)
		}
	}
	return err
}
