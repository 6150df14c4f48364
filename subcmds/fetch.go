// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/opensecrets"
	"github.com/bvk/pacwatch/server"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

type Fetch struct {
	secretsPath string
	dataDir     string
}

func (c *Fetch) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fset.StringVar(&c.secretsPath, "secrets-file", "", "path to credentials file")
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	return fset, cli.CmdFunc(c.run)
}

func (c *Fetch) Synopsis() string {
	return "Fetches the expenditure feed and prints it without saving anything"
}

func (c *Fetch) run(ctx context.Context, args []string) error {
	if len(c.dataDir) == 0 {
		c.dataDir = filepath.Join(os.Getenv("HOME"), ".pacwatch")
	}
	if err := godotenv.Load(filepath.Join(c.dataDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not load the env file: %w", err)
	}
	if len(c.secretsPath) == 0 {
		c.secretsPath = filepath.Join(c.dataDir, "secrets.json")
	}
	secrets, err := server.SecretsFromFile(c.secretsPath)
	if err != nil {
		return err
	}
	if secrets.OpenSecrets == nil {
		return fmt.Errorf("opensecrets api key is required")
	}

	client, err := opensecrets.New(secrets.OpenSecrets.APIKey, nil)
	if err != nil {
		return err
	}
	rows, err := client.Expenditures(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch the feed: %w", err)
	}

	tw := tabwriter.NewWriter(cli.Stdout(ctx), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "DATE\tPAC\tACTION\tCANDIDATE\tRACE\tAMOUNT\t\n")
	for _, v := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s (%s)\t$%s\t\n",
			v.ReportDate.Format("2006-01-02"), v.PACName, expend.Verb(v.Direction),
			v.Candidate, v.District, v.Party, humanize.Comma(v.Amount.Truncate(0).IntPart()))
	}
	return tw.Flush()
}
