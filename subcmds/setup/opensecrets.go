// Copyright (c) 2026 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/opensecrets"
)

type OpenSecrets struct {
	dataDir     string
	skipTesting bool

	apiKey string
}

func (c *OpenSecrets) Synopsis() string {
	return "Configures the OpenSecrets API access key"
}

func (c *OpenSecrets) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("opensecrets", flag.ContinueOnError)
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.apiKey, "api-key", "", "OpenSecrets API access key")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return fset, cli.CmdFunc(c.run)
}

func (c *OpenSecrets) CommandHelp() string {
	return `

Command "opensecrets" saves the OpenSecrets API access key into the secrets
file. The key is mandatory; the daemon cannot fetch the expenditure feed
without it. Keys are issued at opensecrets.org under the user profile page.

  $ pacwatch setup opensecrets --api-key=0123456789abcdef...

`
}

func (c *OpenSecrets) run(ctx context.Context, args []string) error {
	secrets, secretsPath, err := loadSecrets(c.dataDir)
	if err != nil {
		return err
	}

	secrets.OpenSecrets = &opensecrets.Credentials{
		APIKey: c.apiKey,
	}
	if err := secrets.OpenSecrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		// Fetch the feed once to validate the key.
		client, err := opensecrets.New(secrets.OpenSecrets.APIKey, nil)
		if err != nil {
			return err
		}
		if _, err := client.Expenditures(ctx); err != nil {
			return fmt.Errorf("could not fetch the feed with the given key: %w", err)
		}
	}

	return writeSecrets(secretsPath, secrets)
}
