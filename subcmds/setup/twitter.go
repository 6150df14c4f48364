// Copyright (c) 2026 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/twitter"
)

type Twitter struct {
	dataDir     string
	skipTesting bool

	consumerKey    string
	consumerSecret string
	accessToken    string
	accessSecret   string
}

func (c *Twitter) Synopsis() string {
	return "Configures Twitter service API parameters"
}

func (c *Twitter) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("twitter", flag.ContinueOnError)
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.consumerKey, "consumer-key", "", "OAuth1 consumer key for the app")
	fset.StringVar(&c.consumerSecret, "consumer-secret", "", "OAuth1 consumer secret for the app")
	fset.StringVar(&c.accessToken, "access-token", "", "OAuth1 access token for the posting account")
	fset.StringVar(&c.accessSecret, "access-secret", "", "OAuth1 access token secret for the posting account")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return fset, cli.CmdFunc(c.run)
}

func (c *Twitter) CommandHelp() string {
	return `

Command "twitter" configures the Twitter/X credentials used to publish
expenditure bulletins as tweets.

Twitter configuration is optional. All four OAuth1 values come from a Twitter
developer app with read-write permissions:

  $ pacwatch setup twitter --consumer-key=... --consumer-secret=... \
        --access-token=... --access-secret=...

`
}

func (c *Twitter) run(ctx context.Context, args []string) error {
	secrets, secretsPath, err := loadSecrets(c.dataDir)
	if err != nil {
		return err
	}

	secrets.Twitter = &twitter.Credentials{
		ConsumerKey:    c.consumerKey,
		ConsumerSecret: c.consumerSecret,
		AccessToken:    c.accessToken,
		AccessSecret:   c.accessSecret,
	}
	if err := secrets.Twitter.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		// A credentials lookup authenticates without posting anything.
		client, err := twitter.New(secrets.Twitter, nil)
		if err != nil {
			return err
		}
		username, err := client.VerifyCredentials(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Authenticated to twitter as @%s\n", username)
	}

	return writeSecrets(secretsPath, secrets)
}
