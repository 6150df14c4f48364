// Copyright (c) 2026 BVK Chaitanya

package setup

import (
	"context"
	"flag"

	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/discord"
)

type Discord struct {
	dataDir     string
	skipTesting bool

	botToken  string
	channelID string
}

func (c *Discord) Synopsis() string {
	return "Configures Discord service API parameters"
}

func (c *Discord) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("discord", flag.ContinueOnError)
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.botToken, "bot-token", "", "Discord bot's authentication token")
	fset.StringVar(&c.channelID, "channel-id", "", "Discord channel id for bulletins")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return fset, cli.CmdFunc(c.run)
}

func (c *Discord) CommandHelp() string {
	return `

Command "discord" configures the Discord bot that publishes expenditure
bulletins into a channel.

Discord configuration is optional. The bot must be invited to the server with
permission to send messages in the target channel. The channel id comes from
the "Copy Channel ID" context menu with developer mode enabled:

  $ pacwatch setup discord --bot-token=MTA4...kq8c --channel-id=110233...

`
}

func (c *Discord) run(ctx context.Context, args []string) error {
	secrets, secretsPath, err := loadSecrets(c.dataDir)
	if err != nil {
		return err
	}

	secrets.Discord = &discord.Secrets{
		BotToken:  c.botToken,
		ChannelID: c.channelID,
	}
	if err := secrets.Discord.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		// Post into the channel to validate the token and the channel id.
		client, err := discord.New(ctx, secrets.Discord)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.SendBulletin(ctx, "Test message from Discord config setup; please ignore."); err != nil {
			return err
		}
	}

	return writeSecrets(secretsPath, secrets)
}
