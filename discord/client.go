// Copyright (c) 2026 BVK Chaitanya

// Package discord implements a minimal Discord bot client for publishing
// expenditure bulletins to a single channel.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// MessageLimit is the maximum length of a Discord message in characters.
const MessageLimit = 2000

type Client struct {
	session *discordgo.Session

	self *discordgo.User

	secrets *Secrets
}

func New(ctx context.Context, secrets *Secrets) (*Client, error) {
	if err := secrets.Check(); err != nil {
		return nil, err
	}

	session, err := discordgo.New("Bot " + secrets.BotToken)
	if err != nil {
		return nil, fmt.Errorf("could not create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuildMessages

	self, err := session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("could not fetch bot user: %w", err)
	}

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("could not open discord connection: %w", err)
	}

	c := &Client{
		session: session,
		self:    self,
		secrets: secrets.Clone(),
	}
	return c, nil
}

func (c *Client) Close() error {
	return c.session.Close()
}

func (c *Client) BotUserName() string {
	return c.self.Username
}

// SendBulletin publishes a bulletin to the configured channel. Failures are
// returned to the caller, so that unpublished bulletins can be retried on a
// later cycle.
func (c *Client) SendBulletin(ctx context.Context, text string) error {
	opt := discordgo.WithContext(ctx)
	if _, err := c.session.ChannelMessageSend(c.secrets.ChannelID, text, opt); err != nil {
		return fmt.Errorf("could not send message to discord channel: %w", err)
	}
	return nil
}
