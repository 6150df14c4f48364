// Copyright (c) 2026 BVK Chaitanya

package telegram

import (
	"context"
	"os"
)

// MessageLimit is the maximum length of a Telegram message in characters.
const MessageLimit = 4096

// Poster adapts the bot client into a publishing channel backed by the
// broadcast channel from the bot credentials.
type Poster struct {
	client *Client
}

func (c *Client) Poster() (*Poster, error) {
	if len(c.secrets.ChannelID) == 0 {
		return nil, os.ErrInvalid
	}
	return &Poster{client: c}, nil
}

func (p *Poster) Name() string {
	return "telegram"
}

func (p *Poster) Limit() int {
	return MessageLimit
}

func (p *Poster) Post(ctx context.Context, text string) error {
	return p.client.SendBulletin(ctx, text)
}
