// Copyright (c) 2026 BVK Chaitanya

package discord

import (
	"context"
)

// Poster adapts the bot client into a publishing channel.
type Poster struct {
	client *Client
}

func (c *Client) Poster() *Poster {
	return &Poster{client: c}
}

func (p *Poster) Name() string {
	return "discord"
}

func (p *Poster) Limit() int {
	return MessageLimit
}

func (p *Poster) Post(ctx context.Context, text string) error {
	return p.client.SendBulletin(ctx, text)
}
