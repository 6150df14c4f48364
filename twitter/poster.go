// Copyright (c) 2026 BVK Chaitanya

package twitter

import "context"

// CharacterLimit is the tweet length limit for standard accounts.
const CharacterLimit = 280

// Poster adapts a Client to the publishing engine.
type Poster struct {
	client *Client
}

func NewPoster(client *Client) *Poster {
	return &Poster{client: client}
}

func (p *Poster) Name() string {
	return "twitter"
}

func (p *Poster) Limit() int {
	return CharacterLimit
}

func (p *Poster) Post(ctx context.Context, text string) error {
	_, err := p.client.CreateTweet(ctx, text)
	return err
}
