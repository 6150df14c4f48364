// Copyright (c) 2026 BVK Chaitanya

package discord

import (
	"fmt"
)

type Secrets struct {
	BotToken string `json:"token"`

	// ChannelID is the id of the channel where expenditure bulletins are
	// published.
	ChannelID string `json:"channel"`
}

func (v *Secrets) Check() error {
	if len(v.BotToken) == 0 {
		return fmt.Errorf("bot token cannot be empty")
	}
	if len(v.ChannelID) == 0 {
		return fmt.Errorf("channel id cannot be empty")
	}
	return nil
}

func (v *Secrets) Clone() *Secrets {
	return &Secrets{
		BotToken:  v.BotToken,
		ChannelID: v.ChannelID,
	}
}
