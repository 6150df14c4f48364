// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/bvk/pacwatch/discord"
	"github.com/bvk/pacwatch/opensecrets"
	"github.com/bvk/pacwatch/pushover"
	"github.com/bvk/pacwatch/telegram"
	"github.com/bvk/pacwatch/twitter"
)

type Secrets struct {
	OpenSecrets *opensecrets.Credentials `json:"opensecrets"`
	Twitter     *twitter.Credentials     `json:"twitter"`
	Telegram    *telegram.Secrets        `json:"telegram"`
	Discord     *discord.Secrets         `json:"discord"`
	Pushover    *pushover.Keys           `json:"pushover"`
}

// SecretsFromFile loads credentials from the json file at fpath and applies
// environment variable overrides. A missing file is not an error; the
// environment alone can carry the required credentials.
func SecretsFromFile(fpath string) (*Secrets, error) {
	s := new(Secrets)
	data, err := os.ReadFile(fpath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else {
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("could not unmarshal secrets file: %w", err)
		}
	}
	s.applyEnv()
	return s, nil
}

func setenv(p *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*p = v
	}
}

func (s *Secrets) applyEnv() {
	if _, ok := os.LookupEnv("OPSEC_ACCESS_KEY"); ok {
		if s.OpenSecrets == nil {
			s.OpenSecrets = new(opensecrets.Credentials)
		}
		setenv(&s.OpenSecrets.APIKey, "OPSEC_ACCESS_KEY")
	}

	twtKeys := []string{"TWT_CONSUMER_KEY", "TWT_CONSUMER_SECRET", "TWT_ACCESS_TOKEN", "TWT_ACCESS_SECRET"}
	for _, key := range twtKeys {
		if _, ok := os.LookupEnv(key); ok {
			if s.Twitter == nil {
				s.Twitter = new(twitter.Credentials)
			}
			break
		}
	}
	if s.Twitter != nil {
		setenv(&s.Twitter.ConsumerKey, "TWT_CONSUMER_KEY")
		setenv(&s.Twitter.ConsumerSecret, "TWT_CONSUMER_SECRET")
		setenv(&s.Twitter.AccessToken, "TWT_ACCESS_TOKEN")
		setenv(&s.Twitter.AccessSecret, "TWT_ACCESS_SECRET")
	}

	tgmKeys := []string{"TGM_BOT_TOKEN", "TGM_OWNER_ID", "TGM_CHANNEL_ID"}
	for _, key := range tgmKeys {
		if _, ok := os.LookupEnv(key); ok {
			if s.Telegram == nil {
				s.Telegram = new(telegram.Secrets)
			}
			break
		}
	}
	if s.Telegram != nil {
		setenv(&s.Telegram.BotToken, "TGM_BOT_TOKEN")
		setenv(&s.Telegram.OwnerID, "TGM_OWNER_ID")
		setenv(&s.Telegram.ChannelID, "TGM_CHANNEL_ID")
	}

	dscKeys := []string{"DSC_BOT_TOKEN", "DSC_CHANNEL_ID"}
	for _, key := range dscKeys {
		if _, ok := os.LookupEnv(key); ok {
			if s.Discord == nil {
				s.Discord = new(discord.Secrets)
			}
			break
		}
	}
	if s.Discord != nil {
		setenv(&s.Discord.BotToken, "DSC_BOT_TOKEN")
		setenv(&s.Discord.ChannelID, "DSC_CHANNEL_ID")
	}

	pshKeys := []string{"PSH_APP_KEY", "PSH_USER_KEY"}
	for _, key := range pshKeys {
		if _, ok := os.LookupEnv(key); ok {
			if s.Pushover == nil {
				s.Pushover = new(pushover.Keys)
			}
			break
		}
	}
	if s.Pushover != nil {
		setenv(&s.Pushover.ApplicationKey, "PSH_APP_KEY")
		setenv(&s.Pushover.UserKey, "PSH_USER_KEY")
	}
}

func (v *Secrets) Check() error {
	if v.OpenSecrets == nil {
		return fmt.Errorf("opensecrets api key is required")
	}
	if err := v.OpenSecrets.Check(); err != nil {
		return fmt.Errorf("invalid opensecrets credentials: %w", err)
	}
	if v.Twitter != nil {
		if err := v.Twitter.Check(); err != nil {
			return fmt.Errorf("invalid twitter credentials: %w", err)
		}
	}
	if v.Telegram != nil {
		if err := v.Telegram.Check(); err != nil {
			return fmt.Errorf("invalid telegram credentials: %w", err)
		}
	}
	if v.Discord != nil {
		if err := v.Discord.Check(); err != nil {
			return fmt.Errorf("invalid discord credentials: %w", err)
		}
	}
	if v.Pushover != nil {
		if err := v.Pushover.Check(); err != nil {
			return fmt.Errorf("invalid pushover keys: %w", err)
		}
	}
	return nil
}
