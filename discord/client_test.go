// Copyright (c) 2026 BVK Chaitanya

package discord

import (
	"context"
	"encoding/json"
	"os"
	"testing"
)

var testingSecrets *Secrets

func checkSecrets() bool {
	if testingSecrets != nil {
		return true
	}
	data, err := os.ReadFile("discord-creds.json")
	if err != nil {
		return false
	}
	s := new(Secrets)
	if err := json.Unmarshal(data, s); err != nil {
		return false
	}
	if err := s.Check(); err != nil {
		return false
	}
	testingSecrets = s
	return true
}

func TestSecretsCheck(t *testing.T) {
	s := &Secrets{}
	if err := s.Check(); err == nil {
		t.Fatalf("wanted non-nil error for empty secrets")
	}
	s = &Secrets{BotToken: "xyz"}
	if err := s.Check(); err == nil {
		t.Fatalf("wanted non-nil error for missing channel id")
	}
	s = &Secrets{BotToken: "xyz", ChannelID: "123"}
	if err := s.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestClientLive(t *testing.T) {
	ctx := context.Background()

	if !checkSecrets() {
		t.Skip("no credentials")
		return
	}

	c, err := New(ctx, testingSecrets)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			t.Fatal(err)
		}
	}()

	t.Logf("Authorized on account %s", c.BotUserName())

	if err := c.SendBulletin(ctx, "hello"); err != nil {
		t.Fatal(err)
	}
}
