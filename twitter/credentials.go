// Copyright (c) 2026 BVK Chaitanya

package twitter

import "fmt"

// Credentials holds the four OAuth 1.0a user-context keys for one account.
type Credentials struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`

	AccessToken  string `json:"access_token"`
	AccessSecret string `json:"access_secret"`
}

func (v *Credentials) Check() error {
	if len(v.ConsumerKey) == 0 {
		return fmt.Errorf("consumer key cannot be empty")
	}
	if len(v.ConsumerSecret) == 0 {
		return fmt.Errorf("consumer secret cannot be empty")
	}
	if len(v.AccessToken) == 0 {
		return fmt.Errorf("access token cannot be empty")
	}
	if len(v.AccessSecret) == 0 {
		return fmt.Errorf("access secret cannot be empty")
	}
	return nil
}

func (v *Credentials) Clone() *Credentials {
	c := *v
	return &c
}
