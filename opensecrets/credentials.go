// Copyright (c) 2026 BVK Chaitanya

package opensecrets

import "fmt"

type Credentials struct {
	APIKey string `json:"apikey"`
}

func (v *Credentials) Check() error {
	if len(v.APIKey) == 0 {
		return fmt.Errorf("api key cannot be empty")
	}
	return nil
}

func (v *Credentials) Clone() *Credentials {
	return &Credentials{
		APIKey: v.APIKey,
	}
}
