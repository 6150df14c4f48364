// Copyright (c) 2023 BVK Chaitanya

package api

import (
	"fmt"

	"github.com/google/uuid"
)

func (r *AlertAddRequest) Check() error {
	if len(r.Candidate) == 0 && len(r.PACName) == 0 {
		return fmt.Errorf("one of candidate or pac name is required")
	}
	if d := r.Direction; len(d) != 0 && d != "Supports" && d != "Opposes" {
		return fmt.Errorf("direction %q is invalid", d)
	}
	if !r.Threshold.IsPositive() {
		return fmt.Errorf("threshold must be positive")
	}
	return nil
}

func (r *AlertRemoveRequest) Check() error {
	if _, err := uuid.Parse(r.UID); err != nil {
		return fmt.Errorf("uid %q is not an uuid: %w", r.UID, err)
	}
	return nil
}
