// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Options struct {
	// RunInterval is the delay between scheduled fetch-and-publish cycles.
	RunInterval time.Duration

	// WindowDays is the trailing window, in days, used for pruning the
	// ledger, for running totals and for alert evaluation.
	WindowDays int

	// MinAmount drops bulletins below this reporting threshold.
	MinAmount decimal.Decimal

	// PostInterval paces successive posts on a channel.
	PostInterval time.Duration

	// DryRun composes and logs bulletins without posting them and without
	// changing the store.
	DryRun bool
}

func (v *Options) setDefaults() {
	if v.RunInterval == 0 {
		v.RunInterval = 6 * time.Hour
	}
	if v.WindowDays == 0 {
		v.WindowDays = 30
	}
	if v.PostInterval == 0 {
		v.PostInterval = 5 * time.Second
	}
}

func (v *Options) Check() error {
	if v.RunInterval < time.Minute {
		return fmt.Errorf("run interval %v is too small", v.RunInterval)
	}
	if v.WindowDays < 0 {
		return fmt.Errorf("window days cannot be negative")
	}
	if v.MinAmount.IsNegative() {
		return fmt.Errorf("minimum amount cannot be negative")
	}
	return nil
}
