// Copyright (c) 2026 BVK Chaitanya

package api

import (
	"time"

	"github.com/bvk/pacwatch/gobs"
)

const StatusPath = "/pacwatch/status"

type StatusRequest struct {
}

type StatusResponseChannel struct {
	Name string

	Enabled bool

	LastPostTime time.Time
}

type StatusResponse struct {
	StartTime time.Time

	WindowDays int

	// NumTracked is the number of expenditure records currently in the
	// ledger.
	NumTracked int

	LastCycle *gobs.RunState

	NextCycleTime time.Time

	Channels []*StatusResponseChannel
}
