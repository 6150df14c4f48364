// Copyright (c) 2023 BVK Chaitanya

package gobs

import "time"

type ServerChannelState struct {
	// Disabled pauses publishing on the channel without removing its
	// credentials.
	Disabled bool

	LastPostTime time.Time
}

type ServerState struct {
	ChannelMap map[string]*ServerChannelState
}

// RunState summarizes the most recent fetch/publish cycle.
type RunState struct {
	CycleID uint64

	StartTime time.Time
	EndTime   time.Time

	NumFetched int
	NumNew     int
	NumPosted  int
	NumFailed  int
	NumSkipped int
	NumPruned  int

	LastError string
}
