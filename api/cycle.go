// Copyright (c) 2026 BVK Chaitanya

package api

import (
	"github.com/bvk/pacwatch/gobs"
)

const CyclePath = "/pacwatch/cycle"

// CycleRequest asks the server to run a fetch-and-publish cycle immediately
// instead of waiting for the next scheduled run.
type CycleRequest struct {
}

type CycleResponse struct {
	Cycle *gobs.RunState
}
