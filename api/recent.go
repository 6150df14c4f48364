// Copyright (c) 2026 BVK Chaitanya

package api

import (
	"github.com/bvk/pacwatch/gobs"
)

const RecentPath = "/pacwatch/recent"

type RecentRequest struct {
	// Window selects the trailing report period, eg: "7d" or "week". When
	// empty the server's configured window is used.
	Window string
}

type RecentResponseRow struct {
	ID string

	Row *gobs.Expenditure
}

type RecentResponse struct {
	Rows []*RecentResponseRow
}
