// Copyright (c) 2026 BVK Chaitanya

package api

import (
	"github.com/shopspring/decimal"
)

const AlertAddPath = "/pacwatch/alert/add"

type AlertAddRequest struct {
	// Candidate is matched case-insensitively as a substring of the
	// candidate name. PACName and Direction must match exactly when
	// non-empty. At least one of Candidate or PACName is required.
	Candidate string
	PACName   string
	Direction string

	Threshold decimal.Decimal
}

type AlertAddResponse struct {
	UID string
}
