// Copyright (c) 2026 BVK Chaitanya

package gobs

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertState is an operator-defined spending watch. The alert fires when the
// cumulative amount a PAC has spent for or against a matching candidate
// crosses the threshold within the trailing window.
type AlertState struct {
	UID string

	// Candidate is matched case-insensitively as a substring of the
	// candidate name. PACName and Direction, when non-empty, must match the
	// row exactly.
	Candidate string
	PACName   string
	Direction string

	Threshold decimal.Decimal

	CreateTime time.Time

	// LastTotal is the matching total at the last evaluation. A notification
	// fires only when the total crosses the threshold from below, so an alert
	// fires once per crossing and not on every cycle. When the trailing
	// window slides past old reports the total can drop back below the
	// threshold, which re-arms the alert.
	LastTotal decimal.Decimal

	// FiredTime and FiredTotal record the last notification.
	FiredTime  time.Time
	FiredTotal decimal.Decimal
}
