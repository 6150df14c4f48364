// Copyright (c) 2026 BVK Chaitanya

package gobs

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expenditure is one independent-expenditure row from the feed, along with
// the publication marks accumulated for it. Rows are stored at
// "/expenditures/<id>" where id is the content hash of the source fields.
type Expenditure struct {
	// Source fields, as reported by the feed.
	CommitteeID string
	PACName     string
	Direction   string // "Supports" or "Opposes"
	Candidate   string // "Last, First"
	District    string
	Party       string
	Note        string
	Payee       string
	Origin      string
	Source      string

	Amount     decimal.Decimal
	ReportDate time.Time

	// FetchTime is when the row was first ingested into the ledger.
	FetchTime time.Time

	// PostTimes maps a channel name to the time a bulletin containing this
	// row was confirmed published on that channel.
	PostTimes map[string]time.Time

	// SkipTime and SkipReason mark rows that are deliberately excluded from
	// publication (below the reporting threshold or unfit for composing).
	SkipTime   time.Time
	SkipReason string
}
