// Copyright (c) 2026 BVK Chaitanya

// Package expend defines the independent-expenditure domain rules: source row
// normalization, record identity, and the candidate/district naming quirks of
// the feed.
package expend

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bvk/pacwatch/gobs"
	"github.com/shopspring/decimal"
)

const (
	Supports = "Supports"
	Opposes  = "Opposes"
)

// dateLayouts lists the report date formats seen in the feed.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// SourceRow holds one feed row before normalization, with every field as the
// feed sent it.
type SourceRow struct {
	CommitteeID string
	PACName     string
	Direction   string
	Candidate   string
	District    string
	Amount      string
	Note        string
	Party       string
	Payee       string
	Date        string
	Origin      string
	Source      string
}

// Normalize validates a source row and converts it into a ledger record. All
// fields are whitespace-trimmed first. Rows missing any of the required
// fields (PAC name, direction, candidate, amount) or carrying an unparsable
// amount, direction or date fail with an error wrapping os.ErrInvalid.
func Normalize(row *SourceRow) (*gobs.Expenditure, error) {
	v := &gobs.Expenditure{
		CommitteeID: strings.TrimSpace(row.CommitteeID),
		PACName:     strings.TrimSpace(row.PACName),
		Candidate:   strings.TrimSpace(row.Candidate),
		District:    strings.TrimSpace(row.District),
		Note:        strings.TrimSpace(row.Note),
		Party:       strings.TrimSpace(row.Party),
		Payee:       strings.TrimSpace(row.Payee),
		Origin:      strings.TrimSpace(row.Origin),
		Source:      strings.TrimSpace(row.Source),
	}

	if v.PACName == "" {
		return nil, fmt.Errorf("row has no pac name: %w", os.ErrInvalid)
	}
	if v.Candidate == "" {
		return nil, fmt.Errorf("row has no candidate name: %w", os.ErrInvalid)
	}

	direction := strings.TrimSpace(row.Direction)
	switch {
	case strings.EqualFold(direction, Supports):
		v.Direction = Supports
	case strings.EqualFold(direction, Opposes):
		v.Direction = Opposes
	case direction == "":
		return nil, fmt.Errorf("row has no direction: %w", os.ErrInvalid)
	default:
		return nil, fmt.Errorf("unexpected direction %q: %w", direction, os.ErrInvalid)
	}

	amount := strings.TrimSpace(row.Amount)
	if amount == "" {
		return nil, fmt.Errorf("row has no amount: %w", os.ErrInvalid)
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("could not parse amount %q: %w", amount, os.ErrInvalid)
	}
	v.Amount = a

	date, err := ParseDate(row.Date)
	if err != nil {
		return nil, err
	}
	v.ReportDate = date
	return v, nil
}

// ParseDate parses a report date, trying each of the formats the feed is
// known to use.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("row has no report date: %w", os.ErrInvalid)
	}
	for _, layout := range dateLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse report date %q: %w", s, os.ErrInvalid)
}

// ID returns the stable identifier for a record. The feed assigns no record
// IDs, so identity is the content of the source fields: two rows that agree
// on every field are the same record.
func ID(v *gobs.Expenditure) string {
	fields := []string{
		v.CommitteeID,
		v.PACName,
		v.Direction,
		v.Candidate,
		v.District,
		v.Amount.String(),
		v.Note,
		v.Party,
		v.Payee,
		v.ReportDate.UTC().Format("2006-01-02"),
		v.Origin,
		v.Source,
	}
	sum := sha256.Sum256([]byte(strings.Join(fields, "\x1f")))
	return hex.EncodeToString(sum[:16])
}

// CandidateNames splits the feed's "Last, First" candidate field.
func CandidateNames(candidate string) (first, last string, err error) {
	last, first, ok := strings.Cut(candidate, ", ")
	if !ok || first == "" || last == "" {
		return "", "", fmt.Errorf("unexpected candidate name %q: %w", candidate, os.ErrInvalid)
	}
	return first, last, nil
}

// DistrictLabel collapses Senate race codes like "CAS1" to the state code;
// House codes like "CA05" pass through unchanged.
func DistrictLabel(district string) string {
	if len(district) >= 3 && district[2] == 'S' {
		return district[:2]
	}
	return district
}

// Verb renders a direction for prose: "support" or "oppose".
func Verb(direction string) string {
	return strings.ToLower(strings.TrimSuffix(direction, "s"))
}
