// Copyright (c) 2026 BVK Chaitanya

package tracker

import (
	"context"
	"fmt"
	"sort"

	"github.com/bvk/pacwatch/gobs"
	"github.com/bvk/pacwatch/kvutil"
	"github.com/bvk/pacwatch/timerange"
	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"
)

// Summary aggregates a PAC's spending in one direction on one race.
type Summary struct {
	PACName   string
	Direction string
	Candidate string
	District  string
	Party     string

	Amount  decimal.Decimal
	NumRows int
}

type summaryKey struct {
	pac, direction, candidate, district, party string
}

// Summarize tabulates the ledger within the window per PAC, direction and
// race, ordered by amount (largest first).
func Summarize(ctx context.Context, r kv.Reader, window *timerange.Range) ([]*Summary, error) {
	smap := make(map[summaryKey]*Summary)
	begin, end := kvutil.PathRange(Keyspace)
	fn := func(ctx context.Context, r kv.Reader, key string, v *gobs.Expenditure) error {
		if !window.InRange(v.ReportDate) {
			return nil
		}
		k := summaryKey{v.PACName, v.Direction, v.Candidate, v.District, v.Party}
		s, ok := smap[k]
		if !ok {
			s = &Summary{
				PACName:   v.PACName,
				Direction: v.Direction,
				Candidate: v.Candidate,
				District:  v.District,
				Party:     v.Party,
			}
			smap[k] = s
		}
		s.Amount = s.Amount.Add(v.Amount)
		s.NumRows++
		return nil
	}
	if err := kvutil.Ascend(ctx, r, begin, end, fn); err != nil {
		return nil, fmt.Errorf("could not scan the ledger: %w", err)
	}

	summaries := make([]*Summary, 0, len(smap))
	for _, s := range smap {
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].Amount.Equal(summaries[j].Amount) {
			return summaries[i].Amount.GreaterThan(summaries[j].Amount)
		}
		if summaries[i].PACName != summaries[j].PACName {
			return summaries[i].PACName < summaries[j].PACName
		}
		return summaries[i].Candidate < summaries[j].Candidate
	})
	return summaries, nil
}
