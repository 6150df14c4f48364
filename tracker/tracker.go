// Copyright (c) 2026 BVK Chaitanya

// Package tracker keeps the expenditure ledger: every validated feed row,
// stored under its content id, with per-channel publication marks. The ledger
// is both the dedup state (a row is "seen" for a channel once a bulletin
// containing it was confirmed posted there) and the source for cumulative
// spending tabulation over the trailing window.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/gobs"
	"github.com/bvk/pacwatch/kvutil"
	"github.com/bvk/pacwatch/timerange"
	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"
)

// Keyspace is the ledger prefix in the store.
const Keyspace = "/expenditures"

func recordKey(id string) string {
	return path.Join(Keyspace, id)
}

func isSeen(v *gobs.Expenditure, channel string) bool {
	if !v.SkipTime.IsZero() {
		return true
	}
	if v.PostTimes != nil && !v.PostTimes[channel].IsZero() {
		return true
	}
	return false
}

// Filter returns the subset of rows not yet published on the channel (and not
// skip-marked), preserving input order. When the input carries duplicate ids,
// only the first occurrence is kept.
func Filter(ctx context.Context, r kv.Reader, rows []*gobs.Expenditure, channel string) ([]*gobs.Expenditure, error) {
	var out []*gobs.Expenditure
	taken := make(map[string]bool)
	for _, row := range rows {
		id := expend.ID(row)
		if taken[id] {
			continue
		}
		taken[id] = true

		v, err := kvutil.Get[gobs.Expenditure](ctx, r, recordKey(id))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				out = append(out, row)
				continue
			}
			return nil, fmt.Errorf("could not load ledger row %s: %w", id, err)
		}
		if !isSeen(v, channel) {
			out = append(out, row)
		}
	}
	return out, nil
}

// Ingest adds rows to the ledger. Rows already present keep their existing
// entry (and with it their publication marks). Returns the number of rows
// that were new to the ledger.
func Ingest(ctx context.Context, rw kv.ReadWriter, rows []*gobs.Expenditure, at time.Time) (int, error) {
	nnew := 0
	taken := make(map[string]bool)
	for _, row := range rows {
		id := expend.ID(row)
		if taken[id] {
			continue
		}
		taken[id] = true

		_, err := kvutil.Get[gobs.Expenditure](ctx, rw, recordKey(id))
		if err == nil {
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("could not load ledger row %s: %w", id, err)
		}

		v := *row
		v.FetchTime = at
		if err := kvutil.Set(ctx, rw, recordKey(id), &v); err != nil {
			return 0, fmt.Errorf("could not store ledger row %s: %w", id, err)
		}
		nnew++
	}
	return nnew, nil
}

// Prune deletes ledger rows whose report date has left the window. Returns
// the number of rows removed.
func Prune(ctx context.Context, rw kv.ReadWriter, window *timerange.Range) (int, error) {
	var stale []string
	begin, end := kvutil.PathRange(Keyspace)
	fn := func(ctx context.Context, r kv.Reader, key string, v *gobs.Expenditure) error {
		if !window.InRange(v.ReportDate) {
			stale = append(stale, key)
		}
		return nil
	}
	if err := kvutil.Ascend(ctx, rw, begin, end, fn); err != nil {
		return 0, fmt.Errorf("could not scan the ledger: %w", err)
	}
	for _, key := range stale {
		if err := rw.Delete(ctx, key); err != nil {
			return 0, fmt.Errorf("could not delete ledger row at %q: %w", key, err)
		}
	}
	return len(stale), nil
}

// MarkPosted records a confirmed publication on the channel for each row.
func MarkPosted(ctx context.Context, rw kv.ReadWriter, rows []*gobs.Expenditure, channel string, at time.Time) error {
	for _, row := range rows {
		id := expend.ID(row)
		v, err := kvutil.Get[gobs.Expenditure](ctx, rw, recordKey(id))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("could not load ledger row %s: %w", id, err)
			}
			c := *row
			c.FetchTime = at
			v = &c
		}
		if v.PostTimes == nil {
			v.PostTimes = make(map[string]time.Time)
		}
		v.PostTimes[channel] = at
		if err := kvutil.Set(ctx, rw, recordKey(id), v); err != nil {
			return fmt.Errorf("could not update ledger row %s: %w", id, err)
		}
	}
	return nil
}

// MarkSkipped marks rows as permanently excluded from publication, so they
// are not offered again on any channel.
func MarkSkipped(ctx context.Context, rw kv.ReadWriter, rows []*gobs.Expenditure, reason string, at time.Time) error {
	for _, row := range rows {
		id := expend.ID(row)
		v, err := kvutil.Get[gobs.Expenditure](ctx, rw, recordKey(id))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("could not load ledger row %s: %w", id, err)
			}
			c := *row
			c.FetchTime = at
			v = &c
		}
		if !v.SkipTime.IsZero() {
			continue
		}
		v.SkipTime = at
		v.SkipReason = reason
		if err := kvutil.Set(ctx, rw, recordKey(id), v); err != nil {
			return fmt.Errorf("could not update ledger row %s: %w", id, err)
		}
	}
	return nil
}

// Count returns the number of rows in the ledger.
func Count(ctx context.Context, r kv.Reader) (int, error) {
	n := 0
	begin, end := kvutil.PathRange(Keyspace)
	fn := func(ctx context.Context, r kv.Reader, key string, v *gobs.Expenditure) error {
		n++
		return nil
	}
	if err := kvutil.Ascend(ctx, r, begin, end, fn); err != nil {
		return 0, fmt.Errorf("could not scan the ledger: %w", err)
	}
	return n, nil
}

// Tabulate sums the ledger amounts spent by a PAC in one direction on one
// candidate within the window.
func Tabulate(ctx context.Context, r kv.Reader, window *timerange.Range, pac, direction, candidate string) (decimal.Decimal, error) {
	total := decimal.Zero
	begin, end := kvutil.PathRange(Keyspace)
	fn := func(ctx context.Context, r kv.Reader, key string, v *gobs.Expenditure) error {
		if v.PACName != pac || v.Direction != direction || v.Candidate != candidate {
			return nil
		}
		if !window.InRange(v.ReportDate) {
			return nil
		}
		total = total.Add(v.Amount)
		return nil
	}
	if err := kvutil.Ascend(ctx, r, begin, end, fn); err != nil {
		return decimal.Zero, fmt.Errorf("could not scan the ledger: %w", err)
	}
	return total, nil
}

// Rows returns the ledger rows within the window, ordered by report date
// (oldest first, larger amounts first within a day).
func Rows(ctx context.Context, r kv.Reader, window *timerange.Range) ([]*gobs.Expenditure, error) {
	var rows []*gobs.Expenditure
	begin, end := kvutil.PathRange(Keyspace)
	fn := func(ctx context.Context, r kv.Reader, key string, v *gobs.Expenditure) error {
		if window.InRange(v.ReportDate) {
			rows = append(rows, v)
		}
		return nil
	}
	if err := kvutil.Ascend(ctx, r, begin, end, fn); err != nil {
		return nil, fmt.Errorf("could not scan the ledger: %w", err)
	}
	expend.SortRows(rows)
	return rows, nil
}
