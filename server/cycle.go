// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bvk/pacwatch/gobs"
	"github.com/bvk/pacwatch/kvutil"
	"github.com/bvk/pacwatch/publisher"
	"github.com/bvk/pacwatch/timerange"
	"github.com/bvk/pacwatch/tracker"
	"github.com/bvkgo/kv"
)

// RunCycle performs one fetch-and-publish cycle: fetch the feed, prune
// ledger rows that left the trailing window, ingest new rows, publish fresh
// bulletins on every enabled channel and record the cycle summary. Cycles
// are serialized; a second caller blocks until the running cycle finishes.
//
// A fetch failure aborts the cycle before any store change, so the ledger
// and all publication marks remain exactly as they were. Under dry-run the
// cycle writes nothing at all.
func (s *Server) RunCycle(ctx context.Context) (*gobs.RunState, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	id, err := s.nextCycleID(ctx)
	if err != nil {
		return nil, err
	}
	rs := &gobs.RunState{
		CycleID:   id,
		StartTime: time.Now(),
	}
	slog.InfoContext(ctx, "starting fetch-and-publish cycle", "cycle", rs.CycleID)

	rows, err := s.fetcher.Expenditures(ctx)
	if err != nil {
		return s.finishCycle(ctx, rs, fmt.Errorf("could not fetch the feed: %w", err))
	}
	rs.NumFetched = len(rows)

	if !s.opts.DryRun {
		window := timerange.LastDays(s.opts.WindowDays, time.UTC)
		ingest := func(ctx context.Context, rw kv.ReadWriter) error {
			npruned, err := tracker.Prune(ctx, rw, window)
			if err != nil {
				return err
			}
			rs.NumPruned = npruned
			nnew, err := tracker.Ingest(ctx, rw, rows, rs.StartTime)
			if err != nil {
				return err
			}
			rs.NumNew = nnew
			return nil
		}
		if err := kv.WithReadWriter(ctx, s.db, ingest); err != nil {
			return s.finishCycle(ctx, rs, fmt.Errorf("could not ingest the feed: %w", err))
		}
	}

	posters, err := s.enabledPosters(ctx)
	if err != nil {
		return s.finishCycle(ctx, rs, err)
	}

	popts := &publisher.Options{
		WindowDays:   s.opts.WindowDays,
		MinAmount:    s.opts.MinAmount,
		PostInterval: s.opts.PostInterval,
		DryRun:       s.opts.DryRun,
	}
	engine := publisher.NewEngine(s.db, posters, popts)
	result, err := engine.PublishNew(ctx, rows)
	if result != nil {
		rs.NumPosted = result.NumPosted
		rs.NumFailed = result.NumFailed
		rs.NumSkipped = result.NumSkipped
	}
	if err != nil {
		return s.finishCycle(ctx, rs, err)
	}

	if !s.opts.DryRun {
		if err := s.updateChannelStates(ctx, result, time.Now()); err != nil {
			return s.finishCycle(ctx, rs, err)
		}
	}

	return s.finishCycle(ctx, rs, nil)
}

func (s *Server) nextCycleID(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	last := s.lastCycle
	s.mu.Unlock()
	if last != nil {
		return last.CycleID + 1, nil
	}

	v, err := kvutil.GetDB[gobs.RunState](ctx, s.db, RunStateKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 1, nil
		}
		return 0, fmt.Errorf("could not load the last cycle summary: %w", err)
	}
	return v.CycleID + 1, nil
}

// finishCycle records the cycle summary: in the store when the cycle
// succeeded (and is not a dry-run), in memory always, and on the cycle topic
// for the watcher. Failed cycles are deliberately kept out of the store so
// that a failed fetch leaves it untouched.
func (s *Server) finishCycle(ctx context.Context, rs *gobs.RunState, err error) (*gobs.RunState, error) {
	rs.EndTime = time.Now()
	if err != nil {
		rs.LastError = err.Error()
	}

	if err == nil && !s.opts.DryRun {
		if serr := kvutil.SetDB(ctx, s.db, RunStateKey, rs); serr != nil {
			slog.ErrorContext(ctx, "could not save the cycle summary (ignored)", "cycle", rs.CycleID, "error", serr)
		}
	}

	s.mu.Lock()
	s.lastCycle = rs
	s.mu.Unlock()

	s.cycleTopic.Send(rs)

	slog.InfoContext(ctx, "finished fetch-and-publish cycle", "cycle", rs.CycleID,
		"fetched", rs.NumFetched, "new", rs.NumNew, "posted", rs.NumPosted,
		"failed", rs.NumFailed, "skipped", rs.NumSkipped, "pruned", rs.NumPruned,
		"error", rs.LastError)
	return rs, err
}

func (s *Server) getLastCycle(ctx context.Context) (*gobs.RunState, error) {
	s.mu.Lock()
	last := s.lastCycle
	s.mu.Unlock()
	if last != nil {
		return gobs.Clone(last)
	}

	v, err := kvutil.GetDB[gobs.RunState](ctx, s.db, RunStateKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not load the last cycle summary: %w", err)
	}
	return v, nil
}
