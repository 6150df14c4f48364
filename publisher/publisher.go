// Copyright (c) 2026 BVK Chaitanya

// Package publisher turns new ledger rows into channel posts: dedup against
// the store, group into bulletins, compose, post, and mark confirmed posts.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/gobs"
	"github.com/bvk/pacwatch/timerange"
	"github.com/bvk/pacwatch/tracker"
	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Poster is one posting channel.
type Poster interface {
	// Name identifies the channel in publish marks and logs.
	Name() string

	// Limit is the channel's message length in characters.
	Limit() int

	Post(ctx context.Context, text string) error
}

type Options struct {
	// WindowDays is the trailing window for cumulative totals.
	WindowDays int

	// MinAmount drops bulletins below the reporting threshold.
	MinAmount decimal.Decimal

	// PostInterval paces successive posts on a channel.
	PostInterval time.Duration

	// DryRun composes and logs without posting or marking.
	DryRun bool
}

func (v *Options) setDefaults() {
	if v.WindowDays == 0 {
		v.WindowDays = 30
	}
	if v.PostInterval == 0 {
		v.PostInterval = 5 * time.Second
	}
}

type Engine struct {
	opts Options

	db kv.Database

	posters []Poster

	limiter *rate.Limiter
}

func NewEngine(db kv.Database, posters []Poster, opts *Options) *Engine {
	if opts == nil {
		opts = &Options{}
	}
	opts.setDefaults()
	return &Engine{
		opts:    *opts,
		db:      db,
		posters: posters,
		limiter: rate.NewLimiter(rate.Every(opts.PostInterval), 1),
	}
}

// ChannelResult summarizes one channel's share of a publishing pass.
type ChannelResult struct {
	NumPosted  int
	NumFailed  int
	NumSkipped int
}

// Result summarizes one publishing pass.
type Result struct {
	NumPosted  int
	NumFailed  int
	NumSkipped int

	// ChannelMap holds per-channel counts keyed by the poster name.
	ChannelMap map[string]*ChannelResult
}

// PublishNew posts bulletins for rows not yet seen on each channel. Rows are
// expected to be ingested already (except under dry-run). A failed post skips
// only its bulletin and channel; the pass continues and the rows stay
// unmarked so the next cycle retries them.
func (e *Engine) PublishNew(ctx context.Context, rows []*gobs.Expenditure) (*Result, error) {
	result := &Result{ChannelMap: make(map[string]*ChannelResult)}
	for _, p := range e.posters {
		cr := new(ChannelResult)
		result.ChannelMap[p.Name()] = cr
		err := e.publishChannel(ctx, p, rows, cr)
		result.NumPosted += cr.NumPosted
		result.NumFailed += cr.NumFailed
		result.NumSkipped += cr.NumSkipped
		if err != nil {
			return result, fmt.Errorf("could not publish on channel %q: %w", p.Name(), err)
		}
	}
	return result, nil
}

func (e *Engine) publishChannel(ctx context.Context, p Poster, rows []*gobs.Expenditure, result *ChannelResult) error {
	var fresh []*gobs.Expenditure
	status := func(ctx context.Context, r kv.Reader) error {
		var err error
		fresh, err = tracker.Filter(ctx, r, rows, p.Name())
		return err
	}
	if err := kv.WithReader(ctx, e.db, status); err != nil {
		return err
	}
	if len(fresh) == 0 {
		return nil
	}

	window := timerange.LastDays(e.opts.WindowDays, time.UTC)
	for _, b := range expend.Group(fresh) {
		if b.Amount.LessThan(e.opts.MinAmount) {
			slog.InfoContext(ctx, "bulletin is below the reporting threshold (ignored)",
				"channel", p.Name(), "pac", b.PACName, "candidate", b.Candidate, "amount", b.Amount)
			if err := e.markSkipped(ctx, b, "below reporting threshold"); err != nil {
				return err
			}
			result.NumSkipped++
			continue
		}

		cumulative, err := e.tabulate(ctx, window, b)
		if err != nil {
			return err
		}

		text, err := Compose(b, cumulative, e.opts.WindowDays, p.Limit())
		if err != nil {
			slog.WarnContext(ctx, "bulletin cannot be composed (ignored)",
				"channel", p.Name(), "pac", b.PACName, "candidate", b.Candidate, "error", err)
			if err := e.markSkipped(ctx, b, "unfit for composing"); err != nil {
				return err
			}
			result.NumSkipped++
			continue
		}

		if e.opts.DryRun {
			slog.InfoContext(ctx, "dry-run", "channel", p.Name(), "text", text)
			continue
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := p.Post(ctx, text); err != nil {
			slog.ErrorContext(ctx, "could not post bulletin (will retry)",
				"channel", p.Name(), "pac", b.PACName, "candidate", b.Candidate, "error", err)
			result.NumFailed++
			continue
		}

		// A post is visible now; losing the mark would repost it next cycle,
		// so a mark failure fails the whole pass.
		mark := func(ctx context.Context, rw kv.ReadWriter) error {
			return tracker.MarkPosted(ctx, rw, b.Rows, p.Name(), time.Now())
		}
		if err := kv.WithReadWriter(ctx, e.db, mark); err != nil {
			return fmt.Errorf("could not mark bulletin as posted: %w", err)
		}
		result.NumPosted++
	}
	return nil
}

func (e *Engine) tabulate(ctx context.Context, window *timerange.Range, b *expend.Bulletin) (decimal.Decimal, error) {
	var total decimal.Decimal
	status := func(ctx context.Context, r kv.Reader) error {
		var err error
		total, err = tracker.Tabulate(ctx, r, window, b.PACName, b.Direction, b.Candidate)
		return err
	}
	if err := kv.WithReader(ctx, e.db, status); err != nil {
		return decimal.Zero, err
	}
	if e.opts.DryRun {
		// Under dry-run the bulletin rows were not ingested; include them so
		// the running total reads the same as a real pass.
		total = total.Add(b.Amount)
	}
	return total, nil
}

func (e *Engine) markSkipped(ctx context.Context, b *expend.Bulletin, reason string) error {
	if e.opts.DryRun {
		return nil
	}
	mark := func(ctx context.Context, rw kv.ReadWriter) error {
		return tracker.MarkSkipped(ctx, rw, b.Rows, reason, time.Now())
	}
	return kv.WithReadWriter(ctx, e.db, mark)
}
