// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bvk/pacwatch/alert"
	"github.com/bvk/pacwatch/ctxutil"
	"github.com/bvk/pacwatch/discord"
	"github.com/bvk/pacwatch/gobs"
	"github.com/bvk/pacwatch/kvutil"
	"github.com/bvk/pacwatch/opensecrets"
	"github.com/bvk/pacwatch/publisher"
	"github.com/bvk/pacwatch/pushover"
	"github.com/bvk/pacwatch/telegram"
	"github.com/bvk/pacwatch/timerange"
	"github.com/bvk/pacwatch/tracker"
	"github.com/bvk/pacwatch/twitter"
	"github.com/bvkgo/kv"
	"github.com/visvasity/topic"
)

const (
	// RunStateKey holds the most recent fetch-and-publish cycle summary.
	RunStateKey = "/state/run"

	// ServerStateKey holds per-channel pause flags and post times.
	ServerStateKey = "/state/server"
)

// Fetcher is the upstream feed surface needed by the fetch-and-publish
// cycle. The opensecrets client implements it.
type Fetcher interface {
	Expenditures(ctx context.Context) ([]*gobs.Expenditure, error)
}

type Server struct {
	closeCtx    context.Context
	closeCancel context.CancelCauseFunc

	cg ctxutil.CloseGroup

	opts Options

	db kv.Database

	fetcher Fetcher

	posters []publisher.Poster

	telegramClient *telegram.Client
	discordClient  *discord.Client
	pushoverClient *pushover.Client

	// cycleTopic carries every cycle summary to the watcher goroutine,
	// which raises operator alerts on failures and evaluates spending
	// alerts on new records.
	cycleTopic *topic.Topic[*gobs.RunState]

	// cycleMu serializes scheduled and manually triggered cycles.
	cycleMu sync.Mutex

	mu sync.Mutex

	startTime time.Time

	nextCycleTime time.Time

	// lastCycle remembers the most recent cycle summary, including failed
	// cycles that are never written to the store.
	lastCycle *gobs.RunState

	alertFreezeDeadlineMap map[string]time.Time
}

func New(secrets *Secrets, db kv.Database, opts *Options) (_ *Server, status error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if err := secrets.Check(); err != nil {
		return nil, err
	}

	fetcher, err := opensecrets.New(secrets.OpenSecrets.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create opensecrets client: %w", err)
	}

	s := &Server{
		opts:                   *opts,
		db:                     db,
		fetcher:                fetcher,
		cycleTopic:             topic.New[*gobs.RunState](),
		startTime:              time.Now(),
		alertFreezeDeadlineMap: make(map[string]time.Time),
	}
	s.closeCtx, s.closeCancel = context.WithCancelCause(context.Background())
	defer func() {
		if status != nil {
			s.Close()
		}
	}()

	if secrets.Twitter != nil {
		client, err := twitter.New(secrets.Twitter, nil)
		if err != nil {
			return nil, fmt.Errorf("could not create twitter client: %w", err)
		}
		s.posters = append(s.posters, twitter.NewPoster(client))
	}

	if secrets.Telegram != nil {
		client, err := telegram.New(s.closeCtx, db, secrets.Telegram)
		if err != nil {
			return nil, fmt.Errorf("could not create telegram client: %w", err)
		}
		s.telegramClient = client
		if len(secrets.Telegram.ChannelID) != 0 {
			p, err := client.Poster()
			if err != nil {
				return nil, err
			}
			s.posters = append(s.posters, p)
		}
	}

	if secrets.Discord != nil {
		client, err := discord.New(s.closeCtx, secrets.Discord)
		if err != nil {
			return nil, fmt.Errorf("could not create discord client: %w", err)
		}
		s.discordClient = client
		s.posters = append(s.posters, client.Poster())
	}

	if secrets.Pushover != nil {
		client, err := pushover.New(secrets.Pushover)
		if err != nil {
			return nil, fmt.Errorf("could not create pushover client: %w", err)
		}
		s.pushoverClient = client
	}

	return s, nil
}

func (s *Server) Close() error {
	s.cg.Close()
	s.closeCancel(os.ErrClosed)
	s.cycleTopic.Close()
	if s.discordClient != nil {
		s.discordClient.Close()
	}
	if s.telegramClient != nil {
		s.telegramClient.Close()
	}
	return nil
}

// Start begins the background tasks: the cycle timer loop, the cycle watcher
// and the telegram command surface.
func (s *Server) Start(ctx context.Context) error {
	if err := s.registerTelegramCommands(ctx); err != nil {
		return err
	}
	s.cg.Go(s.watchCycles)
	s.cg.Go(s.runLoop)
	return nil
}

// Stop halts the background tasks. In-flight cycles are canceled; the store
// only ever carries confirmed publication marks, so a canceled cycle retries
// cleanly on the next run.
func (s *Server) Stop(ctx context.Context) error {
	s.cg.Close()
	return nil
}

func (s *Server) runLoop(ctx context.Context) {
	for ctx.Err() == nil {
		next := time.Now().Add(s.opts.RunInterval)
		s.setNextCycleTime(next)

		if _, err := s.RunCycle(ctx); err != nil {
			if ctx.Err() == nil {
				slog.ErrorContext(ctx, "fetch-and-publish cycle has failed (will retry)", "error", err)
			}
		}

		ctxutil.Sleep(ctx, time.Until(next))
	}
}

func (s *Server) setNextCycleTime(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCycleTime = at
}

func (s *Server) getNextCycleTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextCycleTime
}

func (s *Server) watchCycles(ctx context.Context) {
	receiver, err := topic.Subscribe(s.cycleTopic, 0, false)
	if err != nil {
		slog.ErrorContext(ctx, "could not subscribe to the cycle topic (unexpected)", "error", err)
		return
	}
	defer receiver.Close()

	cycleCh, err := topic.ReceiveCh(receiver)
	if err != nil {
		slog.ErrorContext(ctx, "could not receive from the cycle topic (unexpected)", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case rs, ok := <-cycleCh:
			if !ok {
				return
			}
			if len(rs.LastError) != 0 {
				s.alertOnCycleFailure(ctx, rs)
				continue
			}
			if rs.NumNew > 0 {
				if err := s.evaluateAlerts(ctx, time.Now()); err != nil {
					slog.WarnContext(ctx, "could not evaluate spending alerts (ignored)", "error", err)
				}
			}
		}
	}
}

// alertOnCycleFailure notifies the operator about a failed cycle. Repeats are
// frozen for an hour so that retriggering a broken feed does not flood the
// notification channels.
func (s *Server) alertOnCycleFailure(ctx context.Context, rs *gobs.RunState) {
	now := time.Now()
	key := "alerts/cycle-failure"
	if deadline, ok := s.alertFreezeDeadlineMap[key]; ok {
		if now.Before(deadline) {
			return
		}
		delete(s.alertFreezeDeadlineMap, key)
	}
	s.SendMessage(ctx, now, "Expenditure cycle %d has failed: %s", rs.CycleID, rs.LastError)
	s.alertFreezeDeadlineMap[key] = now.Add(time.Hour)
}

// evaluateAlerts recomputes every spending alert's window total and notifies
// the operator about thresholds crossed since the last evaluation.
func (s *Server) evaluateAlerts(ctx context.Context, at time.Time) error {
	window := timerange.LastDays(s.opts.WindowDays, time.UTC)

	var rows []*gobs.Expenditure
	var alerts []*alert.Alert
	load := func(ctx context.Context, r kv.Reader) error {
		var err error
		if rows, err = tracker.Rows(ctx, r, window); err != nil {
			return err
		}
		if alerts, err = alert.LoadAll(ctx, r); err != nil {
			return err
		}
		return nil
	}
	if err := kv.WithReader(ctx, s.db, load); err != nil {
		return fmt.Errorf("could not load alerts and ledger rows: %w", err)
	}

	for _, a := range alerts {
		total, fired := a.Evaluate(rows, at)
		save := func(ctx context.Context, rw kv.ReadWriter) error {
			return a.Save(ctx, rw)
		}
		if err := kv.WithReadWriter(ctx, s.db, save); err != nil {
			return fmt.Errorf("could not save alert %v: %w", a, err)
		}
		if fired {
			slog.InfoContext(ctx, "spending alert has fired", "alert", a, "total", total)
			s.SendMessage(ctx, at, "%s", a.Notification(total, s.opts.WindowDays))
		}
	}
	return nil
}

// SendMessage sends an out-of-band notification to the operator over every
// configured messenger. Delivery failures are logged and ignored.
func (s *Server) SendMessage(ctx context.Context, at time.Time, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if s.telegramClient == nil && s.pushoverClient == nil {
		slog.InfoContext(ctx, "no messengers are configured", "message", msg)
		return
	}
	if s.telegramClient != nil {
		if err := s.telegramClient.SendMessage(ctx, at, msg); err != nil {
			slog.ErrorContext(ctx, "could not send telegram message (ignored)", "error", err)
		}
	}
	if s.pushoverClient != nil {
		if err := s.pushoverClient.SendMessage(ctx, at, msg); err != nil {
			slog.ErrorContext(ctx, "could not send pushover message (ignored)", "error", err)
		}
	}
}

// enabledPosters returns the configured posters minus the channels paused
// through the server state.
func (s *Server) enabledPosters(ctx context.Context) ([]publisher.Poster, error) {
	state, err := kvutil.GetDB[gobs.ServerState](ctx, s.db, ServerStateKey)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not load server state: %w", err)
		}
		return s.posters, nil
	}
	var enabled []publisher.Poster
	for _, p := range s.posters {
		if cs, ok := state.ChannelMap[p.Name()]; ok && cs.Disabled {
			continue
		}
		enabled = append(enabled, p)
	}
	return enabled, nil
}

func (s *Server) updateChannelStates(ctx context.Context, result *publisher.Result, at time.Time) error {
	update := func(ctx context.Context, rw kv.ReadWriter) error {
		state, err := kvutil.Get[gobs.ServerState](ctx, rw, ServerStateKey)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			state = new(gobs.ServerState)
		}
		if state.ChannelMap == nil {
			state.ChannelMap = make(map[string]*gobs.ServerChannelState)
		}
		for name, cr := range result.ChannelMap {
			if cr.NumPosted == 0 {
				continue
			}
			cs, ok := state.ChannelMap[name]
			if !ok {
				cs = new(gobs.ServerChannelState)
				state.ChannelMap[name] = cs
			}
			cs.LastPostTime = at
		}
		return kvutil.Set(ctx, rw, ServerStateKey, state)
	}
	if err := kv.WithReadWriter(ctx, s.db, update); err != nil {
		return fmt.Errorf("could not update channel states: %w", err)
	}
	return nil
}

// setChannelDisabled pauses or resumes publishing on the named channel.
func (s *Server) setChannelDisabled(ctx context.Context, name string, disabled bool) error {
	update := func(ctx context.Context, rw kv.ReadWriter) error {
		state, err := kvutil.Get[gobs.ServerState](ctx, rw, ServerStateKey)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			state = new(gobs.ServerState)
		}
		if state.ChannelMap == nil {
			state.ChannelMap = make(map[string]*gobs.ServerChannelState)
		}
		cs, ok := state.ChannelMap[name]
		if !ok {
			cs = new(gobs.ServerChannelState)
			state.ChannelMap[name] = cs
		}
		cs.Disabled = disabled
		return kvutil.Set(ctx, rw, ServerStateKey, state)
	}
	return kv.WithReadWriter(ctx, s.db, update)
}
