// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/bvk/pacwatch/alert"
	"github.com/bvk/pacwatch/api"
	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/gobs"
	"github.com/bvk/pacwatch/kvutil"
	"github.com/bvk/pacwatch/publisher"
	"github.com/bvk/pacwatch/tracker"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"
	"github.com/visvasity/topic"
)

type fakeFeed struct {
	rows []*gobs.Expenditure
	err  error
}

func (f *fakeFeed) Expenditures(ctx context.Context) ([]*gobs.Expenditure, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakePoster struct {
	name string

	// failSubstr makes posts containing the substring fail.
	failSubstr string

	posts []string
}

func (p *fakePoster) Name() string {
	return p.name
}

func (p *fakePoster) Limit() int {
	return 280
}

func (p *fakePoster) Post(ctx context.Context, text string) error {
	if len(p.failSubstr) != 0 && strings.Contains(text, p.failSubstr) {
		return fmt.Errorf("channel rejected the post")
	}
	p.posts = append(p.posts, text)
	return nil
}

func newTestServer(t *testing.T, db kv.Database, feed Fetcher, posters ...publisher.Poster) *Server {
	t.Helper()
	s := &Server{
		opts: Options{
			RunInterval:  6 * time.Hour,
			WindowDays:   30,
			PostInterval: time.Millisecond,
		},
		db:                     db,
		fetcher:                feed,
		posters:                posters,
		cycleTopic:             topic.New[*gobs.RunState](),
		startTime:              time.Now(),
		alertFreezeDeadlineMap: make(map[string]time.Time),
	}
	s.closeCtx, s.closeCancel = context.WithCancelCause(context.Background())
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func testRow(t *testing.T, pac, direction, candidate string, amount int64) *gobs.Expenditure {
	t.Helper()
	v, err := expend.Normalize(&expend.SourceRow{
		CommitteeID: "C00000001",
		PACName:     pac,
		Direction:   direction,
		Candidate:   candidate,
		District:    "CA12",
		Amount:      decimal.NewFromInt(amount).String(),
		Note:        "media buy",
		Party:       "D",
		Date:        time.Now().UTC().Format("2006-01-02"),
	})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func storeDump(ctx context.Context, t *testing.T, db kv.Database) map[string]string {
	t.Helper()
	dump := make(map[string]string)
	scan := func(ctx context.Context, r kv.Reader) error {
		it, err := r.Scan(ctx)
		if err != nil {
			return err
		}
		defer kv.Close(it)
		for k, v, err := it.Fetch(ctx, false); err == nil; k, v, err = it.Fetch(ctx, true) {
			data, err := io.ReadAll(v)
			if err != nil {
				return err
			}
			dump[k] = string(data)
		}
		if _, _, err := it.Fetch(ctx, false); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
	if err := kv.WithReader(ctx, db, scan); err != nil {
		t.Fatal(err)
	}
	return dump
}

func loadLedgerRow(ctx context.Context, t *testing.T, db kv.Database, row *gobs.Expenditure) *gobs.Expenditure {
	t.Helper()
	v, err := kvutil.GetDB[gobs.Expenditure](ctx, db, path.Join(tracker.Keyspace, expend.ID(row)))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestCycleIdempotence(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	feed := &fakeFeed{
		rows: []*gobs.Expenditure{
			testRow(t, "Alpha PAC", "Supports", "Alpha, Ann", 1000),
			testRow(t, "Beta PAC", "Opposes", "Beta, Bob", 2000),
			testRow(t, "Gamma PAC", "Supports", "Gamma, Gil", 3000),
		},
	}
	poster := &fakePoster{name: "test"}
	s := newTestServer(t, db, feed, poster)

	rs, err := s.RunCycle(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rs.CycleID != 1 {
		t.Fatalf("wanted cycle id 1, got %d", rs.CycleID)
	}
	if rs.NumFetched != 3 || rs.NumNew != 3 || rs.NumPosted != 3 {
		t.Fatalf("wanted 3 fetched, 3 new, 3 posted, got %d/%d/%d", rs.NumFetched, rs.NumNew, rs.NumPosted)
	}
	if len(poster.posts) != 3 {
		t.Fatalf("wanted 3 posts, got %d", len(poster.posts))
	}

	// The same upstream data must publish nothing the second time.
	rs, err = s.RunCycle(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rs.CycleID != 2 {
		t.Fatalf("wanted cycle id 2, got %d", rs.CycleID)
	}
	if rs.NumNew != 0 || rs.NumPosted != 0 || rs.NumFailed != 0 {
		t.Fatalf("wanted a no-op cycle, got new %d posted %d failed %d", rs.NumNew, rs.NumPosted, rs.NumFailed)
	}
	if len(poster.posts) != 3 {
		t.Fatalf("wanted 3 posts after the second cycle, got %d", len(poster.posts))
	}
}

func TestCycleSkipsSeenRows(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	a := testRow(t, "Alpha PAC", "Supports", "Alpha, Ann", 1000)
	b := testRow(t, "Beta PAC", "Opposes", "Beta, Bob", 2000)
	c := testRow(t, "Gamma PAC", "Supports", "Gamma, Gil", 3000)

	mark := func(ctx context.Context, rw kv.ReadWriter) error {
		return tracker.MarkPosted(ctx, rw, []*gobs.Expenditure{b}, "test", time.Now())
	}
	if err := kv.WithReadWriter(ctx, db, mark); err != nil {
		t.Fatal(err)
	}

	feed := &fakeFeed{rows: []*gobs.Expenditure{a, b, c}}
	poster := &fakePoster{name: "test"}
	s := newTestServer(t, db, feed, poster)

	rs, err := s.RunCycle(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rs.NumPosted != 2 {
		t.Fatalf("wanted 2 posts, got %d", rs.NumPosted)
	}
	if len(poster.posts) != 2 {
		t.Fatalf("wanted 2 posts, got %d", len(poster.posts))
	}
	if !strings.Contains(poster.posts[0], "Ann Alpha") {
		t.Fatalf("wanted the first post for Ann Alpha, got %q", poster.posts[0])
	}
	if !strings.Contains(poster.posts[1], "Gil Gamma") {
		t.Fatalf("wanted the second post for Gil Gamma, got %q", poster.posts[1])
	}
}

func TestPublishFailureLeavesRowUnmarked(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	a := testRow(t, "Alpha PAC", "Supports", "Alpha, Ann", 1000)
	b := testRow(t, "Beta PAC", "Opposes", "Beta, Bob", 2000)
	c := testRow(t, "Gamma PAC", "Supports", "Gamma, Gil", 3000)

	feed := &fakeFeed{rows: []*gobs.Expenditure{a, b, c}}
	poster := &fakePoster{name: "test", failSubstr: "Gamma"}
	s := newTestServer(t, db, feed, poster)

	rs, err := s.RunCycle(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rs.NumPosted != 2 || rs.NumFailed != 1 {
		t.Fatalf("wanted 2 posted and 1 failed, got %d/%d", rs.NumPosted, rs.NumFailed)
	}

	for _, row := range []*gobs.Expenditure{a, b} {
		v := loadLedgerRow(ctx, t, db, row)
		if v.PostTimes["test"].IsZero() {
			t.Fatalf("wanted %s marked as posted", expend.ID(row))
		}
	}
	if v := loadLedgerRow(ctx, t, db, c); !v.PostTimes["test"].IsZero() {
		t.Fatalf("wanted the failed row to stay unmarked")
	}

	// The channel recovers; only the failed row is retried.
	poster.failSubstr = ""
	rs, err = s.RunCycle(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rs.NumPosted != 1 {
		t.Fatalf("wanted 1 post on retry, got %d", rs.NumPosted)
	}
	if last := poster.posts[len(poster.posts)-1]; !strings.Contains(last, "Gil Gamma") {
		t.Fatalf("wanted the retried post for Gil Gamma, got %q", last)
	}
}

func TestFetchErrorLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	feed := &fakeFeed{
		rows: []*gobs.Expenditure{
			testRow(t, "Alpha PAC", "Supports", "Alpha, Ann", 1000),
			testRow(t, "Beta PAC", "Opposes", "Beta, Bob", 2000),
		},
	}
	poster := &fakePoster{name: "test"}
	s := newTestServer(t, db, feed, poster)

	if _, err := s.RunCycle(ctx); err != nil {
		t.Fatal(err)
	}
	before := storeDump(ctx, t, db)

	feed.err = fmt.Errorf("feed is down")
	rs, err := s.RunCycle(ctx)
	if err == nil {
		t.Fatalf("wanted a cycle error, got none")
	}
	if rs == nil || len(rs.LastError) == 0 {
		t.Fatalf("wanted the cycle summary to carry the error")
	}

	after := storeDump(ctx, t, db)
	if !maps.Equal(before, after) {
		t.Fatalf("wanted the store unchanged after a fetch error")
	}

	// The next successful cycle records its summary again.
	feed.err = nil
	rs, err = s.RunCycle(ctx)
	if err != nil {
		t.Fatal(err)
	}
	v, err := kvutil.GetDB[gobs.RunState](ctx, db, RunStateKey)
	if err != nil {
		t.Fatal(err)
	}
	if v.CycleID != rs.CycleID || len(v.LastError) != 0 {
		t.Fatalf("wanted cycle %d saved without error, got %d %q", rs.CycleID, v.CycleID, v.LastError)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	feed := &fakeFeed{
		rows: []*gobs.Expenditure{
			testRow(t, "Alpha PAC", "Supports", "Alpha, Ann", 1000),
			testRow(t, "Beta PAC", "Opposes", "Beta, Bob", 2000),
		},
	}
	poster := &fakePoster{name: "test"}
	s := newTestServer(t, db, feed, poster)
	s.opts.DryRun = true

	rs, err := s.RunCycle(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rs.NumFetched != 2 {
		t.Fatalf("wanted 2 fetched, got %d", rs.NumFetched)
	}
	if len(poster.posts) != 0 {
		t.Fatalf("wanted no posts under dry-run, got %d", len(poster.posts))
	}
	if dump := storeDump(ctx, t, db); len(dump) != 0 {
		t.Fatalf("wanted an empty store under dry-run, got %d keys", len(dump))
	}
}

func TestPauseResumeChannel(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	feed := &fakeFeed{
		rows: []*gobs.Expenditure{
			testRow(t, "Alpha PAC", "Supports", "Alpha, Ann", 1000),
			testRow(t, "Beta PAC", "Opposes", "Beta, Bob", 2000),
		},
	}
	twitter := &fakePoster{name: "twitter"}
	telegram := &fakePoster{name: "telegram"}
	s := newTestServer(t, db, feed, twitter, telegram)

	if err := s.setChannelDisabled(ctx, "twitter", true); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RunCycle(ctx); err != nil {
		t.Fatal(err)
	}
	if len(twitter.posts) != 0 {
		t.Fatalf("wanted no posts on the paused channel, got %d", len(twitter.posts))
	}
	if len(telegram.posts) != 2 {
		t.Fatalf("wanted 2 posts on the active channel, got %d", len(telegram.posts))
	}

	// Seen state is per channel, so resuming publishes the backlog.
	if err := s.setChannelDisabled(ctx, "twitter", false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RunCycle(ctx); err != nil {
		t.Fatal(err)
	}
	if len(twitter.posts) != 2 {
		t.Fatalf("wanted 2 posts after resuming, got %d", len(twitter.posts))
	}
	if len(telegram.posts) != 2 {
		t.Fatalf("wanted no new posts on the active channel, got %d", len(telegram.posts))
	}
}

func TestEvaluateAlerts(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	feed := &fakeFeed{
		rows: []*gobs.Expenditure{
			testRow(t, "Alpha PAC", "Supports", "Alpha, Ann", 1000),
		},
	}
	poster := &fakePoster{name: "test"}
	s := newTestServer(t, db, feed, poster)

	resp, err := s.doAlertAdd(ctx, &api.AlertAddRequest{
		Candidate: "alpha",
		Direction: "Supports",
		Threshold: decimal.NewFromInt(1500),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.RunCycle(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.evaluateAlerts(ctx, time.Now()); err != nil {
		t.Fatal(err)
	}

	check := func(wantFired bool, wantTotal int64) {
		t.Helper()
		var a *alert.Alert
		load := func(ctx context.Context, r kv.Reader) error {
			var err error
			a, err = alert.Load(ctx, resp.UID, r)
			return err
		}
		if err := kv.WithReader(ctx, db, load); err != nil {
			t.Fatal(err)
		}
		state, err := a.State()
		if err != nil {
			t.Fatal(err)
		}
		if !state.LastTotal.Equal(decimal.NewFromInt(wantTotal)) {
			t.Fatalf("wanted last total %d, got %s", wantTotal, state.LastTotal)
		}
		if fired := !state.FiredTime.IsZero(); fired != wantFired {
			t.Fatalf("wanted fired=%v, got %v", wantFired, fired)
		}
	}
	check(false, 1000)

	feed.rows = append(feed.rows, testRow(t, "Friends of Alpha", "Supports", "Alpha, Ann", 800))
	if _, err := s.RunCycle(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.evaluateAlerts(ctx, time.Now()); err != nil {
		t.Fatal(err)
	}
	check(true, 1800)
}

func TestStatusHandler(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	feed := &fakeFeed{
		rows: []*gobs.Expenditure{
			testRow(t, "Alpha PAC", "Supports", "Alpha, Ann", 1000),
			testRow(t, "Beta PAC", "Opposes", "Beta, Bob", 2000),
		},
	}
	poster := &fakePoster{name: "test"}
	s := newTestServer(t, db, feed, poster)

	if _, err := s.RunCycle(ctx); err != nil {
		t.Fatal(err)
	}

	resp, err := s.doStatus(ctx, &api.StatusRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.NumTracked != 2 {
		t.Fatalf("wanted 2 tracked records, got %d", resp.NumTracked)
	}
	if resp.LastCycle == nil || resp.LastCycle.CycleID != 1 {
		t.Fatalf("wanted the last cycle summary, got %v", resp.LastCycle)
	}
	if len(resp.Channels) != 1 || resp.Channels[0].Name != "test" {
		t.Fatalf("wanted one channel named test, got %v", resp.Channels)
	}
	if !resp.Channels[0].Enabled || resp.Channels[0].LastPostTime.IsZero() {
		t.Fatalf("wanted an enabled channel with a post time")
	}
}

func TestHandlerMapHTTP(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	feed := &fakeFeed{
		rows: []*gobs.Expenditure{
			testRow(t, "Alpha PAC", "Supports", "Alpha, Ann", 1000),
		},
	}
	poster := &fakePoster{name: "test"}
	s := newTestServer(t, db, feed, poster)

	if _, err := s.RunCycle(ctx); err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	for p, h := range s.HandlerMap() {
		mux.Handle(p, h)
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+api.RecentPath, bytes.NewReader([]byte("{}")))
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("content-type", "application/json")
	hr, err := srv.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer hr.Body.Close()
	if hr.StatusCode != http.StatusOK {
		t.Fatalf("wanted status 200, got %d", hr.StatusCode)
	}
	var recent api.RecentResponse
	if err := json.NewDecoder(hr.Body).Decode(&recent); err != nil {
		t.Fatal(err)
	}
	if len(recent.Rows) != 1 || recent.Rows[0].Row.PACName != "Alpha PAC" {
		t.Fatalf("wanted one Alpha PAC row, got %v", recent.Rows)
	}

	// GET requests are rejected.
	gr, err := srv.Client().Get(srv.URL + api.StatusPath)
	if err != nil {
		t.Fatal(err)
	}
	gr.Body.Close()
	if gr.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("wanted status 405 for GET, got %d", gr.StatusCode)
	}
}
