// Copyright (c) 2026 BVK Chaitanya

package publisher

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/gobs"
	"github.com/bvk/pacwatch/tracker"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"
)

type fakePoster struct {
	name string

	posts []string

	failSubstring string
}

func (p *fakePoster) Name() string { return p.name }
func (p *fakePoster) Limit() int   { return 280 }

func (p *fakePoster) Post(ctx context.Context, text string) error {
	if p.failSubstring != "" && strings.Contains(text, p.failSubstring) {
		return fmt.Errorf("post rejected")
	}
	p.posts = append(p.posts, text)
	return nil
}

func testRows(t *testing.T, candidates ...string) []*gobs.Expenditure {
	t.Helper()
	var rows []*gobs.Expenditure
	for i, candidate := range candidates {
		v, err := expend.Normalize(&expend.SourceRow{
			CommitteeID: "C00484642",
			PACName:     "Senate Leadership Fund",
			Direction:   "Opposes",
			Candidate:   candidate,
			District:    "MTS1",
			Amount:      fmt.Sprintf("%d", (i+1)*1000),
			Note:        "Media Buy",
			Party:       "D",
			Payee:       "Main Street Media Group",
			Date:        time.Now().Format("2006-01-02"),
			Origin:      "FEC",
			Source:      "24A",
		})
		if err != nil {
			t.Fatal(err)
		}
		rows = append(rows, v)
	}
	return rows
}

func ingest(ctx context.Context, t *testing.T, db kv.Database, rows []*gobs.Expenditure) {
	t.Helper()
	err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		_, err := tracker.Ingest(ctx, rw, rows, time.Now())
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
}

func testOptions() *Options {
	return &Options{PostInterval: time.Nanosecond}
}

func TestPublishAndIdempotence(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	rows := testRows(t, "Aldrin, Buzz", "Bean, Alan", "Cernan, Gene")
	ingest(ctx, t, db, rows)

	p := &fakePoster{name: "twitter"}
	engine := NewEngine(db, []Poster{p}, testOptions())

	result, err := engine.PublishNew(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if result.NumPosted != 3 || result.NumFailed != 0 {
		t.Fatalf("wanted 3 posts, got %+v", result)
	}
	if len(p.posts) != 3 {
		t.Fatalf("wanted 3 posted texts, got %d", len(p.posts))
	}
	if !strings.Contains(p.posts[0], "Buzz Aldrin") {
		t.Fatalf("wanted source order preserved, got %q first", p.posts[0])
	}

	// A second pass over the same feed data must publish nothing.
	result, err = engine.PublishNew(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if result.NumPosted != 0 {
		t.Fatalf("wanted no posts on the second pass, got %+v", result)
	}
	if len(p.posts) != 3 {
		t.Fatalf("wanted no new posted texts, got %d", len(p.posts))
	}
}

func TestPublishPartialFailure(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	rows := testRows(t, "Aldrin, Buzz", "Bean, Alan", "Cernan, Gene")
	ingest(ctx, t, db, rows)

	p := &fakePoster{name: "twitter", failSubstring: "Cernan"}
	engine := NewEngine(db, []Poster{p}, testOptions())

	result, err := engine.PublishNew(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if result.NumPosted != 2 || result.NumFailed != 1 {
		t.Fatalf("wanted 2 posts and 1 failure, got %+v", result)
	}

	// Only the failed bulletin is retried on the next pass.
	p.failSubstring = ""
	result, err = engine.PublishNew(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if result.NumPosted != 1 {
		t.Fatalf("wanted 1 retried post, got %+v", result)
	}
	if last := p.posts[len(p.posts)-1]; !strings.Contains(last, "Cernan") {
		t.Fatalf("wanted the failed bulletin retried, got %q", last)
	}
}

func TestPublishThreshold(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	rows := testRows(t, "Aldrin, Buzz") // amount 1000
	ingest(ctx, t, db, rows)

	opts := testOptions()
	opts.MinAmount = decimal.New(5000, 0)
	p := &fakePoster{name: "twitter"}
	engine := NewEngine(db, []Poster{p}, opts)

	result, err := engine.PublishNew(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if result.NumSkipped != 1 || result.NumPosted != 0 {
		t.Fatalf("wanted 1 skipped bulletin, got %+v", result)
	}

	// Skip marks are permanent; the row is not offered again.
	result, err = engine.PublishNew(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if result.NumSkipped != 0 || result.NumPosted != 0 {
		t.Fatalf("wanted nothing on the second pass, got %+v", result)
	}
}

func TestPublishComposeFailure(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	rows := testRows(t, "Madonna", "Bean, Alan")
	ingest(ctx, t, db, rows)

	p := &fakePoster{name: "twitter"}
	engine := NewEngine(db, []Poster{p}, testOptions())

	result, err := engine.PublishNew(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if result.NumSkipped != 1 || result.NumPosted != 1 {
		t.Fatalf("wanted 1 skipped and 1 posted, got %+v", result)
	}
}

func TestPublishTwoChannels(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	rows := testRows(t, "Aldrin, Buzz")
	ingest(ctx, t, db, rows)

	good := &fakePoster{name: "telegram"}
	bad := &fakePoster{name: "twitter", failSubstring: "Aldrin"}
	engine := NewEngine(db, []Poster{bad, good}, testOptions())

	result, err := engine.PublishNew(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if result.NumPosted != 1 || result.NumFailed != 1 {
		t.Fatalf("wanted one channel to post and one to fail, got %+v", result)
	}

	// The failed channel retries independently.
	bad.failSubstring = ""
	result, err = engine.PublishNew(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if result.NumPosted != 1 {
		t.Fatalf("wanted the failed channel to retry, got %+v", result)
	}
	if len(good.posts) != 1 || len(bad.posts) != 1 {
		t.Fatalf("wanted one post per channel, got %d and %d", len(good.posts), len(bad.posts))
	}
}

func TestPublishDryRun(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	rows := testRows(t, "Aldrin, Buzz")

	opts := testOptions()
	opts.DryRun = true
	p := &fakePoster{name: "twitter"}
	engine := NewEngine(db, []Poster{p}, opts)

	result, err := engine.PublishNew(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if result.NumPosted != 0 || len(p.posts) != 0 {
		t.Fatalf("wanted no posts under dry-run, got %+v with %d posts", result, len(p.posts))
	}

	// Dry-run must not mark anything: a real pass still posts.
	ingest(ctx, t, db, rows)
	opts.DryRun = false
	engine = NewEngine(db, []Poster{p}, opts)
	result, err = engine.PublishNew(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if result.NumPosted != 1 {
		t.Fatalf("wanted the real pass to post, got %+v", result)
	}
}
