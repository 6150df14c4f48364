// Copyright (c) 2026 BVK Chaitanya

package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/gobs"
	"github.com/bvk/pacwatch/timerange"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
)

func testRow(t *testing.T, candidate, amount string, age time.Duration) *gobs.Expenditure {
	t.Helper()
	v, err := expend.Normalize(&expend.SourceRow{
		CommitteeID: "C00484642",
		PACName:     "Senate Leadership Fund",
		Direction:   "Opposes",
		Candidate:   candidate,
		District:    "MTS1",
		Amount:      amount,
		Note:        "Media Buy",
		Party:       "D",
		Payee:       "Main Street Media Group",
		Date:        time.Now().Add(-age).Format("2006-01-02"),
		Origin:      "FEC",
		Source:      "24A",
	})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func ingest(ctx context.Context, t *testing.T, db kv.Database, rows ...*gobs.Expenditure) {
	t.Helper()
	err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		_, err := Ingest(ctx, rw, rows, time.Now())
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
}

func markPosted(ctx context.Context, t *testing.T, db kv.Database, channel string, rows ...*gobs.Expenditure) {
	t.Helper()
	err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return MarkPosted(ctx, rw, rows, channel, time.Now())
	})
	if err != nil {
		t.Fatal(err)
	}
}

func filter(ctx context.Context, t *testing.T, db kv.Database, channel string, rows ...*gobs.Expenditure) []*gobs.Expenditure {
	t.Helper()
	var out []*gobs.Expenditure
	err := kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		var err error
		out, err = Filter(ctx, r, rows, channel)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestFilterOrder(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	a := testRow(t, "Aldrin, Buzz", "100", 24*time.Hour)
	b := testRow(t, "Bean, Alan", "200", 24*time.Hour)
	c := testRow(t, "Cernan, Gene", "300", 24*time.Hour)

	ingest(ctx, t, db, a, b, c)
	markPosted(ctx, t, db, "twitter", b)

	out := filter(ctx, t, db, "twitter", a, b, c)
	if len(out) != 2 {
		t.Fatalf("wanted 2 rows, got %d", len(out))
	}
	if out[0].Candidate != "Aldrin, Buzz" || out[1].Candidate != "Cernan, Gene" {
		t.Fatalf("wanted [A C] in order, got [%s %s]", out[0].Candidate, out[1].Candidate)
	}
}

func TestFilterDuplicates(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	a1 := testRow(t, "Aldrin, Buzz", "100", 24*time.Hour)
	a2 := testRow(t, "Aldrin, Buzz", "100", 24*time.Hour)
	if expend.ID(a1) != expend.ID(a2) {
		t.Fatal("wanted identical ids for identical rows")
	}

	out := filter(ctx, t, db, "twitter", a1, a2)
	if len(out) != 1 {
		t.Fatalf("wanted the first occurrence only, got %d rows", len(out))
	}
}

func TestFilterPerChannel(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	a := testRow(t, "Aldrin, Buzz", "100", 24*time.Hour)
	ingest(ctx, t, db, a)
	markPosted(ctx, t, db, "twitter", a)

	if out := filter(ctx, t, db, "twitter", a); len(out) != 0 {
		t.Fatalf("wanted no rows for twitter, got %d", len(out))
	}
	if out := filter(ctx, t, db, "telegram", a); len(out) != 1 {
		t.Fatalf("wanted the row still unseen for telegram, got %d rows", len(out))
	}
}

func TestFilterSkipped(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	a := testRow(t, "Aldrin, Buzz", "10", 24*time.Hour)
	ingest(ctx, t, db, a)
	err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return MarkSkipped(ctx, rw, []*gobs.Expenditure{a}, "below reporting threshold", time.Now())
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, channel := range []string{"twitter", "telegram"} {
		if out := filter(ctx, t, db, channel, a); len(out) != 0 {
			t.Fatalf("wanted skipped row excluded on %s, got %d rows", channel, len(out))
		}
	}
}

func TestIngestKeepsMarks(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	a := testRow(t, "Aldrin, Buzz", "100", 24*time.Hour)
	ingest(ctx, t, db, a)
	markPosted(ctx, t, db, "twitter", a)

	// Re-ingesting the same feed content must not clear the publish mark.
	ingest(ctx, t, db, a)
	if out := filter(ctx, t, db, "twitter", a); len(out) != 0 {
		t.Fatalf("wanted the mark preserved across ingest, got %d rows", len(out))
	}
}

func TestIngestCounts(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	a := testRow(t, "Aldrin, Buzz", "100", 24*time.Hour)
	b := testRow(t, "Bean, Alan", "200", 24*time.Hour)
	ingest(ctx, t, db, a)

	err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		nnew, err := Ingest(ctx, rw, []*gobs.Expenditure{a, b, b}, time.Now())
		if err != nil {
			return err
		}
		if nnew != 1 {
			t.Fatalf("wanted 1 new row, got %d", nnew)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	fresh := testRow(t, "Aldrin, Buzz", "100", 24*time.Hour)
	stale := testRow(t, "Bean, Alan", "200", 40*24*time.Hour)
	ingest(ctx, t, db, fresh, stale)

	window := timerange.LastDays(30, time.UTC)
	err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		n, err := Prune(ctx, rw, window)
		if err != nil {
			return err
		}
		if n != 1 {
			t.Fatalf("wanted 1 pruned row, got %d", n)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	err = kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		rows, err := Rows(ctx, r, timerange.Lifetime(time.UTC))
		if err != nil {
			return err
		}
		if len(rows) != 1 || rows[0].Candidate != "Aldrin, Buzz" {
			t.Fatalf("wanted only the fresh row to survive, got %d rows", len(rows))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestTabulate(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	a := testRow(t, "Tester, Jon", "1000", 24*time.Hour)
	b := testRow(t, "Tester, Jon", "250", 10*24*time.Hour)
	c := testRow(t, "Brown, Sherrod", "900", 24*time.Hour)
	old := testRow(t, "Tester, Jon", "5000", 45*24*time.Hour)
	ingest(ctx, t, db, a, b, c, old)

	window := timerange.LastDays(30, time.UTC)
	err := kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		total, err := Tabulate(ctx, r, window, a.PACName, a.Direction, "Tester, Jon")
		if err != nil {
			return err
		}
		if total.String() != "1250" {
			t.Fatalf("wanted total 1250, got %s", total)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	a := testRow(t, "Tester, Jon", "1000", 24*time.Hour)
	b := testRow(t, "Tester, Jon", "250", 10*24*time.Hour)
	c := testRow(t, "Brown, Sherrod", "900", 24*time.Hour)
	ingest(ctx, t, db, a, b, c)

	err := kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		summaries, err := Summarize(ctx, r, timerange.LastDays(30, time.UTC))
		if err != nil {
			return err
		}
		if len(summaries) != 2 {
			t.Fatalf("wanted 2 summaries, got %d", len(summaries))
		}
		if summaries[0].Candidate != "Tester, Jon" || summaries[0].Amount.String() != "1250" {
			t.Fatalf("wanted the larger total first, got %s %s",
				summaries[0].Candidate, summaries[0].Amount)
		}
		if summaries[0].NumRows != 2 {
			t.Fatalf("wanted 2 rows in the larger total, got %d", summaries[0].NumRows)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
