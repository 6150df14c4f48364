// Copyright (c) 2026 BVK Chaitanya

package alert

import (
	"context"
	"testing"
	"time"

	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/gobs"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testRow(t *testing.T, pac, direction, candidate, amount string) *gobs.Expenditure {
	t.Helper()
	row := &expend.SourceRow{
		PACName:   pac,
		Direction: direction,
		Candidate: candidate,
		District:  "MTS1",
		Party:     "D",
		Amount:    amount,
		Date:      time.Now().Format("2006-01-02"),
	}
	v, err := expend.Normalize(row)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestAlertChecks(t *testing.T) {
	uid := uuid.New().String()
	threshold := decimal.NewFromInt(1000000)

	if _, err := New(uid, "", "", "", threshold); err == nil {
		t.Fatalf("wanted non-nil error without candidate and pac name")
	}
	if _, err := New(uid, "Tester", "", "Endorses", threshold); err == nil {
		t.Fatalf("wanted non-nil error for invalid direction")
	}
	if _, err := New(uid, "Tester", "", "", decimal.Zero); err == nil {
		t.Fatalf("wanted non-nil error for zero threshold")
	}
	if _, err := New("not-an-uuid", "Tester", "", "", threshold); err == nil {
		t.Fatalf("wanted non-nil error for invalid uid")
	}
	if _, err := New(uid, "Tester", "", expend.Opposes, threshold); err != nil {
		t.Fatal(err)
	}
}

func TestMatches(t *testing.T) {
	uid := uuid.New().String()
	a, err := New(uid, "tester", "Senate Leadership Fund", expend.Opposes, decimal.NewFromInt(100))
	if err != nil {
		t.Fatal(err)
	}

	if v := testRow(t, "Senate Leadership Fund", "Opposes", "Tester, Jon", "500"); !a.Matches(v) {
		t.Fatalf("wanted a match for %v", v)
	}
	if v := testRow(t, "Senate Leadership Fund", "Supports", "Tester, Jon", "500"); a.Matches(v) {
		t.Fatalf("direction mismatch must not match")
	}
	if v := testRow(t, "Club for Growth Action", "Opposes", "Tester, Jon", "500"); a.Matches(v) {
		t.Fatalf("pac name mismatch must not match")
	}
	if v := testRow(t, "Senate Leadership Fund", "Opposes", "Sheehy, Tim", "500"); a.Matches(v) {
		t.Fatalf("candidate mismatch must not match")
	}
}

func TestEvaluateCrossing(t *testing.T) {
	uid := uuid.New().String()
	a, err := New(uid, "Tester", "", "", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()

	rows := []*gobs.Expenditure{
		testRow(t, "Senate Leadership Fund", "Opposes", "Tester, Jon", "600"),
	}
	if total, fired := a.Evaluate(rows, now); fired {
		t.Fatalf("total %s is below the threshold, must not fire", total)
	}

	rows = append(rows, testRow(t, "Club for Growth Action", "Opposes", "Tester, Jon", "700"))
	total, fired := a.Evaluate(rows, now)
	if !fired {
		t.Fatalf("total %s crossed the threshold, must fire", total)
	}
	if want := decimal.NewFromInt(1300); !total.Equal(want) {
		t.Fatalf("wanted total %s, got %s", want, total)
	}

	// Still above the threshold, but no new crossing.
	rows = append(rows, testRow(t, "Club for Growth Action", "Opposes", "Tester, Jon", "50"))
	if _, fired := a.Evaluate(rows, now); fired {
		t.Fatalf("must not fire again without dropping below the threshold")
	}

	// Window slides, the total drops and the alert re-arms.
	if _, fired := a.Evaluate(rows[:1], now); fired {
		t.Fatalf("must not fire when the total drops")
	}
	if _, fired := a.Evaluate(rows, now); !fired {
		t.Fatalf("must fire again after re-arming")
	}
}

func TestSaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	uid1, uid2 := uuid.New().String(), uuid.New().String()
	a1, err := New(uid1, "Tester", "", expend.Opposes, decimal.NewFromInt(1000))
	if err != nil {
		t.Fatal(err)
	}
	a2, err := New(uid2, "", "Club for Growth Action", "", decimal.NewFromInt(2000))
	if err != nil {
		t.Fatal(err)
	}

	save := func(ctx context.Context, rw kv.ReadWriter) error {
		if err := a1.Save(ctx, rw); err != nil {
			return err
		}
		return a2.Save(ctx, rw)
	}
	if err := kv.WithReadWriter(ctx, db, save); err != nil {
		t.Fatal(err)
	}

	var alerts []*Alert
	load := func(ctx context.Context, r kv.Reader) error {
		vs, err := LoadAll(ctx, r)
		alerts = vs
		return err
	}
	if err := kv.WithReader(ctx, db, load); err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 2 {
		t.Fatalf("wanted 2 alerts, got %d", len(alerts))
	}

	if err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return Delete(ctx, rw, uid1)
	}); err != nil {
		t.Fatal(err)
	}
	if err := kv.WithReader(ctx, db, load); err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 || alerts[0].UID() != uid2 {
		t.Fatalf("wanted only alert %s, got %d alerts", uid2, len(alerts))
	}
}

func TestNotification(t *testing.T) {
	uid := uuid.New().String()
	a, err := New(uid, "Tester", "", expend.Opposes, decimal.NewFromInt(1000000))
	if err != nil {
		t.Fatal(err)
	}

	got := a.Notification(decimal.NewFromFloat(1234567.89), 30)
	want := `Spending alert: PACs have spent $1,234,567 opposing "Tester" in the past 30 days, crossing the $1,000,000 threshold.`
	if got != want {
		t.Fatalf("wanted %q, got %q", want, got)
	}
}
