// Copyright (c) 2026 BVK Chaitanya

// Package alert implements operator-defined spending watches evaluated
// against the tracked independent expenditures.
package alert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/gobs"
	"github.com/bvk/pacwatch/kvutil"
	"github.com/bvkgo/kv"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultKeyspace = "/alerts/"

type Alert struct {
	uid string

	state *gobs.AlertState
}

func New(uid, candidate, pacName, direction string, threshold decimal.Decimal) (*Alert, error) {
	a := &Alert{
		uid: uid,
		state: &gobs.AlertState{
			UID:        uid,
			Candidate:  candidate,
			PACName:    pacName,
			Direction:  direction,
			Threshold:  threshold,
			CreateTime: time.Now(),
		},
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	return a, nil
}

func Load(ctx context.Context, uid string, r kv.Reader) (*Alert, error) {
	if _, err := uuid.Parse(uid); err != nil {
		return nil, fmt.Errorf("alert uid %q is not an uuid: %w", uid, err)
	}
	key := path.Join(DefaultKeyspace, uid)
	state, err := kvutil.Get[gobs.AlertState](ctx, r, key)
	if err != nil {
		return nil, err
	}
	a := &Alert{
		uid:   uid,
		state: state,
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Alert) Save(ctx context.Context, rw kv.ReadWriter) error {
	key := path.Join(DefaultKeyspace, a.uid)
	if err := kvutil.Set(ctx, rw, key, a.state); err != nil {
		return fmt.Errorf("could not save alert state: %w", err)
	}
	return nil
}

func Delete(ctx context.Context, rw kv.ReadWriter, uid string) error {
	if _, err := uuid.Parse(uid); err != nil {
		return fmt.Errorf("alert uid %q is not an uuid: %w", uid, err)
	}
	return rw.Delete(ctx, path.Join(DefaultKeyspace, uid))
}

func (a *Alert) check() error {
	if _, err := uuid.Parse(a.uid); err != nil {
		return fmt.Errorf("alert uid %q is not an uuid: %w", a.uid, err)
	}
	if len(a.state.Candidate) == 0 && len(a.state.PACName) == 0 {
		return fmt.Errorf("one of candidate or pac name is required")
	}
	if d := a.state.Direction; len(d) != 0 && d != expend.Supports && d != expend.Opposes {
		return fmt.Errorf("direction %q is invalid", d)
	}
	if !a.state.Threshold.IsPositive() {
		return fmt.Errorf("threshold must be positive")
	}
	return nil
}

func (a *Alert) String() string {
	return "alert:" + a.uid
}

func (a *Alert) UID() string {
	return a.uid
}

func (a *Alert) State() (*gobs.AlertState, error) {
	return gobs.Clone(a.state)
}

// Matches reports whether an expenditure row counts towards the alert total.
// Candidate is matched case-insensitively as a substring, while PACName and
// Direction must match exactly when non-empty.
func (a *Alert) Matches(v *gobs.Expenditure) bool {
	if len(a.state.PACName) != 0 && v.PACName != a.state.PACName {
		return false
	}
	if len(a.state.Direction) != 0 && v.Direction != a.state.Direction {
		return false
	}
	if len(a.state.Candidate) != 0 {
		if !strings.Contains(strings.ToLower(v.Candidate), strings.ToLower(a.state.Candidate)) {
			return false
		}
	}
	return true
}

func (a *Alert) Total(rows []*gobs.Expenditure) decimal.Decimal {
	var sum decimal.Decimal
	for _, v := range rows {
		if a.Matches(v) {
			sum = sum.Add(v.Amount)
		}
	}
	return sum
}

// Evaluate updates the alert with the matching total from the given rows and
// reports whether the total crossed the threshold from below. Callers should
// persist the updated alert with Save.
func (a *Alert) Evaluate(rows []*gobs.Expenditure, at time.Time) (decimal.Decimal, bool) {
	total := a.Total(rows)
	fired := a.state.LastTotal.LessThan(a.state.Threshold) && total.GreaterThanOrEqual(a.state.Threshold)
	a.state.LastTotal = total
	if fired {
		a.state.FiredTime = at
		a.state.FiredTotal = total
	}
	return total, fired
}

// Notification returns the operator message for a fired alert.
func (a *Alert) Notification(total decimal.Decimal, windowDays int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Spending alert: ")
	if len(a.state.PACName) != 0 {
		fmt.Fprintf(&sb, "%s has", a.state.PACName)
	} else {
		fmt.Fprintf(&sb, "PACs have")
	}
	fmt.Fprintf(&sb, " spent $%s", humanize.Comma(total.Truncate(0).IntPart()))
	switch a.state.Direction {
	case expend.Supports:
		fmt.Fprintf(&sb, " supporting")
	case expend.Opposes:
		fmt.Fprintf(&sb, " opposing")
	default:
		fmt.Fprintf(&sb, " for or against")
	}
	if len(a.state.Candidate) != 0 {
		fmt.Fprintf(&sb, " %q", a.state.Candidate)
	} else {
		fmt.Fprintf(&sb, " all candidates")
	}
	fmt.Fprintf(&sb, " in the past %d days, crossing the $%s threshold.",
		windowDays, humanize.Comma(a.state.Threshold.Truncate(0).IntPart()))
	return sb.String()
}

func LoadAll(ctx context.Context, r kv.Reader) ([]*Alert, error) {
	const MinUUID = "00000000-0000-0000-0000-000000000000"
	const MaxUUID = "ffffffff-ffff-ffff-ffff-ffffffffffff"

	begin := path.Join(DefaultKeyspace, MinUUID)
	end := path.Join(DefaultKeyspace, MaxUUID)

	it, err := r.Ascend(ctx, begin, end)
	if err != nil {
		return nil, err
	}
	defer kv.Close(it)

	var alerts []*Alert
	for k, _, err := it.Fetch(ctx, false); err == nil; k, _, err = it.Fetch(ctx, true) {
		uid := strings.TrimPrefix(k, DefaultKeyspace)
		v, err := Load(ctx, uid, r)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, v)
	}

	if _, _, err := it.Fetch(ctx, false); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return alerts, nil
}
