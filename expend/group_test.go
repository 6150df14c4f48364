// Copyright (c) 2026 BVK Chaitanya

package expend

import (
	"testing"

	"github.com/bvk/pacwatch/gobs"
)

func mustNormalize(t *testing.T, rows ...*SourceRow) []*gobs.Expenditure {
	t.Helper()
	var out []*gobs.Expenditure
	for _, row := range rows {
		v, err := Normalize(row)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, v)
	}
	return out
}

func TestGroup(t *testing.T) {
	a, b, c := testRow(), testRow(), testRow()
	b.Amount = "250000"
	c.Note = "Canvassing"
	c.Amount = "5000"

	bulletins := Group(mustNormalize(t, a, b, c))
	if len(bulletins) != 2 {
		t.Fatalf("wanted 2 bulletins, got %d", len(bulletins))
	}

	first := bulletins[0]
	if first.Note != "Media Buy" {
		t.Fatalf("wanted the first-seen group first, got note %q", first.Note)
	}
	if want := "1250000"; first.Amount.String() != want {
		t.Fatalf("wanted summed amount %s, got %s", want, first.Amount)
	}
	if len(first.Rows) != 2 {
		t.Fatalf("wanted 2 rows in the first group, got %d", len(first.Rows))
	}

	second := bulletins[1]
	if second.Note != "Canvassing" || second.Amount.String() != "5000" {
		t.Fatalf("wanted the canvassing group second, got note %q amount %s", second.Note, second.Amount)
	}
}

func TestGroupSplitsOnDirection(t *testing.T) {
	a, b := testRow(), testRow()
	b.Direction = "Supports"

	bulletins := Group(mustNormalize(t, a, b))
	if len(bulletins) != 2 {
		t.Fatalf("wanted 2 bulletins for opposite directions, got %d", len(bulletins))
	}
}

func TestSortRows(t *testing.T) {
	a, b, c := testRow(), testRow(), testRow()
	a.Date = "2026-08-21"
	a.Amount = "100"
	b.Date = "2026-08-20"
	b.Amount = "50"
	c.Date = "2026-08-20"
	c.Amount = "900"

	rows := mustNormalize(t, a, b, c)
	SortRows(rows)

	var amounts []string
	for _, row := range rows {
		amounts = append(amounts, row.Amount.String())
	}
	want := []string{"900", "50", "100"}
	for i := range want {
		if amounts[i] != want[i] {
			t.Fatalf("wanted order %v, got %v", want, amounts)
		}
	}
}
