// Copyright (c) 2026 BVK Chaitanya

package expend

import (
	"sort"

	"github.com/bvk/pacwatch/gobs"
	"github.com/shopspring/decimal"
)

// GroupKey identifies rows that report the same spending item. The feed often
// splits one purchase into multiple rows (e.g. per media market), which would
// otherwise produce near-duplicate bulletins.
type GroupKey struct {
	PACName   string
	Direction string
	Candidate string
	District  string
	Party     string
	Note      string
}

func Key(v *gobs.Expenditure) GroupKey {
	return GroupKey{
		PACName:   v.PACName,
		Direction: v.Direction,
		Candidate: v.Candidate,
		District:  v.District,
		Party:     v.Party,
		Note:      v.Note,
	}
}

// Bulletin is one publishable item: a group of rows sharing a key, with their
// amounts summed.
type Bulletin struct {
	GroupKey

	Amount decimal.Decimal

	// Rows holds the group members in their input order.
	Rows []*gobs.Expenditure
}

// Group merges rows by key, summing amounts. Bulletins come out in the order
// of each group's first occurrence in the input.
func Group(rows []*gobs.Expenditure) []*Bulletin {
	var bulletins []*Bulletin
	bmap := make(map[GroupKey]*Bulletin)
	for _, row := range rows {
		key := Key(row)
		b, ok := bmap[key]
		if !ok {
			b = &Bulletin{GroupKey: key}
			bmap[key] = b
			bulletins = append(bulletins, b)
		}
		b.Amount = b.Amount.Add(row.Amount)
		b.Rows = append(b.Rows, row)
	}
	return bulletins
}

// SortRows orders rows by report date ascending, breaking ties by amount
// descending, the order used for the records listing.
func SortRows(rows []*gobs.Expenditure) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].ReportDate.Equal(rows[j].ReportDate) {
			return rows[i].ReportDate.Before(rows[j].ReportDate)
		}
		return rows[i].Amount.GreaterThan(rows[j].Amount)
	})
}
