// Copyright (c) 2026 BVK Chaitanya

package publisher

import (
	"strings"
	"testing"

	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/gobs"
	"github.com/shopspring/decimal"
)

func testBulletin(t *testing.T, mods ...func(*expend.SourceRow)) *expend.Bulletin {
	t.Helper()
	row := &expend.SourceRow{
		CommitteeID: "C00484642",
		PACName:     "Senate Leadership Fund",
		Direction:   "Opposes",
		Candidate:   "Tester, Jon",
		District:    "MTS1",
		Amount:      "2500000",
		Note:        "Media Buy",
		Party:       "D",
		Payee:       "Main Street Media Group",
		Date:        "2026-08-19",
		Origin:      "FEC",
		Source:      "24A",
	}
	for _, mod := range mods {
		mod(row)
	}
	v, err := expend.Normalize(row)
	if err != nil {
		t.Fatal(err)
	}
	bulletins := expend.Group([]*gobs.Expenditure{v})
	return bulletins[0]
}

func TestCompose(t *testing.T) {
	b := testBulletin(t)
	text, err := Compose(b, decimal.Zero, 30, 280)
	if err != nil {
		t.Fatal(err)
	}
	want := "Senate Leadership Fund spends $2,500,000 on media buy oppose Jon Tester (D-MT)."
	if text != want {
		t.Fatalf("wanted %q, got %q", want, text)
	}
}

func TestComposeSupport(t *testing.T) {
	b := testBulletin(t, func(r *expend.SourceRow) {
		r.Direction = "Supports"
		r.Candidate = "Sheehy, Tim"
		r.Party = "R"
		r.District = "MTS1"
		r.Note = "Digital Ads"
		r.Amount = "98000.50"
	})
	text, err := Compose(b, decimal.Zero, 30, 280)
	if err != nil {
		t.Fatal(err)
	}
	want := "Senate Leadership Fund spends $98,000 on digital ads support Tim Sheehy (R-MT)."
	if text != want {
		t.Fatalf("wanted %q, got %q", want, text)
	}
}

func TestComposeHouseDistrict(t *testing.T) {
	b := testBulletin(t, func(r *expend.SourceRow) {
		r.District = "CA05"
	})
	text, err := Compose(b, decimal.Zero, 30, 280)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(text, "(D-CA05).") {
		t.Fatalf("wanted the house district code kept, got %q", text)
	}
}

func TestComposeCumulative(t *testing.T) {
	b := testBulletin(t)
	cum, err := decimal.NewFromString("3600000")
	if err != nil {
		t.Fatal(err)
	}
	text, err := Compose(b, cum, 30, 280)
	if err != nil {
		t.Fatal(err)
	}
	want := "Senate Leadership Fund spends $2,500,000 on media buy oppose Jon Tester (D-MT)." +
		"\n\nThey have now spent $3,600,000 oppose Tester in the past 30 days."
	if text != want {
		t.Fatalf("wanted %q, got %q", want, text)
	}
}

func TestComposeCumulativeNotLarger(t *testing.T) {
	b := testBulletin(t)
	for _, cum := range []decimal.Decimal{b.Amount, b.Amount.Sub(decimal.New(1, 0)), decimal.Zero} {
		text, err := Compose(b, cum, 30, 280)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(text, "They have now spent") {
			t.Fatalf("wanted no running total for cumulative %s, got %q", cum, text)
		}
	}
}

func TestComposeDefusesLinks(t *testing.T) {
	b := testBulletin(t, func(r *expend.SourceRow) {
		r.PACName = "StopThem.com Action Fund"
	})
	text, err := Compose(b, decimal.Zero, 30, 280)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "StopThem dot com Action Fund spends") {
		t.Fatalf("wanted the domain defused, got %q", text)
	}
}

func TestComposeEmptyNote(t *testing.T) {
	b := testBulletin(t, func(r *expend.SourceRow) {
		r.Note = ""
	})
	text, err := Compose(b, decimal.Zero, 30, 280)
	if err != nil {
		t.Fatal(err)
	}
	want := "Senate Leadership Fund spends $2,500,000 oppose Jon Tester (D-MT)."
	if text != want {
		t.Fatalf("wanted %q, got %q", want, text)
	}
}

func TestComposeDropsNoteOnOverflow(t *testing.T) {
	b := testBulletin(t, func(r *expend.SourceRow) {
		r.Note = strings.Repeat("really very long media buy ", 12)
	})
	text, err := Compose(b, decimal.Zero, 30, 280)
	if err != nil {
		t.Fatal(err)
	}
	want := "Senate Leadership Fund spends $2,500,000 oppose Jon Tester (D-MT)."
	if text != want {
		t.Fatalf("wanted the note clause dropped, got %q", text)
	}
}

func TestComposeTruncates(t *testing.T) {
	b := testBulletin(t, func(r *expend.SourceRow) {
		r.PACName = strings.Repeat("Very Long PAC Name ", 20)
	})
	text, err := Compose(b, decimal.Zero, 30, 280)
	if err != nil {
		t.Fatal(err)
	}
	if n := len([]rune(text)); n != 280 {
		t.Fatalf("wanted exactly 280 characters, got %d", n)
	}
}

func TestComposeErrors(t *testing.T) {
	mods := []func(*expend.SourceRow){
		func(r *expend.SourceRow) { r.Candidate = "Madonna" },
		func(r *expend.SourceRow) { r.District = "CA" },
		func(r *expend.SourceRow) { r.Party = "" },
	}
	for i, mod := range mods {
		b := testBulletin(t, mod)
		if _, err := Compose(b, decimal.Zero, 30, 280); err == nil {
			t.Fatalf("case %d: wanted a compose error", i)
		}
	}
}
