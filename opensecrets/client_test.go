// Copyright (c) 2026 BVK Chaitanya

package opensecrets

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/bvk/pacwatch/expend"
)

const feedResponse = `{
  "response": {
    "indexp": [
      {"@attributes": {"cmteid": "C00484642", "pacshort": "Senate Leadership Fund", "suppopp": "Opposes", "candname": "Tester, Jon", "district": "MTS1", "amount": "2500000", "note": "Media Buy", "party": "D", "payee": "Main Street Media Group", "date": "2026-08-19", "origin": "FEC", "source": "24A"}},
      {"@attributes": {"cmteid": "C00075820", "pacshort": "NRA Political Victory Fund", "suppopp": "Supports", "candname": "Sheehy, Tim", "district": "MTS1", "amount": "98000.50", "note": "Digital Ads", "party": "R", "payee": "Starboard Strategic", "date": "2026-08-20", "origin": "FEC", "source": "24C"}},
      {"@attributes": {"cmteid": "C00000000", "pacshort": "  ", "suppopp": "Supports", "candname": "Nobody, Joe", "district": "CA05", "amount": "100", "note": "", "party": "D", "payee": "", "date": "2026-08-20", "origin": "FEC", "source": "24C"}}
    ]
  }
}`

func TestParseFeed(t *testing.T) {
	var resp indexpResponse
	if err := json.Unmarshal([]byte(feedResponse), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Response.Indexp) != 3 {
		t.Fatalf("wanted 3 feed items, got %d", len(resp.Response.Indexp))
	}

	var rows []string
	for _, item := range resp.Response.Indexp {
		v, err := expend.Normalize(item.Attributes.sourceRow())
		if err != nil {
			continue
		}
		rows = append(rows, v.PACName)
	}

	// The third row has a blank pac name and must be dropped; feed order is
	// preserved for the rest.
	if len(rows) != 2 {
		t.Fatalf("wanted 2 valid rows, got %d", len(rows))
	}
	if rows[0] != "Senate Leadership Fund" || rows[1] != "NRA Political Victory Fund" {
		t.Fatalf("wanted feed order preserved, got %v", rows)
	}
}

func TestParseFeedFields(t *testing.T) {
	var resp indexpResponse
	if err := json.Unmarshal([]byte(feedResponse), &resp); err != nil {
		t.Fatal(err)
	}
	v, err := expend.Normalize(resp.Response.Indexp[0].Attributes.sourceRow())
	if err != nil {
		t.Fatal(err)
	}
	if v.Direction != expend.Opposes {
		t.Fatalf("wanted %q, got %q", expend.Opposes, v.Direction)
	}
	if v.Amount.String() != "2500000" {
		t.Fatalf("wanted amount 2500000, got %s", v.Amount)
	}
	if v.District != "MTS1" {
		t.Fatalf("wanted district MTS1, got %q", v.District)
	}
	if d := v.ReportDate.Format("2006-01-02"); d != "2026-08-19" {
		t.Fatalf("wanted report date 2026-08-19, got %s", d)
	}
}

var testingKey string

func checkCredentials() bool {
	if testingKey != "" {
		return true
	}
	testingKey = os.Getenv("OPSEC_ACCESS_KEY")
	return testingKey != ""
}

func TestExpendituresLive(t *testing.T) {
	if !checkCredentials() {
		t.Skip("no api key")
		return
	}

	c, err := New(testingKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := c.Expenditures(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) > 50 {
		t.Fatalf("wanted at most 50 rows, got %d", len(rows))
	}
	for _, row := range rows {
		t.Logf("%s %s %s %s", row.ReportDate.Format("2006-01-02"), row.PACName, row.Direction, row.Candidate)
	}
}
