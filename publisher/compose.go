// Copyright (c) 2026 BVK Chaitanya

package publisher

import (
	"fmt"
	"os"
	"strings"

	"github.com/bvk/pacwatch/expend"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Channels render bare domains as links; spelling the dot out keeps PAC names
// like "StopBadGuys.com PAC" from turning into URLs.
var defuser = strings.NewReplacer(
	".com", " dot com",
	".org", " dot org",
	".gov", " dot gov",
	".net", " dot net",
	".edu", " dot edu",
)

func dollars(v decimal.Decimal) string {
	return humanize.Comma(v.Truncate(0).IntPart())
}

// Compose renders a bulletin into posting text:
//
//	{PAC} spends ${amount} on {note} {support|oppose} {First} {Last} ({Party}-{District}).
//
// When the PAC's cumulative spending on the candidate within the trailing
// window exceeds the bulletin amount, a second line reports the running
// total. If the text overflows the channel limit the note clause is dropped,
// and as a last resort the text is truncated at the limit.
func Compose(b *expend.Bulletin, cumulative decimal.Decimal, windowDays, limit int) (string, error) {
	first, last, err := expend.CandidateNames(b.Candidate)
	if err != nil {
		return "", err
	}
	if len(b.District) < 3 {
		return "", fmt.Errorf("unexpected district %q: %w", b.District, os.ErrInvalid)
	}
	if b.Party == "" {
		return "", fmt.Errorf("row has no party: %w", os.ErrInvalid)
	}

	pac := defuser.Replace(b.PACName)
	verb := expend.Verb(b.Direction)
	district := expend.DistrictLabel(b.District)
	race := fmt.Sprintf("(%s-%s)", b.Party, district)

	clause := ""
	if note := strings.ToLower(b.Note); note != "" {
		clause = fmt.Sprintf("on %s ", note)
	}

	body := fmt.Sprintf("%s spends $%s %s%s %s %s %s.",
		pac, dollars(b.Amount), clause, verb, first, last, race)

	tail := ""
	if cumulative.GreaterThan(b.Amount) {
		tail = fmt.Sprintf("\n\nThey have now spent $%s %s %s in the past %d days.",
			dollars(cumulative), verb, last, windowDays)
	}

	text := body + tail
	if overflows(text, limit) && clause != "" {
		short := fmt.Sprintf("%s spends $%s %s %s %s %s.",
			pac, dollars(b.Amount), verb, first, last, race)
		text = short + tail
	}
	if overflows(text, limit) {
		text = string([]rune(text)[:limit])
	}
	return text, nil
}

func overflows(text string, limit int) bool {
	return len([]rune(text)) > limit
}
