// Copyright (c) 2025 BVK Chaitanya

package timerange

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func Lifetime(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	return &Range{
		Begin: time.Date(2000, 9, 24, 0, 0, 0, 0, zone),
		End:   time.Date(2100, 9, 24, 0, 0, 0, 0, zone),
	}
}

func Today(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	beg := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, zone)
	return &Range{
		Begin: beg,
		End:   beg.Add(24 * time.Hour),
	}
}

func ThisWeek(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, zone)
	begin := today.AddDate(0, 0, -int(now.Weekday()))
	end := begin.AddDate(0, 0, 7)
	return &Range{Begin: begin, End: end}
}

func ThisMonth(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	year, month := now.Year(), now.Month()
	begin := time.Date(year, month, 1, 0, 0, 0, 0, zone)
	end := begin.AddDate(0, 1, 0)
	return &Range{Begin: begin, End: end}
}

func ThisYear(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	begin := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, zone)
	return &Range{Begin: begin, End: begin.AddDate(1, 0, 0)}
}

// LastDays returns the trailing n-day window ending now. The range end is
// left open so that records reported after the call still fall inside.
func LastDays(n int, zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	return &Range{Begin: now.AddDate(0, 0, -n)}
}

// ParseWindow resolves a command-line window selector. Valid selectors are
// "today", "week", "month", "year", "all" and day counts of the form "30d".
func ParseWindow(s string, zone *time.Location) (*Range, error) {
	switch strings.ToLower(s) {
	case "today":
		return Today(zone), nil
	case "week":
		return ThisWeek(zone), nil
	case "month":
		return ThisMonth(zone), nil
	case "year":
		return ThisYear(zone), nil
	case "all":
		return Lifetime(zone), nil
	}
	if v, ok := strings.CutSuffix(strings.ToLower(s), "d"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid day count in window %q", s)
		}
		return LastDays(n, zone), nil
	}
	return nil, fmt.Errorf("unsupported window %q", s)
}
