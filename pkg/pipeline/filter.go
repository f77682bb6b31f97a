package pipeline

import (
	"fmt"
	"strings"
	"time"

	"newsbrief/pkg/domain"
)

// kst is the fixed zone used for date-range interpretation; publication
// days are understood as Korean calendar days regardless of source zone.
var kst = time.FixedZone("KST", 9*60*60)

// dayLayout is the yymmdd bound format, e.g. "240115".
const dayLayout = "060102"

// ParseDay parses a yymmdd day bound in KST. Empty input yields the zero
// time and no error; a malformed bound is a configuration error.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	ts, err := time.ParseInLocation(dayLayout, s, kst)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q, expected yymmdd: %w", s, err)
	}
	return ts, nil
}

// ValidateDayRange checks that both day bounds parse and are ordered.
// Callers use it to reject bad bounds before any network work starts.
func ValidateDayRange(startDay, endDay string) error {
	start, err := ParseDay(startDay)
	if err != nil {
		return err
	}
	end, err := ParseDay(endDay)
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("end day %s is before start day %s", endDay, startDay)
	}
	return nil
}

// FilterByDateRange retains items whose publication time falls in the
// inclusive [startDay, endDay] range in KST: start from 00:00:00, end
// through the last nanosecond of its day. Both bounds empty means no
// filtering. Undated items are dropped whenever a range is active, a
// missing date cannot satisfy a day bound.
func FilterByDateRange(items []domain.Item, startDay, endDay string) ([]domain.Item, error) {
	if strings.TrimSpace(startDay) == "" && strings.TrimSpace(endDay) == "" {
		return items, nil
	}

	if err := ValidateDayRange(startDay, endDay); err != nil {
		return nil, err
	}
	start, _ := ParseDay(startDay) // validated above
	end, _ := ParseDay(endDay)
	if !end.IsZero() {
		end = end.Add(24*time.Hour - time.Nanosecond) // inclusive through end of day
	}

	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if it.Published.IsZero() {
			continue
		}
		ts := it.Published.In(kst)
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && ts.After(end) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// FilterByPublishers retains items whose publisher name or link domain is
// in the allow list, compared case-insensitively. An empty list disables
// filtering entirely rather than excluding everything.
func FilterByPublishers(items []domain.Item, allow []string) []domain.Item {
	set := make(map[string]struct{}, len(allow))
	for _, p := range allow {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			set[p] = struct{}{}
		}
	}
	if len(set) == 0 {
		return items
	}

	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if _, ok := set[strings.ToLower(it.Publisher)]; ok {
			out = append(out, it)
			continue
		}
		if _, ok := set[ExtractDomain(it.Link)]; ok {
			out = append(out, it)
		}
	}
	return out
}
