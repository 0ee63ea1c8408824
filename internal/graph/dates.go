package graph

import (
	"time"
)

// dateLayout accepts months and days with or without zero padding.
const (
	dateLayout  = "1/2/2006"
	labelLayout = "01/02/2006"
)

// ParseDate reads a MM/DD/YYYY date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// FormatDate renders a date back to zero-padded MM/DD/YYYY.
func FormatDate(t time.Time) string {
	return t.UTC().Format(labelLayout)
}

// parseDates fails on the first bad entry; a payload without aligned dates
// is unusable.
func parseDates(in []string) ([]time.Time, error) {
	out := make([]time.Time, len(in))
	for i, s := range in {
		t, err := ParseDate(s)
		if err != nil {
			return nil, &DateParseError{Index: i, Value: s, Err: err}
		}
		out[i] = t
	}
	return out, nil
}

func dateLabels(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = FormatDate(d)
	}
	return out
}
