package usecase

import (
	"strconv"
	"time"
)

// isoLayouts are tried in order for string timestamps that are not epoch
// digits. Layouts without a zone are interpreted as UTC.
var isoLayouts = []struct {
	layout  string
	assumed bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02 15:04:05.999999999", true},
	{"2006-01-02", true},
}

// isoTimestamp normalizes the platform's mixed timestamp encodings to an
// ISO-8601 UTC string. Numbers and digit strings are epoch milliseconds,
// parseable strings are converted to UTC, anything else passes through
// unchanged so the caller never loses the raw value. Nil stays nil.
func isoTimestamp(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return ptr(epochMillisToISO(int64(t)))
	case int:
		return ptr(epochMillisToISO(int64(t)))
	case int64:
		return ptr(epochMillisToISO(t))
	case string:
		if isAllDigits(t) {
			ms, err := strconv.ParseInt(t, 10, 64)
			if err == nil {
				return ptr(epochMillisToISO(ms))
			}
			return ptr(t)
		}
		for _, candidate := range isoLayouts {
			parsed, err := time.Parse(candidate.layout, t)
			if err != nil {
				continue
			}
			if candidate.assumed {
				parsed = parsed.UTC()
			}
			return ptr(parsed.UTC().Format(time.RFC3339Nano))
		}
		return ptr(t)
	default:
		return ptr(asString(t))
	}
}

func epochMillisToISO(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
}

func ptr(s string) *string {
	return &s
}
