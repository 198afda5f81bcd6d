package service

import (
	"errors"
	"strings"
	"time"
)

var errInvalidTimestamp = errors.New("invalid timestamp")

// timestampLayouts are tried in order. Layouts without an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp reads an ISO-8601 instant and normalises it to UTC.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errInvalidTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errInvalidTimestamp
}

// parseRange parses both bounds of a query window.
func parseRange(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, err := parseTimestamp(rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseTimestamp(rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
