package utils

import (
	"fmt"
	"strconv"
	"time"
)

const dateOnly = "2006-01-02"

// ParseDateParam accepts RFC 3339 timestamps or plain YYYY-MM-DD dates and
// returns the instant in UTC. With endOfDay set, a plain date resolves to the
// last millisecond of that UTC day so the bound covers the whole day.
// An empty value yields nil.
func ParseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}

	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected RFC 3339 or YYYY-MM-DD", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}

// ParseNonNegativeInt parses an optional query integer; empty means 0.
func ParseNonNegativeInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid value %q: expected a non-negative integer", raw)
	}
	return n, nil
}
