// Package ledger holds the send history: which fact went out on which
// calendar date, and in which cycle.
package ledger

import (
	"fmt"
	"time"
)

// DateLayout is the format of a send date.
const DateLayout = "2006-01-02"

// SentFact is one ledger row. There is at most one row per SendDate.
type SentFact struct {
	SendDate  string // YYYY-MM-DD
	FactID    int64
	Cycle     int // Starts at 1
	CreatedAt time.Time
}

// ParseDate checks that s is a YYYY-MM-DD calendar date and returns it in
// canonical form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid send date %q: %w", s, err)
	}
	return t.Format(DateLayout), nil
}

// Today returns the current UTC calendar date.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}
