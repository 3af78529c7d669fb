package ledger

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateDate means a row for the date already exists. Concurrent or
	// repeated daily runs are detected through it.
	ErrDuplicateDate = errors.New("a fact has already been recorded for this date")
	ErrSendNotFound  = errors.New("no fact recorded for this date")
)

// Repository is the sent-fact ledger.
type Repository interface {
	// RecordSend inserts a row. Returns ErrDuplicateDate if date is taken.
	RecordSend(ctx context.Context, factID int64, date string, cycle int) error
	// GetSendForDate returns ErrSendNotFound when nothing was recorded.
	GetSendForDate(ctx context.Context, date string) (*SentFact, error)
	// GetCurrentCycle returns the highest recorded cycle, or 1 for an empty ledger.
	GetCurrentCycle(ctx context.Context) (int, error)
	GetFactIDsSentInCycle(ctx context.Context, cycle int) (map[int64]struct{}, error)
	// GetFactIDsNeverSent returns catalog facts with no ledger rows at all.
	GetFactIDsNeverSent(ctx context.Context) (map[int64]struct{}, error)
	// ListRecent returns the newest rows first.
	ListRecent(ctx context.Context, limit int) ([]*SentFact, error)
}
