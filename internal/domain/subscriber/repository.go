package subscriber

import (
	"context"
	"errors"
)

var (
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrDuplicateAddress   = errors.New("subscriber with this channel and address already exists")
)

// Repository defines the operations for persisting subscribers.
type Repository interface {
	Create(ctx context.Context, s *Subscriber) error
	GetByAddress(ctx context.Context, channel Channel, address string) (*Subscriber, error)
	GetByUnsubscribeToken(ctx context.Context, token string) (*Subscriber, error)
	Update(ctx context.Context, s *Subscriber) error // Updates IsActive and UnsubscribeToken
	// ListActive returns active subscribers ordered by ID.
	ListActive(ctx context.Context) ([]*Subscriber, error)
}
