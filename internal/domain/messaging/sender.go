package messaging

import (
	"context"

	"daily_fact_bot/internal/domain/subscriber"
)

// Message is the rendered content for one recipient.
type Message struct {
	Subject   string
	Text      string
	ImagePath string // Empty when the fact has no image
}

// Sender delivers a message to one subscriber. A returned error means the
// delivery failed.
type Sender interface {
	Send(ctx context.Context, to subscriber.Subscriber, msg Message) error
}
