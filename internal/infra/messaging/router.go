// Package messaging routes rendered facts to the transport for each
// subscriber's channel.
package messaging

import (
	"context"
	"fmt"

	"daily_fact_bot/internal/domain/messaging"
	"daily_fact_bot/internal/domain/subscriber"
)

// Router implements messaging.Sender by dispatching on subscriber channel.
type Router struct {
	transports map[subscriber.Channel]messaging.Sender
}

func NewRouter() *Router {
	return &Router{transports: make(map[subscriber.Channel]messaging.Sender)}
}

// Register sets the transport for channel, replacing any earlier one.
func (r *Router) Register(channel subscriber.Channel, s messaging.Sender) *Router {
	r.transports[channel] = s
	return r
}

func (r *Router) Send(ctx context.Context, to subscriber.Subscriber, msg messaging.Message) error {
	t, ok := r.transports[to.Channel]
	if !ok {
		return fmt.Errorf("no transport registered for channel %q", to.Channel)
	}
	return t.Send(ctx, to, msg)
}
