package subscriber

import (
	"fmt"
	"time"
)

// Channel identifies how a subscriber receives facts.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelTelegram Channel = "telegram" // Address is the numeric chat ID
)

// ParseChannel validates a channel name.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(s); c {
	case ChannelEmail, ChannelSMS, ChannelTelegram:
		return c, nil
	default:
		return "", fmt.Errorf("unknown channel %q", s)
	}
}

// Subscriber is someone signed up for the daily fact.
type Subscriber struct {
	ID               int64
	Channel          Channel
	Address          string
	UnsubscribeToken string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
