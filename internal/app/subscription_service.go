package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"daily_fact_bot/internal/domain/subscriber"

	"github.com/google/uuid"
)

// SubscriptionService handles sign-ups and opt-outs.
type SubscriptionService struct {
	subscriberRepo subscriber.Repository
	newToken       func() string
}

func NewSubscriptionService(sr subscriber.Repository) *SubscriptionService {
	return &SubscriptionService{
		subscriberRepo: sr,
		newToken:       func() string { return uuid.NewString() },
	}
}

// Subscribe signs an address up for the daily fact. A previously
// unsubscribed address is reactivated with a fresh unsubscribe token.
func (s *SubscriptionService) Subscribe(ctx context.Context, channel subscriber.Channel, rawAddress string) (*subscriber.Subscriber, error) {
	address, err := NormalizeAddress(channel, rawAddress)
	if err != nil {
		return nil, err
	}

	existing, err := s.subscriberRepo.GetByAddress(ctx, channel, address)
	if err == nil {
		if existing.IsActive {
			return existing, ErrAlreadySubscribed
		}
		existing.IsActive = true
		existing.UnsubscribeToken = s.newToken()
		if err := s.subscriberRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate subscriber: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, subscriber.ErrSubscriberNotFound) {
		return nil, fmt.Errorf("failed to check existing subscriber: %w", err)
	}

	sub := &subscriber.Subscriber{
		Channel:          channel,
		Address:          address,
		UnsubscribeToken: s.newToken(),
		IsActive:         true,
	}
	if err := s.subscriberRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, subscriber.ErrDuplicateAddress) {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("failed to create subscriber: %w", err)
	}
	return sub, nil
}

// Unsubscribe deactivates the subscriber owning token.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, token string) (*subscriber.Subscriber, error) {
	sub, err := s.subscriberRepo.GetByUnsubscribeToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, subscriber.ErrSubscriberNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up unsubscribe token: %w", err)
	}
	return s.deactivate(ctx, sub)
}

// UnsubscribeAddress deactivates a subscriber by channel and address, for
// channels like Telegram where the user talks to us directly.
func (s *SubscriptionService) UnsubscribeAddress(ctx context.Context, channel subscriber.Channel, rawAddress string) (*subscriber.Subscriber, error) {
	address, err := NormalizeAddress(channel, rawAddress)
	if err != nil {
		return nil, err
	}
	sub, err := s.subscriberRepo.GetByAddress(ctx, channel, address)
	if err != nil {
		if errors.Is(err, subscriber.ErrSubscriberNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up subscriber: %w", err)
	}
	return s.deactivate(ctx, sub)
}

func (s *SubscriptionService) deactivate(ctx context.Context, sub *subscriber.Subscriber) (*subscriber.Subscriber, error) {
	if !sub.IsActive {
		return sub, ErrAlreadyUnsubscribed
	}
	sub.IsActive = false
	if err := s.subscriberRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to deactivate subscriber: %w", err)
	}
	return sub, nil
}

// NormalizeAddress validates an address for its channel and returns the
// form it is stored under.
func NormalizeAddress(channel subscriber.Channel, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch channel {
	case subscriber.ChannelEmail:
		parsed, err := mail.ParseAddress(raw)
		if err != nil || parsed.Address != raw {
			return "", fmt.Errorf("%w: %q is not an email address", ErrInvalidAddress, raw)
		}
		return strings.ToLower(parsed.Address), nil
	case subscriber.ChannelSMS:
		var digits strings.Builder
		for i, r := range raw {
			switch {
			case r >= '0' && r <= '9':
				digits.WriteRune(r)
			case r == '+' && i == 0:
				digits.WriteRune(r)
			case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			default:
				return "", fmt.Errorf("%w: %q is not a phone number", ErrInvalidAddress, raw)
			}
		}
		phone := digits.String()
		if n := len(strings.TrimPrefix(phone, "+")); n < 7 || n > 15 {
			return "", fmt.Errorf("%w: %q is not a phone number", ErrInvalidAddress, raw)
		}
		return phone, nil
	case subscriber.ChannelTelegram:
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return "", fmt.Errorf("%w: %q is not a Telegram chat ID", ErrInvalidAddress, raw)
		}
		return raw, nil
	default:
		return "", fmt.Errorf("%w: unknown channel %q", ErrInvalidAddress, channel)
	}
}
