package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daily_fact_bot/internal/domain/subscriber"
)

const subscriberColumns = `id, channel, address, unsubscribe_token, is_active, created_at, updated_at`

type SubscriberRepository struct {
	db *DB
}

func NewSubscriberRepository(db *DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) Create(ctx context.Context, s *subscriber.Subscriber) error {
	now := time.Now().UTC()
	query := r.db.rebind(`INSERT INTO subscribers (channel, address, unsubscribe_token, is_active, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?)
               RETURNING id`)
	err := r.db.QueryRowContext(ctx, query, s.Channel, s.Address, s.UnsubscribeToken, s.IsActive, now, now).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return subscriber.ErrDuplicateAddress
		}
		return fmt.Errorf("error creating subscriber: %w", err)
	}
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

func (r *SubscriberRepository) GetByAddress(ctx context.Context, channel subscriber.Channel, address string) (*subscriber.Subscriber, error) {
	query := r.db.rebind(`SELECT ` + subscriberColumns + ` FROM subscribers WHERE channel = ? AND address = ?`)
	return r.getOne(ctx, query, channel, address)
}

func (r *SubscriberRepository) GetByUnsubscribeToken(ctx context.Context, token string) (*subscriber.Subscriber, error) {
	query := r.db.rebind(`SELECT ` + subscriberColumns + ` FROM subscribers WHERE unsubscribe_token = ?`)
	return r.getOne(ctx, query, token)
}

func (r *SubscriberRepository) Update(ctx context.Context, s *subscriber.Subscriber) error {
	now := time.Now().UTC()
	query := r.db.rebind(`UPDATE subscribers SET is_active = ?, unsubscribe_token = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, s.IsActive, s.UnsubscribeToken, now, s.ID)
	if err != nil {
		return fmt.Errorf("error updating subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected for subscriber: %w", err)
	}
	if n == 0 {
		return subscriber.ErrSubscriberNotFound
	}
	s.UpdatedAt = now
	return nil
}

func (r *SubscriberRepository) ListActive(ctx context.Context) ([]*subscriber.Subscriber, error) {
	query := r.db.rebind(`SELECT ` + subscriberColumns + ` FROM subscribers WHERE is_active = ? ORDER BY id`)
	rows, err := r.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("error listing active subscribers: %w", err)
	}
	defer rows.Close()

	subs := make([]*subscriber.Subscriber, 0)
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning active subscriber: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active subscribers: %w", err)
	}
	return subs, nil
}

func (r *SubscriberRepository) getOne(ctx context.Context, query string, args ...any) (*subscriber.Subscriber, error) {
	s, err := scanSubscriber(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, subscriber.ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("error getting subscriber: %w", err)
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (*subscriber.Subscriber, error) {
	s := &subscriber.Subscriber{}
	err := row.Scan(&s.ID, &s.Channel, &s.Address, &s.UnsubscribeToken, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
