// internal/infra/database/sent_fact_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daily_fact_bot/internal/domain/ledger"
)

type SentFactRepository struct {
	db *DB
}

func NewSentFactRepository(db *DB) *SentFactRepository {
	return &SentFactRepository{db: db}
}

// RecordSend inserts the ledger row for date. The date's UNIQUE constraint is
// the arbiter between concurrent runs: a conflicting insert affects no rows
// and is reported as ledger.ErrDuplicateDate.
func (r *SentFactRepository) RecordSend(ctx context.Context, factID int64, date string, cycle int) error {
	query := r.db.rebind(`INSERT INTO sent_facts (send_date, fact_id, cycle, created_at)
               VALUES (?, ?, ?, ?)
               ON CONFLICT (send_date) DO NOTHING`)
	res, err := r.db.ExecContext(ctx, query, date, factID, cycle, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.ErrDuplicateDate
		}
		return fmt.Errorf("error recording sent fact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected for sent fact: %w", err)
	}
	if n == 0 {
		return ledger.ErrDuplicateDate
	}
	return nil
}

func (r *SentFactRepository) GetSendForDate(ctx context.Context, date string) (*ledger.SentFact, error) {
	query := r.db.rebind(`SELECT send_date, fact_id, cycle, created_at FROM sent_facts WHERE send_date = ?`)
	sf := ledger.SentFact{}
	err := r.db.QueryRowContext(ctx, query, date).Scan(&sf.SendDate, &sf.FactID, &sf.Cycle, &sf.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrSendNotFound
		}
		return nil, fmt.Errorf("error getting sent fact by date: %w", err)
	}
	return &sf, nil
}

func (r *SentFactRepository) GetCurrentCycle(ctx context.Context) (int, error) {
	var cycle int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(cycle), 1) FROM sent_facts`).Scan(&cycle)
	if err != nil {
		return 0, fmt.Errorf("error getting current cycle: %w", err)
	}
	return cycle, nil
}

func (r *SentFactRepository) GetFactIDsSentInCycle(ctx context.Context, cycle int) (map[int64]struct{}, error) {
	query := r.db.rebind(`SELECT DISTINCT fact_id FROM sent_facts WHERE cycle = ?`)
	rows, err := r.db.QueryContext(ctx, query, cycle)
	if err != nil {
		return nil, fmt.Errorf("error querying facts sent in cycle: %w", err)
	}
	defer rows.Close()
	return scanIDSet(rows)
}

func (r *SentFactRepository) GetFactIDsNeverSent(ctx context.Context) (map[int64]struct{}, error) {
	query := `SELECT f.id FROM facts f
               WHERE NOT EXISTS (SELECT 1 FROM sent_facts s WHERE s.fact_id = f.id)`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying never-sent facts: %w", err)
	}
	defer rows.Close()
	return scanIDSet(rows)
}

func (r *SentFactRepository) ListRecent(ctx context.Context, limit int) ([]*ledger.SentFact, error) {
	query := r.db.rebind(`SELECT send_date, fact_id, cycle, created_at FROM sent_facts
               ORDER BY send_date DESC LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing recent sent facts: %w", err)
	}
	defer rows.Close()

	sent := make([]*ledger.SentFact, 0)
	for rows.Next() {
		sf := &ledger.SentFact{}
		if err := rows.Scan(&sf.SendDate, &sf.FactID, &sf.Cycle, &sf.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning sent fact row: %w", err)
		}
		sent = append(sent, sf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sent fact rows: %w", err)
	}
	return sent, nil
}

// Helper to scan a single id column into a set
func scanIDSet(rows *sql.Rows) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning id row: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating id rows: %w", err)
	}
	return ids, nil
}
