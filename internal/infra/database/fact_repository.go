package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daily_fact_bot/internal/domain/fact"
)

type FactRepository struct {
	db *DB
}

func NewFactRepository(db *DB) *FactRepository {
	return &FactRepository{db: db}
}

func (r *FactRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM facts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing fact ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning fact id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fact ids: %w", err)
	}
	return ids, nil
}

func (r *FactRepository) GetByID(ctx context.Context, id int64) (*fact.Fact, error) {
	query := r.db.rebind(`SELECT id, text, sources, image_path, created_at FROM facts WHERE id = ?`)
	f := &fact.Fact{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Text, &f.Sources, &f.ImagePath, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fact.ErrFactNotFound
		}
		return nil, fmt.Errorf("error getting fact by ID: %w", err)
	}
	return f, nil
}

func (r *FactRepository) Upsert(ctx context.Context, f *fact.Fact) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	query := r.db.rebind(`INSERT INTO facts (id, text, sources, created_at)
               VALUES (?, ?, ?, ?)
               ON CONFLICT (id) DO UPDATE SET text = excluded.text, sources = excluded.sources`)
	if _, err := r.db.ExecContext(ctx, query, f.ID, f.Text, f.Sources, f.CreatedAt); err != nil {
		return fmt.Errorf("error upserting fact %d: %w", f.ID, err)
	}
	return nil
}

func (r *FactRepository) SetImagePath(ctx context.Context, id int64, path string) error {
	query := r.db.rebind(`UPDATE facts SET image_path = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, path, id)
	if err != nil {
		return fmt.Errorf("error setting image path for fact %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected for fact %d: %w", id, err)
	}
	if n == 0 {
		return fact.ErrFactNotFound
	}
	return nil
}

func (r *FactRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting facts: %w", err)
	}
	return n, nil
}
