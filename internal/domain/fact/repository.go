package fact

import (
	"context"
	"errors"
)

var ErrFactNotFound = errors.New("fact not found")

// Repository is the fact catalog.
type Repository interface {
	// ListIDs returns every fact identifier in the catalog.
	ListIDs(ctx context.Context) ([]int64, error)
	GetByID(ctx context.Context, id int64) (*Fact, error)
	// Upsert inserts the fact or replaces its text and sources when the ID exists.
	// An existing image path is preserved.
	Upsert(ctx context.Context, f *Fact) error
	SetImagePath(ctx context.Context, id int64, path string) error
	Count(ctx context.Context) (int, error)
}
