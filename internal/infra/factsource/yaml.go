// Package factsource loads the fact catalog from files.
package factsource

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"daily_fact_bot/internal/domain/fact"

	"gopkg.in/yaml.v3"
)

// Entry is one fact in a catalog file:
//
//	- id: 1
//	  text: Octopuses have three hearts.
//	  sources: https://example.org/octopus
//	  image: images/octopus.jpg
type Entry struct {
	ID      int64  `yaml:"id"`
	Text    string `yaml:"text"`
	Sources string `yaml:"sources,omitempty"`
	Image   string `yaml:"image,omitempty"`
}

// LoadYAMLFile reads a catalog file from disk.
func LoadYAMLFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fact file: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}

// LoadYAML parses and validates a catalog: ids must be positive and unique,
// text must be non-empty.
func LoadYAML(r io.Reader) ([]Entry, error) {
	var entries []Entry
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil {
		if err == io.EOF {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to parse fact file: %w", err)
	}

	seen := make(map[int64]struct{}, len(entries))
	for i, e := range entries {
		if e.ID <= 0 {
			return nil, fmt.Errorf("entry %d: id must be positive, got %d", i, e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("entry %d: duplicate id %d", i, e.ID)
		}
		seen[e.ID] = struct{}{}
		if strings.TrimSpace(e.Text) == "" {
			return nil, fmt.Errorf("entry %d (id %d): text is empty", i, e.ID)
		}
	}
	return entries, nil
}

// Import upserts entries into the catalog and attaches images. It returns the
// number of facts written, which is short of len(entries) on error.
func Import(ctx context.Context, repo fact.Repository, entries []Entry) (int, error) {
	for i, e := range entries {
		f := &fact.Fact{
			ID:      e.ID,
			Text:    strings.TrimSpace(e.Text),
			Sources: sql.NullString{String: e.Sources, Valid: e.Sources != ""},
		}
		if err := repo.Upsert(ctx, f); err != nil {
			return i, err
		}
		if e.Image != "" {
			if err := repo.SetImagePath(ctx, e.ID, e.Image); err != nil {
				return i, fmt.Errorf("failed to attach image to fact %d: %w", e.ID, err)
			}
		}
	}
	return len(entries), nil
}
