// internal/app/selector.go
package app

import (
	"context"
	"fmt"
	"sort"

	"daily_fact_bot/internal/domain/fact"
	"daily_fact_bot/internal/domain/ledger"

	"github.com/sirupsen/logrus"
)

// Rand is the random source used to pick a fact. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Selection is the fact chosen for a date and the cycle it was recorded under.
type Selection struct {
	FactID int64
	Cycle  int
}

// Selector picks the fact of the day so that every fact goes out once before
// any fact repeats, and facts added mid-cycle go out first.
type Selector struct {
	catalog fact.Repository
	ledger  ledger.Repository
	rng     Rand
	logger  *logrus.Entry
}

func NewSelector(catalog fact.Repository, l ledger.Repository, rng Rand, logger *logrus.Entry) *Selector {
	return &Selector{
		catalog: catalog,
		ledger:  l,
		rng:     rng,
		logger:  logger.WithField("component", "selector"),
	}
}

// SelectAndRecord chooses a fact for date and writes it to the ledger.
// It returns nil, nil when the catalog is empty. ledger.ErrDuplicateDate from
// the write is returned as is; resolving the race is the caller's job.
func (s *Selector) SelectAndRecord(ctx context.Context, date string) (*Selection, error) {
	ids, err := s.catalog.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fact ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	catalog := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		catalog[id] = struct{}{}
	}

	currentCycle, err := s.ledger.GetCurrentCycle(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current cycle: %w", err)
	}

	neverSent, err := s.ledger.GetFactIDsNeverSent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get never-sent facts: %w", err)
	}
	// New facts go out in the current cycle; they must not trigger a rollover.
	if eligible := intersect(catalog, neverSent); len(eligible) > 0 {
		s.logger.WithFields(logrus.Fields{"date": date, "eligible": len(eligible), "cycle": currentCycle}).
			Debug("Picking from never-sent facts")
		return s.record(ctx, date, s.pick(eligible), currentCycle)
	}

	sentInCycle, err := s.ledger.GetFactIDsSentInCycle(ctx, currentCycle)
	if err != nil {
		return nil, fmt.Errorf("failed to get facts sent in cycle %d: %w", currentCycle, err)
	}
	if eligible := subtract(catalog, sentInCycle); len(eligible) > 0 {
		s.logger.WithFields(logrus.Fields{"date": date, "eligible": len(eligible), "cycle": currentCycle}).
			Debug("Picking from facts not yet sent in cycle")
		return s.record(ctx, date, s.pick(eligible), currentCycle)
	}

	newCycle := currentCycle + 1
	s.logger.WithFields(logrus.Fields{"date": date, "previous_cycle": currentCycle, "cycle": newCycle}).
		Info("Every fact sent in current cycle, starting a new one")
	return s.record(ctx, date, s.pick(ids), newCycle)
}

func (s *Selector) record(ctx context.Context, date string, factID int64, cycle int) (*Selection, error) {
	if err := s.ledger.RecordSend(ctx, factID, date, cycle); err != nil {
		return nil, err
	}
	return &Selection{FactID: factID, Cycle: cycle}, nil
}

// pick chooses uniformly from ids. The slice is sorted first so a seeded
// source gives the same answer for the same set.
func (s *Selector) pick(ids []int64) int64 {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[s.rng.IntN(len(sorted))]
}

func intersect(a, b map[int64]struct{}) []int64 {
	out := make([]int64, 0)
	for id := range b {
		if _, ok := a[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func subtract(a, b map[int64]struct{}) []int64 {
	out := make([]int64, 0)
	for id := range a {
		if _, ok := b[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
