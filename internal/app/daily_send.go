// internal/app/daily_send.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daily_fact_bot/internal/domain/fact"
	"daily_fact_bot/internal/domain/ledger"
	"daily_fact_bot/internal/domain/messaging"
	"daily_fact_bot/internal/domain/subscriber"

	"github.com/sirupsen/logrus"
)

const defaultSendTimeout = 10 * time.Second

// FactSelector is implemented by *Selector.
type FactSelector interface {
	SelectAndRecord(ctx context.Context, date string) (*Selection, error)
}

// DailySendOutcome summarises one run of the daily send.
type DailySendOutcome struct {
	AlreadySent          bool
	FactID               int64 // 0 when no fact was selected
	Cycle                int   // Cycle of the ledger row; 0 when no fact was selected
	RecipientCount       int
	DeliverySuccessCount int
	DeliveryFailureCount int
	// FactMissing is set when the ledger points at a fact the catalog no
	// longer has. Nothing is delivered in that case.
	FactMissing bool
}

// DailySendService runs the once-a-day delivery. Running it again for the
// same date is a no-op unless force is set.
type DailySendService struct {
	selector    FactSelector
	ledger      ledger.Repository
	catalog     fact.Repository
	subscribers subscriber.Repository
	sender      messaging.Sender
	renderer    *Renderer
	logger      *logrus.Entry
	sendTimeout time.Duration
}

func NewDailySendService(
	sel FactSelector,
	l ledger.Repository,
	catalog fact.Repository,
	subs subscriber.Repository,
	sender messaging.Sender,
	renderer *Renderer,
	logger *logrus.Entry,
	sendTimeout time.Duration,
) *DailySendService {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &DailySendService{
		selector:    sel,
		ledger:      l,
		catalog:     catalog,
		subscribers: subs,
		sender:      sender,
		renderer:    renderer,
		logger:      logger.WithField("component", "daily_send"),
		sendTimeout: sendTimeout,
	}
}

// RunDailySend selects (or reuses) the fact for date and delivers it to every
// active subscriber. Delivery failures are counted, not returned; only
// storage errors are.
func (s *DailySendService) RunDailySend(ctx context.Context, date string, force bool) (*DailySendOutcome, error) {
	date, err := ledger.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	logCtx := s.logger.WithFields(logrus.Fields{"date": date, "force": force})

	existing, err := s.ledger.GetSendForDate(ctx, date)
	if err != nil && !errors.Is(err, ledger.ErrSendNotFound) {
		return nil, fmt.Errorf("failed to look up send for %s: %w", date, err)
	}

	var factID int64
	var cycle int
	if existing != nil {
		if !force {
			logCtx.WithField("fact_id", existing.FactID).Info("Fact already sent for this date, skipping")
			return &DailySendOutcome{AlreadySent: true, FactID: existing.FactID, Cycle: existing.Cycle}, nil
		}
		logCtx.WithField("fact_id", existing.FactID).Warn("Force re-sending fact already recorded for this date")
		factID, cycle = existing.FactID, existing.Cycle
	} else {
		selection, err := s.selector.SelectAndRecord(ctx, date)
		switch {
		case errors.Is(err, ledger.ErrDuplicateDate):
			logCtx.Warn("Another run recorded a fact for this date first, re-reading ledger")
			existing, err = s.ledger.GetSendForDate(ctx, date)
			if err != nil {
				return nil, fmt.Errorf("failed to re-read send for %s after conflict: %w", date, err)
			}
			if !force {
				logCtx.WithField("fact_id", existing.FactID).Info("Fact already sent for this date, skipping")
				return &DailySendOutcome{AlreadySent: true, FactID: existing.FactID, Cycle: existing.Cycle}, nil
			}
			factID, cycle = existing.FactID, existing.Cycle
		case err != nil:
			return nil, fmt.Errorf("failed to select fact for %s: %w", date, err)
		case selection == nil:
			logCtx.Warn("Fact catalog is empty, nothing to send")
			return &DailySendOutcome{}, nil
		default:
			factID, cycle = selection.FactID, selection.Cycle
			logCtx.WithFields(logrus.Fields{"fact_id": factID, "cycle": cycle}).Info("Selected fact of the day")
		}
	}

	outcome := &DailySendOutcome{FactID: factID, Cycle: cycle}
	logCtx = logCtx.WithField("fact_id", factID)

	f, err := s.catalog.GetByID(ctx, factID)
	if err != nil {
		if errors.Is(err, fact.ErrFactNotFound) {
			logCtx.Error("Fact recorded in ledger is missing from the catalog, nothing delivered")
			outcome.FactMissing = true
			return outcome, nil
		}
		return nil, fmt.Errorf("failed to load fact %d: %w", factID, err)
	}

	recipients, err := s.subscribers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active subscribers: %w", err)
	}
	outcome.RecipientCount = len(recipients)
	if len(recipients) == 0 {
		logCtx.Info("No active subscribers")
		return outcome, nil
	}

	for _, r := range recipients {
		if err := s.deliver(ctx, f, *r); err != nil {
			outcome.DeliveryFailureCount++
			logCtx.WithFields(logrus.Fields{
				"subscriber_id": r.ID,
				"channel":       r.Channel,
				"address":       MaskAddress(r.Address),
			}).WithError(err).Warn("Delivery failed")
			continue
		}
		outcome.DeliverySuccessCount++
	}

	logCtx.WithFields(logrus.Fields{
		"recipients": outcome.RecipientCount,
		"succeeded":  outcome.DeliverySuccessCount,
		"failed":     outcome.DeliveryFailureCount,
	}).Info("Daily send finished")
	return outcome, nil
}

// deliver makes a single attempt for one recipient. A panicking transport is
// reported as a failed delivery.
func (s *DailySendService) deliver(ctx context.Context, f *fact.Fact, to subscriber.Subscriber) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sender panicked: %v", p)
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	return s.sender.Send(sendCtx, to, s.renderer.Render(f, to))
}

// Summary is a one-line, human readable description of the outcome.
func (o *DailySendOutcome) Summary() string {
	switch {
	case o.AlreadySent:
		return fmt.Sprintf("fact %d was already sent for this date (cycle %d)", o.FactID, o.Cycle)
	case o.FactID == 0:
		return "no fact sent: the catalog is empty"
	case o.FactMissing:
		return fmt.Sprintf("fact %d is recorded but missing from the catalog, nothing delivered", o.FactID)
	default:
		return fmt.Sprintf("fact %d (cycle %d) delivered to %d of %d subscribers, %d failed",
			o.FactID, o.Cycle, o.DeliverySuccessCount, o.RecipientCount, o.DeliveryFailureCount)
	}
}
