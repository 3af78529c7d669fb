package scheduler

import (
	"context"
	"time"

	"daily_fact_bot/internal/app"
	"daily_fact_bot/internal/domain/ledger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 30 * time.Minute

// DailyRunner is implemented by *app.DailySendService.
type DailyRunner interface {
	RunDailySend(ctx context.Context, date string, force bool) (*app.DailySendOutcome, error)
}

// OutcomeObserver receives the result of every scheduled run.
type OutcomeObserver interface {
	ObserveRun(outcome *app.DailySendOutcome, err error, duration time.Duration)
}

type DailySendScheduler struct {
	cronEngine *cron.Cron
	runner     DailyRunner
	observer   OutcomeObserver
	logger     *logrus.Entry
	cronSpec   string
	location   *time.Location
	now        func() time.Time
}

func NewDailySendScheduler(
	runner DailyRunner,
	observer OutcomeObserver,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 9 * * *" (09:00 daily)
	location *time.Location,
) *DailySendScheduler {
	if location == nil {
		location = time.UTC
	}
	return &DailySendScheduler{
		cronEngine: cron.New(cron.WithLocation(location)),
		runner:     runner,
		observer:   observer,
		logger:     logger.WithField("component", "scheduler"),
		cronSpec:   cronSpec,
		location:   location,
		now:        time.Now,
	}
}

// Start registers the daily job and starts the cron engine.
func (s *DailySendScheduler) Start() error {
	s.logger.WithField("cron_spec", s.cronSpec).Info("Starting daily send scheduler")
	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.RunOnce); err != nil {
		return err
	}
	s.cronEngine.Start()
	return nil
}

// RunOnce performs one scheduled run for today's UTC date. A second trigger
// on the same day is a no-op.
func (s *DailySendScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	date := ledger.Today(s.now())
	logCtx := s.logger.WithField("date", date)
	logCtx.Info("Cron job triggered for daily send")

	start := time.Now()
	outcome, err := s.runner.RunDailySend(ctx, date, false)
	if s.observer != nil {
		s.observer.ObserveRun(outcome, err, time.Since(start))
	}
	if err != nil {
		logCtx.WithError(err).Error("Daily send failed")
		return
	}
	logCtx.Info(outcome.Summary())
}

func (s *DailySendScheduler) Stop() {
	s.logger.Info("Stopping daily send scheduler")
	ctx := s.cronEngine.Stop() // Waits for a running job.
	<-ctx.Done()
	s.logger.Info("Daily send scheduler stopped")
}
