package cli

import (
	"os"
	"os/signal"
	"syscall"

	"daily_fact_bot/internal/infra/metrics"
	"daily_fact_bot/internal/infra/scheduler"
	"daily_fact_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and the Telegram bot until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()
	cfg := opts.Config
	log := logrus.NewEntry(opts.Logger)
	log.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"db_driver":   cfg.DatabaseDriver,
	}).Info("Configuration loaded")

	svc, err := newServices(ctx, opts, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	recorder := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		metricsServer := metrics.NewServer(cfg.MetricsAddr, recorder, log)
		metricsServer.Start()
		defer metricsServer.Shutdown()
	}

	dailyScheduler := scheduler.NewDailySendScheduler(svc.dailySend, recorder, log, cfg.CronSpecDailySend, cfg.CronTimezone)
	if err := dailyScheduler.Start(); err != nil {
		return err
	}
	defer dailyScheduler.Stop()

	if svc.bot != nil {
		telegram.RegisterSubscriberHandlers(ctx, svc.bot, svc.subscriptions, log)
		telegram.RegisterAdminHandlers(ctx, svc.bot, svc.dailySend, svc.ledger, cfg.AdminTelegramID, log)
		go svc.bot.Start()
		defer svc.bot.Stop()
		log.Info("Telegram bot started")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info("Shutting down")
	return nil
}
