package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"daily_fact_bot/internal/app"
	"daily_fact_bot/internal/domain/subscriber"
	idb "daily_fact_bot/internal/infra/database"
	"daily_fact_bot/internal/infra/messaging"
	"daily_fact_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// services is everything a command may need, built from config.
type services struct {
	db            *idb.DB
	facts         *idb.FactRepository
	ledger        *idb.SentFactRepository
	subscribers   *idb.SubscriberRepository
	dailySend     *app.DailySendService
	subscriptions *app.SubscriptionService
	bot           *telebot.Bot // nil without TELEGRAM_TOKEN
}

func (s *services) Close() {
	s.db.Close()
}

// newServices connects to the database and wires the app services. When
// poll is true the Telegram bot is created with a long poller so it can
// receive commands; otherwise it only sends.
func newServices(ctx context.Context, opts *RootOptions, poll bool) (*services, error) {
	cfg := opts.Config
	log := logrus.NewEntry(opts.Logger)

	db, err := idb.NewConnection(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	log.WithField("driver", db.Driver()).Debug("Database ready")

	s := &services{
		db:          db,
		facts:       idb.NewFactRepository(db),
		ledger:      idb.NewSentFactRepository(db),
		subscribers: idb.NewSubscriberRepository(db),
	}

	logSender := messaging.NewLogSender(log)
	router := messaging.NewRouter().
		Register(subscriber.ChannelEmail, logSender).
		Register(subscriber.ChannelSMS, logSender).
		Register(subscriber.ChannelTelegram, logSender)

	if cfg.TelegramToken != "" {
		pref := telebot.Settings{
			Token:   cfg.TelegramToken,
			Offline: !poll,
			OnError: func(err error, c telebot.Context) {
				log.WithError(err).Error("Telegram handler error")
			},
		}
		if poll {
			pref.Poller = &telebot.LongPoller{Timeout: 10 * time.Second}
		}
		s.bot, err = telebot.NewBot(pref)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("could not create Telegram bot: %w", err)
		}
		router.Register(subscriber.ChannelTelegram, telegram.NewSender(s.bot))
	} else {
		log.Warn("TELEGRAM_TOKEN not set, Telegram messages are logged only")
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	selector := app.NewSelector(s.facts, s.ledger, rng, log)
	s.dailySend = app.NewDailySendService(
		selector, s.ledger, s.facts, s.subscribers, router,
		app.NewRenderer(cfg.PublicBaseURL), log, cfg.SendTimeout,
	)
	s.subscriptions = app.NewSubscriptionService(s.subscribers)
	return s, nil
}
