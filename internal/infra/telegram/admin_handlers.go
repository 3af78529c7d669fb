package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"daily_fact_bot/internal/app"
	"daily_fact_bot/internal/domain/ledger"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const historyLimit = 10

// DailyRunner is implemented by *app.DailySendService.
type DailyRunner interface {
	RunDailySend(ctx context.Context, date string, force bool) (*app.DailySendOutcome, error)
}

// RegisterAdminHandlers registers handlers for admin commands.
// A zero adminTelegramID disables them.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, runner DailyRunner, history ledger.Repository, adminTelegramID int64, baseLogger *logrus.Entry) {
	if adminTelegramID == 0 {
		baseLogger.Info("Admin Telegram ID not configured, admin commands disabled")
		return
	}

	b.Handle("/send_today", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/send_today",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}
		handlerLogger.Info("Command received")
		return c.Send(sendTodayReply(ctx, runner, ledger.Today(time.Now()), handlerLogger))
	})

	b.Handle("/history", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/history",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}
		return c.Send(historyReply(ctx, history, handlerLogger))
	})
}

// sendTodayReply runs the daily send without force, so it is a no-op if the
// scheduler already ran today.
func sendTodayReply(ctx context.Context, runner DailyRunner, date string, logCtx *logrus.Entry) string {
	outcome, err := runner.RunDailySend(ctx, date, false)
	if err != nil {
		logCtx.WithError(err).Error("Daily send failed")
		return fmt.Sprintf("Daily send for %s failed: %s", date, err.Error())
	}
	return fmt.Sprintf("%s: %s", date, outcome.Summary())
}

func historyReply(ctx context.Context, history ledger.Repository, logCtx *logrus.Entry) string {
	sent, err := history.ListRecent(ctx, historyLimit)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list send history")
		return fmt.Sprintf("Could not load history: %s", err.Error())
	}
	if len(sent) == 0 {
		return "Nothing has been sent yet."
	}
	var response strings.Builder
	response.WriteString("--- Recent sends ---\n")
	for _, sf := range sent {
		response.WriteString(fmt.Sprintf("%s  fact %d  cycle %d\n", sf.SendDate, sf.FactID, sf.Cycle))
	}
	return response.String()
}
