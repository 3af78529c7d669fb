// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"errors"
	"strconv"

	"daily_fact_bot/internal/app"
	"daily_fact_bot/internal/domain/subscriber"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const helpText = "I send one fact a day.\n\n" +
	"/start - subscribe\n" +
	"/stop - unsubscribe\n" +
	"/help - show this message"

// RegisterSubscriberHandlers wires /start, /stop, /help and the inline
// unsubscribe button.
func RegisterSubscriberHandlers(ctx context.Context, b *telebot.Bot, subs *app.SubscriptionService, baseLogger *logrus.Entry) {
	logger := baseLogger.WithField("handler_group", "subscriber")

	b.Handle("/start", func(c telebot.Context) error {
		return c.Send(startReply(ctx, subs, c.Chat().ID, logger.WithField("command", "/start")))
	})

	b.Handle("/stop", func(c telebot.Context) error {
		return c.Send(stopReply(ctx, subs, c.Chat().ID, logger.WithField("command", "/stop")))
	})

	b.Handle("/help", func(c telebot.Context) error {
		return c.Send(helpText)
	})

	b.Handle(&unsubscribeBtn, func(c telebot.Context) error {
		reply := stopReply(ctx, subs, c.Chat().ID, logger.WithField("command", "unsubscribe_button"))
		if err := c.Respond(&telebot.CallbackResponse{Text: "Done"}); err != nil {
			logger.WithError(err).Warn("Failed to answer callback")
		}
		return c.Send(reply)
	})
}

type subscriptionHandler interface {
	Subscribe(ctx context.Context, channel subscriber.Channel, address string) (*subscriber.Subscriber, error)
	UnsubscribeAddress(ctx context.Context, channel subscriber.Channel, address string) (*subscriber.Subscriber, error)
}

func startReply(ctx context.Context, subs subscriptionHandler, chatID int64, logCtx *logrus.Entry) string {
	logCtx = logCtx.WithField("chat_id", chatID)
	_, err := subs.Subscribe(ctx, subscriber.ChannelTelegram, strconv.FormatInt(chatID, 10))
	switch {
	case err == nil:
		logCtx.Info("Chat subscribed")
		return "You are subscribed. Your first fact arrives with the next daily send.\n\n" + helpText
	case errors.Is(err, app.ErrAlreadySubscribed):
		return "You are already subscribed.\n\n" + helpText
	default:
		logCtx.WithError(err).Error("Failed to subscribe chat")
		return "Something went wrong, please try again later."
	}
}

func stopReply(ctx context.Context, subs subscriptionHandler, chatID int64, logCtx *logrus.Entry) string {
	logCtx = logCtx.WithField("chat_id", chatID)
	_, err := subs.UnsubscribeAddress(ctx, subscriber.ChannelTelegram, strconv.FormatInt(chatID, 10))
	switch {
	case err == nil:
		logCtx.Info("Chat unsubscribed")
		return "You are unsubscribed. Send /start to subscribe again."
	case errors.Is(err, app.ErrAlreadyUnsubscribed), errors.Is(err, subscriber.ErrSubscriberNotFound):
		return "You are not subscribed. Send /start to subscribe."
	default:
		logCtx.WithError(err).Error("Failed to unsubscribe chat")
		return "Something went wrong, please try again later."
	}
}
