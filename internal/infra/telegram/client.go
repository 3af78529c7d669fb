// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"fmt"
	"strconv"

	"daily_fact_bot/internal/domain/messaging"
	"daily_fact_bot/internal/domain/subscriber"

	"gopkg.in/telebot.v3"
)

// unsubscribeBtn is attached to every fact; its callback is handled in
// RegisterSubscriberHandlers.
var unsubscribeBtn = (&telebot.ReplyMarkup{}).Data("Unsubscribe", "unsubscribe")

// botAPI is the part of *telebot.Bot the adapter needs.
type botAPI interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Sender delivers facts to Telegram subscribers. The subscriber address is
// the chat ID.
type Sender struct {
	bot botAPI
}

func NewSender(b *telebot.Bot) *Sender {
	return &Sender{bot: b}
}

func (s *Sender) Send(ctx context.Context, to subscriber.Subscriber, msg messaging.Message) error {
	chatID, err := strconv.ParseInt(to.Address, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id: %w", err)
	}

	var what interface{} = msg.Text
	if msg.ImagePath != "" {
		what = &telebot.Photo{File: telebot.FromDisk(msg.ImagePath), Caption: msg.Text}
	}

	replyMarkup := &telebot.ReplyMarkup{}
	replyMarkup.Inline(replyMarkup.Row(unsubscribeBtn))
	opts := &telebot.SendOptions{ReplyMarkup: replyMarkup, DisableWebPagePreview: true}

	// telebot has no context support; run the call so the deadline is honoured.
	done := make(chan error, 1)
	go func() {
		_, err := s.bot.Send(telebot.ChatID(chatID), what, opts)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
