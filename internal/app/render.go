package app

import (
	"fmt"
	"net/url"
	"strings"

	"daily_fact_bot/internal/domain/fact"
	"daily_fact_bot/internal/domain/messaging"
	"daily_fact_bot/internal/domain/subscriber"
)

// Renderer turns a fact into the message a single subscriber receives.
type Renderer struct {
	publicBaseURL string
}

func NewRenderer(publicBaseURL string) *Renderer {
	return &Renderer{publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Render builds the message for one recipient. The unsubscribe line is
// specific to the recipient.
func (r *Renderer) Render(f *fact.Fact, to subscriber.Subscriber) messaging.Message {
	var body strings.Builder
	body.WriteString(strings.TrimSpace(f.Text))
	body.WriteString("\n")
	if f.Sources.Valid && strings.TrimSpace(f.Sources.String) != "" {
		body.WriteString("\nSources: ")
		body.WriteString(strings.TrimSpace(f.Sources.String))
		body.WriteString("\n")
	}
	body.WriteString("\n--\n")
	body.WriteString(r.unsubscribeLine(to))
	body.WriteString("\n")

	msg := messaging.Message{
		Subject: fmt.Sprintf("Fact of the day #%d", f.ID),
		Text:    body.String(),
	}
	if f.ImagePath.Valid {
		msg.ImagePath = f.ImagePath.String
	}
	return msg
}

// UnsubscribeURL is the link an email or SMS subscriber follows to opt out.
func (r *Renderer) UnsubscribeURL(token string) string {
	return r.publicBaseURL + "/unsubscribe?token=" + url.QueryEscape(token)
}

func (r *Renderer) unsubscribeLine(to subscriber.Subscriber) string {
	if to.Channel == subscriber.ChannelTelegram {
		return "Send /stop to unsubscribe."
	}
	return "Unsubscribe: " + r.UnsubscribeURL(to.UnsubscribeToken)
}
