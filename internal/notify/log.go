package notify

import (
	"context"
	"log"

	"CareerFindr-backend/internal/config"
)

// LogSender write message to standard logger instead of delivering it
type LogSender struct{}

// Send implements Sender
func (LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("notify: to=%q <%s> subject=%q\n%s", msg.ToName, msg.ToEmail, msg.Subject, msg.Text)
	return nil
}

// FromConfig pick SendGrid when api key is configured, otherwise log every message
func FromConfig(cfg *config.Config) *Notifier {
	if cfg.SendgridAPIKey == "" {
		log.Println("SENDGRID_API_KEY is not set, notifications will be logged")
		return New(LogSender{})
	}
	return New(NewSendgridSender(cfg.SendgridAPIKey, cfg.MailFromName, cfg.MailFrom))
}
