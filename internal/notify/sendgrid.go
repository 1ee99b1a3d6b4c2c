package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridSender deliver message through SendGrid v3 mail API
type SendgridSender struct {
	request rest.Request
	from    *sgmail.Email
}

// NewSendgridSender create sender that use given api key and sender address
func NewSendgridSender(apiKey, fromName, fromEmail string) *SendgridSender {
	return newSendgridSender(apiKey, fromName, fromEmail, sendgridHost)
}

func newSendgridSender(apiKey, fromName, fromEmail, host string) *SendgridSender {
	req := sendgrid.GetRequest(apiKey, sendgridEndpoint, host)
	req.Method = rest.Post
	return &SendgridSender{
		request: req,
		from:    sgmail.NewEmail(fromName, fromEmail),
	}
}

// Send implements Sender
func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))
	m.AddPersonalizations(p)

	m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}

	// client mutate its request body, so each send get its own copy
	client := &sendgrid.Client{Request: s.request}
	resp, err := client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
