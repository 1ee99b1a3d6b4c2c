// Package notify tell students about changes to their applications and admissions.
// Delivery runs in background and failures are only logged.
package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	"CareerFindr-backend/internal/model"
)

// Message is one email to one recipient
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

// Sender deliver rendered message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier render notification of domain event and hand it to sender
type Notifier struct {
	sender  Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

// New create notifier on top of sender
func New(sender Sender) *Notifier {
	return &Notifier{sender: sender, timeout: 10 * time.Second}
}

// Wait block until every notification in flight is delivered or failed
func (n *Notifier) Wait() {
	n.wg.Wait()
}

type statusData struct {
	Name   string
	Type   string
	Target string
	Status string
	Note   string
}

var (
	statusText = texttemplate.Must(texttemplate.New("status").Parse(
		`Hi {{.Name}},

Your {{.Type}} application for "{{.Target}}" is now {{.Status}}.
{{if .Note}}
Note from reviewer: {{.Note}}
{{end}}
CareerFindr`))
	statusHTML = htmltemplate.Must(htmltemplate.New("status").Parse(
		`<p>Hi {{.Name}},</p>
<p>Your {{.Type}} application for <strong>{{.Target}}</strong> is now <strong>{{.Status}}</strong>.</p>
{{if .Note}}<p>Note from reviewer: {{.Note}}</p>{{end}}`))

	admissionText = texttemplate.Must(texttemplate.New("admission").Parse(
		`Hi {{.Name}},

You have been offered admission to "{{.Target}}".
Sign in to CareerFindr to accept or decline the offer.

CareerFindr`))
	admissionHTML = htmltemplate.Must(htmltemplate.New("admission").Parse(
		`<p>Hi {{.Name}},</p>
<p>You have been offered admission to <strong>{{.Target}}</strong>.</p>
<p>Sign in to CareerFindr to accept or decline the offer.</p>`))
)

func render(text *texttemplate.Template, html *htmltemplate.Template, data any) (string, string, error) {
	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("rendering text: %w", err)
	}
	if err := html.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("rendering html: %w", err)
	}
	return tb.String(), hb.String(), nil
}

// ApplicationStatusChanged tell student their application was reviewed
func (n *Notifier) ApplicationStatusChanged(ctx context.Context, student model.StudentProfile, app model.Application, targetTitle string) {
	data := statusData{
		Name:   displayName(student),
		Type:   app.Type,
		Target: targetTitle,
		Status: app.Status,
		Note:   app.ReviewerNote,
	}
	text, html, err := render(statusText, statusHTML, data)
	if err != nil {
		log.Printf("notify: application %d: %v", app.ID, err)
		return
	}

	n.dispatch(ctx, student.User, Message{
		Subject: fmt.Sprintf("Your application for %s is %s", targetTitle, app.Status),
		Text:    text,
		HTML:    html,
	})
}

// AdmissionOffered tell student an admission offer is waiting for their answer
func (n *Notifier) AdmissionOffered(ctx context.Context, student model.StudentProfile, admission model.Admission, courseTitle string) {
	text, html, err := render(admissionText, admissionHTML, statusData{
		Name:   displayName(student),
		Target: courseTitle,
	})
	if err != nil {
		log.Printf("notify: admission %d: %v", admission.ID, err)
		return
	}

	n.dispatch(ctx, student.User, Message{
		Subject: "Admission offer: " + courseTitle,
		Text:    text,
		HTML:    html,
	})
}

func (n *Notifier) dispatch(ctx context.Context, to model.User, msg Message) {
	if to.Email == nil || strings.TrimSpace(*to.Email) == "" {
		log.Printf("notify: user %s has no email, skip %q", to.ID, msg.Subject)
		return
	}
	msg.ToEmail = *to.Email
	msg.ToName = to.Username

	// request context is cancelled as soon as handler return
	ctx = context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()

		if err := n.sender.Send(ctx, msg); err != nil {
			log.Printf("notify: sending %q to %s: %v", msg.Subject, msg.ToEmail, err)
		}
	}()
}

func displayName(s model.StudentProfile) string {
	if name := s.FullName(); name != "" {
		return name
	}
	return s.User.Username
}
