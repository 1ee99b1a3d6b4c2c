package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"CareerFindr-backend/internal/config"
	"CareerFindr-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSender struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (r *recordSender) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func testStudent(email string) model.StudentProfile {
	s := model.StudentProfile{
		User: model.User{Username: "lerato"},
		EditableStudentInfo: model.EditableStudentInfo{
			FirstName: "Lerato",
			LastName:  "Mokoena",
		},
	}
	if email != "" {
		s.User.Email = &email
	}
	return s
}

func TestApplicationStatusChanged(t *testing.T) {
	rec := &recordSender{}
	n := New(rec)

	app := model.Application{
		ID:           4,
		Type:         model.ApplicationTypeCourse,
		Status:       model.ApplicationStatusRejected,
		ReviewerNote: "Seats are full",
	}
	n.ApplicationStatusChanged(context.Background(), testStudent("lerato@example.com"), app, "BSc Computer Science")
	n.Wait()

	require.Len(t, rec.msgs, 1)
	msg := rec.msgs[0]
	assert.Equal(t, "lerato@example.com", msg.ToEmail)
	assert.Equal(t, "Your application for BSc Computer Science is rejected", msg.Subject)
	assert.Contains(t, msg.Text, "Hi Lerato Mokoena")
	assert.Contains(t, msg.Text, "Note from reviewer: Seats are full")
	assert.Contains(t, msg.HTML, "<strong>BSc Computer Science</strong>")
}

func TestApplicationStatusChanged_EscapeHTML(t *testing.T) {
	rec := &recordSender{}
	n := New(rec)

	app := model.Application{Type: model.ApplicationTypeJob, Status: model.ApplicationStatusAccepted, ReviewerNote: "<b>see you</b>"}
	n.ApplicationStatusChanged(context.Background(), testStudent("lerato@example.com"), app, "Intern")
	n.Wait()

	require.Len(t, rec.msgs, 1)
	assert.NotContains(t, rec.msgs[0].HTML, "<b>see you</b>")
	assert.Contains(t, rec.msgs[0].Text, "<b>see you</b>")
}

func TestAdmissionOffered(t *testing.T) {
	rec := &recordSender{}
	n := New(rec)

	n.AdmissionOffered(context.Background(), testStudent("lerato@example.com"), model.Admission{ID: 1}, "BSc Computer Science")
	n.Wait()

	require.Len(t, rec.msgs, 1)
	assert.Equal(t, "Admission offer: BSc Computer Science", rec.msgs[0].Subject)
	assert.Contains(t, rec.msgs[0].Text, "accept or decline")
}

func TestNotify_NoEmail(t *testing.T) {
	rec := &recordSender{}
	n := New(rec)

	n.AdmissionOffered(context.Background(), testStudent(""), model.Admission{}, "Course")
	n.Wait()

	assert.Empty(t, rec.msgs)
}

func TestNotify_SenderErrorIsSwallowed(t *testing.T) {
	rec := &recordSender{err: errors.New("smtp down")}
	n := New(rec)

	assert.NotPanics(t, func() {
		n.AdmissionOffered(context.Background(), testStudent("a@b.c"), model.Admission{}, "Course")
		n.Wait()
	})
	assert.Len(t, rec.msgs, 1)
}

func TestNotify_CancelledRequestContext(t *testing.T) {
	var got context.Context
	done := make(chan struct{})
	sender := senderFunc(func(ctx context.Context, _ Message) error {
		got = ctx
		close(done)
		return nil
	})
	n := New(sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.AdmissionOffered(ctx, testStudent("a@b.c"), model.Admission{}, "Course")
	<-done
	n.Wait()

	assert.NotErrorIs(t, got.Err(), context.Canceled)
}

type senderFunc func(context.Context, Message) error

func (f senderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

func TestSendgridSender_Send(t *testing.T) {
	var body map[string]interface{}
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, sendgridEndpoint, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := newSendgridSender("sg-key", "CareerFindr", "noreply@careerfindr.local", srv.URL)
	err := s.Send(context.Background(), Message{
		ToName:  "lerato",
		ToEmail: "lerato@example.com",
		Subject: "hello",
		Text:    "plain",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sg-key", auth)
	assert.Equal(t, "hello", body["subject"])
	from := body["from"].(map[string]interface{})
	assert.Equal(t, "noreply@careerfindr.local", from["email"])
	assert.Len(t, body["content"], 2)
}

func TestSendgridSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	s := newSendgridSender("wrong", "CareerFindr", "noreply@careerfindr.local", srv.URL)
	err := s.Send(context.Background(), Message{ToEmail: "a@b.c", Subject: "x", Text: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFromConfig(t *testing.T) {
	n := FromConfig(&config.Config{})
	assert.IsType(t, LogSender{}, n.sender)

	n = FromConfig(&config.Config{SendgridAPIKey: "k", MailFrom: "a@b.c", MailFromName: "x"})
	assert.IsType(t, &SendgridSender{}, n.sender)
}
