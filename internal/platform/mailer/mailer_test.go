package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	to, subject, text, html string
	err                     error
}

func (c *captureSender) Send(_ context.Context, toEmail, _, subject, text, html string) (string, error) {
	c.to, c.subject, c.text, c.html = toEmail, subject, text, html
	return "msg-1", c.err
}

func confirmation() BookingConfirmation {
	return BookingConfirmation{
		BookingID:   "b1",
		Email:       "grace@example.com",
		Date:        "2025-01-06T00:00:00.000Z",
		Time:        "14:00",
		Timezone:    "Asia/Kolkata",
		MeetingLink: "https://meet.mentorhood.com/abc",
		Session: domain.SessionSnapshot{
			ID:       "s1",
			Title:    "Resume <review>",
			Duration: "30 min",
			Tag:      "one-time",
			Mentor:   domain.MentorProfile{Name: "Ada", Role: "Staff Engineer", Company: "Analytical"},
		},
	}
}

func TestSendBookingConfirmation(t *testing.T) {
	sender := &captureSender{}
	m := NewConfirmations(sender, "https://app.mentorhood.com/")

	require.NoError(t, m.SendBookingConfirmation(context.Background(), confirmation()))

	assert.Equal(t, "grace@example.com", sender.to)
	assert.Equal(t, "Booking Confirmation - Resume <review>", sender.subject)
	assert.Contains(t, sender.text, "Date: January 06, 2025")
	assert.Contains(t, sender.text, "Time: 14:00 (Asia/Kolkata)")
	assert.Contains(t, sender.text, "Staff Engineer at Analytical")
	assert.Contains(t, sender.text, "https://app.mentorhood.com/sessions/s1")
	assert.Contains(t, sender.html, "Resume &lt;review&gt;")
	assert.Contains(t, sender.html, `href="https://meet.mentorhood.com/abc"`)
}

func TestRenderDefaults(t *testing.T) {
	m := NewConfirmations(&captureSender{}, "http://localhost:3000")
	c := confirmation()
	c.Session = domain.SessionSnapshot{}
	c.Date = "not a date"

	subject, text, _, err := m.Render(c)
	require.NoError(t, err)
	assert.Equal(t, "Booking Confirmation - AMA Session", subject)
	assert.Contains(t, text, "Date: not a date")
	assert.Contains(t, text, "Duration: 60 minutes")
	assert.Contains(t, text, "with Mentor")
}

func TestSendErrorsWrap(t *testing.T) {
	boom := errors.New("relay refused")
	m := NewConfirmations(&captureSender{err: boom}, "")
	err := m.SendBookingConfirmation(context.Background(), confirmation())
	assert.ErrorIs(t, err, boom)
}

func TestBuildMessageSkipsEmptyParts(t *testing.T) {
	msg := string(buildMessage("noreply@mentorhood.local", "grace@example.com", "Grace", "Hi", "plain", "", "b"))
	assert.Contains(t, msg, `To: "Grace" <grace@example.com>`)
	assert.Contains(t, msg, "text/plain")
	assert.False(t, strings.Contains(msg, "text/html"))
	assert.True(t, strings.HasSuffix(msg, "--b--\r\n"))
}

func TestNewSender(t *testing.T) {
	assert.IsType(t, &DevMailer{}, NewSender(config.EmailConfig{DevMode: true}))
	assert.IsType(t, &MailerSend{}, NewSender(config.EmailConfig{MailerSendKey: "k", SMTPFrom: "a@b.c"}))
	assert.IsType(t, &SMTP{}, NewSender(config.EmailConfig{SMTPHost: "localhost", SMTPPort: 1025}))

	var disabled *MailerSend
	_, err := disabled.Send(context.Background(), "a@b.c", "", "s", "t", "")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestSendRegistrationConfirmation(t *testing.T) {
	sender := &captureSender{}
	m := NewConfirmations(sender, "https://app.mentorhood.com")

	err := m.SendRegistrationConfirmation(context.Background(), RegistrationConfirmation{
		RegistrationID: "r1",
		Email:          "grace@example.com",
		Name:           "Grace",
		SessionID:      "ama-1",
		Title:          "Staff engineering AMA",
		Date:           "2025-02-01",
		Time:           "18:00",
		MeetingLink:    "https://meet.mentorhood.com/r1",
		Mentor:         domain.MentorProfile{Name: "Ada", Company: "Analytical"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Registration Confirmation - Staff engineering AMA", sender.subject)
	assert.Contains(t, sender.text, "Hi Grace,")
	assert.Contains(t, sender.text, "Date: February 01, 2025")
	assert.Contains(t, sender.text, "with Ada, Analytical")
	assert.Contains(t, sender.text, "Duration: 60 minutes")
	assert.Contains(t, sender.text, "https://app.mentorhood.com/ama-sessions/ama-1")
	assert.Contains(t, sender.html, `href="https://meet.mentorhood.com/r1"`)
}
