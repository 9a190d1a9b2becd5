package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

var ErrDisabled = errors.New("mailer disabled")

// MailerSend delivers through the MailerSend HTTP API.
type MailerSend struct {
	client *mailersend.Mailersend
	from   mailersend.From
	tags   []string
}

// NewMailerSend returns nil when the API key or sender address is missing.
func NewMailerSend(apiKey, fromName, fromEmail string, tags ...string) *MailerSend {
	if apiKey == "" || fromEmail == "" {
		return nil
	}
	return &MailerSend{
		client: mailersend.NewMailersend(apiKey),
		from:   mailersend.From{Name: fromName, Email: fromEmail},
		tags:   tags,
	}
}

func (m *MailerSend) Send(ctx context.Context, toEmail, toName, subject, text, html string) (string, error) {
	if m == nil {
		return "", ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	if len(m.tags) > 0 {
		msg.SetTags(m.tags)
	}
	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("mailersend: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("mailersend: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return res.Header.Get("X-Message-Id"), nil
}
