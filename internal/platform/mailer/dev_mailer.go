package mailer

import (
	"context"

	"github.com/mentorhood/mentorhood/pkg/logger"
)

// DevMailer logs messages instead of delivering them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (DevMailer) Send(ctx context.Context, toEmail, toName, subject, text, _ string) (string, error) {
	logger.InfoContext(ctx, "[DEV MAIL]",
		"to", toEmail,
		"name", toName,
		"subject", subject,
		"text", text,
	)
	return "", nil
}
