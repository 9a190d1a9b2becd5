package mailer

import "context"

// Sender delivers one message and returns the provider's message id when
// it reports one.
type Sender interface {
	Send(ctx context.Context, toEmail, toName, subject, text, html string) (string, error)
}

type Service interface {
	SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error
	SendRegistrationConfirmation(ctx context.Context, c RegistrationConfirmation) error
}
