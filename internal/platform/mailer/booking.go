package mailer

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

// BookingConfirmation is everything the confirmation email shows.
type BookingConfirmation struct {
	BookingID   string
	Email       string
	Date        string // YYYY-MM-DD or ISO timestamp
	Time        string
	Timezone    string
	MeetingLink string
	Session     domain.SessionSnapshot
}

type confirmationView struct {
	BookingConfirmation
	Title       string
	PrettyDate  string
	Duration    string
	MentorName  string
	MentorLine  string
	SessionsURL string
}

const textBody = `Your booking is confirmed!

{{.Title}}{{if .Session.Tag}} ({{.Session.Tag}}){{end}}
with {{.MentorName}}{{if .MentorLine}}, {{.MentorLine}}{{end}}

Date: {{.PrettyDate}}
Time: {{.Time}} ({{.Timezone}})
Duration: {{.Duration}}
{{if .Session.Description}}
{{.Session.Description}}
{{end}}
Meeting link: {{.MeetingLink}}
The link opens 5 minutes before your session.

Manage your booking: {{.SessionsURL}}
`

const htmlBody = `<html><body style="font-family:Arial,sans-serif;color:#333;line-height:1.6">
<div style="max-width:600px;margin:0 auto;padding:20px">
<div style="background:#000;padding:20px;text-align:center"><span style="font-size:24px;font-weight:bold;color:#fff">MentorHood</span></div>
<div style="background:#fff;padding:30px">
<h2>Your Booking is Confirmed!</h2>
<p>Thank you for booking a session with MentorHood. We're excited to have you join us!</p>
<h3>{{.Title}}</h3>
{{if .Session.Tag}}<p><span style="background:#eee;border-radius:12px;padding:2px 10px">{{.Session.Tag}}</span></p>{{end}}
<p><strong>{{.MentorName}}</strong>{{if .MentorLine}}<br>{{.MentorLine}}{{end}}</p>
<p><strong>Date:</strong> {{.PrettyDate}}</p>
<p><strong>Time:</strong> {{.Time}} ({{.Timezone}})</p>
<p><strong>Duration:</strong> {{.Duration}}</p>
{{if .Session.Description}}<p><strong>Description:</strong><br>{{.Session.Description}}</p>{{end}}
<p><strong>Your Meeting Link:</strong><br><a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>
<p style="font-size:14px">This link will be active 5 minutes before your scheduled session.</p>
<p><a href="{{.SessionsURL}}">View your booking</a></p>
</div></div></body></html>`

var (
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBody))
)

// Confirmations renders booking emails and hands them to a Sender.
type Confirmations struct {
	sender    Sender
	publicURL string
}

func NewConfirmations(sender Sender, publicURL string) *Confirmations {
	return &Confirmations{sender: sender, publicURL: strings.TrimRight(publicURL, "/")}
}

func prettyDate(raw string) string {
	d, err := domain.ParseBookingDate(raw)
	if err != nil {
		return raw
	}
	return d.Format("January 02, 2006")
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// Render returns subject, text and html for c.
func (m *Confirmations) Render(c BookingConfirmation) (subject, text, html string, err error) {
	view := confirmationView{
		BookingConfirmation: c,
		Title:               orDefault(c.Session.Title, "AMA Session"),
		PrettyDate:          prettyDate(c.Date),
		Duration:            orDefault(c.Session.Duration, "60 minutes"),
		MentorName:          orDefault(c.Session.Mentor.Name, "Mentor"),
		SessionsURL:         m.publicURL + "/sessions/" + c.Session.ID,
	}
	view.MentorLine = mentorLine(c.Session.Mentor)

	var tb, hb bytes.Buffer
	if err := textTmpl.Execute(&tb, view); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	if err := htmlTmpl.Execute(&hb, view); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	return "Booking Confirmation - " + view.Title, tb.String(), hb.String(), nil
}

func (m *Confirmations) SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error {
	subject, text, html, err := m.Render(c)
	if err != nil {
		return err
	}
	id, err := m.sender.Send(ctx, c.Email, "", subject, text, html)
	if err != nil {
		return fmt.Errorf("send booking confirmation: %w", err)
	}
	logger.InfoContext(ctx, "Booking confirmation sent", "booking_id", c.BookingID, "message_id", id)
	return nil
}

// NewSender picks the delivery path from config: dev logging, MailerSend
// when an API key is set, SMTP otherwise.
func NewSender(cfg config.EmailConfig) Sender {
	switch {
	case cfg.DevMode:
		return NewDevMailer()
	case cfg.MailerSendKey != "":
		return NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom, "booking-confirmation")
	default:
		return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
	}
}
