package mailer

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

// RegistrationConfirmation confirms a seat in an AMA session.
type RegistrationConfirmation struct {
	RegistrationID string
	Email          string
	Name           string
	SessionID      string
	Title          string
	Date           string
	Time           string
	Duration       string
	MeetingLink    string
	Mentor         domain.MentorProfile
}

type registrationView struct {
	RegistrationConfirmation
	Greeting   string
	Title      string
	PrettyDate string
	Duration   string
	MentorName string
	MentorLine string
	AMAURL     string
}

const registrationText = `{{.Greeting}}

You're registered for {{.Title}}
with {{.MentorName}}{{if .MentorLine}}, {{.MentorLine}}{{end}}

Date: {{.PrettyDate}}
Time: {{.Time}}
Duration: {{.Duration}}

Meeting link: {{.MeetingLink}}
Bring your questions!

Session details: {{.AMAURL}}
`

const registrationHTML = `<html><body style="font-family:Arial,sans-serif;color:#333;line-height:1.6">
<div style="max-width:600px;margin:0 auto;padding:20px">
<div style="background:#000;padding:20px;text-align:center"><span style="font-size:24px;font-weight:bold;color:#fff">MentorHood</span></div>
<div style="background:#fff;padding:30px">
<h2>Registration Confirmed</h2>
<p>{{.Greeting}}</p>
<h3>{{.Title}}</h3>
<p><strong>{{.MentorName}}</strong>{{if .MentorLine}}<br>{{.MentorLine}}{{end}}</p>
<p><strong>Date:</strong> {{.PrettyDate}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
<p><strong>Duration:</strong> {{.Duration}}</p>
<p><strong>Your Meeting Link:</strong><br><a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>
<p><a href="{{.AMAURL}}">View session</a></p>
</div></div></body></html>`

var (
	registrationTextTmpl = texttemplate.Must(texttemplate.New("registration-text").Parse(registrationText))
	registrationHTMLTmpl = htmltemplate.Must(htmltemplate.New("registration-html").Parse(registrationHTML))
)

func mentorLine(p domain.MentorProfile) string {
	if p.Role != "" && p.Company != "" {
		return p.Role + " at " + p.Company
	}
	return p.Role + p.Company
}

func (m *Confirmations) RenderRegistration(c RegistrationConfirmation) (subject, text, html string, err error) {
	view := registrationView{
		RegistrationConfirmation: c,
		Greeting:                 "Hi " + orDefault(c.Name, "there") + ",",
		Title:                    orDefault(c.Title, "AMA Session"),
		PrettyDate:               prettyDate(c.Date),
		Duration:                 orDefault(c.Duration, "60 minutes"),
		MentorName:               orDefault(c.Mentor.Name, "Mentor"),
		MentorLine:               mentorLine(c.Mentor),
		AMAURL:                   m.publicURL + "/ama-sessions/" + c.SessionID,
	}

	var tb, hb bytes.Buffer
	if err := registrationTextTmpl.Execute(&tb, view); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	if err := registrationHTMLTmpl.Execute(&hb, view); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	return "Registration Confirmation - " + view.Title, tb.String(), hb.String(), nil
}

func (m *Confirmations) SendRegistrationConfirmation(ctx context.Context, c RegistrationConfirmation) error {
	subject, text, html, err := m.RenderRegistration(c)
	if err != nil {
		return err
	}
	id, err := m.sender.Send(ctx, c.Email, c.Name, subject, text, html)
	if err != nil {
		return fmt.Errorf("send registration confirmation: %w", err)
	}
	logger.InfoContext(ctx, "Registration confirmation sent", "registration_id", c.RegistrationID, "message_id", id)
	return nil
}
