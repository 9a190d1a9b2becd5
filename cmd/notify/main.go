package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/platform/mailer"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/mentorhood/mentorhood/pkg/events"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus, err := events.NewNATSEventBus(cfg.NATS.URL, "mentorhood-notify")
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	confirmations := mailer.NewConfirmations(mailer.NewSender(cfg.Email), cfg.Server.PublicURL)

	handlers := map[string]func(*events.Message){
		events.BookingCreated: func(msg *events.Message) {
			handleBookingCreated(ctx, confirmations, msg)
		},
		events.RegistrationCreated: func(msg *events.Message) {
			handleRegistrationCreated(ctx, confirmations, msg)
		},
	}
	for subject, handle := range handlers {
		if err := bus.QueueSubscribe(subject, "notify", handle); err != nil {
			logger.Error("Failed to subscribe", "subject", subject, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Notify worker listening", "subjects", []string{events.BookingCreated, events.RegistrationCreated}, "dev_mode", cfg.Email.DevMode)
	<-ctx.Done()
	logger.Info("Shutting down notify worker...")
}

func handleBookingCreated(ctx context.Context, svc mailer.Service, msg *events.Message) {
	var ev events.BookingCreatedEvent
	if err := msg.Decode(&ev); err != nil {
		logger.Error("Dropping malformed event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := svc.SendBookingConfirmation(ctx, mailer.BookingConfirmation{
		BookingID:   ev.BookingID,
		Email:       ev.Email,
		Date:        ev.Date,
		Time:        ev.Time,
		Timezone:    ev.Timezone,
		MeetingLink: ev.MeetingLink,
		Session: domain.SessionSnapshot{
			ID:          ev.SessionID,
			Title:       ev.SessionTitle,
			Description: ev.Description,
			Duration:    ev.Duration,
			Tag:         ev.Tag,
			Mentor: domain.MentorProfile{
				Name:    ev.Mentor.Name,
				Role:    ev.Mentor.Role,
				Company: ev.Mentor.Company,
				Image:   ev.Mentor.Image,
			},
		},
	})
	if err != nil {
		logger.Error("Failed to send booking confirmation", "error", err, "booking_id", ev.BookingID)
	}
}

func handleRegistrationCreated(ctx context.Context, svc mailer.Service, msg *events.Message) {
	var ev events.RegistrationCreatedEvent
	if err := msg.Decode(&ev); err != nil {
		logger.Error("Dropping malformed event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := svc.SendRegistrationConfirmation(ctx, mailer.RegistrationConfirmation{
		RegistrationID: ev.RegistrationID,
		Email:          ev.Email,
		Name:           ev.Name,
		SessionID:      ev.SessionID,
		Title:          ev.Title,
		Date:           ev.Date,
		Time:           ev.Time,
		Duration:       ev.Duration,
		MeetingLink:    ev.MeetingLink,
		Mentor: domain.MentorProfile{
			Name:    ev.Mentor.Name,
			Role:    ev.Mentor.Role,
			Company: ev.Mentor.Company,
			Image:   ev.Mentor.Image,
		},
	})
	if err != nil {
		logger.Error("Failed to send registration confirmation", "error", err, "registration_id", ev.RegistrationID)
	}
}
