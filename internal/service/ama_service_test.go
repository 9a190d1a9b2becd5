package service

import (
	"context"
	"testing"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/mentorhood/mentorhood/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func careerAMA() domain.AMASession {
	return domain.AMASession{
		ID:             "ama-1",
		HostID:         "mentor-1",
		Title:          "Breaking into staff engineering",
		Description:    "Open questions on the staff path",
		Mentor:         domain.MentorProfile{Name: "Ada Lovelace", Role: "Staff Engineer", Company: "Analytical"},
		Date:           "2025-02-01",
		Time:           "18:00",
		Duration:       "60 min",
		MaxRegistrants: 2,
	}
}

func newAMAFixture(sessions ...domain.AMASession) (AMAService, *fakeAMARepo, *recordingBus) {
	repo := newFakeAMARepo(sessions...)
	bus := &recordingBus{}
	cfg := &config.Config{Booking: config.BookingConfig{MeetingBaseURL: "https://meet.example.com/"}}
	return NewAMAService(repo, bus, cfg), repo, bus
}

func TestRegisterCopiesSessionAndPublishes(t *testing.T) {
	svc, repo, bus := newAMAFixture(careerAMA())

	reg, err := svc.Register(context.Background(), &domain.RegistrationRequest{
		SessionID: "ama-1",
		Email:     " Grace@Example.com ",
		Name:      " Grace ",
	})
	require.NoError(t, err)

	assert.Equal(t, "grace@example.com", reg.Email)
	assert.Equal(t, "Grace", reg.Name)
	assert.Equal(t, "Breaking into staff engineering", reg.SessionTitle)
	assert.Equal(t, "Ada Lovelace", reg.MentorName)
	assert.Equal(t, "https://meet.example.com/"+reg.MeetingID, reg.MeetingLink)
	assert.Equal(t, 1, repo.sessions["ama-1"].Registrants)

	require.Equal(t, []string{events.RegistrationCreated}, bus.subjects())
	ev := bus.events[0].data.(events.RegistrationCreatedEvent)
	assert.Equal(t, reg.ID, ev.RegistrationID)
	assert.Equal(t, "Analytical", ev.Mentor.Company)

	ok, err := svc.IsRegistered(context.Background(), "ama-1", "GRACE@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterRejections(t *testing.T) {
	full := careerAMA()
	full.ID = "ama-full"
	full.Registrants = 2

	svc, _, bus := newAMAFixture(careerAMA(), full)
	ctx := context.Background()

	_, err := svc.Register(ctx, &domain.RegistrationRequest{SessionID: "ama-1", Email: "grace@example.com"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &domain.RegistrationRequest{SessionID: "ama-1", Email: "GRACE@example.com"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	_, err = svc.Register(ctx, &domain.RegistrationRequest{SessionID: "ama-full", Email: "grace@example.com"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, domain.ErrSessionFull)

	_, err = svc.Register(ctx, &domain.RegistrationRequest{SessionID: "missing", Email: "grace@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Register(ctx, &domain.RegistrationRequest{SessionID: "ama-1", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, &domain.RegistrationRequest{Email: "grace@example.com"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Len(t, bus.subjects(), 1)
}

func TestAMAHostOwnership(t *testing.T) {
	svc, repo, _ := newAMAFixture(careerAMA())
	ctx := context.Background()

	edit := careerAMA()
	edit.Title = "Renamed"
	_, err := svc.UpdateSession(ctx, "mentor-2", "ama-1", &edit)
	assert.ErrorIs(t, err, domain.ErrNotHost)

	err = svc.DeleteSession(ctx, "mentor-2", "ama-1")
	assert.ErrorIs(t, err, domain.ErrNotHost)

	out, err := svc.UpdateSession(ctx, "mentor-1", "ama-1", &edit)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Title)

	require.NoError(t, svc.DeleteSession(ctx, "mentor-1", "ama-1"))
	assert.Empty(t, repo.sessions)

	err = svc.DeleteSession(ctx, "mentor-1", "ama-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSessionKeepsSeatsTaken(t *testing.T) {
	taken := careerAMA()
	taken.Registrants = 2
	svc, _, _ := newAMAFixture(taken)

	edit := careerAMA()
	edit.MaxRegistrants = 1
	_, err := svc.UpdateSession(context.Background(), "mentor-1", "ama-1", &edit)
	assert.ErrorIs(t, err, ErrValidation)

	edit.MaxRegistrants = 5
	edit.Registrants = 0
	out, err := svc.UpdateSession(context.Background(), "mentor-1", "ama-1", &edit)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Registrants)
}

func TestCreateSessionAssignsHost(t *testing.T) {
	svc, _, _ := newAMAFixture()
	ctx := context.Background()

	in := careerAMA()
	in.ID = ""
	in.HostID = "someone-else"
	in.Registrants = 7
	out, err := svc.CreateSession(ctx, "mentor-9", &in)
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "mentor-9", out.HostID)
	assert.Zero(t, out.Registrants)
	assert.NotNil(t, out.Topics)

	bad := careerAMA()
	bad.MaxRegistrants = 0
	_, err = svc.CreateSession(ctx, "mentor-9", &bad)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListSessionsFiltersWomanTech(t *testing.T) {
	wt := careerAMA()
	wt.ID = "ama-2"
	wt.IsWomanTech = true
	svc, _, _ := newAMAFixture(careerAMA(), wt)

	all, err := svc.ListSessions(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	yes := true
	only, err := svc.ListSessions(context.Background(), &yes)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "ama-2", only[0].ID)
}
