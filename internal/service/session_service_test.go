package service

import (
	"context"
	"testing"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionOwnedByCaller(t *testing.T) {
	repo := newFakeSessionRepo()
	bus := &recordingBus{}
	svc := NewSessionService(repo, bus)

	in := domain.NewSession("someone-else")
	in.Name = "Mock interview"
	out, err := svc.CreateSession(context.Background(), "mentor-1", &in)
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "mentor-1", out.MentorID)
	assert.Equal(t, []string{events.SessionCreated}, bus.subjects())

	list, err := svc.ListMentorSessions(context.Background(), "mentor-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateSessionValidates(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo(), &recordingBus{})
	in := domain.NewSession("")
	in.Duration = 0

	_, err := svc.CreateSession(context.Background(), "mentor-1", &in)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestUpdateSessionOwnerOnly(t *testing.T) {
	repo := newFakeSessionRepo(mondaySession())
	bus := &recordingBus{}
	svc := NewSessionService(repo, bus)

	change := mondaySession()
	change.Name = "Renamed"

	_, err := svc.UpdateSession(context.Background(), "intruder", "s1", &change)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	out, err := svc.UpdateSession(context.Background(), "mentor-1", "s1", &change)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Name)
	assert.Equal(t, []string{events.SessionUpdated}, bus.subjects())

	_, err = svc.UpdateSession(context.Background(), "mentor-1", "missing", &change)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSession(t *testing.T) {
	repo := newFakeSessionRepo(mondaySession())
	svc := NewSessionService(repo, &recordingBus{})

	assert.ErrorIs(t, svc.DeleteSession(context.Background(), "intruder", "s1"), domain.ErrNotOwner)
	require.NoError(t, svc.DeleteSession(context.Background(), "mentor-1", "s1"))

	_, err := svc.GetSession(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}
