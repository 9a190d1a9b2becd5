package authoring

import (
	"context"
	"fmt"

	"github.com/mentorhood/mentorhood/internal/domain"
)

// Loader produces the wizard's starting session.
type Loader interface {
	Load(ctx context.Context) (domain.Session, error)
}

// Submitter persists the reviewed session and returns the stored copy.
type Submitter interface {
	Submit(ctx context.Context, s domain.Session) (domain.Session, error)
}

type SessionFetcher interface {
	GetSession(ctx context.Context, id string) (domain.Session, error)
}

type SessionCreator interface {
	CreateSession(ctx context.Context, s domain.Session) (domain.Session, error)
}

type SessionUpdater interface {
	UpdateSession(ctx context.Context, id string, s domain.Session) (domain.Session, error)
}

type SessionDeleter interface {
	DeleteSession(ctx context.Context, id string) error
}

// BlankLoader starts a new offering for the signed-in mentor.
type BlankLoader struct {
	MentorID string
	Mentor   domain.MentorProfile
}

func (l BlankLoader) Load(context.Context) (domain.Session, error) {
	s := domain.NewSession(l.MentorID)
	s.Mentor = l.Mentor
	return s, nil
}

// RemoteLoader fetches an existing offering for editing. Grids stored
// before all seven days were required are padded with closed days.
type RemoteLoader struct {
	Sessions SessionFetcher
	ID       string
}

func (l RemoteLoader) Load(ctx context.Context) (domain.Session, error) {
	s, err := l.Sessions.GetSession(ctx, l.ID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session %s: %w", l.ID, err)
	}
	s.TimeSlots = completeGrid(s.TimeSlots)
	return s, nil
}

func completeGrid(grid domain.WeeklyAvailability) domain.WeeklyAvailability {
	out := domain.NewWeeklyAvailability()
	for _, e := range grid {
		day, ok := e.Weekday()
		if !ok {
			continue
		}
		ranges := make([]domain.TimeRange, len(e.TimeRanges))
		copy(ranges, e.TimeRanges)
		out[day] = domain.DayAvailability{Day: e.Day, Available: e.Available, TimeRanges: ranges}
	}
	return out
}

type CreateStrategy struct {
	Sessions SessionCreator
}

func (c CreateStrategy) Submit(ctx context.Context, s domain.Session) (domain.Session, error) {
	return c.Sessions.CreateSession(ctx, s)
}

type UpdateStrategy struct {
	Sessions SessionUpdater
}

func (u UpdateStrategy) Submit(ctx context.Context, s domain.Session) (domain.Session, error) {
	return u.Sessions.UpdateSession(ctx, s.ID, s)
}
