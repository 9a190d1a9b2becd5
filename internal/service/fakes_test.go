package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/repo/postgres"
)

type published struct {
	subject string
	data    interface{}
}

type recordingBus struct {
	mu     sync.Mutex
	events []published
}

func (b *recordingBus) Publish(_ context.Context, subject string, data interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{subject, data})
	return nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) subjects() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		out = append(out, e.subject)
	}
	return out
}

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
}

func newFakeSessionRepo(sessions ...domain.Session) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: map[string]*domain.Session{}}
	for i := range sessions {
		s := sessions[i]
		r.sessions[s.ID] = &s
	}
	return r
}

func (r *fakeSessionRepo) Create(_ context.Context, s *domain.Session) (*domain.Session, error) {
	c := s.Clone()
	c.CreatedAt = time.Now()
	r.sessions[c.ID] = &c
	return &c, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	c := s.Clone()
	return &c, nil
}

func (r *fakeSessionRepo) ListByMentor(_ context.Context, mentorID string) ([]domain.Session, error) {
	var out []domain.Session
	for _, s := range r.sessions {
		if s.MentorID == mentorID {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *domain.Session) (*domain.Session, error) {
	if _, ok := r.sessions[s.ID]; !ok {
		return nil, nil
	}
	c := s.Clone()
	r.sessions[c.ID] = &c
	return &c, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) (bool, error) {
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok, nil
}

type fakeBookingRepo struct {
	bookings []domain.Booking
}

func (r *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	c := *b
	c.CreatedAt = time.Now()
	r.bookings = append(r.bookings, c)
	return &c, nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	for _, b := range r.bookings {
		if b.ID == id {
			c := b
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) List(_ context.Context, sessionID string, limit, offset int) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range r.bookings {
		if sessionID == "" || b.SessionID == sessionID {
			out = append(out, b)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeBookingRepo) ListBySessionAndEmail(_ context.Context, sessionID, email string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range r.bookings {
		if b.SessionID == sessionID && b.Email == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByEmail(_ context.Context, email string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range r.bookings {
		if strings.EqualFold(b.Email, email) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeIdempotencyRepo struct {
	keys map[string]string
}

func (r *fakeIdempotencyRepo) Lookup(_ context.Context, key string) (string, error) {
	return r.keys[key], nil
}

func (r *fakeIdempotencyRepo) Remember(_ context.Context, key, bookingID string) error {
	if _, ok := r.keys[key]; !ok {
		r.keys[key] = bookingID
	}
	return nil
}

func (r *fakeIdempotencyRepo) CleanupExpired(context.Context) (int64, error) {
	n := int64(len(r.keys))
	r.keys = map[string]string{}
	return n, nil
}

type fakeTokenRepo struct {
	ledgers map[string]*domain.TokenLedger
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{ledgers: map[string]*domain.TokenLedger{}}
}

func copyLedger(l *domain.TokenLedger) *domain.TokenLedger {
	c := *l
	c.Usage = make(map[string]domain.UsageBucket, len(l.Usage))
	for k, v := range l.Usage {
		c.Usage[k] = v
	}
	c.Transactions = append([]domain.TokenTransaction(nil), l.Transactions...)
	return &c
}

func (r *fakeTokenRepo) Get(_ context.Context, userID string) (*domain.TokenLedger, error) {
	l, ok := r.ledgers[userID]
	if !ok {
		return nil, nil
	}
	return copyLedger(l), nil
}

func (r *fakeTokenRepo) Mutate(_ context.Context, userID string, create bool, fn postgres.LedgerMutation) (*domain.TokenLedger, error) {
	stored, exists := r.ledgers[userID]
	if !exists && !create {
		return nil, domain.ErrLedgerNotFound
	}
	var l *domain.TokenLedger
	if exists {
		l = copyLedger(stored)
	} else {
		l = &domain.TokenLedger{UserID: userID, Usage: map[string]domain.UsageBucket{}}
	}

	entry, err := fn(l, exists)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return l, nil
	}
	l.Transactions = append(l.Transactions, *entry)
	r.ledgers[userID] = copyLedger(l)
	return l, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailExists
		}
	}
	c := *u
	r.users[c.ID] = &c
	return &c, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	if u, ok := r.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

type fakeQuestionRepo struct {
	questions map[string]*domain.Question
	answers   []domain.Answer
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: map[string]*domain.Question{}}
}

func (r *fakeQuestionRepo) List(context.Context, domain.QuestionFilter) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range r.questions {
		out = append(out, *q)
	}
	return out, nil
}

func (r *fakeQuestionRepo) Create(_ context.Context, q *domain.Question) (*domain.Question, error) {
	c := *q
	r.questions[c.ID] = &c
	return &c, nil
}

func (r *fakeQuestionRepo) GetByID(_ context.Context, id string) (*domain.Question, error) {
	q, ok := r.questions[id]
	if !ok {
		return nil, nil
	}
	c := *q
	return &c, nil
}

func (r *fakeQuestionRepo) Upvote(_ context.Context, id string) (*domain.Question, error) {
	q, ok := r.questions[id]
	if !ok {
		return nil, nil
	}
	q.Upvotes++
	c := *q
	return &c, nil
}

func (r *fakeQuestionRepo) AddAnswer(_ context.Context, a *domain.Answer) (*domain.Answer, error) {
	q, ok := r.questions[a.QuestionID]
	if !ok {
		return nil, nil
	}
	q.Answers++
	r.answers = append(r.answers, *a)
	c := *a
	return &c, nil
}

func (r *fakeQuestionRepo) ListAnswers(_ context.Context, questionID string) ([]domain.Answer, error) {
	var out []domain.Answer
	for _, a := range r.answers {
		if a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) UpvoteAnswer(_ context.Context, questionID, answerID string) (*domain.Answer, error) {
	for i := range r.answers {
		if r.answers[i].ID == answerID && r.answers[i].QuestionID == questionID {
			r.answers[i].Upvotes++
			c := r.answers[i]
			return &c, nil
		}
	}
	return nil, nil
}

type fakeMentorRepo struct {
	mentors map[string]*domain.Mentor
}

func newFakeMentorRepo() *fakeMentorRepo {
	return &fakeMentorRepo{mentors: map[string]*domain.Mentor{}}
}

func (r *fakeMentorRepo) Upsert(_ context.Context, m *domain.Mentor) (*domain.Mentor, error) {
	c := *m
	if existing, ok := r.mentors[m.UserID]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	} else {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()
	r.mentors[c.UserID] = &c
	out := c
	return &out, nil
}

func (r *fakeMentorRepo) GetByUserID(_ context.Context, userID string) (*domain.Mentor, error) {
	m, ok := r.mentors[userID]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r *fakeMentorRepo) List(context.Context) ([]domain.Mentor, error) {
	var out []domain.Mentor
	for _, m := range r.mentors {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeAMARepo struct {
	sessions      map[string]*domain.AMASession
	registrations []domain.Registration
}

func newFakeAMARepo(sessions ...domain.AMASession) *fakeAMARepo {
	r := &fakeAMARepo{sessions: map[string]*domain.AMASession{}}
	for i := range sessions {
		a := sessions[i]
		r.sessions[a.ID] = &a
	}
	return r
}

func (r *fakeAMARepo) Create(_ context.Context, a *domain.AMASession) (*domain.AMASession, error) {
	c := *a
	c.CreatedAt = time.Now()
	r.sessions[c.ID] = &c
	out := c
	return &out, nil
}

func (r *fakeAMARepo) GetByID(_ context.Context, id string) (*domain.AMASession, error) {
	a, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (r *fakeAMARepo) List(_ context.Context, womanTech *bool) ([]domain.AMASession, error) {
	var out []domain.AMASession
	for _, a := range r.sessions {
		if womanTech == nil || a.IsWomanTech == *womanTech {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date+out[i].Time < out[j].Date+out[j].Time })
	return out, nil
}

func (r *fakeAMARepo) Update(_ context.Context, a *domain.AMASession) (*domain.AMASession, error) {
	stored, ok := r.sessions[a.ID]
	if !ok {
		return nil, nil
	}
	c := *a
	c.Registrants = stored.Registrants
	c.CreatedAt = stored.CreatedAt
	r.sessions[c.ID] = &c
	out := c
	return &out, nil
}

func (r *fakeAMARepo) Delete(_ context.Context, id string) (bool, error) {
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok, nil
}

func (r *fakeAMARepo) Register(_ context.Context, reg *domain.Registration) (*domain.Registration, error) {
	a, ok := r.sessions[reg.SessionID]
	if !ok {
		return nil, domain.ErrAMANotFound
	}
	for _, g := range r.registrations {
		if g.SessionID == reg.SessionID && strings.EqualFold(g.Email, reg.Email) {
			return nil, domain.ErrAlreadyRegistered
		}
	}
	if a.Full() {
		return nil, domain.ErrSessionFull
	}
	c := *reg
	c.FillFrom(*a)
	c.CreatedAt = time.Now()
	r.registrations = append(r.registrations, c)
	a.Registrants++
	return &c, nil
}

func (r *fakeAMARepo) IsRegistered(_ context.Context, sessionID, email string) (bool, error) {
	for _, g := range r.registrations {
		if g.SessionID == sessionID && strings.EqualFold(g.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAMARepo) ListRegistrations(_ context.Context, sessionID string) ([]domain.Registration, error) {
	var out []domain.Registration
	for _, g := range r.registrations {
		if g.SessionID == sessionID {
			out = append(out, g)
		}
	}
	return out, nil
}
