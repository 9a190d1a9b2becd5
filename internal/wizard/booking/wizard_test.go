package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBooker struct {
	mu    sync.Mutex
	calls []domain.BookingRequest
	keys  []string
	resp  domain.BookingResponse
	err   error
	block chan struct{}
}

func (s *stubBooker) CreateBooking(ctx context.Context, req domain.BookingRequest, key string) (domain.BookingResponse, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.keys = append(s.keys, key)
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	return s.resp, s.err
}

func (s *stubBooker) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Sunday 2025-01-05; the window opens on Monday 2025-01-06.
var (
	now       = time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	monday    = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	tuesday   = monday.AddDate(0, 0, 1)
	fixedNow  = func() time.Time { return now }
	requester = domain.Identity{Email: "mentee@example.com", UserID: "u1"}
)

func testSession() domain.Session {
	s := domain.NewSession("m1")
	s.ID = "s1"
	s.Name = "Career chat"
	i := s.TimeSlots.Index(domain.Monday)
	s.TimeSlots[i].Available = true
	s.TimeSlots[i].TimeRanges = []domain.TimeRange{
		{Start: "09:00", End: "10:00"},
		{Start: "14:00", End: "15:00"},
	}
	j := s.TimeSlots.Index(domain.Tuesday)
	s.TimeSlots[j].TimeRanges = []domain.TimeRange{{Start: "11:00", End: "12:00"}}
	return s
}

func newWizard(b Booker) *Wizard {
	return New(testSession(), b, requester, Options{Now: fixedNow})
}

func TestHappyPathReachesConfirmed(t *testing.T) {
	b := &stubBooker{resp: domain.BookingResponse{MeetingLink: "https://meet.mentorhood.com/abc"}}
	w := newWizard(b)

	require.NoError(t, w.SelectDate(monday))
	assert.Equal(t, SelectingTime, w.State())
	assert.Equal(t, []string{"09:00", "14:00"}, w.Times())
	require.NoError(t, w.SelectTime("14:00"))
	require.NoError(t, w.Submit(context.Background()))

	assert.Equal(t, Confirmed, w.State())
	assert.Equal(t, "https://meet.mentorhood.com/abc", w.MeetingLink())
	require.Equal(t, 1, b.callCount())

	req := b.calls[0]
	assert.Equal(t, "s1", req.SessionID)
	assert.Equal(t, "2025-01-06", req.Date)
	assert.Equal(t, "14:00", req.Time)
	assert.Equal(t, "Asia/Kolkata", req.Timezone)
	assert.Equal(t, "mentee@example.com", req.Email)
	assert.Equal(t, "Career chat", req.SessionData.Title)
	assert.NotEmpty(t, b.keys[0])
}

func TestEmptyMeetingLink(t *testing.T) {
	w := newWizard(&stubBooker{})
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("09:00"))
	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, Confirmed, w.State())
	assert.Equal(t, "", w.MeetingLink())
}

func TestSubmitWithoutTimeMakesNoCall(t *testing.T) {
	b := &stubBooker{}
	w := newWizard(b)
	require.NoError(t, w.SelectDate(monday))

	err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, 0, b.callCount())
	assert.Equal(t, SelectingTime, w.State())
}

func TestSubmitWithNothingSelected(t *testing.T) {
	b := &stubBooker{}
	w := newWizard(b)
	assert.ErrorIs(t, w.Submit(context.Background()), ErrIncomplete)
	assert.Equal(t, 0, b.callCount())
}

func TestSelectDateRejections(t *testing.T) {
	w := newWizard(&stubBooker{})

	assert.ErrorIs(t, w.SelectDate(tuesday), ErrDateUnavailable)
	assert.ErrorIs(t, w.SelectDate(now), ErrDateUnavailable, "today is outside the window")
	assert.ErrorIs(t, w.SelectDate(monday.AddDate(0, 0, 14)), ErrDateUnavailable, "beyond 14 days")
	assert.Equal(t, SelectingDate, w.State())

	require.NoError(t, w.SelectDate(monday.AddDate(0, 0, 7)))
}

func TestChangingDateClearsTime(t *testing.T) {
	w := newWizard(&stubBooker{})
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("09:00"))
	require.NoError(t, w.SelectDate(monday.AddDate(0, 0, 7)))

	_, slot, _, ok := w.Selection()
	assert.True(t, ok)
	assert.Equal(t, "", slot)
}

func TestSelectTimeRules(t *testing.T) {
	w := newWizard(&stubBooker{})
	assert.ErrorIs(t, w.SelectTime("09:00"), ErrNoDate)

	require.NoError(t, w.SelectDate(monday))
	assert.ErrorIs(t, w.SelectTime("10:00"), ErrTimeUnavailable, "end times are not starts")
	assert.ErrorIs(t, w.SelectTime("11:00"), ErrTimeUnavailable, "tuesday's stale range")
}

func TestSelectTimezone(t *testing.T) {
	w := newWizard(&stubBooker{})
	_, _, tz, _ := w.Selection()
	assert.Equal(t, "Asia/Kolkata", tz.Value)

	assert.ErrorIs(t, w.SelectTimezone("Mars/Base"), ErrUnknownTimezone)
	require.NoError(t, w.SelectTimezone("Europe/London"))
	_, _, tz, _ = w.Selection()
	assert.Equal(t, "Europe/London", tz.Value)
}

func TestFailureRevertsAndKeepsSelections(t *testing.T) {
	boom := errors.New("503 service unavailable")
	b := &stubBooker{err: boom}
	w := newWizard(b)
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("14:00"))

	err := w.Submit(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, SelectingTime, w.State())
	assert.ErrorIs(t, w.LastError(), boom)

	date, slot, _, _ := w.Selection()
	assert.Equal(t, monday, date)
	assert.Equal(t, "14:00", slot)
	assert.Equal(t, 1, b.callCount(), "no automatic retry")

	b.err = nil
	require.NoError(t, w.Submit(context.Background()))
	assert.Nil(t, w.LastError())
	assert.Equal(t, b.keys[0], b.keys[1], "retries reuse the idempotency key")
}

func TestDoubleSubmitIsRejectedWhileInFlight(t *testing.T) {
	b := &stubBooker{block: make(chan struct{})}
	w := newWizard(b)
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("09:00"))

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()

	require.Eventually(t, func() bool { return w.State() == Submitting }, time.Second, time.Millisecond)
	assert.ErrorIs(t, w.Submit(context.Background()), ErrInFlight)
	assert.ErrorIs(t, w.SelectDate(monday), ErrInFlight)

	close(b.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, b.callCount())
}

func TestConfirmedIsTerminal(t *testing.T) {
	w := newWizard(&stubBooker{})
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("09:00"))
	require.NoError(t, w.Submit(context.Background()))

	assert.ErrorIs(t, w.Submit(context.Background()), ErrConfirmed)
	assert.ErrorIs(t, w.SelectDate(monday), ErrConfirmed)
	assert.ErrorIs(t, w.Reset(), ErrConfirmed)
}

func TestResetDiscardsLateResult(t *testing.T) {
	b := &stubBooker{block: make(chan struct{}), resp: domain.BookingResponse{MeetingLink: "late"}}
	w := newWizard(b)
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("09:00"))

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()
	require.Eventually(t, func() bool { return w.State() == Submitting }, time.Second, time.Millisecond)

	require.NoError(t, w.Reset())
	close(b.block)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Equal(t, SelectingDate, w.State())
	assert.Equal(t, "", w.MeetingLink())
}

func TestDatesAndAlreadyBooked(t *testing.T) {
	w := New(testSession(), &stubBooker{}, requester, Options{
		Now:           fixedNow,
		AlreadyBooked: []time.Time{monday.Add(9 * time.Hour)},
	})
	dates := w.Dates()
	require.Len(t, dates, 2)
	assert.True(t, w.IsDateAlreadyBooked(monday))
	assert.False(t, w.IsDateAlreadyBooked(monday.AddDate(0, 0, 7)))

	// informational only
	require.NoError(t, w.SelectDate(monday))
}

// replayBooker commits every request under its key and answers repeats of a
// key with the stored booking, like the server does.
type replayBooker struct {
	committed map[string]domain.BookingRequest
	keys      []string
	failNext  bool
}

func (r *replayBooker) CreateBooking(_ context.Context, req domain.BookingRequest, key string) (domain.BookingResponse, error) {
	r.keys = append(r.keys, key)
	stored, ok := r.committed[key]
	if !ok {
		r.committed[key] = req
		stored = req
	}
	if r.failNext {
		r.failNext = false
		return domain.BookingResponse{}, errors.New("timeout after commit")
	}
	return domain.BookingResponse{MeetingLink: "link-for-" + stored.Time}, nil
}

func TestChangedSelectionGetsFreshKey(t *testing.T) {
	b := &replayBooker{committed: map[string]domain.BookingRequest{}, failNext: true}
	w := newWizard(b)
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("09:00"))
	require.Error(t, w.Submit(context.Background()))

	require.NoError(t, w.SelectTime("14:00"))
	require.NoError(t, w.Submit(context.Background()))

	require.Len(t, b.keys, 2)
	assert.NotEqual(t, b.keys[0], b.keys[1])
	assert.Equal(t, Confirmed, w.State())
	assert.Equal(t, "link-for-14:00", w.MeetingLink())
}

func TestSameSelectionKeepsKey(t *testing.T) {
	b := &replayBooker{committed: map[string]domain.BookingRequest{}, failNext: true}
	w := newWizard(b)
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("09:00"))
	require.Error(t, w.Submit(context.Background()))

	// re-picking the same values is still the same request
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("09:00"))
	require.NoError(t, w.Submit(context.Background()))

	require.Len(t, b.keys, 2)
	assert.Equal(t, b.keys[0], b.keys[1])
	assert.Len(t, b.committed, 1)
	assert.Equal(t, "link-for-09:00", w.MeetingLink())
}

func TestTimezoneChangeGetsFreshKey(t *testing.T) {
	b := &replayBooker{committed: map[string]domain.BookingRequest{}, failNext: true}
	w := newWizard(b)
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("09:00"))
	require.Error(t, w.Submit(context.Background()))

	require.NoError(t, w.SelectTimezone("Europe/London"))
	require.NoError(t, w.Submit(context.Background()))
	assert.NotEqual(t, b.keys[0], b.keys[1])
}

func TestResetMintsNewKey(t *testing.T) {
	b := &replayBooker{committed: map[string]domain.BookingRequest{}, failNext: true}
	w := newWizard(b)
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("09:00"))
	require.Error(t, w.Submit(context.Background()))

	require.NoError(t, w.Reset())
	require.NoError(t, w.SelectDate(monday))
	require.NoError(t, w.SelectTime("09:00"))
	require.NoError(t, w.Submit(context.Background()))
	assert.NotEqual(t, b.keys[0], b.keys[1])
}
