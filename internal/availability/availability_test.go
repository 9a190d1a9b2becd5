package availability

import (
	"bytes"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monday  = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
)

func mondaySession() domain.Session {
	s := domain.NewSession("m1")
	s.ID = "s1"
	i := s.TimeSlots.Index(domain.Monday)
	s.TimeSlots[i].Available = true
	s.TimeSlots[i].TimeRanges = []domain.TimeRange{
		{Start: "09:00", End: "10:00"},
		{Start: "14:00", End: "15:00"},
	}
	j := s.TimeSlots.Index(domain.Tuesday)
	s.TimeSlots[j].Available = false
	s.TimeSlots[j].TimeRanges = []domain.TimeRange{{Start: "11:00", End: "12:00"}}
	return s
}

func TestWeekdayKeyOf(t *testing.T) {
	assert.Equal(t, "MONDAYS", WeekdayKeyOf(monday).Key())
	assert.Equal(t, "SUNDAYS", WeekdayKeyOf(monday.AddDate(0, 0, -1)).Key())
}

func TestMondayRanges(t *testing.T) {
	s := mondaySession()
	assert.True(t, IsDateAvailable(s, monday))
	assert.Equal(t, []string{"09:00", "14:00"}, SlotStarts(s, monday))
	assert.True(t, IsSlotStart(s, monday, "14:00"))
	assert.False(t, IsSlotStart(s, monday, "10:00"))
}

func TestClosedDayIgnoresStaleRanges(t *testing.T) {
	s := mondaySession()
	for week := 0; week < 4; week++ {
		d := tuesday.AddDate(0, 0, 7*week)
		assert.False(t, IsDateAvailable(s, d))
		assert.Empty(t, TimeRangesFor(s, d))
		assert.Empty(t, SlotStarts(s, d))
	}
}

func TestRangesOnlyWhenAvailable(t *testing.T) {
	s := mondaySession()
	for i := 0; i < 14; i++ {
		d := monday.AddDate(0, 0, i)
		if len(TimeRangesFor(s, d)) > 0 {
			assert.True(t, IsDateAvailable(s, d), d.Weekday().String())
		}
	}
}

func TestRangesKeepInsertionOrder(t *testing.T) {
	s := mondaySession()
	i := s.TimeSlots.Index(domain.Monday)
	s.TimeSlots[i].TimeRanges = []domain.TimeRange{
		{Start: "14:00", End: "15:00"},
		{Start: "09:00", End: "10:00"},
	}
	assert.Equal(t, []string{"14:00", "09:00"}, SlotStarts(s, monday))
}

func TestMissingWeekdayIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, slog.LevelDebug)
	t.Cleanup(func() { logger.SetOutput(os.Stdout, slog.LevelInfo) })

	s := mondaySession()
	s.TimeSlots = s.TimeSlots[:1] // only SUNDAYS

	_, err := Lookup(s, monday)
	assert.ErrorIs(t, err, domain.ErrMissingWeekday)
	assert.False(t, IsDateAvailable(s, monday))
	assert.Empty(t, TimeRangesFor(s, monday))

	assert.Contains(t, buf.String(), `"weekday":"MONDAYS"`)
	assert.Contains(t, buf.String(), `"session_id":"s1"`)
}

func TestBookingWindow(t *testing.T) {
	now := time.Date(2025, 1, 5, 18, 30, 0, 0, time.UTC)
	window := BookingWindow(now, 14)
	require.Len(t, window, 14)
	assert.Equal(t, "2025-01-06", domain.FormatBookingDate(window[0]))
	assert.Equal(t, "2025-01-19", domain.FormatBookingDate(window[13]))

	assert.Len(t, BookingWindow(now, 0), DefaultWindowDays)
	assert.False(t, InWindow(now, now, 14))
	assert.True(t, InWindow(now, window[5].Add(15*time.Hour), 14))
	assert.False(t, InWindow(now, now.AddDate(0, 0, 15), 14))
}

func TestBookableDates(t *testing.T) {
	now := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
	dates := BookableDates(mondaySession(), now, 14)
	require.Len(t, dates, 2)
	for _, d := range dates {
		assert.Equal(t, time.Monday, d.Weekday())
	}
}

func TestSortedTimeRanges(t *testing.T) {
	in := []domain.TimeRange{
		{Start: "14:00", End: "15:00"},
		{Start: "soon", End: "later"},
		{Start: "09:30", End: "10:00"},
	}
	out := SortedTimeRanges(in)
	assert.Equal(t, []string{"09:30", "14:00", "soon"}, []string{out[0].Start, out[1].Start, out[2].Start})
	assert.Equal(t, "14:00", in[0].Start)
}
