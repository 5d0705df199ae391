package booking

import (
	"slices"
	"time"

	"github.com/ramo2594/probook/services/probook/internal/model"
)

// Summary is the aggregated view shown on a professional's dashboard.
type Summary struct {
	Today       time.Time
	Total       int
	Upcoming    []model.Booking
	FutureCount int
	TodayCount  int
	Next        *model.Booking
}

// Summarize aggregates bookings relative to now. now must already be in the
// business time zone; its calendar day is "today".
func Summarize(bookings []model.Booking, now time.Time) Summary {
	sorted := slices.Clone(bookings)
	slices.SortStableFunc(sorted, func(a, b model.Booking) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})

	today := model.DateOf(now)
	clock := model.ClockOf(now)
	s := Summary{Today: today, Total: len(sorted)}

	var laterDay *model.Booking
	for i := range sorted {
		b := sorted[i]
		if b.Date.Before(today) {
			continue
		}
		s.Upcoming = append(s.Upcoming, b)
		if b.Date.Equal(today) {
			s.TodayCount++
			if s.Next == nil && b.Time >= clock {
				s.Next = &sorted[i]
			}
			continue
		}
		if laterDay == nil {
			laterDay = &sorted[i]
		}
	}
	if s.Next == nil {
		s.Next = laterDay
	}
	s.FutureCount = len(s.Upcoming)
	return s
}
