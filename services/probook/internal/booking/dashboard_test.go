package booking

import (
	"testing"
	"time"

	"github.com/ramo2594/probook/services/probook/internal/model"
)

func at(t *testing.T, date, clock string) model.Booking {
	t.Helper()
	d, err := model.ParseDate(date)
	if err != nil {
		t.Fatalf("ParseDate(%q) failed: %v", date, err)
	}
	tod, err := model.ParseTimeOfDay(clock)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q) failed: %v", clock, err)
	}
	return model.Booking{ClientName: date + " " + clock, Date: d, Time: tod}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		bookings   []model.Booking
		total      int
		future     int
		today      int
		wantNext   string
		noUpcoming bool
	}{
		{
			name:       "empty",
			noUpcoming: true,
		},
		{
			name: "only past",
			bookings: []model.Booking{
				at(t, "2026-06-14", "09:00"),
				at(t, "2026-01-01", "18:00"),
			},
			total:      2,
			noUpcoming: true,
		},
		{
			name: "later today wins over tomorrow",
			bookings: []model.Booking{
				at(t, "2026-06-16", "08:00"),
				at(t, "2026-06-15", "13:30"),
				at(t, "2026-06-15", "09:00"),
				at(t, "2026-06-10", "10:00"),
			},
			total:    4,
			future:   3,
			today:    2,
			wantNext: "2026-06-15 13:30",
		},
		{
			name: "booking at exactly now counts as next",
			bookings: []model.Booking{
				at(t, "2026-06-15", "12:00"),
				at(t, "2026-06-15", "15:00"),
			},
			total:    2,
			future:   2,
			today:    2,
			wantNext: "2026-06-15 12:00",
		},
		{
			name: "today already passed falls back to later date",
			bookings: []model.Booking{
				at(t, "2026-06-15", "08:00"),
				at(t, "2026-06-20", "10:00"),
				at(t, "2026-06-18", "16:00"),
			},
			total:    3,
			future:   3,
			today:    1,
			wantNext: "2026-06-18 16:00",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Summarize(tc.bookings, now)
			if s.Total != tc.total || s.FutureCount != tc.future || s.TodayCount != tc.today {
				t.Fatalf("counts total=%d future=%d today=%d, want %d/%d/%d",
					s.Total, s.FutureCount, s.TodayCount, tc.total, tc.future, tc.today)
			}
			if tc.noUpcoming && len(s.Upcoming) != 0 {
				t.Fatalf("expected no upcoming bookings, got %d", len(s.Upcoming))
			}
			switch {
			case tc.wantNext == "" && s.Next != nil:
				t.Fatalf("expected no next booking, got %s", s.Next.ClientName)
			case tc.wantNext != "" && (s.Next == nil || s.Next.ClientName != tc.wantNext):
				t.Fatalf("expected next %s, got %+v", tc.wantNext, s.Next)
			}
			for i := 1; i < len(s.Upcoming); i++ {
				if s.Upcoming[i].Before(s.Upcoming[i-1]) {
					t.Fatalf("upcoming not chronological: %v", s.Upcoming)
				}
			}
		})
	}
}

func TestSummarizeUsesLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on June 16 is still June 15 at 21:00 locally.
	now := time.Date(2026, 6, 16, 2, 0, 0, 0, time.UTC).In(loc)
	s := Summarize([]model.Booking{at(t, "2026-06-15", "22:00")}, now)
	if s.TodayCount != 1 || s.Next == nil {
		t.Fatalf("expected booking to count as today's next, got %+v", s)
	}
}
