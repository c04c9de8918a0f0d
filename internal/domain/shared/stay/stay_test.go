package stay

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewTruncatesToDay(t *testing.T) {
	s, err := New(time.Date(2026, 9, 1, 15, 42, 7, 0, time.UTC), 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !s.Start.Equal(day(2026, 9, 1)) {
		t.Fatalf("start not truncated: %v", s.Start)
	}
	if !s.End().Equal(day(2026, 9, 4)) {
		t.Fatalf("end = %v, want 2026-09-04", s.End())
	}
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		days  int
		want  error
	}{
		{"zero days", day(2026, 9, 1), 0, ErrInvalidDays},
		{"negative days", day(2026, 9, 1), -2, ErrInvalidDays},
		{"zero start", time.Time{}, 2, ErrInvalidStart},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.start, tc.days); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	base := Stay{Start: day(2026, 9, 10), Days: 3} // [10, 13)
	cases := []struct {
		name  string
		other Stay
		want  bool
	}{
		{"identical", Stay{Start: day(2026, 9, 10), Days: 3}, true},
		{"contained", Stay{Start: day(2026, 9, 11), Days: 1}, true},
		{"overlaps tail", Stay{Start: day(2026, 9, 12), Days: 5}, true},
		{"overlaps head", Stay{Start: day(2026, 9, 8), Days: 3}, true},
		{"checkout day checkin", Stay{Start: day(2026, 9, 13), Days: 2}, false},
		{"ends at checkin", Stay{Start: day(2026, 9, 7), Days: 3}, false},
		{"disjoint after", Stay{Start: day(2026, 9, 20), Days: 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Overlaps(tc.other); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := tc.other.Overlaps(base); got != tc.want {
				t.Fatalf("Overlaps not symmetric: %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCovers(t *testing.T) {
	s := Stay{Start: day(2026, 9, 10), Days: 2} // [10, 12)
	if !s.Covers(day(2026, 9, 10).Add(9 * time.Hour)) {
		t.Fatal("first night not covered")
	}
	if !s.Covers(day(2026, 9, 11)) {
		t.Fatal("second night not covered")
	}
	if s.Covers(day(2026, 9, 12)) {
		t.Fatal("checkout day must not be covered")
	}
	if s.Covers(day(2026, 9, 9)) {
		t.Fatal("day before start must not be covered")
	}
}

func TestStartsBefore(t *testing.T) {
	s := Stay{Start: day(2026, 9, 10), Days: 1}
	if s.StartsBefore(day(2026, 9, 10).Add(23 * time.Hour)) {
		t.Fatal("same-day booking must not count as past")
	}
	if !s.StartsBefore(day(2026, 9, 11)) {
		t.Fatal("yesterday's start must count as past")
	}
}
