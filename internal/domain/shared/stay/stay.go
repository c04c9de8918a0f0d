package stay

import (
	"errors"
	"time"
)

var (
	ErrInvalidDays  = errors.New("stay: number of days must be at least 1")
	ErrInvalidStart = errors.New("stay: start date is required")
)

// Stay represents a half-open booked interval [Start, Start+Days).
// The end boundary is exclusive: a checkout morning and the next guest's
// checkin morning on the same date do not overlap.
type Stay struct {
	Start time.Time
	Days  int
}

func New(start time.Time, days int) (Stay, error) {
	s := Stay{Start: truncateToDay(start), Days: days}
	if err := s.Validate(); err != nil {
		return Stay{}, err
	}
	return s, nil
}

func (s Stay) Validate() error {
	if s.Start.IsZero() {
		return ErrInvalidStart
	}
	if s.Days < 1 {
		return ErrInvalidDays
	}
	return nil
}

// End returns the exclusive end boundary, Start + Days.
func (s Stay) End() time.Time {
	return s.Start.AddDate(0, 0, s.Days)
}

func (s Stay) Overlaps(other Stay) bool {
	return s.Start.Before(other.End()) && other.Start.Before(s.End())
}

// Covers reports whether the given moment's date falls inside the interval.
func (s Stay) Covers(t time.Time) bool {
	day := truncateToDay(t)
	return !day.Before(s.Start) && day.Before(s.End())
}

// StartsBefore reports whether the stay begins before the given moment's date.
func (s Stay) StartsBefore(t time.Time) bool {
	return s.Start.Before(truncateToDay(t))
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
