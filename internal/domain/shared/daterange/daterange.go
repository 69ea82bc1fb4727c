package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: end must not be before start")

// DateRange represents an inclusive interval of calendar days [Start, End].
// Both endpoints are normalized to UTC midnight so two ranges covering the
// same days always compare and expand identically.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: DayKey(start), End: DayKey(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if dr.End.Before(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Days expands the range into one day key per calendar day, endpoints
// included. Given the same (start, end) pair it always returns the same
// sequence, so releasing a reservation exactly undoes making it.
func (dr DateRange) Days() []time.Time {
	if dr.Validate() != nil {
		return nil
	}
	days := make([]time.Time, 0, dr.Len())
	for d := dr.Start; !d.After(dr.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Len is the number of calendar days covered, endpoints included.
func (dr DateRange) Len() int {
	if dr.Validate() != nil {
		return 0
	}
	return int(dr.End.Sub(dr.Start)/(24*time.Hour)) + 1
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.Start.After(other.End) && !other.Start.After(dr.End)
}

func (dr DateRange) ContainsDay(t time.Time) bool {
	day := DayKey(t)
	return !day.Before(dr.Start) && !day.After(dr.End)
}

// DayKey strips the time-of-day component, returning UTC midnight of the
// same calendar date. Membership tests against a guide's unavailable-date
// set must only ever compare day keys.
func DayKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
