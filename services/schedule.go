package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/heavensdreams/rental-api/models"
)

// ErrBookingConflict is returned by booking mutations when the requested
// range overlaps an existing booking on the same apartment. It maps to a
// user-facing validation message, not a server fault.
var ErrBookingConflict = errors.New("apartment is not available during the selected dates")

const dateOnlyLayout = "2006-01-02"

// ParseBookingDate normalizes a stored or submitted date string to a UTC
// midnight instant. Timestamps without a timezone suffix are read as UTC,
// and any time-of-day component is dropped so every comparison in the
// application works on whole days. Unparseable input is an error, never a
// garbage instant.
func ParseBookingDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}

	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return t.UTC(), nil
	}

	if !strings.HasSuffix(s, "Z") && !hasZoneOffset(s) {
		s += "Z"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return truncateToDay(t), nil
}

// hasZoneOffset reports whether an RFC3339-like string already carries a
// +hh:mm / -hh:mm suffix after its time portion.
func hasZoneOffset(s string) bool {
	idx := strings.IndexByte(s, 'T')
	if idx < 0 {
		return false
	}
	rest := s[idx+1:]
	return strings.ContainsAny(rest, "+-")
}

// DateRange is an inclusive calendar range, both bounds normalized to UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func NewDateRange(startRaw, endRaw string) (DateRange, error) {
	start, err := ParseBookingDate(startRaw)
	if err != nil {
		return DateRange{}, err
	}
	end, err := ParseBookingDate(endRaw)
	if err != nil {
		return DateRange{}, err
	}
	if end.Before(start) {
		return DateRange{}, errors.New("end date is before start date")
	}
	return DateRange{Start: start, End: end}, nil
}

// Overlaps is the single boundary policy for the whole application:
// inclusive on both ends, so a booking ending on day X conflicts with one
// starting on day X.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

// ContainsDay reports whether the given day (a UTC midnight instant) falls
// inside the range, with the end bound stretched to the last instant of its
// day so a checkout day still counts.
func (r DateRange) ContainsDay(day time.Time) bool {
	start := truncateToDay(r.Start)
	end := truncateToDay(r.End).Add(24*time.Hour - time.Millisecond)
	return !day.Before(start) && !day.After(end)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// HasConflict reports whether the candidate range overlaps any booking in
// the list, skipping excludeID so an edited booking never conflicts with
// itself. A stored booking whose dates cannot be parsed blocks the save:
// failing closed beats double-booking on garbage data.
func HasConflict(candidate DateRange, bookings []models.Booking, excludeID string) bool {
	for _, b := range bookings {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		existing, err := NewDateRange(b.StartDate, b.EndDate)
		if err != nil {
			return true
		}
		if candidate.Overlaps(existing) {
			return true
		}
	}
	return false
}
