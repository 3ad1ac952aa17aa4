package services

import (
	"time"

	"github.com/heavensdreams/rental-api/models"
)

type DayStatus string

const (
	DayBooked    DayStatus = "booked"
	DayAvailable DayStatus = "available"
)

// DefaultWindowDays is the calendar window the dashboard shows by default.
const DefaultWindowDays = 90

// ComputeAvailability classifies every calendar day in
// [windowStart, windowStart+windowDays) as booked or available. Keys are
// UTC YYYY-MM-DD strings. Pure: inputs are never mutated.
//
// A day is booked when at least one booking's inclusive range contains it,
// using the same boundary policy as HasConflict, so the two can never
// disagree about a date.
func ComputeAvailability(bookings []models.Booking, windowStart time.Time, windowDays int) map[string]DayStatus {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	first := truncateToDay(windowStart)

	ranges := make([]DateRange, 0, len(bookings))
	for _, b := range bookings {
		r, err := NewDateRange(b.StartDate, b.EndDate)
		if err != nil {
			continue
		}
		ranges = append(ranges, r)
	}

	out := make(map[string]DayStatus, windowDays)
	for i := 0; i < windowDays; i++ {
		day := first.AddDate(0, 0, i)
		status := DayAvailable
		for _, r := range ranges {
			if r.ContainsDay(day) {
				status = DayBooked
				break
			}
		}
		out[day.Format(dateOnlyLayout)] = status
	}
	return out
}
