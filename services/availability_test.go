package services

import (
	"reflect"
	"testing"
	"time"

	"github.com/heavensdreams/rental-api/models"
)

func TestComputeAvailabilityWindow(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	got := ComputeAvailability(nil, start, 7)

	if len(got) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(got))
	}
	for day := 1; day <= 7; day++ {
		key := time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		if got[key] != DayAvailable {
			t.Errorf("%s = %q, want available", key, got[key])
		}
	}
}

func TestComputeAvailabilityDefaultWindow(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := ComputeAvailability(nil, start, 0); len(got) != DefaultWindowDays {
		t.Errorf("zero days must fall back to the %d-day default, got %d entries", DefaultWindowDays, len(got))
	}
}

func TestComputeAvailabilityMarksBookedDays(t *testing.T) {
	bookings := []models.Booking{booking("b1", "2024-06-03", "2024-06-05")}
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	got := ComputeAvailability(bookings, start, 7)

	want := map[string]DayStatus{
		"2024-06-01": DayAvailable,
		"2024-06-02": DayAvailable,
		"2024-06-03": DayBooked,
		"2024-06-04": DayBooked,
		"2024-06-05": DayBooked, // checkout day stays booked all day
		"2024-06-06": DayAvailable,
		"2024-06-07": DayAvailable,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("availability map mismatch:\ngot  %v\nwant %v", got, want)
	}
}

func TestComputeAvailabilityIdempotent(t *testing.T) {
	bookings := []models.Booking{
		booking("b1", "2024-06-03", "2024-06-05"),
		booking("b2", "2024-06-10", "2024-06-12"),
	}
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	first := ComputeAvailability(bookings, start, 30)
	second := ComputeAvailability(bookings, start, 30)
	if !reflect.DeepEqual(first, second) {
		t.Error("same inputs must produce identical maps")
	}
}

func TestComputeAvailabilityDoesNotMutateInput(t *testing.T) {
	bookings := []models.Booking{booking("b1", "2024-06-03", "2024-06-05")}
	original := bookings[0]

	ComputeAvailability(bookings, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 10)

	if bookings[0] != original {
		t.Error("input bookings were mutated")
	}
}

// A day is booked in the map iff the range check says the day is inside
// some booking: the calendar and the conflict checker share one policy.
func TestAvailabilityMatchesRangeContainment(t *testing.T) {
	bookings := []models.Booking{
		booking("b1", "2024-06-03", "2024-06-05"),
		booking("b2", "2024-06-05", "2024-06-08"),
		booking("b3", "2024-06-20", "2024-06-20"),
	}
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	got := ComputeAvailability(bookings, start, 30)

	for i := 0; i < 30; i++ {
		day := start.AddDate(0, 0, i)
		contained := false
		for _, b := range bookings {
			r, err := NewDateRange(b.StartDate, b.EndDate)
			if err != nil {
				t.Fatal(err)
			}
			if r.ContainsDay(day) {
				contained = true
				break
			}
		}
		key := day.Format("2006-01-02")
		if contained && got[key] != DayBooked {
			t.Errorf("%s contained in a booking but marked %q", key, got[key])
		}
		if !contained && got[key] != DayAvailable {
			t.Errorf("%s not contained in any booking but marked %q", key, got[key])
		}
	}
}
