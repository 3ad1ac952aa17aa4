package services

import (
	"time"

	"github.com/heavensdreams/rental-api/models"
)

type OccupancyStatus string

const (
	StatusOccupied  OccupancyStatus = "occupied"
	StatusAvailable OccupancyStatus = "available"
)

// Occupancy is the per-apartment dashboard badge: whether the apartment is
// occupied on the reference date and which booking comes up next.
type Occupancy struct {
	Status      OccupancyStatus `json:"status"`
	NextBooking *models.Booking `json:"next_booking"`
}

// Status decides occupied/available for one apartment as of a date and
// finds the next upcoming booking: the earliest start strictly after asOf,
// first-listed booking winning ties.
func Status(apartment models.Apartment, asOf time.Time) Occupancy {
	day := truncateToDay(asOf)

	occ := Occupancy{Status: StatusAvailable}
	var nextStart time.Time

	for i := range apartment.Bookings {
		b := apartment.Bookings[i]
		r, err := NewDateRange(b.StartDate, b.EndDate)
		if err != nil {
			continue
		}
		if r.ContainsDay(day) {
			occ.Status = StatusOccupied
		}
		if r.Start.After(day) {
			if occ.NextBooking == nil || r.Start.Before(nextStart) {
				booking := b
				occ.NextBooking = &booking
				nextStart = r.Start
			}
		}
	}
	return occ
}

// Banner states for the group-wide status strip: red, yellow, green.
const (
	BannerAllBooked  = "all_booked"
	BannerSomeBooked = "some_booked"
	BannerNoneBooked = "none_booked"
)

type GroupBanner struct {
	Status   string `json:"status"`
	Occupied int    `json:"occupied"`
	Total    int    `json:"total"`
}

// GroupStatus aggregates occupancy over a filtered apartment set. "All"
// wins only when every apartment is individually occupied; an empty set is
// green.
func GroupStatus(apartments []models.Apartment, asOf time.Time) GroupBanner {
	banner := GroupBanner{Status: BannerNoneBooked, Total: len(apartments)}
	for _, a := range apartments {
		if Status(a, asOf).Status == StatusOccupied {
			banner.Occupied++
		}
	}
	switch {
	case banner.Total > 0 && banner.Occupied == banner.Total:
		banner.Status = BannerAllBooked
	case banner.Occupied > 0:
		banner.Status = BannerSomeBooked
	}
	return banner
}
