package services

import "github.com/heavensdreams/rental-api/models"

// CustomerBooking is all a customer-role viewer may learn about a booking:
// which apartment is taken and when. Guest identity (client name, creator,
// notes) never appears here.
type CustomerBooking struct {
	ID            string `json:"id"`
	ApartmentID   string `json:"apartment_id"`
	ApartmentName string `json:"apartment_name,omitempty"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

// CustomerApartment is the sanitized apartment payload for customer views
// and the public share endpoint. Visibility tags and staff notes are
// dropped along with booking details.
type CustomerApartment struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Address  string            `json:"address,omitempty"`
	Photos   []models.Photo    `json:"photos"`
	Bookings []CustomerBooking `json:"bookings"`
}

// ForCustomer strips a booking down to its customer-safe fields.
func ForCustomer(b models.Booking, apartmentName string) CustomerBooking {
	return CustomerBooking{
		ID:            b.ID,
		ApartmentID:   b.ApartmentID,
		ApartmentName: apartmentName,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
	}
}

// ApartmentForCustomer sanitizes an apartment and every booking in it.
func ApartmentForCustomer(a models.Apartment) CustomerApartment {
	out := CustomerApartment{
		ID:       a.ID,
		Name:     a.Name,
		Address:  a.Address,
		Photos:   a.Photos,
		Bookings: make([]CustomerBooking, 0, len(a.Bookings)),
	}
	if out.Photos == nil {
		out.Photos = []models.Photo{}
	}
	for _, b := range a.Bookings {
		out.Bookings = append(out.Bookings, ForCustomer(b, a.Name))
	}
	return out
}

// BookingsForCustomer sanitizes a booking list in one pass, resolving each
// apartment name from the document.
func BookingsForCustomer(doc *models.Document, bookings []models.Booking) []CustomerBooking {
	out := make([]CustomerBooking, 0, len(bookings))
	for _, b := range bookings {
		name := ""
		if a := doc.ApartmentByID(b.ApartmentID); a != nil {
			name = a.Name
		}
		out = append(out, ForCustomer(b, name))
	}
	return out
}
