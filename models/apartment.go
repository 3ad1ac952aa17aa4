package models

import "time"

// Apartment is a rentable unit. Groups is the visibility tag list: each entry
// is either a group name or a literal customer email (direct assignment).
type Apartment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	ExtraInfo string    `json:"extra_info,omitempty"`
	Groups    []string  `json:"groups"`
	Bookings  []Booking `json:"bookings"`
	Photos    []Photo   `json:"photos"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Booking dates are inclusive calendar ranges stored as UTC ISO-8601
// instants at midnight. Strings without a timezone suffix are read as UTC.
type Booking struct {
	ID          string    `json:"id"`
	ApartmentID string    `json:"apartment_id"`
	UserID      string    `json:"user_id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	ClientName  string    `json:"client_name,omitempty"`
	ExtraInfo   string    `json:"extra_info,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Photo identifiers are derived from file content, so re-uploading the same
// image maps to the same id.
type Photo struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	ThumbName  string    `json:"thumb_name,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type CreateApartmentRequest struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address"`
	ExtraInfo string   `json:"extra_info"`
	Groups    []string `json:"groups"`
}

type UpdateApartmentRequest struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address"`
	ExtraInfo string   `json:"extra_info"`
	Groups    []string `json:"groups"`
}

type BookingRequest struct {
	ApartmentID string `json:"apartment_id" binding:"required"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	ClientName  string `json:"client_name"`
	ExtraInfo   string `json:"extra_info"`
}
