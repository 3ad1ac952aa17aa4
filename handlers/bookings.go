package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heavensdreams/rental-api/config"
	"github.com/heavensdreams/rental-api/middleware"
	"github.com/heavensdreams/rental-api/models"
	"github.com/heavensdreams/rental-api/services"
)

type BookingHandler struct {
	Store *config.Store
	WS    *WSHandler
}

// List returns every booking across the caller's visible apartments,
// privacy-filtered for customer viewers.
func (h *BookingHandler) List(c *gin.Context) {
	doc, err := h.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read data"})
		return
	}
	user, ok := viewer(doc, c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	visible := services.VisibleApartments(doc, user)
	if user.Role == models.RoleCustomer {
		out := make([]services.CustomerBooking, 0)
		for _, a := range visible {
			for _, b := range a.Bookings {
				out = append(out, services.ForCustomer(b, a.Name))
			}
		}
		c.JSON(http.StatusOK, out)
		return
	}

	out := make([]models.Booking, 0)
	for _, a := range visible {
		out = append(out, a.Bookings...)
	}
	c.JSON(http.StatusOK, out)
}

// Create validates the requested range and appends the booking. The
// conflict check runs inside the mutation so it sees the document state
// being written, not a stale snapshot.
func (h *BookingHandler) Create(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidate, err := services.NewDateRange(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := middleware.GetUserID(c)
	booking := models.Booking{
		ID:          uuid.New().String(),
		ApartmentID: req.ApartmentID,
		UserID:      actorID,
		StartDate:   candidate.Start.Format(time.RFC3339),
		EndDate:     candidate.End.Format(time.RFC3339),
		ClientName:  req.ClientName,
		ExtraInfo:   req.ExtraInfo,
		CreatedAt:   time.Now().UTC(),
	}

	err = h.Store.Mutate(func(doc *models.Document) error {
		apartment := doc.ApartmentByID(req.ApartmentID)
		if apartment == nil {
			return errApartmentNotFound
		}
		if services.HasConflict(candidate, apartment.Bookings, "") {
			return services.ErrBookingConflict
		}
		apartment.Bookings = append(apartment.Bookings, booking)
		services.RecordLog(doc, actorID, "create", entityBooking, booking.ID, nil, booking)
		return nil
	})
	if !h.respondBookingError(c, err) {
		return
	}

	h.WS.BroadcastUpdate(entityBooking, "created", booking.ID, actorID)
	c.JSON(http.StatusCreated, booking)
}

// Update edits a booking in place, possibly moving it to another apartment.
// The edited booking is excluded from the conflict comparison so it never
// conflicts with itself.
func (h *BookingHandler) Update(c *gin.Context) {
	bookingID := c.Param("id")

	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidate, err := services.NewDateRange(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := middleware.GetUserID(c)
	var updated models.Booking

	err = h.Store.Mutate(func(doc *models.Document) error {
		source, booking := doc.FindBooking(bookingID)
		if booking == nil {
			return errBookingNotFound
		}
		target := doc.ApartmentByID(req.ApartmentID)
		if target == nil {
			return errApartmentNotFound
		}
		if services.HasConflict(candidate, target.Bookings, bookingID) {
			return services.ErrBookingConflict
		}

		old := *booking
		updated = models.Booking{
			ID:          booking.ID,
			ApartmentID: target.ID,
			UserID:      booking.UserID,
			StartDate:   candidate.Start.Format(time.RFC3339),
			EndDate:     candidate.End.Format(time.RFC3339),
			ClientName:  req.ClientName,
			ExtraInfo:   req.ExtraInfo,
			CreatedAt:   booking.CreatedAt,
		}

		if source.ID == target.ID {
			*booking = updated
		} else {
			kept := source.Bookings[:0]
			for _, b := range source.Bookings {
				if b.ID != bookingID {
					kept = append(kept, b)
				}
			}
			source.Bookings = kept
			target.Bookings = append(target.Bookings, updated)
		}

		services.RecordLog(doc, actorID, "update", entityBooking, bookingID, old, updated)
		return nil
	})
	if !h.respondBookingError(c, err) {
		return
	}

	h.WS.BroadcastUpdate(entityBooking, "updated", bookingID, actorID)
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) Delete(c *gin.Context) {
	bookingID := c.Param("id")
	actorID := middleware.GetUserID(c)

	err := h.Store.Mutate(func(doc *models.Document) error {
		apartment, booking := doc.FindBooking(bookingID)
		if booking == nil {
			return errBookingNotFound
		}
		removed := *booking

		kept := apartment.Bookings[:0]
		for _, b := range apartment.Bookings {
			if b.ID != bookingID {
				kept = append(kept, b)
			}
		}
		apartment.Bookings = kept

		services.RecordLog(doc, actorID, "delete", entityBooking, bookingID, removed, nil)
		return nil
	})
	if !h.respondBookingError(c, err) {
		return
	}

	h.WS.BroadcastUpdate(entityBooking, "deleted", bookingID, actorID)
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}

// respondBookingError maps mutation outcomes to responses. Returns true
// when the caller may proceed with its success path.
func (h *BookingHandler) respondBookingError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, services.ErrBookingConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Apartment is not available during the selected dates"})
	case errors.Is(err, errApartmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Apartment not found"})
	case errors.Is(err, errBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save booking"})
	}
	return false
}
