package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heavensdreams/rental-api/config"
	"github.com/heavensdreams/rental-api/middleware"
	"github.com/heavensdreams/rental-api/models"
	"github.com/heavensdreams/rental-api/services"
)

type ApartmentHandler struct {
	Store *config.Store
	WS    *WSHandler
}

// List returns the apartments the caller may see. Customers get the
// sanitized shape with privacy-filtered bookings; staff get everything.
func (h *ApartmentHandler) List(c *gin.Context) {
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
		out := make([]services.CustomerApartment, 0, len(visible))
		for _, a := range visible {
			out = append(out, services.ApartmentForCustomer(a))
		}
		c.JSON(http.StatusOK, out)
		return
	}
	c.JSON(http.StatusOK, visible)
}

func (h *ApartmentHandler) Get(c *gin.Context) {
	apartment, user := h.visibleApartment(c)
	if apartment == nil {
		return
	}

	if user.Role == models.RoleCustomer {
		c.JSON(http.StatusOK, services.ApartmentForCustomer(*apartment))
		return
	}
	c.JSON(http.StatusOK, apartment)
}

// visibleApartment resolves :id against the caller's visible set, writing
// the error response itself when the apartment is missing or hidden.
func (h *ApartmentHandler) visibleApartment(c *gin.Context) (*models.Apartment, models.User) {
	doc, err := h.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read data"})
		return nil, models.User{}
	}
	user, ok := viewer(doc, c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, models.User{}
	}

	id := c.Param("id")
	for _, a := range services.VisibleApartments(doc, user) {
		if a.ID == id {
			apartment := a
			return &apartment, user
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Apartment not found"})
	return nil, user
}

func (h *ApartmentHandler) Create(c *gin.Context) {
	var req models.CreateApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := middleware.GetUserID(c)
	apartment := models.Apartment{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Address:   req.Address,
		ExtraInfo: req.ExtraInfo,
		Groups:    req.Groups,
		Bookings:  []models.Booking{},
		Photos:    []models.Photo{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if apartment.Groups == nil {
		apartment.Groups = []string{}
	}

	err := h.Store.Mutate(func(doc *models.Document) error {
		doc.Apartments = append(doc.Apartments, apartment)
		services.RecordLog(doc, actorID, "create", entityApartment, apartment.ID, nil, apartment)
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create apartment"})
		return
	}

	h.WS.BroadcastUpdate(entityApartment, "created", apartment.ID, actorID)
	c.JSON(http.StatusCreated, apartment)
}

func (h *ApartmentHandler) Update(c *gin.Context) {
	apartmentID := c.Param("id")

	var req models.UpdateApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := middleware.GetUserID(c)
	var updated models.Apartment

	err := h.Store.Mutate(func(doc *models.Document) error {
		apartment := doc.ApartmentByID(apartmentID)
		if apartment == nil {
			return errApartmentNotFound
		}
		old := *apartment

		apartment.Name = req.Name
		apartment.Address = req.Address
		apartment.ExtraInfo = req.ExtraInfo
		if req.Groups != nil {
			apartment.Groups = req.Groups
		}
		apartment.UpdatedAt = time.Now().UTC()
		updated = *apartment

		services.RecordLog(doc, actorID, "update", entityApartment, apartmentID, old, updated)
		return nil
	})
	if err == errApartmentNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Apartment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update apartment"})
		return
	}

	h.WS.BroadcastUpdate(entityApartment, "updated", apartmentID, actorID)
	c.JSON(http.StatusOK, updated)
}

func (h *ApartmentHandler) Delete(c *gin.Context) {
	apartmentID := c.Param("id")
	actorID := middleware.GetUserID(c)

	err := h.Store.Mutate(func(doc *models.Document) error {
		idx := -1
		for i := range doc.Apartments {
			if doc.Apartments[i].ID == apartmentID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errApartmentNotFound
		}
		removed := doc.Apartments[idx]
		doc.Apartments = append(doc.Apartments[:idx], doc.Apartments[idx+1:]...)
		services.RecordLog(doc, actorID, "delete", entityApartment, apartmentID, removed, nil)
		return nil
	})
	if err == errApartmentNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Apartment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete apartment"})
		return
	}

	h.WS.BroadcastUpdate(entityApartment, "deleted", apartmentID, actorID)
	c.JSON(http.StatusOK, gin.H{"message": "Apartment deleted"})
}

// Availability serves the per-day booked/available map the calendar view
// renders. Optional query params: start (YYYY-MM-DD) and days.
func (h *ApartmentHandler) Availability(c *gin.Context) {
	apartment, _ := h.visibleApartment(c)
	if apartment == nil {
		return
	}

	windowStart := time.Now().UTC()
	if raw := c.Query("start"); raw != "" {
		parsed, err := services.ParseBookingDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date"})
			return
		}
		windowStart = parsed
	}

	days := services.DefaultWindowDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 366 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 366"})
			return
		}
		days = n
	}

	c.JSON(http.StatusOK, gin.H{
		"apartment_id": apartment.ID,
		"days":         services.ComputeAvailability(apartment.Bookings, windowStart, days),
	})
}

// Status serves the occupancy badge for one apartment. Customer viewers get
// the privacy-filtered form of the next booking.
func (h *ApartmentHandler) Status(c *gin.Context) {
	apartment, user := h.visibleApartment(c)
	if apartment == nil {
		return
	}

	occ := services.Status(*apartment, time.Now().UTC())
	if user.Role == models.RoleCustomer {
		var next *services.CustomerBooking
		if occ.NextBooking != nil {
			filtered := services.ForCustomer(*occ.NextBooking, apartment.Name)
			next = &filtered
		}
		c.JSON(http.StatusOK, gin.H{"status": occ.Status, "next_booking": next})
		return
	}
	c.JSON(http.StatusOK, occ)
}

// GroupStatus serves the dashboard banner over the caller's visible set:
// all booked, some booked or none booked.
func (h *ApartmentHandler) GroupStatus(c *gin.Context) {
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
	c.JSON(http.StatusOK, services.GroupStatus(visible, time.Now().UTC()))
}
