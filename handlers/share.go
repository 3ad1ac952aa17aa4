package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/heavensdreams/rental-api/config"
	"github.com/heavensdreams/rental-api/middleware"
	"github.com/heavensdreams/rental-api/models"
	"github.com/heavensdreams/rental-api/services"
	"github.com/heavensdreams/rental-api/utils"
)

type ShareHandler struct {
	Store *config.Store
}

// sharePayload is the content sealed inside a share token.
type sharePayload struct {
	ApartmentIDs []string  `json:"apartment_ids"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type createShareRequest struct {
	ApartmentIDs []string `json:"apartment_ids" binding:"required,min=1"`
	Days         int      `json:"days"`
}

// Create mints an opaque share token for a set of apartments. The public
// endpoint serves sanitized payloads only, so the token grants no access to
// guest data.
func (h *ShareHandler) Create(c *gin.Context) {
	var req createShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	days := req.Days
	if days <= 0 || days > 365 {
		days = 30
	}

	doc, err := h.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read data"})
		return
	}
	for _, id := range req.ApartmentIDs {
		if doc.ApartmentByID(id) == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Apartment not found: " + id})
			return
		}
	}

	payload := sharePayload{
		ApartmentIDs: req.ApartmentIDs,
		ExpiresAt:    time.Now().UTC().AddDate(0, 0, days),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build share token"})
		return
	}
	token, err := utils.EncryptToken(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build share token"})
		return
	}

	shareURL := token
	if base := os.Getenv("FRONTEND_URL"); base != "" {
		shareURL = fmt.Sprintf("%s/share/%s", base, token)
	}

	actorID := middleware.GetUserID(c)
	if err := h.Store.Mutate(func(doc *models.Document) error {
		services.RecordLog(doc, actorID, "share", entityApartment, "", nil, payload)
		return nil
	}); err != nil {
		log.Printf("⚠️ Failed to record share log entry: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"url":        shareURL,
		"expires_at": payload.ExpiresAt,
	})
}

// Get is the public, unauthenticated share view: sanitized apartments with
// privacy-filtered bookings and the same availability map the dashboard
// calendar uses.
func (h *ShareHandler) Get(c *gin.Context) {
	data, err := utils.DecryptToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid share link"})
		return
	}

	var payload sharePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid share link"})
		return
	}
	if time.Now().UTC().After(payload.ExpiresAt) {
		c.JSON(http.StatusGone, gin.H{"error": "Share link expired"})
		return
	}

	doc, err := h.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read data"})
		return
	}

	type sharedApartment struct {
		services.CustomerApartment
		Availability map[string]services.DayStatus `json:"availability"`
	}

	out := make([]sharedApartment, 0, len(payload.ApartmentIDs))
	now := time.Now().UTC()
	for _, id := range payload.ApartmentIDs {
		apartment := doc.ApartmentByID(id)
		if apartment == nil {
			continue // deleted since the link was created
		}
		out = append(out, sharedApartment{
			CustomerApartment: services.ApartmentForCustomer(*apartment),
			Availability:      services.ComputeAvailability(apartment.Bookings, now, services.DefaultWindowDays),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"apartments": out,
		"expires_at": payload.ExpiresAt,
	})
}
