package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/heavensdreams/rental-api/config"
	"github.com/heavensdreams/rental-api/models"
	"github.com/heavensdreams/rental-api/services"
	"github.com/heavensdreams/rental-api/utils"
)

type AuthHandler struct {
	Store *config.Store
}

// Login checks credentials against the document and mints an access token.
// Passwords are compared as stored, matching the behavior of the original
// dashboard this backend replaces.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read data"})
		return
	}

	var user *models.User
	for i := range doc.Users {
		if strings.EqualFold(doc.Users[i].Email, req.Email) {
			user = &doc.Users[i]
			break
		}
	}

	if user == nil || user.Password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "2FA code required", "requires_2fa": true})
			return
		}
		if !utils.VerifyTOTP(user.TOTPSecret, req.TOTPCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
			return
		}
	}

	token, err := utils.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	userID := user.ID
	if err := h.Store.Mutate(func(doc *models.Document) error {
		services.RecordLog(doc, userID, "login", entityUser, userID, nil, nil)
		return nil
	}); err != nil {
		log.Printf("⚠️ Failed to record login log entry: %v", err)
	}

	utils.SafeLogf("🔑 Login: %s", utils.MaskEmail(user.Email))

	c.JSON(http.StatusOK, models.AuthResponse{
		Token: token,
		User:  user.Public(),
	})
}

// Me returns the authenticated caller's own account.
func (h *AuthHandler) Me(c *gin.Context) {
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

	c.JSON(http.StatusOK, user.Public())
}
