package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heavensdreams/rental-api/config"
	"github.com/heavensdreams/rental-api/middleware"
	"github.com/heavensdreams/rental-api/models"
	"github.com/heavensdreams/rental-api/services"
	"github.com/heavensdreams/rental-api/utils"
)

type UserHandler struct {
	Store *config.Store
	WS    *WSHandler
}

func (h *UserHandler) List(c *gin.Context) {
	doc, err := h.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read data"})
		return
	}

	users := make([]models.PublicUser, 0, len(doc.Users))
	for _, u := range doc.Users {
		users = append(users, u.Public())
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be admin, normal or customer"})
		return
	}

	actorID := middleware.GetUserID(c)
	user := models.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	err := h.Store.Mutate(func(doc *models.Document) error {
		for _, u := range doc.Users {
			if strings.EqualFold(u.Email, req.Email) {
				return errEmailTaken
			}
		}
		doc.Users = append(doc.Users, user)
		services.RecordLog(doc, actorID, "create", entityUser, user.ID, nil, user.Public())
		return nil
	})
	if err == errEmailTaken {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	h.WS.BroadcastUpdate(entityUser, "created", user.ID, actorID)
	c.JSON(http.StatusCreated, user.Public())
}

func (h *UserHandler) Update(c *gin.Context) {
	userID := c.Param("id")

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role != "" && !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be admin, normal or customer"})
		return
	}

	actorID := middleware.GetUserID(c)
	var updated models.PublicUser

	err := h.Store.Mutate(func(doc *models.Document) error {
		user := doc.UserByID(userID)
		if user == nil {
			return errUserNotFound
		}
		old := user.Public()

		if req.Email != "" {
			for _, u := range doc.Users {
				if u.ID != userID && strings.EqualFold(u.Email, req.Email) {
					return errEmailTaken
				}
			}
			user.Email = req.Email
		}
		if req.Password != "" {
			user.Password = req.Password
		}
		if req.Role != "" {
			user.Role = req.Role
		}
		user.UpdatedAt = time.Now().UTC()
		updated = user.Public()

		services.RecordLog(doc, actorID, "update", entityUser, userID, old, updated)
		return nil
	})
	switch err {
	case nil:
	case errUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	case errEmailTaken:
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	h.WS.BroadcastUpdate(entityUser, "updated", userID, actorID)
	c.JSON(http.StatusOK, updated)
}

// Delete removes the account, its group memberships and every booking the
// user created on any apartment.
func (h *UserHandler) Delete(c *gin.Context) {
	userID := c.Param("id")
	actorID := middleware.GetUserID(c)

	err := h.Store.Mutate(func(doc *models.Document) error {
		idx := -1
		for i := range doc.Users {
			if doc.Users[i].ID == userID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errUserNotFound
		}
		removed := doc.Users[idx].Public()
		doc.Users = append(doc.Users[:idx], doc.Users[idx+1:]...)

		memberships := doc.UserGroups[:0]
		for _, ug := range doc.UserGroups {
			if ug.UserID != userID {
				memberships = append(memberships, ug)
			}
		}
		doc.UserGroups = memberships

		for i := range doc.Apartments {
			kept := doc.Apartments[i].Bookings[:0]
			for _, b := range doc.Apartments[i].Bookings {
				if b.UserID != userID {
					kept = append(kept, b)
				}
			}
			doc.Apartments[i].Bookings = kept
		}

		services.RecordLog(doc, actorID, "delete", entityUser, userID, removed, nil)
		return nil
	})
	if err == errUserNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	h.WS.BroadcastUpdate(entityUser, "deleted", userID, actorID)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	err := h.Store.Mutate(func(doc *models.Document) error {
		user := doc.UserByID(userID)
		if user == nil {
			return errUserNotFound
		}
		if user.Password != req.CurrentPassword {
			return errWrongPassword
		}
		user.Password = req.NewPassword
		user.UpdatedAt = time.Now().UTC()
		services.RecordLog(doc, userID, "change_password", entityUser, userID, nil, nil)
		return nil
	})
	switch err {
	case nil:
		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	case errWrongPassword:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
	case errUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
	}
}

func (h *UserHandler) SetupTOTP(c *gin.Context) {
	userID := middleware.GetUserID(c)
	email := middleware.GetUserEmail(c)

	secret, url, err := utils.GenerateTOTPSecret(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate 2FA secret"})
		return
	}

	err = h.Store.Mutate(func(doc *models.Document) error {
		user := doc.UserByID(userID)
		if user == nil {
			return errUserNotFound
		}
		user.TOTPSecret = secret
		user.TOTPEnabled = false
		services.RecordLog(doc, userID, "setup_2fa", entityUser, userID, nil, nil)
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store 2FA secret"})
		return
	}

	c.JSON(http.StatusOK, models.TOTPSetupResponse{Secret: secret, QRCode: url})
}

func (h *UserHandler) VerifyTOTP(c *gin.Context) {
	var req models.VerifyTOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	err := h.Store.Mutate(func(doc *models.Document) error {
		user := doc.UserByID(userID)
		if user == nil {
			return errUserNotFound
		}
		if user.TOTPSecret == "" || !utils.VerifyTOTP(user.TOTPSecret, req.Code) {
			return errInvalidTOTP
		}
		user.TOTPEnabled = true
		services.RecordLog(doc, userID, "enable_2fa", entityUser, userID, nil, nil)
		return nil
	})
	switch err {
	case nil:
		c.JSON(http.StatusOK, gin.H{"message": "2FA enabled"})
	case errInvalidTOTP:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 2FA code"})
	case errUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable 2FA"})
	}
}

func (h *UserHandler) DisableTOTP(c *gin.Context) {
	userID := middleware.GetUserID(c)
	err := h.Store.Mutate(func(doc *models.Document) error {
		user := doc.UserByID(userID)
		if user == nil {
			return errUserNotFound
		}
		user.TOTPSecret = ""
		user.TOTPEnabled = false
		services.RecordLog(doc, userID, "disable_2fa", entityUser, userID, nil, nil)
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disable 2FA"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "2FA disabled"})
}
