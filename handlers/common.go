package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/heavensdreams/rental-api/middleware"
	"github.com/heavensdreams/rental-api/models"
)

// Entity type tags used in audit log entries.
const (
	entityUser      = "user"
	entityGroup     = "group"
	entityApartment = "apartment"
	entityBooking   = "booking"
	entityPhoto     = "photo"
)

// viewer resolves the authenticated caller inside a document snapshot. The
// token may outlive the account, so a missing user is a real case.
func viewer(doc *models.Document, c *gin.Context) (models.User, bool) {
	u := doc.UserByID(middleware.GetUserID(c))
	if u == nil {
		return models.User{}, false
	}
	return *u, true
}
