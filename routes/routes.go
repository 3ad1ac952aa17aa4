package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/heavensdreams/rental-api/config"
	"github.com/heavensdreams/rental-api/handlers"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, store *config.Store) {
	authHandler := &handlers.AuthHandler{Store: store}

	rg.POST("/auth/login", authHandler.Login)
}

// SetupSessionRoutes sets up protected routes about the caller's own account.
func SetupSessionRoutes(rg *gin.RouterGroup, store *config.Store) {
	authHandler := &handlers.AuthHandler{Store: store}
	userHandler := &handlers.UserHandler{Store: store}

	rg.GET("/auth/me", authHandler.Me)
	rg.POST("/user/password", userHandler.ChangePassword)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
}

// SetupApartmentRoutes sets up protected apartment, availability and photo
// routes.
func SetupApartmentRoutes(rg *gin.RouterGroup, store *config.Store, ws *handlers.WSHandler, uploadDir string) {
	h := &handlers.ApartmentHandler{Store: store, WS: ws}
	photos := &handlers.PhotoHandler{Store: store, WS: ws, Dir: uploadDir}

	rg.GET("/apartments", h.List)
	rg.POST("/apartments", h.Create)
	rg.GET("/apartments/status", h.GroupStatus)
	rg.GET("/apartments/:id", h.Get)
	rg.PUT("/apartments/:id", h.Update)
	rg.DELETE("/apartments/:id", h.Delete)

	rg.GET("/apartments/:id/availability", h.Availability)
	rg.GET("/apartments/:id/status", h.Status)

	rg.POST("/apartments/:id/photos", photos.Upload)
	rg.DELETE("/apartments/:id/photos/:photo_id", photos.Delete)
}

// SetupBookingRoutes sets up protected booking routes.
func SetupBookingRoutes(rg *gin.RouterGroup, store *config.Store, ws *handlers.WSHandler) {
	h := &handlers.BookingHandler{Store: store, WS: ws}

	rg.GET("/bookings", h.List)
	rg.POST("/bookings", h.Create)
	rg.PUT("/bookings/:id", h.Update)
	rg.DELETE("/bookings/:id", h.Delete)
}

// SetupUserRoutes sets up protected user management routes.
func SetupUserRoutes(rg *gin.RouterGroup, store *config.Store, ws *handlers.WSHandler) {
	h := &handlers.UserHandler{Store: store, WS: ws}

	rg.GET("/users", h.List)
	rg.POST("/users", h.Create)
	rg.PUT("/users/:id", h.Update)
	rg.DELETE("/users/:id", h.Delete)
}

// SetupGroupRoutes sets up protected group and membership routes.
func SetupGroupRoutes(rg *gin.RouterGroup, store *config.Store, ws *handlers.WSHandler) {
	h := &handlers.GroupHandler{Store: store, WS: ws}

	rg.GET("/groups", h.List)
	rg.POST("/groups", h.Create)
	rg.PUT("/groups/:id", h.Update)
	rg.DELETE("/groups/:id", h.Delete)
	rg.PUT("/groups/:id/members", h.AddMember)
	rg.DELETE("/groups/:id/members/:user_id", h.RemoveMember)
}

// SetupLogRoutes sets up the protected audit log route.
func SetupLogRoutes(rg *gin.RouterGroup, store *config.Store) {
	h := &handlers.LogHandler{Store: store}

	rg.GET("/logs", h.List)
}

// SetupShareRoutes wires the public read-only share view and the protected
// token mint.
func SetupShareRoutes(public, protected *gin.RouterGroup, store *config.Store) {
	h := &handlers.ShareHandler{Store: store}

	public.GET("/share/:token", h.Get)
	protected.POST("/share", h.Create)
}
