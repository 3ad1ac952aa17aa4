package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/heavensdreams/rental-api/config"
	"github.com/heavensdreams/rental-api/handlers"
	"github.com/heavensdreams/rental-api/middleware"
	"github.com/heavensdreams/rental-api/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dataFile := os.Getenv("DATA_FILE")
	if dataFile == "" {
		dataFile = "data/rental.json"
	}

	store, err := config.OpenStore(dataFile)
	if err != nil {
		log.Fatal("Failed to open data file:", err)
	}
	log.Printf("✅ Data file loaded: %s", dataFile)

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	go scheduleBackups(store)

	wsHandler := handlers.NewWSHandler()

	router := gin.Default()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	corsConfig := cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		log.Printf("📨 %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
		c.Next()
		log.Printf("✅ %s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	})

	router.Use(middleware.RateLimiter())

	router.Static("/uploads", uploadDir)

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, store)
		v1.GET("/ws/dashboard", wsHandler.HandleWS)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.SetupSessionRoutes(protected, store)
			routes.SetupApartmentRoutes(protected, store, wsHandler, uploadDir)
			routes.SetupBookingRoutes(protected, store, wsHandler)
			routes.SetupUserRoutes(protected, store, wsHandler)
			routes.SetupGroupRoutes(protected, store, wsHandler)
			routes.SetupLogRoutes(protected, store)
			routes.SetupShareRoutes(v1, protected, store)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server starting on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// scheduleBackups copies the data file to a dated backup once a day. The
// document is the only state there is, so this is the whole disaster story.
func scheduleBackups(store *config.Store) {
	backupDir := os.Getenv("BACKUP_DIR")
	if backupDir == "" {
		backupDir = "data/backups"
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	backupOnce(store, backupDir)
	for range ticker.C {
		backupOnce(store, backupDir)
	}
}

func backupOnce(store *config.Store, dir string) {
	name := time.Now().UTC().Format("2006-01-02") + ".json"
	if err := store.BackupTo(filepath.Join(dir, name)); err != nil {
		log.Printf("❌ Backup failed: %v", err)
		return
	}
	log.Printf("💾 Data file backed up to %s", filepath.Join(dir, name))
}
