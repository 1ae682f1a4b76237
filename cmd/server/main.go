package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/http/middleware"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/http/routes"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/config"

	_ "github.com/ugonnamorgan8-netizen/marvel/docs"
)

// @title Marvel Driving School API
// @version 1.0
// @description Management API for students, payments, attendance, training logs and documents
// @contact.name API Support
// @contact.email support@marvel-driving.com
// @host localhost:5000
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// Seed initial data
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Seeding failed: %v", err)
	}

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Marvel Driving School API",
		ErrorHandler: middleware.CustomErrorHandler(cfg),
		BodyLimit:    15 * 1024 * 1024,
	})

	// Setup middleware and routes
	middleware.Setup(app, cfg)
	routes.Setup(app, db, cfg)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Server shutdown error: %v", err)
		}
		if err := config.CloseDatabase(); err != nil {
			log.Printf("⚠️ Database close error: %v", err)
		}
	}()

	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
