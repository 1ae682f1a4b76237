package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/http/handlers"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/http/middleware"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
	"github.com/ugonnamorgan8-netizen/marvel/internal/config"
	"github.com/ugonnamorgan8-netizen/marvel/internal/core/services"
)

// Setup wires repositories, services and handlers, and registers all routes
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	studentRepo := repositories.NewStudentRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)
	trainingRepo := repositories.NewTrainingLogRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)

	// External providers
	gateway := services.NewFlutterwaveService(cfg.Flutterwave.SecretKey, cfg.Flutterwave.BaseURL)

	var storage services.FileStorage
	if cfg.Cloudinary.CloudName != "" {
		cloudinaryService, err := services.NewCloudinaryService(
			cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Printf("⚠️ Cloudinary unavailable, document uploads disabled: %v", err)
		} else {
			storage = cloudinaryService
		}
	}

	// Services
	authService := services.NewAuthService(userRepo, studentRepo, cfg)
	studentService := services.NewStudentService(studentRepo)
	paymentService := services.NewPaymentService(paymentRepo, studentRepo, gateway, cfg)
	attendanceService := services.NewAttendanceService(attendanceRepo, studentRepo)
	trainingService := services.NewTrainingService(trainingRepo, studentRepo)
	documentService := services.NewDocumentService(documentRepo, studentRepo, storage)
	dashboardService := services.NewDashboardService(studentRepo, paymentRepo, attendanceRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	studentHandler := handlers.NewStudentHandler(
		studentService, paymentService, attendanceService, trainingService, documentService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, cfg)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	trainingHandler := handlers.NewTrainingHandler(trainingService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	authRequired := middleware.AuthMiddleware(cfg, userRepo, studentRepo)
	authOptional := middleware.OptionalAuth(cfg, userRepo, studentRepo)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
	anyPrincipal := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff, models.RoleViewer)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Get("/health", healthHandler.Check)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/viewer-login", middleware.AuthRateLimiter(), authHandler.ViewerLogin)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authRequired, authHandler.Logout)
	auth.Get("/me", authRequired, authHandler.Me)
	auth.Post("/register", authRequired, adminOnly, authHandler.Register)
	auth.Post("/change-password", authRequired, staffOnly, authHandler.ChangePassword)

	// Student routes
	students := api.Group("/students")
	students.Get("/", authRequired, staffOnly, studentHandler.List)
	students.Post("/", authRequired, staffOnly, studentHandler.Create)
	students.Get("/code/:code", authRequired, anyPrincipal, studentHandler.GetByCode)
	students.Get("/:id", authRequired, anyPrincipal, studentHandler.Get)
	students.Put("/:id", authRequired, staffOnly, studentHandler.Update)
	students.Delete("/:id", authRequired, adminOnly, studentHandler.Delete)

	// Payment routes. Specific paths are registered before /:id so they are
	// not swallowed by the param route.
	payments := api.Group("/payments")
	payments.Get("/verify", authOptional, paymentHandler.Verify)
	payments.Get("/callback", paymentHandler.Callback)
	payments.Post("/webhook", paymentHandler.Webhook)
	payments.Post("/initiate", authRequired, staffOnly, paymentHandler.Initiate)
	payments.Get("/student/:studentId", authRequired, anyPrincipal, paymentHandler.StudentPayments)
	payments.Get("/", authRequired, staffOnly, paymentHandler.List)
	payments.Get("/:id", authRequired, anyPrincipal, paymentHandler.Get)

	// Attendance routes
	attendance := api.Group("/attendance")
	attendance.Get("/", authRequired, staffOnly, attendanceHandler.List)
	attendance.Post("/", authRequired, staffOnly, attendanceHandler.Mark)
	attendance.Post("/bulk", authRequired, staffOnly, attendanceHandler.MarkBulk)
	attendance.Get("/student/:studentId", authRequired, anyPrincipal, attendanceHandler.StudentSummary)
	attendance.Put("/:id", authRequired, staffOnly, attendanceHandler.Update)
	attendance.Delete("/:id", authRequired, staffOnly, attendanceHandler.Delete)

	// Training routes
	training := api.Group("/training")
	training.Post("/", authRequired, staffOnly, trainingHandler.Create)
	training.Get("/student/:studentId/progress", authRequired, anyPrincipal, trainingHandler.Progress)
	training.Get("/student/:studentId", authRequired, anyPrincipal, trainingHandler.ListByStudent)
	training.Get("/:id", authRequired, anyPrincipal, trainingHandler.Get)
	training.Put("/:id", authRequired, staffOnly, trainingHandler.Update)
	training.Delete("/:id", authRequired, staffOnly, trainingHandler.Delete)

	// Document routes
	documents := api.Group("/documents")
	documents.Post("/student/:studentId", authRequired, staffOnly, documentHandler.Upload)
	documents.Get("/student/:studentId", authRequired, anyPrincipal, documentHandler.ListByStudent)
	documents.Get("/:id", authRequired, anyPrincipal, documentHandler.Get)
	documents.Delete("/:id", authRequired, staffOnly, documentHandler.Delete)

	// Dashboard routes
	dashboard := api.Group("/dashboard", authRequired, staffOnly)
	dashboard.Get("/", dashboardHandler.Overview)
	dashboard.Get("/stats", dashboardHandler.Stats)

	// 404 for unmatched routes
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Route not found")
	})
}
