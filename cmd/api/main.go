package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"

	_ "github.com/bagusramadhan/practice-suite-be/docs"
	"github.com/bagusramadhan/practice-suite-be/internal/core/auth"
	"github.com/bagusramadhan/practice-suite-be/internal/core/email"
	"github.com/bagusramadhan/practice-suite-be/internal/core/engine"
	"github.com/bagusramadhan/practice-suite-be/internal/core/retention"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/handlers"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/repositories"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/services"
	"github.com/bagusramadhan/practice-suite-be/internal/shared/config"
	"github.com/bagusramadhan/practice-suite-be/internal/shared/database"
	"github.com/bagusramadhan/practice-suite-be/internal/shared/utils"
)

// @title Practice Suite API
// @version 1.0
// @description Practice management API with workflow automation
// @contact.name API Support
// @contact.email support@practice-suite.app
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Printf("🚀 Starting practice-suite-api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories (use GORM instance)
	workflowRepo := repositories.NewWorkflowRepo(db.GORM)
	taskRepo := repositories.NewTaskRepo(db.GORM)
	clientRepo := repositories.NewClientRepo(db.GORM)
	invoiceRepo := repositories.NewInvoiceRepo(db.GORM)
	accountRepo := repositories.NewAccountRepo(db.GORM)
	userRepo := repositories.NewUserRepo(db.GORM)
	notificationRepo := repositories.NewNotificationRepo(db.GORM)

	// Init email service
	var emailService *email.Service
	if cfg.BrevoAPIKey != "" {
		emailService = email.NewService(email.NewBrevoProvider(cfg.BrevoAPIKey, cfg.EmailFrom, cfg.EmailFromName))
		log.Printf("📧 Using Email provider: %s", emailService.GetProviderName())
	} else {
		log.Printf("⚠️  Email service not configured, send_email actions will be logged only")
	}

	// Init workflow automation engine
	storage := services.NewStorageAdapter(workflowRepo, taskRepo, clientRepo, invoiceRepo, notificationRepo)
	var emailSender engine.EmailSender
	if emailService != nil {
		emailSender = emailService
	}
	registry := engine.NewRegistry(engine.HandlerDeps{
		Email:          emailSender,
		HTTPClient:     &http.Client{},
		WebhookTimeout: time.Duration(cfg.WebhookTimeoutSeconds) * time.Second,
	})
	eng := engine.New(storage, registry, cfg.EngineWorkers)
	eng.Start()
	defer eng.Stop()

	// Init retention sweeper
	sweeper := retention.NewSweeper(workflowRepo, notificationRepo, cfg.ExecutionRetentionDays, cfg.RetentionSweepSchedule)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("❌ Failed to start retention sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Init auth
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	authService := auth.NewService(userRepo, jwtService)

	// Init services
	workflowService := services.NewWorkflowService(workflowRepo, eng)
	taskService := services.NewTaskService(taskRepo, eng)
	clientService := services.NewClientService(clientRepo, eng)
	invoiceService := services.NewInvoiceService(invoiceRepo, clientRepo, eng, cfg.PaymentBaseURL)
	accountService := services.NewAccountService(accountRepo)
	notificationService := services.NewNotificationService(notificationRepo)

	// Init handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService)
	workflowHandler := handlers.NewWorkflowHandler(workflowService)
	taskHandler := handlers.NewTaskHandler(taskService)
	clientHandler := handlers.NewClientHandler(clientService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, clientService)
	accountHandler := handlers.NewAccountHandler(accountService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Practice Suite API",
	})

	// Middleware
	app.Use(cors.New())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Public routes
	app.Get("/health", healthHandler.Check)
	app.Post("/auth/login", authHandler.Login)
	app.Post("/auth/refresh", authHandler.Refresh)

	// Authenticated routes
	api := app.Group("/", auth.Middleware(jwtService))

	api.Get("/auth/me", authHandler.Me)

	// Workflow routes
	api.Post("/workflows", workflowHandler.CreateWorkflow)
	api.Get("/workflows", workflowHandler.ListWorkflows)
	api.Get("/workflows/:id", workflowHandler.GetWorkflow)
	api.Put("/workflows/:id", workflowHandler.UpdateWorkflow)
	api.Delete("/workflows/:id", workflowHandler.DeleteWorkflow)
	api.Post("/workflows/:id/trigger", workflowHandler.TriggerWorkflow)
	api.Get("/workflows/:id/executions", workflowHandler.GetExecutions)

	// Task routes
	api.Post("/tasks", taskHandler.CreateTask)
	api.Get("/tasks", taskHandler.ListTasks)
	api.Get("/tasks/:id", taskHandler.GetTask)
	api.Put("/tasks/:id", taskHandler.UpdateTask)
	api.Delete("/tasks/:id", taskHandler.DeleteTask)

	// Client routes
	api.Post("/clients", clientHandler.CreateClient)
	api.Get("/clients", clientHandler.ListClients)
	api.Get("/clients/:id", clientHandler.GetClient)
	api.Put("/clients/:id", clientHandler.UpdateClient)
	api.Delete("/clients/:id", clientHandler.DeleteClient)

	// Invoice routes
	api.Post("/invoices", invoiceHandler.CreateInvoice)
	api.Get("/invoices", invoiceHandler.ListInvoices)
	api.Get("/invoices/:id", invoiceHandler.GetInvoice)
	api.Post("/invoices/:id/send", invoiceHandler.SendInvoice)
	api.Post("/invoices/:id/pay", invoiceHandler.MarkPaid)
	api.Get("/invoices/:id/pdf", invoiceHandler.ExportPDF)
	api.Get("/invoices/:id/qr", invoiceHandler.PaymentQR)

	// Chart of accounts routes
	api.Post("/accounts", accountHandler.CreateAccount)
	api.Get("/accounts/tree", accountHandler.GetAccountTree)
	api.Put("/accounts/:id/balance", accountHandler.UpdateBalance)
	api.Delete("/accounts/:id", accountHandler.DeleteAccount)

	// Notification routes
	api.Get("/notifications", notificationHandler.ListNotifications)
	api.Post("/notifications/:id/read", notificationHandler.MarkRead)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		_ = app.Shutdown()
	}()

	log.Printf("✅ practice-suite-api running at :%s", cfg.Port)
	log.Printf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server stopped: %v", err)
	}
}
