package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Amo12312/accordai/api"
	"github.com/Amo12312/accordai/config"
	"github.com/Amo12312/accordai/database"
	"github.com/Amo12312/accordai/middleware"
	"github.com/Amo12312/accordai/models"
	"github.com/Amo12312/accordai/repository"
	"github.com/Amo12312/accordai/services"
)

func main() {
	// Load application configuration (fails fast on missing provider
	// credential, backup URL or trial policy).
	config.LoadConfig()

	// Initialize database connection
	db, err := database.Init()
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize database: %v", err)
	}
	runMigrations(db)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	log.Println("INFO: [Main] Repositories initialized.")

	// Initialize services
	ledger := services.NewLedgerService(userRepo, services.UsagePolicy{
		MaxTrialMessages:     config.AppConfig.Trial.MaxMessages,
		TrialDurationMinutes: config.AppConfig.Trial.DurationMinutes,
	})
	provider := services.NewRetryingClient(buildProvider())
	backup := services.NewBackupService(config.AppConfig.Backup.DataURL)
	gateway := services.NewGatewayService(ledger, provider, backup, chatRepo)

	jwtService := services.NewJWTService(
		config.AppConfig.JWT.Secret,
		time.Duration(config.AppConfig.JWT.ExpirationHours)*time.Hour,
	)
	authService := services.NewAuthService(userRepo, jwtService)
	paymentService := services.NewStripeService(
		paymentRepo,
		userRepo,
		config.AppConfig.Stripe.SecretKey,
		config.AppConfig.Stripe.PremiumPriceID,
		config.AppConfig.Stripe.SuccessURL,
		config.AppConfig.Stripe.CancelURL,
	)
	extractService := services.NewExtractService(services.NewPlainTextExtractor(), gateway)
	log.Println("INFO: [Main] Services initialized.")

	// Initialize API handler with all dependencies
	apiHandler := api.NewAPIHandler(userRepo, chatRepo, ledger, gateway, authService, paymentService, extractService)
	log.Println("INFO: [Main] API Handler initialized.")

	// Create Gin engine
	r := gin.New()
	r.SetTrustedProxies(nil)

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Cors())
	log.Println("INFO: [Main] Middlewares registered.")

	registerRoutes(r, apiHandler, jwtService, userRepo)
	log.Println("INFO: [Main] Routes registered.")

	serverPort := ":" + config.AppConfig.Server.Port
	log.Printf("INFO: [Main] Starting server on port %s", serverPort)
	if err := r.Run(serverPort); err != nil {
		log.Fatalf("FATAL: [Main] Server failed to start: %v", err)
	}
}

func buildProvider() services.Provider {
	switch config.AppConfig.Provider.Kind {
	case "openai":
		log.Println("INFO: [Main] Using OpenAI-compatible provider.")
		return services.NewOpenAIProvider(config.AppConfig.Provider)
	default:
		log.Println("INFO: [Main] Using Gemini provider.")
		return services.NewGeminiProvider(config.AppConfig.Provider)
	}
}

func runMigrations(db *gorm.DB) {
	log.Println("INFO: [Main] Running database migrations...")
	err := db.AutoMigrate(
		&models.User{},
		&models.ChatExchange{},
		&models.PaymentRecord{},
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to auto-migrate database: %v", err)
	}
	log.Println("INFO: [Main] Database migration completed.")
}

func registerRoutes(r *gin.Engine, handler *api.APIHandler, jwtService services.JWTService, userRepo repository.UserRepository) {
	auth := middleware.Auth(jwtService, userRepo)
	optionalAuth := middleware.OptionalAuth(jwtService, userRepo)

	// API route group; rate limited like the public deployment (100
	// requests per 15 minutes per IP).
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.RateLimit(100, 15*time.Minute))
	{
		apiGroup.GET("/health", handler.HealthHandler)
		apiGroup.GET("/init", handler.InitHandler)

		aiGroup := apiGroup.Group("/ai")
		{
			aiGroup.POST("/chat-anonymous", handler.ChatAnonymousHandler)
			aiGroup.POST("/chat", auth, handler.ChatHandler)
		}

		chatGroup := apiGroup.Group("/chat")
		{
			chatGroup.GET("/trial-status", optionalAuth, handler.TrialStatusHandler)
			chatGroup.GET("/history", auth, handler.HistoryHandler)
			chatGroup.GET("/analytics", auth, handler.AnalyticsHandler)
		}

		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", handler.RegisterHandler)
			authGroup.POST("/login", handler.LoginHandler)
			authGroup.POST("/google", handler.GoogleAuthHandler)
			authGroup.GET("/me", auth, handler.MeHandler)
		}

		paymentGroup := apiGroup.Group("/payment")
		{
			paymentGroup.POST("/create-order", auth, handler.CreateOrderHandler)
			paymentGroup.POST("/verify", auth, handler.VerifyPaymentHandler)
			paymentGroup.GET("/history", auth, handler.PaymentHistoryHandler)
		}

		apiGroup.POST("/upload", optionalAuth, handler.UploadHandler)
	}
}
