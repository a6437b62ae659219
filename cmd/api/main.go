package main

import (
	"log"
	"os"
	"strconv"
	"time"

	_ "tariffengine/api/swagger" // swagger docs
	"tariffengine/internal/cache"
	"tariffengine/internal/database"
	"tariffengine/internal/enrichment"
	"tariffengine/internal/handler"
	"tariffengine/internal/middleware"
	"tariffengine/internal/repository"
	"tariffengine/internal/service"
	"tariffengine/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Tariff Engine API
// @version         1.0
// @description     Multi-stage tariff and landed-cost calculation API with catalogue management.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Rate cache and external enrichment source
	rateCache := cache.NewRateCache(cache.DefaultTTL)

	enrichmentURL := os.Getenv("ENRICHMENT_API_URL")
	if enrichmentURL == "" {
		enrichmentURL = "http://localhost:5000"
	}
	enrichmentTimeout := 2 * time.Minute
	if raw := os.Getenv("ENRICHMENT_TIMEOUT_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			enrichmentTimeout = time.Duration(minutes) * time.Minute
		}
	}
	enricher := enrichment.NewHTTPClient(enrichmentURL, enrichmentTimeout)

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	countryRepo := repository.NewCountryRepository(db)
	productRepo := repository.NewProductRepository(db)
	tariffRateRepo := repository.NewTariffRateRepository(db)
	prefRateRepo := repository.NewPreferentialRateRepository(db)
	agreementRepo := repository.NewTradeAgreementRepository(db)
	additionalDutyRepo := repository.NewAdditionalDutyRepository(db)
	shippingRateRepo := repository.NewShippingRateRepository(db)
	historyRepo := repository.NewSearchHistoryRepository(db)
	txManager := repository.NewTransactionManager(db)

	userService := service.NewUserService(userRepo)
	auditService := service.NewAuditService(db)
	validationService := service.NewValidationService(countryRepo)
	rateResolver := service.NewRateResolver(tariffRateRepo, prefRateRepo, agreementRepo, rateCache, enricher, wsHub, enrichmentTimeout)
	shippingService := service.NewShippingCostService(shippingRateRepo)
	calculatorService := service.NewCalculatorService(validationService, rateResolver, shippingService, countryRepo, additionalDutyRepo, productRepo, historyRepo)
	tariffRateService := service.NewTariffRateCRUDService(tariffRateRepo, countryRepo, auditRepo, rateResolver)
	agreementService := service.NewTradeAgreementService(agreementRepo, prefRateRepo, countryRepo, auditRepo, txManager)
	shippingRateService := service.NewShippingRateService(shippingRateRepo, countryRepo, auditRepo)
	countryService := service.NewCountryService(countryRepo, auditRepo)
	productService := service.NewProductService(productRepo)
	additionalDutyService := service.NewAdditionalDutyService(additionalDutyRepo, countryRepo, auditRepo)
	historyService := service.NewSearchHistoryService(historyRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	auditHandler := handler.NewAuditHandler(auditService)
	tariffHandler := handler.NewTariffHandler(calculatorService, historyService, tariffRateService)
	tariffRateHandler := handler.NewTariffRateHandler(tariffRateService)
	agreementHandler := handler.NewTradeAgreementHandler(agreementService)
	shippingRateHandler := handler.NewShippingRateHandler(shippingRateService)
	countryHandler := handler.NewCountryHandler(countryService)
	productHandler := handler.NewProductHandler(productService)
	additionalDutyHandler := handler.NewAdditionalDutyHandler(additionalDutyService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	tariffHandler.RegisterRoutes(router.Group(""))
	tariffRateHandler.RegisterRoutes(router.Group(""))
	agreementHandler.RegisterRoutes(router.Group(""))
	shippingRateHandler.RegisterRoutes(router.Group(""))
	countryHandler.RegisterRoutes(router.Group(""))
	productHandler.RegisterRoutes(router.Group(""))
	additionalDutyHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
