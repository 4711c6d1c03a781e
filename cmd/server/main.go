package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "bizsense/internal/adapters/web"
	"bizsense/internal/ai"
	"bizsense/internal/app"
	"bizsense/internal/cache"
	"bizsense/internal/core"
	"bizsense/internal/db"
	"bizsense/internal/forecast"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	var forecastCache core.ForecastCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c, err := cache.New(ctx, redisURL)
		if err != nil {
			log.Printf("Warning: redis unavailable, forecasts uncached: %v", err)
		} else {
			defer c.Close()
			forecastCache = c
		}
	}

	modelServerURL := os.Getenv("MODEL_SERVER_URL")
	if modelServerURL == "" {
		modelServerURL = "http://localhost:8060"
	}
	predictor := forecast.NewClient(modelServerURL)

	var scanner ai.ReceiptScanner
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set, receipt scanning disabled")
	} else {
		scanner = ai.NewScanner(apiKey)
	}

	kinds := core.DefaultKinds()
	poster := core.NewTransactionPoster(pool, kinds)
	accountService := core.NewAccountService(pool)
	categoryService := core.NewCategoryService(pool)
	journalService := core.NewJournalService(pool)
	inventoryService := core.NewInventoryService(pool)
	partyService := core.NewPartyService(pool)
	invoiceService := core.NewInvoiceService(pool)
	purchaseService := core.NewPurchaseInvoiceService(pool)
	paymentService := core.NewPaymentService(pool)
	reportingService := core.NewReportingService(pool)
	forecastService := core.NewForecastService(pool, predictor, forecastCache)
	userService := core.NewUserService(pool)

	svc := app.NewAppService(poster, accountService, categoryService, journalService,
		inventoryService, partyService, invoiceService, purchaseService, paymentService,
		reportingService, forecastService, userService, scanner, forecastCache)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
