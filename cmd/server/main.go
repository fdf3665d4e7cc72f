package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/velopark/parking-admin/internal/config"     // Internal config loader
	"github.com/velopark/parking-admin/internal/database"   // MySQL connection pool
	"github.com/velopark/parking-admin/internal/handler"    // HTTP handlers
	"github.com/velopark/parking-admin/internal/middleware" // Rate limiting and response cache
	"github.com/velopark/parking-admin/internal/queue"      // Background event consumer
	"github.com/velopark/parking-admin/internal/repository" // Data access layer
	"github.com/velopark/parking-admin/internal/router"     // Route registration
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName) // Open MySQL pool
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the server runs with caching and rate
	// limiting disabled.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	facilities := repository.NewFacilityRepo(db)
	sections := repository.NewSectionRepo(db)
	bikeTypes := repository.NewBikeTypeRepo(db)
	tariffs := repository.NewTariffRepo(db)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	adminH := handler.NewAdminHandler(facilities, sections, bikeTypes, tariffs, rdb, cacheCfg)

	e := echo.New() // Create Echo instance

	if rdb != nil && rlCfg.Enabled { // Rate limit every request when Redis is up
		e.Use(middleware.RateLimit(rlCfg, rdb))
	}
	var cacheMW echo.MiddlewareFunc
	if rdb != nil && cacheCfg.Enabled { // Cache selected GET responses when Redis is up
		cacheMW = middleware.ResponseCache(cacheCfg, rdb)
	}

	router.RegisterRoutes(e)                           // Health check
	router.RegisterAuth(e, authH, cfg.JWTSecret)       // Auth endpoints
	router.RegisterAdmin(e, adminH, cfg.JWTSecret, cacheMW) // Back-office endpoints

	// Consume saved-tariff events in the background; the consumer keeps its
	// own reconnect loop and never takes the server down.
	go func() {
		if err := queue.StartTariffConsumer(); err != nil {
			log.Printf("tariff consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
