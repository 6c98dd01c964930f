package main // Entry point package

import (
	"context"
	"log" // Logging library
	"time"

	"github.com/joho/godotenv"    // Loads .env files for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/magehall/mission-tracker/internal/config"     // Internal config loader
	"github.com/magehall/mission-tracker/internal/database"   // MySQL connection pool
	"github.com/magehall/mission-tracker/internal/handler"    // HTTP handlers
	"github.com/magehall/mission-tracker/internal/mage"       // Fantasy description generator
	"github.com/magehall/mission-tracker/internal/middleware" // CORS, JWT, cache, rate limit
	"github.com/magehall/mission-tracker/internal/queue"      // Progress event consumer
	"github.com/magehall/mission-tracker/internal/repository" // Data access layer
	"github.com/magehall/mission-tracker/internal/router"     // Internal router setup
	"github.com/magehall/mission-tracker/internal/service"    // XP ledger and reward assignment
	"github.com/magehall/mission-tracker/internal/worker"     // Scheduled expiration sweep
)

func main() {
	// .env is optional; in deployed environments configuration comes
	// from real environment variables.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config
	ctx := context.Background()

	// Resolve credentials from the secret store. Local runs bypass it
	// entirely through DB_USER/DB_PASS and MAGE_API_KEY overrides.
	secrets, err := config.NewSecretStore(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("secret store: %v", err)
	}
	dbCreds, err := secrets.DBCredentials(ctx, cfg.DBSecretName)
	if err != nil {
		log.Fatalf("db credentials: %v", err)
	}
	mageCreds, err := secrets.MageCredentials(ctx, cfg.MageSecret)
	if err != nil {
		log.Fatalf("mage credentials: %v", err)
	}

	db, err := database.Open(database.Config{
		User:            dbCreds.Username,
		Password:        dbCreds.Password,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeMin) * time.Minute,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories share the single pool; the ledger opens its own
	// transactions on it.
	userRepo := repository.NewUserRepo(db)
	missionRepo := repository.NewMissionRepo(db)
	rewardRepo := repository.NewRewardRepo(db)

	ledger := service.NewXPLedger(userRepo, missionRepo, service.LedgerConfig{
		DeltaMin:       cfg.XPDeltaMin,
		DeltaMax:       cfg.XPDeltaMax,
		LimitIncrement: cfg.XPLimitIncrement,
		LevelCap:       cfg.LevelCap,
	})
	assigner := service.NewRewardAssigner(rewardRepo, cfg.MaxRewardID)

	var mageClient *mage.Client
	if mageCreds.APIKey != "" {
		mageClient = mage.New(mageCreds.APIKey)
	}

	missionHandler := handler.NewMissionHandler(missionRepo, userRepo, mageClient, cfg.SearchPageSize)
	completionHandler := handler.NewCompletionHandler(ledger, assigner)
	profileHandler := handler.NewProfileHandler(userRepo, rewardRepo)
	userHandler := handler.NewUserHandler(userRepo)

	e := echo.New()
	e.Use(middleware.CORS())

	// Redis backs the response cache and the rate limiter. A nil
	// client simply disables both; the API keeps working without it.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	browseCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// JWT verification is applied only when a secret is configured;
	// tokens are issued by the external identity provider.
	var protected []echo.MiddlewareFunc
	if cfg.JWTSecret != "" {
		protected = append(protected, middleware.JWTAuth(cfg.JWTSecret))
	}

	router.RegisterRoutes(e) // Register application routes
	router.RegisterMissionRoutes(e, missionHandler, completionHandler, browseCache, protected...)
	router.RegisterProfileRoutes(e, profileHandler, protected...)
	router.RegisterUserRoutes(e, userHandler, protected...)

	// Background consumer mirrors completion events into the progress
	// log. It reconnects on its own; a missing broker is not fatal.
	go func() {
		if err := queue.StartProgressConsumer(); err != nil {
			log.Printf("progress consumer stopped: %v", err)
		}
	}()

	// Periodic sweep fails missions whose due date has passed.
	sched, err := worker.StartExpirationSweep(missionRepo, time.Duration(cfg.SweepIntervalMin)*time.Minute)
	if err != nil {
		log.Fatalf("expiration sweep: %v", err)
	}
	defer func() { _ = sched.Shutdown() }()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
