package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/cache"
	"github.com/GTDGit/catalog_api/internal/config"
	"github.com/GTDGit/catalog_api/internal/database"
	"github.com/GTDGit/catalog_api/internal/handler"
	"github.com/GTDGit/catalog_api/internal/middleware"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/service"
)

// main is the application entrypoint for the catalog API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("db_driver", cfg.DB.Driver).Msg("starting catalog api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations applied")

	// 3b. Connect to Redis. The service runs without a cache when Redis is
	// not configured or unreachable.
	var (
		catalogCache service.CatalogCache
		redisPinger  handler.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		} else {
			defer redisClient.Close()
			catalogCache = cache.NewCatalogCache(redisClient, cfg.Cache.TTL)
			redisPinger = redisClient
			log.Info().Dur("ttl", cfg.Cache.TTL).Msg("redis connected successfully")
		}
	}

	// 4. Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db)
	attributeRepo := repository.NewAttributeRepository(db)
	productRepo := repository.NewProductRepository(db)

	// 5. Initialize services
	categorySvc := service.NewCategoryService(categoryRepo)
	attributeSvc := service.NewAttributeService(attributeRepo, catalogCache)
	productSvc := service.NewProductService(db, categoryRepo, attributeRepo, productRepo, catalogCache, cfg.Catalog.StrictAttributes)

	// 6. Initialize handlers
	handlers := &handler.Handlers{
		Health:    handler.NewHealthHandler(db, redisPinger),
		Category:  handler.NewCategoryHandler(categorySvc),
		Attribute: handler.NewAttributeHandler(attributeSvc),
		Product:   handler.NewProductHandler(productSvc),
	}

	// 7. Setup router
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSHosts))
	router.Use(middleware.LoggingMiddleware())
	if cfg.WritesPerMinute > 0 {
		router.Use(middleware.NewWriteRateLimiter(ctx, cfg.WritesPerMinute, time.Minute).Handle())
	}
	handler.SetupRoutes(router, handlers)

	// 8. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Bool("strict_attributes", cfg.Catalog.StrictAttributes).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 9. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	// 10. Shutdown HTTP server with timeout; in-flight transactions finish or
	// roll back before the pool closes.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
