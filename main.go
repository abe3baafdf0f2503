package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/productscraper/api"
	"sjsage522/productscraper/config"
	"sjsage522/productscraper/helpers"
	"sjsage522/productscraper/internal/scraper"
	"sjsage522/productscraper/logger"
	"sjsage522/productscraper/services/cache"
	"sjsage522/productscraper/services/publisher"
	"sjsage522/productscraper/services/store"
	"sjsage522/productscraper/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("config", cfg.String()).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	fetcher := helpers.NewHTTPFetcher(nil, cfg.FetchTimeout, cfg.UserAgent, cfg.AcceptLanguage)
	productScraper, err := scraper.NewFromRules(fetcher, cfg.RulesDir, thresholds(cfg),
		scraper.WithCache(services.Cache, cfg.RateLimitBlockTime))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load extraction rules")
	}

	log.Info().
		Interface("platforms", productScraper.Platforms()).
		Msg("Loaded extraction rules")

	w := worker.NewWorker(productScraper, services.Store, services.Publisher, worker.Options{
		MaxConcurrent:    cfg.MaxConcurrentFetches,
		FetchesPerSecond: cfg.FetchesPerSecond,
	})
	go w.StartStreamTrimmer(ctx, cfg.StreamTrimInterval)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewRouter(api.NewHandlers(services.Store, w), cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("Starting HTTP server")
		serverDone <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server exited with error")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

func thresholds(cfg *config.Config) scraper.Thresholds {
	return scraper.Thresholds{
		MinPrice:             cfg.MinPrice,
		MaxPrice:             cfg.MaxPrice,
		MinTitleLength:       cfg.MinTitleLength,
		MinDescriptionLength: cfg.MinDescriptionLength,
	}
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Store     store.Store

	closers []func()
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// initializeServices initializes all required services. Optional backends
// fall back to in-process implementations when not configured.
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}
	log := logger.Default

	// Initialize cache service
	if cfg.MemcacheAddr != "" {
		memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := memcacheService.Ping(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache is not reachable yet")
		}
		services.Cache = memcacheService
		logger.Info("Using Memcache at %s for rate limit cooldowns", cfg.MemcacheAddr)
	} else {
		services.Cache = cache.NewMemoryCache()
		logger.Info("Using in-memory rate limit cooldowns")
	}

	// Initialize publisher
	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(ctx, publisher.RedisOptions{
			Addr:            cfg.RedisAddr,
			DB:              cfg.RedisDB,
			StreamPrefix:    cfg.RedisStream,
			StreamCount:     cfg.RedisStreamCount,
			StreamMaxLength: cfg.RedisStreamMaxLength,
		})
		if err := redisPublisher.Ping(); err != nil {
			redisPublisher.Close()
			return nil, err
		}
		services.Publisher = redisPublisher
		services.closers = append(services.closers, func() { _ = redisPublisher.Close() })

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	// Initialize store
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			services.Cleanup()
			return nil, err
		}
		services.closers = append(services.closers, pgStore.Close)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			services.Cleanup()
			return nil, err
		}
		services.Store = pgStore
		logger.Info("Connected to PostgreSQL")
	} else {
		services.Store = store.NewMemoryStore()
		logger.Info("Using in-memory product store")
	}

	return services, nil
}
