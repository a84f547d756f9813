package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"veritas/ranking-service/internal/client"
	"veritas/ranking-service/internal/handler"
	"veritas/ranking-service/internal/moderation"
	"veritas/ranking-service/internal/ratelimit"
	"veritas/ranking-service/internal/repository"
	"veritas/ranking-service/internal/service"
	"veritas/ranking-service/pkg/db"
	"veritas/ranking-service/pkg/helpers"
	"veritas/ranking-service/pkg/logger"
	"veritas/ranking-service/pkg/metrics"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Initialize logger
	log := logger.NewLogger("ranking-service")
	log.Info("Starting Ranking Service...")

	// Initialize database connection; an unreachable store is fatal, the
	// engine never fabricates scores without it
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "3306"))
	conn, err := db.NewConnection(db.Config{
		Host:     getEnv("DB_HOST", "mysql"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "veritas_user"),
		Password: getEnv("DB_PASSWORD", "veritas_password"),
		Database: getEnv("DB_DATABASE", "veritas_db"),
	})
	if err != nil {
		log.WithField("error", err.Error()).Fatal("Failed to connect to database")
	}
	defer conn.Close()
	log.Info("Database connected")

	// Rate limit store: Redis when configured, otherwise a per-process
	// store that is advisory only under multi-process deployment
	var limiterStore ratelimit.Store
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: getEnv("REDIS_PASSWORD", ""),
		})
		limiterStore = ratelimit.NewRedisStore(redisClient)
		log.WithField("addr", redisAddr).Info("Rate limiter using Redis store")
	} else {
		limiterStore = ratelimit.NewMemoryStore()
		log.Warn("REDIS_ADDR not set, rate limits are per-process and advisory only")
	}

	// Initialize metrics
	serviceMetrics := metrics.NewMetrics("ranking")

	// Initialize repositories
	eventRepo := repository.NewEventRepository(conn.DB)
	statsRepo := repository.NewUserStatsRepository(conn.DB)
	voteRepo := repository.NewVoteRepository(conn.DB)
	sourceTrustRepo := repository.NewSourceTrustRepository(conn.DB)
	reviewRepo := repository.NewReviewQueueRepository(conn.DB)

	// Initialize external clients
	providerTimeout := durationEnv("PROVIDER_TIMEOUT", 10*time.Second)
	var providers []service.EvidenceProvider
	if newsURL := os.Getenv("NEWS_API_URL"); newsURL != "" {
		providers = append(providers,
			client.NewEvidenceClient("newsapi", newsURL, os.Getenv("NEWS_API_KEY"), providerTimeout))
	}
	if searchURL := os.Getenv("EVIDENCE_SEARCH_URL"); searchURL != "" {
		providers = append(providers,
			client.NewEvidenceClient("evidence-search", searchURL, os.Getenv("EVIDENCE_SEARCH_KEY"), providerTimeout))
	}
	reasoner := client.NewReasonerClient(
		getEnv("REASONER_URL", "http://reasoner"),
		os.Getenv("REASONER_API_KEY"),
		durationEnv("REASONER_TIMEOUT", 30*time.Second),
	)

	// Initialize services
	limiter := ratelimit.NewLimiter(limiterStore, log, serviceMetrics)
	moderator := moderation.NewModerator()
	idGen := helpers.NewIDGenerator()
	trustService := service.NewTrustService(statsRepo, log)
	rankService := service.NewRankService()
	engagementService := service.NewEngagementService(
		eventRepo, reviewRepo, moderator, limiter, trustService, rankService, idGen, log, serviceMetrics)
	voteService := service.NewVoteService(
		voteRepo, eventRepo, statsRepo, trustService, limiter, engagementService, log, serviceMetrics)
	factCheckService := service.NewFactCheckService(
		providers, reasoner, sourceTrustRepo, eventRepo, log, serviceMetrics, providerTimeout)
	sweepService := service.NewSweepService(
		statsRepo, eventRepo, trustService, rankService, log, serviceMetrics)

	// Initialize HTTP handler
	apiHandler := handler.NewAPIHandler(voteService, engagementService, factCheckService, eventRepo, idGen, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Periodic sweeps repair drift in the derived fields
	go runSweeps(ctx, sweepService, log,
		durationEnv("TRUST_SWEEP_INTERVAL", 3*time.Hour),
		durationEnv("RANK_SWEEP_INTERVAL", time.Hour))

	// Serve the API
	apiPort := getEnv("API_PORT", "8080")
	apiServer := &http.Server{
		Addr:    ":" + apiPort,
		Handler: apiHandler.Router(),
	}
	go func() {
		log.WithField("port", apiPort).Info("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err.Error()).Fatal("API server failed")
		}
	}()

	// Serve metrics
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsServer := &http.Server{
		Addr:    ":" + metricsPort,
		Handler: promhttp.Handler(),
	}
	go func() {
		log.WithField("port", metricsPort).Info("Metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err.Error()).Error("Metrics server failed")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)
}

func runSweeps(ctx context.Context, sweeps service.SweepService, log *logger.Logger, trustInterval, rankInterval time.Duration) {
	trustTicker := time.NewTicker(trustInterval)
	rankTicker := time.NewTicker(rankInterval)
	defer trustTicker.Stop()
	defer rankTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-trustTicker.C:
			if _, err := sweeps.TrustSweep(ctx); err != nil {
				log.WithField("error", err.Error()).Error("Trust sweep failed")
			}
		case <-rankTicker.C:
			if _, err := sweeps.RankSweep(ctx); err != nil {
				log.WithField("error", err.Error()).Error("Rank sweep failed")
			}
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
