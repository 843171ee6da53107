package main

import (
	"context"
	"time"

	"github.com/DanYC1503/spyglass/internal/analytics"
	"github.com/DanYC1503/spyglass/internal/collector"
	"github.com/DanYC1503/spyglass/internal/handlers"
	"github.com/DanYC1503/spyglass/internal/metrics"
	"github.com/DanYC1503/spyglass/internal/sentiment"
	"github.com/DanYC1503/spyglass/internal/sources"
	"github.com/DanYC1503/spyglass/internal/store"
	"github.com/DanYC1503/spyglass/internal/wordcloud"
	"github.com/DanYC1503/spyglass/pkg/config"
	"github.com/DanYC1503/spyglass/pkg/llm"
	"github.com/DanYC1503/spyglass/pkg/logging"
	"github.com/DanYC1503/spyglass/pkg/monitoring"
	"github.com/DanYC1503/spyglass/pkg/redis"
	"github.com/DanYC1503/spyglass/pkg/server"
	"github.com/DanYC1503/spyglass/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("spyglass")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Spyglass (Influencer Reputation API)")

	redisAddr := config.RequireEnv("REDIS_ADDR")

	// Connect to Redis
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	redisClient, err := redis.NewClient(connectCtx, redis.Config{
		Addr:     redisAddr,
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetEnvInt("REDIS_DB", 0),
	})
	connectCancel()
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer func() { _ = redisClient.Close() }()

	st := store.New(store.NewRedisKV(redisClient))

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("spyglass", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("spyglass", version.Version, version.GitCommit)

	// Add health checks
	healthChecker.AddCheck("redis", monitoring.RedisHealthCheck(redisClient))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"REDIS_ADDR": redisAddr,
	}))

	serviceMetrics := &metrics.Metrics{
		SourceFetches: metricsCollector.NewCounter("source_fetches_total",
			"Total source fetch attempts", []string{"platform", "status"}),
		CommentsStored: metricsCollector.NewCounter("comments_stored_total",
			"Total comments persisted", []string{"platform"}),
		CacheLookups: metricsCollector.NewCounter("cache_lookups_total",
			"Cache-first lookups by outcome", []string{"platform", "outcome"}),
		Reports: metricsCollector.NewCounter("reports_total",
			"Reputation reports by karma origin", []string{"karma_origin"}),
	}

	// The LLM is optional: without it sentiment degrades to neutral and
	// karma falls back to the deterministic formula. Keep the base service
	// running either way.
	var provider llm.Provider
	if llmCfg := llm.LoadConfig(); llmCfg.APIKey != "" || llmCfg.Provider == "ollama" {
		provider, err = llm.NewProvider(llmCfg)
		if err != nil {
			logger.WithError(err).Warn("LLM provider not configured; sentiment and karma will degrade")
			provider = nil
		}
	} else {
		logger.Warn("LLM_API_KEY unset; sentiment and karma will degrade")
	}

	adapters := []sources.Adapter{
		sources.NewRedditAdapter(config.GetEnv("REDDIT_API_URL", "")),
		sources.NewTikTokAdapter(config.GetEnv("TIKTOK_SCRAPER_URL", "")),
		sources.NewFacebookAdapter(config.GetEnv("FACEBOOK_SCRAPER_URL", "")),
	}

	var renderer analytics.WordCloudRenderer
	if wcURL := config.GetEnv("WORDCLOUD_API_URL", ""); wcURL != "" {
		renderer = wordcloud.New(wcURL)
	} else {
		logger.Info("WORDCLOUD_API_URL unset; reports will omit word clouds")
	}

	classifier := sentiment.New(provider, logger)
	coll := collector.New(st, classifier, adapters, logger, serviceMetrics)
	analyzer := analytics.New(st, provider, renderer, logger, serviceMetrics)

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "spyglass", healthChecker, metricsCollector)
	handlers.New(coll, analyzer, st, logger).RegisterRoutes(router)

	// Start HTTP server with graceful shutdown
	serverConfig := server.DefaultConfig("spyglass", "9090")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
