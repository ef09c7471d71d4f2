// cmd/churn-server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"churn-analytics/internal/api"
	"churn-analytics/internal/campaign"
	"churn-analytics/internal/common/config"
	"churn-analytics/internal/common/database"
	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/common/observability"
	"churn-analytics/internal/ingest"
	"churn-analytics/internal/prediction"
	"churn-analytics/internal/stats"
	"churn-analytics/internal/store"
)

const (
	connectAttempts  = 5
	connectBaseDelay = 2 * time.Second
	shutdownTimeout  = 10 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to a config file, overrides the default search paths")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("Starting churn analytics service", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres is mandatory; everything else degrades.
	var pg *database.PostgresClient
	err = connectWithRetry(ctx, log, "postgres", func() error {
		var connErr error
		pg, connErr = database.NewPostgres(cfg.Database.Postgres)
		return connErr
	})
	if err != nil {
		log.WithError(err).Error("Could not connect to PostgreSQL", nil)
		os.Exit(1)
	}
	defer pg.Close()

	var redisClient *database.RedisClient
	err = connectWithRetry(ctx, log, "redis", func() error {
		var connErr error
		redisClient, connErr = database.NewRedis(cfg.Database.Redis)
		return connErr
	})
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, statistics will be computed on every request", nil)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var esClient *database.ElasticsearchClient
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		err = connectWithRetry(ctx, log, "elasticsearch", func() error {
			var connErr error
			esClient, connErr = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if connErr != nil {
				return connErr
			}
			return esClient.Ping()
		})
		if err != nil {
			log.WithError(err).Warn("Elasticsearch unavailable, search falls back to direct queries", nil)
			esClient = nil
		}
	}

	customers := store.NewCustomerStore(pg.DB, log)
	predictions := store.NewPredictionHistoryStore(pg.DB, log)
	campaigns := store.NewCampaignStore(pg.DB, log)

	var statsCache stats.Cache
	var invalidator prediction.StatsInvalidator
	if redisClient != nil {
		cache := store.NewStatsCache(redisClient.Client, time.Duration(cfg.Cache.StatisticsTTL)*time.Second, log)
		statsCache = cache
		invalidator = cache
	}

	var indexer ingest.SearchIndexer
	var searcher api.Searcher
	if esClient != nil {
		index := store.NewCustomerSearchIndex(esClient.Client, cfg.Search.IndexName, log)
		indexer = index
		searcher = index
	}

	classifier := buildClassifier(cfg, log)
	generator := buildGenerator(cfg, log)

	pipeline := ingest.NewPipeline(customers, indexer, log)
	predictor := prediction.NewPredictor(customers, predictions, classifier, invalidator, log)
	statistics := stats.NewService(customers, statsCache, log)
	campaignSvc := campaign.NewService(campaigns, customers, generator, log)

	server := api.NewServer(pipeline, customers, predictor, predictions, statistics, campaignSvc, searcher, obs, log)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/debug/pprof/", pprof.Index)
	metricsMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	metricsMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	metricsServer := &http.Server{
		Addr:    cfg.Server.MetricsAddress,
		Handler: metricsMux,
	}

	go func() {
		log.Info("Metrics server listening", map[string]interface{}{"address": metricsServer.Addr})
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Metrics server failed", nil)
		}
	}()

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": httpServer.Addr})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP server failed", nil)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed", nil)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Metrics server shutdown failed", nil)
	}
	log.Info("Service stopped", nil)
}

// buildClassifier returns nil when the classifier endpoint is not
// configured. A nil classifier makes the predictor score with rules only.
func buildClassifier(cfg *config.Config, log logger.Logger) prediction.RiskClassifier {
	if cfg.Classifier.BaseURL == "" || cfg.Classifier.APIKey == "" {
		log.Warn("Classifier endpoint not configured, using rule-based scoring", nil)
		return nil
	}
	classifier, err := prediction.NewHTTPClassifier(&cfg.Classifier, log)
	if err != nil {
		log.WithError(err).Warn("Classifier setup failed, using rule-based scoring", nil)
		return nil
	}
	return classifier
}

func buildGenerator(cfg *config.Config, log logger.Logger) campaign.RecommendationGenerator {
	if cfg.Classifier.BaseURL == "" || cfg.Classifier.APIKey == "" {
		return nil
	}
	generator, err := campaign.NewHTTPGenerator(&cfg.Classifier, log)
	if err != nil {
		log.WithError(err).Warn("Generator setup failed, using canned recommendations", nil)
		return nil
	}
	return generator
}

// connectWithRetry retries a connection with linear backoff. Dependency
// containers often come up after the service in local compose setups.
func connectWithRetry(ctx context.Context, log logger.Logger, name string, connect func() error) error {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = connect(); err == nil {
			log.Info("Connected", map[string]interface{}{"dependency": name, "attempt": attempt})
			return nil
		}
		log.WithError(err).Warn("Connection attempt failed", map[string]interface{}{
			"dependency": name,
			"attempt":    attempt,
		})
		if attempt == connectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * connectBaseDelay):
		}
	}
	return err
}
