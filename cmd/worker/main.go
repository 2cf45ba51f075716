// The worker runs the digest on a cron schedule and serves health and
// metrics endpoints. It is the long-running deployment mode; cmd/brief is
// the one-shot equivalent.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"daily-brief/internal/cache"
	"daily-brief/internal/config"
	"daily-brief/internal/domain/entity"
	"daily-brief/internal/infra/fetcher"
	"daily-brief/internal/infra/notifier"
	"daily-brief/internal/infra/scraper"
	"daily-brief/internal/infra/summarizer"
	"daily-brief/internal/infra/worker"
	"daily-brief/internal/observability/logging"
	"daily-brief/internal/resilience/circuitbreaker"
	"daily-brief/internal/usecase/digest"
)

// cachePruneAge is how old cache entries must be before the daily prune
// removes them. Kept well above any sane CacheMaxAge so pruning never
// races the read path.
const cachePruneAge = 7 * 24 * time.Hour

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	workerConfig := worker.LoadConfigFromEnv(logger)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.String("topics_path", workerConfig.TopicsPath),
		slog.Duration("cache_max_age", workerConfig.CacheMaxAge),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	topics, err := config.LoadTopics(workerConfig.TopicsPath)
	if err != nil {
		logger.Error("failed to load topics", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("topics loaded", slog.Int("count", len(topics)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := circuitbreaker.NewRegistry()
	service, articleCache, err := buildService(workerConfig, registry, logger)
	if err != nil {
		logger.Error("failed to build digest service", slog.Any("error", err))
		os.Exit(1)
	}

	healthServer := worker.NewHealthServer(workerConfig.HealthPort, registry, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	startMetricsServer(ctx, workerConfig.MetricsPort, logger)

	if err := runCron(ctx, service, articleCache, topics, workerConfig, healthServer, logger); err != nil {
		logger.Error("worker failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

// buildService wires the digest pipeline from the environment.
func buildService(cfg worker.WorkerConfig, registry *circuitbreaker.Registry, logger *slog.Logger) (*digest.Service, *cache.Cache, error) {
	articleCache, err := cache.New(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}

	sum, err := summarizer.NewFromEnv(logger)
	if err != nil {
		return nil, nil, err
	}

	serviceConfig := digest.DefaultConfig()
	serviceConfig.CacheMaxAge = cfg.CacheMaxAge

	service := digest.NewService(digest.Deps{
		Fetchers:   buildFetchers(logger),
		Scraper:    scraper.New(logger),
		Summarizer: sum,
		Deliverer:  buildDeliverer(logger),
		Cache:      articleCache,
		Breakers:   registry,
		Logger:     logger,
	}, serviceConfig)

	return service, articleCache, nil
}

// buildFetchers assembles the upstream sources available in this
// environment. Google News RSS needs no key and is always on; the keyed
// APIs and the regional feed list join when configured.
func buildFetchers(logger *slog.Logger) []fetcher.Fetcher {
	fetchers := []fetcher.Fetcher{fetcher.NewGoogleRSSFetcher(logger)}

	if key := os.Getenv("NEWSAPI_API_KEY"); key != "" {
		fetchers = append(fetchers, fetcher.NewNewsAPIFetcher(key))
	}
	if key := os.Getenv("GNEWS_API_KEY"); key != "" {
		fetchers = append(fetchers, fetcher.NewGNewsFetcher(key))
	}
	if feeds := parseFeeds(os.Getenv("DIGEST_REGIONAL_FEEDS"), logger); len(feeds) > 0 {
		fetchers = append(fetchers, fetcher.NewFeedListFetcher("regional", feeds, logger))
	}

	names := make([]string, 0, len(fetchers))
	for _, f := range fetchers {
		names = append(names, f.Name())
	}
	logger.Info("fetchers initialized", slog.String("sources", strings.Join(names, ",")))
	return fetchers
}

// parseFeeds parses DIGEST_REGIONAL_FEEDS: comma-separated Name=URL pairs.
func parseFeeds(raw string, logger *slog.Logger) []fetcher.Feed {
	if raw == "" {
		return nil
	}
	var feeds []fetcher.Feed
	for _, pair := range strings.Split(raw, ",") {
		name, url, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" || url == "" {
			logger.Warn("skipping malformed feed entry", slog.String("entry", pair))
			continue
		}
		feeds = append(feeds, fetcher.Feed{Name: name, URL: url})
	}
	return feeds
}

// buildDeliverer selects the WhatsApp gateway when configured, otherwise
// the logging noop so runs still complete end to end.
func buildDeliverer(logger *slog.Logger) notifier.Deliverer {
	gatewayURL := os.Getenv("WHATSAPP_GATEWAY_URL")
	if gatewayURL == "" {
		logger.Warn("WHATSAPP_GATEWAY_URL not set, digests will only be logged")
		return notifier.NewNoopNotifier(logger)
	}
	return notifier.NewWhatsAppNotifier(notifier.WhatsAppConfig{
		GatewayURL: gatewayURL,
		Recipient:  os.Getenv("WHATSAPP_RECIPIENT"),
		APIKey:     os.Getenv("WHATSAPP_API_KEY"),
	}, logger)
}

// runCron blocks until ctx is cancelled, running the digest on schedule
// plus a daily cache prune at 04:00.
func runCron(
	ctx context.Context,
	service *digest.Service,
	articleCache *cache.Cache,
	topics []entity.Topic,
	cfg worker.WorkerConfig,
	healthServer *worker.HealthServer,
	logger *slog.Logger,
) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, cfg.DigestTimeout)
		defer cancel()

		stats, err := service.Run(runCtx, topics)
		if err != nil {
			logger.Error("digest run failed",
				slog.String("run_id", stats.RunID),
				slog.Any("error", err))
			return
		}
		logger.Info("scheduled digest delivered", slog.String("run_id", stats.RunID))
	})
	if err != nil {
		return err
	}

	_, err = c.AddFunc("0 4 * * *", func() {
		if _, err := articleCache.Prune(cachePruneAge); err != nil {
			logger.Warn("cache prune failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	healthServer.SetReady(true)
	logger.Info("cron worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	healthServer.SetReady(false)

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("timed out waiting for running jobs to finish")
	}
	return nil
}
