// Brief runs one digest from the command line.
//
// Usage:
//
//	brief             run the digest and deliver it
//	brief --dry-run   run the digest but only log the result
//	brief --health    print the circuit status snapshot and exit
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily-brief/internal/cache"
	"daily-brief/internal/config"
	"daily-brief/internal/infra/fetcher"
	"daily-brief/internal/infra/notifier"
	"daily-brief/internal/infra/scraper"
	"daily-brief/internal/infra/summarizer"
	"daily-brief/internal/infra/worker"
	"daily-brief/internal/observability/logging"
	"daily-brief/internal/resilience/circuitbreaker"
	"daily-brief/internal/usecase/digest"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "run the pipeline but log the digest instead of sending it")
	health := flag.Bool("health", false, "print circuit breaker status as JSON and exit")
	flag.Parse()

	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	if err := run(*dryRun, *health, logger); err != nil {
		logger.Error("brief failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(dryRun, health bool, logger *slog.Logger) error {
	workerConfig := worker.LoadConfigFromEnv(logger)

	if health {
		return printCircuits(workerConfig.HealthPort)
	}

	registry := circuitbreaker.NewRegistry()

	topics, err := config.LoadTopics(workerConfig.TopicsPath)
	if err != nil {
		return fmt.Errorf("load topics: %w", err)
	}

	articleCache, err := cache.New(workerConfig.CacheDir)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	sum, err := summarizer.NewFromEnv(logger)
	if err != nil {
		return err
	}

	var deliverer notifier.Deliverer
	if dryRun {
		deliverer = notifier.NewNoopNotifier(logger)
	} else {
		gatewayURL := os.Getenv("WHATSAPP_GATEWAY_URL")
		if gatewayURL == "" {
			return fmt.Errorf("WHATSAPP_GATEWAY_URL is not set (use --dry-run to skip delivery)")
		}
		deliverer = notifier.NewWhatsAppNotifier(notifier.WhatsAppConfig{
			GatewayURL: gatewayURL,
			Recipient:  os.Getenv("WHATSAPP_RECIPIENT"),
			APIKey:     os.Getenv("WHATSAPP_API_KEY"),
		}, logger)
	}

	fetchers := []fetcher.Fetcher{fetcher.NewGoogleRSSFetcher(logger)}
	if key := os.Getenv("NEWSAPI_API_KEY"); key != "" {
		fetchers = append(fetchers, fetcher.NewNewsAPIFetcher(key))
	}
	if key := os.Getenv("GNEWS_API_KEY"); key != "" {
		fetchers = append(fetchers, fetcher.NewGNewsFetcher(key))
	}

	serviceConfig := digest.DefaultConfig()
	serviceConfig.CacheMaxAge = workerConfig.CacheMaxAge

	service := digest.NewService(digest.Deps{
		Fetchers:   fetchers,
		Scraper:    scraper.New(logger),
		Summarizer: sum,
		Deliverer:  deliverer,
		Cache:      articleCache,
		Breakers:   registry,
		Logger:     logger,
	}, serviceConfig)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithTimeout(ctx, workerConfig.DigestTimeout)
	defer cancel()

	stats, err := service.Run(runCtx, topics)
	if err != nil {
		return err
	}

	logger.Info("digest complete",
		slog.String("run_id", stats.RunID),
		slog.Int("articles", stats.Articles),
		slog.Int("duplicates_removed", stats.DuplicatesRemoved),
		slog.Bool("delivered", stats.Delivered),
		slog.Duration("duration", stats.Duration))
	return nil
}

// printCircuits queries the running worker's health server and relays the
// circuit snapshot. Without a worker there is nothing to report.
func printCircuits(healthPort int) error {
	url := fmt.Sprintf("http://localhost:%d/health/circuits", healthPort)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("query worker health endpoint: %w (is the worker running?)", err)
	}
	defer resp.Body.Close()

	var statuses []circuitbreaker.Status
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		return fmt.Errorf("decode circuit status: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(statuses)
}
