package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/merrow-labs/shopsight/internal/analytics"
	"github.com/merrow-labs/shopsight/internal/config"
	"github.com/merrow-labs/shopsight/internal/dataset"
	"github.com/merrow-labs/shopsight/internal/logger"
	"github.com/merrow-labs/shopsight/internal/marketing"
	"github.com/merrow-labs/shopsight/internal/models"
	"github.com/merrow-labs/shopsight/internal/report"
	"github.com/merrow-labs/shopsight/internal/storage"
	"github.com/merrow-labs/shopsight/internal/telegram"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging with level support
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	// Initialize storage
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to open storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	if err := run(ctx, cfg, store); err != nil {
		logger.Fatal("Analysis run failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, store *storage.Store) error {
	startTime := time.Now()

	// Import a CSV batch when one is configured
	if cfg.Dataset.InputPath != "" {
		if err := importCSV(ctx, cfg.Dataset.InputPath, store); err != nil {
			return err
		}
	}

	records, err := store.Records(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records to analyze, import a dataset first")
	}
	logger.Info("Loaded %d sales records", len(records))

	// Derive per-customer RFM features
	features, err := analytics.DeriveCustomerFeatures(records)
	if err != nil {
		return fmt.Errorf("failed to derive customer features: %w", err)
	}
	logger.Info("Derived features for %d customers (reference date %s)",
		features.Len(), features.MaxDate().Format("2006-01-02"))

	// Segment customers. A degenerate feature column is worth a warning but
	// the segmentation over the substituted matrix is still usable.
	seg, err := analytics.SegmentCustomers(features, cfg.Analysis.Segments, cfg.Analysis.Seed)
	if err != nil {
		var degenerate *analytics.DegenerateFeatureError
		if !errors.As(err, &degenerate) {
			return fmt.Errorf("failed to segment customers: %w", err)
		}
		logger.Warn("Segmentation proceeded with constant feature columns %v", degenerate.Columns)
	}
	logger.Info("Segmented %d customers into %d segments (seed %d)", features.Len(), seg.K, seg.Seed)

	// Aggregate revenue trends
	granularity, err := analytics.ParseGranularity(cfg.Trends.Granularity)
	if err != nil {
		return fmt.Errorf("failed to parse granularity: %w", err)
	}
	trends, err := analytics.AggregateTrends(records, granularity)
	if err != nil {
		return fmt.Errorf("failed to aggregate trends: %w", err)
	}
	logger.Info("Aggregated %d trend buckets at %s granularity", len(trends), granularity)

	// Derive inventory reorder profiles
	profiles, err := analytics.DeriveInventoryProfiles(records, cfg.Analysis.ServiceZ)
	if err != nil {
		return fmt.Errorf("failed to derive inventory profiles: %w", err)
	}
	logger.Info("Derived inventory profiles for %d products", len(profiles))

	// Write reports
	reportsDir := cfg.Dataset.ReportsDir
	segPath, err := report.WriteSegments(reportsDir, features, seg)
	if err != nil {
		return fmt.Errorf("failed to write segments report: %w", err)
	}
	trendPath, err := report.WriteTrends(reportsDir, trends)
	if err != nil {
		return fmt.Errorf("failed to write trends report: %w", err)
	}
	invPath, err := report.WriteInventory(reportsDir, profiles)
	if err != nil {
		return fmt.Errorf("failed to write inventory report: %w", err)
	}
	logger.Info("Reports written: %s, %s, %s", segPath, trendPath, invPath)

	// Enrich trends with campaign spend when the marketing API is configured
	if cfg.Marketing.Enabled {
		if err := enrichWithSpend(ctx, cfg, records, trends, granularity); err != nil {
			logger.Error("Failed to enrich trends with campaign spend: %v", err)
		}
	}

	// Push a digest to Telegram when enabled
	if cfg.Telegram.Enabled {
		if err := sendDigest(cfg, profiles, seg); err != nil {
			logger.Error("Failed to send Telegram digest: %v", err)
		} else {
			logger.Info("Telegram digest sent")
		}
	}

	logger.Info("Analysis completed in %v", time.Since(startTime))
	return nil
}

// importCSV loads, cleans, and persists a raw CSV batch.
func importCSV(ctx context.Context, path string, store *storage.Store) error {
	logger.Info("Importing dataset from %s", path)
	raw, err := dataset.LoadCSV(path)
	if err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}

	cleaned, cleanReport, err := dataset.Clean(raw)
	if err != nil {
		return fmt.Errorf("failed to clean dataset: %w", err)
	}
	logger.Info("Cleaned dataset: %d in, %d out (%d duplicates, %d negatives, %d unpriced dropped, %d prices imputed)",
		cleanReport.Input, cleanReport.Output,
		cleanReport.DuplicatesDropped, cleanReport.NegativesDropped,
		cleanReport.UnpricedDropped, cleanReport.PricesImputed)

	if err := store.InsertRecords(ctx, cleaned); err != nil {
		return fmt.Errorf("failed to persist records: %w", err)
	}
	return nil
}

// enrichWithSpend fetches campaign spend over the snapshot date range, folds
// it into the trend buckets, and writes the combined report.
func enrichWithSpend(
	ctx context.Context,
	cfg *config.Config,
	records []models.SalesRecord,
	trends []models.TrendBucket,
	granularity analytics.Granularity,
) error {
	from := records[0].Day()
	to := records[0].Day()
	for _, r := range records[1:] {
		d := r.Day()
		if d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}

	client := marketing.NewClient(
		cfg.Marketing.APIBaseURL,
		cfg.Marketing.Timeout,
		cfg.Marketing.MaxRetries,
		cfg.Marketing.RetryDelayBase,
	)

	logger.Debug("Fetching campaign spend from %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	spends, err := client.FetchSpend(ctx, from, to)
	if err != nil {
		return err
	}
	logger.Info("Fetched %d campaign spend entries", len(spends))

	merged := marketing.MergeSpend(trends, spends, granularity)
	path, err := report.WriteTrendSpend(cfg.Dataset.ReportsDir, merged)
	if err != nil {
		return err
	}
	logger.Info("Trend and spend report written: %s", path)
	return nil
}

// sendDigest pushes the fastest-moving products and segment sizes to Telegram.
func sendDigest(cfg *config.Config, profiles map[int64]models.ProductProfile, seg *models.Segmentation) error {
	client, err := telegram.NewClient(
		cfg.Telegram.BotToken,
		cfg.Telegram.ChatID,
		cfg.Telegram.MaxRetries,
		cfg.Telegram.RetryDelayBase,
	)
	if err != nil {
		return err
	}

	sizes := make(map[int]int, seg.K)
	for _, label := range seg.Labels {
		sizes[label]++
	}

	return client.Send(telegram.Digest{
		GeneratedAt:  time.Now(),
		Profiles:     analytics.SortedProfiles(profiles),
		SegmentSizes: sizes,
	})
}
