// Command ingest loads a licensing feed file, scores every provider and
// upserts the results, then prints the ingestion report as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gnavadev/fraud-watch/internal/application/usecase"
	"github.com/gnavadev/fraud-watch/internal/domain/model"
	"github.com/gnavadev/fraud-watch/internal/domain/service"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/config"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/feed"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/irs"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/postgres"
	"github.com/gnavadev/fraud-watch/pkg/observability"
	pgpkg "github.com/gnavadev/fraud-watch/pkg/postgres"
)

type options struct {
	configPath  string
	file        string
	city        string
	limit       int
	workers     int
	enrich      bool
	printConfig bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flag.StringVar(&opts.file, "file", "", "licensing feed to ingest (.csv or .xlsx)")
	flag.StringVar(&opts.city, "city", "", "only ingest providers in this city (overrides FEED_CITY)")
	flag.IntVar(&opts.limit, "limit", -1, "only ingest the N largest providers by capacity (overrides FEED_LIMIT)")
	flag.IntVar(&opts.workers, "workers", 0, "evaluation goroutines (overrides INGEST_WORKERS)")
	flag.BoolVar(&opts.enrich, "enrich", false, "look up license holders in the IRS nonprofit registry first")
	flag.BoolVar(&opts.printConfig, "print-config", false, "print the effective configuration and exit")
	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, opts)

	if opts.printConfig {
		return cfg.Dump(out)
	}
	if opts.file == "" {
		return errors.New("-file is required")
	}

	// stdout carries the report, so logs go to stderr.
	logger := observability.InitLogger(observability.LogConfig{
		Output:      os.Stderr,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Service:     "ingest",
		Environment: cfg.Environment,
	})
	slog.SetDefault(logger)

	records, err := loadBatch(opts.file, feed.Selection{City: cfg.Feed.City, Limit: cfg.Feed.Limit})
	if err != nil {
		return err
	}
	logger.Info("feed loaded", "file", opts.file, "records", len(records), "city", cfg.Feed.City, "limit", cfg.Feed.Limit)

	if opts.enrich {
		lookup, closeLookup := irs.NewLookup(irs.LookupConfig{
			Client: irs.ClientConfig{
				BaseURL:    cfg.IRS.BaseURL,
				State:      cfg.IRS.State,
				Timeout:    cfg.IRS.Timeout,
				RetryCount: 2,
			},
			RedisAddr: cfg.IRS.RedisAddr,
			CacheTTL:  cfg.IRS.CacheTTL,
		}, logger)
		defer func() { _ = closeLookup() }()
		records = usecase.NewEnrichProviders(lookup, logger).Execute(ctx, records)
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pgpkg.NewPool(dbCtx, pgpkg.Config{URL: cfg.Database.URL, MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.MigrationsDir != "" {
		if _, err := pgpkg.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
			return err
		}
	}

	ingest := usecase.NewIngestProviders(
		postgres.NewProviderRepository(pool),
		service.NewRiskEvaluator(),
		logger,
		usecase.WithWorkers(cfg.Ingest.Workers),
	)

	report, ingestErr := ingest.Execute(ctx, records)

	// The partial report of an aborted batch is still worth printing.
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return ingestErr
}

// applyFlags lets explicitly set flags win over file and environment values.
func applyFlags(cfg *config.Config, opts options) {
	if opts.city != "" {
		cfg.Feed.City = opts.city
	}
	if opts.limit >= 0 {
		cfg.Feed.Limit = opts.limit
	}
	if opts.workers > 0 {
		cfg.Ingest.Workers = opts.workers
	}
}

func loadBatch(path string, sel feed.Selection) ([]model.RawProviderRecord, error) {
	records, err := feed.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return feed.Select(records, sel), nil
}
