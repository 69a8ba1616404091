package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gnavadev/fraud-watch/internal/application/usecase"
	"github.com/gnavadev/fraud-watch/internal/domain/service"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/config"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/irs"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/kafka"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/postgres"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/telemetry"
	"github.com/gnavadev/fraud-watch/internal/presentation/consumer"
	grpcpresentation "github.com/gnavadev/fraud-watch/internal/presentation/grpc"
	"github.com/gnavadev/fraud-watch/internal/presentation/rest"
	pkgkafka "github.com/gnavadev/fraud-watch/pkg/kafka"
	"github.com/gnavadev/fraud-watch/pkg/observability"
	pgpkg "github.com/gnavadev/fraud-watch/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("providerd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Service:     cfg.Telemetry.ServiceName,
		Environment: cfg.Environment,
	})
	slog.SetDefault(logger)

	logger.Info("starting providerd",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"kafka", cfg.Kafka.Enabled(),
		"irs", cfg.IRS.Enabled,
	)

	// Initialize tracing. An empty endpoint installs nothing.
	shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdown(context.Background()) }()
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return err
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	ingestionMetrics, err := telemetry.NewIngestionMetrics(meterProvider.Meter(telemetry.MeterName))
	if err != nil {
		return err
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pgpkg.NewPool(dbCtx, pgpkg.Config{URL: cfg.Database.URL, MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	if cfg.Database.MigrationsDir != "" {
		version, err := pgpkg.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir)
		if err != nil {
			return err
		}
		logger.Info("migrations applied", "dir", cfg.Database.MigrationsDir, "version", version)
	}

	// Wire infrastructure adapters.
	providerRepo := postgres.NewProviderRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)

	// Wire use cases.
	ingestUC := usecase.NewIngestProviders(providerRepo, service.NewRiskEvaluator(), logger,
		usecase.WithWorkers(cfg.Ingest.Workers),
		usecase.WithMetrics(ingestionMetrics),
	)
	getProviderUC := usecase.NewGetProvider(providerRepo)
	listProvidersUC := usecase.NewListProviders(providerRepo)
	analyzeRevenueUC := usecase.NewAnalyzeRevenue(providerRepo)

	var enrichUC *usecase.EnrichProviders
	if cfg.IRS.Enabled {
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
		enrichUC = usecase.NewEnrichProviders(lookup, logger)
	}

	// gRPC server.
	grpcHandler := grpcpresentation.NewProviderServiceHandler(ingestUC, enrichUC, getProviderUC, listProvidersUC, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:     cfg.GRPCAddress(),
		TLSCertFile: cfg.GRPCTLS.CertFile,
		TLSKeyFile:  cfg.GRPCTLS.KeyFile,
		Reflection:  cfg.GRPCReflection,
	}, logger)
	if err != nil {
		return err
	}

	// HTTP server.
	router := rest.NewRouter(rest.RouterConfig{
		Health:      rest.NewHealthHandler(cfg.Telemetry.ServiceName, pool, logger),
		Providers:   rest.NewProviderHandler(getProviderUC, listProvidersUC, analyzeRevenueUC, logger),
		Metrics:     metricsHandler,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Kafka is optional; without brokers the outbox simply accumulates.
	var (
		relay        *kafka.OutboxRelay
		feedConsumer *pkgkafka.Consumer
	)
	if cfg.Kafka.Enabled() {
		kafkaCfg := pkgkafka.Config{
			ClientID:      cfg.Telemetry.ServiceName,
			ConsumerGroup: cfg.Kafka.ConsumerGroup,
			Brokers:       cfg.Kafka.Brokers,
		}

		producer, err := pkgkafka.NewProducer(kafkaCfg)
		if err != nil {
			return err
		}
		defer func() { _ = producer.Close() }()

		relay = kafka.NewOutboxRelay(outboxRepo, producer, kafka.RelayConfig{
			Topic:        cfg.Kafka.EventsTopic,
			PollInterval: cfg.Outbox.PollInterval,
			BatchSize:    cfg.Outbox.BatchSize,
		}, logger)

		var enricher consumer.Enricher
		if enrichUC != nil {
			enricher = enrichUC
		}
		feedHandler := consumer.NewFeedHandler(ingestUC, enricher, logger)
		feedConsumer, err = pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.RawTopic, feedHandler.Handle, logger)
		if err != nil {
			return err
		}
		defer func() { _ = feedConsumer.Close() }()
	} else {
		logger.Info("kafka brokers not configured, outbox relay and feed consumer disabled")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.Start(); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if relay != nil {
		g.Go(func() error { return relay.Run(gctx) })
	}
	if feedConsumer != nil {
		g.Go(func() error { return feedConsumer.Start(gctx) })
	}

	logger.Info("providerd started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
	)

	// Graceful shutdown once a signal arrives or any component fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down providerd")

		grpcServer.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("providerd stopped")
	return nil
}
