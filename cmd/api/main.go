package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clauseguard/compliance-engine-backend/internal/api/rest"
	"github.com/clauseguard/compliance-engine-backend/internal/infrastructure/catalog"
	"github.com/clauseguard/compliance-engine-backend/internal/infrastructure/config"
	"github.com/clauseguard/compliance-engine-backend/internal/infrastructure/database"
	"github.com/clauseguard/compliance-engine-backend/internal/infrastructure/telemetry"
	"github.com/clauseguard/compliance-engine-backend/internal/metrics"
	compliancesvc "github.com/clauseguard/compliance-engine-backend/internal/service/compliance"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	zapLogger, err := telemetry.NewZapLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return err
	}
	defer zapLogger.Sync() //nolint:errcheck

	slogger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slogger)

	provider, err := telemetry.InitializeOpenTelemetry(ctx, &telemetry.Config{
		ServiceName:    "compliance-engine",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.TracingEnabled || cfg.Telemetry.MetricsEnabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slogger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	var pool *pgxpool.Pool
	if cfg.Catalog.Source == "postgres" {
		pool, err = database.Connect(ctx, cfg.Database, zapLogger)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	source, err := catalog.NewSource(cfg.Catalog, pool, zapLogger.Named("catalog"))
	if err != nil {
		return err
	}
	store, err := catalog.BuildStore(ctx, zapLogger.Named("catalog"), source)
	if err != nil {
		return err
	}

	registry, err := metrics.NewRegistry("compliance-engine")
	if err != nil {
		return err
	}
	registry.SetCatalogSize(int64(store.Count()))

	service := compliancesvc.NewService(
		zapLogger.Named("compliance"),
		store,
		registry,
		engineConfig(cfg.Engine),
	)

	slogger.Info("starting compliance engine",
		"version", cfg.Version,
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"catalog_source", cfg.Catalog.Source,
		"requirements", store.Count(),
	)

	server := rest.NewServer(cfg, slogger, service, registry)
	if err := server.Start(ctx); err != nil {
		return err
	}

	slogger.Info("shutdown complete")
	return nil
}

// engineConfig maps the file configuration onto the service config
func engineConfig(cfg config.EngineConfig) compliancesvc.ServiceConfig {
	return compliancesvc.ServiceConfig{
		Thresholds: compliancesvc.Thresholds{
			SimilarityFloor:     cfg.SimilarityFloor,
			HighThreshold:       cfg.HighThreshold,
			MediumThreshold:     cfg.MediumThreshold,
			ConfidenceThreshold: cfg.ConfidenceThreshold,
			TopK:                cfg.TopK,
		},
		ReportUnmatchedClauses: cfg.ReportUnmatchedClauses,
		EnableKeywordFallback:  cfg.EnableKeywordFallback,
		KeywordMinOverlap:      cfg.KeywordMinOverlap,
		MaxParallelFrameworks:  cfg.MaxParallelFrameworks,
	}
}
