package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/compliance"
	"github.com/clauseguard/compliance-engine-backend/internal/infrastructure/telemetry"
)

// Registry holds all domain-specific metrics for the engine. It
// implements the compliance service's MetricsCollector contract.
type Registry struct {
	meter metric.Meter

	// Engine metrics
	CheckDuration       metric.Float64Histogram
	CheckCounter        metric.Int64Counter
	ClausesEvaluated    metric.Int64Counter
	ClausesSkipped      metric.Int64Counter
	MissingRequirements metric.Int64Counter
	ResultStatusCounter metric.Int64Counter
	HighRiskCounter     metric.Int64Counter
	FrameworkScore      metric.Float64ObservableGauge

	// Catalog metrics
	CatalogSize metric.Int64ObservableGauge

	// API metrics
	APIRequestDuration metric.Float64Histogram
	APIRequestCounter  metric.Int64Counter

	// State for observable metrics
	mu              sync.RWMutex
	frameworkScores map[string]float64
	catalogSize     int64
}

// NewRegistry creates a new metrics registry with all engine metrics
func NewRegistry(meterName string) (*Registry, error) {
	r := &Registry{
		meter:           telemetry.Meter(meterName),
		frameworkScores: make(map[string]float64),
	}

	if err := r.initEngineMetrics(); err != nil {
		return nil, err
	}
	if err := r.initCatalogMetrics(); err != nil {
		return nil, err
	}
	if err := r.initAPIMetrics(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) initEngineMetrics() error {
	var err error

	r.CheckDuration, err = r.meter.Float64Histogram(
		"cge.engine.check_duration",
		metric.WithDescription("Compliance check duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.CheckCounter, err = r.meter.Int64Counter(
		"cge.engine.check_total",
		metric.WithDescription("Total number of compliance checks"),
	)
	if err != nil {
		return err
	}

	r.ClausesEvaluated, err = r.meter.Int64Counter(
		"cge.engine.clauses_evaluated_total",
		metric.WithDescription("Total clauses considered for semantic matching"),
	)
	if err != nil {
		return err
	}

	r.ClausesSkipped, err = r.meter.Int64Counter(
		"cge.engine.clauses_skipped_total",
		metric.WithDescription("Total clauses skipped for missing or mismatched embeddings"),
	)
	if err != nil {
		return err
	}

	r.MissingRequirements, err = r.meter.Int64Counter(
		"cge.engine.missing_requirements_total",
		metric.WithDescription("Total mandatory requirements reported as missing"),
	)
	if err != nil {
		return err
	}

	r.ResultStatusCounter, err = r.meter.Int64Counter(
		"cge.engine.result_status_total",
		metric.WithDescription("Clause results by compliance status"),
	)
	if err != nil {
		return err
	}

	r.HighRiskCounter, err = r.meter.Int64Counter(
		"cge.engine.high_risk_items_total",
		metric.WithDescription("Total high risk findings reported"),
	)
	if err != nil {
		return err
	}

	r.FrameworkScore, err = r.meter.Float64ObservableGauge(
		"cge.engine.framework_score",
		metric.WithDescription("Most recent compliance score per framework"),
		metric.WithFloat64Callback(func(ctx context.Context, o metric.Float64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			for fw, score := range r.frameworkScores {
				o.Observe(score, metric.WithAttributes(attribute.String("framework", fw)))
			}
			return nil
		}),
	)
	return err
}

func (r *Registry) initCatalogMetrics() error {
	var err error
	r.CatalogSize, err = r.meter.Int64ObservableGauge(
		"cge.catalog.requirements_total",
		metric.WithDescription("Number of requirements in the loaded catalogs"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.catalogSize)
			return nil
		}),
	)
	return err
}

func (r *Registry) initAPIMetrics() error {
	var err error

	r.APIRequestDuration, err = r.meter.Float64Histogram(
		"cge.api.request_duration",
		metric.WithDescription("API request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.APIRequestCounter, err = r.meter.Int64Counter(
		"cge.api.request_total",
		metric.WithDescription("Total number of API requests"),
	)
	return err
}

// SetCatalogSize records the size of the loaded requirement catalogs
func (r *Registry) SetCatalogSize(size int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogSize = size
}

// RecordCheckDuration implements MetricsCollector
func (r *Registry) RecordCheckDuration(ctx context.Context, frameworks int, d time.Duration) {
	attrs := metric.WithAttributes(attribute.Int("frameworks", frameworks))
	r.CheckDuration.Record(ctx, float64(d.Milliseconds()), attrs)
	r.CheckCounter.Add(ctx, 1, attrs)
}

// RecordClausesEvaluated implements MetricsCollector
func (r *Registry) RecordClausesEvaluated(ctx context.Context, framework string, count int) {
	r.ClausesEvaluated.Add(ctx, int64(count),
		metric.WithAttributes(attribute.String("framework", framework)))
}

// RecordClausesSkipped implements MetricsCollector
func (r *Registry) RecordClausesSkipped(ctx context.Context, framework string, count int) {
	r.ClausesSkipped.Add(ctx, int64(count),
		metric.WithAttributes(attribute.String("framework", framework)))
}

// RecordMissingRequirements implements MetricsCollector
func (r *Registry) RecordMissingRequirements(ctx context.Context, framework string, count int) {
	r.MissingRequirements.Add(ctx, int64(count),
		metric.WithAttributes(attribute.String("framework", framework)))
}

// RecordResultStatus implements MetricsCollector
func (r *Registry) RecordResultStatus(ctx context.Context, framework string, status compliance.Status) {
	r.ResultStatusCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("framework", framework),
		attribute.String("status", status.String()),
	))
}

// RecordFrameworkScore implements MetricsCollector
func (r *Registry) RecordFrameworkScore(ctx context.Context, framework string, score float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frameworkScores[framework] = score
}

// RecordHighRiskItems implements MetricsCollector
func (r *Registry) RecordHighRiskItems(ctx context.Context, count int) {
	r.HighRiskCounter.Add(ctx, int64(count))
}

// RecordAPIRequest records API request metrics
func (r *Registry) RecordAPIRequest(ctx context.Context, duration float64, method, path string, statusCode int) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status_code", statusCode),
	)
	r.APIRequestDuration.Record(ctx, duration, attrs)
	r.APIRequestCounter.Add(ctx, 1, attrs)
}
