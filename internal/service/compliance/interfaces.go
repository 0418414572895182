package compliance

import (
	"context"
	"time"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/clause"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/compliance"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// KeywordMatcher is the trivial fallback collaborator for clauses that
// arrive without an embedding. Implementations must be deterministic.
type KeywordMatcher interface {
	// Match reports whether the clause's text satisfies the requirement's
	// catalog keywords, and with what overlap score.
	Match(c *clause.Analysis, req *requirement.Requirement) (values.Similarity, bool)
}

// MetricsCollector receives engine-level measurements. Implementations
// must tolerate concurrent calls; a nil collector is replaced by a no-op.
type MetricsCollector interface {
	RecordCheckDuration(ctx context.Context, frameworks int, d time.Duration)
	RecordClausesEvaluated(ctx context.Context, framework string, count int)
	RecordClausesSkipped(ctx context.Context, framework string, count int)
	RecordMissingRequirements(ctx context.Context, framework string, count int)
	RecordResultStatus(ctx context.Context, framework string, status compliance.Status)
	RecordFrameworkScore(ctx context.Context, framework string, score float64)
	RecordHighRiskItems(ctx context.Context, count int)
}

// noopMetrics is the nil-safe default collector
type noopMetrics struct{}

func (noopMetrics) RecordCheckDuration(context.Context, int, time.Duration)        {}
func (noopMetrics) RecordClausesEvaluated(context.Context, string, int)            {}
func (noopMetrics) RecordClausesSkipped(context.Context, string, int)              {}
func (noopMetrics) RecordMissingRequirements(context.Context, string, int)         {}
func (noopMetrics) RecordResultStatus(context.Context, string, compliance.Status)  {}
func (noopMetrics) RecordFrameworkScore(context.Context, string, float64)          {}
func (noopMetrics) RecordHighRiskItems(context.Context, int)                       {}
