package compliance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/clause"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/compliance"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/testutil/fixtures"
)

func newRuleEngine(t *testing.T, config ServiceConfig) *RuleEngine {
	t.Helper()
	logger := zaptest.NewLogger(t)
	var keyword KeywordMatcher
	if config.EnableKeywordFallback {
		keyword = NewTokenOverlapMatcher(config.KeywordMinOverlap)
	}
	return NewRuleEngine(logger, NewMatcher(logger), NewAssessor(config.Thresholds), keyword, config)
}

func TestRuleEngine_Evaluate_MatchedAndMissing(t *testing.T) {
	// Test store requirements point along (1,0), (0,1), (-1,0)
	store := fixtures.NewTestStore(t, fixtures.CatalogOptions{PerFramework: 3})
	config := DefaultServiceConfig()
	config.ReportUnmatchedClauses = false
	engine := newRuleEngine(t, config)

	// One clause aligned with the first requirement only
	clauses := []*clause.Analysis{
		fixtures.NewClauseBuilder(t).WithID("c-1").WithType("Data Processing").WithEmbedding(1, 0).Build(),
	}

	eval, err := engine.Evaluate(context.Background(), requirement.FrameworkGDPR, clauses, store)
	require.NoError(t, err)

	require.Len(t, eval.Results, 1)
	assert.Equal(t, "GDPR-000", eval.Results[0].RequirementID)
	assert.Equal(t, compliance.StatusCompliant, eval.Results[0].Status)

	// The other two mandatory requirements had no candidate above the floor
	require.Len(t, eval.Missing, 2)
	assert.Equal(t, "GDPR-001", eval.Missing[0].ID)
	assert.Equal(t, "GDPR-002", eval.Missing[1].ID)
}

func TestRuleEngine_Evaluate_OptionalSilentlyDropped(t *testing.T) {
	// Every second requirement optional: GDPR-001 is optional
	store := fixtures.NewTestStore(t, fixtures.CatalogOptions{PerFramework: 2, OptionalEvery: 2})
	config := DefaultServiceConfig()
	config.ReportUnmatchedClauses = false
	engine := newRuleEngine(t, config)

	eval, err := engine.Evaluate(context.Background(), requirement.FrameworkGDPR, nil, store)
	require.NoError(t, err)

	assert.Empty(t, eval.Results)
	// Only the mandatory requirement is recorded missing
	require.Len(t, eval.Missing, 1)
	assert.Equal(t, "GDPR-000", eval.Missing[0].ID)
}

func TestRuleEngine_Evaluate_SameClauseMayResolveMultipleRequirements(t *testing.T) {
	// No exclusivity lock: one clause sitting between two requirement
	// directions clears the floor for both.
	store := fixtures.NewTestStore(t, fixtures.CatalogOptions{PerFramework: 2})
	config := DefaultServiceConfig()
	config.ReportUnmatchedClauses = false
	engine := newRuleEngine(t, config)

	clauses := []*clause.Analysis{
		fixtures.NewClauseBuilder(t).WithID("shared").
			WithEmbedding(0.7071067811865476, 0.7071067811865476).Build(),
	}

	eval, err := engine.Evaluate(context.Background(), requirement.FrameworkGDPR, clauses, store)
	require.NoError(t, err)

	require.Len(t, eval.Results, 2)
	assert.Equal(t, "shared", eval.Results[0].ClauseID)
	assert.Equal(t, "shared", eval.Results[1].ClauseID)
	assert.Empty(t, eval.Missing)
}

func TestRuleEngine_Evaluate_KeywordFallback(t *testing.T) {
	store := fixtures.NewTestStore(t, fixtures.CatalogOptions{PerFramework: 1})
	config := DefaultServiceConfig()
	config.ReportUnmatchedClauses = false
	engine := newRuleEngine(t, config)

	// Clause without embedding whose text carries the catalog keywords
	clauses := []*clause.Analysis{
		fixtures.NewClauseBuilder(t).WithID("no-vec").
			WithText("All data processing activities shall be documented").
			WithoutEmbedding().Build(),
	}

	eval, err := engine.Evaluate(context.Background(), requirement.FrameworkGDPR, clauses, store)
	require.NoError(t, err)

	require.Len(t, eval.Results, 1)
	assert.Equal(t, compliance.StatusPartial, eval.Results[0].Status)
	assert.Contains(t, eval.Results[0].Explanation, "keyword fallback")
	assert.Empty(t, eval.Missing)
}

func TestRuleEngine_Evaluate_KeywordFallbackTieBreaksByPosition(t *testing.T) {
	store := fixtures.NewTestStore(t, fixtures.CatalogOptions{PerFramework: 1})
	config := DefaultServiceConfig()
	config.ReportUnmatchedClauses = false
	engine := newRuleEngine(t, config)

	// Both clauses carry the full keyword set (identical overlap); the
	// later slice entry holds the earlier document position.
	clauses := []*clause.Analysis{
		fixtures.NewClauseBuilder(t).WithID("late").WithPosition(5).
			WithText("Processing of data shall be logged").
			WithoutEmbedding().Build(),
		fixtures.NewClauseBuilder(t).WithID("early").WithPosition(2).
			WithText("Data processing requires a lawful basis").
			WithoutEmbedding().Build(),
	}

	eval, err := engine.Evaluate(context.Background(), requirement.FrameworkGDPR, clauses, store)
	require.NoError(t, err)

	require.Len(t, eval.Results, 1)
	assert.Equal(t, "early", eval.Results[0].ClauseID)
}

func TestRuleEngine_Evaluate_NoFallbackSkipsClause(t *testing.T) {
	store := fixtures.NewTestStore(t, fixtures.CatalogOptions{PerFramework: 1})
	config := DefaultServiceConfig()
	config.ReportUnmatchedClauses = false
	config.EnableKeywordFallback = false
	engine := newRuleEngine(t, config)

	clauses := []*clause.Analysis{
		fixtures.NewClauseBuilder(t).WithID("no-vec").WithoutEmbedding().Build(),
	}

	eval, err := engine.Evaluate(context.Background(), requirement.FrameworkGDPR, clauses, store)
	require.NoError(t, err)

	assert.Empty(t, eval.Results)
	assert.Equal(t, 1, eval.SkippedClauses)
	require.Len(t, eval.Missing, 1)
}

func TestRuleEngine_Evaluate_DimensionMismatchSkippedNotFatal(t *testing.T) {
	store := fixtures.NewTestStore(t, fixtures.CatalogOptions{PerFramework: 1})
	config := DefaultServiceConfig()
	config.ReportUnmatchedClauses = false
	engine := newRuleEngine(t, config)

	clauses := []*clause.Analysis{
		fixtures.NewClauseBuilder(t).WithID("bad-dim").WithEmbedding(1, 0, 0).Build(),
		fixtures.NewClauseBuilder(t).WithID("good").WithPosition(1).WithEmbedding(1, 0).Build(),
	}

	eval, err := engine.Evaluate(context.Background(), requirement.FrameworkGDPR, clauses, store)
	require.NoError(t, err)

	require.Len(t, eval.Results, 1)
	assert.Equal(t, "good", eval.Results[0].ClauseID)
	assert.Equal(t, 1, eval.SkippedClauses)
}

func TestRuleEngine_Evaluate_UnmatchedClauseReporting(t *testing.T) {
	store := fixtures.NewTestStore(t, fixtures.CatalogOptions{PerFramework: 1})
	config := DefaultServiceConfig()
	engine := newRuleEngine(t, config)

	clauses := []*clause.Analysis{
		fixtures.NewClauseBuilder(t).WithID("matched").WithEmbedding(1, 0).Build(),
		fixtures.NewClauseBuilder(t).WithID("stray").WithPosition(1).WithType("Termination").WithEmbedding(-1, 0).Build(),
	}

	eval, err := engine.Evaluate(context.Background(), requirement.FrameworkGDPR, clauses, store)
	require.NoError(t, err)

	require.Len(t, eval.Results, 2)
	na := eval.Results[1]
	assert.Equal(t, "stray", na.ClauseID)
	assert.Equal(t, compliance.StatusNotApplicable, na.Status)
	assert.Empty(t, na.RequirementID)
	assert.Zero(t, na.Similarity.Float64())
	assert.False(t, na.Countable())
}

func TestRuleEngine_Evaluate_ContextCanceled(t *testing.T) {
	store := fixtures.NewTestStore(t, fixtures.CatalogOptions{PerFramework: 3})
	engine := newRuleEngine(t, DefaultServiceConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Evaluate(ctx, requirement.FrameworkGDPR, nil, store)
	assert.ErrorIs(t, err, context.Canceled)
}
