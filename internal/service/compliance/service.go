package compliance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/clause"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/compliance"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/errors"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// Service is the compliance matching and scoring engine. It composes the
// matcher, assessor, rule engine and scorer behind the CheckCompliance
// contract. All collaborators are injected at construction; the service
// holds no mutable state between calls.
type Service struct {
	logger  *zap.Logger
	store   *requirement.Store
	matcher *Matcher
	engine  *RuleEngine
	scorer  *Scorer
	metrics MetricsCollector
	config  ServiceConfig
}

// NewService creates the engine with its internal components wired up.
// metrics may be nil.
func NewService(logger *zap.Logger, store *requirement.Store, metrics MetricsCollector, config ServiceConfig) *Service {
	var keyword KeywordMatcher
	if config.EnableKeywordFallback {
		keyword = NewTokenOverlapMatcher(config.KeywordMinOverlap)
	}

	matcher := NewMatcher(logger.Named("matcher"))
	assessor := NewAssessor(config.Thresholds)
	engine := NewRuleEngine(logger.Named("rules"), matcher, assessor, keyword, config)

	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Service{
		logger:  logger,
		store:   store,
		matcher: matcher,
		engine:  engine,
		scorer:  NewScorer(logger.Named("scorer")),
		metrics: metrics,
		config:  config,
	}
}

// CheckCompliance evaluates the document's clauses against every requested
// framework and assembles the compliance report. An empty clause list is a
// legitimate, reportable outcome; an unresolvable framework is not.
func (s *Service) CheckCompliance(ctx context.Context, clauses []*clause.Analysis, frameworks []requirement.Framework, documentID string) (*compliance.Report, error) {
	start := time.Now()

	resolved, err := s.resolveFrameworks(frameworks)
	if err != nil {
		return nil, err
	}

	if len(clauses) == 0 {
		s.logger.Warn("producing degraded report",
			zap.String("document_id", documentID),
			zap.Error(errors.ErrEmptyClauseList))
	}

	evaluations, err := s.evaluateFrameworks(ctx, resolved, clauses)
	if err != nil {
		return nil, err
	}

	report := &compliance.Report{
		DocumentID:        documentID,
		CheckID:           uuid.New(),
		FrameworksChecked: resolved,
		Summaries:         make(map[requirement.Framework]compliance.Summary, len(resolved)),
		GeneratedAt:       time.Now().UTC(),
	}

	// Merge in framework enum order so identical inputs yield an
	// identically ordered report.
	for _, eval := range evaluations {
		report.ClauseResults = append(report.ClauseResults, eval.Results...)
		report.MissingRequirements = append(report.MissingRequirements, eval.Missing...)

		summary := s.scorer.ScoreFramework(eval.Framework, eval.Results, len(eval.Missing))
		report.Summaries[eval.Framework] = summary

		s.recordFrameworkMetrics(ctx, eval, summary, len(clauses))
	}

	report.OverallScore = s.scorer.ScoreOverall(report.Summaries)
	report.HighRiskItems = s.scorer.HighRiskItems(report.ClauseResults)

	summary := clause.Summarize(clauses)
	report.SetClauseSummary(summary.TotalClauses, summary.AvgConfidence, summary.LowConfidenceCount, summary.TypeDistribution)

	if err := report.VerifyMandatoryCoverage(s.store); err != nil {
		s.logger.Error("mandatory coverage invariant violated; withholding report",
			zap.String("document_id", documentID), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordCheckDuration(ctx, len(resolved), time.Since(start))
	s.metrics.RecordHighRiskItems(ctx, len(report.HighRiskItems))

	s.logger.Info("compliance check completed",
		zap.String("document_id", documentID),
		zap.String("check_id", report.CheckID.String()),
		zap.Int("frameworks", len(resolved)),
		zap.Int("clause_results", len(report.ClauseResults)),
		zap.Int("missing_requirements", len(report.MissingRequirements)),
		zap.Int("high_risk_items", len(report.HighRiskItems)),
		zap.Float64("overall_score", report.OverallScore.Float64()),
		zap.Duration("duration", time.Since(start)),
	)

	return report, nil
}

// QuickCheck runs the same decision path but returns only per-framework
// scores, skipping result-list and report assembly.
func (s *Service) QuickCheck(ctx context.Context, clauses []*clause.Analysis, frameworks []requirement.Framework) (map[requirement.Framework]values.Score, error) {
	resolved, err := s.resolveFrameworks(frameworks)
	if err != nil {
		return nil, err
	}

	evaluations, err := s.evaluateFrameworks(ctx, resolved, clauses)
	if err != nil {
		return nil, err
	}

	scores := make(map[requirement.Framework]values.Score, len(evaluations))
	for _, eval := range evaluations {
		summary := s.scorer.ScoreFramework(eval.Framework, eval.Results, len(eval.Missing))
		scores[eval.Framework] = summary.Score
	}
	return scores, nil
}

// MatchCandidates returns each clause's strongest candidate requirements
// for one framework, without assessing them. It backs the matching
// diagnostics endpoint: clauses without embeddings and clauses below the
// similarity floor simply produce no candidates, and clauses the matcher
// rejects (dimension mismatch) are skipped with a warning.
func (s *Service) MatchCandidates(ctx context.Context, clauses []*clause.Analysis, fw requirement.Framework) (map[string][]compliance.MatchCandidate, error) {
	reqs, err := s.store.Requirements(fw)
	if err != nil {
		return nil, errors.ErrInvalidFramework.WithDetails(map[string]interface{}{
			"framework": fw.String(),
		}).WithCause(err)
	}

	candidates := make(map[string][]compliance.MatchCandidate, len(clauses))
	for _, c := range clauses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !c.HasEmbedding() {
			continue
		}
		found, err := s.matcher.FindCandidates(c, reqs, s.config.Thresholds.TopK, s.config.Thresholds.SimilarityFloor)
		if err != nil {
			s.logger.Warn("clause skipped during candidate matching",
				zap.String("clause_id", c.ClauseID), zap.Error(err))
			continue
		}
		if len(found) > 0 {
			candidates[c.ClauseID] = found
		}
	}
	return candidates, nil
}

// Store exposes the engine's requirement store for read-only callers
func (s *Service) Store() *requirement.Store {
	return s.store
}

// resolveFrameworks validates, dedupes and canonically orders the
// requested frameworks.
func (s *Service) resolveFrameworks(frameworks []requirement.Framework) ([]requirement.Framework, error) {
	if len(frameworks) == 0 {
		return nil, errors.ErrNoFrameworks
	}

	seen := make(map[requirement.Framework]bool, len(frameworks))
	resolved := make([]requirement.Framework, 0, len(frameworks))
	for _, fw := range frameworks {
		if seen[fw] {
			continue
		}
		if _, err := s.store.Requirements(fw); err != nil {
			return nil, errors.ErrInvalidFramework.WithDetails(map[string]interface{}{
				"framework": fw.String(),
			}).WithCause(err)
		}
		seen[fw] = true
		resolved = append(resolved, fw)
	}

	sort.Slice(resolved, func(i, j int) bool { return resolved[i] < resolved[j] })
	return resolved, nil
}

// evaluateFrameworks fans the rule engine out over the requested
// frameworks. Each goroutine reads shared immutable inputs and writes to
// its own slot, joined before scoring. A canceled context fails the
// whole call; no partial report is returned.
func (s *Service) evaluateFrameworks(ctx context.Context, frameworks []requirement.Framework, clauses []*clause.Analysis) ([]*FrameworkEvaluation, error) {
	evaluations := make([]*FrameworkEvaluation, len(frameworks))
	errs := make([]error, len(frameworks))

	limit := s.config.MaxParallelFrameworks
	if limit <= 0 || limit > len(frameworks) {
		limit = len(frameworks)
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, fw := range frameworks {
		wg.Add(1)
		go func(slot int, fw requirement.Framework) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			evaluations[slot], errs[slot] = s.engine.Evaluate(ctx, fw, clauses, s.store)
		}(i, fw)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return evaluations, nil
}

func (s *Service) recordFrameworkMetrics(ctx context.Context, eval *FrameworkEvaluation, summary compliance.Summary, clauseCount int) {
	fw := eval.Framework.String()
	s.metrics.RecordClausesEvaluated(ctx, fw, clauseCount-eval.SkippedClauses)
	s.metrics.RecordClausesSkipped(ctx, fw, eval.SkippedClauses)
	s.metrics.RecordMissingRequirements(ctx, fw, len(eval.Missing))
	s.metrics.RecordFrameworkScore(ctx, fw, summary.Score.Float64())
	for _, result := range eval.Results {
		s.metrics.RecordResultStatus(ctx, fw, result.Status)
	}
}
