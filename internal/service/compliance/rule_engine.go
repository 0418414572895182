package compliance

import (
	"context"

	"go.uber.org/zap"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/clause"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/compliance"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// RuleEngine drives the evaluation of one framework against a document:
// for every requirement it finds the best-matching clause, assesses the
// pair, and records unmatched mandatory requirements as missing.
type RuleEngine struct {
	logger   *zap.Logger
	matcher  *Matcher
	assessor *Assessor
	keyword  KeywordMatcher
	config   ServiceConfig
}

// NewRuleEngine creates a RuleEngine. keyword may be nil when no fallback
// collaborator is configured.
func NewRuleEngine(logger *zap.Logger, matcher *Matcher, assessor *Assessor, keyword KeywordMatcher, config ServiceConfig) *RuleEngine {
	return &RuleEngine{
		logger:   logger,
		matcher:  matcher,
		assessor: assessor,
		keyword:  keyword,
		config:   config,
	}
}

// FrameworkEvaluation is the outcome of one framework's rule engine run
type FrameworkEvaluation struct {
	Framework requirement.Framework
	// Results in requirement catalog order, then not-applicable results
	// in clause position order.
	Results []*compliance.Result
	// Missing holds the mandatory requirements with no acceptable match
	Missing []*requirement.Requirement
	// SkippedClauses counts clauses excluded from all matching
	SkippedClauses int
}

// Evaluate runs the framework's requirement pass over the document's
// clauses. Reads only shared immutable inputs; all accumulation is local,
// so concurrent Evaluate calls for different frameworks need no locking.
func (e *RuleEngine) Evaluate(ctx context.Context, fw requirement.Framework, clauses []*clause.Analysis, store *requirement.Store) (*FrameworkEvaluation, error) {
	requirements, err := store.Requirements(fw)
	if err != nil {
		return nil, err
	}

	semantic, fallback, skipped := e.partitionClauses(fw, clauses, store.Dimension())

	eval := &FrameworkEvaluation{
		Framework:      fw,
		SkippedClauses: skipped,
	}
	matched := make(map[string]bool, len(clauses))

	for _, req := range requirements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		match, err := e.matcher.BestClause(req, semantic, e.config.Thresholds.SimilarityFloor)
		if err != nil {
			return nil, err
		}
		if match == nil {
			match = e.keywordFallback(req, fallback)
		}

		if match == nil {
			if req.Mandatory {
				eval.Missing = append(eval.Missing, req)
			}
			// Absence of an optional clause is not a finding
			continue
		}

		var result *compliance.Result
		if match.Fallback {
			result = e.assessor.AssessFallback(match.Clause, req, match.Similarity)
		} else {
			result = e.assessor.Assess(match.Clause, req, match.Similarity)
		}
		eval.Results = append(eval.Results, result)
		matched[match.Clause.ClauseID] = true
	}

	if e.config.ReportUnmatchedClauses {
		eval.Results = append(eval.Results, e.unmatchedClauseResults(fw, clauses, matched)...)
	}

	return eval, nil
}

// partitionClauses splits the document's clauses into semantically
// matchable ones, fallback-eligible ones, and counts the rest as skipped.
// Skips are data quality defects, surfaced as warnings, never fatal.
func (e *RuleEngine) partitionClauses(fw requirement.Framework, clauses []*clause.Analysis, dimension int) (semantic, fallback []*clause.Analysis, skipped int) {
	var noEmbedding, badDimension int
	for _, c := range clauses {
		switch {
		case !c.HasEmbedding():
			noEmbedding++
			if e.config.EnableKeywordFallback && e.keyword != nil {
				fallback = append(fallback, c)
			} else {
				skipped++
			}
		case c.Embedding.Dimension() != dimension:
			badDimension++
			skipped++
		default:
			semantic = append(semantic, c)
		}
	}

	if noEmbedding > 0 || badDimension > 0 {
		e.logger.Warn("clauses excluded from semantic matching",
			zap.String("framework", fw.String()),
			zap.Int("missing_embedding", noEmbedding),
			zap.Int("dimension_mismatch", badDimension),
			zap.Int("fallback_eligible", len(fallback)),
		)
	}
	return semantic, fallback, skipped
}

// keywordFallback scans fallback-eligible clauses for the best keyword
// match. Nil when the fallback is disabled or nothing clears the bar.
func (e *RuleEngine) keywordFallback(req *requirement.Requirement, fallback []*clause.Analysis) *ClauseMatch {
	if e.keyword == nil || len(fallback) == 0 {
		return nil
	}
	var best *ClauseMatch
	for _, c := range fallback {
		overlap, ok := e.keyword.Match(c, req)
		if !ok {
			continue
		}
		if best == nil || betterMatch(overlap, c.Position, best) {
			best = &ClauseMatch{Clause: c, Similarity: overlap, Fallback: true}
		}
	}
	return best
}

// unmatchedClauseResults yields informational not-applicable results for
// clauses that matched no requirement of the framework. They carry no
// similarity rationale and never affect scores.
func (e *RuleEngine) unmatchedClauseResults(fw requirement.Framework, clauses []*clause.Analysis, matched map[string]bool) []*compliance.Result {
	var out []*compliance.Result
	for _, c := range clauses {
		if matched[c.ClauseID] {
			continue
		}
		out = append(out, &compliance.Result{
			ClauseID:       c.ClauseID,
			Framework:      fw,
			Status:         compliance.StatusNotApplicable,
			RiskLevel:      compliance.RiskLow,
			Similarity:     values.MustNewSimilarity(0),
			Confidence:     c.Confidence,
			Explanation:    "clause matched no requirement of this framework",
			ClausePosition: c.Position,
		})
	}
	return out
}
