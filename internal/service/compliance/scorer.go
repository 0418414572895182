package compliance

import (
	"sort"

	"go.uber.org/zap"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/compliance"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// Scorer aggregates per-requirement assessments into framework and
// overall scores and ranks high-risk findings.
type Scorer struct {
	logger *zap.Logger
}

// NewScorer creates a new Scorer
func NewScorer(logger *zap.Logger) *Scorer {
	return &Scorer{logger: logger}
}

// ScoreFramework computes a framework summary. Every resolved requirement
// contributes its status weight; every missing mandatory requirement
// contributes zero with full weight in the denominator, so missing items
// always depress the score. Not-applicable results are excluded entirely.
func (s *Scorer) ScoreFramework(fw requirement.Framework, results []*compliance.Result, missingCount int) compliance.Summary {
	summary := compliance.Summary{
		Framework:    fw,
		MissingCount: missingCount,
	}

	var total float64
	considered := 0
	for _, result := range results {
		if !result.Countable() {
			continue
		}
		considered++
		total += result.Status.Weight()
		switch result.Status {
		case compliance.StatusCompliant:
			summary.CompliantCount++
		case compliance.StatusPartial:
			summary.PartialCount++
		case compliance.StatusNonCompliant:
			summary.NonCompliantCount++
		}
	}

	denominator := considered + missingCount
	if denominator == 0 {
		// Nothing to judge: conservative zero rather than a vacuous 100
		s.logger.Warn("framework evaluation produced no scorable items",
			zap.String("framework", fw.String()))
		summary.Score = values.ZeroScore()
		return summary
	}

	score, err := values.NewScoreRounded(100 * total / float64(denominator))
	if err != nil {
		// Weights are bounded to [0,1], so the ratio cannot leave range
		s.logger.Error("framework score out of range",
			zap.String("framework", fw.String()), zap.Error(err))
		score = values.ZeroScore()
	}
	summary.Score = score
	return summary
}

// ScoreOverall is the unweighted arithmetic mean of per-framework scores,
// rounded to one decimal. Each framework counts once regardless of its
// catalog size. Summation runs in framework enum order for determinism.
func (s *Scorer) ScoreOverall(summaries map[requirement.Framework]compliance.Summary) values.Score {
	if len(summaries) == 0 {
		return values.ZeroScore()
	}

	frameworks := make([]requirement.Framework, 0, len(summaries))
	for fw := range summaries {
		frameworks = append(frameworks, fw)
	}
	sort.Slice(frameworks, func(i, j int) bool { return frameworks[i] < frameworks[j] })

	var total float64
	for _, fw := range frameworks {
		total += summaries[fw].Score.Float64()
	}

	score, err := values.NewScoreRounded(total / float64(len(frameworks)))
	if err != nil {
		s.logger.Error("overall score out of range", zap.Error(err))
		return values.ZeroScore()
	}
	return score
}

// HighRiskItems returns all high-risk results ordered by descending
// requirement risk weight, then ascending clause position.
func (s *Scorer) HighRiskItems(results []*compliance.Result) []*compliance.Result {
	var high []*compliance.Result
	for _, result := range results {
		if result.RiskLevel == compliance.RiskHigh {
			high = append(high, result)
		}
	}

	sort.SliceStable(high, func(i, j int) bool {
		if high[i].RequirementRiskWeight != high[j].RequirementRiskWeight {
			return high[i].RequirementRiskWeight > high[j].RequirementRiskWeight
		}
		return high[i].ClausePosition < high[j].ClausePosition
	})
	return high
}
