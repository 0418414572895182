package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/compliance"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

func result(status compliance.Status, risk compliance.RiskLevel, weight float64, position int) *compliance.Result {
	return &compliance.Result{
		ClauseID:              "c",
		RequirementID:         "r",
		Status:                status,
		RiskLevel:             risk,
		Similarity:            values.MustNewSimilarity(0.6),
		Confidence:            values.MustNewConfidence(0.8),
		RequirementRiskWeight: weight,
		ClausePosition:        position,
	}
}

func TestScorer_ScoreFramework(t *testing.T) {
	scorer := NewScorer(zaptest.NewLogger(t))

	tests := []struct {
		name      string
		results   []*compliance.Result
		missing   int
		wantScore float64
	}{
		{
			name: "all compliant",
			results: []*compliance.Result{
				result(compliance.StatusCompliant, compliance.RiskLow, 1, 0),
				result(compliance.StatusCompliant, compliance.RiskLow, 1, 1),
			},
			wantScore: 100,
		},
		{
			name: "partial counts half",
			results: []*compliance.Result{
				result(compliance.StatusCompliant, compliance.RiskLow, 1, 0),
				result(compliance.StatusPartial, compliance.RiskMedium, 1, 1),
			},
			wantScore: 75,
		},
		{
			name: "missing depresses the score",
			results: []*compliance.Result{
				result(compliance.StatusCompliant, compliance.RiskLow, 1, 0),
			},
			missing:   1,
			wantScore: 50,
		},
		{
			name:      "everything missing",
			missing:   3,
			wantScore: 0,
		},
		{
			name: "non-compliant contributes zero",
			results: []*compliance.Result{
				result(compliance.StatusNonCompliant, compliance.RiskHigh, 1, 0),
				result(compliance.StatusCompliant, compliance.RiskLow, 1, 1),
			},
			wantScore: 50,
		},
		{
			name: "not-applicable excluded from both sides",
			results: []*compliance.Result{
				result(compliance.StatusCompliant, compliance.RiskLow, 1, 0),
				result(compliance.StatusNotApplicable, compliance.RiskLow, 0, 1),
			},
			wantScore: 100,
		},
		{
			name:      "nothing scorable",
			wantScore: 0,
		},
		{
			name: "mixed statuses",
			results: []*compliance.Result{
				result(compliance.StatusCompliant, compliance.RiskLow, 1, 0),
				result(compliance.StatusPartial, compliance.RiskMedium, 1, 1),
				result(compliance.StatusNonCompliant, compliance.RiskHigh, 1, 2),
			},
			wantScore: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := scorer.ScoreFramework(requirement.FrameworkGDPR, tt.results, tt.missing)
			assert.Equal(t, tt.wantScore, summary.Score.Float64())
			assert.Equal(t, tt.missing, summary.MissingCount)
		})
	}
}

func TestScorer_ScoreFramework_Counts(t *testing.T) {
	scorer := NewScorer(zaptest.NewLogger(t))
	results := []*compliance.Result{
		result(compliance.StatusCompliant, compliance.RiskLow, 1, 0),
		result(compliance.StatusPartial, compliance.RiskMedium, 1, 1),
		result(compliance.StatusPartial, compliance.RiskMedium, 1, 2),
		result(compliance.StatusNonCompliant, compliance.RiskHigh, 1, 3),
		result(compliance.StatusNotApplicable, compliance.RiskLow, 0, 4),
	}

	summary := scorer.ScoreFramework(requirement.FrameworkHIPAA, results, 2)
	assert.Equal(t, 1, summary.CompliantCount)
	assert.Equal(t, 2, summary.PartialCount)
	assert.Equal(t, 1, summary.NonCompliantCount)
	assert.Equal(t, 2, summary.MissingCount)
	// (1 + 0.5 + 0.5 + 0) / (4 + 2) = 33.3
	assert.Equal(t, 33.3, summary.Score.Float64())
}

func TestScorer_ScoreOverall(t *testing.T) {
	scorer := NewScorer(zaptest.NewLogger(t))

	summaries := map[requirement.Framework]compliance.Summary{
		requirement.FrameworkGDPR:  {Framework: requirement.FrameworkGDPR, Score: values.MustNewScore(100)},
		requirement.FrameworkHIPAA: {Framework: requirement.FrameworkHIPAA, Score: values.MustNewScore(0)},
	}
	assert.Equal(t, 50.0, scorer.ScoreOverall(summaries).Float64())

	summaries[requirement.FrameworkCCPA] = compliance.Summary{
		Framework: requirement.FrameworkCCPA, Score: values.MustNewScore(50),
	}
	// (100 + 0 + 50) / 3 = 66.7 after half-up rounding
	assert.Equal(t, 66.7, scorer.ScoreOverall(summaries).Float64())

	assert.Equal(t, 0.0, scorer.ScoreOverall(nil).Float64())
}

func TestScorer_HighRiskItems(t *testing.T) {
	scorer := NewScorer(zaptest.NewLogger(t))

	results := []*compliance.Result{
		result(compliance.StatusCompliant, compliance.RiskLow, 1.0, 0),
		result(compliance.StatusNonCompliant, compliance.RiskHigh, 0.5, 1),
		result(compliance.StatusNonCompliant, compliance.RiskHigh, 2.0, 5),
		result(compliance.StatusNonCompliant, compliance.RiskHigh, 2.0, 2),
		result(compliance.StatusPartial, compliance.RiskMedium, 3.0, 3),
	}

	high := scorer.HighRiskItems(results)
	assert.Len(t, high, 3)
	// Descending risk weight, then ascending clause position
	assert.Equal(t, 2.0, high[0].RequirementRiskWeight)
	assert.Equal(t, 2, high[0].ClausePosition)
	assert.Equal(t, 2.0, high[1].RequirementRiskWeight)
	assert.Equal(t, 5, high[1].ClausePosition)
	assert.Equal(t, 0.5, high[2].RequirementRiskWeight)
}
