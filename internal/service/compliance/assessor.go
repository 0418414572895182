package compliance

import (
	"fmt"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/clause"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/compliance"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// Assessor decides the compliance status of a single clause-requirement
// pair. The policy is a single ordered decision table; callers guarantee
// the pair already cleared the similarity floor.
type Assessor struct {
	thresholds Thresholds
}

// NewAssessor creates a new Assessor with the given thresholds
func NewAssessor(thresholds Thresholds) *Assessor {
	return &Assessor{thresholds: thresholds}
}

// Assess applies the decision table, in order:
//  1. type agreement + similarity >= high + confidence >= bar -> compliant
//  2. similarity >= medium, or type agreement at low confidence -> partial
//  3. otherwise -> non-compliant
func (a *Assessor) Assess(c *clause.Analysis, req *requirement.Requirement, similarity values.Similarity) *compliance.Result {
	typeMatches := req.MatchesType(c.PredictedType)
	confident := c.Confidence.AtLeast(a.thresholds.ConfidenceThreshold)

	var status compliance.Status
	var explanation string

	switch {
	case typeMatches && similarity.AtLeast(a.thresholds.HighThreshold) && confident:
		status = compliance.StatusCompliant
		explanation = fmt.Sprintf(
			"clause type %q matches category %q; similarity %.2f >= %.2f and confidence %.2f >= %.2f",
			c.PredictedType, req.Category,
			similarity.Float64(), a.thresholds.HighThreshold,
			c.Confidence.Float64(), a.thresholds.ConfidenceThreshold,
		)
	case similarity.AtLeast(a.thresholds.MediumThreshold):
		status = compliance.StatusPartial
		explanation = fmt.Sprintf(
			"similarity %.2f >= %.2f indicates partial coverage; flagged for manual review",
			similarity.Float64(), a.thresholds.MediumThreshold,
		)
	case typeMatches && !confident:
		status = compliance.StatusPartial
		explanation = fmt.Sprintf(
			"clause type %q matches category %q but confidence %.2f < %.2f; flagged for manual review",
			c.PredictedType, req.Category,
			c.Confidence.Float64(), a.thresholds.ConfidenceThreshold,
		)
	default:
		status = compliance.StatusNonCompliant
		explanation = fmt.Sprintf(
			"similarity %.2f < %.2f and no clause type agreement with category %q",
			similarity.Float64(), a.thresholds.MediumThreshold, req.Category,
		)
	}

	return a.buildResult(c, req, status, similarity, explanation)
}

// AssessFallback records a keyword-based match for a clause without an
// embedding. Fallback matches are partial at best.
func (a *Assessor) AssessFallback(c *clause.Analysis, req *requirement.Requirement, overlap values.Similarity) *compliance.Result {
	explanation := fmt.Sprintf(
		"keyword fallback match with overlap %.2f (clause has no embedding); partial at best, flagged for manual review",
		overlap.Float64(),
	)
	return a.buildResult(c, req, compliance.StatusPartial, overlap, explanation)
}

func (a *Assessor) buildResult(c *clause.Analysis, req *requirement.Requirement, status compliance.Status, similarity values.Similarity, explanation string) *compliance.Result {
	return &compliance.Result{
		ClauseID:              c.ClauseID,
		RequirementID:         req.ID,
		Framework:             req.Framework,
		Status:                status,
		RiskLevel:             compliance.DeriveRiskLevel(req.Mandatory, status),
		Similarity:            similarity,
		Confidence:            c.Confidence,
		Explanation:           explanation,
		RequirementMandatory:  req.Mandatory,
		RequirementRiskWeight: req.RiskWeight,
		ClausePosition:        c.Position,
	}
}
