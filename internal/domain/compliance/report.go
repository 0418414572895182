package compliance

import (
	"time"

	"github.com/google/uuid"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/errors"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// Report is the sole hand-off object of a compliance check. Built fresh
// on every invocation; no state is shared across calls.
type Report struct {
	DocumentID          string                                  `json:"document_id"`
	CheckID             uuid.UUID                               `json:"check_id"`
	FrameworksChecked   []requirement.Framework                 `json:"frameworks_checked"`
	OverallScore        values.Score                            `json:"overall_score"`
	ClauseResults       []*Result                               `json:"clause_results"`
	MissingRequirements []*requirement.Requirement              `json:"missing_requirements"`
	HighRiskItems       []*Result                               `json:"high_risk_items"`
	Summaries           map[requirement.Framework]Summary       `json:"summaries"`
	ClauseSummary       clauseSummary                           `json:"clause_summary"`
	GeneratedAt         time.Time                               `json:"generated_at"`
}

// clauseSummary mirrors clause.Summary without importing the package
// (kept flat so the report marshals as one self-contained document).
type clauseSummary struct {
	TotalClauses       int            `json:"total_clauses"`
	AvgConfidence      float64        `json:"avg_confidence"`
	LowConfidenceCount int            `json:"low_confidence_count"`
	TypeDistribution   map[string]int `json:"type_distribution"`
}

// SetClauseSummary attaches document-level classification statistics
func (r *Report) SetClauseSummary(total int, avgConfidence float64, lowConfidence int, distribution map[string]int) {
	r.ClauseSummary = clauseSummary{
		TotalClauses:       total,
		AvgConfidence:      avgConfidence,
		LowConfidenceCount: lowConfidence,
		TypeDistribution:   distribution,
	}
}

// VerifyMandatoryCoverage checks the core report invariant: every mandatory
// requirement of each checked framework appears exactly once, either as a
// resolved result or in the missing list. A violation is a defect, and the
// report must be withheld.
func (r *Report) VerifyMandatoryCoverage(store *requirement.Store) error {
	resolved := make(map[string]int)
	for _, result := range r.ClauseResults {
		if result.RequirementID != "" {
			resolved[result.RequirementID]++
		}
	}
	missing := make(map[string]int)
	for _, req := range r.MissingRequirements {
		missing[req.ID]++
	}

	for _, fw := range r.FrameworksChecked {
		mandatory, err := store.Mandatory(fw)
		if err != nil {
			return err
		}
		for _, req := range mandatory {
			n := resolved[req.ID] + missing[req.ID]
			if n != 1 {
				return errors.ErrMandatoryCoverage.WithDetails(map[string]interface{}{
					"requirement_id": req.ID,
					"framework":      fw.String(),
					"occurrences":    n,
				})
			}
		}
	}
	return nil
}
