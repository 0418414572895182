package compliance

import (
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// MatchCandidate pairs a clause with a requirement it may satisfy.
// Ephemeral: produced by the matcher, consumed immediately by the assessor.
type MatchCandidate struct {
	RequirementID string
	ClauseID      string
	Similarity    values.Similarity
}

// Result records the assessment of one clause against one requirement
// within one framework check. Immutable after creation.
type Result struct {
	ClauseID string `json:"clause_id"`
	// RequirementID is empty for informational not-applicable results
	RequirementID string                `json:"requirement_id,omitempty"`
	Framework     requirement.Framework `json:"framework"`
	Status        Status                `json:"status"`
	RiskLevel     RiskLevel             `json:"risk_level"`
	Similarity    values.Similarity     `json:"similarity"`
	Confidence    values.Confidence     `json:"confidence"`
	// Explanation is a deterministic template naming the threshold
	// crossed; free-form text belongs to the recommendation layer.
	Explanation string `json:"explanation"`
	// RequirementMandatory and RequirementRiskWeight are carried for
	// risk ranking without a catalog lookup at report-assembly time.
	RequirementMandatory  bool    `json:"-"`
	RequirementRiskWeight float64 `json:"-"`
	// ClausePosition orders findings by document position
	ClausePosition int `json:"-"`
}

// Countable reports whether the result participates in scoring.
// Not-applicable results are informational only.
func (r *Result) Countable() bool {
	return r.Status != StatusNotApplicable
}

// Summary is the per-framework aggregate of a compliance check
type Summary struct {
	Framework         requirement.Framework `json:"framework"`
	Score             values.Score          `json:"score"`
	CompliantCount    int                   `json:"compliant_count"`
	PartialCount      int                   `json:"partial_count"`
	NonCompliantCount int                   `json:"non_compliant_count"`
	MissingCount      int                   `json:"missing_count"`
}
