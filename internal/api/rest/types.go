package rest

import (
	"fmt"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/clause"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/errors"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// CheckComplianceRequest is the body of POST /api/v1/compliance/check
type CheckComplianceRequest struct {
	DocumentID string        `json:"document_id" validate:"required,max=255"`
	Frameworks []string      `json:"frameworks" validate:"required,min=1,dive,required"`
	Clauses    []ClauseInput `json:"clauses" validate:"omitempty,dive"`
}

// QuickCheckRequest is the body of POST /api/v1/compliance/quick-check
type QuickCheckRequest struct {
	Frameworks []string      `json:"frameworks" validate:"required,min=1,dive,required"`
	Clauses    []ClauseInput `json:"clauses" validate:"omitempty,dive"`
}

// ClauseInput is one classified, embedded clause from the upstream
// pipeline. Embedding may be absent; such clauses are handled by the
// engine's fallback path.
type ClauseInput struct {
	ClauseID      string    `json:"clause_id" validate:"required,max=255"`
	Text          string    `json:"text" validate:"required"`
	PredictedType string    `json:"predicted_type" validate:"required,max=255"`
	Confidence    float64   `json:"confidence" validate:"min=0,max=1"`
	Embedding     []float64 `json:"embedding,omitempty"`
	Position      *int      `json:"position,omitempty" validate:"omitempty,min=0"`
}

// MatchCandidatesRequest is the body of POST /api/v1/compliance/candidates
type MatchCandidatesRequest struct {
	Framework string        `json:"framework" validate:"required"`
	Clauses   []ClauseInput `json:"clauses" validate:"required,min=1,dive"`
}

// CandidateInfo is one requirement a clause may satisfy, ranked by
// similarity
type CandidateInfo struct {
	RequirementID string  `json:"requirement_id"`
	Similarity    float64 `json:"similarity"`
}

// MatchCandidatesResponse maps clause ids to their ranked candidates.
// Clauses with no candidates above the floor are absent.
type MatchCandidatesResponse struct {
	Framework  string                     `json:"framework"`
	Candidates map[string][]CandidateInfo `json:"candidates"`
}

// QuickCheckResponse carries per-framework scores only
type QuickCheckResponse struct {
	Scores map[string]float64 `json:"scores"`
}

// FrameworkInfo describes one loaded framework catalog
type FrameworkInfo struct {
	Name             string `json:"name"`
	RequirementCount int    `json:"requirement_count"`
	MandatoryCount   int    `json:"mandatory_count"`
}

// FrameworksResponse is the body of GET /api/v1/frameworks
type FrameworksResponse struct {
	Frameworks     []FrameworkInfo `json:"frameworks"`
	CatalogVersion string          `json:"catalog_version"`
	Checksum       string          `json:"checksum"`
	Dimension      int             `json:"dimension"`
}

// parseFrameworks resolves the requested framework labels
func parseFrameworks(labels []string) ([]requirement.Framework, error) {
	frameworks := make([]requirement.Framework, 0, len(labels))
	for _, label := range labels {
		fw, err := requirement.ParseFramework(label)
		if err != nil {
			return nil, errors.NewValidationError("INVALID_FRAMEWORK",
				fmt.Sprintf("unknown framework %q", label)).WithCause(err)
		}
		frameworks = append(frameworks, fw)
	}
	return frameworks, nil
}

// buildClauses converts clause inputs into domain analyses. Positions
// default to list order when the pipeline omits them.
func buildClauses(inputs []ClauseInput) ([]*clause.Analysis, error) {
	clauses := make([]*clause.Analysis, 0, len(inputs))
	for i, input := range inputs {
		confidence, err := values.NewConfidence(input.Confidence)
		if err != nil {
			return nil, errors.NewValidationError("INVALID_CLAUSE",
				fmt.Sprintf("clause %q: %v", input.ClauseID, err))
		}

		var embedding values.Embedding
		if len(input.Embedding) > 0 {
			embedding, err = values.NewEmbedding(input.Embedding)
			if err != nil {
				return nil, errors.NewValidationError("INVALID_CLAUSE",
					fmt.Sprintf("clause %q: %v", input.ClauseID, err))
			}
		}

		position := i
		if input.Position != nil {
			position = *input.Position
		}

		analysis, err := clause.NewAnalysis(input.ClauseID, input.Text, input.PredictedType, confidence, embedding, position)
		if err != nil {
			return nil, errors.NewValidationError("INVALID_CLAUSE",
				fmt.Sprintf("clause %d: %v", i, err))
		}
		clauses = append(clauses, analysis)
	}
	return clauses, nil
}
