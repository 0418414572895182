package clause

import (
	"fmt"
	"strings"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// TypeScore is an alternative classification for a clause
type TypeScore struct {
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

// Analysis is a classified, embedded contract clause as produced by the
// upstream NLP pipeline. The engine treats it as read-only input.
type Analysis struct {
	ClauseID      string `json:"clause_id"`
	Text          string `json:"text"`
	PredictedType string `json:"predicted_type"`
	Confidence    values.Confidence
	// Embedding may be absent when the upstream pipeline failed for this
	// clause; such clauses are skipped for semantic matching.
	Embedding        values.Embedding
	AlternativeTypes []TypeScore `json:"alternative_types,omitempty"`
	// Position is the clause's index within the document, used for
	// deterministic ordering of findings.
	Position int `json:"position"`
}

// NewAnalysis creates a clause Analysis with validation
func NewAnalysis(clauseID, text, predictedType string, confidence values.Confidence, embedding values.Embedding, position int) (*Analysis, error) {
	if strings.TrimSpace(clauseID) == "" {
		return nil, fmt.Errorf("clause id cannot be empty")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("clause text cannot be empty")
	}
	if strings.TrimSpace(predictedType) == "" {
		return nil, fmt.Errorf("predicted type cannot be empty")
	}
	if position < 0 {
		return nil, fmt.Errorf("clause position cannot be negative, got %d", position)
	}

	return &Analysis{
		ClauseID:      clauseID,
		Text:          text,
		PredictedType: predictedType,
		Confidence:    confidence,
		Embedding:     embedding,
		Position:      position,
	}, nil
}

// HasEmbedding reports whether the clause carries a usable embedding
func (a *Analysis) HasEmbedding() bool {
	return !a.Embedding.IsZero()
}
