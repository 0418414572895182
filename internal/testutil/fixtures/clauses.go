package fixtures

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/clause"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// ClauseBuilder builds test clause Analysis inputs
type ClauseBuilder struct {
	t             *testing.T
	clauseID      string
	text          string
	predictedType string
	confidence    values.Confidence
	embedding     values.Embedding
	noEmbedding   bool
	position      int
}

// NewClauseBuilder creates a ClauseBuilder with defaults
func NewClauseBuilder(t *testing.T) *ClauseBuilder {
	t.Helper()
	return &ClauseBuilder{
		t:             t,
		clauseID:      "clause-1",
		text:          "The processor shall process personal data only on documented instructions",
		predictedType: "Data Processing",
		confidence:    values.MustNewConfidence(0.9),
		embedding:     values.MustNewEmbedding([]float64{1, 0}),
	}
}

func (b *ClauseBuilder) WithID(id string) *ClauseBuilder {
	b.clauseID = id
	return b
}

func (b *ClauseBuilder) WithText(text string) *ClauseBuilder {
	b.text = text
	return b
}

func (b *ClauseBuilder) WithType(predictedType string) *ClauseBuilder {
	b.predictedType = predictedType
	return b
}

func (b *ClauseBuilder) WithConfidence(confidence float64) *ClauseBuilder {
	b.confidence = values.MustNewConfidence(confidence)
	return b
}

// WithEmbedding sets the clause embedding. With a unit-vector requirement
// embedding (1,0), a clause embedding (x, y) of unit length yields cosine
// similarity exactly x, which keeps threshold tests precise.
func (b *ClauseBuilder) WithEmbedding(vector ...float64) *ClauseBuilder {
	b.embedding = values.MustNewEmbedding(vector)
	b.noEmbedding = false
	return b
}

// WithoutEmbedding simulates a malformed upstream clause
func (b *ClauseBuilder) WithoutEmbedding() *ClauseBuilder {
	b.noEmbedding = true
	return b
}

func (b *ClauseBuilder) WithPosition(position int) *ClauseBuilder {
	b.position = position
	return b
}

// Build creates the clause Analysis
func (b *ClauseBuilder) Build() *clause.Analysis {
	b.t.Helper()
	embedding := b.embedding
	if b.noEmbedding {
		embedding = values.Embedding{}
	}
	a, err := clause.NewAnalysis(b.clauseID, b.text, b.predictedType, b.confidence, embedding, b.position)
	require.NoError(b.t, err)
	return a
}
