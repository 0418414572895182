package values

import (
	"fmt"
	"math"
)

// Embedding is a fixed-length dense vector produced by the upstream
// embedding model. Dimensionality is a deployment-time contract between
// the clause pipeline and the requirement catalog.
type Embedding struct {
	vector []float64
}

// NewEmbedding creates an Embedding value object with validation
func NewEmbedding(vector []float64) (Embedding, error) {
	if len(vector) == 0 {
		return Embedding{}, fmt.Errorf("embedding vector cannot be empty")
	}
	for i, v := range vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Embedding{}, fmt.Errorf("embedding component %d is not finite", i)
		}
	}
	copied := make([]float64, len(vector))
	copy(copied, vector)
	return Embedding{vector: copied}, nil
}

// MustNewEmbedding creates an Embedding and panics on error (for constants/tests)
func MustNewEmbedding(vector []float64) Embedding {
	e, err := NewEmbedding(vector)
	if err != nil {
		panic(err)
	}
	return e
}

// IsZero reports whether the embedding is absent (malformed upstream input)
func (e Embedding) IsZero() bool {
	return len(e.vector) == 0
}

// Dimension returns the vector length, 0 for an absent embedding
func (e Embedding) Dimension() int {
	return len(e.vector)
}

// Vector returns a defensive copy of the underlying vector
func (e Embedding) Vector() []float64 {
	out := make([]float64, len(e.vector))
	copy(out, e.vector)
	return out
}

// CosineSimilarity computes the cosine similarity between two embeddings.
// Both must be present and of equal dimension; a zero-magnitude vector
// yields similarity 0 rather than NaN.
func (e Embedding) CosineSimilarity(other Embedding) (Similarity, error) {
	if e.IsZero() || other.IsZero() {
		return Similarity{}, fmt.Errorf("cosine similarity requires both embeddings to be present")
	}
	if len(e.vector) != len(other.vector) {
		return Similarity{}, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(e.vector), len(other.vector))
	}

	var dot, normA, normB float64
	for i := range e.vector {
		dot += e.vector[i] * other.vector[i]
		normA += e.vector[i] * e.vector[i]
		normB += other.vector[i] * other.vector[i]
	}

	if normA == 0 || normB == 0 {
		return MustNewSimilarity(0), nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp floating point drift so downstream range checks never trip
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return MustNewSimilarity(sim), nil
}
