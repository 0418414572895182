package compliance

import (
	"sort"

	"go.uber.org/zap"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/clause"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/compliance"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/errors"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// Matcher computes clause-requirement similarity over embeddings.
// Pure in-memory computation; safe for concurrent use.
type Matcher struct {
	logger *zap.Logger
}

// NewMatcher creates a new Matcher
func NewMatcher(logger *zap.Logger) *Matcher {
	return &Matcher{logger: logger}
}

// FindCandidates returns up to topK requirements whose reference embeddings
// clear the similarity floor against the clause's embedding, in descending
// similarity order with ties broken by catalog order.
func (m *Matcher) FindCandidates(c *clause.Analysis, requirements []*requirement.Requirement, topK int, floor float64) ([]compliance.MatchCandidate, error) {
	if !c.HasEmbedding() {
		return nil, errors.ErrMissingEmbedding.WithDetails(map[string]interface{}{
			"clause_id": c.ClauseID,
		})
	}

	type scored struct {
		candidate compliance.MatchCandidate
		index     int
	}

	candidates := make([]scored, 0, len(requirements))
	for _, req := range requirements {
		sim, err := c.Embedding.CosineSimilarity(req.ReferenceEmbedding)
		if err != nil {
			// A dimension mismatch is a pipeline misconfiguration, fatal for
			// this clause's matching only.
			return nil, errors.ErrDimensionMismatch.WithDetails(map[string]interface{}{
				"clause_id":      c.ClauseID,
				"requirement_id": req.ID,
				"clause_dim":     c.Embedding.Dimension(),
				"catalog_dim":    req.ReferenceEmbedding.Dimension(),
			}).WithCause(err)
		}
		if !sim.AtLeast(floor) {
			continue
		}
		candidates = append(candidates, scored{
			candidate: compliance.MatchCandidate{
				RequirementID: req.ID,
				ClauseID:      c.ClauseID,
				Similarity:    sim,
			},
			index: req.CatalogIndex,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].candidate.Similarity.Float64() != candidates[j].candidate.Similarity.Float64() {
			return candidates[j].candidate.Similarity.LessThan(candidates[i].candidate.Similarity)
		}
		return candidates[i].index < candidates[j].index
	})

	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}

	out := make([]compliance.MatchCandidate, len(candidates))
	for i, s := range candidates {
		out[i] = s.candidate
	}
	return out, nil
}

// ClauseMatch is the matcher's pick of the best clause for a requirement
type ClauseMatch struct {
	Clause     *clause.Analysis
	Similarity values.Similarity
	// Fallback marks a keyword-based match for a clause without embedding
	Fallback bool
}

// BestClause scans the given clauses for the best semantic match against
// the requirement's reference embedding. Clauses must carry embeddings of
// the catalog dimension; the caller pre-filters. Nil means no clause
// cleared the floor. Ties are broken by ascending clause position.
func (m *Matcher) BestClause(req *requirement.Requirement, clauses []*clause.Analysis, floor float64) (*ClauseMatch, error) {
	var best *ClauseMatch
	for _, c := range clauses {
		sim, err := c.Embedding.CosineSimilarity(req.ReferenceEmbedding)
		if err != nil {
			return nil, errors.ErrDimensionMismatch.WithDetails(map[string]interface{}{
				"clause_id":      c.ClauseID,
				"requirement_id": req.ID,
			}).WithCause(err)
		}
		if !sim.AtLeast(floor) {
			continue
		}
		if best == nil || betterMatch(sim, c.Position, best) {
			best = &ClauseMatch{Clause: c, Similarity: sim}
		}
	}
	return best, nil
}

// betterMatch reports whether (sim, position) beats the current best:
// higher similarity wins, equal similarity falls back to the earlier
// clause position regardless of input order.
func betterMatch(sim values.Similarity, position int, best *ClauseMatch) bool {
	if best.Similarity.LessThan(sim) {
		return true
	}
	return best.Similarity.Float64() == sim.Float64() && position < best.Clause.Position
}
