package compliance

import (
	"strings"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/clause"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// TokenOverlapMatcher is the default KeywordMatcher: the fraction of a
// requirement's catalog keywords present in the clause text must clear
// the configured overlap bar. Deterministic and order-independent.
type TokenOverlapMatcher struct {
	minOverlap float64
}

// NewTokenOverlapMatcher creates a TokenOverlapMatcher with the given bar
func NewTokenOverlapMatcher(minOverlap float64) *TokenOverlapMatcher {
	if minOverlap <= 0 {
		minOverlap = 0.5
	}
	return &TokenOverlapMatcher{minOverlap: minOverlap}
}

// Match implements KeywordMatcher
func (m *TokenOverlapMatcher) Match(c *clause.Analysis, req *requirement.Requirement) (values.Similarity, bool) {
	if len(req.Keywords) == 0 {
		return values.Similarity{}, false
	}

	tokens := tokenize(c.Text)
	if len(tokens) == 0 {
		return values.Similarity{}, false
	}

	hits := 0
	for _, kw := range req.Keywords {
		if containsPhrase(tokens, c.Text, kw) {
			hits++
		}
	}

	overlap := float64(hits) / float64(len(req.Keywords))
	if overlap < m.minOverlap {
		return values.Similarity{}, false
	}
	return values.MustNewSimilarity(overlap), true
}

func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}

// containsPhrase matches single-word keywords against the token set and
// multi-word keywords as substrings of the lowered clause text.
func containsPhrase(tokens map[string]struct{}, text, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	if !strings.Contains(keyword, " ") {
		_, ok := tokens[keyword]
		return ok
	}
	return strings.Contains(strings.ToLower(text), keyword)
}
