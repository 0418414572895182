package compliance

// Thresholds holds the assessment decision-table cut points. All matching
// and assessment behavior is driven from here so it stays auditable.
type Thresholds struct {
	// SimilarityFloor is the minimum cosine similarity for a clause to be
	// considered a candidate match at all.
	SimilarityFloor float64 `json:"similarity_floor"`
	// HighThreshold is the similarity bar for a compliant verdict.
	HighThreshold float64 `json:"high_threshold"`
	// MediumThreshold is the similarity bar for a partial verdict.
	MediumThreshold float64 `json:"medium_threshold"`
	// ConfidenceThreshold is the classifier confidence bar for a
	// compliant verdict.
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	// TopK caps the candidates returned per clause.
	TopK int `json:"top_k"`
}

// DefaultThresholds returns the default assessment thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		SimilarityFloor:     0.3,
		HighThreshold:       0.75,
		MediumThreshold:     0.5,
		ConfidenceThreshold: 0.75,
		TopK:                3,
	}
}

// ServiceConfig holds the compliance engine configuration
type ServiceConfig struct {
	Thresholds Thresholds `json:"thresholds"`
	// ReportUnmatchedClauses emits informational not-applicable results
	// for clauses that matched no requirement of a framework.
	ReportUnmatchedClauses bool `json:"report_unmatched_clauses"`
	// EnableKeywordFallback lets clauses without embeddings be matched
	// by catalog keywords instead of being skipped outright.
	EnableKeywordFallback bool `json:"enable_keyword_fallback"`
	// KeywordMinOverlap is the keyword-token overlap bar for the fallback.
	KeywordMinOverlap float64 `json:"keyword_min_overlap"`
	// MaxParallelFrameworks caps concurrent framework evaluations.
	// Zero means one goroutine per requested framework.
	MaxParallelFrameworks int `json:"max_parallel_frameworks"`
}

// DefaultServiceConfig returns a default engine configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Thresholds:             DefaultThresholds(),
		ReportUnmatchedClauses: true,
		EnableKeywordFallback:  true,
		KeywordMinOverlap:      0.5,
		MaxParallelFrameworks:  0,
	}
}
