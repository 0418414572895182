package clause

// Summary aggregates classification statistics over a document's clauses
type Summary struct {
	TotalClauses       int            `json:"total_clauses"`
	AvgConfidence      float64        `json:"avg_confidence"`
	LowConfidenceCount int            `json:"low_confidence_count"`
	TypeDistribution   map[string]int `json:"type_distribution"`
}

// DefaultLowConfidenceThreshold flags clauses worth a manual look
const DefaultLowConfidenceThreshold = 0.6

// Summarize computes a classification summary over the given analyses
func Summarize(analyses []*Analysis) Summary {
	summary := Summary{
		TypeDistribution: make(map[string]int),
	}
	if len(analyses) == 0 {
		return summary
	}

	var total float64
	for _, a := range analyses {
		summary.TotalClauses++
		total += a.Confidence.Float64()
		summary.TypeDistribution[a.PredictedType]++
		if !a.Confidence.AtLeast(DefaultLowConfidenceThreshold) {
			summary.LowConfidenceCount++
		}
	}
	summary.AvgConfidence = total / float64(len(analyses))
	return summary
}

// LowConfidence returns the clauses whose confidence falls below threshold
func LowConfidence(analyses []*Analysis, threshold float64) []*Analysis {
	var out []*Analysis
	for _, a := range analyses {
		if !a.Confidence.AtLeast(threshold) {
			out = append(out, a)
		}
	}
	return out
}

// OfType returns the clauses whose predicted type equals the given label
func OfType(analyses []*Analysis, predictedType string) []*Analysis {
	var out []*Analysis
	for _, a := range analyses {
		if a.PredictedType == predictedType {
			out = append(out, a)
		}
	}
	return out
}
