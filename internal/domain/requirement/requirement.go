package requirement

import (
	"fmt"
	"strings"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// Requirement is a single provision a compliant contract should contain.
// Instances are immutable once loaded; the Store owns the catalog.
type Requirement struct {
	ID        string    `json:"id"`
	Framework Framework `json:"framework"`
	Text      string    `json:"text"`
	// Category is the clause type this requirement expects, e.g.
	// "Data Processing". Compared against the classifier's predicted type.
	Category string `json:"category"`
	// AcceptedTypes are additional clause type labels the catalog declares
	// as satisfying this requirement's category.
	AcceptedTypes []string `json:"accepted_types,omitempty"`
	// Keywords feed the fallback matcher for clauses without embeddings.
	Keywords           []string         `json:"keywords,omitempty"`
	Mandatory          bool             `json:"mandatory"`
	ReferenceEmbedding values.Embedding `json:"-"`
	RiskWeight         float64          `json:"risk_weight"`
	// CatalogIndex is the requirement's position in its framework catalog,
	// used as the deterministic tie-break order.
	CatalogIndex int `json:"-"`
}

// New creates a Requirement with validation
func New(id string, framework Framework, text, category string, mandatory bool, embedding values.Embedding, riskWeight float64) (*Requirement, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("requirement id cannot be empty")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("requirement text cannot be empty")
	}
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("requirement category cannot be empty")
	}
	if embedding.IsZero() {
		return nil, fmt.Errorf("requirement reference embedding cannot be empty")
	}
	if riskWeight < 0 {
		return nil, fmt.Errorf("risk weight cannot be negative, got %f", riskWeight)
	}

	return &Requirement{
		ID:                 id,
		Framework:          framework,
		Text:               text,
		Category:           category,
		Mandatory:          mandatory,
		ReferenceEmbedding: embedding,
		RiskWeight:         riskWeight,
	}, nil
}

// MatchesType reports whether the given clause type label satisfies this
// requirement's category, folding case, spaces, underscores and hyphens,
// and honoring catalog-declared accepted aliases.
func (r *Requirement) MatchesType(clauseType string) bool {
	normalized := normalizeTypeLabel(clauseType)
	if normalized == "" {
		return false
	}
	if normalized == normalizeTypeLabel(r.Category) {
		return true
	}
	for _, alias := range r.AcceptedTypes {
		if normalized == normalizeTypeLabel(alias) {
			return true
		}
	}
	return false
}

func normalizeTypeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "")
	return replacer.Replace(label)
}
