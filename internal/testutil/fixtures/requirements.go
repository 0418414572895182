package fixtures

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// RequirementBuilder builds test Requirement entities
type RequirementBuilder struct {
	t             *testing.T
	id            string
	framework     requirement.Framework
	text          string
	category      string
	acceptedTypes []string
	keywords      []string
	mandatory     bool
	embedding     values.Embedding
	riskWeight    float64
}

// NewRequirementBuilder creates a RequirementBuilder with defaults
func NewRequirementBuilder(t *testing.T) *RequirementBuilder {
	t.Helper()
	return &RequirementBuilder{
		t:          t,
		id:         "gdpr-data-processing",
		framework:  requirement.FrameworkGDPR,
		text:       "Processing of personal data shall be lawful, fair and transparent",
		category:   "Data Processing",
		mandatory:  true,
		embedding:  values.MustNewEmbedding([]float64{1, 0}),
		riskWeight: 1.0,
	}
}

func (b *RequirementBuilder) WithID(id string) *RequirementBuilder {
	b.id = id
	return b
}

func (b *RequirementBuilder) WithFramework(fw requirement.Framework) *RequirementBuilder {
	b.framework = fw
	return b
}

func (b *RequirementBuilder) WithCategory(category string) *RequirementBuilder {
	b.category = category
	return b
}

func (b *RequirementBuilder) WithAcceptedTypes(types ...string) *RequirementBuilder {
	b.acceptedTypes = types
	return b
}

func (b *RequirementBuilder) WithKeywords(keywords ...string) *RequirementBuilder {
	b.keywords = keywords
	return b
}

func (b *RequirementBuilder) WithMandatory(mandatory bool) *RequirementBuilder {
	b.mandatory = mandatory
	return b
}

func (b *RequirementBuilder) WithEmbedding(vector ...float64) *RequirementBuilder {
	b.embedding = values.MustNewEmbedding(vector)
	return b
}

func (b *RequirementBuilder) WithRiskWeight(weight float64) *RequirementBuilder {
	b.riskWeight = weight
	return b
}

// Build creates the Requirement
func (b *RequirementBuilder) Build() *requirement.Requirement {
	b.t.Helper()
	req, err := requirement.New(b.id, b.framework, b.text, b.category, b.mandatory, b.embedding, b.riskWeight)
	require.NoError(b.t, err)
	req.AcceptedTypes = b.acceptedTypes
	req.Keywords = b.keywords
	return req
}

// CatalogOptions tunes the generated test catalog set
type CatalogOptions struct {
	// PerFramework is the catalog size per framework (default 3)
	PerFramework int
	// OptionalEvery marks every Nth requirement optional (0 = all mandatory)
	OptionalEvery int
}

// NewTestStore builds a validated store with deterministic 2-d embeddings
// for every supported framework. Requirement i of each framework points
// along a distinct direction so similarity targeting in tests stays exact.
func NewTestStore(t *testing.T, opts CatalogOptions) *requirement.Store {
	t.Helper()
	if opts.PerFramework <= 0 {
		opts.PerFramework = 3
	}

	directions := [][]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {0.7071067811865476, 0.7071067811865476}}
	categories := []string{"Data Processing", "Confidentiality", "Breach Notification", "Data Retention", "Access Control"}

	catalogs := make(map[requirement.Framework][]*requirement.Requirement)
	for _, fw := range requirement.AllFrameworks() {
		for i := 0; i < opts.PerFramework; i++ {
			mandatory := true
			if opts.OptionalEvery > 0 && (i+1)%opts.OptionalEvery == 0 {
				mandatory = false
			}
			req := NewRequirementBuilder(t).
				WithID(fmt.Sprintf("%s-%03d", fw, i)).
				WithFramework(fw).
				WithCategory(categories[i%len(categories)]).
				WithKeywords("data", "processing").
				WithMandatory(mandatory).
				WithEmbedding(directions[i%len(directions)]...).
				Build()
			catalogs[fw] = append(catalogs[fw], req)
		}
	}

	store, err := requirement.NewStore(catalogs, "test")
	require.NoError(t, err)
	return store
}
