package compliance

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/errors"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

func TestStatus_Weight(t *testing.T) {
	assert.Equal(t, 1.0, StatusCompliant.Weight())
	assert.Equal(t, 0.5, StatusPartial.Weight())
	assert.Equal(t, 0.0, StatusNonCompliant.Weight())
	assert.Equal(t, 0.0, StatusNotApplicable.Weight())
}

func TestDeriveRiskLevel(t *testing.T) {
	tests := []struct {
		name      string
		mandatory bool
		status    Status
		want      RiskLevel
	}{
		{name: "mandatory non-compliant", mandatory: true, status: StatusNonCompliant, want: RiskHigh},
		{name: "mandatory partial", mandatory: true, status: StatusPartial, want: RiskMedium},
		{name: "optional non-compliant", mandatory: false, status: StatusNonCompliant, want: RiskMedium},
		{name: "optional partial", mandatory: false, status: StatusPartial, want: RiskLow},
		{name: "mandatory compliant", mandatory: true, status: StatusCompliant, want: RiskLow},
		{name: "not applicable", mandatory: false, status: StatusNotApplicable, want: RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveRiskLevel(tt.mandatory, tt.status))
		})
	}
}

func coverageStore(t *testing.T) *requirement.Store {
	t.Helper()
	catalogs := make(map[requirement.Framework][]*requirement.Requirement)
	for _, fw := range requirement.AllFrameworks() {
		for i := 0; i < 2; i++ {
			req, err := requirement.New(
				fmt.Sprintf("%s-%d", fw, i), fw, "text", "Data Processing", true,
				values.MustNewEmbedding([]float64{0.1, 0.2}), 1.0,
			)
			require.NoError(t, err)
			catalogs[fw] = append(catalogs[fw], req)
		}
	}
	store, err := requirement.NewStore(catalogs, "test")
	require.NoError(t, err)
	return store
}

func TestReport_VerifyMandatoryCoverage(t *testing.T) {
	store := coverageStore(t)
	gdpr, err := store.Requirements(requirement.FrameworkGDPR)
	require.NoError(t, err)

	report := &Report{
		FrameworksChecked: []requirement.Framework{requirement.FrameworkGDPR},
		ClauseResults: []*Result{
			{ClauseID: "c-1", RequirementID: gdpr[0].ID, Framework: requirement.FrameworkGDPR, Status: StatusCompliant},
		},
		MissingRequirements: []*requirement.Requirement{gdpr[1]},
	}

	assert.NoError(t, report.VerifyMandatoryCoverage(store))
}

func TestReport_VerifyMandatoryCoverage_Violations(t *testing.T) {
	store := coverageStore(t)
	gdpr, err := store.Requirements(requirement.FrameworkGDPR)
	require.NoError(t, err)

	t.Run("requirement in both sets", func(t *testing.T) {
		report := &Report{
			FrameworksChecked: []requirement.Framework{requirement.FrameworkGDPR},
			ClauseResults: []*Result{
				{ClauseID: "c-1", RequirementID: gdpr[0].ID, Framework: requirement.FrameworkGDPR},
			},
			MissingRequirements: []*requirement.Requirement{gdpr[0], gdpr[1]},
		}
		err := report.VerifyMandatoryCoverage(store)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvariant))
	})

	t.Run("requirement in neither set", func(t *testing.T) {
		report := &Report{
			FrameworksChecked:   []requirement.Framework{requirement.FrameworkGDPR},
			MissingRequirements: []*requirement.Requirement{gdpr[1]},
		}
		err := report.VerifyMandatoryCoverage(store)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrMandatoryCoverage)
	})
}
