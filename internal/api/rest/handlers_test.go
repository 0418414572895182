package rest

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/errors"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	compliancesvc "github.com/clauseguard/compliance-engine-backend/internal/service/compliance"
	"github.com/clauseguard/compliance-engine-backend/internal/testutil/fixtures"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store := fixtures.NewTestStore(t, fixtures.CatalogOptions{PerFramework: 3})
	service := compliancesvc.NewService(zaptest.NewLogger(t), store, nil, compliancesvc.DefaultServiceConfig())
	return NewHandler(slog.New(slog.DiscardHandler), service)
}

func doRequest(t *testing.T, handler http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleCheckCompliance(t *testing.T) {
	h := newTestHandler(t)

	req := CheckComplianceRequest{
		DocumentID: "doc-1",
		Frameworks: []string{"GDPR"},
		Clauses: []ClauseInput{
			{
				ClauseID:      "c-1",
				Text:          "Personal data is processed lawfully and transparently.",
				PredictedType: "Data Processing",
				Confidence:    0.9,
				Embedding:     []float64{1, 0},
			},
		},
	}

	rec := doRequest(t, h.handleCheckCompliance, http.MethodPost, "/api/v1/compliance/check", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report struct {
		DocumentID        string   `json:"document_id"`
		CheckID           string   `json:"check_id"`
		FrameworksChecked []string `json:"frameworks_checked"`
		OverallScore      float64  `json:"overall_score"`
		ClauseResults     []struct {
			ClauseID      string  `json:"clause_id"`
			RequirementID string  `json:"requirement_id"`
			Framework     string  `json:"framework"`
			Status        string  `json:"status"`
			Similarity    float64 `json:"similarity"`
		} `json:"clause_results"`
		MissingRequirements []struct {
			ID string `json:"id"`
		} `json:"missing_requirements"`
		Summaries map[string]struct {
			Score float64 `json:"score"`
		} `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Equal(t, "doc-1", report.DocumentID)
	assert.NotEmpty(t, report.CheckID)
	assert.Equal(t, []string{"GDPR"}, report.FrameworksChecked)
	require.NotEmpty(t, report.ClauseResults)
	assert.Equal(t, "c-1", report.ClauseResults[0].ClauseID)
	assert.Equal(t, "GDPR-000", report.ClauseResults[0].RequirementID)
	assert.Equal(t, "compliant", report.ClauseResults[0].Status)
	assert.InDelta(t, 1.0, report.ClauseResults[0].Similarity, 1e-9)
	// The other two mandatory requirements went unmatched
	assert.Len(t, report.MissingRequirements, 2)
	require.Contains(t, report.Summaries, "GDPR")
}

func TestHandleCheckCompliance_ValidationFailure(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body any
		code string
	}{
		{
			name: "missing document id",
			body: CheckComplianceRequest{Frameworks: []string{"GDPR"}},
			code: "VALIDATION_FAILED",
		},
		{
			name: "empty frameworks",
			body: CheckComplianceRequest{DocumentID: "doc-1", Frameworks: []string{}},
			code: "VALIDATION_FAILED",
		},
		{
			name: "unknown field",
			body: map[string]any{"document_id": "doc-1", "frameworks": []string{"GDPR"}, "bogus": true},
			code: "MALFORMED_BODY",
		},
		{
			name: "confidence above one",
			body: CheckComplianceRequest{
				DocumentID: "doc-1",
				Frameworks: []string{"GDPR"},
				Clauses: []ClauseInput{{
					ClauseID: "c-1", Text: "t", PredictedType: "Other", Confidence: 1.5,
				}},
			},
			code: "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h.handleCheckCompliance, http.MethodPost, "/api/v1/compliance/check", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeErrorResponse(t, rec)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHandleCheckCompliance_UnknownFramework(t *testing.T) {
	h := newTestHandler(t)

	req := CheckComplianceRequest{
		DocumentID: "doc-1",
		Frameworks: []string{"PCI-DSS"},
	}
	rec := doRequest(t, h.handleCheckCompliance, http.MethodPost, "/api/v1/compliance/check", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, "INVALID_FRAMEWORK", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "PCI-DSS")
}

func TestHandleCheckCompliance_MalformedJSON(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compliance/check", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.handleCheckCompliance(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, "MALFORMED_BODY", resp.Error.Code)
}

func TestHandleQuickCheck(t *testing.T) {
	h := newTestHandler(t)

	req := QuickCheckRequest{
		Frameworks: []string{"GDPR", "HIPAA"},
		Clauses: []ClauseInput{
			{
				ClauseID:      "c-1",
				Text:          "Personal data is processed lawfully.",
				PredictedType: "Data Processing",
				Confidence:    0.9,
				Embedding:     []float64{1, 0},
			},
		},
	}
	rec := doRequest(t, h.handleQuickCheck, http.MethodPost, "/api/v1/compliance/quick-check", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp QuickCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Scores, 2)
	assert.Contains(t, resp.Scores, "GDPR")
	assert.Contains(t, resp.Scores, "HIPAA")
	for fw, score := range resp.Scores {
		assert.GreaterOrEqual(t, score, 0.0, fw)
		assert.LessOrEqual(t, score, 100.0, fw)
	}
}

func TestHandleListFrameworks(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h.handleListFrameworks, http.MethodGet, "/api/v1/frameworks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp FrameworksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test", resp.CatalogVersion)
	assert.NotEmpty(t, resp.Checksum)
	assert.Equal(t, 2, resp.Dimension)
	require.Len(t, resp.Frameworks, len(requirement.AllFrameworks()))
	for _, info := range resp.Frameworks {
		assert.Equal(t, 3, info.RequirementCount, info.Name)
		assert.Equal(t, 3, info.MandatoryCount, info.Name)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h.handleHealthz, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h.handleReadyz, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var ready map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, "ready", ready["status"])
}

func TestParseFrameworks_Dedupes(t *testing.T) {
	frameworks, err := parseFrameworks([]string{"gdpr", "GDPR", "hipaa"})
	require.NoError(t, err)
	// Dedup happens in the service; the parser preserves request order
	require.Len(t, frameworks, 3)
	assert.Equal(t, requirement.FrameworkGDPR, frameworks[0])
	assert.Equal(t, requirement.FrameworkHIPAA, frameworks[2])
}

func TestBuildClauses_PositionDefaultsToIndex(t *testing.T) {
	explicit := 7
	inputs := []ClauseInput{
		{ClauseID: "c-0", Text: "first clause text", PredictedType: "Other", Confidence: 0.5},
		{ClauseID: "c-1", Text: "second clause text", PredictedType: "Other", Confidence: 0.5, Position: &explicit},
	}
	clauses, err := buildClauses(inputs)
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	assert.Equal(t, 0, clauses[0].Position)
	assert.Equal(t, 7, clauses[1].Position)
	assert.False(t, clauses[0].HasEmbedding())
}

func TestBuildClauses_RejectsBadEmbedding(t *testing.T) {
	inputs := []ClauseInput{
		{ClauseID: "c-0", Text: "clause text", PredictedType: "Other", Confidence: 0.5,
			Embedding: []float64{1, math.NaN()}},
	}
	_, err := buildClauses(inputs)
	require.Error(t, err)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_CLAUSE", appErr.Code)
}

func TestHandleMatchCandidates(t *testing.T) {
	h := newTestHandler(t)

	req := MatchCandidatesRequest{
		Framework: "GDPR",
		Clauses: []ClauseInput{
			{
				ClauseID:      "c-1",
				Text:          "Personal data is processed lawfully.",
				PredictedType: "Data Processing",
				Confidence:    0.9,
				Embedding:     []float64{0.8, 0.6},
			},
			{
				ClauseID:      "c-2",
				Text:          "Term sheet boilerplate.",
				PredictedType: "Other",
				Confidence:    0.5,
			},
		},
	}

	rec := doRequest(t, h.handleMatchCandidates, http.MethodPost, "/api/v1/compliance/candidates", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp MatchCandidatesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "GDPR", resp.Framework)
	// Only two of the three catalog requirements clear the floor; the
	// embedding-less clause produces no entry at all.
	require.Contains(t, resp.Candidates, "c-1")
	assert.NotContains(t, resp.Candidates, "c-2")
	ranked := resp.Candidates["c-1"]
	require.Len(t, ranked, 2)
	assert.Equal(t, "GDPR-000", ranked[0].RequirementID)
	assert.InDelta(t, 0.8, ranked[0].Similarity, 1e-9)
	assert.Equal(t, "GDPR-001", ranked[1].RequirementID)
}

func TestHandleMatchCandidates_UnknownFramework(t *testing.T) {
	h := newTestHandler(t)

	req := MatchCandidatesRequest{
		Framework: "PCI-DSS",
		Clauses: []ClauseInput{
			{ClauseID: "c-1", Text: "x", PredictedType: "Other", Confidence: 0.5},
		},
	}

	rec := doRequest(t, h.handleMatchCandidates, http.MethodPost, "/api/v1/compliance/candidates", req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FRAMEWORK", decodeErrorResponse(t, rec).Error.Code)
}

func TestHandleNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h.handleNotFound, http.MethodGet, "/api/v1/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, "RESOURCE_NOT_FOUND", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "/api/v1/nope")
}
