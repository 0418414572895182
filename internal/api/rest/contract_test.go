//go:build contract

package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const specPath = "../../../api/openapi.yaml"

func newContractValidator(t *testing.T) *ContractValidator {
	t.Helper()
	cv, err := NewContractValidator(specPath)
	require.NoError(t, err)
	return cv
}

func TestContract_SpecLoads(t *testing.T) {
	cv := newContractValidator(t)
	assert.NotNil(t, cv.doc)
	assert.Contains(t, cv.doc.Paths.Map(), "/api/v1/compliance/check")
	assert.Contains(t, cv.doc.Paths.Map(), "/api/v1/compliance/quick-check")
	assert.Contains(t, cv.doc.Paths.Map(), "/api/v1/frameworks")
}

func TestContract_CheckCompliance(t *testing.T) {
	cv := newContractValidator(t)
	h := newTestHandler(t)

	body := CheckComplianceRequest{
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
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "http://localhost/api/v1/compliance/check", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	require.NoError(t, cv.ValidateRequest(req))

	// Re-create the body reader; validation consumed it
	req = httptest.NewRequest(http.MethodPost, "http://localhost/api/v1/compliance/check", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handleCheckCompliance(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NoError(t, cv.ValidateResponse(req, rec.Code, rec.Header(), rec.Body.Bytes()))
}

func TestContract_QuickCheck(t *testing.T) {
	cv := newContractValidator(t)
	h := newTestHandler(t)

	body := QuickCheckRequest{
		Frameworks: []string{"GDPR", "HIPAA"},
		Clauses: []ClauseInput{
			{
				ClauseID:      "c-1",
				Text:          "Access to records is restricted to authorized staff.",
				PredictedType: "Access Control",
				Confidence:    0.8,
				Embedding:     []float64{0, 1},
			},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "http://localhost/api/v1/compliance/quick-check", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	require.NoError(t, cv.ValidateRequest(req))

	req = httptest.NewRequest(http.MethodPost, "http://localhost/api/v1/compliance/quick-check", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handleQuickCheck(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NoError(t, cv.ValidateResponse(req, rec.Code, rec.Header(), rec.Body.Bytes()))
}

func TestContract_FrameworksList(t *testing.T) {
	cv := newContractValidator(t)
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "http://localhost/api/v1/frameworks", nil)
	rec := httptest.NewRecorder()
	h.handleListFrameworks(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, cv.ValidateResponse(req, rec.Code, rec.Header(), rec.Body.Bytes()))
}

func TestContract_ErrorEnvelope(t *testing.T) {
	cv := newContractValidator(t)
	h := newTestHandler(t)

	raw := []byte(`{"document_id":"doc-1","frameworks":["PCI-DSS"]}`)
	req := httptest.NewRequest(http.MethodPost, "http://localhost/api/v1/compliance/check", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handleCheckCompliance(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, cv.ValidateResponse(req, rec.Code, rec.Header(), rec.Body.Bytes()))
}
