package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/errors"
	"github.com/clauseguard/compliance-engine-backend/internal/infrastructure/telemetry"
	compliancesvc "github.com/clauseguard/compliance-engine-backend/internal/service/compliance"
)

const maxRequestBody = 16 << 20 // embeddings make check requests large

// Handler serves the compliance API endpoints
type Handler struct {
	logger   *slog.Logger
	service  *compliancesvc.Service
	validate *validator.Validate
	tracer   trace.Tracer
	started  time.Time
}

// NewHandler creates the API handler around the compliance service
func NewHandler(logger *slog.Logger, service *compliancesvc.Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		tracer:   telemetry.Tracer("api.rest"),
		started:  time.Now(),
	}
}

// handleCheckCompliance runs a full compliance check and returns the report
func (h *Handler) handleCheckCompliance(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "compliance.check")
	defer span.End()
	logger := telemetry.WithContext(ctx, h.logger)

	var req CheckComplianceRequest
	if !h.decode(w, r, &req) {
		return
	}

	frameworks, err := parseFrameworks(req.Frameworks)
	if err != nil {
		writeError(ctx, w, logger, err)
		return
	}
	clauses, err := buildClauses(req.Clauses)
	if err != nil {
		writeError(ctx, w, logger, err)
		return
	}

	span.SetAttributes(
		attribute.String("document_id", req.DocumentID),
		attribute.Int("frameworks", len(frameworks)),
		attribute.Int("clauses", len(clauses)),
	)

	report, err := h.service.CheckCompliance(ctx, clauses, frameworks, req.DocumentID)
	if err != nil {
		telemetry.WithSpanError(span, err)
		writeError(ctx, w, logger, err)
		return
	}

	span.SetAttributes(attribute.Float64("overall_score", report.OverallScore.Float64()))
	writeJSON(w, http.StatusOK, report)
}

// handleQuickCheck returns per-framework scores without report assembly
func (h *Handler) handleQuickCheck(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "compliance.quick_check")
	defer span.End()
	logger := telemetry.WithContext(ctx, h.logger)

	var req QuickCheckRequest
	if !h.decode(w, r, &req) {
		return
	}

	frameworks, err := parseFrameworks(req.Frameworks)
	if err != nil {
		writeError(ctx, w, logger, err)
		return
	}
	clauses, err := buildClauses(req.Clauses)
	if err != nil {
		writeError(ctx, w, logger, err)
		return
	}

	scores, err := h.service.QuickCheck(ctx, clauses, frameworks)
	if err != nil {
		telemetry.WithSpanError(span, err)
		writeError(ctx, w, logger, err)
		return
	}

	resp := QuickCheckResponse{Scores: make(map[string]float64, len(scores))}
	for fw, score := range scores {
		resp.Scores[fw.String()] = score.Float64()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleMatchCandidates exposes the matcher's raw candidate rankings for
// one framework, for inspecting why a clause did or did not match
func (h *Handler) handleMatchCandidates(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "compliance.match_candidates")
	defer span.End()
	logger := telemetry.WithContext(ctx, h.logger)

	var req MatchCandidatesRequest
	if !h.decode(w, r, &req) {
		return
	}

	frameworks, err := parseFrameworks([]string{req.Framework})
	if err != nil {
		writeError(ctx, w, logger, err)
		return
	}
	clauses, err := buildClauses(req.Clauses)
	if err != nil {
		writeError(ctx, w, logger, err)
		return
	}

	span.SetAttributes(
		attribute.String("framework", req.Framework),
		attribute.Int("clauses", len(clauses)),
	)

	candidates, err := h.service.MatchCandidates(ctx, clauses, frameworks[0])
	if err != nil {
		telemetry.WithSpanError(span, err)
		writeError(ctx, w, logger, err)
		return
	}

	resp := MatchCandidatesResponse{
		Framework:  frameworks[0].String(),
		Candidates: make(map[string][]CandidateInfo, len(candidates)),
	}
	for clauseID, found := range candidates {
		infos := make([]CandidateInfo, 0, len(found))
		for _, cand := range found {
			infos = append(infos, CandidateInfo{
				RequirementID: cand.RequirementID,
				Similarity:    cand.Similarity.Float64(),
			})
		}
		resp.Candidates[clauseID] = infos
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListFrameworks describes the loaded requirement catalogs
func (h *Handler) handleListFrameworks(w http.ResponseWriter, r *http.Request) {
	store := h.service.Store()

	resp := FrameworksResponse{
		CatalogVersion: store.Version().Version,
		Checksum:       store.Version().Checksum,
		Dimension:      store.Dimension(),
	}
	for _, fw := range store.Frameworks() {
		reqs, err := store.Requirements(fw)
		if err != nil {
			writeError(r.Context(), w, h.logger, err)
			return
		}
		mandatory, err := store.Mandatory(fw)
		if err != nil {
			writeError(r.Context(), w, h.logger, err)
			return
		}
		resp.Frameworks = append(resp.Frameworks, FrameworkInfo{
			Name:             fw.String(),
			RequirementCount: len(reqs),
			MandatoryCount:   len(mandatory),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleNotFound keeps unknown routes on the JSON error envelope
func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(r.Context(), w, h.logger, errors.NewNotFoundError(r.URL.Path))
}

// handleHealthz is the liveness probe
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).String(),
	})
}

// handleReadyz is the readiness probe; serving without catalogs is wrong
func (h *Handler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	store := h.service.Store()
	if store == nil || store.Count() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"reason": "requirement catalogs not loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"catalog_version": store.Version().Version,
	})
}

// decode reads, parses and validates a JSON request body. It writes the
// error response itself and reports whether the handler should continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(r.Context(), w, h.logger,
			errors.NewValidationError("MALFORMED_BODY", "Request body is not valid JSON").WithCause(err))
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}
