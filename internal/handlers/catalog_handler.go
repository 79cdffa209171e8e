package handlers

import (
	"net/http"

	"vocabdrill/internal/logger"
	"vocabdrill/internal/service"
)

// CatalogHandler handles word lookup, enrollment and progress summaries
type CatalogHandler struct {
	catalogService *service.CatalogService
	log            *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, log: log}
}

type enrollRequest struct {
	ExampleIDs []int64 `json:"example_ids"`
}

// Lookup finds examples for words containing the q parameter
func (h *CatalogHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	examples, err := h.catalogService.Lookup(r.Context(), q)
	if err != nil {
		respondWithServiceError(h.log, w, "failed to look up words", err)
		return
	}
	respondJSON(w, http.StatusOK, lookupResponse{Query: q, Examples: examples})
}

// Enroll adds examples to the learner's practice pool
func (h *CatalogHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req enrollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	records, err := h.catalogService.Enroll(r.Context(), userID, req.ExampleIDs)
	if err != nil {
		respondWithServiceError(h.log, w, "failed to enroll examples", err)
		return
	}
	respondJSON(w, http.StatusOK, enrollResponse{Enrolled: records})
}

// Summary returns per-tier progress counts
func (h *CatalogHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	tiers, err := h.catalogService.Summary(r.Context(), userID)
	if err != nil {
		respondWithServiceError(h.log, w, "failed to summarize progress", err)
		return
	}
	respondJSON(w, http.StatusOK, summaryResponse{Tiers: tiers})
}
