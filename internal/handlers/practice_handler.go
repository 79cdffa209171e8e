package handlers

import (
	"errors"
	"net/http"

	"vocabdrill/internal/logger"
	"vocabdrill/internal/models"
	"vocabdrill/internal/service"
)

// PracticeHandler handles the practice loop
type PracticeHandler struct {
	practiceService *service.PracticeService
	log             *logger.Logger
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService, log *logger.Logger) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService, log: log}
}

type tierRequest struct {
	Tier models.Tier `json:"tier"`
}

type submitRequest struct {
	InstanceID string `json:"instance_id"`
	Answer     string `json:"answer"`
}

// StartPractice starts a session on the requested tier, or the default tier
// when the body is empty
func (h *PracticeHandler) StartPractice(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	req := tierRequest{Tier: models.DefaultTier}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
			return
		}
	}

	session, err := h.practiceService.Start(r.Context(), userID, req.Tier)
	h.respondSession(w, session, err, "failed to start practice")
}

// ShowPractice returns the current session
func (h *PracticeHandler) ShowPractice(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	session, err := h.practiceService.Current(r.Context(), userID)
	h.respondSession(w, session, err, "failed to load practice session")
}

// NextExample loads another example from the current tier
func (h *PracticeHandler) NextExample(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	session, err := h.practiceService.Next(r.Context(), userID)
	h.respondSession(w, session, err, "failed to load next example")
}

// ChangeTier switches the session to another tier
func (h *PracticeHandler) ChangeTier(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req tierRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	session, err := h.practiceService.ChangeTier(r.Context(), userID, req.Tier)
	h.respondSession(w, session, err, "failed to change tier")
}

// SubmitAnswer scores the learner's translation
func (h *PracticeHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	session, err := h.practiceService.Submit(r.Context(), userID, req.InstanceID, req.Answer)
	if errors.Is(err, service.ErrAlreadyAnswered) && session != nil {
		// a repeated submit is a no-op; hand back the recorded result
		respondJSON(w, http.StatusOK, newSessionView(session))
		return
	}
	h.respondSession(w, session, err, "failed to submit answer")
}

// Reveal shows the word hint or the reference translation
func (h *PracticeHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var (
		session *models.PracticeSession
		err     error
	)
	switch r.PathValue("part") {
	case "word":
		session, err = h.practiceService.RevealWord(r.Context(), userID)
	case "answer":
		session, err = h.practiceService.RevealAnswer(r.Context(), userID)
	default:
		respondWithError(h.log, w, http.StatusNotFound, "Unknown hint", "", nil)
		return
	}
	h.respondSession(w, session, err, "failed to reveal hint")
}

// EndPractice discards the session
func (h *PracticeHandler) EndPractice(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	if err := h.practiceService.End(r.Context(), userID); err != nil {
		respondWithServiceError(h.log, w, "failed to end practice", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PracticeHandler) respondSession(w http.ResponseWriter, session *models.PracticeSession, err error, logMsg string) {
	if err != nil {
		respondWithServiceError(h.log, w, logMsg, err)
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}
