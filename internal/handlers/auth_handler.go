package handlers

import (
	"net/http"

	"vocabdrill/internal/logger"
	"vocabdrill/internal/service"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	authService *service.AuthService
	log         *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a learner account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(h.log, w, "failed to register user", err)
		return
	}

	h.log.Info("user registered", "user_id", user.ID)
	respondJSON(w, http.StatusCreated, userView{ID: user.ID, Username: user.Username, Email: user.Email})
}

// Login exchanges credentials for a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	token, expiresAt, user, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondWithServiceError(h.log, w, "failed to log in", err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userView{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}
