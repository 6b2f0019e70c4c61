package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/checkit/checkit-server/internal/api/shared"
	"github.com/checkit/checkit-server/internal/service/auth"
)

// TokenRequest defines the payload for the token issuance endpoint. The uid
// comes from the external identity provider the frontend authenticates
// against.
type TokenRequest struct {
	UID   string `json:"uid"   validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// TokenResponse defines the successful response for the token endpoint.
type TokenResponse struct {
	UID       string    `json:"uid"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	jwtService auth.JWTService
	validator  *validator.Validate
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(jwtService auth.JWTService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		validator:  validator.New(),
		logger:     logger.With("component", "auth_handler"),
	}
}

// IssueToken handles POST /api/auth/token requests.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(r.Context(), req.UID, req.Email)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "uid", req.UID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		UID:       req.UID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
