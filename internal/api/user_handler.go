package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/checkit/checkit-server/internal/api/shared"
	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/service"
	"github.com/checkit/checkit-server/internal/store"
)

// RegisterUserRequest defines the payload for the user registration endpoint.
type RegisterUserRequest struct {
	UID         string `json:"uid"         validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	DisplayName string `json:"displayName" validate:"omitempty,max=200"`
	PhotoURL    string `json:"photoURL"    validate:"omitempty,url"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=32"`
}

// UpdateProfileRequest defines the payload for the profile update endpoint.
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"omitempty,max=200"`
	PhotoURL    string `json:"photoURL"    validate:"omitempty,url"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=32"`
}

// ExistsResponse reports whether a user profile exists.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
		logger:      logger.With("component", "user_handler"),
	}
}

// Register handles POST /api/users requests. Registration happens right
// after the external identity provider creates the account, before a token
// exists, so this endpoint is public.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := domain.NewUser(req.UID, req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	user.DisplayName = req.DisplayName
	user.PhotoURL = req.PhotoURL
	user.PhoneNumber = req.PhoneNumber

	if err := h.userService.Register(r.Context(), user); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, user)
}

// Exists handles GET /api/users/{uid}/exists requests. Public: the frontend
// asks before deciding between registration and login.
func (h *UserHandler) Exists(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if uid == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "uid is required")
		return
	}

	exists, err := h.userService.Exists(r.Context(), uid)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ExistsResponse{Exists: exists})
}

// GetProfile handles GET /api/users/{uid} requests.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(r.Context(), uid)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/users/{uid} requests.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch := store.ProfilePatch{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		PhoneNumber: req.PhoneNumber,
	}
	if err := h.userService.UpdateProfile(r.Context(), uid, patch); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}
