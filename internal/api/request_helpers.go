package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkit/checkit-server/internal/api/middleware"
	"github.com/checkit/checkit-server/internal/api/shared"
	"github.com/checkit/checkit-server/internal/domain"
)

// getPathObjectID extracts an ObjectID from the URL path parameters.
func getPathObjectID(r *http.Request, paramName string) (primitive.ObjectID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return primitive.NilObjectID, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := primitive.ObjectIDFromHex(pathParam)
	if err != nil {
		return primitive.NilObjectID, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requireAuthenticatedUID extracts the authenticated uid from the request
// context, writing a 401 response when it is absent.
func requireAuthenticatedUID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := middleware.GetUID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "unauthorized access")
		return "", false
	}
	return uid, true
}

// requireOwner asserts that the uid named in the request path matches the
// authenticated identity, writing a 401 response on mismatch. This is the
// REST-side ownership gate: no handler behind it ever acts on another
// user's data.
func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := requireAuthenticatedUID(w, r)
	if !ok {
		return "", false
	}

	pathUID := chi.URLParam(r, "uid")
	if pathUID == "" || pathUID != uid {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "unauthorized access")
		return "", false
	}

	return uid, true
}
