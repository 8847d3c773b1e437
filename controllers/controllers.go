package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/services"
	"github.com/mhollis/practicum-tracker/userctx"
)

// Controllers holds all controller instances
type Controllers struct {
	Auth     *AuthController
	Progress *ProgressController
	Review   *ReviewController
	Unlock   *UnlockController
	Entry    *EntryController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services) *Controllers {
	return &Controllers{
		Auth:     NewAuthController(services),
		Progress: NewProgressController(services),
		Review:   NewReviewController(services),
		Unlock:   NewUnlockController(services),
		Entry:    NewEntryController(services),
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// errorResponse is the uniform error payload
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// writeError maps domain errors to HTTP status codes: validation to 400,
// authorization to 403, state and conflict to 409, lock and expired grant
// to 423, not-found to 404. Everything else is a 500 without the internals.
func writeError(w http.ResponseWriter, err error) {
	var validationErrs models.ValidationErrors
	if errors.As(err, &validationErrs) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "validation failed",
			Details: validationErrs.GetMessages(),
		})
		return
	}

	var authErr *models.AuthorizationError
	if errors.As(err, &authErr) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: authErr.Error()})
		return
	}

	var stateErr *models.StateError
	if errors.As(err, &stateErr) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: stateErr.Error()})
		return
	}

	var conflictErr *models.ConflictError
	if errors.As(err, &conflictErr) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: conflictErr.Error()})
		return
	}

	var lockedErr *models.LockedError
	if errors.As(err, &lockedErr) {
		writeJSON(w, http.StatusLocked, errorResponse{Error: lockedErr.Error()})
		return
	}

	var expiredErr *models.ExpiredGrantError
	if errors.As(err, &expiredErr) {
		writeJSON(w, http.StatusLocked, errorResponse{Error: expiredErr.Error()})
		return
	}

	var notFoundErr *models.NotFoundError
	if errors.As(err, &notFoundErr) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFoundErr.Error()})
		return
	}

	log.Printf("request failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// pathID parses the named chi URL parameter as an int64
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, models.Invalid(name, "must be a numeric id")
	}
	return id, nil
}

// principal pulls the authenticated principal set by the auth middleware
func principal(w http.ResponseWriter, r *http.Request) (userctx.Principal, bool) {
	p, ok := userctx.PrincipalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	}
	return p, ok
}

// decodeBody decodes a JSON request body into dst
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.Invalid("body", "request body must be valid JSON")
	}
	return nil
}
