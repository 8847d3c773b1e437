package controllers

import (
	"net/http"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/services"
)

type UnlockController struct {
	unlock services.UnlockService
}

func NewUnlockController(services *services.Services) *UnlockController {
	return &UnlockController{unlock: services.Unlock}
}

// Request handles POST /api/documents/{id}/unlock-requests
func (uc *UnlockController) Request(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	documentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var form models.UnlockRequestForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	req, err := uc.unlock.Request(r.Context(), documentID, actor, &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

type unlockReviewRequest struct {
	Decision        string `json:"decision"`
	Comment         string `json:"comment"`
	DurationMinutes int    `json:"duration_minutes"`
}

// Review handles POST /api/unlock-requests/{id}/review
func (uc *UnlockController) Review(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req unlockReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	decided, err := uc.unlock.Review(r.Context(), requestID, actor, req.Decision, req.Comment, req.DurationMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decided)
}

// Relock handles POST /api/documents/{id}/relock
func (uc *UnlockController) Relock(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	documentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := uc.unlock.Relock(r.Context(), documentID, actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"document_id": documentID,
		"relocked":    true,
	})
}
