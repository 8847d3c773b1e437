package controllers

import (
	"net/http"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/services"
)

type ReviewController struct {
	workflow services.WorkflowService
}

func NewReviewController(services *services.Services) *ReviewController {
	return &ReviewController{workflow: services.Workflow}
}

// Submit handles POST /api/documents/{id}/submit
func (rc *ReviewController) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	documentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := rc.workflow.Submit(r.Context(), documentID, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

// Decide handles POST /api/documents/{id}/decision
func (rc *ReviewController) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	documentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req decisionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := rc.workflow.Decide(r.Context(), documentID, actor, models.WorkflowAction(req.Decision), req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"document_id": doc.ID,
		"new_status":  doc.EffectiveStatus(),
		"version":     doc.Version,
	})
}

// Audit handles GET /api/documents/{id}/audit
func (rc *ReviewController) Audit(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	documentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := rc.workflow.AuditTrail(r.Context(), documentID, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
