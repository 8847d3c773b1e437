package controllers

import (
	"net/http"
	"strconv"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/services"
	"github.com/mhollis/practicum-tracker/userctx"
)

const defaultBreakdownWeeks = 8

type ProgressController struct {
	progress   services.ProgressService
	compliance services.ComplianceService
}

func NewProgressController(services *services.Services) *ProgressController {
	return &ProgressController{
		progress:   services.Progress,
		compliance: services.Compliance,
	}
}

// canView allows trainees to see their own record and staff to see any
func canView(actor userctx.Principal, traineeID int64) bool {
	if actor.Role == models.RoleTrainee {
		return actor.ID == traineeID
	}
	return actor.Role == models.RoleSupervisor || actor.Role == models.RoleProgramAdmin
}

// Show handles GET /api/trainees/{id}/progress
func (pc *ProgressController) Show(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	traineeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if !canView(actor, traineeID) {
		writeError(w, &models.AuthorizationError{Role: actor.Role, Action: "view another trainee's progress"})
		return
	}

	report, err := pc.progress.GetProgress(r.Context(), traineeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Weeks handles GET /api/trainees/{id}/weeks?count=N
func (pc *ProgressController) Weeks(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	traineeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if !canView(actor, traineeID) {
		writeError(w, &models.AuthorizationError{Role: actor.Role, Action: "view another trainee's weekly breakdown"})
		return
	}

	weeks := defaultBreakdownWeeks
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, models.Invalid("count", "must be a number of weeks"))
			return
		}
		weeks = parsed
	}

	breakdown, err := pc.progress.GetWeeklyBreakdown(r.Context(), traineeID, weeks)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// Eligibility handles GET /api/trainees/{id}/eligibility
func (pc *ProgressController) Eligibility(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	traineeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if !canView(actor, traineeID) {
		writeError(w, &models.AuthorizationError{Role: actor.Role, Action: "view another trainee's eligibility"})
		return
	}

	result, err := pc.compliance.CheckCompletionEligibility(r.Context(), traineeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Complete handles POST /api/trainees/{id}/complete
func (pc *ProgressController) Complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	traineeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	trainee, err := pc.progress.CompleteProgram(r.Context(), traineeID, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trainee_id":      trainee.ID,
		"completion_date": models.FormatDate(*trainee.CompletedAt),
	})
}
