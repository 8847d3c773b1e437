package controllers

import (
	"net/http"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/services"
)

type EntryController struct {
	entries services.EntryService
}

func NewEntryController(services *services.Services) *EntryController {
	return &EntryController{entries: services.Entries}
}

// Create handles POST /api/entries
func (ec *EntryController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var form models.PracticeEntryForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	entry, err := ec.entries.Log(r.Context(), actor, &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// Amend handles PUT /api/entries/{id}
func (ec *EntryController) Amend(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	entryID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var form models.PracticeEntryForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	entry, err := ec.entries.Amend(r.Context(), entryID, actor, &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// List handles GET /api/documents/{id}/entries
func (ec *EntryController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	documentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := ec.entries.ListForDocument(r.Context(), documentID, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
