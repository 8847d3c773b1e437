package models

import "time"

// Audit action tags. One event is appended per successful workflow or
// unlock mutation, inside the same transaction as the state change.
const (
	AuditSubmitted       = "submitted"
	AuditResubmitted     = "resubmitted"
	AuditApproved        = "approved"
	AuditRejected        = "rejected"
	AuditReturnedByEdits = "returned_for_edits"
	AuditUnlockRequested = "unlock_requested"
	AuditUnlockApproved  = "unlock_approved"
	AuditUnlockDenied    = "unlock_denied"
	AuditUnlockExpired   = "unlock_expired"
	AuditRelocked        = "relocked"
)

// AuditEvent is an immutable record of one state-changing action on a
// periodic document. Events are append-only and totally ordered per document
// by timestamp then insertion sequence (the autoincrement id).
type AuditEvent struct {
	ID         int64  `json:"id" db:"id"`
	DocumentID int64  `json:"document_id" db:"document_id"`
	ActorID    int64  `json:"actor_id" db:"actor_id"`
	ActorRole  Role   `json:"actor_role" db:"actor_role"`
	Action     string `json:"action" db:"action"`

	PrevStatus string `json:"prev_status,omitempty" db:"prev_status"`
	NewStatus  string `json:"new_status,omitempty" db:"new_status"`
	Comment    string `json:"comment,omitempty" db:"comment"`

	// Metadata is arbitrary structured context, stored as a JSON object
	// (e.g. the prior decision's event id on resubmission).
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
