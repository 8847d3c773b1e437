package models

import "time"

// DocumentStatus is the review state of a periodic document
type DocumentStatus string

const (
	StatusDraft            DocumentStatus = "draft"
	StatusSubmitted        DocumentStatus = "submitted"
	StatusApproved         DocumentStatus = "approved"
	StatusRejected         DocumentStatus = "rejected"
	StatusReturnedForEdits DocumentStatus = "returned_for_edits"
	// StatusLocked is the editability state a document reports once approved.
	// It is derived from the locked flag, not stored in the status column.
	StatusLocked DocumentStatus = "locked"
)

// Role of an acting principal
type Role string

const (
	RoleTrainee      Role = "trainee"
	RoleSupervisor   Role = "supervisor"
	RoleProgramAdmin Role = "program_admin"
)

// WorkflowAction is a requested transition on a periodic document
type WorkflowAction string

const (
	ActionSubmit         WorkflowAction = "submit"
	ActionResubmit       WorkflowAction = "resubmit"
	ActionApprove        WorkflowAction = "approve"
	ActionReject         WorkflowAction = "reject"
	ActionReturnForEdits WorkflowAction = "return_for_edits"
)

// transitionRule describes one legal edge of the review state machine
type transitionRule struct {
	role Role
	from DocumentStatus
	to   DocumentStatus
}

// transitions is the complete edge set of the review workflow. Any
// (role, from, action) combination absent from this table is illegal.
var transitions = map[WorkflowAction][]transitionRule{
	ActionSubmit: {
		{role: RoleTrainee, from: StatusDraft, to: StatusSubmitted},
	},
	ActionResubmit: {
		{role: RoleTrainee, from: StatusRejected, to: StatusSubmitted},
		{role: RoleTrainee, from: StatusReturnedForEdits, to: StatusSubmitted},
	},
	ActionApprove: {
		{role: RoleSupervisor, from: StatusSubmitted, to: StatusApproved},
	},
	ActionReject: {
		{role: RoleSupervisor, from: StatusSubmitted, to: StatusRejected},
	},
	ActionReturnForEdits: {
		{role: RoleSupervisor, from: StatusSubmitted, to: StatusReturnedForEdits},
	},
}

// CanTransition reports whether a role may perform the action from the given
// status. This is the single permission matrix for the review workflow;
// ownership and reviewer-assignment checks happen in the workflow service.
func CanTransition(role Role, from DocumentStatus, action WorkflowAction) bool {
	for _, rule := range transitions[action] {
		if rule.role == role && rule.from == from {
			return true
		}
	}
	return false
}

// TransitionTarget returns the status an action leads to from the given
// status, or false when the edge does not exist.
func TransitionTarget(from DocumentStatus, action WorkflowAction) (DocumentStatus, bool) {
	for _, rule := range transitions[action] {
		if rule.from == from {
			return rule.to, true
		}
	}
	return "", false
}

// DecisionActions are the reviewer decisions available on a submitted document
var DecisionActions = []WorkflowAction{ActionApprove, ActionReject, ActionReturnForEdits}

// PeriodicDocument is the unit under review: one trainee's logbook for one
// weekly period. Exactly one document exists per trainee per period.
type PeriodicDocument struct {
	ID          int64          `json:"id" db:"id"`
	TraineeID   int64          `json:"trainee_id" db:"trainee_id"`
	PeriodStart time.Time      `json:"period_start" db:"period_start"`
	PeriodEnd   time.Time      `json:"period_end" db:"period_end"`
	Status      DocumentStatus `json:"status" db:"status"`
	Locked      bool           `json:"locked" db:"locked"`
	ReviewerID  int64          `json:"reviewer_id" db:"reviewer_id"`

	DecisionComment string     `json:"decision_comment,omitempty" db:"decision_comment"`
	DecidedAt       *time.Time `json:"decided_at,omitempty" db:"decided_at"`

	// TemporarilyEditable is derived, not stored: true while the document
	// is locked but carries an active unlock grant.
	TemporarilyEditable bool `json:"temporarily_editable" db:"-"`

	// Version is the optimistic concurrency counter; every status mutation
	// must match the version it read or fail with a ConflictError.
	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EffectiveStatus reports the displayed status: locked once approval sealed
// the document, the stored review status otherwise.
func (d *PeriodicDocument) EffectiveStatus() DocumentStatus {
	if d.Locked {
		return StatusLocked
	}
	return d.Status
}

// OwnerEditable reports whether the owning trainee may mutate entries based
// on review status alone. Locked documents additionally become editable
// under an active unlock grant, which the entry service checks separately.
func (d *PeriodicDocument) OwnerEditable() bool {
	if d.Locked {
		return false
	}
	switch d.Status {
	case StatusDraft, StatusRejected, StatusReturnedForEdits:
		return true
	}
	return false
}

// UnderReview reports whether the document is in a non-terminal review state
// that blocks program completion.
func (d *PeriodicDocument) UnderReview() bool {
	switch d.Status {
	case StatusSubmitted, StatusRejected, StatusReturnedForEdits:
		return true
	}
	return false
}
