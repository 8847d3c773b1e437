package models

import "time"

// UnlockStatus is the state of an unlock request
type UnlockStatus string

const (
	UnlockPending  UnlockStatus = "pending"
	UnlockApproved UnlockStatus = "approved"
	UnlockDenied   UnlockStatus = "denied"
)

// UnlockRequest asks to temporarily reopen a locked periodic document. At
// most one pending request exists per document. An approved request carries
// a grant window; expiry is a pure comparison against the stored timestamp.
type UnlockRequest struct {
	ID            int64        `json:"id" db:"id"`
	DocumentID    int64        `json:"document_id" db:"document_id"`
	RequesterID   int64        `json:"requester_id" db:"requester_id"`
	Reason        string       `json:"reason" db:"reason"`
	TargetSection string       `json:"target_section,omitempty" db:"target_section"`
	Status        UnlockStatus `json:"status" db:"status"`

	ReviewerID      *int64     `json:"reviewer_id,omitempty" db:"reviewer_id"`
	DecisionComment string     `json:"decision_comment,omitempty" db:"decision_comment"`
	DurationMinutes int        `json:"duration_minutes,omitempty" db:"duration_minutes"`
	GrantExpiry     *time.Time `json:"grant_expiry,omitempty" db:"grant_expiry"`

	// ExpiryLogged marks that the lapse of this grant was recorded in the
	// audit trail, so the periodic sweep stays idempotent.
	ExpiryLogged bool `json:"-" db:"expiry_logged"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty" db:"decided_at"`
}

// GrantActive reports whether the request carries an unexpired grant
func (u *UnlockRequest) GrantActive(now time.Time) bool {
	return u.Status == UnlockApproved && u.GrantExpiry != nil && now.Before(*u.GrantExpiry)
}

// GrantExpired reports whether the request carried a grant that has lapsed
func (u *UnlockRequest) GrantExpired(now time.Time) bool {
	return u.Status == UnlockApproved && u.GrantExpiry != nil && !now.Before(*u.GrantExpiry)
}

// UnlockRequestForm is the payload for creating an unlock request
type UnlockRequestForm struct {
	Reason        string `json:"reason"`
	TargetSection string `json:"target_section"`
}

// Validate validates the unlock request form
func (f *UnlockRequestForm) Validate() ValidationErrors {
	var errs ValidationErrors
	if f.Reason == "" {
		errs = append(errs, ValidationError{Field: "reason", Message: "a reason is required to request an unlock"})
	}
	return errs
}
