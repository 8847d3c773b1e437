package models

import "fmt"

// StateError indicates a workflow transition that is not legal from the
// document's current status. The caller should re-fetch and re-decide.
type StateError struct {
	DocumentID int64
	Status     DocumentStatus
	Action     WorkflowAction
}

func (e *StateError) Error() string {
	return fmt.Sprintf("action %q is not allowed on document %d in status %q", e.Action, e.DocumentID, e.Status)
}

// AuthorizationError indicates the acting principal's role does not permit
// the requested action.
type AuthorizationError struct {
	Role   Role
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q is not permitted to %s", e.Role, e.Action)
}

// ConflictError indicates a concurrent mutation lost a race. Recoverable by
// re-fetch-and-retry; never silently merged.
type ConflictError struct {
	Resource string
	ID       int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %d was modified concurrently", e.Resource, e.ID)
}

// LockedError indicates a mutation attempted on a document outside editable
// states and outside an active unlock grant.
type LockedError struct {
	DocumentID int64
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("document %d is locked", e.DocumentID)
}

// ExpiredGrantError indicates a mutation attempted after an unlock grant's
// expiry. A new unlock request is needed.
type ExpiredGrantError struct {
	DocumentID int64
	RequestID  int64
}

func (e *ExpiredGrantError) Error() string {
	return fmt.Sprintf("unlock grant %d for document %d has expired", e.RequestID, e.DocumentID)
}

// NotFoundError indicates the requested record does not exist
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}
