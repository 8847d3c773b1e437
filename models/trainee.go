package models

import "time"

// Trainee is an enrolled program participant. The profile reference pins the
// requirement version the trainee was enrolled against.
type Trainee struct {
	ID           int64      `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	ProfileID    int64      `json:"profile_id" db:"profile_id"`
	SupervisorID int64      `json:"supervisor_id" db:"supervisor_id"`
	EnrolledAt   time.Time  `json:"enrolled_at" db:"enrolled_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Active       bool       `json:"active" db:"active"`
}

// Completed reports whether the trainee has formally finished the program
func (t *Trainee) Completed() bool {
	return t.CompletedAt != nil
}

// ProgramStaff is a supervisor or program administrator
type ProgramStaff struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Email  string `json:"email" db:"email"`
	Role   Role   `json:"role" db:"role"`
	Active bool   `json:"active" db:"active"`
}
