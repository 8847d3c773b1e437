package services

import (
	"database/sql"
	"time"

	"github.com/mhollis/practicum-tracker/repositories"
)

// timeNow is the package clock, overridable in tests
var timeNow = func() time.Time {
	return time.Now()
}

// Services holds all service instances
type Services struct {
	Identity   IdentityService
	Hours      HoursService
	Compliance ComplianceService
	Workflow   WorkflowService
	Unlock     UnlockService
	Entries    EntryService
	Progress   ProgressService
}

// NewServices creates and initializes all service instances
func NewServices(db *sql.DB, repos *repositories.Repositories, notifier Notifier) *Services {
	hours := NewHoursService(repos.Entry)
	compliance := NewComplianceService(repos.Trainee, repos.Profile, repos.Document, hours)
	unlock := NewUnlockService(db, repos.Document, repos.Trainee, repos.Unlock, repos.Audit, notifier)

	return &Services{
		Identity:   NewIdentityService(repos.Trainee, repos.Staff),
		Hours:      hours,
		Compliance: compliance,
		Workflow:   NewWorkflowService(db, repos.Document, repos.Entry, repos.Audit, notifier),
		Unlock:     unlock,
		Entries:    NewEntryService(repos.Trainee, repos.Profile, repos.Document, repos.Entry, repos.Unlock),
		Progress:   NewProgressService(repos.Trainee, repos.Profile, repos.Document, hours, compliance, unlock),
	}
}
