package services

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mhollis/practicum-tracker/database"
	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/repositories"
	"github.com/mhollis/practicum-tracker/userctx"
)

// fixture is a full service stack over a throwaway sqlite database, with one
// supervisor, one program admin and one trainee enrolled against a small
// test profile so eligibility can actually be reached in a test.
type fixture struct {
	db       *sql.DB
	repos    *repositories.Repositories
	services *Services

	profile *models.RequirementProfile
	trainee *models.Trainee
	staff   *models.ProgramStaff
	admin   *models.ProgramStaff
}

// enrolment date used across the service tests: Monday 2026-01-05
var enrolledAt = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	dbPath := "test_" + time.Now().Format("20060102150405.000000000") + ".db"
	t.Cleanup(func() {
		database.CloseDB()
		os.Remove(dbPath)
	})

	if err := database.InitializeDatabase(dbPath); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	db := database.GetDB()
	ctx := context.Background()

	// A deliberately small profile: one week and a handful of hours are
	// enough to complete, so tests can exercise the eligible path too.
	_, err := db.ExecContext(ctx, `
		INSERT INTO requirement_profiles (
			program_type, version,
			direct_contact_min, client_related_min, supervision_min, professional_dev_min, simulated_max,
			min_weekly_hours, min_weeks, total_hours_min, supervision_ratio,
			waive_open_document_check
		) VALUES ('test_program', 1, 2, 1, 1, 0, 10, 1, 1, 5, 5, 0)
	`)
	if err != nil {
		t.Fatalf("Failed to insert test profile: %v", err)
	}

	repos := repositories.NewRepositories(db)

	profile, err := repos.Profile.GetByProgramType(ctx, "test_program", 1)
	if err != nil {
		t.Fatalf("Failed to load test profile: %v", err)
	}

	staff := &models.ProgramStaff{Name: "Sam Reviewer", Email: "sam@example.edu", Role: models.RoleSupervisor, Active: true}
	if err := repos.Staff.Create(ctx, staff); err != nil {
		t.Fatalf("Failed to create supervisor: %v", err)
	}
	admin := &models.ProgramStaff{Name: "Ada Admin", Email: "ada@example.edu", Role: models.RoleProgramAdmin, Active: true}
	if err := repos.Staff.Create(ctx, admin); err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}

	trainee := &models.Trainee{
		Name:         "Tess Trainee",
		Email:        "tess@example.edu",
		ProfileID:    profile.ID,
		SupervisorID: staff.ID,
		EnrolledAt:   enrolledAt,
		Active:       true,
	}
	if err := repos.Trainee.Create(ctx, trainee); err != nil {
		t.Fatalf("Failed to create trainee: %v", err)
	}

	return &fixture{
		db:       db,
		repos:    repos,
		services: NewServices(db, repos, NewLogNotifier()),
		profile:  profile,
		trainee:  trainee,
		staff:    staff,
		admin:    admin,
	}
}

// setNow pins the package clock for the duration of the test
func setNow(t *testing.T, now time.Time) {
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func (f *fixture) traineePrincipal() userctx.Principal {
	return userctx.Principal{ID: f.trainee.ID, Email: f.trainee.Email, Role: models.RoleTrainee}
}

func (f *fixture) supervisorPrincipal() userctx.Principal {
	return userctx.Principal{ID: f.staff.ID, Email: f.staff.Email, Role: models.RoleSupervisor}
}

func (f *fixture) adminPrincipal() userctx.Principal {
	return userctx.Principal{ID: f.admin.ID, Email: f.admin.Email, Role: models.RoleProgramAdmin}
}

// logEntry records an entry through the entry service and fails the test on
// any error
func (f *fixture) logEntry(t *testing.T, category string, hours float64, date string) *models.PracticeEntry {
	entry, err := f.services.Entries.Log(context.Background(), f.traineePrincipal(), &models.PracticeEntryForm{
		Category:  category,
		Hours:     hours,
		EntryDate: date,
	})
	if err != nil {
		t.Fatalf("Failed to log %s entry: %v", category, err)
	}
	return entry
}

// auditCount returns the number of audit events recorded for a document
func (f *fixture) auditCount(t *testing.T, documentID int64) int {
	events, err := f.repos.Audit.GetByDocument(context.Background(), documentID)
	if err != nil {
		t.Fatalf("Failed to read audit trail: %v", err)
	}
	return len(events)
}
