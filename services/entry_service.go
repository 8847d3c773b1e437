package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/repositories"
	"github.com/mhollis/practicum-tracker/userctx"
)

// EntryService manages the append-only practice entry ledger. Entries are
// never updated in place; an amendment inserts a replacement row and marks
// the original as superseded, so the history stays reconstructable.
type EntryService interface {
	Log(ctx context.Context, actor userctx.Principal, form *models.PracticeEntryForm) (*models.PracticeEntry, error)
	Amend(ctx context.Context, entryID int64, actor userctx.Principal, form *models.PracticeEntryForm) (*models.PracticeEntry, error)
	ListForDocument(ctx context.Context, documentID int64, actor userctx.Principal) ([]models.PracticeEntry, error)
}

type entryService struct {
	traineeRepo repositories.TraineeRepository
	profileRepo repositories.ProfileRepository
	docRepo     repositories.DocumentRepository
	entryRepo   repositories.EntryRepository
	unlockRepo  repositories.UnlockRepository
}

// NewEntryService creates a new practice entry service
func NewEntryService(
	traineeRepo repositories.TraineeRepository,
	profileRepo repositories.ProfileRepository,
	docRepo repositories.DocumentRepository,
	entryRepo repositories.EntryRepository,
	unlockRepo repositories.UnlockRepository,
) EntryService {
	return &entryService{
		traineeRepo: traineeRepo,
		profileRepo: profileRepo,
		docRepo:     docRepo,
		entryRepo:   entryRepo,
		unlockRepo:  unlockRepo,
	}
}

// Log records a new practice entry against the actor's document for the
// entry's week, creating a draft document when none exists yet
func (s *entryService) Log(ctx context.Context, actor userctx.Principal, form *models.PracticeEntryForm) (*models.PracticeEntry, error) {
	if actor.Role != models.RoleTrainee {
		return nil, &models.AuthorizationError{Role: actor.Role, Action: "log practice hours"}
	}

	if errs := form.Validate(); errs.HasErrors() {
		return nil, errs
	}

	trainee, err := s.traineeRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if trainee.Completed() {
		return nil, models.Invalid("entry_date", "hours cannot be logged after program completion")
	}

	entryDate, err := models.ParseDate(form.EntryDate)
	if err != nil {
		return nil, models.Invalid("entry_date", "entry date must be in YYYY-MM-DD format")
	}
	if entryDate.Before(models.Midnight(trainee.EnrolledAt)) {
		return nil, models.Invalid("entry_date", "entry date predates program enrolment")
	}

	if err := s.checkSimulatedHeadroom(ctx, trainee, form, 0); err != nil {
		return nil, err
	}

	doc, err := s.documentForDate(ctx, trainee, entryDate)
	if err != nil {
		return nil, err
	}
	if err := s.checkEditable(ctx, doc); err != nil {
		return nil, err
	}

	entry := &models.PracticeEntry{
		TraineeID:  trainee.ID,
		DocumentID: doc.ID,
		Category:   models.Category(form.Category),
		Hours:      form.Hours,
		EntryDate:  entryDate,
		Simulated:  form.IsSimulated(),
		Reflection: form.Reflection,
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Amend supersedes an existing entry with a corrected one
func (s *entryService) Amend(ctx context.Context, entryID int64, actor userctx.Principal, form *models.PracticeEntryForm) (*models.PracticeEntry, error) {
	if actor.Role != models.RoleTrainee {
		return nil, &models.AuthorizationError{Role: actor.Role, Action: "amend practice entries"}
	}

	if errs := form.Validate(); errs.HasErrors() {
		return nil, errs
	}

	original, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.TraineeID != actor.ID {
		return nil, &models.AuthorizationError{Role: actor.Role, Action: "amend another trainee's entry"}
	}
	if original.SupersededBy != nil {
		return nil, &models.ConflictError{Resource: "practice entry", ID: entryID}
	}

	trainee, err := s.traineeRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	entryDate, err := models.ParseDate(form.EntryDate)
	if err != nil {
		return nil, models.Invalid("entry_date", "entry date must be in YYYY-MM-DD format")
	}
	if entryDate.Before(models.Midnight(trainee.EnrolledAt)) {
		return nil, models.Invalid("entry_date", "entry date predates program enrolment")
	}

	// The superseded entry's simulated hours fall out of the total, so the
	// cap check credits them back before adding the replacement.
	var reclaimed float64
	if original.Simulated {
		reclaimed = original.Hours
	}
	if err := s.checkSimulatedHeadroom(ctx, trainee, form, reclaimed); err != nil {
		return nil, err
	}

	origDoc, err := s.docRepo.GetByID(ctx, original.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEditable(ctx, origDoc); err != nil {
		return nil, err
	}

	// A changed date can move the replacement to a different week.
	doc := origDoc
	if !models.Midnight(entryDate).Equal(models.Midnight(original.EntryDate)) {
		doc, err = s.documentForDate(ctx, trainee, entryDate)
		if err != nil {
			return nil, err
		}
		if doc.ID != origDoc.ID {
			if err := s.checkEditable(ctx, doc); err != nil {
				return nil, err
			}
		}
	}

	replacement := &models.PracticeEntry{
		TraineeID:  trainee.ID,
		DocumentID: doc.ID,
		Category:   models.Category(form.Category),
		Hours:      form.Hours,
		EntryDate:  entryDate,
		Simulated:  form.IsSimulated(),
		Reflection: form.Reflection,
	}

	if err := s.entryRepo.Supersede(ctx, entryID, replacement); err != nil {
		return nil, err
	}
	return replacement, nil
}

// ListForDocument returns a document's current entries
func (s *entryService) ListForDocument(ctx context.Context, documentID int64, actor userctx.Principal) ([]models.PracticeEntry, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleTrainee:
		if doc.TraineeID != actor.ID {
			return nil, &models.AuthorizationError{Role: actor.Role, Action: "view another trainee's document"}
		}
	case models.RoleSupervisor, models.RoleProgramAdmin:
	default:
		return nil, &models.AuthorizationError{Role: actor.Role, Action: "view documents"}
	}

	return s.entryRepo.GetByDocument(ctx, documentID)
}

// documentForDate finds the trainee's document for the week containing the
// date, creating a fresh draft when the week has none
func (s *entryService) documentForDate(ctx context.Context, trainee *models.Trainee, date time.Time) (*models.PeriodicDocument, error) {
	period := models.PeriodFor(date)

	doc, err := s.docRepo.GetByTraineeAndPeriod(ctx, trainee.ID, period.Start)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	doc = &models.PeriodicDocument{
		TraineeID:   trainee.ID,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Status:      models.StatusDraft,
		ReviewerID:  trainee.SupervisorID,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// checkEditable rejects writes against documents the trainee cannot touch:
// under review maps to a state error, sealed to a lock error, and a lapsed
// unlock grant to an expired grant error naming the grant.
func (s *entryService) checkEditable(ctx context.Context, doc *models.PeriodicDocument) error {
	if doc.Locked {
		grant, err := s.unlockRepo.GetLatestGrant(ctx, doc.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return &models.LockedError{DocumentID: doc.ID}
		}
		if err != nil {
			return err
		}
		if grant.GrantActive(timeNow()) {
			return nil
		}
		return &models.ExpiredGrantError{DocumentID: doc.ID, RequestID: grant.ID}
	}

	if !doc.OwnerEditable() {
		return &models.StateError{DocumentID: doc.ID, Status: doc.Status, Action: "edit_entries"}
	}
	return nil
}

// checkSimulatedHeadroom enforces the cumulative simulated hours cap
func (s *entryService) checkSimulatedHeadroom(ctx context.Context, trainee *models.Trainee, form *models.PracticeEntryForm, reclaimed float64) error {
	if !form.IsSimulated() {
		return nil
	}

	profile, err := s.profileRepo.GetByID(ctx, trainee.ProfileID)
	if err != nil {
		return err
	}

	current, err := s.entryRepo.SimulatedTotalAll(ctx, trainee.ID)
	if err != nil {
		return err
	}

	headroom := profile.SimulatedHeadroom(current-reclaimed)
	if form.Hours > headroom {
		return models.Invalid("hours", fmt.Sprintf(
			"simulated hours cap exceeded: %.1f hours would leave %.1f over the %.1f hour maximum",
			form.Hours, form.Hours-headroom, profile.SimulatedMax))
	}
	return nil
}
