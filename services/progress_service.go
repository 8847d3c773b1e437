package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/repositories"
	"github.com/mhollis/practicum-tracker/userctx"
)

// ProgressService composes the read-side reports and the program completion
// operation.
type ProgressService interface {
	GetProgress(ctx context.Context, traineeID int64) (*models.ProgressReport, error)
	GetWeeklyBreakdown(ctx context.Context, traineeID int64, weeks int) ([]models.WeekActivity, error)
	// CompleteProgram stamps the completion date after a final eligibility
	// check. A second completion attempt fails with a ConflictError.
	CompleteProgram(ctx context.Context, traineeID int64, actor userctx.Principal) (*models.Trainee, error)
}

type progressService struct {
	traineeRepo repositories.TraineeRepository
	profileRepo repositories.ProfileRepository
	docRepo     repositories.DocumentRepository
	hours       HoursService
	compliance  ComplianceService
	unlock      UnlockService
}

// NewProgressService creates a new progress reporting service
func NewProgressService(
	traineeRepo repositories.TraineeRepository,
	profileRepo repositories.ProfileRepository,
	docRepo repositories.DocumentRepository,
	hours HoursService,
	compliance ComplianceService,
	unlock UnlockService,
) ProgressService {
	return &progressService{
		traineeRepo: traineeRepo,
		profileRepo: profileRepo,
		docRepo:     docRepo,
		hours:       hours,
		compliance:  compliance,
		unlock:      unlock,
	}
}

// GetProgress assembles the trainee's full progress report
func (s *progressService) GetProgress(ctx context.Context, traineeID int64) (*models.ProgressReport, error) {
	trainee, err := s.traineeRepo.GetByID(ctx, traineeID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, trainee.ProfileID)
	if err != nil {
		return nil, err
	}

	now := timeNow()
	cumulative, err := s.hours.Aggregate(ctx, traineeID, trainee.EnrolledAt, now)
	if err != nil {
		return nil, err
	}

	week := models.CurrentPeriod(now)
	currentWeek, err := s.hours.Aggregate(ctx, traineeID, week.Start, week.End)
	if err != nil {
		return nil, err
	}

	weekVerdict, err := s.compliance.ValidateWeek(currentWeek, profile)
	if err != nil {
		return nil, err
	}

	categories, err := s.compliance.ValidateCategories(cumulative, profile)
	if err != nil {
		return nil, err
	}

	weeksCompleted, err := s.docRepo.CountApproved(ctx, traineeID)
	if err != nil {
		return nil, err
	}

	docs, err := s.docRepo.GetByTrainee(ctx, traineeID)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if !docs[i].Locked {
			continue
		}
		grant, err := s.unlock.ActiveGrant(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
		docs[i].TemporarilyEditable = grant != nil
	}

	eligibility, err := s.compliance.CheckCompletionEligibility(ctx, traineeID)
	if err != nil {
		return nil, err
	}

	return &models.ProgressReport{
		Trainee:           trainee,
		Profile:           profile,
		WeeksCompleted:    weeksCompleted,
		MinWeeks:          profile.MinWeeks,
		Cumulative:        cumulative,
		CurrentWeek:       currentWeek,
		WeekVerdict:       weekVerdict,
		Categories:        categories,
		SimulatedHeadroom: profile.SimulatedHeadroom(cumulative.Simulated),
		Documents:         docs,
		Eligibility:       eligibility,
	}, nil
}

// GetWeeklyBreakdown returns per-week activity newest first, each week
// carrying its verdict against the trainee's profile
func (s *progressService) GetWeeklyBreakdown(ctx context.Context, traineeID int64, weeks int) ([]models.WeekActivity, error) {
	trainee, err := s.traineeRepo.GetByID(ctx, traineeID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, trainee.ProfileID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.hours.WeeklyBreakdown(ctx, traineeID, trainee.EnrolledAt, weeks)
	if err != nil {
		return nil, err
	}

	for i := range breakdown {
		verdict, err := s.compliance.ValidateWeek(&breakdown[i].Summary, profile)
		if err != nil {
			return nil, err
		}
		breakdown[i].Verdict = &verdict
	}

	return breakdown, nil
}

// CompleteProgram marks the trainee as having completed the program
func (s *progressService) CompleteProgram(ctx context.Context, traineeID int64, actor userctx.Principal) (*models.Trainee, error) {
	if actor.Role != models.RoleProgramAdmin {
		return nil, &models.AuthorizationError{Role: actor.Role, Action: "complete a trainee's program"}
	}

	trainee, err := s.traineeRepo.GetByID(ctx, traineeID)
	if err != nil {
		return nil, err
	}
	if trainee.Completed() {
		return nil, &models.ConflictError{Resource: "completed trainee", ID: traineeID}
	}

	eligibility, err := s.compliance.CheckCompletionEligibility(ctx, traineeID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, models.Invalid("eligibility", fmt.Sprintf(
			"trainee is not eligible for completion: %s",
			strings.Join(eligibility.BlockingReasons, "; ")))
	}

	now := timeNow()
	updated, err := s.traineeRepo.MarkCompleted(ctx, traineeID, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, &models.ConflictError{Resource: "completed trainee", ID: traineeID}
	}

	trainee.CompletedAt = &now
	return trainee, nil
}
