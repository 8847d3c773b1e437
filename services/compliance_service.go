package services

import (
	"context"
	"fmt"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/repositories"
)

// ComplianceService validates aggregated hours against a requirement
// profile. Failing a threshold is a normal verdict, never an error; only
// malformed input (missing summary or profile) errors. Verdicts are
// deterministic for identical inputs.
type ComplianceService interface {
	ValidateWeek(summary *models.HourSummary, profile *models.RequirementProfile) (models.WeeklyVerdict, error)
	ValidateCategories(summary *models.HourSummary, profile *models.RequirementProfile) (models.CategoryVerdict, error)
	CheckCompletionEligibility(ctx context.Context, traineeID int64) (*models.EligibilityResult, error)
}

type complianceService struct {
	traineeRepo repositories.TraineeRepository
	profileRepo repositories.ProfileRepository
	docRepo     repositories.DocumentRepository
	hours       HoursService
}

// NewComplianceService creates a new compliance validation service
func NewComplianceService(
	traineeRepo repositories.TraineeRepository,
	profileRepo repositories.ProfileRepository,
	docRepo repositories.DocumentRepository,
	hours HoursService,
) ComplianceService {
	return &complianceService{
		traineeRepo: traineeRepo,
		profileRepo: profileRepo,
		docRepo:     docRepo,
		hours:       hours,
	}
}

// ValidateWeek checks one week's total against the profile's weekly minimum
func (s *complianceService) ValidateWeek(summary *models.HourSummary, profile *models.RequirementProfile) (models.WeeklyVerdict, error) {
	if summary == nil || profile == nil {
		return models.WeeklyVerdict{}, models.Invalid("input", "summary and profile are required")
	}

	verdict := models.WeeklyVerdict{
		Total:   summary.Total,
		Minimum: profile.MinWeeklyHours,
	}

	if summary.Total >= profile.MinWeeklyHours {
		verdict.Passed = true
		verdict.Message = fmt.Sprintf("weekly minimum met: %.1f of %.1f hours", summary.Total, profile.MinWeeklyHours)
	} else {
		verdict.Message = fmt.Sprintf("weekly minimum not met: %.1f of %.1f hours logged, short %.1f hours",
			summary.Total, profile.MinWeeklyHours, profile.MinWeeklyHours-summary.Total)
	}

	return verdict, nil
}

// ValidateCategories checks cumulative totals against every category
// requirement: minimums, the simulated cap and the supervision ratio. All
// failures are reported in one pass.
func (s *complianceService) ValidateCategories(summary *models.HourSummary, profile *models.RequirementProfile) (models.CategoryVerdict, error) {
	if summary == nil || profile == nil {
		return models.CategoryVerdict{}, models.Invalid("input", "summary and profile are required")
	}

	verdict := models.CategoryVerdict{Passed: true}

	fail := func(c models.Category, current, required float64, message string) {
		verdict.Passed = false
		verdict.FailingCategories = append(verdict.FailingCategories, string(c))
		verdict.Failures = append(verdict.Failures, models.CategoryFailure{
			Category: c,
			Current:  current,
			Required: required,
			Message:  message,
		})
	}

	for _, c := range []models.Category{
		models.CategoryDirectContact,
		models.CategoryClientRelated,
		models.CategorySupervision,
		models.CategoryProfessionalDev,
	} {
		required := profile.MinimumFor(c)
		if required <= 0 {
			continue
		}
		current := summary.CategoryTotal(c)
		if current < required {
			fail(c, current, required,
				fmt.Sprintf("%s below minimum: %.1f of %.1f hours", c.Name(), current, required))
		}
	}

	if profile.SimulatedMax > 0 && summary.Simulated > profile.SimulatedMax {
		fail(models.CategorySimulated, summary.Simulated, profile.SimulatedMax,
			fmt.Sprintf("simulated hours exceed the cap: %.1f of %.1f allowed", summary.Simulated, profile.SimulatedMax))
	}

	if profile.SupervisionRatio > 0 {
		if summary.Supervision <= 0 {
			if summary.Practice > 0 {
				// No supervision against logged practice is a ratio failure,
				// not a division error.
				fail(models.RatioRequirement, 0, profile.SupervisionRatio,
					"supervision ratio requirement not met: no supervision hours logged")
			}
		} else if summary.Practice/summary.Supervision > profile.SupervisionRatio {
			fail(models.RatioRequirement, summary.Practice/summary.Supervision, profile.SupervisionRatio,
				fmt.Sprintf("supervision ratio requirement not met: %.1f practice hours per supervision hour, maximum is %.0f",
					summary.Practice/summary.Supervision, profile.SupervisionRatio))
		}
	}

	return verdict, nil
}

// CheckCompletionEligibility decides whether a trainee may formally finish
// the program. Pure read: no document status is mutated.
func (s *complianceService) CheckCompletionEligibility(ctx context.Context, traineeID int64) (*models.EligibilityResult, error) {
	trainee, err := s.traineeRepo.GetByID(ctx, traineeID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, trainee.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirement profile: %w", err)
	}

	var reasons []string

	weeksCompleted, err := s.docRepo.CountApproved(ctx, traineeID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed weeks: %w", err)
	}
	if weeksCompleted < profile.MinWeeks {
		reasons = append(reasons, fmt.Sprintf("minimum program duration not reached: %d of %d weeks completed",
			weeksCompleted, profile.MinWeeks))
	}

	summary, err := s.hours.Aggregate(ctx, traineeID, trainee.EnrolledAt, timeNow())
	if err != nil {
		return nil, err
	}

	catVerdict, err := s.ValidateCategories(summary, profile)
	if err != nil {
		return nil, err
	}
	for _, failure := range catVerdict.Failures {
		reasons = append(reasons, failure.Message)
	}

	if profile.TotalHoursMin > 0 && summary.Total < profile.TotalHoursMin {
		reasons = append(reasons, fmt.Sprintf("total hours below minimum: %.1f of %.1f hours",
			summary.Total, profile.TotalHoursMin))
	}

	if !profile.WaiveOpenDocumentCheck {
		openDocs, err := s.docRepo.GetUnderReview(ctx, traineeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check open documents: %w", err)
		}
		for _, doc := range openDocs {
			reasons = append(reasons, fmt.Sprintf("document for week %s to %s is still under review (%s)",
				models.FormatDate(doc.PeriodStart), models.FormatDate(doc.PeriodEnd), doc.Status))
		}
	}

	return &models.EligibilityResult{
		Eligible:        len(reasons) == 0,
		BlockingReasons: reasons,
	}, nil
}
