package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/repositories"
)

// HoursService is the hour aggregator: category-bucketed sums of practice
// entries over an inclusive window. Pure read, no caching; two calls with
// identical entries and window produce identical summaries.
type HoursService interface {
	Aggregate(ctx context.Context, traineeID int64, from, to time.Time) (*models.HourSummary, error)
	// WeeklyBreakdown returns up to weeks rows of per-week activity, newest
	// first, going back no further than the enrolment week.
	WeeklyBreakdown(ctx context.Context, traineeID int64, enrolledAt time.Time, weeks int) ([]models.WeekActivity, error)
}

type hoursService struct {
	entryRepo repositories.EntryRepository
}

// NewHoursService creates a new hour aggregation service
func NewHoursService(entryRepo repositories.EntryRepository) HoursService {
	return &hoursService{entryRepo: entryRepo}
}

// Aggregate sums the trainee's entries per category within the window
func (s *hoursService) Aggregate(ctx context.Context, traineeID int64, from, to time.Time) (*models.HourSummary, error) {
	if to.Before(from) {
		return nil, models.Invalid("window", fmt.Sprintf("window end %s precedes start %s", models.FormatDate(to), models.FormatDate(from)))
	}

	totals, err := s.entryRepo.SumByCategory(ctx, traineeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate hours: %w", err)
	}

	simulated, err := s.entryRepo.SimulatedTotal(ctx, traineeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate simulated hours: %w", err)
	}

	summary := &models.HourSummary{
		TraineeID:        traineeID,
		Window:           models.DateRange{Start: models.Midnight(from), End: models.Midnight(to)},
		DirectContact:    totals[models.CategoryDirectContact],
		ClientRelated:    totals[models.CategoryClientRelated],
		SimulatedContact: totals[models.CategorySimulated],
		Supervision:      totals[models.CategorySupervision],
		ProfessionalDev:  totals[models.CategoryProfessionalDev],
		Simulated:        simulated,
	}
	summary.Practice = summary.DirectContact + summary.ClientRelated + summary.SimulatedContact
	summary.Total = summary.Practice + summary.Supervision + summary.ProfessionalDev

	return summary, nil
}

// WeeklyBreakdown walks backwards from the current week, one row per review
// period, stopping at the enrolment week or the requested count
func (s *hoursService) WeeklyBreakdown(ctx context.Context, traineeID int64, enrolledAt time.Time, weeks int) ([]models.WeekActivity, error) {
	if weeks <= 0 {
		return nil, models.Invalid("weeks", "week count must be greater than zero")
	}

	firstPeriodStart := models.PeriodFor(enrolledAt).Start
	period := models.CurrentPeriod(timeNow())

	var breakdown []models.WeekActivity
	for i := 0; i < weeks && !period.Start.Before(firstPeriodStart); i++ {
		summary, err := s.Aggregate(ctx, traineeID, period.Start, period.End)
		if err != nil {
			return nil, err
		}

		entries, err := s.entryRepo.GetByTraineeAndRange(ctx, traineeID, period.Start, period.End)
		if err != nil {
			return nil, err
		}

		breakdown = append(breakdown, models.WeekActivity{
			WeekNumber: models.WeekNumberSince(enrolledAt, period.Start),
			Period:     period,
			Summary:    *summary,
			Entries:    entries,
		})

		period = models.PeriodFor(period.Start.AddDate(0, 0, -7))
	}

	return breakdown, nil
}
