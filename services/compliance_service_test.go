package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mhollis/practicum-tracker/models"
)

// ComplianceTestSuite covers weekly, category and eligibility validation
type ComplianceTestSuite struct {
	suite.Suite
	f *fixture
}

func (suite *ComplianceTestSuite) SetupTest() {
	suite.f = newFixture(suite.T())
}

func (suite *ComplianceTestSuite) profile() *models.RequirementProfile {
	return &models.RequirementProfile{
		DirectContactMin:   400,
		ClientRelatedMin:   200,
		SupervisionMin:     50,
		ProfessionalDevMin: 30,
		SimulatedMax:       60,
		MinWeeklyHours:     15,
		MinWeeks:           52,
		TotalHoursMin:      1000,
		SupervisionRatio:   5,
	}
}

func (suite *ComplianceTestSuite) TestValidateWeek_Pass() {
	summary := &models.HourSummary{Total: 18.5}

	verdict, err := suite.f.services.Compliance.ValidateWeek(summary, suite.profile())

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), verdict.Passed)
	assert.Equal(suite.T(), 18.5, verdict.Total)
	assert.Equal(suite.T(), 15.0, verdict.Minimum)
	assert.Contains(suite.T(), verdict.Message, "weekly minimum met")
}

func (suite *ComplianceTestSuite) TestValidateWeek_ExactMinimumPasses() {
	summary := &models.HourSummary{Total: 15}

	verdict, err := suite.f.services.Compliance.ValidateWeek(summary, suite.profile())

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), verdict.Passed)
}

func (suite *ComplianceTestSuite) TestValidateWeek_JustBelowFails() {
	summary := &models.HourSummary{Total: 14.9}

	verdict, err := suite.f.services.Compliance.ValidateWeek(summary, suite.profile())

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), verdict.Passed)
	assert.Contains(suite.T(), verdict.Message, "short 0.1 hours")
}

func (suite *ComplianceTestSuite) TestValidateWeek_NilInput() {
	_, err := suite.f.services.Compliance.ValidateWeek(nil, suite.profile())
	assert.Error(suite.T(), err)

	_, err = suite.f.services.Compliance.ValidateWeek(&models.HourSummary{}, nil)
	assert.Error(suite.T(), err)
}

func (suite *ComplianceTestSuite) TestValidateCategories_AllPass() {
	summary := &models.HourSummary{
		DirectContact:   420,
		ClientRelated:   210,
		Supervision:     130,
		ProfessionalDev: 35,
		Simulated:       20,
		Practice:        640,
	}

	verdict, err := suite.f.services.Compliance.ValidateCategories(summary, suite.profile())

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), verdict.Passed)
	assert.Empty(suite.T(), verdict.FailingCategories)
}

// All failing requirements come back in a single pass
func (suite *ComplianceTestSuite) TestValidateCategories_ReportsAllFailures() {
	summary := &models.HourSummary{
		DirectContact:   100, // below 400
		ClientRelated:   50,  // below 200
		Supervision:     10,  // below 50, and ratio exceeded
		ProfessionalDev: 35,
		Simulated:       80, // over the 60 cap
		Practice:        150,
	}

	verdict, err := suite.f.services.Compliance.ValidateCategories(summary, suite.profile())

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), verdict.Passed)
	assert.Contains(suite.T(), verdict.FailingCategories, "dcc")
	assert.Contains(suite.T(), verdict.FailingCategories, "cra")
	assert.Contains(suite.T(), verdict.FailingCategories, "supervision")
	assert.Contains(suite.T(), verdict.FailingCategories, "sim")
	assert.Contains(suite.T(), verdict.FailingCategories, "supervision_ratio")
	assert.Len(suite.T(), verdict.Failures, 5)
}

func (suite *ComplianceTestSuite) TestValidateCategories_ExactBoundaries() {
	summary := &models.HourSummary{
		DirectContact:   400,
		ClientRelated:   200,
		Supervision:     130,
		ProfessionalDev: 30,
		Simulated:       60, // exactly at the cap is allowed
		Practice:        650,
	}

	verdict, err := suite.f.services.Compliance.ValidateCategories(summary, suite.profile())

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), verdict.Passed)
}

// Zero supervision with logged practice is a ratio failure, not an error
func (suite *ComplianceTestSuite) TestValidateCategories_ZeroSupervision() {
	summary := &models.HourSummary{
		DirectContact: 400,
		ClientRelated: 200,
		Practice:      600,
	}

	verdict, err := suite.f.services.Compliance.ValidateCategories(summary, suite.profile())

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), verdict.Passed)
	assert.Contains(suite.T(), verdict.FailingCategories, "supervision_ratio")
	for _, failure := range verdict.Failures {
		if failure.Category == models.RatioRequirement {
			assert.Contains(suite.T(), failure.Message, "no supervision hours logged")
		}
	}
}

// No hours at all: minimums fail, but the ratio rule stays quiet
func (suite *ComplianceTestSuite) TestValidateCategories_NoHours() {
	verdict, err := suite.f.services.Compliance.ValidateCategories(&models.HourSummary{}, suite.profile())

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), verdict.Passed)
	assert.NotContains(suite.T(), verdict.FailingCategories, "supervision_ratio")
}

// Two identical calls produce identical verdicts
func (suite *ComplianceTestSuite) TestValidateCategories_Deterministic() {
	summary := &models.HourSummary{DirectContact: 100, Practice: 100, Supervision: 10}

	first, err := suite.f.services.Compliance.ValidateCategories(summary, suite.profile())
	assert.NoError(suite.T(), err)
	second, err := suite.f.services.Compliance.ValidateCategories(summary, suite.profile())
	assert.NoError(suite.T(), err)

	assert.Equal(suite.T(), first, second)
}

func (suite *ComplianceTestSuite) TestCheckCompletionEligibility_Blocked() {
	setNow(suite.T(), time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC))

	// A fresh trainee has no approved weeks and no hours
	result, err := suite.f.services.Compliance.CheckCompletionEligibility(context.Background(), suite.f.trainee.ID)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Eligible)
	assert.NotEmpty(suite.T(), result.BlockingReasons)
	assert.Contains(suite.T(), result.BlockingReasons[0], "minimum program duration not reached")
}

func (suite *ComplianceTestSuite) TestCheckCompletionEligibility_OpenDocumentBlocks() {
	setNow(suite.T(), time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// Log enough hours against the small test profile and submit the week
	suite.f.logEntry(suite.T(), "dcc", 3, "2026-01-05")
	suite.f.logEntry(suite.T(), "cra", 2, "2026-01-06")
	suite.f.logEntry(suite.T(), "supervision", 1, "2026-01-07")

	doc, err := suite.f.repos.Document.GetByTraineeAndPeriod(ctx, suite.f.trainee.ID, enrolledAt)
	assert.NoError(suite.T(), err)
	_, err = suite.f.services.Workflow.Submit(ctx, doc.ID, suite.f.traineePrincipal())
	assert.NoError(suite.T(), err)

	result, err := suite.f.services.Compliance.CheckCompletionEligibility(ctx, suite.f.trainee.ID)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Eligible)

	found := false
	for _, reason := range result.BlockingReasons {
		if strings.Contains(reason, "still under review") {
			found = true
		}
	}
	assert.True(suite.T(), found, "expected an open-document blocking reason, got %v", result.BlockingReasons)
}

func (suite *ComplianceTestSuite) TestCheckCompletionEligibility_Eligible() {
	setNow(suite.T(), time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	suite.f.logEntry(suite.T(), "dcc", 3, "2026-01-05")
	suite.f.logEntry(suite.T(), "cra", 2, "2026-01-06")
	suite.f.logEntry(suite.T(), "supervision", 1, "2026-01-07")

	doc, err := suite.f.repos.Document.GetByTraineeAndPeriod(ctx, suite.f.trainee.ID, enrolledAt)
	assert.NoError(suite.T(), err)
	_, err = suite.f.services.Workflow.Submit(ctx, doc.ID, suite.f.traineePrincipal())
	assert.NoError(suite.T(), err)
	_, err = suite.f.services.Workflow.Decide(ctx, doc.ID, suite.f.supervisorPrincipal(), models.ActionApprove, "")
	assert.NoError(suite.T(), err)

	result, err := suite.f.services.Compliance.CheckCompletionEligibility(ctx, suite.f.trainee.ID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Eligible, "expected eligible, blocked by %v", result.BlockingReasons)
	assert.Empty(suite.T(), result.BlockingReasons)
}

func TestComplianceTestSuite(t *testing.T) {
	suite.Run(t, new(ComplianceTestSuite))
}
