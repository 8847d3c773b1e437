package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/userctx"
)

type EntryTestSuite struct {
	suite.Suite
	f *fixture
}

func (suite *EntryTestSuite) SetupTest() {
	suite.f = newFixture(suite.T())
	setNow(suite.T(), time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC))
}

func (suite *EntryTestSuite) TestLog_CreatesDraftForWeek() {
	ctx := context.Background()

	entry := suite.f.logEntry(suite.T(), "dcc", 2.5, "2026-01-07")

	doc, err := suite.f.repos.Document.GetByID(ctx, entry.DocumentID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusDraft, doc.Status)
	assert.Equal(suite.T(), "2026-01-05", models.FormatDate(doc.PeriodStart))
	assert.Equal(suite.T(), "2026-01-11", models.FormatDate(doc.PeriodEnd))
	assert.Equal(suite.T(), suite.f.staff.ID, doc.ReviewerID)
}

func (suite *EntryTestSuite) TestLog_ReusesWeekDocument() {
	first := suite.f.logEntry(suite.T(), "dcc", 1, "2026-01-05")
	second := suite.f.logEntry(suite.T(), "cra", 1, "2026-01-09")
	nextWeek := suite.f.logEntry(suite.T(), "dcc", 1, "2026-01-12")

	assert.Equal(suite.T(), first.DocumentID, second.DocumentID)
	assert.NotEqual(suite.T(), first.DocumentID, nextWeek.DocumentID)
}

func (suite *EntryTestSuite) TestLog_InvalidForm() {
	_, err := suite.f.services.Entries.Log(context.Background(), suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "yoga", Hours: -1, EntryDate: "",
	})

	var validationErrs models.ValidationErrors
	assert.ErrorAs(suite.T(), err, &validationErrs)
}

func (suite *EntryTestSuite) TestLog_OnlyTrainees() {
	_, err := suite.f.services.Entries.Log(context.Background(), suite.f.supervisorPrincipal(), &models.PracticeEntryForm{
		Category: "dcc", Hours: 1, EntryDate: "2026-01-07",
	})

	var authErr *models.AuthorizationError
	assert.ErrorAs(suite.T(), err, &authErr)
}

func (suite *EntryTestSuite) TestLog_BeforeEnrolment() {
	_, err := suite.f.services.Entries.Log(context.Background(), suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "dcc", Hours: 1, EntryDate: "2026-01-04",
	})

	var validationErrs models.ValidationErrors
	assert.ErrorAs(suite.T(), err, &validationErrs)
	assert.Equal(suite.T(), "entry_date", validationErrs[0].Field)
}

func (suite *EntryTestSuite) TestLog_AfterCompletion() {
	ctx := context.Background()
	updated, err := suite.f.repos.Trainee.MarkCompleted(ctx, suite.f.trainee.ID, timeNow())
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), updated)

	_, err = suite.f.services.Entries.Log(ctx, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "dcc", Hours: 1, EntryDate: "2026-01-07",
	})

	var validationErrs models.ValidationErrors
	assert.ErrorAs(suite.T(), err, &validationErrs)
}

// The test profile caps simulated hours at 10
func (suite *EntryTestSuite) TestLog_SimulatedCap() {
	ctx := context.Background()

	_, err := suite.f.services.Entries.Log(ctx, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "sim", Hours: 8, EntryDate: "2026-01-05",
	})
	assert.NoError(suite.T(), err)

	// 8 + 3 would exceed the cap
	_, err = suite.f.services.Entries.Log(ctx, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "sim", Hours: 3, EntryDate: "2026-01-06",
	})
	var validationErrs models.ValidationErrors
	assert.ErrorAs(suite.T(), err, &validationErrs)
	assert.Equal(suite.T(), "hours", validationErrs[0].Field)

	// 8 + 2 lands exactly on the cap
	_, err = suite.f.services.Entries.Log(ctx, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "sim", Hours: 2, EntryDate: "2026-01-06",
	})
	assert.NoError(suite.T(), err)
}

// The simulated flag on a non-sim category counts against the cap too
func (suite *EntryTestSuite) TestLog_SimulatedFlagCounts() {
	ctx := context.Background()

	_, err := suite.f.services.Entries.Log(ctx, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "dcc", Hours: 9, EntryDate: "2026-01-05", Simulated: true,
	})
	assert.NoError(suite.T(), err)

	_, err = suite.f.services.Entries.Log(ctx, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "sim", Hours: 2, EntryDate: "2026-01-06",
	})
	var validationErrs models.ValidationErrors
	assert.ErrorAs(suite.T(), err, &validationErrs)
}

func (suite *EntryTestSuite) TestAmend() {
	ctx := context.Background()
	original := suite.f.logEntry(suite.T(), "dcc", 2, "2026-01-07")

	replacement, err := suite.f.services.Entries.Amend(ctx, original.ID, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "dcc", Hours: 3.5, EntryDate: "2026-01-07", Reflection: "corrected duration",
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3.5, replacement.Hours)
	assert.Equal(suite.T(), original.DocumentID, replacement.DocumentID)

	// The original drops out of the active ledger
	entries, err := suite.f.repos.Entry.GetByDocument(ctx, original.DocumentID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), entries, 1)
	assert.Equal(suite.T(), replacement.ID, entries[0].ID)

	stored, err := suite.f.repos.Entry.GetByID(ctx, original.ID)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), stored.SupersededBy)
	assert.Equal(suite.T(), replacement.ID, *stored.SupersededBy)
}

// Changing the date to another week moves the replacement to that week's
// document
func (suite *EntryTestSuite) TestAmend_MovesWeeks() {
	ctx := context.Background()
	original := suite.f.logEntry(suite.T(), "dcc", 2, "2026-01-07")

	replacement, err := suite.f.services.Entries.Amend(ctx, original.ID, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "dcc", Hours: 2, EntryDate: "2026-01-13",
	})
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), original.DocumentID, replacement.DocumentID)

	doc, err := suite.f.repos.Document.GetByID(ctx, replacement.DocumentID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2026-01-12", models.FormatDate(doc.PeriodStart))
}

// Amending a simulated entry credits its hours back before the cap check
func (suite *EntryTestSuite) TestAmend_ReclaimsSimulatedHours() {
	ctx := context.Background()
	original := suite.f.logEntry(suite.T(), "sim", 9, "2026-01-05")

	// 10 would blow the cap on a fresh log, but replacing the 9 leaves room
	replacement, err := suite.f.services.Entries.Amend(ctx, original.ID, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "sim", Hours: 10, EntryDate: "2026-01-05",
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 10.0, replacement.Hours)

	// The replacement itself now fills the cap
	_, err = suite.f.services.Entries.Amend(ctx, replacement.ID, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "sim", Hours: 11, EntryDate: "2026-01-05",
	})
	var validationErrs models.ValidationErrors
	assert.ErrorAs(suite.T(), err, &validationErrs)
}

func (suite *EntryTestSuite) TestAmend_OnlyOwner() {
	original := suite.f.logEntry(suite.T(), "dcc", 2, "2026-01-07")
	other := userctx.Principal{ID: suite.f.trainee.ID + 99, Role: models.RoleTrainee}

	_, err := suite.f.services.Entries.Amend(context.Background(), original.ID, other, &models.PracticeEntryForm{
		Category: "dcc", Hours: 1, EntryDate: "2026-01-07",
	})

	var authErr *models.AuthorizationError
	assert.ErrorAs(suite.T(), err, &authErr)
}

func (suite *EntryTestSuite) TestAmend_SupersededOnce() {
	ctx := context.Background()
	original := suite.f.logEntry(suite.T(), "dcc", 2, "2026-01-07")

	_, err := suite.f.services.Entries.Amend(ctx, original.ID, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "dcc", Hours: 3, EntryDate: "2026-01-07",
	})
	assert.NoError(suite.T(), err)

	_, err = suite.f.services.Entries.Amend(ctx, original.ID, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "dcc", Hours: 4, EntryDate: "2026-01-07",
	})

	var conflictErr *models.ConflictError
	assert.ErrorAs(suite.T(), err, &conflictErr)
}

// Writes against a submitted document are rejected until the reviewer
// returns it
func (suite *EntryTestSuite) TestSubmittedDocumentRejectsWrites() {
	ctx := context.Background()
	entry := suite.f.logEntry(suite.T(), "dcc", 2, "2026-01-07")

	_, err := suite.f.services.Workflow.Submit(ctx, entry.DocumentID, suite.f.traineePrincipal())
	assert.NoError(suite.T(), err)

	_, err = suite.f.services.Entries.Log(ctx, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "cra", Hours: 1, EntryDate: "2026-01-08",
	})
	var stateErr *models.StateError
	assert.ErrorAs(suite.T(), err, &stateErr)

	_, err = suite.f.services.Entries.Amend(ctx, entry.ID, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "dcc", Hours: 3, EntryDate: "2026-01-07",
	})
	stateErr = nil
	assert.ErrorAs(suite.T(), err, &stateErr)

	// Returning the document for edits reopens it
	_, err = suite.f.services.Workflow.Decide(ctx, entry.DocumentID, suite.f.supervisorPrincipal(), models.ActionReturnForEdits, "split Thursday's session")
	assert.NoError(suite.T(), err)

	_, err = suite.f.services.Entries.Amend(ctx, entry.ID, suite.f.traineePrincipal(), &models.PracticeEntryForm{
		Category: "dcc", Hours: 3, EntryDate: "2026-01-07",
	})
	assert.NoError(suite.T(), err)
}

func (suite *EntryTestSuite) TestListForDocument() {
	ctx := context.Background()
	entry := suite.f.logEntry(suite.T(), "dcc", 2, "2026-01-07")
	suite.f.logEntry(suite.T(), "cra", 1, "2026-01-08")

	entries, err := suite.f.services.Entries.ListForDocument(ctx, entry.DocumentID, suite.f.traineePrincipal())
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), entries, 2)

	// Staff can list any trainee's document
	entries, err = suite.f.services.Entries.ListForDocument(ctx, entry.DocumentID, suite.f.supervisorPrincipal())
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), entries, 2)

	other := userctx.Principal{ID: suite.f.trainee.ID + 99, Role: models.RoleTrainee}
	_, err = suite.f.services.Entries.ListForDocument(ctx, entry.DocumentID, other)
	var authErr *models.AuthorizationError
	assert.ErrorAs(suite.T(), err, &authErr)
}

func TestEntryTestSuite(t *testing.T) {
	suite.Run(t, new(EntryTestSuite))
}
