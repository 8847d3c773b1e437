package models

import (
	"testing"
	"time"
)

// Test PracticeEntryForm validation
func TestPracticeEntryFormValidation(t *testing.T) {
	// Test valid form
	validForm := PracticeEntryForm{
		Category:  "dcc",
		Hours:     2.5,
		EntryDate: "2026-03-04",
	}
	errors := validForm.Validate()
	if len(errors) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errors)
	}

	// Test invalid form
	invalidForm := PracticeEntryForm{
		Category:  "commute", // Unknown category
		Hours:     0,         // Zero duration
		EntryDate: "04/03/2026",
	}
	errors = invalidForm.Validate()
	if len(errors) != 3 {
		t.Errorf("Expected 3 errors for invalid form, got: %v", errors)
	}

	// Negative and oversized durations are both rejected
	negativeForm := PracticeEntryForm{Category: "cra", Hours: -1, EntryDate: "2026-03-04"}
	if errs := negativeForm.Validate(); len(errs) != 1 {
		t.Errorf("Expected 1 error for negative duration, got: %v", errs)
	}
	oversizedForm := PracticeEntryForm{Category: "cra", Hours: 25, EntryDate: "2026-03-04"}
	if errs := oversizedForm.Validate(); len(errs) != 1 {
		t.Errorf("Expected 1 error for oversized duration, got: %v", errs)
	}
}

// Test the simulated flag derivation
func TestPracticeEntryFormIsSimulated(t *testing.T) {
	flagged := PracticeEntryForm{Category: "dcc", Simulated: true}
	if !flagged.IsSimulated() {
		t.Error("Expected flagged entry to count as simulated")
	}

	// Simulated-contact entries are simulated even without the flag
	simCategory := PracticeEntryForm{Category: "sim", Simulated: false}
	if !simCategory.IsSimulated() {
		t.Error("Expected sim-category entry to count as simulated")
	}

	plain := PracticeEntryForm{Category: "dcc", Simulated: false}
	if plain.IsSimulated() {
		t.Error("Expected plain dcc entry to not count as simulated")
	}
}

// Test review period boundaries
func TestPeriodFor(t *testing.T) {
	// Wednesday 2026-03-04 falls in the week of Monday 2026-03-02
	wednesday := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	period := PeriodFor(wednesday)

	if FormatDate(period.Start) != "2026-03-02" {
		t.Errorf("Expected period to start 2026-03-02, got %s", FormatDate(period.Start))
	}
	if FormatDate(period.End) != "2026-03-08" {
		t.Errorf("Expected period to end 2026-03-08, got %s", FormatDate(period.End))
	}

	// Sunday belongs to the week that started the previous Monday
	sunday := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)
	if FormatDate(PeriodFor(sunday).Start) != "2026-03-02" {
		t.Errorf("Expected Sunday to fall in the week of 2026-03-02, got %s", FormatDate(PeriodFor(sunday).Start))
	}

	// Monday starts its own week
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if FormatDate(PeriodFor(monday).Start) != "2026-03-09" {
		t.Errorf("Expected Monday to start its own week, got %s", FormatDate(PeriodFor(monday).Start))
	}
}

func TestWeekNumberSince(t *testing.T) {
	enrolled := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC) // Wednesday, week of Jan 5

	if n := WeekNumberSince(enrolled, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)); n != 1 {
		t.Errorf("Expected enrolment week to be week 1, got %d", n)
	}
	if n := WeekNumberSince(enrolled, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)); n != 2 {
		t.Errorf("Expected the following week to be week 2, got %d", n)
	}
	if n := WeekNumberSince(enrolled, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)); n != 9 {
		t.Errorf("Expected 2026-03-02 to be week 9, got %d", n)
	}
}

// Test the full permission matrix of the review workflow
func TestCanTransition(t *testing.T) {
	roles := []Role{RoleTrainee, RoleSupervisor, RoleProgramAdmin}
	statuses := []DocumentStatus{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusReturnedForEdits}
	actions := []WorkflowAction{ActionSubmit, ActionResubmit, ActionApprove, ActionReject, ActionReturnForEdits}

	type edge struct {
		role   Role
		from   DocumentStatus
		action WorkflowAction
	}
	allowed := map[edge]bool{
		{RoleTrainee, StatusDraft, ActionSubmit}:                 true,
		{RoleTrainee, StatusRejected, ActionResubmit}:            true,
		{RoleTrainee, StatusReturnedForEdits, ActionResubmit}:    true,
		{RoleSupervisor, StatusSubmitted, ActionApprove}:         true,
		{RoleSupervisor, StatusSubmitted, ActionReject}:          true,
		{RoleSupervisor, StatusSubmitted, ActionReturnForEdits}:  true,
	}

	for _, role := range roles {
		for _, from := range statuses {
			for _, action := range actions {
				want := allowed[edge{role, from, action}]
				got := CanTransition(role, from, action)
				if got != want {
					t.Errorf("CanTransition(%s, %s, %s) = %v, want %v", role, from, action, got, want)
				}
			}
		}
	}
}

func TestTransitionTarget(t *testing.T) {
	target, ok := TransitionTarget(StatusSubmitted, ActionApprove)
	if !ok || target != StatusApproved {
		t.Errorf("Expected approve from submitted to target approved, got %s (%v)", target, ok)
	}

	if _, ok := TransitionTarget(StatusApproved, ActionSubmit); ok {
		t.Error("Expected no transition out of approved")
	}
}

func TestEffectiveStatus(t *testing.T) {
	doc := PeriodicDocument{Status: StatusApproved, Locked: true}
	if doc.EffectiveStatus() != StatusLocked {
		t.Errorf("Expected locked document to report locked, got %s", doc.EffectiveStatus())
	}

	doc = PeriodicDocument{Status: StatusSubmitted}
	if doc.EffectiveStatus() != StatusSubmitted {
		t.Errorf("Expected unlocked document to report its status, got %s", doc.EffectiveStatus())
	}
}

func TestGrantActive(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	future := now.Add(30 * time.Minute)
	active := UnlockRequest{Status: UnlockApproved, GrantExpiry: &future}
	if !active.GrantActive(now) {
		t.Error("Expected grant with future expiry to be active")
	}
	if active.GrantExpired(now) {
		t.Error("Expected grant with future expiry to not be expired")
	}

	past := now.Add(-time.Minute)
	lapsed := UnlockRequest{Status: UnlockApproved, GrantExpiry: &past}
	if lapsed.GrantActive(now) {
		t.Error("Expected lapsed grant to be inactive")
	}
	if !lapsed.GrantExpired(now) {
		t.Error("Expected lapsed grant to report expired")
	}

	// Expiry exactly at now counts as expired
	atNow := now
	boundary := UnlockRequest{Status: UnlockApproved, GrantExpiry: &atNow}
	if boundary.GrantActive(now) {
		t.Error("Expected grant expiring exactly now to be inactive")
	}

	// A denied request never grants anything
	denied := UnlockRequest{Status: UnlockDenied, GrantExpiry: &future}
	if denied.GrantActive(now) {
		t.Error("Expected denied request to be inactive")
	}
}

func TestSimulatedHeadroom(t *testing.T) {
	profile := RequirementProfile{SimulatedMax: 60}

	if h := profile.SimulatedHeadroom(0); h != 60 {
		t.Errorf("Expected full headroom 60, got %f", h)
	}
	if h := profile.SimulatedHeadroom(45.5); h != 14.5 {
		t.Errorf("Expected headroom 14.5, got %f", h)
	}
	if h := profile.SimulatedHeadroom(75); h != 0 {
		t.Errorf("Expected no headroom over the cap, got %f", h)
	}
}

func TestMinimumFor(t *testing.T) {
	profile := RequirementProfile{
		DirectContactMin:   400,
		ClientRelatedMin:   200,
		SupervisionMin:     50,
		ProfessionalDevMin: 30,
	}

	if m := profile.MinimumFor(CategoryDirectContact); m != 400 {
		t.Errorf("Expected dcc minimum 400, got %f", m)
	}
	// Simulated contact has a cap, not a minimum
	if m := profile.MinimumFor(CategorySimulated); m != 0 {
		t.Errorf("Expected no minimum for sim, got %f", m)
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.HasErrors() {
		t.Error("Expected empty ValidationErrors to report no errors")
	}

	errs = append(errs, ValidationError{Field: "hours", Message: "duration must be greater than zero"})
	errs = append(errs, ValidationError{Field: "category", Message: "unknown hour category: x"})

	if !errs.HasErrors() {
		t.Error("Expected populated ValidationErrors to report errors")
	}
	if len(errs.GetMessages()) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(errs.GetMessages()))
	}
	if errs.Error() == "" {
		t.Error("Expected non-empty error string")
	}
}
