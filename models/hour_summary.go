package models

// HourSummary holds computed per-category totals for a window. It is derived
// fresh on every query and never persisted or cached across entry mutations.
type HourSummary struct {
	TraineeID int64     `json:"trainee_id"`
	Window    DateRange `json:"window"`

	DirectContact   float64 `json:"dcc"`
	ClientRelated   float64 `json:"cra"`
	SimulatedContact float64 `json:"sim"`
	Supervision     float64 `json:"supervision"`
	ProfessionalDev float64 `json:"pd"`

	// Practice is direct contact + client-related + simulated contact
	Practice float64 `json:"practice"`
	// Simulated is the total of simulated-flagged hours, tracked against the cap
	Simulated float64 `json:"simulated"`
	Total     float64 `json:"total"`
}

// CategoryTotal returns the bucket total for a category
func (s *HourSummary) CategoryTotal(c Category) float64 {
	switch c {
	case CategoryDirectContact:
		return s.DirectContact
	case CategoryClientRelated:
		return s.ClientRelated
	case CategorySimulated:
		return s.SimulatedContact
	case CategorySupervision:
		return s.Supervision
	case CategoryProfessionalDev:
		return s.ProfessionalDev
	default:
		return 0
	}
}

// WeeklyVerdict is the outcome of validating one week's totals against the
// profile's weekly minimum. Failing the threshold is a normal result, not an
// error.
type WeeklyVerdict struct {
	Passed  bool    `json:"passed"`
	Total   float64 `json:"total"`
	Minimum float64 `json:"minimum"`
	Message string  `json:"message"`
}

// RatioRequirement tags the supervision-ratio rule in category verdicts.
// It is not an hour bucket, but it fails the category verdict like one.
const RatioRequirement Category = "supervision_ratio"

// CategoryFailure describes one category that missed its requirement
type CategoryFailure struct {
	Category Category `json:"category"`
	Current  float64  `json:"current"`
	Required float64  `json:"required"`
	Message  string   `json:"message"`
}

// CategoryVerdict is the outcome of validating cumulative totals against
// every category requirement. All failing categories are reported in one
// pass; nothing short-circuits.
type CategoryVerdict struct {
	Passed            bool              `json:"passed"`
	FailingCategories []string          `json:"failing_categories"`
	Failures          []CategoryFailure `json:"failures,omitempty"`
}

// WeekActivity is one row of a trainee's weekly breakdown: the week's
// entries and totals, plus the weekly verdict once a profile was applied.
type WeekActivity struct {
	WeekNumber int            `json:"week_number"`
	Period     DateRange      `json:"period"`
	Summary    HourSummary    `json:"summary"`
	Entries    []PracticeEntry `json:"entries"`
	Verdict    *WeeklyVerdict `json:"verdict,omitempty"`
}

// EligibilityResult is the program-completion decision for a trainee
type EligibilityResult struct {
	Eligible        bool     `json:"can_complete"`
	BlockingReasons []string `json:"blocking_reasons"`
}
