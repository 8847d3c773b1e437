package models

// ProgressReport is the full progress picture for one trainee: cumulative
// and current-week totals, the compliance verdicts, and the document roster.
type ProgressReport struct {
	Trainee *Trainee            `json:"trainee"`
	Profile *RequirementProfile `json:"profile"`

	WeeksCompleted int `json:"weeks_completed"`
	MinWeeks       int `json:"min_weeks"`

	Cumulative  *HourSummary  `json:"cumulative"`
	CurrentWeek *HourSummary  `json:"current_week"`
	WeekVerdict WeeklyVerdict `json:"week_verdict"`

	Categories        CategoryVerdict `json:"categories"`
	SimulatedHeadroom float64         `json:"simulated_headroom"`

	Documents   []PeriodicDocument `json:"documents"`
	Eligibility *EligibilityResult `json:"eligibility"`
}
