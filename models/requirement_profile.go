package models

import "time"

// RequirementProfile is the static, versioned configuration for a program
// type: per-category minimums, the simulated-contact cap, weekly and total
// hour thresholds and the required supervision ratio. A profile row is
// immutable once a trainee is enrolled against it.
type RequirementProfile struct {
	ID          int64  `json:"id" db:"id"`
	ProgramType string `json:"program_type" db:"program_type"`
	Version     int    `json:"version" db:"version"`

	DirectContactMin   float64 `json:"direct_contact_min" db:"direct_contact_min"`
	ClientRelatedMin   float64 `json:"client_related_min" db:"client_related_min"`
	SupervisionMin     float64 `json:"supervision_min" db:"supervision_min"`
	ProfessionalDevMin float64 `json:"professional_dev_min" db:"professional_dev_min"`
	SimulatedMax       float64 `json:"simulated_max" db:"simulated_max"`

	MinWeeklyHours float64 `json:"min_weekly_hours" db:"min_weekly_hours"`
	MinWeeks       int     `json:"min_weeks" db:"min_weeks"`
	TotalHoursMin  float64 `json:"total_hours_min" db:"total_hours_min"`

	// SupervisionRatio is the maximum number of practice hours allowed per
	// one hour of supervision (the displayed "1:N" ratio).
	SupervisionRatio float64 `json:"supervision_ratio" db:"supervision_ratio"`

	// WaiveOpenDocumentCheck lets a program type complete even while a
	// periodic document is still under review.
	WaiveOpenDocumentCheck bool `json:"waive_open_document_check" db:"waive_open_document_check"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MinimumFor returns the cumulative minimum required for a category.
// Simulated contact has no minimum, only a cap.
func (p *RequirementProfile) MinimumFor(c Category) float64 {
	switch c {
	case CategoryDirectContact:
		return p.DirectContactMin
	case CategoryClientRelated:
		return p.ClientRelatedMin
	case CategorySupervision:
		return p.SupervisionMin
	case CategoryProfessionalDev:
		return p.ProfessionalDevMin
	default:
		return 0
	}
}

// SimulatedHeadroom returns how many simulated hours remain under the cap.
// A zero cap means the profile does not cap simulated hours.
func (p *RequirementProfile) SimulatedHeadroom(current float64) float64 {
	if p.SimulatedMax <= 0 {
		return 0
	}
	headroom := p.SimulatedMax - current
	if headroom < 0 {
		return 0
	}
	return headroom
}
