package models

import (
	"time"
)

// Category is a bucket of logged practice hours. The short codes double as
// the stable identifiers used in storage, API payloads and verdicts.
type Category string

const (
	CategoryDirectContact   Category = "dcc"         // direct client contact
	CategoryClientRelated   Category = "cra"         // client-related activity
	CategorySimulated       Category = "sim"         // simulated contact
	CategorySupervision     Category = "supervision" // supervision received
	CategoryProfessionalDev Category = "pd"          // professional development
)

// Categories lists all hour categories in display order
var Categories = []Category{
	CategoryDirectContact,
	CategoryClientRelated,
	CategorySimulated,
	CategorySupervision,
	CategoryProfessionalDev,
}

// CategoryNames maps category codes to readable names
var CategoryNames = map[Category]string{
	CategoryDirectContact:   "Direct Client Contact",
	CategoryClientRelated:   "Client-Related Activity",
	CategorySimulated:       "Simulated Contact",
	CategorySupervision:     "Supervision",
	CategoryProfessionalDev: "Professional Development",
}

// IsValid reports whether the category is one of the known buckets
func (c Category) IsValid() bool {
	_, ok := CategoryNames[c]
	return ok
}

// Name returns the readable name for the category
func (c Category) Name() string {
	if name, ok := CategoryNames[c]; ok {
		return name
	}
	return "Unknown"
}

// PracticeEntry represents a single logged practice activity. Entries are
// owned by the trainee and are never deleted: an amendment inserts a
// replacement row and marks the original as superseded.
type PracticeEntry struct {
	ID           int64     `json:"id" db:"id"`
	TraineeID    int64     `json:"trainee_id" db:"trainee_id"`
	DocumentID   int64     `json:"document_id" db:"document_id"`
	Category     Category  `json:"category" db:"category"`
	Hours        float64   `json:"hours" db:"hours"`
	EntryDate    time.Time `json:"entry_date" db:"entry_date"`
	Simulated    bool      `json:"simulated" db:"simulated"`
	Reflection   string    `json:"reflection" db:"reflection"`
	SupersededBy *int64    `json:"superseded_by,omitempty" db:"superseded_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PracticeEntryForm represents form data for logging or amending an entry
type PracticeEntryForm struct {
	Category   string  `json:"category"`
	Hours      float64 `json:"hours"`
	EntryDate  string  `json:"entry_date"`
	Simulated  bool    `json:"simulated"`
	Reflection string  `json:"reflection"`
}

// Validate validates the practice entry form data
func (f *PracticeEntryForm) Validate() ValidationErrors {
	var errs ValidationErrors

	if !Category(f.Category).IsValid() {
		errs = append(errs, ValidationError{Field: "category", Message: "unknown hour category: " + f.Category})
	}

	if f.Hours <= 0 {
		errs = append(errs, ValidationError{Field: "hours", Message: "duration must be greater than zero"})
	}

	if f.Hours > 24 {
		errs = append(errs, ValidationError{Field: "hours", Message: "duration cannot exceed 24 hours"})
	}

	if _, err := ParseDate(f.EntryDate); err != nil {
		errs = append(errs, ValidationError{Field: "entry_date", Message: "entry date must be in YYYY-MM-DD format"})
	}

	return errs
}

// IsSimulated reports whether the entry counts against the simulated cap.
// Simulated-contact entries are simulated by definition.
func (f *PracticeEntryForm) IsSimulated() bool {
	return f.Simulated || Category(f.Category) == CategorySimulated
}
