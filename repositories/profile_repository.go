package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mhollis/practicum-tracker/models"
)

// ProfileRepository defines requirement profile database operations.
// Profiles are static configuration: there is no write path beyond the
// seed migrations.
type ProfileRepository interface {
	GetByID(ctx context.Context, id int64) (*models.RequirementProfile, error)
	GetByProgramType(ctx context.Context, programType string, version int) (*models.RequirementProfile, error)
	GetAll(ctx context.Context) ([]models.RequirementProfile, error)
}

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new requirement profile repository
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `
	id, program_type, version,
	direct_contact_min, client_related_min, supervision_min, professional_dev_min, simulated_max,
	min_weekly_hours, min_weeks, total_hours_min, supervision_ratio,
	waive_open_document_check, created_at
`

func scanProfile(row interface{ Scan(...interface{}) error }) (*models.RequirementProfile, error) {
	var p models.RequirementProfile
	err := row.Scan(
		&p.ID,
		&p.ProgramType,
		&p.Version,
		&p.DirectContactMin,
		&p.ClientRelatedMin,
		&p.SupervisionMin,
		&p.ProfessionalDevMin,
		&p.SimulatedMax,
		&p.MinWeeklyHours,
		&p.MinWeeks,
		&p.TotalHoursMin,
		&p.SupervisionRatio,
		&p.WaiveOpenDocumentCheck,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a requirement profile by ID
func (r *profileRepository) GetByID(ctx context.Context, id int64) (*models.RequirementProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM requirement_profiles WHERE id = ?`

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "requirement profile", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get requirement profile: %w", err)
	}
	return profile, nil
}

// GetByProgramType retrieves a specific version of a program's profile
func (r *profileRepository) GetByProgramType(ctx context.Context, programType string, version int) (*models.RequirementProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM requirement_profiles WHERE program_type = ? AND version = ?`

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, programType, version))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("requirement profile %s v%d not found", programType, version)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get requirement profile: %w", err)
	}
	return profile, nil
}

// GetAll retrieves all requirement profiles ordered by program type and version
func (r *profileRepository) GetAll(ctx context.Context) ([]models.RequirementProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM requirement_profiles ORDER BY program_type ASC, version ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query requirement profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.RequirementProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan requirement profile: %w", err)
		}
		profiles = append(profiles, *p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requirement profiles: %w", err)
	}
	return profiles, nil
}
