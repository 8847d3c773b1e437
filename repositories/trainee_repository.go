package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mhollis/practicum-tracker/models"
)

// TraineeRepository defines trainee database operations
type TraineeRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Trainee, error)
	GetByEmail(ctx context.Context, email string) (*models.Trainee, error)
	GetActive(ctx context.Context) ([]models.Trainee, error)
	Create(ctx context.Context, trainee *models.Trainee) error
	// MarkCompleted stamps the completion date. The guard on completed_at
	// makes a second completion attempt lose with zero rows affected.
	MarkCompleted(ctx context.Context, id int64, completedAt time.Time) (bool, error)
}

type traineeRepository struct {
	db *sql.DB
}

// NewTraineeRepository creates a new trainee repository
func NewTraineeRepository(db *sql.DB) TraineeRepository {
	return &traineeRepository{db: db}
}

const traineeColumns = `id, name, email, profile_id, supervisor_id, enrolled_at, completed_at, active`

func (r *traineeRepository) scanTrainee(row interface{ Scan(...interface{}) error }) (*models.Trainee, error) {
	var t models.Trainee
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Email,
		&t.ProfileID,
		&t.SupervisorID,
		&t.EnrolledAt,
		&t.CompletedAt,
		&t.Active,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID retrieves a trainee by ID
func (r *traineeRepository) GetByID(ctx context.Context, id int64) (*models.Trainee, error) {
	query := `SELECT ` + traineeColumns + ` FROM trainees WHERE id = ?`

	trainee, err := r.scanTrainee(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "trainee", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trainee: %w", err)
	}
	return trainee, nil
}

// GetByEmail retrieves a trainee by email address
func (r *traineeRepository) GetByEmail(ctx context.Context, email string) (*models.Trainee, error) {
	query := `SELECT ` + traineeColumns + ` FROM trainees WHERE email = ?`

	trainee, err := r.scanTrainee(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trainee by email: %w", err)
	}
	return trainee, nil
}

// GetActive retrieves all active trainees
func (r *traineeRepository) GetActive(ctx context.Context) ([]models.Trainee, error) {
	query := `SELECT ` + traineeColumns + ` FROM trainees WHERE active = 1 ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trainees: %w", err)
	}
	defer rows.Close()

	var trainees []models.Trainee
	for rows.Next() {
		t, err := r.scanTrainee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trainee: %w", err)
		}
		trainees = append(trainees, *t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trainees: %w", err)
	}
	return trainees, nil
}

// Create inserts a new trainee
func (r *traineeRepository) Create(ctx context.Context, trainee *models.Trainee) error {
	query := `
		INSERT INTO trainees (name, email, profile_id, supervisor_id, enrolled_at, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		trainee.Name,
		trainee.Email,
		trainee.ProfileID,
		trainee.SupervisorID,
		models.FormatDate(trainee.EnrolledAt),
		trainee.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to create trainee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get trainee id: %w", err)
	}
	trainee.ID = id
	return nil
}

// MarkCompleted stamps the completion date if not already completed
func (r *traineeRepository) MarkCompleted(ctx context.Context, id int64, completedAt time.Time) (bool, error) {
	query := `UPDATE trainees SET completed_at = ? WHERE id = ? AND completed_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, completedAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark trainee completed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}
