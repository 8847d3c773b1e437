package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mhollis/practicum-tracker/models"
)

// StaffRepository defines program staff (supervisor / admin) database operations
type StaffRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ProgramStaff, error)
	GetByEmail(ctx context.Context, email string) (*models.ProgramStaff, error)
	Create(ctx context.Context, staff *models.ProgramStaff) error
}

type staffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new program staff repository
func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) scanStaff(row interface{ Scan(...interface{}) error }) (*models.ProgramStaff, error) {
	var s models.ProgramStaff
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Role, &s.Active)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID retrieves a staff member by ID
func (r *staffRepository) GetByID(ctx context.Context, id int64) (*models.ProgramStaff, error) {
	query := `SELECT id, name, email, role, active FROM program_staff WHERE id = ?`

	staff, err := r.scanStaff(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "program staff", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get program staff: %w", err)
	}
	return staff, nil
}

// GetByEmail retrieves a staff member by email address
func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*models.ProgramStaff, error) {
	query := `SELECT id, name, email, role, active FROM program_staff WHERE email = ?`

	staff, err := r.scanStaff(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get program staff by email: %w", err)
	}
	return staff, nil
}

// Create inserts a new staff member
func (r *staffRepository) Create(ctx context.Context, staff *models.ProgramStaff) error {
	query := `INSERT INTO program_staff (name, email, role, active) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, staff.Name, staff.Email, staff.Role, staff.Active)
	if err != nil {
		return fmt.Errorf("failed to create program staff: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get staff id: %w", err)
	}
	staff.ID = id
	return nil
}
