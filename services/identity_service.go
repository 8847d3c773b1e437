package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/repositories"
	"github.com/mhollis/practicum-tracker/userctx"
)

// ErrUnknownIdentity is returned when a login email matches no account
var ErrUnknownIdentity = errors.New("no account matches this email")

// IdentityService resolves an authenticated email to an application
// principal. Staff accounts take precedence over trainee accounts when an
// email exists in both tables.
type IdentityService interface {
	Resolve(ctx context.Context, email string) (userctx.Principal, error)
}

type identityService struct {
	traineeRepo repositories.TraineeRepository
	staffRepo   repositories.StaffRepository
}

// NewIdentityService creates a new identity resolution service
func NewIdentityService(traineeRepo repositories.TraineeRepository, staffRepo repositories.StaffRepository) IdentityService {
	return &identityService{traineeRepo: traineeRepo, staffRepo: staffRepo}
}

// Resolve maps an email to a principal
func (s *identityService) Resolve(ctx context.Context, email string) (userctx.Principal, error) {
	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err == nil {
		return userctx.Principal{ID: staff.ID, Email: staff.Email, Role: staff.Role}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return userctx.Principal{}, fmt.Errorf("failed to resolve staff identity: %w", err)
	}

	trainee, err := s.traineeRepo.GetByEmail(ctx, email)
	if err == nil {
		return userctx.Principal{ID: trainee.ID, Email: trainee.Email, Role: models.RoleTrainee}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return userctx.Principal{}, fmt.Errorf("failed to resolve trainee identity: %w", err)
	}

	return userctx.Principal{}, ErrUnknownIdentity
}
