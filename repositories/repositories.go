package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository methods that must participate in a caller-owned transaction
// take a Querier explicitly; everything else runs on the repository's
// own connection.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic. Workflow transitions use this so the status
// change and its audit event commit or fail as one unit.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Repositories struct holds all repository interfaces
type Repositories struct {
	Profile  ProfileRepository
	Trainee  TraineeRepository
	Staff    StaffRepository
	Document DocumentRepository
	Entry    EntryRepository
	Unlock   UnlockRepository
	Audit    AuditRepository
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Profile:  NewProfileRepository(db),
		Trainee:  NewTraineeRepository(db),
		Staff:    NewStaffRepository(db),
		Document: NewDocumentRepository(db),
		Entry:    NewEntryRepository(db),
		Unlock:   NewUnlockRepository(db),
		Audit:    NewAuditRepository(db),
	}
}
