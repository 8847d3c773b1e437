package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mhollis/practicum-tracker/models"
)

// DocumentRepository defines periodic document database operations
type DocumentRepository interface {
	GetByID(ctx context.Context, id int64) (*models.PeriodicDocument, error)
	GetByTraineeAndPeriod(ctx context.Context, traineeID int64, periodStart time.Time) (*models.PeriodicDocument, error)
	GetByTrainee(ctx context.Context, traineeID int64) ([]models.PeriodicDocument, error)
	GetUnderReview(ctx context.Context, traineeID int64) ([]models.PeriodicDocument, error)
	CountApproved(ctx context.Context, traineeID int64) (int, error)
	Create(ctx context.Context, doc *models.PeriodicDocument) error
	// UpdateStatus applies a status transition with an optimistic version
	// check, on the caller's transaction. A concurrent writer that already
	// bumped the version makes this return a ConflictError.
	UpdateStatus(ctx context.Context, q Querier, doc *models.PeriodicDocument) error
}

type documentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new periodic document repository
func NewDocumentRepository(db *sql.DB) DocumentRepository {
	return &documentRepository{db: db}
}

const documentColumns = `
	id, trainee_id, period_start, period_end, status, locked,
	reviewer_id, decision_comment, decided_at, version, created_at
`

func (r *documentRepository) scanDocument(row interface{ Scan(...interface{}) error }) (*models.PeriodicDocument, error) {
	var d models.PeriodicDocument
	err := row.Scan(
		&d.ID,
		&d.TraineeID,
		&d.PeriodStart,
		&d.PeriodEnd,
		&d.Status,
		&d.Locked,
		&d.ReviewerID,
		&d.DecisionComment,
		&d.DecidedAt,
		&d.Version,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID retrieves a periodic document by ID
func (r *documentRepository) GetByID(ctx context.Context, id int64) (*models.PeriodicDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM periodic_documents WHERE id = ?`

	doc, err := r.scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "periodic document", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get periodic document: %w", err)
	}
	return doc, nil
}

// GetByTraineeAndPeriod retrieves the document for one trainee and period.
// Returns sql.ErrNoRows when no document exists for the period yet.
func (r *documentRepository) GetByTraineeAndPeriod(ctx context.Context, traineeID int64, periodStart time.Time) (*models.PeriodicDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM periodic_documents WHERE trainee_id = ? AND period_start = ?`

	doc, err := r.scanDocument(r.db.QueryRowContext(ctx, query, traineeID, models.FormatDate(periodStart)))
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get periodic document for period: %w", err)
	}
	return doc, nil
}

// GetByTrainee retrieves all documents for a trainee, newest period first
func (r *documentRepository) GetByTrainee(ctx context.Context, traineeID int64) ([]models.PeriodicDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM periodic_documents WHERE trainee_id = ? ORDER BY period_start DESC`
	return r.queryDocuments(ctx, query, traineeID)
}

// GetUnderReview retrieves the trainee's documents in a non-terminal review state
func (r *documentRepository) GetUnderReview(ctx context.Context, traineeID int64) ([]models.PeriodicDocument, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM periodic_documents
		WHERE trainee_id = ? AND status IN ('submitted', 'rejected', 'returned_for_edits')
		ORDER BY period_start ASC
	`
	return r.queryDocuments(ctx, query, traineeID)
}

func (r *documentRepository) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]models.PeriodicDocument, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query periodic documents: %w", err)
	}
	defer rows.Close()

	var docs []models.PeriodicDocument
	for rows.Next() {
		d, err := r.scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan periodic document: %w", err)
		}
		docs = append(docs, *d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating periodic documents: %w", err)
	}
	return docs, nil
}

// CountApproved counts the trainee's approved documents. One approved
// document stands for one completed program week.
func (r *documentRepository) CountApproved(ctx context.Context, traineeID int64) (int, error) {
	query := `SELECT COUNT(*) FROM periodic_documents WHERE trainee_id = ? AND status = 'approved'`

	var count int
	if err := r.db.QueryRowContext(ctx, query, traineeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count approved documents: %w", err)
	}
	return count, nil
}

// Create inserts a new periodic document in draft status
func (r *documentRepository) Create(ctx context.Context, doc *models.PeriodicDocument) error {
	query := `
		INSERT INTO periodic_documents (trainee_id, period_start, period_end, status, locked, reviewer_id, version)
		VALUES (?, ?, ?, ?, 0, ?, 1)
	`

	result, err := r.db.ExecContext(ctx, query,
		doc.TraineeID,
		models.FormatDate(doc.PeriodStart),
		models.FormatDate(doc.PeriodEnd),
		doc.Status,
		doc.ReviewerID,
	)
	if err != nil {
		return fmt.Errorf("failed to create periodic document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get document id: %w", err)
	}
	doc.ID = id
	doc.Version = 1
	return nil
}

// UpdateStatus applies the transition held in doc, guarded by doc.Version
func (r *documentRepository) UpdateStatus(ctx context.Context, q Querier, doc *models.PeriodicDocument) error {
	query := `
		UPDATE periodic_documents
		SET status = ?, locked = ?, decision_comment = ?, decided_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`

	result, err := q.ExecContext(ctx, query,
		doc.Status,
		doc.Locked,
		doc.DecisionComment,
		doc.DecidedAt,
		doc.ID,
		doc.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &models.ConflictError{Resource: "periodic document", ID: doc.ID}
	}

	doc.Version++
	return nil
}
