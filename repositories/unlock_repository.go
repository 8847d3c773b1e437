package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mhollis/practicum-tracker/models"
)

// UnlockRepository defines unlock request database operations
type UnlockRepository interface {
	GetByID(ctx context.Context, id int64) (*models.UnlockRequest, error)
	// GetPending returns the document's pending request, or sql.ErrNoRows.
	GetPending(ctx context.Context, documentID int64) (*models.UnlockRequest, error)
	// GetLatestGrant returns the document's most recently approved request,
	// or sql.ErrNoRows when the document was never unlocked.
	GetLatestGrant(ctx context.Context, documentID int64) (*models.UnlockRequest, error)
	GetLapsedUnlogged(ctx context.Context, now time.Time) ([]models.UnlockRequest, error)
	Create(ctx context.Context, q Querier, req *models.UnlockRequest) error
	// Decide applies a review decision guarded on pending status; a request
	// decided concurrently makes this return a ConflictError.
	Decide(ctx context.Context, q Querier, req *models.UnlockRequest) error
	// CutGrant shortens an active grant's expiry (explicit re-lock).
	CutGrant(ctx context.Context, q Querier, id int64, expiry time.Time) error
	MarkExpiryLogged(ctx context.Context, q Querier, id int64) error
}

type unlockRepository struct {
	db *sql.DB
}

// NewUnlockRepository creates a new unlock request repository
func NewUnlockRepository(db *sql.DB) UnlockRepository {
	return &unlockRepository{db: db}
}

const unlockColumns = `
	id, document_id, requester_id, reason, target_section, status,
	reviewer_id, decision_comment, duration_minutes, grant_expiry,
	expiry_logged, created_at, decided_at
`

func (r *unlockRepository) scanRequest(row interface{ Scan(...interface{}) error }) (*models.UnlockRequest, error) {
	var u models.UnlockRequest
	err := row.Scan(
		&u.ID,
		&u.DocumentID,
		&u.RequesterID,
		&u.Reason,
		&u.TargetSection,
		&u.Status,
		&u.ReviewerID,
		&u.DecisionComment,
		&u.DurationMinutes,
		&u.GrantExpiry,
		&u.ExpiryLogged,
		&u.CreatedAt,
		&u.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves an unlock request by ID
func (r *unlockRepository) GetByID(ctx context.Context, id int64) (*models.UnlockRequest, error) {
	query := `SELECT ` + unlockColumns + ` FROM unlock_requests WHERE id = ?`

	req, err := r.scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "unlock request", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unlock request: %w", err)
	}
	return req, nil
}

// GetPending retrieves the pending request for a document, if any
func (r *unlockRepository) GetPending(ctx context.Context, documentID int64) (*models.UnlockRequest, error) {
	query := `SELECT ` + unlockColumns + ` FROM unlock_requests WHERE document_id = ? AND status = 'pending'`

	req, err := r.scanRequest(r.db.QueryRowContext(ctx, query, documentID))
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending unlock request: %w", err)
	}
	return req, nil
}

// GetLatestGrant retrieves the most recently approved request for a document
func (r *unlockRepository) GetLatestGrant(ctx context.Context, documentID int64) (*models.UnlockRequest, error) {
	query := `
		SELECT ` + unlockColumns + `
		FROM unlock_requests
		WHERE document_id = ? AND status = 'approved'
		ORDER BY decided_at DESC, id DESC
		LIMIT 1
	`

	req, err := r.scanRequest(r.db.QueryRowContext(ctx, query, documentID))
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest unlock grant: %w", err)
	}
	return req, nil
}

// GetLapsedUnlogged retrieves grants that expired without an audit record yet
func (r *unlockRepository) GetLapsedUnlogged(ctx context.Context, now time.Time) ([]models.UnlockRequest, error) {
	query := `
		SELECT ` + unlockColumns + `
		FROM unlock_requests
		WHERE status = 'approved' AND expiry_logged = 0 AND grant_expiry <= ?
		ORDER BY grant_expiry ASC
	`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query lapsed unlock grants: %w", err)
	}
	defer rows.Close()

	var reqs []models.UnlockRequest
	for rows.Next() {
		u, err := r.scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unlock request: %w", err)
		}
		reqs = append(reqs, *u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unlock requests: %w", err)
	}
	return reqs, nil
}

// Create inserts a new pending unlock request on the caller's transaction.
// The partial unique index on pending requests rejects a second pending
// request for the same document.
func (r *unlockRepository) Create(ctx context.Context, q Querier, req *models.UnlockRequest) error {
	query := `
		INSERT INTO unlock_requests (document_id, requester_id, reason, target_section, status)
		VALUES (?, ?, ?, ?, 'pending')
	`

	result, err := q.ExecContext(ctx, query,
		req.DocumentID,
		req.RequesterID,
		req.Reason,
		req.TargetSection,
	)
	if err != nil {
		return fmt.Errorf("failed to create unlock request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get unlock request id: %w", err)
	}
	req.ID = id
	req.Status = models.UnlockPending
	return nil
}

// Decide applies the decision held in req, guarded on pending status
func (r *unlockRepository) Decide(ctx context.Context, q Querier, req *models.UnlockRequest) error {
	query := `
		UPDATE unlock_requests
		SET status = ?, reviewer_id = ?, decision_comment = ?, duration_minutes = ?, grant_expiry = ?, decided_at = ?
		WHERE id = ? AND status = 'pending'
	`

	result, err := q.ExecContext(ctx, query,
		req.Status,
		req.ReviewerID,
		req.DecisionComment,
		req.DurationMinutes,
		req.GrantExpiry,
		req.DecidedAt,
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to decide unlock request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &models.ConflictError{Resource: "unlock request", ID: req.ID}
	}
	return nil
}

// CutGrant shortens an active grant's expiry to the given time
func (r *unlockRepository) CutGrant(ctx context.Context, q Querier, id int64, expiry time.Time) error {
	query := `UPDATE unlock_requests SET grant_expiry = ?, expiry_logged = 1 WHERE id = ? AND status = 'approved'`

	result, err := q.ExecContext(ctx, query, expiry, id)
	if err != nil {
		return fmt.Errorf("failed to cut unlock grant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &models.ConflictError{Resource: "unlock request", ID: id}
	}
	return nil
}

// MarkExpiryLogged records that a grant's lapse has been written to the audit trail
func (r *unlockRepository) MarkExpiryLogged(ctx context.Context, q Querier, id int64) error {
	_, err := q.ExecContext(ctx, `UPDATE unlock_requests SET expiry_logged = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark unlock expiry logged: %w", err)
	}
	return nil
}
