package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mhollis/practicum-tracker/models"
)

// AuditRepository handles the append-only audit trail. Create takes the
// caller's Querier so the event commits or rolls back with the state change
// it describes; events are never updated or deleted.
type AuditRepository interface {
	Create(ctx context.Context, q Querier, event *models.AuditEvent) error
	GetByDocument(ctx context.Context, documentID int64) ([]models.AuditEvent, error)
	// LatestDecision returns the most recent reviewer decision event for a
	// document, or sql.ErrNoRows.
	LatestDecision(ctx context.Context, documentID int64) (*models.AuditEvent, error)
}

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

const auditColumns = `id, document_id, actor_id, actor_role, action, prev_status, new_status, comment, metadata, created_at`

func (r *auditRepository) scanEvent(row interface{ Scan(...interface{}) error }) (*models.AuditEvent, error) {
	var e models.AuditEvent
	err := row.Scan(
		&e.ID,
		&e.DocumentID,
		&e.ActorID,
		&e.ActorRole,
		&e.Action,
		&e.PrevStatus,
		&e.NewStatus,
		&e.Comment,
		&e.Metadata,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create appends a new audit event on the caller's transaction
func (r *auditRepository) Create(ctx context.Context, q Querier, event *models.AuditEvent) error {
	query := `
		INSERT INTO audit_events (document_id, actor_id, actor_role, action, prev_status, new_status, comment, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := q.ExecContext(ctx, query,
		event.DocumentID,
		event.ActorID,
		event.ActorRole,
		event.Action,
		event.PrevStatus,
		event.NewStatus,
		event.Comment,
		event.Metadata,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get audit event id: %w", err)
	}
	event.ID = id
	event.CreatedAt = createdAt
	return nil
}

// GetByDocument retrieves the full trail for a document, ordered by
// timestamp then insertion sequence
func (r *auditRepository) GetByDocument(ctx context.Context, documentID int64) ([]models.AuditEvent, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_events WHERE document_id = ? ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []models.AuditEvent
	for rows.Next() {
		e, err := r.scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, *e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

// LatestDecision retrieves the most recent reviewer decision for a document
func (r *auditRepository) LatestDecision(ctx context.Context, documentID int64) (*models.AuditEvent, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_events
		WHERE document_id = ? AND action IN ('approved', 'rejected', 'returned_for_edits')
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	event, err := r.scanEvent(r.db.QueryRowContext(ctx, query, documentID))
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest decision: %w", err)
	}
	return event, nil
}
