package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/repositories"
	"github.com/mhollis/practicum-tracker/userctx"
)

// Unlock review decisions
const (
	UnlockDecisionApprove = "approve"
	UnlockDecisionDeny    = "deny"
)

// UnlockService manages temporary unlock grants against locked documents.
// A grant is a time window; expiry is evaluated lazily against the clock on
// every access, so no sweeper is needed for correctness. The optional sweep
// only backfills audit events for grants that lapsed unobserved.
type UnlockService interface {
	Request(ctx context.Context, documentID int64, actor userctx.Principal, form *models.UnlockRequestForm) (*models.UnlockRequest, error)
	Review(ctx context.Context, requestID int64, actor userctx.Principal, decision, comment string, durationMinutes int) (*models.UnlockRequest, error)
	// ActiveGrant returns the document's active grant, or nil when the
	// document is not temporarily editable.
	ActiveGrant(ctx context.Context, documentID int64) (*models.UnlockRequest, error)
	// Relock ends an active grant early.
	Relock(ctx context.Context, documentID int64, actor userctx.Principal) error
	// SweepExpired records an audit event for every grant that lapsed
	// without one; returns the number of grants swept.
	SweepExpired(ctx context.Context) (int, error)
}

type unlockService struct {
	db          *sql.DB
	docRepo     repositories.DocumentRepository
	traineeRepo repositories.TraineeRepository
	unlockRepo  repositories.UnlockRepository
	auditRepo   repositories.AuditRepository
	notifier    Notifier
}

// NewUnlockService creates a new unlock grant service
func NewUnlockService(
	db *sql.DB,
	docRepo repositories.DocumentRepository,
	traineeRepo repositories.TraineeRepository,
	unlockRepo repositories.UnlockRepository,
	auditRepo repositories.AuditRepository,
	notifier Notifier,
) UnlockService {
	return &unlockService{
		db:          db,
		docRepo:     docRepo,
		traineeRepo: traineeRepo,
		unlockRepo:  unlockRepo,
		auditRepo:   auditRepo,
		notifier:    notifier,
	}
}

// Request creates a pending unlock request for a locked document
func (s *unlockService) Request(ctx context.Context, documentID int64, actor userctx.Principal, form *models.UnlockRequestForm) (*models.UnlockRequest, error) {
	if errs := form.Validate(); errs.HasErrors() {
		return nil, errs
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if actor.Role != models.RoleTrainee || actor.ID != doc.TraineeID {
		return nil, &models.AuthorizationError{Role: actor.Role, Action: "request an unlock for this document"}
	}

	if !doc.Locked {
		return nil, &models.StateError{DocumentID: doc.ID, Status: doc.EffectiveStatus(), Action: "request_unlock"}
	}

	if _, err := s.unlockRepo.GetPending(ctx, documentID); err == nil {
		return nil, &models.ConflictError{Resource: "pending unlock request for document", ID: documentID}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	req := &models.UnlockRequest{
		DocumentID:    documentID,
		RequesterID:   actor.ID,
		Reason:        form.Reason,
		TargetSection: form.TargetSection,
	}

	metadata := ""
	if form.TargetSection != "" {
		metadata = fmt.Sprintf(`{"target_section":%q}`, form.TargetSection)
	}

	err = repositories.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.unlockRepo.Create(ctx, tx, req); err != nil {
			return err
		}
		return s.auditRepo.Create(ctx, tx, &models.AuditEvent{
			DocumentID: documentID,
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     models.AuditUnlockRequested,
			Comment:    form.Reason,
			Metadata:   metadata,
		})
	})
	if err != nil {
		return nil, err
	}

	dispatch(s.notifier, NewNotification(models.AuditUnlockRequested, documentID, doc.TraineeID))
	return req, nil
}

// Review approves or denies a pending unlock request
func (s *unlockService) Review(ctx context.Context, requestID int64, actor userctx.Principal, decision, comment string, durationMinutes int) (*models.UnlockRequest, error) {
	switch decision {
	case UnlockDecisionApprove, UnlockDecisionDeny:
	default:
		return nil, models.Invalid("decision", fmt.Sprintf("unknown decision %q", decision))
	}

	if decision == UnlockDecisionDeny && comment == "" {
		return nil, models.Invalid("comment", "a comment is required to deny an unlock request")
	}
	if decision == UnlockDecisionApprove && durationMinutes <= 0 {
		return nil, models.Invalid("duration_minutes", "an unlock grant needs a positive duration")
	}

	if actor.Role != models.RoleSupervisor && actor.Role != models.RoleProgramAdmin {
		return nil, &models.AuthorizationError{Role: actor.Role, Action: "review unlock requests"}
	}

	req, err := s.unlockRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.UnlockPending {
		return nil, &models.StateError{DocumentID: req.DocumentID, Status: models.DocumentStatus(req.Status), Action: "review_unlock"}
	}

	doc, err := s.docRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	now := timeNow()
	auditAction := models.AuditUnlockDenied
	metadata := ""

	req.ReviewerID = &actor.ID
	req.DecisionComment = comment
	req.DecidedAt = &now

	if decision == UnlockDecisionApprove {
		expiry := now.Add(time.Duration(durationMinutes) * time.Minute)
		req.Status = models.UnlockApproved
		req.DurationMinutes = durationMinutes
		req.GrantExpiry = &expiry
		auditAction = models.AuditUnlockApproved
		metadata = fmt.Sprintf(`{"duration_minutes":%d,"grant_expiry":%q}`, durationMinutes, expiry.UTC().Format(time.RFC3339))
	} else {
		req.Status = models.UnlockDenied
	}

	err = repositories.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.unlockRepo.Decide(ctx, tx, req); err != nil {
			return err
		}
		return s.auditRepo.Create(ctx, tx, &models.AuditEvent{
			DocumentID: req.DocumentID,
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     auditAction,
			Comment:    comment,
			Metadata:   metadata,
		})
	})
	if err != nil {
		return nil, err
	}

	dispatch(s.notifier, NewNotification(auditAction, req.DocumentID, doc.TraineeID))
	return req, nil
}

// ActiveGrant returns the document's unexpired grant, if any
func (s *unlockService) ActiveGrant(ctx context.Context, documentID int64) (*models.UnlockRequest, error) {
	grant, err := s.unlockRepo.GetLatestGrant(ctx, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !grant.GrantActive(timeNow()) {
		return nil, nil
	}
	return grant, nil
}

// Relock ends an active grant early and records it in the audit trail
func (s *unlockService) Relock(ctx context.Context, documentID int64, actor userctx.Principal) error {
	if actor.Role != models.RoleSupervisor && actor.Role != models.RoleProgramAdmin {
		return &models.AuthorizationError{Role: actor.Role, Action: "re-lock documents"}
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	grant, err := s.ActiveGrant(ctx, documentID)
	if err != nil {
		return err
	}
	if grant == nil {
		return &models.StateError{DocumentID: doc.ID, Status: doc.EffectiveStatus(), Action: "relock"}
	}

	now := timeNow()
	return repositories.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.unlockRepo.CutGrant(ctx, tx, grant.ID, now); err != nil {
			return err
		}
		return s.auditRepo.Create(ctx, tx, &models.AuditEvent{
			DocumentID: documentID,
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     models.AuditRelocked,
			Metadata:   fmt.Sprintf(`{"unlock_request_id":%d}`, grant.ID),
		})
	})
}

// SweepExpired backfills audit events for grants that lapsed unobserved
func (s *unlockService) SweepExpired(ctx context.Context) (int, error) {
	lapsed, err := s.unlockRepo.GetLapsedUnlogged(ctx, timeNow())
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, grant := range lapsed {
		err := repositories.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			if err := s.unlockRepo.MarkExpiryLogged(ctx, tx, grant.ID); err != nil {
				return err
			}
			return s.auditRepo.Create(ctx, tx, &models.AuditEvent{
				DocumentID: grant.DocumentID,
				ActorID:    grant.RequesterID,
				ActorRole:  models.RoleTrainee,
				Action:     models.AuditUnlockExpired,
				Metadata:   fmt.Sprintf(`{"unlock_request_id":%d}`, grant.ID),
			})
		})
		if err != nil {
			return swept, err
		}
		swept++
	}

	return swept, nil
}
