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

// WorkflowService runs the periodic document review state machine. Every
// transition and its audit event commit as one transaction, guarded by the
// document's optimistic version; a losing concurrent writer gets a
// ConflictError and nothing is written.
type WorkflowService interface {
	// Submit moves a draft to submitted, or resubmits after a rejection or
	// return-for-edits. Only the owning trainee may submit, and the period
	// must contain at least one entry.
	Submit(ctx context.Context, documentID int64, actor userctx.Principal) (*models.PeriodicDocument, error)
	// Decide records the assigned reviewer's decision on a submitted
	// document: approve (which also locks), reject or return for edits.
	Decide(ctx context.Context, documentID int64, actor userctx.Principal, action models.WorkflowAction, comment string) (*models.PeriodicDocument, error)
	// AuditTrail returns the document's full audit history in order.
	AuditTrail(ctx context.Context, documentID int64, actor userctx.Principal) ([]models.AuditEvent, error)
}

// auditActions maps workflow actions to audit trail tags
var auditActions = map[models.WorkflowAction]string{
	models.ActionSubmit:         models.AuditSubmitted,
	models.ActionResubmit:       models.AuditResubmitted,
	models.ActionApprove:        models.AuditApproved,
	models.ActionReject:         models.AuditRejected,
	models.ActionReturnForEdits: models.AuditReturnedByEdits,
}

type workflowService struct {
	db        *sql.DB
	docRepo   repositories.DocumentRepository
	entryRepo repositories.EntryRepository
	auditRepo repositories.AuditRepository
	notifier  Notifier
}

// NewWorkflowService creates a new review workflow service
func NewWorkflowService(
	db *sql.DB,
	docRepo repositories.DocumentRepository,
	entryRepo repositories.EntryRepository,
	auditRepo repositories.AuditRepository,
	notifier Notifier,
) WorkflowService {
	return &workflowService{
		db:        db,
		docRepo:   docRepo,
		entryRepo: entryRepo,
		auditRepo: auditRepo,
		notifier:  notifier,
	}
}

// Submit moves the document into review
func (s *workflowService) Submit(ctx context.Context, documentID int64, actor userctx.Principal) (*models.PeriodicDocument, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if actor.Role != models.RoleTrainee || actor.ID != doc.TraineeID {
		return nil, &models.AuthorizationError{Role: actor.Role, Action: "submit this document"}
	}

	action := models.ActionSubmit
	if doc.Status == models.StatusRejected || doc.Status == models.StatusReturnedForEdits {
		action = models.ActionResubmit
	}

	if !models.CanTransition(actor.Role, doc.Status, action) {
		return nil, &models.StateError{DocumentID: doc.ID, Status: doc.EffectiveStatus(), Action: action}
	}

	entryCount, err := s.entryRepo.CountByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if entryCount == 0 {
		return nil, models.Invalid("entries", "at least one practice entry is required before submitting")
	}

	metadata := ""
	if action == models.ActionResubmit {
		prior, err := s.auditRepo.LatestDecision(ctx, doc.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		if prior != nil {
			metadata = fmt.Sprintf(`{"prior_event_id":%d}`, prior.ID)
		}
	}

	prevStatus := doc.Status
	target, _ := models.TransitionTarget(doc.Status, action)

	if err := s.applyTransition(ctx, doc, target, false, "", &models.AuditEvent{
		DocumentID: doc.ID,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     auditActions[action],
		PrevStatus: string(prevStatus),
		NewStatus:  string(target),
		Metadata:   metadata,
	}); err != nil {
		return nil, err
	}

	dispatch(s.notifier, NewNotification(auditActions[action], doc.ID, doc.TraineeID))
	return doc, nil
}

// Decide records a reviewer decision on a submitted document
func (s *workflowService) Decide(ctx context.Context, documentID int64, actor userctx.Principal, action models.WorkflowAction, comment string) (*models.PeriodicDocument, error) {
	valid := false
	for _, a := range models.DecisionActions {
		if a == action {
			valid = true
			break
		}
	}
	if !valid {
		return nil, models.Invalid("decision", fmt.Sprintf("unknown decision %q", action))
	}

	if (action == models.ActionReject || action == models.ActionReturnForEdits) && comment == "" {
		return nil, models.Invalid("comment", fmt.Sprintf("a comment is required to %s a document", action))
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if actor.Role != models.RoleSupervisor || actor.ID != doc.ReviewerID {
		return nil, &models.AuthorizationError{Role: actor.Role, Action: "decide on this document"}
	}

	if !models.CanTransition(actor.Role, doc.Status, action) {
		return nil, &models.StateError{DocumentID: doc.ID, Status: doc.EffectiveStatus(), Action: action}
	}

	prevStatus := doc.Status
	target, _ := models.TransitionTarget(doc.Status, action)
	// Approval seals the document: the decision state is approved, the
	// editability state is locked, both set in the same transition.
	lock := action == models.ActionApprove

	if err := s.applyTransition(ctx, doc, target, lock, comment, &models.AuditEvent{
		DocumentID: doc.ID,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     auditActions[action],
		PrevStatus: string(prevStatus),
		NewStatus:  string(target),
		Comment:    comment,
	}); err != nil {
		return nil, err
	}

	dispatch(s.notifier, NewNotification(auditActions[action], doc.ID, doc.TraineeID))
	return doc, nil
}

// AuditTrail returns the ordered audit history of a document
func (s *workflowService) AuditTrail(ctx context.Context, documentID int64, actor userctx.Principal) ([]models.AuditEvent, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleTrainee:
		if doc.TraineeID != actor.ID {
			return nil, &models.AuthorizationError{Role: actor.Role, Action: "view another trainee's audit trail"}
		}
	case models.RoleSupervisor, models.RoleProgramAdmin:
	default:
		return nil, &models.AuthorizationError{Role: actor.Role, Action: "view audit trails"}
	}

	return s.auditRepo.GetByDocument(ctx, documentID)
}

// applyTransition writes the status change and its audit event in one
// transaction; either both commit or neither does.
func (s *workflowService) applyTransition(ctx context.Context, doc *models.PeriodicDocument, target models.DocumentStatus, lock bool, comment string, event *models.AuditEvent) error {
	doc.Status = target
	if lock {
		doc.Locked = true
	}
	if comment != "" {
		doc.DecisionComment = comment
	}
	if event.Action != models.AuditSubmitted && event.Action != models.AuditResubmitted {
		now := timeNow()
		doc.DecidedAt = &now
	}

	return repositories.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.docRepo.UpdateStatus(ctx, tx, doc); err != nil {
			return err
		}
		return s.auditRepo.Create(ctx, tx, event)
	})
}
