package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sentinelcore/inehss/internal/model"
	"github.com/sentinelcore/inehss/internal/platform"
)

const assignmentColumns = `id, report_id, officer_id, inspection_form_id, status, progress_percent,
	        escalation_level, escalation_reason, is_persistent, notes,
	        assigned_by, assigned_at, due_date, completed_at, updated_at`

// AssignmentService owns the assignment lifecycle. Every transition checks
// actor authorization first, then the current status, and applies the change
// with a status-guarded UPDATE so concurrent callers on the same assignment
// serialize at the store: exactly one wins, the loser observes the new status
// and fails its precondition check.
type AssignmentService struct {
	db DB
}

func NewAssignmentService(db DB) *AssignmentService {
	return &AssignmentService{db: db}
}

// Progress floors per transition. A floor only ever raises progress;
// request_revision is the one operation allowed to lower it, capped at 80.
const (
	progressFloorAccept       = 10
	progressFloorStart        = 25
	progressFloorSubmitReview = 85
	progressCapRevision       = 80
	progressComplete          = 100
)

func (s *AssignmentService) Create(ctx context.Context, asg *model.Assignment, actor Actor) error {
	if !actor.IsStaff {
		return fmt.Errorf("%w: staff only", ErrForbidden)
	}
	if asg.OfficerID == "" || asg.InspectionFormID == "" {
		return fmt.Errorf("%w: officer and inspection form are required", ErrInvalidInput)
	}

	now := time.Now()
	asg.ID = platform.NewID()
	asg.Status = model.AssignmentPending
	asg.EscalationLevel = model.EscalationNone
	asg.AssignedBy = &actor.ID
	asg.AssignedAt = now
	asg.UpdatedAt = now

	_, err := s.db.Exec(ctx,
		`INSERT INTO assignments (id, report_id, officer_id, inspection_form_id, status, progress_percent,
		                          escalation_level, escalation_reason, is_persistent, notes,
		                          assigned_by, assigned_at, due_date, completed_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		asg.ID, asg.ReportID, asg.OfficerID, asg.InspectionFormID, asg.Status, asg.ProgressPercent,
		asg.EscalationLevel, asg.EscalationReason, asg.IsPersistent, asg.Notes,
		asg.AssignedBy, asg.AssignedAt, asg.DueDate, asg.CompletedAt, asg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}

	// A fresh assignment marks its report as assigned. Best-effort; the
	// assignment row is the source of truth, so a failed cascade is logged
	// and the create still succeeds.
	if asg.ReportID != nil {
		if _, err := s.db.Exec(ctx,
			`UPDATE reports SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
			model.ReportAssigned, now, *asg.ReportID, model.ReportNew,
		); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("report_id", *asg.ReportID).
				Msg("report status cascade failed on assignment create")
		}
	}
	return nil
}

func (s *AssignmentService) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var asg model.Assignment
	err := s.db.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id,
	).Scan(&asg.ID, &asg.ReportID, &asg.OfficerID, &asg.InspectionFormID, &asg.Status,
		&asg.ProgressPercent, &asg.EscalationLevel, &asg.EscalationReason, &asg.IsPersistent,
		&asg.Notes, &asg.AssignedBy, &asg.AssignedAt, &asg.DueDate, &asg.CompletedAt, &asg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w: %s", ErrNotFound, err.Error())
	}
	return &asg, nil
}

// List returns assignments newest-first. Non-staff actors only see their own.
func (s *AssignmentService) List(ctx context.Context, actor Actor, limit int, cursor string) ([]model.Assignment, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + assignmentColumns + ` FROM assignments`

	var conditions []string
	var args []any
	argN := 1

	if !actor.IsStaff {
		conditions = append(conditions, fmt.Sprintf("officer_id = $%d", argN))
		args = append(args, actor.ID)
		argN++
	}
	if cursor != "" {
		conditions = append(conditions, fmt.Sprintf("assigned_at < (SELECT assigned_at FROM assignments WHERE id = $%d)", argN))
		args = append(args, cursor)
		argN++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY assigned_at DESC LIMIT $%d", argN)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var asg model.Assignment
		if err := rows.Scan(&asg.ID, &asg.ReportID, &asg.OfficerID, &asg.InspectionFormID,
			&asg.Status, &asg.ProgressPercent, &asg.EscalationLevel, &asg.EscalationReason,
			&asg.IsPersistent, &asg.Notes, &asg.AssignedBy, &asg.AssignedAt, &asg.DueDate,
			&asg.CompletedAt, &asg.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, asg)
	}

	hasMore := len(assignments) > limit
	if hasMore {
		assignments = assignments[:limit]
	}
	return assignments, hasMore, nil
}

// authorize checks the actor against an owner-or-staff transition.
func authorize(asg *model.Assignment, actor Actor) error {
	if actor.IsStaff || asg.OfficerID == actor.ID {
		return nil
	}
	return fmt.Errorf("%w: not your assignment", ErrForbidden)
}

func requireStatus(asg *model.Assignment, operation string, allowed ...string) error {
	for _, status := range allowed {
		if asg.Status == status {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s an assignment in status %q", ErrInvalidInput, operation, asg.Status)
}

// applyTransition writes the new status and progress, guarded by the status
// the caller observed. Zero rows affected means a concurrent transition won.
func (s *AssignmentService) applyTransition(ctx context.Context, asg *model.Assignment, operation, newStatus string, progress int) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE assignments SET status = $1, progress_percent = $2, updated_at = $3
		 WHERE id = $4 AND status = $5`,
		newStatus, progress, time.Now(), asg.ID, asg.Status,
	)
	if err != nil {
		return fmt.Errorf("%s assignment: %w", operation, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: assignment %s changed status concurrently", ErrInvalidInput, asg.ID)
	}
	asg.Status = newStatus
	asg.ProgressPercent = progress
	return nil
}

func raiseTo(current, floor int) int {
	if current > floor {
		return current
	}
	return floor
}

// Accept moves a pending (or freshly reassigned) assignment to accepted.
func (s *AssignmentService) Accept(ctx context.Context, id string, actor Actor) (*model.Assignment, error) {
	asg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(asg, actor); err != nil {
		return nil, err
	}
	if err := requireStatus(asg, "accept", model.AssignmentPending, model.AssignmentReassigned); err != nil {
		return nil, err
	}
	progress := raiseTo(asg.ProgressPercent, progressFloorAccept)
	if err := s.applyTransition(ctx, asg, "accept", model.AssignmentAccepted, progress); err != nil {
		return nil, err
	}
	return asg, nil
}

// Start moves an accepted assignment to in_progress.
func (s *AssignmentService) Start(ctx context.Context, id string, actor Actor) (*model.Assignment, error) {
	asg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(asg, actor); err != nil {
		return nil, err
	}
	if err := requireStatus(asg, "start", model.AssignmentAccepted); err != nil {
		return nil, err
	}
	progress := raiseTo(asg.ProgressPercent, progressFloorStart)
	if err := s.applyTransition(ctx, asg, "start", model.AssignmentInProgress, progress); err != nil {
		return nil, err
	}

	if asg.ReportID != nil {
		if _, err := s.db.Exec(ctx,
			`UPDATE reports SET status = $1, updated_at = $2 WHERE id = $3 AND status IN ($4, $5)`,
			model.ReportInProgress, time.Now(), *asg.ReportID, model.ReportNew, model.ReportAssigned,
		); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("report_id", *asg.ReportID).
				Msg("report status cascade failed on assignment start")
		}
	}
	return asg, nil
}

// SubmitReview hands in-progress (or revised) work over for staff review.
func (s *AssignmentService) SubmitReview(ctx context.Context, id string, actor Actor) (*model.Assignment, error) {
	asg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(asg, actor); err != nil {
		return nil, err
	}
	if err := requireStatus(asg, "submit for review", model.AssignmentInProgress, model.AssignmentRevisionNeeded); err != nil {
		return nil, err
	}
	progress := raiseTo(asg.ProgressPercent, progressFloorSubmitReview)
	if err := s.applyTransition(ctx, asg, "submit review on", model.AssignmentAwaitingReview, progress); err != nil {
		return nil, err
	}
	return asg, nil
}

// RequestRevision sends awaiting_review work back to the officer. The only
// transition permitted to lower progress, capped at 80 and never forced down
// when already lower.
func (s *AssignmentService) RequestRevision(ctx context.Context, id string, actor Actor) (*model.Assignment, error) {
	if !actor.IsStaff {
		return nil, fmt.Errorf("%w: staff only", ErrForbidden)
	}
	asg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(asg, "request revision on", model.AssignmentAwaitingReview); err != nil {
		return nil, err
	}
	progress := asg.ProgressPercent
	if progress > progressCapRevision {
		progress = progressCapRevision
	}
	if err := s.applyTransition(ctx, asg, "request revision on", model.AssignmentRevisionNeeded, progress); err != nil {
		return nil, err
	}
	return asg, nil
}

// Approve signs off awaiting_review work and sets progress to 100.
func (s *AssignmentService) Approve(ctx context.Context, id string, actor Actor) (*model.Assignment, error) {
	if !actor.IsStaff {
		return nil, fmt.Errorf("%w: staff only", ErrForbidden)
	}
	asg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(asg, "approve", model.AssignmentAwaitingReview, model.AssignmentRevisionNeeded); err != nil {
		return nil, err
	}
	if err := s.applyTransition(ctx, asg, "approve", model.AssignmentApproved, progressComplete); err != nil {
		return nil, err
	}
	return asg, nil
}

// Decline terminates the assignment without completing it. Progress unchanged.
func (s *AssignmentService) Decline(ctx context.Context, id string, actor Actor) (*model.Assignment, error) {
	asg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(asg, actor); err != nil {
		return nil, err
	}
	if asg.Terminal() {
		return nil, fmt.Errorf("%w: cannot decline an assignment in status %q", ErrInvalidInput, asg.Status)
	}
	if err := s.applyTransition(ctx, asg, "decline", model.AssignmentDeclined, asg.ProgressPercent); err != nil {
		return nil, err
	}
	return asg, nil
}

// Escalate raises an out-of-band severity flag without changing the lifecycle
// status. Authorization runs first, like every other transition; level and
// reason are validated before any write.
func (s *AssignmentService) Escalate(ctx context.Context, id string, actor Actor, level, reason string) (*model.Assignment, error) {
	asg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(asg, actor); err != nil {
		return nil, err
	}

	switch level {
	case model.EscalationLow, model.EscalationMedium, model.EscalationHigh, model.EscalationCritical:
	default:
		return nil, fmt.Errorf("%w: unknown escalation level %q", ErrInvalidInput, level)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: escalation reason is required", ErrInvalidInput)
	}
	if asg.Terminal() {
		return nil, fmt.Errorf("%w: cannot escalate an assignment in status %q", ErrInvalidInput, asg.Status)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE assignments SET escalation_level = $1, escalation_reason = $2, updated_at = $3
		 WHERE id = $4 AND status = $5`,
		level, reason, time.Now(), asg.ID, asg.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("escalate assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: assignment %s changed status concurrently", ErrInvalidInput, asg.ID)
	}
	asg.EscalationLevel = level
	asg.EscalationReason = reason
	return asg, nil
}

// Reassign swaps the officer in place and marks the row reassigned, which
// re-enters pending semantics under the new officer. No new assignment row.
func (s *AssignmentService) Reassign(ctx context.Context, id string, actor Actor, newOfficerID string) (*model.Assignment, error) {
	if !actor.IsStaff {
		return nil, fmt.Errorf("%w: staff only", ErrForbidden)
	}
	if newOfficerID == "" {
		return nil, fmt.Errorf("%w: target officer is required", ErrInvalidInput)
	}

	asg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asg.Terminal() {
		return nil, fmt.Errorf("%w: cannot reassign an assignment in status %q", ErrInvalidInput, asg.Status)
	}

	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, newOfficerID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("look up officer: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: officer %s", ErrNotFound, newOfficerID)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE assignments SET officer_id = $1, status = $2, updated_at = $3
		 WHERE id = $4 AND status = $5`,
		newOfficerID, model.AssignmentReassigned, time.Now(), asg.ID, asg.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("reassign assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: assignment %s changed status concurrently", ErrInvalidInput, asg.ID)
	}
	asg.OfficerID = newOfficerID
	asg.Status = model.AssignmentReassigned
	return asg, nil
}

// Complete terminates approved work and cascades the linked report to
// resolved. The two updates are one transaction: a completed assignment with
// an unresolved report is an inconsistent state a concurrent reader could
// observe, so either both land or neither does.
func (s *AssignmentService) Complete(ctx context.Context, id string, actor Actor) (*model.Assignment, error) {
	asg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(asg, actor); err != nil {
		return nil, err
	}
	if err := requireStatus(asg, "complete", model.AssignmentApproved, model.AssignmentRevisionNeeded); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin complete: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	tag, err := tx.Exec(ctx,
		`UPDATE assignments SET status = $1, progress_percent = $2, completed_at = $3, updated_at = $3
		 WHERE id = $4 AND status = $5`,
		model.AssignmentCompleted, progressComplete, now, asg.ID, asg.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("complete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: assignment %s changed status concurrently", ErrInvalidInput, asg.ID)
	}

	if asg.ReportID != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE reports SET status = $1, updated_at = $2 WHERE id = $3`,
			model.ReportResolved, now, *asg.ReportID,
		); err != nil {
			return nil, fmt.Errorf("resolve report for completed assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit complete: %w", err)
	}

	asg.Status = model.AssignmentCompleted
	asg.ProgressPercent = progressComplete
	asg.CompletedAt = &now
	return asg, nil
}
