package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sentinelcore/inehss/internal/model"
	"github.com/sentinelcore/inehss/internal/platform"
)

type SubmissionService struct {
	db         DB
	propagator *Propagator
}

func NewSubmissionService(db DB, propagator *Propagator) *SubmissionService {
	return &SubmissionService{db: db, propagator: propagator}
}

// Create durably writes an officer submission against an assignment. It does
// NOT propagate; callers invoke Propagate afterwards and discard its error,
// keeping the two phases separately testable and the submission write
// untouched by downstream failures.
func (s *SubmissionService) Create(ctx context.Context, sub *model.Submission, actor Actor) (*model.Assignment, error) {
	var asg model.Assignment
	err := s.db.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, sub.AssignmentID,
	).Scan(&asg.ID, &asg.ReportID, &asg.OfficerID, &asg.InspectionFormID, &asg.Status,
		&asg.ProgressPercent, &asg.EscalationLevel, &asg.EscalationReason, &asg.IsPersistent,
		&asg.Notes, &asg.AssignedBy, &asg.AssignedAt, &asg.DueDate, &asg.CompletedAt, &asg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w: %s", ErrNotFound, err.Error())
	}

	if !actor.IsStaff && asg.OfficerID != actor.ID {
		return nil, fmt.Errorf("%w: not your assignment", ErrForbidden)
	}

	sub.ID = platform.NewID()
	sub.SubmittedBy = actor.ID
	sub.SubmittedAt = time.Now()
	if sub.Data == nil {
		sub.Data = []byte("{}")
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO submissions (id, assignment_id, data, latitude, longitude, submitted_by, is_draft, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.AssignmentID, sub.Data, sub.Latitude, sub.Longitude,
		sub.SubmittedBy, sub.IsDraft, sub.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return &asg, nil
}

// Propagate runs the post-commit projection for a non-draft submission.
// Errors are the caller's to log and discard; the submission is already the
// durable source of truth and a reconciliation sweep can catch up later.
func (s *SubmissionService) Propagate(ctx context.Context, asg *model.Assignment, sub *model.Submission) error {
	if sub.IsDraft {
		return nil
	}
	return s.propagator.AfterSubmission(ctx, asg, sub)
}

func (s *SubmissionService) GetByID(ctx context.Context, id string, actor Actor) (*model.Submission, error) {
	sub, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff && sub.SubmittedBy != actor.ID {
		return nil, fmt.Errorf("%w: not your submission", ErrForbidden)
	}
	return sub, nil
}

func (s *SubmissionService) getByID(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	err := s.db.QueryRow(ctx,
		`SELECT id, assignment_id, data, latitude, longitude, submitted_by, is_draft, submitted_at
		 FROM submissions WHERE id = $1`, id,
	).Scan(&sub.ID, &sub.AssignmentID, &sub.Data, &sub.Latitude, &sub.Longitude,
		&sub.SubmittedBy, &sub.IsDraft, &sub.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w: %s", ErrNotFound, err.Error())
	}
	return &sub, nil
}

// ListByAssignment returns an assignment's submissions, newest first, so the
// latest draft and the latest final submission are both resolvable from the
// head of the list.
func (s *SubmissionService) ListByAssignment(ctx context.Context, assignmentID string, actor Actor) ([]model.Submission, error) {
	var officerID string
	if err := s.db.QueryRow(ctx,
		`SELECT officer_id FROM assignments WHERE id = $1`, assignmentID,
	).Scan(&officerID); err != nil {
		return nil, fmt.Errorf("get assignment: %w: %s", ErrNotFound, err.Error())
	}
	if !actor.IsStaff && officerID != actor.ID {
		return nil, fmt.Errorf("%w: not your assignment", ErrForbidden)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, assignment_id, data, latitude, longitude, submitted_by, is_draft, submitted_at
		 FROM submissions WHERE assignment_id = $1 ORDER BY submitted_at DESC`, assignmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(&sub.ID, &sub.AssignmentID, &sub.Data, &sub.Latitude,
			&sub.Longitude, &sub.SubmittedBy, &sub.IsDraft, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
