package model

import "time"

// Assignment statuses.
const (
	AssignmentPending        = "pending"
	AssignmentAccepted       = "accepted"
	AssignmentInProgress     = "in_progress"
	AssignmentAwaitingReview = "awaiting_review"
	AssignmentApproved       = "approved"
	AssignmentRevisionNeeded = "revision_needed"
	AssignmentCompleted      = "completed"
	AssignmentDeclined       = "declined"
	AssignmentReassigned     = "reassigned"
)

// Escalation levels.
const (
	EscalationNone     = "none"
	EscalationLow      = "low"
	EscalationMedium   = "medium"
	EscalationHigh     = "high"
	EscalationCritical = "critical"
)

// Assignment binds an officer to a report (or to open-ended patrol duty) for
// inspection. Rows are never deleted; terminal statuses keep the history.
type Assignment struct {
	ID               string     `json:"id" db:"id"`
	ReportID         *string    `json:"report_id,omitempty" db:"report_id"`
	OfficerID        string     `json:"officer_id" db:"officer_id"`
	InspectionFormID string     `json:"inspection_form_id" db:"inspection_form_id"`
	Status           string     `json:"status" db:"status"`
	ProgressPercent  int        `json:"progress_percent" db:"progress_percent"`
	EscalationLevel  string     `json:"escalation_level" db:"escalation_level"`
	EscalationReason string     `json:"escalation_reason" db:"escalation_reason"`
	IsPersistent     bool       `json:"is_persistent" db:"is_persistent"`
	Notes            string     `json:"notes" db:"notes"`
	AssignedBy       *string    `json:"assigned_by,omitempty" db:"assigned_by"`
	AssignedAt       time.Time  `json:"assigned_at" db:"assigned_at"`
	DueDate          *time.Time `json:"due_date,omitempty" db:"due_date"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Terminal reports whether the assignment has reached a terminal status.
func (a *Assignment) Terminal() bool {
	return a.Status == AssignmentCompleted || a.Status == AssignmentDeclined
}
