package model

import (
	"encoding/json"
	"time"
)

// Submission is one officer-filed data payload against an assignment.
// Submissions are append-only; corrections are new submissions, and the
// latest is determined by timestamp ordering.
type Submission struct {
	ID           string          `json:"id" db:"id"`
	AssignmentID string          `json:"assignment_id" db:"assignment_id"`
	Data         json.RawMessage `json:"data" db:"data"`
	Latitude     *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64        `json:"longitude,omitempty" db:"longitude"`
	SubmittedBy  string          `json:"submitted_by" db:"submitted_by"`
	IsDraft      bool            `json:"is_draft" db:"is_draft"`
	SubmittedAt  time.Time       `json:"submitted_at" db:"submitted_at"`
}

// HasLocation reports whether the submission carries coordinates.
func (s *Submission) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}
