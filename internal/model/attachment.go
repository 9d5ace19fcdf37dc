package model

import (
	"fmt"
	"strings"
	"time"
)

// Attachment types.
const (
	AttachmentImage    = "image"
	AttachmentVideo    = "video"
	AttachmentDocument = "document"
)

// MediaAttachment is an uploaded file reference belonging to exactly one
// report or one submission. FileKey is an opaque object-store handle; the
// bytes never pass through the workflow engine.
type MediaAttachment struct {
	ID               string    `json:"id" db:"id"`
	ReportID         *string   `json:"report_id,omitempty" db:"report_id"`
	SubmissionID     *string   `json:"submission_id,omitempty" db:"submission_id"`
	FileKey          string    `json:"file_key" db:"file_key"`
	FileType         string    `json:"file_type" db:"file_type"`
	FileHash         string    `json:"file_hash" db:"file_hash"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	FileSize         int64     `json:"file_size" db:"file_size"`
	UploadedAt       time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// Owner returns the attachment's owner variant.
func (m *MediaAttachment) Owner() AttachmentOwner {
	if m.ReportID != nil {
		return OwnedByReport(*m.ReportID)
	}
	if m.SubmissionID != nil {
		return OwnedBySubmission(*m.SubmissionID)
	}
	return AttachmentOwner{}
}

// AttachmentOwner is a tagged variant: an attachment belongs to either a
// report or a submission, never both and never neither. The zero value is
// invalid; construct through OwnedByReport or OwnedBySubmission.
type AttachmentOwner struct {
	kind string
	id   string
}

const (
	ownerReport     = "report"
	ownerSubmission = "submission"
)

func OwnedByReport(reportID string) AttachmentOwner {
	return AttachmentOwner{kind: ownerReport, id: reportID}
}

func OwnedBySubmission(submissionID string) AttachmentOwner {
	return AttachmentOwner{kind: ownerSubmission, id: submissionID}
}

// ReportID returns the owning report ID, if the owner is a report.
func (o AttachmentOwner) ReportID() (string, bool) {
	return o.id, o.kind == ownerReport
}

// SubmissionID returns the owning submission ID, if the owner is a submission.
func (o AttachmentOwner) SubmissionID() (string, bool) {
	return o.id, o.kind == ownerSubmission
}

// Validate rejects the zero value and empty IDs.
func (o AttachmentOwner) Validate() error {
	if o.kind == "" || o.id == "" {
		return fmt.Errorf("attachment owner must reference a report or a submission")
	}
	return nil
}

func (o AttachmentOwner) String() string {
	return o.kind + ":" + o.id
}

// AttachmentTypeFromMIME maps a declared MIME type onto an attachment type.
func AttachmentTypeFromMIME(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return AttachmentImage
	case strings.HasPrefix(contentType, "video/"):
		return AttachmentVideo
	default:
		return AttachmentDocument
	}
}
