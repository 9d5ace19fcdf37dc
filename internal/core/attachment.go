package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sentinelcore/inehss/internal/model"
	"github.com/sentinelcore/inehss/internal/platform"
)

type AttachmentService struct {
	db     DB
	events *EventService
}

func NewAttachmentService(db DB, events *EventService) *AttachmentService {
	return &AttachmentService{db: db, events: events}
}

// Create records an uploaded attachment against its owner. The binary lives
// in the object store already; only the opaque key is persisted here. Event
// mirroring is a separate phase (SyncToEvent) whose failure never reaches the
// uploader.
func (s *AttachmentService) Create(ctx context.Context, owner model.AttachmentOwner, att *model.MediaAttachment) error {
	if err := owner.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	att.ID = platform.NewID()
	att.UploadedAt = time.Now()
	att.ReportID, att.SubmissionID = nil, nil
	if id, ok := owner.ReportID(); ok {
		att.ReportID = &id
	}
	if id, ok := owner.SubmissionID(); ok {
		att.SubmissionID = &id
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO media_attachments (id, report_id, submission_id, file_key, file_type, file_hash,
		                                original_filename, file_size, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		att.ID, att.ReportID, att.SubmissionID, att.FileKey, att.FileType, att.FileHash,
		att.OriginalFilename, att.FileSize, att.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	return nil
}

// SyncToEvent mirrors the attachment into the owning report's event media
// collection, keyed on the origin attachment id so retries are idempotent.
// Callers log the returned error and move on; mirroring is best-effort.
func (s *AttachmentService) SyncToEvent(ctx context.Context, att *model.MediaAttachment) error {
	eventID, err := s.resolveEventID(ctx, att)
	if err != nil {
		return err
	}
	if eventID == "" {
		// No event materialized yet; nothing to mirror into.
		return nil
	}

	metadata, err := json.Marshal(map[string]string{
		"source":               "incident-subsystem",
		"original_filename":    att.OriginalFilename,
		"origin_attachment_id": att.ID,
	})
	if err != nil {
		return fmt.Errorf("marshal mirror metadata: %w", err)
	}

	_, err = s.events.AddMedia(ctx, &model.EventMedia{
		EventID:            eventID,
		FileKey:            att.FileKey,
		FileType:           att.FileType,
		FileHash:           att.FileHash,
		Metadata:           metadata,
		OriginAttachmentID: att.ID,
	})
	return err
}

// resolveEventID walks from the attachment's owner to the event: a report
// directly, or a submission through its assignment's report. An empty string
// means no event is resolvable.
func (s *AttachmentService) resolveEventID(ctx context.Context, att *model.MediaAttachment) (string, error) {
	var eventID *string
	var err error

	switch {
	case att.ReportID != nil:
		err = s.db.QueryRow(ctx,
			`SELECT event_id FROM reports WHERE id = $1`, *att.ReportID,
		).Scan(&eventID)
	case att.SubmissionID != nil:
		err = s.db.QueryRow(ctx,
			`SELECT r.event_id
			 FROM submissions s
			 JOIN assignments a ON a.id = s.assignment_id
			 JOIN reports r ON r.id = a.report_id
			 WHERE s.id = $1`, *att.SubmissionID,
		).Scan(&eventID)
	default:
		return "", fmt.Errorf("attachment %s has no owner", att.ID)
	}
	if err != nil {
		return "", fmt.Errorf("resolve event for attachment %s: %w", att.ID, err)
	}
	if eventID == nil {
		return "", nil
	}
	return *eventID, nil
}

// ListByOwner returns the attachments of one report or submission.
func (s *AttachmentService) ListByOwner(ctx context.Context, owner model.AttachmentOwner) ([]model.MediaAttachment, error) {
	if err := owner.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	column := "report_id"
	id, ok := owner.ReportID()
	if !ok {
		column = "submission_id"
		id, _ = owner.SubmissionID()
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, report_id, submission_id, file_key, file_type, file_hash,
		        original_filename, file_size, uploaded_at
		 FROM media_attachments WHERE `+column+` = $1 ORDER BY uploaded_at ASC`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []model.MediaAttachment
	for rows.Next() {
		var att model.MediaAttachment
		if err := rows.Scan(&att.ID, &att.ReportID, &att.SubmissionID, &att.FileKey,
			&att.FileType, &att.FileHash, &att.OriginalFilename, &att.FileSize,
			&att.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}
