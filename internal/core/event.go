package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sentinelcore/inehss/internal/model"
	"github.com/sentinelcore/inehss/internal/platform"
)

const eventColumns = `id, title, description, category, severity, status,
	        latitude, longitude, accuracy, altitude, trust_score, created_at, updated_at`

type EventService struct {
	db DB
}

func NewEventService(db DB) *EventService {
	return &EventService{db: db}
}

func (s *EventService) Create(ctx context.Context, evt *model.Event) error {
	evt.ID = platform.NewID()
	now := time.Now()
	evt.CreatedAt = now
	evt.UpdatedAt = now

	_, err := s.db.Exec(ctx,
		`INSERT INTO events (id, title, description, category, severity, status,
		                     latitude, longitude, accuracy, altitude, trust_score, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		evt.ID, evt.Title, evt.Description, evt.Category, evt.Severity, evt.Status,
		evt.Latitude, evt.Longitude, evt.Accuracy, evt.Altitude, evt.TrustScore,
		evt.CreatedAt, evt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *EventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var evt model.Event
	err := s.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	).Scan(&evt.ID, &evt.Title, &evt.Description, &evt.Category, &evt.Severity,
		&evt.Status, &evt.Latitude, &evt.Longitude, &evt.Accuracy, &evt.Altitude,
		&evt.TrustScore, &evt.CreatedAt, &evt.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get event: %w: %s", ErrNotFound, err.Error())
	}
	return &evt, nil
}

// UpdateLocation overwrites an event's coordinates without touching severity,
// trust, or status. Those reflect the original verification path and only the
// materialization rule may set them.
func (s *EventService) UpdateLocation(ctx context.Context, id string, lat, lng *float64) (*model.Event, error) {
	now := time.Now()
	_, err := s.db.Exec(ctx,
		`UPDATE events SET latitude = $1, longitude = $2, updated_at = $3 WHERE id = $4`,
		lat, lng, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event location: %w", err)
	}
	return s.GetByID(ctx, id)
}

// EventFilters holds optional filters for listing events.
type EventFilters struct {
	Status   string
	Severity string
	Category string
	// Bounding box, applied only when all four corners are set.
	MinLat, MaxLat, MinLng, MaxLng *float64
}

func (f EventFilters) hasBoundingBox() bool {
	return f.MinLat != nil && f.MaxLat != nil && f.MinLng != nil && f.MaxLng != nil
}

// List returns events with optional filters, paginated by created_at cursor.
func (s *EventService) List(ctx context.Context, filters EventFilters, limit int, cursor string) ([]model.Event, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + eventColumns + ` FROM events`

	var conditions []string
	var args []any
	argN := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argN))
		args = append(args, filters.Status)
		argN++
	}
	if filters.Severity != "" {
		conditions = append(conditions, fmt.Sprintf("severity = $%d", argN))
		args = append(args, filters.Severity)
		argN++
	}
	if filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argN))
		args = append(args, filters.Category)
		argN++
	}
	if filters.hasBoundingBox() {
		conditions = append(conditions, fmt.Sprintf(
			"latitude BETWEEN $%d AND $%d AND longitude BETWEEN $%d AND $%d",
			argN, argN+1, argN+2, argN+3))
		args = append(args, *filters.MinLat, *filters.MaxLat, *filters.MinLng, *filters.MaxLng)
		argN += 4
	}
	if cursor != "" {
		conditions = append(conditions, fmt.Sprintf("created_at < (SELECT created_at FROM events WHERE id = $%d)", argN))
		args = append(args, cursor)
		argN++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argN)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var evt model.Event
		if err := rows.Scan(&evt.ID, &evt.Title, &evt.Description, &evt.Category,
			&evt.Severity, &evt.Status, &evt.Latitude, &evt.Longitude, &evt.Accuracy,
			&evt.Altitude, &evt.TrustScore, &evt.CreatedAt, &evt.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, evt)
	}

	hasMore := len(events) > limit
	if hasMore {
		events = events[:limit]
	}
	return events, hasMore, nil
}

// AddMedia mirrors an attachment reference into the event's media collection.
// The insert is keyed on origin_attachment_id, so a retried sync inserts
// nothing the second time. Returns true when a new mirror row was written.
func (s *EventService) AddMedia(ctx context.Context, media *model.EventMedia) (bool, error) {
	media.ID = platform.NewID()
	media.CreatedAt = time.Now()

	if media.Metadata == nil {
		media.Metadata = []byte("{}")
	}

	tag, err := s.db.Exec(ctx,
		`INSERT INTO event_media (id, event_id, file_key, file_type, file_hash, metadata, origin_attachment_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (origin_attachment_id) DO NOTHING`,
		media.ID, media.EventID, media.FileKey, media.FileType, media.FileHash,
		media.Metadata, media.OriginAttachmentID, media.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("add event media: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListMedia returns the event's media collection, oldest first.
func (s *EventService) ListMedia(ctx context.Context, eventID string) ([]model.EventMedia, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, event_id, file_key, file_type, file_hash, metadata, origin_attachment_id, created_at
		 FROM event_media WHERE event_id = $1 ORDER BY created_at ASC`, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list event media: %w", err)
	}
	defer rows.Close()

	var media []model.EventMedia
	for rows.Next() {
		var m model.EventMedia
		if err := rows.Scan(&m.ID, &m.EventID, &m.FileKey, &m.FileType, &m.FileHash,
			&m.Metadata, &m.OriginAttachmentID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event media: %w", err)
		}
		media = append(media, m)
	}
	return media, rows.Err()
}
