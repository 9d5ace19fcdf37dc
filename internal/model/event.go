package model

import (
	"encoding/json"
	"time"
)

// Event severities.
const (
	EventSeverityLow      = "low"
	EventSeverityMedium   = "medium"
	EventSeverityHigh     = "high"
	EventSeverityCritical = "critical"
)

// Event statuses.
const (
	EventPending  = "pending"
	EventVerified = "verified"
	EventRejected = "rejected"
	EventResolved = "resolved"
)

// Event is the denormalized, map-facing projection of a report's current
// state. Once linked from a report it is updated in place, never recreated.
type Event struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Severity    string    `json:"severity" db:"severity"`
	Status      string    `json:"status" db:"status"`
	Latitude    *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64  `json:"longitude,omitempty" db:"longitude"`
	Accuracy    float64   `json:"accuracy" db:"accuracy"`
	Altitude    *float64  `json:"altitude,omitempty" db:"altitude"`
	TrustScore  float64   `json:"trust_score" db:"trust_score"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// EventMedia is a mirrored reference to an attachment in an event's media
// collection. OriginAttachmentID keys the mirror so a retried sync never
// duplicates it.
type EventMedia struct {
	ID                 string          `json:"id" db:"id"`
	EventID            string          `json:"event_id" db:"event_id"`
	FileKey            string          `json:"file_key" db:"file_key"`
	FileType           string          `json:"file_type" db:"file_type"`
	FileHash           string          `json:"file_hash" db:"file_hash"`
	Metadata           json.RawMessage `json:"metadata" db:"metadata"`
	OriginAttachmentID string          `json:"origin_attachment_id" db:"origin_attachment_id"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}
