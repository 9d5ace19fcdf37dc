package model

import (
	"encoding/json"
	"time"
)

// Report statuses.
const (
	ReportNew        = "new"
	ReportAssigned   = "assigned"
	ReportInProgress = "in_progress"
	ReportResolved   = "resolved"
	ReportClosed     = "closed"
)

// Report priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Report is a tracked hazard report, citizen- or officer-originated.
// The tracking code is generated exactly once at creation and never changes.
type Report struct {
	ID             string          `json:"id" db:"id"`
	TrackingCode   string          `json:"tracking_code" db:"tracking_code"`
	FormTemplateID string          `json:"form_template_id" db:"form_template_id"`
	Data           json.RawMessage `json:"data" db:"data"`
	Latitude       *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude      *float64        `json:"longitude,omitempty" db:"longitude"`
	Address        string          `json:"address" db:"address"`
	Status         string          `json:"status" db:"status"`
	Priority       string          `json:"priority" db:"priority"`
	ReporterName   string          `json:"reporter_name" db:"reporter_name"`
	ReporterPhone  string          `json:"reporter_phone" db:"reporter_phone"`
	ReporterEmail  string          `json:"reporter_email" db:"reporter_email"`
	IPAddress      *string         `json:"-" db:"ip_address"`
	UserAgent      string          `json:"-" db:"user_agent"`
	EventID        *string         `json:"event_id,omitempty" db:"event_id"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// HasLocation reports whether the report carries coordinates.
func (r *Report) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}
