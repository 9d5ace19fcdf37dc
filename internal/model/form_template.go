package model

import (
	"encoding/json"
	"time"
)

// Form template types.
const (
	FormTypePublic  = "public"
	FormTypeOfficer = "officer"
)

// FormTemplate is a dynamic form definition. The schema field stores the
// form structure as a JSON array of field descriptors; rendering is the
// client's concern.
type FormTemplate struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	FormType      string          `json:"form_type" db:"form_type"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	Schema        json.RawMessage `json:"schema" db:"schema"`
	MapIcon       string          `json:"map_icon" db:"map_icon"`
	MapColor      string          `json:"map_color" db:"map_color"`
	EventCategory string          `json:"event_category" db:"event_category"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
