package request

import "encoding/json"

type CreateFormTemplate struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Description   string          `json:"description"`
	FormType      string          `json:"form_type" validate:"required,oneof=public officer"`
	IsActive      *bool           `json:"is_active"`
	Schema        json.RawMessage `json:"schema" validate:"required"`
	MapIcon       string          `json:"map_icon" validate:"max=100"`
	MapColor      string          `json:"map_color" validate:"max=50"`
	EventCategory string          `json:"event_category" validate:"max=100"`
}

type UpdateFormTemplate struct {
	Name          *string         `json:"name" validate:"omitempty,max=255"`
	Description   *string         `json:"description"`
	IsActive      *bool           `json:"is_active"`
	Schema        json.RawMessage `json:"schema"`
	MapIcon       *string         `json:"map_icon" validate:"omitempty,max=100"`
	MapColor      *string         `json:"map_color" validate:"omitempty,max=50"`
	EventCategory *string         `json:"event_category" validate:"omitempty,max=100"`
}
