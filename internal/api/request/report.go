package request

import "encoding/json"

type CreateReport struct {
	FormTemplateID string          `json:"form_template_id" validate:"required,uuid4"`
	Data           json.RawMessage `json:"data" validate:"required"`
	Latitude       *float64        `json:"latitude" validate:"omitempty,latitude"`
	Longitude      *float64        `json:"longitude" validate:"omitempty,longitude"`
	Address        string          `json:"address"`
	Priority       string          `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	ReporterName   string          `json:"reporter_name" validate:"max=255"`
	ReporterPhone  string          `json:"reporter_phone" validate:"max=50"`
	ReporterEmail  string          `json:"reporter_email" validate:"omitempty,email"`
}

type UpdateReportStatus struct {
	Status string `json:"status" validate:"required,oneof=new assigned in_progress resolved closed"`
}
